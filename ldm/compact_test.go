package ldm

import "testing"

func TestCompactRoundTripsSentinels(t *testing.T) {
	order := NewBranchOrder()
	for _, p := range []LogootPosition{DocStart, DocEnd} {
		c := p.MarshalCompact(order)
		back, err := UnmarshalCompact(c, order)
		if err != nil {
			t.Fatalf("UnmarshalCompact: %v", err)
		}
		if back.Cmp(p, order) != 0 {
			t.Fatalf("sentinel did not round-trip: got %s", back.Str())
		}
	}
}

func TestCompactRoundTripsRealPosition(t *testing.T) {
	order := NewBranchOrder()
	a := NewBranchKey()
	b := NewBranchKey()
	p := LogootPosition{levels: []level{
		{atom: NewLogootInt(3), branch: a},
		{atom: NewLogootInt(-7), branch: b},
	}}

	c := p.MarshalCompact(order)
	if len(c.Levels) != 2 || c.Levels[0].Atom != "3" || c.Levels[1].Atom != "-7" {
		t.Fatalf("unexpected compact form: %+v", c)
	}

	back, err := UnmarshalCompact(c, order)
	if err != nil {
		t.Fatalf("UnmarshalCompact: %v", err)
	}
	if back.Cmp(p, order) != 0 {
		t.Fatalf("position did not round-trip: got %s, want %s", back.Str(), p.Str())
	}
}

func TestCompactRejectsUnknownBranchID(t *testing.T) {
	order := NewBranchOrder()
	_, err := UnmarshalCompact(CompactPosition{Levels: []CompactLevel{{Atom: "1", Branch: 42}}}, order)
	if err == nil {
		t.Fatal("expected an error for a branch id the registry never assigned")
	}
	if !IsKind(err, KindInvalidArgument) {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
}

func TestCompactRejectsMalformedAtom(t *testing.T) {
	order := NewBranchOrder()
	order.Rank(NewBranchKey())
	_, err := UnmarshalCompact(CompactPosition{Levels: []CompactLevel{{Atom: "not-a-number", Branch: 0}}}, order)
	if err == nil {
		t.Fatal("expected an error for a malformed atom digit string")
	}
}
