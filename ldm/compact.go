package ldm

// CompactLevel is the wire shape of one LogootPosition level, per spec.md
// section 6: an atom rendered as its big-endian decimal digit string, and a
// branch identifier already resolved against the caller's small-integer
// table rather than carrying the full opaque BranchKey.
type CompactLevel struct {
	Atom   string
	Branch int
}

// CompactPosition is the wire shape of a LogootPosition: either a sentinel
// tag, or the ordered level array. At most one of the two is meaningful at a
// time, mirroring how LogootPosition itself stores a sentinel kind distinct
// from its level slice.
type CompactPosition struct {
	Sentinel string // "", "start", or "end"
	Levels   []CompactLevel
}

// MarshalCompact renders p in the section 6 wire shape, resolving each
// level's branch through order (assigning a fresh rank on first sight, same
// as every other comparison against this registry).
func (p LogootPosition) MarshalCompact(order *BranchOrder) CompactPosition {
	if p.IsDocStart() {
		return CompactPosition{Sentinel: "start"}
	}
	if p.IsDocEnd() {
		return CompactPosition{Sentinel: "end"}
	}
	levels := make([]CompactLevel, len(p.levels))
	for i, lv := range p.levels {
		levels[i] = CompactLevel{Atom: lv.atom.String(), Branch: order.Rank(lv.branch)}
	}
	return CompactPosition{Levels: levels}
}

// UnmarshalCompact reconstructs a LogootPosition from its wire shape,
// resolving each level's branch id back through order. Fails with
// InvalidArgument on a malformed atom digit string or a branch id order has
// never assigned -- both indicate the caller fed in bytes that didn't
// actually come from a matching MarshalCompact/BranchOrder pair.
func UnmarshalCompact(c CompactPosition, order *BranchOrder) (LogootPosition, error) {
	switch c.Sentinel {
	case "start":
		return DocStart, nil
	case "end":
		return DocEnd, nil
	}
	levels := make([]level, len(c.Levels))
	for i, cl := range c.Levels {
		atom, ok := ParseLogootInt(cl.Atom)
		if !ok {
			return LogootPosition{}, errInvalidArgument("unmarshalCompact: malformed atom digit string " + cl.Atom)
		}
		branch, ok := order.KeyAt(cl.Branch)
		if !ok {
			return LogootPosition{}, errInvalidArgument("unmarshalCompact: unknown branch id")
		}
		levels[i] = level{atom: atom, branch: branch}
	}
	return LogootPosition{levels: levels}, nil
}
