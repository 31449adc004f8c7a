package ldm

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// nodeSnapshot is a comparable, cmp-friendly projection of an
// AnchorLogootNode, used to check node-wise equality between replicas
// without exposing the tree's internal pointer-linked representation to
// go-cmp directly.
type nodeSnapshot struct {
	Start     string
	Length    int64
	Type      string
	Clk       string
	LdocStart int64
}

func snapshot(d *Document) []nodeSnapshot {
	var out []nodeSnapshot
	d.tree.operateOnAll(func(n *AnchorLogootNode) {
		out = append(out, nodeSnapshot{
			Start:     n.start.Str(),
			Length:    n.length,
			Type:      n.typ.String(),
			Clk:       n.clk.String(),
			LdocStart: d.tree.ldocStartOf(n),
		})
	})
	return out
}

func TestInsertLogootEmptyDoc(t *testing.T) {
	d := NewDocument()
	b := NewBranchKey()

	ops, err := d.InsertLogoot(b, nil, nil, 5, NewLogootInt(0))
	if err != nil {
		t.Fatalf("InsertLogoot: %v", err)
	}
	if len(ops) != 1 || ops[0].Kind != OpInsert || ops[0].Start != 0 || ops[0].Length != 5 {
		t.Fatalf("expected a single insert {start=0, length=5}, got %+v", ops)
	}
	if d.Len() != 5 {
		t.Fatalf("expected document length 5, got %d", d.Len())
	}
	if err := d.SelfTest(); err != nil {
		t.Fatalf("SelfTest: %v", err)
	}
}

func TestInsertLogootBetweenNeighboursForcesNewLevel(t *testing.T) {
	d := NewDocument()
	a := NewBranchKey()
	br := NewBranchKey()

	if _, err := d.InsertLogoot(a, nil, nil, 5, NewLogootInt(0)); err != nil {
		t.Fatalf("seed insert: %v", err)
	}

	a3 := LogootPosition{levels: []level{{atom: NewLogootInt(3), branch: a}}}
	a4 := LogootPosition{levels: []level{{atom: NewLogootInt(4), branch: a}}}

	ops, err := d.InsertLogoot(br, &a3, &a4, 2, NewLogootInt(0))
	if err != nil {
		t.Fatalf("InsertLogoot between neighbours: %v", err)
	}
	if len(ops) != 1 || ops[0].Start != 3 || ops[0].Length != 2 {
		t.Fatalf("expected a single insert {start=3, length=2}, got %+v", ops)
	}
	if d.Len() != 7 {
		t.Fatalf("expected document length 7, got %d", d.Len())
	}
	if err := d.SelfTest(); err != nil {
		t.Fatalf("SelfTest: %v", err)
	}
}

func TestRemoveLogootAcrossConcurrentInsertion(t *testing.T) {
	d := NewDocument()
	a := NewBranchKey()
	br := NewBranchKey()

	if _, err := d.InsertLogoot(a, nil, nil, 5, NewLogootInt(0)); err != nil {
		t.Fatalf("seed insert: %v", err)
	}
	a3 := LogootPosition{levels: []level{{atom: NewLogootInt(3), branch: a}}}
	a4 := LogootPosition{levels: []level{{atom: NewLogootInt(4), branch: a}}}
	if _, err := d.InsertLogoot(br, &a3, &a4, 2, NewLogootInt(0)); err != nil {
		t.Fatalf("concurrent insert: %v", err)
	}

	a2 := LogootPosition{levels: []level{{atom: NewLogootInt(2), branch: a}}}
	ops, err := d.RemoveLogoot(a2, 2, NewLogootInt(1))
	if err != nil {
		t.Fatalf("RemoveLogoot: %v", err)
	}
	if len(ops) != 1 || ops[0].Kind != OpRemove || ops[0].Start != 1 || ops[0].Length != 2 {
		t.Fatalf("expected a single remove {start=1, length=2}, got %+v", ops)
	}
	if d.Len() != 5 {
		t.Fatalf("expected document length 5 (7-2), got %d", d.Len())
	}
	if err := d.SelfTest(); err != nil {
		t.Fatalf("SelfTest: %v", err)
	}
}

func TestInsertLocalPointInsertMidRun(t *testing.T) {
	d := NewDocument()
	a := NewBranchKey()
	if _, err := d.InsertLogoot(a, nil, nil, 10, NewLogootInt(0)); err != nil {
		t.Fatalf("seed insert: %v", err)
	}

	env, err := d.InsertLocal(3, 4)
	if err != nil {
		t.Fatalf("InsertLocal: %v", err)
	}
	if !env.HasLeft || !env.HasRight || !env.Left.Equal(env.Right, d.order) {
		t.Fatalf("expected a point insertion (left == right), got %+v", env)
	}
	expect := LogootPosition{levels: []level{{atom: NewLogootInt(4), branch: a}}}
	if !env.Left.Equal(expect, d.order) {
		t.Fatalf("expected point A4, got %s", env.Left.Str())
	}
	if env.Length != 4 {
		t.Fatalf("expected Length passthrough of 4, got %d", env.Length)
	}
}

func TestInsertLogootIdempotent(t *testing.T) {
	d := NewDocument()
	b := NewBranchKey()

	if _, err := d.InsertLogoot(b, nil, nil, 5, NewLogootInt(0)); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	before := snapshot(d)

	if _, err := d.InsertLogoot(b, nil, nil, 5, NewLogootInt(0)); err != nil {
		t.Fatalf("replayed insert: %v", err)
	}
	after := snapshot(d)

	if diff := cmp.Diff(before, after); diff != "" {
		t.Fatalf("replaying an identical insertLogoot changed state (-before +after):\n%s", diff)
	}
}

func TestConcurrentBranchesAgreeOnRankOrder(t *testing.T) {
	order := NewBranchOrder()
	x := NewBranchKey()
	y := NewBranchKey()
	// Register x before y, so rank(x) < rank(y).
	order.Rank(x)
	order.Rank(y)

	seed := NewBranchKey()
	d1 := NewDocumentWithOrder(order)
	d2 := NewDocumentWithOrder(order)

	if _, err := d1.InsertLogoot(seed, nil, nil, 5, NewLogootInt(0)); err != nil {
		t.Fatalf("d1 seed: %v", err)
	}
	if _, err := d2.InsertLogoot(seed, nil, nil, 5, NewLogootInt(0)); err != nil {
		t.Fatalf("d2 seed: %v", err)
	}

	a3 := LogootPosition{levels: []level{{atom: NewLogootInt(3), branch: seed}}}
	a4 := LogootPosition{levels: []level{{atom: NewLogootInt(4), branch: seed}}}

	// Each replica independently inserts between the same neighbours on a
	// different branch, before either has seen the other's operation.
	if _, err := d1.InsertLogoot(x, &a3, &a4, 1, NewLogootInt(0)); err != nil {
		t.Fatalf("d1 insert on x: %v", err)
	}
	if _, err := d2.InsertLogoot(y, &a3, &a4, 1, NewLogootInt(0)); err != nil {
		t.Fatalf("d2 insert on y: %v", err)
	}

	// Cross-exchange: each replica now also applies the other's op.
	if _, err := d1.InsertLogoot(y, &a3, &a4, 1, NewLogootInt(0)); err != nil {
		t.Fatalf("d1 applying y's op: %v", err)
	}
	if _, err := d2.InsertLogoot(x, &a3, &a4, 1, NewLogootInt(0)); err != nil {
		t.Fatalf("d2 applying x's op: %v", err)
	}

	if diff := cmp.Diff(snapshot(d1), snapshot(d2)); diff != "" {
		t.Fatalf("replicas diverged after cross-exchange (-d1 +d2):\n%s", diff)
	}

	// Both must record the conflict symmetrically.
	var xNode, yNode *AnchorLogootNode
	d1.tree.operateOnAll(func(n *AnchorLogootNode) {
		if n.start.branchAt(n.start.Len()-1) == x && n.start.Len() == 2 {
			xNode = n
		}
		if n.start.branchAt(n.start.Len()-1) == y && n.start.Len() == 2 {
			yNode = n
		}
	})
	if xNode == nil || yNode == nil {
		t.Fatal("expected to find both the x-run and y-run nodes")
	}
	if !xNode.hasConflict(yNode) || !yNode.hasConflict(xNode) {
		t.Fatal("expected x-run and y-run to conflict symmetrically")
	}
}

func TestCommutativityOfDisjointInserts(t *testing.T) {
	order := NewBranchOrder()
	ba := NewBranchKey()
	bb := NewBranchKey()
	seed := NewBranchKey()

	run := func(first bool) []nodeSnapshot {
		d := NewDocumentWithOrder(order)
		if _, err := d.InsertLogoot(seed, nil, nil, 10, NewLogootInt(0)); err != nil {
			t.Fatalf("seed: %v", err)
		}
		a2 := LogootPosition{levels: []level{{atom: NewLogootInt(2), branch: seed}}}
		a3 := LogootPosition{levels: []level{{atom: NewLogootInt(3), branch: seed}}}
		a7 := LogootPosition{levels: []level{{atom: NewLogootInt(7), branch: seed}}}
		a8 := LogootPosition{levels: []level{{atom: NewLogootInt(8), branch: seed}}}

		apply := func(branch BranchKey, left, right LogootPosition) {
			if _, err := d.InsertLogoot(branch, &left, &right, 1, NewLogootInt(0)); err != nil {
				t.Fatalf("disjoint insert: %v", err)
			}
		}
		if first {
			apply(ba, a2, a3)
			apply(bb, a7, a8)
		} else {
			apply(bb, a7, a8)
			apply(ba, a2, a3)
		}
		return snapshot(d)
	}

	if diff := cmp.Diff(run(true), run(false)); diff != "" {
		t.Fatalf("disjoint inserts are not commutative (-ab +ba):\n%s", diff)
	}
}
