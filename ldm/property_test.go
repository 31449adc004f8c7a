package ldm

// Property-style tests for the algebraic laws of spec.md section 8
// (commutativity, idempotence). Grounded on the property/convergence test
// style pulled in from the retrieval pack's other Go CRDT entry
// (brunokim/causal-tree), which is also where pgregory.net/rapid,
// github.com/stretchr/testify and github.com/google/go-cmp come from in
// this pack -- the teacher itself never tests this way, so these files are
// the one place that lineage's tools get wired in rather than beelog's own
// plain testing+manual-assert register.

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// TestPropertyInsertLogootIdempotent checks spec.md section 5's idempotence
// claim: replaying an identical insertLogoot call never changes state,
// across randomly generated (length, clock) pairs.
func TestPropertyInsertLogootIdempotent(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		length := rapid.IntRange(1, 8).Draw(rt, "length")
		clk := rapid.IntRange(0, 5).Draw(rt, "clk")

		d := NewDocument()
		b := NewBranchKey()

		_, err := d.InsertLogoot(b, nil, nil, int64(length), NewLogootInt(int64(clk)))
		require.NoError(rt, err)
		require.NoError(rt, d.SelfTest())
		before := snapshot(d)

		_, err = d.InsertLogoot(b, nil, nil, int64(length), NewLogootInt(int64(clk)))
		require.NoError(rt, err)

		if diff := cmp.Diff(before, snapshot(d)); diff != "" {
			rt.Fatalf("replaying an identical insertLogoot changed state (-before +after):\n%s", diff)
		}
	})
}

// TestPropertyConcurrentInsertOrderIndependent checks the commutativity law:
// a randomly sized seed run, with a random number of single-element
// concurrent insertions at distinct gaps, converges to the same BST
// regardless of which order those concurrent insertions are delivered in.
func TestPropertyConcurrentInsertOrderIndependent(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seedLen := rapid.IntRange(4, 16).Draw(rt, "seedLen")
		numOps := rapid.IntRange(1, 5).Draw(rt, "numOps")

		order := NewBranchOrder()
		seed := NewBranchKey()

		type concurrentOp struct {
			branch BranchKey
			atom   int64
		}
		var ops []concurrentOp
		seenAtoms := map[int64]bool{}
		for i := 0; i < numOps; i++ {
			atom := int64(rapid.IntRange(1, seedLen-1).Draw(rt, fmt.Sprintf("atom%d", i)))
			if seenAtoms[atom] {
				continue
			}
			seenAtoms[atom] = true
			ops = append(ops, concurrentOp{branch: NewBranchKey(), atom: atom})
		}
		if len(ops) == 0 {
			return
		}

		run := func(perm []int) []nodeSnapshot {
			d := NewDocumentWithOrder(order)
			_, err := d.InsertLogoot(seed, nil, nil, int64(seedLen), NewLogootInt(0))
			require.NoError(rt, err)

			for _, idx := range perm {
				o := ops[idx]
				left := LogootPosition{levels: []level{{atom: NewLogootInt(o.atom), branch: seed}}}
				right := LogootPosition{levels: []level{{atom: NewLogootInt(o.atom + 1), branch: seed}}}
				_, err := d.InsertLogoot(o.branch, &left, &right, 1, NewLogootInt(0))
				require.NoError(rt, err)
			}
			require.NoError(rt, d.SelfTest())
			return snapshot(d)
		}

		forward := make([]int, len(ops))
		backward := make([]int, len(ops))
		for i := range ops {
			forward[i] = i
			backward[i] = len(ops) - 1 - i
		}

		if diff := cmp.Diff(run(forward), run(backward)); diff != "" {
			rt.Fatalf("concurrent disjoint inserts are not order-independent (-forward +backward):\n%s", diff)
		}
	})
}

// TestPropertyRemoveThenHigherClockInsertResurrects checks the
// last-writer-wins clock rule of spec.md section 5: a removeLogoot at clock
// c followed by an insertLogoot covering the same range at a clock > c
// always ends with that range back in DATA state, regardless of the
// randomly generated run length and clock gap.
func TestPropertyRemoveThenHigherClockInsertResurrects(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		length := rapid.IntRange(1, 6).Draw(rt, "length")
		removeClk := rapid.IntRange(0, 3).Draw(rt, "removeClk")
		clkGap := rapid.IntRange(1, 3).Draw(rt, "clkGap")

		d := NewDocument()
		b := NewBranchKey()

		_, err := d.InsertLogoot(b, nil, nil, int64(length), NewLogootInt(0))
		require.NoError(rt, err)

		start := LogootPosition{levels: []level{{atom: NewLogootInt(1), branch: b}}}
		_, err = d.RemoveLogoot(start, int64(length), NewLogootInt(int64(removeClk)))
		require.NoError(rt, err)
		require.Equal(rt, int64(0), d.Len(), "expected the run to be fully tombstoned")

		higherClk := NewLogootInt(int64(removeClk + clkGap))
		_, err = d.InsertLogoot(b, nil, nil, int64(length), higherClk)
		require.NoError(rt, err)
		require.NoError(rt, d.SelfTest())

		require.Equal(rt, int64(length), d.Len(), "expected the higher-clock insert to resurrect the run")
	})
}
