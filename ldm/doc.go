package ldm

import (
	"fmt"
	"strings"
)

// Document is the public handle on one replica's List Document Model
// instance: an order-statistic tree of anchored runs plus the branch
// registry shared by every position comparison made against it. It is not
// safe for concurrent use -- section 5 treats the LDM as strictly
// single-threaded, with no internal synchronization of its own.
type Document struct {
	tree  *orderStatisticTree
	order *BranchOrder
}

// NewDocument returns an empty replica, with a fresh BranchOrder.
func NewDocument() *Document {
	order := NewBranchOrder()
	return &Document{tree: newOrderStatisticTree(order), order: order}
}

// NewDocumentWithOrder returns an empty replica sharing an existing
// BranchOrder, for tests and harnesses comparing multiple replicas under a
// single branch-rank assignment.
func NewDocumentWithOrder(order *BranchOrder) *Document {
	return &Document{tree: newOrderStatisticTree(order), order: order}
}

// BranchOrder exposes the replica's branch-rank registry.
func (d *Document) BranchOrder() *BranchOrder { return d.order }

// Len returns the current materialized local-document length.
func (d *Document) Len() int64 { return d.tree.totalLdocLength() }

// Str renders every node in logical order, one per line, for debugging and
// failing-test output.
func (d *Document) Str() string {
	var b strings.Builder
	d.tree.operateOnAll(func(n *AnchorLogootNode) {
		n.ldocStart = d.tree.ldocStartOf(n)
		b.WriteString(n.Str())
		b.WriteString("\n")
	})
	return b.String()
}

// LogootPositionAtLocalOffset resolves the logical start position of the
// run currently occupying local offset `offset`, the translation a caller
// needs to turn a local "remove at offset" edit into a removeLogoot call.
// Not one of the named merge algorithms: a thin convenience built for
// callers (and the scenario runner) driving removeLogoot from local
// offsets, the same way insertLocal drives insertLogoot.
func (d *Document) LogootPositionAtLocalOffset(offset int64) (LogootPosition, error) {
	lesser, _ := d.tree.searchByLdocPoint(offset)
	for i := len(lesser) - 1; i >= 0; i-- {
		n := lesser[i]
		if n.typ == DataType && n.ldocStart <= offset && offset < n.ldocEnd() {
			return n.start.OffsetLowest(offset - n.ldocStart), nil
		}
	}
	return LogootPosition{}, errInvalidArgument("no DATA node covers the given local offset")
}

// GenerateAndInsert is the common local-edit path: turn an InsertLocal
// envelope straight into a position-generating InsertLogoot call on the
// given branch, the way a caller echoing its own local edit back through the
// merge machinery would.
func (d *Document) GenerateAndInsert(branch BranchKey, env InsertEnvelope) ([]Operation, error) {
	var left, right *LogootPosition
	if env.HasLeft {
		left = &env.Left
	}
	if env.HasRight {
		right = &env.Right
	}
	return d.InsertLogoot(branch, left, right, env.Length, env.Clk)
}

// SelfTest verifies the node-local section 3 invariants (strictly increasing
// starts with no node starting on one of its predecessor's own atoms,
// contiguous ldoc offsets, positive lengths, tight anchors) and that every
// conflict_with entry is symmetric, raising a Fatal error naming the first
// violation found. It does not recompute conflict sets from the anchor rule.
func (d *Document) SelfTest() error {
	nodes := d.tree.inorder()

	var prev *AnchorLogootNode
	var runningLdoc int64

	for _, n := range nodes {
		if n.length < 1 {
			return errFatal(fmt.Sprintf("node %s has non-positive length", n.start.Str()))
		}
		if prev != nil {
			if n.start.Cmp(prev.start, d.order) <= 0 {
				return errFatal(fmt.Sprintf("logical order violated at %s", n.start.Str()))
			}
			if _, inside := alignedSplitOffset(prev, n.start); inside {
				return errFatal(fmt.Sprintf("logical overlap at %s", n.start.Str()))
			}
		}

		wantLdoc := d.tree.ldocStartOf(n)
		if wantLdoc != runningLdoc {
			return errFatal(fmt.Sprintf("ldoc_start mismatch at %s: tree says %d, running total is %d",
				n.start.Str(), wantLdoc, runningLdoc))
		}
		runningLdoc += n.ldocLength()

		if n.leftAnchor.Cmp(n.start, d.order) > 0 {
			return errFatal(fmt.Sprintf("left_anchor wider than logoot_start at %s", n.start.Str()))
		}
		if n.rightAnchor.Cmp(n.End(), d.order) < 0 {
			return errFatal(fmt.Sprintf("right_anchor narrower than logoot_end at %s", n.start.Str()))
		}

		for o := range n.conflictWith {
			if !o.hasConflict(n) {
				return errFatal(fmt.Sprintf("asymmetric conflict_with between %s and %s", n.start.Str(), o.start.Str()))
			}
		}

		prev = n
	}

	if runningLdoc != d.tree.totalLdocLength() {
		return errFatal("total ldoc length mismatch against tree aggregate")
	}
	return nil
}
