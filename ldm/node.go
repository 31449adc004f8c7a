package ldm

import "fmt"

// NodeType classifies an AnchorLogootNode's role in the structure.
type NodeType int8

const (
	// DataType nodes hold live elements, materialized in the local document.
	DataType NodeType = iota

	// RemovalType nodes are tombstones: removed, but retained to preserve
	// anchor visibility and convergence.
	RemovalType

	// DummyType nodes are zero-length structural placeholders used only
	// during merges, to give the operation buffer a stable insertion anchor
	// when a range would otherwise be empty.
	DummyType
)

func (t NodeType) String() string {
	switch t {
	case DataType:
		return "DATA"
	case RemovalType:
		return "REMOVAL"
	case DummyType:
		return "DUMMY"
	default:
		return "UNKNOWN"
	}
}

// AnchorLogootNode is a maximal contiguous run of logical positions sharing
// a single type, clock, and pair of anchors. It is the unit stored in the
// order-statistic tree.
type AnchorLogootNode struct {
	start  LogootPosition // logoot_start: the run's first logical key
	length int64          // number of consecutive logical atoms
	typ    NodeType
	clk    LogootInt // removal clock: highest clock the run was authoritatively updated at

	ldocStart int64 // local offset of the run's first element

	leftAnchor  LogootPosition
	rightAnchor LogootPosition

	conflictWith map[*AnchorLogootNode]struct{}

	// tree linkage, mirroring the teacher's avlTreeEntry fields.
	left, right *AnchorLogootNode
	height      int
	sumLen      int64 // subtree aggregate of ldocLength, maintained by orderStatisticTree
}

func newNode(start LogootPosition, length int64, typ NodeType, clk LogootInt) *AnchorLogootNode {
	return &AnchorLogootNode{
		start:        start,
		length:       length,
		typ:          typ,
		clk:          clk,
		leftAnchor:   DocStart,
		rightAnchor:  DocEnd,
		conflictWith: make(map[*AnchorLogootNode]struct{}),
		height:       1,
	}
}

// End returns logoot_end = logoot_start.offsetLowest(length).
func (n *AnchorLogootNode) End() LogootPosition {
	return n.start.OffsetLowest(n.length)
}

// ldocLength is the local-document span: length for DATA nodes, 0 for
// REMOVAL/DUMMY (tombstones and placeholders occupy no local offsets).
func (n *AnchorLogootNode) ldocLength() int64 {
	if n.typ == DataType {
		return n.length
	}
	return 0
}

func (n *AnchorLogootNode) ldocEnd() int64 {
	return n.ldocStart + n.ldocLength()
}

// trueLeft/trueRight are the anchor accessors of spec.md section 3: for a
// DATA node these are its stored anchors outright; for a REMOVAL they are
// the same stored values (the surviving anchors), the distinction only
// mattering to the patch passes which must treat removals as transparent
// when deciding visibility.
func (n *AnchorLogootNode) trueLeft() LogootPosition  { return n.leftAnchor }
func (n *AnchorLogootNode) trueRight() LogootPosition { return n.rightAnchor }

// reduceLeft moves n's left anchor inward (never outward): pos becomes the
// new left anchor only if it is strictly greater than the current one.
func (n *AnchorLogootNode) reduceLeft(pos LogootPosition, order *BranchOrder) {
	if pos.Cmp(n.leftAnchor, order) > 0 {
		n.leftAnchor = pos
	}
}

// reduceRight moves n's right anchor inward (never outward).
func (n *AnchorLogootNode) reduceRight(pos LogootPosition, order *BranchOrder) {
	if pos.Cmp(n.rightAnchor, order) < 0 {
		n.rightAnchor = pos
	}
}

func (n *AnchorLogootNode) addConflict(o *AnchorLogootNode) {
	if n == nil || o == nil || n == o {
		return
	}
	n.conflictWith[o] = struct{}{}
}

func (n *AnchorLogootNode) hasConflict(o *AnchorLogootNode) bool {
	_, ok := n.conflictWith[o]
	return ok
}

func (n *AnchorLogootNode) dropConflict(o *AnchorLogootNode) {
	delete(n.conflictWith, o)
}

// conflicts reports whether p (the logically smaller node) and q (larger)
// are in conflict, per spec.md section 4.3: p conflicts with q iff p's
// true right anchor reaches DocEnd or overshoots q's start.
func conflicts(p, q *AnchorLogootNode, order *BranchOrder) bool {
	tr := p.trueRight()
	if tr.IsDocEnd() {
		return true
	}
	return tr.Cmp(q.start, order) > 0
}

// Str renders a short debug line for the node, in the teacher's
// "(ind|key)"-flavoured Str() convention.
func (n *AnchorLogootNode) Str() string {
	return fmt.Sprintf("(%s len=%d %s clk=%s ldoc=[%d,%d))",
		n.start.Str(), n.length, n.typ, n.clk.String(), n.ldocStart, n.ldocEnd())
}
