package ldm

// splitAt divides n into two runs at the logical position `at`, which the
// caller (ensureBoundary) has already established is one of n's own atoms:
// same level count and prefix as n.start, offset strictly between 0 and
// n.length at the lowest level. n is shrunk in place to become the left
// fragment [n.start, at); a freshly allocated right fragment [at, n.End())
// is inserted into the tree and returned. Anchors and the conflict set are
// duplicated onto the new fragment: a split never changes which other runs
// overlap the original logical interval, so both halves inherit the
// whole-run relationships of their parent.
//
// Grounded on spec.md section 4.4 (sliceNodesIntoRanges): callers use
// splitAt to guarantee every range boundary in a merge lands exactly on a
// node edge, before any anchor or conflict bookkeeping runs.
func (t *orderStatisticTree) splitAt(n *AnchorLogootNode, at LogootPosition, offset int64) *AnchorLogootNode {
	tailLen := n.length - offset

	right := newNode(at, tailLen, n.typ, n.clk)
	right.leftAnchor = n.leftAnchor
	right.rightAnchor = n.rightAnchor
	for o := range n.conflictWith {
		right.conflictWith[o] = struct{}{}
		o.addConflict(right)
	}

	n.length = offset

	t.add(right)
	t.refreshAlongPath(n.start)
	return right
}

// alignedSplitOffset reports whether `at` denotes an atom strictly inside
// n's own run -- not merely a position that sorts somewhere in
// [n.start, n.End()) under the total order, which a longer, prefix-extending
// position (e.g. one level deeper, anchored at one of n's interior atoms)
// would also do. A run's own atoms are exactly n.start, n.start+1, ...,
// n.start+n.length-1 at the lowest level, sharing every other level
// (including the lowest level's branch tag) with n.start verbatim, so `at`
// only qualifies when it has the same level count and the same levels above
// the lowest, the same branch at the lowest level, and a lowest-level atom
// offset k with 0 < k < n.length. Splitting on anything else would zero out
// n's length and relocate its atoms onto a bogus nested fragment.
func alignedSplitOffset(n *AnchorLogootNode, at LogootPosition) (int64, bool) {
	if at.IsSentinel() || at.Len() != n.start.Len() {
		return 0, false
	}
	last := at.Len() - 1
	for lv := 0; lv < last; lv++ {
		al, aok := at.levelAt(lv)
		nl, nok := n.start.levelAt(lv)
		if !aok || !nok || al.atom.Cmp(nl.atom) != 0 || al.branch != nl.branch {
			return 0, false
		}
	}
	if at.branchAt(last) != n.start.branchAt(last) {
		return 0, false
	}
	k := at.L(last).Sub(n.start.L(last)).toInt64()
	if k <= 0 || k >= n.length {
		return 0, false
	}
	return k, true
}

// sliceNodesIntoRanges ensures both boundaries of [lo, hi) fall exactly on
// node edges in the tree, splitting any run straddling either boundary.
// Returns the in-order slice of nodes whose logical interval lies entirely
// within [lo, hi) after slicing.
func (t *orderStatisticTree) sliceNodesIntoRanges(lo, hi LogootPosition) []*AnchorLogootNode {
	t.ensureBoundary(lo)
	t.ensureBoundary(hi)

	var out []*AnchorLogootNode
	for _, n := range t.inorder() {
		if n.start.Cmp(lo, t.order) >= 0 && n.start.Cmp(hi, t.order) < 0 {
			out = append(out, n)
		}
	}
	return out
}

// ensureBoundary splits whichever node (if any) straddles the logical
// position `at` at one of its own atoms, so that afterward some node's
// logoot_start equals `at` exactly, or `at` is outside every existing run.
// A position that merely sorts inside [n.start, n.End()) without aligning to
// one of n's atoms -- a longer position nested one level deeper at one of
// n's interior atoms, say -- is not a straddle of n at all: it belongs
// logically underneath whichever single atom of n it extends, and leaves n
// itself untouched.
func (t *orderStatisticTree) ensureBoundary(at LogootPosition) {
	if at.IsDocStart() || at.IsDocEnd() {
		return
	}
	for _, n := range t.inorder() {
		if n.start.Cmp(at, t.order) < 0 && at.Cmp(n.End(), t.order) < 0 {
			if offset, ok := alignedSplitOffset(n, at); ok {
				t.splitAt(n, at, offset)
			}
			return
		}
	}
}
