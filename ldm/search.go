package ldm

// searchByLdocPoint buckets every node by its relation to a local offset:
// lesser holds nodes with ldoc_start <= point (including one that spans it),
// greater holds nodes with ldoc_start >= point. A DATA node spanning point
// strictly appears only in lesser; insertLocal distinguishes the spanning
// case by checking its ldoc_end.
func (t *orderStatisticTree) searchByLdocPoint(point int64) (lesser, greater []*AnchorLogootNode) {
	for _, n := range t.inorder() {
		ldocStart := t.ldocStartOf(n)
		n.ldocStart = ldocStart
		if ldocStart <= point {
			lesser = append(lesser, n)
		}
		if ldocStart >= point {
			greater = append(greater, n)
		}
	}
	return lesser, greater
}

// prefRange returns every node whose logoot_start falls in [lo, hi]
// inclusive, under preferentialCmp, refreshing each node's cached ldoc_start
// along the way so callers can read it directly.
func (t *orderStatisticTree) prefRange(lo, hi LogootPosition) []*AnchorLogootNode {
	var out []*AnchorLogootNode
	for _, n := range t.inorder() {
		n.ldocStart = t.ldocStartOf(n)
		if n.start.Cmp(lo, t.order) >= 0 && n.start.Cmp(hi, t.order) <= 0 {
			out = append(out, n)
		}
	}
	return out
}
