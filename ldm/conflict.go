package ldm

// updateNeighborConflicts updates self's conflict_with set against an
// already-placed neighbour `last`, per the anchor rule of section 4.3. It
// returns false once no conflict exists, signalling to callers that sweeping
// further away from `last` cannot find one either (anchors only shrink
// monotonically across a sorted run).
func updateNeighborConflicts(self, last *AnchorLogootNode, order *BranchOrder) bool {
	if self == nil || last == nil {
		return false
	}
	var p, n *AnchorLogootNode
	if last.start.Cmp(self.start, order) < 0 {
		p, n = last, self
	} else {
		p, n = self, last
	}
	if conflicts(p, n, order) {
		self.addConflict(last)
		last.addConflict(self)
		return true
	}
	return false
}

// fillRangeConflicts sweeps a freshly filled run of nodes forward against
// its left neighbour and backward against its right neighbour, stopping
// each sweep as soon as updateNeighborConflicts reports no conflict.
func fillRangeConflicts(nlLesser, nlGreater *AnchorLogootNode, filled []*AnchorLogootNode, order *BranchOrder) {
	if nlLesser != nil {
		last := nlLesser
		for _, n := range filled {
			if !updateNeighborConflicts(n, last, order) {
				break
			}
			last = n
		}
	}
	if nlGreater != nil {
		last := nlGreater
		for i := len(filled) - 1; i >= 0; i-- {
			if !updateNeighborConflicts(filled[i], last, order) {
				break
			}
			last = filled[i]
		}
	}
}

// patchRemovalAnchors is the two-direction tombstone-visibility scan of
// section 4.8: a DATA node's anchor reach must extend through any tombstone
// it conceptually spans, so a later node on the far side of that tombstone
// still records the conflict.
func patchRemovalAnchors(nodes []*AnchorLogootNode, order *BranchOrder) {
	patchRemovalAnchorsForward(nodes, order)
	patchRemovalAnchorsBackward(nodes, order)
}

func patchRemovalAnchorsForward(nodes []*AnchorLogootNode, order *BranchOrder) {
	scan := make(map[*AnchorLogootNode]struct{})
	for _, cur := range nodes {
		if cur.typ == DataType {
			scan = map[*AnchorLogootNode]struct{}{cur: {}}
			for o := range cur.conflictWith {
				scan[o] = struct{}{}
			}
			for snode := range scan {
				if snode.trueRight().IsDocEnd() {
					delete(scan, snode)
				}
			}
			continue
		}
		for snode := range scan {
			apos := snode.trueRight()
			if apos.Cmp(cur.start, order) < 0 {
				delete(scan, snode)
				continue
			}
			if apos.Cmp(cur.End(), order) < 0 {
				snode.reduceRight(cur.End(), order)
				snode.addConflict(cur)
				cur.addConflict(snode)
			}
		}
	}
}

func patchRemovalAnchorsBackward(nodes []*AnchorLogootNode, order *BranchOrder) {
	scan := make(map[*AnchorLogootNode]struct{})
	for i := len(nodes) - 1; i >= 0; i-- {
		cur := nodes[i]
		if cur.typ == DataType {
			scan = map[*AnchorLogootNode]struct{}{cur: {}}
			for o := range cur.conflictWith {
				scan[o] = struct{}{}
			}
			for snode := range scan {
				if snode.trueLeft().IsDocStart() {
					delete(scan, snode)
				}
			}
			continue
		}
		for snode := range scan {
			apos := snode.trueLeft()
			if apos.Cmp(cur.End(), order) > 0 {
				delete(scan, snode)
				continue
			}
			if apos.Cmp(cur.start, order) > 0 {
				snode.reduceLeft(cur.start, order)
				snode.addConflict(cur)
				cur.addConflict(snode)
			}
		}
	}
}

// patchNewRemovalAnchors is removeLogoot's private pass (section 4.7 step
// 5): each freshly created REMOVAL's anchors are pulled inward to abut the
// nearest still-live neighbour it actually overshoots, and that neighbour is
// dropped from any removal's conflict_with it no longer reaches.
func patchNewRemovalAnchors(nodes []*AnchorLogootNode, order *BranchOrder) {
	for _, cur := range nodes {
		if cur.typ == DataType {
			continue
		}
		for o := range cur.conflictWith {
			if o.typ != DataType {
				continue
			}
			if o.trueRight().Cmp(cur.start, order) == 0 || (o.trueRight().Cmp(cur.start, order) > 0 && o.start.Cmp(cur.start, order) < 0) {
				cur.reduceLeft(o.trueRight(), order)
			}
			if o.trueLeft().Cmp(cur.End(), order) == 0 || (o.trueLeft().Cmp(cur.End(), order) < 0 && o.start.Cmp(cur.End(), order) >= 0) {
				cur.reduceRight(o.trueLeft(), order)
			}
			if !conflicts(minNode(o, cur, order), maxNode(o, cur, order), order) {
				o.dropConflict(cur)
				cur.dropConflict(o)
			}
		}
	}
}

func minNode(a, b *AnchorLogootNode, order *BranchOrder) *AnchorLogootNode {
	if a.start.Cmp(b.start, order) <= 0 {
		return a
	}
	return b
}

func maxNode(a, b *AnchorLogootNode, order *BranchOrder) *AnchorLogootNode {
	if a.start.Cmp(b.start, order) <= 0 {
		return b
	}
	return a
}
