package ldm

// InsertEnvelope is the logical description insertLocal hands back to the
// caller: the neighbours a peer-facing insertLogoot call should generate a
// position between, the clock to stamp it with, and the element count.
type InsertEnvelope struct {
	Left     LogootPosition
	Right    LogootPosition
	HasLeft  bool
	HasRight bool
	Clk      LogootInt
	Length   int64
}

// InsertLocal computes the logical envelope for a local "insert length
// elements at offset start" edit (section 4.5).
func (d *Document) InsertLocal(start, length int64) (InsertEnvelope, error) {
	if start < 0 || length <= 0 {
		return InsertEnvelope{}, errInvalidArgument("insertLocal: start must be >= 0 and length > 0")
	}

	lesser, greater := d.tree.searchByLdocPoint(start)

	maxClk := NewLogootInt(-1)
	seenClk := false
	for _, n := range append(append([]*AnchorLogootNode{}, lesser...), greater...) {
		if n.typ != DataType && n.clk.Cmp(maxClk) > 0 {
			maxClk, seenClk = n.clk, true
		}
	}
	clk := NewLogootInt(0)
	if seenClk {
		clk = maxClk.AddInt64(1)
	}

	var dataLesser []*AnchorLogootNode
	for _, n := range lesser {
		if n.typ == DataType {
			dataLesser = append(dataLesser, n)
		}
	}
	if len(dataLesser) > 1 {
		return InsertEnvelope{}, errInternal("insertLocal: multiple DATA nodes touching the same local offset")
	}

	var lesserData *AnchorLogootNode
	if len(dataLesser) == 1 {
		lesserData = dataLesser[0]
	}

	if lesserData != nil && lesserData.ldocEnd() > start {
		point := lesserData.start.OffsetLowest(start - lesserData.ldocStart)
		return InsertEnvelope{
			Left: point, Right: point, HasLeft: true, HasRight: true,
			Clk: clk, Length: length,
		}, nil
	}

	env := InsertEnvelope{Clk: clk, Length: length}
	if lesserData != nil {
		env.Left, env.HasLeft = lesserData.End(), true
	}
	if greaterData := firstData(greater); greaterData != nil {
		env.Right, env.HasRight = greaterData.start, true
	}
	return env, nil
}

func firstData(nodes []*AnchorLogootNode) *AnchorLogootNode {
	for _, n := range nodes {
		if n.typ == DataType {
			return n
		}
	}
	return nil
}

// InsertLogoot generates fresh logical positions on branch between left and
// right for a run of length elements at clock clk, integrates them into the
// tree, and returns the local Operations the caller must apply (section
// 4.6). A missing left/right means the respective sentinel (DocStart /
// DocEnd).
func (d *Document) InsertLogoot(branch BranchKey, left, right *LogootPosition, length int64, clk LogootInt) ([]Operation, error) {
	if length <= 0 {
		return nil, errInvalidArgument("insertLogoot: length must be positive")
	}
	lb, rb := DocStart, DocEnd
	if left != nil {
		lb = *left
	}
	if right != nil {
		rb = *right
	}

	start, err := NewBetween(branch, length, lb, rb, d.order)
	if err != nil {
		return nil, err
	}
	end := start.OffsetLowest(length)

	queryLo := lb
	if !lb.IsDocStart() {
		queryLo = lb.InverseOffsetLowest(1)
	}
	if !lb.IsDocStart() {
		d.tree.ensureBoundary(lb)
	}
	d.tree.ensureBoundary(start)
	d.tree.ensureBoundary(end)
	if !rb.IsDocEnd() {
		d.tree.ensureBoundary(rb)
	}
	candidates := d.tree.prefRange(queryLo, rb)

	var ncLeft, skip, ncRight []*AnchorLogootNode
	var anchorLeftCandidates, anchorRightCandidates []*AnchorLogootNode
	for _, n := range candidates {
		switch {
		case n.start.Cmp(start, d.order) >= 0 && n.start.Cmp(end, d.order) < 0:
			skip = append(skip, n)
		case n.start.Cmp(start, d.order) < 0:
			if n.End().Cmp(lb, d.order) == 0 {
				anchorLeftCandidates = append(anchorLeftCandidates, n)
			}
			ncLeft = append(ncLeft, n)
		default:
			if n.start.Cmp(rb, d.order) == 0 {
				anchorRightCandidates = append(anchorRightCandidates, n)
			}
			ncRight = append(ncRight, n)
		}
	}

	var anchorLeft, anchorRight *AnchorLogootNode
	for _, n := range anchorLeftCandidates {
		if n.typ == DataType && n.End().Cmp(lb, d.order) == 0 {
			anchorLeft = n
		}
	}
	for _, n := range anchorRightCandidates {
		if n.typ == DataType && n.start.Cmp(rb, d.order) == 0 {
			anchorRight = n
		}
	}

	buf := &opBuffer{}
	filled := d.fillSkipRanges(skip, start, end, branch, length, clk, buf)

	d.linkFilledAnchors(filled, lb, rb)

	nlLesser := lastOf(ncLeft)
	if nlLesser == nil {
		nlLesser = anchorLeft
	}
	nlGreater := firstOf(ncRight)
	if nlGreater == nil {
		nlGreater = anchorRight
	}
	fillRangeConflicts(nlLesser, nlGreater, filled, d.order)

	if len(filled) > 0 {
		stoppos := filled[0].trueLeft()
		for i := len(ncLeft) - 1; i >= 0; i-- {
			if ncLeft[i].End().Cmp(stoppos, d.order) <= 0 {
				break
			}
			ncLeft[i].addConflict(filled[0])
			filled[0].addConflict(ncLeft[i])
		}
		last := filled[len(filled)-1]
		stopposR := last.trueRight()
		for _, n := range ncRight {
			if !stopposR.IsDocEnd() && n.start.Cmp(stopposR, d.order) >= 0 {
				break
			}
			n.addConflict(last)
			last.addConflict(n)
		}
	}

	if anchorLeft != nil {
		anchorLeft.reduceRight(start, d.order)
		for _, n := range filled {
			if n.hasConflict(anchorLeft) {
				n.dropConflict(anchorLeft)
				anchorLeft.dropConflict(n)
			} else {
				break
			}
		}
	}
	if anchorRight != nil {
		anchorRight.reduceLeft(end, d.order)
		for i := len(filled) - 1; i >= 0; i-- {
			if filled[i].hasConflict(anchorRight) {
				filled[i].dropConflict(anchorRight)
				anchorRight.dropConflict(filled[i])
			} else {
				break
			}
		}
	}

	composite := append(append(append([]*AnchorLogootNode{}, ncLeft...), filled...), ncRight...)
	patchRemovalAnchors(composite, d.order)

	return buf.ops, nil
}

func lastOf(nodes []*AnchorLogootNode) *AnchorLogootNode {
	if len(nodes) == 0 {
		return nil
	}
	return nodes[len(nodes)-1]
}

func firstOf(nodes []*AnchorLogootNode) *AnchorLogootNode {
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

// fillSkipRanges walks the skip-range band left to right, creating fresh
// DATA nodes over any gap and re-typing/re-clocking same-level nodes whose
// clock the new write dominates (section 4.6 step 3).
func (d *Document) fillSkipRanges(skip []*AnchorLogootNode, start, end LogootPosition, branch BranchKey, length int64, clk LogootInt, buf *opBuffer) []*AnchorLogootNode {
	var filled []*AnchorLogootNode
	lastLevelPos := start.L(start.Len() - 1)
	startLowest := lastLevelPos

	ensureDummy := func() {
		if len(filled) > 0 && filled[len(filled)-1].End().Cmp(end, d.order) == 0 {
			return
		}
		var anchorLdoc int64
		if len(filled) > 0 {
			last := filled[len(filled)-1]
			anchorLdoc = d.tree.ldocStartOf(last) + last.ldocLength()
		} else {
			anchorLdoc = d.tree.totalLdocLength()
		}
		dummy := newNode(end, 1, DummyType, clk)
		dummy.ldocStart = anchorLdoc
		d.tree.add(dummy)
	}

	// ownRun: only runs on start's own lineage hold atoms of the new run.
	ownRun := func(p LogootPosition) bool {
		if p.Len() != start.Len() || p.branchAt(p.Len()-1) != start.branchAt(start.Len()-1) {
			return false
		}
		for lv := 0; lv < p.Len()-1; lv++ {
			if p.L(lv).Cmp(start.L(lv)) != 0 || p.branchAt(lv) != start.branchAt(lv) {
				return false
			}
		}
		return true
	}

	for _, n := range skip {
		if !ownRun(n.start) {
			continue
		}
		if n.start.Cmp(start, d.order) > 0 {
			gapLen := n.start.L(n.start.Len() - 1).Sub(lastLevelPos).toInt64()
			if gapLen > 0 {
				gapStart := start.OffsetLowest(lastLevelPos.Sub(startLowest).toInt64())
				gn := newNode(gapStart, gapLen, DataType, clk)
				d.tree.add(gn)
				buf.insert(d.tree.ldocStartOf(gn), lastLevelPos.Sub(startLowest).toInt64(), gapLen)
				filled = append(filled, gn)
			}
		}
		if n.typ == DummyType {
			continue
		}
		if n.start.Len() == start.Len() && n.clk.Cmp(clk) <= 0 {
			preLdoc := d.tree.ldocStartOf(n)
			if n.typ == DataType {
				buf.remove(preLdoc, n.ldocLength())
			}
			n.typ = DataType
			n.clk = clk
			d.tree.refreshAlongPath(n.start)
			offset := n.start.L(n.start.Len() - 1).Sub(startLowest).toInt64()
			buf.insert(d.tree.ldocStartOf(n), offset, n.length)
			filled = append(filled, n)
		}
		lastLevelPos = n.start.L(n.start.Len() - 1).AddInt64(n.length)
	}

	if lastLevelPos.Cmp(end.L(end.Len()-1)) < 0 {
		gapLen := end.L(end.Len() - 1).Sub(lastLevelPos).toInt64()
		if gapLen > 0 {
			gapStart := start.OffsetLowest(lastLevelPos.Sub(startLowest).toInt64())
			gn := newNode(gapStart, gapLen, DataType, clk)
			d.tree.add(gn)
			buf.insert(d.tree.ldocStartOf(gn), lastLevelPos.Sub(startLowest).toInt64(), gapLen)
			filled = append(filled, gn)
		}
	}

	if len(filled) == 0 {
		ensureDummy()
	}
	return filled
}

// linkFilledAnchors chains anchors across the newly filled run (section 4.6
// step 4): each node's left_anchor reduces to its predecessor's logoot_end
// (or the outer left bound), and the predecessor's right_anchor reduces
// symmetrically.
func (d *Document) linkFilledAnchors(filled []*AnchorLogootNode, lb, rb LogootPosition) {
	if len(filled) == 0 {
		return
	}
	prevBound := lb
	for i, n := range filled {
		n.reduceLeft(prevBound, d.order)
		if i > 0 {
			filled[i-1].reduceRight(n.start, d.order)
		}
		prevBound = n.End()
	}
	filled[len(filled)-1].reduceRight(rb, d.order)
}

// RemoveLogoot retypes every DATA node in [start, start+length) whose clock
// the removal dominates to REMOVAL, patches tombstone anchor visibility, and
// returns the local Operations (section 4.7).
func (d *Document) RemoveLogoot(start LogootPosition, length int64, clk LogootInt) ([]Operation, error) {
	if length <= 0 {
		return nil, errInvalidArgument("removeLogoot: length must be positive")
	}
	end := start.OffsetLowest(length)

	d.tree.sliceNodesIntoRanges(start, end)
	all := d.tree.inorder()

	var lesserIdx, rmEnd int
	lesserIdx = len(all)
	rmEnd = len(all)
	for i, n := range all {
		if lesserIdx == len(all) && n.start.Cmp(start, d.order) >= 0 {
			lesserIdx = i
		}
		if n.start.Cmp(end, d.order) >= 0 {
			rmEnd = i
			break
		}
	}

	buf := &opBuffer{}
	rmRange := all[lesserIdx:rmEnd]
	for _, n := range rmRange {
		if n.typ == DataType && n.clk.Cmp(clk) <= 0 && n.start.Len() == start.Len() {
			ldocStart := d.tree.ldocStartOf(n)
			buf.remove(ldocStart, n.ldocLength())
			n.typ = RemovalType
			n.clk = clk
			d.tree.refreshAlongPath(n.start)
		}
	}

	lo := lesserIdx
	for lo > 0 && all[lo-1].typ != DataType {
		lo--
	}
	hi := rmEnd
	for hi < len(all) && all[hi].typ != DataType {
		hi++
	}
	composite := all[lo:hi]

	patchNewRemovalAnchors(composite, d.order)
	patchRemovalAnchors(composite, d.order)

	return buf.ops, nil
}
