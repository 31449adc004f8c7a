package ldm

import (
	"fmt"
	"strings"
)

type sentinelKind int8

const (
	notSentinel sentinelKind = iota
	startSentinel
	endSentinel
)

// level is one (atom, branch) pair of a LogootPosition.
type level struct {
	atom   LogootInt
	branch BranchKey
}

// LogootPosition is a variable-length, branch-tagged lexicographic key: an
// ordered sequence of levels, dense between any two distinct positions.
// The zero value is not a valid position; use DocStart, DocEnd or NewBetween.
type LogootPosition struct {
	sentinel sentinelKind
	levels   []level
}

// DocStart sorts less than every real position.
var DocStart = LogootPosition{sentinel: startSentinel}

// DocEnd sorts greater than every real position.
var DocEnd = LogootPosition{sentinel: endSentinel}

// IsDocStart reports whether p is the DocStart sentinel.
func (p LogootPosition) IsDocStart() bool { return p.sentinel == startSentinel }

// IsDocEnd reports whether p is the DocEnd sentinel.
func (p LogootPosition) IsDocEnd() bool { return p.sentinel == endSentinel }

// IsSentinel reports whether p is either sentinel.
func (p LogootPosition) IsSentinel() bool { return p.sentinel != notSentinel }

// Len returns the number of levels in p. Sentinels report length 0.
func (p LogootPosition) Len() int {
	return len(p.levels)
}

// L returns the atom at the given level. Panics if lv is out of range or p
// is a sentinel, mirroring the teacher's convention of only bounds-checking
// at public API edges (insertLocal/insertLogoot/removeLogoot), not on every
// internal accessor.
func (p LogootPosition) L(lv int) LogootInt {
	return p.levels[lv].atom
}

// branchAt returns the branch tag at the given level.
func (p LogootPosition) branchAt(lv int) BranchKey {
	return p.levels[lv].branch
}

// levelAt returns the level at lv and whether p actually has one there (a
// sentinel, or a position shorter than lv+1, reports ok=false).
func (p LogootPosition) levelAt(lv int) (level, bool) {
	if p.sentinel != notSentinel || lv >= len(p.levels) {
		return level{}, false
	}
	return p.levels[lv], true
}

// Cmp provides the total order over LogootPosition values (including the two
// sentinels): sentinels compare first, then levels compare lexicographically
// (atom first, branch rank as tiebreaker), and where one position is a
// proper prefix of the other, the shorter position sorts first.
func (p LogootPosition) Cmp(o LogootPosition, order *BranchOrder) int {
	if p.sentinel == startSentinel && o.sentinel == startSentinel {
		return 0
	}
	if p.sentinel == endSentinel && o.sentinel == endSentinel {
		return 0
	}
	if p.sentinel == startSentinel || o.sentinel == endSentinel {
		if p.sentinel == o.sentinel {
			return 0
		}
		return -1
	}
	if p.sentinel == endSentinel || o.sentinel == startSentinel {
		return 1
	}

	n := len(p.levels)
	if len(o.levels) < n {
		n = len(o.levels)
	}
	for i := 0; i < n; i++ {
		pl, ol := p.levels[i], o.levels[i]
		if c := pl.atom.Cmp(ol.atom); c != 0 {
			return c
		}
		if c := order.Compare(pl.branch, ol.branch); c != 0 {
			return c
		}
	}
	switch {
	case len(p.levels) < len(o.levels):
		return -1
	case len(p.levels) > len(o.levels):
		return 1
	default:
		return 0
	}
}

// Equal reports whether p and o denote the same position.
func (p LogootPosition) Equal(o LogootPosition, order *BranchOrder) bool {
	return p.Cmp(o, order) == 0
}

// OffsetLowest returns a new position equal to p with the lowest-level atom
// incremented by k.
func (p LogootPosition) OffsetLowest(k int64) LogootPosition {
	return p.withLowestOffset(k)
}

// InverseOffsetLowest returns a new position equal to p with the
// lowest-level atom decremented by k.
func (p LogootPosition) InverseOffsetLowest(k int64) LogootPosition {
	return p.withLowestOffset(-k)
}

func (p LogootPosition) withLowestOffset(delta int64) LogootPosition {
	if p.sentinel != notSentinel || len(p.levels) == 0 {
		return p
	}
	out := make([]level, len(p.levels))
	copy(out, p.levels)
	last := len(out) - 1
	out[last] = level{atom: out[last].atom.AddInt64(delta), branch: out[last].branch}
	return LogootPosition{levels: out}
}

// Str renders a debug string in the teacher's Str()-style BFS dump
// convention: a flat, dot-joined representation good enough to eyeball a
// failing convergence test.
func (p LogootPosition) Str() string {
	if p.sentinel == startSentinel {
		return "DocStart"
	}
	if p.sentinel == endSentinel {
		return "DocEnd"
	}
	parts := make([]string, len(p.levels))
	for i, lv := range p.levels {
		parts[i] = fmt.Sprintf("%s@%s", lv.atom.String(), lv.branch.String()[:8])
	}
	return strings.Join(parts, ".")
}
