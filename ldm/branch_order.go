package ldm

import (
	"sync"

	"github.com/google/uuid"
)

// BranchKey is an opaque, process-wide unique branch identifier. A site
// (replica, editing session, or concurrent edit origin) is assigned one
// BranchKey per append-only position-generation lineage. Branch identifiers
// carry no intrinsic order: ordering only comes from the rank a BranchOrder
// registry assigns on first sight.
type BranchKey uuid.UUID

// NewBranchKey mints a fresh, globally unique branch identifier.
func NewBranchKey() BranchKey {
	return BranchKey(uuid.New())
}

// String renders the key in the standard UUID form, used by debug dumps and
// the external branch-id table of spec.md section 6.
func (k BranchKey) String() string {
	return uuid.UUID(k).String()
}

// BranchOrder is a process-wide registry assigning each BranchKey a unique
// rank, in the order keys are first observed. Comparison between branch keys
// always goes through a BranchOrder's rank, never through the raw key bytes:
// insertion order into the registry is observable only via rank, exactly as
// spec.md section 3 requires.
type BranchOrder struct {
	mu    sync.Mutex
	ranks map[BranchKey]int
	order []BranchKey
}

// NewBranchOrder returns an empty registry.
func NewBranchOrder() *BranchOrder {
	return &BranchOrder{ranks: make(map[BranchKey]int)}
}

// Rank returns k's rank, assigning the next available rank the first time k
// is seen.
func (bo *BranchOrder) Rank(k BranchKey) int {
	bo.mu.Lock()
	defer bo.mu.Unlock()

	if r, ok := bo.ranks[k]; ok {
		return r
	}
	r := len(bo.order)
	bo.ranks[k] = r
	bo.order = append(bo.order, k)
	return r
}

// Compare orders two branch keys by rank, assigning ranks as a side effect
// for any key not yet observed.
func (bo *BranchOrder) Compare(a, b BranchKey) int {
	if a == b {
		return 0
	}
	ra, rb := bo.Rank(a), bo.Rank(b)
	switch {
	case ra < rb:
		return -1
	case ra > rb:
		return 1
	default:
		return 0
	}
}

// Len returns the number of distinct branches observed so far.
func (bo *BranchOrder) Len() int {
	bo.mu.Lock()
	defer bo.mu.Unlock()
	return len(bo.order)
}

// KeyAt reverses Rank: it returns the branch key assigned the given rank, and
// false if no branch has ever been given that rank. This is what turns the
// registry into the "small-integer table" spec.md section 6 asks external
// serialization to map branch identifiers through -- a rank is already a
// dense, first-sight-ordered small integer, so BranchOrder doubles as that
// table instead of a second one being introduced.
func (bo *BranchOrder) KeyAt(rank int) (BranchKey, bool) {
	bo.mu.Lock()
	defer bo.mu.Unlock()
	if rank < 0 || rank >= len(bo.order) {
		return BranchKey{}, false
	}
	return bo.order[rank], true
}
