package ldm

import "math/big"

// BigInt is an arbitrary-precision signed integer used as a LogootPosition
// atom. Values that fit in an int64 are kept inline so the overwhelmingly
// common case (small position digits) never allocates a math/big.Int; the
// struct only escalates to the big.Int fallback once a value or an
// intermediate sum/difference would overflow int64.
//
// No third-party arbitrary-precision library appears anywhere in the
// examples pack, and math/big is the standard library's own answer to this
// exact problem, so the fallback path is built directly on it rather than
// reimplementing limb arithmetic by hand.
type BigInt struct {
	inline int64
	big    *big.Int
}

// NewBigInt wraps a native int64 value.
func NewBigInt(v int64) BigInt {
	return BigInt{inline: v}
}

func (b BigInt) isBig() bool {
	return b.big != nil
}

func (b BigInt) asBig() *big.Int {
	if b.big != nil {
		return b.big
	}
	return big.NewInt(b.inline)
}

// Copy returns a value-semantics copy; safe to mutate independently.
func (b BigInt) Copy() BigInt {
	if b.big == nil {
		return b
	}
	return BigInt{big: new(big.Int).Set(b.big)}
}

// Add returns b+o.
func (b BigInt) Add(o BigInt) BigInt {
	if !b.isBig() && !o.isBig() {
		if !addOverflows(b.inline, o.inline) {
			return NewBigInt(b.inline + o.inline)
		}
	}
	return BigInt{big: new(big.Int).Add(b.asBig(), o.asBig())}
}

// Sub returns b-o.
func (b BigInt) Sub(o BigInt) BigInt {
	if !b.isBig() && !o.isBig() {
		if !subOverflows(b.inline, o.inline) {
			return NewBigInt(b.inline - o.inline)
		}
	}
	return BigInt{big: new(big.Int).Sub(b.asBig(), o.asBig())}
}

// AddInt64 returns b+k for a native increment.
func (b BigInt) AddInt64(k int64) BigInt {
	return b.Add(NewBigInt(k))
}

// SubInt64 returns b-k for a native decrement.
func (b BigInt) SubInt64(k int64) BigInt {
	return b.Sub(NewBigInt(k))
}

// Cmp returns -1, 0 or 1 as b is less than, equal to, or greater than o.
func (b BigInt) Cmp(o BigInt) int {
	if !b.isBig() && !o.isBig() {
		switch {
		case b.inline < o.inline:
			return -1
		case b.inline > o.inline:
			return 1
		default:
			return 0
		}
	}
	return b.asBig().Cmp(o.asBig())
}

// CmpInt64 compares b against a native value k.
func (b BigInt) CmpInt64(k int64) int {
	return b.Cmp(NewBigInt(k))
}

// String returns the big-endian decimal digit string used by the position
// serialization format of spec.md section 6.
func (b BigInt) String() string {
	return b.asBig().String()
}

// ParseBigInt parses the decimal digit string produced by String, for the
// deserialization half of spec.md section 6. Reports ok=false on malformed
// input rather than panicking, since it only ever runs on bytes that arrived
// over the wire.
func ParseBigInt(s string) (BigInt, bool) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return BigInt{}, false
	}
	if v.IsInt64() {
		return NewBigInt(v.Int64()), true
	}
	return BigInt{big: v}, true
}

// toInt64 narrows b to a native int64, for the rare internal callers (run
// length bookkeeping) that need a concrete count rather than a comparison.
// Values outside the int64 range saturate rather than wrap, since no
// document run is ever actually that long.
func (b BigInt) toInt64() int64 {
	if !b.isBig() {
		return b.inline
	}
	if b.big.IsInt64() {
		return b.big.Int64()
	}
	if b.big.Sign() < 0 {
		return minInt64
	}
	return maxInt64
}

func addOverflows(a, c int64) bool {
	if c > 0 {
		return a > maxInt64-c
	}
	if c < 0 {
		return a < minInt64-c
	}
	return false
}

func subOverflows(a, c int64) bool {
	if c < 0 {
		return a > maxInt64+c
	}
	if c > 0 {
		return a < minInt64+c
	}
	return false
}

const (
	maxInt64 = int64(^uint64(0) >> 1)
	minInt64 = -maxInt64 - 1
)
