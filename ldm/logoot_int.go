package ldm

// LogootInt is a thin wrapper giving value semantics to BigInt specifically
// for use as a LogootPosition atom. It exists as its own type, distinct from
// BigInt, so that callers never confuse a raw arithmetic quantity with a
// position digit.
type LogootInt struct {
	BigInt
}

// NewLogootInt wraps a native int64 atom value.
func NewLogootInt(v int64) LogootInt {
	return LogootInt{NewBigInt(v)}
}

// ParseLogootInt parses a digit string produced by String, for deserializing
// a position atom per spec.md section 6.
func ParseLogootInt(s string) (LogootInt, bool) {
	b, ok := ParseBigInt(s)
	if !ok {
		return LogootInt{}, false
	}
	return LogootInt{b}, true
}

// Copy returns an independent copy.
func (a LogootInt) Copy() LogootInt {
	return LogootInt{a.BigInt.Copy()}
}

// Add returns a+o as a LogootInt.
func (a LogootInt) Add(o LogootInt) LogootInt {
	return LogootInt{a.BigInt.Add(o.BigInt)}
}

// AddInt64 returns a+k.
func (a LogootInt) AddInt64(k int64) LogootInt {
	return LogootInt{a.BigInt.AddInt64(k)}
}

// Sub returns a-o as a LogootInt.
func (a LogootInt) Sub(o LogootInt) LogootInt {
	return LogootInt{a.BigInt.Sub(o.BigInt)}
}

// SubInt64 returns a-k.
func (a LogootInt) SubInt64(k int64) LogootInt {
	return LogootInt{a.BigInt.SubInt64(k)}
}

// Cmp compares two atoms.
func (a LogootInt) Cmp(o LogootInt) int {
	return a.BigInt.Cmp(o.BigInt)
}

// toInt64 narrows a to a native int64; see BigInt.toInt64.
func (a LogootInt) toInt64() int64 {
	return a.BigInt.toInt64()
}
