package crypto

import "encoding/binary"

// Encoder builds the canonical deterministic byte encoding over a stable
// set of scalar/composite primitives: length-prefixed strings, fixed-width
// little-endian integers, tagged enums by declared ordinal, and an
// ordered-list length prefix. Two independent implementations of this
// layout must agree bit-for-bit, so every method here is a thin,
// unambiguous append — no variable-width encoding, no field reordering.
type Encoder struct {
	buf []byte
}

// NewEncoder returns an empty canonical encoder.
func NewEncoder() *Encoder { return &Encoder{} }

// Bytes returns the accumulated encoding.
func (e *Encoder) Bytes() []byte { return e.buf }

// String appends a length-prefixed UTF-8 string: 8-byte LE length then the
// raw bytes.
func (e *Encoder) String(s string) *Encoder {
	e.Uint64(uint64(len(s)))
	e.buf = append(e.buf, s...)
	return e
}

// RawBytes appends a length-prefixed byte slice.
func (e *Encoder) RawBytes(b []byte) *Encoder {
	e.Uint64(uint64(len(b)))
	e.buf = append(e.buf, b...)
	return e
}

// Uint64 appends a fixed-width 8-byte little-endian integer.
func (e *Encoder) Uint64(v uint64) *Encoder {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	e.buf = append(e.buf, b[:]...)
	return e
}

// Uint32 appends a fixed-width 4-byte little-endian integer.
func (e *Encoder) Uint32(v uint32) *Encoder {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	e.buf = append(e.buf, b[:]...)
	return e
}

// Int64 appends a fixed-width 8-byte little-endian signed integer.
func (e *Encoder) Int64(v int64) *Encoder {
	return e.Uint64(uint64(v))
}

// Tag appends a single-byte enum ordinal (a "tagged enum by declared
// ordinal").
func (e *Encoder) Tag(ordinal byte) *Encoder {
	e.buf = append(e.buf, ordinal)
	return e
}

// ListLen appends the length prefix for an ordered list; callers then
// encode each element themselves in order.
func (e *Encoder) ListLen(n int) *Encoder {
	return e.Uint64(uint64(n))
}

// StringMap appends a mapping string->string deterministically: entries
// are written in the order given by the caller (callers are responsible
// for presenting keys in a stable, usually sorted, order), each as a
// (key, value) string pair, preceded by an entry-count prefix.
func (e *Encoder) StringMap(keys []string, get func(string) string) *Encoder {
	e.ListLen(len(keys))
	for _, k := range keys {
		e.String(k)
		e.String(get(k))
	}
	return e
}
