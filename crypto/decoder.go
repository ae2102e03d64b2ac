package crypto

import (
	"encoding/binary"
	"fmt"
)

// Decoder reads back values written by Encoder, in the same order they
// were written. It is deliberately the mirror image of Encoder: no
// self-describing tags beyond what Encoder itself emits.
type Decoder struct {
	buf []byte
	pos int
	err error
}

func NewDecoder(b []byte) *Decoder { return &Decoder{buf: b} }

func (d *Decoder) Err() error { return d.err }

func (d *Decoder) need(n int) bool {
	if d.err != nil {
		return false
	}
	if d.pos+n > len(d.buf) {
		d.err = fmt.Errorf("crypto: decoder: need %d bytes, have %d", n, len(d.buf)-d.pos)
		return false
	}
	return true
}

func (d *Decoder) Uint64() uint64 {
	if !d.need(8) {
		return 0
	}
	v := binary.LittleEndian.Uint64(d.buf[d.pos:])
	d.pos += 8
	return v
}

func (d *Decoder) Uint32() uint32 {
	if !d.need(4) {
		return 0
	}
	v := binary.LittleEndian.Uint32(d.buf[d.pos:])
	d.pos += 4
	return v
}

func (d *Decoder) Int64() int64 { return int64(d.Uint64()) }

func (d *Decoder) Tag() byte {
	if !d.need(1) {
		return 0
	}
	v := d.buf[d.pos]
	d.pos++
	return v
}

func (d *Decoder) RawBytes() []byte {
	n := d.Uint64()
	if !d.need(int(n)) {
		return nil
	}
	out := make([]byte, n)
	copy(out, d.buf[d.pos:d.pos+int(n)])
	d.pos += int(n)
	return out
}

func (d *Decoder) String() string { return string(d.RawBytes()) }

func (d *Decoder) ListLen() int { return int(d.Uint64()) }

func (d *Decoder) StringMap() map[string]string {
	n := d.ListLen()
	m := make(map[string]string, n)
	for i := 0; i < n; i++ {
		k := d.String()
		v := d.String()
		if d.err != nil {
			return m
		}
		m[k] = v
	}
	return m
}
