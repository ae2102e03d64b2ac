package rlp

import (
	"encoding/binary"
	"fmt"
	"reflect"
)

// item is a parsed top-level RLP value: either a byte string (isList
// false) or a list of sub-items (isList true, raw holds the concatenated
// child encodings, re-split on demand by decodeValue).
type item struct {
	isList bool
	data   []byte // string payload, or list body for re-parsing
}

// Decode parses buf as a single RLP value into dst, which must be a
// pointer.
func Decode(buf []byte, dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("rlp: Decode requires a non-nil pointer")
	}
	it, rest, err := parseItem(buf)
	if err != nil {
		return err
	}
	if len(rest) != 0 {
		return fmt.Errorf("rlp: %d trailing bytes", len(rest))
	}
	return decodeInto(it, rv.Elem())
}

func parseItem(buf []byte) (item, []byte, error) {
	if len(buf) == 0 {
		return item{}, nil, fmt.Errorf("rlp: unexpected end of input")
	}
	b0 := buf[0]
	switch {
	case b0 < 0x80:
		return item{data: buf[:1]}, buf[1:], nil
	case b0 < 0xb8:
		n := int(b0 - 0x80)
		if len(buf) < 1+n {
			return item{}, nil, fmt.Errorf("rlp: short string")
		}
		return item{data: buf[1 : 1+n]}, buf[1+n:], nil
	case b0 < 0xc0:
		lenLen := int(b0 - 0xb7)
		if len(buf) < 1+lenLen {
			return item{}, nil, fmt.Errorf("rlp: short string length")
		}
		n := int(readLen(buf[1 : 1+lenLen]))
		start := 1 + lenLen
		if len(buf) < start+n {
			return item{}, nil, fmt.Errorf("rlp: short string")
		}
		return item{data: buf[start : start+n]}, buf[start+n:], nil
	case b0 < 0xf8:
		n := int(b0 - 0xc0)
		if len(buf) < 1+n {
			return item{}, nil, fmt.Errorf("rlp: short list")
		}
		return item{isList: true, data: buf[1 : 1+n]}, buf[1+n:], nil
	default:
		lenLen := int(b0 - 0xf7)
		if len(buf) < 1+lenLen {
			return item{}, nil, fmt.Errorf("rlp: short list length")
		}
		n := int(readLen(buf[1 : 1+lenLen]))
		start := 1 + lenLen
		if len(buf) < start+n {
			return item{}, nil, fmt.Errorf("rlp: short list")
		}
		return item{isList: true, data: buf[start : start+n]}, buf[start+n:], nil
	}
}

func readLen(b []byte) uint64 {
	var full [8]byte
	copy(full[8-len(b):], b)
	return binary.BigEndian.Uint64(full[:])
}

// listItems splits a list item's body into its child items.
func listItems(it item) ([]item, error) {
	var out []item
	rest := it.data
	for len(rest) > 0 {
		var sub item
		var err error
		sub, rest, err = parseItem(rest)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, nil
}

func decodeInto(it item, v reflect.Value) error {
	switch v.Kind() {
	case reflect.Ptr:
		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}
		return decodeInto(it, v.Elem())
	case reflect.String:
		v.SetString(string(it.data))
		return nil
	case reflect.Bool:
		v.SetBool(len(it.data) == 1 && it.data[0] == 1)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v.SetUint(readLen(it.data))
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v.SetInt(int64(readLen(it.data)))
		return nil
	case reflect.Slice, reflect.Array:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			if v.Kind() == reflect.Array {
				reflect.Copy(v, reflect.ValueOf(it.data))
				return nil
			}
			b := make([]byte, len(it.data))
			copy(b, it.data)
			v.SetBytes(b)
			return nil
		}
		items, err := listItems(it)
		if err != nil {
			return err
		}
		slice := reflect.MakeSlice(v.Type(), len(items), len(items))
		for i, sub := range items {
			if err := decodeInto(sub, slice.Index(i)); err != nil {
				return err
			}
		}
		v.Set(slice)
		return nil
	case reflect.Struct:
		items, err := listItems(it)
		if err != nil {
			return err
		}
		idx := 0
		for i := 0; i < v.NumField(); i++ {
			if v.Type().Field(i).PkgPath != "" {
				continue
			}
			if idx >= len(items) {
				break
			}
			if err := decodeInto(items[idx], v.Field(i)); err != nil {
				return err
			}
			idx++
		}
		return nil
	case reflect.Map:
		items, err := listItems(it)
		if err != nil {
			return err
		}
		m := reflect.MakeMapWithSize(v.Type(), len(items))
		for _, pairIt := range items {
			pair, err := listItems(pairIt)
			if err != nil || len(pair) != 2 {
				return fmt.Errorf("rlp: malformed map entry")
			}
			k := reflect.New(v.Type().Key()).Elem()
			val := reflect.New(v.Type().Elem()).Elem()
			if err := decodeInto(pair[0], k); err != nil {
				return err
			}
			if err := decodeInto(pair[1], val); err != nil {
				return err
			}
			m.SetMapIndex(k, val)
		}
		v.Set(m)
		return nil
	default:
		return fmt.Errorf("rlp: unsupported decode kind %s", v.Kind())
	}
}
