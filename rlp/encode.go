// Package rlp implements a recursive-length-prefix style encoder for the
// P2P wire messages (C9): every value is either a byte string or a list of
// values, each prefixed with its own length, the same encoding discipline
// go-ethereum's rlp package uses for its wire format. Only safe.go
// survived retrieval, so the reflection-based encoder/decoder here is
// rebuilt out from that one file in the same idiom.
package rlp

import (
	"encoding/binary"
	"fmt"
	"reflect"
)

// Encode returns the RLP encoding of val as a newly allocated byte slice.
func Encode(val any) ([]byte, error) {
	return encodeValue(reflect.ValueOf(val))
}

func encodeValue(v reflect.Value) ([]byte, error) {
	switch v.Kind() {
	case reflect.Ptr:
		if v.IsNil() {
			return encodeString(nil), nil
		}
		return encodeValue(v.Elem())
	case reflect.String:
		return encodeString([]byte(v.String())), nil
	case reflect.Bool:
		if v.Bool() {
			return encodeString([]byte{1}), nil
		}
		return encodeString(nil), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return encodeString(uintBytes(v.Uint())), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return encodeString(intBytes(v.Int())), nil
	case reflect.Slice, reflect.Array:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			var b []byte
			if v.Kind() == reflect.Array {
				b = byteArrayBytes(v, v.Len())
			} else {
				b = v.Bytes()
			}
			return encodeString(b), nil
		}
		var items [][]byte
		for i := 0; i < v.Len(); i++ {
			enc, err := encodeValue(v.Index(i))
			if err != nil {
				return nil, err
			}
			items = append(items, enc)
		}
		return encodeList(items), nil
	case reflect.Struct:
		var items [][]byte
		for i := 0; i < v.NumField(); i++ {
			if v.Type().Field(i).PkgPath != "" {
				continue // unexported
			}
			enc, err := encodeValue(v.Field(i))
			if err != nil {
				return nil, err
			}
			items = append(items, enc)
		}
		return encodeList(items), nil
	case reflect.Map:
		// Encoded as a list of [key, value] pairs, sorted by key string
		// for determinism (wire messages only ever map string->string).
		keys := v.MapKeys()
		pairs := make([][2]string, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, [2]string{fmt.Sprintf("%v", k.Interface()), fmt.Sprintf("%v", v.MapIndex(k).Interface())})
		}
		sortPairs(pairs)
		var items [][]byte
		for _, p := range pairs {
			kEnc := encodeString([]byte(p[0]))
			vEnc := encodeString([]byte(p[1]))
			items = append(items, encodeList([][]byte{kEnc, vEnc}))
		}
		return encodeList(items), nil
	case reflect.Interface:
		if v.IsNil() {
			return encodeString(nil), nil
		}
		return encodeValue(v.Elem())
	default:
		return nil, fmt.Errorf("rlp: unsupported kind %s", v.Kind())
	}
}

func sortPairs(pairs [][2]string) {
	for i := 1; i < len(pairs); i++ {
		for j := i; j > 0 && pairs[j-1][0] > pairs[j][0]; j-- {
			pairs[j-1], pairs[j] = pairs[j], pairs[j-1]
		}
	}
}

func uintBytes(u uint64) []byte {
	if u == 0 {
		return nil
	}
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], u)
	i := 0
	for i < 8 && b[i] == 0 {
		i++
	}
	return b[i:]
}

func intBytes(n int64) []byte { return uintBytes(uint64(n)) }

// encodeString encodes a byte string per the length-prefix rules: a single
// byte in [0x00,0x7f] encodes itself; otherwise a length header followed
// by the raw bytes.
func encodeString(b []byte) []byte {
	if len(b) == 1 && b[0] < 0x80 {
		return b
	}
	return append(lengthPrefix(0x80, len(b)), b...)
}

// encodeList wraps pre-encoded items with a list length header.
func encodeList(items [][]byte) []byte {
	var body []byte
	for _, it := range items {
		body = append(body, it...)
	}
	return append(lengthPrefix(0xc0, len(body)), body...)
}

func lengthPrefix(base byte, n int) []byte {
	if n < 56 {
		return []byte{base + byte(n)}
	}
	lb := uintBytes(uint64(n))
	return append([]byte{base + 55 + byte(len(lb))}, lb...)
}
