//go:build !nacl && !js && cgo
// +build !nacl,!js,cgo

package rlp

import (
	"reflect"
	"unsafe"
)

// byteArrayBytes returns a slice of the byte array v, reusing its backing
// storage via unsafe instead of Value.Slice's reflect-level copy. This is
// the cgo-enabled counterpart to safe.go's portable fallback.
func byteArrayBytes(v reflect.Value, length int) []byte {
	if length == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(v.UnsafeAddr())), length)
}
