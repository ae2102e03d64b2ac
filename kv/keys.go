package kv

import "fmt"

// Zpad20 zero-pads n to 20 decimal digits so lexicographic key order
// matches numeric order, per §4.2's key-encoding table.
func Zpad20(n uint64) string { return fmt.Sprintf("%020d", n) }

// Zpad10 zero-pads n to 10 decimal digits, used for the tx-index suffix of
// the block-ordered transaction pointer key.
func Zpad10(n uint64) string { return fmt.Sprintf("%010d", n) }
