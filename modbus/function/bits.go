// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package function

// PackBits packs coil values eight to a byte, the first coil of each group
// in the least significant bit. Padding bits are zero.
func PackBits(values []bool) []byte {
	packed := make([]byte, (len(values)+7)/8)
	for i, v := range values {
		if v {
			packed[i/8] |= 1 << uint(i%8)
		}
	}
	return packed
}

// UnpackBits is the inverse of PackBits. Bits beyond quantity are dropped.
func UnpackBits(packed []byte, quantity int) []bool {
	if n := len(packed) * 8; quantity > n {
		quantity = n
	}
	values := make([]bool, quantity)
	for i := range values {
		values[i] = packed[i/8]&(1<<uint(i%8)) != 0
	}
	return values
}
