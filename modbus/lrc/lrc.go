// Copyright (c) 2014 Quoc-Viet Nguyen. All rights reserved.
// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package lrc implements the longitudinal redundancy check of Modbus ASCII
// frames. It is always computed over the decoded bytes, never the hex text.
package lrc

// LRC accumulates the byte sum of a frame.
type LRC struct {
	sum uint8
}

// Reset clears the sum.
func (l *LRC) Reset() *LRC {
	l.sum = 0
	return l
}

// PushByte adds one byte.
func (l *LRC) PushByte(b byte) *LRC {
	l.sum += b
	return l
}

// PushBytes adds every byte of data.
func (l *LRC) PushBytes(data []byte) *LRC {
	for _, b := range data {
		l.sum += b
	}
	return l
}

// Value returns the two's complement of the sum.
func (l *LRC) Value() byte {
	return ^l.sum + 1
}

// Checksum returns the LRC of data.
func Checksum(data []byte) byte {
	var l LRC
	return l.Reset().PushBytes(data).Value()
}
