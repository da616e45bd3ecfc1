// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package rtu

const (
	MinSize = 4
	MaxSize = 256

	ExceptionSize = 5
)

// Fixed response sizes (whole ADU, including address and CRC).
const (
	writeEchoSize       = 8  // address(1) func(1) field(2) field(2) crc(2)
	exceptionStatusSize = 5  // address(1) func(1) status(1) crc(2)
	maskWriteSize       = 10 // address(1) func(1) ref(2) and(2) or(2) crc(2)
	deviceIDHeaderSize  = 8  // address func mei code conformity more next count
	fifoHeaderSize      = 4  // address(1) func(1) byte count(2)
	byteCountHeaderSize = 3  // address(1) func(1) byte count(1)
	maxByteCount        = MaxSize - 5
)
