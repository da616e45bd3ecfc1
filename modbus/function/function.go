// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

/*
Package function implements the request encoders and response decoders of
every supported Modbus function code.

Each function is a value type holding its request arguments. Encode builds
the request PDU, Decode parses a non-exception response PDU into a typed
result. Exception responses are detected by the caller before Decode runs.
*/
package function

import (
	"encoding/binary"

	"github.com/ffutop/modbus-master/modbus"
)

// Function is one request/response pair yielding a result of type T.
type Function[T any] interface {
	Code() byte
	Encode() (modbus.ProtocolDataUnit, error)
	Decode(pdu modbus.ProtocolDataUnit) (T, error)
}

// Protocol limits on request quantities.
const (
	MaxReadBits            = 2000
	MaxReadRegisters       = 125
	MaxWriteBits           = 1968
	MaxWriteRegisters      = 123
	MaxReadWriteRegisters  = 121
	maxFIFOCount           = 31
	maxFileRecordByteCount = 0xF5
	maxFileRecordNumber    = 0x270F
)

// dataBlock creates a sequence of uint16 data.
func dataBlock(value ...uint16) []byte {
	data := make([]byte, 2*len(value))
	for i, v := range value {
		binary.BigEndian.PutUint16(data[i*2:], v)
	}
	return data
}

// dataBlockSuffix creates a sequence of uint16 data and appends the suffix
// plus its length.
func dataBlockSuffix(suffix []byte, value ...uint16) []byte {
	length := 2 * len(value)
	data := make([]byte, length+1+len(suffix))
	for i, v := range value {
		binary.BigEndian.PutUint16(data[i*2:], v)
	}
	data[length] = uint8(len(suffix))
	copy(data[length+1:], suffix)
	return data
}

func checkQuantity(name string, quantity, max int) error {
	if quantity < 1 || quantity > max {
		return modbus.InvalidArgument("quantity of %s '%v' must be between '%v' and '%v'", name, quantity, 1, max)
	}
	return nil
}

func words(data []byte) []uint16 {
	values := make([]uint16, len(data)/2)
	for i := range values {
		values[i] = binary.BigEndian.Uint16(data[i*2:])
	}
	return values
}
