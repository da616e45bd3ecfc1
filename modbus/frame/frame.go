// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package frame dispatches ADU encoding and decoding on the wire mode.
package frame

import (
	"github.com/ffutop/modbus-master/modbus"
	"github.com/ffutop/modbus-master/modbus/ascii"
	"github.com/ffutop/modbus-master/modbus/rtu"
)

// Frame is a decoded ADU. When ChecksumOK is false the PDU is still filled
// in and Computed/Found carry both checksums.
type Frame struct {
	SlaveID    byte
	PDU        modbus.ProtocolDataUnit
	ChecksumOK bool
	Computed   uint16
	Found      uint16
}

// ChecksumError returns a *modbus.ChecksumError for a mismatching frame.
func (f *Frame) ChecksumError(mode modbus.Mode) error {
	if f.ChecksumOK {
		return nil
	}
	return &modbus.ChecksumError{Mode: mode, Computed: f.Computed, Found: f.Found}
}

// Encode wraps pdu for slaveID in the given mode.
func Encode(mode modbus.Mode, slaveID byte, pdu modbus.ProtocolDataUnit) ([]byte, error) {
	if size := len(pdu.Data) + 1; size > modbus.MaxPDUSize {
		return nil, modbus.InvalidArgument("length of pdu '%v' must not be bigger than '%v'", size, modbus.MaxPDUSize)
	}
	switch mode {
	case modbus.ModeRTU:
		adu := rtu.ApplicationDataUnit{SlaveID: slaveID, Pdu: pdu}
		return adu.Encode()
	case modbus.ModeASCII:
		adu := ascii.ApplicationDataUnit{SlaveID: slaveID, Pdu: pdu}
		return adu.Encode()
	default:
		return nil, modbus.InvalidArgument("unknown mode '%v'", mode)
	}
}

// Decode parses raw in the given mode.
func Decode(mode modbus.Mode, raw []byte) (*Frame, error) {
	switch mode {
	case modbus.ModeRTU:
		adu, err := rtu.Decode(raw)
		if err != nil {
			return nil, err
		}
		return &Frame{
			SlaveID:    adu.SlaveID,
			PDU:        adu.Pdu,
			ChecksumOK: adu.ChecksumOK(),
			Computed:   adu.Computed(),
			Found:      adu.Checksum,
		}, nil
	case modbus.ModeASCII:
		adu, err := ascii.Decode(raw)
		if err != nil {
			return nil, err
		}
		return &Frame{
			SlaveID:    adu.SlaveID,
			PDU:        adu.Pdu,
			ChecksumOK: adu.ChecksumOK(),
			Computed:   uint16(adu.Computed()),
			Found:      uint16(adu.Checksum),
		}, nil
	default:
		return nil, modbus.InvalidArgument("unknown mode '%v'", mode)
	}
}
