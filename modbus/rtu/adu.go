// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package rtu

import (
	"github.com/ffutop/modbus-master/modbus"
	"github.com/ffutop/modbus-master/modbus/crc"
)

// ApplicationDataUnit is a decoded RTU frame.
type ApplicationDataUnit struct {
	SlaveID byte
	Pdu     modbus.ProtocolDataUnit
	// Checksum is the CRC found at the end of a decoded frame.
	Checksum uint16
	computed uint16
}

// Decode splits an RTU frame into slave id and PDU. A CRC mismatch is not
// an error here: the frame is still returned and ChecksumOK reports false.
func Decode(raw []byte) (adu *ApplicationDataUnit, err error) {
	length := len(raw)
	// Minimum size (including address, function and CRC)
	if length < MinSize {
		err = modbus.Framing(modbus.ModeRTU, "response length '%v' does not meet minimum '%v'", length, MinSize)
		return
	}
	if length > MaxSize {
		err = modbus.Framing(modbus.ModeRTU, "response length '%v' exceeds maximum '%v'", length, MaxSize)
		return
	}

	var c crc.CRC
	c.Reset().PushBytes(raw[0 : length-2])

	adu = &ApplicationDataUnit{}
	adu.SlaveID = raw[0]
	adu.Pdu.FunctionCode = raw[1]
	adu.Pdu.Data = append([]byte(nil), raw[2:length-2]...)
	adu.Checksum = uint16(raw[length-1])<<8 | uint16(raw[length-2])
	adu.computed = c.Value()
	return
}

// Encode encodes PDU in an RTU frame:
//
//	Slave Address   : 1 byte
//	Function        : 1 byte
//	Data            : 0 up to 252 bytes
//	CRC             : 2 bytes
func (adu *ApplicationDataUnit) Encode() (raw []byte, err error) {
	length := len(adu.Pdu.Data) + 4
	if length > MaxSize {
		err = modbus.InvalidArgument("length of data '%v' must not be bigger than '%v'", length, MaxSize)
		return
	}
	raw = make([]byte, length)

	raw[0] = adu.SlaveID
	raw[1] = adu.Pdu.FunctionCode
	copy(raw[2:], adu.Pdu.Data)

	// Append crc
	var c crc.CRC
	c.Reset().PushBytes(raw[0 : length-2])
	checksum := c.Value()

	raw[length-1] = byte(checksum >> 8)
	raw[length-2] = byte(checksum)
	adu.Checksum = checksum
	adu.computed = checksum
	return
}

// Computed returns the CRC calculated over address and PDU.
func (adu *ApplicationDataUnit) Computed() uint16 {
	return adu.computed
}

// ChecksumOK reports whether the received CRC matches the computed one.
func (adu *ApplicationDataUnit) ChecksumOK() bool {
	return adu.computed == adu.Checksum
}

// ChecksumError returns a *modbus.ChecksumError on mismatch, nil otherwise.
func (adu *ApplicationDataUnit) ChecksumError() error {
	if adu.ChecksumOK() {
		return nil
	}
	return &modbus.ChecksumError{Mode: modbus.ModeRTU, Computed: adu.computed, Found: adu.Checksum}
}
