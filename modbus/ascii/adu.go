// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package ascii implements Modbus ASCII framing:
//
//	':' address(2 hex) function(2 hex) data(2N hex) lrc(2 hex) CR LF
package ascii

import (
	"encoding/hex"

	"github.com/ffutop/modbus-master/modbus"
	"github.com/ffutop/modbus-master/modbus/lrc"
)

const (
	Start = ':'
	CR    = '\r'
	LF    = '\n'

	// MinSize is ':' + address(2) + function(2) + lrc(2) + CR LF.
	MinSize = 9
	// MaxSize is ':' + 2*(address + PDU + lrc) + CR LF.
	MaxSize = 1 + 2*(1+modbus.MaxPDUSize+1) + 2
)

// ApplicationDataUnit is a decoded ASCII frame.
type ApplicationDataUnit struct {
	SlaveID byte
	Pdu     modbus.ProtocolDataUnit
	// Checksum is the LRC found at the end of a decoded frame.
	Checksum byte
	computed byte
}

// Encode renders address and PDU as lowercase hex between ':' and CR LF.
// The LRC is taken over the binary bytes, not over the hex text.
func (adu *ApplicationDataUnit) Encode() (raw []byte, err error) {
	if len(adu.Pdu.Data)+1 > modbus.MaxPDUSize {
		err = modbus.InvalidArgument("length of pdu '%v' must not be bigger than '%v'", len(adu.Pdu.Data)+1, modbus.MaxPDUSize)
		return
	}
	bin := make([]byte, 0, len(adu.Pdu.Data)+3)
	bin = append(bin, adu.SlaveID, adu.Pdu.FunctionCode)
	bin = append(bin, adu.Pdu.Data...)

	var l lrc.LRC
	checksum := l.Reset().PushBytes(bin).Value()
	bin = append(bin, checksum)

	raw = make([]byte, 1+hex.EncodedLen(len(bin))+2)
	raw[0] = Start
	hex.Encode(raw[1:], bin)
	raw[len(raw)-2] = CR
	raw[len(raw)-1] = LF

	adu.Checksum = checksum
	adu.computed = checksum
	return
}

// Decode parses an ASCII frame. Upper and lower case hex digits are both
// accepted. An LRC mismatch is not an error: ChecksumOK reports it.
func Decode(raw []byte) (adu *ApplicationDataUnit, err error) {
	length := len(raw)
	if length < MinSize {
		err = modbus.Framing(modbus.ModeASCII, "response length '%v' does not meet minimum '%v'", length, MinSize)
		return
	}
	if length > MaxSize {
		err = modbus.Framing(modbus.ModeASCII, "response length '%v' exceeds maximum '%v'", length, MaxSize)
		return
	}
	if raw[0] != Start {
		err = modbus.Framing(modbus.ModeASCII, "response start %q is not %q", raw[0], Start)
		return
	}
	if raw[length-2] != CR || raw[length-1] != LF {
		err = modbus.Framing(modbus.ModeASCII, "response is not terminated by CR LF")
		return
	}
	text := raw[1 : length-2]
	if len(text)%2 != 0 {
		err = modbus.Framing(modbus.ModeASCII, "response has odd number of hex digits '%v'", len(text))
		return
	}
	bin := make([]byte, hex.DecodedLen(len(text)))
	if _, err = hex.Decode(bin, text); err != nil {
		err = modbus.Framing(modbus.ModeASCII, "invalid hex: %v", err)
		return
	}

	var l lrc.LRC
	l.Reset().PushBytes(bin[:len(bin)-1])

	adu = &ApplicationDataUnit{}
	adu.SlaveID = bin[0]
	adu.Pdu.FunctionCode = bin[1]
	adu.Pdu.Data = bin[2 : len(bin)-1]
	adu.Checksum = bin[len(bin)-1]
	adu.computed = l.Value()
	return
}

// Computed returns the LRC calculated over the decoded address and PDU.
func (adu *ApplicationDataUnit) Computed() byte {
	return adu.computed
}

func (adu *ApplicationDataUnit) ChecksumOK() bool {
	return adu.computed == adu.Checksum
}

// ChecksumError returns a *modbus.ChecksumError on mismatch, nil otherwise.
func (adu *ApplicationDataUnit) ChecksumError() error {
	if adu.ChecksumOK() {
		return nil
	}
	return &modbus.ChecksumError{Mode: modbus.ModeASCII, Computed: uint16(adu.computed), Found: uint16(adu.Checksum)}
}
