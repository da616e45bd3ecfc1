// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package rtu

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ffutop/modbus-master/modbus"
)

func TestEncode(t *testing.T) {
	adu := ApplicationDataUnit{
		SlaveID: 0x01,
		Pdu:     modbus.ProtocolDataUnit{FunctionCode: 0x03, Data: []byte{0x00, 0x00, 0x00, 0x01}},
	}
	raw, err := adu.Encode()
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0x01, 0x03, 0x00, 0x00, 0x00, 0x01, 0x84, 0x0A}
	if !bytes.Equal(raw, want) {
		t.Errorf("Encode() = % X, want % X", raw, want)
	}
}

func TestEncodeTooLong(t *testing.T) {
	adu := ApplicationDataUnit{SlaveID: 0x01, Pdu: modbus.ProtocolDataUnit{FunctionCode: 0x10, Data: make([]byte, 253)}}
	if _, err := adu.Encode(); !errors.Is(err, modbus.ErrInvalidArgument) {
		t.Errorf("Encode() error = %v, want %v", err, modbus.ErrInvalidArgument)
	}
}

func TestDecode(t *testing.T) {
	adu, err := Decode([]byte{0x01, 0x03, 0x02, 0x12, 0x34, 0xB5, 0x33})
	if err != nil {
		t.Fatal(err)
	}
	if adu.SlaveID != 0x01 || adu.Pdu.FunctionCode != 0x03 {
		t.Errorf("Decode() header = %v/%v, want 1/3", adu.SlaveID, adu.Pdu.FunctionCode)
	}
	if !bytes.Equal(adu.Pdu.Data, []byte{0x02, 0x12, 0x34}) {
		t.Errorf("Decode() data = % X", adu.Pdu.Data)
	}
	if !adu.ChecksumOK() || adu.ChecksumError() != nil {
		t.Errorf("Decode() checksum reported bad: computed %#04x, found %#04x", adu.Computed(), adu.Checksum)
	}
}

func TestDecodeCorruptedCRC(t *testing.T) {
	adu, err := Decode([]byte{0x01, 0x03, 0x02, 0x12, 0x34, 0xB5, 0x34})
	if err != nil {
		t.Fatalf("Decode() error = %v, a bad crc must not fail decoding", err)
	}
	if adu.ChecksumOK() {
		t.Fatal("ChecksumOK() = true for corrupted frame")
	}
	if adu.Computed() != 0x33B5 || adu.Checksum != 0x34B5 {
		t.Errorf("checksums = %#04x/%#04x, want 0x33b5/0x34b5", adu.Computed(), adu.Checksum)
	}
	if !bytes.Equal(adu.Pdu.Data, []byte{0x02, 0x12, 0x34}) {
		t.Errorf("Decode() data = % X", adu.Pdu.Data)
	}

	var crcErr *modbus.ChecksumError
	if err := adu.ChecksumError(); !errors.As(err, &crcErr) || !errors.Is(err, modbus.ErrChecksum) {
		t.Errorf("ChecksumError() = %v, want *modbus.ChecksumError", err)
	}
}

func TestDecodeLength(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
	}{
		{"Empty", nil},
		{"Short", []byte{0x01, 0x03, 0x00}},
		{"Long", make([]byte, MaxSize+1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.raw)
			if !errors.Is(err, modbus.ErrFraming) {
				t.Errorf("Decode() error = %v, want %v", err, modbus.ErrFraming)
			}
		})
	}
}
