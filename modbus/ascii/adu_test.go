// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package ascii

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ffutop/modbus-master/modbus"
)

func TestEncode(t *testing.T) {
	adu := ApplicationDataUnit{
		SlaveID: 0x01,
		Pdu:     modbus.ProtocolDataUnit{FunctionCode: 0x03, Data: []byte{0x00, 0x6B, 0x00, 0x03}},
	}
	raw, err := adu.Encode()
	if err != nil {
		t.Fatal(err)
	}
	if want := ":0103006b00038e\r\n"; string(raw) != want {
		t.Errorf("Encode() = %q, want %q", raw, want)
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"Lowercase", ":0103006b00038e\r\n"},
		{"Uppercase", ":0103006B00038E\r\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adu, err := Decode([]byte(tt.raw))
			if err != nil {
				t.Fatal(err)
			}
			if adu.SlaveID != 0x01 || adu.Pdu.FunctionCode != 0x03 {
				t.Errorf("Decode() header = %v/%v, want 1/3", adu.SlaveID, adu.Pdu.FunctionCode)
			}
			if !bytes.Equal(adu.Pdu.Data, []byte{0x00, 0x6B, 0x00, 0x03}) {
				t.Errorf("Decode() data = % X", adu.Pdu.Data)
			}
			if !adu.ChecksumOK() {
				t.Errorf("ChecksumOK() = false, computed %#02x found %#02x", adu.Computed(), adu.Checksum)
			}
		})
	}
}

func TestDecodeCorruptedLRC(t *testing.T) {
	adu, err := Decode([]byte(":0183027b\r\n"))
	if err != nil {
		t.Fatalf("Decode() error = %v, a bad lrc must not fail decoding", err)
	}
	if adu.ChecksumOK() {
		t.Fatal("ChecksumOK() = true for corrupted frame")
	}
	if adu.Computed() != 0x7A || adu.Checksum != 0x7B {
		t.Errorf("checksums = %#02x/%#02x, want 0x7a/0x7b", adu.Computed(), adu.Checksum)
	}
	if adu.Pdu.FunctionCode != 0x83 || !bytes.Equal(adu.Pdu.Data, []byte{0x02}) {
		t.Errorf("Decode() pdu = %+v", adu.Pdu)
	}
	err = adu.ChecksumError()
	if !errors.Is(err, modbus.ErrChecksum) {
		t.Errorf("ChecksumError() = %v, want %v", err, modbus.ErrChecksum)
	}
	if !strings.Contains(err.Error(), "lrc incorrect") {
		t.Errorf("ChecksumError() = %q, want lrc message", err)
	}
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"Short", ":01037\r\n"},
		{"NoStart", "0103006b00038e\r\n"},
		{"NoCRLF", ":0103006b00038e\n\n"},
		{"OddDigits", ":0103006b00038\r\n"},
		{"NotHex", ":0103006g00038e\r\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.raw))
			var framingErr *modbus.FramingError
			if !errors.As(err, &framingErr) {
				t.Fatalf("Decode() error = %v, want FramingError", err)
			}
			if framingErr.Mode != modbus.ModeASCII {
				t.Errorf("FramingError.Mode = %v, want ascii", framingErr.Mode)
			}
		})
	}
}

func TestReadFrame(t *testing.T) {
	stream := "\x00\xff:01:0103006b00038e\r\n:01"
	r := strings.NewReader(stream)

	got, err := ReadFrame(r, time.Now().Add(time.Second))
	if err != nil {
		t.Fatal(err)
	}
	if want := ":0103006b00038e\r\n"; string(got) != want {
		t.Errorf("ReadFrame() = %q, want %q", got, want)
	}
	if r.Len() != 3 {
		t.Errorf("ReadFrame() left %d bytes unread, want 3", r.Len())
	}
}

func TestReadFrameTimeout(t *testing.T) {
	r := strings.NewReader(":0103006b00038e\r\n")
	if _, err := ReadFrame(r, time.Now().Add(-time.Millisecond)); !errors.Is(err, ErrRequestTimedOut) {
		t.Errorf("ReadFrame() error = %v, want %v", err, ErrRequestTimedOut)
	}
}

func TestReadFrameTooLong(t *testing.T) {
	r := strings.NewReader(":" + strings.Repeat("00", MaxSize))
	if _, err := ReadFrame(r, time.Now().Add(time.Second)); err == nil {
		t.Error("ReadFrame() should reject an unterminated frame")
	}
}
