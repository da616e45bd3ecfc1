// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package function

import (
	"encoding/binary"

	"github.com/ffutop/modbus-master/modbus"
)

// reader walks the data of a response PDU with bounds checks. Every read
// past the end yields a framing error naming the function.
type reader struct {
	function byte
	data     []byte
	off      int
}

// open checks the function code of pdu and returns a reader over its data.
func open(code byte, pdu modbus.ProtocolDataUnit) (*reader, error) {
	if pdu.FunctionCode != code {
		return nil, modbus.MalformedPDU(code, "response function code '%v' does not match request '%v'", pdu.FunctionCode, code)
	}
	return &reader{function: code, data: pdu.Data}, nil
}

func (r *reader) remaining() int {
	return len(r.data) - r.off
}

func (r *reader) need(n int) error {
	if n < 0 || r.remaining() < n {
		return modbus.MalformedPDU(r.function, "need '%v' bytes at offset '%v', have '%v'", n, r.off, r.remaining())
	}
	return nil
}

func (r *reader) uint8() (byte, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.data[r.off]
	r.off++
	return v, nil
}

func (r *reader) uint16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint16(r.data[r.off:])
	r.off += 2
	return v, nil
}

func (r *reader) bytes(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	v := append([]byte(nil), r.data[r.off:r.off+n]...)
	r.off += n
	return v, nil
}

func (r *reader) rest() []byte {
	v := append([]byte(nil), r.data[r.off:]...)
	r.off = len(r.data)
	return v
}

// byteCount reads a one byte count and checks that exactly that many bytes
// follow.
func (r *reader) byteCount() (int, error) {
	count, err := r.uint8()
	if err != nil {
		return 0, err
	}
	if int(count) != r.remaining() {
		return 0, modbus.MalformedPDU(r.function, "response data size '%v' does not match count '%v'", r.remaining(), count)
	}
	return int(count), nil
}

// end checks that the whole PDU has been consumed.
func (r *reader) end() error {
	if r.remaining() != 0 {
		return modbus.MalformedPDU(r.function, "'%v' unexpected trailing bytes", r.remaining())
	}
	return nil
}

// echo reads a 16-bit field and checks it against the request value.
func (r *reader) echo(field string, want uint16) error {
	got, err := r.uint16()
	if err != nil {
		return err
	}
	if got != want {
		return modbus.MalformedPDU(r.function, "response %s '%v' does not match request '%v'", field, got, want)
	}
	return nil
}
