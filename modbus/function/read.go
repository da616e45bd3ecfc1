// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package function

import (
	"github.com/ffutop/modbus-master/modbus"
)

// ReadCoils reads 1 to 2000 contiguous coils.
type ReadCoils struct {
	Address  uint16
	Quantity uint16
}

func (f ReadCoils) Code() byte { return modbus.FuncCodeReadCoils }

func (f ReadCoils) Encode() (modbus.ProtocolDataUnit, error) {
	return encodeReadBits(f.Code(), f.Address, f.Quantity)
}

func (f ReadCoils) Decode(pdu modbus.ProtocolDataUnit) ([]bool, error) {
	return decodeReadBits(f.Code(), f.Quantity, pdu)
}

// ReadDiscreteInputs reads 1 to 2000 contiguous discrete inputs.
type ReadDiscreteInputs struct {
	Address  uint16
	Quantity uint16
}

func (f ReadDiscreteInputs) Code() byte { return modbus.FuncCodeReadDiscreteInputs }

func (f ReadDiscreteInputs) Encode() (modbus.ProtocolDataUnit, error) {
	return encodeReadBits(f.Code(), f.Address, f.Quantity)
}

func (f ReadDiscreteInputs) Decode(pdu modbus.ProtocolDataUnit) ([]bool, error) {
	return decodeReadBits(f.Code(), f.Quantity, pdu)
}

// Request:
//
//	Function code         : 1 byte
//	Starting address      : 2 bytes
//	Quantity              : 2 bytes
func encodeReadBits(code byte, address, quantity uint16) (modbus.ProtocolDataUnit, error) {
	if err := checkQuantity("bits", int(quantity), MaxReadBits); err != nil {
		return modbus.ProtocolDataUnit{}, err
	}
	return modbus.ProtocolDataUnit{FunctionCode: code, Data: dataBlock(address, quantity)}, nil
}

// Response:
//
//	Function code         : 1 byte
//	Byte count            : 1 byte
//	Status                : N* bytes (=N or N+1)
func decodeReadBits(code byte, quantity uint16, pdu modbus.ProtocolDataUnit) ([]bool, error) {
	r, err := open(code, pdu)
	if err != nil {
		return nil, err
	}
	count, err := r.byteCount()
	if err != nil {
		return nil, err
	}
	if want := (int(quantity) + 7) / 8; count != want {
		return nil, modbus.MalformedPDU(code, "response byte count '%v' does not match quantity '%v'", count, quantity)
	}
	return UnpackBits(r.rest(), int(quantity)), nil
}

// ReadHoldingRegisters reads 1 to 125 contiguous holding registers.
type ReadHoldingRegisters struct {
	Address  uint16
	Quantity uint16
}

func (f ReadHoldingRegisters) Code() byte { return modbus.FuncCodeReadHoldingRegisters }

func (f ReadHoldingRegisters) Encode() (modbus.ProtocolDataUnit, error) {
	return encodeReadRegisters(f.Code(), f.Address, f.Quantity)
}

func (f ReadHoldingRegisters) Decode(pdu modbus.ProtocolDataUnit) ([]uint16, error) {
	return decodeRegisters(f.Code(), f.Quantity, pdu)
}

// ReadInputRegisters reads 1 to 125 contiguous input registers.
type ReadInputRegisters struct {
	Address  uint16
	Quantity uint16
}

func (f ReadInputRegisters) Code() byte { return modbus.FuncCodeReadInputRegisters }

func (f ReadInputRegisters) Encode() (modbus.ProtocolDataUnit, error) {
	return encodeReadRegisters(f.Code(), f.Address, f.Quantity)
}

func (f ReadInputRegisters) Decode(pdu modbus.ProtocolDataUnit) ([]uint16, error) {
	return decodeRegisters(f.Code(), f.Quantity, pdu)
}

func encodeReadRegisters(code byte, address, quantity uint16) (modbus.ProtocolDataUnit, error) {
	if err := checkQuantity("registers", int(quantity), MaxReadRegisters); err != nil {
		return modbus.ProtocolDataUnit{}, err
	}
	return modbus.ProtocolDataUnit{FunctionCode: code, Data: dataBlock(address, quantity)}, nil
}

// Response:
//
//	Function code         : 1 byte
//	Byte count            : 1 byte
//	Register value        : N 2-byte values
func decodeRegisters(code byte, quantity uint16, pdu modbus.ProtocolDataUnit) ([]uint16, error) {
	r, err := open(code, pdu)
	if err != nil {
		return nil, err
	}
	count, err := r.byteCount()
	if err != nil {
		return nil, err
	}
	if count != 2*int(quantity) {
		return nil, modbus.MalformedPDU(code, "response byte count '%v' does not match quantity '%v'", count, quantity)
	}
	return words(r.rest()), nil
}

// ReadWriteMultipleRegisters writes Values starting at WriteAddress, then
// reads ReadQuantity registers starting at ReadAddress.
type ReadWriteMultipleRegisters struct {
	ReadAddress  uint16
	ReadQuantity uint16
	WriteAddress uint16
	Values       []uint16
}

func (f ReadWriteMultipleRegisters) Code() byte { return modbus.FuncCodeReadWriteMultipleRegisters }

// Request:
//
//	Function code         : 1 byte
//	Read starting address : 2 bytes
//	Quantity to read      : 2 bytes
//	Write starting address: 2 bytes
//	Quantity to write     : 2 bytes
//	Write byte count      : 1 byte
//	Write registers value : N* bytes
func (f ReadWriteMultipleRegisters) Encode() (modbus.ProtocolDataUnit, error) {
	if err := checkQuantity("read registers", int(f.ReadQuantity), MaxReadRegisters); err != nil {
		return modbus.ProtocolDataUnit{}, err
	}
	if err := checkQuantity("write registers", len(f.Values), MaxReadWriteRegisters); err != nil {
		return modbus.ProtocolDataUnit{}, err
	}
	data := dataBlockSuffix(dataBlock(f.Values...), f.ReadAddress, f.ReadQuantity, f.WriteAddress, uint16(len(f.Values)))
	return modbus.ProtocolDataUnit{FunctionCode: f.Code(), Data: data}, nil
}

func (f ReadWriteMultipleRegisters) Decode(pdu modbus.ProtocolDataUnit) ([]uint16, error) {
	return decodeRegisters(f.Code(), f.ReadQuantity, pdu)
}

// ReadFIFOQueue reads the content of a FIFO queue of registers.
type ReadFIFOQueue struct {
	Address uint16
}

func (f ReadFIFOQueue) Code() byte { return modbus.FuncCodeReadFIFOQueue }

func (f ReadFIFOQueue) Encode() (modbus.ProtocolDataUnit, error) {
	return modbus.ProtocolDataUnit{FunctionCode: f.Code(), Data: dataBlock(f.Address)}, nil
}

// Response:
//
//	Function code         : 1 byte
//	Byte count            : 2 bytes
//	FIFO count            : 2 bytes (<=31)
//	FIFO value register   : Nx2 bytes
func (f ReadFIFOQueue) Decode(pdu modbus.ProtocolDataUnit) ([]uint16, error) {
	r, err := open(f.Code(), pdu)
	if err != nil {
		return nil, err
	}
	count, err := r.uint16()
	if err != nil {
		return nil, err
	}
	if int(count) != r.remaining() {
		return nil, modbus.MalformedPDU(f.Code(), "response data size '%v' does not match count '%v'", r.remaining(), count)
	}
	fifoCount, err := r.uint16()
	if err != nil {
		return nil, err
	}
	if fifoCount > maxFIFOCount {
		return nil, modbus.MalformedPDU(f.Code(), "fifo count '%v' is greater than expected '%v'", fifoCount, maxFIFOCount)
	}
	values, err := r.bytes(2 * int(fifoCount))
	if err != nil {
		return nil, err
	}
	if err := r.end(); err != nil {
		return nil, err
	}
	return words(values), nil
}
