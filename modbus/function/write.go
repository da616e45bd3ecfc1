// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package function

import (
	"github.com/ffutop/modbus-master/modbus"
)

const (
	CoilOn  uint16 = 0xFF00
	CoilOff uint16 = 0x0000
)

// SingleWrite is the echo of a single coil or register write.
type SingleWrite struct {
	Address uint16
	Value   uint16
}

// MultipleWrite is the reply to a multiple coils or registers write.
type MultipleWrite struct {
	Address  uint16
	Quantity uint16
}

// WriteSingleCoil sets one coil. Any nonzero Value switches the coil on.
type WriteSingleCoil struct {
	Address uint16
	Value   uint16
}

func (f WriteSingleCoil) Code() byte { return modbus.FuncCodeWriteSingleCoil }

func (f WriteSingleCoil) value() uint16 {
	if f.Value != 0 {
		return CoilOn
	}
	return CoilOff
}

func (f WriteSingleCoil) Encode() (modbus.ProtocolDataUnit, error) {
	return modbus.ProtocolDataUnit{FunctionCode: f.Code(), Data: dataBlock(f.Address, f.value())}, nil
}

func (f WriteSingleCoil) Decode(pdu modbus.ProtocolDataUnit) (SingleWrite, error) {
	return decodeSingleWrite(f.Code(), f.Address, f.value(), pdu)
}

// WriteSingleRegister writes one holding register.
type WriteSingleRegister struct {
	Address uint16
	Value   uint16
}

func (f WriteSingleRegister) Code() byte { return modbus.FuncCodeWriteSingleRegister }

func (f WriteSingleRegister) Encode() (modbus.ProtocolDataUnit, error) {
	return modbus.ProtocolDataUnit{FunctionCode: f.Code(), Data: dataBlock(f.Address, f.Value)}, nil
}

func (f WriteSingleRegister) Decode(pdu modbus.ProtocolDataUnit) (SingleWrite, error) {
	return decodeSingleWrite(f.Code(), f.Address, f.Value, pdu)
}

// Response:
//
//	Function code         : 1 byte
//	Output address        : 2 bytes
//	Output value          : 2 bytes
func decodeSingleWrite(code byte, address, value uint16, pdu modbus.ProtocolDataUnit) (SingleWrite, error) {
	r, err := open(code, pdu)
	if err != nil {
		return SingleWrite{}, err
	}
	if err := r.need(4); err != nil {
		return SingleWrite{}, err
	}
	if err := r.echo("address", address); err != nil {
		return SingleWrite{}, err
	}
	if err := r.echo("value", value); err != nil {
		return SingleWrite{}, err
	}
	if err := r.end(); err != nil {
		return SingleWrite{}, err
	}
	return SingleWrite{Address: address, Value: value}, nil
}

// WriteMultipleCoils forces a sequence of 1 to 1968 coils.
type WriteMultipleCoils struct {
	Address uint16
	Values  []bool
}

func (f WriteMultipleCoils) Code() byte { return modbus.FuncCodeWriteMultipleCoils }

// Request:
//
//	Function code         : 1 byte
//	Starting address      : 2 bytes
//	Quantity of outputs   : 2 bytes
//	Byte count            : 1 byte
//	Outputs value         : N* bytes
func (f WriteMultipleCoils) Encode() (modbus.ProtocolDataUnit, error) {
	if err := checkQuantity("coils", len(f.Values), MaxWriteBits); err != nil {
		return modbus.ProtocolDataUnit{}, err
	}
	data := dataBlockSuffix(PackBits(f.Values), f.Address, uint16(len(f.Values)))
	return modbus.ProtocolDataUnit{FunctionCode: f.Code(), Data: data}, nil
}

func (f WriteMultipleCoils) Decode(pdu modbus.ProtocolDataUnit) (MultipleWrite, error) {
	return decodeMultipleWrite(f.Code(), f.Address, uint16(len(f.Values)), pdu)
}

// WriteMultipleRegisters writes a block of 1 to 123 contiguous registers.
type WriteMultipleRegisters struct {
	Address uint16
	Values  []uint16
}

func (f WriteMultipleRegisters) Code() byte { return modbus.FuncCodeWriteMultipleRegisters }

func (f WriteMultipleRegisters) Encode() (modbus.ProtocolDataUnit, error) {
	if err := checkQuantity("registers", len(f.Values), MaxWriteRegisters); err != nil {
		return modbus.ProtocolDataUnit{}, err
	}
	data := dataBlockSuffix(dataBlock(f.Values...), f.Address, uint16(len(f.Values)))
	return modbus.ProtocolDataUnit{FunctionCode: f.Code(), Data: data}, nil
}

func (f WriteMultipleRegisters) Decode(pdu modbus.ProtocolDataUnit) (MultipleWrite, error) {
	return decodeMultipleWrite(f.Code(), f.Address, uint16(len(f.Values)), pdu)
}

// Response:
//
//	Function code         : 1 byte
//	Starting address      : 2 bytes
//	Quantity              : 2 bytes
func decodeMultipleWrite(code byte, address, quantity uint16, pdu modbus.ProtocolDataUnit) (MultipleWrite, error) {
	r, err := open(code, pdu)
	if err != nil {
		return MultipleWrite{}, err
	}
	if err := r.need(4); err != nil {
		return MultipleWrite{}, err
	}
	if err := r.echo("address", address); err != nil {
		return MultipleWrite{}, err
	}
	if err := r.echo("quantity", quantity); err != nil {
		return MultipleWrite{}, err
	}
	if err := r.end(); err != nil {
		return MultipleWrite{}, err
	}
	return MultipleWrite{Address: address, Quantity: quantity}, nil
}

// MaskWrite is the echo of a mask write register request.
type MaskWrite struct {
	Address uint16
	AndMask uint16
	OrMask  uint16
}

// MaskWriteRegister modifies a holding register to
// (current AND AndMask) OR (OrMask AND NOT AndMask).
type MaskWriteRegister struct {
	Address uint16
	AndMask uint16
	OrMask  uint16
}

func (f MaskWriteRegister) Code() byte { return modbus.FuncCodeMaskWriteRegister }

func (f MaskWriteRegister) Encode() (modbus.ProtocolDataUnit, error) {
	return modbus.ProtocolDataUnit{FunctionCode: f.Code(), Data: dataBlock(f.Address, f.AndMask, f.OrMask)}, nil
}

func (f MaskWriteRegister) Decode(pdu modbus.ProtocolDataUnit) (MaskWrite, error) {
	r, err := open(f.Code(), pdu)
	if err != nil {
		return MaskWrite{}, err
	}
	if err := r.need(6); err != nil {
		return MaskWrite{}, err
	}
	if err := r.echo("address", f.Address); err != nil {
		return MaskWrite{}, err
	}
	if err := r.echo("AND-mask", f.AndMask); err != nil {
		return MaskWrite{}, err
	}
	if err := r.echo("OR-mask", f.OrMask); err != nil {
		return MaskWrite{}, err
	}
	if err := r.end(); err != nil {
		return MaskWrite{}, err
	}
	return MaskWrite{Address: f.Address, AndMask: f.AndMask, OrMask: f.OrMask}, nil
}
