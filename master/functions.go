// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package master

import (
	"context"

	"github.com/ffutop/modbus-master/modbus/function"
)

// Bit access

func (m *Master) ReadCoils(ctx context.Context, slaveID byte, address, quantity uint16) ([]bool, error) {
	return Call[[]bool](ctx, m, slaveID, function.ReadCoils{Address: address, Quantity: quantity})
}

func (m *Master) ReadDiscreteInputs(ctx context.Context, slaveID byte, address, quantity uint16) ([]bool, error) {
	return Call[[]bool](ctx, m, slaveID, function.ReadDiscreteInputs{Address: address, Quantity: quantity})
}

// WriteSingleCoil switches one coil on or off.
func (m *Master) WriteSingleCoil(ctx context.Context, slaveID byte, address uint16, on bool) (function.SingleWrite, error) {
	value := function.CoilOff
	if on {
		value = function.CoilOn
	}
	return Call[function.SingleWrite](ctx, m, slaveID, function.WriteSingleCoil{Address: address, Value: value})
}

func (m *Master) WriteMultipleCoils(ctx context.Context, slaveID byte, address uint16, values []bool) (function.MultipleWrite, error) {
	return Call[function.MultipleWrite](ctx, m, slaveID, function.WriteMultipleCoils{Address: address, Values: values})
}

// 16-bit access

func (m *Master) ReadHoldingRegisters(ctx context.Context, slaveID byte, address, quantity uint16) ([]uint16, error) {
	return Call[[]uint16](ctx, m, slaveID, function.ReadHoldingRegisters{Address: address, Quantity: quantity})
}

func (m *Master) ReadInputRegisters(ctx context.Context, slaveID byte, address, quantity uint16) ([]uint16, error) {
	return Call[[]uint16](ctx, m, slaveID, function.ReadInputRegisters{Address: address, Quantity: quantity})
}

func (m *Master) WriteSingleRegister(ctx context.Context, slaveID byte, address, value uint16) (function.SingleWrite, error) {
	return Call[function.SingleWrite](ctx, m, slaveID, function.WriteSingleRegister{Address: address, Value: value})
}

func (m *Master) WriteMultipleRegisters(ctx context.Context, slaveID byte, address uint16, values []uint16) (function.MultipleWrite, error) {
	return Call[function.MultipleWrite](ctx, m, slaveID, function.WriteMultipleRegisters{Address: address, Values: values})
}

func (m *Master) MaskWriteRegister(ctx context.Context, slaveID byte, address, andMask, orMask uint16) (function.MaskWrite, error) {
	return Call[function.MaskWrite](ctx, m, slaveID, function.MaskWriteRegister{Address: address, AndMask: andMask, OrMask: orMask})
}

// ReadWriteMultipleRegisters performs the write before the read, in one
// transaction.
func (m *Master) ReadWriteMultipleRegisters(ctx context.Context, slaveID byte, readAddress, readQuantity, writeAddress uint16, values []uint16) ([]uint16, error) {
	return Call[[]uint16](ctx, m, slaveID, function.ReadWriteMultipleRegisters{
		ReadAddress:  readAddress,
		ReadQuantity: readQuantity,
		WriteAddress: writeAddress,
		Values:       values,
	})
}

func (m *Master) ReadFIFOQueue(ctx context.Context, slaveID byte, address uint16) ([]uint16, error) {
	return Call[[]uint16](ctx, m, slaveID, function.ReadFIFOQueue{Address: address})
}

// File record access

func (m *Master) ReadFileRecord(ctx context.Context, slaveID byte, requests ...function.FileRecordRequest) ([][]uint16, error) {
	return Call[[][]uint16](ctx, m, slaveID, function.ReadFileRecord{Requests: requests})
}

func (m *Master) WriteFileRecord(ctx context.Context, slaveID byte, records ...function.FileRecord) ([]function.FileRecord, error) {
	return Call[[]function.FileRecord](ctx, m, slaveID, function.WriteFileRecord{Records: records})
}

// Serial line only

func (m *Master) ReadExceptionStatus(ctx context.Context, slaveID byte) (function.ExceptionStatus, error) {
	return Call[function.ExceptionStatus](ctx, m, slaveID, function.ReadExceptionStatus{})
}

func (m *Master) GetCommEventCounter(ctx context.Context, slaveID byte) (function.CommEventCounter, error) {
	return Call[function.CommEventCounter](ctx, m, slaveID, function.GetCommEventCounter{})
}

func (m *Master) GetCommEventLog(ctx context.Context, slaveID byte) (function.CommEventLog, error) {
	return Call[function.CommEventLog](ctx, m, slaveID, function.GetCommEventLog{})
}

func (m *Master) ReportSlaveID(ctx context.Context, slaveID byte) (function.SlaveID, error) {
	return Call[function.SlaveID](ctx, m, slaveID, function.ReportSlaveID{})
}
