// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package function

import (
	"fmt"

	"github.com/ffutop/modbus-master/modbus"
)

// Descriptor describes a supported function code.
type Descriptor struct {
	Code byte
	Name string
	// Broadcastable functions may be sent to slave 0.
	Broadcastable bool
}

var registry = map[byte]Descriptor{
	modbus.FuncCodeReadCoils:                  {modbus.FuncCodeReadCoils, "Read Coils", false},
	modbus.FuncCodeReadDiscreteInputs:         {modbus.FuncCodeReadDiscreteInputs, "Read Discrete Inputs", false},
	modbus.FuncCodeReadHoldingRegisters:       {modbus.FuncCodeReadHoldingRegisters, "Read Holding Registers", false},
	modbus.FuncCodeReadInputRegisters:         {modbus.FuncCodeReadInputRegisters, "Read Input Registers", false},
	modbus.FuncCodeWriteSingleCoil:            {modbus.FuncCodeWriteSingleCoil, "Write Single Coil", true},
	modbus.FuncCodeWriteSingleRegister:        {modbus.FuncCodeWriteSingleRegister, "Write Single Register", true},
	modbus.FuncCodeReadExceptionStatus:        {modbus.FuncCodeReadExceptionStatus, "Read Exception Status", false},
	modbus.FuncCodeDiagnostics:                {modbus.FuncCodeDiagnostics, "Diagnostics", true},
	modbus.FuncCodeGetCommEventCounter:        {modbus.FuncCodeGetCommEventCounter, "Get Comm Event Counter", false},
	modbus.FuncCodeGetCommEventLog:            {modbus.FuncCodeGetCommEventLog, "Get Comm Event Log", false},
	modbus.FuncCodeWriteMultipleCoils:         {modbus.FuncCodeWriteMultipleCoils, "Write Multiple Coils", true},
	modbus.FuncCodeWriteMultipleRegisters:     {modbus.FuncCodeWriteMultipleRegisters, "Write Multiple Registers", true},
	modbus.FuncCodeReportSlaveID:              {modbus.FuncCodeReportSlaveID, "Report Slave ID", false},
	modbus.FuncCodeReadFileRecord:             {modbus.FuncCodeReadFileRecord, "Read File Record", false},
	modbus.FuncCodeWriteFileRecord:            {modbus.FuncCodeWriteFileRecord, "Write File Record", true},
	modbus.FuncCodeMaskWriteRegister:          {modbus.FuncCodeMaskWriteRegister, "Mask Write Register", true},
	modbus.FuncCodeReadWriteMultipleRegisters: {modbus.FuncCodeReadWriteMultipleRegisters, "Read/Write Multiple Registers", false},
	modbus.FuncCodeReadFIFOQueue:              {modbus.FuncCodeReadFIFOQueue, "Read FIFO Queue", false},
	modbus.FuncCodeEncapsulatedInterface:      {modbus.FuncCodeEncapsulatedInterface, "Read Device Identification", false},
}

// Lookup returns the descriptor of a function code. The exception flag is
// ignored.
func Lookup(code byte) (Descriptor, bool) {
	d, ok := registry[code&^modbus.ExceptionFlag]
	return d, ok
}

// Name returns the name of a function code, or a hex placeholder.
func Name(code byte) string {
	if d, ok := Lookup(code); ok {
		return d.Name
	}
	return fmt.Sprintf("Function 0x%02x", code&^modbus.ExceptionFlag)
}

// Codes returns every supported function code in ascending order.
func Codes() []byte {
	codes := make([]byte, 0, len(registry))
	for code := 0; code < 256; code++ {
		if _, ok := registry[byte(code)]; ok {
			codes = append(codes, byte(code))
		}
	}
	return codes
}
