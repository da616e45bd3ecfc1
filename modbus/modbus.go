// Copyright (c) 2014 Quoc-Viet Nguyen. All rights reserved.
// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

/*
Package modbus holds the types shared by the serial master: the protocol data
unit, function and exception codes, wire modes and the error taxonomy.
*/
package modbus

import "strings"

const (
	// FuncCodeReadCoils for bit wise access
	FuncCodeReadCoils = 0x01
	// FuncCodeReadDiscreteInputs for bit wise access
	FuncCodeReadDiscreteInputs = 0x02
	// FuncCodeReadHoldingRegisters 16-bit wise access
	FuncCodeReadHoldingRegisters = 0x03
	// FuncCodeReadInputRegisters 16-bit wise access
	FuncCodeReadInputRegisters = 0x04
	// FuncCodeWriteSingleCoil for bit wise access
	FuncCodeWriteSingleCoil = 0x05
	// FuncCodeWriteSingleRegister 16-bit wise access
	FuncCodeWriteSingleRegister = 0x06
	// FuncCodeReadExceptionStatus serial line only
	FuncCodeReadExceptionStatus = 0x07
	// FuncCodeDiagnostics serial line only
	FuncCodeDiagnostics = 0x08
	// FuncCodeGetCommEventCounter serial line only
	FuncCodeGetCommEventCounter = 0x0B
	// FuncCodeGetCommEventLog serial line only
	FuncCodeGetCommEventLog = 0x0C
	// FuncCodeWriteMultipleCoils for bit wise access
	FuncCodeWriteMultipleCoils = 0x0F
	// FuncCodeWriteMultipleRegisters 16-bit wise access
	FuncCodeWriteMultipleRegisters = 0x10
	// FuncCodeReportSlaveID serial line only
	FuncCodeReportSlaveID = 0x11
	// FuncCodeReadFileRecord file record access
	FuncCodeReadFileRecord = 0x14
	// FuncCodeWriteFileRecord file record access
	FuncCodeWriteFileRecord = 0x15
	// FuncCodeMaskWriteRegister 16-bit wise access
	FuncCodeMaskWriteRegister = 0x16
	// FuncCodeReadWriteMultipleRegisters 16-bit wise access
	FuncCodeReadWriteMultipleRegisters = 0x17
	// FuncCodeReadFIFOQueue 16-bit wise access
	FuncCodeReadFIFOQueue = 0x18
	// FuncCodeEncapsulatedInterface carries MEI sub-protocols
	FuncCodeEncapsulatedInterface = 0x2B
	// FuncCodeReadDeviceIdentification is an alias used by the RTU framer
	FuncCodeReadDeviceIdentification = FuncCodeEncapsulatedInterface
)

const (
	// MEITypeCANopen is the CANopen general reference MEI type.
	MEITypeCANopen = 0x0D
	// MEITypeReadDeviceID is the read device identification MEI type.
	MEITypeReadDeviceID = 0x0E
)

// ExceptionFlag is the bit set in the function code of an exception response.
const ExceptionFlag = 0x80

const (
	ExceptionCodeIllegalFunction        = 0x01
	ExceptionCodeIllegalDataAddress     = 0x02
	ExceptionCodeIllegalDataValue       = 0x03
	ExceptionCodeSlaveDeviceFailure     = 0x04
	ExceptionCodeAcknowledge            = 0x05
	ExceptionCodeSlaveDeviceBusy        = 0x06
	ExceptionCodeMemoryParityError      = 0x08
	ExceptionCodeGatewayPathUnavailable = 0x0A
)

const (
	// BroadcastAddress is received by every slave; none of them answers.
	BroadcastAddress = 0
	// MaxSlaveAddress is the highest unicast slave address.
	MaxSlaveAddress = 247
	// MaxPDUSize is the largest PDU a serial line ADU can carry.
	MaxPDUSize = 253
)

// ProtocolDataUnit (PDU) is independent of underlying communication layers.
type ProtocolDataUnit struct {
	FunctionCode byte
	Data         []byte
}

// Bytes returns the PDU as it appears on the wire, function code first.
func (pdu ProtocolDataUnit) Bytes() []byte {
	raw := make([]byte, 1+len(pdu.Data))
	raw[0] = pdu.FunctionCode
	copy(raw[1:], pdu.Data)
	return raw
}

// IsException reports whether the PDU is an exception response.
func (pdu ProtocolDataUnit) IsException() bool {
	return pdu.FunctionCode&ExceptionFlag != 0
}

// Mode is the serial line encoding of an ADU.
type Mode int

const (
	ModeRTU Mode = iota
	ModeASCII
)

func (m Mode) String() string {
	switch m {
	case ModeRTU:
		return "rtu"
	case ModeASCII:
		return "ascii"
	default:
		return "unknown"
	}
}

// ParseMode converts "rtu" or "ascii" (any case) to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rtu", "":
		return ModeRTU, nil
	case "ascii":
		return ModeASCII, nil
	default:
		return ModeRTU, InvalidArgument("unknown mode %q", s)
	}
}

// DataBits returns the character size the mode is normally run with.
func (m Mode) DataBits() int {
	if m == ModeASCII {
		return 7
	}
	return 8
}

// ValidateSlaveID checks a slave address against the serial line range.
func ValidateSlaveID(slaveID byte) error {
	if slaveID > MaxSlaveAddress {
		return InvalidArgument("slave id '%v' must be between 0 and %v", slaveID, MaxSlaveAddress)
	}
	return nil
}
