// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package modbus

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport wraps every failure of the underlying line.
	ErrTransport = errors.New("modbus: transport error")
	// ErrFraming is matched by every FramingError.
	ErrFraming = errors.New("modbus: framing error")
	// ErrChecksum is matched by every ChecksumError.
	ErrChecksum = errors.New("modbus: checksum mismatch")
	// ErrInvalidArgument is returned for requests that cannot be encoded.
	ErrInvalidArgument = errors.New("modbus: invalid argument")
)

var exceptionReasons = map[byte]string{
	ExceptionCodeIllegalFunction:        "Illegal Function",
	ExceptionCodeIllegalDataAddress:     "Illegal Data Address",
	ExceptionCodeIllegalDataValue:       "Illegal Data Value",
	ExceptionCodeSlaveDeviceFailure:     "Slave Device Failure",
	ExceptionCodeAcknowledge:            "Acknowledge",
	ExceptionCodeSlaveDeviceBusy:        "Slave Device Busy",
	ExceptionCodeMemoryParityError:      "Memory Parity Error",
	ExceptionCodeGatewayPathUnavailable: "Gateway Path Unavailable",
}

// UnknownExceptionReason is reported for exception codes outside the table.
const UnknownExceptionReason = "Unknown Error"

// ExceptionReason maps an exception code to its reason text.
func ExceptionReason(code byte) string {
	if reason, ok := exceptionReasons[code]; ok {
		return reason
	}
	return UnknownExceptionReason
}

// ExceptionError is a Modbus exception response returned by a slave.
type ExceptionError struct {
	FunctionCode  byte
	ExceptionCode byte
}

// Reason returns the human readable exception text.
func (e *ExceptionError) Reason() string {
	return ExceptionReason(e.ExceptionCode)
}

// Known reports whether the exception code is in the reason table.
func (e *ExceptionError) Known() bool {
	_, ok := exceptionReasons[e.ExceptionCode]
	return ok
}

func (e *ExceptionError) Error() string {
	return fmt.Sprintf("modbus: exception '%v' (%s), function '%v'", e.ExceptionCode, e.Reason(), e.FunctionCode&^ExceptionFlag)
}

// FramingError reports a frame or PDU that is too short or malformed.
// Function is set, and Mode left unset, for response PDUs that do not fit
// the layout of their function.
type FramingError struct {
	Mode     Mode
	Function byte
	Reason   string
}

func (e *FramingError) Error() string {
	if e.Function != 0 {
		return fmt.Sprintf("modbus: malformed response to function '%v': %s", e.Function, e.Reason)
	}
	return fmt.Sprintf("modbus: %v framing error: %s", e.Mode, e.Reason)
}

func (e *FramingError) Is(target error) bool {
	return target == ErrFraming
}

// Framing builds a FramingError with a formatted reason.
func Framing(mode Mode, format string, v ...interface{}) error {
	return &FramingError{Mode: mode, Reason: fmt.Sprintf(format, v...)}
}

// MalformedPDU builds a FramingError for a response PDU of function.
func MalformedPDU(function byte, format string, v ...interface{}) error {
	return &FramingError{Function: function, Reason: fmt.Sprintf(format, v...)}
}

// ChecksumError carries the computed and the received checksum of a frame.
type ChecksumError struct {
	Mode     Mode
	Computed uint16
	Found    uint16
}

func (e *ChecksumError) Error() string {
	if e.Mode == ModeASCII {
		return fmt.Sprintf("modbus: lrc incorrect (calculated 0x%02x, found 0x%02x)", e.Computed, e.Found)
	}
	return fmt.Sprintf("modbus: crc incorrect (calculated 0x%04x, found 0x%04x)", e.Computed, e.Found)
}

func (e *ChecksumError) Is(target error) bool {
	return target == ErrChecksum
}

// InvalidArgument wraps ErrInvalidArgument with a formatted message.
func InvalidArgument(format string, v ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, v...))
}
