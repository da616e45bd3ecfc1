// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package rtu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ffutop/modbus-master/modbus"
)

var ErrRequestTimedOut = errors.New("modbus: request timed out")

const (
	stateSlaveID = 1 << iota
	stateFunctionCode
	stateBody
)

type InvalidLengthError struct {
	Length int
}

func (e *InvalidLengthError) Error() string {
	return fmt.Sprintf("invalid length received: %d", e.Length)
}

// ResponseLength returns the total ADU length of the response to request,
// given the head of the response read so far. It returns 0 while the head is
// too short to tell.
func ResponseLength(request, head []byte) (int, error) {
	if len(request) < MinSize {
		return 0, fmt.Errorf("request length '%v' does not meet minimum '%v'", len(request), MinSize)
	}
	if len(head) < 2 {
		return 0, nil
	}
	function := head[1]
	if function&modbus.ExceptionFlag != 0 {
		return ExceptionSize, nil
	}

	switch function {
	case modbus.FuncCodeReadCoils,
		modbus.FuncCodeReadDiscreteInputs,
		modbus.FuncCodeReadHoldingRegisters,
		modbus.FuncCodeReadInputRegisters,
		modbus.FuncCodeGetCommEventLog,
		modbus.FuncCodeReportSlaveID,
		modbus.FuncCodeReadFileRecord,
		modbus.FuncCodeWriteFileRecord,
		modbus.FuncCodeReadWriteMultipleRegisters:
		if len(head) < byteCountHeaderSize {
			return 0, nil
		}
		count := int(head[2])
		if count == 0 || count > maxByteCount {
			return 0, &InvalidLengthError{Length: count}
		}
		return byteCountHeaderSize + count + 2, nil
	case modbus.FuncCodeWriteSingleCoil,
		modbus.FuncCodeWriteSingleRegister,
		modbus.FuncCodeWriteMultipleCoils,
		modbus.FuncCodeWriteMultipleRegisters,
		modbus.FuncCodeGetCommEventCounter:
		return writeEchoSize, nil
	case modbus.FuncCodeReadExceptionStatus:
		return exceptionStatusSize, nil
	case modbus.FuncCodeMaskWriteRegister:
		return maskWriteSize, nil
	case modbus.FuncCodeDiagnostics:
		// Diagnostics echo the request, sub-function and data field alike.
		return len(request), nil
	case modbus.FuncCodeReadFIFOQueue:
		if len(head) < fifoHeaderSize {
			return 0, nil
		}
		count := int(binary.BigEndian.Uint16(head[2:4]))
		if count < 2 || count > maxByteCount-1 {
			return 0, &InvalidLengthError{Length: count}
		}
		return fifoHeaderSize + count + 2, nil
	case modbus.FuncCodeEncapsulatedInterface:
		return deviceIDLength(head)
	default:
		return 0, fmt.Errorf("functioncode not handled: %d", function)
	}
}

// deviceIDLength walks the object list of a read device identification
// response until every object header has been seen.
func deviceIDLength(head []byte) (int, error) {
	if len(head) < 3 {
		return 0, nil
	}
	if head[2] != modbus.MEITypeReadDeviceID {
		return 0, fmt.Errorf("mei type not handled: %d", head[2])
	}
	if len(head) < deviceIDHeaderSize {
		return 0, nil
	}
	objects := int(head[deviceIDHeaderSize-1])
	offset := deviceIDHeaderSize
	for i := 0; i < objects; i++ {
		if len(head) < offset+2 {
			return 0, nil
		}
		offset += 2 + int(head[offset+1])
		if offset > MaxSize-2 {
			return 0, &InvalidLengthError{Length: offset}
		}
	}
	return offset + 2, nil
}

// ReadResponse reads an RTU frame incrementally from the reader.
// It uses a state machine to detect the frame based on the SlaveID and
// FunctionCode of the outstanding request; bytes before the expected SlaveID
// are discarded.
func ReadResponse(request []byte, r io.Reader, deadline time.Time) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("reader is nil")
	}
	if len(request) < MinSize {
		return nil, fmt.Errorf("request length '%v' does not meet minimum '%v'", len(request), MinSize)
	}
	slaveID, functionCode := request[0], request[1]

	buf := make([]byte, 1)
	data := make([]byte, 0, MaxSize)

	state := stateSlaveID
	var length int

	for {
		if time.Now().After(deadline) {
			return nil, ErrRequestTimedOut
		}

		if _, err := io.ReadAtLeast(r, buf, 1); err != nil {
			return nil, err
		}

		switch state {
		case stateSlaveID:
			if buf[0] == slaveID {
				data = append(data, buf[0])
				state = stateFunctionCode
			}
			continue
		case stateFunctionCode:
			if buf[0] != functionCode && buf[0] != functionCode|modbus.ExceptionFlag {
				// Not our reply; resync on the slave id.
				data = data[:0]
				if buf[0] == slaveID {
					data = append(data, buf[0])
				} else {
					state = stateSlaveID
				}
				continue
			}
			state = stateBody
		}

		data = append(data, buf[0])
		if length == 0 {
			n, err := ResponseLength(request, data)
			if err != nil {
				return nil, err
			}
			length = n
		}
		if length != 0 && len(data) >= length {
			return data, nil
		}
		if len(data) >= MaxSize {
			return nil, &InvalidLengthError{Length: len(data)}
		}
	}
}
