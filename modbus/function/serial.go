// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package function

import (
	"strings"

	"github.com/ffutop/modbus-master/modbus"
)

// ExceptionStatus holds the eight exception status outputs of a slave.
type ExceptionStatus struct {
	Status byte
	Flags  [8]bool
}

// ReadExceptionStatus reads the exception status outputs (serial line only).
type ReadExceptionStatus struct{}

func (f ReadExceptionStatus) Code() byte { return modbus.FuncCodeReadExceptionStatus }

func (f ReadExceptionStatus) Encode() (modbus.ProtocolDataUnit, error) {
	return modbus.ProtocolDataUnit{FunctionCode: f.Code()}, nil
}

func (f ReadExceptionStatus) Decode(pdu modbus.ProtocolDataUnit) (ExceptionStatus, error) {
	r, err := open(f.Code(), pdu)
	if err != nil {
		return ExceptionStatus{}, err
	}
	status, err := r.uint8()
	if err != nil {
		return ExceptionStatus{}, err
	}
	if err := r.end(); err != nil {
		return ExceptionStatus{}, err
	}
	result := ExceptionStatus{Status: status}
	copy(result.Flags[:], UnpackBits([]byte{status}, 8))
	return result, nil
}

// CommEventCounter is the reply to Get Comm Event Counter. Status is 0xFFFF
// while the slave is still processing a previous command.
type CommEventCounter struct {
	Status     uint16
	EventCount uint16
}

// Busy reports whether the slave was busy.
func (c CommEventCounter) Busy() bool {
	return c.Status == 0xFFFF
}

type GetCommEventCounter struct{}

func (f GetCommEventCounter) Code() byte { return modbus.FuncCodeGetCommEventCounter }

func (f GetCommEventCounter) Encode() (modbus.ProtocolDataUnit, error) {
	return modbus.ProtocolDataUnit{FunctionCode: f.Code()}, nil
}

func (f GetCommEventCounter) Decode(pdu modbus.ProtocolDataUnit) (CommEventCounter, error) {
	r, err := open(f.Code(), pdu)
	if err != nil {
		return CommEventCounter{}, err
	}
	var result CommEventCounter
	if result.Status, err = r.uint16(); err != nil {
		return CommEventCounter{}, err
	}
	if result.EventCount, err = r.uint16(); err != nil {
		return CommEventCounter{}, err
	}
	if err := r.end(); err != nil {
		return CommEventCounter{}, err
	}
	return result, nil
}

// CommEventLog is the reply to Get Comm Event Log. Events are ordered most
// recent first.
type CommEventLog struct {
	Status       uint16
	EventCount   uint16
	MessageCount uint16
	Events       []CommEvent
}

type GetCommEventLog struct{}

func (f GetCommEventLog) Code() byte { return modbus.FuncCodeGetCommEventLog }

func (f GetCommEventLog) Encode() (modbus.ProtocolDataUnit, error) {
	return modbus.ProtocolDataUnit{FunctionCode: f.Code()}, nil
}

// Response:
//
//	Function code         : 1 byte
//	Byte count            : 1 byte (6 + N)
//	Status                : 2 bytes
//	Event count           : 2 bytes
//	Message count         : 2 bytes
//	Events                : N bytes (0 to 64)
func (f GetCommEventLog) Decode(pdu modbus.ProtocolDataUnit) (CommEventLog, error) {
	r, err := open(f.Code(), pdu)
	if err != nil {
		return CommEventLog{}, err
	}
	if _, err := r.byteCount(); err != nil {
		return CommEventLog{}, err
	}
	var result CommEventLog
	if result.Status, err = r.uint16(); err != nil {
		return CommEventLog{}, err
	}
	if result.EventCount, err = r.uint16(); err != nil {
		return CommEventLog{}, err
	}
	if result.MessageCount, err = r.uint16(); err != nil {
		return CommEventLog{}, err
	}
	for _, b := range r.rest() {
		result.Events = append(result.Events, CommEvent(b))
	}
	return result, nil
}

// CommEvent is one byte of the communications event log.
type CommEvent byte

const (
	CommEventRestart    CommEvent = 0x00
	CommEventListenOnly CommEvent = 0x04
	commEventReceived   CommEvent = 0x80
)

// Message received flags.
const (
	ReceivedBroadcast  CommEvent = 0x40
	ReceivedListenOnly CommEvent = 0x20
	ReceivedOverrun    CommEvent = 0x10
	ReceivedCommError  CommEvent = 0x02
)

// Message sent flags.
const (
	SentListenOnly     CommEvent = 0x20
	SentWriteTimeout   CommEvent = 0x10
	SentNAKException   CommEvent = 0x08
	SentBusyException  CommEvent = 0x04
	SentAbortException CommEvent = 0x02
	SentReadException  CommEvent = 0x01
)

type eventFlag struct {
	flag CommEvent
	name string
}

var (
	receivedFlags = []eventFlag{
		{ReceivedBroadcast, "Broadcast"},
		{ReceivedListenOnly, "Listen-only"},
		{ReceivedOverrun, "Overrun"},
		{ReceivedCommError, "Checksum"},
	}
	sentFlags = []eventFlag{
		{SentListenOnly, "Listen-only"},
		{SentWriteTimeout, "Timeout"},
		{SentNAKException, "NAK err"},
		{SentBusyException, "Busy err"},
		{SentAbortException, "Abort err"},
		{SentReadException, "Read err"},
	}
)

func (e CommEvent) Restart() bool    { return e == CommEventRestart }
func (e CommEvent) ListenOnly() bool { return e == CommEventListenOnly }
func (e CommEvent) Received() bool   { return e&commEventReceived != 0 }

// Sent reports a message sent event. Restart and listen only events are
// not sent events even though bit 7 is clear.
func (e CommEvent) Sent() bool {
	return !e.Received() && !e.Restart() && !e.ListenOnly()
}

// Has reports whether every bit of flag is set.
func (e CommEvent) Has(flag CommEvent) bool {
	return e&flag == flag
}

func (e CommEvent) String() string {
	switch {
	case e.Restart():
		return "Communication Restart"
	case e.ListenOnly():
		return "Entering Listen Only Mode"
	case e.Received():
		return withFlags("Message Received", e, receivedFlags)
	default:
		return withFlags("Message Sent", e, sentFlags)
	}
}

func withFlags(kind string, e CommEvent, flags []eventFlag) string {
	var names []string
	for _, f := range flags {
		if e.Has(f.flag) {
			names = append(names, f.name)
		}
	}
	if len(names) == 0 {
		return kind
	}
	return kind + ": " + strings.Join(names, "/")
}

// SlaveID is the reply to Report Slave ID. RunIndicator follows the byte
// count; the identification bytes complete the PDU. Data keeps every byte
// after the byte count.
type SlaveID struct {
	RunIndicator byte
	Running      bool
	ID           []byte
	Data         []byte
}

type ReportSlaveID struct{}

func (f ReportSlaveID) Code() byte { return modbus.FuncCodeReportSlaveID }

func (f ReportSlaveID) Encode() (modbus.ProtocolDataUnit, error) {
	return modbus.ProtocolDataUnit{FunctionCode: f.Code()}, nil
}

func (f ReportSlaveID) Decode(pdu modbus.ProtocolDataUnit) (SlaveID, error) {
	r, err := open(f.Code(), pdu)
	if err != nil {
		return SlaveID{}, err
	}
	if _, err := r.byteCount(); err != nil {
		return SlaveID{}, err
	}
	data := append([]byte(nil), r.data[r.off:]...)
	run, err := r.uint8()
	if err != nil {
		return SlaveID{}, err
	}
	return SlaveID{
		RunIndicator: run,
		Running:      run == 0xFF,
		ID:           r.rest(),
		Data:         data,
	}, nil
}
