// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package function

import (
	"encoding/binary"
	"fmt"

	"github.com/ffutop/modbus-master/modbus"
)

// Diagnostics sub-function codes.
const (
	DiagReturnQueryData            uint16 = 0x00
	DiagRestartCommunications      uint16 = 0x01
	DiagReturnDiagnosticRegister   uint16 = 0x02
	DiagChangeASCIIDelimiter       uint16 = 0x03
	DiagForceListenOnly            uint16 = 0x04
	DiagClearCounters              uint16 = 0x0A
	DiagBusMessageCount            uint16 = 0x0B
	DiagBusCommunicationErrorCount uint16 = 0x0C
	DiagBusExceptionErrorCount     uint16 = 0x0D
	DiagSlaveMessageCount          uint16 = 0x0E
	DiagSlaveNoResponseCount       uint16 = 0x0F
	DiagSlaveNAKCount              uint16 = 0x10
	DiagSlaveBusyCount             uint16 = 0x11
	DiagBusCharacterOverrunCount   uint16 = 0x12
	DiagClearOverrunCounterAndFlag uint16 = 0x14
)

const (
	restartClearLog   uint16 = 0xFF00
	maxDiagnosticData        = modbus.MaxPDUSize - 3
)

var diagnosticNames = map[uint16]string{
	DiagReturnQueryData:            "Return Query Data",
	DiagRestartCommunications:      "Restart Communications Option",
	DiagReturnDiagnosticRegister:   "Return Diagnostic Register",
	DiagChangeASCIIDelimiter:       "Change ASCII Input Delimiter",
	DiagForceListenOnly:            "Force Listen Only Mode",
	DiagClearCounters:              "Clear Counters and Diagnostic Register",
	DiagBusMessageCount:            "Return Bus Message Count",
	DiagBusCommunicationErrorCount: "Return Bus Communication Error Count",
	DiagBusExceptionErrorCount:     "Return Bus Exception Error Count",
	DiagSlaveMessageCount:          "Return Slave Message Count",
	DiagSlaveNoResponseCount:       "Return Slave No Response Count",
	DiagSlaveNAKCount:              "Return Slave NAK Count",
	DiagSlaveBusyCount:             "Return Slave Busy Count",
	DiagBusCharacterOverrunCount:   "Return Bus Character Overrun Count",
	DiagClearOverrunCounterAndFlag: "Clear Overrun Counter and Flag",
}

// DiagnosticName returns the name of a diagnostics sub-function.
func DiagnosticName(sub uint16) string {
	if name, ok := diagnosticNames[sub]; ok {
		return name
	}
	return fmt.Sprintf("Sub-function 0x%04x", sub)
}

// IsDiagnosticCounter reports whether sub returns one of the bus or slave
// counters.
func IsDiagnosticCounter(sub uint16) bool {
	return sub >= DiagBusMessageCount && sub <= DiagBusCharacterOverrunCount
}

// Diagnostic is one function 8 request. Data follows the sub-function code
// unchanged.
type Diagnostic struct {
	SubFunction uint16
	Data        []byte
}

// DiagnosticResult is the reply to a Diagnostic request.
type DiagnosticResult struct {
	SubFunction uint16
	Data        []byte
}

// Counter returns the 16-bit value at the start of the reply data, as sent
// by the counter and diagnostic register sub-functions.
func (d DiagnosticResult) Counter() (uint16, error) {
	if len(d.Data) < 2 {
		return 0, modbus.MalformedPDU(modbus.FuncCodeDiagnostics, "diagnostic data length '%v' does not meet minimum '%v'", len(d.Data), 2)
	}
	return binary.BigEndian.Uint16(d.Data), nil
}

func (f Diagnostic) Code() byte { return modbus.FuncCodeDiagnostics }

func (f Diagnostic) Encode() (modbus.ProtocolDataUnit, error) {
	if len(f.Data) > maxDiagnosticData {
		return modbus.ProtocolDataUnit{}, modbus.InvalidArgument("length of diagnostic data '%v' must not be bigger than '%v'", len(f.Data), maxDiagnosticData)
	}
	data := make([]byte, 2+len(f.Data))
	binary.BigEndian.PutUint16(data, f.SubFunction)
	copy(data[2:], f.Data)
	return modbus.ProtocolDataUnit{FunctionCode: f.Code(), Data: data}, nil
}

func (f Diagnostic) Decode(pdu modbus.ProtocolDataUnit) (DiagnosticResult, error) {
	r, err := open(f.Code(), pdu)
	if err != nil {
		return DiagnosticResult{}, err
	}
	if err := r.echo("sub-function", f.SubFunction); err != nil {
		return DiagnosticResult{}, err
	}
	return DiagnosticResult{SubFunction: f.SubFunction, Data: r.rest()}, nil
}

// ReturnQueryData asks the slave to echo data.
func ReturnQueryData(data []byte) Diagnostic {
	return Diagnostic{SubFunction: DiagReturnQueryData, Data: data}
}

// RestartCommunications restarts the slave serial line port. With clearLog
// the communications event log is cleared as well.
func RestartCommunications(clearLog bool) Diagnostic {
	value := uint16(0)
	if clearLog {
		value = restartClearLog
	}
	return Diagnostic{SubFunction: DiagRestartCommunications, Data: dataBlock(value)}
}

func ReturnDiagnosticRegister() Diagnostic {
	return Diagnostic{SubFunction: DiagReturnDiagnosticRegister, Data: dataBlock(0)}
}

// ChangeASCIIDelimiter replaces LF as the end of message character of ASCII
// requests.
func ChangeASCIIDelimiter(delimiter byte) Diagnostic {
	return Diagnostic{SubFunction: DiagChangeASCIIDelimiter, Data: []byte{delimiter, 0x00}}
}

// ForceListenOnly puts the slave in listen only mode. The slave does not
// answer it.
func ForceListenOnly() Diagnostic {
	return Diagnostic{SubFunction: DiagForceListenOnly, Data: dataBlock(0)}
}

func ClearCounters() Diagnostic {
	return Diagnostic{SubFunction: DiagClearCounters, Data: dataBlock(0)}
}

func ClearOverrunCounter() Diagnostic {
	return Diagnostic{SubFunction: DiagClearOverrunCounterAndFlag, Data: dataBlock(0)}
}

// DiagnosticCounter queries one of the counters 0x0B to 0x12.
func DiagnosticCounter(sub uint16) (Diagnostic, error) {
	if !IsDiagnosticCounter(sub) {
		return Diagnostic{}, modbus.InvalidArgument("sub-function '%v' is not a diagnostic counter", sub)
	}
	return Diagnostic{SubFunction: sub, Data: dataBlock(0)}, nil
}
