// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package master

import (
	"bytes"
	"context"

	"github.com/ffutop/modbus-master/modbus"
	"github.com/ffutop/modbus-master/modbus/function"
)

// Diagnostic sends one function 8 request and returns the reply as is.
func (m *Master) Diagnostic(ctx context.Context, slaveID byte, req function.Diagnostic) (function.DiagnosticResult, error) {
	return Call[function.DiagnosticResult](ctx, m, slaveID, req)
}

// ReturnQueryData checks the slave echoes data unchanged.
func (m *Master) ReturnQueryData(ctx context.Context, slaveID byte, data []byte) ([]byte, error) {
	res, err := m.Diagnostic(ctx, slaveID, function.ReturnQueryData(data))
	if err != nil || slaveID == modbus.BroadcastAddress {
		return nil, err
	}
	if !bytes.Equal(res.Data, data) {
		return nil, modbus.MalformedPDU(modbus.FuncCodeDiagnostics, "query data echo '%x' does not match request '%x'", res.Data, data)
	}
	return res.Data, nil
}

// RestartCommunications restarts the slave serial line port, clearing the
// communication event log when clearLog is set.
func (m *Master) RestartCommunications(ctx context.Context, slaveID byte, clearLog bool) error {
	_, err := m.Diagnostic(ctx, slaveID, function.RestartCommunications(clearLog))
	return err
}

func (m *Master) DiagnosticRegister(ctx context.Context, slaveID byte) (uint16, error) {
	return m.counter(ctx, slaveID, function.ReturnDiagnosticRegister())
}

// ChangeASCIIDelimiter replaces the LF end of message character used by the
// slave in ASCII mode.
func (m *Master) ChangeASCIIDelimiter(ctx context.Context, slaveID byte, delimiter byte) error {
	_, err := m.Diagnostic(ctx, slaveID, function.ChangeASCIIDelimiter(delimiter))
	return err
}

// ForceListenOnly puts the slave in listen only mode. The slave does not
// reply, so only the request is sent.
func (m *Master) ForceListenOnly(ctx context.Context, slaveID byte) error {
	_, err := call[function.DiagnosticResult](ctx, m, slaveID, function.ForceListenOnly(), false)
	return err
}

func (m *Master) ClearCounters(ctx context.Context, slaveID byte) error {
	_, err := m.Diagnostic(ctx, slaveID, function.ClearCounters())
	return err
}

func (m *Master) ClearOverrunCounter(ctx context.Context, slaveID byte) error {
	_, err := m.Diagnostic(ctx, slaveID, function.ClearOverrunCounter())
	return err
}

// DiagnosticCounter reads one of the counters 0x0B to 0x12.
func (m *Master) DiagnosticCounter(ctx context.Context, slaveID byte, sub uint16) (uint16, error) {
	req, err := function.DiagnosticCounter(sub)
	if err != nil {
		return 0, err
	}
	return m.counter(ctx, slaveID, req)
}

func (m *Master) counter(ctx context.Context, slaveID byte, req function.Diagnostic) (uint16, error) {
	res, err := m.Diagnostic(ctx, slaveID, req)
	if err != nil || slaveID == modbus.BroadcastAddress {
		return 0, err
	}
	return res.Counter()
}
