// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

/*
Package master drives request/response transactions against Modbus slaves
on a serial line.

A Master owns its transport and runs one transaction at a time. Each call
encodes the request PDU, frames it in the current wire mode, sends it and,
unless the request is a broadcast, receives and unframes the reply. Exception
replies are returned as *modbus.ExceptionError before any decoder runs.
Checksum mismatches are reported to the diagnostics sink and, unless strict
checksums are enabled, the decoded reply is still returned.
*/
package master

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ffutop/modbus-master/diag"
	"github.com/ffutop/modbus-master/modbus"
	"github.com/ffutop/modbus-master/modbus/frame"
	"github.com/ffutop/modbus-master/modbus/function"
	"github.com/ffutop/modbus-master/transport"
)

const DefaultMaxDeviceIDFragments = 16

var (
	// ErrSlaveMismatch is returned when a reply comes from another slave.
	ErrSlaveMismatch = errors.New("modbus: response slave id does not match request")
	// ErrTooManyFragments is returned when a device identification stream
	// does not end within the fragment limit.
	ErrTooManyFragments = errors.New("modbus: too many device identification fragments")
)

// Master is a Modbus serial line master. It is safe for concurrent use;
// transactions are serialized.
type Master struct {
	mu sync.Mutex

	transport    transport.Transport
	mode         modbus.Mode
	sink         diag.Sink
	logger       *slog.Logger
	maxFragments int
	strict       bool
}

// Option configures a Master.
type Option func(*Master)

// WithMode selects the initial wire mode. The default is RTU.
func WithMode(mode modbus.Mode) Option {
	return func(m *Master) { m.mode = mode }
}

// WithSink sets the diagnostics sink. The default drops every event.
func WithSink(sink diag.Sink) Option {
	return func(m *Master) {
		if sink != nil {
			m.sink = sink
		}
	}
}

// WithLogger sets the logger for transaction traces.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Master) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithMaxDeviceIDFragments bounds the round trips of one device
// identification read.
func WithMaxDeviceIDFragments(n int) Option {
	return func(m *Master) {
		if n > 0 {
			m.maxFragments = n
		}
	}
}

// WithStrictChecksum turns a checksum mismatch into the call error.
func WithStrictChecksum(strict bool) Option {
	return func(m *Master) { m.strict = strict }
}

// New creates a master on t.
func New(t transport.Transport, opts ...Option) *Master {
	m := &Master{
		transport:    t,
		mode:         modbus.ModeRTU,
		sink:         diag.Discard,
		logger:       slog.Default(),
		maxFragments: DefaultMaxDeviceIDFragments,
	}
	for _, opt := range opts {
		opt(m)
	}
	if ms, ok := t.(transport.ModeSetter); ok {
		ms.SetMode(m.mode)
	}
	return m
}

// Mode returns the current wire mode.
func (m *Master) Mode() modbus.Mode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

// SetMode switches the wire mode for the following transactions.
func (m *Master) SetMode(mode modbus.Mode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mode = mode
	if ms, ok := m.transport.(transport.ModeSetter); ok {
		ms.SetMode(mode)
	}
}

// Close closes the transport.
func (m *Master) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transport.Close()
}

// Response is the outcome of one raw transaction.
type Response struct {
	SlaveID    byte
	PDU        modbus.ProtocolDataUnit
	ChecksumOK bool
}

// Transact sends pdu to slaveID and returns the reply. A broadcast returns
// a nil Response and no error.
func (m *Master) Transact(ctx context.Context, slaveID byte, pdu modbus.ProtocolDataUnit) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transact(ctx, slaveID, pdu, true)
}

// Call runs fn against slaveID and decodes the reply. A broadcast returns
// the zero value of T and no error.
func Call[T any](ctx context.Context, m *Master, slaveID byte, fn function.Function[T]) (T, error) {
	return call(ctx, m, slaveID, fn, true)
}

func call[T any](ctx context.Context, m *Master, slaveID byte, fn function.Function[T], expectReply bool) (result T, err error) {
	pdu, err := fn.Encode()
	if err != nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	resp, err := m.transact(ctx, slaveID, pdu, expectReply)
	if err != nil || resp == nil {
		return
	}
	return fn.Decode(resp.PDU)
}

// transact runs one round trip. Caller must hold the mutex.
func (m *Master) transact(ctx context.Context, slaveID byte, pdu modbus.ProtocolDataUnit, expectReply bool) (*Response, error) {
	if err := modbus.ValidateSlaveID(slaveID); err != nil {
		return nil, err
	}
	if slaveID == modbus.BroadcastAddress {
		if d, ok := function.Lookup(pdu.FunctionCode); ok && !d.Broadcastable {
			return nil, modbus.InvalidArgument("function '%v' (%s) cannot be broadcast", pdu.FunctionCode, d.Name)
		}
	}

	mode := m.mode
	request, err := frame.Encode(mode, slaveID, pdu)
	if err != nil {
		return nil, err
	}
	event := diag.Event{Mode: mode, SlaveID: slaveID, FunctionCode: pdu.FunctionCode}

	m.emit(event, diag.FrameSent, func(e *diag.Event) { e.Frame = request })
	m.logger.Debug("modbus request", "mode", mode.String(), "slave", slaveID,
		"function", function.Name(pdu.FunctionCode), "frame", hex.EncodeToString(request))
	if err := m.transport.Send(ctx, request); err != nil {
		m.emit(event, diag.TransportError, func(e *diag.Event) { e.Err = err })
		return nil, fmt.Errorf("%w: %w", modbus.ErrTransport, err)
	}
	if slaveID == modbus.BroadcastAddress || !expectReply {
		return nil, nil
	}

	raw, err := m.transport.Receive(ctx)
	if err != nil {
		m.emit(event, diag.TransportError, func(e *diag.Event) { e.Err = err })
		return nil, fmt.Errorf("%w: %w", modbus.ErrTransport, err)
	}
	m.emit(event, diag.FrameReceived, func(e *diag.Event) { e.Frame = raw })

	f, err := frame.Decode(mode, raw)
	if err != nil {
		m.emit(event, diag.FramingError, func(e *diag.Event) { e.Frame = raw; e.Err = err })
		return nil, err
	}
	m.logger.Debug("modbus response", "mode", mode.String(), "slave", f.SlaveID,
		"function", function.Name(f.PDU.FunctionCode), "frame", hex.EncodeToString(raw), "checksum_ok", f.ChecksumOK)

	if !f.ChecksumOK {
		checksumErr := f.ChecksumError(mode)
		m.emit(event, diag.ChecksumMismatch, func(e *diag.Event) {
			e.Frame = raw
			e.Computed = f.Computed
			e.Found = f.Found
			e.Err = checksumErr
		})
		if m.strict {
			return nil, checksumErr
		}
	}
	if f.SlaveID != slaveID {
		return nil, fmt.Errorf("%w: got '%v', want '%v'", ErrSlaveMismatch, f.SlaveID, slaveID)
	}

	if f.PDU.IsException() {
		return nil, m.exception(event, pdu.FunctionCode, f.PDU)
	}
	if f.PDU.FunctionCode != pdu.FunctionCode {
		err := modbus.MalformedPDU(pdu.FunctionCode, "response function code '%v' does not match request '%v'", f.PDU.FunctionCode, pdu.FunctionCode)
		m.emit(event, diag.FramingError, func(e *diag.Event) { e.Frame = raw; e.Err = err })
		return nil, err
	}
	return &Response{SlaveID: f.SlaveID, PDU: f.PDU, ChecksumOK: f.ChecksumOK}, nil
}

// exception maps an exception PDU to its error.
func (m *Master) exception(event diag.Event, requestCode byte, pdu modbus.ProtocolDataUnit) error {
	if pdu.FunctionCode != requestCode|modbus.ExceptionFlag || len(pdu.Data) != 1 {
		err := modbus.MalformedPDU(requestCode, "malformed exception response '%v' '%x'", pdu.FunctionCode, pdu.Data)
		m.emit(event, diag.FramingError, func(e *diag.Event) { e.Err = err })
		return err
	}
	exErr := &modbus.ExceptionError{FunctionCode: pdu.FunctionCode, ExceptionCode: pdu.Data[0]}
	m.emit(event, diag.ExceptionResponse, func(e *diag.Event) {
		e.ExceptionCode = exErr.ExceptionCode
		e.Reason = exErr.Reason()
		e.Err = exErr
	})
	return exErr
}

func (m *Master) emit(base diag.Event, kind diag.EventKind, fill func(*diag.Event)) {
	base.Kind = kind
	if fill != nil {
		fill(&base)
	}
	m.sink.Emit(base)
}
