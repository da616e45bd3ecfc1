// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package master

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/ffutop/modbus-master/diag"
	"github.com/ffutop/modbus-master/modbus"
	"github.com/ffutop/modbus-master/modbus/frame"
	"github.com/ffutop/modbus-master/modbus/function"
	"github.com/ffutop/modbus-master/modbus/rtu"
	"github.com/google/go-cmp/cmp"
)

type scriptedReply struct {
	frame []byte
	err   error
}

// scriptedTransport records requests and answers each Receive with the next
// queued reply.
type scriptedTransport struct {
	mu       sync.Mutex
	mode     modbus.Mode
	sendErr  error
	replies  []scriptedReply
	sent     [][]byte
	receives int
	inFlight bool
	overlap  bool
	closed   bool
}

func (s *scriptedTransport) Send(ctx context.Context, frame []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		s.overlap = true
	}
	if s.sendErr != nil {
		return s.sendErr
	}
	s.inFlight = true
	s.sent = append(s.sent, append([]byte(nil), frame...))
	return nil
}

func (s *scriptedTransport) Receive(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
	s.receives++
	if len(s.replies) == 0 {
		return nil, io.ErrUnexpectedEOF
	}
	r := s.replies[0]
	s.replies = s.replies[1:]
	return r.frame, r.err
}

func (s *scriptedTransport) Close() error {
	s.closed = true
	return nil
}

func (s *scriptedTransport) SetMode(mode modbus.Mode) {
	s.mode = mode
}

func (s *scriptedTransport) reply(frames ...[]byte) {
	for _, f := range frames {
		s.replies = append(s.replies, scriptedReply{frame: f})
	}
}

func encode(t *testing.T, mode modbus.Mode, slaveID, code byte, data ...byte) []byte {
	t.Helper()
	raw, err := frame.Encode(mode, slaveID, modbus.ProtocolDataUnit{FunctionCode: code, Data: data})
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

func newTestMaster(opts ...Option) (*Master, *scriptedTransport, *diag.Recorder) {
	tr := &scriptedTransport{}
	rec := &diag.Recorder{}
	return New(tr, append([]Option{WithSink(rec)}, opts...)...), tr, rec
}

func TestReadHoldingRegisters(t *testing.T) {
	m, tr, rec := newTestMaster()
	tr.reply(encode(t, modbus.ModeRTU, 0x01, 0x03, 0x02, 0x12, 0x34))

	got, err := m.ReadHoldingRegisters(context.Background(), 0x01, 0x0000, 1)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]uint16{0x1234}, got); diff != "" {
		t.Errorf("registers mismatch (-want +got):\n%s", diff)
	}
	want := []byte{0x01, 0x03, 0x00, 0x00, 0x00, 0x01, 0x84, 0x0A}
	if len(tr.sent) != 1 || !bytes.Equal(tr.sent[0], want) {
		t.Errorf("sent % X, want % X", tr.sent, want)
	}
	if diff := cmp.Diff([]diag.EventKind{diag.FrameSent, diag.FrameReceived}, rec.Kinds()); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestExceptionResponse(t *testing.T) {
	tests := []struct {
		name   string
		code   byte
		reason string
		known  bool
	}{
		{"illegal data address", 0x02, "Illegal Data Address", true},
		{"gateway path", 0x0A, "Gateway Path Unavailable", true},
		{"unknown", 0x0C, "Unknown Error", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, tr, rec := newTestMaster()
			tr.reply(encode(t, modbus.ModeRTU, 0x01, 0x83, tt.code))

			_, err := m.ReadHoldingRegisters(context.Background(), 0x01, 0x0000, 1)
			var exErr *modbus.ExceptionError
			if !errors.As(err, &exErr) {
				t.Fatalf("error = %v, want ExceptionError", err)
			}
			if exErr.FunctionCode != 0x83 || exErr.ExceptionCode != tt.code {
				t.Errorf("exception = %+v", exErr)
			}
			if exErr.Reason() != tt.reason || exErr.Known() != tt.known {
				t.Errorf("reason = %q, known %v; want %q, %v", exErr.Reason(), exErr.Known(), tt.reason, tt.known)
			}
			events := rec.Events()
			last := events[len(events)-1]
			if last.Kind != diag.ExceptionResponse || last.ExceptionCode != tt.code || last.Reason != tt.reason {
				t.Errorf("last event = %+v", last)
			}
		})
	}
}

func TestMalformedException(t *testing.T) {
	m, tr, _ := newTestMaster()
	tr.reply(encode(t, modbus.ModeRTU, 0x01, 0x84, 0x02))

	_, err := m.ReadHoldingRegisters(context.Background(), 0x01, 0x0000, 1)
	if !errors.Is(err, modbus.ErrFraming) {
		t.Errorf("error = %v, want %v", err, modbus.ErrFraming)
	}
}

func TestBroadcast(t *testing.T) {
	m, tr, rec := newTestMaster()

	got, err := m.WriteSingleRegister(context.Background(), modbus.BroadcastAddress, 0x0001, 0x0003)
	if err != nil {
		t.Fatal(err)
	}
	if got != (function.SingleWrite{}) {
		t.Errorf("broadcast result = %+v, want zero value", got)
	}
	if tr.receives != 0 {
		t.Errorf("broadcast called Receive %d times", tr.receives)
	}
	want := []byte{0x00, 0x06, 0x00, 0x01, 0x00, 0x03}
	if len(tr.sent) != 1 || !bytes.Equal(tr.sent[0][:len(want)], want) {
		t.Errorf("sent % X", tr.sent)
	}
	if diff := cmp.Diff([]diag.EventKind{diag.FrameSent}, rec.Kinds()); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestInvalidRequests(t *testing.T) {
	tests := []struct {
		name string
		call func(m *Master) error
	}{
		{"slave out of range", func(m *Master) error {
			_, err := m.ReadCoils(context.Background(), 248, 0, 1)
			return err
		}},
		{"broadcast read", func(m *Master) error {
			_, err := m.ReadHoldingRegisters(context.Background(), modbus.BroadcastAddress, 0, 1)
			return err
		}},
		{"zero quantity", func(m *Master) error {
			_, err := m.ReadInputRegisters(context.Background(), 0x01, 0, 0)
			return err
		}},
		{"not a counter", func(m *Master) error {
			_, err := m.DiagnosticCounter(context.Background(), 0x01, function.DiagReturnQueryData)
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, tr, _ := newTestMaster()
			if err := tt.call(m); !errors.Is(err, modbus.ErrInvalidArgument) {
				t.Errorf("error = %v, want %v", err, modbus.ErrInvalidArgument)
			}
			if len(tr.sent) != 0 {
				t.Errorf("invalid request sent % X", tr.sent)
			}
		})
	}
}

func TestChecksumMismatch(t *testing.T) {
	corrupt := encode(t, modbus.ModeRTU, 0x01, 0x03, 0x02, 0x12, 0x34)
	corrupt[len(corrupt)-1]++

	t.Run("advisory", func(t *testing.T) {
		m, tr, rec := newTestMaster()
		tr.reply(corrupt)

		got, err := m.ReadHoldingRegisters(context.Background(), 0x01, 0x0000, 1)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff([]uint16{0x1234}, got); diff != "" {
			t.Errorf("registers mismatch (-want +got):\n%s", diff)
		}
		var mismatch *diag.Event
		for _, e := range rec.Events() {
			if e.Kind == diag.ChecksumMismatch {
				e := e
				mismatch = &e
			}
		}
		if mismatch == nil {
			t.Fatalf("no checksum event in %v", rec.Kinds())
		}
		if mismatch.Computed != 0x33B5 || mismatch.Found != 0x34B5 {
			t.Errorf("computed %04X found %04X", mismatch.Computed, mismatch.Found)
		}
	})

	t.Run("transact", func(t *testing.T) {
		m, tr, _ := newTestMaster()
		tr.reply(corrupt)

		resp, err := m.Transact(context.Background(), 0x01, modbus.ProtocolDataUnit{
			FunctionCode: modbus.FuncCodeReadHoldingRegisters,
			Data:         []byte{0x00, 0x00, 0x00, 0x01},
		})
		if err != nil {
			t.Fatal(err)
		}
		if resp.ChecksumOK || resp.SlaveID != 0x01 || !bytes.Equal(resp.PDU.Data, []byte{0x02, 0x12, 0x34}) {
			t.Errorf("response = %+v", resp)
		}
	})

	t.Run("strict", func(t *testing.T) {
		m, tr, _ := newTestMaster(WithStrictChecksum(true))
		tr.reply(corrupt)

		_, err := m.ReadHoldingRegisters(context.Background(), 0x01, 0x0000, 1)
		var checksumErr *modbus.ChecksumError
		if !errors.Is(err, modbus.ErrChecksum) || !errors.As(err, &checksumErr) {
			t.Fatalf("error = %v, want %v", err, modbus.ErrChecksum)
		}
		if checksumErr.Mode != modbus.ModeRTU || checksumErr.Computed != 0x33B5 || checksumErr.Found != 0x34B5 {
			t.Errorf("checksum error = %+v", checksumErr)
		}
	})
}

func TestASCIIMode(t *testing.T) {
	m, tr, _ := newTestMaster()
	m.SetMode(modbus.ModeASCII)
	if m.Mode() != modbus.ModeASCII || tr.mode != modbus.ModeASCII {
		t.Fatalf("mode = %v, transport mode = %v", m.Mode(), tr.mode)
	}
	tr.reply(encode(t, modbus.ModeASCII, 0x01, 0x03, 0x06, 0x02, 0x2B, 0x00, 0x00, 0x00, 0x64))

	got, err := m.ReadHoldingRegisters(context.Background(), 0x01, 0x006B, 3)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]uint16{0x022B, 0x0000, 0x0064}, got); diff != "" {
		t.Errorf("registers mismatch (-want +got):\n%s", diff)
	}
	if want := ":0103006b00038e\r\n"; len(tr.sent) != 1 || string(tr.sent[0]) != want {
		t.Errorf("sent %q, want %q", tr.sent, want)
	}
}

func TestWithModeSetsTransport(t *testing.T) {
	tr := &scriptedTransport{}
	m := New(tr, WithMode(modbus.ModeASCII))
	if m.Mode() != modbus.ModeASCII || tr.mode != modbus.ModeASCII {
		t.Errorf("mode = %v, transport mode = %v", m.Mode(), tr.mode)
	}
}

func TestSlaveMismatch(t *testing.T) {
	m, tr, _ := newTestMaster()
	tr.reply(encode(t, modbus.ModeRTU, 0x02, 0x03, 0x02, 0x12, 0x34))

	if _, err := m.ReadHoldingRegisters(context.Background(), 0x01, 0x0000, 1); !errors.Is(err, ErrSlaveMismatch) {
		t.Errorf("error = %v, want %v", err, ErrSlaveMismatch)
	}
}

func TestTransportErrors(t *testing.T) {
	t.Run("send", func(t *testing.T) {
		m, tr, rec := newTestMaster()
		tr.sendErr = io.ErrClosedPipe

		_, err := m.ReadCoils(context.Background(), 0x01, 0, 8)
		if !errors.Is(err, modbus.ErrTransport) || !errors.Is(err, io.ErrClosedPipe) {
			t.Errorf("error = %v", err)
		}
		if diff := cmp.Diff([]diag.EventKind{diag.FrameSent, diag.TransportError}, rec.Kinds()); diff != "" {
			t.Errorf("events mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("receive", func(t *testing.T) {
		m, tr, rec := newTestMaster()
		tr.replies = []scriptedReply{{err: rtu.ErrRequestTimedOut}}

		_, err := m.ReadCoils(context.Background(), 0x01, 0, 8)
		if !errors.Is(err, modbus.ErrTransport) || !errors.Is(err, rtu.ErrRequestTimedOut) {
			t.Errorf("error = %v", err)
		}
		if diff := cmp.Diff([]diag.EventKind{diag.FrameSent, diag.TransportError}, rec.Kinds()); diff != "" {
			t.Errorf("events mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestFramingErrors(t *testing.T) {
	tests := []struct {
		name  string
		reply func(t *testing.T) []byte
	}{
		{"short frame", func(t *testing.T) []byte { return []byte{0x01, 0x03} }},
		{"function mismatch", func(t *testing.T) []byte {
			return encode(t, modbus.ModeRTU, 0x01, 0x04, 0x02, 0x12, 0x34)
		}},
		{"byte count", func(t *testing.T) []byte {
			return encode(t, modbus.ModeRTU, 0x01, 0x03, 0x04, 0x12, 0x34)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, tr, _ := newTestMaster()
			tr.reply(tt.reply(t))

			if _, err := m.ReadHoldingRegisters(context.Background(), 0x01, 0x0000, 1); !errors.Is(err, modbus.ErrFraming) {
				t.Errorf("error = %v, want %v", err, modbus.ErrFraming)
			}
		})
	}
}

func TestCall(t *testing.T) {
	m, tr, _ := newTestMaster()
	tr.reply(encode(t, modbus.ModeRTU, 0x01, 0x01, 0x01, 0x05))

	got, err := Call[[]bool](context.Background(), m, 0x01, function.ReadCoils{Address: 0, Quantity: 3})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]bool{true, false, true}, got); diff != "" {
		t.Errorf("coils mismatch (-want +got):\n%s", diff)
	}
}

func TestSerializedTransactions(t *testing.T) {
	const callers = 8
	m, tr, _ := newTestMaster()
	for i := 0; i < callers; i++ {
		tr.reply(encode(t, modbus.ModeRTU, 0x01, 0x03, 0x02, 0x00, byte(i)))
	}

	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := m.ReadHoldingRegisters(context.Background(), 0x01, 0, 1); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
	if tr.overlap {
		t.Error("transactions overlapped on the transport")
	}
	if len(tr.sent) != callers {
		t.Errorf("sent %d requests, want %d", len(tr.sent), callers)
	}
}

func TestClose(t *testing.T) {
	m, tr, _ := newTestMaster()
	if err := m.Close(); err != nil || !tr.closed {
		t.Errorf("Close() = %v, closed %v", err, tr.closed)
	}
}
