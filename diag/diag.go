// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package diag carries protocol events from the master to an optional
// renderer. Protocol behavior never depends on the sink.
package diag

import (
	"context"
	"encoding/hex"
	"log/slog"
	"sync"

	"github.com/ffutop/modbus-master/modbus"
)

type EventKind int

const (
	FrameSent EventKind = iota + 1
	FrameReceived
	ChecksumMismatch
	ExceptionResponse
	TransportError
	FramingError
)

func (k EventKind) String() string {
	switch k {
	case FrameSent:
		return "frame sent"
	case FrameReceived:
		return "frame received"
	case ChecksumMismatch:
		return "checksum mismatch"
	case ExceptionResponse:
		return "exception response"
	case TransportError:
		return "transport error"
	case FramingError:
		return "framing error"
	default:
		return "unknown"
	}
}

// Event is one protocol event. Only the fields that apply to Kind are set.
type Event struct {
	Kind         EventKind
	Mode         modbus.Mode
	SlaveID      byte
	FunctionCode byte
	Frame        []byte
	// Computed and Found are set for checksum mismatches.
	Computed uint16
	Found    uint16
	// ExceptionCode and Reason are set for exception responses.
	ExceptionCode byte
	Reason        string
	Err           error
}

// Sink receives protocol events. Emit must not block for long; it runs on
// the caller's goroutine while the master holds its lock.
type Sink interface {
	Emit(Event)
}

type discard struct{}

func (discard) Emit(Event) {}

// Discard drops every event.
var Discard Sink = discard{}

// SlogSink renders events through a slog.Logger.
type SlogSink struct {
	logger *slog.Logger
}

// NewSlogSink returns a sink logging to logger, or to slog.Default() when
// logger is nil.
func NewSlogSink(logger *slog.Logger) *SlogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogSink{logger: logger}
}

func (s *SlogSink) Emit(e Event) {
	attrs := []slog.Attr{
		slog.String("mode", e.Mode.String()),
		slog.Int("slave", int(e.SlaveID)),
		slog.Int("function", int(e.FunctionCode)),
	}
	if e.Frame != nil {
		attrs = append(attrs, slog.String("frame", hex.EncodeToString(e.Frame)))
	}

	level := slog.LevelDebug
	switch e.Kind {
	case ChecksumMismatch:
		level = slog.LevelWarn
		attrs = append(attrs, slog.Any("computed", e.Computed), slog.Any("found", e.Found))
	case ExceptionResponse:
		level = slog.LevelWarn
		attrs = append(attrs, slog.Int("exception", int(e.ExceptionCode)), slog.String("reason", e.Reason))
	case TransportError, FramingError:
		level = slog.LevelError
	}
	if e.Err != nil {
		attrs = append(attrs, slog.String("error", e.Err.Error()))
	}
	s.logger.LogAttrs(context.Background(), level, e.Kind.String(), attrs...)
}

// Recorder keeps every event in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Emit(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Kinds returns the kinds of the recorded events in order.
func (r *Recorder) Kinds() []EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]EventKind, len(r.events))
	for i, e := range r.events {
		kinds[i] = e.Kind
	}
	return kinds
}

// Reset drops the recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
