// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package diag

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ffutop/modbus-master/modbus"
)

func TestSlogSink(t *testing.T) {
	tests := []struct {
		name  string
		event Event
		want  []string
	}{
		{"FrameSent", Event{Kind: FrameSent, SlaveID: 1, FunctionCode: 3, Frame: []byte{0x01, 0x03}},
			[]string{"level=DEBUG", `msg="frame sent"`, "mode=rtu", "slave=1", "frame=0103"}},
		{"ChecksumMismatch", Event{Kind: ChecksumMismatch, Mode: modbus.ModeASCII, Computed: 0x7A, Found: 0x7B},
			[]string{"level=WARN", `msg="checksum mismatch"`, "mode=ascii", "computed=122", "found=123"}},
		{"ExceptionResponse", Event{Kind: ExceptionResponse, FunctionCode: 0x83, ExceptionCode: 2, Reason: "Illegal Data Address"},
			[]string{"level=WARN", "exception=2", `reason="Illegal Data Address"`}},
		{"TransportError", Event{Kind: TransportError, Err: errors.New("port closed")},
			[]string{"level=ERROR", `msg="transport error"`, `error="port closed"`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
			NewSlogSink(logger).Emit(tt.event)
			line := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(line, w) {
					t.Errorf("log line %q does not contain %q", line, w)
				}
			}
		})
	}
}

func TestSlogSinkLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
	sink := NewSlogSink(logger)
	sink.Emit(Event{Kind: FrameReceived})
	if buf.Len() != 0 {
		t.Errorf("debug event logged at warn level: %q", buf.String())
	}
	sink.Emit(Event{Kind: FramingError})
	if buf.Len() == 0 {
		t.Error("framing error not logged")
	}
}

func TestRecorder(t *testing.T) {
	var r Recorder
	Discard.Emit(Event{Kind: FrameSent})
	r.Emit(Event{Kind: FrameSent})
	r.Emit(Event{Kind: FrameReceived})

	if diff := cmp.Diff([]EventKind{FrameSent, FrameReceived}, r.Kinds()); diff != "" {
		t.Errorf("Kinds() mismatch (-want +got):\n%s", diff)
	}
	if len(r.Events()) != 2 {
		t.Errorf("Events() = %d events, want 2", len(r.Events()))
	}
	r.Reset()
	if len(r.Events()) != 0 {
		t.Error("Reset() kept events")
	}
}
