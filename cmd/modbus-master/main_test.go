// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package main

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"bad mode", []string{"read-coils", "--mode", "tcp"}, "invalid master mode"},
		{"slave out of range", []string{"read-holding-registers", "--slave", "300"}, "slave id 300"},
		{"bad parity", []string{"read-coils", "--parity", "X"}, "invalid parity"},
		{"missing config file", []string{"read-coils", "--config", "/nonexistent/modbus-master.yaml"}, "failed to read config file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newRootCmd()
			cmd.SetOut(io.Discard)
			cmd.SetErr(io.Discard)
			cmd.SetArgs(tt.args)
			err := cmd.Execute()
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error: got %q want %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestSubcommands(t *testing.T) {
	var names []string
	for _, c := range newRootCmd().Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{
		"read-coils", "read-discrete-inputs", "read-holding-registers", "read-input-registers",
		"read-write-registers", "read-fifo-queue", "write-coil", "write-coils", "write-register",
		"write-registers", "mask-write-register", "read-file-record", "write-file-record",
		"read-exception-status", "comm-event-counter", "comm-event-log", "report-slave-id",
		"read-device-id", "diagnostics",
	} {
		found := false
		for _, name := range names {
			if name == want {
				found = true
			}
		}
		if !found {
			t.Errorf("missing subcommand %q in %v", want, names)
		}
	}
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	printRegisters(&buf, 107, []uint16{0x022B, 0x0064})
	printBits(&buf, 19, []bool{true, false})

	want := "107: 555 (0x022B)\n108: 100 (0x0064)\n19: 1\n20: 0\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestToUint16s(t *testing.T) {
	got, err := toUint16s([]uint{0, 0xFFFF})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]uint16{0, 0xFFFF}, got); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
	if _, err := toUint16s([]uint{0x10000}); err == nil {
		t.Error("expected error for a value above 0xFFFF")
	}
}
