// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "log:\n  level: info\n"), nil)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	want := SerialConfig{
		Device:      "/dev/ttyUSB0",
		BaudRate:    19200,
		DataBits:    8,
		Parity:      "E",
		StopBits:    1,
		Timeout:     500 * time.Millisecond,
		IdleTimeout: 60 * time.Second,
		RqstPause:   100 * time.Millisecond,
	}
	if diff := cmp.Diff(want, cfg.Serial); diff != "" {
		t.Errorf("serial config mismatch (-want +got):\n%s", diff)
	}
	if cfg.Master.Mode != "rtu" || cfg.Master.Slave != 1 || cfg.Master.MaxDeviceIDFragments != 16 {
		t.Errorf("master config = %+v", cfg.Master)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
serial:
  device: /dev/ttyS1
  baud_rate: 9600
  parity: n
  timeout: 2s
  rs485: true
  delay_rts_before_send: 1ms
master:
  mode: ASCII
  slave: 17
  strict_checksum: true
`)
	cfg, err := LoadConfig(path, nil)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
	if cfg.Serial.Device != "/dev/ttyS1" || cfg.Serial.BaudRate != 9600 || cfg.Serial.Parity != "N" {
		t.Errorf("serial config = %+v", cfg.Serial)
	}
	if cfg.Serial.DataBits != 7 {
		t.Errorf("data bits = %d, want 7 for ascii", cfg.Serial.DataBits)
	}
	if cfg.Serial.Timeout != 2*time.Second || !cfg.Serial.RS485 || cfg.Serial.DelayRtsBeforeSend != time.Millisecond {
		t.Errorf("serial timing = %+v", cfg.Serial)
	}
	if cfg.Master.Mode != "ascii" || cfg.Master.Slave != 17 || !cfg.Master.StrictChecksum {
		t.Errorf("master config = %+v", cfg.Master)
	}
}

func TestLoadConfigFlags(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("device", "", "")
	flags.Int("baud", 0, "")
	flags.String("mode", "", "")
	flags.Int("slave", 0, "")
	if err := flags.Parse([]string{"--device", "/dev/ttyACM0", "--baud", "115200", "--slave", "3"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(writeConfig(t, "serial:\n  device: /dev/ttyS0\n"), flags)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Serial.Device != "/dev/ttyACM0" || cfg.Serial.BaudRate != 115200 || cfg.Master.Slave != 3 {
		t.Errorf("flags not applied: serial %+v master %+v", cfg.Serial, cfg.Master)
	}
	if cfg.Master.Mode != "rtu" {
		t.Errorf("unchanged mode flag overrode default: %q", cfg.Master.Mode)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"Mode", "master:\n  mode: tcp\n"},
		{"Slave", "master:\n  slave: 248\n"},
		{"Parity", "serial:\n  parity: X\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfig(writeConfig(t, tt.content), nil); err == nil {
				t.Error("LoadConfig() should fail")
			}
		})
	}
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), nil); err == nil {
		t.Error("LoadConfig() of a missing explicit file should fail")
	}
}
