// Copyright (c) 2025-2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ffutop/modbus-master/modbus"
)

// Config defines the global configuration structure
type Config struct {
	Log    LogConfig    `mapstructure:"log"`
	Serial SerialConfig `mapstructure:"serial"`
	Master MasterConfig `mapstructure:"master"`
}

// LogConfig defines logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"` // debug, info, warn, error
	File  string `mapstructure:"file"`  // Log file path
}

// SerialConfig defines serial line settings
type SerialConfig struct {
	Device      string        `mapstructure:"device"`
	BaudRate    int           `mapstructure:"baud_rate"`
	DataBits    int           `mapstructure:"data_bits"` // 0 selects 8 for rtu, 7 for ascii
	Parity      string        `mapstructure:"parity"`    // N, E, O
	StopBits    int           `mapstructure:"stop_bits"`
	Timeout     time.Duration `mapstructure:"timeout"`
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`
	RqstPause   time.Duration `mapstructure:"rqst_pause"` // Pause between requests

	// RS485 specific
	RS485              bool          `mapstructure:"rs485"`
	DelayRtsBeforeSend time.Duration `mapstructure:"delay_rts_before_send"`
	DelayRtsAfterSend  time.Duration `mapstructure:"delay_rts_after_send"`
	RtsHighDuringSend  bool          `mapstructure:"rts_high_during_send"`
	RtsHighAfterSend   bool          `mapstructure:"rts_high_after_send"`
	RxDuringTx         bool          `mapstructure:"rx_during_tx"`
}

// MasterConfig defines the protocol settings of the master
type MasterConfig struct {
	Mode                 string `mapstructure:"mode"` // "rtu", "ascii"
	Slave                int    `mapstructure:"slave"`
	StrictChecksum       bool   `mapstructure:"strict_checksum"`
	MaxDeviceIDFragments int    `mapstructure:"max_device_id_fragments"`
}

// WireMode returns the parsed master mode.
func (c *Config) WireMode() modbus.Mode {
	mode, _ := modbus.ParseMode(c.Master.Mode)
	return mode
}

// flagKeys maps command line flags to configuration keys.
var flagKeys = map[string]string{
	"device":    "serial.device",
	"baud":      "serial.baud_rate",
	"data-bits": "serial.data_bits",
	"parity":    "serial.parity",
	"stop-bits": "serial.stop_bits",
	"timeout":   "serial.timeout",
	"mode":      "master.mode",
	"slave":     "master.slave",
	"strict":    "master.strict_checksum",
	"log-level": "log.level",
	"log-file":  "log.file",
}

// BindFlags binds every known flag present in flags to its key.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	if flags == nil {
		return nil
	}
	for name, key := range flagKeys {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("serial.device", "/dev/ttyUSB0")
	v.SetDefault("serial.baud_rate", 19200)
	v.SetDefault("serial.parity", "E")
	v.SetDefault("serial.stop_bits", 1)
	v.SetDefault("serial.timeout", 500*time.Millisecond)
	v.SetDefault("serial.idle_timeout", 60*time.Second)
	v.SetDefault("serial.rqst_pause", 100*time.Millisecond)
	v.SetDefault("master.mode", "rtu")
	v.SetDefault("master.slave", 1)
	v.SetDefault("master.max_device_id_fragments", 16)
}

// LoadConfig loads configuration from file, the environment and flags.
// Without an explicit file a missing config file is not an error.
func LoadConfig(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/modbus-master/")
		v.AddConfigPath("$HOME/.modbus-master")
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix("MODBUS_MASTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	if err := BindFlags(v, flags); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate / Fixups
	mode, err := modbus.ParseMode(config.Master.Mode)
	if err != nil {
		return nil, fmt.Errorf("invalid master mode: %w", err)
	}
	config.Master.Mode = mode.String()
	if config.Master.Slave < 0 || config.Master.Slave > modbus.MaxSlaveAddress {
		return nil, fmt.Errorf("slave id %d must be between 0 and %d", config.Master.Slave, modbus.MaxSlaveAddress)
	}
	if err := fixupSerial(&config.Serial, mode); err != nil {
		return nil, err
	}

	return &config, nil
}

func fixupSerial(s *SerialConfig, mode modbus.Mode) error {
	s.Parity = strings.ToUpper(s.Parity)
	switch s.Parity {
	case "N", "E", "O":
	case "":
		s.Parity = "E"
	default:
		return fmt.Errorf("invalid parity %q", s.Parity)
	}
	if s.DataBits == 0 {
		s.DataBits = mode.DataBits()
	}
	if s.StopBits == 0 {
		s.StopBits = 1
	}
	if s.Timeout == 0 {
		s.Timeout = 500 * time.Millisecond
	}
	return nil
}
