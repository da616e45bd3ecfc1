// Copyright (c) 2025-2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ffutop/modbus-master/diag"
	"github.com/ffutop/modbus-master/internal/config"
	"github.com/ffutop/modbus-master/master"
	"github.com/ffutop/modbus-master/transport/serial"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string

	rootCmd := &cobra.Command{
		Use:   "modbus-master",
		Short: "Modbus RTU/ASCII serial line master",
		Long: `modbus-master issues Modbus requests to slaves on a serial line, in RTU
or ASCII mode, and prints the decoded replies.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configFile, "config", "c", "", "Path to config file")
	flags.StringP("device", "d", "", "Serial device")
	flags.IntP("baud", "b", 0, "Baud rate")
	flags.Int("data-bits", 0, "Data bits (default 8 for rtu, 7 for ascii)")
	flags.StringP("parity", "p", "", "Parity: N, E or O")
	flags.Int("stop-bits", 0, "Stop bits")
	flags.DurationP("timeout", "t", 0, "Response timeout")
	flags.StringP("mode", "m", "", "Wire mode: rtu or ascii")
	flags.IntP("slave", "s", 0, "Slave id, 0 for broadcast")
	flags.Bool("strict", false, "Fail on checksum mismatch")
	flags.String("log-level", "", "Log level: debug, info, warn or error")
	flags.String("log-file", "", "Log file, - for stderr")

	sess := &session{configFile: &configFile}
	rootCmd.PersistentPreRunE = sess.open
	rootCmd.PersistentPostRunE = sess.close

	rootCmd.AddCommand(
		newReadCoilsCmd(sess),
		newReadDiscreteInputsCmd(sess),
		newReadHoldingRegistersCmd(sess),
		newReadInputRegistersCmd(sess),
		newReadWriteRegistersCmd(sess),
		newReadFIFOQueueCmd(sess),
		newWriteCoilCmd(sess),
		newWriteCoilsCmd(sess),
		newWriteRegisterCmd(sess),
		newWriteRegistersCmd(sess),
		newMaskWriteCmd(sess),
		newReadFileRecordCmd(sess),
		newWriteFileRecordCmd(sess),
		newExceptionStatusCmd(sess),
		newCommEventCounterCmd(sess),
		newCommEventLogCmd(sess),
		newReportSlaveIDCmd(sess),
		newDeviceIDCmd(sess),
		newDiagnosticsCmd(sess),
	)
	return rootCmd
}

// session holds the master shared by one command invocation.
type session struct {
	configFile *string

	cfg    *config.Config
	master *master.Master
	ctx    context.Context
	cancel context.CancelFunc
}

func (s *session) open(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(*s.configFile, cmd.Flags())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	setupLogger(cfg.Log)
	s.cfg = cfg

	mode := cfg.WireMode()
	logger := slog.Default()
	s.master = master.New(serial.NewTransport(cfg.Serial, mode),
		master.WithMode(mode),
		master.WithLogger(logger),
		master.WithSink(diag.NewSlogSink(logger)),
		master.WithStrictChecksum(cfg.Master.StrictChecksum),
		master.WithMaxDeviceIDFragments(cfg.Master.MaxDeviceIDFragments),
	)
	s.ctx, s.cancel = signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	slog.Debug("modbus master ready", "device", cfg.Serial.Device, "mode", mode.String(), "slave", cfg.Master.Slave)
	return nil
}

func (s *session) close(cmd *cobra.Command, args []string) error {
	if s.cancel != nil {
		s.cancel()
	}
	if s.master != nil {
		return s.master.Close()
	}
	return nil
}

func (s *session) slave() byte {
	return byte(s.cfg.Master.Slave)
}

func setupLogger(cfg config.LogConfig) {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	switch cfg.Level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	}

	// stdout carries command output
	var handler slog.Handler
	if cfg.File != "" && cfg.File != "-" {
		f, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file, falling back to stderr: %v\n", err)
			handler = slog.NewTextHandler(os.Stderr, opts)
		} else {
			handler = slog.NewTextHandler(f, opts)
		}
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
