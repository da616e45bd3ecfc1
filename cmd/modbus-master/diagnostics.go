// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ffutop/modbus-master/modbus/function"
)

func newExceptionStatusCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "read-exception-status",
		Short: "Read the eight exception status outputs (function 7)",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := s.master.ReadExceptionStatus(s.ctx, s.slave())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "status: 0x%02X\n", status.Status)
			for i, set := range status.Flags {
				fmt.Fprintf(cmd.OutOrStdout(), "output %d: %t\n", i, set)
			}
			return nil
		},
	}
}

func newCommEventCounterCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "comm-event-counter",
		Short: "Get the communication event counter (function 11)",
		RunE: func(cmd *cobra.Command, args []string) error {
			counter, err := s.master.GetCommEventCounter(s.ctx, s.slave())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "status: 0x%04X busy: %t\nevent count: %d\n", counter.Status, counter.Busy(), counter.EventCount)
			return nil
		},
	}
}

func newCommEventLogCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "comm-event-log",
		Short: "Get the communication event log (function 12)",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := s.master.GetCommEventLog(s.ctx, s.slave())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "status: 0x%04X\nevent count: %d\nmessage count: %d\n", log.Status, log.EventCount, log.MessageCount)
			for i, e := range log.Events {
				fmt.Fprintf(w, "event %d: 0x%02X %s\n", i, byte(e), e)
			}
			return nil
		},
	}
}

func newReportSlaveIDCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "report-slave-id",
		Short: "Report the slave type and run status (function 17)",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := s.master.ReportSlaveID(s.ctx, s.slave())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "run indicator: 0x%02X running: %t\nid: % X (%q)\n", id.RunIndicator, id.Running, id.ID, id.ID)
			return nil
		},
	}
}

func newDeviceIDCmd(s *session) *cobra.Command {
	var code, objectID uint8
	cmd := &cobra.Command{
		Use:   "read-device-id",
		Short: "Read device identification objects (function 43 / 14)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ident, err := s.master.ReadDeviceIdentification(s.ctx, s.slave(), code, objectID)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "conformity level: 0x%02X\n", ident.Conformity)
			for _, obj := range ident.Objects {
				fmt.Fprintf(w, "%s (0x%02X): %s\n", function.ObjectName(obj.ID), obj.ID, obj.Value)
			}
			return nil
		},
	}
	cmd.Flags().Uint8Var(&code, "code", function.ReadDeviceIDBasic, "Read device id code: 1 basic, 2 regular, 3 extended, 4 specific")
	cmd.Flags().Uint8Var(&objectID, "object", function.ObjectVendorName, "First object id")
	return cmd
}

func newDiagnosticsCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diagnostics",
		Short: "Serial line diagnostics (function 8)",
	}

	var echo []byte
	queryCmd := &cobra.Command{
		Use:   "return-query-data",
		Short: "Check the slave echoes the query data",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := s.master.ReturnQueryData(s.ctx, s.slave(), echo)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "echo: % X\n", data)
			return nil
		},
	}
	queryCmd.Flags().BytesHexVar(&echo, "data", []byte{0xA5, 0x37}, "Query data in hex")

	var clearLog bool
	restartCmd := &cobra.Command{
		Use:   "restart",
		Short: "Restart the communications option of the slave",
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.master.RestartCommunications(s.ctx, s.slave(), clearLog)
		},
	}
	restartCmd.Flags().BoolVar(&clearLog, "clear-log", false, "Clear the communication event log")

	registerCmd := &cobra.Command{
		Use:   "register",
		Short: "Return the diagnostic register",
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := s.master.DiagnosticRegister(s.ctx, s.slave())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "diagnostic register: 0x%04X\n", value)
			return nil
		},
	}

	var delimiter uint8
	delimiterCmd := &cobra.Command{
		Use:   "change-ascii-delimiter",
		Short: "Change the ASCII end of message character",
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.master.ChangeASCIIDelimiter(s.ctx, s.slave(), delimiter)
		},
	}
	delimiterCmd.Flags().Uint8Var(&delimiter, "delimiter", '\n', "New delimiter character code")

	listenOnlyCmd := &cobra.Command{
		Use:   "force-listen-only",
		Short: "Put the slave in listen only mode",
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.master.ForceListenOnly(s.ctx, s.slave())
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear-counters",
		Short: "Clear the counters and the diagnostic register",
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.master.ClearCounters(s.ctx, s.slave())
		},
	}

	clearOverrunCmd := &cobra.Command{
		Use:   "clear-overrun",
		Short: "Clear the overrun counter and flag",
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.master.ClearOverrunCounter(s.ctx, s.slave())
		},
	}

	var sub uint16
	counterCmd := &cobra.Command{
		Use:   "counter",
		Short: "Read one diagnostic counter (sub-function 0x0B to 0x12)",
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := s.master.DiagnosticCounter(s.ctx, s.slave(), sub)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d\n", function.DiagnosticName(sub), value)
			return nil
		},
	}
	counterCmd.Flags().Uint16Var(&sub, "sub", function.DiagBusMessageCount, "Counter sub-function")

	cmd.AddCommand(queryCmd, restartCmd, registerCmd, delimiterCmd, listenOnlyCmd, clearCmd, clearOverrunCmd, counterCmd)
	return cmd
}
