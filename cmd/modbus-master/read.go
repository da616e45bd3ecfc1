// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ffutop/modbus-master/modbus/function"
)

type rangeFlags struct {
	address  uint16
	quantity uint16
}

func (f *rangeFlags) register(cmd *cobra.Command, quantity uint16) {
	cmd.Flags().Uint16VarP(&f.address, "address", "a", 0, "Starting address")
	cmd.Flags().Uint16VarP(&f.quantity, "quantity", "q", quantity, "Quantity to read")
}

func newReadCoilsCmd(s *session) *cobra.Command {
	flags := &rangeFlags{}
	cmd := &cobra.Command{
		Use:     "read-coils",
		Short:   "Read coils (function 1)",
		Example: `  modbus-master read-coils --slave 1 --address 19 --quantity 10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := s.master.ReadCoils(s.ctx, s.slave(), flags.address, flags.quantity)
			if err != nil {
				return err
			}
			printBits(cmd.OutOrStdout(), flags.address, values)
			return nil
		},
	}
	flags.register(cmd, 1)
	return cmd
}

func newReadDiscreteInputsCmd(s *session) *cobra.Command {
	flags := &rangeFlags{}
	cmd := &cobra.Command{
		Use:   "read-discrete-inputs",
		Short: "Read discrete inputs (function 2)",
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := s.master.ReadDiscreteInputs(s.ctx, s.slave(), flags.address, flags.quantity)
			if err != nil {
				return err
			}
			printBits(cmd.OutOrStdout(), flags.address, values)
			return nil
		},
	}
	flags.register(cmd, 1)
	return cmd
}

func newReadHoldingRegistersCmd(s *session) *cobra.Command {
	flags := &rangeFlags{}
	cmd := &cobra.Command{
		Use:     "read-holding-registers",
		Aliases: []string{"read-holding"},
		Short:   "Read holding registers (function 3)",
		Example: `  modbus-master read-holding-registers -s 17 -a 107 -q 3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := s.master.ReadHoldingRegisters(s.ctx, s.slave(), flags.address, flags.quantity)
			if err != nil {
				return err
			}
			printRegisters(cmd.OutOrStdout(), flags.address, values)
			return nil
		},
	}
	flags.register(cmd, 1)
	return cmd
}

func newReadInputRegistersCmd(s *session) *cobra.Command {
	flags := &rangeFlags{}
	cmd := &cobra.Command{
		Use:     "read-input-registers",
		Aliases: []string{"read-input"},
		Short:   "Read input registers (function 4)",
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := s.master.ReadInputRegisters(s.ctx, s.slave(), flags.address, flags.quantity)
			if err != nil {
				return err
			}
			printRegisters(cmd.OutOrStdout(), flags.address, values)
			return nil
		},
	}
	flags.register(cmd, 1)
	return cmd
}

func newReadWriteRegistersCmd(s *session) *cobra.Command {
	var (
		read         rangeFlags
		writeAddress uint16
		values       []uint
	)
	cmd := &cobra.Command{
		Use:   "read-write-registers",
		Short: "Write then read holding registers in one transaction (function 23)",
		RunE: func(cmd *cobra.Command, args []string) error {
			words, err := toUint16s(values)
			if err != nil {
				return err
			}
			result, err := s.master.ReadWriteMultipleRegisters(s.ctx, s.slave(), read.address, read.quantity, writeAddress, words)
			if err != nil {
				return err
			}
			printRegisters(cmd.OutOrStdout(), read.address, result)
			return nil
		},
	}
	read.register(cmd, 1)
	cmd.Flags().Uint16Var(&writeAddress, "write-address", 0, "Write starting address")
	cmd.Flags().UintSliceVarP(&values, "values", "v", nil, "Register values to write")
	return cmd
}

func newReadFIFOQueueCmd(s *session) *cobra.Command {
	var address uint16
	cmd := &cobra.Command{
		Use:   "read-fifo-queue",
		Short: "Read a FIFO queue of registers (function 24)",
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := s.master.ReadFIFOQueue(s.ctx, s.slave(), address)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "count: %d\n", len(values))
			for i, v := range values {
				fmt.Fprintf(cmd.OutOrStdout(), "[%d]: %d (0x%04X)\n", i, v, v)
			}
			return nil
		},
	}
	cmd.Flags().Uint16VarP(&address, "address", "a", 0, "FIFO pointer address")
	return cmd
}

func newReadFileRecordCmd(s *session) *cobra.Command {
	var req function.FileRecordRequest
	cmd := &cobra.Command{
		Use:   "read-file-record",
		Short: "Read a group of file registers (function 20)",
		RunE: func(cmd *cobra.Command, args []string) error {
			groups, err := s.master.ReadFileRecord(s.ctx, s.slave(), req)
			if err != nil {
				return err
			}
			for _, group := range groups {
				printRegisters(cmd.OutOrStdout(), req.Record, group)
			}
			return nil
		},
	}
	cmd.Flags().Uint16Var(&req.File, "file", 1, "File number")
	cmd.Flags().Uint16Var(&req.Record, "record", 0, "Starting record number")
	cmd.Flags().Uint16VarP(&req.Count, "quantity", "q", 1, "Number of registers")
	return cmd
}

func printBits(w io.Writer, address uint16, values []bool) {
	for i, v := range values {
		state := 0
		if v {
			state = 1
		}
		fmt.Fprintf(w, "%d: %d\n", int(address)+i, state)
	}
}

func printRegisters(w io.Writer, address uint16, values []uint16) {
	for i, v := range values {
		fmt.Fprintf(w, "%d: %d (0x%04X)\n", int(address)+i, v, v)
	}
}

func toUint16s(values []uint) ([]uint16, error) {
	words := make([]uint16, len(values))
	for i, v := range values {
		if v > 0xFFFF {
			return nil, fmt.Errorf("value %d does not fit a register", v)
		}
		words[i] = uint16(v)
	}
	return words, nil
}
