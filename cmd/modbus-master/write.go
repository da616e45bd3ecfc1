// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ffutop/modbus-master/modbus/function"
)

func newWriteCoilCmd(s *session) *cobra.Command {
	var (
		address uint16
		on      bool
	)
	cmd := &cobra.Command{
		Use:     "write-coil",
		Short:   "Write a single coil (function 5)",
		Example: `  modbus-master write-coil -s 17 -a 172 --on`,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := s.master.WriteSingleCoil(s.ctx, s.slave(), address, on)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "coil %d: 0x%04X\n", res.Address, res.Value)
			return nil
		},
	}
	cmd.Flags().Uint16VarP(&address, "address", "a", 0, "Coil address")
	cmd.Flags().BoolVar(&on, "on", false, "Switch the coil on")
	return cmd
}

func newWriteCoilsCmd(s *session) *cobra.Command {
	var (
		address uint16
		values  []bool
	)
	cmd := &cobra.Command{
		Use:   "write-coils",
		Short: "Write multiple coils (function 15)",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := s.master.WriteMultipleCoils(s.ctx, s.slave(), address, values)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d coils at %d\n", res.Quantity, res.Address)
			return nil
		},
	}
	cmd.Flags().Uint16VarP(&address, "address", "a", 0, "Starting address")
	cmd.Flags().BoolSliceVarP(&values, "values", "v", nil, "Coil states, e.g. 1,0,1")
	return cmd
}

func newWriteRegisterCmd(s *session) *cobra.Command {
	var address, value uint16
	cmd := &cobra.Command{
		Use:   "write-register",
		Short: "Write a single holding register (function 6)",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := s.master.WriteSingleRegister(s.ctx, s.slave(), address, value)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "register %d: %d (0x%04X)\n", res.Address, res.Value, res.Value)
			return nil
		},
	}
	cmd.Flags().Uint16VarP(&address, "address", "a", 0, "Register address")
	cmd.Flags().Uint16VarP(&value, "value", "v", 0, "Register value")
	return cmd
}

func newWriteRegistersCmd(s *session) *cobra.Command {
	var (
		address uint16
		values  []uint
	)
	cmd := &cobra.Command{
		Use:   "write-registers",
		Short: "Write multiple holding registers (function 16)",
		RunE: func(cmd *cobra.Command, args []string) error {
			words, err := toUint16s(values)
			if err != nil {
				return err
			}
			res, err := s.master.WriteMultipleRegisters(s.ctx, s.slave(), address, words)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d registers at %d\n", res.Quantity, res.Address)
			return nil
		},
	}
	cmd.Flags().Uint16VarP(&address, "address", "a", 0, "Starting address")
	cmd.Flags().UintSliceVarP(&values, "values", "v", nil, "Register values")
	return cmd
}

func newMaskWriteCmd(s *session) *cobra.Command {
	var address, andMask, orMask uint16
	cmd := &cobra.Command{
		Use:   "mask-write-register",
		Short: "Modify a holding register with AND and OR masks (function 22)",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := s.master.MaskWriteRegister(s.ctx, s.slave(), address, andMask, orMask)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "register %d: and 0x%04X or 0x%04X\n", res.Address, res.AndMask, res.OrMask)
			return nil
		},
	}
	cmd.Flags().Uint16VarP(&address, "address", "a", 0, "Register address")
	cmd.Flags().Uint16Var(&andMask, "and", 0xFFFF, "AND mask")
	cmd.Flags().Uint16Var(&orMask, "or", 0x0000, "OR mask")
	return cmd
}

func newWriteFileRecordCmd(s *session) *cobra.Command {
	var (
		record function.FileRecord
		values []uint
	)
	cmd := &cobra.Command{
		Use:   "write-file-record",
		Short: "Write a group of file registers (function 21)",
		RunE: func(cmd *cobra.Command, args []string) error {
			words, err := toUint16s(values)
			if err != nil {
				return err
			}
			record.Values = words
			written, err := s.master.WriteFileRecord(s.ctx, s.slave(), record)
			if err != nil {
				return err
			}
			for _, r := range written {
				fmt.Fprintf(cmd.OutOrStdout(), "file %d record %d: %d registers\n", r.File, r.Record, len(r.Values))
			}
			return nil
		},
	}
	cmd.Flags().Uint16Var(&record.File, "file", 1, "File number")
	cmd.Flags().Uint16Var(&record.Record, "record", 0, "Starting record number")
	cmd.Flags().UintSliceVarP(&values, "values", "v", nil, "Register values")
	return cmd
}
