// Copyright (c) 2014 Quoc-Viet Nguyen. All rights reserved.
// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package crc implements the CRC-16 used by Modbus RTU frames
// (initial value 0xFFFF, reflected polynomial 0xA001).
package crc

import "github.com/sigurn/crc16"

var table = crc16.MakeTable(crc16.CRC16_MODBUS)

// CRC accumulates a Modbus CRC-16 over pushed bytes.
type CRC struct {
	crc uint16
}

// Reset restores the initial register value.
func (c *CRC) Reset() *CRC {
	c.crc = crc16.Init(table)
	return c
}

// PushBytes feeds bytes into the register.
func (c *CRC) PushBytes(bs []byte) *CRC {
	c.crc = crc16.Update(c.crc, bs, table)
	return c
}

// Value returns the checksum. The low byte goes on the wire first.
func (c *CRC) Value() uint16 {
	return crc16.Complete(c.crc, table)
}

// Checksum returns the CRC-16 of data.
func Checksum(data []byte) uint16 {
	var c CRC
	return c.Reset().PushBytes(data).Value()
}
