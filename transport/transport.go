// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package transport

import (
	"context"

	"github.com/ffutop/modbus-master/modbus"
)

// Transport moves complete ADUs over a serial line. The master owns the
// transport and never issues overlapping Send/Receive pairs.
type Transport interface {
	// Send writes one encoded frame.
	Send(ctx context.Context, frame []byte) error
	// Receive returns the next complete frame, or an error once the read
	// timeout passes.
	Receive(ctx context.Context) ([]byte, error)
	Close() error
}

// ModeSetter is implemented by transports that need to know the wire mode
// to tell where a received frame ends.
type ModeSetter interface {
	SetMode(mode modbus.Mode)
}
