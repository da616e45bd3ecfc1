// Copyright (c) 2014 Quoc-Viet Nguyen. All rights reserved.
// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package serial implements the master side transport over a serial line,
// for both RTU and ASCII framing.
package serial

import (
	"context"
	"encoding/hex"
	"errors"
	"log/slog"
	"time"

	"github.com/ffutop/modbus-master/internal/config"
	"github.com/ffutop/modbus-master/modbus"
	"github.com/ffutop/modbus-master/modbus/ascii"
	"github.com/ffutop/modbus-master/modbus/rtu"
)

var ErrNoRequest = errors.New("modbus: receive without outstanding request")

// Transport implements transport.Transport on a serial line.
type Transport struct {
	serialPort

	// RqstPause is the minimum quiet time between the end of one
	// transaction and the next request.
	RqstPause time.Duration

	mode    modbus.Mode
	request []byte
}

// NewTransport allocates a serial transport. The port is opened on first use.
func NewTransport(cfg config.SerialConfig, mode modbus.Mode) *Transport {
	t := &Transport{mode: mode, RqstPause: cfg.RqstPause}

	// Map internal config to serial.Config
	t.serialPort.Config.Address = cfg.Device
	t.serialPort.Config.BaudRate = cfg.BaudRate
	t.serialPort.Config.DataBits = cfg.DataBits
	t.serialPort.Config.StopBits = cfg.StopBits
	t.serialPort.Config.Parity = cfg.Parity
	t.serialPort.Config.Timeout = cfg.Timeout
	if t.serialPort.Config.DataBits == 0 {
		t.serialPort.Config.DataBits = mode.DataBits()
	}
	if t.serialPort.Config.Timeout <= 0 {
		t.serialPort.Config.Timeout = serialTimeout
	}
	if cfg.RS485 {
		t.serialPort.Config.RS485.Enabled = true
		t.serialPort.Config.RS485.DelayRtsBeforeSend = cfg.DelayRtsBeforeSend
		t.serialPort.Config.RS485.DelayRtsAfterSend = cfg.DelayRtsAfterSend
		t.serialPort.Config.RS485.RtsHighDuringSend = cfg.RtsHighDuringSend
		t.serialPort.Config.RS485.RtsHighAfterSend = cfg.RtsHighAfterSend
		t.serialPort.Config.RS485.RxDuringTx = cfg.RxDuringTx
	}

	t.IdleTimeout = cfg.IdleTimeout
	if t.IdleTimeout == 0 {
		t.IdleTimeout = serialIdleTimeout
	}
	return t
}

// SetMode selects how received frames are delimited.
func (t *Transport) SetMode(mode modbus.Mode) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.mode = mode
}

// Send writes one frame, after the request pause has passed since the last
// activity on the line.
func (t *Transport) Send(ctx context.Context, frame []byte) (err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err = t.connect(ctx); err != nil {
		return
	}
	if !t.lastActivity.IsZero() {
		if err = sleep(ctx, t.RqstPause-time.Since(t.lastActivity)); err != nil {
			return
		}
	}
	t.lastActivity = time.Now()
	t.startCloseTimer()

	slog.Debug("send to modbus slave", "mode", t.mode.String(), "request", hex.EncodeToString(frame))
	if _, err = t.port.Write(frame); err != nil {
		t.request = nil
		return
	}
	t.request = append(t.request[:0], frame...)
	return
}

// Receive reads the reply to the last frame sent.
func (t *Transport) Receive(ctx context.Context) (frame []byte, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.port == nil || len(t.request) == 0 {
		return nil, ErrNoRequest
	}
	defer func() {
		t.lastActivity = time.Now()
		t.startCloseTimer()
	}()

	deadline := time.Now().Add(t.Config.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	switch t.mode {
	case modbus.ModeASCII:
		frame, err = ascii.ReadFrame(t.port, deadline)
	default:
		// Let the request leave the line before polling for the reply.
		if err = sleep(ctx, t.calculateDelay(len(t.request))); err != nil {
			return nil, err
		}
		frame, err = rtu.ReadResponse(t.request, t.port, deadline)
	}
	if err != nil {
		return nil, err
	}
	slog.Debug("recv from modbus slave", "mode", t.mode.String(), "response", hex.EncodeToString(frame))
	return frame, nil
}
