// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package ascii

import (
	"errors"
	"fmt"
	"io"
	"time"
)

var ErrRequestTimedOut = errors.New("modbus: request timed out")

// ReadFrame reads one ASCII frame, from ':' up to and including CR LF.
// Characters before the start character are discarded; a second ':' restarts
// the frame.
func ReadFrame(r io.Reader, deadline time.Time) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("reader is nil")
	}
	buf := make([]byte, 1)
	data := make([]byte, 0, MaxSize)
	started := false

	for {
		if time.Now().After(deadline) {
			return nil, ErrRequestTimedOut
		}
		if _, err := io.ReadAtLeast(r, buf, 1); err != nil {
			return nil, err
		}

		if buf[0] == Start {
			data = append(data[:0], buf[0])
			started = true
			continue
		}
		if !started {
			continue
		}

		data = append(data, buf[0])
		if buf[0] == LF && data[len(data)-2] == CR {
			return data, nil
		}
		if len(data) >= MaxSize {
			return nil, fmt.Errorf("modbus: ascii frame exceeds '%v' characters", MaxSize)
		}
	}
}
