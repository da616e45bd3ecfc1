// Copyright (c) 2014 Quoc-Viet Nguyen. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package lrc

import (
	"math/rand"
	"testing"
)

func TestLRC(t *testing.T) {
	var lrc1 LRC
	lrc1.Reset().PushByte(0x01).PushByte(0x03)
	lrc1.PushBytes([]byte{0x01, 0x0A})

	if lrc1.Value() != 0xF1 {
		t.Fatalf("lrc expected %v, actual %v", 0xF1, lrc1.Value())
	}
}

func TestChecksumKnownValue(t *testing.T) {
	// 0x01+0x03+0x00+0x6B+0x00+0x03 = 0x72, two's complement 0x8E
	data := []byte{0x01, 0x03, 0x00, 0x6B, 0x00, 0x03}
	if got := Checksum(data); got != 0x8E {
		t.Errorf("Checksum = 0x%02X, want 0x8E", got)
	}
}

func TestChecksumCancelsSum(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		data := make([]byte, rnd.Intn(300))
		rnd.Read(data)
		var sum uint8
		for _, b := range data {
			sum += b
		}
		if sum+Checksum(data) != 0 {
			t.Fatalf("sum 0x%02X + lrc 0x%02X != 0 mod 256 for % X", sum, Checksum(data), data)
		}
	}
}

func TestChecksumEmpty(t *testing.T) {
	if got := Checksum(nil); got != 0 {
		t.Errorf("Checksum(nil) = 0x%02X, want 0", got)
	}
}
