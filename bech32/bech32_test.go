// Copyright (c) 2024 The NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package bech32

import (
	"errors"
	"testing"

	"github.com/RenAndKiwi/nostring/errs"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	payload := []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}
	groups, err := ConvertBits(payload, 8, 5, true)
	if err != nil {
		t.Fatal(err)
	}
	for _, enc := range []Encoding{Bech32, Bech32M} {
		s, err := Encode("bc", groups, enc)
		if err != nil {
			t.Fatal(err)
		}
		gotHRP, gotData, err := Decode(s, enc)
		if err != nil {
			t.Fatalf("Decode(%q): %v", s, err)
		}
		if gotHRP != "bc" {
			t.Fatalf("hrp mismatch: got %q", gotHRP)
		}
		back, err := ConvertBits(gotData, 5, 8, false)
		if err != nil {
			t.Fatal(err)
		}
		if string(back) != string(payload) {
			t.Fatalf("payload mismatch: got %v, want %v", back, payload)
		}
	}
}

func TestWrongEncodingRejected(t *testing.T) {
	groups, _ := ConvertBits([]byte{1, 2, 3}, 8, 5, true)
	s, err := Encode("bc", groups, Bech32)
	if err != nil {
		t.Fatal(err)
	}
	_, _, err = Decode(s, Bech32M)
	var e *errs.Error
	if !errors.As(err, &e) || e.Kind != errs.AuthenticationFailed {
		t.Fatalf("want AuthenticationFailed when checksum variant mismatches, got %v", err)
	}
}

func TestDecodeRejectsMixedCase(t *testing.T) {
	if _, _, err := Decode("Bc1Qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4", Bech32); err == nil {
		t.Fatal("expected mixed-case rejection")
	}
}
