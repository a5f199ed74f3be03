// Copyright (c) 2024 The NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package codex32

import (
	"errors"
	"testing"

	"github.com/RenAndKiwi/nostring/errs"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []Share{
		{Threshold: 3, Identifier: "test", Index: 0, Payload: []byte("0123456789abcdef0123456789abcdef")},
		{Threshold: 2, Identifier: "acde", Index: 5, Payload: make([]byte, 16)},
		{Threshold: 0, Identifier: "zzzz", IsSecret: true, Payload: []byte{1, 2, 3, 4, 5, 6, 7, 8}},
	}
	for _, c := range cases {
		enc, err := Encode(c)
		if err != nil {
			t.Fatalf("Encode(%+v): %v", c, err)
		}
		got, err := Decode(enc)
		if err != nil {
			t.Fatalf("Decode(%q): %v", enc, err)
		}
		if got.Threshold != c.Threshold || got.Identifier != c.Identifier ||
			got.IsSecret != c.IsSecret || (!c.IsSecret && got.Index != c.Index) {
			t.Fatalf("round trip mismatch: got %+v, want %+v", got, c)
		}
		if string(got.Payload) != string(c.Payload) {
			t.Fatalf("payload mismatch: got %v, want %v", got.Payload, c.Payload)
		}
	}
}

func TestFlippedBitDetected(t *testing.T) {
	enc, err := Encode(Share{Threshold: 3, Identifier: "test", Index: 2, Payload: []byte("0123456789abcdef")})
	if err != nil {
		t.Fatal(err)
	}
	// Flip one character near the end (inside the checksum/payload tail) to
	// a different alphabet character and confirm the checksum rejects it.
	b := []byte(enc)
	last := b[len(b)-1]
	for _, c := range []byte(charset) {
		if c != last {
			b[len(b)-1] = c
			break
		}
	}
	_, err = Decode(string(b))
	var e *errs.Error
	if !errors.As(err, &e) || e.Kind != errs.AuthenticationFailed {
		t.Fatalf("want AuthenticationFailed (bad checksum), got %v", err)
	}
}

func TestInvalidAlphabetRejected(t *testing.T) {
	_, err := Decode("ms1" + string(rune(0)) + "badcharshouldfail")
	if err == nil {
		t.Fatal("expected error for invalid alphabet character")
	}
}
