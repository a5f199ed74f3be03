// Copyright (c) 2024 The NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package slip39

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/RenAndKiwi/nostring/errs"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []struct {
		index, threshold byte
		payload          []byte
	}{
		{0, 3, []byte("0123456789abcdef0123456789abcdef")},
		{5, 2, make([]byte, 16)},
		{1, 5, []byte{1, 2, 3, 4, 5, 6, 7, 8}},
	}
	for _, c := range cases {
		enc, err := Encode(c.index, c.threshold, c.payload)
		if err != nil {
			t.Fatalf("Encode(%+v): %v", c, err)
		}
		gotIndex, gotThreshold, gotPayload, err := Decode(enc)
		if err != nil {
			t.Fatalf("Decode(%q): %v", enc, err)
		}
		if gotIndex != c.index || gotThreshold != c.threshold {
			t.Fatalf("got index=%d threshold=%d, want index=%d threshold=%d",
				gotIndex, gotThreshold, c.index, c.threshold)
		}
		if !bytes.Equal(gotPayload, c.payload) {
			t.Fatalf("payload mismatch: got %v, want %v", gotPayload, c.payload)
		}
	}
}

func TestFlippedWordDetected(t *testing.T) {
	enc, err := Encode(2, 3, []byte("0123456789abcdef"))
	if err != nil {
		t.Fatal(err)
	}
	words := strings.Fields(enc)
	last := words[len(words)-1]
	for _, w := range wordlist {
		if w != last {
			words[len(words)-1] = w
			break
		}
	}
	_, _, _, err = Decode(strings.Join(words, " "))
	var e *errs.Error
	if !errors.As(err, &e) || e.Kind != errs.AuthenticationFailed {
		t.Fatalf("want AuthenticationFailed (bad checksum), got %v", err)
	}
}

func TestUnknownWordRejected(t *testing.T) {
	_, _, _, err := Decode("this is not a valid slip39 mnemonic at all")
	if err == nil {
		t.Fatal("expected error for unknown word")
	}
}

func TestTooShortRejected(t *testing.T) {
	_, _, _, err := Decode(wordlist[0] + " " + wordlist[1])
	var e *errs.Error
	if !errors.As(err, &e) || e.Kind != errs.InvalidShare {
		t.Fatalf("want InvalidShare for too-short mnemonic, got %v", err)
	}
}

func TestWordlistSize(t *testing.T) {
	if len(wordlist) != 1024 {
		t.Fatalf("wordlist must have exactly 1024 entries, got %d", len(wordlist))
	}
	seen := make(map[string]bool, len(wordlist))
	for _, w := range wordlist {
		if seen[w] {
			t.Fatalf("duplicate word %q in wordlist", w)
		}
		seen[w] = true
	}
}
