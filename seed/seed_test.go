// Copyright (c) 2024 The NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package seed

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/RenAndKiwi/nostring/errs"
)

func TestGenerateParseRoundTrip(t *testing.T) {
	for _, words := range []int{12, 15, 18, 21, 24} {
		m, err := GenerateMnemonic(words)
		if err != nil {
			t.Fatalf("GenerateMnemonic(%d): %v", words, err)
		}
		if got := len(strings.Fields(m)); got != words {
			t.Fatalf("GenerateMnemonic(%d) produced %d words", words, got)
		}
		if err := ParseMnemonic(m); err != nil {
			t.Fatalf("ParseMnemonic rejected freshly generated mnemonic: %v", err)
		}
	}
}

func TestGenerateRejectsBadWordCount(t *testing.T) {
	if _, err := GenerateMnemonic(13); err == nil {
		t.Fatal("expected error for unsupported word count")
	}
}

func TestParseRejectsUnknownWord(t *testing.T) {
	m := strings.Repeat("zzzznotaword ", 11) + "zzzznotaword"
	err := ParseMnemonic(m)
	var e *errs.Error
	if !errors.As(err, &e) || e.Kind != errs.InvalidMnemonic {
		t.Fatalf("want InvalidMnemonic, got %v", err)
	}
}

func TestParseRejectsBadChecksum(t *testing.T) {
	m, err := GenerateMnemonic(12)
	if err != nil {
		t.Fatal(err)
	}
	words := strings.Fields(m)
	// Swap the last word for a different wordlist entry; this almost always
	// breaks the checksum (and never coincidentally reproduces the mnemonic).
	replacement := englishWordlist[0]
	if words[len(words)-1] == replacement {
		replacement = englishWordlist[1]
	}
	words[len(words)-1] = replacement
	if err := ParseMnemonic(strings.Join(words, " ")); err == nil {
		t.Fatal("expected checksum mismatch to be detected")
	}
}

func TestDeriveSeedDeterministic(t *testing.T) {
	m := strings.TrimSpace(strings.Repeat("zoo ", 11) + "wrong")
	got := DeriveSeed(m, "")
	if len(got) != seedLen {
		t.Fatalf("DeriveSeed returned %d bytes, want %d", len(got), seedLen)
	}
	if again := DeriveSeed(m, ""); !bytes.Equal(got, again) {
		t.Fatal("DeriveSeed is not deterministic")
	}
	if withPass := DeriveSeed(m, "TREZOR"); bytes.Equal(got, withPass) {
		t.Fatal("passphrase must change the derived seed")
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	plaintext := []byte("0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcd")
	es, err := EncryptSeed(plaintext, "correct horse battery staple")
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecryptSeed(es, "correct horse battery staple")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Fatalf("decrypted seed mismatch: got %x, want %x", got, plaintext)
	}
}

func TestDecryptWrongPasswordFails(t *testing.T) {
	es, err := EncryptSeed([]byte("seed bytes"), "rightpassword")
	if err != nil {
		t.Fatal(err)
	}
	_, err = DecryptSeed(es, "wrongpassword")
	var e *errs.Error
	if !errors.As(err, &e) || e.Kind != errs.BadPassword {
		t.Fatalf("want BadPassword, got %v", err)
	}
}

func TestDecryptTamperedCiphertextFails(t *testing.T) {
	es, err := EncryptSeed([]byte("seed bytes"), "password")
	if err != nil {
		t.Fatal(err)
	}
	es.Ciphertext[0] ^= 0xFF
	_, err = DecryptSeed(es, "password")
	var e *errs.Error
	if !errors.As(err, &e) || e.Kind != errs.BadPassword {
		t.Fatalf("want BadPassword for tampered ciphertext, got %v", err)
	}
}

func TestEncryptUsesFreshSaltAndNonce(t *testing.T) {
	a, err := EncryptSeed([]byte("seed bytes"), "password")
	if err != nil {
		t.Fatal(err)
	}
	b, err := EncryptSeed([]byte("seed bytes"), "password")
	if err != nil {
		t.Fatal(err)
	}
	if a.Salt == b.Salt {
		t.Fatal("salt reused across encryptions")
	}
	if a.Nonce == b.Nonce {
		t.Fatal("nonce reused across encryptions")
	}
}
