// Copyright (c) 2024 The NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package seed implements the BIP-39 mnemonic, PBKDF2 seed derivation, and
// Argon2id/AES-256-GCM encrypt-at-rest logic of the seed/crypto subsystem
// (spec §4.C). Buffer is provided for holding plaintext key material locked
// and zeroized deterministically; DeriveSeed, EncryptSeed and DecryptSeed
// themselves take and return plain byte slices.
package seed

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"strings"

	"github.com/RenAndKiwi/nostring/errs"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
)

// Supported mnemonic lengths, in words (spec §3 Mnemonic).
const (
	MinWords = 12
	MaxWords = 24
)

const seedLen = 64

// Argon2id parameters enforced at encrypt time (spec §3 EncryptedSeed: memory
// >= 64 MiB, time >= 3, parallelism 1).
const (
	argonTime    = 3
	argonMemory  = 64 * 1024 // KiB
	argonThreads = 1
	argonKeyLen  = 32

	saltLen  = 32
	nonceLen = 12
)

// GenerateMnemonic draws the entropy BIP-39 assigns to wordCount (128..256
// bits in 32-bit steps), appends the SHA-256 checksum bits BIP-39 requires, and renders the
// result as a wordCount-length mnemonic (12/15/18/21/24 words).
func GenerateMnemonic(wordCount int) (string, error) {
	entropyBits, ok := entropyBitsForWordCount(wordCount)
	if !ok {
		return "", errs.New(errs.InvalidMnemonic, "unsupported word count")
	}
	entropy := make([]byte, entropyBits/8)
	if _, err := rand.Read(entropy); err != nil {
		return "", errs.Wrap(errs.InvalidMnemonic, "reading entropy", err)
	}
	return entropyToMnemonic(entropy)
}

func entropyBitsForWordCount(wordCount int) (int, bool) {
	switch wordCount {
	case 12:
		return 128, true
	case 15:
		return 160, true
	case 18:
		return 192, true
	case 21:
		return 224, true
	case 24:
		return 256, true
	default:
		return 0, false
	}
}

func entropyToMnemonic(entropy []byte) (string, error) {
	entropyBits := len(entropy) * 8
	checksumBits := entropyBits / 32
	sum := sha256.Sum256(entropy)

	bits := make([]bool, entropyBits+checksumBits)
	for i := 0; i < entropyBits; i++ {
		bits[i] = (entropy[i/8]>>(7-uint(i%8)))&1 == 1
	}
	for i := 0; i < checksumBits; i++ {
		bits[entropyBits+i] = (sum[i/8]>>(7-uint(i%8)))&1 == 1
	}

	wordCount := len(bits) / 11
	words := make([]string, wordCount)
	for w := 0; w < wordCount; w++ {
		idx := 0
		for b := 0; b < 11; b++ {
			idx <<= 1
			if bits[w*11+b] {
				idx |= 1
			}
		}
		words[w] = englishWordlist[idx]
	}
	return strings.Join(words, " "), nil
}

// ParseMnemonic validates a mnemonic's word count, wordlist membership, and
// checksum, returning an error classified as InvalidMnemonic on any failure.
func ParseMnemonic(mnemonic string) error {
	words := strings.Fields(mnemonic)
	if _, ok := entropyBitsForWordCount(len(words)); !ok {
		return errs.New(errs.InvalidMnemonic, "unsupported word count")
	}

	index := make(map[string]int, len(englishWordlist))
	for i, w := range englishWordlist {
		index[w] = i
	}

	entropyBits := len(words) * 11 * 32 / 33
	checksumBits := len(words)*11 - entropyBits
	bits := make([]bool, len(words)*11)
	for w, word := range words {
		idx, ok := index[strings.ToLower(word)]
		if !ok {
			return errs.New(errs.InvalidMnemonic, "unknown word").WithItem(word)
		}
		for b := 0; b < 11; b++ {
			bits[w*11+b] = (idx>>(10-uint(b)))&1 == 1
		}
	}

	entropy := make([]byte, entropyBits/8)
	for i := 0; i < entropyBits; i++ {
		if bits[i] {
			entropy[i/8] |= 1 << (7 - uint(i%8))
		}
	}
	sum := sha256.Sum256(entropy)
	for i := 0; i < checksumBits; i++ {
		want := (sum[i/8]>>(7-uint(i%8)))&1 == 1
		if bits[entropyBits+i] != want {
			return errs.New(errs.InvalidMnemonic, "checksum mismatch")
		}
	}
	return nil
}

// DeriveSeed stretches a mnemonic (plus optional passphrase) into a 64-byte
// seed via PBKDF2-HMAC-SHA512, per BIP-39 (spec §4.C Seed derivation).
func DeriveSeed(mnemonic, passphrase string) []byte {
	normalized := normalizeMnemonic(mnemonic)
	salt := "mnemonic" + passphrase
	return pbkdf2.Key([]byte(normalized), []byte(salt), 2048, seedLen, sha512.New)
}

func normalizeMnemonic(mnemonic string) string {
	return strings.Join(strings.Fields(mnemonic), " ")
}

// KDFParams records the Argon2id parameters used for one EncryptedSeed, so
// decryption can reproduce the exact key even if future defaults change.
type KDFParams struct {
	Time    uint32
	Memory  uint32
	Threads uint8
}

// DefaultKDFParams returns the parameters EncryptSeed uses; exported so
// callers can display or log them (never the derived key itself).
func DefaultKDFParams() KDFParams {
	return KDFParams{Time: argonTime, Memory: argonMemory, Threads: argonThreads}
}

// EncryptedSeed is the on-disk record described in spec §3: one Argon2id
// salt, one AES-256-GCM nonce, the KDF parameters, and the ciphertext+tag.
type EncryptedSeed struct {
	Salt       [saltLen]byte
	Nonce      [nonceLen]byte
	Params     KDFParams
	Ciphertext []byte
}

// EncryptSeed encrypts plaintext seed bytes under password, using a fresh
// random salt and nonce each call so the (salt, nonce) pair is never reused
// across encryptions, even of the same plaintext.
func EncryptSeed(plaintext []byte, password string) (*EncryptedSeed, error) {
	es := &EncryptedSeed{Params: DefaultKDFParams()}
	if _, err := rand.Read(es.Salt[:]); err != nil {
		return nil, errs.Wrap(errs.BadPassword, "reading salt", err)
	}
	if _, err := rand.Read(es.Nonce[:]); err != nil {
		return nil, errs.Wrap(errs.BadPassword, "reading nonce", err)
	}

	key := argon2.IDKey([]byte(password), es.Salt[:], es.Params.Time, es.Params.Memory, es.Params.Threads, argonKeyLen)
	defer zero(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errs.Wrap(errs.CryptoProviderMissing, "constructing AES cipher", err)
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, nonceLen)
	if err != nil {
		return nil, errs.Wrap(errs.CryptoProviderMissing, "constructing AEAD", err)
	}
	es.Ciphertext = gcm.Seal(nil, es.Nonce[:], plaintext, nil)
	return es, nil
}

// DecryptSeed reverses EncryptSeed. Authentication failure (wrong password
// or tampered ciphertext) is surfaced as BadPassword, indistinguishable from
// the other by design (spec §4.C: "authentication failure is surfaced as
// BadPassword indistinguishably from tampering").
func DecryptSeed(es *EncryptedSeed, password string) ([]byte, error) {
	key := argon2.IDKey([]byte(password), es.Salt[:], es.Params.Time, es.Params.Memory, es.Params.Threads, argonKeyLen)
	defer zero(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errs.Wrap(errs.CryptoProviderMissing, "constructing AES cipher", err)
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, nonceLen)
	if err != nil {
		return nil, errs.Wrap(errs.CryptoProviderMissing, "constructing AEAD", err)
	}
	plaintext, err := gcm.Open(nil, es.Nonce[:], es.Ciphertext, nil)
	if err != nil {
		return nil, errs.New(errs.BadPassword, "decryption failed")
	}
	return plaintext, nil
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
