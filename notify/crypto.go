// Copyright (c) 2024 The NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package notify

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/RenAndKiwi/nostring/errs"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	"crypto/sha256"
	"io"
)

// hkdfInfo binds derived conversation keys to this application, the same
// role NIP-44's "nip44-v2" salt plays against cross-protocol key reuse.
var hkdfInfo = []byte("nostring-dm-v1")

// EncryptDM produces an authenticated, bound-to-recipient ciphertext for a
// direct message (spec §6.3: "ciphertext is useless without the
// recipient's private key"). This is a ChaCha20-Poly1305 construction over
// an ECDH-derived conversation key, not a byte-exact NIP-44 implementation.
func EncryptDM(senderSecret [32]byte, recipientPub [32]byte, plaintext []byte) (string, error) {
	key, err := conversationKey(senderSecret, recipientPub)
	if err != nil {
		return "", err
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return "", errs.Wrap(errs.CryptoProviderMissing, "failed to construct AEAD", err)
	}
	nonce := make([]byte, chacha20poly1305.NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", errs.Wrap(errs.CryptoProviderMissing, "failed to read random nonce", err)
	}
	ciphertext := aead.Seal(nonce, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// DecryptDM reverses EncryptDM given the recipient's secret and the
// sender's public key.
func DecryptDM(recipientSecret [32]byte, senderPub [32]byte, payload string) ([]byte, error) {
	key, err := conversationKey(recipientSecret, senderPub)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, errs.Wrap(errs.CryptoProviderMissing, "failed to construct AEAD", err)
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, errs.New(errs.AuthenticationFailed, "malformed DM payload")
	}
	if len(raw) < chacha20poly1305.NonceSize {
		return nil, errs.New(errs.AuthenticationFailed, "truncated DM payload")
	}
	nonce, ciphertext := raw[:chacha20poly1305.NonceSize], raw[chacha20poly1305.NonceSize:]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, errs.New(errs.AuthenticationFailed, "DM authentication failed")
	}
	return plaintext, nil
}

// conversationKey derives a shared symmetric key from an ECDH shared
// point between secret and pub, the way NIP-44 derives its conversation
// key, via HKDF-SHA256 over the shared x-coordinate.
func conversationKey(secret [32]byte, pub [32]byte) ([]byte, error) {
	priv := secp256k1.PrivKeyFromBytes(secret[:])
	defer priv.Zero()

	pubKey, err := secp256k1.ParsePubKey(append([]byte{0x02}, pub[:]...))
	if err != nil {
		return nil, errs.Wrap(errs.InvalidXpub, "invalid recipient public key", err)
	}

	var sharedX secp256k1.FieldVal
	var pt secp256k1.JacobianPoint
	pubKey.AsJacobian(&pt)
	var scalar secp256k1.ModNScalar
	scalar.SetByteSlice(priv.Serialize())
	var shared secp256k1.JacobianPoint
	secp256k1.ScalarMultNonConst(&scalar, &pt, &shared)
	shared.ToAffine()
	sharedX = shared.X

	hk := hkdf.New(sha256.New, sharedX.Bytes()[:], nil, hkdfInfo)
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hk, key); err != nil {
		return nil, errs.Wrap(errs.CryptoProviderMissing, "failed to derive conversation key", err)
	}
	return key, nil
}
