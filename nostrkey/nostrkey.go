// Copyright (c) 2024 The NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package nostrkey implements NIP-06 Nostr key derivation and the npub/nsec
// bech32 encodings (NIP-19), plus the service key lifecycle the notify
// subsystem uses to sign reminder DMs (spec §4.C Derivation, §3 ServiceKey).
package nostrkey

import (
	"crypto/rand"

	"github.com/RenAndKiwi/nostring/bech32"
	"github.com/RenAndKiwi/nostring/errs"
	"github.com/RenAndKiwi/nostring/hdkeychain"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

const (
	npubHRP = "npub"
	nsecHRP = "nsec"
)

// KeyPair is a Nostr identity: a secp256k1 keypair whose public key is
// serialized x-only, per NIP-01.
type KeyPair struct {
	secret [32]byte
	pubKey [32]byte // x-only, as NIP-01 requires
}

// DeriveIdentity derives the NIP-06 identity keypair (m/44'/1237'/0'/0/0)
// from a BIP-32 master key built from the wallet's seed.
func DeriveIdentity(master *hdkeychain.ExtendedKey, account uint32) (*KeyPair, error) {
	leaf, err := hdkeychain.Derive(master, hdkeychain.NIP06Path(account))
	if err != nil {
		return nil, errs.Wrap(errs.InvalidXpub, "deriving NIP-06 path", err)
	}
	priv, err := leaf.ECPrivKey()
	if err != nil {
		return nil, errs.Wrap(errs.InvalidXpub, "extracting NIP-06 private key", err)
	}
	return keyPairFromPrivate(priv), nil
}

// GenerateServiceKey creates a fresh random Nostr keypair for the notify
// subsystem's owned ServiceKey (spec §3: "random Nostr keypair owned by the
// app for sending reminders").
func GenerateServiceKey() (*KeyPair, error) {
	var secretBytes [32]byte
	if _, err := rand.Read(secretBytes[:]); err != nil {
		return nil, errs.Wrap(errs.CryptoProviderMissing, "reading random service key", err)
	}
	priv := secp256k1.PrivKeyFromBytes(secretBytes[:])
	return keyPairFromPrivate(priv), nil
}

// FromSecretBytes rebuilds a KeyPair from a raw 32-byte secret scalar, for
// example one recovered from a Shamir/Codex32 combine (spec §6.6
// recover_nsec).
func FromSecretBytes(secret [32]byte) *KeyPair {
	priv := secp256k1.PrivKeyFromBytes(secret[:])
	return keyPairFromPrivate(priv)
}

func keyPairFromPrivate(priv *secp256k1.PrivateKey) *KeyPair {
	kp := &KeyPair{}
	privBytes := priv.Serialize()
	copy(kp.secret[:], privBytes)
	pub := priv.PubKey().SerializeCompressed()
	copy(kp.pubKey[:], pub[1:]) // drop the leading parity byte for x-only form
	return kp
}

// PubKeyHex returns the 32-byte x-only public key as used in raw Nostr
// event JSON ("pubkey" field).
func (k *KeyPair) PubKeyHex() [32]byte { return k.pubKey }

// SecretBytes returns the raw 32-byte private scalar. Callers should wrap
// this immediately in a locked buffer (seed.Buffer) rather than retain it.
func (k *KeyPair) SecretBytes() [32]byte { return k.secret }

// Npub renders the public key as a NIP-19 "npub1..." bech32 string.
func (k *KeyPair) Npub() (string, error) {
	return encodeTLVLess(npubHRP, k.pubKey[:])
}

// Nsec renders the private key as a NIP-19 "nsec1..." bech32 string. Callers
// must treat the result as secret material: it is never logged or placed in
// an error.
func (k *KeyPair) Nsec() (string, error) {
	return encodeTLVLess(nsecHRP, k.secret[:])
}

func encodeTLVLess(hrp string, raw []byte) (string, error) {
	groups, err := bech32.ConvertBits(raw, 8, 5, true)
	if err != nil {
		return "", errs.Wrap(errs.InvalidShare, "regrouping for bech32", err)
	}
	return bech32.Encode(hrp, groups, bech32.Bech32)
}

// ParseNpub decodes a NIP-19 "npub1..." string back to its raw 32 bytes.
func ParseNpub(s string) ([32]byte, error) {
	return decodeTLVLess(s, npubHRP)
}

// ParseNsec decodes a NIP-19 "nsec1..." string back to its raw 32 bytes.
func ParseNsec(s string) ([32]byte, error) {
	return decodeTLVLess(s, nsecHRP)
}

func decodeTLVLess(s, wantHRP string) ([32]byte, error) {
	var out [32]byte
	hrp, data, err := bech32.Decode(s, bech32.Bech32)
	if err != nil {
		return out, err
	}
	if hrp != wantHRP {
		return out, errs.New(errs.InvalidShare, "unexpected human-readable prefix").WithItem(hrp)
	}
	raw, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return out, err
	}
	if len(raw) != 32 {
		return out, errs.New(errs.InvalidShare, "decoded key is not 32 bytes")
	}
	copy(out[:], raw)
	return out, nil
}
