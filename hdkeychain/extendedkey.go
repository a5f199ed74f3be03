// Copyright (c) 2014 The btcsuite developers
// Copyright (c) 2015-2024 The NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package hdkeychain implements BIP-32 hierarchical deterministic key
// derivation (spec §4.C Derivation): hardened and non-hardened child
// derivation from a master seed, and xpub/tpub extended-key serialization.
package hdkeychain

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"

	"github.com/EXCCoin/base58"
	"github.com/RenAndKiwi/nostring/chaincfg"
	"github.com/RenAndKiwi/nostring/errs"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// HardenedKeyStart is the index of the first hardened child; indices at or
// above this are hardened (denoted with a trailing ' in a derivation path).
const HardenedKeyStart = uint32(0x80000000)

const (
	serializedKeyLen = 4 + 1 + 4 + 4 + 32 + 33 // version || depth || parentFP || childNum || chainCode || key
	minSeedBytes     = 16
	maxSeedBytes     = 64
)

// masterKeyHMACKey is the BIP-32 fixed HMAC key used to derive the master
// extended key from a seed.
var masterKeyHMACKey = []byte("Bitcoin seed")

// ExtendedKey is a node in a BIP-32 hierarchy: either an extended private
// key (32-byte key material) or an extended public key (33-byte compressed
// point), paired with a 32-byte chain code and derivation metadata.
type ExtendedKey struct {
	key       []byte // 32-byte private key or 33-byte compressed public key
	pubKey    []byte // cached compressed public key, computed lazily
	chainCode [32]byte
	depth     uint8
	parentFP  [4]byte
	childNum  uint32
	version   [4]byte
	isPrivate bool
}

// NewMaster derives the master extended private key from a BIP-39 seed
// (spec §4.C Seed derivation feeds directly into this).
func NewMaster(seed []byte, params chaincfg.Params) (*ExtendedKey, error) {
	if len(seed) < minSeedBytes || len(seed) > maxSeedBytes {
		return nil, errs.New(errs.InvalidXpub, "seed length out of range")
	}

	mac := hmac.New(sha512.New, masterKeyHMACKey)
	mac.Write(seed)
	lr := mac.Sum(nil)

	key, chainCode := lr[:32], lr[32:]
	if !validPrivateKeyBytes(key) {
		return nil, errs.New(errs.InvalidXpub, "seed produced an invalid master key")
	}

	k := &ExtendedKey{
		key:       append([]byte(nil), key...),
		depth:     0,
		parentFP:  [4]byte{},
		childNum:  0,
		version:   params.HDPrivateKeyID,
		isPrivate: true,
	}
	copy(k.chainCode[:], chainCode)
	return k, nil
}

func validPrivateKeyBytes(b []byte) bool {
	var scalar secp256k1.ModNScalar
	overflow := scalar.SetByteSlice(b)
	return !overflow && !scalar.IsZero()
}

// IsPrivate reports whether this node carries private key material.
func (k *ExtendedKey) IsPrivate() bool { return k.isPrivate }

// Depth is this node's distance from the master key.
func (k *ExtendedKey) Depth() uint8 { return k.depth }

// ChildNum is the index this node was derived with.
func (k *ExtendedKey) ChildNum() uint32 { return k.childNum }

func (k *ExtendedKey) pubKeyBytes() []byte {
	if !k.isPrivate {
		return k.key
	}
	if k.pubKey == nil {
		priv := secp256k1.PrivKeyFromBytes(k.key)
		k.pubKey = priv.PubKey().SerializeCompressed()
	}
	return k.pubKey
}

// fingerprint is the first 4 bytes of HASH160(pubkey), used as a parent
// fingerprint and, for the master key, left as zero.
func (k *ExtendedKey) fingerprint() [4]byte {
	var fp [4]byte
	copy(fp[:], hash160(k.pubKeyBytes())[:4])
	return fp
}

func hash160(b []byte) []byte {
	sum := sha256.Sum256(b)
	return ripemd160sum(sum[:])
}

// Child derives the i'th child of k. i >= HardenedKeyStart requests a
// hardened child, which requires k to hold private key material.
func (k *ExtendedKey) Child(i uint32) (*ExtendedKey, error) {
	isHardened := i >= HardenedKeyStart
	if isHardened && !k.isPrivate {
		return nil, errs.New(errs.InvalidXpub, "cannot derive a hardened child from a public key")
	}
	if k.depth == 255 {
		return nil, errs.New(errs.InvalidXpub, "derivation depth exceeded")
	}

	var data []byte
	if isHardened {
		data = make([]byte, 0, 37)
		data = append(data, 0x00)
		data = append(data, k.key...)
	} else {
		data = append([]byte(nil), k.pubKeyBytes()...)
	}
	var childNumBytes [4]byte
	binary.BigEndian.PutUint32(childNumBytes[:], i)
	data = append(data, childNumBytes[:]...)

	mac := hmac.New(sha512.New, k.chainCode[:])
	mac.Write(data)
	lr := mac.Sum(nil)
	il, childChainCode := lr[:32], lr[32:]

	var ilNum secp256k1.ModNScalar
	if overflow := ilNum.SetByteSlice(il); overflow {
		return nil, errs.New(errs.InvalidXpub, "invalid child: IL out of range")
	}

	child := &ExtendedKey{
		depth:     k.depth + 1,
		parentFP:  k.fingerprint(),
		childNum:  i,
		version:   k.version,
		isPrivate: k.isPrivate,
	}
	copy(child.chainCode[:], childChainCode)

	if k.isPrivate {
		var parentScalar secp256k1.ModNScalar
		parentScalar.SetByteSlice(k.key)
		if ilNum.IsZero() {
			return nil, errs.New(errs.InvalidXpub, "invalid child: IL is zero")
		}
		childScalar := new(secp256k1.ModNScalar).Add2(&ilNum, &parentScalar)
		if childScalar.IsZero() {
			return nil, errs.New(errs.InvalidXpub, "invalid child: derived scalar is zero")
		}
		keyBytes := childScalar.Bytes()
		child.key = append([]byte(nil), keyBytes[:]...)
		return child, nil
	}

	parentPub, err := secp256k1.ParsePubKey(k.key)
	if err != nil {
		return nil, errs.Wrap(errs.InvalidXpub, "parsing parent public key", err)
	}
	var parentPoint, ilPoint, childPoint secp256k1.JacobianPoint
	parentPub.AsJacobian(&parentPoint)
	secp256k1.ScalarBaseMultNonConst(&ilNum, &ilPoint)
	secp256k1.AddNonConst(&ilPoint, &parentPoint, &childPoint)
	childPoint.ToAffine()
	childPub := secp256k1.NewPublicKey(&childPoint.X, &childPoint.Y)
	child.key = childPub.SerializeCompressed()
	return child, nil
}

// Neuter strips private key material, returning the corresponding extended
// public key. Calling Neuter on an already-public key returns it unchanged.
func (k *ExtendedKey) Neuter(params chaincfg.Params) (*ExtendedKey, error) {
	if !k.isPrivate {
		return k, nil
	}
	return &ExtendedKey{
		key:       append([]byte(nil), k.pubKeyBytes()...),
		chainCode: k.chainCode,
		depth:     k.depth,
		parentFP:  k.parentFP,
		childNum:  k.childNum,
		version:   params.HDPublicKeyID,
		isPrivate: false,
	}, nil
}

// ECPrivKey returns the node's private key. Returns an error if this node
// is public-only.
func (k *ExtendedKey) ECPrivKey() (*secp256k1.PrivateKey, error) {
	if !k.isPrivate {
		return nil, errs.New(errs.InvalidXpub, "extended key has no private key material")
	}
	return secp256k1.PrivKeyFromBytes(k.key), nil
}

// ECPubKey returns the node's public key, whether it carries private
// material or not.
func (k *ExtendedKey) ECPubKey() (*secp256k1.PublicKey, error) {
	return secp256k1.ParsePubKey(k.pubKeyBytes())
}

// String serializes k as a base58check xprv/xpub-style extended key string.
func (k *ExtendedKey) String() string {
	var buf [serializedKeyLen]byte
	off := 0
	copy(buf[off:], k.version[:])
	off += 4
	buf[off] = k.depth
	off++
	copy(buf[off:], k.parentFP[:])
	off += 4
	binary.BigEndian.PutUint32(buf[off:], k.childNum)
	off += 4
	copy(buf[off:], k.chainCode[:])
	off += 32
	if k.isPrivate {
		buf[off] = 0x00
		copy(buf[off+1:], k.key)
	} else {
		copy(buf[off:], k.key)
	}

	payload := buf[:]
	checksum := doubleSHA256(payload)[:4]
	full := append(append([]byte(nil), payload...), checksum...)
	return base58.Encode(full)
}

// NewKeyFromString parses a base58check xprv/xpub-style extended key
// string.
func NewKeyFromString(s string) (*ExtendedKey, error) {
	decoded := base58.Decode(s)
	if len(decoded) != serializedKeyLen+4 {
		return nil, errs.New(errs.InvalidXpub, "wrong decoded length")
	}
	payload, checksum := decoded[:serializedKeyLen], decoded[serializedKeyLen:]
	if string(doubleSHA256(payload)[:4]) != string(checksum) {
		return nil, errs.New(errs.InvalidXpub, "bad checksum")
	}

	k := &ExtendedKey{}
	off := 0
	copy(k.version[:], payload[off:off+4])
	off += 4
	k.depth = payload[off]
	off++
	copy(k.parentFP[:], payload[off:off+4])
	off += 4
	k.childNum = binary.BigEndian.Uint32(payload[off : off+4])
	off += 4
	copy(k.chainCode[:], payload[off:off+32])
	off += 32
	keyPart := payload[off : off+33]
	if keyPart[0] == 0x00 {
		k.isPrivate = true
		k.key = append([]byte(nil), keyPart[1:]...)
		if !validPrivateKeyBytes(k.key) {
			return nil, errs.New(errs.InvalidXpub, "invalid embedded private key")
		}
	} else {
		k.isPrivate = false
		k.key = append([]byte(nil), keyPart...)
		if _, err := secp256k1.ParsePubKey(k.key); err != nil {
			return nil, errs.Wrap(errs.InvalidXpub, "invalid embedded public key", err)
		}
	}
	return k, nil
}

func doubleSHA256(b []byte) []byte {
	first := sha256.Sum256(b)
	second := sha256.Sum256(first[:])
	return second[:]
}
