// Copyright (c) 2024 The NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chaincfg holds Bitcoin network parameters: the bech32 HRP for
// native segwit addresses, the BIP-32 extended-key version bytes, and the
// BIP-44/84 coin type, for each of the four networks the shell may select
// (spec §4.D Network; spec §9.1 test vector uses testnet).
package chaincfg

// Network identifies one of the four Bitcoin networks NoString can target.
type Network string

const (
	Mainnet Network = "bitcoin"
	Testnet Network = "testnet"
	Signet  Network = "signet"
	Regtest Network = "regtest"
)

// Params describes everything address/key derivation needs to know about a
// network.
type Params struct {
	Name Network

	// Bech32HRP is the human-readable prefix for native segwit addresses
	// (bc/tb/bcrt), matching the spec's "Network prefix strictly governs
	// address encoding" invariant.
	Bech32HRP string

	// HDCoinType is the BIP-44/84 coin type used in m/84'/coin'/0' (spec §4.C
	// Derivation: 0 for mainnet, 1 for every other network).
	HDCoinType uint32

	// HDPrivateKeyID/HDPublicKeyID are the 4-byte BIP-32 version prefixes
	// that produce xprv/xpub (mainnet) or tprv/tpub (every other network).
	HDPrivateKeyID [4]byte
	HDPublicKeyID  [4]byte
}

// MainNetParams describes mainnet.
var MainNetParams = Params{
	Name:           Mainnet,
	Bech32HRP:      "bc",
	HDCoinType:     0,
	HDPrivateKeyID: [4]byte{0x04, 0x88, 0xAD, 0xE4}, // xprv
	HDPublicKeyID:  [4]byte{0x04, 0x88, 0xB2, 0x1E}, // xpub
}

// TestNetParams describes testnet3.
var TestNetParams = Params{
	Name:           Testnet,
	Bech32HRP:      "tb",
	HDCoinType:     1,
	HDPrivateKeyID: [4]byte{0x04, 0x35, 0x83, 0x94}, // tprv
	HDPublicKeyID:  [4]byte{0x04, 0x35, 0x87, 0xCF}, // tpub
}

// SigNetParams describes signet; it shares testnet's key prefixes and
// bech32 HRP since BIP-32/173 assign signet no distinct version bytes.
var SigNetParams = Params{
	Name:           Signet,
	Bech32HRP:      "tb",
	HDCoinType:     1,
	HDPrivateKeyID: [4]byte{0x04, 0x35, 0x83, 0x94},
	HDPublicKeyID:  [4]byte{0x04, 0x35, 0x87, 0xCF},
}

// RegressionNetParams describes regtest.
var RegressionNetParams = Params{
	Name:           Regtest,
	Bech32HRP:      "bcrt",
	HDCoinType:     1,
	HDPrivateKeyID: [4]byte{0x04, 0x35, 0x83, 0x94},
	HDPublicKeyID:  [4]byte{0x04, 0x35, 0x87, 0xCF},
}

// ByName resolves a Network value to its Params, returning ok=false for any
// unrecognized network name.
func ByName(n Network) (Params, bool) {
	switch n {
	case Mainnet:
		return MainNetParams, true
	case Testnet:
		return TestNetParams, true
	case Signet:
		return SigNetParams, true
	case Regtest:
		return RegressionNetParams, true
	default:
		return Params{}, false
	}
}
