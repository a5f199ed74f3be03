// Copyright (c) 2024 The NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package nostrkey_test

import (
	"testing"

	"github.com/RenAndKiwi/nostring/chaincfg"
	"github.com/RenAndKiwi/nostring/hdkeychain"
	"github.com/RenAndKiwi/nostring/nostrkey"
	"github.com/RenAndKiwi/nostring/seed"
)

func TestDeriveIdentityDeterministic(t *testing.T) {
	mnemonic := "wrap bubble bunker win flat south life shed twelve payment super taste"
	seedBytes := seed.DeriveSeed(mnemonic, "")

	master1, err := hdkeychain.NewMaster(seedBytes, chaincfg.MainNetParams)
	if err != nil {
		t.Fatal(err)
	}
	master2, err := hdkeychain.NewMaster(seedBytes, chaincfg.MainNetParams)
	if err != nil {
		t.Fatal(err)
	}

	kp1, err := nostrkey.DeriveIdentity(master1, 0)
	if err != nil {
		t.Fatal(err)
	}
	kp2, err := nostrkey.DeriveIdentity(master2, 0)
	if err != nil {
		t.Fatal(err)
	}
	if kp1.PubKeyHex() != kp2.PubKeyHex() {
		t.Fatal("deriving the same identity twice produced different public keys")
	}
}

func TestNpubNsecRoundTrip(t *testing.T) {
	kp, err := nostrkey.GenerateServiceKey()
	if err != nil {
		t.Fatal(err)
	}
	npub, err := kp.Npub()
	if err != nil {
		t.Fatal(err)
	}
	nsec, err := kp.Nsec()
	if err != nil {
		t.Fatal(err)
	}

	gotPub, err := nostrkey.ParseNpub(npub)
	if err != nil {
		t.Fatal(err)
	}
	if gotPub != kp.PubKeyHex() {
		t.Fatal("npub round trip mismatch")
	}

	gotSec, err := nostrkey.ParseNsec(nsec)
	if err != nil {
		t.Fatal(err)
	}
	if gotSec != kp.SecretBytes() {
		t.Fatal("nsec round trip mismatch")
	}
}

func TestParseNpubRejectsWrongPrefix(t *testing.T) {
	kp, err := nostrkey.GenerateServiceKey()
	if err != nil {
		t.Fatal(err)
	}
	nsec, err := kp.Nsec()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := nostrkey.ParseNpub(nsec); err == nil {
		t.Fatal("expected error decoding an nsec string as an npub")
	}
}

func TestGenerateServiceKeyIsRandom(t *testing.T) {
	a, err := nostrkey.GenerateServiceKey()
	if err != nil {
		t.Fatal(err)
	}
	b, err := nostrkey.GenerateServiceKey()
	if err != nil {
		t.Fatal(err)
	}
	if a.PubKeyHex() == b.PubKeyHex() {
		t.Fatal("two generated service keys collided")
	}
}
