// Copyright (c) 2024 The NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package notify

import (
	"testing"
	"time"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

func TestClassifyLevelLadder(t *testing.T) {
	th := DefaultThresholds()
	cases := []struct {
		blocks uint32
		days   float64
		want   Level
	}{
		{1_000_000, 100, LevelOK},
		{1_000_000, 20, LevelReminder},
		{1_000_000, 5, LevelWarning},
		{1_000_000, 0.5, LevelUrgent},
		{100, 0.5, LevelCritical},
		{0, 0, LevelCritical},
	}
	for _, c := range cases {
		got := ClassifyLevel(th, c.blocks, c.days)
		if got != c.want {
			t.Fatalf("blocks=%d days=%v: got %s, want %s", c.blocks, c.days, got, c.want)
		}
	}
}

type fakeDeliveryLog struct {
	last map[string]time.Time
}

func (f *fakeDeliveryLog) key(fp [4]byte, ch Channel, level Level) string {
	return string(fp[:]) + ch.String() + level.String()
}

func (f *fakeDeliveryLog) RecordSuccess(fp [4]byte, ch Channel, level Level, at time.Time) {
	if f.last == nil {
		f.last = make(map[string]time.Time)
	}
	f.last[f.key(fp, ch, level)] = at
}

func (f *fakeDeliveryLog) LastSuccess(fp [4]byte, ch Channel, level Level, now time.Time) (time.Time, bool) {
	t, ok := f.last[f.key(fp, ch, level)]
	return t, ok
}

func TestWithinCooldown(t *testing.T) {
	log := &fakeDeliveryLog{}
	fp := [4]byte{1, 2, 3, 4}
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	if WithinCooldown(log, fp, ChannelNostr, LevelCritical, DeliveryCooldown, now) {
		t.Fatal("no prior delivery: should not be within cooldown")
	}

	log.RecordSuccess(fp, ChannelNostr, LevelCritical, now)
	if !WithinCooldown(log, fp, ChannelNostr, LevelCritical, DeliveryCooldown, now.Add(time.Hour)) {
		t.Fatal("one hour later: should still be within 24h cooldown")
	}
	if WithinCooldown(log, fp, ChannelNostr, LevelCritical, DeliveryCooldown, now.Add(25*time.Hour)) {
		t.Fatal("25 hours later: cooldown should have expired")
	}
}

func TestEncryptDecryptDMRoundTrip(t *testing.T) {
	senderPriv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		t.Fatal(err)
	}
	recipientPriv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		t.Fatal(err)
	}

	var senderSecret, recipientSecret [32]byte
	copy(senderSecret[:], senderPriv.Serialize())
	copy(recipientSecret[:], recipientPriv.Serialize())

	recipientPub := xOnly(recipientPriv.PubKey())
	senderPub := xOnly(senderPriv.PubKey())

	ciphertext, err := EncryptDM(senderSecret, recipientPub, []byte("hello heir"))
	if err != nil {
		t.Fatal(err)
	}
	plaintext, err := DecryptDM(recipientSecret, senderPub, ciphertext)
	if err != nil {
		t.Fatal(err)
	}
	if string(plaintext) != "hello heir" {
		t.Fatalf("got %q", plaintext)
	}
}

func TestDecryptDMWrongRecipientFails(t *testing.T) {
	senderPriv, _ := secp256k1.GeneratePrivateKey()
	recipientPriv, _ := secp256k1.GeneratePrivateKey()
	wrongPriv, _ := secp256k1.GeneratePrivateKey()

	var senderSecret, wrongSecret [32]byte
	copy(senderSecret[:], senderPriv.Serialize())
	copy(wrongSecret[:], wrongPriv.Serialize())
	recipientPub := xOnly(recipientPriv.PubKey())
	senderPub := xOnly(senderPriv.PubKey())

	ciphertext, err := EncryptDM(senderSecret, recipientPub, []byte("secret"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := DecryptDM(wrongSecret, senderPub, ciphertext); err == nil {
		t.Fatal("expected decryption with the wrong key to fail")
	}
}

func xOnly(pub *secp256k1.PublicKey) [32]byte {
	var out [32]byte
	copy(out[:], pub.SerializeCompressed()[1:])
	return out
}

func TestCycleDedup(t *testing.T) {
	d := NewCycleDedup(64)
	fp := [4]byte{9, 9, 9, 9}
	if d.Seen(fp, ChannelEmail, LevelCritical) {
		t.Fatal("should not be seen before Mark")
	}
	d.Mark(fp, ChannelEmail, LevelCritical)
	if !d.Seen(fp, ChannelEmail, LevelCritical) {
		t.Fatal("should be seen after Mark")
	}
}
