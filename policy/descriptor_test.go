// Copyright (c) 2024 The NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package policy

import (
	"errors"
	"strings"
	"testing"

	"github.com/RenAndKiwi/nostring/errs"
)

func TestCompilePolicySingleHeir(t *testing.T) {
	owner := "tpub_owner_key"
	heirs := []Heir{{Label: "alice", Xpub: "tpub_alice_key", TimelockBlocks: 26000}}
	d, err := CompilePolicy(owner, "", heirs)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(d.Raw, "wsh(or_d(pk(") {
		t.Fatalf("unexpected miniscript shape: %s", d.Raw)
	}
	if !strings.Contains(d.Miniscript, "and_v(v:pk(") || !strings.Contains(d.Miniscript, "older(26000)") {
		t.Fatalf("expected and_v/older fragment for single heir: %s", d.Miniscript)
	}
	if len(d.Checksum) != 8 {
		t.Fatalf("checksum must be 8 characters, got %q", d.Checksum)
	}
}

func TestCompilePolicyCascadesMultipleHeirs(t *testing.T) {
	owner := "tpub_owner_key"
	heirs := []Heir{
		{Label: "alice", Xpub: "tpub_alice_key", TimelockBlocks: 13000},
		{Label: "bob", Xpub: "tpub_bob_key", TimelockBlocks: 26000},
		{Label: "carol", Xpub: "tpub_carol_key", TimelockBlocks: 52000},
	}
	d, err := CompilePolicy(owner, "", heirs)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Count(d.Miniscript, "or_i(") != 2 {
		t.Fatalf("expected 2 right-nested or_i wrappers for 3 heirs, got: %s", d.Miniscript)
	}
}

func TestCompilePolicyRejectsOwnerAsHeir(t *testing.T) {
	owner := "tpub_owner_key"
	heirs := []Heir{{Label: "alice", Xpub: owner, TimelockBlocks: 1000}}
	_, err := CompilePolicy(owner, "", heirs)
	var e *errs.Error
	if !errors.As(err, &e) || e.Kind != errs.DuplicateKey {
		t.Fatalf("want DuplicateKey, got %v", err)
	}
}

func TestCompilePolicyRejectsDuplicateHeirKeys(t *testing.T) {
	owner := "tpub_owner_key"
	heirs := []Heir{
		{Label: "alice", Xpub: "tpub_shared", TimelockBlocks: 1000},
		{Label: "bob", Xpub: "tpub_shared", TimelockBlocks: 2000},
	}
	_, err := CompilePolicy(owner, "", heirs)
	var e *errs.Error
	if !errors.As(err, &e) || e.Kind != errs.DuplicateKey {
		t.Fatalf("want DuplicateKey, got %v", err)
	}
}

func TestCompilePolicyRejectsZeroOrOutOfRangeTimelock(t *testing.T) {
	owner := "tpub_owner_key"
	cases := []uint32{0, MaxRelativeTimelock + 1}
	for _, bl := range cases {
		heirs := []Heir{{Label: "alice", Xpub: "tpub_alice_key", TimelockBlocks: bl}}
		_, err := CompilePolicy(owner, "", heirs)
		var e *errs.Error
		if !errors.As(err, &e) || e.Kind != errs.TimelockOutOfRange {
			t.Fatalf("blocks=%d: want TimelockOutOfRange, got %v", bl, err)
		}
	}
}

func TestCompilePolicyRejectsNonMonotonicTimelocks(t *testing.T) {
	owner := "tpub_owner_key"
	heirs := []Heir{
		{Label: "alice", Xpub: "tpub_alice_key", TimelockBlocks: 2000},
		{Label: "bob", Xpub: "tpub_bob_key", TimelockBlocks: 1000},
	}
	_, err := CompilePolicy(owner, "", heirs)
	var e *errs.Error
	if !errors.As(err, &e) || e.Kind != errs.NonMonotonicTimelocks {
		t.Fatalf("want NonMonotonicTimelocks, got %v", err)
	}
}

func TestDescriptorChecksumDeterministic(t *testing.T) {
	s := "wsh(or_d(pk(tpub_owner),and_v(v:pk(tpub_heir),older(1000))))"
	c1, err := DescriptorChecksum(s)
	if err != nil {
		t.Fatal(err)
	}
	c2, err := DescriptorChecksum(s)
	if err != nil {
		t.Fatal(err)
	}
	if c1 != c2 {
		t.Fatal("descriptor checksum is not deterministic")
	}
	if len(c1) != 8 {
		t.Fatalf("checksum must be 8 characters, got %q", c1)
	}
}

func TestEncodeDecodeOlderRoundTrip(t *testing.T) {
	seq, err := EncodeOlder(12345)
	if err != nil {
		t.Fatal(err)
	}
	blocks, err := DecodeOlder(seq)
	if err != nil {
		t.Fatal(err)
	}
	if blocks != 12345 {
		t.Fatalf("got %d, want 12345", blocks)
	}
}

func TestEncodeOlderRejectsOutOfRange(t *testing.T) {
	if _, err := EncodeOlder(0); err == nil {
		t.Fatal("expected error for zero timelock")
	}
	if _, err := EncodeOlder(MaxRelativeTimelock + 1); err == nil {
		t.Fatal("expected error for over-range timelock")
	}
}

func TestDecodeOlderRejectsDisabledOrTimeBased(t *testing.T) {
	if _, err := DecodeOlder(sequenceLocktimeDisabled); err == nil {
		t.Fatal("expected error for disabled sequence")
	}
	if _, err := DecodeOlder(sequenceLocktimeTypeFlag | 5); err == nil {
		t.Fatal("expected error for time-based sequence")
	}
}
