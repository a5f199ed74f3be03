// Copyright (c) 2024 The NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package checkin

import (
	"errors"
	"testing"

	"github.com/RenAndKiwi/nostring/chaincfg"
	"github.com/RenAndKiwi/nostring/errs"
	"github.com/decred/dcrd/chaincfg/chainhash"
)

func TestSelectUtxoPicksLargest(t *testing.T) {
	utxos := []InheritanceUtxo{
		{Outpoint: Outpoint{Index: 0}, AmountSats: 10000, CreationBlock: 100},
		{Outpoint: Outpoint{Index: 1}, AmountSats: 50000, CreationBlock: 90},
		{Outpoint: Outpoint{Index: 2}, AmountSats: 20000, CreationBlock: 80},
	}
	got, err := SelectUtxo(utxos)
	if err != nil {
		t.Fatal(err)
	}
	if got.AmountSats != 50000 {
		t.Fatalf("got amount %d, want 50000", got.AmountSats)
	}
}

func TestSelectUtxoRejectsEmpty(t *testing.T) {
	_, err := SelectUtxo(nil)
	var e *errs.Error
	if !errors.As(err, &e) || e.Kind != errs.NoActiveUtxo {
		t.Fatalf("want NoActiveUtxo, got %v", err)
	}
}

func TestBuildCheckinPsbtFeeTooHigh(t *testing.T) {
	utxo := InheritanceUtxo{AmountSats: 1000, ScriptPubKey: []byte{0xAA}}
	_, err := BuildCheckinPsbt(utxo, make([]byte, 500), DerivationHint{}, "tb1qexample", 1, 1000.0)
	var e *errs.Error
	if !errors.As(err, &e) || e.Kind != errs.FeeTooHigh {
		t.Fatalf("want FeeTooHigh, got %v", err)
	}
}

func TestBuildCheckinPsbtSucceeds(t *testing.T) {
	utxo := InheritanceUtxo{AmountSats: 1_000_000, ScriptPubKey: []byte{0xAA}}
	psbt, err := BuildCheckinPsbt(utxo, make([]byte, 60), DerivationHint{Path: "84h/1h/0h/0/1"}, "tb1qexample", 1, 2.0)
	if err != nil {
		t.Fatal(err)
	}
	if psbt.OutputAmountSat >= utxo.AmountSats {
		t.Fatal("output amount must be less than input amount after fee")
	}
	if len(psbt.FinalWitness) != 0 {
		t.Fatal("unsigned PSBT must not carry a final witness")
	}
}

func TestVerifyBroadcastPsbtDetectsMismatch(t *testing.T) {
	expected := &Psbt{WitnessUTXOPkS: []byte{1, 2}, WitnessScript: []byte{3, 4}, OutputAmountSat: 900}
	signed := &Psbt{
		WitnessUTXOPkS:  []byte{1, 2},
		WitnessScript:   []byte{3, 4},
		OutputAddress:   "tb1qexample",
		OutputAmountSat: 900,
		FinalWitness:    [][]byte{make([]byte, 64), make([]byte, 40)},
	}
	if err := VerifyBroadcastPsbt(signed, expected, "tb1qexample", chaincfg.Testnet); err != nil {
		t.Fatalf("expected valid PSBT to pass, got %v", err)
	}

	tampered := *signed
	tampered.WitnessScript = []byte{9, 9}
	if err := VerifyBroadcastPsbt(&tampered, expected, "tb1qexample", chaincfg.Testnet); err == nil {
		t.Fatal("expected witness_script mismatch to be rejected")
	}
}

func TestClassifyWitnessOwnerPath(t *testing.T) {
	c := ClassifyWitness([][]byte{make([]byte, 64), make([]byte, 40)})
	if c.SpendType != SpendOwnerCheckin || c.Confidence != 0.90 {
		t.Fatalf("got %+v", c)
	}
}

func TestClassifyWitnessHeirPath(t *testing.T) {
	// signature, one or_i selector choosing the first heir leaf, witness script.
	c := ClassifyWitness([][]byte{make([]byte, 64), {1}, make([]byte, 120)})
	if c.SpendType != SpendHeirClaim || c.Confidence != 0.90 {
		t.Fatalf("got %+v", c)
	}
}

func TestClassifyWitnessAmbiguousStaysLowConfidence(t *testing.T) {
	c := ClassifyWitness([][]byte{{0x01}, {0x02}, {0x03}})
	if c.SpendType != SpendHeirClaim || c.Confidence != 0.60 {
		t.Fatalf("got %+v", c)
	}
}

func TestHeirClaimAfterMaturityReachesConfidenceFloor(t *testing.T) {
	// spec §8 scenario 3: heir spend confirmed at spend_height >= funding_height
	// + timelock. Timing analysis abstains (it only ever votes for an
	// owner check-in confirmed suspiciously early), so the combined result
	// must carry the witness side's uniquely-satisfied confidence.
	witness := ClassifyWitness([][]byte{make([]byte, 64), {1}, make([]byte, 120)})
	timing := ClassifyTimelockTiming(900, 900+26280, 26280)
	got := CombineClassifications(witness, timing)
	if got.SpendType != SpendHeirClaim || got.Confidence < 0.90 {
		t.Fatalf("expected heir claim at confidence >= 0.90, got %+v", got)
	}
}

func TestClassifyTimelockTimingDetectsEarlySpend(t *testing.T) {
	c := ClassifyTimelockTiming(100, 150, 1000)
	if c.SpendType != SpendOwnerCheckin || c.Confidence != 0.99 {
		t.Fatalf("got %+v", c)
	}
}

func TestCombineClassificationsAgreement(t *testing.T) {
	a := Classification{SpendType: SpendOwnerCheckin, Confidence: 0.90, Method: MethodWitnessAnalysis}
	b := Classification{SpendType: SpendOwnerCheckin, Confidence: 0.99, Method: MethodTimelockTiming}
	got := CombineClassifications(a, b)
	if got.Confidence != 0.99 {
		t.Fatalf("expected max confidence on agreement, got %+v", got)
	}
}

func TestCombineClassificationsDisagreement(t *testing.T) {
	a := Classification{SpendType: SpendOwnerCheckin, Confidence: 0.90, Method: MethodWitnessAnalysis}
	b := Classification{SpendType: SpendHeirClaim, Confidence: 0.50, Method: MethodTimelockTiming}
	got := CombineClassifications(a, b)
	if got.Method != MethodIndeterminate || got.SpendType != SpendUnknown {
		t.Fatalf("expected indeterminate on disagreement, got %+v", got)
	}
	if got.Confidence != 0.50 {
		t.Fatalf("expected lower confidence on disagreement, got %+v", got)
	}
}

var _ = chainhash.Hash{}
