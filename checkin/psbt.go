// Copyright (c) 2024 The NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package checkin implements the PSBT check-in engine (spec §4.E): building
// the self-spend that resets an inheritance UTXO's relative timelock, fee
// computation, broadcast validation, and spend classification.
package checkin

import (
	"github.com/RenAndKiwi/nostring/chaincfg"
	"github.com/RenAndKiwi/nostring/errs"
	"github.com/decred/dcrd/chaincfg/chainhash"
)

// Outpoint identifies a transaction output being spent.
type Outpoint struct {
	Hash  chainhash.Hash
	Index uint32
}

// InheritanceUtxo is the active inheritance output the check-in engine
// tracks (spec §3 InheritanceUtxo).
type InheritanceUtxo struct {
	Outpoint        Outpoint
	AmountSats      int64
	ScriptPubKey    []byte
	DerivationIndex uint32
	CreationBlock   uint32
}

// Psbt is the minimal PSBT-like container this engine needs: not a full
// BIP-174 implementation, only the fields spec §4.E names (witness_utxo,
// witness_script, BIP-32 derivation hints, and the unsigned transaction
// skeleton).
type Psbt struct {
	InputOutpoint   Outpoint
	WitnessUTXOAmt  int64
	WitnessUTXOPkS  []byte // witness_utxo scriptPubKey
	WitnessScript   []byte
	OwnerDerivation DerivationHint
	OutputAddress   string
	OutputAmountSat int64
	FinalWitness    [][]byte // left empty until signed
}

// DerivationHint is the BIP-32 origin info attached to the owner key's PSBT
// input, per spec §4.E step 4 ("BIP-32 derivation hints for the owner key
// only").
type DerivationHint struct {
	MasterFingerprint [4]byte
	Path              string
}

// SelectUtxo picks the single largest mature inheritance UTXO to spend,
// breaking ties deterministically by (confirmation_block, outpoint) (spec
// §4.E step 1).
func SelectUtxo(utxos []InheritanceUtxo) (InheritanceUtxo, error) {
	if len(utxos) == 0 {
		return InheritanceUtxo{}, errs.New(errs.NoActiveUtxo, "no inheritance UTXO available")
	}
	best := utxos[0]
	for _, u := range utxos[1:] {
		switch {
		case u.AmountSats > best.AmountSats:
			best = u
		case u.AmountSats == best.AmountSats && u.CreationBlock < best.CreationBlock:
			best = u
		case u.AmountSats == best.AmountSats && u.CreationBlock == best.CreationBlock &&
			outpointLess(u.Outpoint, best.Outpoint):
			best = u
		}
	}
	return best, nil
}

func outpointLess(a, b Outpoint) bool {
	cmp := a.Hash.String()
	other := b.Hash.String()
	if cmp != other {
		return cmp < other
	}
	return a.Index < b.Index
}

// BuildCheckinPsbt constructs the unsigned check-in PSBT for utxo, paying to
// nextAddress at feeRateSatPerVB, per spec §4.E steps 2-5.
func BuildCheckinPsbt(utxo InheritanceUtxo, witnessScript []byte, owner DerivationHint, nextAddress string, nextDerivationIndex uint32, feeRateSatPerVB float64) (*Psbt, error) {
	weight := EstimateWitnessWeight(witnessScript)
	vbytes := txBaseVBytes + weight/4
	fee := int64(feeRateSatPerVB * float64(vbytes))
	if fee <= 0 {
		fee = 1
	}
	if float64(fee) > float64(utxo.AmountSats)*0.10 {
		return nil, errs.New(errs.FeeTooHigh, "fee exceeds 10% of input value")
	}

	outAmount := utxo.AmountSats - fee
	if outAmount <= 0 {
		return nil, errs.New(errs.FeeTooHigh, "fee consumes entire input value")
	}

	return &Psbt{
		InputOutpoint:   utxo.Outpoint,
		WitnessUTXOAmt:  utxo.AmountSats,
		WitnessUTXOPkS:  utxo.ScriptPubKey,
		WitnessScript:   witnessScript,
		OwnerDerivation: owner,
		OutputAddress:   nextAddress,
		OutputAmountSat: outAmount,
	}, nil
}

// txBaseVBytes approximates the non-witness overhead of a 1-input,
// 1-output v2 transaction (version, locktime, marker/flag, input count,
// outpoint, empty scriptSig, sequence, output count, value, scriptPubKey
// length+bytes), counted in virtual bytes.
const txBaseVBytes = 58

// EstimateWitnessWeight estimates the weight units the owner-path witness
// will consume: a single 72-byte DER signature push plus the witness
// script itself plus the two length-prefix pushes and the empty alternate
// branch placeholder the or_d construction requires (spec §4.E step 2 feeds
// this into fee computation).
func EstimateWitnessWeight(witnessScript []byte) int {
	const sigPush = 1 + 72      // push-opcode + up-to-72-byte DER sig
	const emptyAltPush = 1      // 0x00 placeholder selecting the owner branch
	const scriptPushOverhead = 3 // varint for the script length, generously bounded
	return sigPush + emptyAltPush + scriptPushOverhead + len(witnessScript)
}

// VerifyBroadcastPsbt validates a signed PSBT against the current policy
// before extraction (spec §4.E broadcast_signed_psbt): it must commit to the
// same witness_utxo/witness_script, pay a freshly derived inheritance
// address, stay within fee bounds, and carry a well-formed owner-path
// witness.
func VerifyBroadcastPsbt(signed *Psbt, expected *Psbt, expectedAddress string, network chaincfg.Network) error {
	if string(signed.WitnessUTXOPkS) != string(expected.WitnessUTXOPkS) {
		return errs.New(errs.OutputMismatch, "witness_utxo scriptPubKey mismatch")
	}
	if string(signed.WitnessScript) != string(expected.WitnessScript) {
		return errs.New(errs.OutputMismatch, "witness_script mismatch")
	}
	if signed.OutputAddress != expectedAddress {
		return errs.New(errs.OutputMismatch, "output address does not match a freshly derived inheritance address")
	}
	if signed.OutputAmountSat > expected.OutputAmountSat {
		return errs.New(errs.FeeTooHigh, "signed PSBT pays out more than the fee-bounded amount")
	}
	if len(signed.FinalWitness) == 0 {
		return errs.New(errs.OutputMismatch, "missing final witness")
	}
	if !isOwnerPathWitness(signed.FinalWitness) {
		return errs.New(errs.OutputMismatch, "owner-path witness is not well-formed")
	}
	return nil
}

// isOwnerPathWitness checks the witness stack shape the or_d owner branch
// produces: a single DER signature followed by the witness script, with no
// extra items (the heir branch instead carries a zero marker in that
// position per BIP-68 or_d semantics).
func isOwnerPathWitness(witness [][]byte) bool {
	if len(witness) != 2 {
		return false
	}
	sig := witness[0]
	return len(sig) >= 8 && len(sig) <= 73
}
