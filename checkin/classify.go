// Copyright (c) 2024 The NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package checkin

// SpendType classifies an observed spend of a watched inheritance output
// (spec §3 SpendEvent).
type SpendType int

const (
	SpendUnknown SpendType = iota
	SpendOwnerCheckin
	SpendHeirClaim
)

// Method records which analysis produced a classification, so confidence
// is always explainable (spec §3: "confidence is explainable from method").
type Method int

const (
	MethodWitnessAnalysis Method = iota
	MethodTimelockTiming
	MethodIndeterminate
)

// Classification is the result spend classification appends as a
// SpendEvent.
type Classification struct {
	SpendType  SpendType
	Confidence float64
	Method     Method
}

// ClassifyWitness inspects a spending witness stack against the or_d/or_i
// structure: a 2-item owner-path witness (signature + witness script) is a
// unique match for the owner branch, and a signature followed by one or
// more or_i boolean selectors is a unique match for exactly one heir leaf;
// either case is a uniquely satisfied branch and gets confidence 0.90
// (spec §4.E Witness analysis: "a match that uniquely satisfies one branch
// yields confidence = 0.90"). A nonempty witness matching neither shape is
// genuinely ambiguous and gets the lower 0.60.
func ClassifyWitness(witness [][]byte) Classification {
	if isOwnerPathWitness(witness) {
		return Classification{SpendType: SpendOwnerCheckin, Confidence: 0.90, Method: MethodWitnessAnalysis}
	}
	if isHeirPathWitness(witness) {
		return Classification{SpendType: SpendHeirClaim, Confidence: 0.90, Method: MethodWitnessAnalysis}
	}
	if len(witness) > 0 {
		return Classification{SpendType: SpendHeirClaim, Confidence: 0.60, Method: MethodWitnessAnalysis}
	}
	return Classification{SpendType: SpendUnknown, Confidence: 0, Method: MethodWitnessAnalysis}
}

// isHeirPathWitness checks the witness stack shape an or_i heir branch
// produces: a signature, one or more boolean selectors choosing a path at
// each or_i fork (empty for OP_ELSE, a single 0x01 byte for OP_IF), and the
// witness script. The selector sequence uniquely addresses one heir leaf,
// the same way the owner branch's fixed 2-item shape uniquely addresses
// the owner leaf.
func isHeirPathWitness(witness [][]byte) bool {
	if len(witness) < 3 {
		return false
	}
	sig := witness[0]
	if len(sig) < 8 || len(sig) > 73 {
		return false
	}
	for _, selector := range witness[1 : len(witness)-1] {
		if len(selector) > 1 {
			return false
		}
		if len(selector) == 1 && selector[0] != 1 {
			return false
		}
	}
	return true
}

// ClassifyTimelockTiming classifies by confirmation timing relative to the
// policy's minimum relative timelock (spec §4.E Timelock timing): if the
// spend confirmed before any heir branch could have matured, it must be the
// owner check-in.
func ClassifyTimelockTiming(fundingHeight, spendHeight, minTimelockBlocks uint32) Classification {
	if spendHeight-fundingHeight < minTimelockBlocks {
		return Classification{SpendType: SpendOwnerCheckin, Confidence: 0.99, Method: MethodTimelockTiming}
	}
	return Classification{SpendType: SpendUnknown, Confidence: 0, Method: MethodTimelockTiming}
}

// CombineClassifications merges a witness-analysis and a timelock-timing
// result (spec §4.E Combined): agreement takes the higher confidence;
// disagreement takes the lower confidence under method "indeterminate". A
// side with zero confidence has abstained (timing analysis, in
// particular, only ever casts a vote when a spend confirmed suspiciously
// early) and never triggers disagreement against the other side's
// verdict.
func CombineClassifications(witness, timing Classification) Classification {
	if timing.Confidence == 0 {
		return witness
	}
	if witness.Confidence == 0 {
		return timing
	}
	if witness.SpendType == timing.SpendType {
		if witness.Confidence >= timing.Confidence {
			return witness
		}
		return timing
	}
	lower := witness
	if timing.Confidence < witness.Confidence {
		lower = timing
	}
	return Classification{SpendType: SpendUnknown, Confidence: lower.Confidence, Method: MethodIndeterminate}
}
