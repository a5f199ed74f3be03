// Copyright (c) 2024 The NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package policy

import "github.com/RenAndKiwi/nostring/errs"

// sequenceLocktimeDisabled, when set, means a transaction input's sequence
// carries no relative-locktime meaning at all (BIP-68).
const sequenceLocktimeDisabled = 1 << 31

// sequenceLocktimeTypeFlag selects time-based (seconds, set) vs block-based
// (clear) relative locktimes; NoString only ever uses block-based.
const sequenceLocktimeTypeFlag = 1 << 22

const sequenceLocktimeMask = 0x0000ffff

// EncodeOlder renders a block-count relative timelock as a BIP-68 nSequence
// value. blocks must fit MaxRelativeTimelock.
func EncodeOlder(blocks uint32) (uint32, error) {
	if blocks == 0 || blocks > MaxRelativeTimelock {
		return 0, errs.New(errs.TimelockOutOfRange, "block count out of BIP-68 range")
	}
	return blocks & sequenceLocktimeMask, nil
}

// DecodeOlder extracts the block count from a BIP-68 nSequence value,
// rejecting disabled or time-based sequences.
func DecodeOlder(sequence uint32) (uint32, error) {
	if sequence&sequenceLocktimeDisabled != 0 {
		return 0, errs.New(errs.TimelockOutOfRange, "relative locktime disabled on this input")
	}
	if sequence&sequenceLocktimeTypeFlag != 0 {
		return 0, errs.New(errs.TimelockOutOfRange, "time-based relative locktime not supported")
	}
	return sequence & sequenceLocktimeMask, nil
}
