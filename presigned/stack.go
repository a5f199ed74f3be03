// Copyright (c) 2024 The NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package presigned implements the pre-signed check-in stack (spec §4.H):
// a chain of check-ins the owner signs in advance, so a single future
// broadcast resets the timelock without needing the owner's key online.
package presigned

import (
	"time"

	"github.com/RenAndKiwi/nostring/checkin"
	"github.com/RenAndKiwi/nostring/errs"
)

// MaxStackDepth bounds how many pre-signed entries may be active at once
// (spec §4.H: "stack depth is capped at 12").
const MaxStackDepth = 12

// LowStackThreshold is the active-entry count below which the
// orchestrator is signaled to prompt the owner to top up the stack (spec
// §4.H: "when the active count falls below 2, emit a low_stack signal").
const LowStackThreshold = 2

// State is a closed enumeration of a PresignedCheckin's lifecycle.
type State int

const (
	StateActive State = iota
	StateBroadcast
	StateInvalidated
)

// Entry is one link of the pre-signed chain (spec §3 PresignedCheckin).
type Entry struct {
	SequenceIndex  int
	Psbt           *checkin.Psbt
	State          State
	BroadcastAt    time.Time
	InvalidatedAt  time.Time
}

// Stack holds one owner's pre-signed chain, ordered by SequenceIndex.
type Stack struct {
	entries []Entry
}

// NewStack builds an empty stack.
func NewStack() *Stack { return &Stack{} }

// GenerateChain builds depth sequential entries, the ith spending the
// output of the (i-1)th (spec §4.H generate_chain). buildNext receives the
// previous entry's PSBT (nil for the first) and must produce the next
// entry's PSBT, including its fee; GenerateChain appends the built entries
// to the stack only after all depth of them were built without error.
func (s *Stack) GenerateChain(depth int, buildNext func(prev *checkin.Psbt, sequenceIndex int) (*checkin.Psbt, error)) ([]Entry, error) {
	if depth <= 0 {
		return nil, errs.New(errs.StaleStack, "chain depth must be positive")
	}
	if len(s.ActiveEntries())+depth > MaxStackDepth {
		return nil, errs.New(errs.StaleStack, "chain would exceed the maximum stack depth")
	}

	var built []Entry
	var prev *checkin.Psbt
	nextIndex := s.nextSequenceIndex()
	for i := 0; i < depth; i++ {
		psbt, err := buildNext(prev, nextIndex+i)
		if err != nil {
			return nil, err
		}
		e := Entry{SequenceIndex: nextIndex + i, Psbt: psbt, State: StateActive}
		built = append(built, e)
		prev = psbt
	}
	s.entries = append(s.entries, built...)
	return built, nil
}

func (s *Stack) nextSequenceIndex() int {
	max := -1
	for _, e := range s.entries {
		if e.SequenceIndex > max {
			max = e.SequenceIndex
		}
	}
	return max + 1
}

// ActiveEntries returns every entry still in state active, ordered by
// sequence index.
func (s *Stack) ActiveEntries() []Entry {
	var out []Entry
	for _, e := range s.entries {
		if e.State == StateActive {
			out = append(out, e)
		}
	}
	return out
}

// AutoBroadcast selects the lowest-index active entry whose input is the
// current unspent inheritance UTXO, per spec §4.H auto_broadcast. The
// caller supplies the broadcast function; on success the entry transitions
// to broadcast and downstream entries remain active until their own turn.
func (s *Stack) AutoBroadcast(currentUtxo checkin.Outpoint, broadcast func(*checkin.Psbt) error, now time.Time) (*Entry, error) {
	active := s.ActiveEntries()
	if len(active) == 0 {
		return nil, errs.New(errs.NoActiveUtxo, "no active pre-signed entries")
	}
	var chosen *Entry
	for i := range s.entries {
		e := &s.entries[i]
		if e.State != StateActive {
			continue
		}
		if e.Psbt.InputOutpoint == currentUtxo {
			if chosen == nil || e.SequenceIndex < chosen.SequenceIndex {
				chosen = e
			}
		}
	}
	if chosen == nil {
		return nil, errs.New(errs.NoActiveUtxo, "no pre-signed entry matches the current UTXO")
	}
	if err := broadcast(chosen.Psbt); err != nil {
		return nil, err
	}
	chosen.State = StateBroadcast
	chosen.BroadcastAt = now
	return chosen, nil
}

// InvalidateAll marks every active entry invalidated, because a manual
// check-in broadcast means their recorded inputs no longer exist (spec
// §4.H: "any successful manual broadcast invalidates the entire active
// chain").
func (s *Stack) InvalidateAll(now time.Time) {
	for i := range s.entries {
		if s.entries[i].State == StateActive {
			s.entries[i].State = StateInvalidated
			s.entries[i].InvalidatedAt = now
		}
	}
}

// Clear removes every entry from the stack regardless of state.
func (s *Stack) Clear() {
	s.entries = nil
}

// IsLowStack reports whether the active count has fallen below
// LowStackThreshold.
func (s *Stack) IsLowStack() bool {
	return len(s.ActiveEntries()) < LowStackThreshold
}

// Entries returns a copy of every entry regardless of state, for listing
// (spec §6.6 presigned_list).
func (s *Stack) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}
