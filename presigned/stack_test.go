// Copyright (c) 2024 The NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package presigned

import (
	"errors"
	"testing"
	"time"

	"github.com/RenAndKiwi/nostring/checkin"
	"github.com/RenAndKiwi/nostring/errs"
)

func outpoint(index uint32) checkin.Outpoint {
	return checkin.Outpoint{Index: index}
}

func TestGenerateChainLinksSequentialInputs(t *testing.T) {
	s := NewStack()
	entries, err := s.GenerateChain(3, func(prev *checkin.Psbt, seq int) (*checkin.Psbt, error) {
		in := outpoint(0)
		if prev != nil {
			in = checkin.Outpoint{Index: uint32(seq)}
		}
		return &checkin.Psbt{InputOutpoint: in, OutputAmountSat: int64(1000 - seq)}, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	if len(s.ActiveEntries()) != 3 {
		t.Fatalf("expected 3 active entries, got %d", len(s.ActiveEntries()))
	}
}

func TestGenerateChainRejectsOverDepth(t *testing.T) {
	s := NewStack()
	_, err := s.GenerateChain(MaxStackDepth+1, func(prev *checkin.Psbt, seq int) (*checkin.Psbt, error) {
		return &checkin.Psbt{}, nil
	})
	var e *errs.Error
	if !errors.As(err, &e) || e.Kind != errs.StaleStack {
		t.Fatalf("want StaleStack, got %v", err)
	}
}

func TestAutoBroadcastPicksLowestMatchingIndex(t *testing.T) {
	s := NewStack()
	_, err := s.GenerateChain(3, func(prev *checkin.Psbt, seq int) (*checkin.Psbt, error) {
		return &checkin.Psbt{InputOutpoint: outpoint(uint32(seq)), OutputAmountSat: 1000}, nil
	})
	if err != nil {
		t.Fatal(err)
	}

	var broadcastCalls int
	entry, err := s.AutoBroadcast(outpoint(1), func(p *checkin.Psbt) error {
		broadcastCalls++
		return nil
	}, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if broadcastCalls != 1 {
		t.Fatalf("expected exactly one broadcast call, got %d", broadcastCalls)
	}
	if entry.SequenceIndex != 1 {
		t.Fatalf("expected entry at sequence 1, got %d", entry.SequenceIndex)
	}

	// The remaining two entries stay active; the broadcast one does not.
	active := s.ActiveEntries()
	if len(active) != 2 {
		t.Fatalf("expected 2 still-active entries, got %d", len(active))
	}
}

func TestManualBroadcastInvalidatesChain(t *testing.T) {
	s := NewStack()
	_, err := s.GenerateChain(3, func(prev *checkin.Psbt, seq int) (*checkin.Psbt, error) {
		return &checkin.Psbt{InputOutpoint: outpoint(uint32(seq))}, nil
	})
	if err != nil {
		t.Fatal(err)
	}

	now := time.Now()
	s.InvalidateAll(now)

	if len(s.ActiveEntries()) != 0 {
		t.Fatal("expected no active entries after InvalidateAll")
	}
	for _, e := range s.Entries() {
		if e.State != StateInvalidated {
			t.Fatalf("expected every entry invalidated, got %v", e.State)
		}
	}
}

func TestLowStackSignal(t *testing.T) {
	s := NewStack()
	if !s.IsLowStack() {
		t.Fatal("an empty stack must report low_stack")
	}
	_, err := s.GenerateChain(3, func(prev *checkin.Psbt, seq int) (*checkin.Psbt, error) {
		return &checkin.Psbt{InputOutpoint: outpoint(uint32(seq))}, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if s.IsLowStack() {
		t.Fatal("3 active entries should not be low_stack")
	}
}

func TestClearRemovesEverything(t *testing.T) {
	s := NewStack()
	_, _ = s.GenerateChain(2, func(prev *checkin.Psbt, seq int) (*checkin.Psbt, error) {
		return &checkin.Psbt{InputOutpoint: outpoint(uint32(seq))}, nil
	})
	s.Clear()
	if len(s.Entries()) != 0 {
		t.Fatal("expected stack to be empty after Clear")
	}
}
