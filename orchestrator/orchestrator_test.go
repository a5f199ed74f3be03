// Copyright (c) 2024 The NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package orchestrator

import (
	"context"
	"testing"

	"github.com/RenAndKiwi/nostring/checkin"
	"github.com/RenAndKiwi/nostring/indexer"
	"github.com/decred/dcrd/chaincfg/chainhash"
)

type fakeIndexer struct {
	tip     uint32
	history []indexer.HistoryEntry
	status  indexer.Status
}

func (f *fakeIndexer) TipHeight(ctx context.Context) (uint32, error) { return f.tip, nil }
func (f *fakeIndexer) ScriptHistory(ctx context.Context, s []byte) ([]indexer.HistoryEntry, error) {
	return f.history, nil
}
func (f *fakeIndexer) ScriptUtxos(ctx context.Context, s []byte) ([]indexer.Utxo, error) {
	return nil, nil
}
func (f *fakeIndexer) GetTransaction(ctx context.Context, txid chainhash.Hash) ([]byte, error) {
	return nil, nil
}
func (f *fakeIndexer) Broadcast(ctx context.Context, raw []byte) (chainhash.Hash, error) {
	return chainhash.Hash{}, nil
}
func (f *fakeIndexer) Status() indexer.Status { return f.status }

func TestRunCycleComputesUrgency(t *testing.T) {
	idx := &fakeIndexer{tip: 1000, status: indexer.StatusOK}
	c := &Coordinator{Indexer: idx}
	policy := Policy{
		TimelockBlocks: 26280,
		ActiveUtxo:     &checkin.InheritanceUtxo{CreationBlock: 900},
	}
	result, err := c.RunCycle(context.Background(), policy, "backup", nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.Status.Urgency != UrgencyOK {
		t.Fatalf("expected ok urgency far from deadline, got %v", result.Status.Urgency)
	}
}

func TestRunCycleCriticalAtZeroRemaining(t *testing.T) {
	idx := &fakeIndexer{tip: 1000, status: indexer.StatusOK}
	c := &Coordinator{Indexer: idx}
	policy := Policy{
		TimelockBlocks: 100,
		ActiveUtxo:     &checkin.InheritanceUtxo{CreationBlock: 900}, // deadline = 1000, tip = 1000
	}
	result, err := c.RunCycle(context.Background(), policy, "backup", nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.Status.Urgency != UrgencyCritical {
		t.Fatalf("expected critical at exactly 0 blocks remaining, got %v", result.Status.Urgency)
	}
}

func TestRunCycleDegradedShortCircuits(t *testing.T) {
	idx := &fakeIndexer{tip: 1000, status: indexer.StatusDegraded}
	c := &Coordinator{Indexer: idx}
	result, err := c.RunCycle(context.Background(), Policy{}, "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Degraded {
		t.Fatal("expected degraded result when indexer reports degraded status")
	}
}

func TestRunCycleSurfacesNewTxids(t *testing.T) {
	var txid chainhash.Hash
	txid[0] = 0xAB
	idx := &fakeIndexer{tip: 1000, status: indexer.StatusOK, history: []indexer.HistoryEntry{{Txid: txid, Height: 950}}}
	c := &Coordinator{Indexer: idx, Cache: indexer.NewClassifiedTxidCache(16)}
	policy := Policy{TimelockBlocks: 26280, ActiveUtxo: &checkin.InheritanceUtxo{CreationBlock: 900}}

	result, err := c.RunCycle(context.Background(), policy, "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.NewTxids) != 1 {
		t.Fatalf("expected 1 new txid, got %d", len(result.NewTxids))
	}

	// A second cycle over the same history must not re-surface the txid.
	result2, err := c.RunCycle(context.Background(), policy, "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(result2.NewTxids) != 0 {
		t.Fatal("expected already-classified txid to be filtered out on the second cycle")
	}
}

func TestClassifySpendSetsHeirClaimBanner(t *testing.T) {
	result := &CycleResult{}
	heirWitness := [][]byte{{0x01}, {0x02}, {0x03}} // 3-item witness: not the owner-path shape
	c := ClassifySpend(result, heirWitness, 100, 200, 50)
	if c.SpendType != checkin.SpendHeirClaim {
		t.Fatalf("expected heir_claim classification, got %+v", c)
	}
	if !result.HeirClaimBanner {
		t.Fatal("expected HeirClaimBanner to be set")
	}
}

func TestCancelledCycleReturnsContextError(t *testing.T) {
	idx := &fakeIndexer{tip: 1000, status: indexer.StatusOK}
	c := &Coordinator{Indexer: idx}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.RunCycle(ctx, Policy{}, "", nil)
	if err == nil {
		t.Fatal("expected a cancelled context to abort the cycle")
	}
}
