// Copyright (c) 2024 The NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package indexer

import (
	"context"
	"testing"

	"github.com/RenAndKiwi/nostring/gcs"
	"github.com/decred/dcrd/chaincfg/chainhash"
)

// fakeClient is an in-memory Client used to test cache and filter wiring
// without a live indexer connection.
type fakeClient struct {
	tip    uint32
	status Status
}

func (f *fakeClient) TipHeight(ctx context.Context) (uint32, error)                            { return f.tip, nil }
func (f *fakeClient) ScriptHistory(ctx context.Context, s []byte) ([]HistoryEntry, error)       { return nil, nil }
func (f *fakeClient) ScriptUtxos(ctx context.Context, s []byte) ([]Utxo, error)                 { return nil, nil }
func (f *fakeClient) GetTransaction(ctx context.Context, txid chainhash.Hash) ([]byte, error)   { return nil, nil }
func (f *fakeClient) Broadcast(ctx context.Context, raw []byte) (chainhash.Hash, error)         { return chainhash.Hash{}, nil }
func (f *fakeClient) Status() Status                                                            { return f.status }

func TestClassifiedTxidCacheDedup(t *testing.T) {
	c := NewClassifiedTxidCache(2)
	var h1, h2, h3 chainhash.Hash
	h1[0] = 1
	h2[0] = 2
	h3[0] = 3

	if c.AlreadyClassified(h1) {
		t.Fatal("h1 should not be classified yet")
	}
	c.MarkClassified(h1)
	if !c.AlreadyClassified(h1) {
		t.Fatal("h1 should now be classified")
	}

	c.MarkClassified(h2)
	c.MarkClassified(h3) // evicts h1 under a capacity of 2
	if c.AlreadyClassified(h1) {
		t.Fatal("h1 should have been evicted")
	}
	if !c.AlreadyClassified(h2) || !c.AlreadyClassified(h3) {
		t.Fatal("h2 and h3 should still be present")
	}
}

func TestFilteredClientRulesOutAbsence(t *testing.T) {
	base := &fakeClient{tip: 100, status: StatusOK}
	var key [gcs.KeySize]byte
	key[0] = 0xAA

	present := [][]byte{{0x01, 0x02}, {0x03, 0x04}}
	f, err := BuildFilterForBlock(key, present)
	if err != nil {
		t.Fatal(err)
	}

	fc := NewFilteredClient(base, key).(*filteredElectrumClient)
	fc.RegisterFilter(50, f)

	ok, err := fc.MayContain(context.Background(), 50, []byte{0x01, 0x02})
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("filter should report the present script as possibly contained")
	}

	// Height 51 has no registered filter: the pre-check must not rule
	// anything out.
	ok, err = fc.MayContain(context.Background(), 51, []byte{0x99, 0x99})
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("missing filter must not be treated as a ruled-out match")
	}
}

func TestFakeClientSatisfiesInterface(t *testing.T) {
	var _ Client = (*fakeClient)(nil)
	status := (&fakeClient{status: StatusDegraded}).Status()
	if status != StatusDegraded {
		t.Fatal("expected degraded status to round-trip")
	}
}
