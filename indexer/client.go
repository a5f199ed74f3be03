// Copyright (c) 2024 The NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package indexer implements the chain/indexer client interface (spec
// §4.F, §6.2): the core's only view onto the blockchain, consumed through
// a narrow Client contract so the orchestrator never depends on a
// particular indexer's wire format.
package indexer

import (
	"context"

	"github.com/decred/dcrd/chaincfg/chainhash"
)

// Status reports the client's connectivity health (spec §4.F: "a tip query
// failing more than max_consecutive_failures takes the watcher to
// degraded").
type Status int

const (
	StatusOK Status = iota
	StatusDegraded
)

// Utxo is an unspent output reported by the indexer for a watched script.
// The core treats this as untrusted input: a false UTXO list can cause
// denial of service, never loss of funds, because every spend is still
// validated against the compiled descriptor before being acted on.
type Utxo struct {
	Txid          chainhash.Hash
	Vout          uint32
	AmountSats    int64
	Height        uint32 // 0 if unconfirmed
	ScriptPubKey  []byte
}

// HistoryEntry is one entry of a script's confirmed/unconfirmed history.
type HistoryEntry struct {
	Txid   chainhash.Hash
	Height uint32 // 0 if unconfirmed
}

// Client is the narrow contract the core requires of a chain indexer (spec
// §6.2): tip height, script history, script UTXOs, raw transaction fetch,
// and broadcast. Implementations must validate that responses match the
// script they were asked about and must fail fast on protocol errors
// rather than returning ambiguous partial data.
type Client interface {
	TipHeight(ctx context.Context) (uint32, error)
	ScriptHistory(ctx context.Context, scriptPubKey []byte) ([]HistoryEntry, error)
	ScriptUtxos(ctx context.Context, scriptPubKey []byte) ([]Utxo, error)
	GetTransaction(ctx context.Context, txid chainhash.Hash) ([]byte, error)
	Broadcast(ctx context.Context, rawTx []byte) (chainhash.Hash, error)

	// Status reports the client's current connectivity health, computed
	// from consecutive tip-query failures (spec §4.F).
	Status() Status
}

// FilterClient is an optional extension a Client may also satisfy when the
// indexer publishes BIP158-style block filters: callers can cheaply rule
// out "no match" before paying for a full ScriptHistory round trip (spec
// domain stack: gcs as an "optional cheap pre-check").
type FilterClient interface {
	Client
	// MayContain reports whether the filter committed to at height could
	// plausibly contain scriptPubKey. A false result proves absence; a
	// true result still requires the full round trip to confirm.
	MayContain(ctx context.Context, height uint32, scriptPubKey []byte) (bool, error)
}
