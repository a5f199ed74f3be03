// Copyright (c) 2024 The NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package indexer

import (
	"context"
	"crypto/tls"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RenAndKiwi/nostring/errs"
	"github.com/decred/dcrd/chaincfg/chainhash"
	"github.com/decred/dcrd/connmgr/v3"
	"github.com/gorilla/websocket"
)

// DefaultMaxConsecutiveFailures is the default threshold at which a tip
// query failure streak takes the client to degraded (spec §4.F).
const DefaultMaxConsecutiveFailures = 6

// reconnectBackoff is the supervisor's retry interval between dial
// attempts once the underlying connection is lost, following the same
// persistent-outbound-peer pattern a full node uses to keep a connection
// to a fixed address alive.
const reconnectBackoff = 5 * time.Second

// ElectrumClient implements Client against an Electrum-like JSON-RPC server
// reached over a websocket, per the indexer protocol contract (spec §6.2).
// The transport connection is supervised by a connmgr.ConnManager configured
// for a single permanent outbound peer: lost connections are retried on a
// fixed backoff without any caller-visible state beyond Status().
type ElectrumClient struct {
	addr      string
	tlsConfig *tls.Config

	cm *connmgr.ConnManager

	mu          sync.Mutex
	ws          *websocket.Conn
	pending     map[uint64]chan rpcResponse
	nextID      uint64
	consecutive int32

	closeOnce sync.Once
	closed    chan struct{}
}

type rpcRequest struct {
	ID     uint64        `json:"id"`
	Method string        `json:"method"`
	Params []interface{} `json:"params"`
}

type rpcResponse struct {
	ID     uint64          `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// NewElectrumClient dials addr (host:port) over TLS and begins a
// connmgr-supervised websocket session. tlsConfig may be nil to use the
// platform's default root CA set (spec §6.2: "the transport must be
// authenticated (TLS)").
func NewElectrumClient(addr string, tlsConfig *tls.Config) (*ElectrumClient, error) {
	c := &ElectrumClient{
		addr:      addr,
		tlsConfig: tlsConfig,
		pending:   make(map[uint64]chan rpcResponse),
		closed:    make(chan struct{}),
	}

	cfg := &connmgr.Config{
		RetryDuration: reconnectBackoff,
		Dial: func(a net.Addr) (net.Conn, error) {
			return tls.Dial(a.Network(), a.String(), c.effectiveTLSConfig())
		},
		OnConnection: func(_ *connmgr.ConnReq, conn net.Conn) {
			c.attachWebsocket(conn)
		},
		OnDisconnection: func(_ *connmgr.ConnReq) {
			c.detachWebsocket()
		},
		GetNewAddress: func() (net.Addr, error) {
			return &indexerAddr{addr: c.addr}, nil
		},
	}
	cm, err := connmgr.New(cfg)
	if err != nil {
		return nil, errs.Wrap(errs.IndexerUnavailable, "failed to start connection manager", err)
	}
	c.cm = cm
	cm.Start()
	cm.Connect(&connmgr.ConnReq{Addr: &indexerAddr{addr: addr}, Permanent: true})
	return c, nil
}

// indexerAddr adapts a host:port string to net.Addr for connmgr, since the
// indexer is reached over TLS-over-TCP rather than a raw TCP dial target
// connmgr would otherwise resolve itself.
type indexerAddr struct{ addr string }

func (a *indexerAddr) Network() string { return "tcp" }
func (a *indexerAddr) String() string  { return a.addr }

func (c *ElectrumClient) effectiveTLSConfig() *tls.Config {
	if c.tlsConfig != nil {
		return c.tlsConfig
	}
	return &tls.Config{MinVersion: tls.VersionTLS12}
}

// attachWebsocket completes the websocket handshake over an already-dialed
// TLS connection and starts the reader loop (spec §6.2 transport).
func (c *ElectrumClient) attachWebsocket(conn net.Conn) {
	u := &url.URL{Scheme: "wss", Host: c.addr, Path: "/"}
	ws, _, err := websocket.NewClient(conn, u, nil, 1024, 1024)
	if err != nil {
		conn.Close()
		return
	}
	c.mu.Lock()
	c.ws = ws
	c.mu.Unlock()
	go c.readLoop(ws)
}

func (c *ElectrumClient) detachWebsocket() {
	c.mu.Lock()
	c.ws = nil
	c.mu.Unlock()
}

func (c *ElectrumClient) readLoop(ws *websocket.Conn) {
	for {
		_, msg, err := ws.ReadMessage()
		if err != nil {
			return
		}
		var resp rpcResponse
		if err := json.Unmarshal(msg, &resp); err != nil {
			continue
		}
		c.mu.Lock()
		ch, ok := c.pending[resp.ID]
		if ok {
			delete(c.pending, resp.ID)
		}
		c.mu.Unlock()
		if ok {
			ch <- resp
		}
	}
}

// call issues one JSON-RPC request and waits for its matching response or
// ctx's deadline, whichever comes first.
func (c *ElectrumClient) call(ctx context.Context, method string, params ...interface{}) (json.RawMessage, error) {
	c.mu.Lock()
	ws := c.ws
	if ws == nil {
		c.mu.Unlock()
		return nil, errs.New(errs.IndexerUnavailable, "no active indexer connection")
	}
	c.nextID++
	id := c.nextID
	respCh := make(chan rpcResponse, 1)
	c.pending[id] = respCh
	c.mu.Unlock()

	req := rpcRequest{ID: id, Method: method, Params: params}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, errs.Wrap(errs.IndexerUnavailable, "failed to encode request", err)
	}
	if err := ws.WriteMessage(websocket.TextMessage, payload); err != nil {
		return nil, errs.Wrap(errs.IndexerUnavailable, "failed to send request", err)
	}

	select {
	case resp := <-respCh:
		if resp.Error != nil {
			return nil, errs.New(errs.IndexerUnavailable, fmt.Sprintf("indexer error: %s", resp.Error.Message))
		}
		return resp.Result, nil
	case <-ctx.Done():
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		return nil, errs.Wrap(errs.IndexerUnavailable, "request timed out", ctx.Err())
	case <-c.closed:
		return nil, errs.New(errs.IndexerUnavailable, "client closed")
	}
}

// TipHeight implements Client.
func (c *ElectrumClient) TipHeight(ctx context.Context) (uint32, error) {
	raw, err := c.call(ctx, "blockchain.headers.subscribe")
	if err != nil {
		c.recordFailure()
		return 0, err
	}
	var h struct {
		Height uint32 `json:"height"`
	}
	if err := json.Unmarshal(raw, &h); err != nil {
		c.recordFailure()
		return 0, errs.Wrap(errs.IndexerUnavailable, "malformed tip response", err)
	}
	c.recordSuccess()
	return h.Height, nil
}

// ScriptHistory implements Client. Each returned entry's script is implied
// by the request, so there is no cross-script field to validate beyond
// rejecting a malformed response shape.
func (c *ElectrumClient) ScriptHistory(ctx context.Context, scriptPubKey []byte) ([]HistoryEntry, error) {
	scripthash := electrumScripthash(scriptPubKey)
	raw, err := c.call(ctx, "blockchain.scripthash.get_history", scripthash)
	if err != nil {
		return nil, err
	}
	var entries []struct {
		TxHash string `json:"tx_hash"`
		Height uint32 `json:"height"`
	}
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, errs.Wrap(errs.IndexerUnavailable, "malformed history response", err)
	}
	out := make([]HistoryEntry, 0, len(entries))
	for _, e := range entries {
		h, err := chainhash.NewHashFromStr(e.TxHash)
		if err != nil {
			return nil, errs.Wrap(errs.IndexerUnavailable, "malformed txid in history response", err)
		}
		out = append(out, HistoryEntry{Txid: *h, Height: e.Height})
	}
	return out, nil
}

// ScriptUtxos implements Client.
func (c *ElectrumClient) ScriptUtxos(ctx context.Context, scriptPubKey []byte) ([]Utxo, error) {
	scripthash := electrumScripthash(scriptPubKey)
	raw, err := c.call(ctx, "blockchain.scripthash.listunspent", scripthash)
	if err != nil {
		return nil, err
	}
	var entries []struct {
		TxHash string `json:"tx_hash"`
		TxPos  uint32 `json:"tx_pos"`
		Value  int64  `json:"value"`
		Height uint32 `json:"height"`
	}
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, errs.Wrap(errs.IndexerUnavailable, "malformed utxo response", err)
	}
	out := make([]Utxo, 0, len(entries))
	for _, e := range entries {
		h, err := chainhash.NewHashFromStr(e.TxHash)
		if err != nil {
			return nil, errs.Wrap(errs.IndexerUnavailable, "malformed txid in utxo response", err)
		}
		out = append(out, Utxo{
			Txid:         *h,
			Vout:         e.TxPos,
			AmountSats:   e.Value,
			Height:       e.Height,
			ScriptPubKey: scriptPubKey,
		})
	}
	return out, nil
}

// GetTransaction implements Client, returning the raw transaction bytes.
func (c *ElectrumClient) GetTransaction(ctx context.Context, txid chainhash.Hash) ([]byte, error) {
	raw, err := c.call(ctx, "blockchain.transaction.get", txid.String(), false)
	if err != nil {
		return nil, err
	}
	var hexTx string
	if err := json.Unmarshal(raw, &hexTx); err != nil {
		return nil, errs.Wrap(errs.IndexerUnavailable, "malformed transaction response", err)
	}
	return hex.DecodeString(hexTx)
}

// Broadcast implements Client.
func (c *ElectrumClient) Broadcast(ctx context.Context, rawTx []byte) (chainhash.Hash, error) {
	raw, err := c.call(ctx, "blockchain.transaction.broadcast", hex.EncodeToString(rawTx))
	if err != nil {
		return chainhash.Hash{}, err
	}
	var txidHex string
	if err := json.Unmarshal(raw, &txidHex); err != nil {
		return chainhash.Hash{}, errs.Wrap(errs.IndexerUnavailable, "malformed broadcast response", err)
	}
	h, err := chainhash.NewHashFromStr(txidHex)
	if err != nil {
		return chainhash.Hash{}, errs.Wrap(errs.IndexerUnavailable, "malformed broadcast txid", err)
	}
	return *h, nil
}

// Status implements Client (spec §4.F degraded threshold).
func (c *ElectrumClient) Status() Status {
	if atomic.LoadInt32(&c.consecutive) >= DefaultMaxConsecutiveFailures {
		return StatusDegraded
	}
	return StatusOK
}

func (c *ElectrumClient) recordFailure() { atomic.AddInt32(&c.consecutive, 1) }
func (c *ElectrumClient) recordSuccess() { atomic.StoreInt32(&c.consecutive, 0) }

// Close tears down the supervised connection.
func (c *ElectrumClient) Close() {
	c.closeOnce.Do(func() {
		close(c.closed)
		c.cm.Stop()
		c.mu.Lock()
		if c.ws != nil {
			c.ws.Close()
		}
		c.mu.Unlock()
	})
}

// electrumScripthash computes the SHA-256(scriptPubKey), little-endian
// reversed, hex-encoded identifier the Electrum protocol indexes scripts
// by.
func electrumScripthash(scriptPubKey []byte) string {
	sum := chainhash.HashB(scriptPubKey)
	for i, j := 0, len(sum)-1; i < j; i, j = i+1, j-1 {
		sum[i], sum[j] = sum[j], sum[i]
	}
	return hex.EncodeToString(sum)
}
