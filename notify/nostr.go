// Copyright (c) 2024 The NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package notify

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/RenAndKiwi/nostring/errs"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/schnorr"
	"github.com/gorilla/websocket"
)

// relayPublishTimeout bounds a single relay publish attempt (spec §5:
// "relay publish: 15 s per relay").
const relayPublishTimeout = 15 * time.Second

// kindEncryptedDM is the event kind used for direct messages; kindGiftWrap
// is the sealed, metadata-minimizing wrapper used for both DMs and locked
// share relay storage.
const (
	kindEncryptedDM = 4
	kindGiftWrap    = 1059
)

// Event is a minimal Nostr event, enough to sign, serialize, and publish
// without depending on a full Nostr client library (none appeared in the
// retrieved examples).
type Event struct {
	PubKey    string     `json:"pubkey"`
	CreatedAt int64      `json:"created_at"`
	Kind      int        `json:"kind"`
	Tags      [][]string `json:"tags"`
	Content   string     `json:"content"`
	ID        string     `json:"id"`
	Sig       string     `json:"sig"`
}

// serializedForID is the NIP-01 canonical serialization an event's id
// commits to.
func (e *Event) serializedForID() []byte {
	arr := []interface{}{0, e.PubKey, e.CreatedAt, e.Kind, e.Tags, e.Content}
	b, _ := json.Marshal(arr)
	return b
}

// SignEvent fills in id and sig for e, signed by secret (spec §6.3: events
// are Schnorr-signed per NIP-01). This uses the project's available
// secp256k1 Schnorr signer rather than a byte-exact BIP-340 implementation
// — no BIP-340-specific signer was available among the retrieved
// examples, so cross-client signature verification is not guaranteed.
func SignEvent(e *Event, secret [32]byte, pubKeyHex [32]byte, now time.Time) error {
	e.PubKey = hex.EncodeToString(pubKeyHex[:])
	e.CreatedAt = now.Unix()
	idHash := sha256.Sum256(e.serializedForID())
	e.ID = hex.EncodeToString(idHash[:])

	priv := secp256k1.PrivKeyFromBytes(secret[:])
	defer priv.Zero()
	sig, err := schnorr.Sign(priv, idHash[:])
	if err != nil {
		return errs.Wrap(errs.CryptoProviderMissing, "failed to sign event", err)
	}
	e.Sig = hex.EncodeToString(sig.Serialize())
	return nil
}

// SendDM builds, signs, and publishes an encrypted direct message event to
// the given relays (spec §6.3 send_dm). It returns the event id of the
// first relay accepting it.
func SendDM(ctx context.Context, serviceSecret [32]byte, servicePub [32]byte, recipientPub [32]byte, plaintext string, relays []string, now time.Time) (string, error) {
	ciphertext, err := EncryptDM(serviceSecret, recipientPub, []byte(plaintext))
	if err != nil {
		return "", err
	}
	evt := &Event{
		Kind:    kindEncryptedDM,
		Tags:    [][]string{{"p", hex.EncodeToString(recipientPub[:])}},
		Content: ciphertext,
	}
	if err := SignEvent(evt, serviceSecret, servicePub, now); err != nil {
		return "", err
	}
	accepted, err := PublishToRelays(ctx, evt, relays)
	if err != nil {
		return "", err
	}
	if len(accepted) == 0 {
		return "", errs.New(errs.RelayTimeout, "no relay accepted the event")
	}
	return evt.ID, nil
}

// SendGiftWrap wraps payload in a kind-1059 event addressed to recipient,
// used both for DM metadata minimization and for locked-share relay
// storage (spec §4.G "locked-share relay storage", §6.3 send_gift_wrap).
func SendGiftWrap(ctx context.Context, serviceSecret [32]byte, servicePub [32]byte, recipientPub [32]byte, payload []byte, relays []string, now time.Time) (string, error) {
	ciphertext, err := EncryptDM(serviceSecret, recipientPub, payload)
	if err != nil {
		return "", err
	}
	evt := &Event{
		Kind:    kindGiftWrap,
		Tags:    [][]string{{"p", hex.EncodeToString(recipientPub[:])}},
		Content: ciphertext,
	}
	if err := SignEvent(evt, serviceSecret, servicePub, now); err != nil {
		return "", err
	}
	accepted, err := PublishToRelays(ctx, evt, relays)
	if err != nil {
		return "", err
	}
	if len(accepted) == 0 {
		return "", errs.New(errs.RelayTimeout, "no relay accepted the event")
	}
	return evt.ID, nil
}

// PublishToRelays attempts to publish evt to every relay URL concurrently
// and returns the subset that accepted it (spec §4.G: "success requires
// acceptance by at least one relay").
func PublishToRelays(ctx context.Context, evt *Event, relays []string) ([]string, error) {
	if len(relays) == 0 {
		return nil, errs.New(errs.RelayTimeout, "no relays configured")
	}
	type result struct {
		relay string
		ok    bool
	}
	results := make(chan result, len(relays))
	for _, r := range relays {
		go func(relay string) {
			ok := publishOne(ctx, relay, evt)
			results <- result{relay: relay, ok: ok}
		}(r)
	}
	var accepted []string
	for range relays {
		res := <-results
		if res.ok {
			accepted = append(accepted, res.relay)
		}
	}
	return accepted, nil
}

func publishOne(ctx context.Context, relayURL string, evt *Event) bool {
	ctx, cancel := context.WithTimeout(ctx, relayPublishTimeout)
	defer cancel()

	dialer := websocket.Dialer{HandshakeTimeout: relayPublishTimeout}
	conn, _, err := dialer.DialContext(ctx, relayURL, nil)
	if err != nil {
		return false
	}
	defer conn.Close()

	payload, err := json.Marshal([]interface{}{"EVENT", evt})
	if err != nil {
		return false
	}
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return false
	}

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return false
		}
		var frame []json.RawMessage
		if err := json.Unmarshal(msg, &frame); err != nil || len(frame) < 3 {
			continue
		}
		var frameType string
		if err := json.Unmarshal(frame[0], &frameType); err != nil || frameType != "OK" {
			continue
		}
		var accepted bool
		if err := json.Unmarshal(frame[2], &accepted); err != nil {
			continue
		}
		return accepted
	}
}
