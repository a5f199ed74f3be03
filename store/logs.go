// Copyright (c) 2024 The NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import (
	"encoding/binary"
	"time"

	"github.com/RenAndKiwi/nostring/notify"
)

var (
	checkinLogPrefix        = []byte("checkin_log/")
	checkinLogCounterKey    = []byte("checkin_log/_counter")
	deliveryLogPrefix       = []byte("delivery_log/")
	deliveryLogCounterKey   = []byte("delivery_log/_counter")
	spendEventsPrefix       = []byte("spend_events/")
	spendEventsCounterKey   = []byte("spend_events/_counter")
	presignedPrefix         = []byte("presigned_checkins/")
	presignedCounterKey     = []byte("presigned_checkins/_counter")
	relayPubPrefix          = []byte("relay_publications/")
	relayPubCounterKey      = []byte("relay_publications/_counter")
)

func logKey(prefix []byte, id uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, id)
	return append(append([]byte(nil), prefix...), buf...)
}

// CheckinLogEntry records one completed check-in (spec §4.I checkin_log,
// append-only).
type CheckinLogEntry struct {
	ID                 uint64
	OccurredAt         time.Time
	ConfirmationBlock  uint32
	Txid               string
}

// AppendCheckinLog appends a check-in record, assigning it the next id.
func (t *Tx) AppendCheckinLog(e CheckinLogEntry) (uint64, error) {
	id, err := t.nextAutoincrement(checkinLogCounterKey)
	if err != nil {
		return 0, err
	}
	e.ID = id
	raw, err := encode(e)
	if err != nil {
		return 0, err
	}
	return id, t.put(logKey(checkinLogPrefix, id), raw)
}

// ListCheckinLog returns every check-in record in insertion order.
func ListCheckinLog(r Reader) ([]CheckinLogEntry, error) {
	pairs, err := r.iteratePrefix(checkinLogPrefix)
	if err != nil {
		return nil, err
	}
	out := make([]CheckinLogEntry, 0, len(pairs))
	for _, kv := range pairs {
		if isCounterKey(kv[0]) {
			continue
		}
		var e CheckinLogEntry
		if err := decode(kv[1], &e); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// DeliveryLogEntry records one delivery attempt outcome (spec §4.I
// delivery_log, "append-only, cooldown source").
type DeliveryLogEntry struct {
	ID          uint64
	Fingerprint [4]byte
	Channel     notify.Channel
	Level       notify.Level
	Success     bool
	At          time.Time
}

// AppendDeliveryLog appends a delivery attempt outcome.
func (t *Tx) AppendDeliveryLog(e DeliveryLogEntry) (uint64, error) {
	id, err := t.nextAutoincrement(deliveryLogCounterKey)
	if err != nil {
		return 0, err
	}
	e.ID = id
	raw, err := encode(e)
	if err != nil {
		return 0, err
	}
	return id, t.put(logKey(deliveryLogPrefix, id), raw)
}

func listDeliveryLog(r Reader) ([]DeliveryLogEntry, error) {
	pairs, err := r.iteratePrefix(deliveryLogPrefix)
	if err != nil {
		return nil, err
	}
	out := make([]DeliveryLogEntry, 0, len(pairs))
	for _, kv := range pairs {
		if isCounterKey(kv[0]) {
			continue
		}
		var e DeliveryLogEntry
		if err := decode(kv[1], &e); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// DeliveryLogReader implements notify.DeliveryLog against a store
// snapshot, so rate-limit/cooldown reads are atomic within whatever
// transaction the caller took the Reader from (spec §4.G: "cooldown reads
// and writes must be atomic across concurrent cycles").
type DeliveryLogReader struct {
	R Reader
}

// LastSuccess implements notify.DeliveryLog.
func (d DeliveryLogReader) LastSuccess(fp [4]byte, ch notify.Channel, level notify.Level, now time.Time) (time.Time, bool) {
	entries, err := listDeliveryLog(d.R)
	if err != nil {
		return time.Time{}, false
	}
	var latest time.Time
	found := false
	for _, e := range entries {
		if e.Fingerprint != fp || e.Channel != ch || e.Level != level || !e.Success {
			continue
		}
		if !found || e.At.After(latest) {
			latest = e.At
			found = true
		}
	}
	return latest, found
}

// SpendEvent records one classified spend of the inheritance UTXO (spec
// §4.I spend_events, append-only).
type SpendEvent struct {
	ID            uint64
	Txid          string
	FundingHeight uint32
	SpendHeight   uint32
	SpendType     int
	Confidence    float64
	Method        int
	ObservedAt    time.Time
}

// AppendSpendEvent appends a spend classification result.
func (t *Tx) AppendSpendEvent(e SpendEvent) (uint64, error) {
	id, err := t.nextAutoincrement(spendEventsCounterKey)
	if err != nil {
		return 0, err
	}
	e.ID = id
	raw, err := encode(e)
	if err != nil {
		return 0, err
	}
	return id, t.put(logKey(spendEventsPrefix, id), raw)
}

// ListSpendEvents returns every spend event in tip-observation order
// (spec §5: "spend events are appended in tip-observation order, not
// necessarily block order").
func ListSpendEvents(r Reader) ([]SpendEvent, error) {
	pairs, err := r.iteratePrefix(spendEventsPrefix)
	if err != nil {
		return nil, err
	}
	out := make([]SpendEvent, 0, len(pairs))
	for _, kv := range pairs {
		if isCounterKey(kv[0]) {
			continue
		}
		var e SpendEvent
		if err := decode(kv[1], &e); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// PresignedCheckinRecord is the persisted projection of one pre-signed
// stack entry (spec §4.I presigned_checkins, "state transitions only").
type PresignedCheckinRecord struct {
	ID            uint64
	SequenceIndex int
	State         int
	BroadcastAt   time.Time
	InvalidatedAt time.Time
}

// PutPresignedCheckin inserts or replaces a pre-signed entry's persisted
// state.
func (t *Tx) PutPresignedCheckin(e PresignedCheckinRecord) (uint64, error) {
	id := e.ID
	if id == 0 {
		var err error
		id, err = t.nextAutoincrement(presignedCounterKey)
		if err != nil {
			return 0, err
		}
		e.ID = id
	}
	raw, err := encode(e)
	if err != nil {
		return 0, err
	}
	return id, t.put(logKey(presignedPrefix, id), raw)
}

// ListPresignedCheckins returns every persisted pre-signed entry.
func ListPresignedCheckins(r Reader) ([]PresignedCheckinRecord, error) {
	pairs, err := r.iteratePrefix(presignedPrefix)
	if err != nil {
		return nil, err
	}
	out := make([]PresignedCheckinRecord, 0, len(pairs))
	for _, kv := range pairs {
		if isCounterKey(kv[0]) {
			continue
		}
		var e PresignedCheckinRecord
		if err := decode(kv[1], &e); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// RelayPublicationRecord records one locked-share relay publication
// outcome (spec §4.I relay_publications, append-only).
type RelayPublicationRecord struct {
	ID           uint64
	SplitID      string
	HeirFingerprint [4]byte
	AcceptedBy   []string
	At           time.Time
}

// AppendRelayPublication appends a publication outcome.
func (t *Tx) AppendRelayPublication(e RelayPublicationRecord) (uint64, error) {
	id, err := t.nextAutoincrement(relayPubCounterKey)
	if err != nil {
		return 0, err
	}
	e.ID = id
	raw, err := encode(e)
	if err != nil {
		return 0, err
	}
	return id, t.put(logKey(relayPubPrefix, id), raw)
}

// ListRelayPublications returns every persisted publication record.
func ListRelayPublications(r Reader) ([]RelayPublicationRecord, error) {
	pairs, err := r.iteratePrefix(relayPubPrefix)
	if err != nil {
		return nil, err
	}
	out := make([]RelayPublicationRecord, 0, len(pairs))
	for _, kv := range pairs {
		if isCounterKey(kv[0]) {
			continue
		}
		var e RelayPublicationRecord
		if err := decode(kv[1], &e); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// isCounterKey filters a table's own autoincrement counter entry out of a
// prefix scan, since it shares the table's key prefix by construction.
func isCounterKey(key []byte) bool {
	for _, p := range [][]byte{checkinLogCounterKey, deliveryLogCounterKey, spendEventsCounterKey, presignedCounterKey, relayPubCounterKey} {
		if string(key) == string(p) {
			return true
		}
	}
	return false
}
