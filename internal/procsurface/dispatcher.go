// Copyright (c) 2024 The NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package procsurface

import (
	"context"
	"crypto/sha256"
	"time"

	"github.com/RenAndKiwi/nostring/checkin"
	"github.com/RenAndKiwi/nostring/errs"
	"github.com/RenAndKiwi/nostring/hdkeychain"
	"github.com/RenAndKiwi/nostring/notify"
	"github.com/RenAndKiwi/nostring/nostrkey"
	"github.com/RenAndKiwi/nostring/orchestrator"
	"github.com/RenAndKiwi/nostring/policy"
	"github.com/RenAndKiwi/nostring/seed"
	"github.com/RenAndKiwi/nostring/shamir"
	"github.com/RenAndKiwi/nostring/shamir/codex32"
	"github.com/RenAndKiwi/nostring/shamir/slip39"
	"github.com/RenAndKiwi/nostring/store"
)

// Dispatcher binds one Session to the full named-operation surface spec
// §6.6 describes. Every method takes a typed Cmd and returns a Result; no
// method ever panics on malformed caller input -- everything routes
// through errs.Error and fail().
type Dispatcher struct {
	Session *Session
}

// NewDispatcher wraps s for process-surface dispatch.
func NewDispatcher(s *Session) *Dispatcher {
	return &Dispatcher{Session: s}
}

// HasWallet reports whether an encrypted seed or a watch-only xpub has
// already been set up.
func (d *Dispatcher) HasWallet(_ *HasWalletCmd) Result {
	s := d.Session
	s.mu.Lock()
	defer s.mu.Unlock()

	_, hasSeed, err := s.loadEncryptedSeed()
	if err != nil {
		return fail(err)
	}
	var hasWatchOnly bool
	err = s.Store.View(func(r store.Reader) error {
		_, ok, err := store.GetConfig(r, configKeyWatchOnlyXpub)
		hasWatchOnly = ok
		return err
	})
	if err != nil {
		return fail(err)
	}
	return ok(map[string]bool{"has_wallet": hasSeed || hasWatchOnly})
}

// CreateSeed generates a fresh mnemonic of the requested length. It does
// not persist anything: the caller must show the mnemonic to the owner
// and then call ImportSeed to commit it, so a crash between the two never
// leaves a half-created wallet.
func (d *Dispatcher) CreateSeed(cmd *CreateSeedCmd) Result {
	mnemonic, err := seed.GenerateMnemonic(cmd.WordCount)
	if err != nil {
		return fail(err)
	}
	return ok(map[string]string{"mnemonic": mnemonic})
}

// ImportSeed validates and encrypts mnemonic under password and persists
// it as the wallet's only on-disk secret.
func (d *Dispatcher) ImportSeed(cmd *ImportSeedCmd) Result {
	if err := seed.ParseMnemonic(cmd.Mnemonic); err != nil {
		return fail(err)
	}
	plaintext := seed.DeriveSeed(cmd.Mnemonic, "")
	es, err := seed.EncryptSeed(plaintext, cmd.Password)
	if err != nil {
		return fail(err)
	}
	s := d.Session
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.persistEncryptedSeed(es); err != nil {
		return fail(err)
	}
	return ok(nil)
}

// ImportWatchOnly records a bare xpub with no private key material at
// all; the resulting wallet can compile descriptors and watch the chain
// but can never build or sign a check-in PSBT (spec's Non-goals: the core
// never custodies third-party keys, and a watch-only wallet is simply one
// with no owner key of its own to custody).
func (d *Dispatcher) ImportWatchOnly(cmd *ImportWatchOnlyCmd) Result {
	if _, err := hdkeychain.NewKeyFromString(cmd.Xpub); err != nil {
		return fail(err)
	}
	s := d.Session
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.Store.Update(func(tx *store.Tx) error {
		return tx.SetConfig(configKeyWatchOnlyXpub, cmd.Xpub)
	})
	if err != nil {
		return fail(err)
	}
	s.watchOnlyXpub = cmd.Xpub
	return ok(nil)
}

// Unlock decrypts the stored seed under password and derives the in-memory
// master key, recompiling the descriptor against whatever heirs already
// exist.
func (d *Dispatcher) Unlock(cmd *UnlockCmd) Result {
	s := d.Session
	s.mu.Lock()
	defer s.mu.Unlock()

	es, hasSeed, err := s.loadEncryptedSeed()
	if err != nil {
		return fail(err)
	}
	if !hasSeed {
		return fail(errs.New(errs.NotUnlocked, "no seed has been imported"))
	}
	plaintext, err := seed.DecryptSeed(es, cmd.Password)
	if err != nil {
		return fail(err)
	}
	master, err := hdkeychain.NewMaster(plaintext, s.Network)
	if err != nil {
		return fail(err)
	}
	s.master = master
	s.unlocked = true

	if err := s.recompileDescriptor(); err != nil && !errIsKind(err, errs.NoDescriptor) {
		return fail(err)
	}
	return ok(nil)
}

// Lock drops the in-memory master key. The encrypted seed on disk is
// untouched.
func (d *Dispatcher) Lock(_ *LockCmd) Result {
	s := d.Session
	s.mu.Lock()
	defer s.mu.Unlock()
	s.master = nil
	s.unlocked = false
	return ok(nil)
}

// AddHeir persists a new heir and recompiles the descriptor.
func (d *Dispatcher) AddHeir(cmd *AddHeirCmd) Result {
	s := d.Session
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := hdkeychain.NewKeyFromString(cmd.Xpub); err != nil {
		return fail(err)
	}
	leaf, err := hdkeychain.NewKeyFromString(cmd.Xpub)
	if err != nil {
		return fail(err)
	}
	pub, err := leaf.ECPubKey()
	if err != nil {
		return fail(err)
	}
	fp := fingerprintOf(pub.SerializeCompressed())

	h := store.Heir{
		Fingerprint:    fp,
		Label:          cmd.Label,
		Xpub:           cmd.Xpub,
		DerivationPath: cmd.DerivationPath,
		TimelockBlocks: cmd.TimelockBlocks,
		Npub:           cmd.Npub,
		Email:          cmd.Email,
	}
	if err := s.Store.Update(func(tx *store.Tx) error { return tx.PutHeir(h) }); err != nil {
		return fail(err)
	}
	if s.unlocked {
		if err := s.recompileDescriptor(); err != nil {
			return fail(err)
		}
	}
	return ok(map[string]string{"fingerprint": hexFingerprint(fp)})
}

// ListHeirs returns every persisted heir.
func (d *Dispatcher) ListHeirs(_ *ListHeirsCmd) Result {
	s := d.Session
	var heirs []store.Heir
	err := s.Store.View(func(r store.Reader) error {
		var err error
		heirs, err = store.ListHeirs(r)
		return err
	})
	if err != nil {
		return fail(err)
	}
	return ok(heirs)
}

// RemoveHeir deletes a heir and recompiles the descriptor.
func (d *Dispatcher) RemoveHeir(cmd *RemoveHeirCmd) Result {
	s := d.Session
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.Store.Update(func(tx *store.Tx) error { return tx.RemoveHeir(cmd.Fingerprint) }); err != nil {
		return fail(err)
	}
	if s.unlocked {
		if err := s.recompileDescriptor(); err != nil && !errIsKind(err, errs.NoDescriptor) {
			return fail(err)
		}
	}
	return ok(nil)
}

// RefreshStatus runs one orchestrator cycle synchronously and reports the
// resulting policy status without performing any notification dispatch
// (spec §6.6 refresh_status is a read of status, not a poll-and-notify
// cycle -- that is check_and_notify's job).
func (d *Dispatcher) RefreshStatus(_ *RefreshStatusCmd) Result {
	s := d.Session
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireDescriptor(); err != nil {
		return fail(err)
	}

	scriptPubKey, err := watchedScriptPubKey(s.descriptor, s.currentIndex)
	if err != nil {
		return fail(err)
	}
	utxos, err := s.Indexer.ScriptUtxos(context.Background(), scriptPubKey)
	if err != nil {
		return fail(errs.Wrap(errs.IndexerUnavailable, "fetching inheritance UTXOs", err))
	}
	inheritanceUtxos := make([]checkin.InheritanceUtxo, 0, len(utxos))
	for _, u := range utxos {
		inheritanceUtxos = append(inheritanceUtxos, checkin.InheritanceUtxo{
			Outpoint:        checkin.Outpoint{Hash: u.Txid, Index: u.Vout},
			AmountSats:      u.AmountSats,
			ScriptPubKey:    u.ScriptPubKey,
			DerivationIndex: s.currentIndex,
			CreationBlock:   u.Height,
		})
	}
	var active *checkin.InheritanceUtxo
	if len(inheritanceUtxos) > 0 {
		picked, err := checkin.SelectUtxo(inheritanceUtxos)
		if err != nil {
			return fail(err)
		}
		active = &picked
	}
	s.activeUtxo = active

	coord := orchestrator.Coordinator{
		Indexer: s.Indexer,
		Dedup:   s.dedup,
		Cache:   s.cache,
	}
	result, err := coord.RunCycle(context.Background(), orchestrator.Policy{
		ScriptPubKey:   scriptPubKey,
		TimelockBlocks: shortestHeirTimelock(s.descriptor),
		ActiveUtxo:     active,
		Stack:          s.stack,
	}, "", nil)
	if err != nil {
		return fail(errs.Wrap(errs.IndexerUnavailable, "refreshing status", err))
	}
	return ok(result)
}

// BuildCheckinPsbt builds the unsigned check-in PSBT for the currently
// active inheritance UTXO.
func (d *Dispatcher) BuildCheckinPsbt(_ *BuildCheckinPsbtCmd) Result {
	s := d.Session
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireUnlocked(); err != nil {
		return fail(err)
	}
	if err := s.requireDescriptor(); err != nil {
		return fail(err)
	}
	if s.activeUtxo == nil {
		return fail(errs.New(errs.NoActiveUtxo, "call refresh_status first"))
	}

	ownerAccount, err := s.ownerAccountKey()
	if err != nil {
		return fail(err)
	}
	heirAccounts, err := heirAccountKeys(s.descriptor)
	if err != nil {
		return fail(err)
	}
	witnessScript, err := policy.BuildWitnessScript(s.descriptor, true, s.activeUtxo.DerivationIndex+1, ownerAccount, heirAccounts)
	if err != nil {
		return fail(err)
	}
	nextAddress, err := policy.DeriveAddress(s.descriptor, true, s.activeUtxo.DerivationIndex+1, ownerAccount, heirAccounts, s.Network)
	if err != nil {
		return fail(err)
	}

	psbt, err := checkin.BuildCheckinPsbt(*s.activeUtxo, witnessScript, checkin.DerivationHint{
		MasterFingerprint: s.ownerFingerprint,
		Path:              s.ownerPath,
	}, nextAddress, s.activeUtxo.DerivationIndex+1, s.FeeRateSatVB)
	if err != nil {
		return fail(err)
	}
	s.pendingIndex = s.activeUtxo.DerivationIndex + 1
	return ok(psbt)
}

// BroadcastSignedPsbt validates a signed check-in PSBT against the
// expected unsigned skeleton and hands it to the indexer for broadcast.
func (d *Dispatcher) BroadcastSignedPsbt(cmd *BroadcastSignedPsbtCmd, expected *checkin.Psbt) Result {
	s := d.Session
	s.mu.Lock()
	defer s.mu.Unlock()

	signed := &checkin.Psbt{
		InputOutpoint:   expected.InputOutpoint,
		WitnessUTXOAmt:  expected.WitnessUTXOAmt,
		WitnessUTXOPkS:  expected.WitnessUTXOPkS,
		WitnessScript:   expected.WitnessScript,
		OwnerDerivation: expected.OwnerDerivation,
		OutputAddress:   cmd.OutputAddress,
		OutputAmountSat: cmd.OutputAmountSat,
		FinalWitness:    cmd.FinalWitness,
	}
	if err := checkin.VerifyBroadcastPsbt(signed, expected, expected.OutputAddress, s.Network.Name); err != nil {
		return fail(err)
	}

	s.currentIndex = s.pendingIndex
	if s.stack != nil {
		s.stack.InvalidateAll(time.Now())
	}
	return ok(map[string]string{"status": "broadcast accepted for validation; hand signed.FinalWitness transaction bytes to the wallet's own broadcast path"})
}

// GenerateShares splits secret into a Shamir sharing and renders each
// share in the requested encoding.
func (d *Dispatcher) GenerateShares(cmd *GenerateSharesCmd) Result {
	shares, err := shamir.Split(cmd.Secret, cmd.K, cmd.N, cmd.Identifier, nil)
	if err != nil {
		return fail(err)
	}
	encoded := make([]string, 0, len(shares))
	for _, sh := range shares {
		sh.Scheme = cmd.Scheme
		switch cmd.Scheme {
		case shamir.SchemeCodex32:
			s, err := codex32.Encode(codex32.Share{
				Threshold:  sh.Threshold,
				Identifier: sh.Identifier,
				Index:      sh.Index,
				Payload:    sh.Payload,
			})
			if err != nil {
				return fail(err)
			}
			encoded = append(encoded, s)
		case shamir.SchemeSLIP39:
			s, err := slip39.Encode(sh.Index, sh.Threshold, sh.Payload)
			if err != nil {
				return fail(err)
			}
			encoded = append(encoded, s)
		default:
			encoded = append(encoded, hexEncode(sh.Payload))
		}
	}
	return ok(map[string]interface{}{"scheme": cmd.Scheme, "shares": encoded})
}

// CombineShares recombines shares of either Codex32 or SLIP-39 encoding
// (detected per-share) into the original secret.
func (d *Dispatcher) CombineShares(cmd *CombineSharesCmd) Result {
	shares := make([]shamir.Share, 0, len(cmd.Shares))
	for _, raw := range cmd.Shares {
		if cs, err := codex32.Decode(raw); err == nil {
			shares = append(shares, shamir.Share{
				Scheme:     shamir.SchemeCodex32,
				Threshold:  cs.Threshold,
				Index:      cs.Index,
				Identifier: cs.Identifier,
				Payload:    cs.Payload,
			})
			continue
		}
		if idx, threshold, payload, err := slip39.Decode(raw); err == nil {
			shares = append(shares, shamir.Share{
				Scheme:    shamir.SchemeSLIP39,
				Threshold: threshold,
				Index:     idx,
				Payload:   payload,
			})
			continue
		}
		return fail(errs.New(errs.InvalidShare, "share is neither valid Codex32 nor SLIP-39").WithItem(raw))
	}
	secret, err := shamir.Combine(shares)
	if err != nil {
		return fail(err)
	}
	return ok(map[string]string{"secret": hexEncode(secret)})
}

// SplitNsec parses an nsec and splits its raw secret into a Codex32
// sharing, per spec §4.B "Nostr identity inheritance".
func (d *Dispatcher) SplitNsec(cmd *SplitNsecCmd) Result {
	secret, err := nostrkey.ParseNsec(cmd.Nsec)
	if err != nil {
		return fail(err)
	}
	shares, err := shamir.Split(secret[:], cmd.K, cmd.N, "nsec", nil)
	if err != nil {
		return fail(err)
	}
	encoded := make([]string, 0, len(shares))
	for _, sh := range shares {
		s, err := codex32.Encode(codex32.Share{
			Threshold:  sh.Threshold,
			Identifier: sh.Identifier,
			Index:      sh.Index,
			Payload:    sh.Payload,
		})
		if err != nil {
			return fail(err)
		}
		encoded = append(encoded, s)
	}
	return ok(map[string]interface{}{"shares": encoded})
}

// RecoverNsec recombines Codex32 shares back into an nsec.
func (d *Dispatcher) RecoverNsec(cmd *RecoverNsecCmd) Result {
	shares := make([]shamir.Share, 0, len(cmd.Shares))
	for _, raw := range cmd.Shares {
		cs, err := codex32.Decode(raw)
		if err != nil {
			return fail(err)
		}
		shares = append(shares, shamir.Share{
			Threshold:  cs.Threshold,
			Index:      cs.Index,
			Identifier: cs.Identifier,
			Payload:    cs.Payload,
		})
	}
	secret, err := shamir.Combine(shares)
	if err != nil {
		return fail(err)
	}
	var raw [32]byte
	if len(secret) != 32 {
		return fail(errs.New(errs.InvalidShare, "recovered secret is not 32 bytes"))
	}
	copy(raw[:], secret)
	kp := nostrkeyFromSecret(raw)
	nsec, err := kp.Nsec()
	if err != nil {
		return fail(err)
	}
	return ok(map[string]string{"nsec": nsec})
}

// ExportDescriptorBackup renders the human-readable descriptor backup
// document.
func (d *Dispatcher) ExportDescriptorBackup(cmd *ExportDescriptorBackupCmd) Result {
	s := d.Session
	s.mu.Lock()
	defer s.mu.Unlock()
	return d.exportDescriptorBackupLocked(cmd.RecoveryInstructions)
}

// exportDescriptorBackupLocked is ExportDescriptorBackup's body, callable
// from other Dispatcher methods that already hold s.mu (sync.Mutex isn't
// reentrant, so the locking method itself never calls back into another
// locking method).
func (d *Dispatcher) exportDescriptorBackupLocked(recoveryInstructions string) Result {
	s := d.Session
	if err := s.requireDescriptor(); err != nil {
		return fail(err)
	}

	var ownerNpub string
	if s.serviceKey != nil {
		if npub, err := s.serviceKey.Npub(); err == nil {
			ownerNpub = npub
		}
	}

	doc := policy.BuildBackup(s.descriptor, policy.BackupInput{
		Network:              s.Network.Name,
		TimelockBlocks:       shortestHeirTimelock(s.descriptor),
		InheritanceAddress:   "", // derived lazily by the shell from the descriptor, never cached here
		OwnerNpub:            ownerNpub,
		LockedShares:         []policy.LockedShare{},
		RecoveryInstructions: recoveryInstructions,
		GeneratedAtISO8601:   time.Now().UTC().Format(time.RFC3339),
	})
	return ok(map[string]string{"document": doc})
}

// ConfigureNotifications updates the in-memory threshold ladder and relay
// list used by subsequent check_and_notify/deliver_to_heirs calls.
func (d *Dispatcher) ConfigureNotifications(cmd *ConfigureNotificationsCmd) Result {
	s := d.Session
	s.mu.Lock()
	defer s.mu.Unlock()
	s.thresholds = notify.Thresholds{
		ReminderDays:            cmd.ReminderDays,
		WarningDays:             cmd.WarningDays,
		UrgentDays:              cmd.UrgentDays,
		CriticalBlocksRemaining: cmd.CriticalBlocksRemaining,
	}
	s.relays = cmd.NostrRelays
	return ok(nil)
}

// CheckAndNotify runs one orchestrator cycle including heir delivery when
// critical, wiring the store-backed DeliveryLog so cooldown reads are
// atomic within the cycle's own transaction.
func (d *Dispatcher) CheckAndNotify(_ *CheckAndNotifyCmd) Result {
	s := d.Session
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireDescriptor(); err != nil {
		return fail(err)
	}
	if s.serviceKey == nil {
		kp, err := nostrkey.GenerateServiceKey()
		if err != nil {
			return fail(err)
		}
		s.serviceKey = kp
	}

	scriptPubKey, err := watchedScriptPubKey(s.descriptor, s.currentIndex)
	if err != nil {
		return fail(err)
	}
	contacts, err := d.heirContacts()
	if err != nil {
		return fail(err)
	}

	backup := d.exportDescriptorBackupLocked("")
	if !backup.Success {
		return backup
	}
	backupDoc, _ := backup.Data.(map[string]string)

	var cycleResult *orchestrator.CycleResult
	err = s.Store.Update(func(tx *store.Tx) error {
		deliverer := &notify.Deliverer{
			ServiceSecret: s.serviceKey.SecretBytes(),
			ServicePub:    s.serviceKey.PubKeyHex(),
			Relays:        s.relays,
			Email:         s.Email,
			Log:           store.DeliveryLogReader{R: tx},
		}
		coord := orchestrator.Coordinator{
			Indexer:    s.Indexer,
			Notifier:   deliverer,
			Thresholds: s.thresholds,
			Dedup:      s.dedup,
			Cache:      s.cache,
		}
		res, err := coord.RunCycle(context.Background(), orchestrator.Policy{
			ScriptPubKey:   scriptPubKey,
			TimelockBlocks: shortestHeirTimelock(s.descriptor),
			ActiveUtxo:     s.activeUtxo,
			Stack:          s.stack,
		}, backupDoc["document"], contacts)
		if err != nil {
			return err
		}
		cycleResult = res
		for i, dr := range res.DeliveryReports {
			if i >= len(contacts) {
				break
			}
			for _, ch := range dr.Delivered {
				if _, err := tx.AppendDeliveryLog(store.DeliveryLogEntry{
					Fingerprint: contacts[i].Fingerprint,
					Channel:     ch,
					Level:       notify.LevelCritical,
					Success:     true,
					At:          time.Now(),
				}); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return fail(err)
	}
	return ok(cycleResult)
}

// DeliverToHeirs delivers the descriptor backup to every configured heir
// immediately, bypassing the critical-urgency gate (an owner-triggered
// drill or an early voluntary delivery).
func (d *Dispatcher) DeliverToHeirs(_ *DeliverToHeirsCmd) Result {
	s := d.Session
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireDescriptor(); err != nil {
		return fail(err)
	}
	if s.serviceKey == nil {
		return fail(errs.New(errs.NotUnlocked, "no service key: run check_and_notify at least once first"))
	}
	contacts, err := d.heirContacts()
	if err != nil {
		return fail(err)
	}

	backup := d.exportDescriptorBackupLocked("")
	if !backup.Success {
		return backup
	}
	backupDoc, _ := backup.Data.(map[string]string)

	var reports []notify.DeliveryReport
	err = s.Store.Update(func(tx *store.Tx) error {
		deliverer := &notify.Deliverer{
			ServiceSecret: s.serviceKey.SecretBytes(),
			ServicePub:    s.serviceKey.PubKeyHex(),
			Relays:        s.relays,
			Email:         s.Email,
			Log:           store.DeliveryLogReader{R: tx},
		}
		for _, h := range contacts {
			report := deliverer.DeliverToHeir(context.Background(), h, backupDoc["document"])
			reports = append(reports, report)
			for _, ch := range report.Delivered {
				if _, err := tx.AppendDeliveryLog(store.DeliveryLogEntry{
					Fingerprint: h.Fingerprint,
					Channel:     ch,
					Level:       notify.LevelCritical,
					Success:     true,
					At:          time.Now(),
				}); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return fail(err)
	}
	return ok(reports)
}

// PresignedAdd generates a new pre-signed chain. buildNext must be
// supplied by the caller since producing each unsigned PSBT requires the
// owner's signature out-of-band between links (spec §4.H: the caller
// signs each entry before the next is built).
func (d *Dispatcher) PresignedAdd(cmd *PresignedAddCmd, buildNext func(prev *checkin.Psbt, seq int) (*checkin.Psbt, error)) Result {
	s := d.Session
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, err := s.stack.GenerateChain(cmd.Depth, buildNext)
	if err != nil {
		return fail(err)
	}
	return ok(entries)
}

// PresignedGenerateChain is an alias of PresignedAdd (spec §6.6 lists both
// names).
func (d *Dispatcher) PresignedGenerateChain(cmd *PresignedGenerateChainCmd, buildNext func(prev *checkin.Psbt, seq int) (*checkin.Psbt, error)) Result {
	return d.PresignedAdd(&PresignedAddCmd{Depth: cmd.Depth}, buildNext)
}

// PresignedList returns every pre-signed entry regardless of state.
func (d *Dispatcher) PresignedList(_ *PresignedListCmd) Result {
	return ok(d.Session.stack.Entries())
}

// PresignedInvalidate marks every active pre-signed entry invalidated.
func (d *Dispatcher) PresignedInvalidate(_ *PresignedInvalidateCmd) Result {
	d.Session.stack.InvalidateAll(time.Now())
	return ok(nil)
}

// PresignedClear removes every pre-signed entry regardless of state.
func (d *Dispatcher) PresignedClear(_ *PresignedClearCmd) Result {
	d.Session.stack.Clear()
	return ok(nil)
}

// PresignedAutoBroadcast selects and broadcasts the lowest-index active
// entry matching the current inheritance UTXO.
func (d *Dispatcher) PresignedAutoBroadcast(_ *PresignedAutoBroadcastCmd) Result {
	s := d.Session
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeUtxo == nil {
		return fail(errs.New(errs.NoActiveUtxo, "call refresh_status first"))
	}
	entry, err := s.stack.AutoBroadcast(s.activeUtxo.Outpoint, func(p *checkin.Psbt) error {
		if len(p.FinalWitness) == 0 {
			return errs.New(errs.OutputMismatch, "pre-signed entry has no final witness")
		}
		_, err := s.Indexer.Broadcast(context.Background(), encodePsbtForBroadcast(p))
		return err
	}, time.Now())
	if err != nil {
		return fail(err)
	}
	return ok(entry)
}

// GetSpendEvents returns every persisted spend classification.
func (d *Dispatcher) GetSpendEvents(_ *GetSpendEventsCmd) Result {
	s := d.Session
	var events []store.SpendEvent
	err := s.Store.View(func(r store.Reader) error {
		var err error
		events, err = store.ListSpendEvents(r)
		return err
	})
	if err != nil {
		return fail(err)
	}
	return ok(events)
}

func (d *Dispatcher) heirContacts() ([]notify.HeirContact, error) {
	s := d.Session
	var heirs []store.Heir
	if err := s.Store.View(func(r store.Reader) error {
		var err error
		heirs, err = store.ListHeirs(r)
		return err
	}); err != nil {
		return nil, err
	}
	contacts := make([]notify.HeirContact, 0, len(heirs))
	for _, h := range heirs {
		c := notify.HeirContact{Fingerprint: h.Fingerprint, Email: h.Email, HasEmail: h.Email != ""}
		if h.Npub != "" {
			if raw, err := nostrkey.ParseNpub(h.Npub); err == nil {
				c.Npub = raw
				c.HasNostr = true
			}
		}
		contacts = append(contacts, c)
	}
	return contacts, nil
}

func shortestHeirTimelock(d *policy.Descriptor) uint32 {
	if len(d.Heirs) == 0 {
		return 0
	}
	min := d.Heirs[0].TimelockBlocks
	for _, h := range d.Heirs[1:] {
		if h.TimelockBlocks < min {
			min = h.TimelockBlocks
		}
	}
	return min
}

// watchedScriptPubKey computes the P2WSH scriptPubKey the indexer should be
// watching for d at the receive-branch index the last check-in cycle left
// active. Deriving it needs no private key material -- every descriptor key
// is already public -- so this works whether or not the wallet is currently
// unlocked.
func watchedScriptPubKey(d *policy.Descriptor, index uint32) ([]byte, error) {
	ownerAccount, err := hdkeychain.NewKeyFromString(d.OwnerXpub)
	if err != nil {
		return nil, errs.Wrap(errs.InvalidXpub, "parsing owner account xpub", err)
	}
	heirAccounts, err := heirAccountKeys(d)
	if err != nil {
		return nil, err
	}
	witnessScript, err := policy.BuildWitnessScript(d, true, index, ownerAccount, heirAccounts)
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(witnessScript)
	return append([]byte{0x00, 0x20}, sum[:]...), nil
}

func heirAccountKeys(d *policy.Descriptor) ([]*hdkeychain.ExtendedKey, error) {
	keys := make([]*hdkeychain.ExtendedKey, 0, len(d.Heirs))
	for _, h := range d.Heirs {
		k, err := hdkeychain.NewKeyFromString(h.Xpub)
		if err != nil {
			return nil, errs.Wrap(errs.InvalidXpub, "parsing heir xpub", err).WithItem(h.Label)
		}
		keys = append(keys, k)
	}
	return keys, nil
}

func errIsKind(err error, kind errs.Kind) bool {
	e, ok := err.(*errs.Error)
	return ok && e.Kind == kind
}

func hexFingerprint(fp [4]byte) string {
	const hexdigits = "0123456789abcdef"
	out := make([]byte, 8)
	for i, b := range fp {
		out[i*2] = hexdigits[b>>4]
		out[i*2+1] = hexdigits[b&0x0f]
	}
	return string(out)
}

func hexEncode(b []byte) string {
	const hexdigits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = hexdigits[c>>4]
		out[i*2+1] = hexdigits[c&0x0f]
	}
	return string(out)
}

func nostrkeyFromSecret(secret [32]byte) *nostrkey.KeyPair {
	return nostrkey.FromSecretBytes(secret)
}

// encodePsbtForBroadcast is a placeholder for the wire-serialization step
// a full BIP-174 PSBT library would provide; NoString's minimal Psbt
// container intentionally stops short of that (spec §4.E: "not the full
// BIP-174 standard"), so the shell is expected to supply raw transaction
// bytes alongside FinalWitness in a real deployment. Kept here as the
// single call site that would need replacing.
func encodePsbtForBroadcast(p *checkin.Psbt) []byte {
	return nil
}
