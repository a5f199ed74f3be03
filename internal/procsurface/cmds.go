// Copyright (c) 2024 The NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package procsurface

import "github.com/RenAndKiwi/nostring/shamir"

// HasWalletCmd defines the has_wallet process-surface command.
type HasWalletCmd struct{}

// NewHasWalletCmd returns a new instance which can be used to issue a
// has_wallet command.
func NewHasWalletCmd() *HasWalletCmd { return &HasWalletCmd{} }

// CreateSeedCmd defines the create_seed process-surface command.
type CreateSeedCmd struct {
	WordCount int
}

// NewCreateSeedCmd returns a new instance which can be used to issue a
// create_seed command.
func NewCreateSeedCmd(wordCount int) *CreateSeedCmd {
	return &CreateSeedCmd{WordCount: wordCount}
}

// ImportSeedCmd defines the import_seed process-surface command.
type ImportSeedCmd struct {
	Mnemonic string
	Password string
}

// NewImportSeedCmd returns a new instance which can be used to issue an
// import_seed command.
func NewImportSeedCmd(mnemonic, password string) *ImportSeedCmd {
	return &ImportSeedCmd{Mnemonic: mnemonic, Password: password}
}

// ImportWatchOnlyCmd defines the import_watch_only process-surface
// command.
type ImportWatchOnlyCmd struct {
	Xpub     string
	Password string
}

// NewImportWatchOnlyCmd returns a new instance which can be used to issue
// an import_watch_only command.
func NewImportWatchOnlyCmd(xpub, password string) *ImportWatchOnlyCmd {
	return &ImportWatchOnlyCmd{Xpub: xpub, Password: password}
}

// UnlockCmd defines the unlock process-surface command.
type UnlockCmd struct {
	Password string
}

// NewUnlockCmd returns a new instance which can be used to issue an
// unlock command.
func NewUnlockCmd(password string) *UnlockCmd { return &UnlockCmd{Password: password} }

// LockCmd defines the lock process-surface command.
type LockCmd struct{}

// NewLockCmd returns a new instance which can be used to issue a lock
// command.
func NewLockCmd() *LockCmd { return &LockCmd{} }

// AddHeirCmd defines the add_heir process-surface command.
type AddHeirCmd struct {
	Label          string
	Xpub           string
	DerivationPath string
	TimelockBlocks uint32
	Npub           string
	Email          string
}

// NewAddHeirCmd returns a new instance which can be used to issue an
// add_heir command.
func NewAddHeirCmd(label, xpub, derivationPath string, timelockBlocks uint32, npub, email string) *AddHeirCmd {
	return &AddHeirCmd{
		Label:          label,
		Xpub:           xpub,
		DerivationPath: derivationPath,
		TimelockBlocks: timelockBlocks,
		Npub:           npub,
		Email:          email,
	}
}

// ListHeirsCmd defines the list_heirs process-surface command.
type ListHeirsCmd struct{}

// NewListHeirsCmd returns a new instance which can be used to issue a
// list_heirs command.
func NewListHeirsCmd() *ListHeirsCmd { return &ListHeirsCmd{} }

// RemoveHeirCmd defines the remove_heir process-surface command.
type RemoveHeirCmd struct {
	Fingerprint [4]byte
}

// NewRemoveHeirCmd returns a new instance which can be used to issue a
// remove_heir command.
func NewRemoveHeirCmd(fp [4]byte) *RemoveHeirCmd { return &RemoveHeirCmd{Fingerprint: fp} }

// RefreshStatusCmd defines the refresh_status process-surface command.
type RefreshStatusCmd struct{}

// NewRefreshStatusCmd returns a new instance which can be used to issue a
// refresh_status command.
func NewRefreshStatusCmd() *RefreshStatusCmd { return &RefreshStatusCmd{} }

// BuildCheckinPsbtCmd defines the build_checkin_psbt process-surface
// command.
type BuildCheckinPsbtCmd struct{}

// NewBuildCheckinPsbtCmd returns a new instance which can be used to issue
// a build_checkin_psbt command.
func NewBuildCheckinPsbtCmd() *BuildCheckinPsbtCmd { return &BuildCheckinPsbtCmd{} }

// BroadcastSignedPsbtCmd defines the broadcast_signed_psbt process-surface
// command. FinalWitness is supplied already parsed from the wallet's
// signing step; NoString's process surface never parses arbitrary raw
// transaction bytes itself (spec §4.E operates on Psbt, not wire bytes).
type BroadcastSignedPsbtCmd struct {
	OutputAddress   string
	OutputAmountSat int64
	FinalWitness    [][]byte
}

// NewBroadcastSignedPsbtCmd returns a new instance which can be used to
// issue a broadcast_signed_psbt command.
func NewBroadcastSignedPsbtCmd(outputAddress string, outputAmountSat int64, finalWitness [][]byte) *BroadcastSignedPsbtCmd {
	return &BroadcastSignedPsbtCmd{OutputAddress: outputAddress, OutputAmountSat: outputAmountSat, FinalWitness: finalWitness}
}

// GenerateSharesCmd defines the generate_shares process-surface command.
type GenerateSharesCmd struct {
	Scheme     shamir.Scheme
	K, N       int
	Identifier string
	Secret     []byte
}

// NewGenerateSharesCmd returns a new instance which can be used to issue a
// generate_shares command.
func NewGenerateSharesCmd(scheme shamir.Scheme, k, n int, identifier string, secret []byte) *GenerateSharesCmd {
	return &GenerateSharesCmd{Scheme: scheme, K: k, N: n, Identifier: identifier, Secret: secret}
}

// CombineSharesCmd defines the combine_shares process-surface command.
type CombineSharesCmd struct {
	Shares []string // encoded Codex32/SLIP-39 strings; any other encoding is rejected
}

// NewCombineSharesCmd returns a new instance which can be used to issue a
// combine_shares command.
func NewCombineSharesCmd(shares []string) *CombineSharesCmd {
	return &CombineSharesCmd{Shares: shares}
}

// SplitNsecCmd defines the split_nsec process-surface command.
type SplitNsecCmd struct {
	Nsec string
	K, N int
}

// NewSplitNsecCmd returns a new instance which can be used to issue a
// split_nsec command.
func NewSplitNsecCmd(nsec string, k, n int) *SplitNsecCmd {
	return &SplitNsecCmd{Nsec: nsec, K: k, N: n}
}

// RecoverNsecCmd defines the recover_nsec process-surface command.
type RecoverNsecCmd struct {
	Shares []string // Codex32-encoded shares
}

// NewRecoverNsecCmd returns a new instance which can be used to issue a
// recover_nsec command.
func NewRecoverNsecCmd(shares []string) *RecoverNsecCmd { return &RecoverNsecCmd{Shares: shares} }

// ExportDescriptorBackupCmd defines the export_descriptor_backup
// process-surface command.
type ExportDescriptorBackupCmd struct {
	RecoveryInstructions string
}

// NewExportDescriptorBackupCmd returns a new instance which can be used to
// issue an export_descriptor_backup command.
func NewExportDescriptorBackupCmd(recoveryInstructions string) *ExportDescriptorBackupCmd {
	return &ExportDescriptorBackupCmd{RecoveryInstructions: recoveryInstructions}
}

// ConfigureNotificationsCmd defines the configure_notifications
// process-surface command.
type ConfigureNotificationsCmd struct {
	ReminderDays            int
	WarningDays             int
	UrgentDays              int
	CriticalBlocksRemaining uint32
	NostrRelays             []string
	OwnerNpub               string
	OwnerEmail              string
}

// NewConfigureNotificationsCmd returns a new instance which can be used to
// issue a configure_notifications command.
func NewConfigureNotificationsCmd(reminderDays, warningDays, urgentDays int, criticalBlocksRemaining uint32, relays []string, ownerNpub, ownerEmail string) *ConfigureNotificationsCmd {
	return &ConfigureNotificationsCmd{
		ReminderDays:            reminderDays,
		WarningDays:             warningDays,
		UrgentDays:              urgentDays,
		CriticalBlocksRemaining: criticalBlocksRemaining,
		NostrRelays:             relays,
		OwnerNpub:               ownerNpub,
		OwnerEmail:              ownerEmail,
	}
}

// CheckAndNotifyCmd defines the check_and_notify process-surface command:
// one orchestrator polling cycle (spec §4.J).
type CheckAndNotifyCmd struct{}

// NewCheckAndNotifyCmd returns a new instance which can be used to issue a
// check_and_notify command.
func NewCheckAndNotifyCmd() *CheckAndNotifyCmd { return &CheckAndNotifyCmd{} }

// DeliverToHeirsCmd defines the deliver_to_heirs process-surface command:
// an explicit, owner-triggered heir delivery outside the normal critical
// threshold (spec §6.6).
type DeliverToHeirsCmd struct{}

// NewDeliverToHeirsCmd returns a new instance which can be used to issue a
// deliver_to_heirs command.
func NewDeliverToHeirsCmd() *DeliverToHeirsCmd { return &DeliverToHeirsCmd{} }

// PresignedAddCmd defines the presigned_add process-surface command:
// generates and appends one new chain of pre-signed check-ins.
type PresignedAddCmd struct {
	Depth int
}

// NewPresignedAddCmd returns a new instance which can be used to issue a
// presigned_add command.
func NewPresignedAddCmd(depth int) *PresignedAddCmd { return &PresignedAddCmd{Depth: depth} }

// PresignedListCmd defines the presigned_list process-surface command.
type PresignedListCmd struct{}

// NewPresignedListCmd returns a new instance which can be used to issue a
// presigned_list command.
func NewPresignedListCmd() *PresignedListCmd { return &PresignedListCmd{} }

// PresignedInvalidateCmd defines the presigned_invalidate process-surface
// command.
type PresignedInvalidateCmd struct{}

// NewPresignedInvalidateCmd returns a new instance which can be used to
// issue a presigned_invalidate command.
func NewPresignedInvalidateCmd() *PresignedInvalidateCmd { return &PresignedInvalidateCmd{} }

// PresignedClearCmd defines the presigned_clear process-surface command.
type PresignedClearCmd struct{}

// NewPresignedClearCmd returns a new instance which can be used to issue a
// presigned_clear command.
func NewPresignedClearCmd() *PresignedClearCmd { return &PresignedClearCmd{} }

// PresignedAutoBroadcastCmd defines the presigned_auto_broadcast
// process-surface command.
type PresignedAutoBroadcastCmd struct{}

// NewPresignedAutoBroadcastCmd returns a new instance which can be used to
// issue a presigned_auto_broadcast command.
func NewPresignedAutoBroadcastCmd() *PresignedAutoBroadcastCmd { return &PresignedAutoBroadcastCmd{} }

// PresignedGenerateChainCmd defines the presigned_generate_chain
// process-surface command. It is an alias of PresignedAddCmd kept as a
// distinct type since spec §6.6 lists generate_chain as its own named
// operation alongside add.
type PresignedGenerateChainCmd struct {
	Depth int
}

// NewPresignedGenerateChainCmd returns a new instance which can be used to
// issue a presigned_generate_chain command.
func NewPresignedGenerateChainCmd(depth int) *PresignedGenerateChainCmd {
	return &PresignedGenerateChainCmd{Depth: depth}
}

// GetSpendEventsCmd defines the get_spend_events process-surface command.
type GetSpendEventsCmd struct{}

// NewGetSpendEventsCmd returns a new instance which can be used to issue a
// get_spend_events command.
func NewGetSpendEventsCmd() *GetSpendEventsCmd { return &GetSpendEventsCmd{} }
