// Copyright (c) 2024 The NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package errs defines the closed error taxonomy shared by every NoString
// subsystem. Modeled on the hdkeychain/txscript convention of an ErrorKind
// enum paired with an Error wrapper that supports errors.Is/As.
package errs

import "fmt"

// Kind identifies a class of error as described in spec §7.
type Kind string

// Input errors: reject at the boundary, never partial state.
const (
	InvalidMnemonic     Kind = "invalid_mnemonic"
	InvalidXpub         Kind = "invalid_xpub"
	InvalidShare        Kind = "invalid_share"
	ThresholdTooLow     Kind = "threshold_too_low"
	TimelockOutOfRange  Kind = "timelock_out_of_range"
)

// Cryptographic errors: surfaced exactly, no side channel between causes.
const (
	BadPassword         Kind = "bad_password"
	AuthenticationFailed Kind = "authentication_failed"
	InsufficientShares  Kind = "insufficient_shares"
	InconsistentShares  Kind = "inconsistent_shares"
)

// Policy errors: surfaced with the offending item.
const (
	DuplicateKey            Kind = "duplicate_key"
	NonMonotonicTimelocks   Kind = "non_monotonic_timelocks"
	DescriptorCompileError  Kind = "descriptor_compile_error"
)

// State errors: returned unchanged to the caller.
const (
	NotUnlocked    Kind = "not_unlocked"
	NoActiveUtxo   Kind = "no_active_utxo"
	NoDescriptor   Kind = "no_descriptor"
	StaleStack     Kind = "stale_stack"
	OutputMismatch Kind = "output_mismatch"
	FeeTooHigh     Kind = "fee_too_high"
)

// Transport errors: retried at the cycle boundary, never inside a user
// command.
const (
	IndexerUnavailable Kind = "indexer_unavailable"
	RelayTimeout       Kind = "relay_timeout"
	SmtpError          Kind = "smtp_error"
)

// Fatal errors: abort with a clear diagnostic, no recovery attempted.
const (
	StoreCorruption      Kind = "store_corruption"
	MigrationFailed      Kind = "migration_failed"
	CryptoProviderMissing Kind = "crypto_provider_missing"
)

// Error is the concrete error type returned by every NoString package. Item
// carries the offending value (a fingerprint, a share index, a field name)
// without ever carrying key material, ciphertext, or a raw descriptor.
type Error struct {
	Kind  Kind
	Msg   string
	Item  string
	Wrapped error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch {
	case e.Item != "" && e.Wrapped != nil:
		return fmt.Sprintf("%s: %s (%s): %v", e.Kind, e.Msg, e.Item, e.Wrapped)
	case e.Item != "":
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Msg, e.Item)
	case e.Wrapped != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Wrapped)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
}

// Unwrap supports errors.Is/errors.As against the wrapped cause.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Wrapped
}

// Is reports whether target is an *Error with the same Kind. This is what
// lets callers write errors.Is(err, errs.New(errs.BadPassword, "")) style
// checks without caring about Msg/Item/Wrapped.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e != nil && t != nil && e.Kind == t.Kind
}

// New builds an *Error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// WithItem attaches the offending item name to an error.
func (e *Error) WithItem(item string) *Error {
	return &Error{Kind: e.Kind, Msg: e.Msg, Item: item, Wrapped: e.Wrapped}
}

// Wrap builds an *Error of the given kind around a lower-level cause.
func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Wrapped: cause}
}
