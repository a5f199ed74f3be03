// Copyright (c) 2024 The NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package policy

import (
	"fmt"
	"strings"

	"github.com/RenAndKiwi/nostring/chaincfg"
)

// LockedShare is one locked Shamir share of Nostr identity material included
// in the backup's optional "Locked Shares" section (spec §6.1).
type LockedShare struct {
	Index  int
	Codex32 string
}

// BackupInput collects everything BuildBackup needs beyond the compiled
// Descriptor: the fields that appear in the human-readable document but
// aren't part of the descriptor string itself.
type BackupInput struct {
	Network              chaincfg.Network
	TimelockBlocks        uint32
	InheritanceAddress    string
	OwnerNpub             string // empty if Nostr identity inheritance isn't configured
	LockedShares          []LockedShare
	RecoveryInstructions  string
	GeneratedAtISO8601    string
}

// BuildBackup renders the descriptor backup document (spec §6.1). Two calls
// with the same Descriptor and BackupInput (other than GeneratedAtISO8601)
// produce byte-identical output, per the spec's invariant.
func BuildBackup(d *Descriptor, in BackupInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# NoString Descriptor Backup\n")
	fmt.Fprintf(&b, "# Generated: %s\n\n", in.GeneratedAtISO8601)

	fmt.Fprintf(&b, "## Descriptor\n%s\n\n", d.Full)

	fmt.Fprintf(&b, "## Details\n")
	fmt.Fprintf(&b, "Network: %s\n", in.Network)
	fmt.Fprintf(&b, "Timelock: %d blocks\n", in.TimelockBlocks)
	fmt.Fprintf(&b, "Inheritance Address: %s\n\n", in.InheritanceAddress)

	fmt.Fprintf(&b, "## Heirs\n")
	for _, h := range d.Heirs {
		months := blocksToApproxMonths(h.TimelockBlocks)
		fmt.Fprintf(&b, "- %s: %s (%d months)\n", h.Label, h.Xpub, months)
	}
	b.WriteString("\n")

	if in.OwnerNpub != "" {
		fmt.Fprintf(&b, "## Nostr Identity Inheritance\n")
		fmt.Fprintf(&b, "Owner npub: %s\n", in.OwnerNpub)
		if len(in.LockedShares) > 0 {
			fmt.Fprintf(&b, "### Locked Shares\n")
			for _, s := range in.LockedShares {
				fmt.Fprintf(&b, "Share %d: %s\n", s.Index, s.Codex32)
			}
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "## Recovery Instructions\n%s\n", in.RecoveryInstructions)
	return b.String()
}

// blocksToApproxMonths converts a block-based timelock to an approximate
// month count, assuming Bitcoin's ~10 minute block target (spec §6.1 shows
// months alongside the descriptor's own block-based timelock).
func blocksToApproxMonths(blocks uint32) uint32 {
	const blocksPerMonth = 6 * 24 * 30 // 6 blocks/hour * 24h * 30d
	return (blocks + blocksPerMonth/2) / blocksPerMonth
}
