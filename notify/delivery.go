// Copyright (c) 2024 The NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package notify

import (
	"context"
	"time"
)

// HeirContact is the subset of a heir's configuration delivery needs:
// which channels are configured and where to reach them.
type HeirContact struct {
	Fingerprint [4]byte
	Npub        [32]byte
	HasNostr    bool
	Email       string
	HasEmail    bool
}

// DeliveryReport is the outcome of one heir-delivery attempt, grouped by
// channel (spec §4.G: "return a report {delivered[], skipped[], failed[]}").
type DeliveryReport struct {
	Delivered []Channel
	Skipped   []Channel
	Failed    []Channel
}

// Deliverer bundles the transport configuration heir/owner delivery needs.
type Deliverer struct {
	ServiceSecret [32]byte
	ServicePub    [32]byte
	Relays        []string
	Email         EmailConfig
	Log           DeliveryLog
	Now           func() time.Time
}

// SendOwnerReminder delivers a reminder to the owner over every configured
// channel, rate-limited per channel per level (spec §4.G "owner
// reminders"). A missing channel is a warning the caller should surface,
// not a failure; this function simply skips channels with no contact
// info.
func (d *Deliverer) SendOwnerReminder(ctx context.Context, ownerFingerprint [4]byte, ownerNpub *[32]byte, ownerEmail string, level Level, body string) DeliveryReport {
	now := d.now()
	var report DeliveryReport

	if ownerNpub != nil {
		if WithinCooldown(d.Log, ownerFingerprint, ChannelNostr, level, ReminderRateLimit, now) {
			report.Skipped = append(report.Skipped, ChannelNostr)
		} else if _, err := SendDM(ctx, d.ServiceSecret, d.ServicePub, *ownerNpub, body, d.Relays, now); err != nil {
			report.Failed = append(report.Failed, ChannelNostr)
		} else {
			report.Delivered = append(report.Delivered, ChannelNostr)
		}
	}

	if ownerEmail != "" {
		if WithinCooldown(d.Log, ownerFingerprint, ChannelEmail, level, ReminderRateLimit, now) {
			report.Skipped = append(report.Skipped, ChannelEmail)
		} else if err := SendEmail(d.Email, ownerEmail, subjectForLevel(level), body); err != nil {
			report.Failed = append(report.Failed, ChannelEmail)
		} else {
			report.Delivered = append(report.Delivered, ChannelEmail)
		}
	}

	return report
}

// DeliverToHeir sends the descriptor backup to one heir over every channel
// they have configured, honoring the delivery cooldown (spec §4.G "heir
// delivery").
func (d *Deliverer) DeliverToHeir(ctx context.Context, h HeirContact, backupDocument string) DeliveryReport {
	now := d.now()
	var report DeliveryReport

	if h.HasNostr {
		if WithinCooldown(d.Log, h.Fingerprint, ChannelNostr, LevelCritical, DeliveryCooldown, now) {
			report.Skipped = append(report.Skipped, ChannelNostr)
		} else if _, err := SendDM(ctx, d.ServiceSecret, d.ServicePub, h.Npub, backupDocument, d.Relays, now); err != nil {
			report.Failed = append(report.Failed, ChannelNostr)
		} else {
			report.Delivered = append(report.Delivered, ChannelNostr)
		}
	}

	if h.HasEmail {
		if WithinCooldown(d.Log, h.Fingerprint, ChannelEmail, LevelCritical, DeliveryCooldown, now) {
			report.Skipped = append(report.Skipped, ChannelEmail)
		} else if err := SendEmail(d.Email, h.Email, "NoString inheritance backup", backupDocument); err != nil {
			report.Failed = append(report.Failed, ChannelEmail)
		} else {
			report.Delivered = append(report.Delivered, ChannelEmail)
		}
	}

	return report
}

func (d *Deliverer) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func subjectForLevel(level Level) string {
	switch level {
	case LevelCritical:
		return "NoString: critical - act now"
	case LevelUrgent:
		return "NoString: urgent check-in reminder"
	case LevelWarning:
		return "NoString: check-in warning"
	default:
		return "NoString: check-in reminder"
	}
}
