// Copyright (c) 2024 The NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package notify implements the notification and delivery engine (spec
// §4.G): the threshold ladder, owner reminders, heir critical delivery
// with cooldown, and locked-share relay redundancy.
package notify

// Channel is a closed enumeration of delivery channels (spec §9: "sum
// types for classification... unknown variants are errors, never silent
// defaults").
type Channel int

const (
	ChannelNostr Channel = iota
	ChannelEmail
)

func (c Channel) String() string {
	switch c {
	case ChannelNostr:
		return "nostr"
	case ChannelEmail:
		return "email"
	default:
		return "unknown"
	}
}

// Level is the notification urgency ladder (spec §4.G): severity rises as
// days_remaining falls.
type Level int

const (
	LevelOK Level = iota
	LevelReminder
	LevelWarning
	LevelUrgent
	LevelCritical
)

func (l Level) String() string {
	switch l {
	case LevelOK:
		return "ok"
	case LevelReminder:
		return "reminder"
	case LevelWarning:
		return "warning"
	case LevelUrgent:
		return "urgent"
	case LevelCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Thresholds holds the configurable day/block boundaries for each level
// (spec §9 "dynamic config": an enumerated struct, no stringly-typed
// dispatch).
type Thresholds struct {
	ReminderDays int
	WarningDays  int
	UrgentDays   int
	CriticalBlocksRemaining uint32
}

// DefaultThresholds matches spec §4.G's defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ReminderDays:            30,
		WarningDays:             7,
		UrgentDays:              1,
		CriticalBlocksRemaining: 144,
	}
}

// ClassifyLevel computes the highest matching level for a policy's
// remaining runway, given in both blocks and the approximate day
// equivalent (spec §4.G: "a check emits at most one level per cycle, the
// highest matching").
func ClassifyLevel(t Thresholds, blocksRemaining uint32, daysRemaining float64) Level {
	if blocksRemaining <= t.CriticalBlocksRemaining || daysRemaining <= 0 {
		return LevelCritical
	}
	switch {
	case daysRemaining <= float64(t.UrgentDays):
		return LevelUrgent
	case daysRemaining <= float64(t.WarningDays):
		return LevelWarning
	case daysRemaining <= float64(t.ReminderDays):
		return LevelReminder
	default:
		return LevelOK
	}
}
