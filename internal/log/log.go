// Copyright (c) 2024 The NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package log provides NoString's subsystem loggers. It follows the same
// pattern as dcrd's log.go: a single backend fans out to stdout and a
// rotating log file, and every subsystem gets its own independently
// levelled slog.Logger registered in subsystemLoggers.
//
// No logger call in this codebase is ever passed a mnemonic, xprv, nsec,
// share, password, or ciphertext. That isn't enforced by this package --
// it's enforced by never giving those types a String/Format method, so a
// stray %v can't leak one even by accident.
package log

import (
	"fmt"
	"io"
	"os"

	"github.com/decred/slog"
	"github.com/jrick/logrotate/rotator"
)

// Subsystem tags, one per package that logs (spec's AMBIENT STACK list).
const (
	SubsystemSeed = "SEED" // seed, hdkeychain, shamir, shamir/codex32, shamir/slip39
	SubsystemPoly = "POLY" // policy
	SubsystemCkin = "CKIN" // checkin, presigned
	SubsystemSham = "SHAM" // nostrkey
	SubsystemWtch = "WTCH" // indexer
	SubsystemStor = "STOR" // store
	SubsystemOrch = "ORCH" // orchestrator, notify, internal/procsurface
)

var subsystems = []string{
	SubsystemSeed,
	SubsystemPoly,
	SubsystemCkin,
	SubsystemSham,
	SubsystemWtch,
	SubsystemStor,
	SubsystemOrch,
}

var (
	backendLog   *slog.Backend
	logRotator   *rotator.Rotator
	loggers      = make(map[string]slog.Logger, len(subsystems))
)

func init() {
	backendLog = slog.NewBackend(os.Stdout)
	for _, tag := range subsystems {
		l := backendLog.Logger(tag)
		l.SetLevel(slog.LevelInfo)
		loggers[tag] = l
	}
}

// InitLogRotator creates a rotating log file at logFile (parent directories
// must already exist) and tees every subsystem logger's output to it in
// addition to stdout, mirroring dcrd's initLogRotator.
func InitLogRotator(logFile string, maxRolls int) error {
	r, err := rotator.New(logFile, 10*1024, false, maxRolls)
	if err != nil {
		return fmt.Errorf("failed to create log rotator: %w", err)
	}
	logRotator = r
	backendLog = slog.NewBackend(io.MultiWriter(os.Stdout, r))
	for _, tag := range subsystems {
		level := loggers[tag].Level()
		l := backendLog.Logger(tag)
		l.SetLevel(level)
		loggers[tag] = l
	}
	return nil
}

// Logger returns the logger for tag, or a disabled logger if tag is not a
// registered subsystem.
func Logger(tag string) slog.Logger {
	if l, ok := loggers[tag]; ok {
		return l
	}
	return slog.Disabled
}

// SetLogLevels sets every subsystem's logger to level, given as a string
// slog.Level understands ("trace", "debug", "info", "warn", "error",
// "critical", "off").
func SetLogLevels(levelStr string) error {
	level, ok := slog.LevelFromString(levelStr)
	if !ok {
		return fmt.Errorf("unknown log level %q", levelStr)
	}
	for _, tag := range subsystems {
		loggers[tag].SetLevel(level)
	}
	return nil
}

// SetLogLevel sets a single subsystem's level.
func SetLogLevel(subsystem, levelStr string) error {
	if _, ok := loggers[subsystem]; !ok {
		return fmt.Errorf("unknown subsystem %q", subsystem)
	}
	level, ok := slog.LevelFromString(levelStr)
	if !ok {
		return fmt.Errorf("unknown log level %q", levelStr)
	}
	loggers[subsystem].SetLevel(level)
	return nil
}

// Close flushes and closes the rotating log file, if one was initialized.
func Close() {
	if logRotator != nil {
		logRotator.Close()
	}
}
