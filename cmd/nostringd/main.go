// Copyright (c) 2024 The NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Command nostringd is NoString's daemon: it loads configuration, opens the
// durable store, dials the configured Electrum-protocol indexer, and runs
// the orchestrator's poll-and-notify cycle on a fixed interval until
// interrupted. It exposes no network listener of its own -- every
// operation a caller needs is reached through internal/procsurface by an
// embedding shell, not this binary; nostringd only keeps the periodic
// check_and_notify cycle running unattended (spec §4.J).
package main

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RenAndKiwi/nostring/chaincfg"
	"github.com/RenAndKiwi/nostring/indexer"
	"github.com/RenAndKiwi/nostring/internal/config"
	"github.com/RenAndKiwi/nostring/internal/limits"
	"github.com/RenAndKiwi/nostring/internal/log"
	"github.com/RenAndKiwi/nostring/internal/procsurface"
	"github.com/RenAndKiwi/nostring/store"
)

var logger = log.Logger(log.SubsystemOrch)

func main() {
	if err := mainCore(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// mainCore is the bulk of main, split out so deferred cleanups run before
// os.Exit, mirroring the teacher's main/mainCore split in dcrd.go.
func mainCore() error {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if !cfg.NoFileLog {
		if err := log.InitLogRotator(cfg.LogFile, 10); err != nil {
			return fmt.Errorf("init log rotator: %w", err)
		}
	}
	defer log.Close()
	if err := log.SetLogLevels(cfg.DebugLevel); err != nil {
		return fmt.Errorf("set log level: %w", err)
	}

	if err := limits.InitCryptoProvider(); err != nil {
		return fmt.Errorf("init crypto provider: %w", err)
	}
	if err := limits.SetLimits(); err != nil {
		return fmt.Errorf("set process limits: %w", err)
	}

	networkParams, ok := chaincfg.ByName(cfg.Network)
	if !ok {
		return fmt.Errorf("unknown network %q", cfg.Network)
	}

	db, err := store.Open(cfg.DataDir + "/nostring.db")
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	tlsConfig, err := electrumTLSConfig(cfg.ElectrumCA)
	if err != nil {
		return fmt.Errorf("build electrum TLS config: %w", err)
	}
	idx, err := indexer.NewElectrumClient(cfg.ElectrumAddr, tlsConfig)
	if err != nil {
		return fmt.Errorf("connect to indexer: %w", err)
	}
	defer idx.Close()

	sess := procsurface.NewSession(db, idx, networkParams, cfg.FeeRateSatVB)
	sess.Email = cfg.Email
	d := procsurface.NewDispatcher(sess)
	d.ConfigureNotifications(procsurface.NewConfigureNotificationsCmd(
		cfg.Thresholds.ReminderDays, cfg.Thresholds.WarningDays, cfg.Thresholds.UrgentDays,
		cfg.Thresholds.CriticalBlocksRemaining, cfg.NostrRelays, "", "",
	))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	runPollLoop(ctx, d, cfg.PollInterval)
	return nil
}

// runPollLoop runs one check_and_notify cycle immediately, then every
// interval, until ctx is cancelled (spec §4.J: "runs on a fixed interval").
func runPollLoop(ctx context.Context, d *procsurface.Dispatcher, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	runCycle(d)
	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return
		case <-ticker.C:
			runCycle(d)
		}
	}
}

func runCycle(d *procsurface.Dispatcher) {
	res := d.CheckAndNotify(procsurface.NewCheckAndNotifyCmd())
	if !res.Success {
		logger.Errorf("check_and_notify cycle failed: kind=%s msg=%s", res.Error.Kind, res.Error.Msg)
		return
	}
	logger.Debug("check_and_notify cycle completed")
}

func electrumTLSConfig(caPath string) (*tls.Config, error) {
	if caPath == "" {
		return nil, nil
	}
	pemBytes, err := os.ReadFile(caPath)
	if err != nil {
		return nil, fmt.Errorf("read CA file: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pemBytes) {
		return nil, fmt.Errorf("no certificates found in %s", caPath)
	}
	return &tls.Config{RootCAs: pool}, nil
}
