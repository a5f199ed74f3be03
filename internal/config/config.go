// Copyright (c) 2024 The NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package config parses NoString's command-line/INI configuration into a
// single typed struct, following the same jessevdk/go-flags
// option-struct-with-struct-tags idiom as dcrd's config.go. Every option is
// a typed field; there is no stringly-typed dispatch anywhere downstream of
// Load.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	flags "github.com/jessevdk/go-flags"

	"github.com/RenAndKiwi/nostring/chaincfg"
	"github.com/RenAndKiwi/nostring/notify"
)

// Network is the Bitcoin network NoString watches; reuses chaincfg's own
// closed enum rather than inventing a parallel one, so a config value and
// the Params it selects can never drift apart.
type Network = chaincfg.Network

const (
	defaultConfigFilename = "nostring.conf"
	defaultDataDirname    = "data"
	defaultLogDirname     = "logs"
	defaultLogFilename    = "nostring.log"
	defaultNetwork        = chaincfg.Mainnet
	defaultPollInterval   = 6 * time.Hour
	defaultMaxStackDepth  = 12
	defaultFeeRateSatVB   = 2.0
)

// Config is the full set of options NoString accepts, covering network
// selection, electrum transport, poll interval, notification
// thresholds/channels/cooldown, fee policy, and the app data directory
// (spec's AMBIENT STACK "Configuration" section).
type Config struct {
	ShowVersion bool   `short:"V" long:"version" description:"Display version information and exit"`
	ConfigFile  string `short:"C" long:"configfile" description:"Path to configuration file"`
	AppDataDir  string `short:"A" long:"appdata" description:"Application data directory"`
	LogDir      string `long:"logdir" description:"Directory to log output"`
	NoFileLog   bool   `long:"nofilelog" description:"Disable logging to a file"`
	DebugLevel  string `short:"d" long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical, off} -- a single level applies to every subsystem; per-subsystem overrides are not accepted"`

	Network Network `long:"network" description:"Bitcoin network to watch {bitcoin, testnet, signet, regtest}"`

	ElectrumAddr string `long:"electrumaddr" description:"host:port of the Electrum-protocol indexer to connect to"`
	ElectrumCA   string `long:"electrumca" description:"Path to a PEM CA certificate the indexer's TLS certificate must chain to"`

	PollInterval time.Duration `long:"pollinterval" description:"Interval between coordinator polling cycles"`

	ReminderDays            uint32 `long:"reminderdays" description:"Days before the deadline to send the first owner reminder"`
	WarningDays             uint32 `long:"warningdays" description:"Days before the deadline to escalate to warning"`
	UrgentDays              uint32 `long:"urgentdays" description:"Days before the deadline to escalate to urgent"`
	CriticalBlocksRemaining uint32 `long:"criticalblocks" description:"Blocks remaining before the deadline at which heir delivery fires"`

	NostrRelays []string `long:"nostrrelay" description:"Nostr relay URL to publish to (may be given multiple times)"`

	SMTPHost        string `long:"smtphost" description:"SMTP server hostname"`
	SMTPPort        int    `long:"smtpport" description:"SMTP server port"`
	SMTPUser        string `long:"smtpuser" description:"SMTP auth username"`
	SMTPPass        string `long:"smtppass" description:"SMTP auth password"`
	SMTPFrom        string `long:"smtpfrom" description:"From address for outgoing notification email"`
	SMTPImplicitTLS bool   `long:"smtpimplicittls" description:"Use implicit TLS (SMTPS) instead of STARTTLS"`

	FeeRateSatVB float64 `long:"feerate" description:"Fee rate in sat/vB used to build check-in PSBTs"`
	MaxStackDepth int    `long:"maxstackdepth" description:"Maximum depth of the pre-signed check-in stack; validated to (0, 12], while the stack itself always caps at presigned.MaxStackDepth (12)"`

	dataDir string
}

// NormalizedConfig is the result of Load: a Config plus derived,
// already-validated fields (resolved directories, an EmailConfig, a
// notify.Thresholds) ready for the rest of the program to consume.
type NormalizedConfig struct {
	Config
	DataDir    string
	LogDir     string
	LogFile    string
	Thresholds notify.Thresholds
	Email      notify.EmailConfig
}

func defaultConfig() Config {
	return Config{
		ConfigFile:              defaultConfigFilename,
		Network:                 defaultNetwork,
		PollInterval:            defaultPollInterval,
		ReminderDays:            30,
		WarningDays:             7,
		UrgentDays:              1,
		CriticalBlocksRemaining: 144,
		FeeRateSatVB:            defaultFeeRateSatVB,
		MaxStackDepth:           defaultMaxStackDepth,
		DebugLevel:              "info",
	}
}

// Load parses args (typically os.Args[1:]) against the default config plus
// any config file, and returns a normalized, validated configuration.
func Load(args []string) (*NormalizedConfig, error) {
	cfg := defaultConfig()
	parser := flags.NewParser(&cfg, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}

	if cfg.AppDataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		cfg.AppDataDir = filepath.Join(home, ".nostring")
	}
	if _, ok := chaincfg.ByName(cfg.Network); !ok {
		return nil, fmt.Errorf("unknown network %q", cfg.Network)
	}
	if cfg.MaxStackDepth <= 0 || cfg.MaxStackDepth > 12 {
		return nil, fmt.Errorf("maxstackdepth must be in (0, 12], got %d", cfg.MaxStackDepth)
	}
	if cfg.FeeRateSatVB <= 0 {
		return nil, fmt.Errorf("feerate must be positive, got %v", cfg.FeeRateSatVB)
	}

	dataDir := filepath.Join(cfg.AppDataDir, string(cfg.Network), defaultDataDirname)
	logDir := cfg.LogDir
	if logDir == "" {
		logDir = filepath.Join(cfg.AppDataDir, string(cfg.Network), defaultLogDirname)
	}
	for _, dir := range []string{dataDir, logDir} {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	return &NormalizedConfig{
		Config:  cfg,
		DataDir: dataDir,
		LogDir:  logDir,
		LogFile: filepath.Join(logDir, defaultLogFilename),
		Thresholds: notify.Thresholds{
			ReminderDays:            int(cfg.ReminderDays),
			WarningDays:             int(cfg.WarningDays),
			UrgentDays:              int(cfg.UrgentDays),
			CriticalBlocksRemaining: cfg.CriticalBlocksRemaining,
		},
		Email: notify.EmailConfig{
			Host:        cfg.SMTPHost,
			Port:        cfg.SMTPPort,
			User:        cfg.SMTPUser,
			Pass:        cfg.SMTPPass,
			From:        cfg.SMTPFrom,
			ImplicitTLS: cfg.SMTPImplicitTLS,
		},
	}, nil
}
