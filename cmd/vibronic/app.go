package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aristath/vibronic/internal/config"
	"github.com/aristath/vibronic/internal/database"
	"github.com/aristath/vibronic/internal/modules/estimation"
	"github.com/aristath/vibronic/internal/modules/hamiltonian"
	"github.com/aristath/vibronic/internal/modules/norms"
	"github.com/aristath/vibronic/internal/modules/runs"
	"github.com/aristath/vibronic/pkg/logger"
	"github.com/rs/zerolog"
)

// app holds what every command needs, built once per invocation.
type app struct {
	cfg    *config.Config
	log    zerolog.Logger
	out    io.Writer
	source hamiltonian.Source
	ledger *database.DB
}

func newApp(ctx context.Context, opts *rootOptions, out, logOut io.Writer) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if opts.dataDir != "" {
		cfg.DataDir = opts.dataDir
	}
	if opts.ledger != "" {
		cfg.LedgerPath = opts.ledger
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty, Out: logOut})
	logger.SetGlobalLogger(log)

	a := &app{cfg: cfg, log: log, out: out}

	if cfg.S3.Enabled() {
		a.source, err = hamiltonian.NewS3Source(ctx, hamiltonian.S3Config{
			Bucket:          cfg.S3.Bucket,
			Prefix:          cfg.S3.Prefix,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
		}, log)
		if err != nil {
			return nil, err
		}
	} else {
		a.source = hamiltonian.NewFileSource(cfg.DataDir)
	}
	return a, nil
}

// loader returns a Hamiltonian loader over the configured source.
func (a *app) loader() *hamiltonian.Loader {
	return hamiltonian.NewLoader(a.source, a.log)
}

// normTable loads the norm CSV. A missing table is not fatal: estimates then
// need an explicit --norm.
func (a *app) normTable(ctx context.Context) (*norms.Table, error) {
	name := a.cfg.NormsFile
	if !a.cfg.S3.Enabled() {
		name = a.cfg.NormsPath()
	}

	rc, err := a.source.Open(ctx, name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			a.log.Warn().Str("path", a.source.Describe(name)).Msg("Norm table not found, only --norm overrides will work")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open norm table: %w", err)
	}
	defer rc.Close()

	return norms.Parse(rc, a.log.With().Str("component", "norms").Logger())
}

// openLedger opens and migrates the run ledger, or returns nil when none is configured.
func (a *app) openLedger() (*runs.Repository, error) {
	if a.cfg.LedgerPath == "" {
		return nil, nil
	}
	if a.ledger == nil {
		db, err := database.New(database.Config{
			Path:    a.cfg.LedgerPath,
			Profile: database.ProfileLedger,
			Name:    "ledger",
		})
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(); err != nil {
			_ = db.Close()
			return nil, err
		}
		a.ledger = db
	}
	return runs.NewRepository(a.ledger.Conn(), a.log), nil
}

// service wires the estimation service. record attaches the run ledger.
func (a *app) service(ctx context.Context, record bool) (*estimation.Service, error) {
	table, err := a.normTable(ctx)
	if err != nil {
		return nil, err
	}

	var recorder estimation.Recorder
	if record {
		repo, err := a.openLedger()
		if err != nil {
			return nil, err
		}
		if repo == nil {
			return nil, fmt.Errorf("--record needs a ledger: set VIBRONIC_LEDGER_PATH or --ledger")
		}
		recorder = repo
	}

	// A nil *norms.Table must not become a non-nil interface.
	var lookup estimation.NormLookup
	if table != nil {
		lookup = table
	}
	return estimation.NewService(a.loader(), lookup, recorder, a.log), nil
}

func (a *app) close() {
	if a.ledger != nil {
		if err := a.ledger.Close(); err != nil {
			a.log.Warn().Err(err).Msg("Failed to close ledger")
		}
	}
}
