// Package runs records completed estimates in the sqlite run ledger.
package runs

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aristath/vibronic/internal/database"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// runColumns is the list of columns for the runs table
// Column order must match scanRun() expectations
const runColumns = `id, molecule, scheme, mode_bits, coeff_bits, states, modes, time, req_error,
norm, steps, fragments, step_toffoli, total_toffoli, total_qubits, report, created_at`

// Repository handles run ledger operations
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new run repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "runs").Logger(),
	}
}

// Save inserts a run and its fragment rows, assigning an ID and timestamp when unset.
func (r *Repository) Save(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	if run.Report == nil {
		run.Report = []byte{}
	}
	run.FragmentCount = len(run.Fragments)

	err := database.WithTransaction(r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO runs (`+runColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, run.Molecule, run.Scheme, run.ModeBits, run.CoeffBits, run.States, run.Modes,
			run.Time, run.ReqError, run.Norm, run.Steps, run.FragmentCount,
			run.StepToffoli, run.TotalToffoli, run.TotalQubits, run.Report, run.CreatedAt.Unix(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert run: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `INSERT INTO run_fragments
			(run_id, position, name, times, toffoli, qubits) VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare fragment insert: %w", err)
		}
		defer stmt.Close()

		for i, f := range run.Fragments {
			if _, err := stmt.ExecContext(ctx, run.ID, i, f.Name, f.Times, f.Toffoli, f.Qubits); err != nil {
				return fmt.Errorf("failed to insert fragment %s: %w", f.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.log.Debug().Str("id", run.ID).Str("molecule", run.Molecule).Msg("Recorded run")
	return nil
}

// Get returns a run with its fragments, or nil when the ID is unknown.
func (r *Repository) Get(ctx context.Context, id string) (*Run, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+runColumns+" FROM runs WHERE id = ?", id)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil // Run not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT name, times, toffoli, qubits FROM run_fragments WHERE run_id = ? ORDER BY position", id)
	if err != nil {
		return nil, fmt.Errorf("failed to query run fragments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var f FragmentRow
		if err := rows.Scan(&f.Name, &f.Times, &f.Toffoli, &f.Qubits); err != nil {
			return nil, fmt.Errorf("failed to scan run fragment: %w", err)
		}
		run.Fragments = append(run.Fragments, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating run fragments: %w", err)
	}

	return &run, nil
}

// List returns the most recent runs, newest first, without fragments or reports.
// An empty molecule lists every molecule; limit ≤ 0 means no limit.
func (r *Repository) List(ctx context.Context, molecule string, limit int) ([]Run, error) {
	query := "SELECT " + runColumns + " FROM runs"
	var args []interface{}
	if molecule != "" {
		query += " WHERE molecule = ?"
		args = append(args, molecule)
	}
	query += " ORDER BY created_at DESC, rowid DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.Report = nil
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return out, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(s scanner) (Run, error) {
	var run Run
	var createdAt int64
	err := s.Scan(
		&run.ID, &run.Molecule, &run.Scheme, &run.ModeBits, &run.CoeffBits, &run.States, &run.Modes,
		&run.Time, &run.ReqError, &run.Norm, &run.Steps, &run.FragmentCount,
		&run.StepToffoli, &run.TotalToffoli, &run.TotalQubits, &run.Report, &createdAt,
	)
	if err != nil {
		return Run{}, err
	}
	run.CreatedAt = time.Unix(createdAt, 0)
	return run, nil
}
