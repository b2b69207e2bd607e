package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"github.com/sethvargo/go-retry"
	"go.uber.org/multierr"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

//go:embed migrations/*.sql
var migrations embed.FS

// SQLiteDB implements the DB interface using SQLite
type SQLiteDB struct {
	db      *sql.DB
	backoff func() retry.Backoff
}

// NewSQLiteDB creates a new SQLite database connection
func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps ":memory:" databases coherent and serializes writers.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=2000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			return nil, multierr.Append(fmt.Errorf("failed to apply %q: %w", pragma, err), db.Close())
		}
	}

	return &SQLiteDB{
		db: db,
		backoff: func() retry.Backoff {
			return retry.WithMaxRetries(5, retry.NewExponential(20*time.Millisecond))
		},
	}, nil
}

// Close closes the database connection
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// Migrate applies the embedded goose migrations
func (s *SQLiteDB) Migrate() error {
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("migrations fs: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, s.db, fsys)
	if err != nil {
		return fmt.Errorf("migration provider: %w", err)
	}
	if _, err := provider.Up(context.Background()); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// isBusy reports whether err is a transient lock error
func isBusy(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	code := se.Code() & 0xff
	return code == sqlite3.SQLITE_BUSY || code == sqlite3.SQLITE_LOCKED
}

// withRetry retries fn while the database reports it is busy
func (s *SQLiteDB) withRetry(fn func() error) error {
	return retry.Do(context.Background(), s.backoff(), func(ctx context.Context) error {
		err := fn()
		if err != nil && isBusy(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

// SaveRun saves a run to the database
func (s *SQLiteDB) SaveRun(run *Run) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.SettingsJSON == "" {
		run.SettingsJSON = "{}"
	}
	if run.StatsJSON == "" {
		run.StatsJSON = "{}"
	}

	query := `INSERT INTO runs (
		id, version, seed, settings_json, filter_script, trainer_count,
		entry_count, draws, stats_json, engine_version
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	return s.withRetry(func() error {
		_, err := s.db.Exec(query,
			run.ID, run.Version, run.Seed, run.SettingsJSON, run.FilterScript,
			run.TrainerCount, run.EntryCount, int64(run.Draws), run.StatsJSON,
			run.EngineVersion,
		)
		return err
	})
}

// SaveTrainers saves the randomized trainers of a run in one transaction
func (s *SQLiteDB) SaveTrainers(runID string, trainers []RunTrainer) error {
	if len(trainers) == 0 {
		return nil
	}
	return s.withRetry(func() (err error) {
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		defer func() {
			if err != nil {
				err = multierr.Append(err, tx.Rollback())
			}
		}()

		stmt, err := tx.Prepare(`INSERT INTO run_trainers
			(run_id, trainer_id, class, ai, mode, team_size, team_json)
			VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, tr := range trainers {
			teamJSON := tr.TeamJSON
			if teamJSON == "" {
				teamJSON = "[]"
			}
			if _, err := stmt.Exec(runID, tr.TrainerID, tr.Class, tr.AI, tr.Mode, tr.TeamSize, teamJSON); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
}

const runColumns = `id, version, seed, settings_json, filter_script, trainer_count,
	entry_count, draws, stats_json, engine_version, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var run Run
	var draws int64
	err := row.Scan(
		&run.ID, &run.Version, &run.Seed, &run.SettingsJSON, &run.FilterScript,
		&run.TrainerCount, &run.EntryCount, &draws, &run.StatsJSON,
		&run.EngineVersion, &run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	run.Draws = uint64(draws)
	return &run, nil
}

// GetRun retrieves a run by ID
func (s *SQLiteDB) GetRun(id string) (*Run, error) {
	run, err := scanRun(s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

func paginate(total, page, perPage, defaultPerPage int) (int, int, int, int) {
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	if page <= 0 {
		page = 1
	}
	totalPages := (total + perPage - 1) / perPage
	return page, perPage, totalPages, (page - 1) * perPage
}

// ListRuns retrieves runs with pagination and filtering, newest first
func (s *SQLiteDB) ListRuns(query RunsQuery) (*RunsList, error) {
	whereClause := ""
	args := []any{}
	if query.Version != "" {
		whereClause = "WHERE version = ?"
		args = append(args, query.Version)
	}

	var totalCount int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM runs "+whereClause, args...).Scan(&totalCount); err != nil {
		return nil, fmt.Errorf("failed to get total count: %w", err)
	}

	page, perPage, totalPages, offset := paginate(totalCount, query.Page, query.PerPage, 50)

	mainQuery := `SELECT ` + runColumns + ` FROM runs ` + whereClause + `
		ORDER BY created_at DESC, rowid DESC
		LIMIT ? OFFSET ?`
	args = append(args, perPage, offset)

	rows, err := s.db.Query(mainQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return &RunsList{
		Runs:       runs,
		TotalCount: totalCount,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
	}, nil
}

// GetRunTrainers retrieves one page of a run's trainers ordered by trainer id
func (s *SQLiteDB) GetRunTrainers(runID string, page, perPage int) (*TrainersPage, error) {
	if _, err := s.GetRun(runID); err != nil {
		return nil, err
	}

	var totalCount int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM run_trainers WHERE run_id = ?", runID).Scan(&totalCount); err != nil {
		return nil, fmt.Errorf("failed to get trainer count: %w", err)
	}

	page, perPage, totalPages, offset := paginate(totalCount, page, perPage, 100)

	rows, err := s.db.Query(`SELECT run_id, trainer_id, class, ai, mode, team_size, team_json
		FROM run_trainers WHERE run_id = ?
		ORDER BY trainer_id
		LIMIT ? OFFSET ?`, runID, perPage, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query trainers: %w", err)
	}
	defer rows.Close()

	trainers := []RunTrainer{}
	for rows.Next() {
		var tr RunTrainer
		if err := rows.Scan(&tr.RunID, &tr.TrainerID, &tr.Class, &tr.AI, &tr.Mode, &tr.TeamSize, &tr.TeamJSON); err != nil {
			return nil, fmt.Errorf("failed to scan trainer: %w", err)
		}
		trainers = append(trainers, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trainers: %w", err)
	}

	return &TrainersPage{
		Trainers:   trainers,
		TotalCount: totalCount,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
	}, nil
}
