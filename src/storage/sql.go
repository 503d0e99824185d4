package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"feynman_tutor/src/model"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS learning_records (
		learner_id TEXT PRIMARY KEY,
		records    TEXT NOT NULL,
		version    BIGINT NOT NULL DEFAULT 1
	)`,
}

type recordRow struct {
	Records string `db:"records"`
	Version int64  `db:"version"`
}

// SQLRecordStore keeps one row per learner; the version column guards Update
type SQLRecordStore struct {
	db         *sqlx.DB
	maxRetries int
}

// OpenSQLRecordStore connects with sqlx and applies the schema
func OpenSQLRecordStore(ctx context.Context, driver, dsn string, maxRetries int) (*SQLRecordStore, error) {
	switch driver {
	case DriverSQLite:
		if dsn != ":memory:" {
			if dir := filepath.Dir(dsn); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return nil, fmt.Errorf("failed to create database directory: %w", err)
				}
			}
		}
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open %s database: %v", ErrStoreUnavailable, driver, err)
	}
	if driver == DriverSQLite {
		// modernc sqlite serializes writers; a single connection also keeps :memory: shared
		db.SetMaxOpenConns(1)
	}

	store := NewSQLRecordStore(db, maxRetries)
	if err := store.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func NewSQLRecordStore(db *sqlx.DB, maxRetries int) *SQLRecordStore {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	return &SQLRecordStore{db: db, maxRetries: maxRetries}
}

func (s *SQLRecordStore) Migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply migration: %w", err)
		}
	}
	return nil
}

func (s *SQLRecordStore) Get(ctx context.Context, learnerID string) ([]model.LearningRecord, error) {
	records, _, err := s.read(ctx, learnerID)
	return records, err
}

func (s *SQLRecordStore) Set(ctx context.Context, learnerID string, records []model.LearningRecord) error {
	data, err := encodeRecords(records)
	if err != nil {
		return err
	}
	query := s.db.Rebind(`INSERT INTO learning_records (learner_id, records, version) VALUES (?, ?, 1)
		ON CONFLICT (learner_id) DO UPDATE SET records = excluded.records, version = learning_records.version + 1`)
	if _, err := s.db.ExecContext(ctx, query, learnerID, string(data)); err != nil {
		return fmt.Errorf("%w: failed to set learning records: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Update reads the row and its version, applies fn, and writes back only if
// the version is unchanged. Lost races are retried up to maxRetries times.
func (s *SQLRecordStore) Update(ctx context.Context, learnerID string, fn model.RecordsUpdate) ([]model.LearningRecord, error) {
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		records, version, err := s.read(ctx, learnerID)
		if err != nil {
			return nil, err
		}

		updated, changed, err := fn(records)
		if err != nil {
			return nil, err
		}
		if !changed {
			return updated, nil
		}

		data, err := encodeRecords(updated)
		if err != nil {
			return nil, err
		}

		var res sql.Result
		if version == 0 {
			res, err = s.db.ExecContext(ctx, s.db.Rebind(
				`INSERT INTO learning_records (learner_id, records, version) VALUES (?, ?, 1)
				ON CONFLICT (learner_id) DO NOTHING`), learnerID, string(data))
		} else {
			res, err = s.db.ExecContext(ctx, s.db.Rebind(
				`UPDATE learning_records SET records = ?, version = version + 1
				WHERE learner_id = ? AND version = ?`), string(data), learnerID, version)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: failed to write learning records: %v", ErrStoreUnavailable, err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		if n == 1 {
			return updated, nil
		}
	}

	return nil, fmt.Errorf("%w: learner %s after %d attempts", ErrConflict, learnerID, s.maxRetries)
}

func (s *SQLRecordStore) Learners(ctx context.Context) ([]string, error) {
	var learners []string
	if err := s.db.SelectContext(ctx, &learners, `SELECT learner_id FROM learning_records ORDER BY learner_id`); err != nil {
		return nil, fmt.Errorf("%w: failed to list learners: %v", ErrStoreUnavailable, err)
	}
	return learners, nil
}

func (s *SQLRecordStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLRecordStore) Close() error {
	return s.db.Close()
}

// read returns version 0 when the learner has no row
func (s *SQLRecordStore) read(ctx context.Context, learnerID string) ([]model.LearningRecord, int64, error) {
	var row recordRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(`SELECT records, version FROM learning_records WHERE learner_id = ?`), learnerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []model.LearningRecord{}, 0, nil
		}
		return nil, 0, fmt.Errorf("%w: failed to get learning records: %v", ErrStoreUnavailable, err)
	}

	records, err := decodeRecords([]byte(row.Records))
	if err != nil {
		return nil, 0, err
	}
	return records, row.Version, nil
}
