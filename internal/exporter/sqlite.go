package exporter

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/CayleighSitchon/water-quality-analysis/pkg/contracts/domain"
)

// DatabaseFile is the default name of the SQLite export.
const DatabaseFile = "water_quality.sqlite"

var schema = []string{
	`DROP TABLE IF EXISTS readings`,
	`DROP TABLE IF EXISTS means`,
	`CREATE TABLE readings (
		month TEXT NOT NULL,
		lims_id TEXT NOT NULL,
		location TEXT NOT NULL,
		element TEXT NOT NULL,
		concentration REAL NOT NULL,
		type TEXT,
		source_row INTEGER
	)`,
	`CREATE TABLE means (
		product TEXT NOT NULL,
		element TEXT NOT NULL,
		group_key TEXT NOT NULL,
		month TEXT,
		mean REAL NOT NULL,
		count INTEGER NOT NULL
	)`,
	`CREATE INDEX idx_readings_element ON readings(element)`,
	`CREATE INDEX idx_readings_location ON readings(location)`,
	`CREATE INDEX idx_means_product ON means(product)`,
}

// SQLiteStore writes readings and mean tables to a SQLite file. Tables are
// recreated on Open, so each run replaces the previous export.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// OpenSQLite creates or replaces the export database at path.
func OpenSQLite(ctx context.Context, path string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite %s: %w", path, err)
	}
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}

	logger.Debug("Opened export database", slog.String("path", path))
	return &SQLiteStore{db: db, path: path, logger: logger}, nil
}

// SaveReadings inserts readings in one transaction.
func (s *SQLiteStore) SaveReadings(ctx context.Context, readings []domain.Reading) error {
	return s.insert(ctx,
		`INSERT INTO readings (month, lims_id, location, element, concentration, type, source_row) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		len(readings),
		func(stmt *sql.Stmt, i int) error {
			r := readings[i]
			_, err := stmt.ExecContext(ctx, r.Month, r.LimsID, r.Location, r.Element, r.Concentration, r.Type, r.Row)
			return err
		})
}

// SaveMeans inserts the mean table of product in one transaction.
func (s *SQLiteStore) SaveMeans(ctx context.Context, product string, rows []domain.MeanRow) error {
	return s.insert(ctx,
		`INSERT INTO means (product, element, group_key, month, mean, count) VALUES (?, ?, ?, ?, ?, ?)`,
		len(rows),
		func(stmt *sql.Stmt, i int) error {
			r := rows[i]
			_, err := stmt.ExecContext(ctx, product, r.Element, r.Group, r.Month, r.Mean, r.Count)
			return err
		})
}

func (s *SQLiteStore) insert(ctx context.Context, query string, n int, exec func(*sql.Stmt, int) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		if err := exec(stmt, i); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert row %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	s.logger.Debug("Inserted rows", slog.String("path", s.path), slog.Int("rows", n))
	return nil
}

// DB exposes the underlying handle for queries.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
