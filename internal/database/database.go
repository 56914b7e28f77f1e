package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/SamFelix03/cummadashboard/internal/domain"

	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// DB is the SQLite document store. Profiles and facility details are kept
// as JSON documents next to the columns used for lookups and joins.
type DB struct {
	*sql.DB
	path   string
	logger *zerolog.Logger
}

var _ domain.Repository = (*DB)(nil)

func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	memory := path == ":memory:"
	if !memory {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := path + "?_foreign_keys=on&_busy_timeout=5000"
	if !memory {
		dsn += "&_journal_mode=WAL"
	}

	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if memory {
		// every pooled connection would otherwise get its own empty database
		sqlDB.SetMaxOpenConns(1)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := createTables(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	l := logger.With().Str("component", "sqlite").Logger()
	l.Info().Str("path", path).Msg("database initialized")
	return &DB{DB: sqlDB, path: path, logger: &l}, nil
}

// Path returns the database file path, used by the backup service.
func (db *DB) Path() string {
	return db.path
}

func (db *DB) Ping(ctx context.Context) error {
	return db.PingContext(ctx)
}

const facilityTypesSQL = `'individual-cabin','coworking-spaces','meeting-rooms','bio-allied-labs',` +
	`'manufacturing-labs','prototyping-labs','software','saas-allied','raw-space-office','raw-space-lab'`

const planNamesSQL = `'Annual','Monthly','Weekly','One Day (24 Hours)'`

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id TEXT PRIMARY KEY,
            email TEXT NOT NULL UNIQUE COLLATE NOCASE,
            password_hash TEXT NOT NULL,
            user_type TEXT NOT NULL CHECK (user_type IN ('startup', 'Service Provider')),
            auth_provider TEXT NOT NULL DEFAULT 'local'
                CHECK (auth_provider IN ('local', 'google', 'facebook', 'apple')),
            auth_provider_id TEXT NOT NULL DEFAULT '',
            is_email_verified BOOLEAN NOT NULL DEFAULT 0,
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS startups (
            id TEXT PRIMARY KEY,
            user_id TEXT NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
            startup_name TEXT NOT NULL CHECK (startup_name <> ''),
            profile TEXT NOT NULL CHECK (json_valid(profile)
                AND json_type(profile, '$.lookingFor') IN ('array', 'null')),
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS service_providers (
            id TEXT PRIMARY KEY,
            user_id TEXT NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
            service_name TEXT NOT NULL CHECK (service_name <> ''),
            profile TEXT NOT NULL CHECK (json_valid(profile)),
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS facilities (
            id TEXT PRIMARY KEY,
            service_provider_id TEXT NOT NULL REFERENCES service_providers(id) ON DELETE CASCADE,
            facility_type TEXT NOT NULL CHECK (facility_type IN (` + facilityTypesSQL + `)),
            status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'active', 'rejected')),
            details TEXT NOT NULL CHECK (json_valid(details)),
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL,
            CHECK (
                json_type(details, '$.name') IS 'text'
                AND json_type(details, '$.description') IS 'text'
                AND json_type(details, '$.images') IS 'array'
                AND coalesce(json_array_length(details, '$.rentalPlans'), 0) > 0
                AND CASE facility_type
                    WHEN 'individual-cabin' THEN
                        json_type(details, '$.totalCabins') IS 'integer'
                        AND json_type(details, '$.availableCabins') IS 'integer'
                    WHEN 'coworking-spaces' THEN
                        json_type(details, '$.totalSeats') IS 'integer'
                        AND json_type(details, '$.availableSeats') IS 'integer'
                    WHEN 'meeting-rooms' THEN
                        json_type(details, '$.totalRooms') IS 'integer'
                        AND json_type(details, '$.seatingCapacity') IS 'integer'
                        AND json_type(details, '$.totalTrainingRoomSeaters') IS 'integer'
                    WHEN 'raw-space-office' THEN coalesce(json_array_length(details, '$.areaDetails'), 0) > 0
                    WHEN 'raw-space-lab' THEN coalesce(json_array_length(details, '$.areaDetails'), 0) > 0
                    ELSE coalesce(json_array_length(details, '$.equipment'), 0) > 0
                END
            )
        )`,
		`CREATE TABLE IF NOT EXISTS bookings (
            id TEXT PRIMARY KEY,
            startup_id TEXT NOT NULL REFERENCES startups(id) ON DELETE CASCADE,
            facility_id TEXT NOT NULL REFERENCES facilities(id) ON DELETE CASCADE,
            status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'approved', 'rejected')),
            rental_plan TEXT NOT NULL CHECK (rental_plan IN (` + planNamesSQL + `)),
            amount REAL NOT NULL CHECK (amount > 0),
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL
        )`,

		`CREATE INDEX IF NOT EXISTS idx_facilities_provider ON facilities(service_provider_id)`,
		`CREATE INDEX IF NOT EXISTS idx_facilities_status_type ON facilities(status, facility_type)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_facility ON bookings(facility_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_startup ON bookings(startup_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_status ON bookings(status)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", firstLine(query), err)
		}
	}
	return nil
}

func firstLine(q string) string {
	if i := strings.IndexByte(q, '\n'); i > 0 {
		return q[:i]
	}
	return q
}

// withTx runs fn inside a transaction that is rolled back unless fn succeeds.
func (db *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

func isCheckViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintCheck
	}
	return false
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
