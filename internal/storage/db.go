package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"crowdfund-platform/internal/models"

	// Register the "pgx" database/sql driver
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Store is the sqlx-backed repository for users, fundraisers, donations and payments.
// Queries are written with ? placeholders and rebound for the active driver.
type Store struct {
	db     *sqlx.DB
	driver string
}

// Open connects to the database. driver is "pgx" (PostgreSQL) or "sqlite".
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)

	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: connect %s: %w", driver, err)
	}

	if driver == "sqlite" {
		// One connection keeps an in-memory database alive and serialises writers.
		db.SetMaxOpenConns(1)
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("storage: enable foreign keys: %w", err)
		}
	}

	return &Store{db: db, driver: driver}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Driver names the database/sql driver in use.
func (s *Store) Driver() string {
	return s.driver
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		email         TEXT NOT NULL UNIQUE,
		mobile        TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at    TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS fundraisers (
		id                  TEXT PRIMARY KEY,
		owner_id            TEXT NOT NULL REFERENCES users(id),
		title               TEXT NOT NULL,
		category            TEXT NOT NULL,
		description         TEXT NOT NULL,
		target_amount       BIGINT NOT NULL CHECK (target_amount > 0),
		raised_amount       BIGINT NOT NULL DEFAULT 0 CHECK (raised_amount >= 0),
		donation_count      BIGINT NOT NULL DEFAULT 0,
		end_date            TIMESTAMP NOT NULL,
		contact_name        TEXT NOT NULL,
		contact_email       TEXT NOT NULL,
		contact_mobile      TEXT NOT NULL,
		bank_account_holder TEXT NOT NULL,
		bank_account_number TEXT NOT NULL,
		bank_name           TEXT NOT NULL,
		bank_upi_id         TEXT NOT NULL DEFAULT '',
		created_at          TIMESTAMP NOT NULL,
		updated_at          TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS fundraisers_created_at_idx ON fundraisers (created_at)`,
	`CREATE INDEX IF NOT EXISTS fundraisers_category_idx ON fundraisers (category)`,
	`CREATE INDEX IF NOT EXISTS fundraisers_owner_idx ON fundraisers (owner_id)`,
	`CREATE TABLE IF NOT EXISTS fundraiser_documents (
		fundraiser_id TEXT NOT NULL REFERENCES fundraisers(id),
		seq           INTEGER NOT NULL,
		doc_type      TEXT NOT NULL,
		url           TEXT NOT NULL,
		name          TEXT NOT NULL DEFAULT '',
		uploaded_at   TIMESTAMP NOT NULL,
		PRIMARY KEY (fundraiser_id, seq)
	)`,
	`CREATE TABLE IF NOT EXISTS donations (
		id               TEXT PRIMARY KEY,
		fundraiser_id    TEXT NOT NULL REFERENCES fundraisers(id),
		fundraiser_title TEXT NOT NULL,
		donor_id         TEXT NOT NULL REFERENCES users(id),
		donor_name       TEXT NOT NULL,
		donor_email      TEXT NOT NULL,
		amount           BIGINT NOT NULL CHECK (amount > 0),
		comment          TEXT NOT NULL DEFAULT '',
		created_at       TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS donations_fundraiser_idx ON donations (fundraiser_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS donations_donor_idx ON donations (donor_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS payments (
		order_id         TEXT PRIMARY KEY,
		fundraiser_id    TEXT NOT NULL REFERENCES fundraisers(id),
		fundraiser_title TEXT NOT NULL,
		donor_id         TEXT NOT NULL REFERENCES users(id),
		donor_name       TEXT NOT NULL,
		donor_email      TEXT NOT NULL,
		amount           BIGINT NOT NULL CHECK (amount > 0),
		comment          TEXT NOT NULL DEFAULT '',
		status           TEXT NOT NULL,
		gateway_tx_id    TEXT NOT NULL DEFAULT '',
		created_at       TIMESTAMP NOT NULL,
		settled_at       TIMESTAMP NULL
	)`,
}

// Migrate creates the schema. Every statement is idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	for _, m := range migrations {
		if _, err := s.db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("storage: migrate: %w", err)
		}
	}
	return nil
}

// inTx runs fn inside a transaction and commits when it returns nil.
func (s *Store) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: begin: %w", err)
	}
	// Ensure the transaction is rolled back on error
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: commit: %w", err)
	}
	return nil
}

// uniqueViolation reports whether err is a unique-key failure and, when the
// driver exposes it, which constraint or column triggered it.
func uniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return pgErr.ConstraintName, true
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		switch {
		case code == sqlite3.SQLITE_CONSTRAINT_UNIQUE, code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return liteErr.Error(), true
		case code&0xff == sqlite3.SQLITE_CONSTRAINT && contains(liteErr.Error(), "unique constraint"):
			return liteErr.Error(), true
		}
	}
	return "", false
}

func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, models.ErrNotFound)
	}
	return fmt.Errorf("storage: %s: %w", what, err)
}

// timestamp normalises times to UTC at microsecond precision, which both
// PostgreSQL and SQLite round-trip unchanged.
func timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

func contains(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), sub)
}
