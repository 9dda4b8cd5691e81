package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// PostgresStore keeps orders, coupons, carts, products and profiles in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// OpenPostgres opens the pool and checks connectivity.
func OpenPostgres(ctx context.Context, url string, maxOpen, maxIdle int) (*sql.DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping failed: %w", err)
	}
	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS products (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	price       NUMERIC(12,2) NOT NULL CHECK (price >= 0),
	image_url   TEXT NOT NULL DEFAULT '',
	is_active   BOOLEAN NOT NULL DEFAULT TRUE,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS profiles (
	id            UUID PRIMARY KEY,
	email         TEXT NOT NULL,
	name          TEXT NOT NULL,
	role          TEXT NOT NULL DEFAULT 'customer',
	password_hash TEXT NOT NULL,
	is_active     BOOLEAN NOT NULL DEFAULT TRUE,
	created_at    TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS profiles_email_key ON profiles (email);

CREATE TABLE IF NOT EXISTS refresh_sessions (
	id                 UUID PRIMARY KEY,
	user_id            UUID NOT NULL REFERENCES profiles (id) ON DELETE CASCADE,
	refresh_token_hash TEXT NOT NULL,
	expires_at         TIMESTAMPTZ NOT NULL,
	created_at         TIMESTAMPTZ NOT NULL,
	ip_address         TEXT NOT NULL DEFAULT '',
	user_agent         TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS refresh_sessions_user_idx ON refresh_sessions (user_id);

CREATE TABLE IF NOT EXISTS coupons (
	id                   UUID PRIMARY KEY,
	code                 TEXT NOT NULL,
	discount_type        TEXT NOT NULL CHECK (discount_type IN ('percentage', 'fixed_amount')),
	discount_value       NUMERIC(12,2) NOT NULL CHECK (discount_value > 0),
	minimum_order_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
	valid_from           TIMESTAMPTZ NOT NULL,
	valid_until          TIMESTAMPTZ NOT NULL,
	is_active            BOOLEAN NOT NULL DEFAULT TRUE,
	max_usage_count      INTEGER CHECK (max_usage_count > 0),
	used_count           INTEGER NOT NULL DEFAULT 0,
	created_at           TIMESTAMPTZ NOT NULL,
	updated_at           TIMESTAMPTZ NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS coupons_code_key ON coupons (UPPER(code));

CREATE TABLE IF NOT EXISTS orders (
	id                 UUID PRIMARY KEY,
	order_number       TEXT NOT NULL,
	user_id            UUID NOT NULL,
	coupon_code        TEXT NOT NULL DEFAULT '',
	subtotal           NUMERIC(12,2) NOT NULL,
	discount_amount    NUMERIC(12,2) NOT NULL,
	delivery_fee       NUMERIC(12,2) NOT NULL,
	total_amount       NUMERIC(12,2) NOT NULL CHECK (total_amount >= 0),
	payment_method     TEXT NOT NULL,
	payment_status     TEXT NOT NULL,
	fulfillment_status TEXT NOT NULL,
	payment_reference  TEXT NOT NULL DEFAULT '',
	shipping_address   JSONB NOT NULL,
	created_at         TIMESTAMPTZ NOT NULL,
	updated_at         TIMESTAMPTZ NOT NULL,
	version            INTEGER NOT NULL DEFAULT 1
);
CREATE UNIQUE INDEX IF NOT EXISTS orders_order_number_key ON orders (order_number);
CREATE INDEX IF NOT EXISTS orders_user_created_idx ON orders (user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS order_items (
	order_id   UUID NOT NULL REFERENCES orders (id) ON DELETE CASCADE,
	product_id TEXT NOT NULL,
	name       TEXT NOT NULL,
	unit_price NUMERIC(12,2) NOT NULL CHECK (unit_price >= 0),
	quantity   INTEGER NOT NULL CHECK (quantity > 0),
	PRIMARY KEY (order_id, product_id)
);

CREATE TABLE IF NOT EXISTS cart_items (
	user_id    UUID NOT NULL,
	product_id TEXT NOT NULL,
	quantity   INTEGER NOT NULL CHECK (quantity > 0),
	added_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (user_id, product_id)
);
`

// Migrate creates missing tables and indexes.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// uniqueViolation reports whether err is a unique_violation on constraint.
func uniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code.Name() == "unique_violation" && pqErr.Constraint == constraint
}

// inTx runs fn in a transaction and commits when it returns nil.
func (s *PostgresStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("tx commit: %w", err)
	}
	committed = true
	return nil
}

// missing reports a lookup that matched nothing. A malformed UUID can never match a row.
func missing(err error) bool {
	if errors.Is(err, sql.ErrNoRows) {
		return true
	}
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code.Name() == "invalid_text_representation"
}
