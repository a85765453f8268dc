// Package relational implements internal/store.Store over
// database/sql, targeting either Postgres (via pgx's stdlib driver) or
// MySQL (via go-sql-driver/mysql). Connections are opened per operation
// and pooled by sql.DB's built-in pool; the one bootstrap migration that
// creates the backing table is applied by Bootstrap using golang-migrate.
package relational

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql" // registers the "mysql" database/sql driver
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver

	"github.com/systmms/secretd/internal/domain"
	"github.com/systmms/secretd/internal/dserr"
)

// Dialect selects the SQL variant Store generates: placeholder style and
// upsert clause differ between Postgres and MySQL.
type Dialect int

const (
	Postgres Dialect = iota
	MySQL
)

func (d Dialect) String() string {
	if d == MySQL {
		return "mysql"
	}
	return "postgres"
}

// Store persists secrets as one row per id (globally unique), with the
// full Secret aggregate serialized into a single JSON column. tenant is
// stored as a plain column, indexed for List, but is not part of the
// primary key: Get and Delete resolve by id alone.
type Store struct {
	DB      *sql.DB
	Dialect Dialect
	Table   string
}

// Open opens a connection pool for dialect using dsn, registering
// through database/sql's driver name for the dialect ("pgx" for
// Postgres via jackc/pgx's stdlib adapter, "mysql" for MySQL via
// go-sql-driver/mysql).
func Open(dialect Dialect, dsn string) (*sql.DB, error) {
	driverName := "pgx"
	if dialect == MySQL {
		driverName = "mysql"
	}
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, dserr.Wrap("store/relational.Open", dserr.StoreUnavailable, err)
	}
	return db, nil
}

// New returns a Store over db. table defaults to "secrets" when empty.
func New(db *sql.DB, dialect Dialect, table string) *Store {
	if table == "" {
		table = "secrets"
	}
	return &Store{DB: db, Dialect: dialect, Table: table}
}

func (s *Store) placeholder(n int) string {
	if s.Dialect == Postgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// Get returns the secret by id alone, regardless of tenant.
func (s *Store) Get(ctx context.Context, id string) (domain.Secret, error) {
	query := fmt.Sprintf("SELECT doc FROM %s WHERE id = %s", s.Table, s.placeholder(1))
	var raw []byte
	err := s.DB.QueryRowContext(ctx, query, id).Scan(&raw)
	if err == sql.ErrNoRows {
		return domain.Secret{}, dserr.New("store/relational.Get", dserr.NotFound, "secret not found")
	}
	if err != nil {
		return domain.Secret{}, dserr.Wrap("store/relational.Get", dserr.StoreUnavailable, err)
	}
	return decode(raw)
}

// List returns every secret for tenant.
func (s *Store) List(ctx context.Context, tenant string) ([]domain.Secret, error) {
	query := fmt.Sprintf("SELECT doc FROM %s WHERE tenant = %s", s.Table, s.placeholder(1))
	rows, err := s.DB.QueryContext(ctx, query, tenant)
	if err != nil {
		return nil, dserr.Wrap("store/relational.List", dserr.StoreUnavailable, err)
	}
	defer rows.Close()

	var out []domain.Secret
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, dserr.Wrap("store/relational.List", dserr.Integrity, err)
		}
		secret, err := decode(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, secret)
	}
	if err := rows.Err(); err != nil {
		return nil, dserr.Wrap("store/relational.List", dserr.StoreUnavailable, err)
	}
	return out, nil
}

// Save upserts secret. The exact upsert clause is dialect-specific:
// Postgres uses INSERT ... ON CONFLICT, MySQL uses INSERT ... ON
// DUPLICATE KEY UPDATE.
func (s *Store) Save(ctx context.Context, secret domain.Secret) error {
	raw, err := json.Marshal(secret)
	if err != nil {
		return dserr.Wrap("store/relational.Save", dserr.Integrity, err)
	}

	var query string
	if s.Dialect == Postgres {
		query = fmt.Sprintf(
			"INSERT INTO %s (tenant, id, doc, updated_at) VALUES ($1, $2, $3, $4) ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = EXCLUDED.updated_at",
			s.Table,
		)
	} else {
		query = fmt.Sprintf(
			"INSERT INTO %s (tenant, id, doc, updated_at) VALUES (?, ?, ?, ?) ON DUPLICATE KEY UPDATE doc = VALUES(doc), updated_at = VALUES(updated_at)",
			s.Table,
		)
	}

	if _, err := s.DB.ExecContext(ctx, query, secret.Tenant, secret.ID, raw, time.Now().UTC()); err != nil {
		return dserr.Wrap("store/relational.Save", dserr.StoreUnavailable, err)
	}
	return nil
}

// Delete removes the secret by id alone, if present.
func (s *Store) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = %s", s.Table, s.placeholder(1))
	if _, err := s.DB.ExecContext(ctx, query, id); err != nil {
		return dserr.Wrap("store/relational.Delete", dserr.StoreUnavailable, err)
	}
	return nil
}

func decode(raw []byte) (domain.Secret, error) {
	var secret domain.Secret
	if err := json.Unmarshal(raw, &secret); err != nil {
		return domain.Secret{}, dserr.Wrap("store/relational.decode", dserr.Integrity, err)
	}
	return secret, nil
}
