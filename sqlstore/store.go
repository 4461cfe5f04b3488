// Package sqlstore is a database/sql storage for the resource package. It
// supports SQLite (modernc.org/sqlite), PostgreSQL (pgx or lib/pq) and MySQL
// (go-sql-driver/mysql).
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	_ "github.com/lib/pq"              // register lib/pq as the postgres driver
	"github.com/rs/rest-layer-orm/resource"
	_ "modernc.org/sqlite" // register the sqlite driver
)

// Supported dialects.
const (
	SQLite   = "sqlite"
	Postgres = "postgres"
	MySQL    = "mysql"
)

// Store is a resource.Storer backed by a SQL database. Tables are expected
// to exist (see CreateTables); each record type maps to its Table with one
// column per field.
type Store struct {
	conn
	db *sql.DB
}

var _ resource.Storer = (*Store)(nil)

// Open opens a database using one of the sqlite, pgx, postgres (lib/pq) or
// mysql drivers. MySQL connections are configured to report matched rows on
// update and to parse times.
func Open(driverName, dsn string) (*Store, error) {
	var (
		db      *sql.DB
		dialect string
		err     error
	)
	switch driverName {
	case "sqlite":
		if db, err = sql.Open("sqlite", dsn); err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		// In memory databases are per connection.
		db.SetMaxOpenConns(1)
		dialect = SQLite
	case "pgx", "postgres":
		if db, err = sql.Open(driverName, dsn); err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		dialect = Postgres
	case "mysql":
		cfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return nil, fmt.Errorf("open mysql: %w", err)
		}
		cfg.ClientFoundRows = true
		cfg.ParseTime = true
		connector, err := mysql.NewConnector(cfg)
		if err != nil {
			return nil, fmt.Errorf("open mysql: %w", err)
		}
		db = sql.OpenDB(connector)
		dialect = MySQL
	default:
		return nil, fmt.Errorf("unsupported driver %q", driverName)
	}
	if dialect == SQLite {
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
	}
	return New(db, dialect), nil
}

// New returns a store using db, speaking the given dialect.
func New(db *sql.DB, dialect string) *Store {
	return &Store{
		conn: conn{ex: db, dialect: dialect},
		db:   db,
	}
}

// DB returns the underlying database.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect returns the SQL dialect of the store.
func (s *Store) Dialect() string {
	return s.dialect
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Begin implements resource.Storer.
func (s *Store) Begin(ctx context.Context) (resource.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &Tx{
		conn: conn{ex: tx, dialect: s.dialect, serialize: true},
		tx:   tx,
	}, nil
}

// Tx is an open SQL transaction. Statements issued concurrently are run one
// at a time on the transaction connection.
type Tx struct {
	conn
	tx *sql.Tx
}

var _ resource.Tx = (*Tx)(nil)

// Commit implements resource.Tx.
func (tx *Tx) Commit() error {
	return classify(tx.tx.Commit())
}

// Rollback implements resource.Tx. Rolling back a transaction the database
// already aborted (i.e.: on context cancellation) is not an error.
func (tx *Tx) Rollback() error {
	if err := tx.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}
