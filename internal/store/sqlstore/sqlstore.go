// Package sqlstore keeps key-value slots in a single SQL table. SQLite
// (pure Go, modernc.org/sqlite) and MySQL are supported.
package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// Dialect names a supported database/sql driver.
type Dialect string

const (
	SQLite Dialect = "sqlite"
	MySQL  Dialect = "mysql"
)

type dialectSQL struct {
	schema string
	upsert string
}

var dialects = map[Dialect]dialectSQL{
	SQLite: {
		schema: `CREATE TABLE IF NOT EXISTS kv (
			slot_key   TEXT PRIMARY KEY,
			slot_value TEXT NOT NULL
		)`,
		upsert: `INSERT INTO kv (slot_key, slot_value) VALUES (?, ?)
			ON CONFLICT(slot_key) DO UPDATE SET slot_value = excluded.slot_value`,
	},
	MySQL: {
		schema: `CREATE TABLE IF NOT EXISTS kv (
			slot_key   VARCHAR(191) NOT NULL PRIMARY KEY,
			slot_value LONGTEXT NOT NULL
		)`,
		upsert: `INSERT INTO kv (slot_key, slot_value) VALUES (?, ?)
			ON DUPLICATE KEY UPDATE slot_value = VALUES(slot_value)`,
	},
}

// ErrUnknownDialect is returned by Open for drivers other than sqlite/mysql.
var ErrUnknownDialect = errors.New("unknown sql dialect")

// Store is a SQL-backed slot.
type Store struct {
	DB      *sql.DB
	dialect Dialect
}

// Open connects with the given dialect and ensures the kv table exists.
func Open(dialect Dialect, dsn string) (*Store, error) {
	if _, ok := dialects[dialect]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDialect, dialect)
	}
	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}
	if dialect == SQLite {
		// one writer; also keeps ":memory:" databases on a single connection
		db.SetMaxOpenConns(1)
	}
	s, err := New(db, dialect)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// OpenSQLite opens (creating if needed) a SQLite database file.
func OpenSQLite(path string) (*Store, error) {
	return Open(SQLite, path)
}

// OpenMySQL connects to MySQL using a go-sql-driver DSN,
// e.g. "user:pass@tcp(localhost:3306)/tada".
func OpenMySQL(dsn string) (*Store, error) {
	return Open(MySQL, dsn)
}

// New wraps an existing connection and creates the kv table if missing.
func New(db *sql.DB, dialect Dialect) (*Store, error) {
	d, ok := dialects[dialect]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDialect, dialect)
	}
	if _, err := db.Exec(d.schema); err != nil {
		return nil, fmt.Errorf("create kv table: %w", err)
	}
	return &Store{DB: db, dialect: dialect}, nil
}

// Get returns the value under key.
func (s *Store) Get(key string) (string, bool, error) {
	var v string
	err := s.DB.QueryRow("SELECT slot_value FROM kv WHERE slot_key = ?", key).Scan(&v)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("query slot %q: %w", key, err)
	}
	return v, true, nil
}

// Set inserts or replaces the value under key.
func (s *Store) Set(key, value string) error {
	if _, err := s.DB.Exec(dialects[s.dialect].upsert, key, value); err != nil {
		return fmt.Errorf("write slot %q: %w", key, err)
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.DB.Close()
}
