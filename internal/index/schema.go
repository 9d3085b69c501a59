// Package index provides a SQLite-backed search projection of the lead
// collection with optional FTS5 full-text search. It is derived from the
// store and can be rebuilt at any time; by default it lives in memory.
package index

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// MemoryDSN opens a private in-memory database.
const MemoryDSN = ":memory:"

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS leads (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL DEFAULT '',
	email      TEXT NOT NULL DEFAULT '',
	phone      TEXT NOT NULL DEFAULT '',
	status     TEXT NOT NULL DEFAULT '',
	location   TEXT NOT NULL DEFAULT '',
	agent      TEXT NOT NULL DEFAULT '',
	checksum   TEXT NOT NULL DEFAULT '',
	body       TEXT NOT NULL DEFAULT '',
	body_lc    TEXT NOT NULL DEFAULT '',
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_leads_status ON leads(status);
CREATE INDEX IF NOT EXISTS idx_leads_agent ON leads(agent);
`

// DB wraps a sql.DB with index-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
// An empty dsn means MemoryDSN.
func Open(dsn string) (*DB, error) {
	if dsn == "" {
		dsn = MemoryDSN
	}
	params := "_busy_timeout=5000"
	if dsn != MemoryDSN {
		params = "_journal_mode=WAL&" + params
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	conn, err := sql.Open("sqlite3", dsn+sep+params)
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	// A single connection keeps an in-memory database alive and shared.
	conn.SetMaxOpenConns(1)
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply core schema: %w", err)
	}
	if err := migrate(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: migrate: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// migrate upgrades index files written before body_lc existed. Clearing the
// checksums makes the next Sync rewrite every row.
func migrate(conn *sql.DB) error {
	var n int
	err := conn.QueryRow(`SELECT count(*) FROM pragma_table_info('leads') WHERE name = 'body_lc'`).Scan(&n)
	if err != nil || n > 0 {
		return err
	}
	if _, err := conn.Exec(`ALTER TABLE leads ADD COLUMN body_lc TEXT NOT NULL DEFAULT ''`); err != nil {
		return err
	}
	_, err = conn.Exec(`UPDATE leads SET checksum = ''`)
	return err
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
