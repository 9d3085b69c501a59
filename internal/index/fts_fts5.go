//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS leads_fts USING fts5(
			id UNINDEXED,
			name,
			body,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, id, name, body string) error {
	_, _ = tx.Exec(`DELETE FROM leads_fts WHERE id = ?`, id)
	_, err := tx.Exec(`INSERT INTO leads_fts (id, name, body) VALUES (?, ?, ?)`, id, name, body)
	if err != nil {
		return fmt.Errorf("index: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, id string) {
	_, _ = tx.Exec(`DELETE FROM leads_fts WHERE id = ?`, id)
}

// Search runs an FTS5 prefix query over lead names and search text, ranked
// by relevance, with highlighted snippets.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	terms := queryTerms(query)
	if len(terms) == 0 {
		return nil, nil
	}
	rows, err := db.conn.Query(`
		SELECT f.id,
		       f.name,
		       l.status,
		       snippet(leads_fts, 2, '<b>', '</b>', '...', 32)
		FROM leads_fts f
		JOIN leads l ON l.id = f.id
		WHERE leads_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, matchExpr(terms), limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.ID, &r.Name, &r.Status, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
