//go:build !sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"
)

// Without FTS5 the search text lives only in leads.body, with a lower-cased
// copy in body_lc since SQLite LIKE folds ASCII only.
func initFTS(_ *sql.DB) error { return nil }

func ftsUpsert(_ *sql.Tx, _, _, _ string) error { return nil }

func ftsDelete(_ *sql.Tx, _ string) {}

// Search matches every query term as a case-insensitive substring of the
// lead's search text, ordered by name.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	terms := queryTerms(query)
	if len(terms) == 0 {
		return nil, nil
	}

	where := make([]string, len(terms))
	args := make([]any, 0, len(terms)+1)
	for i, t := range terms {
		where[i] = `body_lc LIKE ? ESCAPE '\'`
		args = append(args, likePattern(t))
	}
	args = append(args, limit)

	rows, err := db.conn.Query(`
		SELECT id, name, status, body
		FROM leads
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY name, id
		LIMIT ?
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var (
			r    SearchResult
			body string
		)
		if err := rows.Scan(&r.ID, &r.Name, &r.Status, &body); err != nil {
			return nil, err
		}
		r.Snippet = snippetAround(body, terms[0])
		out = append(out, r)
	}
	return out, rows.Err()
}
