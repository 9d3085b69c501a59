package index

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/starford/propdesk/internal/checksum"
	"github.com/starford/propdesk/internal/models"
)

// SearchResult represents one search hit.
type SearchResult struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Status  string `json:"status"`
	Snippet string `json:"snippet"`
}

// searchText is the free text indexed for a lead: contact details, notes
// and every message in its history.
func searchText(l models.Lead) string {
	parts := []string{l.Name, l.Email, l.Phone, l.Location, l.Notes}
	for _, c := range l.CommunicationHistory {
		parts = append(parts, c.Message)
	}
	return strings.Join(parts, "\n")
}

// rowChecksum identifies the indexed content of a lead so unchanged leads
// can be skipped during sync.
func rowChecksum(l models.Lead) string {
	return checksum.Sum([]byte(strings.Join([]string{
		searchText(l), string(l.Status), l.AssignedAgent, l.UpdatedAt.UTC().String(),
	}, "\x00")))
}

// UpsertLead inserts or replaces a lead and its FTS entry within a transaction.
func (db *DB) UpsertLead(l models.Lead) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	body := searchText(l)
	_, err = tx.Exec(`
		INSERT INTO leads (id, name, email, phone, status, location, agent, checksum, body, body_lc, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name       = excluded.name,
			email      = excluded.email,
			phone      = excluded.phone,
			status     = excluded.status,
			location   = excluded.location,
			agent      = excluded.agent,
			checksum   = excluded.checksum,
			body       = excluded.body,
			body_lc    = excluded.body_lc,
			updated_at = excluded.updated_at
	`, l.ID, l.Name, l.Email, l.Phone, string(l.Status), l.Location, l.AssignedAgent, rowChecksum(l), body, strings.ToLower(body), l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert lead: %w", err)
	}

	// FTS upsert (no-op when FTS5 tag is absent).
	if err := ftsUpsert(tx, l.ID, l.Name, body); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteLead removes a lead and its FTS entry.
func (db *DB) DeleteLead(id string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, id)
	if _, err := tx.Exec(`DELETE FROM leads WHERE id = ?`, id); err != nil {
		return fmt.Errorf("index: delete lead: %w", err)
	}
	return tx.Commit()
}

// GetChecksum returns the stored checksum for a lead, or empty string if not found.
func (db *DB) GetChecksum(id string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM leads WHERE id = ?`, id).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: get checksum: %w", err)
	}
	return cs, nil
}

// AllChecksums returns id -> checksum for every indexed lead.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT id, checksum FROM leads`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var id, cs string
		if err := rows.Scan(&id, &cs); err != nil {
			return nil, err
		}
		out[id] = cs
	}
	return out, rows.Err()
}

// Count returns the number of indexed leads.
func (db *DB) Count() (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT count(*) FROM leads`).Scan(&n); err != nil {
		return 0, fmt.Errorf("index: count: %w", err)
	}
	return n, nil
}
