package index

import "github.com/starford/propdesk/internal/models"

// LeadIndex defines the interface for lead search indexing.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type LeadIndex interface {
	UpsertLead(l models.Lead) error
	DeleteLead(id string) error
	GetChecksum(id string) (string, error)
	AllChecksums() (map[string]string, error)
	Search(query string, limit int) ([]SearchResult, error)
	Count() (int, error)
	Close() error
}

// Verify *DB satisfies LeadIndex at compile time.
var _ LeadIndex = (*DB)(nil)
