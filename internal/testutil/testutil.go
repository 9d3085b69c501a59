// Package testutil provides shared test helpers for wiring a CRM service
// over an empty store and an in-memory search index.
package testutil

import (
	"io"
	"log/slog"
	"testing"

	"github.com/starford/propdesk/internal/crmservice"
	"github.com/starford/propdesk/internal/index"
	"github.com/starford/propdesk/internal/messaging"
	"github.com/starford/propdesk/internal/storage"
	"github.com/starford/propdesk/internal/store"
)

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestDB opens an in-memory index that is closed when the test ends.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	db, err := index.Open(index.MemoryDSN)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestService builds a service over an empty store with counter ids
// ("<prefix>-1", "<prefix>-2", ...) and an instant composer.
func TestService(t *testing.T, prefix string, opts ...crmservice.Option) *crmservice.Service {
	t.Helper()
	logger := Logger()
	st := store.New(store.WithIDGenerator(&store.CounterGenerator{Prefix: prefix}))
	svc, err := crmservice.New(st, TestDB(t), messaging.NewComposer(st, 0, logger), logger, opts...)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(svc.Close)
	return svc
}

// TestDir creates a temporary directory with a storage.Provider over it.
func TestDir(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	files, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, files
}
