// Package store holds the in-memory CRM state and its mutation contract.
//
// Every mutation builds a new Snapshot and swaps it in atomically, so a
// Snapshot obtained from the store is a consistent point-in-time view that
// is never modified afterwards. Callers must treat snapshots and the
// records inside them as read-only.
package store

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/starford/propdesk/internal/models"
)

// Snapshot is an immutable view of the whole CRM state.
type Snapshot struct {
	User        *models.User       `json:"user"`
	Leads       []models.Lead      `json:"leads"`
	Agents      []models.Agent     `json:"agents"`
	Properties  []models.Property  `json:"properties"`
	Preferences models.Preferences `json:"preferences"`
}

// Store is the single source of truth for CRM state.
//
// Concurrency model: writers are serialised by mu and run to completion,
// including listener delivery. Readers load the current snapshot from an
// atomic pointer and never block.
type Store struct {
	mu      sync.Mutex
	current atomic.Pointer[Snapshot]

	listeners map[int]Listener
	nextSub   int

	now    func() time.Time
	ids    IDGenerator
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithIDGenerator overrides the generator used for missing ids.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Store) {
		s.ids = g
	}
}

// WithLogger sets the logger used for mutation debug output.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// WithSeed starts the store from the given data instead of an empty state.
func WithSeed(seed Seed) Option {
	return func(s *Store) {
		s.current.Store(seed.snapshot())
	}
}

// New creates a store. Without WithSeed it starts empty, signed out, with
// default preferences.
func New(opts ...Option) *Store {
	s := &Store{
		listeners: make(map[int]Listener),
		now:       time.Now,
		ids:       UUIDGenerator{},
		logger:    slog.Default(),
	}
	s.current.Store(&Snapshot{
		Leads:       []models.Lead{},
		Agents:      []models.Agent{},
		Properties:  []models.Property{},
		Preferences: models.DefaultPreferences(),
	})
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns the current state.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// User returns the signed-in user, or nil.
func (s *Store) User() *models.User {
	return s.Snapshot().User
}

// Preferences returns the current UI preferences.
func (s *Store) Preferences() models.Preferences {
	return s.Snapshot().Preferences
}

// Lead returns the first lead with the given id.
func (s *Store) Lead(id string) (models.Lead, bool) {
	return find(s.Snapshot().Leads, id, func(l models.Lead) string { return l.ID })
}

// Agent returns the first agent with the given id.
func (s *Store) Agent(id string) (models.Agent, bool) {
	return find(s.Snapshot().Agents, id, func(a models.Agent) string { return a.ID })
}

// Property returns the first property with the given id.
func (s *Store) Property(id string) (models.Property, bool) {
	return find(s.Snapshot().Properties, id, func(p models.Property) string { return p.ID })
}

// mutate runs fn against a shallow copy of the current snapshot under the
// writer lock. If fn reports a change the copy becomes current and the
// returned change is delivered to listeners before the lock is released.
func (s *Store) mutate(fn func(next *Snapshot) (Change, bool)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := *s.current.Load()
	change, ok := fn(&next)
	if !ok {
		return false
	}
	s.current.Store(&next)

	s.logger.Debug("store: mutation",
		slog.String("topic", string(change.Topic)),
		slog.String("id", change.ID))
	s.emit(change)
	return true
}

// touch returns a timestamp strictly after prev.
func (s *Store) touch(prev time.Time) time.Time {
	t := s.now()
	if !t.After(prev) {
		t = prev.Add(time.Nanosecond)
	}
	return t
}

func find[T any](items []T, id string, key func(T) string) (T, bool) {
	for _, it := range items {
		if key(it) == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// replaceWhere returns a copy of items with every element matching id
// replaced by apply(element). It reports whether anything matched.
func replaceWhere[T any](items []T, id string, key func(T) string, apply func(T) T) ([]T, T, bool) {
	out := make([]T, len(items))
	var last T
	found := false
	for i, it := range items {
		if key(it) == id {
			it = apply(it)
			last = it
			found = true
		}
		out[i] = it
	}
	return out, last, found
}

// removeWhere returns a copy of items without the elements matching id and
// the number removed.
func removeWhere[T any](items []T, id string, key func(T) string) ([]T, int) {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if key(it) != id {
			out = append(out, it)
		}
	}
	return out, len(items) - len(out)
}

func appendCopy[T any](items []T, v T) []T {
	out := make([]T, len(items), len(items)+1)
	copy(out, items)
	return append(out, v)
}
