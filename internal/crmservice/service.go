// Package crmservice coordinates the store, search index and message
// composer for the HTTP and MCP surfaces.
package crmservice

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/starford/propdesk/internal/apperr"
	"github.com/starford/propdesk/internal/index"
	"github.com/starford/propdesk/internal/leadcsv"
	"github.com/starford/propdesk/internal/messaging"
	"github.com/starford/propdesk/internal/models"
	"github.com/starford/propdesk/internal/report"
	"github.com/starford/propdesk/internal/store"
)

// Service wraps the store with transport-facing behaviour: not-found
// errors, the optional status transition policy and index maintenance.
type Service struct {
	store    *store.Store
	idx      index.LeadIndex
	composer *messaging.Composer
	logger   *slog.Logger
	now      func() time.Time

	strict bool
	// statusMu serialises check-then-update of lead status.
	statusMu sync.Mutex

	unsubscribe func()
}

// Option configures a Service.
type Option func(*Service)

// WithStrictTransitions enables the lead status transition policy.
func WithStrictTransitions(on bool) Option {
	return func(s *Service) {
		s.strict = on
	}
}

// WithClock overrides the time source used for export file names.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New creates a service, indexes the current leads and keeps the index in
// sync with later lead changes until Close.
func New(st *store.Store, idx index.LeadIndex, composer *messaging.Composer, logger *slog.Logger, opts ...Option) (*Service, error) {
	s := &Service{
		store:    st,
		idx:      idx,
		composer: composer,
		logger:   logger,
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	if err := index.Sync(idx, st.Snapshot().Leads, logger); err != nil {
		return nil, fmt.Errorf("crmservice: initial index sync: %w", err)
	}
	s.unsubscribe = st.Subscribe(s.onChange)
	return s, nil
}

// Close stops index maintenance.
func (s *Service) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

// Store exposes the underlying store for subscribers.
func (s *Service) Store() *store.Store { return s.store }

// onChange mirrors lead changes into the search index. It runs under the
// store's writer lock.
func (s *Service) onChange(c store.Change) {
	var err error
	switch c.Topic {
	case store.TopicLeadCreated, store.TopicLeadUpdated, store.TopicCommunicationCreated:
		for _, l := range c.Snapshot.Leads {
			if l.ID == c.ID {
				err = s.idx.UpsertLead(l)
				break
			}
		}
	case store.TopicLeadDeleted:
		err = s.idx.DeleteLead(c.ID)
	case store.TopicLeadsReplaced:
		err = index.Sync(s.idx, c.Snapshot.Leads, s.logger)
	default:
		return
	}
	if err != nil {
		s.logger.Warn("crmservice: index update failed",
			slog.String("topic", string(c.Topic)),
			slog.String("id", c.ID),
			slog.String("error", err.Error()))
	}
}

// --- Leads ---

// ListLeads returns the leads matching f in collection order.
func (s *Service) ListLeads(_ context.Context, f report.Filter) []models.Lead {
	return nonNilSlice(f.Apply(s.store.Snapshot().Leads))
}

// GetLead returns one lead.
func (s *Service) GetLead(_ context.Context, id string) (models.Lead, error) {
	l, ok := s.store.Lead(id)
	if !ok {
		return models.Lead{}, apperr.ErrNotFound
	}
	return l, nil
}

// CreateLead adds a lead. Empty status, source and property type default to
// new, other and apartment.
func (s *Service) CreateLead(_ context.Context, l models.Lead) (models.Lead, error) {
	if strings.TrimSpace(l.Name) == "" {
		return models.Lead{}, fmt.Errorf("name is required: %w", apperr.ErrInvalidInput)
	}
	if l.Status == "" {
		l.Status = models.StatusNew
	}
	if l.Source == "" {
		l.Source = models.SourceOther
	}
	if l.PropertyType == "" {
		l.PropertyType = models.PropertyApartment
	}
	return s.store.AddLead(l), nil
}

// UpdateLead merges patch into a lead. With strict transitions enabled a
// status change must be allowed by models.LeadStatus.CanTransitionTo.
func (s *Service) UpdateLead(_ context.Context, id string, patch store.LeadPatch) (models.Lead, error) {
	if patch.Status != nil {
		s.statusMu.Lock()
		defer s.statusMu.Unlock()

		cur, ok := s.store.Lead(id)
		if !ok {
			return models.Lead{}, apperr.ErrNotFound
		}
		if s.strict && !cur.Status.CanTransitionTo(*patch.Status) {
			return models.Lead{}, fmt.Errorf("%s -> %s: %w", cur.Status, *patch.Status, apperr.ErrInvalidTransition)
		}
	}
	l, ok := s.store.UpdateLead(id, patch)
	if !ok {
		return models.Lead{}, apperr.ErrNotFound
	}
	return l, nil
}

// UpdateLeadStatus is UpdateLead with only the status set.
func (s *Service) UpdateLeadStatus(ctx context.Context, id string, status models.LeadStatus) (models.Lead, error) {
	if !status.Valid() {
		return models.Lead{}, fmt.Errorf("unknown status %q: %w", status, apperr.ErrInvalidInput)
	}
	return s.UpdateLead(ctx, id, store.LeadPatch{Status: &status})
}

// DeleteLead removes a lead. Agents that pointed at it are untouched.
func (s *Service) DeleteLead(_ context.Context, id string) error {
	if s.store.DeleteLead(id) == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// LogCommunication appends a communication (for example a call note or an
// inbound message) to a lead's history.
func (s *Service) LogCommunication(_ context.Context, leadID string, c models.Communication) (models.Lead, error) {
	if !c.Type.Valid() {
		return models.Lead{}, fmt.Errorf("unknown channel %q: %w", c.Type, apperr.ErrInvalidInput)
	}
	if c.Direction == "" {
		c.Direction = models.DirectionOutbound
	}
	if !c.Direction.Valid() {
		return models.Lead{}, fmt.Errorf("unknown direction %q: %w", c.Direction, apperr.ErrInvalidInput)
	}
	l, ok := s.store.AddCommunication(leadID, c)
	if !ok {
		return models.Lead{}, apperr.ErrNotFound
	}
	return l, nil
}

// SendMessage composes an outbound message through the composer.
func (s *Service) SendMessage(ctx context.Context, leadID string, channel models.ChannelType, message string) (models.Communication, error) {
	if _, ok := s.store.Lead(leadID); !ok {
		return models.Communication{}, apperr.ErrNotFound
	}
	return s.composer.Send(ctx, leadID, channel, message)
}

// MessageTemplates returns the quick message templates.
func (s *Service) MessageTemplates(_ context.Context) []messaging.Template {
	return messaging.Templates()
}

// SearchLeads runs a free-text query against the lead index.
func (s *Service) SearchLeads(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query is required: %w", apperr.ErrInvalidInput)
	}
	res, err := s.idx.Search(query, limit)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(res), nil
}

// ExportCSV renders the leads matching f and the download file name.
func (s *Service) ExportCSV(_ context.Context, f report.Filter) (name, content string) {
	return leadcsv.FileName(s.now()), leadcsv.Export(f.Apply(s.store.Snapshot().Leads))
}

// ImportCSV adds every valid row of a CSV stream as a new lead.
func (s *Service) ImportCSV(r io.Reader) (leadcsv.Summary, error) {
	sum, err := leadcsv.Import(r, s.store)
	if err != nil {
		return sum, fmt.Errorf("import: %w: %w", err, apperr.ErrInvalidInput)
	}
	return sum, nil
}

// --- Reports ---

// Stats returns the dashboard figures.
func (s *Service) Stats(_ context.Context) report.DashboardStats {
	return report.Stats(s.store.Snapshot().Leads)
}

// RecentLeads returns the n most recently created leads.
func (s *Service) RecentLeads(_ context.Context, n int) []models.Lead {
	return nonNilSlice(report.RecentLeads(s.store.Snapshot().Leads, n))
}

// RecentCommunications returns up to n leads with history, each with its
// last perLead messages.
func (s *Service) RecentCommunications(_ context.Context, n, perLead int) []report.LeadCommunications {
	return report.RecentCommunications(s.store.Snapshot().Leads, n, perLead)
}

// Board returns the kanban columns.
func (s *Service) Board(_ context.Context) []report.Column {
	return report.Board(s.store.Snapshot().Leads)
}

// Analytics returns the breakdowns for the analytics page.
func (s *Service) Analytics(_ context.Context) report.Analytics {
	snap := s.store.Snapshot()
	return report.Analyze(snap.Leads, snap.Agents)
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
