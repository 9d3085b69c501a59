package crmservice

import (
	"context"
	"fmt"
	"strings"

	"github.com/starford/propdesk/internal/apperr"
	"github.com/starford/propdesk/internal/models"
	"github.com/starford/propdesk/internal/store"
)

// --- Agents ---

// ListAgents returns every agent in collection order.
func (s *Service) ListAgents(_ context.Context) []models.Agent {
	return nonNilSlice(s.store.Snapshot().Agents)
}

// GetAgent returns one agent.
func (s *Service) GetAgent(_ context.Context, id string) (models.Agent, error) {
	a, ok := s.store.Agent(id)
	if !ok {
		return models.Agent{}, apperr.ErrNotFound
	}
	return a, nil
}

// CreateAgent adds an agent. An empty role defaults to agent.
func (s *Service) CreateAgent(_ context.Context, a models.Agent) (models.Agent, error) {
	if strings.TrimSpace(a.Name) == "" {
		return models.Agent{}, fmt.Errorf("name is required: %w", apperr.ErrInvalidInput)
	}
	if a.Role == "" {
		a.Role = models.RoleAgent
	}
	return s.store.AddAgent(a), nil
}

// UpdateAgent merges patch into an agent.
func (s *Service) UpdateAgent(_ context.Context, id string, patch store.AgentPatch) (models.Agent, error) {
	a, ok := s.store.UpdateAgent(id, patch)
	if !ok {
		return models.Agent{}, apperr.ErrNotFound
	}
	return a, nil
}

// DeleteAgent removes an agent. Leads assigned to it keep the dangling id.
func (s *Service) DeleteAgent(_ context.Context, id string) error {
	if s.store.DeleteAgent(id) == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// --- Properties ---

// ListProperties returns every property listing in collection order.
func (s *Service) ListProperties(_ context.Context) []models.Property {
	return nonNilSlice(s.store.Snapshot().Properties)
}

// GetProperty returns one property listing.
func (s *Service) GetProperty(_ context.Context, id string) (models.Property, error) {
	p, ok := s.store.Property(id)
	if !ok {
		return models.Property{}, apperr.ErrNotFound
	}
	return p, nil
}

// CreateProperty adds a property listing.
func (s *Service) CreateProperty(_ context.Context, p models.Property) (models.Property, error) {
	if strings.TrimSpace(p.Title) == "" {
		return models.Property{}, fmt.Errorf("title is required: %w", apperr.ErrInvalidInput)
	}
	return s.store.AddProperty(p), nil
}

// UpdateProperty merges patch into a property listing.
func (s *Service) UpdateProperty(_ context.Context, id string, patch store.PropertyPatch) (models.Property, error) {
	p, ok := s.store.UpdateProperty(id, patch)
	if !ok {
		return models.Property{}, apperr.ErrNotFound
	}
	return p, nil
}

// DeleteProperty removes a property listing.
func (s *Service) DeleteProperty(_ context.Context, id string) error {
	if s.store.DeleteProperty(id) == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// --- Session ---

// CurrentUser returns the signed-in user.
func (s *Service) CurrentUser(_ context.Context) (models.User, error) {
	u := s.store.User()
	if u == nil {
		return models.User{}, apperr.ErrNotFound
	}
	return *u, nil
}

// SignIn replaces the signed-in user.
func (s *Service) SignIn(_ context.Context, u models.User) (models.User, error) {
	if strings.TrimSpace(u.Name) == "" {
		return models.User{}, fmt.Errorf("name is required: %w", apperr.ErrInvalidInput)
	}
	s.store.SetUser(&u)
	return u, nil
}

// Logout clears the signed-in user.
func (s *Service) Logout(_ context.Context) {
	s.store.Logout()
}

// Preferences returns the UI preferences.
func (s *Service) Preferences(_ context.Context) models.Preferences {
	return s.store.Preferences()
}

// UpdatePreferences applies the given fields. Nil fields are left alone.
func (s *Service) UpdatePreferences(_ context.Context, lang *models.Language, notifications *bool) (models.Preferences, error) {
	if lang != nil && !lang.Valid() {
		return models.Preferences{}, fmt.Errorf("unknown language %q: %w", *lang, apperr.ErrInvalidInput)
	}
	if lang != nil {
		s.store.SetLanguage(*lang)
	}
	if notifications != nil {
		s.store.SetNotifications(*notifications)
	}
	return s.store.Preferences(), nil
}
