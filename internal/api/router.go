package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/propdesk/internal/crmservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *crmservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Route("/leads", func(r chi.Router) {
		r.Get("/", h.ListLeads)
		r.Post("/", h.CreateLead)
		// Static segments first so they are not taken as ids.
		r.Get("/export", h.ExportLeads)
		r.Post("/import", h.ImportLeads)
		r.Get("/board", h.Board)
		r.Get("/{id}", h.GetLead)
		r.Patch("/{id}", h.UpdateLead)
		r.Delete("/{id}", h.DeleteLead)
		r.Post("/{id}/communications", h.LogCommunication)
		r.Post("/{id}/messages", h.SendMessage)
	})

	r.Route("/agents", func(r chi.Router) {
		r.Get("/", h.ListAgents)
		r.Post("/", h.CreateAgent)
		r.Get("/{id}", h.GetAgent)
		r.Patch("/{id}", h.UpdateAgent)
		r.Delete("/{id}", h.DeleteAgent)
	})

	r.Route("/properties", func(r chi.Router) {
		r.Get("/", h.ListProperties)
		r.Post("/", h.CreateProperty)
		r.Get("/{id}", h.GetProperty)
		r.Patch("/{id}", h.UpdateProperty)
		r.Delete("/{id}", h.DeleteProperty)
	})

	r.Get("/messages/templates", h.MessageTemplates)
	r.Get("/communications/recent", h.RecentCommunications)

	r.Get("/search", h.Search)
	r.Get("/stats", h.Stats)
	r.Get("/analytics", h.Analytics)

	r.Get("/session", h.GetSession)
	r.Put("/session", h.PutSession)
	r.Post("/session/logout", h.Logout)
	r.Get("/preferences", h.GetPreferences)
	r.Put("/preferences", h.PutPreferences)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
