package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ListAgents handles GET /api/agents.
//
//	@Summary		List agents
//	@Tags			agents
//	@Produce		json
//	@Success		200	{array}	models.Agent
//	@Security		BearerAuth
//	@Router			/agents [get]
func (h *Handler) ListAgents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.ListAgents(r.Context()))
}

// GetAgent handles GET /api/agents/{id}.
func (h *Handler) GetAgent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	a, err := h.svc.GetAgent(r.Context(), id)
	if err != nil {
		writeServiceError(w, "get agent", err, slog.String("id", id))
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// CreateAgent handles POST /api/agents.
//
//	@Summary		Create an agent
//	@Tags			agents
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateAgentRequest	true	"Agent to create"
//	@Success		201		{object}	models.Agent
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/agents [post]
func (h *Handler) CreateAgent(w http.ResponseWriter, r *http.Request) {
	var req CreateAgentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	a, err := h.svc.CreateAgent(r.Context(), req.Agent())
	if err != nil {
		writeServiceError(w, "create agent", err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// UpdateAgent handles PATCH /api/agents/{id}.
func (h *Handler) UpdateAgent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req UpdateAgentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	a, err := h.svc.UpdateAgent(r.Context(), id, req.AgentPatch)
	if err != nil {
		writeServiceError(w, "update agent", err, slog.String("id", id))
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// DeleteAgent handles DELETE /api/agents/{id}. Leads keep their
// assignment to the removed agent.
func (h *Handler) DeleteAgent(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, "delete agent", h.svc.DeleteAgent)
}

// ListProperties handles GET /api/properties.
//
//	@Summary		List property listings
//	@Tags			properties
//	@Produce		json
//	@Success		200	{array}	models.Property
//	@Security		BearerAuth
//	@Router			/properties [get]
func (h *Handler) ListProperties(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.ListProperties(r.Context()))
}

// GetProperty handles GET /api/properties/{id}.
func (h *Handler) GetProperty(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := h.svc.GetProperty(r.Context(), id)
	if err != nil {
		writeServiceError(w, "get property", err, slog.String("id", id))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// CreateProperty handles POST /api/properties.
//
//	@Summary		Create a property listing
//	@Tags			properties
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreatePropertyRequest	true	"Listing to create"
//	@Success		201		{object}	models.Property
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/properties [post]
func (h *Handler) CreateProperty(w http.ResponseWriter, r *http.Request) {
	var req CreatePropertyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.svc.CreateProperty(r.Context(), req.Property())
	if err != nil {
		writeServiceError(w, "create property", err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// UpdateProperty handles PATCH /api/properties/{id}.
func (h *Handler) UpdateProperty(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req UpdatePropertyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.svc.UpdateProperty(r.Context(), id, req.PropertyPatch)
	if err != nil {
		writeServiceError(w, "update property", err, slog.String("id", id))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// DeleteProperty handles DELETE /api/properties/{id}.
func (h *Handler) DeleteProperty(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, "delete property", h.svc.DeleteProperty)
}
