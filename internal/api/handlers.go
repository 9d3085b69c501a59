package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/propdesk/internal/crmservice"
	"github.com/starford/propdesk/internal/report"
)

// recentLeadsOnDashboard is how many leads the dashboard lists.
const recentLeadsOnDashboard = 5

// Recent communications list this many leads with their last few messages.
const (
	recentCommunicationLeads = 5
	recentMessagesPerLead    = 2
)

// Handler holds API route handlers.
type Handler struct {
	svc *crmservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *crmservice.Service) *Handler {
	return &Handler{svc: svc}
}

func filterFrom(r *http.Request) report.Filter {
	q := r.URL.Query()
	return report.Filter{Search: q.Get("search"), Status: q.Get("status")}
}

// ListLeads handles GET /api/leads.
//
//	@Summary		List leads with optional search and status filter
//	@Tags			leads
//	@Produce		json
//	@Param			search	query		string	false	"Case-insensitive match on name, email or phone"
//	@Param			status	query		string	false	"Status filter"	Enums(all, new, contacted, scheduled, closed, lost)
//	@Success		200		{object}	LeadListResponse
//	@Security		BearerAuth
//	@Router			/leads [get]
func (h *Handler) ListLeads(w http.ResponseWriter, r *http.Request) {
	leads := h.svc.ListLeads(r.Context(), filterFrom(r))
	writeJSON(w, http.StatusOK, LeadListResponse{Leads: leads, Total: len(leads)})
}

// GetLead handles GET /api/leads/{id}.
//
//	@Summary		Get a single lead
//	@Tags			leads
//	@Produce		json
//	@Param			id	path		string	true	"Lead ID"
//	@Success		200	{object}	models.Lead
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/leads/{id} [get]
func (h *Handler) GetLead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	lead, err := h.svc.GetLead(r.Context(), id)
	if err != nil {
		writeServiceError(w, "get lead", err, slog.String("id", id))
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

// CreateLead handles POST /api/leads.
//
//	@Summary		Create a lead
//	@Tags			leads
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateLeadRequest	true	"Lead to create"
//	@Success		201		{object}	models.Lead
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/leads [post]
func (h *Handler) CreateLead(w http.ResponseWriter, r *http.Request) {
	var req CreateLeadRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	lead, err := h.svc.CreateLead(r.Context(), req.Lead())
	if err != nil {
		writeServiceError(w, "create lead", err)
		return
	}
	writeJSON(w, http.StatusCreated, lead)
}

// UpdateLead handles PATCH /api/leads/{id}.
//
//	@Summary		Partially update a lead
//	@Tags			leads
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Lead ID"
//	@Param			body	body		UpdateLeadRequest	true	"Fields to change"
//	@Success		200		{object}	models.Lead
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/leads/{id} [patch]
func (h *Handler) UpdateLead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req UpdateLeadRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	lead, err := h.svc.UpdateLead(r.Context(), id, req.LeadPatch)
	if err != nil {
		writeServiceError(w, "update lead", err, slog.String("id", id))
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

// DeleteLead handles DELETE /api/leads/{id}.
//
//	@Summary		Delete a lead
//	@Tags			leads
//	@Param			id	path	string	true	"Lead ID"
//	@Success		204	"Lead deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/leads/{id} [delete]
func (h *Handler) DeleteLead(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, "delete lead", h.svc.DeleteLead)
}

// LogCommunication handles POST /api/leads/{id}/communications.
//
//	@Summary		Log a communication on a lead
//	@Tags			leads
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Lead ID"
//	@Param			body	body		CreateCommunicationRequest	true	"Communication"
//	@Success		201		{object}	models.Lead
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/leads/{id}/communications [post]
func (h *Handler) LogCommunication(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req CreateCommunicationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	lead, err := h.svc.LogCommunication(r.Context(), id, req.Communication())
	if err != nil {
		writeServiceError(w, "log communication", err, slog.String("id", id))
		return
	}
	writeJSON(w, http.StatusCreated, lead)
}

// SendMessage handles POST /api/leads/{id}/messages.
//
//	@Summary		Send a message to a lead through the composer
//	@Tags			leads
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Lead ID"
//	@Param			body	body		SendMessageRequest	true	"Message"
//	@Success		201		{object}	models.Communication
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/leads/{id}/messages [post]
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req SendMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c, err := h.svc.SendMessage(r.Context(), id, req.Channel, req.Message)
	if err != nil {
		if r.Context().Err() != nil {
			return
		}
		writeServiceError(w, "send message", err, slog.String("id", id))
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// ExportLeads handles GET /api/leads/export.
//
//	@Summary		Download the filtered leads as CSV
//	@Tags			leads
//	@Produce		text/csv
//	@Param			search	query	string	false	"Search filter"
//	@Param			status	query	string	false	"Status filter"
//	@Success		200		{string}	string	"CSV document"
//	@Security		BearerAuth
//	@Router			/leads/export [get]
func (h *Handler) ExportLeads(w http.ResponseWriter, r *http.Request) {
	name, content := h.svc.ExportCSV(r.Context(), filterFrom(r))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(content))
}

// Board handles GET /api/leads/board.
//
//	@Summary		Leads grouped by status for the kanban board
//	@Tags			leads
//	@Produce		json
//	@Success		200	{object}	BoardResponse
//	@Security		BearerAuth
//	@Router			/leads/board [get]
func (h *Handler) Board(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, BoardResponse{Columns: h.svc.Board(r.Context())})
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across leads, notes and messages
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.SearchLeads(r.Context(), q, limit)
	if err != nil {
		writeServiceError(w, "search", err, slog.String("query", q))
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// Stats handles GET /api/stats.
//
//	@Summary		Dashboard figures and recent leads
//	@Tags			reports
//	@Produce		json
//	@Success		200	{object}	StatsResponse
//	@Security		BearerAuth
//	@Router			/stats [get]
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatsResponse{
		DashboardStats: h.svc.Stats(r.Context()),
		RecentLeads:    h.svc.RecentLeads(r.Context(), recentLeadsOnDashboard),
	})
}

// MessageTemplates handles GET /api/messages/templates.
//
//	@Summary		Quick message templates
//	@Tags			messages
//	@Produce		json
//	@Success		200	{object}	TemplatesResponse
//	@Security		BearerAuth
//	@Router			/messages/templates [get]
func (h *Handler) MessageTemplates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, TemplatesResponse{Templates: h.svc.MessageTemplates(r.Context())})
}

// RecentCommunications handles GET /api/communications/recent.
//
//	@Summary		Leads with recent message history
//	@Tags			messages
//	@Produce		json
//	@Success		200	{object}	RecentCommunicationsResponse
//	@Security		BearerAuth
//	@Router			/communications/recent [get]
func (h *Handler) RecentCommunications(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, RecentCommunicationsResponse{
		Leads: h.svc.RecentCommunications(r.Context(), recentCommunicationLeads, recentMessagesPerLead),
	})
}

// Analytics handles GET /api/analytics.
//
//	@Summary		Lead breakdowns and agent performance
//	@Tags			reports
//	@Produce		json
//	@Success		200	{object}	report.Analytics
//	@Security		BearerAuth
//	@Router			/analytics [get]
func (h *Handler) Analytics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Analytics(r.Context()))
}

func (h *Handler) deleteByID(w http.ResponseWriter, r *http.Request, op string, del func(context.Context, string) error) {
	id := chi.URLParam(r, "id")
	if err := del(r.Context(), id); err != nil {
		writeServiceError(w, op, err, slog.String("id", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
