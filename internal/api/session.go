package api

import "net/http"

// GetSession handles GET /api/session. 404 means nobody is signed in.
//
//	@Summary		Current user
//	@Tags			session
//	@Produce		json
//	@Success		200	{object}	models.User
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/session [get]
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.CurrentUser(r.Context())
	if err != nil {
		writeServiceError(w, "get session", err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// PutSession handles PUT /api/session.
//
//	@Summary		Replace the signed-in user
//	@Tags			session
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SignInRequest	true	"User"
//	@Success		200		{object}	models.User
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/session [put]
func (h *Handler) PutSession(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	u, err := h.svc.SignIn(r.Context(), req.User())
	if err != nil {
		writeServiceError(w, "sign in", err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// Logout handles POST /api/session/logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.svc.Logout(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// GetPreferences handles GET /api/preferences.
func (h *Handler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Preferences(r.Context()))
}

// PutPreferences handles PUT /api/preferences.
//
//	@Summary		Update language and notification settings
//	@Tags			session
//	@Accept			json
//	@Produce		json
//	@Param			body	body		PreferencesRequest	true	"Preferences"
//	@Success		200		{object}	models.Preferences
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/preferences [put]
func (h *Handler) PutPreferences(w http.ResponseWriter, r *http.Request) {
	var req PreferencesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.svc.UpdatePreferences(r.Context(), req.Language, req.Notifications)
	if err != nil {
		writeServiceError(w, "update preferences", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
