package api

import (
	"net/http"
	"path/filepath"
	"strings"
)

const maxUploadBytes = 10 << 20 // 10 MB

// ImportLeads handles POST /api/leads/import (multipart/form-data, field "file").
//
//	@Summary		Import leads from a CSV upload
//	@Tags			leads
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file	true	"CSV file with a header row"
//	@Success		201		{object}	leadcsv.Summary
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/leads/import [post]
func (h *Handler) ImportLeads(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".csv") {
		writeJSON(w, http.StatusBadRequest, errorBody("only .csv files can be imported"))
		return
	}

	summary, err := h.svc.ImportCSV(file)
	if err != nil {
		writeServiceError(w, "import leads", err)
		return
	}
	writeJSON(w, http.StatusCreated, summary)
}
