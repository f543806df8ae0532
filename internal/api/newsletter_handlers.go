package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/skellish-aws/kellish-yir-website/internal/storage"
)

// ListNewsletters returns all yearly issues.
//
//	GET /api/newsletters
func (h *Handlers) ListNewsletters(w http.ResponseWriter, r *http.Request) {
	issues, err := h.store.ListNewsletters(r.Context())
	if err != nil {
		respondSafeError(w, http.StatusInternalServerError, err, safeErrorMessage(http.StatusInternalServerError, err))
		return
	}
	if issues == nil {
		issues = []storage.Newsletter{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"newsletters": issues,
		"count":       len(issues),
	})
}

// CreateNewsletter registers a yearly issue's metadata. The PDF and card
// image are uploaded to file storage separately.
//
//	POST /api/newsletters
func (h *Handlers) CreateNewsletter(w http.ResponseWriter, r *http.Request) {
	var issue storage.Newsletter
	if err := json.NewDecoder(r.Body).Decode(&issue); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(issue.Title) == "" {
		respondError(w, http.StatusBadRequest, "title is required")
		return
	}
	if issue.Year < 2000 || issue.Year > 2100 {
		respondError(w, http.StatusBadRequest, "year is out of range")
		return
	}

	if err := h.store.CreateNewsletter(r.Context(), &issue); err != nil {
		respondSafeError(w, http.StatusInternalServerError, err, safeErrorMessage(http.StatusInternalServerError, err))
		return
	}
	respondJSON(w, http.StatusCreated, issue)
}
