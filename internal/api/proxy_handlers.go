package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/skellish-aws/kellish-yir-website/internal/validation"
)

// proxyRequest is the envelope the admin UI sends to the provider proxies.
// action defaults to "validate"; "autocomplete" and "resolve" work only on
// providers that support them.
type proxyRequest struct {
	Action  string                   `json:"action,omitempty"`
	Address *validation.AddressInput `json:"address,omitempty"`
	Query   string                   `json:"query,omitempty"`
	PlaceID string                   `json:"placeId,omitempty"`
}

// ProxyProvider forwards a single validation request to one named provider.
// The browser never talks to the vendors directly: API keys stay
// server-side and responses come back in the canonical result shape.
//
//	POST /api/proxy/{provider}
func (h *Handlers) ProxyProvider(w http.ResponseWriter, r *http.Request) {
	name := strings.ToLower(chi.URLParam(r, "provider"))
	provider, ok := h.providers[name]
	if !ok {
		respondError(w, http.StatusNotFound, "Unknown provider")
		return
	}

	var req proxyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	switch req.Action {
	case "", "validate", "verify":
		h.proxyValidate(w, r, provider, req)
	case "autocomplete":
		h.proxyAutocomplete(w, r, provider, req)
	case "resolve":
		h.proxyResolve(w, r, provider, req)
	default:
		respondError(w, http.StatusBadRequest, "Unknown action")
	}
}

func (h *Handlers) proxyValidate(w http.ResponseWriter, r *http.Request, provider validation.Provider, req proxyRequest) {
	if req.Address == nil || strings.TrimSpace(req.Address.Address1) == "" {
		respondError(w, http.StatusBadRequest, "address with address1 is required")
		return
	}

	result, err := provider.Validate(r.Context(), *req.Address)
	if err != nil {
		respondSafeError(w, http.StatusInternalServerError, err, "Validation service unavailable")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *Handlers) proxyAutocomplete(w http.ResponseWriter, r *http.Request, provider validation.Provider, req proxyRequest) {
	ac, ok := provider.(validation.Autocompleter)
	if !ok {
		respondError(w, http.StatusBadRequest, "Provider does not support autocomplete")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		respondError(w, http.StatusBadRequest, "query is required")
		return
	}

	suggestions, err := ac.Autocomplete(r.Context(), req.Query)
	if err != nil {
		respondSafeError(w, http.StatusInternalServerError, err, "Autocomplete service unavailable")
		return
	}
	if suggestions == nil {
		suggestions = []validation.Suggestion{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"suggestions": suggestions,
	})
}

func (h *Handlers) proxyResolve(w http.ResponseWriter, r *http.Request, provider validation.Provider, req proxyRequest) {
	resolver, ok := provider.(validation.Resolver)
	if !ok {
		respondError(w, http.StatusBadRequest, "Provider does not support resolve")
		return
	}
	if req.PlaceID == "" {
		respondError(w, http.StatusBadRequest, "placeId is required")
		return
	}

	result, err := resolver.Resolve(r.Context(), req.PlaceID)
	if err != nil {
		respondSafeError(w, http.StatusInternalServerError, err, "Resolve service unavailable")
		return
	}
	respondJSON(w, http.StatusOK, result)
}
