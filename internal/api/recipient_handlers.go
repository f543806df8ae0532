package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/skellish-aws/kellish-yir-website/internal/storage"
	"github.com/skellish-aws/kellish-yir-website/internal/validation"
)

// ListRecipients returns every recipient record.
//
//	GET /api/recipients
func (h *Handlers) ListRecipients(w http.ResponseWriter, r *http.Request) {
	recipients, err := h.store.ListRecipients(r.Context())
	if err != nil {
		respondSafeError(w, http.StatusInternalServerError, err, safeErrorMessage(http.StatusInternalServerError, err))
		return
	}
	if recipients == nil {
		recipients = []storage.Recipient{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"recipients": recipients,
		"count":      len(recipients),
	})
}

// GetRecipient returns one recipient by id.
//
//	GET /api/recipients/{id}
func (h *Handlers) GetRecipient(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	recipient, err := h.store.GetRecipient(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Recipient not found")
			return
		}
		respondSafeError(w, http.StatusInternalServerError, err, safeErrorMessage(http.StatusInternalServerError, err))
		return
	}
	respondJSON(w, http.StatusOK, recipient)
}

// CreateRecipient adds a recipient. The record starts in the pending
// validation state; validation runs only when explicitly queued.
//
//	POST /api/recipients
func (h *Handlers) CreateRecipient(w http.ResponseWriter, r *http.Request) {
	var recipient storage.Recipient
	if err := json.NewDecoder(r.Body).Decode(&recipient); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(recipient.FirstName) == "" && strings.TrimSpace(recipient.MailingName) == "" {
		respondError(w, http.StatusBadRequest, "firstName or mailingName is required")
		return
	}

	if err := h.store.CreateRecipient(r.Context(), &recipient); err != nil {
		respondSafeError(w, http.StatusInternalServerError, err, safeErrorMessage(http.StatusInternalServerError, err))
		return
	}
	respondJSON(w, http.StatusCreated, recipient)
}

// UpdateRecipientAddress replaces a recipient's raw address. The edit
// resets the validation state to pending and clears stale validated fields.
//
//	PUT /api/recipients/{id}/address
func (h *Handlers) UpdateRecipientAddress(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var addr validation.AddressInput
	if err := json.NewDecoder(r.Body).Decode(&addr); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(addr.Address1) == "" {
		respondError(w, http.StatusBadRequest, "address1 is required")
		return
	}

	if err := h.store.UpdateRecipientAddress(r.Context(), id, addr); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Recipient not found")
			return
		}
		respondSafeError(w, http.StatusInternalServerError, err, safeErrorMessage(http.StatusInternalServerError, err))
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"id":     id,
		"status": string(storage.StatusPending),
	})
}

// OverrideValidation pins a recipient's validation state so queued or
// future validation runs leave it alone. Used when the admin knows an
// address is good despite what the providers say.
//
//	POST /api/recipients/{id}/override
func (h *Handlers) OverrideValidation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if body.Message == "" {
		body.Message = "Validation overridden by admin"
	}

	if err := h.store.OverrideValidation(r.Context(), id, body.Message); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Recipient not found")
			return
		}
		respondSafeError(w, http.StatusInternalServerError, err, safeErrorMessage(http.StatusInternalServerError, err))
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"id":     id,
		"status": string(storage.StatusOverridden),
	})
}

// DeleteRecipient removes a recipient record.
//
//	DELETE /api/recipients/{id}
func (h *Handlers) DeleteRecipient(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.DeleteRecipient(r.Context(), id); err != nil {
		respondSafeError(w, http.StatusInternalServerError, err, safeErrorMessage(http.StatusInternalServerError, err))
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"id": id, "deleted": "true"})
}
