package api

import (
	"encoding/json"
	"net/http"
)

// ValidateAccessCode checks a visitor's invitation code without consuming
// it. Bad codes are a normal outcome, so the response is always 200 with a
// valid flag; only a backend fault produces a 5xx.
//
//	POST /access-codes/validate
func (h *Handlers) ValidateAccessCode(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"valid":   false,
			"exists":  false,
			"message": "Invalid invitation code.",
		})
		return
	}

	outcome, err := h.codes.Check(r.Context(), body.Code)
	if err != nil {
		respondSafeError(w, http.StatusInternalServerError, err, "Could not verify the code, please try again.")
		return
	}
	respondJSON(w, http.StatusOK, outcome)
}

// RedeemAccessCode validates and consumes an invitation code in one step.
//
//	POST /access-codes/redeem
func (h *Handlers) RedeemAccessCode(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Code   string `json:"code"`
		UsedBy string `json:"usedBy"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"valid":   false,
			"exists":  false,
			"message": "Invalid invitation code.",
		})
		return
	}

	outcome, err := h.codes.Redeem(r.Context(), body.Code, body.UsedBy)
	if err != nil {
		respondSafeError(w, http.StatusInternalServerError, err, "Could not verify the code, please try again.")
		return
	}
	respondJSON(w, http.StatusOK, outcome)
}

// CreateAccessCodes bulk-generates invitation codes, optionally assigned to
// named recipients.
//
//	POST /api/access-codes
func (h *Handlers) CreateAccessCodes(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Count          int      `json:"count"`
		RecipientNames []string `json:"recipientNames"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if body.Count <= 0 && len(body.RecipientNames) > 0 {
		body.Count = len(body.RecipientNames)
	}
	if body.Count <= 0 || body.Count > 1000 {
		respondError(w, http.StatusBadRequest, "count must be between 1 and 1000")
		return
	}

	records, err := h.codes.CreateBatch(r.Context(), body.Count, body.RecipientNames)
	if err != nil {
		respondSafeError(w, http.StatusInternalServerError, err, safeErrorMessage(http.StatusInternalServerError, err))
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"codes": records,
		"count": len(records),
	})
}
