package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/skellish-aws/kellish-yir-website/internal/validation"
)

// QueueValidation accepts one validation request or an array of them and
// puts each on the queue. A lone request goes out as a single send; arrays
// are batched. Records are marked queued before the response is written;
// validation results land asynchronously via the worker.
//
//	POST /api/validation/queue
func (h *Handlers) QueueValidation(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Could not read request body")
		return
	}

	reqs, err := decodeRequests(body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(reqs) == 0 {
		respondError(w, http.StatusBadRequest, "No addresses to queue")
		return
	}
	for _, req := range reqs {
		if req.RecipientID == "" || strings.TrimSpace(req.Address1) == "" {
			respondError(w, http.StatusBadRequest, "recipientId and address1 are required for every entry")
			return
		}
	}

	if len(reqs) == 1 {
		if err := h.enqueuer.Enqueue(r.Context(), reqs[0]); err != nil {
			respondSafeError(w, http.StatusInternalServerError, err, "Could not queue the request")
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "queued": 1})
		return
	}

	failed, err := h.enqueuer.EnqueueBatch(r.Context(), reqs)
	if len(failed) == len(reqs) {
		respondSafeError(w, http.StatusInternalServerError, err, "Could not queue the request")
		return
	}

	resp := map[string]interface{}{
		"success": true,
		"queued":  len(reqs) - len(failed),
	}
	if len(failed) > 0 {
		resp["failed"] = failed
	}
	respondJSON(w, http.StatusOK, resp)
}

// decodeRequests accepts either a single request object or an array.
func decodeRequests(body []byte) ([]validation.Request, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var reqs []validation.Request
		if err := json.Unmarshal(trimmed, &reqs); err != nil {
			return nil, err
		}
		return reqs, nil
	}
	var req validation.Request
	if err := json.Unmarshal(trimmed, &req); err != nil {
		return nil, err
	}
	return []validation.Request{req}, nil
}
