package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondSafeError logs the full internal error and sends a sanitized
// message to the client. Internal details (provider URLs, AWS errors, file
// paths) are never leaked to API consumers; the full error goes to the
// server log only.
func respondSafeError(w http.ResponseWriter, status int, internalErr error, publicMsg string) {
	if internalErr != nil {
		log.Printf("ERROR [%d]: %s: %v", status, publicMsg, internalErr)
	}
	respondError(w, status, publicMsg)
}

// safeErrorMessage maps common internal error patterns to public-safe
// messages. 4xx errors are about user input and pass through; 5xx errors
// get a generic message.
func safeErrorMessage(status int, internalErr error) string {
	if status < 500 {
		if internalErr != nil {
			return internalErr.Error()
		}
		return "Bad request"
	}

	if internalErr == nil {
		return "An internal error occurred"
	}

	errStr := strings.ToLower(internalErr.Error())
	switch {
	case strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "dial tcp"):
		return "Service temporarily unavailable"

	case strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded") ||
		strings.Contains(errStr, "context canceled"):
		return "Request timed out"

	case strings.Contains(errStr, "dynamodb") ||
		strings.Contains(errStr, "conditionalcheckfailed") ||
		strings.Contains(errStr, "provisionedthroughput"):
		return "A storage error occurred"

	case strings.Contains(errStr, "sqs") ||
		strings.Contains(errStr, "queue"):
		return "Could not queue the request"

	case strings.Contains(errStr, "ssm") ||
		strings.Contains(errStr, "parameter"):
		return "Service configuration error"

	default:
		return "An internal error occurred"
	}
}
