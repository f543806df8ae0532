package addresszen

import (
	"encoding/json"
	"fmt"
)

// errorBody is the error payload: {code, message}. The code is a
// vendor-specific 4-digit extension of the HTTP status.
type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// errorMessage maps an AddressZen error response to a user-facing message
// using the vendor's error code table. Unrecognized codes fall back to a
// generic message carrying the status and body.
func errorMessage(httpStatus int, body []byte) string {
	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		parsed = errorBody{Message: string(body)}
	}

	switch httpStatus {
	case 402:
		switch parsed.Code {
		case 4020:
			return "AddressZen API key balance depleted. Please purchase more lookups."
		case 4021:
			return "AddressZen daily limit reached. Please wait for the limit to reset or increase your limit."
		}
	case 401:
		switch parsed.Code {
		case 4010:
			return "Invalid AddressZen API key. Please check your API key configuration."
		case 4011:
			return "Requesting URL not on whitelist. Please update allowed URLs in your API key settings."
		}
	case 400:
		if parsed.Message != "" {
			return parsed.Message
		}
		return "Bad request: invalid request format"
	case 404:
		if parsed.Message != "" {
			return parsed.Message
		}
		return "Address not found"
	case 500:
		return "AddressZen server error. Please try again later or contact support."
	case 503:
		return "AddressZen rate limit exceeded (30 requests/second). Please slow down your requests."
	}

	if parsed.Message != "" {
		return parsed.Message
	}
	if len(body) > 500 {
		body = body[:500]
	}
	return fmt.Sprintf("AddressZen API error (%d): %s", httpStatus, string(body))
}
