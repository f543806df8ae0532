// Package httpretry provides an HTTP client with automatic retry on
// transient failures, used by every address validation provider client.
package httpretry

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// DefaultSchedule is the backoff applied between attempts. The delays are
// fixed and non-decreasing so a worker's total runtime stays inside the
// queue's visibility timeout.
var DefaultSchedule = []time.Duration{1 * time.Second, 5 * time.Second, 30 * time.Second}

// HTTPDoer is the interface for executing HTTP requests.
// Both *http.Client and *RetryClient satisfy this interface.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RetryClient wraps an HTTPDoer with bounded retries on transient failures.
type RetryClient struct {
	client   HTTPDoer
	schedule []time.Duration
	sleep    func(time.Duration) // overridable in tests
}

// NewRetryClient creates a RetryClient that wraps the given HTTPDoer.
// If client is nil, a default http.Client with 30s timeout is used.
// If schedule is nil, DefaultSchedule applies; len(schedule) is the number
// of retry attempts after the initial request.
func NewRetryClient(client HTTPDoer, schedule []time.Duration) *RetryClient {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if schedule == nil {
		schedule = DefaultSchedule
	}
	return &RetryClient{
		client:   client,
		schedule: schedule,
		sleep:    nil,
	}
}

// Do executes the HTTP request with retry logic.
// It retries on retryable status codes (408, 429, 5xx) and transient
// network/timeout errors. It does NOT retry on other client errors
// (400, 401, 403, 404) or context cancellation.
// On the final attempt, it returns the response as-is so the caller
// can inspect the status code and body.
func (rc *RetryClient) Do(req *http.Request) (*http.Response, error) {
	var lastErr error
	maxRetries := len(rc.schedule)

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if req.Context().Err() != nil {
			if lastErr != nil {
				return nil, lastErr
			}
			return nil, req.Context().Err()
		}

		// Backoff before retry (skip on first attempt)
		if attempt > 0 {
			// Reset request body for retry if applicable
			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, fmt.Errorf("httpretry: failed to reset request body: %w", err)
				}
				req.Body = body
			}

			delay := rc.schedule[attempt-1]
			log.Printf("httpretry: retry attempt %d/%d for %s %s%s (waiting %s)",
				attempt, maxRetries, req.Method, req.URL.Host, req.URL.Path, delay)

			if rc.sleep != nil {
				rc.sleep(delay)
			} else {
				timer := time.NewTimer(delay)
				select {
				case <-timer.C:
				case <-req.Context().Done():
					timer.Stop()
					if lastErr != nil {
						return nil, lastErr
					}
					return nil, req.Context().Err()
				}
			}
		}

		resp, err := rc.client.Do(req)
		if err != nil {
			lastErr = err
			// If the context was canceled/expired, don't retry
			if req.Context().Err() != nil {
				return nil, err
			}
			// Network/connection/timeout error — retry
			continue
		}

		// Non-retryable status code — return immediately (success or client error)
		if !IsRetryableStatus(resp.StatusCode) {
			return resp, nil
		}

		// If this is the last attempt, return the response as-is
		// so the caller can read the body and handle the error
		if attempt == maxRetries {
			return resp, nil
		}

		// Retryable status code — drain body for connection reuse, then retry
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		lastErr = fmt.Errorf("httpretry: server returned retryable status %d", resp.StatusCode)
	}

	return nil, lastErr
}

// IsRetryableStatus returns true if the HTTP status code indicates a
// transient failure worth retrying.
// Retries: 408 (Request Timeout), 429 (Too Many Requests), and all 5xx.
// Does NOT retry: 400, 401, 402, 403, 404, or any other client error.
func IsRetryableStatus(statusCode int) bool {
	switch {
	case statusCode == http.StatusRequestTimeout: // 408
		return true
	case statusCode == http.StatusTooManyRequests: // 429
		return true
	case statusCode >= 500 && statusCode < 600:
		return true
	default:
		return false
	}
}
