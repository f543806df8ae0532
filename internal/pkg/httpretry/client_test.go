package httpretry

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

type fakeDoer struct {
	responses []fakeResponse
	calls     int
}

type fakeResponse struct {
	status int
	err    error
}

func (f *fakeDoer) Do(req *http.Request) (*http.Response, error) {
	idx := f.calls
	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	}
	f.calls++
	r := f.responses[idx]
	if r.err != nil {
		return nil, r.err
	}
	return &http.Response{
		StatusCode: r.status,
		Body:       io.NopCloser(strings.NewReader("{}")),
	}, nil
}

func newRequest(t *testing.T) *http.Request {
	t.Helper()
	req, err := http.NewRequest("GET", "https://api.example.com/v1/thing", nil)
	if err != nil {
		t.Fatal(err)
	}
	return req
}

func TestDoSucceedsAfterRateLimit(t *testing.T) {
	doer := &fakeDoer{responses: []fakeResponse{
		{status: 429},
		{status: 429},
		{status: 200},
	}}

	var delays []time.Duration
	rc := NewRetryClient(doer, []time.Duration{time.Second, 5 * time.Second, 30 * time.Second})
	rc.sleep = func(d time.Duration) { delays = append(delays, d) }

	resp, err := rc.Do(newRequest(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	if doer.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", doer.calls)
	}

	// Backoff delays must follow the schedule and be non-decreasing
	if len(delays) != 2 {
		t.Fatalf("expected 2 backoff delays, got %d", len(delays))
	}
	for i := 1; i < len(delays); i++ {
		if delays[i] < delays[i-1] {
			t.Errorf("backoff delays decreased: %v", delays)
		}
	}
}

func TestDoReturnsFinalResponseOnExhaustion(t *testing.T) {
	doer := &fakeDoer{responses: []fakeResponse{{status: 503}}}
	rc := NewRetryClient(doer, []time.Duration{time.Millisecond, time.Millisecond})
	rc.sleep = func(time.Duration) {}

	resp, err := rc.Do(newRequest(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Last attempt's response comes back so the caller can read the body
	if resp.StatusCode != 503 {
		t.Errorf("expected 503, got %d", resp.StatusCode)
	}
	if doer.calls != 3 {
		t.Errorf("expected 3 attempts (1 initial + 2 retries), got %d", doer.calls)
	}
}

func TestDoDoesNotRetryClientErrors(t *testing.T) {
	for _, status := range []int{400, 401, 402, 403, 404} {
		doer := &fakeDoer{responses: []fakeResponse{{status: status}}}
		rc := NewRetryClient(doer, nil)
		rc.sleep = func(time.Duration) {}

		resp, err := rc.Do(newRequest(t))
		if err != nil {
			t.Fatalf("status %d: unexpected error: %v", status, err)
		}
		if resp.StatusCode != status {
			t.Errorf("expected %d, got %d", status, resp.StatusCode)
		}
		if doer.calls != 1 {
			t.Errorf("status %d: expected 1 attempt, got %d", status, doer.calls)
		}
	}
}

func TestDoRetriesNetworkErrors(t *testing.T) {
	doer := &fakeDoer{responses: []fakeResponse{
		{err: errors.New("connection reset by peer")},
		{status: 200},
	}}
	rc := NewRetryClient(doer, []time.Duration{time.Millisecond, time.Millisecond})
	rc.sleep = func(time.Duration) {}

	resp, err := rc.Do(newRequest(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestDoStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := newRequest(t).WithContext(ctx)
	doer := &fakeDoer{responses: []fakeResponse{{status: 200}}}
	rc := NewRetryClient(doer, nil)

	if _, err := rc.Do(req); err == nil {
		t.Fatal("expected error from canceled context")
	}
	if doer.calls != 0 {
		t.Errorf("expected 0 attempts, got %d", doer.calls)
	}
}

func TestIsRetryableStatus(t *testing.T) {
	retryable := []int{408, 429, 500, 502, 503, 504, 599}
	for _, s := range retryable {
		if !IsRetryableStatus(s) {
			t.Errorf("expected %d to be retryable", s)
		}
	}
	terminal := []int{200, 201, 301, 400, 401, 402, 403, 404, 422}
	for _, s := range terminal {
		if IsRetryableStatus(s) {
			t.Errorf("expected %d to be terminal", s)
		}
	}
}
