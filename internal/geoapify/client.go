// Package geoapify implements the Geoapify geocoding backend. Geoapify has
// no carrier deliverability data; its geocoding confidence stands in for
// it, thresholded at 0.5. The free tier allows 3,000 requests per day.
package geoapify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/skellish-aws/kellish-yir-website/internal/pkg/httpretry"
	"github.com/skellish-aws/kellish-yir-website/internal/secrets"
	"github.com/skellish-aws/kellish-yir-website/internal/validation"
)

const defaultBaseURL = "https://api.geoapify.com"

// deliverableConfidence is the minimum geocoding confidence treated as a
// deliverable match.
const deliverableConfidence = 0.5

// maxAlternatives caps the secondary matches surfaced to the UI.
const maxAlternatives = 5

const defaultTimeout = 30 * time.Second

// errRateLimited marks a 429 that survived the retry schedule.
var errRateLimited = errors.New("geoapify rate limit exceeded")

// Client is a Geoapify geocoding and autocomplete client.
type Client struct {
	baseURL    string
	secrets    *secrets.Cache
	base       *http.Client
	httpClient httpretry.HTTPDoer
}

// NewClient creates a client using the shared credential cache.
func NewClient(sc *secrets.Cache) *Client {
	base := &http.Client{Timeout: defaultTimeout}
	return &Client{
		baseURL:    defaultBaseURL,
		secrets:    sc,
		base:       base,
		httpClient: httpretry.NewRetryClient(base, nil),
	}
}

// SetBaseURL overrides the API endpoint. Used in tests.
func (c *Client) SetBaseURL(u string) { c.baseURL = u }

// SetTimeout sets the per-request HTTP timeout.
func (c *Client) SetTimeout(d time.Duration) { c.base.Timeout = d }

// Name implements validation.Provider.
func (c *Client) Name() string { return "geoapify" }

// queryString joins the address fields into the single free-text query the
// geocoder expects.
func queryString(addr validation.AddressInput) string {
	parts := make([]string, 0, 6)
	for _, p := range []string{addr.Address1, addr.Address2, addr.City, addr.State, addr.Zipcode, addr.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	apiKey, err := c.secrets.Get(ctx, secrets.ParamGeoapifyAPIKey)
	if err != nil {
		return nil, fmt.Errorf("geoapify api key: %w", err)
	}
	params.Set("apiKey", apiKey)
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, errRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		if len(body) > 500 {
			body = body[:500]
		}
		return nil, fmt.Errorf("Geoapify API error (%d): %s", resp.StatusCode, string(body))
	}
	return body, nil
}

// Validate implements validation.Provider. The best match becomes the
// primary result; remaining matches are surfaced as ranked alternatives.
func (c *Client) Validate(ctx context.Context, addr validation.AddressInput) (*validation.Result, error) {
	body, err := c.get(ctx, "/v1/geocode/search", url.Values{"text": {queryString(addr)}})
	if errors.Is(err, errRateLimited) {
		// Exhausted retries on the free-tier quota: the queue's redrive
		// will bring the message back later.
		return validation.ErrorResult("Geoapify rate limit exceeded, will retry later"), nil
	}
	if err != nil {
		return validation.ErrorResult(err.Error()), nil
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return validation.ErrorResult(fmt.Sprintf("Geoapify returned unparseable response: %v", err)), nil
	}

	if len(parsed.Results) == 0 {
		return validation.InvalidResult("Address not found or could not be validated"), nil
	}

	primary := mapResult(parsed.Results[0], addr)
	for _, alt := range parsed.Results[1:] {
		if len(primary.Alternatives) == maxAlternatives {
			break
		}
		primary.Alternatives = append(primary.Alternatives, *mapResult(alt, addr))
	}
	return primary, nil
}

// Autocomplete implements validation.Autocompleter.
func (c *Client) Autocomplete(ctx context.Context, query string) ([]validation.Suggestion, error) {
	body, err := c.get(ctx, "/v1/geocode/autocomplete", url.Values{"text": {query}})
	if err != nil {
		return nil, err
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parsing autocomplete response: %w", err)
	}

	suggestions := make([]validation.Suggestion, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		suggestions = append(suggestions, validation.Suggestion{
			Text:      r.Formatted,
			Formatted: r.Formatted,
		})
	}
	return suggestions, nil
}

// mapResult converts one geocoding match into a canonical result.
func mapResult(r searchResult, addr validation.AddressInput) *validation.Result {
	confidence := r.confidence()

	validated := &validation.Address{
		Address1: firstNonEmpty(streetAddress(r), addr.Address1),
		Address2: addr.Address2,
		City:     firstNonEmpty(r.City, addr.City),
		State:    firstNonEmpty(r.State, addr.State),
		Zipcode:  firstNonEmpty(r.Postcode, addr.Zipcode),
		Country:  firstNonEmpty(r.Country, addr.Country),
	}

	result := &validation.Result{
		Confidence:       confidence,
		CountryCode:      strings.ToUpper(r.CountryCode),
		ValidatedAddress: validated,
	}
	if confidence >= deliverableConfidence {
		result.Status = validation.StatusValid
		result.Message = fmt.Sprintf("Address validated by Geoapify (confidence %.2f)", confidence)
	} else {
		result.Status = validation.StatusInvalid
		result.Message = fmt.Sprintf("Address match confidence too low (%.2f)", confidence)
	}
	return result
}

// streetAddress assembles the street line from whichever components the
// match carries.
func streetAddress(r searchResult) string {
	if r.AddressLine1 != "" {
		return r.AddressLine1
	}
	if r.HouseNumber != "" && r.Street != "" {
		return r.HouseNumber + " " + r.Street
	}
	return r.Street
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
