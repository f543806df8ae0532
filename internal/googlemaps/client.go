// Package googlemaps implements the Google Maps Address Validation API
// backend. It handles both US (with USPS CASS) and international addresses
// and is the default international-capable provider.
package googlemaps

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/skellish-aws/kellish-yir-website/internal/geonorm"
	"github.com/skellish-aws/kellish-yir-website/internal/pkg/httpretry"
	"github.com/skellish-aws/kellish-yir-website/internal/secrets"
	"github.com/skellish-aws/kellish-yir-website/internal/validation"
)

const defaultTimeout = 30 * time.Second

const defaultBaseURL = "https://addressvalidation.googleapis.com"

// Client is a Google Maps Address Validation API client.
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
func (c *Client) Name() string { return "googlemaps" }

// buildRequest shapes an AddressInput into the API's postalAddress form:
// line-based addressLines plus discrete locality/area/postal fields, with
// CASS enabled for domestic input.
func buildRequest(addr validation.AddressInput) validateRequest {
	formatted := postalAddress{}
	if addr.Address1 != "" {
		formatted.AddressLines = append(formatted.AddressLines, addr.Address1)
	}
	if addr.Address2 != "" {
		formatted.AddressLines = append(formatted.AddressLines, addr.Address2)
	}
	formatted.Locality = addr.City
	formatted.AdministrativeArea = addr.State
	formatted.PostalCode = addr.Zipcode
	if addr.Country != "" {
		formatted.RegionCode = geonorm.CountryCode(addr.Country)
	}

	return validateRequest{
		Address:        formatted,
		EnableUspsCass: geonorm.IsDomestic(addr.Country),
	}
}

// Validate implements validation.Provider.
func (c *Client) Validate(ctx context.Context, addr validation.AddressInput) (*validation.Result, error) {
	apiKey, err := c.secrets.Get(ctx, secrets.ParamGoogleMapsAPIKey)
	if err != nil {
		return nil, fmt.Errorf("google maps api key: %w", err)
	}

	payload, err := json.Marshal(buildRequest(addr))
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	url := c.baseURL + "/v1:validateAddress?key=" + apiKey
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Retries exhausted on a network-level failure
		return validation.ErrorResult(fmt.Sprintf("Google Maps validation failed: %v", err)), nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		// Exhausted retries on rate limiting: the queue's redrive will
		// bring this item back later.
		return validation.ErrorResult("Google Maps rate limit exceeded, will retry later"), nil
	}
	if resp.StatusCode != http.StatusOK {
		return validation.ErrorResult(errorMessage(resp.StatusCode, body)), nil
	}

	var parsed validateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return validation.ErrorResult(fmt.Sprintf("Google Maps returned unparseable response: %v", err)), nil
	}

	return mapResult(&parsed, addr), nil
}

// errorMessage maps a non-2xx response to a user-facing message, preferring
// the structured error body when Google sent one.
func errorMessage(status int, body []byte) string {
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		return fmt.Sprintf("Google Maps validation failed: %s", apiErr.Error.Message)
	}
	if len(body) > 500 {
		body = body[:500]
	}
	return fmt.Sprintf("Google Maps API error (%d): %s", status, string(body))
}

// mapResult converts the raw response into the canonical result. A missing
// result means the address could not be examined at all.
func mapResult(parsed *validateResponse, addr validation.AddressInput) *validation.Result {
	if parsed.Result == nil {
		return validation.InvalidResult("Address validation failed - no result from Google Maps")
	}
	r := parsed.Result

	var pa postalAddress
	if r.Address != nil && r.Address.PostalAddress != nil {
		pa = *r.Address.PostalAddress
	}

	// Standardized components, falling back to the raw input per field
	address1, address2 := addr.Address1, addr.Address2
	if len(pa.AddressLines) > 0 {
		address1 = pa.AddressLines[0]
	}
	if len(pa.AddressLines) > 1 {
		address2 = pa.AddressLines[1]
	}
	city := pa.Locality
	if city == "" {
		city = addr.City
	}
	state := pa.AdministrativeArea
	if state == "" {
		state = addr.State
	}
	zipcode := pa.PostalCode
	if zipcode == "" {
		zipcode = addr.Zipcode
	}

	country := addr.Country
	if country == "" && pa.RegionCode != "" {
		if name := geonorm.CountryName(pa.RegionCode); name != "" {
			country = name
		} else {
			country = pa.RegionCode
		}
	}

	deliverable := isDeliverable(r)
	result := &validation.Result{
		Status:      validation.StatusInvalid,
		Message:     "Address found but may not be deliverable",
		CountryCode: pa.RegionCode,
		ValidatedAddress: &validation.Address{
			Address1: address1,
			Address2: address2,
			City:     city,
			State:    state,
			Zipcode:  zipcode,
			Country:  country,
		},
	}
	if deliverable {
		result.Status = validation.StatusValid
		result.Message = "Address validated by Google Maps"
	}
	return result
}
