// Package addresszen implements the AddressZen verification backend. It is
// the only provider with all three operations: verify, autocomplete, and
// resolve (expanding an autocomplete suggestion into a full address).
package addresszen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/skellish-aws/kellish-yir-website/internal/geonorm"
	"github.com/skellish-aws/kellish-yir-website/internal/pkg/httpretry"
	"github.com/skellish-aws/kellish-yir-website/internal/secrets"
	"github.com/skellish-aws/kellish-yir-website/internal/validation"
)

const defaultTimeout = 30 * time.Second

const defaultBaseURL = "https://api.addresszen.com"

// Client is an AddressZen API client.
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
func (c *Client) Name() string { return "addresszen" }

// joinQuery builds the single full-address query string.
func joinQuery(addr validation.AddressInput) string {
	parts := make([]string, 0, 5)
	for _, p := range []string{addr.Address1, addr.Address2, addr.City, addr.State, addr.Zipcode} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Validate implements validation.Provider.
func (c *Client) Validate(ctx context.Context, addr validation.AddressInput) (*validation.Result, error) {
	apiKey, err := c.secrets.Get(ctx, secrets.ParamAddressZenAPIKey)
	if err != nil {
		return nil, fmt.Errorf("addresszen api key: %w", err)
	}

	payload, err := json.Marshal(verifyRequest{Query: joinQuery(addr)})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	reqURL := c.baseURL + "/v1/verify/addresses?api_key=" + url.QueryEscape(apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return validation.ErrorResult(fmt.Sprintf("AddressZen validation failed: %v", err)), nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return validation.ErrorResult(errorMessage(resp.StatusCode, body)), nil
	}

	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return validation.ErrorResult(fmt.Sprintf("AddressZen returned unparseable response: %v", err)), nil
	}
	return mapResult(&parsed, addr), nil
}

// mapResult converts the raw verify response into the canonical result.
func mapResult(parsed *apiResponse, addr validation.AddressInput) *validation.Result {
	if parsed.Result == nil {
		msg := parsed.Message
		if msg == "" {
			msg = "Address not found or could not be verified"
		}
		return validation.InvalidResult(msg)
	}

	r := parsed.Result
	match := r.Match
	if match == nil {
		match = &matchInfo{}
	}

	// The carrier DPV flag is the primary deliverability signal; the
	// match_information text is the fallback.
	deliverable := match.DPV == "Y" ||
		strings.Contains(r.MatchInformation, "delivery address was found")

	confidence := 0.0
	if r.Confidence != nil {
		confidence = *r.Confidence
	} else if r.Count == 1 {
		confidence = 1
	}

	countryCode := firstNonEmpty(r.CountryISO2, match.CountryCode, "US")
	country := addr.Country
	if countryCode == "US" {
		country = "United States"
	} else if country == "" {
		if name := geonorm.CountryName(countryCode); name != "" {
			country = name
		}
	}

	validated := &validation.Address{
		Address1: firstNonEmpty(r.AddressLineOne, match.Address1, addr.Address1),
		Address2: firstNonEmpty(r.AddressLineTwo, match.Address2, addr.Address2),
		City:     firstNonEmpty(r.City, match.City, addr.City),
		State:    firstNonEmpty(r.State, match.State, addr.State),
		Zipcode:  firstNonEmpty(r.ZipCode, addr.Zipcode),
		Country:  country,
	}

	result := &validation.Result{
		Confidence:       confidence,
		CountryCode:      countryCode,
		ValidatedAddress: validated,
	}
	if deliverable {
		result.Status = validation.StatusValid
		result.Message = "Address validated by AddressZen"
	} else {
		result.Status = validation.StatusInvalid
		result.Message = firstNonEmpty(r.MatchInformation, "Address found but not confirmed deliverable")
	}
	return result
}

// Autocomplete implements validation.Autocompleter.
func (c *Client) Autocomplete(ctx context.Context, query string) ([]validation.Suggestion, error) {
	body, err := c.get(ctx, "/v1/autocomplete/addresses", url.Values{"q": {query}})
	if err != nil {
		return nil, err
	}

	var parsed autocompleteResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parsing autocomplete response: %w", err)
	}

	raw := parsed.Suggestions
	if parsed.Result != nil {
		raw = parsed.Result.Suggestions
	}
	suggestions := make([]validation.Suggestion, 0, len(raw))
	for _, s := range raw {
		suggestions = append(suggestions, validation.Suggestion{
			ID:        firstNonEmpty(s.PlaceID, s.ID),
			Text:      firstNonEmpty(s.Text, s.Formatted),
			Formatted: s.Formatted,
		})
	}
	return suggestions, nil
}

// Resolve implements validation.Resolver: expands an autocomplete place id
// into a full validated address. Resolved addresses come from the vendor's
// own index, so they are treated as deliverable.
func (c *Client) Resolve(ctx context.Context, suggestionID string) (*validation.Result, error) {
	body, err := c.get(ctx, "/v1/resolve/addresses", url.Values{"place_id": {suggestionID}})
	if err != nil {
		return validation.ErrorResult(err.Error()), nil
	}

	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return validation.ErrorResult(fmt.Sprintf("AddressZen returned unparseable response: %v", err)), nil
	}
	if parsed.Result == nil {
		return validation.InvalidResult("Address not found or could not be resolved"), nil
	}

	r := parsed.Result
	confidence := 1.0
	if r.Confidence != nil {
		confidence = *r.Confidence
	}
	country := ""
	if name := geonorm.CountryName(r.CountryISO2); name != "" {
		country = name
	}
	return &validation.Result{
		Status:      validation.StatusValid,
		Message:     "Address resolved by AddressZen",
		Confidence:  confidence,
		CountryCode: r.CountryISO2,
		ValidatedAddress: &validation.Address{
			Address1: r.AddressLineOne,
			Address2: r.AddressLineTwo,
			City:     r.City,
			State:    r.State,
			Zipcode:  r.ZipCode,
			Country:  country,
		},
	}, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	apiKey, err := c.secrets.Get(ctx, secrets.ParamAddressZenAPIKey)
	if err != nil {
		return nil, fmt.Errorf("addresszen api key: %w", err)
	}
	params.Set("api_key", apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s", errorMessage(resp.StatusCode, body))
	}
	return body, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
