// Package usps implements the USPS Addresses 3.0 backend — the
// domestic-specialized provider. USPS only covers US addresses, so the
// orchestrator never routes international input here.
package usps

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/skellish-aws/kellish-yir-website/internal/geonorm"
	"github.com/skellish-aws/kellish-yir-website/internal/pkg/httpretry"
	"github.com/skellish-aws/kellish-yir-website/internal/secrets"
	"github.com/skellish-aws/kellish-yir-website/internal/validation"
)

// Host is apis.usps.com (with an 's'), not api.usps.com.
const defaultBaseURL = "https://apis.usps.com"

// tokenRefreshMargin refreshes the OAuth token this long before its actual
// expiry so an in-flight validation never races token expiration.
const tokenRefreshMargin = 5 * time.Minute

const defaultTimeout = 30 * time.Second

// Client is a USPS Addresses 3.0 API client with OAuth client-credentials
// token management.
type Client struct {
	baseURL     string
	secrets     *secrets.Cache
	base        *http.Client
	httpClient  httpretry.HTTPDoer
	tokenClient *http.Client

	mu          sync.Mutex
	tokenSource oauth2.TokenSource
}

// NewClient creates a client using the shared credential cache. The OAuth
// token source is built lazily on first use because the consumer key and
// secret come from the parameter store.
func NewClient(sc *secrets.Cache) *Client {
	base := &http.Client{Timeout: defaultTimeout}
	return &Client{
		baseURL:     defaultBaseURL,
		secrets:     sc,
		base:        base,
		httpClient:  httpretry.NewRetryClient(base, nil),
		tokenClient: &http.Client{Timeout: defaultTimeout},
	}
}

// SetBaseURL overrides the API endpoint. Used in tests.
func (c *Client) SetBaseURL(u string) { c.baseURL = u }

// SetTimeout sets the per-request timeout on both the address API client
// and the OAuth token client.
func (c *Client) SetTimeout(d time.Duration) {
	c.base.Timeout = d
	c.tokenClient.Timeout = d
}

// Name implements validation.Provider.
func (c *Client) Name() string { return "usps" }

// token returns a valid bearer token, fetching credentials and minting a
// token source on first use.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.tokenSource == nil {
		consumerKey, err := c.secrets.Get(ctx, secrets.ParamUSPSConsumerKey)
		if err != nil {
			return "", fmt.Errorf("usps consumer key: %w", err)
		}
		consumerSecret, err := c.secrets.Get(ctx, secrets.ParamUSPSConsumerSecret)
		if err != nil {
			return "", fmt.Errorf("usps consumer secret: %w", err)
		}

		cfg := &clientcredentials.Config{
			ClientID:     consumerKey,
			ClientSecret: consumerSecret,
			TokenURL:     c.baseURL + "/oauth2/v3/token",
			AuthStyle:    oauth2.AuthStyleInParams,
		}
		// The token source outlives any single validation call, so it is
		// bound to its own timeout-bearing client rather than the caller's
		// request context.
		tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, c.tokenClient)
		c.tokenSource = oauth2.ReuseTokenSourceWithExpiry(nil, cfg.TokenSource(tokenCtx), tokenRefreshMargin)
	}

	tok, err := c.tokenSource.Token()
	if err != nil {
		return "", fmt.Errorf("usps oauth token: %w", err)
	}
	return tok.AccessToken, nil
}

// buildQuery shapes an AddressInput into the API's discrete GET query
// parameters. streetAddress and state are required by the API.
func buildQuery(addr validation.AddressInput) url.Values {
	params := url.Values{}
	params.Set("streetAddress", addr.Address1)
	params.Set("state", geonorm.StateAbbreviation(addr.State))
	if addr.Address2 != "" {
		params.Set("secondaryAddress", addr.Address2)
	}
	if addr.City != "" {
		params.Set("city", addr.City)
	}
	if addr.Zipcode != "" {
		params.Set("ZIPCode", addr.Zipcode)
	}
	return params
}

// Validate implements validation.Provider.
func (c *Client) Validate(ctx context.Context, addr validation.AddressInput) (*validation.Result, error) {
	if addr.Address1 == "" || addr.State == "" {
		return validation.InvalidResult("USPS requires a street address and state"), nil
	}

	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	reqURL := c.baseURL + "/addresses/v3/address?" + buildQuery(addr).Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return validation.ErrorResult(fmt.Sprintf("USPS validation failed: %v", err)), nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return validation.ErrorResult("USPS rate limit exceeded, will retry later"), nil
	}
	if resp.StatusCode == http.StatusNotFound {
		// The API 404s when no address matches the input
		return validation.InvalidResult("Address not found by USPS"), nil
	}
	if resp.StatusCode != http.StatusOK {
		if len(body) > 500 {
			body = body[:500]
		}
		return validation.ErrorResult(fmt.Sprintf("USPS API error (%d): %s", resp.StatusCode, string(body))), nil
	}

	var parsed addressResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return validation.ErrorResult(fmt.Sprintf("USPS returned unparseable response: %v", err)), nil
	}
	return mapResult(&parsed, addr), nil
}

// mapResult converts the raw response into the canonical result.
func mapResult(parsed *addressResponse, addr validation.AddressInput) *validation.Result {
	if parsed.Address == nil {
		if parsed.Error != nil && parsed.Error.Message != "" {
			return validation.InvalidResult(parsed.Error.Message)
		}
		return validation.InvalidResult("Address validation failed - no result from USPS")
	}

	a := parsed.Address
	zipcode := a.ZIPCode
	if zipcode == "" {
		zipcode = addr.Zipcode
	}
	if a.ZIPPlus4 != "" {
		zipcode = zipcode + "-" + a.ZIPPlus4
	}

	validated := &validation.Address{
		Address1: firstNonEmpty(a.StreetAddress, addr.Address1),
		Address2: firstNonEmpty(a.SecondaryAddress, addr.Address2),
		City:     firstNonEmpty(a.City, addr.City),
		State:    firstNonEmpty(a.State, addr.State),
		Zipcode:  zipcode,
		Country:  "United States",
	}

	var dpv string
	if parsed.AdditionalInfo != nil {
		dpv = strings.ToUpper(parsed.AdditionalInfo.DPVConfirmation)
	}
	switch dpv {
	case "Y", "D", "S":
		return &validation.Result{
			Status:           validation.StatusValid,
			Message:          "Address validated by USPS",
			ValidatedAddress: validated,
			CountryCode:      "US",
		}
	default:
		// "N" or no confirmation at all
		return &validation.Result{
			Status:           validation.StatusInvalid,
			Message:          "Address found but not confirmed deliverable by USPS",
			ValidatedAddress: validated,
			CountryCode:      "US",
		}
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
