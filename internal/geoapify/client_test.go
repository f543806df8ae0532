package geoapify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skellish-aws/kellish-yir-website/internal/secrets"
	"github.com/skellish-aws/kellish-yir-website/internal/validation"
)

type staticSSM map[string]string

func (s staticSSM) GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	val := s[aws.ToString(params.Name)]
	if val == "" {
		return &ssm.GetParameterOutput{}, nil
	}
	return &ssm.GetParameterOutput{Parameter: &ssmtypes.Parameter{Value: aws.String(val)}}, nil
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(secrets.NewCache(staticSSM{secrets.ParamGeoapifyAPIKey: "geo-key"}))
	c.SetBaseURL(srv.URL)
	c.httpClient = &http.Client{}
	return c
}

func TestQueryString(t *testing.T) {
	got := queryString(validation.AddressInput{
		Address1: "Unter den Linden 1",
		City:     "Berlin",
		Zipcode:  "10117",
		Country:  "Germany",
	})
	assert.Equal(t, "Unter den Linden 1, Berlin, 10117, Germany", got)
}

func TestValidateHighConfidence(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "geo-key", r.URL.Query().Get("apiKey"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{
					"address_line1": "Unter den Linden 1",
					"city":          "Berlin",
					"state":         "Berlin",
					"postcode":      "10117",
					"country":       "Germany",
					"country_code":  "de",
					"formatted":     "Unter den Linden 1, 10117 Berlin, Germany",
					"rank":          map[string]any{"confidence": 0.95},
				},
				{
					"address_line1": "Unter den Linden 3",
					"city":          "Berlin",
					"country":       "Germany",
					"country_code":  "de",
					"rank":          map[string]any{"confidence": 0.4},
				},
			},
		})
	})

	result, err := client.Validate(context.Background(), validation.AddressInput{
		Address1: "Unter den Linden 1", City: "Berlin", Country: "Germany",
	})
	require.NoError(t, err)
	assert.Equal(t, validation.StatusValid, result.Status)
	assert.InDelta(t, 0.95, result.Confidence, 0.001)
	assert.Equal(t, "DE", result.CountryCode)
	require.NotNil(t, result.ValidatedAddress)
	assert.Equal(t, "10117", result.ValidatedAddress.Zipcode)

	// Secondary matches surface as ranked alternatives
	require.Len(t, result.Alternatives, 1)
	assert.Equal(t, validation.StatusInvalid, result.Alternatives[0].Status)
}

func TestValidateLowConfidence(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"city": "Springfield", "rank": map[string]any{"confidence": 0.3}},
			},
		})
	})

	result, err := client.Validate(context.Background(), validation.AddressInput{Address1: "1 Vague St"})
	require.NoError(t, err)
	assert.Equal(t, validation.StatusInvalid, result.Status)
	assert.InDelta(t, 0.3, result.Confidence, 0.001)
}

func TestValidateThresholdBoundary(t *testing.T) {
	// Exactly 0.5 counts as deliverable
	res := mapResult(searchResult{Rank: &rank{Confidence: 0.5}}, validation.AddressInput{Address1: "1 Main St"})
	assert.Equal(t, validation.StatusValid, res.Status)
}

func TestValidateNoResults(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[]}`))
	})

	result, err := client.Validate(context.Background(), validation.AddressInput{Address1: "nowhere"})
	require.NoError(t, err)
	assert.Equal(t, validation.StatusInvalid, result.Status)
}

func TestValidateAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"Invalid apiKey"}`))
	})

	result, err := client.Validate(context.Background(), validation.AddressInput{Address1: "1 Main St"})
	require.NoError(t, err)
	assert.Equal(t, validation.StatusError, result.Status)
	assert.Contains(t, result.Message, "Geoapify API error (401)")
}

func TestValidateRateLimit(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	result, err := client.Validate(context.Background(), validation.AddressInput{Address1: "1 Main St"})
	require.NoError(t, err)
	assert.Equal(t, validation.StatusError, result.Status)
	assert.Equal(t, "Geoapify rate limit exceeded, will retry later", result.Message)
}

func TestSetTimeout(t *testing.T) {
	c := NewClient(secrets.NewCache(staticSSM{}))
	c.SetTimeout(5 * time.Second)
	assert.Equal(t, 5*time.Second, c.base.Timeout)
}

func TestAutocomplete(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/geocode/autocomplete", r.URL.Path)
		assert.Equal(t, "unter den", r.URL.Query().Get("text"))
		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"formatted": "Unter den Linden 1, Berlin"},
				{"formatted": "Unter den Eichen 5, Berlin"},
			},
		})
	})

	suggestions, err := client.Autocomplete(context.Background(), "unter den")
	require.NoError(t, err)
	require.Len(t, suggestions, 2)
	assert.Equal(t, "Unter den Linden 1, Berlin", suggestions[0].Text)
}

func TestStreetAddressAssembly(t *testing.T) {
	assert.Equal(t, "1 Main St", streetAddress(searchResult{AddressLine1: "1 Main St"}))
	assert.Equal(t, "22 Baker Street", streetAddress(searchResult{HouseNumber: "22", Street: "Baker Street"}))
	assert.Equal(t, "Baker Street", streetAddress(searchResult{Street: "Baker Street"}))
}
