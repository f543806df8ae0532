package addresszen

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

	c := NewClient(secrets.NewCache(staticSSM{secrets.ParamAddressZenAPIKey: "az-key"}))
	c.SetBaseURL(srv.URL)
	c.httpClient = &http.Client{}
	return c
}

func TestJoinQuery(t *testing.T) {
	got := joinQuery(validation.AddressInput{
		Address1: "1 Main St",
		City:     "Springfield",
		State:    "IL",
		Zipcode:  "62701",
	})
	assert.Equal(t, "1 Main St, Springfield, IL, 62701", got)
}

func TestValidateDeliverable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "az-key", r.URL.Query().Get("api_key"))
		var req verifyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Contains(t, req.Query, "1 Main St")
		json.NewEncoder(w).Encode(map[string]any{
			"code":    2000,
			"message": "Success",
			"result": map[string]any{
				"address_line_one": "1 MAIN ST",
				"city":             "SPRINGFIELD",
				"state":            "IL",
				"zip_code":         "62701-1234",
				"country_iso_2":    "US",
				"count":            1,
				"match":            map[string]any{"dpv": "Y", "country_code": "US"},
			},
		})
	})

	result, err := client.Validate(context.Background(), validation.AddressInput{
		Address1: "1 Main St", City: "Springfield", State: "IL", Zipcode: "62701",
	})
	require.NoError(t, err)
	assert.Equal(t, validation.StatusValid, result.Status)
	assert.InDelta(t, 1.0, result.Confidence, 0.001)
	assert.Equal(t, "US", result.CountryCode)
	require.NotNil(t, result.ValidatedAddress)
	assert.Equal(t, "United States", result.ValidatedAddress.Country)
	assert.Equal(t, "62701-1234", result.ValidatedAddress.Zipcode)
}

func TestValidateMatchInformationFallback(t *testing.T) {
	// No DPV flag, but the match text says a delivery address was found
	parsed := &apiResponse{Result: &verifyResult{
		AddressLineOne:   "1 MAIN ST",
		MatchInformation: "The exact delivery address was found in the database",
		Count:            1,
	}}
	result := mapResult(parsed, validation.AddressInput{})
	assert.Equal(t, validation.StatusValid, result.Status)
}

func TestValidateNotDeliverable(t *testing.T) {
	parsed := &apiResponse{Result: &verifyResult{
		AddressLineOne:   "1 MAIN ST",
		MatchInformation: "The address was not found",
		Match:            &matchInfo{DPV: "N"},
	}}
	result := mapResult(parsed, validation.AddressInput{})
	assert.Equal(t, validation.StatusInvalid, result.Status)
	assert.Equal(t, "The address was not found", result.Message)
}

func TestValidateNoResultNeverValid(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":2000,"message":"No match"}`))
	})

	result, err := client.Validate(context.Background(), validation.AddressInput{Address1: "nowhere"})
	require.NoError(t, err)
	assert.Equal(t, validation.StatusInvalid, result.Status)
	assert.Equal(t, "No match", result.Message)
}

func TestErrorTable(t *testing.T) {
	tests := []struct {
		status   int
		body     string
		expected string
	}{
		{402, `{"code":4020}`, "balance depleted"},
		{402, `{"code":4021}`, "daily limit"},
		{401, `{"code":4010}`, "Invalid AddressZen API key"},
		{401, `{"code":4011}`, "whitelist"},
		{500, `{}`, "server error"},
		{503, `{}`, "rate limit"},
		{418, `{"code":9999,"message":"teapot"}`, "teapot"},
		{418, `not json`, "AddressZen API error (418)"},
	}
	for _, tt := range tests {
		msg := errorMessage(tt.status, []byte(tt.body))
		assert.Contains(t, msg, tt.expected, "status %d body %s", tt.status, tt.body)
	}
}

func TestValidateErrorResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"code":4020,"message":"Balance depleted"}`))
	})

	result, err := client.Validate(context.Background(), validation.AddressInput{Address1: "1 Main St"})
	require.NoError(t, err)
	assert.Equal(t, validation.StatusError, result.Status)
	assert.Contains(t, result.Message, "balance depleted")
}

func TestAutocomplete(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/autocomplete/addresses", r.URL.Path)
		assert.Equal(t, "1 main", r.URL.Query().Get("q"))
		json.NewEncoder(w).Encode(map[string]any{
			"result": map[string]any{
				"suggestions": []map[string]any{
					{"place_id": "p1", "text": "1 Main St, Springfield IL"},
					{"place_id": "p2", "text": "1 Main Ave, Springfield IL"},
				},
			},
		})
	})

	suggestions, err := client.Autocomplete(context.Background(), "1 main")
	require.NoError(t, err)
	require.Len(t, suggestions, 2)
	assert.Equal(t, "p1", suggestions[0].ID)
	assert.Equal(t, "1 Main St, Springfield IL", suggestions[0].Text)
}

func TestResolve(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/resolve/addresses", r.URL.Path)
		assert.Equal(t, "p1", r.URL.Query().Get("place_id"))
		json.NewEncoder(w).Encode(map[string]any{
			"result": map[string]any{
				"address_line_one": "1 MAIN ST",
				"city":             "SPRINGFIELD",
				"state":            "IL",
				"zip_code":         "62701",
				"country_iso_2":    "US",
			},
		})
	})

	result, err := client.Resolve(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, validation.StatusValid, result.Status)
	require.NotNil(t, result.ValidatedAddress)
	assert.Equal(t, "United States", result.ValidatedAddress.Country)
}

func TestResolveNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":2000}`))
	})

	result, err := client.Resolve(context.Background(), "missing")
	require.NoError(t, err)
	assert.Equal(t, validation.StatusInvalid, result.Status)
}

func TestSetTimeout(t *testing.T) {
	c := NewClient(secrets.NewCache(staticSSM{}))
	c.SetTimeout(5 * time.Second)
	assert.Equal(t, 5*time.Second, c.base.Timeout)
}
