package googlemaps

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

	c := NewClient(secrets.NewCache(staticSSM{secrets.ParamGoogleMapsAPIKey: "test-key"}))
	c.SetBaseURL(srv.URL)
	c.httpClient = &http.Client{}
	return c
}

func TestBuildRequest(t *testing.T) {
	req := buildRequest(validation.AddressInput{
		Address1: "1 Main St",
		Address2: "Apt 4",
		City:     "Springfield",
		State:    "IL",
		Zipcode:  "62701",
		Country:  "USA",
	})

	assert.Equal(t, []string{"1 Main St", "Apt 4"}, req.Address.AddressLines)
	assert.Equal(t, "Springfield", req.Address.Locality)
	assert.Equal(t, "IL", req.Address.AdministrativeArea)
	assert.Equal(t, "62701", req.Address.PostalCode)
	assert.Equal(t, "US", req.Address.RegionCode)
	assert.True(t, req.EnableUspsCass, "CASS must be enabled for US addresses")
}

func TestBuildRequestInternational(t *testing.T) {
	req := buildRequest(validation.AddressInput{
		Address1: "10 Downing Street",
		City:     "London",
		Country:  "United Kingdom",
	})
	assert.Equal(t, "GB", req.Address.RegionCode)
	assert.False(t, req.EnableUspsCass)
}

func TestValidateUSPSConfirmed(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		json.NewEncoder(w).Encode(map[string]any{
			"result": map[string]any{
				"verdict": map[string]any{"addressComplete": true, "validationGranularity": "PREMISE"},
				"address": map[string]any{
					"postalAddress": map[string]any{
						"regionCode":         "US",
						"postalCode":         "62701-1234",
						"administrativeArea": "IL",
						"locality":           "Springfield",
						"addressLines":       []string{"1 Main St"},
					},
				},
				"uspsData": map[string]any{"dpvConfirmation": "Y"},
			},
		})
	})

	result, err := client.Validate(context.Background(), validation.AddressInput{
		Address1: "1 main street", City: "springfield", State: "IL", Zipcode: "62701", Country: "US",
	})
	require.NoError(t, err)
	assert.Equal(t, validation.StatusValid, result.Status)
	require.NotNil(t, result.ValidatedAddress)
	assert.Equal(t, "1 Main St", result.ValidatedAddress.Address1)
	assert.Equal(t, "62701-1234", result.ValidatedAddress.Zipcode)
	assert.Equal(t, "US", result.CountryCode)
}

func TestValidateDPVOverridesVerdict(t *testing.T) {
	// Verdict says complete but the carrier says not deliverable: DPV wins.
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"result": map[string]any{
				"verdict":  map[string]any{"addressComplete": true, "validationGranularity": "PREMISE"},
				"uspsData": map[string]any{"dpvConfirmation": "N"},
			},
		})
	})

	result, err := client.Validate(context.Background(), validation.AddressInput{Address1: "9 Nowhere Rd"})
	require.NoError(t, err)
	assert.Equal(t, validation.StatusInvalid, result.Status)
}

func TestValidateVerdictFallbackWithoutUSPSData(t *testing.T) {
	// No uspsData (international): the geocoding verdict decides.
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"result": map[string]any{
				"verdict": map[string]any{"addressComplete": true, "validationGranularity": "SUB_PREMISE"},
				"address": map[string]any{
					"postalAddress": map[string]any{
						"regionCode": "DE", "locality": "Berlin", "addressLines": []string{"Unter den Linden 1"},
					},
				},
			},
		})
	})

	result, err := client.Validate(context.Background(), validation.AddressInput{
		Address1: "Unter den Linden 1", City: "Berlin", Country: "Germany",
	})
	require.NoError(t, err)
	assert.Equal(t, validation.StatusValid, result.Status)
	assert.Equal(t, "Germany", result.ValidatedAddress.Country)
}

func TestValidateGranularityOtherInvalid(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"result": map[string]any{
				"verdict": map[string]any{"addressComplete": true, "validationGranularity": "OTHER"},
			},
		})
	})

	result, err := client.Validate(context.Background(), validation.AddressInput{Address1: "somewhere"})
	require.NoError(t, err)
	assert.Equal(t, validation.StatusInvalid, result.Status)
}

func TestValidateNoResult(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	result, err := client.Validate(context.Background(), validation.AddressInput{Address1: "1 Main St"})
	require.NoError(t, err)
	assert.Equal(t, validation.StatusInvalid, result.Status)
	assert.Contains(t, result.Message, "no result")
}

func TestValidateAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":403,"message":"API key not authorized","status":"PERMISSION_DENIED"}}`))
	})

	result, err := client.Validate(context.Background(), validation.AddressInput{Address1: "1 Main St"})
	require.NoError(t, err)
	assert.Equal(t, validation.StatusError, result.Status)
	assert.Contains(t, result.Message, "API key not authorized")
}

func TestValidateRateLimit(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	result, err := client.Validate(context.Background(), validation.AddressInput{Address1: "1 Main St"})
	require.NoError(t, err)
	assert.Equal(t, validation.StatusError, result.Status)
	assert.Contains(t, result.Message, "retry later")
}

func TestValidateMissingCredentials(t *testing.T) {
	c := NewClient(secrets.NewCache(staticSSM{}))
	_, err := c.Validate(context.Background(), validation.AddressInput{Address1: "1 Main St"})
	require.Error(t, err)
}

func TestSetTimeout(t *testing.T) {
	c := NewClient(secrets.NewCache(staticSSM{}))
	c.SetTimeout(5 * time.Second)
	assert.Equal(t, 5*time.Second, c.base.Timeout)
}
