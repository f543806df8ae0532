// Package secrets provides a process-lifetime cache over SSM Parameter
// Store. Worker invocations are ephemeral, so the first call for a given
// parameter pays the network round trip and every later call is served from
// memory. Concurrent first-call races may fetch the same parameter twice;
// that is tolerated, the store read is idempotent.
package secrets

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// Well-known parameter names. Secrets live only in the parameter store;
// they are never embedded in source or returned in any response.
const (
	ParamGoogleMapsAPIKey   = "/kellish-yir/googlemaps/api-key"
	ParamGeoapifyAPIKey     = "/kellish-yir/geoapify/api-key"
	ParamAddressZenAPIKey   = "/kellish-yir/addresszen/api-key"
	ParamUSPSConsumerKey    = "/kellish-yir/usps/consumer-key"
	ParamUSPSConsumerSecret = "/kellish-yir/usps/consumer-secret"
)

// ParameterAPI is the slice of the SSM client the cache needs.
type ParameterAPI interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// Cache memoizes decrypted SSM parameter values for the process lifetime.
// Construct one per process and inject it into the provider clients.
type Cache struct {
	client ParameterAPI

	mu     sync.RWMutex
	values map[string]string
}

// NewCache creates a Cache backed by the given SSM client.
func NewCache(client ParameterAPI) *Cache {
	return &Cache{
		client: client,
		values: make(map[string]string),
	}
}

// Get returns the decrypted value of the named parameter, fetching it from
// the parameter store on first use.
func (c *Cache) Get(ctx context.Context, name string) (string, error) {
	c.mu.RLock()
	val, ok := c.values[name]
	c.mu.RUnlock()
	if ok {
		return val, nil
	}

	out, err := c.client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("fetching parameter %s: %w", name, err)
	}
	if out.Parameter == nil || out.Parameter.Value == nil || *out.Parameter.Value == "" {
		return "", fmt.Errorf("parameter %s not found or empty", name)
	}

	val = *out.Parameter.Value
	c.mu.Lock()
	c.values[name] = val
	c.mu.Unlock()
	return val, nil
}
