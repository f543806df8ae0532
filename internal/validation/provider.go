package validation

import "context"

// Provider is the contract every address verification backend implements.
//
// Validate must never panic on malformed or missing provider data: the
// absence of a usable result is itself a terminal StatusInvalid or
// StatusError outcome. A non-nil error means the call could not even be
// attempted (e.g. credentials unavailable); the orchestrator maps it to
// StatusError.
type Provider interface {
	Name() string
	Validate(ctx context.Context, addr AddressInput) (*Result, error)
}

// Autocompleter is implemented by providers that offer partial-query
// address completion.
type Autocompleter interface {
	Autocomplete(ctx context.Context, query string) ([]Suggestion, error)
}

// Resolver is implemented by providers that can expand an autocomplete
// suggestion into a full validated address.
type Resolver interface {
	Resolve(ctx context.Context, suggestionID string) (*Result, error)
}
