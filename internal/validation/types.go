// Package validation defines the provider-agnostic address validation
// contract: canonical input/result types, the provider interfaces, and the
// orchestrator that drives a validation request from raw address to
// persisted record update.
package validation

// Status classifies the outcome of a validation attempt.
type Status string

const (
	// StatusValid means the provider confirmed the address is deliverable.
	StatusValid Status = "valid"
	// StatusInvalid means the provider examined the address and found it
	// non-deliverable or not found.
	StatusInvalid Status = "invalid"
	// StatusError means the validation could not complete (provider outage,
	// exhausted retries, missing credentials). The address itself was not
	// judged.
	StatusError Status = "error"
)

// Request is one validation work item: a recipient's raw address as entered
// by an admin. This is also the queue message schema.
type Request struct {
	RecipientID string `json:"recipientId"`
	Address1    string `json:"address1"`
	Address2    string `json:"address2,omitempty"`
	City        string `json:"city,omitempty"`
	State       string `json:"state,omitempty"`
	Zipcode     string `json:"zipcode,omitempty"`
	Country     string `json:"country,omitempty"`
}

// Address returns the provider-facing portion of the request.
func (r Request) Address() AddressInput {
	return AddressInput{
		Address1: r.Address1,
		Address2: r.Address2,
		City:     r.City,
		State:    r.State,
		Zipcode:  r.Zipcode,
		Country:  r.Country,
	}
}

// AddressInput is a free-form postal address. Only Address1 is required;
// providers tolerate partial input.
type AddressInput struct {
	Address1 string `json:"address1"`
	Address2 string `json:"address2,omitempty"`
	City     string `json:"city,omitempty"`
	State    string `json:"state,omitempty"`
	Zipcode  string `json:"zipcode,omitempty"`
	Country  string `json:"country,omitempty"`
}

// Address is a standardized postal address as returned by a provider.
type Address struct {
	Address1 string `json:"address1"`
	Address2 string `json:"address2,omitempty"`
	City     string `json:"city"`
	State    string `json:"state"`
	Zipcode  string `json:"zipcode"`
	Country  string `json:"country,omitempty"`
}

// Result is the canonical outcome of a provider validation.
// Invariant: StatusValid implies ValidatedAddress is non-nil.
type Result struct {
	Status           Status   `json:"status"`
	Message          string   `json:"message,omitempty"`
	ValidatedAddress *Address `json:"validatedAddress,omitempty"`
	// Confidence is the provider's match confidence in [0,1], when offered.
	Confidence  float64 `json:"confidence,omitempty"`
	CountryCode string  `json:"countryCode,omitempty"`
	// Alternatives holds ranked secondary matches, best first.
	Alternatives []Result `json:"alternatives,omitempty"`
}

// ErrorResult builds a StatusError result with the given message.
func ErrorResult(message string) *Result {
	return &Result{Status: StatusError, Message: message}
}

// InvalidResult builds a StatusInvalid result with the given message.
func InvalidResult(message string) *Result {
	return &Result{Status: StatusInvalid, Message: message}
}

// Suggestion is one autocomplete candidate from a provider that offers
// partial-query completion.
type Suggestion struct {
	ID        string `json:"id,omitempty"`
	Text      string `json:"text"`
	Formatted string `json:"formatted,omitempty"`
}
