package validation

import (
	"context"
	"fmt"
	"log"

	"github.com/skellish-aws/kellish-yir-website/internal/geonorm"
)

// RecipientStore persists a validation outcome back onto the recipient
// record. The write must be a single atomic update of status, message,
// timestamp, and all validated address fields — never a partial set.
type RecipientStore interface {
	UpdateValidation(ctx context.Context, recipientID string, result *Result) error
}

// Orchestrator drives one validation request end to end: normalize the
// address, select a provider, invoke it, and write the outcome back to the
// recipient record. It depends only on the Provider contract, so adding a
// backend requires no orchestrator change.
type Orchestrator struct {
	domestic      Provider // preferred for US addresses; may be nil
	international Provider // handles everything else (and US when no domestic provider)
	store         RecipientStore
}

// NewOrchestrator creates an orchestrator. international is required;
// domestic may be nil, in which case all addresses route to international.
func NewOrchestrator(domestic, international Provider, store RecipientStore) *Orchestrator {
	return &Orchestrator{
		domestic:      domestic,
		international: international,
		store:         store,
	}
}

// SelectProvider picks the backend for an address by its normalized
// country: US (or blank) routes to the domestic provider when one is
// configured, everything else to the international provider.
func (o *Orchestrator) SelectProvider(country string) Provider {
	if geonorm.IsDomestic(country) && o.domestic != nil {
		return o.domestic
	}
	return o.international
}

// Process validates one request and persists the outcome. The returned
// Result is never nil; the error is non-nil only when the record write-back
// failed (the validation outcome itself is folded into the Result, so a
// provider failure never aborts a batch).
func (o *Orchestrator) Process(ctx context.Context, req Request) (*Result, error) {
	result := o.Validate(ctx, req.Address())

	if err := o.store.UpdateValidation(ctx, req.RecipientID, result); err != nil {
		return result, fmt.Errorf("updating recipient %s: %w", req.RecipientID, err)
	}
	return result, nil
}

// Validate runs provider selection and the provider call without touching
// the store. The synchronous proxy path uses this directly.
func (o *Orchestrator) Validate(ctx context.Context, addr AddressInput) *Result {
	// Resolve the state to its 2-letter abbreviation for domestic input
	// before the provider sees it.
	if geonorm.IsDomestic(addr.Country) {
		addr.State = geonorm.StateAbbreviation(addr.State)
	}

	provider := o.SelectProvider(addr.Country)
	if provider == nil {
		return ErrorResult("no address validation provider configured")
	}

	result, err := provider.Validate(ctx, addr)
	if err != nil {
		log.Printf("[Orchestrator] %s validation failed: %v", provider.Name(), err)
		return ErrorResult(fmt.Sprintf("%s validation failed: %v", provider.Name(), err))
	}
	if result == nil {
		return ErrorResult(fmt.Sprintf("%s returned no result", provider.Name()))
	}
	return result
}
