package api

import (
	"context"
	"net/http"
	"time"

	"github.com/skellish-aws/kellish-yir-website/internal/accesscode"
	"github.com/skellish-aws/kellish-yir-website/internal/storage"
	"github.com/skellish-aws/kellish-yir-website/internal/validation"
)

// RecipientStore is the persistence surface the handlers need.
type RecipientStore interface {
	CreateRecipient(ctx context.Context, r *storage.Recipient) error
	GetRecipient(ctx context.Context, id string) (*storage.Recipient, error)
	ListRecipients(ctx context.Context) ([]storage.Recipient, error)
	DeleteRecipient(ctx context.Context, id string) error
	UpdateRecipientAddress(ctx context.Context, id string, addr validation.AddressInput) error
	OverrideValidation(ctx context.Context, id, message string) error
	CreateNewsletter(ctx context.Context, n *storage.Newsletter) error
	ListNewsletters(ctx context.Context) ([]storage.Newsletter, error)
}

// Enqueuer pushes validation work onto the queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, req validation.Request) error
	EnqueueBatch(ctx context.Context, reqs []validation.Request) (failed []string, err error)
}

// Handlers carries the dependencies shared by all HTTP handlers.
type Handlers struct {
	store     RecipientStore
	enqueuer  Enqueuer
	codes     *accesscode.Service
	providers map[string]validation.Provider
	startTime time.Time
}

// NewHandlers creates the handler set. providers is keyed by the proxy path
// segment ("usps", "geoapify", "googlemaps", "addresszen"); a missing entry
// means that proxy returns 404.
func NewHandlers(store RecipientStore, enqueuer Enqueuer, codes *accesscode.Service, providers map[string]validation.Provider) *Handlers {
	return &Handlers{
		store:     store,
		enqueuer:  enqueuer,
		codes:     codes,
		providers: providers,
		startTime: time.Now(),
	}
}

// HealthCheck reports process liveness.
//
//	GET /health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"uptime": time.Since(h.startTime).Round(time.Second).String(),
	})
}
