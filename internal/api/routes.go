package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"

	"github.com/skellish-aws/kellish-yir-website/internal/config"
)

// SetupRoutes configures all API routes. redisClient may be nil, in which
// case the public endpoints run without rate limiting.
func SetupRoutes(h *Handlers, cfg *config.Config, redisClient *redis.Client) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check (no auth, no rate limit)
	r.Get("/health", h.HealthCheck)

	// Public invitation-code endpoints, rate limited per client IP
	r.Group(func(r chi.Router) {
		if cfg.RateLimit.Enabled && redisClient != nil {
			limiter := newRateLimiter(redisClient, cfg.RateLimit.RequestsPerMinute)
			r.Use(limiter.Middleware)
		}
		r.Post("/access-codes/validate", h.ValidateAccessCode)
		r.Post("/access-codes/redeem", h.RedeemAccessCode)
	})

	// Admin API
	r.Route("/api", func(r chi.Router) {
		r.Route("/recipients", func(r chi.Router) {
			r.Get("/", h.ListRecipients)
			r.Post("/", h.CreateRecipient)
			r.Get("/{id}", h.GetRecipient)
			r.Delete("/{id}", h.DeleteRecipient)
			r.Put("/{id}/address", h.UpdateRecipientAddress)
			r.Post("/{id}/override", h.OverrideValidation)
		})

		r.Route("/newsletters", func(r chi.Router) {
			r.Get("/", h.ListNewsletters)
			r.Post("/", h.CreateNewsletter)
		})

		r.Post("/access-codes", h.CreateAccessCodes)
		r.Post("/validation/queue", h.QueueValidation)
		r.Post("/proxy/{provider}", h.ProxyProvider)
	})

	return r
}
