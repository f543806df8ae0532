package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/ssm"

	"github.com/skellish-aws/kellish-yir-website/internal/addresszen"
	"github.com/skellish-aws/kellish-yir-website/internal/config"
	"github.com/skellish-aws/kellish-yir-website/internal/geoapify"
	"github.com/skellish-aws/kellish-yir-website/internal/googlemaps"
	"github.com/skellish-aws/kellish-yir-website/internal/queue"
	"github.com/skellish-aws/kellish-yir-website/internal/secrets"
	"github.com/skellish-aws/kellish-yir-website/internal/storage"
	"github.com/skellish-aws/kellish-yir-website/internal/usps"
	"github.com/skellish-aws/kellish-yir-website/internal/validation"
)

func main() {
	log.Println("Starting Kellish Year-in-Review validation worker...")

	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.AWS.ValidationQueue == "" {
		log.Fatal("No validation queue configured (set VALIDATION_QUEUE_URL)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	cancel()
	if err != nil {
		log.Fatalf("Failed to load AWS config: %v", err)
	}

	store := storage.New(
		dynamodb.NewFromConfig(awsCfg),
		cfg.AWS.RecipientTable,
		cfg.AWS.AccessCodeTable,
		cfg.AWS.NewsletterTable,
	)
	secretCache := secrets.NewCache(ssm.NewFromConfig(awsCfg))

	domestic := buildProvider(cfg.Providers.Domestic, cfg, secretCache)
	international := buildProvider(cfg.Providers.International, cfg, secretCache)
	log.Printf("[Worker] Providers: domestic=%s international=%s",
		domestic.Name(), international.Name())

	orchestrator := validation.NewOrchestrator(domestic, international, store)
	consumer := queue.NewConsumer(sqs.NewFromConfig(awsCfg), cfg.AWS.ValidationQueue, orchestrator)

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := consumer.Run(runCtx); err != nil && runCtx.Err() == nil {
		log.Fatalf("Consumer failed: %v", err)
	}
	log.Println("[Worker] Stopped")
}

// buildProvider maps a configured provider name to its client.
func buildProvider(name string, cfg *config.Config, sc *secrets.Cache) validation.Provider {
	timeout := cfg.Providers.Timeout()
	switch name {
	case "usps":
		c := usps.NewClient(sc)
		if cfg.Providers.USPSBaseURL != "" {
			c.SetBaseURL(cfg.Providers.USPSBaseURL)
		}
		if timeout > 0 {
			c.SetTimeout(timeout)
		}
		return c
	case "googlemaps":
		c := googlemaps.NewClient(sc)
		if cfg.Providers.GoogleMapsBaseURL != "" {
			c.SetBaseURL(cfg.Providers.GoogleMapsBaseURL)
		}
		if timeout > 0 {
			c.SetTimeout(timeout)
		}
		return c
	case "addresszen":
		c := addresszen.NewClient(sc)
		if cfg.Providers.AddressZenBaseURL != "" {
			c.SetBaseURL(cfg.Providers.AddressZenBaseURL)
		}
		if timeout > 0 {
			c.SetTimeout(timeout)
		}
		return c
	case "geoapify":
		fallthrough
	default:
		c := geoapify.NewClient(sc)
		if cfg.Providers.GeoapifyBaseURL != "" {
			c.SetBaseURL(cfg.Providers.GeoapifyBaseURL)
		}
		if timeout > 0 {
			c.SetTimeout(timeout)
		}
		return c
	}
}
