package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/redis/go-redis/v9"

	"github.com/skellish-aws/kellish-yir-website/internal/accesscode"
	"github.com/skellish-aws/kellish-yir-website/internal/addresszen"
	"github.com/skellish-aws/kellish-yir-website/internal/api"
	"github.com/skellish-aws/kellish-yir-website/internal/config"
	"github.com/skellish-aws/kellish-yir-website/internal/geoapify"
	"github.com/skellish-aws/kellish-yir-website/internal/googlemaps"
	"github.com/skellish-aws/kellish-yir-website/internal/queue"
	"github.com/skellish-aws/kellish-yir-website/internal/secrets"
	"github.com/skellish-aws/kellish-yir-website/internal/storage"
	"github.com/skellish-aws/kellish-yir-website/internal/usps"
	"github.com/skellish-aws/kellish-yir-website/internal/validation"
)

// checkPortAvailable verifies that the target port is not already in use.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v", port, addr, err)
	}
	ln.Close()
	return nil
}

func main() {
	log.Println("Starting Kellish Year-in-Review API server...")

	// Load configuration
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	host := cfg.Server.GetHost()
	port := cfg.Server.Port
	if err := checkPortAvailable(host, port); err != nil {
		log.Fatalf("Pre-flight check failed: %v", err)
	}

	// AWS clients
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
	enqueuer := queue.NewEnqueuer(sqs.NewFromConfig(awsCfg), cfg.AWS.ValidationQueue, store)
	secretCache := secrets.NewCache(ssm.NewFromConfig(awsCfg))
	codes := accesscode.NewService(store)

	providers := buildProviders(cfg, secretCache)
	log.Printf("[Server] Providers configured: domestic=%s international=%s",
		cfg.Providers.Domestic, cfg.Providers.International)

	// Redis for rate limiting on the public access-code endpoints
	var redisClient *redis.Client
	if cfg.RateLimit.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RateLimit.RedisAddr,
			Password: cfg.RateLimit.RedisPassword,
		})
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.Printf("[Server] Redis unreachable at %s, rate limiting degraded: %v",
				cfg.RateLimit.RedisAddr, err)
		}
		pingCancel()
	}

	handlers := api.NewHandlers(store, enqueuer, codes, providers)
	server := api.NewServer(cfg, handlers, redisClient)

	addr := fmt.Sprintf("%s:%d", host, port)
	go func() {
		log.Printf("[Server] Listening on %s", addr)
		if err := server.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("[Server] Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[Server] Shutdown error: %v", err)
	}
	if redisClient != nil {
		redisClient.Close()
	}
	log.Println("[Server] Stopped")
}

// buildProviders wires every vendor client for the proxy endpoints. API
// keys are pulled from Parameter Store lazily on first use.
func buildProviders(cfg *config.Config, sc *secrets.Cache) map[string]validation.Provider {
	timeout := cfg.Providers.Timeout()

	uspsClient := usps.NewClient(sc)
	if cfg.Providers.USPSBaseURL != "" {
		uspsClient.SetBaseURL(cfg.Providers.USPSBaseURL)
	}
	geoClient := geoapify.NewClient(sc)
	if cfg.Providers.GeoapifyBaseURL != "" {
		geoClient.SetBaseURL(cfg.Providers.GeoapifyBaseURL)
	}
	gmClient := googlemaps.NewClient(sc)
	if cfg.Providers.GoogleMapsBaseURL != "" {
		gmClient.SetBaseURL(cfg.Providers.GoogleMapsBaseURL)
	}
	azClient := addresszen.NewClient(sc)
	if cfg.Providers.AddressZenBaseURL != "" {
		azClient.SetBaseURL(cfg.Providers.AddressZenBaseURL)
	}
	if timeout > 0 {
		uspsClient.SetTimeout(timeout)
		geoClient.SetTimeout(timeout)
		gmClient.SetTimeout(timeout)
		azClient.SetTimeout(timeout)
	}

	return map[string]validation.Provider{
		"usps":       uspsClient,
		"geoapify":   geoClient,
		"googlemaps": gmClient,
		"addresszen": azClient,
	}
}
