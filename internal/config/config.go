package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	AWS       AWSConfig       `yaml:"aws"`
	Providers ProvidersConfig `yaml:"providers"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	CORS      CORSConfig      `yaml:"cors"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// GetHost returns the server host, with container detection
func (c ServerConfig) GetHost() string {
	// On ECS/container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	// Allow override via environment
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// AWSConfig holds region, table, and queue wiring. Credentials come from
// the default AWS credential chain, never from this file.
type AWSConfig struct {
	Region          string `yaml:"region"`
	RecipientTable  string `yaml:"recipient_table"`
	AccessCodeTable string `yaml:"access_code_table"`
	NewsletterTable string `yaml:"newsletter_table"`
	ValidationQueue string `yaml:"validation_queue_url"`
}

// ProvidersConfig holds address-validation provider settings. API keys are
// fetched from Parameter Store at runtime; only endpoints and toggles live
// here.
type ProvidersConfig struct {
	Domestic       string `yaml:"domestic"`      // "usps" (default) or "addresszen"
	International  string `yaml:"international"` // "geoapify" (default), "googlemaps", or "addresszen"
	TimeoutSeconds int    `yaml:"timeout_seconds"`

	USPSBaseURL       string `yaml:"usps_base_url"`
	GeoapifyBaseURL   string `yaml:"geoapify_base_url"`
	GoogleMapsBaseURL string `yaml:"googlemaps_base_url"`
	AddressZenBaseURL string `yaml:"addresszen_base_url"`
}

// Timeout returns the configured provider timeout as a duration
func (c ProvidersConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RateLimitConfig holds Redis-backed rate limiting for the public
// access-code endpoints.
type RateLimitConfig struct {
	Enabled           bool   `yaml:"enabled"`
	RedisAddr         string `yaml:"redis_addr"`
	RedisPassword     string `yaml:"redis_password"`
	RequestsPerMinute int    `yaml:"requests_per_minute"`
}

// CORSConfig holds allowed browser origins for the admin UI.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.AWS.Region == "" {
		cfg.AWS.Region = "us-east-1"
	}
	if cfg.AWS.RecipientTable == "" {
		cfg.AWS.RecipientTable = "kellish-yir-recipients"
	}
	if cfg.AWS.AccessCodeTable == "" {
		cfg.AWS.AccessCodeTable = "kellish-yir-access-codes"
	}
	if cfg.AWS.NewsletterTable == "" {
		cfg.AWS.NewsletterTable = "kellish-yir-newsletters"
	}
	if cfg.Providers.Domestic == "" {
		cfg.Providers.Domestic = "usps"
	}
	if cfg.Providers.International == "" {
		cfg.Providers.International = "geoapify"
	}
	if cfg.Providers.TimeoutSeconds == 0 {
		cfg.Providers.TimeoutSeconds = 30
	}
	if cfg.RateLimit.RedisAddr == "" {
		cfg.RateLimit.RedisAddr = "localhost:6379"
	}
	if cfg.RateLimit.RequestsPerMinute == 0 {
		cfg.RateLimit.RequestsPerMinute = 20
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = []string{"http://localhost:3000"}
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so local settings can live in .env and real env vars win on ECS.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables if present
	if region := os.Getenv("AWS_REGION"); region != "" {
		cfg.AWS.Region = region
	}
	if table := os.Getenv("RECIPIENT_TABLE"); table != "" {
		cfg.AWS.RecipientTable = table
	}
	if table := os.Getenv("ACCESS_CODE_TABLE"); table != "" {
		cfg.AWS.AccessCodeTable = table
	}
	if table := os.Getenv("NEWSLETTER_TABLE"); table != "" {
		cfg.AWS.NewsletterTable = table
	}
	if url := os.Getenv("VALIDATION_QUEUE_URL"); url != "" {
		cfg.AWS.ValidationQueue = url
	}
	if provider := os.Getenv("DOMESTIC_PROVIDER"); provider != "" {
		cfg.Providers.Domestic = provider
	}
	if provider := os.Getenv("INTERNATIONAL_PROVIDER"); provider != "" {
		cfg.Providers.International = provider
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.RateLimit.RedisAddr = addr
		cfg.RateLimit.Enabled = true
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		cfg.RateLimit.RedisPassword = password
	}

	return cfg, nil
}
