package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultEnvFile        = ".env"
	defaultPort           = "8080"
	defaultReadTimeout    = 15 * time.Second
	defaultWriteTimeout   = 30 * time.Second
	defaultIdleTimeout    = 120 * time.Second
	defaultRedisAddr      = "localhost:6379"
	defaultCartTTL        = 7 * 24 * time.Hour
	defaultGatewayTimeout = 10 * time.Second
	defaultCurrency       = "IDR"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server   ServerConfig
	Redis    RedisConfig
	Shipping ShippingConfig
	Commerce CommerceConfig
	PSP      PSPConfig
	Features FeatureFlags
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// RedisConfig stores cart session store parameters.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	CartTTL  time.Duration
}

// ShippingConfig points at the carrier-rate lookup API.
type ShippingConfig struct {
	BaseURL  string
	APIKey   string
	OriginID string
	Timeout  time.Duration
}

// CommerceConfig points at the transaction-creation and order-lookup API.
type CommerceConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// PSPConfig collects secrets for payment providers.
type PSPConfig struct {
	StripeAPIKey      string
	GatewaySuccessURL string
	GatewayCancelURL  string
}

// FeatureFlags toggle optional behaviour without redeploying.
type FeatureFlags struct {
	EnableGatewayPayments bool
	DefaultCurrency       string
}

// Load reads configuration from the environment, optionally seeding it from a
// local .env file first (missing file is not an error).
func Load() (Config, error) {
	envFile := strings.TrimSpace(os.Getenv("API_ENV_FILE"))
	if envFile == "" {
		envFile = defaultEnvFile
	}
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, fmt.Errorf("config: load %s: %w", envFile, err)
		}
	}

	cfg := Config{
		Server: ServerConfig{
			Port:         envOr("API_PORT", defaultPort),
			ReadTimeout:  envDuration("API_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: envDuration("API_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  envDuration("API_IDLE_TIMEOUT", defaultIdleTimeout),
		},
		Redis: RedisConfig{
			Addr:     envOr("API_REDIS_ADDR", defaultRedisAddr),
			Password: os.Getenv("API_REDIS_PASSWORD"),
			DB:       envInt("API_REDIS_DB", 0),
			CartTTL:  envDuration("API_CART_TTL", defaultCartTTL),
		},
		Shipping: ShippingConfig{
			BaseURL:  strings.TrimSpace(os.Getenv("API_SHIPPING_BASE_URL")),
			APIKey:   strings.TrimSpace(os.Getenv("API_SHIPPING_API_KEY")),
			OriginID: strings.TrimSpace(os.Getenv("API_SHIPPING_ORIGIN_ID")),
			Timeout:  envDuration("API_SHIPPING_TIMEOUT", defaultGatewayTimeout),
		},
		Commerce: CommerceConfig{
			BaseURL: strings.TrimSpace(os.Getenv("API_COMMERCE_BASE_URL")),
			APIKey:  strings.TrimSpace(os.Getenv("API_COMMERCE_API_KEY")),
			Timeout: envDuration("API_COMMERCE_TIMEOUT", defaultGatewayTimeout),
		},
		PSP: PSPConfig{
			StripeAPIKey:      strings.TrimSpace(os.Getenv("API_PSP_STRIPE_API_KEY")),
			GatewaySuccessURL: strings.TrimSpace(os.Getenv("API_PSP_SUCCESS_URL")),
			GatewayCancelURL:  strings.TrimSpace(os.Getenv("API_PSP_CANCEL_URL")),
		},
		Features: FeatureFlags{
			EnableGatewayPayments: envBool("API_FEATURE_GATEWAY_PAYMENTS", true),
			DefaultCurrency:       envOr("API_DEFAULT_CURRENCY", defaultCurrency),
		},
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if strings.TrimSpace(c.Server.Port) == "" {
		return fmt.Errorf("config: server port is required")
	}
	if c.Redis.CartTTL <= 0 {
		return fmt.Errorf("config: cart TTL must be positive")
	}
	if c.Shipping.BaseURL == "" {
		return fmt.Errorf("config: shipping base URL is required")
	}
	if c.Commerce.BaseURL == "" {
		return fmt.Errorf("config: commerce base URL is required")
	}
	if c.Features.EnableGatewayPayments {
		if c.PSP.StripeAPIKey == "" {
			return fmt.Errorf("config: stripe api key is required when gateway payments are enabled")
		}
		if c.PSP.GatewaySuccessURL == "" || c.PSP.GatewayCancelURL == "" {
			return fmt.Errorf("config: gateway success and cancel URLs are required when gateway payments are enabled")
		}
	}
	return nil
}

func envOr(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func envInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func envBool(key string, fallback bool) bool {
	raw := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
