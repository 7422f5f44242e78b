package config

import (
	"testing"
	"time"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("API_ENV_FILE", "does-not-exist.env")
	t.Setenv("API_SHIPPING_BASE_URL", "https://rates.example.test")
	t.Setenv("API_COMMERCE_BASE_URL", "https://commerce.example.test")
	t.Setenv("API_PSP_STRIPE_API_KEY", "sk_test_123")
	t.Setenv("API_PSP_SUCCESS_URL", "https://shop.example.test/checkout/success")
	t.Setenv("API_PSP_CANCEL_URL", "https://shop.example.test/checkout/cancel")
}

func TestLoadDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Fatalf("expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("expected default redis addr, got %s", cfg.Redis.Addr)
	}
	if cfg.Redis.CartTTL != 7*24*time.Hour {
		t.Fatalf("expected default cart TTL, got %s", cfg.Redis.CartTTL)
	}
	if cfg.Features.DefaultCurrency != "IDR" {
		t.Fatalf("expected IDR default currency, got %s", cfg.Features.DefaultCurrency)
	}
	if !cfg.Features.EnableGatewayPayments {
		t.Fatalf("expected gateway payments enabled by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("API_PORT", "9090")
	t.Setenv("API_SHIPPING_TIMEOUT", "3s")
	t.Setenv("API_REDIS_DB", "4")
	t.Setenv("API_FEATURE_GATEWAY_PAYMENTS", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Fatalf("expected port 9090, got %s", cfg.Server.Port)
	}
	if cfg.Shipping.Timeout != 3*time.Second {
		t.Fatalf("expected 3s shipping timeout, got %s", cfg.Shipping.Timeout)
	}
	if cfg.Redis.DB != 4 {
		t.Fatalf("expected redis db 4, got %d", cfg.Redis.DB)
	}
	if cfg.Features.EnableGatewayPayments {
		t.Fatalf("expected gateway payments disabled")
	}
}

func TestLoadRequiresGatewayURLs(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("API_PSP_SUCCESS_URL", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when success URL missing with gateway payments enabled")
	}

	// Disabling the gateway path relaxes the requirement.
	t.Setenv("API_FEATURE_GATEWAY_PAYMENTS", "false")
	if _, err := Load(); err != nil {
		t.Fatalf("Load error with gateway disabled: %v", err)
	}
}

func TestLoadRequiresUpstreams(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("API_SHIPPING_BASE_URL", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error when shipping base URL missing")
	}

	setBaseEnv(t)
	t.Setenv("API_COMMERCE_BASE_URL", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error when commerce base URL missing")
	}
}
