package config

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": secret,
	}))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	if cfg.Port != "8080" || cfg.Store.Driver != "sqlite" || cfg.Auth.PasswordHasher != "bcrypt" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Auth.SessionTTL != 12*time.Hour || cfg.Reset.TokenTTL != 30*time.Minute {
		t.Fatalf("unexpected ttl defaults: session=%v reset=%v", cfg.Auth.SessionTTL, cfg.Reset.TokenTTL)
	}
	if !cfg.IsDevelopment() || cfg.SMTP.Enabled() {
		t.Fatalf("expected development without smtp")
	}
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":      secret,
		"STORE_DRIVER":    "postgres",
		"SESSION_TTL":     "30m",
		"PASSWORD_HASHER": "argon2id",
		"SMTP_HOST":       "smtp.example.com",
		"ENV":             "production",
	}))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Store.Driver != "postgres" || cfg.Auth.SessionTTL != 30*time.Minute || cfg.IsDevelopment() || !cfg.SMTP.Enabled() {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestLoadFrom_MissingSecret(t *testing.T) {
	if _, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{})); err == nil {
		t.Fatalf("expected error when JWT_SECRET is missing")
	}
}

func TestLoadFrom_InvalidValues(t *testing.T) {
	_, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":      "short",
		"STORE_DRIVER":    "cassandra",
		"PASSWORD_HASHER": "md5",
	}))
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{"JWT_SECRET", "STORE_DRIVER", "PASSWORD_HASHER"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %s in %q", want, err)
		}
	}
}

func TestLoadFrom_TrustedProxies(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":      secret,
		"TRUSTED_PROXIES": "10.1.0.0/16, 192.0.2.7",
	}))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	ranges, err := cfg.ProxyRanges()
	if err != nil || len(ranges) != 2 {
		t.Fatalf("ProxyRanges = %v, %v", ranges, err)
	}
	if !ranges[0].Contains(net.ParseIP("10.1.200.3")) || !ranges[1].Contains(net.ParseIP("192.0.2.7")) || ranges[1].Contains(net.ParseIP("192.0.2.8")) {
		t.Fatalf("unexpected ranges: %v", ranges)
	}
	if cfg.RateLimit.Burst != 10 {
		t.Fatalf("expected burst default 10, got %d", cfg.RateLimit.Burst)
	}

	_, err = LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":      secret,
		"TRUSTED_PROXIES": "not-an-ip",
	}))
	if err == nil || !strings.Contains(err.Error(), "TRUSTED_PROXIES") {
		t.Fatalf("expected TRUSTED_PROXIES error, got %v", err)
	}
}
