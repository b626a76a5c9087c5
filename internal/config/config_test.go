package config

import "testing"

func TestParseConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "unit-test-secret")

	cfg, err := ParseConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.JWTExpirationMinutes != 1440 {
		t.Fatalf("expected one day token lifetime, got %d minutes", cfg.JWTExpirationMinutes)
	}
	if cfg.StorageMaxUploadBytes != 5*1024*1024 {
		t.Fatalf("expected 5 MiB upload ceiling, got %d", cfg.StorageMaxUploadBytes)
	}
	if cfg.StorageType != "local" {
		t.Fatalf("expected local storage by default, got %q", cfg.StorageType)
	}
	if cfg.CookieSameSite != "strict" {
		t.Fatalf("expected strict same-site default, got %q", cfg.CookieSameSite)
	}
	if cfg.IsProduction() {
		t.Fatal("expected development environment by default")
	}
}

func TestParseConfigRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	if _, err := ParseConfig(); err == nil {
		t.Fatal("expected error when JWT_SECRET is empty")
	}
}

func TestParseConfigClientURLs(t *testing.T) {
	t.Setenv("JWT_SECRET", "unit-test-secret")
	t.Setenv("CLIENT_URL", "https://jurnalresonansi.com,http://localhost:5173")
	t.Setenv("APP_ENV", "Production")

	cfg, err := ParseConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.ClientURLs) != 2 || cfg.ClientURLs[0] != "https://jurnalresonansi.com" {
		t.Fatalf("unexpected client urls: %#v", cfg.ClientURLs)
	}
	if !cfg.IsProduction() {
		t.Fatal("expected production environment")
	}
}
