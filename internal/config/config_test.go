package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "secret")
	t.Setenv("PORT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Fatalf("unexpected addr: %s", cfg.Server.Addr)
	}
	if cfg.Store.Driver != "memory" {
		t.Fatalf("unexpected store driver: %s", cfg.Store.Driver)
	}
	if cfg.RateLimit.Window != 24*time.Hour {
		t.Fatalf("unexpected window: %s", cfg.RateLimit.Window)
	}
	if cfg.RateLimit.Limit(FunctionFoodSearch) != 100 {
		t.Fatalf("unexpected food-search limit: %d", cfg.RateLimit.Limit(FunctionFoodSearch))
	}
	if got := cfg.AI.CompletionsURL(); got != "https://api.groq.com/openai/v1/chat/completions" {
		t.Fatalf("unexpected completions url: %s", got)
	}
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error without AUTH_JWT_SECRET")
	}
}

func TestLoadPostgresRequiresDSN(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "secret")
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_DSN", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error without DATABASE_DSN")
	}
}

func TestLoadServerConfig(t *testing.T) {
	cases := map[string]string{
		"9090":           ":9090",
		":7000":          ":7000",
		"127.0.0.1:8000": "127.0.0.1:8000",
	}
	for in, want := range cases {
		got, err := loadServerConfig(in)
		if err != nil {
			t.Fatalf("loadServerConfig(%q) err: %v", in, err)
		}
		if got.Addr != want {
			t.Fatalf("loadServerConfig(%q) = %q, want %q", in, got.Addr, want)
		}
	}

	if _, err := loadServerConfig("80 80"); err == nil {
		t.Fatal("expected error for port with space")
	}
}

func TestAIConfigEnabled(t *testing.T) {
	if (AIConfig{Model: "m"}).Enabled() {
		t.Fatal("expected disabled without api key")
	}
	if !(AIConfig{APIKey: "k", Model: "m"}).Enabled() {
		t.Fatal("expected enabled with key and model")
	}
}
