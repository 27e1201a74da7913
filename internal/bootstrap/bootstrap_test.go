package bootstrap

import (
	"context"
	"testing"

	"github.com/GregMSThompson/wifi-access-backend/internal/config"
)

func TestResolveRouterSecretPrefersLiteral(t *testing.T) {
	cfg := &config.Config{RouterSecret: "literal", RouterSecretName: "ignored"}
	got, err := ResolveRouterSecret(context.Background(), cfg)
	if err != nil || got != "literal" {
		t.Fatalf("got %q, %v", got, err)
	}
}

func TestResolveRouterSecretUnset(t *testing.T) {
	got, err := ResolveRouterSecret(context.Background(), &config.Config{})
	if err != nil || got != "" {
		t.Fatalf("got %q, %v", got, err)
	}
}

func TestInitPostgresRequiresURL(t *testing.T) {
	if _, err := InitPostgres(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty database url")
	}
}

func TestCloseOnEmptyBootstrap(t *testing.T) {
	if err := (&Bootstrap{}).Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
