package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", c.Port)
	}
	if c.DefaultWarehouseID != "wh-main" {
		t.Fatalf("expected default warehouse wh-main, got %q", c.DefaultWarehouseID)
	}
	if c.OversellPolicy != OversellAllow {
		t.Fatalf("expected default oversell policy allow, got %q", c.OversellPolicy)
	}
	if c.CatalogCacheTTL != 5*time.Minute {
		t.Fatalf("expected default cache TTL 5m, got %s", c.CatalogCacheTTL)
	}
}

func TestLoadOverridesFromEnv(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("OVERSELL_POLICY", OversellReject)
	t.Setenv("CATALOG_CACHE_TTL_SECONDS", "60")

	c, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Port != "9999" {
		t.Fatalf("expected port override, got %q", c.Port)
	}
	if c.OversellPolicy != OversellReject {
		t.Fatalf("expected reject policy, got %q", c.OversellPolicy)
	}
	if c.CatalogCacheTTL != time.Minute {
		t.Fatalf("expected 1m TTL, got %s", c.CatalogCacheTTL)
	}
}

func TestLoadRejectsBadOversellPolicy(t *testing.T) {
	t.Setenv("OVERSELL_POLICY", "panic")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown oversell policy")
	}
}
