package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.APIPort != "8080" {
		t.Fatalf("APIPort = %q, want 8080", cfg.APIPort)
	}
	if cfg.NATSSubject != "analyses.requested" {
		t.Fatalf("NATSSubject = %q", cfg.NATSSubject)
	}
	if cfg.MaxUploadBytes != 10<<20 {
		t.Fatalf("MaxUploadBytes = %d, want %d", cfg.MaxUploadBytes, 10<<20)
	}
	if !cfg.AsyncAnalysis {
		t.Fatal("AsyncAnalysis should default to true")
	}
	if cfg.RateLimitBurst != 20 {
		t.Fatalf("RateLimitBurst = %d, want 20", cfg.RateLimitBurst)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("API_PORT", "9000")
	t.Setenv("MAX_UPLOAD_BYTES", "1048576")
	t.Setenv("ASYNC_ANALYSIS", "false")
	t.Setenv("RATE_LIMIT_PER_SECOND", "2.5")

	cfg := Load()

	if cfg.APIPort != "9000" {
		t.Fatalf("APIPort = %q, want 9000", cfg.APIPort)
	}
	if cfg.MaxUploadBytes != 1048576 {
		t.Fatalf("MaxUploadBytes = %d, want 1048576", cfg.MaxUploadBytes)
	}
	if cfg.AsyncAnalysis {
		t.Fatal("AsyncAnalysis should be false")
	}
	if cfg.RateLimitPerSecond != 2.5 {
		t.Fatalf("RateLimitPerSecond = %v, want 2.5", cfg.RateLimitPerSecond)
	}
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("MAX_UPLOAD_BYTES", "not-a-number")
	t.Setenv("ASYNC_ANALYSIS", "maybe")

	cfg := Load()

	if cfg.MaxUploadBytes != 10<<20 {
		t.Fatalf("MaxUploadBytes = %d, want default", cfg.MaxUploadBytes)
	}
	if !cfg.AsyncAnalysis {
		t.Fatal("AsyncAnalysis should fall back to true")
	}
}
