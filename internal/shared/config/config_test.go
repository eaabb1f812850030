package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "MAX_FILE_SIZE", "ALLOWED_FILE_TYPES", "REQUEST_TIMEOUT", "ANALYSIS_PROVIDER", "VALIDATE_CONTRACTS"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.Port)
	}
	if cfg.MaxFileSize != 10<<20 {
		t.Fatalf("expected 10MB limit, got %d", cfg.MaxFileSize)
	}
	if len(cfg.AllowedFileTypes) != 1 || cfg.AllowedFileTypes[0] != "docx" {
		t.Fatalf("unexpected allowed types: %v", cfg.AllowedFileTypes)
	}
	if cfg.RequestTimeout != 90*time.Second {
		t.Fatalf("expected 90s request timeout, got %s", cfg.RequestTimeout)
	}
	if cfg.AnalysisProvider != ProviderAnthropic {
		t.Fatalf("expected anthropic provider, got %q", cfg.AnalysisProvider)
	}
	if cfg.ValidateContracts {
		t.Fatalf("expected contract validation to be opt-in")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ALLOWED_FILE_TYPES", " .DOCX , docm ")
	t.Setenv("ANALYSIS_PROVIDER", "Gemini")
	t.Setenv("ANALYSIS_TIMEOUT", "15")
	t.Setenv("ENV", "prod")

	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected port 9090, got %q", cfg.Port)
	}
	if strings.Join(cfg.AllowedFileTypes, ",") != "docx,docm" {
		t.Fatalf("unexpected allowed types: %v", cfg.AllowedFileTypes)
	}
	if cfg.AnalysisProvider != ProviderGemini {
		t.Fatalf("expected gemini provider, got %q", cfg.AnalysisProvider)
	}
	if cfg.AnalysisTimeout != 15*time.Second {
		t.Fatalf("expected 15s analysis timeout, got %s", cfg.AnalysisTimeout)
	}
	if cfg.Env != "production" {
		t.Fatalf("expected production env, got %q", cfg.Env)
	}
}

func TestValidateReportsMissingKeys(t *testing.T) {
	cfg := Config{AnalysisProvider: ProviderAnthropic, MaxFileSize: 1}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing keys")
	}
	for _, key := range []string{"ANTHROPIC_API_KEY", "PERPLEXITY_API_KEY"} {
		if !strings.Contains(err.Error(), key) {
			t.Fatalf("expected %s in error, got %v", key, err)
		}
	}

	cfg.AnthropicAPIKey = "a"
	cfg.PerplexityAPIKey = "p"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}
