package config

import (
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PORT", "")
	t.Setenv("JWT_TTL_HOURS", "")
	t.Setenv("CORS_ORIGINS", "")
	t.Setenv("OTEL_SAMPLER_RATIO", "")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("port: got=%q want=8080", cfg.Port)
	}
	if cfg.JWTTTL != 72*time.Hour {
		t.Errorf("jwt ttl: got=%v want=72h", cfg.JWTTTL)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Errorf("cors origins: got=%v", cfg.CORSOrigins)
	}
	if cfg.Otel.SampleRatio != 0.1 {
		t.Errorf("sample ratio: got=%v want=0.1", cfg.Otel.SampleRatio)
	}
}

func TestFromEnvRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if _, err := FromEnv(); err == nil {
		t.Fatal("expected error without JWT_SECRET")
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("PORT", "9000")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test ,")
	t.Setenv("OTEL_ENABLED", "yes")
	t.Setenv("OTEL_SAMPLER_RATIO", "4")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Port != "9000" {
		t.Errorf("port: got=%q", cfg.Port)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.test" {
		t.Errorf("cors origins: got=%v", cfg.CORSOrigins)
	}
	if !cfg.Otel.Enabled {
		t.Error("expected otel enabled")
	}
	if cfg.Otel.SampleRatio != 1 {
		t.Errorf("sample ratio not clamped: %v", cfg.Otel.SampleRatio)
	}
}
