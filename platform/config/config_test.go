package config

import (
	"strings"
	"testing"
	"time"
)

func lookupFrom(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func baseEnv() map[string]string {
	return map[string]string{
		"DATABASE_URL":      "postgres://localhost/filmdecks",
		"JWT_ACCESS_SECRET": "secret",
	}
}

func TestFromLookupDefaults(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(baseEnv()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.GetAnalysisTimeout() != 15*time.Minute {
		t.Errorf("expected 15m analysis timeout, got %s", cfg.GetAnalysisTimeout())
	}
	if cfg.GetEnrichmentDispatchMode() != DispatchInline {
		t.Errorf("expected inline dispatch, got %q", cfg.GetEnrichmentDispatchMode())
	}
	if cfg.GetLeadNotificationEmail() != cfg.GetEmailFromAddress() {
		t.Errorf("notification address should default to the from address")
	}
	if cfg.IsMinIOEnabled() {
		t.Errorf("minio should be disabled without an endpoint")
	}
}

func TestFromLookupRequiresDatabaseURL(t *testing.T) {
	env := baseEnv()
	delete(env, "DATABASE_URL")
	if _, err := FromLookup(lookupFrom(env)); err == nil || !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Fatalf("expected DATABASE_URL error, got %v", err)
	}
}

func TestFromLookupQueueDispatchNeedsRedis(t *testing.T) {
	env := baseEnv()
	env["ENRICHMENT_DISPATCH"] = "queue"
	if _, err := FromLookup(lookupFrom(env)); err == nil {
		t.Fatalf("expected error without REDIS_URL")
	}

	env["REDIS_URL"] = "redis://localhost:6379/0"
	cfg, err := FromLookup(lookupFrom(env))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.GetEnrichmentDispatchMode() != DispatchQueue {
		t.Fatalf("expected queue dispatch")
	}
}

func TestFromLookupEmailProviderValidation(t *testing.T) {
	env := baseEnv()
	env["EMAIL_ENABLED"] = "true"
	env["EMAIL_PROVIDER"] = "sendgrid"
	if _, err := FromLookup(lookupFrom(env)); err == nil {
		t.Fatalf("expected error without SENDGRID_API_KEY")
	}
	env["SENDGRID_API_KEY"] = "SG.key"
	if _, err := FromLookup(lookupFrom(env)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFromLookupRejectsWildcardWithCredentials(t *testing.T) {
	env := baseEnv()
	env["CORS_ORIGINS"] = "*"
	env["CORS_ALLOW_CREDENTIALS"] = "true"
	if _, err := FromLookup(lookupFrom(env)); err == nil {
		t.Fatalf("expected CORS error")
	}
}
