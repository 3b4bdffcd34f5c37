package config

import (
	"strings"
	"testing"
	"time"
)

func TestParse_MinimalConfig(t *testing.T) {
	cfg, err := Parse([]byte(`key: sample-token`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Key != "sample-token" {
		t.Errorf("Key = %q, want sample-token", cfg.Key)
	}
	if !cfg.Autotuned() {
		t.Error("minimal config should leave autotuning enabled")
	}
	if cfg.LastID != nil {
		t.Errorf("LastID = %v, want nil", *cfg.LastID)
	}
}

func TestParse_FullConfig(t *testing.T) {
	yaml := `
key: sample-token
base_url: https://feed.example.com/safefeed.php
interval: 30s
batch_size: 200
expected_rate: 12.5
timeout: 10s
lastid: 123456
user_agent: my-consumer/2.0
debug: true
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Interval.Duration() != 30*time.Second {
		t.Errorf("Interval = %s, want 30s", cfg.Interval.Duration())
	}
	if cfg.BatchSize != 200 {
		t.Errorf("BatchSize = %d, want 200", cfg.BatchSize)
	}
	if cfg.ExpectedRate != 12.5 {
		t.Errorf("ExpectedRate = %g, want 12.5", cfg.ExpectedRate)
	}
	if cfg.Timeout.Duration() != 10*time.Second {
		t.Errorf("Timeout = %s, want 10s", cfg.Timeout.Duration())
	}
	if cfg.LastID == nil || *cfg.LastID != 123456 {
		t.Errorf("LastID = %v, want 123456", cfg.LastID)
	}
	if cfg.Autotuned() {
		t.Error("config with pacing overrides should report autotuning off")
	}
	if !cfg.Debug {
		t.Error("Debug = false, want true")
	}
}

func TestParse_MissingKey(t *testing.T) {
	_, err := Parse([]byte(`timeout: 10s`))
	if err == nil {
		t.Fatal("expected error for missing key")
	}
	if !strings.Contains(err.Error(), "key is required") {
		t.Errorf("error = %v, want mention of required key", err)
	}
}

func TestParse_KeyEnvExpansion(t *testing.T) {
	t.Setenv("TEST_FEED_KEY", "expanded-token")

	cfg, err := Parse([]byte(`key: ${TEST_FEED_KEY}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Key != "expanded-token" {
		t.Errorf("Key = %q, want expanded-token", cfg.Key)
	}
}

func TestParse_EnvExpansionDefault(t *testing.T) {
	cfg, err := Parse([]byte(`key: ${SAFEFEED_UNSET_VAR:-fallback-token}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Key != "fallback-token" {
		t.Errorf("Key = %q, want fallback-token", cfg.Key)
	}
}

func TestParse_EnvExpansionMissingVar(t *testing.T) {
	_, err := Parse([]byte(`key: ${SAFEFEED_UNSET_VAR}`))
	if err == nil {
		t.Fatal("expected error for unset environment variable")
	}
}

func TestParse_InvalidDuration(t *testing.T) {
	_, err := Parse([]byte("key: k\ninterval: soon"))
	if err == nil {
		t.Fatal("expected error for invalid duration")
	}
}

func TestParse_InvalidBaseURLScheme(t *testing.T) {
	_, err := Parse([]byte("key: k\nbase_url: ftp://feed.example.com"))
	if err == nil {
		t.Fatal("expected error for non-http scheme")
	}
}

func TestParse_NegativeValues(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"batch_size", "key: k\nbatch_size: -1"},
		{"expected_rate", "key: k\nexpected_rate: -0.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.yaml)); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestParse_ZeroLastIDIsPreserved(t *testing.T) {
	// 0 means "oldest article still in the feed", distinct from unset
	cfg, err := Parse([]byte("key: k\nlastid: 0"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.LastID == nil || *cfg.LastID != 0 {
		t.Errorf("LastID = %v, want 0", cfg.LastID)
	}
}

func TestParse_NotYAML(t *testing.T) {
	if _, err := Parse([]byte("{{{")); err == nil {
		t.Fatal("expected parse error")
	}
}
