package ratelimit

import (
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv(EnvEnabled, "")
	t.Setenv(EnvAllowlist, "10.0.0.1, 10.0.0.2")

	cfg := LoadConfig(6, 2)
	if !cfg.Enabled {
		t.Fatal("Expected rate limiting to be enabled")
	}
	if cfg.Default.Limit != 60 || cfg.Default.Window != time.Minute {
		t.Errorf("Expected default rule 60/min, got %+v", cfg.Default)
	}
	if !cfg.Allowlist["10.0.0.1"] || !cfg.Allowlist["10.0.0.2"] {
		t.Errorf("Expected both allowlist entries, got %v", cfg.Allowlist)
	}

	rule, _ := cfg.RuleFor("POST", "/validate")
	if rule.Limit != 6 || rule.Burst != 2 {
		t.Errorf("Expected /validate limit 6 burst 2, got %+v", rule)
	}
	quick, _ := cfg.RuleFor("POST", "/validate/quick")
	if quick.Limit != 30 {
		t.Errorf("Expected /validate/quick limit 30, got %+v", quick)
	}
}

func TestLoadConfig_Disabled(t *testing.T) {
	t.Setenv(EnvEnabled, "")
	if LoadConfig(0, 0).Enabled {
		t.Error("Expected a zero limit to disable rate limiting")
	}

	t.Setenv(EnvEnabled, "false")
	if LoadConfig(60, 10).Enabled {
		t.Error("Expected env override to disable rate limiting")
	}
}

func TestLoadConfig_WindowFromEnv(t *testing.T) {
	t.Setenv(EnvEnabled, "")
	t.Setenv(EnvWindow, "30s")
	t.Setenv(EnvSweep, "not-a-duration")

	cfg := LoadConfig(10, 5)
	if cfg.Default.Window != 30*time.Second {
		t.Errorf("Expected 30s window, got %v", cfg.Default.Window)
	}
	if cfg.SweepInterval != 5*time.Minute {
		t.Errorf("Expected invalid sweep interval to fall back to 5m, got %v", cfg.SweepInterval)
	}
}

func TestDefaultRules_BatchFloor(t *testing.T) {
	for _, r := range DefaultRules(3, 2, time.Minute) {
		if r.Path == "/validate/batch" && (r.Limit != 1 || r.Burst != 1) {
			t.Errorf("Expected batch floor of 1/1, got %+v", r)
		}
	}
}

func TestRuleFor(t *testing.T) {
	cfg := Config{
		Default: Rule{Path: "*", Limit: 100, Window: time.Minute},
		Rules:   DefaultRules(10, 5, time.Minute),
		Exempt:  map[string]bool{"/health": true},
	}

	tests := []struct {
		method, path string
		wantPath     string
		wantLimited  bool
	}{
		{"POST", "/validate", "/validate", true},
		{"POST", "/validate/deploy", "/validate/deploy", true},
		{"GET", "/verdicts/0b5c3f9e", "/verdicts/", true},
		{"GET", "/verdicts", "*", true},
		{"GET", "/validate", "*", true},
		{"GET", "/health", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rule, limited := cfg.RuleFor(tt.method, tt.path)
			if limited != tt.wantLimited {
				t.Fatalf("limited = %v, want %v", limited, tt.wantLimited)
			}
			if rule.Path != tt.wantPath {
				t.Errorf("rule path = %q, want %q", rule.Path, tt.wantPath)
			}
		})
	}
}

func TestParseIPList(t *testing.T) {
	set := parseIPList(" 1.1.1.1,,2.2.2.2 ")
	if len(set) != 2 || !set["1.1.1.1"] || !set["2.2.2.2"] {
		t.Errorf("unexpected set %v", set)
	}
	if len(parseIPList("")) != 0 {
		t.Error("Expected empty list to yield an empty set")
	}
}
