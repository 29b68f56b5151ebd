package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Rule limits one endpoint.
type Rule struct {
	Method string
	Path   string        // Exact path, or a prefix when it ends in "/"
	Limit  int           // Requests per Window; 0 means unlimited
	Burst  int           // Bucket capacity; defaults to Limit
	Window time.Duration // Refill period for Limit tokens
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled       bool
	Default       Rule // Applies when no rule matches
	Rules         []Rule
	Exempt        map[string]bool // Paths that are never limited
	Allowlist     map[string]bool // Client IPs that are never limited
	Denylist      map[string]bool // Client IPs that are always rejected
	SweepInterval time.Duration
	IdleTTL       time.Duration // Buckets unused this long are dropped
}

// Environment variables read by LoadConfig.
const (
	EnvEnabled   = "PAGEGATE_RATE_LIMIT_ENABLED"
	EnvWindow    = "PAGEGATE_RATE_LIMIT_WINDOW"
	EnvSweep     = "PAGEGATE_RATE_LIMIT_CLEANUP_INTERVAL"
	EnvAllowlist = "PAGEGATE_RATE_LIMIT_WHITELIST"
	EnvDenylist  = "PAGEGATE_RATE_LIMIT_BLACKLIST"
)

// LoadConfig builds the rate limiting configuration. perMinute and burst
// bound the rendering endpoints; static-only endpoints get more headroom.
// Environment variables can disable limiting or adjust lists and timing.
func LoadConfig(perMinute, burst int) Config {
	if !envBool(EnvEnabled, perMinute > 0) {
		return Config{}
	}

	window := envDuration(EnvWindow, time.Minute)
	return Config{
		Enabled:       true,
		Default:       Rule{Path: "*", Limit: perMinute * 10, Window: window},
		Rules:         DefaultRules(perMinute, burst, window),
		Exempt:        map[string]bool{"/health": true},
		Allowlist:     parseIPList(os.Getenv(EnvAllowlist)),
		Denylist:      parseIPList(os.Getenv(EnvDenylist)),
		SweepInterval: envDuration(EnvSweep, 5*time.Minute),
		IdleTTL:       time.Hour,
	}
}

// DefaultRules returns the per-endpoint limits. Endpoints that launch a
// browser share the base budget; batch requests cost roughly ten renders each.
func DefaultRules(limit, burst int, window time.Duration) []Rule {
	return []Rule{
		{Method: "POST", Path: "/validate", Limit: limit, Burst: burst, Window: window},
		{Method: "POST", Path: "/validate/deploy", Limit: limit, Burst: burst, Window: window},
		{Method: "POST", Path: "/validate/stream", Limit: limit, Burst: burst, Window: window},
		{Method: "POST", Path: "/validate/batch", Limit: max(limit/10, 1), Burst: max(burst/5, 1), Window: window},
		{Method: "POST", Path: "/validate/quick", Limit: limit * 5, Burst: burst * 5, Window: window},
		{Method: "GET", Path: "/verdicts/", Limit: limit * 10, Window: window},
	}
}

// RuleFor returns the rule governing a request. Exact paths win over prefixes;
// unmatched requests get the default rule. The second result is false for exempt paths.
func (c Config) RuleFor(method, path string) (Rule, bool) {
	if c.Exempt[path] {
		return Rule{}, false
	}
	for _, r := range c.Rules {
		if r.Method == method && r.Path == path {
			return r, true
		}
	}
	for _, r := range c.Rules {
		if r.Method == method && strings.HasSuffix(r.Path, "/") && strings.HasPrefix(path, r.Path) {
			return r, true
		}
	}
	return c.Default, true
}

func envBool(key string, fallback bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return fallback
}

// parseIPList parses a comma-separated list of IP addresses into a set.
func parseIPList(list string) map[string]bool {
	set := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			set[ip] = true
		}
	}
	return set
}
