package config

import (
	"strconv"
	"strings"
	"time"
)

// Environment variables read by ApplyEnv.
const (
	EnvMode           = "PAGEGATE_MODE"
	EnvSkipDynamic    = "PAGEGATE_SKIP_DYNAMIC_TEST"
	EnvRenderTimeout  = "PAGEGATE_RENDER_TIMEOUT"
	EnvSettleDelay    = "PAGEGATE_SETTLE_DELAY"
	EnvChromePath     = "PAGEGATE_CHROME_PATH"
	EnvArtifactDir    = "PAGEGATE_ARTIFACT_DIR"
	EnvMaxConcurrency = "PAGEGATE_MAX_CONCURRENCY"
	EnvAddr           = "PAGEGATE_ADDR"
	EnvDatabaseURL    = "DATABASE_URL"
)

// ApplyEnv overlays non-empty environment variables onto c. getenv is usually os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	str(EnvMode, &c.Mode)
	str(EnvChromePath, &c.ChromePath)
	str(EnvArtifactDir, &c.ArtifactDir)
	str(EnvAddr, &c.Addr)
	str(EnvDatabaseURL, &c.DatabaseURL)

	if v := strings.TrimSpace(getenv(EnvSkipDynamic)); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return &Error{Field: EnvSkipDynamic, Message: "expected a boolean", Cause: err}
		}
		c.SkipDynamicTest = b
	}

	for key, dst := range map[string]*Duration{
		EnvRenderTimeout: &c.RenderTimeout,
		EnvSettleDelay:   &c.SettleDelay,
	} {
		v := strings.TrimSpace(getenv(key))
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return &Error{Field: key, Message: "expected a duration such as 30s", Cause: err}
		}
		*dst = Duration(d)
	}

	if v := strings.TrimSpace(getenv(EnvMaxConcurrency)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return &Error{Field: EnvMaxConcurrency, Message: "expected an integer", Cause: err}
		}
		c.MaxConcurrency = n
	}
	return nil
}
