package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/pagegate/internal/script"
	"github.com/jonathan/pagegate/internal/types"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "strict", cfg.Mode)
	assert.Equal(t, DefaultRenderTimeout, cfg.RenderTimeout.Std())
	assert.Equal(t, DefaultSettleDelay, cfg.SettleDelay.Std())
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_ValidJSON(t *testing.T) {
	path := writeFile(t, "pagegate.json", `{
		"mode": "permissive",
		"render_timeout": "10s",
		"settle_delay": 250,
		"lint_rules": {"no-unused-vars": "off"},
		"verbose": true
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "permissive", cfg.Mode)
	assert.Equal(t, 10*time.Second, cfg.RenderTimeout.Std())
	assert.Equal(t, 250*time.Millisecond, cfg.SettleDelay.Std())
	assert.True(t, cfg.Verbose)
	assert.Equal(t, DefaultAddr, cfg.Addr, "unset fields keep defaults")
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_ValidYAML(t *testing.T) {
	path := writeFile(t, "pagegate.yaml", `
mode: strict
render_timeout: 45s
settle_delay: 100
viewports:
  - name: phone
    width: 390
    height: 844
    device_scale_factor: 3
    is_mobile: true
    has_touch: true
max_concurrency: 8
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 45*time.Second, cfg.RenderTimeout.Std())
	assert.Equal(t, 100*time.Millisecond, cfg.SettleDelay.Std())
	require.Len(t, cfg.Viewports, 1)
	assert.Equal(t, types.Viewport{Name: "phone", Width: 390, Height: 844, DeviceScaleFactor: 3, IsMobile: true, HasTouch: true}, cfg.Viewports[0])
	assert.Equal(t, 8, cfg.MaxConcurrency)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	path := writeFile(t, "config.json", `{ invalid json }`)

	cfg, err := LoadConfig(path)
	assert.Nil(t, cfg)
	assert.ErrorContains(t, err, "failed to parse config JSON")

	var cfgErr *Error
	assert.ErrorAs(t, err, &cfgErr)
}

func TestLoadConfig_InvalidDuration(t *testing.T) {
	path := writeFile(t, "config.yml", "render_timeout: soon\n")

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "failed to parse config YAML")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Nil(t, cfg)
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Nil(t, cfg)
	assert.ErrorContains(t, err, "config path is empty")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"bad mode", func(c *Config) { c.Mode = "lenient" }, "Mode"},
		{"negative concurrency", func(c *Config) { c.MaxConcurrency = -1 }, "MaxConcurrency"},
		{"bad database url", func(c *Config) { c.DatabaseURL = "not a url" }, "DatabaseURL"},
		{"bad viewport", func(c *Config) {
			c.Viewports = []types.Viewport{{Name: "zero", Width: 0, Height: 100, DeviceScaleFactor: 1}}
		}, "Width"},
		{"duplicate viewport", func(c *Config) {
			vp := types.Viewport{Name: "a", Width: 100, Height: 100, DeviceScaleFactor: 1}
			c.Viewports = []types.Viewport{vp, vp}
		}, "duplicate viewport"},
		{"viewport name with path", func(c *Config) {
			c.Viewports = []types.Viewport{{Name: "../../tmp/x", Width: 100, Height: 100, DeviceScaleFactor: 1}}
		}, "invalid viewport name"},
		{"viewport name with separator", func(c *Config) {
			c.Viewports = []types.Viewport{{Name: `shots\evil`, Width: 100, Height: 100, DeviceScaleFactor: 1}}
		}, "invalid viewport name"},
		{"unknown lint rule", func(c *Config) { c.LintRules = map[string]string{"no-console": "error"} }, "unknown lint rule"},
		{"bad lint severity", func(c *Config) { c.LintRules = map[string]string{"no-eval": "fatal"} }, "lint_rules"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(envMap(map[string]string{
		EnvMode:           "permissive",
		EnvSkipDynamic:    "true",
		EnvRenderTimeout:  "5s",
		EnvSettleDelay:    "0s",
		EnvChromePath:     "/usr/bin/chromium",
		EnvArtifactDir:    "/tmp/shots",
		EnvMaxConcurrency: "2",
		EnvDatabaseURL:    "postgres://localhost/pagegate",
	}))
	require.NoError(t, err)

	assert.Equal(t, types.ModePermissive, cfg.EnforcementMode())
	assert.True(t, cfg.SkipDynamicTest)
	assert.Equal(t, 5*time.Second, cfg.RenderTimeout.Std())
	assert.Equal(t, time.Duration(0), cfg.SettleDelay.Std())
	assert.Equal(t, "/usr/bin/chromium", cfg.ChromePath)
	assert.Equal(t, "/tmp/shots", cfg.ArtifactDir)
	assert.Equal(t, 2, cfg.MaxConcurrency)
	assert.Equal(t, "postgres://localhost/pagegate", cfg.DatabaseURL)
}

func TestApplyEnv_EmptyKeepsValues(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(envMap(nil)))
	assert.Equal(t, Default(), cfg)
}

func TestApplyEnv_Invalid(t *testing.T) {
	for key, value := range map[string]string{
		EnvRenderTimeout:  "forever",
		EnvMaxConcurrency: "many",
		EnvSkipDynamic:    "maybe",
	} {
		cfg := Default()
		err := cfg.ApplyEnv(envMap(map[string]string{key: value}))
		assert.ErrorContains(t, err, key)
	}
}

func TestEnforcementMode_Default(t *testing.T) {
	cfg := Config{}
	assert.Equal(t, types.ModeStrict, cfg.EnforcementMode())
}

func TestScriptRules(t *testing.T) {
	cfg := Default()
	cfg.LintRules = map[string]string{script.RuleNoUnusedVars: "off", script.RuleNoUndef: "error"}

	rules, err := cfg.ScriptRules()
	require.NoError(t, err)
	assert.Equal(t, script.SeverityOff, rules[script.RuleNoUnusedVars])
	assert.Equal(t, script.SeverityError, rules[script.RuleNoUndef])
}
