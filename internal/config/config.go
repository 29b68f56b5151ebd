// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/jonathan/pagegate/internal/script"
	"github.com/jonathan/pagegate/internal/types"
)

// Defaults applied by Default.
const (
	DefaultRenderTimeout  = 30 * time.Second
	DefaultSettleDelay    = 500 * time.Millisecond
	DefaultMaxConcurrency = 4
	DefaultAddr           = ":8080"
	DefaultRateLimit      = 60 // requests per minute per client
	DefaultRateBurst      = 10
)

// viewportName keeps viewport names usable as screenshot file names.
var viewportName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// Config represents pagegate configuration loaded from a JSON or YAML file.
// All fields are optional; missing values keep their defaults.
type Config struct {
	// Enforcement
	Mode            string `json:"mode,omitempty" yaml:"mode,omitempty" validate:"omitempty,oneof=strict permissive"`
	SkipDynamicTest bool   `json:"skip_dynamic_test,omitempty" yaml:"skip_dynamic_test,omitempty"`

	// Rendering engine
	RenderTimeout   Duration         `json:"render_timeout,omitempty" yaml:"render_timeout,omitempty" validate:"gte=0"`
	ViewportTimeout Duration         `json:"viewport_timeout,omitempty" yaml:"viewport_timeout,omitempty" validate:"gte=0"`
	SettleDelay     Duration         `json:"settle_delay,omitempty" yaml:"settle_delay,omitempty" validate:"gte=0"`
	Viewports       []types.Viewport `json:"viewports,omitempty" yaml:"viewports,omitempty" validate:"omitempty,dive"`
	ChromePath      string           `json:"chrome_path,omitempty" yaml:"chrome_path,omitempty"`
	ShowBrowser     bool             `json:"show_browser,omitempty" yaml:"show_browser,omitempty"` // Run Chrome with a window
	ArtifactDir     string           `json:"artifact_dir,omitempty" yaml:"artifact_dir,omitempty"`

	// Static analysis
	LintRules map[string]string `json:"lint_rules,omitempty" yaml:"lint_rules,omitempty"` // rule name -> off|warn|error

	// Batch and server
	MaxConcurrency int    `json:"max_concurrency,omitempty" yaml:"max_concurrency,omitempty" validate:"gte=0,lte=64"`
	Addr           string `json:"addr,omitempty" yaml:"addr,omitempty"`
	RateLimit      int    `json:"rate_limit,omitempty" yaml:"rate_limit,omitempty" validate:"gte=0"`
	RateBurst      int    `json:"rate_burst,omitempty" yaml:"rate_burst,omitempty" validate:"gte=0"`

	// Behavior
	Verbose     bool   `json:"verbose,omitempty" yaml:"verbose,omitempty"`
	DatabaseURL string `json:"database_url,omitempty" yaml:"database_url,omitempty" validate:"omitempty,url"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Mode:           string(types.ModeStrict),
		RenderTimeout:  Duration(DefaultRenderTimeout),
		SettleDelay:    Duration(DefaultSettleDelay),
		MaxConcurrency: DefaultMaxConcurrency,
		Addr:           DefaultAddr,
		RateLimit:      DefaultRateLimit,
		RateBurst:      DefaultRateBurst,
	}
}

// LoadConfig loads configuration from a JSON or YAML file over the defaults.
// The format is chosen by extension; .yaml and .yml are YAML, anything else JSON.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, &Error{Message: "config path is empty"}
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, &Error{Message: "failed to get current directory", Cause: err}
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Message: "failed to read config file " + path, Cause: err}
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, &Error{Message: "failed to parse config YAML", Cause: err}
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, &Error{Message: "failed to parse config JSON", Cause: err}
		}
	}
	return &cfg, nil
}

// Load returns the defaults, overlaid by the file at path when set, then by the environment.
// The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &Error{Field: fe.Namespace(), Message: "failed '" + fe.Tag() + "' check", Cause: err}
		}
		return &Error{Message: "invalid configuration", Cause: err}
	}
	if _, err := script.ParseRules(c.LintRules); err != nil {
		return &Error{Field: "lint_rules", Message: "invalid rule", Cause: err}
	}
	seen := make(map[string]bool, len(c.Viewports))
	for _, vp := range c.Viewports {
		if !viewportName.MatchString(vp.Name) {
			return &Error{Field: "viewports", Message: "invalid viewport name " + strconv.Quote(vp.Name)}
		}
		if seen[vp.Name] {
			return &Error{Field: "viewports", Message: "duplicate viewport name " + vp.Name}
		}
		seen[vp.Name] = true
	}
	return nil
}

// EnforcementMode returns the configured mode, defaulting to strict.
func (c *Config) EnforcementMode() types.Mode {
	mode, err := types.ParseMode(c.Mode)
	if err != nil {
		return types.ModeStrict
	}
	return mode
}

// ScriptRules returns the lint rule overrides as severities.
func (c *Config) ScriptRules() (map[string]script.Severity, error) {
	return script.ParseRules(c.LintRules)
}
