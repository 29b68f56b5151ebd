package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jonathan/pagegate/internal/config"
	"github.com/jonathan/pagegate/internal/db"
	"github.com/jonathan/pagegate/internal/pipeline"
	"github.com/jonathan/pagegate/internal/responsive"
	"github.com/jonathan/pagegate/internal/script"
	"github.com/jonathan/pagegate/internal/types"
)

// loadConfig reads the --config file and environment, applying --verbose.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Verbose = true
	}
	return cfg, nil
}

// buildPipeline wires the script analyzer and the Chrome-backed tester from cfg.
// withBrowser false leaves the dynamic stage unavailable.
func buildPipeline(cfg *config.Config, withBrowser bool) (*pipeline.Pipeline, error) {
	rules, err := cfg.ScriptRules()
	if err != nil {
		return nil, fmt.Errorf("invalid lint rules: %w", err)
	}

	pcfg := pipeline.Config{
		Script:  script.NewValidator(script.NewAnalyzer(rules)),
		Verbose: cfg.Verbose,
	}
	if withBrowser {
		browser := responsive.NewChromeBrowser(responsive.ChromeOptions{
			ExecPath: cfg.ChromePath,
			Headless: !cfg.ShowBrowser,
			Verbose:  cfg.Verbose,
		})
		pcfg.Tester = responsive.NewTester(browser, responsive.Options{
			Viewports:       cfg.Viewports,
			RenderTimeout:   cfg.RenderTimeout.Std(),
			ViewportTimeout: cfg.ViewportTimeout.Std(),
			SettleDelay:     cfg.SettleDelay.Std(),
			ArtifactDir:     cfg.ArtifactDir,
			Verbose:         cfg.Verbose,
		})
	}
	return pipeline.New(pcfg), nil
}

// openStore connects to the verdict database when one is configured.
// It returns nil, nil when DATABASE_URL is unset.
func openStore(ctx context.Context, cfg *config.Config) (*db.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, nil
	}
	store, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := store.EnsureSchema(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to prepare verdict schema: %w", err)
	}
	return store, nil
}

// readFragment returns the file's contents, or "" for an empty path.
func readFragment(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(content), nil
}

// readBundle loads the three fragments. At least one path must be set.
func readBundle(htmlPath, cssPath, jsPath string) (types.CodeBundle, error) {
	var bundle types.CodeBundle
	if htmlPath == "" && cssPath == "" && jsPath == "" {
		return bundle, fmt.Errorf("at least one of --html, --css or --js is required")
	}
	var err error
	if bundle.Markup, err = readFragment(htmlPath); err != nil {
		return bundle, err
	}
	if bundle.Styles, err = readFragment(cssPath); err != nil {
		return bundle, err
	}
	if bundle.Script, err = readFragment(jsPath); err != nil {
		return bundle, err
	}
	return bundle, nil
}

// saveVerdicts stores verdicts when a database is configured. Failures are logged, not returned.
func saveVerdicts(ctx context.Context, cfg *config.Config, source string, verdicts ...*types.Verdict) []string {
	store, err := openStore(ctx, cfg)
	if err != nil {
		log.Printf("Warning: verdict storage unavailable: %v", err)
		return nil
	}
	if store == nil {
		return nil
	}
	defer store.Close()

	ids := make([]string, 0, len(verdicts))
	categories := pipeline.StageCategories()
	for _, v := range verdicts {
		id, err := store.SaveVerdict(ctx, source, v, categories)
		if err != nil {
			log.Printf("Warning: failed to store verdict: %v", err)
			ids = append(ids, "")
			continue
		}
		ids = append(ids, id.String())
	}
	return ids
}
