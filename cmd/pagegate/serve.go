package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/jonathan/pagegate/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes the validation pipeline over REST.
Verdicts are stored for audit when DATABASE_URL is set.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Address to listen on (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Addr = serveAddr
	}

	p, err := buildPipeline(cfg, !cfg.SkipDynamicTest)
	if err != nil {
		return err
	}
	// the deployment gate always renders, whatever skip_dynamic_test says
	deploy := p
	if cfg.SkipDynamicTest {
		if deploy, err = buildPipeline(cfg, true); err != nil {
			return err
		}
	}

	srvCfg := server.Config{
		Addr:           cfg.Addr,
		Pipeline:       p,
		Deploy:         deploy,
		RateLimit:      cfg.RateLimit,
		RateBurst:      cfg.RateBurst,
		MaxConcurrency: cfg.MaxConcurrency,
		Verbose:        cfg.Verbose,
	}

	store, err := openStore(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("failed to open verdict store: %w", err)
	}
	if store != nil {
		defer store.Close()
		srvCfg.Store = store
	} else {
		log.Printf("DATABASE_URL not set; verdicts will not be stored")
	}

	srv, err := server.New(srvCfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
