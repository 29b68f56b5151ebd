package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/pagegate/internal/db"
	"github.com/jonathan/pagegate/internal/observability"
	"github.com/jonathan/pagegate/internal/pipeline"
	"github.com/jonathan/pagegate/internal/schemas"
	"github.com/jonathan/pagegate/internal/types"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a generated page",
	Long: `Runs the validation pipeline over an HTML fragment with optional CSS and JavaScript.
Static checks always run; the page is then rendered in headless Chrome at each viewport
unless --skip-dynamic or --quick is given. Exits non-zero when the verdict is invalid.`,
	RunE: runValidate,
}

var (
	validateHTML        string
	validateCSS         string
	validateJS          string
	validateMode        string
	validateSkipDynamic bool
	validateQuick       bool
	validateDeploy      bool
	validateJSON        bool
	validateOutput      string
	validateSave        bool
)

func init() {
	validateCmd.Flags().StringVar(&validateHTML, "html", "", "Path to the HTML fragment")
	validateCmd.Flags().StringVar(&validateCSS, "css", "", "Path to the stylesheet")
	validateCmd.Flags().StringVar(&validateJS, "js", "", "Path to the script")
	validateCmd.Flags().StringVarP(&validateMode, "mode", "m", "", "Enforcement mode: strict or permissive (default from config)")
	validateCmd.Flags().BoolVar(&validateSkipDynamic, "skip-dynamic", false, "Skip responsive testing")
	validateCmd.Flags().BoolVar(&validateQuick, "quick", false, "Run static checks only")
	validateCmd.Flags().BoolVar(&validateDeploy, "deploy", false, "Run the strict pre-deployment gate and print deploy advice")
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "Print the verdict as JSON")
	validateCmd.Flags().StringVarP(&validateOutput, "out", "o", "", "Write the verdict JSON to this path")
	validateCmd.Flags().BoolVar(&validateSave, "save", false, "Store the verdict in the database (requires DATABASE_URL)")

	validateCmd.MarkFlagsMutuallyExclusive("quick", "deploy")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	mode := cfg.EnforcementMode()
	if validateMode != "" {
		if mode, err = types.ParseMode(validateMode); err != nil {
			return err
		}
	}

	bundle, err := readBundle(validateHTML, validateCSS, validateJS)
	if err != nil {
		return err
	}

	skipDynamic := validateSkipDynamic || cfg.SkipDynamicTest
	p, err := buildPipeline(cfg, validateDeploy || (!validateQuick && !skipDynamic))
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	printer := observability.NewPrinter(out)

	var verdict *types.Verdict
	switch {
	case validateQuick:
		verdict = p.ValidateQuick(ctx, bundle, mode)
	case validateDeploy:
		verdict = p.ValidateForDeployment(ctx, bundle)
	default:
		req := types.ValidationRequest{
			Markup:          bundle.Markup,
			Styles:          bundle.Styles,
			Script:          bundle.Script,
			Mode:            mode,
			SkipDynamicTest: skipDynamic,
		}
		var onProgress pipeline.ProgressCallback
		if cfg.Verbose && !validateJSON {
			onProgress = func(e pipeline.ProgressEvent) {
				printer.PrintProgress(e.Stage, e.Status, e.Message)
			}
		}
		verdict = p.ValidateWithProgress(ctx, req, onProgress)
	}

	checkVerdictSchema(verdict)

	if validateOutput != "" {
		if err := writeVerdict(validateOutput, verdict); err != nil {
			return err
		}
	}

	if validateSave {
		if ids := saveVerdicts(ctx, cfg, db.SourceCLI, verdict); len(ids) == 1 && ids[0] != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "Stored verdict %s\n", ids[0])
		}
	}

	if validateJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(verdict); err != nil {
			return fmt.Errorf("failed to encode verdict: %w", err)
		}
	} else {
		printer.PrintVerdict(verdict)
		if cfg.Verbose {
			printer.PrintStages(verdict)
		}
		if details, ok := verdict.ValidationSteps[pipeline.StageResponsive].Details.(*types.ResponsiveResult); ok {
			printer.PrintResponsive(details)
		}
		if validateDeploy {
			printer.PrintAdvice(pipeline.DeploymentRecommendation(verdict))
		}
	}

	if !verdict.Valid {
		return fmt.Errorf("validation failed with %d error(s)", len(verdict.Errors))
	}
	return nil
}

// checkVerdictSchema validates the verdict against its published schema (non-fatal).
func checkVerdictSchema(verdict *types.Verdict) {
	if err := schemas.ValidateVerdict(verdict); err != nil {
		var validationErr *schemas.ValidationError
		if errors.As(err, &validationErr) {
			_, _ = fmt.Fprintf(os.Stderr, "Warning: verdict does not validate against schema: %v\n", err)
		} else {
			_, _ = fmt.Fprintf(os.Stderr, "Warning: could not validate verdict against schema: %v\n", err)
		}
	}
}

// writeVerdict writes v as indented JSON, creating the parent directory.
func writeVerdict(path string, v any) error {
	outputDir := filepath.Dir(path)
	if outputDir != "" && outputDir != "." {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal verdict to JSON: %w", err)
	}
	if err := os.WriteFile(path, jsonBytes, 0644); err != nil {
		return fmt.Errorf("failed to write verdict to output file: %w", err)
	}
	return nil
}
