package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"github.com/jonathan/pagegate/internal/db"
	"github.com/jonathan/pagegate/internal/pipeline"
	"github.com/jonathan/pagegate/internal/types"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Validate many pages concurrently",
	Long: `Validates every request in a JSON file (an array of {"html","css","js","mode","skip_dynamic_test"})
or every *.json request file in a directory. Writes one verdict per request and exits
non-zero when any verdict is invalid.`,
	RunE: runBatch,
}

var (
	batchInput       string
	batchOutput      string
	batchConcurrency int
	batchSave        bool
)

func init() {
	batchCmd.Flags().StringVarP(&batchInput, "in", "i", "", "Path to a JSON array of requests or a directory of request files (required)")
	batchCmd.Flags().StringVarP(&batchOutput, "out", "o", "", "Write the verdicts JSON array to this path")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "Parallel validations (default from config)")
	batchCmd.Flags().BoolVar(&batchSave, "save", false, "Store the verdicts in the database (requires DATABASE_URL)")

	if err := batchCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	rootCmd.AddCommand(batchCmd)
}

// batchResult pairs a request source with its verdict in the output file.
type batchResult struct {
	Source  string         `json:"source"`
	ID      string         `json:"id,omitempty"`
	Verdict *types.Verdict `json:"verdict"`
}

func runBatch(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sources, reqs, err := loadBatchRequests(batchInput)
	if err != nil {
		return err
	}

	p, err := buildPipeline(cfg, !cfg.SkipDynamicTest)
	if err != nil {
		return err
	}

	concurrency := batchConcurrency
	if concurrency <= 0 {
		concurrency = cfg.MaxConcurrency
	}

	ctx := cmd.Context()
	verdicts := p.ValidateBatch(ctx, reqs, concurrency)

	var ids []string
	if batchSave {
		ids = saveVerdicts(ctx, cfg, db.SourceBatch, verdicts...)
	}

	results := make([]batchResult, len(verdicts))
	failed := 0
	out := cmd.OutOrStdout()
	for i, v := range verdicts {
		results[i] = batchResult{Source: sources[i], Verdict: v}
		if i < len(ids) {
			results[i].ID = ids[i]
		}
		checkVerdictSchema(v)
		status := "PASSED"
		if !v.Valid {
			status = "FAILED"
			failed++
		}
		fmt.Fprintf(out, "%-6s %s (%d errors, %d warnings)\n", status, sources[i], len(v.Errors), len(v.Warnings))
		if !v.Valid && cfg.Verbose {
			fmt.Fprintln(out, pipeline.FormatVerdict(v))
		}
	}

	if batchOutput != "" {
		if err := writeVerdict(batchOutput, results); err != nil {
			return err
		}
	}

	fmt.Fprintf(out, "\n%d of %d page(s) passed\n", len(verdicts)-failed, len(verdicts))
	if failed > 0 {
		return fmt.Errorf("%d of %d page(s) failed validation", failed, len(verdicts))
	}
	return nil
}

var batchValidate = validator.New(validator.WithRequiredStructEnabled())

// loadBatchRequests reads requests from a JSON array file or a directory of
// single-request JSON files. It returns a label per request for reporting.
func loadBatchRequests(path string) ([]string, []types.ValidationRequest, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, fmt.Errorf("batch input not found: %w", err)
	}

	var sources []string
	var reqs []types.ValidationRequest
	if info.IsDir() {
		matches, err := filepath.Glob(filepath.Join(path, "*.json"))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to list batch directory: %w", err)
		}
		sort.Strings(matches)
		for _, m := range matches {
			var req types.ValidationRequest
			if err := readJSONFile(m, &req); err != nil {
				return nil, nil, err
			}
			sources = append(sources, filepath.Base(m))
			reqs = append(reqs, req)
		}
	} else {
		if err := readJSONFile(path, &reqs); err != nil {
			return nil, nil, err
		}
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		for i := range reqs {
			sources = append(sources, fmt.Sprintf("%s[%d]", base, i))
		}
	}

	if len(reqs) == 0 {
		return nil, nil, fmt.Errorf("no requests found in %s", path)
	}
	for i, req := range reqs {
		if err := batchValidate.Struct(req); err != nil {
			return nil, nil, fmt.Errorf("invalid request %s: %w", sources[i], err)
		}
	}
	return sources, reqs, nil
}

func readJSONFile(path string, v any) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(content, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}
