package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/pagegate/internal/types"
)

// DefaultListLimit caps ListVerdicts when no limit is given.
const DefaultListLimit = 50

// SaveVerdict stores a verdict and its per-stage summary in one transaction.
// categories maps stage names to their category; unknown stages are stored with an empty one.
func (db *DB) SaveVerdict(ctx context.Context, source string, v *types.Verdict, categories map[string]string) (uuid.UUID, error) {
	if v == nil {
		return uuid.Nil, fmt.Errorf("verdict is nil")
	}
	content, err := json.Marshal(v)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal verdict: %w", err)
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	id := uuid.New()
	_, err = tx.Exec(ctx,
		`INSERT INTO verdicts (id, source, mode, valid, error_count, warning_count, processing_time_ms, verdict)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, source, string(v.Mode), v.Valid, len(v.Errors), len(v.Warnings), v.ProcessingTimeMs, content,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save verdict: %w", err)
	}

	for _, rec := range stageRecords(id, v, categories) {
		_, err = tx.Exec(ctx,
			`INSERT INTO verdict_stages (verdict_id, stage, category, valid, error_count, warning_count)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			rec.VerdictID, rec.Stage, rec.Category, rec.Valid, rec.ErrorCount, rec.WarningCount,
		)
		if err != nil {
			return uuid.Nil, fmt.Errorf("failed to save stage %s: %w", rec.Stage, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("failed to commit verdict: %w", err)
	}
	return id, nil
}

// stageRecords flattens a verdict's steps, ordered by stage name.
func stageRecords(id uuid.UUID, v *types.Verdict, categories map[string]string) []StageRecord {
	records := make([]StageRecord, 0, len(v.ValidationSteps))
	for name, step := range v.ValidationSteps {
		records = append(records, StageRecord{
			VerdictID:    id,
			Stage:        name,
			Category:     categories[name],
			Valid:        step.Valid,
			ErrorCount:   len(step.Errors),
			WarningCount: len(step.Warnings),
		})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Stage < records[j].Stage })
	return records
}

// GetVerdict retrieves a stored verdict by ID. It returns nil, nil when none exists.
func (db *DB) GetVerdict(ctx context.Context, id uuid.UUID) (*VerdictRecord, error) {
	var rec VerdictRecord
	var mode string
	var content []byte
	err := db.pool.QueryRow(ctx,
		`SELECT id, source, mode, valid, error_count, warning_count, processing_time_ms, verdict, created_at
		 FROM verdicts WHERE id = $1`,
		id,
	).Scan(&rec.ID, &rec.Source, &mode, &rec.Valid, &rec.ErrorCount, &rec.WarningCount,
		&rec.ProcessingTimeMs, &content, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get verdict: %w", err)
	}
	rec.Mode = types.Mode(mode)

	var v types.Verdict
	if err := json.Unmarshal(content, &v); err != nil {
		return nil, fmt.Errorf("failed to unmarshal verdict: %w", err)
	}
	rec.Verdict = &v
	return &rec, nil
}

// ListVerdicts retrieves recent verdict summaries, newest first. Verdict bodies are not loaded.
func (db *DB) ListVerdicts(ctx context.Context, opts ListOptions) ([]VerdictRecord, error) {
	query, args := listQuery(opts)
	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list verdicts: %w", err)
	}
	defer rows.Close()

	records := []VerdictRecord{}
	for rows.Next() {
		var rec VerdictRecord
		var mode string
		if err := rows.Scan(&rec.ID, &rec.Source, &mode, &rec.Valid, &rec.ErrorCount, &rec.WarningCount,
			&rec.ProcessingTimeMs, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan verdict: %w", err)
		}
		rec.Mode = types.Mode(mode)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list verdicts: %w", err)
	}
	return records, nil
}

func listQuery(opts ListOptions) (string, []any) {
	var where []string
	var args []any
	if opts.Valid != nil {
		args = append(args, *opts.Valid)
		where = append(where, fmt.Sprintf("valid = $%d", len(args)))
	}
	if opts.Source != "" {
		args = append(args, opts.Source)
		where = append(where, fmt.Sprintf("source = $%d", len(args)))
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	args = append(args, limit)

	var sb strings.Builder
	sb.WriteString(`SELECT id, source, mode, valid, error_count, warning_count, processing_time_ms, created_at FROM verdicts`)
	if len(where) > 0 {
		sb.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	sb.WriteString(fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args)))
	return sb.String(), args
}

// ListStages retrieves the per-stage summary of a stored verdict, ordered by stage name.
func (db *DB) ListStages(ctx context.Context, verdictID uuid.UUID) ([]StageRecord, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT verdict_id, stage, category, valid, error_count, warning_count
		 FROM verdict_stages WHERE verdict_id = $1 ORDER BY stage`,
		verdictID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list stages: %w", err)
	}
	defer rows.Close()

	stages := []StageRecord{}
	for rows.Next() {
		var s StageRecord
		if err := rows.Scan(&s.VerdictID, &s.Stage, &s.Category, &s.Valid, &s.ErrorCount, &s.WarningCount); err != nil {
			return nil, fmt.Errorf("failed to scan stage: %w", err)
		}
		stages = append(stages, s)
	}
	return stages, rows.Err()
}
