package db

import (
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/pagegate/internal/types"
)

// Verdict sources
const (
	SourceCLI   = "cli"
	SourceHTTP  = "http"
	SourceBatch = "batch"
)

// VerdictRecord is a stored verdict with its audit metadata
type VerdictRecord struct {
	ID               uuid.UUID      `json:"id"`
	Source           string         `json:"source"`
	Mode             types.Mode     `json:"mode"`
	Valid            bool           `json:"valid"`
	ErrorCount       int            `json:"error_count"`
	WarningCount     int            `json:"warning_count"`
	ProcessingTimeMs int64          `json:"processing_time_ms"`
	Verdict          *types.Verdict `json:"verdict,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
}

// StageRecord summarizes one stage of a stored verdict
type StageRecord struct {
	VerdictID    uuid.UUID `json:"verdict_id"`
	Stage        string    `json:"stage"`
	Category     string    `json:"category"`
	Valid        bool      `json:"valid"`
	ErrorCount   int       `json:"error_count"`
	WarningCount int       `json:"warning_count"`
}

// ListOptions filters ListVerdicts
type ListOptions struct {
	Limit  int
	Valid  *bool
	Source string
}
