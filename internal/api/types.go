package api

import (
	"github.com/MJE43/trainerrand/internal/gamedata"
	"github.com/MJE43/trainerrand/internal/runner"
	"github.com/MJE43/trainerrand/internal/scan"
	"github.com/MJE43/trainerrand/internal/subrand"
	"github.com/MJE43/trainerrand/internal/trainer"
)

// EngineError represents a structured error response with context
type EngineError struct {
	Type      string                 `json:"type"`
	Message   string                 `json:"message"`
	Context   map[string]interface{} `json:"context,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	Timestamp string                 `json:"timestamp,omitempty"`
}

// Error implements the error interface
func (e EngineError) Error() string {
	return e.Message
}

// Error types with proper categorization
const (
	// Input validation errors
	ErrTypeInvalidVersion  = "invalid_version"
	ErrTypeInvalidSettings = "invalid_settings"
	ErrTypeInvalidDataset  = "invalid_dataset"
	ErrTypeValidation      = "validation_error"

	// Randomization errors
	ErrTypeScript        = "script_error"
	ErrTypeRunNotFound   = "run_not_found"
	ErrTypeRandomization = "randomization_error"

	// System errors
	ErrTypeTimeout            = "timeout"
	ErrTypeInternal           = "internal_error"
	ErrTypeServiceUnavailable = "service_unavailable"
)

// ErrorCategory represents error categories for monitoring
type ErrorCategory string

const (
	CategoryValidation ErrorCategory = "validation"
	CategoryRun        ErrorCategory = "run"
	CategorySystem     ErrorCategory = "system"
	CategoryTimeout    ErrorCategory = "timeout"
)

// GetErrorCategory returns the category for an error type
func GetErrorCategory(errType string) ErrorCategory {
	switch errType {
	case ErrTypeInvalidVersion, ErrTypeInvalidSettings, ErrTypeInvalidDataset, ErrTypeValidation:
		return CategoryValidation
	case ErrTypeScript, ErrTypeRunNotFound, ErrTypeRandomization:
		return CategoryRun
	case ErrTypeTimeout:
		return CategoryTimeout
	default:
		return CategorySystem
	}
}

// VersionInfo contains engine version information
type VersionInfo struct {
	EngineVersion string `json:"engine_version"`
	GitCommit     string `json:"git_commit,omitempty"`
	BuildTime     string `json:"build_time,omitempty"`
}

// RandomizeRequest represents a randomization request. Settings default to
// trainer.DefaultSettings when omitted; Sample substitutes the built-in demo
// dataset when Data is absent.
type RandomizeRequest struct {
	Version         string                 `json:"version,omitempty"`
	Seed            *int64                 `json:"seed,omitempty"`
	Settings        *trainer.Settings      `json:"settings,omitempty"`
	Species         subrand.SpeciesOptions `json:"species"`
	FilterScript    string                 `json:"filter_script,omitempty"`
	Data            *gamedata.Dataset      `json:"data,omitempty"`
	Sample          bool                   `json:"sample,omitempty"`
	IncludeTrainers bool                   `json:"include_trainers,omitempty"`
}

// RandomizeResponse represents the outcome of one pass
type RandomizeResponse struct {
	RunID         string              `json:"run_id,omitempty"`
	Version       string              `json:"version"`
	Seed          int64               `json:"seed"`
	Draws         uint64              `json:"draws"`
	Stats         trainer.Stats       `json:"stats"`
	Summaries     []runner.Summary    `json:"summaries"`
	Trainers      []*trainer.Opponent `json:"trainers,omitempty"`
	Logs          []string            `json:"logs,omitempty"`
	DurationMs    int64               `json:"duration_ms"`
	EngineVersion string              `json:"engine_version"`
}

// GameVersionInfo describes one version group
type GameVersionInfo struct {
	Name           string   `json:"name"`
	Games          []string `json:"games"`
	SpecialClasses int      `json:"special_classes"`
	CrashClasses   int      `json:"crash_classes"`
	FixedTeams     int      `json:"fixed_teams"`
	Megas          int      `json:"megas"`
	HeldItems      int      `json:"held_items"`
}

// VersionsResponse represents the version catalog response
type VersionsResponse struct {
	Versions      []GameVersionInfo `json:"versions"`
	EngineVersion string            `json:"engine_version"`
}

// SettingsResponse wraps the default settings
type SettingsResponse struct {
	Settings      trainer.Settings `json:"settings"`
	MoveModes     []string         `json:"move_modes"`
	EngineVersion string           `json:"engine_version"`
}

// ScanRequest searches a seed range. The embedded randomize fields describe
// the pass; its seed and include_trainers fields are ignored.
type ScanRequest struct {
	RandomizeRequest
	SeedStart     int64   `json:"seed_start"`
	SeedEnd       int64   `json:"seed_end"`
	Metric        string  `json:"metric"`
	TargetSpecies int     `json:"target_species,omitempty"`
	TargetOp      string  `json:"target_op"`
	TargetVal     float64 `json:"target_val"`
	TargetVal2    float64 `json:"target_val2,omitempty"`
	Tolerance     float64 `json:"tolerance"`
	Limit         int     `json:"limit,omitempty"`
}

// ScanResponse lists matching seeds in ascending order
type ScanResponse struct {
	Hits          []scan.Hit   `json:"hits"`
	Summary       scan.Summary `json:"summary"`
	DurationMs    int64        `json:"duration_ms"`
	EngineVersion string       `json:"engine_version"`
}
