package store

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("store: not found")

// DB represents the database interface
type DB interface {
	Close() error
	Migrate() error
	SaveRun(run *Run) error
	SaveTrainers(runID string, trainers []RunTrainer) error
	GetRun(id string) (*Run, error)
	ListRuns(query RunsQuery) (*RunsList, error)
	GetRunTrainers(runID string, page, perPage int) (*TrainersPage, error)
}

// RunsQuery represents query parameters for listing runs
type RunsQuery struct {
	Version string `json:"version,omitempty"`
	Page    int    `json:"page"`
	PerPage int    `json:"perPage"`
}

// RunsList represents paginated runs response
type RunsList struct {
	Runs       []Run `json:"runs"`
	TotalCount int   `json:"totalCount"`
	Page       int   `json:"page"`
	PerPage    int   `json:"perPage"`
	TotalPages int   `json:"totalPages"`
}

// TrainersPage represents one page of randomized trainers
type TrainersPage struct {
	Trainers   []RunTrainer `json:"trainers"`
	TotalCount int          `json:"totalCount"`
	Page       int          `json:"page"`
	PerPage    int          `json:"perPage"`
	TotalPages int          `json:"totalPages"`
}

// Run represents one randomization pass
type Run struct {
	ID            string    `json:"id" db:"id"`
	Version       string    `json:"version" db:"version"`
	Seed          int64     `json:"seed" db:"seed"`
	SettingsJSON  string    `json:"settings_json" db:"settings_json"`
	FilterScript  string    `json:"filter_script,omitempty" db:"filter_script"`
	TrainerCount  int       `json:"trainer_count" db:"trainer_count"`
	EntryCount    int       `json:"entry_count" db:"entry_count"`
	Draws         uint64    `json:"draws" db:"draws"`
	StatsJSON     string    `json:"stats_json" db:"stats_json"`
	EngineVersion string    `json:"engine_version" db:"engine_version"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// RunTrainer is one trainer as it left the pass
type RunTrainer struct {
	RunID     string `json:"run_id" db:"run_id"`
	TrainerID int    `json:"trainer_id" db:"trainer_id"`
	Class     int    `json:"class" db:"class"`
	AI        uint32 `json:"ai" db:"ai"`
	Mode      int    `json:"mode" db:"mode"`
	TeamSize  int    `json:"team_size" db:"team_size"`
	TeamJSON  string `json:"team_json" db:"team_json"` // JSON array of entries
}
