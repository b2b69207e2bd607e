// Package runner wires one randomization pass: it builds every collaborator
// around a single shared sequence source, runs the orchestrator over a copy of
// the dataset's trainers and summarizes the result.
package runner

import (
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/MJE43/trainerrand/internal/engine"
	"github.com/MJE43/trainerrand/internal/gamedata"
	"github.com/MJE43/trainerrand/internal/legal"
	"github.com/MJE43/trainerrand/internal/personal"
	"github.com/MJE43/trainerrand/internal/scripting"
	"github.com/MJE43/trainerrand/internal/subrand"
	"github.com/MJE43/trainerrand/internal/trainer"
)

// ErrNoData is returned when a request carries no dataset.
var ErrNoData = errors.New("runner: request has no dataset")

// Request describes one pass.
type Request struct {
	// Version overrides the dataset's version when set.
	Version legal.GameVersion `json:"version,omitempty"`
	// Seed is drawn from crypto/rand when nil.
	Seed         *int64                 `json:"seed,omitempty"`
	Settings     trainer.Settings       `json:"settings"`
	Species      subrand.SpeciesOptions `json:"species"`
	FilterScript string                 `json:"filter_script,omitempty"`
	Data         *gamedata.Dataset      `json:"data"`
}

// Summary is a compact view of one randomized trainer.
type Summary struct {
	ID       int    `json:"id"`
	Class    int    `json:"class"`
	Mode     string `json:"mode"`
	TeamSize int    `json:"team_size"`
	AvgLevel int    `json:"avg_level"`
	Species  []int  `json:"species"`
}

// Result is the outcome of one pass.
type Result struct {
	RunID     string              `json:"run_id,omitempty"`
	Version   legal.GameVersion   `json:"version"`
	Seed      int64               `json:"seed"`
	Draws     uint64              `json:"draws"`
	Stats     trainer.Stats       `json:"stats"`
	Trainers  []*trainer.Opponent `json:"trainers"`
	Summaries []Summary           `json:"summaries"`
	Logs      []string            `json:"logs,omitempty"`
	Duration  time.Duration       `json:"duration_ns"`
}

// Runner executes requests against a legality catalog.
type Runner struct {
	catalog *legal.Catalog
	logger  *log.Logger
}

// New creates a Runner. A nil catalog uses the embedded tables and a nil
// logger discards output.
func New(catalog *legal.Catalog, logger *log.Logger) *Runner {
	if catalog == nil {
		catalog = legal.DefaultCatalog()
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Runner{catalog: catalog, logger: logger}
}

// Run executes one pass. The request's dataset is never mutated.
func (r *Runner) Run(req Request) (*Result, error) {
	start := time.Now()
	ds := req.Data
	if ds == nil {
		return nil, ErrNoData
	}
	if err := req.Settings.Validate(); err != nil {
		return nil, err
	}

	version := req.Version
	if version == legal.Unknown {
		version = ds.Version
	}
	tables := r.catalog.ForVersion(version)

	var src *engine.Source
	if req.Seed != nil {
		src = engine.NewSource(*req.Seed)
	} else {
		var err error
		if src, err = engine.NewRandomSource(); err != nil {
			return nil, fmt.Errorf("runner: seed: %w", err)
		}
	}

	table, err := ds.Personal()
	if err != nil {
		return nil, fmt.Errorf("runner: species table: %w", err)
	}

	var filter *scripting.Filter
	speciesOpts := req.Species
	moveOpts := subrand.MoveOptions{Banned: subrand.DefaultBannedMoves()}
	if req.FilterScript != "" {
		if filter, err = scripting.NewFilter(req.FilterScript); err != nil {
			return nil, err
		}
		speciesOpts.Allow = filter.SpeciesFunc(speciesInfo(table))
		moveOpts.Allow = filter.MoveFunc(moveInfo(ds.Moves))
	}

	species := subrand.NewSpecies(src, table, speciesOpts)
	moves := subrand.NewMoves(src, ds.Moves, moveOpts)
	if filter != nil {
		if err := filter.Err(); err != nil {
			return nil, err
		}
	}
	if species.PoolSize() == 0 {
		r.logger.Printf("species pool is empty for %s; entries keep their species", version)
	}

	rnd, err := trainer.New(trainer.Config{
		Rand:            src,
		Tables:          tables,
		Personal:        table,
		Species:         species,
		Forms:           subrand.NewForms(src, table),
		Moves:           moves,
		Learnsets:       subrand.NewLearnsets(ds.Learnsets, ds.Moves),
		Sanitizer:       moves,
		ClassCount:      ds.ClassCount,
		FinalEvolutions: ds.FinalEvolutions,
		NewEntry:        trainer.NewEntry,
		Logger:          r.logger,
	})
	if err != nil {
		return nil, err
	}
	if err := rnd.Initialize(req.Settings); err != nil {
		return nil, err
	}

	trainers := ds.CloneTrainers()
	stats := rnd.Execute(trainers)
	if filter != nil {
		if err := filter.Err(); err != nil {
			return nil, err
		}
	}

	res := &Result{
		Version:   version,
		Seed:      src.Seed(),
		Draws:     src.Draws(),
		Stats:     stats,
		Trainers:  trainers,
		Summaries: Summarize(trainers),
		Duration:  time.Since(start),
	}
	if filter != nil {
		res.Logs = filter.Logs()
	}
	r.logger.Printf("seed %d on %s: %d trainers, %d entries, %d draws in %s",
		res.Seed, version, stats.Trainers, stats.Entries, res.Draws, res.Duration)
	return res, nil
}

// Summarize builds per-trainer summaries, skipping nil trainers.
func Summarize(trainers []*trainer.Opponent) []Summary {
	out := make([]Summary, 0, len(trainers))
	for _, tr := range trainers {
		if tr == nil {
			continue
		}
		s := Summary{ID: tr.ID, Class: tr.Class, Mode: tr.Mode.String(), TeamSize: len(tr.Team), Species: []int{}}
		levels, counted := 0, 0
		for _, pk := range tr.Team {
			if pk.IsEmpty() {
				continue
			}
			s.Species = append(s.Species, pk.Species)
			levels += pk.Level
			counted++
		}
		if counted > 0 {
			s.AvgLevel = levels / counted
		}
		out = append(out, s)
	}
	return out
}

func speciesInfo(table *personal.Table) func(int) map[string]any {
	return func(id int) map[string]any {
		row, ok := table.Get(id)
		if !ok {
			return nil
		}
		return map[string]any{
			"name":  row.Name,
			"bst":   row.BST(),
			"types": []int{row.Types[0], row.Types[1]},
			"forms": row.FormCount,
			"stats": row.Stats[:],
		}
	}
}

func moveInfo(moves []subrand.Move) func(int) map[string]any {
	byID := make(map[int]subrand.Move, len(moves))
	for _, mv := range moves {
		byID[mv.ID] = mv
	}
	return func(id int) map[string]any {
		mv, ok := byID[id]
		if !ok {
			return nil
		}
		return map[string]any{"type": mv.Type, "power": mv.Power, "category": mv.Category}
	}
}
