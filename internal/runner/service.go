package runner

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MJE43/trainerrand/internal/store"
	"github.com/MJE43/trainerrand/internal/trainer"
)

// Service runs passes and persists them.
type Service struct {
	runner        *Runner
	db            store.DB
	engineVersion string
}

// NewService creates a Service. db may be nil to skip persistence.
func NewService(r *Runner, db store.DB, engineVersion string) *Service {
	return &Service{runner: r, db: db, engineVersion: engineVersion}
}

// Randomize runs req and stores the run and its trainers. The returned
// result carries the new run id. Nothing is stored once ctx is done.
func (s *Service) Randomize(ctx context.Context, req Request) (*Result, error) {
	res, err := s.runner.Run(req)
	if err != nil {
		return nil, err
	}
	if s.db == nil {
		return res, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("runner: run abandoned: %w", err)
	}

	settingsJSON, err := json.Marshal(req.Settings)
	if err != nil {
		return nil, fmt.Errorf("runner: encode settings: %w", err)
	}
	statsJSON, err := json.Marshal(res.Stats)
	if err != nil {
		return nil, fmt.Errorf("runner: encode stats: %w", err)
	}

	run := &store.Run{
		Version:       res.Version.String(),
		Seed:          res.Seed,
		SettingsJSON:  string(settingsJSON),
		FilterScript:  req.FilterScript,
		TrainerCount:  res.Stats.Trainers,
		EntryCount:    res.Stats.Entries,
		Draws:         res.Draws,
		StatsJSON:     string(statsJSON),
		EngineVersion: s.engineVersion,
	}
	if err := s.db.SaveRun(run); err != nil {
		return nil, fmt.Errorf("runner: save run: %w", err)
	}

	rows, err := trainerRows(run.ID, res.Trainers)
	if err != nil {
		return nil, err
	}
	if err := s.db.SaveTrainers(run.ID, rows); err != nil {
		return nil, fmt.Errorf("runner: save trainers: %w", err)
	}
	res.RunID = run.ID
	return res, nil
}

func trainerRows(runID string, trainers []*trainer.Opponent) ([]store.RunTrainer, error) {
	rows := make([]store.RunTrainer, 0, len(trainers))
	for _, tr := range trainers {
		if tr == nil {
			continue
		}
		team := tr.Team
		if team == nil {
			team = []*trainer.Entry{}
		}
		teamJSON, err := json.Marshal(team)
		if err != nil {
			return nil, fmt.Errorf("runner: encode trainer %d: %w", tr.ID, err)
		}
		rows = append(rows, store.RunTrainer{
			RunID:     runID,
			TrainerID: tr.ID,
			Class:     tr.Class,
			AI:        uint32(tr.AI),
			Mode:      int(tr.Mode),
			TeamSize:  len(tr.Team),
			TeamJSON:  string(teamJSON),
		})
	}
	return rows, nil
}
