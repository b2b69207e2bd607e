// Package gamedata reads and writes the dataset bundle a randomization run
// works on: species stat rows, moves, learnsets, the final-evolution list and
// the trainer table of one game version.
package gamedata

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/MJE43/trainerrand/internal/legal"
	"github.com/MJE43/trainerrand/internal/personal"
	"github.com/MJE43/trainerrand/internal/subrand"
	"github.com/MJE43/trainerrand/internal/trainer"
)

// ErrInvalidDataset wraps dataset consistency failures.
var ErrInvalidDataset = errors.New("gamedata: invalid dataset")

// Dataset is the on-disk bundle.
type Dataset struct {
	Version         legal.GameVersion   `json:"version"`
	ClassCount      int                 `json:"class_count"`
	Species         []personal.Info     `json:"species"`
	Moves           []subrand.Move      `json:"moves"`
	Learnsets       []subrand.Learnset  `json:"learnsets,omitempty"`
	FinalEvolutions []int               `json:"final_evolutions,omitempty"`
	Trainers        []*trainer.Opponent `json:"trainers"`
}

// Load reads a dataset from a JSON file.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gamedata: open %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads and validates a dataset.
func Decode(r io.Reader) (*Dataset, error) {
	var ds Dataset
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&ds); err != nil {
		return nil, fmt.Errorf("gamedata: decode: %w", err)
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return &ds, nil
}

// Save writes the dataset as indented JSON, creating parent directories.
func (ds *Dataset) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("gamedata: create dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("gamedata: create %s: %w", path, err)
	}
	if err := ds.Encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Encode writes the dataset as indented JSON.
func (ds *Dataset) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ds); err != nil {
		return fmt.Errorf("gamedata: encode: %w", err)
	}
	return nil
}

// Validate checks the cross references a run depends on.
func (ds *Dataset) Validate() error {
	if len(ds.Species) == 0 {
		return fmt.Errorf("%w: no species rows", ErrInvalidDataset)
	}
	if ds.ClassCount < 0 {
		return fmt.Errorf("%w: negative class count %d", ErrInvalidDataset, ds.ClassCount)
	}
	known := make(map[int]struct{}, len(ds.Species))
	for _, row := range ds.Species {
		known[row.Species] = struct{}{}
	}
	for _, s := range ds.FinalEvolutions {
		if _, ok := known[s]; !ok {
			return fmt.Errorf("%w: final evolution %d has no species row", ErrInvalidDataset, s)
		}
	}
	seen := make(map[int]struct{}, len(ds.Trainers))
	for _, tr := range ds.Trainers {
		if tr == nil {
			continue
		}
		if _, dup := seen[tr.ID]; dup {
			return fmt.Errorf("%w: duplicate trainer id %d", ErrInvalidDataset, tr.ID)
		}
		seen[tr.ID] = struct{}{}
		for i, pk := range tr.Team {
			if pk == nil {
				return fmt.Errorf("%w: trainer %d entry %d is null", ErrInvalidDataset, tr.ID, i)
			}
			if _, ok := known[pk.Species]; !ok && pk.Species != 0 {
				return fmt.Errorf("%w: trainer %d entry %d has unknown species %d", ErrInvalidDataset, tr.ID, i, pk.Species)
			}
		}
	}
	return nil
}

// Personal builds the species stat table.
func (ds *Dataset) Personal() (*personal.Table, error) {
	return personal.NewTable(ds.Species)
}

// CloneTrainers returns a deep copy of the trainer table so a run never
// mutates the loaded dataset.
func (ds *Dataset) CloneTrainers() []*trainer.Opponent {
	return trainer.CloneAll(ds.Trainers)
}
