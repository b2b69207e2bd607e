package trainer

import (
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/MJE43/trainerrand/internal/engine"
	"github.com/MJE43/trainerrand/internal/legal"
	"github.com/MJE43/trainerrand/internal/personal"
	"github.com/MJE43/trainerrand/internal/subrand"
)

// Config wires a Randomizer to its data and collaborators. Every randomizing
// collaborator must draw from Rand.
type Config struct {
	Rand     engine.Rand
	Tables   *legal.Tables
	Personal *personal.Table

	Species   subrand.SpeciesPicker
	Forms     subrand.FormPicker
	Moves     subrand.MovesetPicker
	Learnsets subrand.LearnsetQuery
	Sanitizer subrand.MoveSanitizer
	// Classes overrides the default shuffled class pool built by Initialize.
	Classes subrand.ClassPicker

	ClassCount      int
	FinalEvolutions []int
	// NewEntry creates blank roster entries for padding. It is only required
	// when a pass needs to add entries.
	NewEntry func() *Entry

	Logger *log.Logger
}

// Stats counts what a pass changed.
type Stats struct {
	Trainers       int `json:"trainers"`
	Skipped        int `json:"skipped"`
	Entries        int `json:"entries"`
	ClassesChanged int `json:"classes_changed"`
	EntriesAdded   int `json:"entries_added"`
	EntriesDropped int `json:"entries_dropped"`
	MegaSwaps      int `json:"mega_swaps"`
	ForcedEvolves  int `json:"forced_evolves"`
	MovesSanitized int `json:"moves_sanitized"`
}

// Randomizer runs the team randomization pass over a trainer list.
type Randomizer struct {
	cfg      Config
	rng      engine.Rand
	tables   *legal.Tables
	settings Settings
	classes  subrand.ClassPicker
	finalEvo map[int]struct{}
	logger   *log.Logger
	ready    bool
}

// New checks the wiring and returns an uninitialized Randomizer.
func New(cfg Config) (*Randomizer, error) {
	var missing []string
	if cfg.Rand == nil {
		missing = append(missing, "Rand")
	}
	if cfg.Personal == nil {
		missing = append(missing, "Personal")
	}
	if cfg.Species == nil {
		missing = append(missing, "Species")
	}
	if cfg.Forms == nil {
		missing = append(missing, "Forms")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("trainer: config missing %v", missing)
	}

	tables := cfg.Tables
	if tables == nil {
		tables = legal.Empty()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	finalEvo := make(map[int]struct{}, len(cfg.FinalEvolutions))
	for _, s := range cfg.FinalEvolutions {
		finalEvo[s] = struct{}{}
	}

	return &Randomizer{
		cfg:      cfg,
		rng:      cfg.Rand,
		tables:   tables,
		finalEvo: finalEvo,
		logger:   logger,
	}, nil
}

// Initialize validates settings and builds the class pool: every class below
// ClassCount except crash classes, and special classes when they are skipped.
func (r *Randomizer) Initialize(settings Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	switch settings.MoveRandType {
	case MoveRandom:
		if r.cfg.Moves == nil {
			return fmt.Errorf("%w: move mode %s needs a moveset picker", ErrInvalidSettings, settings.MoveRandType)
		}
	case MoveCurrent, MoveHighPowered:
		if r.cfg.Learnsets == nil {
			return fmt.Errorf("%w: move mode %s needs learnsets", ErrInvalidSettings, settings.MoveRandType)
		}
	}

	r.settings = settings
	r.classes = r.cfg.Classes
	if r.classes == nil {
		r.classes = subrand.NewGeneric(r.rng, r.classPool())
	}
	r.ready = true
	return nil
}

func (r *Randomizer) classPool() []int {
	pool := make([]int, 0, r.cfg.ClassCount)
	for c := 0; c < r.cfg.ClassCount; c++ {
		if r.tables.IsCrashClass(c) {
			continue
		}
		if r.settings.SkipSpecialClasses && r.tables.IsSpecialClass(c) {
			continue
		}
		pool = append(pool, c)
	}
	return pool
}

// ErrNotInitialized is the panic value when Execute runs before Initialize.
var ErrNotInitialized = errors.New("trainer: Execute called before Initialize")

// Execute randomizes trainers in place, in input order. Trainers with an empty
// roster are skipped. The caller must not read or write trainers until it returns.
func (r *Randomizer) Execute(trainers []*Opponent) Stats {
	if !r.ready {
		panic(ErrNotInitialized)
	}

	var stats Stats
	for _, tr := range trainers {
		if tr == nil || len(tr.Team) == 0 {
			stats.Skipped++
			continue
		}
		stats.Trainers++
		r.randomizeTrainer(tr, &stats)
	}
	return stats
}

func (r *Randomizer) randomizeTrainer(tr *Opponent, stats *Stats) {
	s := r.settings
	oldClass, oldSize := tr.Class, len(tr.Team)

	if s.RandomTrainerClass && r.setRandomClass(tr) {
		stats.ClassesChanged++
	}

	added, dropped := r.setupTeamCount(tr)
	stats.EntriesAdded += added
	stats.EntriesDropped += dropped

	if s.TrainerMaxAI {
		tr.AI |= AIMax
	}

	for _, pk := range tr.Team {
		if pk.IsEmpty() {
			continue
		}
		stats.Entries++
		r.determineSpecies(pk, stats)
		r.updateFromSettings(pk, stats)
	}

	r.logger.Printf("trainer %d: class %d->%d, team %d->%d, mode %s", tr.ID, oldClass, tr.Class, oldSize, len(tr.Team), tr.Mode)
}

// setRandomClass reassigns the class unless it is protected.
func (r *Randomizer) setRandomClass(tr *Opponent) bool {
	if r.settings.SkipSpecialClasses && r.tables.IsSpecialClass(tr.Class) {
		return false
	}
	if r.tables.IsCrashClass(tr.Class) {
		return false
	}
	class, ok := r.classes.NextClass()
	if !ok {
		return false
	}
	changed := class != tr.Class
	tr.Class = class
	return changed
}
