package trainer

import (
	"fmt"
	"testing"

	"github.com/MJE43/trainerrand/internal/engine"
	"github.com/MJE43/trainerrand/internal/legal"
	"github.com/MJE43/trainerrand/internal/personal"
	"github.com/MJE43/trainerrand/internal/subrand"
)

func testPersonal(t *testing.T) *personal.Table {
	t.Helper()
	rows := []personal.Info{{Species: 0}}
	for id := 1; id <= 200; id++ {
		base := 30 + (id*37)%90
		rows = append(rows, personal.Info{
			Species: id,
			Stats:   [6]int{base, base + 5, base, base + 10, base, base - 5},
			Types:   [2]int{id % legal.TypeCount, (id / 3) % legal.TypeCount},
		})
	}
	// A few species with forms, one of them mega-capable.
	rows[6].FormCount, rows[6].MegaForms = 3, []int{1, 2}
	rows[150].FormCount, rows[150].MegaForms = 3, []int{1, 2}
	rows[160].FormCount = 4
	table, err := personal.NewTable(rows)
	if err != nil {
		t.Fatal(err)
	}
	return table
}

func testMoves() []subrand.Move {
	moves := []subrand.Move{{ID: 0}}
	for id := 1; id <= 120; id++ {
		moves = append(moves, subrand.Move{ID: id, Power: (id * 13) % 150})
	}
	return append(moves, subrand.Move{ID: 165, Power: 50})
}

func testLearnsets() []subrand.Learnset {
	var sets []subrand.Learnset
	for id := 1; id <= 200; id++ {
		var lm []subrand.LevelMove
		for i := 0; i < 8; i++ {
			lm = append(lm, subrand.LevelMove{Level: 1 + i*7, Move: 1 + (id+i*11)%120})
		}
		sets = append(sets, subrand.Learnset{Species: id, Moves: lm})
	}
	return sets
}

func testTables(t *testing.T) *legal.Tables {
	t.Helper()
	catalog, err := legal.ParseCatalog([]byte(`
versions:
  xy:
    fixed_counts: {81: 1, 90: 3, 91: 6, 92: 2}
    special_classes: [10, 11]
    crash_classes: [20, 21]
    held_items: [157, 158, 234, 270]
    megas:
      - {species: 6, items: [660, 678]}
      - {species: 150, items: [662, 663]}
      - {species: 94, items: [656]}
`))
	if err != nil {
		t.Fatal(err)
	}
	return catalog.ForVersion(legal.XY)
}

type fixture struct {
	src    *engine.Source
	config Config
}

func newFixture(t *testing.T, seed int64) *fixture {
	t.Helper()
	src := engine.NewSource(seed)
	table := testPersonal(t)
	moves := testMoves()
	return &fixture{
		src: src,
		config: Config{
			Rand:            src,
			Tables:          testTables(t),
			Personal:        table,
			Species:         subrand.NewSpecies(src, table, subrand.SpeciesOptions{}),
			Forms:           subrand.NewForms(src, table),
			Moves:           subrand.NewMoves(src, moves, subrand.MoveOptions{Banned: subrand.DefaultBannedMoves()}),
			Learnsets:       subrand.NewLearnsets(testLearnsets(), moves),
			Sanitizer:       subrand.NewMoves(src, moves, subrand.MoveOptions{Banned: subrand.DefaultBannedMoves()}),
			ClassCount:      40,
			FinalEvolutions: []int{3, 9, 160},
			NewEntry:        NewEntry,
		},
	}
}

func (f *fixture) randomizer(t *testing.T, settings Settings) *Randomizer {
	t.Helper()
	r, err := New(f.config)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := r.Initialize(settings); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	return r
}

func entry(species, level int) *Entry {
	return &Entry{Species: species, Level: level, Moves: [4]int{1, 2, 3, 4}}
}

func team(size int) []*Entry {
	out := make([]*Entry, size)
	for i := range out {
		out[i] = entry(10+i, 20+i)
	}
	return out
}

// quietSettings turns off every toggle so tests can enable only what they check.
func quietSettings() Settings {
	return Settings{TeamCountMin: 1, TeamCountMax: 6, MoveRandType: MoveNone}
}

func sampleTrainers() []*Opponent {
	var trainers []*Opponent
	for i := 0; i < 12; i++ {
		trainers = append(trainers, &Opponent{
			ID:    100 + i,
			Class: i % 30,
			Team:  team(1 + i%6),
		})
	}
	trainers = append(trainers,
		&Opponent{ID: 81, Class: 10, Team: team(3)},
		&Opponent{ID: 90, Class: 20, Team: team(5)},
		&Opponent{ID: 91, Class: 5, Team: team(2)},
		&Opponent{ID: 300, Class: 1},
	)
	trainers[2].Team[0].HeldItem = 660
	trainers[3].Team[1].Species = 0
	return trainers
}

func describe(trainers []*Opponent) string {
	out := ""
	for _, tr := range trainers {
		out += fmt.Sprintf("%d/%d/%d/%d:", tr.ID, tr.Class, tr.AI, tr.Mode)
		for _, pk := range tr.Team {
			out += fmt.Sprintf("%+v;", *pk)
		}
		out += "\n"
	}
	return out
}

// scriptedRand returns queued values and records every draw.
type scriptedRand struct {
	ints  []int
	calls []string
}

func (s *scriptedRand) NextInt(bound int) int {
	s.calls = append(s.calls, fmt.Sprintf("int(%d)", bound))
	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[0] % bound
	s.ints = s.ints[1:]
	return v
}

func (s *scriptedRand) NextUint32() uint32 {
	s.calls = append(s.calls, "uint32")
	return 7
}

type fakeSpecies struct{ calls []string }

func (f *fakeSpecies) RandomSpecies(current int) int {
	f.calls = append(f.calls, fmt.Sprintf("species(%d)", current))
	return 42
}

func (f *fakeSpecies) RandomSpeciesType(current, typ int) int {
	f.calls = append(f.calls, fmt.Sprintf("speciesType(%d,%d)", current, typ))
	return 43
}

type fakeForms struct{}

func (fakeForms) RandomForm(species int, allowMega bool) int { return 1 }
