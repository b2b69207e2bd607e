package runner

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/MJE43/trainerrand/internal/gamedata"
	"github.com/MJE43/trainerrand/internal/legal"
	"github.com/MJE43/trainerrand/internal/store"
	"github.com/MJE43/trainerrand/internal/trainer"
)

func seed(v int64) *int64 { return &v }

func request(s int64) Request {
	settings := trainer.DefaultSettings()
	settings.MaxIVs = true
	settings.RandomAbilities = true
	settings.ForceDoubles = true
	settings.TeamCountMin = 2
	return Request{
		Seed:     seed(s),
		Settings: settings,
		Data:     gamedata.Sample(legal.USUM),
	}
}

func encode(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestRunDeterministic(t *testing.T) {
	r := New(nil, nil)
	first, err := r.Run(request(12345))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	second, err := r.Run(request(12345))
	if err != nil {
		t.Fatal(err)
	}

	if encode(t, first.Trainers) != encode(t, second.Trainers) {
		t.Fatal("same seed produced different trainers")
	}
	if first.Draws != second.Draws || first.Draws == 0 {
		t.Errorf("draws %d vs %d", first.Draws, second.Draws)
	}
	if first.Seed != 12345 || first.Version != legal.USUM {
		t.Errorf("result seed=%d version=%v", first.Seed, first.Version)
	}
	if len(first.Summaries) != len(first.Trainers) {
		t.Errorf("%d summaries for %d trainers", len(first.Summaries), len(first.Trainers))
	}

	other, err := r.Run(request(1))
	if err != nil {
		t.Fatal(err)
	}
	if encode(t, other.Trainers) == encode(t, first.Trainers) {
		t.Error("different seeds produced identical trainers")
	}
}

func TestRunLeavesDatasetUntouched(t *testing.T) {
	req := request(7)
	if _, err := New(nil, nil).Run(req); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(req.Data, gamedata.Sample(legal.USUM)) {
		t.Error("Run mutated the request dataset")
	}
}

func TestRunRandomSeedIsReproducible(t *testing.T) {
	r := New(nil, nil)
	req := request(0)
	req.Seed = nil
	first, err := r.Run(req)
	if err != nil {
		t.Fatal(err)
	}
	replay, err := r.Run(request(first.Seed))
	if err != nil {
		t.Fatal(err)
	}
	if encode(t, replay.Trainers) != encode(t, first.Trainers) {
		t.Error("replaying the reported seed did not reproduce the run")
	}
}

func TestRunVersionOverride(t *testing.T) {
	req := request(3)
	req.Version = legal.XY
	res, err := New(nil, nil).Run(req)
	if err != nil {
		t.Fatal(err)
	}
	if res.Version != legal.XY {
		t.Errorf("Version = %v, want XY", res.Version)
	}
}

func TestRunSpeciesFilter(t *testing.T) {
	req := request(99)
	req.FilterScript = `
		log("filter loaded")
		allowSpecies = function(id, info) { return id <= 50 && info.bst > 0 }
	`
	res, err := New(nil, nil).Run(req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, tr := range res.Trainers {
		for _, pk := range tr.Team {
			if !pk.IsEmpty() && pk.Species > 50 {
				t.Fatalf("trainer %d has filtered species %d", tr.ID, pk.Species)
			}
		}
	}
	if len(res.Logs) != 1 || res.Logs[0] != "filter loaded" {
		t.Errorf("Logs = %q", res.Logs)
	}
}

func TestRunMoveFilter(t *testing.T) {
	req := request(5)
	req.Settings.MoveRandType = trainer.MoveRandom
	req.FilterScript = `function allowMove(id, info) { return id % 2 === 0 && info.power >= 0 }`
	res, err := New(nil, nil).Run(req)
	if err != nil {
		t.Fatal(err)
	}
	for _, tr := range res.Trainers {
		for _, pk := range tr.Team {
			for _, m := range pk.Moves {
				if m%2 != 0 {
					t.Fatalf("trainer %d has filtered move %d", tr.ID, m)
				}
			}
		}
	}
}

func TestRunErrors(t *testing.T) {
	r := New(nil, nil)
	if _, err := r.Run(Request{}); !errors.Is(err, ErrNoData) {
		t.Errorf("no data: %v", err)
	}

	bad := request(1)
	bad.Settings.TeamCountMax = 9
	if _, err := r.Run(bad); !errors.Is(err, trainer.ErrInvalidSettings) {
		t.Errorf("bad settings: %v", err)
	}

	script := request(1)
	script.FilterScript = `allowSpecies = function() { return Math.random() < 0.5 }`
	if _, err := r.Run(script); err == nil {
		t.Error("nondeterministic filter accepted")
	}
}

func TestSummarize(t *testing.T) {
	got := Summarize([]*trainer.Opponent{
		nil,
		{ID: 1, Class: 4, Mode: trainer.BattleDoubles, Team: []*trainer.Entry{
			{Species: 10, Level: 20}, {Species: 0, Level: 90}, {Species: 12, Level: 31},
		}},
		{ID: 2},
	})
	want := []Summary{
		{ID: 1, Class: 4, Mode: "doubles", TeamSize: 3, AvgLevel: 25, Species: []int{10, 12}},
		{ID: 2, Mode: "singles", Species: []int{}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Summarize = %+v, want %+v", got, want)
	}
}

func TestServicePersists(t *testing.T) {
	db, err := store.NewSQLiteDB(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if err := db.Migrate(); err != nil {
		t.Fatal(err)
	}

	svc := NewService(New(nil, nil), db, "test")
	res, err := svc.Randomize(context.Background(), request(42))
	if err != nil {
		t.Fatalf("Randomize: %v", err)
	}
	if res.RunID == "" {
		t.Fatal("no run id")
	}

	run, err := db.GetRun(res.RunID)
	if err != nil {
		t.Fatal(err)
	}
	if run.Seed != 42 || run.Version != "usum" || run.Draws != res.Draws || run.EngineVersion != "test" {
		t.Errorf("stored run = %+v", run)
	}

	page, err := db.GetRunTrainers(res.RunID, 1, 100)
	if err != nil {
		t.Fatal(err)
	}
	if page.TotalCount != len(res.Trainers) {
		t.Errorf("stored %d trainers, want %d", page.TotalCount, len(res.Trainers))
	}
	var team []*trainer.Entry
	if err := json.Unmarshal([]byte(page.Trainers[0].TeamJSON), &team); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(team, res.Trainers[0].Team) {
		t.Error("stored team differs from the result")
	}
}

func TestServiceWithoutDB(t *testing.T) {
	res, err := NewService(New(nil, nil), nil, "test").Randomize(context.Background(), request(1))
	if err != nil {
		t.Fatal(err)
	}
	if res.RunID != "" {
		t.Errorf("RunID = %q without a database", res.RunID)
	}
}

func TestServiceSkipsPersistAfterCancel(t *testing.T) {
	db, err := store.NewSQLiteDB(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if err := db.Migrate(); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewService(New(nil, nil), db, "test").Randomize(ctx, request(7))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}

	runs, err := db.ListRuns(store.RunsQuery{})
	if err != nil {
		t.Fatal(err)
	}
	if runs.TotalCount != 0 {
		t.Errorf("stored %d runs after cancel", runs.TotalCount)
	}
}
