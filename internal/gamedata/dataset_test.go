package gamedata

import (
	"bytes"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/MJE43/trainerrand/internal/legal"
)

func TestSampleValid(t *testing.T) {
	ds := Sample(legal.USUM)
	if err := ds.Validate(); err != nil {
		t.Fatalf("Sample().Validate() = %v", err)
	}
	if !reflect.DeepEqual(ds, Sample(legal.USUM)) {
		t.Error("Sample is not stable across calls")
	}
	table, err := ds.Personal()
	if err != nil {
		t.Fatal(err)
	}
	if table.MaxSpecies() != 151 {
		t.Errorf("MaxSpecies() = %d, want 151", table.MaxSpecies())
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ds := Sample(legal.ORAS)
	path := filepath.Join(t.TempDir(), "nested", "data.json")
	if err := ds.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Version != legal.ORAS {
		t.Errorf("Version = %v, want ORAS", got.Version)
	}
	if !reflect.DeepEqual(got.Trainers, ds.Trainers) {
		t.Error("trainers changed across save/load")
	}
}

func TestEncodeUsesVersionName(t *testing.T) {
	var buf bytes.Buffer
	if err := Sample(legal.SM).Encode(&buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"version": "sm"`) {
		t.Errorf("encoded dataset does not name the version: %.80s", buf.String())
	}
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown field", `{"version":"xy","species":[{"species":1}],"bogus":1}`},
		{"no species", `{"version":"xy","species":[]}`},
		{"unknown final evolution", `{"version":"xy","species":[{"species":1}],"final_evolutions":[9]}`},
		{"unknown team species", `{"version":"xy","species":[{"species":1}],"trainers":[{"id":1,"team":[{"species":4}]}]}`},
		{"duplicate trainer", `{"version":"xy","species":[{"species":1}],"trainers":[{"id":1,"team":[]},{"id":1,"team":[]}]}`},
		{"null entry", `{"version":"xy","species":[{"species":1}],"trainers":[{"id":1,"team":[null]}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(strings.NewReader(tt.doc)); err == nil {
				t.Error("Decode succeeded")
			}
		})
	}

	_, err := Decode(strings.NewReader(`{"version":"xy","species":[]}`))
	if !errors.Is(err, ErrInvalidDataset) {
		t.Errorf("error = %v, want ErrInvalidDataset", err)
	}
}

func TestCloneTrainersIsDeep(t *testing.T) {
	ds := Sample(legal.XY)
	clone := ds.CloneTrainers()
	clone[0].Team[0].Species = 999
	clone[1].Class = 77
	if ds.Trainers[0].Team[0].Species == 999 || ds.Trainers[1].Class == 77 {
		t.Error("clone shares state with the dataset")
	}
}
