package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/MJE43/trainerrand/internal/legal"
	"github.com/MJE43/trainerrand/internal/trainer"
)

func TestFromMapDefaults(t *testing.T) {
	cfg, err := FromMap(map[string]string{})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":8080" || cfg.DBPath != "trainerrand.db" || cfg.RequestTimeout != time.Minute || cfg.MaxBodyBytes != 32<<20 {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestFromMapOverrides(t *testing.T) {
	cfg, err := FromMap(map[string]string{
		"TRAINERRAND_ADDR":            "127.0.0.1:9000",
		"TRAINERRAND_REQUEST_TIMEOUT": "5s",
		"TRAINERRAND_MAX_BODY_BYTES":  "1024",
	})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != "127.0.0.1:9000" || cfg.RequestTimeout != 5*time.Second || cfg.MaxBodyBytes != 1024 {
		t.Errorf("overrides = %+v", cfg)
	}

	if _, err := FromMap(map[string]string{"TRAINERRAND_REQUEST_TIMEOUT": "soon"}); err == nil {
		t.Error("bad duration accepted")
	}
	if _, err := FromMap(map[string]string{"TRAINERRAND_MAX_BODY_BYTES": "0"}); err == nil {
		t.Error("zero body limit accepted")
	}
}

func TestLoadDotenv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("TRAINERRAND_DB_PATH=/tmp/from-dotenv.db\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TRAINERRAND_DB_PATH", "")
	os.Unsetenv("TRAINERRAND_DB_PATH")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DBPath != "/tmp/from-dotenv.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
}

func TestCatalog(t *testing.T) {
	cfg := &Config{}
	catalog, err := cfg.Catalog()
	if err != nil || catalog != legal.DefaultCatalog() {
		t.Fatalf("default catalog: %v", err)
	}

	path := filepath.Join(t.TempDir(), "tables.yaml")
	doc := "versions:\n  xy:\n    special_classes: [1, 2]\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg.LegalityPath = path
	catalog, err = cfg.Catalog()
	if err != nil {
		t.Fatal(err)
	}
	if !catalog.ForVersion(legal.X).IsSpecialClass(2) {
		t.Error("override catalog not used")
	}

	cfg.LegalityPath = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := cfg.Catalog(); err == nil {
		t.Error("missing override accepted")
	}
}

func TestDecodeSettings(t *testing.T) {
	yamlDoc := []byte("max_ivs: true\nmove_rand_type: metronome\nteam_count_min: 2\n")
	s, err := DecodeSettings(yamlDoc, ".YML")
	if err != nil {
		t.Fatal(err)
	}
	if !s.MaxIVs || s.MoveRandType != trainer.MoveMetronome || s.TeamCountMin != 2 {
		t.Errorf("yaml settings = %+v", s)
	}
	if !s.RandomizeTeam || s.TeamCountMax != 6 {
		t.Error("omitted fields lost their defaults")
	}

	s, err = DecodeSettings([]byte(`{"random_shinies": true, "shiny_chance": 40}`), ".json")
	if err != nil || !s.RandomShinies || s.ShinyChance != 40 {
		t.Errorf("json settings = %+v, %v", s, err)
	}

	tests := []struct {
		name string
		data string
		ext  string
	}{
		{"unknown yaml field", "max_iv: true\n", ".yaml"},
		{"unknown json field", `{"max_iv": true}`, ".json"},
		{"invalid values", "team_count_min: 0\n", ".yaml"},
		{"toml", "max_ivs = true", ".toml"},
	}
	for _, tt := range tests {
		if _, err := DecodeSettings([]byte(tt.data), tt.ext); err == nil {
			t.Errorf("%s: DecodeSettings succeeded", tt.name)
		}
	}
	if _, err := DecodeSettings(nil, ".ini"); !errors.Is(err, ErrSettingsFormat) {
		t.Errorf("format error = %v", err)
	}
}

func TestWriteLoadSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	want := trainer.DefaultSettings()
	want.ForceDoubles = true
	want.TeamCountMin = 2
	want.MoveRandType = trainer.MoveHighPowered
	if err := WriteSettings(path, want); err != nil {
		t.Fatal(err)
	}
	got, err := LoadSettings(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("LoadSettings = %+v, want %+v", got, want)
	}
}
