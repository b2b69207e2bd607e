// Package config loads process configuration from the environment and
// randomizer settings from YAML or JSON files.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/MJE43/trainerrand/internal/legal"
	"github.com/MJE43/trainerrand/internal/trainer"
)

// Config is the server and CLI process configuration.
type Config struct {
	Addr           string        `env:"TRAINERRAND_ADDR" envDefault:":8080"`
	DBPath         string        `env:"TRAINERRAND_DB_PATH" envDefault:"trainerrand.db"`
	LegalityPath   string        `env:"TRAINERRAND_LEGALITY_PATH"`
	RequestTimeout time.Duration `env:"TRAINERRAND_REQUEST_TIMEOUT" envDefault:"60s"`
	MaxBodyBytes   int64         `env:"TRAINERRAND_MAX_BODY_BYTES" envDefault:"33554432"`
}

// Load reads dotenvPath (when it exists) into the environment and then
// parses Config from it. An empty dotenvPath means ".env".
func Load(dotenvPath string) (*Config, error) {
	if dotenvPath == "" {
		dotenvPath = ".env"
	}
	if _, err := os.Stat(dotenvPath); err == nil {
		if err := godotenv.Load(dotenvPath); err != nil {
			return nil, fmt.Errorf("config: load %s: %w", dotenvPath, err)
		}
	}
	return parse(env.Options{})
}

// FromMap parses Config from an explicit environment, ignoring the process
// environment.
func FromMap(environment map[string]string) (*Config, error) {
	return parse(env.Options{Environment: environment})
}

func parse(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges env parsing cannot express.
func (c *Config) Validate() error {
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("config: TRAINERRAND_REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("config: TRAINERRAND_MAX_BODY_BYTES must be positive, got %d", c.MaxBodyBytes)
	}
	return nil
}

// Catalog returns the legality catalog: the embedded one, or the file named by
// LegalityPath.
func (c *Config) Catalog() (*legal.Catalog, error) {
	if c.LegalityPath == "" {
		return legal.DefaultCatalog(), nil
	}
	f, err := os.Open(c.LegalityPath)
	if err != nil {
		return nil, fmt.Errorf("config: legality tables: %w", err)
	}
	defer f.Close()
	return legal.LoadCatalog(f)
}

// ErrSettingsFormat is returned for settings files that are neither YAML nor JSON.
var ErrSettingsFormat = errors.New("config: unsupported settings format")

// LoadSettings reads settings from a .yaml, .yml or .json file. Fields the
// file omits keep their DefaultSettings values.
func LoadSettings(path string) (trainer.Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return trainer.Settings{}, fmt.Errorf("config: read settings: %w", err)
	}
	return DecodeSettings(data, filepath.Ext(path))
}

// DecodeSettings decodes settings in the format named by ext and validates them.
func DecodeSettings(data []byte, ext string) (trainer.Settings, error) {
	s := trainer.DefaultSettings()
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&s); err != nil {
			return trainer.Settings{}, fmt.Errorf("config: decode settings: %w", err)
		}
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&s); err != nil {
			return trainer.Settings{}, fmt.Errorf("config: decode settings: %w", err)
		}
	default:
		return trainer.Settings{}, fmt.Errorf("%w: %q", ErrSettingsFormat, ext)
	}
	if err := s.Validate(); err != nil {
		return trainer.Settings{}, err
	}
	return s, nil
}

// WriteSettings encodes settings as YAML.
func WriteSettings(path string, s trainer.Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("config: encode settings: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
