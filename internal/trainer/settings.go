package trainer

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"

	"github.com/MJE43/trainerrand/internal/legal"
)

// ErrInvalidSettings wraps every settings validation failure.
var ErrInvalidSettings = errors.New("trainer: invalid settings")

// MoveRandType selects how movesets are produced.
type MoveRandType int

const (
	MoveNone MoveRandType = iota
	MoveRandom
	MoveCurrent
	MoveHighPowered
	MoveMetronome
)

var moveRandNames = []string{"none", "random", "current", "high_powered", "metronome"}

func (m MoveRandType) String() string {
	if m < 0 || int(m) >= len(moveRandNames) {
		return fmt.Sprintf("MoveRandType(%d)", int(m))
	}
	return moveRandNames[m]
}

// ParseMoveRandType resolves a case-insensitive move mode name.
func ParseMoveRandType(s string) (MoveRandType, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for i, name := range moveRandNames {
		if key == name {
			return MoveRandType(i), nil
		}
	}
	return MoveNone, fmt.Errorf("%w: unknown move mode %q", ErrInvalidSettings, s)
}

// MarshalText implements encoding.TextMarshaler.
func (m MoveRandType) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *MoveRandType) UnmarshalText(text []byte) error {
	v, err := ParseMoveRandType(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Settings is the user-chosen policy for one pass. It is read-only while a
// pass runs.
type Settings struct {
	RandomTrainerClass bool `json:"random_trainer_class" yaml:"random_trainer_class"`
	SkipSpecialClasses bool `json:"skip_special_classes" yaml:"skip_special_classes"`

	TeamCountMin           int  `json:"team_count_min" yaml:"team_count_min"`
	TeamCountMax           int  `json:"team_count_max" yaml:"team_count_max"`
	ForceDoubles           bool `json:"force_doubles" yaml:"force_doubles"`
	ForceSpecialTeamCount6 bool `json:"force_special_team_count_6" yaml:"force_special_team_count_6"`
	TrainerMaxAI           bool `json:"trainer_max_ai" yaml:"trainer_max_ai"`

	RandomizeTeam        bool `json:"randomize_team" yaml:"randomize_team"`
	TeamTypeThemed       bool `json:"team_type_themed" yaml:"team_type_themed"`
	AllowRandomMegaForms bool `json:"allow_random_mega_forms" yaml:"allow_random_mega_forms"`

	ForceFullyEvolved        bool `json:"force_fully_evolved" yaml:"force_fully_evolved"`
	ForceFullyEvolvedAtLevel int  `json:"force_fully_evolved_at_level" yaml:"force_fully_evolved_at_level"`

	BoostLevel      bool    `json:"boost_level" yaml:"boost_level"`
	LevelBoostRatio float64 `json:"level_boost_ratio" yaml:"level_boost_ratio"`

	RandomShinies bool `json:"random_shinies" yaml:"random_shinies"`
	ShinyChance   int  `json:"shiny_chance" yaml:"shiny_chance"`

	RandomAbilities bool         `json:"random_abilities" yaml:"random_abilities"`
	MaxIVs          bool         `json:"max_ivs" yaml:"max_ivs"`
	MoveRandType    MoveRandType `json:"move_rand_type" yaml:"move_rand_type"`
}

// DefaultSettings returns the settings a fresh install starts with.
func DefaultSettings() Settings {
	return Settings{
		RandomTrainerClass:       true,
		SkipSpecialClasses:       true,
		TeamCountMin:             1,
		TeamCountMax:             legal.MaxTeamSize,
		RandomizeTeam:            true,
		ForceFullyEvolvedAtLevel: 50,
		LevelBoostRatio:          1.1,
		ShinyChance:              5,
		MoveRandType:             MoveCurrent,
	}
}

// Validate reports every violation at once.
func (s Settings) Validate() error {
	var err error
	if s.TeamCountMin < 1 || s.TeamCountMin > legal.MaxTeamSize {
		err = multierr.Append(err, fmt.Errorf("team_count_min %d outside [1, %d]", s.TeamCountMin, legal.MaxTeamSize))
	}
	if s.TeamCountMax < s.TeamCountMin || s.TeamCountMax > legal.MaxTeamSize {
		err = multierr.Append(err, fmt.Errorf("team_count_max %d outside [team_count_min, %d]", s.TeamCountMax, legal.MaxTeamSize))
	}
	if s.ForceDoubles && s.TeamCountMin == s.TeamCountMax && s.TeamCountMin%2 == 1 {
		err = multierr.Append(err, fmt.Errorf("force_doubles needs an even team size, min and max are both %d", s.TeamCountMin))
	}
	if s.ForceFullyEvolved && (s.ForceFullyEvolvedAtLevel < legal.MinLevel || s.ForceFullyEvolvedAtLevel > legal.MaxLevel) {
		err = multierr.Append(err, fmt.Errorf("force_fully_evolved_at_level %d outside [%d, %d]", s.ForceFullyEvolvedAtLevel, legal.MinLevel, legal.MaxLevel))
	}
	if s.BoostLevel && s.LevelBoostRatio <= 0 {
		err = multierr.Append(err, fmt.Errorf("level_boost_ratio must be positive, got %v", s.LevelBoostRatio))
	}
	if s.RandomShinies && (s.ShinyChance < 0 || s.ShinyChance > 100) {
		err = multierr.Append(err, fmt.Errorf("shiny_chance %d outside [0, 100]", s.ShinyChance))
	}
	if s.MoveRandType < MoveNone || s.MoveRandType > MoveMetronome {
		err = multierr.Append(err, fmt.Errorf("move_rand_type %d unknown", int(s.MoveRandType)))
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}
	return nil
}
