// Package trainer randomizes the rosters of scripted opponents.
//
// # Determinism
//
// A pass draws every random value from one shared engine.Rand, walking the
// trainers in input order and each roster front to back. Given the same seed,
// the same input trainers and the same settings, Execute produces identical
// output. Reordering trainers, entries or settings that gate a draw changes
// every later result.
package trainer

import "github.com/MJE43/trainerrand/internal/legal"

// AIFlag is a bit in a trainer's AI bitset.
type AIFlag uint32

const (
	AIBasic AIFlag = 1 << iota
	AIStrong
	AIExpert
	AIDoubles
	AIAllowance
	AIUseItems
	AIPokeChange
)

// AIMax is OR'd into every trainer when max AI is enabled.
const AIMax = AIBasic | AIStrong | AIExpert | AIPokeChange

// BattleMode is how a trainer fights.
type BattleMode int

const (
	BattleSingles BattleMode = iota
	BattleDoubles
	BattleTriples
	BattleRotation
)

func (m BattleMode) String() string {
	switch m {
	case BattleSingles:
		return "singles"
	case BattleDoubles:
		return "doubles"
	case BattleTriples:
		return "triples"
	case BattleRotation:
		return "rotation"
	default:
		return "unknown"
	}
}

// GenderRandom lets the game roll the gender.
const GenderRandom = 0

// Entry is one fighter on a trainer's roster. Species 0 marks an empty slot.
type Entry struct {
	Species  int    `json:"species"`
	Form     int    `json:"form"`
	Level    int    `json:"level"`
	Moves    [4]int `json:"moves"`
	Ability  int    `json:"ability"`
	HeldItem int    `json:"held_item"`
	Shiny    bool   `json:"shiny"`
	Gender   int    `json:"gender"`
	Nature   int    `json:"nature"`
	IVs      [6]int `json:"ivs"`
}

// IsEmpty reports whether the slot holds no species.
func (e *Entry) IsEmpty() bool { return e == nil || e.Species == 0 }

// NewEntry is the default blank-entry factory.
func NewEntry() *Entry {
	return &Entry{}
}

// Opponent is one scripted trainer and its roster.
type Opponent struct {
	ID    int        `json:"id"`
	Class int        `json:"class"`
	AI    AIFlag     `json:"ai"`
	Mode  BattleMode `json:"mode"`
	Team  []*Entry   `json:"team"`
}

// Clone returns a deep copy of the opponent.
func (o *Opponent) Clone() *Opponent {
	c := *o
	c.Team = make([]*Entry, len(o.Team))
	for i, e := range o.Team {
		if e != nil {
			cp := *e
			c.Team[i] = &cp
		}
	}
	return &c
}

// CloneAll deep-copies a trainer list.
func CloneAll(trainers []*Opponent) []*Opponent {
	out := make([]*Opponent, len(trainers))
	for i, tr := range trainers {
		if tr != nil {
			out[i] = tr.Clone()
		}
	}
	return out
}

// MaxIVs is the IV spread applied by the max IVs option.
var MaxIVs = [6]int{legal.MaxIV, legal.MaxIV, legal.MaxIV, legal.MaxIV, legal.MaxIV, legal.MaxIV}
