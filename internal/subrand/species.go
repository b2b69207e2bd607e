package subrand

import (
	"github.com/MJE43/trainerrand/internal/engine"
	"github.com/MJE43/trainerrand/internal/personal"
)

// DefaultBSTTolerance is the percentage window used when SimilarBST is set.
const DefaultBSTTolerance = 10

// SpeciesOptions configures the default species picker.
type SpeciesOptions struct {
	// MaxSpecies caps the candidate ids; 0 means the table maximum.
	MaxSpecies int `json:"max_species,omitempty" yaml:"max_species,omitempty"`
	// SimilarBST keeps replacements within BSTTolerance percent of the
	// replaced species' base stat total when possible.
	SimilarBST   bool      `json:"similar_bst,omitempty" yaml:"similar_bst,omitempty"`
	BSTTolerance int       `json:"bst_tolerance,omitempty" yaml:"bst_tolerance,omitempty"`
	Allow        AllowFunc `json:"-" yaml:"-"`
}

// Species picks replacement species from the personal table.
type Species struct {
	rng   engine.Rand
	table *personal.Table
	opts  SpeciesOptions
	pool  []int
}

// NewSpecies builds the candidate pool once; it is immutable afterwards.
func NewSpecies(rng engine.Rand, table *personal.Table, opts SpeciesOptions) *Species {
	if opts.BSTTolerance <= 0 {
		opts.BSTTolerance = DefaultBSTTolerance
	}
	limit := opts.MaxSpecies
	if limit <= 0 || limit > table.MaxSpecies() {
		limit = table.MaxSpecies()
	}

	s := &Species{rng: rng, table: table, opts: opts}
	for _, row := range table.Rows() {
		if row.Species == 0 || row.Species > limit {
			continue
		}
		if !opts.Allow.allows(row.Species) {
			continue
		}
		s.pool = append(s.pool, row.Species)
	}
	return s
}

// PoolSize returns the number of candidate species.
func (s *Species) PoolSize() int { return len(s.pool) }

// RandomSpecies implements SpeciesPicker.
func (s *Species) RandomSpecies(current int) int {
	return s.pick(current, -1)
}

// RandomSpeciesType implements SpeciesPicker. A negative typ disables the theme.
func (s *Species) RandomSpeciesType(current, typ int) int {
	return s.pick(current, typ)
}

func (s *Species) pick(current, typ int) int {
	candidates := s.pool
	if typ >= 0 {
		if typed := s.filter(candidates, func(info personal.Info) bool { return info.HasType(typ) }); len(typed) > 0 {
			candidates = typed
		}
	}
	if s.opts.SimilarBST {
		if bst := s.table.BST(current); bst > 0 {
			window := bst * s.opts.BSTTolerance / 100
			if near := s.filter(candidates, func(info personal.Info) bool {
				d := info.BST() - bst
				return d >= -window && d <= window
			}); len(near) > 0 {
				candidates = near
			}
		}
	}
	if len(candidates) == 0 {
		return current
	}
	return candidates[s.rng.NextInt(len(candidates))]
}

func (s *Species) filter(in []int, keep func(personal.Info) bool) []int {
	var out []int
	for _, id := range in {
		info, ok := s.table.Get(id)
		if ok && keep(info) {
			out = append(out, id)
		}
	}
	return out
}
