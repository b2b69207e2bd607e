package subrand

import "sort"

// LevelMove is a move learned at a level.
type LevelMove struct {
	Level int `json:"level"`
	Move  int `json:"move"`
}

// Learnset is the level-up learnset of one species form.
type Learnset struct {
	Species int         `json:"species"`
	Form    int         `json:"form,omitempty"`
	Moves   []LevelMove `json:"moves"`
}

type formKey struct{ species, form int }

// Learnsets answers moveset queries from level-up data. It never draws.
type Learnsets struct {
	sets  map[formKey][]LevelMove
	power map[int]int
}

// NewLearnsets indexes learnsets by species and form. Moves are ordered by level.
func NewLearnsets(sets []Learnset, moves []Move) *Learnsets {
	l := &Learnsets{
		sets:  make(map[formKey][]LevelMove, len(sets)),
		power: make(map[int]int, len(moves)),
	}
	for _, s := range sets {
		ordered := append([]LevelMove(nil), s.Moves...)
		sort.SliceStable(ordered, func(a, b int) bool { return ordered[a].Level < ordered[b].Level })
		l.sets[formKey{s.Species, s.Form}] = ordered
	}
	for _, mv := range moves {
		l.power[mv.ID] = mv.Power
	}
	return l
}

func (l *Learnsets) lookup(species, form int) []LevelMove {
	if moves, ok := l.sets[formKey{species, form}]; ok {
		return moves
	}
	return l.sets[formKey{species, 0}]
}

// CurrentMoves implements LearnsetQuery: the last four distinct moves learned
// at or below level, oldest first.
func (l *Learnsets) CurrentMoves(species, form, level int) [4]int {
	var learned []int
	for _, lm := range l.lookup(species, form) {
		if lm.Level > level {
			break
		}
		if lm.Move == 0 {
			continue
		}
		for i, m := range learned {
			if m == lm.Move {
				learned = append(learned[:i], learned[i+1:]...)
				break
			}
		}
		learned = append(learned, lm.Move)
	}
	if len(learned) > 4 {
		learned = learned[len(learned)-4:]
	}
	var set [4]int
	copy(set[:], learned)
	return set
}

// HighPoweredMoves implements LearnsetQuery: the four strongest distinct
// learnable moves, ties broken by lower move id.
func (l *Learnsets) HighPoweredMoves(species, form int) [4]int {
	seen := make(map[int]struct{})
	var distinct []int
	for _, lm := range l.lookup(species, form) {
		if lm.Move == 0 {
			continue
		}
		if _, ok := seen[lm.Move]; ok {
			continue
		}
		seen[lm.Move] = struct{}{}
		distinct = append(distinct, lm.Move)
	}
	sort.SliceStable(distinct, func(a, b int) bool {
		pa, pb := l.power[distinct[a]], l.power[distinct[b]]
		if pa != pb {
			return pa > pb
		}
		return distinct[a] < distinct[b]
	})
	var set [4]int
	copy(set[:], distinct)
	return set
}
