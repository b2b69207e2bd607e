package subrand

import (
	"sort"

	"github.com/MJE43/trainerrand/internal/engine"
)

// Move is one row of the move table.
type Move struct {
	ID       int `json:"id"`
	Type     int `json:"type"`
	Power    int `json:"power"`
	Category int `json:"category,omitempty"`
}

const (
	moveStruggle       = 165
	moveDarkVoid       = 464
	moveHyperspaceFury = 621
	zMoveFirst         = 622
	zMoveLast          = 658
)

// DefaultBannedMoves never appear in randomized movesets unless the species
// owns them via SignatureMoves.
func DefaultBannedMoves() []int {
	banned := []int{moveStruggle, moveDarkVoid, moveHyperspaceFury}
	for m := zMoveFirst; m <= zMoveLast; m++ {
		banned = append(banned, m)
	}
	return banned
}

// SignatureMoves maps a banned move to the only species allowed to keep it.
var SignatureMoves = map[int]int{
	moveDarkVoid:       491, // darkrai
	moveHyperspaceFury: 720, // hoopa
}

// MoveOptions configures the default moveset picker and sanitizer.
type MoveOptions struct {
	Banned []int
	Allow  AllowFunc
}

// Moves picks random movesets and sanitizes banned moves.
type Moves struct {
	rng    engine.Rand
	pool   []int
	banned map[int]struct{}
	allow  AllowFunc
}

// NewMoves builds the candidate pool from moves, dropping id 0, banned and
// filtered moves. Pool order follows move id.
func NewMoves(rng engine.Rand, moves []Move, opts MoveOptions) *Moves {
	m := &Moves{rng: rng, banned: make(map[int]struct{}, len(opts.Banned)), allow: opts.Allow}
	for _, id := range opts.Banned {
		m.banned[id] = struct{}{}
	}
	for _, mv := range moves {
		if mv.ID == 0 || m.isBanned(mv.ID, 0) {
			continue
		}
		m.pool = append(m.pool, mv.ID)
	}
	sort.Ints(m.pool)
	return m
}

// PoolSize returns the number of candidate moves.
func (m *Moves) PoolSize() int { return len(m.pool) }

func (m *Moves) isBanned(move, species int) bool {
	if !m.allow.allows(move) {
		return true
	}
	if _, ok := m.banned[move]; !ok {
		return false
	}
	owner, signature := SignatureMoves[move]
	return !signature || owner != species
}

// RandomMoveset implements MovesetPicker: up to four distinct pool moves.
func (m *Moves) RandomMoveset(species int) [4]int {
	var set [4]int
	remaining := append([]int(nil), m.pool...)
	for slot := 0; slot < len(set) && len(remaining) > 0; slot++ {
		i := m.rng.NextInt(len(remaining))
		set[slot] = remaining[i]
		remaining = append(remaining[:i], remaining[i+1:]...)
	}
	return set
}

// SanitizeBanned implements MoveSanitizer. Each banned slot is replaced by a
// random pool move not already in the set; when none is left the slot is cleared.
func (m *Moves) SanitizeBanned(moves *[4]int, species int) bool {
	changed := false
	for slot, move := range moves {
		if move == 0 || !m.isBanned(move, species) {
			continue
		}
		changed = true
		candidates := m.excluding(moves)
		if len(candidates) == 0 {
			moves[slot] = 0
			continue
		}
		moves[slot] = candidates[m.rng.NextInt(len(candidates))]
	}
	return changed
}

func (m *Moves) excluding(set *[4]int) []int {
	out := make([]int, 0, len(m.pool))
	for _, id := range m.pool {
		if id != set[0] && id != set[1] && id != set[2] && id != set[3] {
			out = append(out, id)
		}
	}
	return out
}
