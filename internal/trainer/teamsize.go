package trainer

import (
	"github.com/MJE43/trainerrand/internal/legal"
)

// teamBounds resolves the roster size limits for one trainer.
type teamBounds struct {
	min, max int
	special  bool
	fixed    int
}

func (r *Randomizer) bounds(tr *Opponent) teamBounds {
	if count, ok := r.tables.FixedCount(tr.ID); ok {
		return teamBounds{min: count, max: count, special: true, fixed: count}
	}
	return teamBounds{min: r.settings.TeamCountMin, max: r.settings.TeamCountMax}
}

// teamAverages returns the truncated average BST and level of the roster.
func (r *Randomizer) teamAverages(team []*Entry) (avgBST, avgLevel int) {
	var bst, level, n int
	for _, pk := range team {
		if pk == nil {
			continue
		}
		bst += r.cfg.Personal.BST(pk.Species)
		level += pk.Level
		n++
	}
	if n == 0 {
		return 0, 0
	}
	return bst / n, level / n
}

// setupTeamCount pads or truncates tr.Team and returns how many entries were
// added and dropped. Filler entries use the species closest to the roster's
// average BST as the seed species and the average level.
func (r *Randomizer) setupTeamCount(tr *Opponent) (added, dropped int) {
	s := r.settings
	b := r.bounds(tr)

	avgBST, avgLevel := r.teamAverages(tr.Team)
	avgSpec := r.cfg.Personal.ClosestBST(avgBST)

	pad := func(target int) {
		for len(tr.Team) < target {
			tr.Team = append(tr.Team, r.filler(avgLevel, avgSpec))
			added++
		}
	}
	truncate := func(target int) {
		if len(tr.Team) > target {
			dropped += len(tr.Team) - target
			for i := target; i < len(tr.Team); i++ {
				tr.Team[i] = nil
			}
			tr.Team = tr.Team[:target]
		}
	}

	doubles := s.ForceDoubles && !(b.special && b.fixed%2 == 1)
	if doubles {
		if len(tr.Team)%2 != 0 {
			pad(len(tr.Team) + 1)
		}
		tr.AI |= AIDoubles
		tr.Mode = BattleDoubles
	}

	switch {
	case s.ForceSpecialTeamCount6 && b.special && b.fixed == legal.MaxTeamSize:
		pad(legal.MaxTeamSize)
		truncate(legal.MaxTeamSize)
	case len(tr.Team) < b.min:
		pad(b.min)
	case len(tr.Team) > b.max:
		truncate(b.max)
	}

	// Min/max may have undone the doubles padding.
	if doubles && len(tr.Team)%2 != 0 {
		if len(tr.Team)+1 <= b.max {
			pad(len(tr.Team) + 1)
		} else {
			truncate(len(tr.Team) - 1)
		}
	}
	return added, dropped
}

// filler synthesizes one roster entry near the roster's power band.
func (r *Randomizer) filler(avgLevel, avgSpec int) *Entry {
	if r.cfg.NewEntry == nil {
		panic("trainer: roster needs padding but Config.NewEntry is nil")
	}
	pk := r.cfg.NewEntry()
	pk.Species = r.cfg.Species.RandomSpecies(avgSpec)
	pk.Level = avgLevel
	return pk
}
