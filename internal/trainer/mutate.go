package trainer

import (
	"github.com/MJE43/trainerrand/internal/legal"
)

// determineSpecies picks the entry's species, form and item, then applies
// evolution forcing.
func (r *Randomizer) determineSpecies(pk *Entry, stats *Stats) {
	s := r.settings
	if s.RandomizeTeam {
		typ := -1
		if s.TeamTypeThemed {
			typ = r.rng.NextInt(legal.TypeCount)
		}

		if r.tables.IsMegaStone(pk.HeldItem) {
			// Mega holders stay mega holders so the new species can mega evolve.
			mega := r.tables.Megas[r.rng.NextInt(len(r.tables.Megas))]
			pk.Species = mega.Species
			pk.HeldItem = mega.Items[r.rng.NextInt(len(mega.Items))]
			pk.Form = 0
			stats.MegaSwaps++
		} else {
			if typ >= 0 {
				pk.Species = r.cfg.Species.RandomSpeciesType(pk.Species, typ)
			} else {
				pk.Species = r.cfg.Species.RandomSpecies(pk.Species)
			}
			if items := r.tables.HeldItems; len(items) > 0 {
				pk.HeldItem = items[r.rng.NextInt(len(items))]
			}
			pk.Form = r.cfg.Forms.RandomForm(pk.Species, s.AllowRandomMegaForms)
		}

		pk.Gender = GenderRandom
		pk.Nature = r.rng.NextInt(legal.NatureCount)
	}

	if s.ForceFullyEvolved && pk.Level >= s.ForceFullyEvolvedAtLevel && len(r.cfg.FinalEvolutions) > 0 {
		if _, final := r.finalEvo[pk.Species]; !final {
			pk.Species = r.cfg.FinalEvolutions[r.rng.NextInt(len(r.cfg.FinalEvolutions))]
			pk.Form = r.cfg.Forms.RandomForm(pk.Species, s.AllowRandomMegaForms)
			stats.ForcedEvolves++
		}
	}
}

// updateFromSettings applies the independent field toggles, then the moveset.
func (r *Randomizer) updateFromSettings(pk *Entry, stats *Stats) {
	s := r.settings
	if s.BoostLevel {
		pk.Level = legal.ModifiedLevel(pk.Level, s.LevelBoostRatio)
	}
	if s.RandomShinies {
		pk.Shiny = r.rng.NextInt(100+1) < s.ShinyChance
	}
	if s.RandomAbilities {
		pk.Ability = int(r.rng.NextUint32() % 4)
	}
	if s.MaxIVs {
		pk.IVs = MaxIVs
	}

	if r.randomizeEntryMoves(pk) {
		stats.MovesSanitized++
	}
}

// randomizeEntryMoves replaces the moveset per MoveRandType and reports whether
// the sanitizer rewrote it.
func (r *Randomizer) randomizeEntryMoves(pk *Entry) bool {
	switch r.settings.MoveRandType {
	case MoveRandom:
		pk.Moves = r.cfg.Moves.RandomMoveset(pk.Species)
	case MoveCurrent:
		pk.Moves = r.cfg.Learnsets.CurrentMoves(pk.Species, pk.Form, pk.Level)
	case MoveHighPowered:
		pk.Moves = r.cfg.Learnsets.HighPoweredMoves(pk.Species, pk.Form)
	case MoveMetronome:
		pk.Moves = [4]int{legal.MetronomeMove, 0, 0, 0}
	default:
		return false
	}

	if r.cfg.Sanitizer == nil {
		return false
	}
	return r.cfg.Sanitizer.SanitizeBanned(&pk.Moves, pk.Species)
}
