// Package subrand provides the collaborators the trainer randomizer delegates
// to: class, species, form and moveset pickers plus the banned-move sanitizer.
// Every implementation draws from a shared engine.Rand, so call order is part
// of the reproducibility contract.
package subrand

// ClassPicker hands out trainer classes. ok is false when the pool is empty.
type ClassPicker interface {
	NextClass() (class int, ok bool)
}

// SpeciesPicker replaces a species, optionally restricted to an elemental type.
type SpeciesPicker interface {
	RandomSpecies(current int) int
	RandomSpeciesType(current, typ int) int
}

// FormPicker picks a legal form for a species.
type FormPicker interface {
	RandomForm(species int, allowMega bool) int
}

// MovesetPicker builds an unconstrained random moveset.
type MovesetPicker interface {
	RandomMoveset(species int) [4]int
}

// LearnsetQuery derives movesets from level-up learnsets.
type LearnsetQuery interface {
	CurrentMoves(species, form, level int) [4]int
	HighPoweredMoves(species, form int) [4]int
}

// MoveSanitizer rewrites banned moves in place and reports whether anything changed.
type MoveSanitizer interface {
	SanitizeBanned(moves *[4]int, species int) bool
}

// AllowFunc filters candidate ids. A nil AllowFunc allows everything.
type AllowFunc func(id int) bool

func (f AllowFunc) allows(id int) bool {
	return f == nil || f(id)
}
