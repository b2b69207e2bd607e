package subrand

import (
	"github.com/MJE43/trainerrand/internal/engine"
	"github.com/MJE43/trainerrand/internal/personal"
)

// Forms picks random forms using each species' form count.
type Forms struct {
	rng   engine.Rand
	table *personal.Table
}

// NewForms creates a form picker.
func NewForms(rng engine.Rand, table *personal.Table) *Forms {
	return &Forms{rng: rng, table: table}
}

// RandomForm implements FormPicker. Single-form species return 0 without drawing.
func (f *Forms) RandomForm(species int, allowMega bool) int {
	info, ok := f.table.Get(species)
	if !ok || info.FormCount <= 1 {
		return 0
	}
	candidates := make([]int, 0, info.FormCount)
	for form := 0; form < info.FormCount; form++ {
		if !allowMega && info.IsMegaForm(form) {
			continue
		}
		candidates = append(candidates, form)
	}
	if len(candidates) <= 1 {
		return 0
	}
	return candidates[f.rng.NextInt(len(candidates))]
}
