// Package personal holds the per-species base stat rows consumed by the
// randomizers.
package personal

import (
	"fmt"
	"sort"
)

// Stat indexes into Info.Stats.
const (
	StatHP = iota
	StatAttack
	StatDefense
	StatSpAttack
	StatSpDefense
	StatSpeed
)

// Info is one row of the personal table.
type Info struct {
	Species   int    `json:"species"`
	Name      string `json:"name,omitempty"`
	Stats     [6]int `json:"stats"`
	Types     [2]int `json:"types"`
	FormCount int    `json:"form_count,omitempty"`
	// MegaForms lists form indexes that are mega evolutions.
	MegaForms []int `json:"mega_forms,omitempty"`
}

// BST returns the base stat total.
func (i Info) BST() int {
	total := 0
	for _, s := range i.Stats {
		total += s
	}
	return total
}

// HasType reports whether either of the row's types equals t.
func (i Info) HasType(t int) bool {
	return i.Types[0] == t || i.Types[1] == t
}

// IsMegaForm reports whether form is one of the row's mega forms.
func (i Info) IsMegaForm(form int) bool {
	for _, f := range i.MegaForms {
		if f == form {
			return true
		}
	}
	return false
}

// Table is an immutable species-indexed set of rows.
type Table struct {
	rows  []Info
	index map[int]int
	max   int
}

// NewTable builds a table. Rows are ordered by species id; duplicates are an error.
func NewTable(rows []Info) (*Table, error) {
	sorted := make([]Info, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(a, b int) bool { return sorted[a].Species < sorted[b].Species })

	t := &Table{rows: sorted, index: make(map[int]int, len(sorted))}
	for i, r := range sorted {
		if r.Species < 0 {
			return nil, fmt.Errorf("personal: negative species id %d", r.Species)
		}
		if _, dup := t.index[r.Species]; dup {
			return nil, fmt.Errorf("personal: duplicate species %d", r.Species)
		}
		t.index[r.Species] = i
		if r.Species > t.max {
			t.max = r.Species
		}
	}
	return t, nil
}

// Get returns the row for species.
func (t *Table) Get(species int) (Info, bool) {
	i, ok := t.index[species]
	if !ok {
		return Info{}, false
	}
	return t.rows[i], true
}

// BST returns the base stat total of species, or 0 when it is unknown.
func (t *Table) BST(species int) int {
	info, ok := t.Get(species)
	if !ok {
		return 0
	}
	return info.BST()
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// MaxSpecies returns the highest species id in the table.
func (t *Table) MaxSpecies() int { return t.max }

// Rows returns the rows in ascending species order. The slice must not be modified.
func (t *Table) Rows() []Info { return t.rows }

// ClosestBST returns the species whose BST is nearest to bst. Species 0 is
// never returned; ties go to the lowest species id. It returns 0 when the table
// has no usable rows.
func (t *Table) ClosestBST(bst int) int {
	best, bestDist := 0, -1
	for _, r := range t.rows {
		if r.Species == 0 {
			continue
		}
		d := r.BST() - bst
		if d < 0 {
			d = -d
		}
		if bestDist < 0 || d < bestDist {
			best, bestDist = r.Species, d
		}
	}
	return best
}
