// Package legal builds the per-version legality tables that constrain trainer
// randomization: fixed team sizes, protected trainer classes, mega stones and
// the held-item pool.
package legal

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"
)

// ErrUnknownVersion is returned when a version name is not recognized.
var ErrUnknownVersion = errors.New("legal: unknown game version")

//go:embed tables.yaml
var defaultTablesYAML []byte

// Mega pairs a species with the stones that mega-evolve it.
type Mega struct {
	Species int   `yaml:"species" json:"species"`
	Items   []int `yaml:"items" json:"items"`
}

// Tables is the immutable legality data for one version group.
type Tables struct {
	FixedCounts    map[int]int
	SpecialClasses map[int]struct{}
	CrashClasses   map[int]struct{}
	// Megas is ordered by species so random picks are reproducible.
	Megas     []Mega
	HeldItems []int

	megaItems map[int]struct{}
}

type versionDoc struct {
	SpecialClasses   []int       `yaml:"special_classes"`
	CrashClasses     []int       `yaml:"crash_classes"`
	CrashClassRanges [][2]int    `yaml:"crash_class_ranges"`
	HeldItems        []int       `yaml:"held_items"`
	Megas            []Mega      `yaml:"megas"`
	FixedCounts      map[int]int `yaml:"fixed_counts"`
}

type tablesDoc struct {
	Versions map[string]versionDoc `yaml:"versions"`
}

// Catalog maps version groups to their tables.
type Catalog struct {
	byGroup map[GameVersion]*Tables
}

var defaultCatalog *Catalog

func init() {
	c, err := ParseCatalog(defaultTablesYAML)
	if err != nil {
		panic(fmt.Sprintf("legal: embedded tables: %v", err))
	}
	defaultCatalog = c
}

// DefaultCatalog returns the catalog built from the embedded tables.
func DefaultCatalog() *Catalog { return defaultCatalog }

// ForVersion returns the embedded tables for v. Versions without special
// handling, including unknown ones, get empty tables.
func ForVersion(v GameVersion) *Tables {
	return defaultCatalog.ForVersion(v)
}

// LoadCatalog decodes a YAML catalog from r.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("legal: read tables: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes a YAML catalog document.
func ParseCatalog(data []byte) (*Catalog, error) {
	var doc tablesDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("legal: decode tables: %w", err)
	}

	c := &Catalog{byGroup: make(map[GameVersion]*Tables, len(doc.Versions))}
	for name, vd := range doc.Versions {
		v, err := ParseVersion(name)
		if err != nil {
			return nil, err
		}
		t, err := vd.build()
		if err != nil {
			return nil, fmt.Errorf("legal: version %s: %w", name, err)
		}
		c.byGroup[v.Group()] = t
	}
	return c, nil
}

// ForVersion returns the tables for v, falling back to empty tables.
func (c *Catalog) ForVersion(v GameVersion) *Tables {
	if t, ok := c.byGroup[v.Group()]; ok {
		return t
	}
	return Empty()
}

// Empty returns tables with no exemptions, no megas and no held items.
func Empty() *Tables {
	return &Tables{
		FixedCounts:    map[int]int{},
		SpecialClasses: map[int]struct{}{},
		CrashClasses:   map[int]struct{}{},
		megaItems:      map[int]struct{}{},
	}
}

func (vd versionDoc) build() (*Tables, error) {
	t := Empty()
	for id, count := range vd.FixedCounts {
		if count < 1 || count > MaxTeamSize {
			return nil, fmt.Errorf("fixed count for trainer %d out of range: %d", id, count)
		}
		t.FixedCounts[id] = count
	}
	for _, c := range vd.SpecialClasses {
		t.SpecialClasses[c] = struct{}{}
	}
	for _, c := range vd.CrashClasses {
		t.CrashClasses[c] = struct{}{}
	}
	for _, r := range vd.CrashClassRanges {
		if r[0] > r[1] {
			return nil, fmt.Errorf("crash class range %d-%d is inverted", r[0], r[1])
		}
		for c := r[0]; c <= r[1]; c++ {
			t.CrashClasses[c] = struct{}{}
		}
	}
	t.HeldItems = append([]int(nil), vd.HeldItems...)

	seen := make(map[int]struct{}, len(vd.Megas))
	for _, m := range vd.Megas {
		if len(m.Items) == 0 {
			return nil, fmt.Errorf("mega species %d has no stones", m.Species)
		}
		if _, dup := seen[m.Species]; dup {
			return nil, fmt.Errorf("mega species %d listed twice", m.Species)
		}
		seen[m.Species] = struct{}{}
		t.Megas = append(t.Megas, Mega{Species: m.Species, Items: append([]int(nil), m.Items...)})
		for _, item := range m.Items {
			t.megaItems[item] = struct{}{}
		}
	}
	sort.Slice(t.Megas, func(a, b int) bool { return t.Megas[a].Species < t.Megas[b].Species })
	return t, nil
}

// FixedCount returns the mandated roster size for trainer id.
func (t *Tables) FixedCount(id int) (int, bool) {
	n, ok := t.FixedCounts[id]
	return n, ok
}

// IsSpecialClass reports whether class is exempt from reassignment when
// special classes are skipped.
func (t *Tables) IsSpecialClass(class int) bool {
	_, ok := t.SpecialClasses[class]
	return ok
}

// IsCrashClass reports whether class must never be reassigned.
func (t *Tables) IsCrashClass(class int) bool {
	_, ok := t.CrashClasses[class]
	return ok
}

// IsMegaStone reports whether item mega-evolves any species in the table.
func (t *Tables) IsMegaStone(item int) bool {
	_, ok := t.megaItems[item]
	return ok
}
