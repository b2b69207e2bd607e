package gamedata

import (
	"fmt"

	"github.com/MJE43/trainerrand/internal/legal"
	"github.com/MJE43/trainerrand/internal/personal"
	"github.com/MJE43/trainerrand/internal/subrand"
	"github.com/MJE43/trainerrand/internal/trainer"
)

// Sample returns a small synthetic dataset for version. It is built
// arithmetically so it is identical on every call, which makes it usable as a
// demo input and as a test fixture.
func Sample(version legal.GameVersion) *Dataset {
	const (
		speciesCount = 151
		moveCount    = 165
		trainerCount = 40
	)

	ds := &Dataset{
		Version:    version,
		ClassCount: 100,
		Species:    []personal.Info{{Species: 0, Name: "egg"}},
		Moves:      []subrand.Move{{ID: 0}},
	}

	for id := 1; id <= speciesCount; id++ {
		base := 40 + (id*53)%80
		row := personal.Info{
			Species: id,
			Name:    fmt.Sprintf("species %03d", id),
			Stats:   [6]int{base, base + (id % 7), base - (id % 5), base + 10, base, base + (id % 11)},
			Types:   [2]int{id % legal.TypeCount, (id * 7) % legal.TypeCount},
		}
		if id%25 == 0 {
			row.FormCount = 2
		}
		ds.Species = append(ds.Species, row)
		if id%3 == 0 {
			ds.FinalEvolutions = append(ds.FinalEvolutions, id)
		}
	}
	// Mega-capable rows for the species the legality tables hand out.
	for _, id := range []int{3, 6, 9, 65, 94, 115, 127, 130, 142, 150} {
		ds.Species[id].FormCount = 3
		ds.Species[id].MegaForms = []int{1, 2}
	}

	for id := 1; id <= moveCount; id++ {
		ds.Moves = append(ds.Moves, subrand.Move{
			ID:       id,
			Type:     id % legal.TypeCount,
			Power:    (id * 29) % 140,
			Category: id % 3,
		})
	}

	for id := 1; id <= speciesCount; id++ {
		set := subrand.Learnset{Species: id}
		for i := 0; i < 10; i++ {
			set.Moves = append(set.Moves, subrand.LevelMove{
				Level: 1 + i*6,
				Move:  1 + (id*3+i*17)%(moveCount-1),
			})
		}
		ds.Learnsets = append(ds.Learnsets, set)
	}

	for i := 0; i < trainerCount; i++ {
		tr := &trainer.Opponent{
			ID:    i + 1,
			Class: (i * 7) % ds.ClassCount,
			AI:    trainer.AIBasic,
		}
		size := 1 + i%legal.MaxTeamSize
		for j := 0; j < size; j++ {
			species := 1 + (i*13+j*29)%speciesCount
			level := 5 + i*2 + j
			tr.Team = append(tr.Team, &trainer.Entry{
				Species: species,
				Level:   level,
				Moves:   [4]int{1 + (species+j)%100, 2 + (species+j)%100, 3 + (species+j)%100, 4 + (species+j)%100},
			})
		}
		ds.Trainers = append(ds.Trainers, tr)
	}
	return ds
}
