package evolution

import (
	"context"
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/travigo/pokedex/pkg/creature"
	"golang.org/x/exp/slices"
)

// MemoryEngine evaluates the evolution queries over records held in memory,
// with the same semantics as the aggregation pipelines: references resolve to
// the first record with an exactly equal name, in collection order.
type MemoryEngine struct {
	Records []creature.Record
}

func NewMemoryEngine(records []creature.Record) *MemoryEngine {
	return &MemoryEngine{
		Records: records,
	}
}

func (m *MemoryEngine) Evolutions(ctx context.Context) ([]creature.EvolutionView, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err := m.expand((*creature.Record).HasNextEvolution)
	if err != nil {
		return nil, err
	}

	// Only name, num and spawn_time are projected for this view
	for i := range rows {
		rows[i].Evolution.AvgSpawns = nil
	}

	return toEvolutionViews(groupRows(rows, nil)), nil
}

func (m *MemoryEngine) FirstStage(ctx context.Context, query FirstStageQuery) ([]creature.FirstStageView, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch query.Expansion {
	case ScalarReference:
		rows, err := m.join((*creature.Record).IsFirstStage)
		if err != nil {
			return nil, err
		}

		return filterJoined(rows, query.Predicate.Match), nil
	default:
		rows, err := m.expand((*creature.Record).IsFirstStage)
		if err != nil {
			return nil, err
		}

		return groupRows(rows, query.Predicate.Match), nil
	}
}

func (m *MemoryEngine) expand(include func(*creature.Record) bool) ([]expandedRow, error) {
	var rows []expandedRow

	for i := range m.Records {
		record := &m.Records[i]
		if !include(record) {
			continue
		}

		for _, reference := range record.NextEvolution {
			evolution, err := m.resolve(reference.Name)
			if err != nil {
				return nil, err
			}

			rows = append(rows, expandedRow{
				Name:      record.Name,
				Num:       record.Num,
				Evolution: evolution,
			})
		}
	}

	return rows, nil
}

func (m *MemoryEngine) join(include func(*creature.Record) bool) ([]joinedRow, error) {
	var rows []joinedRow

	for i := range m.Records {
		record := &m.Records[i]
		if !include(record) {
			continue
		}

		row := joinedRow{
			Name: record.Name,
			Num:  record.Num,
		}

		for j := range m.Records {
			target := &m.Records[j]
			referenced := slices.ContainsFunc(record.NextEvolution, func(reference creature.EvolutionRef) bool {
				return reference.Name == target.Name
			})
			if !referenced {
				continue
			}

			var evolution creature.ResolvedEvolution
			if err := copier.CopyWithOption(&evolution, target, copier.Option{DeepCopy: true}); err != nil {
				return nil, fmt.Errorf("copy %s: %w", target.Name, err)
			}
			row.Evolutions = append(row.Evolutions, evolution)
		}

		rows = append(rows, row)
	}

	return rows, nil
}

// resolve looks up the first record named name. No match is not an error,
// it yields an empty evolution.
func (m *MemoryEngine) resolve(name string) (creature.ResolvedEvolution, error) {
	var evolution creature.ResolvedEvolution

	index := slices.IndexFunc(m.Records, func(record creature.Record) bool {
		return record.Name == name
	})
	if index < 0 {
		return evolution, nil
	}

	if err := copier.CopyWithOption(&evolution, &m.Records[index], copier.Option{DeepCopy: true}); err != nil {
		return evolution, fmt.Errorf("copy %s: %w", name, err)
	}

	return evolution, nil
}
