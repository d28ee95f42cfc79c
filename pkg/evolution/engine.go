package evolution

import (
	"context"
	"fmt"
	"strings"

	"github.com/travigo/pokedex/pkg/creature"
)

const DefaultAvgSpawnsThreshold = 4.0
const DefaultSpawnTimePrefix = "04"

// Engine computes the derived evolution views over a collection of creature
// records. Implementations are read-only.
type Engine interface {
	// Evolutions returns every record with at least one next_evolution
	// reference alongside the resolved name, num and spawn_time of each target.
	Evolutions(ctx context.Context) ([]creature.EvolutionView, error)

	// FirstStage returns the first stage records whose resolved evolutions
	// pass the query predicate.
	FirstStage(ctx context.Context, query FirstStageQuery) ([]creature.FirstStageView, error)
}

// Expansion decides how next_evolution is joined against the collection
type Expansion int

const (
	// ExpandList unwinds next_evolution so every reference is resolved and
	// filtered on its own, then regroups the passing ones per record.
	ExpandList Expansion = iota
	// ScalarReference joins the whole next_evolution list at once. A record
	// qualifies when any of its resolved targets passes.
	ScalarReference
)

func (e Expansion) String() string {
	switch e {
	case ExpandList:
		return "list"
	case ScalarReference:
		return "scalar"
	default:
		return fmt.Sprintf("Expansion(%d)", int(e))
	}
}

func ParseExpansion(value string) (Expansion, error) {
	switch strings.ToLower(value) {
	case "list":
		return ExpandList, nil
	case "scalar":
		return ScalarReference, nil
	default:
		return ExpandList, fmt.Errorf("unknown expansion %q, expected list or scalar", value)
	}
}

type FirstStageQuery struct {
	Expansion Expansion
	Predicate Predicate
}

func (q FirstStageQuery) String() string {
	return fmt.Sprintf("%s/%s", q.Expansion, q.Predicate.Name())
}

// FirstStageByAvgSpawns returns first stage records with at least one
// evolution whose avg_spawns is strictly above threshold, listing the passing
// evolutions.
func FirstStageByAvgSpawns(ctx context.Context, engine Engine, threshold float64) ([]creature.FirstStageView, error) {
	return engine.FirstStage(ctx, FirstStageQuery{
		Expansion: ExpandList,
		Predicate: AvgSpawnsAbove{Threshold: threshold},
	})
}

// FirstStageBySpawnTime returns the name and num of first stage records with
// an evolution whose spawn_time begins with prefix.
func FirstStageBySpawnTime(ctx context.Context, engine Engine, prefix string) ([]creature.FirstStageView, error) {
	return engine.FirstStage(ctx, FirstStageQuery{
		Expansion: ScalarReference,
		Predicate: SpawnTimePrefix{Prefix: prefix},
	})
}
