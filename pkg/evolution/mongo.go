package evolution

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/travigo/pokedex/pkg/creature"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoEngine runs the evolution queries as aggregation pipelines against a
// single collection
type MongoEngine struct {
	Collection *mongo.Collection
}

func NewMongoEngine(collection *mongo.Collection) *MongoEngine {
	return &MongoEngine{
		Collection: collection,
	}
}

func (m *MongoEngine) Evolutions(ctx context.Context) ([]creature.EvolutionView, error) {
	views := []creature.EvolutionView{}

	if err := m.aggregate(ctx, EvolutionsPipeline(m.Collection.Name()), &views); err != nil {
		return nil, err
	}

	return views, nil
}

func (m *MongoEngine) FirstStage(ctx context.Context, query FirstStageQuery) ([]creature.FirstStageView, error) {
	pipeline, pushedDown := FirstStagePipeline(m.Collection.Name(), query)

	if pushedDown {
		views := []creature.FirstStageView{}
		if err := m.aggregate(ctx, pipeline, &views); err != nil {
			return nil, err
		}

		return views, nil
	}

	log.Debug().Str("query", query.String()).Msg("Predicate cannot be pushed down, filtering in process")

	switch query.Expansion {
	case ScalarReference:
		rows := []joinedRow{}
		if err := m.aggregate(ctx, pipeline, &rows); err != nil {
			return nil, err
		}

		return filterJoined(rows, query.Predicate.Match), nil
	default:
		rows := []expandedRow{}
		if err := m.aggregate(ctx, pipeline, &rows); err != nil {
			return nil, err
		}

		return groupRows(rows, query.Predicate.Match), nil
	}
}

func (m *MongoEngine) aggregate(ctx context.Context, pipeline mongo.Pipeline, results interface{}) error {
	cursor, err := m.Collection.Aggregate(ctx, pipeline)
	if err != nil {
		return fmt.Errorf("aggregate %s: %w", m.Collection.Name(), err)
	}

	if err := cursor.All(ctx, results); err != nil {
		return fmt.Errorf("read %s aggregation results: %w", m.Collection.Name(), err)
	}

	log.Debug().Str("collection", m.Collection.Name()).Int("stages", len(pipeline)).Msg("Aggregation complete")

	return nil
}
