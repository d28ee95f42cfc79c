package evolution

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/pokedex/pkg/creature"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func namespace(mt *mtest.T) string {
	return mt.Coll.Database().Name() + "." + mt.Coll.Name()
}

func TestMongoEngine_Evolutions(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("decodes grouped views", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch,
			bson.D{
				{Key: "name", Value: "Bulbasaur"},
				{Key: "next_evolutions", Value: bson.A{
					bson.D{{Key: "name", Value: "Ivysaur"}, {Key: "num", Value: "002"}, {Key: "spawn_time", Value: "04:30"}},
					bson.D{{Key: "name", Value: "Venusaur"}, {Key: "num", Value: int32(3)}, {Key: "spawn_time", Value: "11:30"}},
				}},
			},
			bson.D{
				{Key: "name", Value: "Eevee"},
				{Key: "next_evolutions", Value: bson.A{bson.D{}}},
			},
		))

		views, err := NewMongoEngine(mt.Coll).Evolutions(context.Background())
		require.NoError(mt, err)

		assert.Equal(mt, []creature.EvolutionView{
			{
				Name: "Bulbasaur",
				NextEvolutions: []creature.ResolvedEvolution{
					{Name: "Ivysaur", Num: "002", SpawnTime: "04:30"},
					{Name: "Venusaur", Num: "3", SpawnTime: "11:30"},
				},
			},
			{
				Name:           "Eevee",
				NextEvolutions: []creature.ResolvedEvolution{{}},
			},
		}, views)
	})

	mt.Run("empty result", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch))

		views, err := NewMongoEngine(mt.Coll).Evolutions(context.Background())
		require.NoError(mt, err)
		assert.NotNil(mt, views)
		assert.Empty(mt, views)
	})

	mt.Run("command error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "invalid pipeline",
		}))

		_, err := NewMongoEngine(mt.Coll).Evolutions(context.Background())
		assert.ErrorContains(mt, err, "invalid pipeline")
	})
}

func TestMongoEngine_FirstStage(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("pushed down", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch,
			bson.D{{Key: "name", Value: "Bulbasaur"}, {Key: "num", Value: "001"}},
			bson.D{{Key: "name", Value: "Charmander"}, {Key: "num", Value: "004"}},
		))

		views, err := FirstStageBySpawnTime(context.Background(), NewMongoEngine(mt.Coll), "04")
		require.NoError(mt, err)
		assert.Equal(mt, []creature.FirstStageView{
			{Name: "Bulbasaur", Num: "001"},
			{Name: "Charmander", Num: "004"},
		}, views)
	})

	mt.Run("expression expanded in process", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch,
			bson.D{
				{Key: "name", Value: "Charmander"},
				{Key: "num", Value: "004"},
				{Key: "next_evolutions", Value: bson.D{{Key: "name", Value: "Charmeleon"}, {Key: "num", Value: "005"}, {Key: "avg_spawns", Value: int32(4)}}},
			},
			bson.D{
				{Key: "name", Value: "Charmander"},
				{Key: "num", Value: "004"},
				{Key: "next_evolutions", Value: bson.D{{Key: "name", Value: "Charizard"}, {Key: "num", Value: "006"}, {Key: "avg_spawns", Value: 5.0}}},
			},
			bson.D{
				{Key: "name", Value: "Abra"},
				{Key: "num", Value: "063"},
				{Key: "next_evolutions", Value: bson.D{{Key: "name", Value: "Kadabra"}, {Key: "num", Value: "064"}, {Key: "avg_spawns", Value: 3.0}}},
			},
		))

		expression, err := NewExpression(`avg_spawns > 4`)
		require.NoError(mt, err)

		views, err := NewMongoEngine(mt.Coll).FirstStage(context.Background(), FirstStageQuery{
			Expansion: ExpandList,
			Predicate: expression,
		})
		require.NoError(mt, err)
		assert.Equal(mt, []creature.FirstStageView{
			{
				Name: "Charmander", Num: "004",
				NextEvolutions: []creature.ResolvedEvolution{
					{Name: "Charizard", Num: "006", AvgSpawns: avgSpawns(5)},
				},
			},
		}, views)
	})

	mt.Run("expression joined in process", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch,
			bson.D{
				{Key: "name", Value: "Bulbasaur"},
				{Key: "num", Value: "001"},
				{Key: "evolution", Value: bson.A{
					bson.D{{Key: "name", Value: "Ivysaur"}, {Key: "spawn_time", Value: "04:30"}},
					bson.D{{Key: "name", Value: "Venusaur"}, {Key: "spawn_time", Value: "11:30"}},
				}},
			},
			bson.D{
				{Key: "name", Value: "Abra"},
				{Key: "num", Value: "063"},
				{Key: "evolution", Value: bson.A{
					bson.D{{Key: "name", Value: "Kadabra"}, {Key: "spawn_time", Value: "14:00"}},
				}},
			},
		))

		expression, err := NewExpression(`spawn_time startsWith "04"`)
		require.NoError(mt, err)

		views, err := NewMongoEngine(mt.Coll).FirstStage(context.Background(), FirstStageQuery{
			Expansion: ScalarReference,
			Predicate: expression,
		})
		require.NoError(mt, err)
		assert.Equal(mt, []creature.FirstStageView{{Name: "Bulbasaur", Num: "001"}}, views)
	})
}
