package evolution

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	joinedField   = "evolution"
	resolvedField = "next_evolutions"
)

var evolutionFields = []string{"name", "num", "spawn_time"}
var firstStageFields = []string{"name", "num", "spawn_time", "avg_spawns"}

// EvolutionsPipeline builds the aggregation behind Engine.Evolutions
func EvolutionsPipeline(collection string) mongo.Pipeline {
	return mongo.Pipeline{
		matchStage(bson.D{
			{Key: "next_evolution", Value: bson.D{{Key: "$exists", Value: true}}},
		}),
		unwindStage(),
		lookupStage(collection),
		resolveStage(evolutionFields),
		groupStage(false),
		projectStage("name", resolvedField),
		sortByNameStage(),
	}
}

// FirstStagePipeline builds the aggregation behind Engine.FirstStage. When
// the predicate cannot be rendered as a $match filter the pipeline stops after
// resolving and pushedDown is false; the caller then decodes expandedRow
// (ExpandList) or joinedRow (ScalarReference) documents and finishes in process.
func FirstStagePipeline(collection string, query FirstStageQuery) (pipeline mongo.Pipeline, pushedDown bool) {
	pipeline = mongo.Pipeline{
		matchStage(bson.D{
			{Key: "next_evolution", Value: bson.D{{Key: "$exists", Value: true}}},
			{Key: "prev_evolution", Value: bson.D{{Key: "$exists", Value: false}}},
		}),
	}

	switch query.Expansion {
	case ScalarReference:
		pipeline = append(pipeline, lookupStage(collection))

		filter, ok := query.Predicate.MatchFilter(joinedField)
		if !ok {
			joinedProjection := []string{"name", "num"}
			for _, field := range firstStageFields {
				joinedProjection = append(joinedProjection, joinedField+"."+field)
			}

			return append(pipeline, projectStage(joinedProjection...)), false
		}

		return append(pipeline,
			matchStage(filter),
			projectStage("name", "num"),
			sortByNameStage(),
		), true
	default:
		pipeline = append(pipeline,
			unwindStage(),
			lookupStage(collection),
			resolveStage(firstStageFields),
		)

		filter, ok := query.Predicate.MatchFilter(resolvedField)
		if !ok {
			return append(pipeline, projectStage("name", "num", resolvedField)), false
		}

		return append(pipeline,
			matchStage(filter),
			groupStage(true),
			projectStage("name", "num", resolvedField),
			sortByNameStage(),
		), true
	}
}

func matchStage(filter bson.D) bson.D {
	return bson.D{{Key: "$match", Value: filter}}
}

func unwindStage() bson.D {
	return bson.D{{Key: "$unwind", Value: "$next_evolution"}}
}

func lookupStage(collection string) bson.D {
	return bson.D{
		{
			Key: "$lookup",
			Value: bson.D{
				{Key: "from", Value: collection},
				{Key: "localField", Value: "next_evolution.name"},
				{Key: "foreignField", Value: "name"},
				{Key: "as", Value: joinedField},
			},
		},
	}
}

// resolveStage copies fields of the first joined document into the resolved
// payload. A reference with no match leaves the fields missing.
func resolveStage(fields []string) bson.D {
	resolved := bson.D{}
	for _, field := range fields {
		resolved = append(resolved, bson.E{
			Key:   resolvedField + "." + field,
			Value: bson.D{{Key: "$arrayElemAt", Value: bson.A{"$" + joinedField + "." + field, 0}}},
		})
	}

	return bson.D{{Key: "$addFields", Value: resolved}}
}

func groupStage(withNum bool) bson.D {
	group := bson.D{
		{Key: "_id", Value: "$name"},
		{Key: "name", Value: bson.D{{Key: "$first", Value: "$name"}}},
	}
	if withNum {
		group = append(group, bson.E{Key: "num", Value: bson.D{{Key: "$first", Value: "$num"}}})
	}
	group = append(group, bson.E{Key: resolvedField, Value: bson.D{{Key: "$push", Value: "$" + resolvedField}}})

	return bson.D{{Key: "$group", Value: group}}
}

func projectStage(fields ...string) bson.D {
	projection := bson.D{{Key: "_id", Value: 0}}
	for _, field := range fields {
		projection = append(projection, bson.E{Key: field, Value: 1})
	}

	return bson.D{{Key: "$project", Value: projection}}
}

func sortByNameStage() bson.D {
	return bson.D{{Key: "$sort", Value: bson.D{{Key: "name", Value: 1}}}}
}
