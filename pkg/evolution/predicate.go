package evolution

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/rs/zerolog/log"
	"github.com/travigo/pokedex/pkg/creature"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Predicate filters resolved evolutions
type Predicate interface {
	Name() string
	Match(evolution creature.ResolvedEvolution) bool

	// MatchFilter renders the predicate as a $match filter against the
	// resolved evolution stored at path. ok is false when the predicate can
	// only be evaluated in process.
	MatchFilter(path string) (filter bson.D, ok bool)
}

// AvgSpawnsAbove passes evolutions with avg_spawns strictly greater than Threshold
type AvgSpawnsAbove struct {
	Threshold float64
}

func (p AvgSpawnsAbove) Name() string {
	return "avg_spawns>" + strconv.FormatFloat(p.Threshold, 'f', -1, 64)
}

func (p AvgSpawnsAbove) Match(evolution creature.ResolvedEvolution) bool {
	return evolution.AvgSpawns != nil && *evolution.AvgSpawns > p.Threshold
}

func (p AvgSpawnsAbove) MatchFilter(path string) (bson.D, bool) {
	return bson.D{
		{Key: path + ".avg_spawns", Value: bson.D{{Key: "$gt", Value: p.Threshold}}},
	}, true
}

// SpawnTimePrefix passes evolutions whose spawn_time text begins with Prefix
type SpawnTimePrefix struct {
	Prefix string
}

func (p SpawnTimePrefix) Name() string {
	return "spawn_time^" + p.Prefix
}

func (p SpawnTimePrefix) Match(evolution creature.ResolvedEvolution) bool {
	return strings.HasPrefix(evolution.SpawnTime, p.Prefix)
}

func (p SpawnTimePrefix) MatchFilter(path string) (bson.D, bool) {
	return bson.D{
		{Key: path + ".spawn_time", Value: primitive.Regex{Pattern: "^" + regexp.QuoteMeta(p.Prefix)}},
	}, true
}

// Expression is a boolean expr program over the resolved evolution. The
// program sees name, num, spawn_time and avg_spawns; avg_spawns is nil when
// the target has none.
type Expression struct {
	Source  string
	program *vm.Program
}

func NewExpression(source string) (*Expression, error) {
	program, err := expr.Compile(source, expr.Env(expressionTypes), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile expression %q: %w", source, err)
	}

	return &Expression{
		Source:  source,
		program: program,
	}, nil
}

func (p *Expression) Name() string {
	return "expr:" + p.Source
}

func (p *Expression) Match(evolution creature.ResolvedEvolution) bool {
	output, err := expr.Run(p.program, expressionEnv(evolution))
	if err != nil {
		log.Debug().Err(err).Str("expression", p.Source).Str("evolution", evolution.Name).Msg("Expression did not evaluate")
		return false
	}

	matched, _ := output.(bool)
	return matched
}

func (p *Expression) MatchFilter(string) (bson.D, bool) {
	return nil, false
}

var expressionTypes = map[string]interface{}{
	"name":       "",
	"num":        "",
	"spawn_time": "",
	"avg_spawns": 0.0,
}

func expressionEnv(evolution creature.ResolvedEvolution) map[string]interface{} {
	env := map[string]interface{}{
		"name":       evolution.Name,
		"num":        evolution.Num.String(),
		"spawn_time": evolution.SpawnTime,
		"avg_spawns": nil,
	}

	if evolution.AvgSpawns != nil {
		env["avg_spawns"] = *evolution.AvgSpawns
	}

	return env
}
