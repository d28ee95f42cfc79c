package evolution

import (
	"strings"

	"github.com/travigo/pokedex/pkg/creature"
	"golang.org/x/exp/slices"
)

// expandedRow is one next_evolution reference after it has been unwound from
// its originating record and resolved
type expandedRow struct {
	Name      string                     `bson:"name"`
	Num       creature.Number            `bson:"num"`
	Evolution creature.ResolvedEvolution `bson:"next_evolutions"`
}

// joinedRow is a record with all of its next_evolution targets joined at once
type joinedRow struct {
	Name       string                       `bson:"name"`
	Num        creature.Number              `bson:"num"`
	Evolutions []creature.ResolvedEvolution `bson:"evolution"`
}

// groupRows regroups expanded rows by originating name, keeping the rows keep
// passes in expansion order. A nil keep passes everything.
func groupRows(rows []expandedRow, keep func(creature.ResolvedEvolution) bool) []creature.FirstStageView {
	views := []creature.FirstStageView{}
	positions := map[string]int{}

	for _, row := range rows {
		if keep != nil && !keep(row.Evolution) {
			continue
		}

		position, exists := positions[row.Name]
		if !exists {
			position = len(views)
			positions[row.Name] = position

			views = append(views, creature.FirstStageView{
				Name: row.Name,
				Num:  row.Num,
			})
		}

		views[position].NextEvolutions = append(views[position].NextEvolutions, row.Evolution)
	}

	sortByName(views, func(view creature.FirstStageView) string { return view.Name })

	return views
}

// filterJoined keeps the joined rows where any resolved target passes keep
func filterJoined(rows []joinedRow, keep func(creature.ResolvedEvolution) bool) []creature.FirstStageView {
	views := []creature.FirstStageView{}

	for _, row := range rows {
		if slices.IndexFunc(row.Evolutions, keep) < 0 {
			continue
		}

		views = append(views, creature.FirstStageView{
			Name: row.Name,
			Num:  row.Num,
		})
	}

	sortByName(views, func(view creature.FirstStageView) string { return view.Name })

	return views
}

func toEvolutionViews(grouped []creature.FirstStageView) []creature.EvolutionView {
	views := make([]creature.EvolutionView, 0, len(grouped))

	for _, group := range grouped {
		views = append(views, creature.EvolutionView{
			Name:           group.Name,
			NextEvolutions: group.NextEvolutions,
		})
	}

	return views
}

func sortByName[T any](views []T, name func(T) string) {
	slices.SortStableFunc(views, func(a, b T) int {
		return strings.Compare(name(a), name(b))
	})
}
