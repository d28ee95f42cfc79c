package creature

// ResolvedEvolution is the projection of a next_evolution target after it
// has been looked up by name. A reference that matched nothing leaves every
// field empty.
type ResolvedEvolution struct {
	Name      string   `bson:"name,omitempty" json:"name,omitempty" groups:"basic,detailed"`
	Num       Number   `bson:"num,omitempty" json:"num,omitempty" groups:"basic,detailed"`
	SpawnTime string   `bson:"spawn_time,omitempty" json:"spawn_time,omitempty" groups:"basic,detailed"`
	AvgSpawns *float64 `bson:"avg_spawns,omitempty" json:"avg_spawns,omitempty" groups:"basic,detailed"`
}

func (e ResolvedEvolution) Resolved() bool {
	return e.Name != ""
}

// EvolutionView is one row of the evolution expansion query
type EvolutionView struct {
	Name           string              `bson:"name" json:"name" groups:"basic,detailed"`
	NextEvolutions []ResolvedEvolution `bson:"next_evolutions" json:"next_evolutions" groups:"detailed"`
}

// FirstStageView is one row of the first stage query. NextEvolutions is only
// filled when the references were expanded one by one.
type FirstStageView struct {
	Name           string              `bson:"name" json:"name" groups:"basic,detailed"`
	Num            Number              `bson:"num" json:"num" groups:"basic,detailed"`
	NextEvolutions []ResolvedEvolution `bson:"next_evolutions,omitempty" json:"next_evolutions,omitempty" groups:"detailed"`
}
