package creature

// Record is a single document from the samples_pokemon collection.
// Only the fields the evolution queries read are decoded.
type Record struct {
	Name      string   `bson:"name" json:"name" yaml:"name"`
	Num       Number   `bson:"num" json:"num" yaml:"num"`
	SpawnTime string   `bson:"spawn_time" json:"spawn_time" yaml:"spawn_time"`
	AvgSpawns *float64 `bson:"avg_spawns,omitempty" json:"avg_spawns,omitempty" yaml:"avg_spawns,omitempty"`

	NextEvolution []EvolutionRef `bson:"next_evolution,omitempty" json:"next_evolution,omitempty" yaml:"next_evolution,omitempty"`
	PrevEvolution []EvolutionRef `bson:"prev_evolution,omitempty" json:"prev_evolution,omitempty" yaml:"prev_evolution,omitempty"`
}

type EvolutionRef struct {
	Name string `bson:"name" json:"name" yaml:"name"`
	Num  Number `bson:"num,omitempty" json:"num,omitempty" yaml:"num,omitempty"`
}

// HasNextEvolution reports whether the next_evolution field is present.
// A present but empty list still counts, it just never expands into rows.
func (r *Record) HasNextEvolution() bool {
	return r.NextEvolution != nil
}

func (r *Record) HasPrevEvolution() bool {
	return r.PrevEvolution != nil
}

// IsFirstStage is true for the base of an evolution chain
func (r *Record) IsFirstStage() bool {
	return r.HasNextEvolution() && !r.HasPrevEvolution()
}

func (r *Record) IsTerminal() bool {
	return !r.HasNextEvolution()
}
