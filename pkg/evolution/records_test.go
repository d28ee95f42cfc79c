package evolution

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/pokedex/pkg/creature"
)

func writeFile(t *testing.T, name string, contents string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadRecords(t *testing.T) {
	testCases := []struct {
		name     string
		file     string
		contents string
	}{
		{
			name: "yaml list",
			file: "pokedex.yaml",
			contents: `
- name: Charmander
  num: "004"
  spawn_time: "16:00"
  next_evolution:
    - name: Charmeleon
- name: Charmeleon
  num: "005"
  avg_spawns: 4
  prev_evolution:
    - name: Charmander
`,
		},
		{
			name: "yaml documents",
			file: "pokedex.yml",
			contents: `name: Charmander
num: "004"
spawn_time: "16:00"
next_evolution:
  - name: Charmeleon
---
name: Charmeleon
num: "005"
avg_spawns: 4
prev_evolution:
  - name: Charmander
`,
		},
		{
			name: "json array",
			file: "pokedex.json",
			contents: `[
  {"name": "Charmander", "num": "004", "spawn_time": "16:00", "next_evolution": [{"name": "Charmeleon"}]},
  {"name": "Charmeleon", "num": "005", "avg_spawns": 4, "prev_evolution": [{"name": "Charmander"}]}
]`,
		},
		{
			name: "mongoexport lines",
			file: "pokedex.jsonl",
			contents: `{"_id": {"$oid": "58f56170ee9d4bd5e610d644"}, "name": "Charmander", "num": "004", "spawn_time": "16:00", "next_evolution": [{"name": "Charmeleon"}]}

{"_id": {"$oid": "58f56170ee9d4bd5e610d645"}, "name": "Charmeleon", "num": "005", "avg_spawns": {"$numberInt": "4"}, "prev_evolution": [{"name": "Charmander"}]}
`,
		},
		{
			name: "mongoexport default file name",
			file: "samples_pokemon.json",
			contents: `{"_id":{"$oid":"58f56170ee9d4bd5e610d644"},"name":"Charmander","num":"004","spawn_time":"16:00","next_evolution":[{"name":"Charmeleon"}]}
{"_id":{"$oid":"58f56170ee9d4bd5e610d645"},"name":"Charmeleon","num":"005","avg_spawns":4,"prev_evolution":[{"name":"Charmander"}]}
`,
		},
		{
			name: "pretty printed json documents",
			file: "pokedex.json",
			contents: `{
  "name": "Charmander", "num": "004", "spawn_time": "16:00",
  "next_evolution": [{"name": "Charmeleon"}]
}
---
{
  "name": "Charmeleon", "num": "005", "avg_spawns": 4,
  "prev_evolution": [{"name": "Charmander"}]
}
`,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			records, err := LoadRecords(writeFile(t, tc.file, tc.contents))
			require.NoError(t, err)
			require.Len(t, records, 2)

			assert.Equal(t, "Charmander", records[0].Name)
			assert.Equal(t, creature.Number("004"), records[0].Num)
			assert.Equal(t, "16:00", records[0].SpawnTime)
			assert.True(t, records[0].IsFirstStage())

			assert.Equal(t, "Charmeleon", records[1].Name)
			require.NotNil(t, records[1].AvgSpawns)
			assert.Equal(t, 4.0, *records[1].AvgSpawns)
			assert.True(t, records[1].IsTerminal())
		})
	}
}

func TestIsExtendedJSONLines(t *testing.T) {
	testCases := []struct {
		name     string
		data     string
		expected bool
	}{
		{name: "object per line", data: "{\"name\":\"Abra\"}\n{\"name\":\"Kadabra\"}\n", expected: true},
		{name: "crlf and blank lines", data: "{\"name\":\"Abra\"}\r\n\r\n{\"name\":\"Kadabra\"}\r\n", expected: true},
		{name: "single object", data: "{\"name\":\"Abra\"}\n", expected: false},
		{name: "indented object", data: "{\n  \"name\": \"Abra\"\n}\n", expected: false},
		{name: "json array", data: "[\n{\"name\":\"Abra\"},\n{\"name\":\"Kadabra\"}\n]\n", expected: false},
		{name: "yaml", data: "name: Abra\nnum: \"063\"\n", expected: false},
		{name: "empty", data: "", expected: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, isExtendedJSONLines([]byte(tc.data)))
		})
	}
}

func TestLoadRecords_Errors(t *testing.T) {
	_, err := LoadRecords(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadRecords(writeFile(t, "scalar.yaml", "just a string\n"))
	assert.Error(t, err)

	_, err = LoadRecords(writeFile(t, "broken.jsonl", "{\"name\": \n"))
	assert.Error(t, err)

	_, err = LoadRecords(writeFile(t, "broken.json", "{\"name\":\"Abra\"}\n{\"name\": \n"))
	assert.ErrorContains(t, err, "line 2")
}
