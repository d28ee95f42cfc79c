package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/kr/pretty"
	"github.com/liip/sheriff"
	"github.com/travigo/pokedex/pkg/creature"
)

type Format string

const (
	FormatPretty Format = "pretty"
	FormatJSON   Format = "json"
	FormatCSV    Format = "csv"
)

func ParseFormat(value string) (Format, error) {
	switch format := Format(strings.ToLower(value)); format {
	case FormatPretty, FormatJSON, FormatCSV:
		return format, nil
	default:
		return "", fmt.Errorf("unknown output format %q, expected pretty, json or csv", value)
	}
}

// Field groups used to reduce views before printing
const (
	GroupBasic    = "basic"
	GroupDetailed = "detailed"
)

// Writer prints query results to Out
type Writer struct {
	Out    io.Writer
	Format Format
}

func NewWriter(out io.Writer, format Format) *Writer {
	return &Writer{
		Out:    out,
		Format: format,
	}
}

func (w *Writer) Evolutions(title string, views []creature.EvolutionView) error {
	var rows []csvRow
	for _, view := range views {
		for _, evolution := range view.NextEvolutions {
			rows = append(rows, newCSVRow(view.Name, "", evolution))
		}
	}

	return w.write(title, views, GroupDetailed, rows)
}

// FirstStage prints first stage views. The basic group drops next_evolutions.
func (w *Writer) FirstStage(title string, views []creature.FirstStageView, group string) error {
	var rows []csvRow
	for _, view := range views {
		if group == GroupBasic || len(view.NextEvolutions) == 0 {
			rows = append(rows, csvRow{Name: view.Name, Num: view.Num.String()})
			continue
		}

		for _, evolution := range view.NextEvolutions {
			rows = append(rows, newCSVRow(view.Name, view.Num.String(), evolution))
		}
	}

	return w.write(title, views, group, rows)
}

func (w *Writer) write(title string, views interface{}, group string, rows []csvRow) error {
	switch w.Format {
	case FormatCSV:
		if _, err := fmt.Fprintf(w.Out, "# %s\n", title); err != nil {
			return err
		}
		if rows == nil {
			rows = []csvRow{}
		}
		return gocsv.Marshal(rows, w.Out)
	case FormatJSON:
		reduced, err := reduce(views, group)
		if err != nil {
			return err
		}

		encoder := json.NewEncoder(w.Out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(map[string]interface{}{
			"query":   title,
			"results": reduced,
		})
	default:
		reduced, err := reduce(views, group)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintf(w.Out, "%s\n%# v\n", title, pretty.Formatter(reduced))
		return err
	}
}

// reduce applies the sheriff field group and normalises the output into plain
// maps and slices so every format prints the same fields.
func reduce(views interface{}, group string) (interface{}, error) {
	reduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{group},
	}, views)
	if err != nil {
		return nil, fmt.Errorf("reducing results to %s group: %w", group, err)
	}

	encoded, err := json.Marshal(reduced)
	if err != nil {
		return nil, err
	}

	var plain []interface{}
	if err := json.Unmarshal(encoded, &plain); err != nil {
		return nil, err
	}
	if plain == nil {
		plain = []interface{}{}
	}

	return plain, nil
}

type csvRow struct {
	Name               string `csv:"name"`
	Num                string `csv:"num"`
	EvolutionName      string `csv:"evolution_name"`
	EvolutionNum       string `csv:"evolution_num"`
	EvolutionSpawnTime string `csv:"evolution_spawn_time"`
	EvolutionAvgSpawns string `csv:"evolution_avg_spawns"`
}

func newCSVRow(name string, num string, evolution creature.ResolvedEvolution) csvRow {
	row := csvRow{
		Name:               name,
		Num:                num,
		EvolutionName:      evolution.Name,
		EvolutionNum:       evolution.Num.String(),
		EvolutionSpawnTime: evolution.SpawnTime,
	}

	if evolution.AvgSpawns != nil {
		row.EvolutionAvgSpawns = strconv.FormatFloat(*evolution.AvgSpawns, 'f', -1, 64)
	}

	return row
}
