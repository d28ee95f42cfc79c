package evolution

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/travigo/pokedex/pkg/creature"
	"go.mongodb.org/mongo-driver/bson"
	"gopkg.in/yaml.v3"
)

// LoadRecords reads creature records from a local file. Files ending in
// .jsonl or .ndjson, and any file laid out as one JSON object per line, are
// treated as mongoexport output. Anything else is decoded as a YAML stream
// (which covers plain JSON); each document is either a single record or a
// list of records.
func LoadRecords(path string) ([]creature.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var records []creature.Record

	switch ext := filepath.Ext(path); {
	case ext == ".jsonl", ext == ".ndjson", isExtendedJSONLines(data):
		records, err = decodeExtendedJSONLines(bytes.NewReader(data))
	default:
		records, err = decodeYAMLStream(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("load records from %s: %w", path, err)
	}

	log.Debug().Str("path", path).Int("records", len(records)).Msg("Loaded records file")

	return records, nil
}

// isExtendedJSONLines reports whether data holds more than one line starting
// with an object, which is how mongoexport lays out its default output. A
// pretty printed JSON document only opens an object at column 0 once.
func isExtendedJSONLines(data []byte) bool {
	objects := 0
	for _, line := range bytes.Split(data, []byte("\n")) {
		line = bytes.TrimRight(line, " \t\r")
		if len(line) == 0 {
			continue
		}
		if line[0] != '{' {
			return false
		}
		objects++
	}

	return objects > 1
}

func decodeYAMLStream(reader io.Reader) ([]creature.Record, error) {
	var records []creature.Record

	decoder := yaml.NewDecoder(reader)
	for {
		var document yaml.Node
		err := decoder.Decode(&document)
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return nil, err
		}

		if len(document.Content) == 0 {
			continue
		}

		switch document.Content[0].Kind {
		case yaml.SequenceNode:
			var list []creature.Record
			if err := document.Decode(&list); err != nil {
				return nil, err
			}
			records = append(records, list...)
		case yaml.MappingNode:
			var record creature.Record
			if err := document.Decode(&record); err != nil {
				return nil, err
			}
			records = append(records, record)
		default:
			return nil, fmt.Errorf("line %d: expected a record or a list of records", document.Content[0].Line)
		}
	}

	return records, nil
}

func decodeExtendedJSONLines(reader io.Reader) ([]creature.Record, error) {
	var records []creature.Record

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	line := 0
	for scanner.Scan() {
		line++

		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}

		var record creature.Record
		if err := bson.UnmarshalExtJSON(text, false, &record); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, record)
	}

	return records, scanner.Err()
}
