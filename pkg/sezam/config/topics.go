package config

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/cognicore/sezam/pkg/sezam/internalerr"
	"github.com/cognicore/sezam/pkg/sezam/topics"
)

// LoadTopicRows reads a topic table. The format follows the extension:
//
//	.yaml/.yml  mapping topic → words (file order kept), or a list of
//	            {topic, words} rows
//	.toml       [[topic]] tables with name and words
//	.csv        wide sheet: one column per topic, one keyword per cell
//
// Words are returned as written; the Loader normalizes them.
func LoadTopicRows(path string) ([]topics.Row, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var rows []topics.Row
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		rows, err = parseYAMLTopics(data)
	case ".toml":
		rows, err = parseTOMLTopics(data)
	case ".csv":
		rows, err = parseWideCSV(data)
	default:
		return nil, fmt.Errorf("%w: %s: unsupported topic table format %q", internalerr.ErrInvalidConfig, path, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", internalerr.ErrMalformedTable, path, err)
	}
	return rows, nil
}

func parseYAMLTopics(data []byte) ([]topics.Row, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	switch root.Kind {
	case yaml.MappingNode:
		rows := make([]topics.Row, 0, len(root.Content)/2)
		for i := 0; i+1 < len(root.Content); i += 2 {
			key, val := root.Content[i], root.Content[i+1]
			var words []string
			switch val.Kind {
			case yaml.SequenceNode:
				if err := val.Decode(&words); err != nil {
					return nil, fmt.Errorf("line %d: %v", val.Line, err)
				}
			case yaml.ScalarNode:
				if val.Value != "" {
					words = []string{val.Value}
				}
			default:
				return nil, fmt.Errorf("line %d: words of %q must be a list", val.Line, key.Value)
			}
			rows = append(rows, topics.Row{Topic: key.Value, Words: words})
		}
		return rows, nil

	case yaml.SequenceNode:
		var list []struct {
			Topic string   `yaml:"topic"`
			Words []string `yaml:"words"`
		}
		if err := root.Decode(&list); err != nil {
			return nil, err
		}
		rows := make([]topics.Row, len(list))
		for i, r := range list {
			rows[i] = topics.Row{Topic: r.Topic, Words: r.Words}
		}
		return rows, nil

	default:
		return nil, fmt.Errorf("line %d: expected a mapping or a list", root.Line)
	}
}

type tomlTopics struct {
	Topic []struct {
		Name  string   `toml:"name"`
		Words []string `toml:"words"`
	} `toml:"topic"`
}

func parseTOMLTopics(data []byte) ([]topics.Row, error) {
	var t tomlTopics
	if err := toml.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	rows := make([]topics.Row, len(t.Topic))
	for i, tt := range t.Topic {
		rows[i] = topics.Row{Topic: tt.Name, Words: tt.Words}
	}
	return rows, nil
}

// parseWideCSV reshapes a spreadsheet whose header holds topic names and
// whose cells hold keywords into one row per topic. Topics come out sorted,
// words keep sheet order (row by row), and repeated headers are merged.
func parseWideCSV(data []byte) ([]topics.Row, error) {
	data = bytes.TrimPrefix(data, []byte("\ufeff"))
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(h)
	}

	byTopic := make(map[string][]string)
	for line, rec := range records[1:] {
		for col, cell := range rec {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			if col >= len(header) || header[col] == "" {
				return nil, fmt.Errorf("line %d: keyword %q under an unnamed column", line+2, cell)
			}
			byTopic[header[col]] = append(byTopic[header[col]], cell)
		}
	}

	names := make([]string, 0, len(byTopic))
	for name := range byTopic {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([]topics.Row, len(names))
	for i, name := range names {
		rows[i] = topics.Row{Topic: name, Words: byTopic[name]}
	}
	return rows, nil
}
