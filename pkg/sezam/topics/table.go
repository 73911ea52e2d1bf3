package topics

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/cognicore/sezam/pkg/sezam/internalerr"
)

// Row is one line of the topic table: a topic and the trigger words that
// signal it. Words are expected to be normalized like the documents.
type Row struct {
	Topic string
	Words []string
}

// Table is an immutable, ordered topic → trigger words table with a
// word → rows inverted index. It is safe for concurrent reads.
type Table struct {
	rows  []Row
	index map[string][]int // word → ascending row indices
}

// NewTable builds a table from two aligned columns: topicIDs[i] owns words[i].
// Duplicate topic ids are kept as distinct rows.
func NewTable(topicIDs []string, words [][]string) (*Table, error) {
	if len(topicIDs) != len(words) {
		return nil, fmt.Errorf("%w: %d topics for %d word lists",
			internalerr.ErrMalformedTable, len(topicIDs), len(words))
	}
	rows := make([]Row, len(topicIDs))
	for i := range topicIDs {
		rows[i] = Row{Topic: topicIDs[i], Words: words[i]}
	}
	return FromRows(rows)
}

// FromRows builds a table from rows, validating each one.
func FromRows(rows []Row) (*Table, error) {
	t := &Table{
		rows:  make([]Row, 0, len(rows)),
		index: make(map[string][]int),
	}

	for i, r := range rows {
		if strings.TrimSpace(r.Topic) == "" {
			return nil, fmt.Errorf("%w: row %d: topic id is required", internalerr.ErrMalformedTable, i)
		}

		seen := make(map[string]struct{}, len(r.Words))
		words := make([]string, 0, len(r.Words))
		for _, w := range r.Words {
			if err := validateWord(w); err != nil {
				return nil, fmt.Errorf("%w: row %d (%s): %v", internalerr.ErrMalformedTable, i, r.Topic, err)
			}
			if _, dup := seen[w]; dup {
				continue
			}
			seen[w] = struct{}{}
			words = append(words, w)
			t.index[w] = append(t.index[w], i)
		}

		t.rows = append(t.rows, Row{Topic: r.Topic, Words: words})
	}

	return t, nil
}

// A trigger word must be a single non-empty token, otherwise it can never
// equal a whitespace-delimited token of a document.
func validateWord(w string) error {
	if w == "" {
		return fmt.Errorf("empty trigger word")
	}
	if strings.IndexFunc(w, unicode.IsSpace) >= 0 {
		return fmt.Errorf("trigger word %q contains whitespace", w)
	}
	return nil
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Rows returns a copy of the table rows in order.
func (t *Table) Rows() []Row {
	out := make([]Row, len(t.rows))
	for i, r := range t.rows {
		out[i] = Row{Topic: r.Topic, Words: append([]string(nil), r.Words...)}
	}
	return out
}

// Topics returns distinct topic ids in first-seen order.
func (t *Table) Topics() []string {
	seen := make(map[string]struct{}, len(t.rows))
	var out []string
	for _, r := range t.rows {
		if _, ok := seen[r.Topic]; ok {
			continue
		}
		seen[r.Topic] = struct{}{}
		out = append(out, r.Topic)
	}
	return out
}

// Words returns the trigger words of every row carrying the given topic.
func (t *Table) Words(topic string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range t.rows {
		if r.Topic != topic {
			continue
		}
		for _, w := range r.Words {
			if _, ok := seen[w]; ok {
				continue
			}
			seen[w] = struct{}{}
			out = append(out, w)
		}
	}
	return out
}

// rowsFor returns the rows that contain word, ascending.
func (t *Table) rowsFor(word string) []int {
	return t.index[word]
}
