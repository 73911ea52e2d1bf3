package topics

import (
	"fmt"
	"runtime"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/cognicore/sezam/pkg/sezam/internalerr"
)

// DefaultShardSize is the number of documents one worker matches before
// picking up the next shard.
const DefaultShardSize = 256

// Matcher finds trigger words and their topics in normalized documents.
type Matcher struct {
	table     *Table
	workers   int
	shardSize int
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithWorkers bounds the number of goroutines used by MatchColumn.
// Values below 1 fall back to GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(m *Matcher) {
		if n > 0 {
			m.workers = n
		}
	}
}

// WithShardSize sets how many documents a single MatchColumn task handles.
func WithShardSize(n int) Option {
	return func(m *Matcher) {
		if n > 0 {
			m.shardSize = n
		}
	}
}

// NewMatcher creates a matcher over the given table. A nil table behaves
// like an empty one.
func NewMatcher(table *Table, opts ...Option) *Matcher {
	if table == nil {
		table = &Table{index: map[string][]int{}}
	}
	m := &Matcher{
		table:     table,
		workers:   runtime.GOMAXPROCS(0),
		shardSize: DefaultShardSize,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Table returns the table the matcher reads from.
func (m *Matcher) Table() *Table {
	return m.table
}

// Result is the outcome of matching one document.
type Result struct {
	// Words holds every distinct trigger word found, sorted.
	Words []string `json:"words"`
	// Topics holds one entry per table row with at least one hit, in row
	// order. A topic listed on several matching rows appears several times.
	Topics []string `json:"topics"`
}

// Empty reports whether nothing matched.
func (r Result) Empty() bool {
	return len(r.Words) == 0 && len(r.Topics) == 0
}

// HasWord reports whether w was matched.
func (r Result) HasWord(w string) bool {
	return contains(r.Words, w)
}

// HasTopic reports whether topic was matched.
func (r Result) HasTopic(topic string) bool {
	return contains(r.Topics, topic)
}

// Match returns the trigger words and topics present in doc. Tokens are
// produced by splitting on whitespace and compared by exact equality.
func (m *Matcher) Match(doc string) (Result, error) {
	if !utf8.ValidString(doc) {
		return Result{Words: []string{}, Topics: []string{}},
			fmt.Errorf("%w: text is not valid UTF-8", internalerr.ErrInvalidDocument)
	}
	return m.match(doc), nil
}

func (m *Matcher) match(doc string) Result {
	words := []string{}
	var hitRows []int
	var seen map[string]struct{}

	for _, tok := range strings.Fields(doc) {
		rows := m.table.rowsFor(tok)
		if len(rows) == 0 {
			continue
		}
		if seen == nil {
			seen = make(map[string]struct{})
		}
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		words = append(words, tok)
		hitRows = append(hitRows, rows...)
	}

	sort.Ints(hitRows)
	topics := make([]string, 0, len(hitRows))
	last := -1
	for _, row := range hitRows {
		if row == last {
			continue
		}
		last = row
		topics = append(topics, m.table.rows[row].Topic)
	}

	sort.Strings(words)
	return Result{Words: words, Topics: topics}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
