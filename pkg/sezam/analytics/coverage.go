package analytics

import (
	"sort"

	"github.com/cognicore/sezam/pkg/sezam/store"
)

// Analyzer aggregates per-document topic and trigger word hits.
type Analyzer struct {
	totalDocs int64
	unmatched int64
	topicDocs map[string]int64
	wordDocs  map[string]int64
}

// NewAnalyzer creates an empty analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		topicDocs: make(map[string]int64),
		wordDocs:  make(map[string]int64),
	}
}

// Process consumes one document's matched words and topics. Repeated
// values count once per document.
func (a *Analyzer) Process(words, topics []string) {
	a.totalDocs++
	if len(topics) == 0 {
		a.unmatched++
	}
	countDistinct(a.topicDocs, topics)
	countDistinct(a.wordDocs, words)
}

func countDistinct(into map[string]int64, values []string) {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		into[v]++
	}
}

// Count is the number of documents carrying one topic or word.
type Count struct {
	Name    string  `json:"name"`
	Docs    int64   `json:"docs"`
	Percent float64 `json:"percent"`
}

// Report is a coverage summary, counts sorted by Docs desc then Name.
type Report struct {
	TotalDocs int64   `json:"total_docs"`
	Unmatched int64   `json:"unmatched"`
	Topics    []Count `json:"topics"`
	Words     []Count `json:"words"`
}

// Snapshot returns the accumulated coverage.
func (a *Analyzer) Snapshot() Report {
	return Report{
		TotalDocs: a.totalDocs,
		Unmatched: a.unmatched,
		Topics:    sortedCounts(a.topicDocs, a.totalDocs),
		Words:     sortedCounts(a.wordDocs, a.totalDocs),
	}
}

func sortedCounts(m map[string]int64, total int64) []Count {
	out := make([]Count, 0, len(m))
	for name, n := range m {
		c := Count{Name: name, Docs: n}
		if total > 0 {
			c.Percent = 100 * float64(n) / float64(total)
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Docs != out[j].Docs {
			return out[i].Docs > out[j].Docs
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Coverage summarizes stored documents.
func Coverage(docs []store.Doc) Report {
	a := NewAnalyzer()
	for _, d := range docs {
		a.Process(d.Words, d.Topics)
	}
	return a.Snapshot()
}
