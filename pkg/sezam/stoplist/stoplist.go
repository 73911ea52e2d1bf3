package stoplist

import (
	"sort"
)

// Manager handles the stopword list fed to the normalizer
type Manager struct {
	stops map[string]Reason
}

// Reason explains why a token is a stopword
type Reason struct {
	Builtin   bool    // part of the initial list
	HighDF    bool    // high document frequency in the corpus
	DFPercent float64 // share of documents containing the token
}

// NewManager creates a new stoplist manager
func NewManager(initialStops []string) *Manager {
	stops := make(map[string]Reason, len(initialStops))
	for _, s := range initialStops {
		stops[s] = Reason{Builtin: true}
	}
	return &Manager{stops: stops}
}

// IsStop checks if a token is a stopword
func (m *Manager) IsStop(token string) bool {
	_, ok := m.stops[token]
	return ok
}

// Add adds a token to the stoplist with a reason
func (m *Manager) Add(token string, reason Reason) {
	m.stops[token] = reason
}

// Remove removes a token from the stoplist
func (m *Manager) Remove(token string) {
	delete(m.stops, token)
}

// All returns all stopwords, sorted
func (m *Manager) All() []string {
	result := make([]string, 0, len(m.stops))
	for s := range m.stops {
		result = append(result, s)
	}
	sort.Strings(result)
	return result
}

// Stats holds corpus statistics for one token
type Stats struct {
	Token     string
	DF        int64
	DFPercent float64
}

// Candidate represents a candidate stopword
type Candidate struct {
	Token  string
	Reason Reason
	Score  float64
}

// Thresholds defines criteria for stopword identification
type Thresholds struct {
	DFPercent float64 // e.g. 60: appears in 60% of documents
	MinDocs   int64   // corpora smaller than this yield no candidates
}

// DefaultThresholds returns the defaults used by the CLI.
func DefaultThresholds() Thresholds {
	return Thresholds{
		DFPercent: 60.0,
		MinDocs:   20,
	}
}

// DocumentFrequencies counts, for every token, the number of documents
// containing it. Each document is a list of normalized tokens.
func DocumentFrequencies(docs [][]string) []Stats {
	df := make(map[string]int64)
	for _, tokens := range docs {
		seen := make(map[string]struct{}, len(tokens))
		for _, tok := range tokens {
			if tok == "" {
				continue
			}
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	total := float64(len(docs))
	stats := make([]Stats, 0, len(df))
	for tok, n := range df {
		stats = append(stats, Stats{
			Token:     tok,
			DF:        n,
			DFPercent: 100 * float64(n) / total,
		})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].DF != stats[j].DF {
			return stats[i].DF > stats[j].DF
		}
		return stats[i].Token < stats[j].Token
	})
	return stats
}

// SuggestCandidates proposes corpus-specific stopwords: tokens found in
// more than th.DFPercent of the documents that are neither stopwords
// already nor protected (typically the trigger words of the topic table).
func (m *Manager) SuggestCandidates(stats []Stats, totalDocs int64, protected map[string]struct{}, th Thresholds) []Candidate {
	if th.DFPercent == 0 {
		th.DFPercent = DefaultThresholds().DFPercent
	}
	if totalDocs < th.MinDocs {
		return nil
	}

	var candidates []Candidate
	for _, s := range stats {
		if m.IsStop(s.Token) {
			continue
		}
		if _, ok := protected[s.Token]; ok {
			continue
		}
		if s.DFPercent <= th.DFPercent {
			continue
		}
		candidates = append(candidates, Candidate{
			Token:  s.Token,
			Reason: Reason{HighDF: true, DFPercent: s.DFPercent},
			Score:  s.DFPercent / 100.0,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	return candidates
}
