package normalize

import (
	"strings"

	aho "github.com/petar-dambovaliev/aho-corasick"
)

// specialStructures are separators and noise markers of French legal
// titles, replaced by a space before tokenization.
var specialStructures = []string{
	"'", "’", "-", "(", ")", "1er ", ",", "«", "»", "n°",
}

// structureReplacer replaces every occurrence of a fixed pattern set in a
// single pass over the text.
type structureReplacer struct {
	automaton aho.AhoCorasick
	patterns  []string
}

func newStructureReplacer(patterns []string) *structureReplacer {
	p := make([]string, len(patterns))
	copy(p, patterns)
	builder := aho.NewAhoCorasickBuilder(aho.Opts{
		MatchKind: aho.LeftMostLongestMatch,
		DFA:       true,
	})
	return &structureReplacer{
		automaton: builder.Build(p),
		patterns:  p,
	}
}

// Replace substitutes with for every non-overlapping pattern match.
func (r *structureReplacer) Replace(s, with string) string {
	if len(r.patterns) == 0 || s == "" {
		return s
	}
	matches := r.automaton.FindAll(s)
	if len(matches) == 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	last := 0
	for _, m := range matches {
		b.WriteString(s[last:m.Start()])
		b.WriteString(with)
		last = m.End()
	}
	b.WriteString(s[last:])
	return b.String()
}
