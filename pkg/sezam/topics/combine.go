package topics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cognicore/sezam/pkg/sezam/internalerr"
)

// Combine merges the results of several fields of the same records, row
// by row. Each row keeps every distinct word and topic exactly once; the
// order of the merged lists carries no meaning (they are sorted).
// Failures of every column are kept, ordered by row index.
func Combine(cols ...ColumnResult) (ColumnResult, error) {
	if len(cols) == 0 {
		return ColumnResult{}, nil
	}

	n := cols[0].Len()
	names := make([]string, 0, len(cols))
	for _, c := range cols {
		if c.Len() != n {
			return ColumnResult{}, fmt.Errorf("%w: cannot combine %q (%d rows) with %q (%d rows)",
				internalerr.ErrInvalidInput, cols[0].Name, n, c.Name, c.Len())
		}
		if c.Name != "" {
			names = append(names, c.Name)
		}
	}

	out := ColumnResult{
		Name:   strings.Join(names, "+"),
		Words:  make([][]string, n),
		Topics: make([][]string, n),
	}
	for k := 0; k < n; k++ {
		var words, topics [][]string
		for _, c := range cols {
			words = append(words, c.Words[k])
			topics = append(topics, c.Topics[k])
		}
		out.Words[k] = distinct(words...)
		out.Topics[k] = distinct(topics...)
	}

	for _, c := range cols {
		out.Failures = append(out.Failures, c.Failures...)
	}
	sort.SliceStable(out.Failures, func(i, j int) bool {
		return out.Failures[i].Index < out.Failures[j].Index
	})

	return out, nil
}

func distinct(lists ...[]string) []string {
	set := make(map[string]struct{})
	for _, l := range lists {
		for _, v := range l {
			set[v] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
