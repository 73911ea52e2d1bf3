package normalize

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// LawToken replaces a law reference such as "Arrêté du 4 octobre 2021 ".
const LawToken = "<LOI> "

// lawKindPattern captures the leading word of titles shaped like
// "<kind> ... <year> ...".
var lawKindPattern = regexp.MustCompile(`^([\p{L}\p{N}_]+).*\s\d{4}\s`)

// LearnLawKinds returns the distinct, lowercased leading words of titles
// that look like law references ("arrêté", "décret", "loi" ...).
func LearnLawKinds(titles []string) []string {
	set := make(map[string]struct{})
	for _, title := range titles {
		m := lawKindPattern.FindStringSubmatch(title)
		if m == nil {
			continue
		}
		set[strings.ToLower(m[1])] = struct{}{}
	}
	kinds := make([]string, 0, len(set))
	for k := range set {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// MergeLawKinds returns the distinct, lowercased, non-blank kinds of every
// list, sorted.
func MergeLawKinds(lists ...[]string) []string {
	set := make(map[string]struct{})
	for _, l := range lists {
		for _, k := range l {
			k = strings.ToLower(strings.TrimSpace(k))
			if k != "" {
				set[k] = struct{}{}
			}
		}
	}
	kinds := make([]string, 0, len(set))
	for k := range set {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// LawMasker replaces "<kind> ... <year> " spans with LawToken. A kind only
// matches as a whole word, so "loi" never fires inside "emploi" or "loisirs".
type LawMasker struct {
	kinds    []string
	patterns []*regexp.Regexp
}

// NewLawMasker compiles one case-insensitive pattern per law kind. RE2's \b
// is ASCII-only, hence the explicit non-letter guards around the kind.
func NewLawMasker(kinds []string) (*LawMasker, error) {
	m := &LawMasker{}
	for _, kind := range kinds {
		kind = strings.TrimSpace(kind)
		if kind == "" {
			continue
		}
		re, err := regexp.Compile(`(?i)(^|[^\p{L}])` + regexp.QuoteMeta(kind) + `(?:[^\p{L}].*?)?\s\d{4}\s`)
		if err != nil {
			return nil, fmt.Errorf("compile law kind %q: %w", kind, err)
		}
		m.kinds = append(m.kinds, kind)
		m.patterns = append(m.patterns, re)
	}
	return m, nil
}

// Kinds returns the law kinds the masker was built with.
func (m *LawMasker) Kinds() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.kinds...)
}

// Mask applies every kind pattern in turn. A nil masker returns s.
func (m *LawMasker) Mask(s string) string {
	if m == nil {
		return s
	}
	for _, re := range m.patterns {
		s = re.ReplaceAllString(s, "${1}"+LawToken)
	}
	return s
}
