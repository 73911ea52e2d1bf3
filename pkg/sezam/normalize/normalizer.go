package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Options configures a Normalizer.
type Options struct {
	// Stopwords are dropped as whole tokens. They go through the same case
	// and accent folding as the text.
	Stopwords []string
	// FoldAccents strips diacritics ("santé" → "sante").
	FoldAccents bool
	// KeepDigits disables digit stripping.
	KeepDigits bool
	// LawMasker, when set, replaces law references in raw titles before
	// any other step. Bodies and trigger words are never masked.
	LawMasker *LawMasker
}

// Normalizer turns raw titles and bodies into space-separated tokens ready
// for topic matching. Trigger words must go through the same Normalizer.
type Normalizer struct {
	stops      map[string]struct{}
	fold       bool
	keepDigits bool
	masker     *LawMasker
	structures *structureReplacer
}

// New creates a normalizer with the given options.
func New(opts Options) *Normalizer {
	n := &Normalizer{
		fold:       opts.FoldAccents,
		keepDigits: opts.KeepDigits,
		masker:     opts.LawMasker,
		structures: newStructureReplacer(specialStructures),
		stops:      make(map[string]struct{}, len(opts.Stopwords)),
	}
	for _, w := range opts.Stopwords {
		w = strings.ToLower(strings.TrimSpace(w))
		if n.fold {
			w = foldAccents(w)
		}
		if w != "" {
			n.stops[w] = struct{}{}
		}
	}
	return n
}

// Normalize applies, in order: lowercasing, accent folding, special
// structure removal, stopword removal, digit stripping and whitespace
// collapsing. It is used for bodies and trigger words.
func (n *Normalizer) Normalize(s string) string {
	s = strings.ToLower(s)
	if n.fold {
		s = foldAccents(s)
	}
	s = n.structures.Replace(s, " ")
	s = n.removeStopwords(s)
	if !n.keepDigits {
		s = stripDigits(s)
	}
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeTitle masks law references, then applies Normalize.
func (n *Normalizer) NormalizeTitle(s string) string {
	return n.Normalize(n.masker.Mask(s))
}

// LawKinds returns the kinds masked in titles, nil when masking is off.
func (n *Normalizer) LawKinds() []string {
	return n.masker.Kinds()
}

// NormalizeAll normalizes every value.
func (n *Normalizer) NormalizeAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = n.Normalize(v)
	}
	return out
}

// IsStopword reports whether the (already normalized) token is a stopword.
func (n *Normalizer) IsStopword(token string) bool {
	_, ok := n.stops[token]
	return ok
}

func (n *Normalizer) removeStopwords(s string) string {
	if len(n.stops) == 0 {
		return s
	}
	fields := strings.Fields(s)
	kept := fields[:0]
	for _, f := range fields {
		if n.IsStopword(f) {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}

func stripDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return -1
		}
		return r
	}, s)
}

// foldAccents decomposes the text and drops combining marks. A fresh
// transformer is built per call since chains carry state.
func foldAccents(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
