// Package filter selects classified documents the way the review dashboard
// does: one topic, optional trigger words, optional emetteurs and natures.
// The selection is an explicit value, validated against the facets before
// it is applied, so an invalid selection is reported as an error and never
// confused with an empty result.
package filter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/cognicore/sezam/pkg/sezam/internalerr"
	"github.com/cognicore/sezam/pkg/sezam/store"
	"github.com/cognicore/sezam/pkg/sezam/topics"
)

// DefaultLimit is the number of documents returned when Selection.Limit is 0.
const DefaultLimit = 10

// minSuggestSimilarity is the Levenshtein similarity below which no
// suggestion is offered for an unknown value.
const minSuggestSimilarity = 0.5

var (
	ErrUnknownTopic = fmt.Errorf("%w: unknown topic", internalerr.ErrInvalidInput)
	ErrUnknownWord  = fmt.Errorf("%w: word not in topic vocabulary", internalerr.ErrInvalidInput)
	ErrUnknownValue = fmt.Errorf("%w: unknown facet value", internalerr.ErrInvalidInput)
)

// SelectionError describes one invalid selection field.
type SelectionError struct {
	Field      string // "topic", "word", "emetteur" or "nature"
	Value      string
	Suggestion string // closest known value, may be empty
	kind       error
}

func (e *SelectionError) Error() string {
	msg := fmt.Sprintf("%v: %s %q", e.kind, e.Field, e.Value)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", e.Suggestion)
	}
	return msg
}

func (e *SelectionError) Unwrap() error { return e.kind }

// Facets are the values a selection may pick from.
type Facets struct {
	Topics    []string            // table order
	Words     map[string][]string // topic → its trigger words
	Emetteurs []string            // first-seen order
	Natures   []string            // first-seen order
}

// BuildFacets collects topics and vocabularies from table and the distinct
// emetteurs and natures of docs.
func BuildFacets(table *topics.Table, docs []store.Doc) Facets {
	f := Facets{Words: make(map[string][]string)}
	if table != nil {
		f.Topics = table.Topics()
		for _, t := range f.Topics {
			f.Words[t] = table.Words(t)
		}
	}

	seenE := make(map[string]struct{})
	seenN := make(map[string]struct{})
	for _, d := range docs {
		if _, ok := seenE[d.Emetteur]; !ok && d.Emetteur != "" {
			seenE[d.Emetteur] = struct{}{}
			f.Emetteurs = append(f.Emetteurs, d.Emetteur)
		}
		if _, ok := seenN[d.Nature]; !ok && d.Nature != "" {
			seenN[d.Nature] = struct{}{}
			f.Natures = append(f.Natures, d.Nature)
		}
	}
	return f
}

// Selection is one dashboard query. Empty Words, Emetteurs or Natures do
// not constrain the result.
type Selection struct {
	Topic     string
	Words     []string
	Emetteurs []string
	Natures   []string
	Limit     int
}

// Validate checks every selected value against f.
func (s Selection) Validate(f Facets) error {
	if strings.TrimSpace(s.Topic) == "" {
		return fmt.Errorf("%w: a topic must be selected", internalerr.ErrInvalidInput)
	}
	if s.Limit < 0 {
		return fmt.Errorf("%w: limit must be >= 0", internalerr.ErrInvalidInput)
	}

	var errs []error
	if !contains(f.Topics, s.Topic) {
		errs = append(errs, unknown("topic", s.Topic, f.Topics, ErrUnknownTopic))
	} else {
		for _, w := range s.Words {
			if !contains(f.Words[s.Topic], w) {
				errs = append(errs, unknown("word", w, f.Words[s.Topic], ErrUnknownWord))
			}
		}
	}
	for _, e := range s.Emetteurs {
		if !contains(f.Emetteurs, e) {
			errs = append(errs, unknown("emetteur", e, f.Emetteurs, ErrUnknownValue))
		}
	}
	for _, n := range s.Natures {
		if !contains(f.Natures, n) {
			errs = append(errs, unknown("nature", n, f.Natures, ErrUnknownValue))
		}
	}
	return errors.Join(errs...)
}

// Result is a filtered page of documents.
type Result struct {
	Total int         // documents matching the selection
	Docs  []store.Doc // at most Limit of them, in input order
}

// Apply validates sel against f and returns the documents of docs that
// carry the topic, every selected word, one of the selected emetteurs and
// one of the selected natures.
func Apply(docs []store.Doc, f Facets, sel Selection) (Result, error) {
	if err := sel.Validate(f); err != nil {
		return Result{}, err
	}

	limit := sel.Limit
	if limit == 0 {
		limit = DefaultLimit
	}

	var res Result
	for _, d := range docs {
		if !sel.matches(d) {
			continue
		}
		res.Total++
		if len(res.Docs) < limit {
			res.Docs = append(res.Docs, d)
		}
	}
	return res, nil
}

func (s Selection) matches(d store.Doc) bool {
	if !d.HasTopic(s.Topic) {
		return false
	}
	for _, w := range s.Words {
		if !contains(d.Words, w) {
			return false
		}
	}
	if len(s.Emetteurs) > 0 && !contains(s.Emetteurs, d.Emetteur) {
		return false
	}
	if len(s.Natures) > 0 && !contains(s.Natures, d.Nature) {
		return false
	}
	return true
}

func unknown(field, value string, known []string, kind error) error {
	return &SelectionError{
		Field:      field,
		Value:      value,
		Suggestion: closest(value, known),
		kind:       kind,
	}
}

// closest returns the known value most similar to v, or "" when none is
// similar enough.
func closest(v string, known []string) string {
	best, bestScore := "", float32(minSuggestSimilarity)
	lv := strings.ToLower(v)
	for _, k := range known {
		score, err := edlib.StringsSimilarity(lv, strings.ToLower(k), edlib.Levenshtein)
		if err != nil {
			continue
		}
		if score > bestScore {
			best, bestScore = k, score
		}
	}
	return best
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
