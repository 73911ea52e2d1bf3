package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cognicore/sezam/pkg/sezam/store"
)

// Store is an in-memory implementation of store.Store for tests and dry runs.
type Store struct {
	mu     sync.RWMutex
	docs   map[string]store.Doc
	runs   map[string]store.Run
	topics []store.TopicRow
	kinds  []string
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		docs: make(map[string]store.Doc),
		runs: make(map[string]store.Run),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// UpsertDoc inserts or replaces a document, keyed by ID.
func (s *Store) UpsertDoc(ctx context.Context, d store.Doc) error {
	if d.ID == "" {
		return fmt.Errorf("doc id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs[d.ID] = copyDoc(d)
	return nil
}

// GetDoc returns a document by ID.
func (s *Store) GetDoc(ctx context.Context, id string) (store.Doc, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[id]
	if !ok {
		return store.Doc{}, false, nil
	}
	return copyDoc(doc), true, nil
}

// ListDocs returns every document ordered by ID.
func (s *Store) ListDocs(ctx context.Context) ([]store.Doc, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.Doc, 0, len(s.docs))
	for _, d := range s.docs {
		out = append(out, copyDoc(d))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// DocsByTopic returns documents carrying topic, most recent first.
func (s *Store) DocsByTopic(ctx context.Context, topic string, limit int) ([]store.Doc, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []store.Doc
	for _, d := range s.docs {
		if d.HasTopic(topic) {
			out = append(out, copyDoc(d))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// UpsertRun stores a run summary.
func (s *Store) UpsertRun(ctx context.Context, r store.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[r.ID] = r
	return nil
}

// GetRun returns a run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (store.Run, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.runs[id]
	return r, ok, nil
}

// SaveTopicTable replaces the stored topic table.
func (s *Store) SaveTopicTable(ctx context.Context, rows []store.TopicRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.topics = make([]store.TopicRow, len(rows))
	for i, r := range rows {
		s.topics[i] = store.TopicRow{Topic: r.Topic, Words: append([]string(nil), r.Words...)}
	}
	return nil
}

// TopicTable returns the stored topic table.
func (s *Store) TopicTable(ctx context.Context) ([]store.TopicRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.TopicRow, len(s.topics))
	for i, r := range s.topics {
		out[i] = store.TopicRow{Topic: r.Topic, Words: append([]string(nil), r.Words...)}
	}
	return out, nil
}

// SaveLawKinds replaces the stored law kinds.
func (s *Store) SaveLawKinds(ctx context.Context, kinds []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kinds = sortedCopy(kinds)
	return nil
}

// LawKinds returns the stored law kinds, sorted.
func (s *Store) LawKinds(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.kinds...), nil
}

func copyDoc(d store.Doc) store.Doc {
	d.Words = sortedCopy(d.Words)
	d.Topics = sortedCopy(d.Topics)
	return d
}

// sortedCopy returns the distinct non-empty values of in, sorted.
func sortedCopy(in []string) []string {
	set := make(map[string]struct{}, len(in))
	var out []string
	for _, v := range in {
		if v == "" {
			continue
		}
		if _, ok := set[v]; ok {
			continue
		}
		set[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
