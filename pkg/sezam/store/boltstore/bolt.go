// Package boltstore implements store.Store on bbolt (embedded B+ tree).
// Documents and runs are JSON values keyed by id; the "topics" bucket holds
// one sub-bucket per topic listing the ids of the documents carrying it.
package boltstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/cognicore/sezam/pkg/sezam/store"
)

// Bucket keys
var (
	bucketDocs   = []byte("docs")
	bucketTopics = []byte("topics")
	bucketRuns   = []byte("runs")
	bucketTable  = []byte("topic_table")
	keyRows      = []byte("rows")
	keyLawKinds  = []byte("law_kinds")
)

// Store implements store.Store backed by bbolt.
type Store struct {
	db *bolt.DB
}

// Open opens (or creates) a bbolt database at the given path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketDocs, bucketTopics, bucketRuns, bucketTable} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("bbolt init: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

// docJSON is the stored form of store.Doc.
type docJSON struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Text        string   `json:"text"`
	Emetteur    string   `json:"emetteur"`
	Nature      string   `json:"nature"`
	Date        string   `json:"date"`
	Fingerprint uint64   `json:"fingerprint"`
	Words       []string `json:"words,omitempty"`
	Topics      []string `json:"topics,omitempty"`
	RunID       string   `json:"run_id"`
}

func toJSON(d store.Doc) docJSON {
	return docJSON{
		ID: d.ID, Title: d.Title, Text: d.Text, Emetteur: d.Emetteur, Nature: d.Nature,
		Date: d.Date, Fingerprint: d.Fingerprint, Words: uniqueSorted(d.Words),
		Topics: uniqueSorted(d.Topics), RunID: d.RunID,
	}
}

func (j docJSON) doc() store.Doc {
	return store.Doc{
		ID: j.ID, Title: j.Title, Text: j.Text, Emetteur: j.Emetteur, Nature: j.Nature,
		Date: j.Date, Fingerprint: j.Fingerprint, Words: j.Words, Topics: j.Topics, RunID: j.RunID,
	}
}

// UpsertDoc stores a document and moves it between topic index buckets.
func (s *Store) UpsertDoc(ctx context.Context, d store.Doc) error {
	if d.ID == "" {
		return fmt.Errorf("doc id is required")
	}
	stored := toJSON(d)
	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("marshal doc: %w", err)
	}
	id := []byte(d.ID)

	return s.db.Update(func(tx *bolt.Tx) error {
		docs := tx.Bucket(bucketDocs)
		idx := tx.Bucket(bucketTopics)

		if prev := docs.Get(id); prev != nil {
			var old docJSON
			if err := json.Unmarshal(prev, &old); err != nil {
				return fmt.Errorf("unmarshal doc %s: %w", d.ID, err)
			}
			for _, topic := range old.Topics {
				if tb := idx.Bucket([]byte(topic)); tb != nil {
					if err := tb.Delete(id); err != nil {
						return err
					}
				}
			}
		}

		for _, topic := range stored.Topics {
			tb, err := idx.CreateBucketIfNotExists([]byte(topic))
			if err != nil {
				return err
			}
			if err := tb.Put(id, []byte(stored.Date)); err != nil {
				return err
			}
		}
		return docs.Put(id, data)
	})
}

// GetDoc returns a document by ID.
func (s *Store) GetDoc(ctx context.Context, id string) (store.Doc, bool, error) {
	var (
		doc   store.Doc
		found bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketDocs).Get([]byte(id))
		if v == nil {
			return nil
		}
		var j docJSON
		if err := json.Unmarshal(v, &j); err != nil {
			return fmt.Errorf("unmarshal doc %s: %w", id, err)
		}
		doc, found = j.doc(), true
		return nil
	})
	return doc, found, err
}

// ListDocs returns every document ordered by ID (bbolt keys are sorted).
func (s *Store) ListDocs(ctx context.Context) ([]store.Doc, error) {
	var out []store.Doc
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketDocs).ForEach(func(k, v []byte) error {
			var j docJSON
			if err := json.Unmarshal(v, &j); err != nil {
				return fmt.Errorf("unmarshal doc %s: %w", k, err)
			}
			out = append(out, j.doc())
			return nil
		})
	})
	return out, err
}

// DocsByTopic returns documents carrying topic, most recent first.
func (s *Store) DocsByTopic(ctx context.Context, topic string, limit int) ([]store.Doc, error) {
	var out []store.Doc
	err := s.db.View(func(tx *bolt.Tx) error {
		tb := tx.Bucket(bucketTopics).Bucket([]byte(topic))
		if tb == nil {
			return nil
		}
		docs := tx.Bucket(bucketDocs)
		return tb.ForEach(func(k, _ []byte) error {
			v := docs.Get(k)
			if v == nil {
				return nil
			}
			var j docJSON
			if err := json.Unmarshal(v, &j); err != nil {
				return fmt.Errorf("unmarshal doc %s: %w", k, err)
			}
			out = append(out, j.doc())
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date > out[j].Date
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type runJSON struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	Docs       int       `json:"docs"`
	Matched    int       `json:"matched"`
	Failed     int       `json:"failed"`
	Duplicates int       `json:"duplicates"`
}

// UpsertRun stores a run summary.
func (s *Store) UpsertRun(ctx context.Context, r store.Run) error {
	data, err := json.Marshal(runJSON(r))
	if err != nil {
		return fmt.Errorf("marshal run: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketRuns).Put([]byte(r.ID), data)
	})
}

// GetRun returns a run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (store.Run, bool, error) {
	var (
		run   store.Run
		found bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketRuns).Get([]byte(id))
		if v == nil {
			return nil
		}
		var j runJSON
		if err := json.Unmarshal(v, &j); err != nil {
			return fmt.Errorf("unmarshal run %s: %w", id, err)
		}
		run, found = store.Run(j), true
		return nil
	})
	return run, found, err
}

// SaveTopicTable replaces the stored topic table.
func (s *Store) SaveTopicTable(ctx context.Context, rows []store.TopicRow) error {
	data, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("marshal topic table: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketTable).Put(keyRows, data)
	})
}

// TopicTable returns the stored topic table.
func (s *Store) TopicTable(ctx context.Context) ([]store.TopicRow, error) {
	var rows []store.TopicRow
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketTable).Get(keyRows)
		if v == nil {
			return nil
		}
		return json.Unmarshal(v, &rows)
	})
	return rows, err
}

// SaveLawKinds replaces the stored law kinds.
func (s *Store) SaveLawKinds(ctx context.Context, kinds []string) error {
	data, err := json.Marshal(uniqueSorted(kinds))
	if err != nil {
		return fmt.Errorf("marshal law kinds: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketTable).Put(keyLawKinds, data)
	})
}

// LawKinds returns the stored law kinds, sorted.
func (s *Store) LawKinds(ctx context.Context) ([]string, error) {
	var kinds []string
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketTable).Get(keyLawKinds)
		if v == nil {
			return nil
		}
		return json.Unmarshal(v, &kinds)
	})
	return kinds, err
}

func uniqueSorted(in []string) []string {
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
