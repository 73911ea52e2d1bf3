package store

import (
	"context"
	"time"
)

// Store persists classified documents, classification runs and the topic
// table they were matched against.
type Store interface {
	Close() error

	// Docs
	UpsertDoc(ctx context.Context, d Doc) error
	GetDoc(ctx context.Context, id string) (Doc, bool, error)
	ListDocs(ctx context.Context) ([]Doc, error)
	DocsByTopic(ctx context.Context, topic string, limit int) ([]Doc, error)

	// Runs
	UpsertRun(ctx context.Context, r Run) error
	GetRun(ctx context.Context, id string) (Run, bool, error)

	// Topic table snapshot
	SaveTopicTable(ctx context.Context, rows []TopicRow) error
	TopicTable(ctx context.Context) ([]TopicRow, error)

	// Law kinds masked in titles by the last run
	SaveLawKinds(ctx context.Context, kinds []string) error
	LawKinds(ctx context.Context) ([]string, error)
}

// Doc is a legal text with the words and topics found in its title and body.
type Doc struct {
	ID          string
	Title       string
	Text        string
	Emetteur    string
	Nature      string
	Date        string
	Fingerprint uint64 // of the normalized title
	Words       []string
	Topics      []string
	RunID       string
}

// Run summarizes one classification pass.
type Run struct {
	ID         string
	StartedAt  time.Time
	Docs       int // records stored
	Matched    int // records with at least one topic
	Failed     int // records with a field that could not be matched
	Duplicates int // records dropped as duplicate titles
}

// TopicRow is one row of the topic table, in table order.
type TopicRow struct {
	Topic string
	Words []string
}

// HasTopic reports whether the doc carries topic.
func (d Doc) HasTopic(topic string) bool {
	for _, t := range d.Topics {
		if t == topic {
			return true
		}
	}
	return false
}
