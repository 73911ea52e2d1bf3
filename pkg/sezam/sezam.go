// Package sezam finds the topics of French legal texts by looking up
// curated trigger words in their normalized titles and bodies.
package sezam

import (
	"context"
	"crypto/rand"
	"log/slog"
	"sort"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/sezam/pkg/sezam/corpus"
	"github.com/cognicore/sezam/pkg/sezam/normalize"
	"github.com/cognicore/sezam/pkg/sezam/store"
	"github.com/cognicore/sezam/pkg/sezam/store/memstore"
	"github.com/cognicore/sezam/pkg/sezam/topics"
)

// Column names used in failures.
const (
	ColumnID    = "id"
	ColumnTitle = "titre"
	ColumnText  = "text"
)

// progressEvery is the number of stored documents between progress logs.
const progressEvery = 1000

// Classifier is the main facade: it normalizes records, matches them
// against the topic table and persists the results.
type Classifier struct {
	store          store.Store
	norm           *normalize.Normalizer
	matcher        *topics.Matcher
	log            *slog.Logger
	dropDuplicates bool

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	now     func() time.Time
}

// Options configures a Classifier. A nil Store keeps results in memory,
// a nil Normalizer only lowercases and strips structures and digits, and
// a nil Matcher matches nothing.
type Options struct {
	Store          store.Store
	Normalizer     *normalize.Normalizer
	Matcher        *topics.Matcher
	Logger         *slog.Logger
	DropDuplicates bool
}

// New creates a Classifier with the given dependencies
func New(opts Options) *Classifier {
	c := &Classifier{
		store:          opts.Store,
		norm:           opts.Normalizer,
		matcher:        opts.Matcher,
		log:            opts.Logger,
		dropDuplicates: opts.DropDuplicates,
		entropy:        ulid.Monotonic(rand.Reader, 0),
		now:            time.Now,
	}
	if c.store == nil {
		c.store = memstore.New()
	}
	if c.norm == nil {
		c.norm = normalize.New(normalize.Options{})
	}
	if c.matcher == nil {
		c.matcher = topics.NewMatcher(nil)
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	return c
}

// Close cleanly shuts down the classifier and its store
func (c *Classifier) Close() error {
	return c.store.Close()
}

// Store returns the store results are written to.
func (c *Classifier) Store() store.Store {
	return c.store
}

// PointPredict normalizes a single body text and returns its words and
// topics. Law references are not masked.
func (c *Classifier) PointPredict(text string) (topics.Result, error) {
	return c.matcher.Match(c.normalized(text, c.norm.Normalize))
}

// PointPredictRecord matches a title and a body exactly as Classify does
// and returns the union of their words and topics.
func (c *Classifier) PointPredictRecord(ctx context.Context, title, text string) (topics.Result, error) {
	res, err := c.Predict(ctx, []corpus.Record{{Title: corpus.Str(title), Text: corpus.Str(text)}})
	if err != nil {
		return topics.Result{}, err
	}
	if err := res.Err(); err != nil {
		return topics.Result{}, err
	}
	return res.Row(0), nil
}

// normalized leaves invalid UTF-8 untouched so the matcher rejects it
// instead of matching replacement characters.
func (c *Classifier) normalized(s string, norm func(string) string) string {
	if !utf8.ValidString(s) {
		return s
	}
	return norm(s)
}

func (c *Classifier) cell(s *string, norm func(string) string) topics.Doc {
	if s == nil {
		return topics.Doc{Null: true}
	}
	return topics.Text(c.normalized(*s, norm))
}

// Predict matches the title and body of every record and returns their
// row-wise union. Rows align with records. Only titles are law masked.
func (c *Classifier) Predict(ctx context.Context, records []corpus.Record) (topics.ColumnResult, error) {
	titles := topics.Column{Name: ColumnTitle, Docs: make([]topics.Doc, len(records))}
	texts := topics.Column{Name: ColumnText, Docs: make([]topics.Doc, len(records))}
	for i := range records {
		titles.Docs[i] = c.cell(records[i].Title, c.norm.NormalizeTitle)
		texts.Docs[i] = c.cell(records[i].Text, c.norm.Normalize)
	}

	byTitle, err := c.matcher.MatchColumn(ctx, titles)
	if err != nil {
		return topics.ColumnResult{}, err
	}
	byText, err := c.matcher.MatchColumn(ctx, texts)
	if err != nil {
		return topics.ColumnResult{}, err
	}
	return topics.Combine(byTitle, byText)
}

// Report summarizes a Classify call.
type Report struct {
	RunID      string
	Docs       int // records stored
	Matched    int // stored records with at least one topic
	Duplicates int // records dropped as duplicate titles
	// Failures lists every rejected cell. Index refers to the input records.
	Failures []topics.DocError
}

// Failed returns the number of distinct records with a failure.
func (r Report) Failed() int {
	seen := make(map[int]struct{}, len(r.Failures))
	for _, f := range r.Failures {
		seen[f.Index] = struct{}{}
	}
	return len(seen)
}

// Classify matches records and stores the ones whose title and body could
// both be matched, together with a run summary, the topic table and the law
// kinds used.
// Records without an id, with a null or invalid field are reported in
// Failures and not stored.
func (c *Classifier) Classify(ctx context.Context, records []corpus.Record) (Report, error) {
	report := Report{RunID: c.newRunID()}
	started := c.now()
	log := c.log.With("run", report.RunID)
	log.Info("classification started", "records", len(records))

	// keep maps a row of the working set back to its record.
	keep := make([]int, 0, len(records))
	for i := range records {
		if err := records[i].Validate(); err != nil {
			report.Failures = append(report.Failures, topics.DocError{Column: ColumnID, Index: i, Err: err})
			continue
		}
		keep = append(keep, i)
	}

	if c.dropDuplicates {
		keep = c.dropDuplicateTitles(records, keep, &report)
	}

	batch := make([]corpus.Record, len(keep))
	for k, i := range keep {
		batch[k] = records[i]
	}
	res, err := c.Predict(ctx, batch)
	if err != nil {
		return report, err
	}

	failed := make(map[int]struct{}, len(res.Failures))
	for _, f := range res.Failures {
		failed[f.Index] = struct{}{}
		f.Index = keep[f.Index]
		report.Failures = append(report.Failures, f)
	}
	sort.SliceStable(report.Failures, func(a, b int) bool {
		return report.Failures[a].Index < report.Failures[b].Index
	})

	for k, rec := range batch {
		if _, bad := failed[k]; bad {
			continue
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}

		row := res.Row(k)
		doc := store.Doc{
			ID:          rec.ID,
			Title:       rec.TitleOrEmpty(),
			Text:        rec.TextOrEmpty(),
			Emetteur:    rec.Emetteur,
			Nature:      rec.Nature,
			Date:        rec.Date,
			Fingerprint: corpus.Fingerprint(c.norm.NormalizeTitle(rec.TitleOrEmpty())),
			Words:       row.Words,
			Topics:      row.Topics,
			RunID:       report.RunID,
		}
		if err := c.store.UpsertDoc(ctx, doc); err != nil {
			return report, err
		}
		report.Docs++
		if len(row.Topics) > 0 {
			report.Matched++
		}
		if report.Docs%progressEvery == 0 {
			log.Info("progress", "stored", report.Docs, "total", len(batch))
		}
	}

	if err := c.store.SaveTopicTable(ctx, topicRows(c.matcher.Table())); err != nil {
		return report, err
	}
	if err := c.store.SaveLawKinds(ctx, c.norm.LawKinds()); err != nil {
		return report, err
	}
	run := store.Run{
		ID:         report.RunID,
		StartedAt:  started,
		Docs:       report.Docs,
		Matched:    report.Matched,
		Failed:     report.Failed(),
		Duplicates: report.Duplicates,
	}
	if err := c.store.UpsertRun(ctx, run); err != nil {
		return report, err
	}

	for _, f := range report.Failures {
		log.Warn("record rejected", "index", f.Index, "column", f.Column, "err", f.Err)
	}
	log.Info("classification complete",
		"stored", report.Docs,
		"matched", report.Matched,
		"failed", run.Failed,
		"duplicates", report.Duplicates,
		"elapsed", c.now().Sub(started))
	return report, nil
}

// dropDuplicateTitles keeps the first record of every normalized title.
func (c *Classifier) dropDuplicateTitles(records []corpus.Record, keep []int, report *Report) []int {
	shadow := make([]corpus.Record, len(keep))
	for k, i := range keep {
		shadow[k] = corpus.Record{ID: records[i].ID}
		if t := records[i].Title; t != nil && utf8.ValidString(*t) {
			shadow[k].Title = corpus.Str(c.norm.NormalizeTitle(*t))
		}
	}

	_, dropped := corpus.Dedupe(shadow, func(r corpus.Record) string { return r.TitleOrEmpty() })
	if len(dropped) == 0 {
		return keep
	}
	skip := make(map[int]struct{}, len(dropped))
	for _, k := range dropped {
		skip[k] = struct{}{}
		c.log.Debug("duplicate title dropped", "id", records[keep[k]].ID)
	}
	report.Duplicates = len(dropped)

	out := make([]int, 0, len(keep)-len(dropped))
	for k, i := range keep {
		if _, ok := skip[k]; !ok {
			out = append(out, i)
		}
	}
	return out
}

func (c *Classifier) newRunID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(c.now()), c.entropy).String()
}

func topicRows(t *topics.Table) []store.TopicRow {
	rows := t.Rows()
	out := make([]store.TopicRow, len(rows))
	for i, r := range rows {
		out[i] = store.TopicRow{Topic: r.Topic, Words: r.Words}
	}
	return out
}
