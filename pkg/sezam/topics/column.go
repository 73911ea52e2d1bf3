package topics

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/cognicore/sezam/pkg/sezam/internalerr"
)

// ErrNullDocument marks a missing cell in a text column.
var ErrNullDocument = fmt.Errorf("%w: null document", internalerr.ErrInvalidDocument)

// Doc is one cell of a text column. Null marks a value that was missing
// upstream; it is reported, never treated as an empty string.
type Doc struct {
	Text string
	Null bool
}

// Text wraps a present value.
func Text(s string) Doc {
	return Doc{Text: s}
}

// Column is one text field across a batch of records.
type Column struct {
	Name string
	Docs []Doc
}

// Strings builds a column where every cell is present.
func Strings(name string, values []string) Column {
	docs := make([]Doc, len(values))
	for i, v := range values {
		docs[i] = Text(v)
	}
	return Column{Name: name, Docs: docs}
}

// DocError reports a document that could not be matched.
type DocError struct {
	Column string
	Index  int
	Err    error
}

func (e DocError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("document %d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("%s[%d]: %v", e.Column, e.Index, e.Err)
}

func (e DocError) Unwrap() error {
	return e.Err
}

// ColumnResult holds per-row matches aligned with the input column. Rows
// that failed keep empty entries and are listed in Failures.
type ColumnResult struct {
	Name     string
	Words    [][]string
	Topics   [][]string
	Failures []DocError
}

// Len returns the number of rows.
func (c ColumnResult) Len() int {
	return len(c.Words)
}

// Row returns the match of row i.
func (c ColumnResult) Row(i int) Result {
	return Result{Words: c.Words[i], Topics: c.Topics[i]}
}

// Err joins every per-document failure, or returns nil.
func (c ColumnResult) Err() error {
	if len(c.Failures) == 0 {
		return nil
	}
	errs := make([]error, len(c.Failures))
	for i, f := range c.Failures {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// MatchColumn matches every document of col. Shards run in parallel and
// each writes only its own rows, so output order follows input order.
// A malformed document is recorded in Failures and does not stop the
// batch; the returned error is non-nil only when ctx is done.
func (m *Matcher) MatchColumn(ctx context.Context, col Column) (ColumnResult, error) {
	n := len(col.Docs)
	res := ColumnResult{
		Name:   col.Name,
		Words:  make([][]string, n),
		Topics: make([][]string, n),
	}
	errs := make([]error, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.workers)
	for start := 0; start < n; start += m.shardSize {
		end := min(start+m.shardSize, n)
		g.Go(func() error {
			for k := start; k < end; k++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				r, err := m.matchDoc(col.Docs[k])
				res.Words[k], res.Topics[k], errs[k] = r.Words, r.Topics, err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ColumnResult{}, err
	}

	for k, err := range errs {
		if err != nil {
			res.Failures = append(res.Failures, DocError{Column: col.Name, Index: k, Err: err})
		}
	}
	return res, nil
}

func (m *Matcher) matchDoc(d Doc) (Result, error) {
	if d.Null {
		return Result{Words: []string{}, Topics: []string{}}, ErrNullDocument
	}
	return m.Match(d.Text)
}
