package corpus

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// maxLineSize bounds a single JSONL line; legal text bodies can be large.
const maxLineSize = 16 << 20

// LoadOptions controls how records are read.
type LoadOptions struct {
	// StripHTML converts HTML bodies to plain text.
	StripHTML bool
	// Logger receives warnings about skipped lines. Defaults to slog.Default().
	Logger *slog.Logger
}

func (o LoadOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// LoadJSONL loads records from a JSONL file. Malformed lines and records
// without an id are skipped with a warning.
func LoadJSONL(path string, opts LoadOptions) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	log := opts.logger()
	var records []Record

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		var rec Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			log.Warn("skipping malformed record", "path", path, "line", lineNo, "err", err)
			continue
		}
		if err := rec.Validate(); err != nil {
			log.Warn("skipping invalid record", "path", path, "line", lineNo, "err", err)
			continue
		}
		if opts.StripHTML && rec.Text != nil {
			rec.Text = Str(StripHTML(*rec.Text))
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("no valid records found in %s", path)
	}

	return records, nil
}

// LoadGlob loads every file matching a doublestar pattern
// ("exports/**/*.jsonl"), in lexical path order.
func LoadGlob(pattern string, opts LoadOptions) ([]Record, error) {
	paths, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no files match %s", pattern)
	}
	sort.Strings(paths)

	var all []Record
	for _, p := range paths {
		recs, err := LoadJSONL(p, opts)
		if err != nil {
			return nil, err
		}
		all = append(all, recs...)
	}
	return all, nil
}

// WriteJSONL writes records, one JSON object per line.
func WriteJSONL(path string, records []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return f.Close()
}
