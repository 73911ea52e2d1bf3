package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/sezam/pkg/sezam/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	// Enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS docs (
	id TEXT PRIMARY KEY,
	title TEXT,
	text TEXT,
	emetteur TEXT,
	nature TEXT,
	date TEXT,
	fingerprint INTEGER,
	run_id TEXT
);

CREATE TABLE IF NOT EXISTS doc_words (
	doc_id TEXT NOT NULL,
	word TEXT NOT NULL,
	UNIQUE(doc_id, word),
	FOREIGN KEY(doc_id) REFERENCES docs(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS doc_topics (
	doc_id TEXT NOT NULL,
	topic TEXT NOT NULL,
	UNIQUE(doc_id, topic),
	FOREIGN KEY(doc_id) REFERENCES docs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_doc_topics_topic ON doc_topics(topic);

CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	started_at TEXT,
	docs INTEGER DEFAULT 0,
	matched INTEGER DEFAULT 0,
	failed INTEGER DEFAULT 0,
	duplicates INTEGER DEFAULT 0
);

CREATE TABLE IF NOT EXISTS topic_table (
	position INTEGER PRIMARY KEY,
	topic TEXT NOT NULL,
	words TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS law_kinds (
	kind TEXT PRIMARY KEY
);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// UpsertDoc inserts or updates a document and replaces its words and topics
func (s *sqliteStore) UpsertDoc(ctx context.Context, d store.Doc) error {
	if d.ID == "" {
		return fmt.Errorf("doc id is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
INSERT INTO docs (id, title, text, emetteur, nature, date, fingerprint, run_id)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	title=excluded.title,
	text=excluded.text,
	emetteur=excluded.emetteur,
	nature=excluded.nature,
	date=excluded.date,
	fingerprint=excluded.fingerprint,
	run_id=excluded.run_id;
`, d.ID, d.Title, d.Text, d.Emetteur, d.Nature, d.Date, int64(d.Fingerprint), d.RunID)
	if err != nil {
		return err
	}

	if err := replaceDocValues(ctx, tx, "doc_words", "word", d.ID, uniqueStrings(d.Words)); err != nil {
		return err
	}
	if err := replaceDocValues(ctx, tx, "doc_topics", "topic", d.ID, uniqueStrings(d.Topics)); err != nil {
		return err
	}

	return tx.Commit()
}

// replaceDocValues rewrites one of the doc_* child tables for a document.
// table and column are package constants, never user input.
func replaceDocValues(ctx context.Context, tx *sql.Tx, table, column, docID string, values []string) error {
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE doc_id=?`, table), docID); err != nil {
		return err
	}
	if len(values) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`INSERT INTO %s (doc_id, %s) VALUES (?, ?)`, table, column))
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, v := range values {
		if _, err := stmt.ExecContext(ctx, docID, v); err != nil {
			return err
		}
	}
	return nil
}

// GetDoc retrieves a document by ID
func (s *sqliteStore) GetDoc(ctx context.Context, id string) (store.Doc, bool, error) {
	doc, err := s.loadDoc(ctx, id)
	if err == sql.ErrNoRows {
		return store.Doc{}, false, nil
	}
	if err != nil {
		return store.Doc{}, false, err
	}
	return doc, true, nil
}

// ListDocs returns every document ordered by ID
func (s *sqliteStore) ListDocs(ctx context.Context) ([]store.Doc, error) {
	ids, err := s.loadStringColumn(ctx, `SELECT id FROM docs ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return s.loadDocs(ctx, ids)
}

// DocsByTopic returns documents carrying topic, most recent first.
// A non-positive limit returns every match.
func (s *sqliteStore) DocsByTopic(ctx context.Context, topic string, limit int) ([]store.Doc, error) {
	if limit <= 0 {
		limit = -1
	}
	ids, err := s.loadStringColumn(ctx, `
SELECT d.id
FROM docs d
JOIN doc_topics dt ON d.id = dt.doc_id
WHERE dt.topic = ?
ORDER BY d.date DESC, d.id
LIMIT ?;
`, topic, limit)
	if err != nil {
		return nil, err
	}
	return s.loadDocs(ctx, ids)
}

// UpsertRun inserts or updates a run summary
func (s *sqliteStore) UpsertRun(ctx context.Context, r store.Run) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO runs (id, started_at, docs, matched, failed, duplicates)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	started_at=excluded.started_at,
	docs=excluded.docs,
	matched=excluded.matched,
	failed=excluded.failed,
	duplicates=excluded.duplicates;
`, r.ID, r.StartedAt.UTC().Format(time.RFC3339Nano), r.Docs, r.Matched, r.Failed, r.Duplicates)
	return err
}

// GetRun retrieves a run by ID
func (s *sqliteStore) GetRun(ctx context.Context, id string) (store.Run, bool, error) {
	var (
		r       store.Run
		started string
	)
	err := s.db.QueryRowContext(ctx, `
SELECT id, started_at, docs, matched, failed, duplicates
FROM runs
WHERE id = ?;
`, id).Scan(&r.ID, &started, &r.Docs, &r.Matched, &r.Failed, &r.Duplicates)
	if err == sql.ErrNoRows {
		return store.Run{}, false, nil
	}
	if err != nil {
		return store.Run{}, false, err
	}
	if parsed, perr := time.Parse(time.RFC3339Nano, started); perr == nil {
		r.StartedAt = parsed
	}
	return r, true, nil
}

// SaveTopicTable replaces the stored topic table in a single transaction.
func (s *sqliteStore) SaveTopicTable(ctx context.Context, rows []store.TopicRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM topic_table`); err != nil {
		return err
	}

	if len(rows) > 0 {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO topic_table (position, topic, words) VALUES (?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for i, r := range rows {
			words, err := json.Marshal(r.Words)
			if err != nil {
				return err
			}
			if _, err := stmt.ExecContext(ctx, i, r.Topic, string(words)); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// TopicTable returns the stored topic table in order.
func (s *sqliteStore) TopicTable(ctx context.Context) ([]store.TopicRow, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT topic, words FROM topic_table ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.TopicRow
	for rows.Next() {
		var (
			r     store.TopicRow
			words string
		)
		if err := rows.Scan(&r.Topic, &words); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(words), &r.Words); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// SaveLawKinds replaces the stored law kinds in a single transaction.
func (s *sqliteStore) SaveLawKinds(ctx context.Context, kinds []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM law_kinds`); err != nil {
		return err
	}
	for _, k := range uniqueStrings(kinds) {
		if _, err := tx.ExecContext(ctx, `INSERT INTO law_kinds (kind) VALUES (?)`, k); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// LawKinds returns the stored law kinds, sorted.
func (s *sqliteStore) LawKinds(ctx context.Context) ([]string, error) {
	return s.loadStringColumn(ctx, `SELECT kind FROM law_kinds ORDER BY kind`)
}

func (s *sqliteStore) loadDocs(ctx context.Context, ids []string) ([]store.Doc, error) {
	docs := make([]store.Doc, 0, len(ids))
	for _, id := range ids {
		doc, err := s.loadDoc(ctx, id)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *sqliteStore) loadDoc(ctx context.Context, id string) (store.Doc, error) {
	var (
		doc store.Doc
		fp  int64
	)
	err := s.db.QueryRowContext(ctx, `
SELECT id, title, text, emetteur, nature, date, fingerprint, run_id
FROM docs
WHERE id = ?;
`, id).Scan(&doc.ID, &doc.Title, &doc.Text, &doc.Emetteur, &doc.Nature, &doc.Date, &fp, &doc.RunID)
	if err != nil {
		return store.Doc{}, err
	}
	doc.Fingerprint = uint64(fp)

	doc.Words, err = s.loadStringColumn(ctx, `SELECT word FROM doc_words WHERE doc_id=? ORDER BY word`, id)
	if err != nil {
		return store.Doc{}, err
	}
	doc.Topics, err = s.loadStringColumn(ctx, `SELECT topic FROM doc_topics WHERE doc_id=? ORDER BY topic`, id)
	if err != nil {
		return store.Doc{}, err
	}

	return doc, nil
}

func (s *sqliteStore) loadStringColumn(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var val string
		if err := rows.Scan(&val); err != nil {
			return nil, err
		}
		result = append(result, val)
	}
	return result, rows.Err()
}

func uniqueStrings(in []string) []string {
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
