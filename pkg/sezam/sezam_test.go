package sezam

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/sezam/pkg/sezam/corpus"
	"github.com/cognicore/sezam/pkg/sezam/internalerr"
	"github.com/cognicore/sezam/pkg/sezam/normalize"
	"github.com/cognicore/sezam/pkg/sezam/stoplist"
	"github.com/cognicore/sezam/pkg/sezam/store/memstore"
	"github.com/cognicore/sezam/pkg/sezam/topics"
)

func newTestClassifier(t *testing.T, dropDuplicates bool) (*Classifier, *memstore.Store) {
	t.Helper()

	table, err := topics.FromRows([]topics.Row{
		{Topic: "santé", Words: []string{"hôpital", "pollution"}},
		{Topic: "environnement", Words: []string{"pollution", "eau"}},
		{Topic: "mer", Words: []string{"pêche"}},
	})
	if err != nil {
		t.Fatalf("table: %v", err)
	}

	st := memstore.New()
	c := New(Options{
		Store:          st,
		Normalizer:     normalize.New(normalize.Options{Stopwords: stoplist.French()}),
		Matcher:        topics.NewMatcher(table, topics.WithWorkers(2), topics.WithShardSize(1)),
		DropDuplicates: dropDuplicates,
	})
	t.Cleanup(func() { c.Close() })
	return c, st
}

func testRecords() []corpus.Record {
	return []corpus.Record{
		{
			ID:       "A",
			Title:    corpus.Str("Arrêté relatif à l'hôpital"),
			Text:     corpus.Str("pollution de l'eau"),
			Emetteur: "Ministère de la santé",
			Nature:   "ARRETE",
			Date:     "2021-10-04",
		},
		{ID: "B", Title: corpus.Str("Décret sur la pêche")},
		{Title: corpus.Str("sans identifiant")},
		{ID: "C", Title: corpus.Str("Arrêté relatif à l'HÔPITAL"), Text: corpus.Str("rien")},
		{ID: "D", Title: corpus.Str("Avis"), Text: corpus.Str("sans objet")},
	}
}

func TestPointPredict(t *testing.T) {
	c, _ := newTestClassifier(t, false)

	res, err := c.PointPredict("L'eau et la Pêche")
	if err != nil {
		t.Fatalf("PointPredict: %v", err)
	}
	if !reflect.DeepEqual(res.Words, []string{"eau", "pêche"}) {
		t.Errorf("Words = %v", res.Words)
	}
	if !reflect.DeepEqual(res.Topics, []string{"environnement", "mer"}) {
		t.Errorf("Topics = %v", res.Topics)
	}

	if _, err := c.PointPredict("eau \xff"); !errors.Is(err, internalerr.ErrInvalidDocument) {
		t.Errorf("Invalid UTF-8 should be rejected, got %v", err)
	}
}

func TestClassify(t *testing.T) {
	ctx := context.Background()
	c, st := newTestClassifier(t, true)

	report, err := c.Classify(ctx, testRecords())
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}

	if _, err := ulid.Parse(report.RunID); err != nil {
		t.Errorf("RunID %q is not a ULID: %v", report.RunID, err)
	}
	if report.Docs != 2 || report.Matched != 1 || report.Duplicates != 1 {
		t.Errorf("report = %+v, want 2 stored, 1 matched, 1 duplicate", report)
	}
	if report.Failed() != 2 || len(report.Failures) != 2 {
		t.Fatalf("Failures = %v", report.Failures)
	}
	if f := report.Failures[0]; f.Index != 1 || f.Column != ColumnText || !errors.Is(f, topics.ErrNullDocument) {
		t.Errorf("Failures[0] = %+v, want null text of record 1", f)
	}
	if f := report.Failures[1]; f.Index != 2 || f.Column != ColumnID {
		t.Errorf("Failures[1] = %+v, want missing id of record 2", f)
	}

	doc, found, err := st.GetDoc(ctx, "A")
	if err != nil || !found {
		t.Fatalf("GetDoc A: found=%v err=%v", found, err)
	}
	if !reflect.DeepEqual(doc.Words, []string{"eau", "hôpital", "pollution"}) {
		t.Errorf("A words = %v", doc.Words)
	}
	if !reflect.DeepEqual(doc.Topics, []string{"environnement", "santé"}) {
		t.Errorf("A topics = %v", doc.Topics)
	}
	if doc.RunID != report.RunID || doc.Title != "Arrêté relatif à l'hôpital" {
		t.Errorf("A stored as %+v", doc)
	}
	if doc.Fingerprint != corpus.Fingerprint("arrêté relatif hôpital") {
		t.Errorf("Fingerprint should hash the normalized title")
	}

	for _, id := range []string{"B", "C"} {
		if _, found, _ := st.GetDoc(ctx, id); found {
			t.Errorf("%s should not be stored", id)
		}
	}
	if d, found, _ := st.GetDoc(ctx, "D"); !found || len(d.Topics) != 0 {
		t.Errorf("D should be stored without topics, got %+v (found=%v)", d, found)
	}

	run, found, err := st.GetRun(ctx, report.RunID)
	if err != nil || !found {
		t.Fatalf("GetRun: found=%v err=%v", found, err)
	}
	if run.Docs != 2 || run.Matched != 1 || run.Failed != 2 || run.Duplicates != 1 {
		t.Errorf("run = %+v", run)
	}

	rows, err := st.TopicTable(ctx)
	if err != nil {
		t.Fatalf("TopicTable: %v", err)
	}
	if len(rows) != 3 || rows[2].Topic != "mer" {
		t.Errorf("topic table = %+v", rows)
	}
}

func TestClassifyKeepsDuplicatesByDefault(t *testing.T) {
	ctx := context.Background()
	c, st := newTestClassifier(t, false)

	report, err := c.Classify(ctx, testRecords())
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if report.Docs != 3 || report.Matched != 2 || report.Duplicates != 0 {
		t.Errorf("report = %+v, want 3 stored, 2 matched", report)
	}

	docs, err := st.DocsByTopic(ctx, "santé", 0)
	if err != nil {
		t.Fatalf("DocsByTopic: %v", err)
	}
	if len(docs) != 2 {
		t.Errorf("santé docs = %d, want 2", len(docs))
	}
}

func TestClassifyRunIDsAreUnique(t *testing.T) {
	c, _ := newTestClassifier(t, false)

	a, err := c.Classify(context.Background(), nil)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	b, err := c.Classify(context.Background(), nil)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if a.RunID == b.RunID {
		t.Errorf("run ids should differ, both %s", a.RunID)
	}
}

func TestClassifyCancelled(t *testing.T) {
	c, _ := newTestClassifier(t, false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Classify(ctx, testRecords())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestPredictAlignsWithRecords(t *testing.T) {
	c, _ := newTestClassifier(t, false)

	res, err := c.Predict(context.Background(), testRecords())
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if res.Len() != 5 {
		t.Fatalf("Len = %d, want 5", res.Len())
	}
	if !reflect.DeepEqual(res.Topics[1], []string{"mer"}) {
		t.Errorf("title of B should still match, got %v", res.Topics[1])
	}
	if res.Name != ColumnTitle+"+"+ColumnText {
		t.Errorf("Name = %q", res.Name)
	}
}

func TestLawMaskingTouchesTitlesOnly(t *testing.T) {
	ctx := context.Background()
	title := "Loi relative à la pêche du 2 mars 2021 fixant l'emploi"
	body := "Mesures pour l'emploi des jeunes et la pêche durable en 2021 selon le plan"

	table, err := topics.FromRows([]topics.Row{
		{Topic: "emploi", Words: []string{"emploi"}},
		{Topic: "mer", Words: []string{"pêche"}},
	})
	if err != nil {
		t.Fatalf("table: %v", err)
	}
	masker, err := normalize.NewLawMasker(normalize.LearnLawKinds([]string{title}))
	if err != nil {
		t.Fatalf("masker: %v", err)
	}
	st := memstore.New()
	c := New(Options{
		Store:      st,
		Normalizer: normalize.New(normalize.Options{Stopwords: stoplist.French(), LawMasker: masker}),
		Matcher:    topics.NewMatcher(table),
	})
	defer c.Close()

	res, err := c.PointPredict(body)
	if err != nil {
		t.Fatalf("PointPredict: %v", err)
	}
	if !reflect.DeepEqual(res.Words, []string{"emploi", "pêche"}) || !reflect.DeepEqual(res.Topics, []string{"emploi", "mer"}) {
		t.Errorf("body match = %+v, masking must not reach bodies", res)
	}

	if _, err := c.Classify(ctx, []corpus.Record{{ID: "L", Title: corpus.Str(title), Text: corpus.Str("plan de relance")}}); err != nil {
		t.Fatalf("Classify: %v", err)
	}
	doc, found, err := st.GetDoc(ctx, "L")
	if err != nil || !found {
		t.Fatalf("GetDoc: found=%v err=%v", found, err)
	}
	if !reflect.DeepEqual(doc.Words, []string{"emploi"}) || !reflect.DeepEqual(doc.Topics, []string{"emploi"}) {
		t.Errorf("stored = %v / %v, the masked span should hide pêche", doc.Words, doc.Topics)
	}

	point, err := c.PointPredictRecord(ctx, title, "plan de relance")
	if err != nil {
		t.Fatalf("PointPredictRecord: %v", err)
	}
	if !reflect.DeepEqual(point.Words, doc.Words) || !reflect.DeepEqual(point.Topics, doc.Topics) {
		t.Errorf("PointPredictRecord = %+v, stored %v / %v", point, doc.Words, doc.Topics)
	}

	kinds, err := st.LawKinds(ctx)
	if err != nil {
		t.Fatalf("LawKinds: %v", err)
	}
	if !reflect.DeepEqual(kinds, []string{"loi"}) {
		t.Errorf("stored law kinds = %v", kinds)
	}
}
