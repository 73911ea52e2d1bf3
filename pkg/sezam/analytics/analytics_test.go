package analytics

import (
	"errors"
	"math"
	"testing"

	"github.com/cognicore/sezam/pkg/sezam/internalerr"
	"github.com/cognicore/sezam/pkg/sezam/store"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCoverage(t *testing.T) {
	docs := []store.Doc{
		{ID: "1", Words: []string{"pollution"}, Topics: []string{"santé", "environnement"}},
		{ID: "2", Words: []string{"eau", "pollution"}, Topics: []string{"environnement"}},
		{ID: "3"},
		{ID: "4", Words: []string{"pêche", "pêche"}, Topics: []string{"mer", "mer"}},
	}

	r := Coverage(docs)

	if r.TotalDocs != 4 {
		t.Errorf("TotalDocs = %d, want 4", r.TotalDocs)
	}
	if r.Unmatched != 1 {
		t.Errorf("Unmatched = %d, want 1", r.Unmatched)
	}

	wantTopics := []Count{
		{Name: "environnement", Docs: 2, Percent: 50},
		{Name: "mer", Docs: 1, Percent: 25},
		{Name: "santé", Docs: 1, Percent: 25},
	}
	if len(r.Topics) != len(wantTopics) {
		t.Fatalf("Topics = %+v", r.Topics)
	}
	for i, want := range wantTopics {
		got := r.Topics[i]
		if got.Name != want.Name || got.Docs != want.Docs || !almostEqual(got.Percent, want.Percent) {
			t.Errorf("Topics[%d] = %+v, want %+v", i, got, want)
		}
	}

	if r.Words[0].Name != "pollution" || r.Words[0].Docs != 2 {
		t.Errorf("Most frequent word should be pollution, got %+v", r.Words[0])
	}
}

func TestCoverageEmpty(t *testing.T) {
	r := Coverage(nil)
	if r.TotalDocs != 0 || len(r.Topics) != 0 || len(r.Words) != 0 {
		t.Errorf("Empty coverage should be zero, got %+v", r)
	}
}

func TestEvaluate(t *testing.T) {
	gold := [][]string{{"a", "b"}, {"c"}, {}, {"a"}}
	pred := [][]string{{"a"}, {"c"}, nil, {"b"}}

	s, err := Evaluate(gold, pred)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	checks := []struct {
		name      string
		got, want float64
	}{
		{"subset accuracy", s.SubsetAccuracy, 0.5},
		{"hamming loss", s.HammingLoss, 0.25},
		{"hamming score", s.HammingScore, 0.625},
		{"f1 micro", s.F1Micro, 4.0 / 7.0},
		{"f1 macro", s.F1Macro, 5.0 / 9.0},
	}
	for _, c := range checks {
		if !almostEqual(c.got, c.want) {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
	if s.Samples != 4 || s.Labels != 3 {
		t.Errorf("Samples/Labels = %d/%d, want 4/3", s.Samples, s.Labels)
	}
}

func TestEvaluatePerfect(t *testing.T) {
	gold := [][]string{{"mer", "pêche"}, {"santé"}}
	pred := [][]string{{"pêche", "mer", "mer"}, {"santé"}}

	s, err := Evaluate(gold, pred)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if s.SubsetAccuracy != 1 || s.HammingLoss != 0 || s.HammingScore != 1 || s.F1Micro != 1 || s.F1Macro != 1 {
		t.Errorf("Perfect predictions should score 1, got %+v", s)
	}
}

func TestEvaluateNoLabels(t *testing.T) {
	s, err := Evaluate([][]string{{}}, [][]string{{}})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if s.HammingLoss != 0 || s.HammingScore != 1 || s.F1Micro != 0 {
		t.Errorf("Unexpected scores without labels: %+v", s)
	}
}

func TestEvaluateInvalid(t *testing.T) {
	if _, err := Evaluate([][]string{{"a"}}, nil); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("Length mismatch should be ErrInvalidInput, got %v", err)
	}
	if _, err := Evaluate(nil, nil); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("Empty input should be ErrInvalidInput, got %v", err)
	}
}
