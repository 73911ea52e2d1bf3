package topics

import (
	"context"
	"errors"
	"testing"

	"github.com/cognicore/sezam/pkg/sezam/internalerr"
)

func TestCombineTitleAndBody(t *testing.T) {
	title := ColumnResult{
		Name:   "titre",
		Words:  [][]string{{"eau"}},
		Topics: [][]string{{"environnement"}},
	}
	body := ColumnResult{
		Name:   "text",
		Words:  [][]string{{"hôpital"}},
		Topics: [][]string{{"santé"}},
	}

	got, err := Combine(title, body)
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}
	if !sameSet(got.Words[0], []string{"eau", "hôpital"}) {
		t.Errorf("words = %v", got.Words[0])
	}
	if !sameSet(got.Topics[0], []string{"environnement", "santé"}) {
		t.Errorf("topics = %v", got.Topics[0])
	}
	if got.Name != "titre+text" {
		t.Errorf("Name = %q", got.Name)
	}
}

func TestCombineDeduplicates(t *testing.T) {
	m := NewMatcher(legalTable(t))
	ctx := context.Background()

	title, err := m.MatchColumn(ctx, Strings("titre", []string{"pollution", "budget"}))
	if err != nil {
		t.Fatal(err)
	}
	body, err := m.MatchColumn(ctx, Strings("text", []string{"pollution eau hôpital", "budget"}))
	if err != nil {
		t.Fatal(err)
	}

	got, err := Combine(title, body)
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}

	if len(got.Topics[0]) != 2 || !sameSet(got.Topics[0], []string{"environnement", "santé"}) {
		t.Errorf("row 0 topics = %v, want each topic once", got.Topics[0])
	}
	if len(got.Words[0]) != 3 {
		t.Errorf("row 0 words = %v, want 3 distinct", got.Words[0])
	}
	if len(got.Words[1]) != 0 || len(got.Topics[1]) != 0 {
		t.Errorf("row 1 should stay empty, got %v / %v", got.Words[1], got.Topics[1])
	}
}

func TestCombineKeepsFailures(t *testing.T) {
	m := NewMatcher(legalTable(t))
	ctx := context.Background()

	title, _ := m.MatchColumn(ctx, Column{Name: "titre", Docs: []Doc{Text("eau"), Text("x"), {Null: true}}})
	body, _ := m.MatchColumn(ctx, Column{Name: "text", Docs: []Doc{{Null: true}, Text("hôpital"), Text("y")}})

	got, err := Combine(title, body)
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}
	if len(got.Failures) != 2 {
		t.Fatalf("failures = %v", got.Failures)
	}
	if got.Failures[0].Index != 0 || got.Failures[0].Column != "text" {
		t.Errorf("failure 0 = %+v", got.Failures[0])
	}
	if got.Failures[1].Index != 2 || got.Failures[1].Column != "titre" {
		t.Errorf("failure 1 = %+v", got.Failures[1])
	}
	// Row 0 still has the title match.
	if !sameSet(got.Topics[0], []string{"environnement"}) {
		t.Errorf("row 0 topics = %v", got.Topics[0])
	}
}

func TestCombineLengthMismatch(t *testing.T) {
	a := ColumnResult{Words: [][]string{{}}, Topics: [][]string{{}}}
	b := ColumnResult{Words: [][]string{{}, {}}, Topics: [][]string{{}, {}}}

	_, err := Combine(a, b)
	if !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCombineNothing(t *testing.T) {
	got, err := Combine()
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}
	if got.Len() != 0 {
		t.Errorf("Len = %d", got.Len())
	}
}
