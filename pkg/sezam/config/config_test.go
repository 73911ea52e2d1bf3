package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/cognicore/sezam/pkg/sezam/internalerr"
	"github.com/cognicore/sezam/pkg/sezam/topics"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadStoplist(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "stoplist.yaml")
	writeFile(t, path, "terms:\n  - article\n  - vu\n  - considérant\n")

	sl, err := LoadStoplist(path)
	if err != nil {
		t.Fatalf("Failed to load stoplist: %v", err)
	}

	want := []string{"article", "vu", "considérant"}
	if !reflect.DeepEqual(sl.Terms, want) {
		t.Errorf("Terms = %v, want %v", sl.Terms, want)
	}
}

func TestLoadSettings(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "sezam.yaml")
	writeFile(t, path, `topics: topics.yaml
stoplist: /etc/sezam/stoplist.yaml
store: bolt
db: data/sezam.bolt
workers: 4
drop_duplicates: true
normalize:
  fold_accents: true
  mask_law_refs: true
  law_kinds: [arrêté, décret]
`)

	s, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}

	if s.Topics != filepath.Join(tmpDir, "topics.yaml") {
		t.Errorf("Topics should resolve against the settings dir, got %q", s.Topics)
	}
	if s.Stoplist != "/etc/sezam/stoplist.yaml" {
		t.Errorf("Absolute stoplist path should be kept, got %q", s.Stoplist)
	}
	if s.DB != filepath.Join(tmpDir, "data", "sezam.bolt") {
		t.Errorf("DB = %q", s.DB)
	}
	if s.Store != "bolt" || s.Workers != 4 || !s.DropDuplicates {
		t.Errorf("Unexpected settings: %+v", s)
	}
	if !s.BuiltinStopwords {
		t.Error("builtin_stopwords should default to true")
	}
	if !s.Normalize.FoldAccents || s.Normalize.KeepDigits || !s.Normalize.MaskLawRefs {
		t.Errorf("Unexpected normalize settings: %+v", s.Normalize)
	}
	if len(s.Normalize.LawKinds) != 2 {
		t.Errorf("LawKinds = %v", s.Normalize.LawKinds)
	}
}

func TestLoadSettingsInvalid(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"unknown store", "store: parquet\n"},
		{"negative workers", "workers: -1\n"},
		{"malformed yaml", "topics: [unclosed\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(tmpDir, "bad.yaml")
			writeFile(t, path, tt.content)

			_, err := LoadSettings(path)
			if !errors.Is(err, internalerr.ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestLoadTopicRowsYAMLMapping(t *testing.T) {
	path := filepath.Join(t.TempDir(), "topics.yaml")
	writeFile(t, path, `santé:
  - hôpital
  - pollution
environnement:
  - pollution
  - eau
mer: pêche
`)

	rows, err := LoadTopicRows(path)
	if err != nil {
		t.Fatalf("LoadTopicRows: %v", err)
	}

	want := []topics.Row{
		{Topic: "santé", Words: []string{"hôpital", "pollution"}},
		{Topic: "environnement", Words: []string{"pollution", "eau"}},
		{Topic: "mer", Words: []string{"pêche"}},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("rows = %+v, want %+v (file order must be kept)", rows, want)
	}
}

func TestLoadTopicRowsYAMLList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "topics.yml")
	writeFile(t, path, `- topic: santé
  words: [hôpital]
- topic: santé
  words: [médecin]
`)

	rows, err := LoadTopicRows(path)
	if err != nil {
		t.Fatalf("LoadTopicRows: %v", err)
	}

	if len(rows) != 2 || rows[0].Topic != "santé" || rows[1].Words[0] != "médecin" {
		t.Errorf("Duplicate topic rows should be kept as distinct rows, got %+v", rows)
	}
}

func TestLoadTopicRowsTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "topics.toml")
	writeFile(t, path, `[[topic]]
name = "pêche"
words = ["chalut", "quota"]

[[topic]]
name = "eau"
words = ["assainissement"]
`)

	rows, err := LoadTopicRows(path)
	if err != nil {
		t.Fatalf("LoadTopicRows: %v", err)
	}

	want := []topics.Row{
		{Topic: "pêche", Words: []string{"chalut", "quota"}},
		{Topic: "eau", Words: []string{"assainissement"}},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("rows = %+v, want %+v", rows, want)
	}
}

func TestLoadTopicRowsWideCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "topics.csv")
	writeFile(t, path, "\ufeffsanté,environnement,santé\nhôpital,pollution,médecin\n,eau,\n")

	rows, err := LoadTopicRows(path)
	if err != nil {
		t.Fatalf("LoadTopicRows: %v", err)
	}

	want := []topics.Row{
		{Topic: "environnement", Words: []string{"pollution", "eau"}},
		{Topic: "santé", Words: []string{"hôpital", "médecin"}},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("rows = %+v, want %+v", rows, want)
	}
}

func TestLoadTopicRowsErrors(t *testing.T) {
	tmpDir := t.TempDir()

	xlsx := filepath.Join(tmpDir, "topics.xlsx")
	writeFile(t, xlsx, "PK")
	if _, err := LoadTopicRows(xlsx); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("Unsupported format should be ErrInvalidConfig, got %v", err)
	}

	scalar := filepath.Join(tmpDir, "scalar.yaml")
	writeFile(t, scalar, "just a string\n")
	if _, err := LoadTopicRows(scalar); !errors.Is(err, internalerr.ErrMalformedTable) {
		t.Errorf("Scalar document should be ErrMalformedTable, got %v", err)
	}

	unnamed := filepath.Join(tmpDir, "unnamed.csv")
	writeFile(t, unnamed, "santé,\nhôpital,orphelin\n")
	if _, err := LoadTopicRows(unnamed); !errors.Is(err, internalerr.ErrMalformedTable) {
		t.Errorf("Keyword under unnamed column should be ErrMalformedTable, got %v", err)
	}

	if _, err := LoadTopicRows(filepath.Join(tmpDir, "missing.yaml")); err == nil {
		t.Error("Should error on missing file")
	}
}
