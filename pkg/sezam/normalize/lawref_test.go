package normalize

import (
	"reflect"
	"testing"
)

func TestLearnLawKinds(t *testing.T) {
	titles := []string{
		"Arrêté du 4 octobre 2021 portant création d'une zone",
		"Décret n° 2021-1234 du 5 octobre 2021 relatif aux quotas",
		"arrêté du 6 octobre 2021 fixant les tarifs",
		"Avis aux importateurs",
	}

	got := LearnLawKinds(titles)
	want := []string{"arrêté", "décret"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("LearnLawKinds = %v, want %v", got, want)
	}
}

func TestLawMaskerMask(t *testing.T) {
	m, err := NewLawMasker([]string{"arrêté", "décret", " "})
	if err != nil {
		t.Fatalf("NewLawMasker: %v", err)
	}
	if !reflect.DeepEqual(m.Kinds(), []string{"arrêté", "décret"}) {
		t.Errorf("Kinds = %v", m.Kinds())
	}

	tests := []struct {
		in   string
		want string
	}{
		{"Arrêté du 4 octobre 2021 portant création", "<LOI> portant création"},
		{"Décret n° 2021-1234 du 5 octobre 2021 relatif aux quotas", "<LOI> relatif aux quotas"},
		{"Avis aux importateurs", "Avis aux importateurs"},
		{"Loi du 2 mars 2021 relative", "Loi du 2 mars 2021 relative"},
	}
	for _, tt := range tests {
		if got := m.Mask(tt.in); got != tt.want {
			t.Errorf("Mask(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLawMaskerWholeWords(t *testing.T) {
	m, err := NewLawMasker([]string{"loi"})
	if err != nil {
		t.Fatalf("NewLawMasker: %v", err)
	}

	tests := []struct {
		in   string
		want string
	}{
		{"Loi du 2 mars 2021 relative au travail", "<LOI> relative au travail"},
		{"Vu la loi n° 2021-12 du 2 mars 2021 relative", "Vu la <LOI> relative"},
		{"Loi 2021 relative", "<LOI> relative"},
		{"Mesures pour l'emploi des jeunes en 2021 selon le plan", "Mesures pour l'emploi des jeunes en 2021 selon le plan"},
		{"Activités de loisirs 2021 en mer", "Activités de loisirs 2021 en mer"},
		{"l'loi du 2 mars 2021 suite", "l'<LOI> suite"},
	}
	for _, tt := range tests {
		if got := m.Mask(tt.in); got != tt.want {
			t.Errorf("Mask(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	var none *LawMasker
	if got := none.Mask("Loi du 2 mars 2021 relative"); got != "Loi du 2 mars 2021 relative" {
		t.Errorf("nil masker changed text: %q", got)
	}
}

func TestMergeLawKinds(t *testing.T) {
	got := MergeLawKinds([]string{"Décret", "arrêté"}, nil, []string{" loi ", "décret", ""})
	want := []string{"arrêté", "décret", "loi"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MergeLawKinds = %v, want %v", got, want)
	}
}
