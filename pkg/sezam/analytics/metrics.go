package analytics

import (
	"fmt"

	"github.com/cognicore/sezam/pkg/sezam/internalerr"
)

// Scores compares predicted topic sets against gold topic sets. The label
// space is every topic seen in either.
type Scores struct {
	Samples        int     `json:"samples"`
	Labels         int     `json:"labels"`
	SubsetAccuracy float64 `json:"subset_accuracy"` // exact set matches
	HammingLoss    float64 `json:"hamming_loss"`    // wrong (sample, label) cells
	HammingScore   float64 `json:"hamming_score"`   // mean Jaccard, 1 when both sets are empty
	F1Micro        float64 `json:"f1_micro"`
	F1Macro        float64 `json:"f1_macro"`
}

type labelCounts struct{ tp, fp, fn int }

// Evaluate scores pred against gold, sample by sample.
func Evaluate(gold, pred [][]string) (Scores, error) {
	if len(gold) != len(pred) {
		return Scores{}, fmt.Errorf("%w: %d gold samples for %d predictions",
			internalerr.ErrInvalidInput, len(gold), len(pred))
	}
	if len(gold) == 0 {
		return Scores{}, fmt.Errorf("%w: nothing to evaluate", internalerr.ErrInvalidInput)
	}

	perLabel := make(map[string]*labelCounts)
	counts := func(l string) *labelCounts {
		c, ok := perLabel[l]
		if !ok {
			c = &labelCounts{}
			perLabel[l] = c
		}
		return c
	}

	var (
		exact    int
		wrong    int
		jaccards float64
	)
	for i := range gold {
		g, p := toSet(gold[i]), toSet(pred[i])

		inter := 0
		for l := range g {
			if _, ok := p[l]; ok {
				inter++
				counts(l).tp++
			} else {
				counts(l).fn++
			}
		}
		for l := range p {
			if _, ok := g[l]; !ok {
				counts(l).fp++
			}
		}

		union := len(g) + len(p) - inter
		if union == 0 {
			jaccards++
		} else {
			jaccards += float64(inter) / float64(union)
		}
		if inter == len(g) && inter == len(p) {
			exact++
		}
		wrong += union - inter
	}

	n := len(gold)
	s := Scores{
		Samples:        n,
		Labels:         len(perLabel),
		SubsetAccuracy: float64(exact) / float64(n),
		HammingScore:   jaccards / float64(n),
	}
	if s.Labels > 0 {
		s.HammingLoss = float64(wrong) / float64(n*s.Labels)
	}

	var tp, fp, fn int
	var macro float64
	for _, c := range perLabel {
		tp, fp, fn = tp+c.tp, fp+c.fp, fn+c.fn
		macro += f1(c.tp, c.fp, c.fn)
	}
	s.F1Micro = f1(tp, fp, fn)
	if s.Labels > 0 {
		s.F1Macro = macro / float64(s.Labels)
	}
	return s, nil
}

// f1 is 2TP / (2TP + FP + FN), 0 when undefined.
func f1(tp, fp, fn int) float64 {
	d := 2*tp + fp + fn
	if d == 0 {
		return 0
	}
	return float64(2*tp) / float64(d)
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}
