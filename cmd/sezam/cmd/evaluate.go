package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/cognicore/sezam/pkg/sezam"
	"github.com/cognicore/sezam/pkg/sezam/analytics"
	"github.com/cognicore/sezam/pkg/sezam/corpus"
)

var (
	evaluateData      string
	evaluateStripHTML bool
	evaluateJSON      bool
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score predicted topics against the subjects of labelled records",
	Long:  "Predicts the topics of every record carrying subjects and reports subset accuracy, hamming loss, label-based accuracy and F1 scores.",
	Args:  cobra.NoArgs,
	RunE:  runEvaluate,
}

func init() {
	f := evaluateCmd.Flags()
	f.StringVarP(&evaluateData, "data", "d", "", "Labelled JSONL file or glob")
	f.BoolVar(&evaluateStripHTML, "strip-html", false, "Convert HTML bodies to text")
	f.BoolVar(&evaluateJSON, "json", false, "JSON output")
	_ = evaluateCmd.MarkFlagRequired("data")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	records, err := loadRecords(evaluateData, evaluateStripHTML)
	if err != nil {
		return err
	}
	var labelled []corpus.Record
	for _, r := range records {
		if len(r.Subjects) > 0 {
			labelled = append(labelled, r)
		}
	}
	if len(labelled) == 0 {
		return fmt.Errorf("no record in %s carries subjects", evaluateData)
	}

	ctx := cmd.Context()
	comp, err := loadComponents(cmd, titlesOf(records))
	if err != nil {
		return err
	}
	st, err := openStore(ctx, comp.Settings)
	if err != nil {
		return err
	}
	if err := withStoredLawKinds(ctx, comp, st); err != nil {
		st.Close()
		return err
	}
	c := sezam.New(sezam.Options{
		Store:      st,
		Normalizer: comp.Normalizer,
		Matcher:    comp.Matcher,
		Logger:     slog.Default(),
	})
	defer c.Close()

	res, err := c.Predict(ctx, labelled)
	if err != nil {
		return err
	}
	for _, f := range res.Failures {
		slog.Warn("record not matched", "id", labelled[f.Index].ID, "column", f.Column, "err", f.Err)
	}

	gold := make([][]string, len(labelled))
	for i, r := range labelled {
		gold[i] = r.Subjects
	}
	scores, err := analytics.Evaluate(gold, res.Topics)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if evaluateJSON {
		return writeJSON(out, scores)
	}
	fmt.Fprintf(out, "Samples: %d, labels: %d\n", scores.Samples, scores.Labels)
	fmt.Fprintf(out, "Hamming loss (misclassification ratio): %.4f\n", scores.HammingLoss)
	fmt.Fprintf(out, "Label-based accuracy: %.4f\n", scores.HammingScore)
	fmt.Fprintf(out, "Subset accuracy: %.4f\n", scores.SubsetAccuracy)
	fmt.Fprintf(out, "F1-score micro: %.4f\n", scores.F1Micro)
	fmt.Fprintf(out, "F1-score macro: %.4f\n", scores.F1Macro)
	return nil
}
