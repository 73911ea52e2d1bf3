package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/cognicore/sezam/pkg/sezam"
)

var (
	classifyData      string
	classifyStripHTML bool
	classifyDropDup   bool
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Match a corpus against the topic table and store the results",
	Long:  "Loads JSONL records, normalizes titles and bodies, finds their trigger words and topics, and stores them with a run summary.",
	Args:  cobra.NoArgs,
	RunE:  runClassify,
}

func init() {
	f := classifyCmd.Flags()
	f.StringVarP(&classifyData, "data", "d", "", "JSONL file or glob, e.g. 'exports/**/*.jsonl'")
	f.BoolVar(&classifyStripHTML, "strip-html", false, "Convert HTML bodies to text")
	f.BoolVar(&classifyDropDup, "drop-duplicates", false, "Drop records whose normalized title was already seen (overrides settings)")
	_ = classifyCmd.MarkFlagRequired("data")
}

func runClassify(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	records, err := loadRecords(classifyData, classifyStripHTML)
	if err != nil {
		return err
	}
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

	drop := comp.Settings.DropDuplicates
	if flagChanged(cmd, "drop-duplicates") {
		drop = classifyDropDup
	}

	c := sezam.New(sezam.Options{
		Store:          st,
		Normalizer:     comp.Normalizer,
		Matcher:        comp.Matcher,
		Logger:         slog.Default(),
		DropDuplicates: drop,
	})
	defer c.Close()

	report, err := c.Classify(ctx, records)
	if err != nil {
		return fmt.Errorf("classify: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d stored, %d with topics, %d failed, %d duplicates\n",
		report.RunID, report.Docs, report.Matched, report.Failed(), report.Duplicates)
	return nil
}
