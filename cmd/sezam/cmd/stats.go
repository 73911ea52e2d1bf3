package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cognicore/sezam/pkg/sezam/analytics"
)

var (
	statsTop  int
	statsJSON bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show topic and trigger word coverage of the stored texts",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().IntVar(&statsTop, "top", 20, "Trigger words to list")
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "JSON output")
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	comp, err := loadComponents(cmd, nil)
	if err != nil {
		return err
	}
	st, err := openStore(ctx, comp.Settings)
	if err != nil {
		return err
	}
	defer st.Close()

	docs, err := st.ListDocs(ctx)
	if err != nil {
		return err
	}
	report := analytics.Coverage(docs)

	out := cmd.OutOrStdout()
	if statsJSON {
		return writeJSON(out, report)
	}

	fmt.Fprintf(out, "%d texts, %d without topic\n\n", report.TotalDocs, report.Unmatched)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TOPIC\tTEXTS\tSHARE")
	for _, c := range report.Topics {
		fmt.Fprintf(tw, "%s\t%d\t%.1f%%\n", c.Name, c.Docs, c.Percent)
	}
	fmt.Fprintln(tw, "\t\t")
	fmt.Fprintln(tw, "WORD\tTEXTS\tSHARE")
	for i, c := range report.Words {
		if i == statsTop {
			break
		}
		fmt.Fprintf(tw, "%s\t%d\t%.1f%%\n", c.Name, c.Docs, c.Percent)
	}
	return tw.Flush()
}
