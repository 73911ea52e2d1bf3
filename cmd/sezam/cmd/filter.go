package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cognicore/sezam/pkg/sezam/filter"
	"github.com/cognicore/sezam/pkg/sezam/normalize"
	"github.com/cognicore/sezam/pkg/sezam/topics"
)

var (
	filterTopic     string
	filterWords     []string
	filterEmetteurs []string
	filterNatures   []string
	filterLimit     int
	filterJSON      bool
)

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "List stored texts for a topic, words, emetteurs and natures",
	Long:  "Selects stored texts carrying the topic and every given word, issued by one of the emetteurs with one of the natures. Empty lists do not constrain.",
	Args:  cobra.NoArgs,
	RunE:  runFilter,
}

func init() {
	f := filterCmd.Flags()
	f.StringVarP(&filterTopic, "topic", "t", "", "Topic to select")
	f.StringArrayVarP(&filterWords, "word", "w", nil, "Trigger word that must be present (repeatable)")
	f.StringArrayVar(&filterEmetteurs, "emetteur", nil, "Accepted emetteur (repeatable)")
	f.StringArrayVar(&filterNatures, "nature", nil, "Accepted nature (repeatable)")
	f.IntVarP(&filterLimit, "limit", "n", filter.DefaultLimit, "Maximum texts to display")
	f.BoolVar(&filterJSON, "json", false, "JSON output")
	_ = filterCmd.MarkFlagRequired("topic")
}

// normalizeWords brings typed words to the stored vocabulary. Words that do
// not normalize to a single token are kept as typed so validation reports
// them.
func normalizeWords(n *normalize.Normalizer, words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = w
		if nw := n.Normalize(w); nw != "" && !strings.Contains(nw, " ") {
			out[i] = nw
		}
	}
	return out
}

func runFilter(cmd *cobra.Command, args []string) error {
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

	// Prefer the table the stored texts were classified with.
	table := comp.Table
	rows, err := st.TopicTable(ctx)
	if err != nil {
		return err
	}
	if len(rows) > 0 {
		trows := make([]topics.Row, len(rows))
		for i, r := range rows {
			trows[i] = topics.Row{Topic: r.Topic, Words: r.Words}
		}
		if table, err = topics.FromRows(trows); err != nil {
			return err
		}
	}

	all, err := st.ListDocs(ctx)
	if err != nil {
		return err
	}
	facets := filter.BuildFacets(table, all)

	candidates, err := st.DocsByTopic(ctx, filterTopic, 0)
	if err != nil {
		return err
	}
	res, err := filter.Apply(candidates, facets, filter.Selection{
		Topic:     filterTopic,
		Words:     normalizeWords(comp.Normalizer, filterWords),
		Emetteurs: filterEmetteurs,
		Natures:   filterNatures,
		Limit:     filterLimit,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if filterJSON {
		return writeJSON(out, res)
	}
	if res.Total == 0 {
		fmt.Fprintln(out, "No documents matching selection.")
		return nil
	}
	fmt.Fprintf(out, "There are %d document(s) matching selection.\n", res.Total)
	fmt.Fprintf(out, "Displaying top %d texts:\n", len(res.Docs))
	for _, d := range res.Docs {
		fmt.Fprintf(out, "  %s  %s  %s\n", d.ID, d.Date, d.Title)
	}
	return nil
}
