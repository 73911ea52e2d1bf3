package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/cognicore/sezam/pkg/sezam/config"
	"github.com/cognicore/sezam/pkg/sezam/stoplist"
)

var (
	stopwordsData      string
	stopwordsStripHTML bool
	stopwordsMinDF     float64
	stopwordsMinDocs   int64
	stopwordsYAML      bool
)

var stopwordsCmd = &cobra.Command{
	Use:   "stopwords",
	Short: "Suggest corpus-specific stopwords",
	Long:  "Lists tokens found in more than --min-df-percent of the texts that are neither stopwords already nor trigger words.",
	Args:  cobra.NoArgs,
	RunE:  runStopwords,
}

func init() {
	th := stoplist.DefaultThresholds()
	f := stopwordsCmd.Flags()
	f.StringVarP(&stopwordsData, "data", "d", "", "JSONL file or glob")
	f.BoolVar(&stopwordsStripHTML, "strip-html", false, "Convert HTML bodies to text")
	f.Float64Var(&stopwordsMinDF, "min-df-percent", th.DFPercent, "Document frequency (%) above which a token is suggested")
	f.Int64Var(&stopwordsMinDocs, "min-docs", th.MinDocs, "Smallest corpus to draw suggestions from")
	f.BoolVar(&stopwordsYAML, "yaml", false, "Print the suggestions as a stoplist file")
	_ = stopwordsCmd.MarkFlagRequired("data")
}

func runStopwords(cmd *cobra.Command, args []string) error {
	records, err := loadRecords(stopwordsData, stopwordsStripHTML)
	if err != nil {
		return err
	}
	comp, err := loadComponents(cmd, titlesOf(records))
	if err != nil {
		return err
	}

	docs := make([][]string, len(records))
	for i := range records {
		docs[i] = append(
			strings.Fields(comp.Normalizer.NormalizeTitle(records[i].TitleOrEmpty())),
			strings.Fields(comp.Normalizer.Normalize(records[i].TextOrEmpty()))...)
	}

	protected := make(map[string]struct{})
	for _, row := range comp.Table.Rows() {
		for _, w := range row.Words {
			protected[w] = struct{}{}
		}
	}

	mgr := stoplist.NewManager(comp.Stopwords)
	candidates := mgr.SuggestCandidates(
		stoplist.DocumentFrequencies(docs),
		int64(len(docs)),
		protected,
		stoplist.Thresholds{DFPercent: stopwordsMinDF, MinDocs: stopwordsMinDocs},
	)

	out := cmd.OutOrStdout()
	if stopwordsYAML {
		sl := config.Stoplist{Terms: make([]string, len(candidates))}
		for i, c := range candidates {
			sl.Terms[i] = c.Token
		}
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(sl); err != nil {
			return err
		}
		return enc.Close()
	}

	if len(candidates) == 0 {
		fmt.Fprintf(out, "No stopword candidate in %d texts.\n", len(docs))
		return nil
	}
	for _, c := range candidates {
		fmt.Fprintf(out, "%-24s %5.1f%%\n", c.Token, c.Reason.DFPercent)
	}
	return nil
}
