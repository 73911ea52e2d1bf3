package cmd

import (
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cognicore/sezam/pkg/sezam"
	"github.com/cognicore/sezam/pkg/sezam/store"
	"github.com/cognicore/sezam/pkg/sezam/topics"
)

var matchTitle string

var matchCmd = &cobra.Command{
	Use:   "match [text ...]",
	Short: "Print the trigger words and topics of one text",
	Long: "Normalizes the body given as arguments (or read from stdin) and prints its words and topics as JSON. " +
		"With --title, the title is law masked with the kinds of the last classify run and matched with the body, as classify does.",
	Args: cobra.ArbitraryArgs,
	RunE: runMatch,
}

func init() {
	matchCmd.Flags().StringVar(&matchTitle, "title", "", "Title to match together with the body")
}

func runMatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	titled := flagChanged(cmd, "title")

	text := strings.Join(args, " ")
	if (len(args) == 0 && !titled) || text == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return err
		}
		text = string(data)
	}

	comp, err := loadComponents(cmd, nil)
	if err != nil {
		return err
	}
	// Bodies are never masked, so the store is only needed for a title.
	var st store.Store
	if titled {
		if st, err = openStore(ctx, comp.Settings); err != nil {
			return err
		}
		if err := withStoredLawKinds(ctx, comp, st); err != nil {
			st.Close()
			return err
		}
	}
	c := sezam.New(sezam.Options{
		Store:      st,
		Normalizer: comp.Normalizer,
		Matcher:    comp.Matcher,
		Logger:     slog.Default(),
	})
	defer c.Close()

	var res topics.Result
	if titled {
		res, err = c.PointPredictRecord(ctx, matchTitle, text)
	} else {
		res, err = c.PointPredict(text)
	}
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), res)
}
