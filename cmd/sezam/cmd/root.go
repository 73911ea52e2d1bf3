package cmd

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
)

var (
	configPath   string
	verbose      bool
	storeDriver  string
	dbPath       string
	topicsPath   string
	stoplistPath string
	workers      int
)

var rootCmd = &cobra.Command{
	Use:          "sezam",
	Short:        "sezam: topic finder for French legal texts",
	Long:         "Match Légifrance and EUR-Lex texts against a curated topic → trigger words table, store the results and explore them.",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		slog.SetDefault(newLogger(cmd.ErrOrStderr(), verbose))
	},
}

func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "Settings file (sezam.yaml)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
	pf.StringVar(&storeDriver, "store", "", "Store driver: sqlite, bolt or memory (overrides settings)")
	pf.StringVar(&dbPath, "db", "", "Database path (overrides settings)")
	pf.StringVar(&topicsPath, "topics", "", "Topic table: .yaml, .toml or wide .csv (overrides settings)")
	pf.StringVar(&stoplistPath, "stoplist", "", "Stoplist YAML (overrides settings)")
	pf.IntVar(&workers, "workers", 0, "Matching goroutines, 0 for GOMAXPROCS (overrides settings)")

	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(filterCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(stopwordsCmd)
}
