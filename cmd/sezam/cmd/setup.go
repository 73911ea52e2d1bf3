package cmd

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/cognicore/sezam/pkg/sezam/config"
	"github.com/cognicore/sezam/pkg/sezam/corpus"
	"github.com/cognicore/sezam/pkg/sezam/normalize"
	"github.com/cognicore/sezam/pkg/sezam/store"
	"github.com/cognicore/sezam/pkg/sezam/store/open"
	"github.com/cognicore/sezam/pkg/sezam/topics"
)

func flagChanged(cmd *cobra.Command, name string) bool {
	f := cmd.Flag(name)
	return f != nil && f.Changed
}

// loadComponents loads the settings, stoplist and topic table, then applies
// the command line overrides. titles feed law kind learning.
func loadComponents(cmd *cobra.Command, titles []string) (*config.Components, error) {
	loader := config.Loader{
		SettingsPath: configPath,
		StoplistPath: stoplistPath,
		TopicsPath:   topicsPath,
		Titles:       titles,
		Logger:       slog.Default(),
	}
	comp, err := loader.Load()
	if err != nil {
		return nil, err
	}

	if flagChanged(cmd, "store") {
		comp.Settings.Store = storeDriver
	}
	if flagChanged(cmd, "db") {
		comp.Settings.DB = dbPath
	}
	if flagChanged(cmd, "workers") {
		comp.Settings.Workers = workers
		comp.Matcher = topics.NewMatcher(comp.Table, topics.WithWorkers(workers))
	}
	if err := comp.Settings.Validate(); err != nil {
		return nil, err
	}
	return comp, nil
}

func openStore(ctx context.Context, s config.Settings) (store.Store, error) {
	return open.Store(ctx, s.Store, s.DB)
}

// withStoredLawKinds adds the law kinds kept by earlier runs to the ones comp
// already masks, so every command masks titles the way classify stored them.
func withStoredLawKinds(ctx context.Context, comp *config.Components, st store.Store) error {
	stored, err := st.LawKinds(ctx)
	if err != nil {
		return err
	}
	if err := comp.UseLawKinds(normalize.MergeLawKinds(comp.Normalizer.LawKinds(), stored)); err != nil {
		return err
	}
	slog.Debug("law kinds", "kinds", comp.Normalizer.LawKinds())
	return nil
}

func loadRecords(pattern string, stripHTML bool) ([]corpus.Record, error) {
	records, err := corpus.LoadGlob(pattern, corpus.LoadOptions{StripHTML: stripHTML, Logger: slog.Default()})
	if err != nil {
		return nil, err
	}
	slog.Info("records loaded", "count", len(records), "data", pattern)
	return records, nil
}

func titlesOf(records []corpus.Record) []string {
	out := make([]string, len(records))
	for i := range records {
		out[i] = records[i].TitleOrEmpty()
	}
	return out
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
