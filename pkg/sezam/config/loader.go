package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/cognicore/sezam/pkg/sezam/internalerr"
	"github.com/cognicore/sezam/pkg/sezam/normalize"
	"github.com/cognicore/sezam/pkg/sezam/stoplist"
	"github.com/cognicore/sezam/pkg/sezam/topics"
)

// Loader loads all configuration files and constructs components.
// StoplistPath and TopicsPath override the settings file when set.
type Loader struct {
	SettingsPath string
	StoplistPath string
	TopicsPath   string

	// Titles are scanned for law kinds when law reference masking is on
	// and the settings list none.
	Titles []string
	// LawKinds are kinds kept by an earlier run. They are merged with the
	// ones learned from Titles.
	LawKinds []string

	Logger *slog.Logger
}

// Components holds all loaded configuration components
type Components struct {
	Settings   Settings
	Stopwords  []string
	Normalizer *normalize.Normalizer
	Table      *topics.Table
	Matcher    *topics.Matcher

	normOpts normalize.Options
}

// UseLawKinds rebuilds the normalizer so that titles are masked with kinds.
// It is a no-op when masking is off or the settings pin the kinds.
func (c *Components) UseLawKinds(kinds []string) error {
	n := c.Settings.Normalize
	if !n.MaskLawRefs || len(n.LawKinds) > 0 {
		return nil
	}
	masker, err := normalize.NewLawMasker(normalize.MergeLawKinds(kinds))
	if err != nil {
		return fmt.Errorf("law masker: %w", err)
	}
	opts := c.normOpts
	opts.LawMasker = masker
	c.normOpts = opts
	c.Normalizer = normalize.New(opts)
	return nil
}

// Load reads all configuration files and returns initialized components
func (l *Loader) Load() (*Components, error) {
	log := l.Logger
	if log == nil {
		log = slog.Default()
	}

	settings := DefaultSettings()
	if l.SettingsPath != "" {
		s, err := LoadSettings(l.SettingsPath)
		if err != nil {
			return nil, fmt.Errorf("load settings: %w", err)
		}
		settings = s
	}
	if l.StoplistPath != "" {
		settings.Stoplist = l.StoplistPath
	}
	if l.TopicsPath != "" {
		settings.Topics = l.TopicsPath
	}

	comp := &Components{Settings: settings}

	// Stopwords: builtin French list plus the project list
	var builtin []string
	if settings.BuiltinStopwords {
		builtin = stoplist.French()
	}
	stops := stoplist.NewManager(builtin)
	if settings.Stoplist != "" {
		sl, err := LoadStoplist(settings.Stoplist)
		if err != nil {
			return nil, fmt.Errorf("load stoplist: %w", err)
		}
		for _, term := range sl.Terms {
			stops.Add(strings.ToLower(strings.TrimSpace(term)), stoplist.Reason{})
		}
	}
	comp.Stopwords = stops.All()

	// Normalizer
	opts := normalize.Options{
		Stopwords:   comp.Stopwords,
		FoldAccents: settings.Normalize.FoldAccents,
		KeepDigits:  settings.Normalize.KeepDigits,
	}
	if settings.Normalize.MaskLawRefs {
		kinds := settings.Normalize.LawKinds
		if len(kinds) == 0 {
			kinds = normalize.MergeLawKinds(l.LawKinds, normalize.LearnLawKinds(l.Titles))
		}
		masker, err := normalize.NewLawMasker(kinds)
		if err != nil {
			return nil, fmt.Errorf("law masker: %w", err)
		}
		log.Debug("law reference masking", "kinds", masker.Kinds())
		opts.LawMasker = masker
	}
	comp.normOpts = opts
	comp.Normalizer = normalize.New(opts)

	// Topic table
	var (
		rows []topics.Row
		err  error
	)
	if settings.Topics != "" {
		var raw []topics.Row
		raw, err = LoadTopicRows(settings.Topics)
		if err != nil {
			return nil, fmt.Errorf("load topics: %w", err)
		}
		rows, err = normalizeRows(raw, comp.Normalizer, settings.StrictTopics, log)
		if err != nil {
			return nil, fmt.Errorf("load topics: %w", err)
		}
	} else {
		log.Warn("no topic table configured, nothing will match")
	}
	table, err := topics.FromRows(rows)
	if err != nil {
		return nil, fmt.Errorf("build topic table: %w", err)
	}
	comp.Table = table
	comp.Matcher = topics.NewMatcher(table, topics.WithWorkers(settings.Workers))

	log.Debug("configuration loaded",
		"topics", len(table.Topics()),
		"rows", table.Len(),
		"stopwords", len(comp.Stopwords))
	return comp, nil
}

// normalizeRows passes every trigger word through n so that it compares
// equal to document tokens. Words that vanish (stopwords, digits) or split
// into several tokens can never match a single token: they are dropped with
// a warning, or rejected with ErrMalformedTable when strict.
func normalizeRows(rows []topics.Row, n *normalize.Normalizer, strict bool, log *slog.Logger) ([]topics.Row, error) {
	out := make([]topics.Row, 0, len(rows))
	for _, r := range rows {
		row := topics.Row{Topic: strings.TrimSpace(r.Topic)}
		for _, w := range r.Words {
			nw := n.Normalize(w)
			var problem string
			switch {
			case nw == "":
				problem = "empty after normalization"
			case strings.Contains(nw, " "):
				problem = "several tokens after normalization"
			default:
				row.Words = append(row.Words, nw)
				continue
			}
			if strict {
				return nil, fmt.Errorf("%w: topic %q keyword %q: %s", internalerr.ErrMalformedTable, row.Topic, w, problem)
			}
			log.Warn("dropping keyword: "+problem, "topic", row.Topic, "keyword", w, "normalized", nw)
		}
		if len(r.Words) > 0 && len(row.Words) == 0 {
			log.Warn("topic has no usable keyword", "topic", row.Topic)
		}
		out = append(out, row)
	}
	return out, nil
}
