package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/sezam/pkg/sezam/internalerr"
	"github.com/cognicore/sezam/pkg/sezam/store/open"
)

// Settings is the sezam.yaml run configuration. StrictTopics rejects
// trigger words that cannot match a single token instead of dropping them.
type Settings struct {
	Topics           string    `yaml:"topics"`
	Stoplist         string    `yaml:"stoplist"`
	BuiltinStopwords bool      `yaml:"builtin_stopwords"`
	Store            string    `yaml:"store"`
	DB               string    `yaml:"db"`
	Workers          int       `yaml:"workers"`
	DropDuplicates   bool      `yaml:"drop_duplicates"`
	StrictTopics     bool      `yaml:"strict_topics"`
	Normalize        Normalize `yaml:"normalize"`
}

// Normalize holds the text normalization switches.
type Normalize struct {
	FoldAccents bool     `yaml:"fold_accents"`
	KeepDigits  bool     `yaml:"keep_digits"`
	MaskLawRefs bool     `yaml:"mask_law_refs"`
	LawKinds    []string `yaml:"law_kinds"`
}

// DefaultSettings returns the settings used when no file is given.
func DefaultSettings() Settings {
	return Settings{
		BuiltinStopwords: true,
		Store:            open.DriverSQLite,
		DB:               "sezam.db",
	}
}

// LoadSettings loads settings from a YAML file on top of DefaultSettings.
// Relative paths in the file are resolved against the file's directory.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("%w: %s: %v", internalerr.ErrInvalidConfig, path, err)
	}

	dir := filepath.Dir(path)
	s.Topics = resolve(dir, s.Topics)
	s.Stoplist = resolve(dir, s.Stoplist)
	if s.Store != open.DriverMemory {
		s.DB = resolve(dir, s.DB)
	}

	if err := s.Validate(); err != nil {
		return s, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Validate checks the store driver and worker count.
func (s Settings) Validate() error {
	switch s.Store {
	case "", open.DriverSQLite, open.DriverBolt, open.DriverMemory:
	default:
		return fmt.Errorf("%w: unknown store %q", internalerr.ErrInvalidConfig, s.Store)
	}
	if s.Workers < 0 {
		return fmt.Errorf("%w: workers must be >= 0", internalerr.ErrInvalidConfig)
	}
	return nil
}

func resolve(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

// Stoplist represents the stopword list configuration
type Stoplist struct {
	Terms []string `yaml:"terms"`
}

// LoadStoplist loads stopwords from a YAML file
func LoadStoplist(path string) (*Stoplist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sl Stoplist
	if err := yaml.Unmarshal(data, &sl); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", internalerr.ErrInvalidConfig, path, err)
	}

	return &sl, nil
}
