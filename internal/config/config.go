package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"
	"unicode/utf8"

	"github.com/spf13/viper"
)

//go:embed default.yaml
var defaultConfig []byte

// EnvPrefix is the prefix for environment overrides, e.g. SPIELPLAN_DATA_DIR.
const EnvPrefix = "SPIELPLAN"

// RuleKind selects how a source assigns team codes
type RuleKind string

const (
	RuleFixed    RuleKind = "fixed"
	RuleNumeral  RuleKind = "numeral"
	RuleAgeGroup RuleKind = "agegroup"
)

// Source formats
const (
	FormatCSV = "csv"
	FormatICS = "ics"
)

// Config is the complete generation configuration
type Config struct {
	DataDir     string              `mapstructure:"data_dir"`
	Timezone    string              `mapstructure:"timezone"`
	Delimiter   string              `mapstructure:"delimiter"`
	DropUndated bool                `mapstructure:"drop_undated"`
	Encodings   []string            `mapstructure:"encodings"`
	Time        TimeConfig          `mapstructure:"time"`
	Club        Club                `mapstructure:"club"`
	Fetch       FetchConfig         `mapstructure:"fetch"`
	Columns     map[string][]string `mapstructure:"columns"`
	Sources     []Source            `mapstructure:"sources"`
	Teams       []Team              `mapstructure:"teams"`
}

// TimeConfig controls kickoff time display
type TimeConfig struct {
	OpenMarker     string `mapstructure:"open_marker"`
	MidnightIsOpen bool   `mapstructure:"midnight_is_open"`
}

// Club describes how the club appears in league exports
type Club struct {
	// Keywords select rows, matched as case-insensitive substrings.
	Keywords []string `mapstructure:"keywords"`
	// Names are the long-form spellings replaced by team codes.
	Names []string `mapstructure:"names"`
	// CodePrefix forms the numbered team codes, e.g. "USC" gives "USC1".."USC8".
	CodePrefix string `mapstructure:"code_prefix"`
}

// FetchConfig controls downloads of sources given by URL
type FetchConfig struct {
	Attempts  int           `mapstructure:"attempts"`
	Delay     time.Duration `mapstructure:"delay"`
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

// Source is one league export
type Source struct {
	ID       string         `mapstructure:"id"`
	Path     string         `mapstructure:"path"`
	URL      string         `mapstructure:"url"`
	Format   string         `mapstructure:"format"`
	Required bool           `mapstructure:"required"`
	TeamCode string         `mapstructure:"team_code"`
	Rule     Rule           `mapstructure:"rule"`
	Calendar CalendarConfig `mapstructure:"calendar"`
}

// Rule assigns team codes for tables covering more than one club team
type Rule struct {
	Kind     RuleKind       `mapstructure:"kind"`
	Numerals []NumeralCode  `mapstructure:"numerals"`
	Combined string         `mapstructure:"combined"`
	Prefix   string         `mapstructure:"prefix"`
	Suffix   string         `mapstructure:"suffix"`
	// SuffixLen is how many trailing characters of the round label name the age group.
	SuffixLen int `mapstructure:"suffix_len"`
}

// NumeralCode maps a roman numeral team suffix to its code
type NumeralCode struct {
	Numeral string `mapstructure:"numeral"`
	Code    string `mapstructure:"code"`
}

// CalendarConfig describes how VEVENTs of an iCalendar source map to rows
type CalendarConfig struct {
	Separators []string `mapstructure:"separators"`
	HomeTeam   string   `mapstructure:"home_team"`
	OpenPhrase string   `mapstructure:"open_phrase"`
	Round      string   `mapstructure:"round"`
	Host       string   `mapstructure:"host"`
}

// Team holds display metadata for one club team
type Team struct {
	Code   string `mapstructure:"code" json:"code"`
	Name   string `mapstructure:"name" json:"name"`
	League string `mapstructure:"league" json:"league,omitempty"`
	URL    string `mapstructure:"url" json:"url,omitempty"`
	Order  int    `mapstructure:"order" json:"order"`
	// Alias is the generic code an age-group team shows up as, e.g. "USC1".
	Alias string `mapstructure:"alias" json:"-"`
}

// Default returns the embedded configuration.
func Default() (*Config, error) {
	return Load("")
}

// Load reads the embedded defaults and merges the optional file at path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaultConfig)); err != nil {
		return nil, fmt.Errorf("reading default config: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if ext := strings.TrimPrefix(filepath.Ext(path), "."); ext != "" {
			v.SetConfigType(ext)
		}
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills optional fields left empty by the user file
func (c *Config) applyDefaults() {
	if c.Delimiter == "" {
		c.Delimiter = ";"
	}
	if c.Timezone == "" {
		c.Timezone = "Europe/Berlin"
	}
	if c.Fetch.Attempts <= 0 {
		c.Fetch.Attempts = 1
	}
	for i := range c.Sources {
		src := &c.Sources[i]
		if src.Format == "" {
			src.Format = FormatCSV
			if strings.EqualFold(filepath.Ext(src.Path), ".ics") {
				src.Format = FormatICS
			}
		}
		if src.Rule.Kind == "" {
			src.Rule.Kind = RuleFixed
		}
		if src.Rule.Kind == RuleAgeGroup && src.Rule.SuffixLen <= 0 {
			src.Rule.SuffixLen = 3
		}
	}
}

// Comma returns the field delimiter as a rune.
func (c *Config) Comma() rune {
	r, _ := utf8.DecodeRuneInString(c.Delimiter)
	return r
}

// Location loads the configured time zone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading time zone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// ResolvePath returns the file path of a source, relative paths taken
// from the data directory. A leading ~/ expands to the home directory.
func (c *Config) ResolvePath(src Source) (string, error) {
	if filepath.IsAbs(src.Path) {
		return src.Path, nil
	}

	dataDir := c.DataDir
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}
	return filepath.Join(dataDir, src.Path), nil
}

// Team returns the metadata for code, if any.
func (c *Config) Team(code string) (Team, bool) {
	for _, t := range c.Teams {
		if strings.EqualFold(t.Code, code) {
			return t, true
		}
	}
	return Team{}, false
}
