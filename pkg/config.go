package dupescan

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-ini/ini"
	"github.com/kelseyhightower/envconfig"
)

// Settings holds the effective configuration for a scan after all
// sources have been layered. Precedence, lowest to highest: built-in
// defaults, config file, DUPESCAN_* environment variables, command
// line flags (applied by the caller).
type Settings struct {
	// HashName selects the digest algorithm (sha1, sha256, sha512).
	HashName string

	// ChunkSize is the number of bytes read per I/O call and the size
	// of the prefix-phase sample. Must be positive.
	ChunkSize int

	// Workers bounds concurrent file hashing within a phase. Must be
	// positive. I/O-bound hashing benefits from exceeding core count.
	Workers int

	// Format selects the report output format (human, json).
	Format string

	// Exclude holds regular expressions matched against root-relative
	// paths; matching entries are neither traversed nor indexed.
	Exclude []string

	// SkipHardLinks drops files whose device/inode pair was already
	// indexed under another path. Hard-linked aliases share storage and
	// are trivially content-identical, so some users prefer them out of
	// the report.
	SkipHardLinks bool
}

// DefaultSettings returns the built-in defaults.
func DefaultSettings() *Settings {
	return &Settings{
		HashName:  DefaultHashName,
		ChunkSize: DefaultChunkSize,
		Workers:   DefaultHashWorkers,
		Format:    DefaultOutputFormat,
	}
}

// Validate checks the settings before any work starts. Violations are
// fatal configuration errors.
func (s *Settings) Validate() error {
	if s.ChunkSize <= 0 {
		return &InvalidConfigError{
			Option: "chunk_size",
			Value:  fmt.Sprintf("%d", s.ChunkSize),
			Reason: "must be a positive number of bytes",
		}
	}
	if s.Workers <= 0 {
		return &InvalidConfigError{
			Option: "workers",
			Value:  fmt.Sprintf("%d", s.Workers),
			Reason: "must be a positive worker count",
		}
	}
	if _, err := GetHashAlgorithm(s.HashName); err != nil {
		return &InvalidConfigError{
			Option: "hash",
			Value:  s.HashName,
			Reason: "unsupported hash algorithm",
		}
	}
	switch s.Format {
	case OutputFormatHuman, OutputFormatJSON:
	default:
		return &InvalidConfigError{
			Option: "format",
			Value:  s.Format,
			Reason: "must be one of: human, json",
		}
	}
	if _, err := NewExcludeMatcher(s.Exclude); err != nil {
		return &InvalidConfigError{
			Option: "exclude",
			Value:  strings.Join(s.Exclude, ","),
			Reason: err.Error(),
		}
	}
	return nil
}

// Config represents the dupescan configuration file
type Config struct {
	configPath string
	ini        *ini.File
}

// DefaultConfigPath returns the per-user config file location, or an
// empty string when the home directory cannot be determined.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".dupescan", "config")
}

// LoadConfig loads configuration from an INI file. A missing file is
// not an error: the returned Config simply contributes nothing to the
// layering.
func LoadConfig(configPath string) (*Config, error) {
	cfg := &Config{
		configPath: configPath,
	}

	if configPath == "" {
		cfg.ini = ini.Empty()
		return cfg, nil
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg.ini = ini.Empty()
		return cfg, nil
	}

	iniFile, err := ini.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}
	cfg.ini = iniFile

	return cfg, nil
}

// apply copies configured keys onto the settings, leaving unset keys alone.
func (c *Config) apply(s *Settings) error {
	if c.ini.HasSection("filehash") {
		section := c.ini.Section("filehash")
		if section.HasKey("default") {
			s.HashName = section.Key("default").String()
		}
	}

	if c.ini.HasSection("output") {
		section := c.ini.Section("output")
		if section.HasKey("format") {
			s.Format = section.Key("format").String()
		}
	}

	if c.ini.HasSection("performance") {
		section := c.ini.Section("performance")
		if section.HasKey("workers") {
			if workers, err := section.Key("workers").Int(); err == nil {
				s.Workers = workers
			}
		}
		if section.HasKey("chunk_size") {
			chunkSize, err := ParseHumanSize(section.Key("chunk_size").String())
			if err != nil {
				return &InvalidConfigError{
					Option: "chunk_size",
					Value:  section.Key("chunk_size").String(),
					Reason: err.Error(),
				}
			}
			s.ChunkSize = chunkSize
		}
	}

	if c.ini.HasSection("scan") {
		section := c.ini.Section("scan")
		if section.HasKey("exclude") {
			s.Exclude = splitPatterns(section.Key("exclude").String())
		}
		if section.HasKey("skip_hardlinks") {
			if skip, err := section.Key("skip_hardlinks").Bool(); err == nil {
				s.SkipHardLinks = skip
			}
		}
	}

	if c.ini.HasSection("verbose") {
		section := c.ini.Section("verbose")
		if section.HasKey("level") {
			if level, err := section.Key("level").Int(); err == nil {
				SetVerboseLevel(level)
			}
		}
		if section.HasKey("debug") {
			SetDebugFlags(section.Key("debug").String())
		}
	}

	return nil
}

// envOverrides maps DUPESCAN_* environment variables onto settings.
// Pointer fields distinguish "unset" from zero values.
type envOverrides struct {
	Hash          string `envconfig:"HASH"`
	ChunkSize     string `envconfig:"CHUNK_SIZE"`
	Workers       *int   `envconfig:"WORKERS"`
	Format        string `envconfig:"FORMAT"`
	Exclude       string `envconfig:"EXCLUDE"`
	SkipHardLinks *bool  `envconfig:"SKIP_HARDLINKS"`
	Verbose       *int   `envconfig:"VERBOSE"`
}

// ResolveSettings builds the effective settings from defaults, the
// config file, and the environment, in that order. Flags are layered
// on top by the CLI. The result is not yet validated: callers apply
// their own overrides first and then call Validate.
func ResolveSettings(cfg *Config) (*Settings, error) {
	s := DefaultSettings()

	if cfg != nil {
		if err := cfg.apply(s); err != nil {
			return nil, err
		}
	}

	var env envOverrides
	if err := envconfig.Process("dupescan", &env); err != nil {
		return nil, fmt.Errorf("failed to read environment overrides: %w", err)
	}

	if env.Hash != "" {
		s.HashName = env.Hash
	}
	if env.ChunkSize != "" {
		chunkSize, err := ParseHumanSize(env.ChunkSize)
		if err != nil {
			return nil, &InvalidConfigError{
				Option: "DUPESCAN_CHUNK_SIZE",
				Value:  env.ChunkSize,
				Reason: err.Error(),
			}
		}
		s.ChunkSize = chunkSize
	}
	if env.Workers != nil {
		s.Workers = *env.Workers
	}
	if env.Format != "" {
		s.Format = env.Format
	}
	if env.Exclude != "" {
		s.Exclude = splitPatterns(env.Exclude)
	}
	if env.SkipHardLinks != nil {
		s.SkipHardLinks = *env.SkipHardLinks
	}
	if env.Verbose != nil {
		SetVerboseLevel(*env.Verbose)
	}

	return s, nil
}

// splitPatterns splits a comma-separated pattern list, trimming blanks.
func splitPatterns(value string) []string {
	var patterns []string
	for _, p := range strings.Split(value, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			patterns = append(patterns, p)
		}
	}
	return patterns
}
