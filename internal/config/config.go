// Package config provides configuration loading and discovery for diffscope.
//
// Configuration is loaded from multiple sources with the following priority
// (highest to lowest):
//  1. CLI flags
//  2. Environment variables (DIFFSCOPE_* prefix)
//  3. Config file (closest .diffscope.toml or diffscope.toml)
//  4. Built-in defaults
//
// Config file discovery walks up from the working directory until a config
// file is found. The closest config wins (no merging).
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigFileNames defines the config file names to search for, in priority order.
var ConfigFileNames = []string{".diffscope.toml", "diffscope.toml"}

// EnvPrefix is the prefix for environment variables.
const EnvPrefix = "DIFFSCOPE_"

// Config represents the complete diffscope configuration.
type Config struct {
	// DefaultScope selects the filtering policy: "lines" or "files".
	DefaultScope string `json:"default-scope" koanf:"default-scope"`

	// ContextLines widens every changed range by this many lines on both ends.
	// Ignored when the scope is "files".
	ContextLines int `json:"context-lines" koanf:"context-lines"`

	// InhibitMessages suppresses informational log output while a run is in progress.
	InhibitMessages bool `json:"inhibit-messages" koanf:"inhibit-messages"`

	// Exclude lists doublestar patterns of diff paths that are never checked.
	Exclude []string `json:"exclude,omitempty" koanf:"exclude"`

	// LogLevel is the logrus level name for diagnostic output on stderr.
	LogLevel string `json:"log-level,omitempty" koanf:"log-level"`

	// Diff configures where the diff comes from.
	Diff DiffConfig `json:"diff" koanf:"diff"`

	// Linter configures the external linter.
	Linter LinterConfig `json:"linter" koanf:"linter"`

	// Output configures output format and destination.
	Output OutputConfig `json:"output" koanf:"output"`

	// Rules holds per-rule overrides keyed by rule code.
	Rules RulesConfig `json:"rules,omitempty" koanf:"rules"`

	// ConfigFile is the path to the config file that was loaded (if any).
	// This is metadata, not loaded from config.
	ConfigFile string `json:"-" koanf:"-"`
}

// DiffConfig configures the diff source.
//
// Example TOML configuration:
//
//	[diff]
//	base = "origin/main"
//	staged = false
type DiffConfig struct {
	// Base is the revision the working tree is compared against. Empty
	// compares the working tree with the index.
	Base string `json:"base,omitempty" koanf:"base"`

	// Staged compares the index instead of the working tree.
	Staged bool `json:"staged,omitempty" koanf:"staged"`

	// File reads a precomputed diff from a path ("-" for stdin) instead of running git.
	File string `json:"file,omitempty" koanf:"file"`
}

// LinterConfig configures the external linter collaborator.
//
// Example TOML configuration:
//
//	[linter]
//	name = "shellcheck"
//	command = "shellcheck --format=gcc {file}"
//	format = "gcc"
//	jobs = 4
//	check-timeout = "30s"
type LinterConfig struct {
	// Name labels diagnostics produced by the linter.
	Name string `json:"name,omitempty" koanf:"name"`

	// Command is the per-file command line. "{file}" is replaced by the path;
	// without a placeholder the path is appended.
	Command string `json:"command,omitempty" koanf:"command"`

	// Format is the linter output format: gcc, regex, sarif or json.
	Format string `json:"format,omitempty" koanf:"format"`

	// Pattern is the regular expression used by the "regex" format.
	Pattern string `json:"pattern,omitempty" koanf:"pattern"`

	// Stdin feeds the file content on standard input instead of relying on the path.
	Stdin bool `json:"stdin,omitempty" koanf:"stdin"`

	// Jobs bounds how many files are checked concurrently.
	Jobs int `json:"jobs,omitempty" koanf:"jobs"`

	// MaxDiagnostics truncates per-file results outside of diff-scoped runs (0 = unlimited).
	MaxDiagnostics int `json:"max-diagnostics,omitempty" koanf:"max-diagnostics"`

	// CheckTimeout bounds each per-file check (e.g. "30s"). Empty means no limit.
	CheckTimeout string `json:"check-timeout,omitempty" koanf:"check-timeout"`

	// Report reads precomputed linter results from a path ("-" for stdin)
	// instead of running Command.
	Report string `json:"report,omitempty" koanf:"report"`

	// MaxFileSize skips files larger than this many bytes (0 = unlimited).
	MaxFileSize int64 `json:"max-file-size,omitempty" koanf:"max-file-size"`
}

// OutputConfig configures output formatting and behavior.
type OutputConfig struct {
	// Format specifies the output format.
	Format string `json:"format,omitempty" koanf:"format"`

	// Path specifies where to write output.
	Path string `json:"path,omitempty" koanf:"path"`

	// ShowSource enables source code snippets in text output.
	ShowSource bool `json:"show-source,omitempty" koanf:"show-source"`

	// FailLevel sets the minimum severity level that causes a non-zero exit code.
	FailLevel string `json:"fail-level,omitempty" koanf:"fail-level"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		DefaultScope:    "lines",
		ContextLines:    0,
		InhibitMessages: true,
		LogLevel:        "info",
		Linter: LinterConfig{
			Format: "gcc",
			Jobs:   4,
		},
		Output: OutputConfig{
			Format:     "text",
			Path:       "stdout",
			ShowSource: true,
			FailLevel:  "style", // Any diagnostic causes exit code 1
		},
	}
}

// Load discovers the closest config file for dir, loads it, and applies
// environment variable overrides.
func Load(dir string) (*Config, error) {
	return loadWithConfigPath(Discover(dir), nil)
}

// LoadFromFile loads configuration from a specific config file path.
// Unlike Load, it does not perform config discovery.
func LoadFromFile(configPath string) (*Config, error) {
	return loadWithConfigPath(configPath, nil)
}

// LoadWithOverrides loads configuration like Load (or LoadFromFile when
// configPath is set) and applies overrides last. Override keys use the
// dotted config key form, for example:
//
//	overrides := map[string]any{
//	  "default-scope": "files",
//	  "linter.jobs":   8,
//	}
//
// Precedence: defaults → config file → env → overrides.
func LoadWithOverrides(dir, configPath string, overrides map[string]any) (*Config, error) {
	if configPath == "" {
		configPath = Discover(dir)
	}
	return loadWithConfigPath(configPath, overrides)
}

func loadWithConfigPath(configPath string, overrides map[string]any) (*Config, error) {
	k := koanf.New(".")

	// 1. Load defaults
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, err
	}

	// 2. Load config file if provided
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, err
		}
	}

	// 3. Load environment variables (DIFFSCOPE_* prefix)
	// DIFFSCOPE_LINTER_CHECK_TIMEOUT -> linter.check-timeout
	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: envKeyTransform,
	}), nil); err != nil {
		return nil, err
	}

	// 4. CLI overrides
	if len(overrides) > 0 {
		if err := k.Load(confmap.Provider(overrides, "."), nil); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	cfg.ConfigFile = configPath
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// knownHyphenatedKeys maps dot-separated patterns to their hyphenated equivalents.
var knownHyphenatedKeys = map[string]string{
	"default.scope":    "default-scope",
	"context.lines":    "context-lines",
	"inhibit.messages": "inhibit-messages",
	"log.level":        "log-level",
	"max.diagnostics":  "max-diagnostics",
	"check.timeout":    "check-timeout",
	"max.file.size":    "max-file-size",
	"show.source":      "show-source",
	"fail.level":       "fail-level",
}

var allowedEnvTopLevelKeys = map[string]struct{}{
	"default-scope":    {},
	"context-lines":    {},
	"inhibit-messages": {},
	"exclude":          {},
	"log-level":        {},
	"diff":             {},
	"linter":           {},
	"output":           {},
}

// envKeyTransform converts environment variable names to config keys.
// DIFFSCOPE_CONTEXT_LINES -> context-lines
// DIFFSCOPE_LINTER_CHECK_TIMEOUT -> linter.check-timeout
// Variables outside the known top-level keys are dropped.
func envKeyTransform(k, v string) (string, any) {
	s := strings.TrimPrefix(k, EnvPrefix)
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "_", ".")
	for pattern, replacement := range knownHyphenatedKeys {
		s = strings.ReplaceAll(s, pattern, replacement)
	}

	topLevel := s
	if before, _, ok := strings.Cut(s, "."); ok {
		topLevel = before
	}
	if _, ok := allowedEnvTopLevelKeys[topLevel]; !ok {
		return "", nil
	}
	if topLevel == "exclude" {
		return s, strings.Split(v, ",")
	}

	return s, v
}

// Discover finds the closest config file for a directory.
// It walks up the directory tree, checking for config files at each level.
// Returns empty string if no config file is found.
func Discover(dir string) string {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}

	if info, err := os.Stat(absPath); err == nil && !info.IsDir() {
		absPath = filepath.Dir(absPath)
	}

	for current := absPath; ; {
		for _, name := range ConfigFileNames {
			configPath := filepath.Join(current, name)
			if fileExists(configPath) {
				return configPath
			}
		}

		parent := filepath.Dir(current)
		if parent == current {
			// Reached filesystem root
			return ""
		}
		current = parent
	}
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
