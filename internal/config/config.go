// Package config loads the optional linq configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

// Config is the contents of linq.yaml.
type Config struct {
	BaseDir string            `yaml:"-"` // directory of the config file, for relative source paths
	Format  string            `yaml:"format"`
	Sources map[string]string `yaml:"sources"` // source name -> source spec
	Logging LoggingConfig     `yaml:"logging"`
}

// LoggingConfig controls diagnostic output.
type LoggingConfig struct {
	Level string `yaml:"level"` // logrus level name: debug, info, warn, error
}

// Defaults returns the configuration used when no file is found.
func Defaults() *Config {
	return &Config{
		Sources: map[string]string{},
		Logging: LoggingConfig{Level: "warn"},
	}
}

// Load reads the configuration file with ${VAR} interpolation. An explicit
// path wins over LINQ_CONFIG, which wins over linq.yaml in the working
// directory and then ~/.config/linq/linq.yaml. Finding no file is not an
// error unless a path was requested.
func Load(configPath string, getenv func(string) string) (*Config, error) {
	path, err := resolveConfigPath(configPath, getenv)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return Defaults(), nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	data = interpolateEnv(data, getenv)

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Sources == nil {
		cfg.Sources = map[string]string{}
	}
	cfg.BaseDir = filepath.Dir(absPath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func resolveConfigPath(configPath string, getenv func(string) string) (string, error) {
	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return "", fmt.Errorf("config file not found: %s", configPath)
		}
		return configPath, nil
	}
	if p := getenv("LINQ_CONFIG"); p != "" {
		if _, err := os.Stat(p); err != nil {
			return "", fmt.Errorf("config file from LINQ_CONFIG not found: %s", p)
		}
		return p, nil
	}
	candidates := []string{"linq.yaml"}
	if home := getenv("HOME"); home != "" {
		candidates = append(candidates, filepath.Join(home, ".config", "linq", "linq.yaml"))
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c, nil
		}
	}
	return "", nil
}

// envPattern matches ${VAR} or ${VAR:-default}
var envPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// interpolateEnv replaces ${VAR} and ${VAR:-default} patterns with environment values.
func interpolateEnv(data []byte, getenv func(string) string) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		parts := envPattern.FindSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		val := getenv(string(parts[1]))
		if val == "" && len(parts) >= 3 && len(parts[2]) > 0 {
			val = string(parts[2])
		}
		return []byte(val)
	})
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []string
	names := make([]string, 0, len(c.Sources))
	for name := range c.Sources {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		if !IsSourceName(name) {
			errs = append(errs, fmt.Sprintf("sources: invalid name %q", name))
		}
		if strings.TrimSpace(c.Sources[name]) == "" {
			errs = append(errs, fmt.Sprintf("sources.%s: spec is required", name))
		}
	}
	if len(errs) > 0 {
		return errors.New("config validation failed:\n  - " + strings.Join(errs, "\n  - "))
	}
	return nil
}

// IsSourceName reports whether name can be referenced as $name in a query.
func IsSourceName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if r == '$' || !(r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r))) {
			return false
		}
	}
	return true
}

// ApplyEnv sets *dst to the env var value when the flag was not explicitly set.
func ApplyEnv(dst *string, flagChanged bool, getenv func(string) string, key string) {
	if flagChanged {
		return
	}
	if v := getenv(key); v != "" {
		*dst = v
	}
}
