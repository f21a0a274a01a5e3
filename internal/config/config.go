package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	// PollIntervalMs is how often the system clipboard is checked for changes
	// on platforms without native change notification.
	PollIntervalMs int `json:"poll_interval_ms"`

	// ReadWorkers bounds how many store reads (queries and feed re-runs)
	// may execute at once. Writes always go through a single writer.
	ReadWorkers int `json:"read_workers"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	// 0 means use sql.DB default. Typically set equal to DBMaxOpenConns.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`

	// LogLevel is one of debug|info|warn|error. Empty picks a default based
	// on whether stderr is a terminal.
	LogLevel string `json:"log_level,omitempty"`

	// LogFormat is one of auto|text|json.
	LogFormat string `json:"log_format,omitempty"`

	// WebBind and WebPort are the listen address of the web UI.
	WebBind string `json:"web_bind,omitempty"`
	WebPort int    `json:"web_port,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		PollIntervalMs: 250,
		ReadWorkers:    4,
		LogFormat:      "auto",
		WebBind:        "127.0.0.1",
		WebPort:        8731,
	}
}

// PollInterval returns PollIntervalMs as a time.Duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.clipstash.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	// Scalars: overlay wins if non-zero, else base
	result.PollIntervalMs = firstPositive(overlay.PollIntervalMs, base.PollIntervalMs)
	result.ReadWorkers = firstPositive(overlay.ReadWorkers, base.ReadWorkers)
	result.DBMaxOpenConns = firstPositive(overlay.DBMaxOpenConns, base.DBMaxOpenConns)
	result.DBMaxIdleConns = firstPositive(overlay.DBMaxIdleConns, base.DBMaxIdleConns)
	result.WebPort = firstPositive(overlay.WebPort, base.WebPort)

	result.LogLevel = firstNonEmpty(overlay.LogLevel, base.LogLevel)
	result.LogFormat = firstNonEmpty(overlay.LogFormat, base.LogFormat)
	result.WebBind = firstNonEmpty(overlay.WebBind, base.WebBind)

	// Arrays: merge and deduplicate
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

func firstPositive(a, b int) int {
	if a > 0 {
		return a
	}
	return b
}

func firstNonEmpty(a, b string) string {
	if a = strings.TrimSpace(a); a != "" {
		return a
	}
	return b
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
