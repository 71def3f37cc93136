package docxmerge

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Config contains all configuration options for the docxmerge engine
type Config struct {
	// CacheMaxSize is the maximum number of template packages to cache. 0 disables caching.
	CacheMaxSize int
	// CacheTTL is the time-to-live for cached packages. 0 means no expiration.
	CacheTTL time.Duration
	// LogLevel controls the verbosity of logging (debug, info, warn, error, off)
	LogLevel string
	// TempDir is where rendered packages are written before being read back.
	// Empty means os.TempDir().
	TempDir string
	// MaxConcurrency bounds the number of renders RenderBatch runs at once.
	MaxConcurrency int
}

var (
	// globalConfig is read from the environment during package
	// initialization, before DefaultEngine is built from it.
	globalConfig      = ConfigFromEnvironment()
	globalConfigMutex sync.RWMutex
)

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		CacheMaxSize:   100,
		CacheTTL:       0,
		LogLevel:       "info",
		TempDir:        "",
		MaxConcurrency: runtime.GOMAXPROCS(0),
	}
}

// ConfigFromEnvironment creates a configuration from environment variables
func ConfigFromEnvironment() *Config {
	config := DefaultConfig()

	// DOCXMERGE_CACHE_MAX_SIZE
	if val := os.Getenv("DOCXMERGE_CACHE_MAX_SIZE"); val != "" {
		if size, err := strconv.Atoi(val); err == nil {
			config.CacheMaxSize = size
		}
	}

	// DOCXMERGE_CACHE_TTL
	if val := os.Getenv("DOCXMERGE_CACHE_TTL"); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			config.CacheTTL = duration
		}
	}

	// DOCXMERGE_LOG_LEVEL
	if val := os.Getenv("DOCXMERGE_LOG_LEVEL"); val != "" {
		config.LogLevel = strings.ToLower(strings.TrimSpace(val))
	}

	// DOCXMERGE_TEMP_DIR
	if val := os.Getenv("DOCXMERGE_TEMP_DIR"); val != "" {
		config.TempDir = val
	}

	// DOCXMERGE_MAX_CONCURRENCY
	if val := os.Getenv("DOCXMERGE_MAX_CONCURRENCY"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			config.MaxConcurrency = n
		}
	}

	return config
}

// fileConfig mirrors Config with optional fields so that a file only
// overrides the keys it sets. Durations are written as strings ("5m").
type fileConfig struct {
	CacheMaxSize   *int    `yaml:"cache_max_size" json:"cache_max_size"`
	CacheTTL       *string `yaml:"cache_ttl" json:"cache_ttl"`
	LogLevel       *string `yaml:"log_level" json:"log_level"`
	TempDir        *string `yaml:"temp_dir" json:"temp_dir"`
	MaxConcurrency *int    `yaml:"max_concurrency" json:"max_concurrency"`
}

// ConfigFromFile loads configuration from a file, auto-detecting format by
// extension. Supported extensions: .yaml, .yml, .json. Keys missing from the
// file keep their DefaultConfig values.
func ConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file extension: %s", ext)
	}

	config := DefaultConfig()
	if fc.CacheMaxSize != nil {
		config.CacheMaxSize = *fc.CacheMaxSize
	}
	if fc.CacheTTL != nil {
		ttl, err := time.ParseDuration(*fc.CacheTTL)
		if err != nil {
			return nil, fmt.Errorf("parse cache_ttl: %w", err)
		}
		config.CacheTTL = ttl
	}
	if fc.LogLevel != nil {
		config.LogLevel = *fc.LogLevel
	}
	if fc.TempDir != nil {
		config.TempDir = *fc.TempDir
	}
	if fc.MaxConcurrency != nil {
		config.MaxConcurrency = *fc.MaxConcurrency
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.CacheMaxSize < 0 {
		return errors.New("cache max size cannot be negative")
	}

	if c.CacheTTL < 0 {
		return errors.New("cache TTL cannot be negative")
	}

	if _, err := parseLogLevel(c.LogLevel); err != nil {
		return err
	}

	if c.MaxConcurrency < 0 {
		return errors.New("max concurrency cannot be negative")
	}

	if c.TempDir != "" {
		info, err := os.Stat(c.TempDir)
		if err != nil {
			return fmt.Errorf("temp dir: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("temp dir %s is not a directory", c.TempDir)
		}
	}

	return nil
}

// GetGlobalConfig returns the global configuration
func GetGlobalConfig() *Config {
	globalConfigMutex.RLock()
	defer globalConfigMutex.RUnlock()

	if globalConfig == nil {
		return DefaultConfig()
	}

	// Return a copy to prevent modification
	configCopy := *globalConfig
	return &configCopy
}

// SetGlobalConfig sets the global configuration
func SetGlobalConfig(config *Config) {
	globalConfigMutex.Lock()
	globalConfig = config
	globalConfigMutex.Unlock()

	// Update logger based on new config (outside the lock to avoid deadlock)
	UpdateLoggerFromConfig()
}
