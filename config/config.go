// Package config loads the portstore configuration from a YAML file and
// PORTSTORE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ghodss/yaml"
	"github.com/hashicorp/go-multierror"

	"github.com/safing/portstore/database"
	"github.com/safing/portstore/formats/dsd"
	"github.com/safing/portstore/log"
)

// Config is the complete configuration.
type Config struct {
	Store StoreConfig `json:"store"`
	Log   LogConfig   `json:"log"`
}

// StoreConfig configures the persistence manager.
type StoreConfig struct {
	Name           string `json:"name"`
	Type           string `json:"type"`
	InMemory       bool   `json:"in_memory"`
	DataRoot       string `json:"data_root"`
	Format         string `json:"format"`
	WriteTimeout   string `json:"write_timeout"`
	WriteQueueSize int    `json:"write_queue_size"`
	CacheSize      int    `json:"cache_size"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level      string `json:"level"`
	PkgLevels  string `json:"pkg_levels"`
	File       string `json:"file"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
	Compress   bool   `json:"compress"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Name:           "portstore",
			Type:           database.DefaultStorageType,
			Format:         dsd.DefaultSerializationFormat.String(),
			WriteTimeout:   database.DefaultWriteTimeout.String(),
			WriteQueueSize: database.DefaultWriteQueueSize,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Load reads the configuration: defaults, then the YAML file at path (if
// path is not empty), then the environment. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks all values and reports every invalid one.
func (c *Config) Validate() error {
	var result *multierror.Error

	if _, err := c.DatabaseOptions(); err != nil {
		result = multierror.Append(result, err)
	}

	if log.ParseLevel(c.Log.Level) == 0 {
		result = multierror.Append(result, newInvalidValueError("log/level", c.Log.Level, "unknown log level"))
	}
	if _, err := log.ParsePkgLevels(c.Log.PkgLevels); err != nil {
		result = multierror.Append(result, newInvalidValueError("log/pkg_levels", c.Log.PkgLevels, err.Error()))
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 || c.Log.MaxAgeDays < 0 {
		result = multierror.Append(result, newInvalidValueError("log", c.Log, "rotation limits must not be negative"))
	}

	return result.ErrorOrNil()
}

// DatabaseOptions converts the store configuration to database options.
func (c *Config) DatabaseOptions() (database.Options, error) {
	opts := database.Options{
		StoreName:      c.Store.Name,
		StorageType:    c.Store.Type,
		InMemory:       c.Store.InMemory,
		DataRoot:       c.Store.DataRoot,
		WriteQueueSize: c.Store.WriteQueueSize,
		CacheSize:      c.Store.CacheSize,
	}
	if opts.InMemory && opts.StorageType == database.DefaultStorageType {
		opts.StorageType = database.InMemoryStorageType
	}

	var errs []error
	format, err := dsd.ParseFormat(c.Store.Format)
	if err != nil {
		errs = append(errs, newInvalidValueError("store/format", c.Store.Format, err.Error()))
	}
	opts.Format = format

	if c.Store.WriteTimeout != "" {
		timeout, err := time.ParseDuration(c.Store.WriteTimeout)
		if err != nil || timeout < 0 {
			errs = append(errs, newInvalidValueError("store/write_timeout", c.Store.WriteTimeout, "must be a positive duration"))
		}
		opts.WriteTimeout = timeout
	}

	if err := opts.Validate(); err != nil {
		errs = append(errs, newInvalidValueError("store", c.Store.Name, err.Error()))
	}
	return opts, errors.Join(errs...)
}

// ApplyLogging applies the log configuration to the log package.
func (c *Config) ApplyLogging() error {
	level := log.ParseLevel(c.Log.Level)
	if level == 0 {
		return newInvalidValueError("log/level", c.Log.Level, "unknown log level")
	}
	pkgLevels, err := log.ParsePkgLevels(c.Log.PkgLevels)
	if err != nil {
		return newInvalidValueError("log/pkg_levels", c.Log.PkgLevels, err.Error())
	}

	log.SetLogLevel(level)
	if len(pkgLevels) > 0 {
		log.SetPkgLevels(pkgLevels)
	} else {
		log.UnSetPkgLevels()
	}

	if c.Log.File == "" {
		log.SetFile(nil)
		return nil
	}
	log.SetFile(&log.FileOptions{
		Path:       c.Log.File,
		MaxSizeMB:  c.Log.MaxSizeMB,
		MaxBackups: c.Log.MaxBackups,
		MaxAgeDays: c.Log.MaxAgeDays,
		Compress:   c.Log.Compress,
	})
	return nil
}
