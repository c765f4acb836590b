package docxedit

import (
	"errors"
	"os"
	"strconv"
	"sync"
)

// Config contains configuration options for the editor
type Config struct {
	// LogLevel controls the verbosity of logging (debug, info, warn, error, off)
	LogLevel string
	// OutlineTextLimit is the maximum number of characters of heading text
	// included in outline entries
	OutlineTextLimit int
	// TablePreviewLimit is the maximum number of characters of first-cell text
	// included in table outline previews
	TablePreviewLimit int
}

var (
	globalConfig      *Config
	globalConfigMutex sync.RWMutex
	configOnce        sync.Once
)

func init() {
	configOnce.Do(func() {
		globalConfig = ConfigFromEnvironment()
	})
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		LogLevel:          "info",
		OutlineTextLimit:  100,
		TablePreviewLimit: 50,
	}
}

// ConfigFromEnvironment creates a configuration from environment variables
func ConfigFromEnvironment() *Config {
	config := DefaultConfig()

	// DOCXEDIT_LOG_LEVEL
	if val := os.Getenv("DOCXEDIT_LOG_LEVEL"); val != "" {
		config.LogLevel = val
	}

	// DOCXEDIT_OUTLINE_TEXT_LIMIT
	if val := os.Getenv("DOCXEDIT_OUTLINE_TEXT_LIMIT"); val != "" {
		if limit, err := strconv.Atoi(val); err == nil && limit > 0 {
			config.OutlineTextLimit = limit
		}
	}

	// DOCXEDIT_TABLE_PREVIEW_LIMIT
	if val := os.Getenv("DOCXEDIT_TABLE_PREVIEW_LIMIT"); val != "" {
		if limit, err := strconv.Atoi(val); err == nil && limit > 0 {
			config.TablePreviewLimit = limit
		}
	}

	return config
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"off":   true,
	}
	if !validLogLevels[c.LogLevel] {
		return errors.New("invalid log level: " + c.LogLevel)
	}

	if c.OutlineTextLimit <= 0 {
		return errors.New("outline text limit must be positive")
	}
	if c.TablePreviewLimit <= 0 {
		return errors.New("table preview limit must be positive")
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

	UpdateLoggerFromConfig()
}
