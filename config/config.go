package config

import (
	"os"
	"strconv"
)

const (
	// Default listen address for the diff viewer server
	defaultAddress = ":8400"
)

// Config holds application configuration
type Config struct {
	Address      string // HTTP listen address
	DataDir      string // database directory; empty means the per-user default
	ContextLines int    // equal lines kept visible around collapsed runs; negative means engine default
}

// globalConfig holds the application configuration instance
var globalConfig *Config

// Initialize sets up the configuration from environment variables
func Initialize() {
	globalConfig = &Config{
		Address:      getAddress(),
		DataDir:      os.Getenv("DIFFVIEW_DATA_DIR"),
		ContextLines: getContextLines(),
	}
}

// Get returns the global configuration instance
func Get() *Config {
	if globalConfig == nil {
		Initialize()
	}
	return globalConfig
}

// getAddress returns the listen address from environment or default
func getAddress() string {
	if addr := os.Getenv("DIFFVIEW_ADDR"); addr != "" {
		return addr
	}
	return defaultAddress
}

// getContextLines returns the collapse context from the environment.
// Invalid or missing values fall back to the engine default.
func getContextLines() int {
	if v := os.Getenv("DIFFVIEW_CONTEXT_LINES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return -1
}
