// Package commands contains the CLI subcommands.
package commands

import (
	"os"
	"path/filepath"

	"github.com/lhjing/workdash/internal/aggregator"
	"github.com/lhjing/workdash/internal/core/config"
	"github.com/lhjing/workdash/internal/data/stores"
)

type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	DataDir    string
}

// App holds the wired services commands operate on. It is populated by the
// root command's Before hook; commands hold a pointer to it from
// registration time.
type App struct {
	Config       *config.Config
	Store        *stores.KVStore
	Orchestrator *aggregator.Orchestrator
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "workdash", "config.yaml")
}

// DefaultDataDir returns the default data directory using XDG_DATA_HOME.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "workdash")
}
