// Package cli contains the multifetch CLI commands and subcommands.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/glorpus-work/multifetch/internal/logger"
	"github.com/glorpus-work/multifetch/pkg/config"
)

// These variables will be set by the main package
var (
	ConfigPath *string
	Verbose    *bool
	NoColor    *bool
)

// loadConfig reads the configuration file, then layers .env and MULTIFETCH_*
// variables on top. Command flags are applied by the caller, which validates
// the result once they are in place.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(getConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := config.LoadDotEnv(""); err != nil {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	cfg.ApplyEnv()
	return cfg, nil
}

func getConfigPath() string {
	if ConfigPath != nil && *ConfigPath != "" {
		return *ConfigPath
	}

	defaultPath, err := config.GetDefaultConfigPath()
	if err != nil {
		// An empty path makes LoadConfig fail with a descriptive error.
		logger.Warn("Failed to get default config path, using empty path", logger.Fields{"error": err})
		return ""
	}
	return defaultPath
}

// initLogging sets up the console and log file channels for a command.
func initLogging(cfg *config.Config, console io.Writer) (io.Closer, error) {
	level := cfg.Settings.LogLevel
	if Verbose != nil && *Verbose {
		level = "debug"
	}
	noColor := cfg.Settings.NoColor || (NoColor != nil && *NoColor)
	if console == nil {
		console = os.Stdout
	}

	return logger.InitLogger(logger.Options{
		Level:   level,
		LogFile: cfg.Settings.LogFile,
		Console: console,
		NoColor: noColor,
	})
}
