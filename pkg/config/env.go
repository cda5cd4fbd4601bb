package config

import (
	stderrors "errors"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables that override the configuration file.
const (
	EnvDestDir      = "MULTIFETCH_DEST"
	EnvRetries      = "MULTIFETCH_RETRIES"
	EnvWorkers      = "MULTIFETCH_WORKERS"
	EnvLogLevel     = "MULTIFETCH_LOG_LEVEL"
	EnvLedgerPath   = "MULTIFETCH_LEDGER"
	EnvSFTPKeyPath  = "MULTIFETCH_SFTP_KEY_PATH"
	EnvSFTPPassword = "MULTIFETCH_SFTP_PASSWORD"

	// DefaultDotEnvFile is read from the working directory when present.
	DefaultDotEnvFile = ".env"
)

// LoadDotEnv loads variables from a .env file into the process environment.
// Variables that are already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = DefaultDotEnvFile
	}
	if err := godotenv.Load(path); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// ApplyEnv overrides configuration values from MULTIFETCH_* variables.
// Malformed numbers are ignored.
func (c *Config) ApplyEnv() {
	c.Settings.DestDir = GetEnv(EnvDestDir, c.Settings.DestDir)
	c.Settings.Retries = GetEnvInt(EnvRetries, c.Settings.Retries)
	c.Settings.MaxWorkers = GetEnvInt(EnvWorkers, c.Settings.MaxWorkers)
	c.Settings.LogLevel = GetEnv(EnvLogLevel, c.Settings.LogLevel)
	c.Settings.LedgerPath = GetEnv(EnvLedgerPath, c.Settings.LedgerPath)

	if keyPath := GetEnv(EnvSFTPKeyPath, ""); keyPath != "" {
		c.SFTP.KeyPath = keyPath
		c.SFTP.UseKey = true
	}
	c.SFTP.Password = GetEnv(EnvSFTPPassword, c.SFTP.Password)
}

// GetEnv returns the value of an environment variable or a default value if not set.
func GetEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

// GetEnvInt returns the value of an environment variable as an integer,
// or the default when it is unset or not a number.
func GetEnvInt(key string, defaultValue int) int {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
