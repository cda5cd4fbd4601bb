// Package config provides configuration management for multifetch.
// It handles loading, validating and saving settings from a YAML file, with
// environment variables (optionally read from a .env file) layered on top.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/glorpus-work/multifetch/pkg/errors"
	"github.com/glorpus-work/multifetch/pkg/fsutil"
)

// Config represents the application configuration.
type Config struct {
	// General settings
	Settings Settings `yaml:"settings"`

	// Per-protocol settings
	HTTP HTTPConfig `yaml:"http"`
	FTP  FTPConfig  `yaml:"ftp"`
	SFTP SFTPConfig `yaml:"sftp"`
}

// Settings represents general application settings.
type Settings struct {
	// Download settings
	DestDir     string `yaml:"dest_dir"`
	Retries     int    `yaml:"retries"`
	MaxWorkers  int    `yaml:"max_workers"` // 0 means one worker per URI
	FailOnError bool   `yaml:"fail_on_error"`

	// State settings
	LedgerPath  string `yaml:"ledger_path"`
	MetricsFile string `yaml:"metrics_file,omitempty"`

	// Post-download settings
	Extract    bool   `yaml:"extract"`
	HookScript string `yaml:"hook_script,omitempty"`
	HooksDir   string `yaml:"hooks_dir,omitempty"`

	// Output settings
	LogFile  string `yaml:"log_file"`
	LogLevel string `yaml:"log_level"` // debug, info, warn, error
	NoColor  bool   `yaml:"no_color"`
}

// HTTPConfig configures the http and https strategy.
type HTTPConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	ChunkSize int           `yaml:"chunk_size"`
	UserAgent string        `yaml:"user_agent,omitempty"`
}

// FTPConfig configures the ftp strategy.
type FTPConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	ChunkSize int           `yaml:"chunk_size"`
}

// SFTPConfig configures the sftp strategy.
type SFTPConfig struct {
	Timeout    time.Duration `yaml:"timeout"`
	ChunkSize  int           `yaml:"chunk_size"`
	UseKey     bool          `yaml:"use_key"`
	KeyPath    string        `yaml:"key_path,omitempty"`
	KnownHosts string        `yaml:"known_hosts,omitempty"`

	// Password is only ever read from the environment and never written to disk.
	Password string `yaml:"-"`
}

// Default configuration values.
const (
	DefaultDestDir    = "./downloads"
	DefaultRetries    = 3
	DefaultLedgerPath = "downloaded_files.json"
	DefaultLogFile    = "debug_logs.log"
	DefaultLogLevel   = "info"

	// DefaultTimeout is the default connect and first-byte timeout for every protocol.
	DefaultTimeout = 10 * time.Second

	DefaultChunkSize     = 8192
	DefaultSFTPChunkSize = 32768

	// YAMLIndent is the number of spaces to use for YAML indentation.
	YAMLIndent = 2
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Settings: Settings{
			DestDir:    DefaultDestDir,
			Retries:    DefaultRetries,
			LedgerPath: DefaultLedgerPath,
			LogFile:    DefaultLogFile,
			LogLevel:   DefaultLogLevel,
		},
		HTTP: HTTPConfig{
			Timeout:   DefaultTimeout,
			ChunkSize: DefaultChunkSize,
		},
		FTP: FTPConfig{
			Timeout:   DefaultTimeout,
			ChunkSize: DefaultChunkSize,
		},
		SFTP: SFTPConfig{
			Timeout:   DefaultTimeout,
			ChunkSize: DefaultSFTPChunkSize,
		},
	}
}

// LoadConfig loads configuration from a file. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	file, err := os.Open(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, errors.Wrapf(err, "failed to open config file: %s", path)
	}
	defer func() { _ = file.Close() }()

	return LoadConfigFromReader(file)
}

// LoadConfigFromReader loads configuration from an io.Reader.
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config data")
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrap(errors.ErrConfigParse, err.Error())
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrConfigValidation, err)
	}

	return &config, nil
}

// SaveConfig saves configuration to a file, replacing it atomically.
func (c *Config) SaveConfig(path string) error {
	if path == "" {
		return errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	if err := fsutil.EnsureFileDir(absPath); err != nil {
		return errors.Wrap(errors.ErrConfigDirectory, err.Error())
	}

	var buf strings.Builder
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(YAMLIndent)
	if err := encoder.Encode(c); err != nil {
		return errors.Wrap(errors.ErrConfigEncode, err.Error())
	}
	_ = encoder.Close()

	if err := fsutil.WriteFileAtomic(absPath, []byte(buf.String()), fsutil.FileModeDefault); err != nil {
		return errors.Wrap(errors.ErrConfigFileCreate, err.Error())
	}
	return nil
}

// ToYAML converts the config to YAML bytes.
func (c *Config) ToYAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(errors.ErrConfigMarshal, err.Error())
	}
	return data, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c == nil {
		return errors.ErrConfigValidation
	}
	if err := validateSettings(c.Settings); err != nil {
		return err
	}
	if err := validateTransfer("http", c.HTTP.Timeout, c.HTTP.ChunkSize); err != nil {
		return err
	}
	if err := validateTransfer("ftp", c.FTP.Timeout, c.FTP.ChunkSize); err != nil {
		return err
	}
	if err := validateTransfer("sftp", c.SFTP.Timeout, c.SFTP.ChunkSize); err != nil {
		return err
	}
	if c.SFTP.UseKey && c.SFTP.KeyPath == "" {
		return errors.ErrKeyPathRequired
	}
	return nil
}

func validateSettings(s Settings) error {
	if s.DestDir == "" {
		return errors.ErrDestinationDirEmpty
	}
	if s.LedgerPath == "" {
		return errors.ErrLedgerPathEmpty
	}
	if s.Retries < 1 {
		return fmt.Errorf("%w: got %d", errors.ErrRetriesInvalid, s.Retries)
	}
	if s.MaxWorkers < 0 {
		return fmt.Errorf("%w: got %d", errors.ErrWorkersNegative, s.MaxWorkers)
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}
	if !validLevels[strings.ToLower(s.LogLevel)] {
		return fmt.Errorf("%w: %s (must be one of: debug, info, warn, error)", errors.ErrInvalidLogLevel, s.LogLevel)
	}
	return nil
}

func validateTransfer(section string, timeout time.Duration, chunkSize int) error {
	if timeout < 0 {
		return fmt.Errorf("%s: %w", section, errors.ErrTimeoutNegative)
	}
	if chunkSize <= 0 {
		return fmt.Errorf("%s: %w", section, errors.ErrChunkSizeInvalid)
	}
	return nil
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "multifetch", "config.yaml"), nil
}

// applyDefaults fills in missing values with defaults.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Settings.DestDir == "" {
		c.Settings.DestDir = defaults.Settings.DestDir
	}
	if c.Settings.Retries == 0 {
		c.Settings.Retries = defaults.Settings.Retries
	}
	if c.Settings.LedgerPath == "" {
		c.Settings.LedgerPath = defaults.Settings.LedgerPath
	}
	if c.Settings.LogFile == "" {
		c.Settings.LogFile = defaults.Settings.LogFile
	}
	if c.Settings.LogLevel == "" {
		c.Settings.LogLevel = defaults.Settings.LogLevel
	}

	if c.HTTP.Timeout == 0 {
		c.HTTP.Timeout = defaults.HTTP.Timeout
	}
	if c.HTTP.ChunkSize == 0 {
		c.HTTP.ChunkSize = defaults.HTTP.ChunkSize
	}
	if c.FTP.Timeout == 0 {
		c.FTP.Timeout = defaults.FTP.Timeout
	}
	if c.FTP.ChunkSize == 0 {
		c.FTP.ChunkSize = defaults.FTP.ChunkSize
	}
	if c.SFTP.Timeout == 0 {
		c.SFTP.Timeout = defaults.SFTP.Timeout
	}
	if c.SFTP.ChunkSize == 0 {
		c.SFTP.ChunkSize = defaults.SFTP.ChunkSize
	}
}
