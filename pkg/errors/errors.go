package errors

import "fmt"

// Common error types.
var (
	// Config errors.
	ErrEmptyConfigPath   = fmt.Errorf("config file path cannot be empty")
	ErrInvalidConfigPath = fmt.Errorf("invalid config file path")
	ErrConfigParse       = fmt.Errorf("failed to parse config")
	ErrConfigValidation  = fmt.Errorf("invalid configuration")
	ErrConfigEncode      = fmt.Errorf("failed to encode config")
	ErrConfigDirectory   = fmt.Errorf("failed to create config directory")
	ErrConfigFileCreate  = fmt.Errorf("failed to create config file")
	ErrConfigFileExists  = fmt.Errorf("configuration file already exists (use --force to overwrite)")
	ErrConfigMarshal     = fmt.Errorf("failed to marshal config to YAML")

	// Validation errors.
	ErrRetriesInvalid      = fmt.Errorf("retries must be at least 1")
	ErrWorkersNegative     = fmt.Errorf("workers cannot be negative")
	ErrTimeoutNegative     = fmt.Errorf("timeout cannot be negative")
	ErrChunkSizeInvalid    = fmt.Errorf("chunk_size must be positive")
	ErrInvalidLogLevel     = fmt.Errorf("invalid log level")
	ErrKeyPathRequired     = fmt.Errorf("sftp key_path is required when use_key is set")
	ErrLedgerPathEmpty     = fmt.Errorf("ledger path cannot be empty")
	ErrDestinationDirEmpty = fmt.Errorf("destination directory cannot be empty")

	// Filesystem errors.
	ErrInvalidPath = fmt.Errorf("invalid path")

	// Ledger errors.
	ErrLedgerLoad = fmt.Errorf("failed to load ledger")
	ErrLedgerSave = fmt.Errorf("failed to save ledger")

	// Download errors. Every failed or skipped request wraps exactly one of these.
	ErrUnsupportedProtocol = fmt.Errorf("unsupported protocol")
	ErrInvalidURI          = fmt.Errorf("invalid uri")
	ErrDirectoryCreate     = fmt.Errorf("failed to create destination directory")
	ErrRetriesExhausted    = fmt.Errorf("retries exhausted")
	ErrCancelled           = fmt.Errorf("download interrupted")
	ErrUnexpected          = fmt.Errorf("unexpected error")

	// ErrDownloadFailed is returned by the CLI when --fail-on-error is set and a download failed.
	ErrDownloadFailed = fmt.Errorf("download failed")

	// Post-download errors.
	ErrHookExecution  = fmt.Errorf("error executing hook")
	ErrHookScript     = fmt.Errorf("hook script error")
	ErrHookLoad       = fmt.Errorf("failed to load hook")
	ErrArchiveExtract = fmt.Errorf("failed to extract archive")
)

// Wrap wraps an error with additional context.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with additional formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
