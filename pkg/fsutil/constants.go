package fsutil

// File and directory permission constants.
const (
	// Default file modes.
	FileModeDefault = 0o644 // -rw-r--r--: downloaded files, ledger, config
	FileModeSecure  = 0o640 // -rw-r-----: debug log

	// DirModeDefault is used for destination, extraction and config directories.
	DirModeDefault = 0o755 // drwxr-xr-x
)
