//go:generate mockgen -destination=./mocks/ledger.go . Ledger

// Package download decides where each download lands and drives the attempts
// for a single request: retries on recoverable errors, cleanup of partial
// files and the ledger update on success.
package download

// Lookuper finds the local path recorded for a (uri, destDir) pair.
type Lookuper interface {
	Lookup(uri, destDir string) (string, bool)
}

// Recorder persists the local path of a finished download.
type Recorder interface {
	Record(uri, destDir, localPath string) error
}

// Ledger is the persistent record of completed downloads.
type Ledger interface {
	Lookuper
	Recorder
}
