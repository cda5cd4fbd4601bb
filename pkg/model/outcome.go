package model

import "fmt"

// Status is the terminal state of a request.
type Status int

const (
	// StatusSucceeded means the file was written and the ledger updated.
	StatusSucceeded Status = iota
	// StatusFailed means the request ended without a file; Outcome.Err says why.
	StatusFailed
	// StatusSkipped means no work was submitted for the request.
	StatusSkipped
)

func (s Status) String() string {
	switch s {
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Outcome is the single result produced for a Request.
type Outcome struct {
	Request   Request
	Status    Status
	LocalPath string
	Bytes     int64
	Attempts  int
	Err       error
}

// Succeeded builds a success outcome.
func Succeeded(req Request, localPath string, bytes int64, attempts int) Outcome {
	return Outcome{Request: req, Status: StatusSucceeded, LocalPath: localPath, Bytes: bytes, Attempts: attempts}
}

// Failed builds a failure outcome. localPath may be empty when the request never got that far.
func Failed(req Request, localPath string, attempts int, err error) Outcome {
	return Outcome{Request: req, Status: StatusFailed, LocalPath: localPath, Attempts: attempts, Err: err}
}

// Skipped builds an outcome for a request that was never attempted.
func Skipped(req Request, reason error) Outcome {
	return Outcome{Request: req, Status: StatusSkipped, Err: reason}
}

// Summary counts outcomes by status.
type Summary struct {
	Succeeded int
	Failed    int
	Skipped   int
}

// Total is the number of outcomes counted.
func (s Summary) Total() int {
	return s.Succeeded + s.Failed + s.Skipped
}

// Summarize counts the given outcomes.
func Summarize(outcomes []Outcome) Summary {
	var s Summary
	for _, o := range outcomes {
		switch o.Status {
		case StatusSucceeded:
			s.Succeeded++
		case StatusFailed:
			s.Failed++
		case StatusSkipped:
			s.Skipped++
		}
	}
	return s
}
