//go:generate mockgen -destination=./mocks/strategy.go . Strategy

// Package protocol implements one transfer per URI for each supported scheme.
//
// A Strategy opens its own connection for every call, streams the remote
// content into the supplied writer in fixed-size chunks and polls the
// CancelCheck before writing each chunk. Errors from the network, the remote
// server or the transfer itself are wrapped in *RecoverableError so the caller
// can retry them; ErrCancelled and anything else are final.
package protocol

import (
	"context"
	"errors"
	"io"

	pkgerrors "github.com/glorpus-work/multifetch/pkg/errors"
)

// CancelCheck reports whether the run has been asked to stop.
type CancelCheck func() bool

// Strategy fetches a single URI into dst and returns the number of bytes written.
type Strategy interface {
	Fetch(ctx context.Context, uri string, dst io.Writer, cancelled CancelCheck) (int64, error)
}

// ErrCancelled is returned by a Strategy when the CancelCheck fired mid-transfer.
var ErrCancelled = pkgerrors.ErrCancelled

// RecoverableError marks a failure that is worth another attempt: connection
// refused, authentication rejected, a non-2xx status, a broken data stream.
type RecoverableError struct {
	Op  string
	Err error
}

func (e *RecoverableError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *RecoverableError) Unwrap() error {
	return e.Err
}

func recoverable(op string, err error) error {
	if err == nil {
		return nil
	}
	return &RecoverableError{Op: op, Err: err}
}

// IsRecoverable reports whether err may be retried.
func IsRecoverable(err error) bool {
	if err == nil || errors.Is(err, ErrCancelled) {
		return false
	}
	var re *RecoverableError
	return errors.As(err, &re)
}
