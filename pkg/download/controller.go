package download

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"

	"github.com/avast/retry-go/v4"

	"github.com/glorpus-work/multifetch/internal/logger"
	"github.com/glorpus-work/multifetch/pkg/errors"
	"github.com/glorpus-work/multifetch/pkg/fsutil"
	"github.com/glorpus-work/multifetch/pkg/model"
	"github.com/glorpus-work/multifetch/pkg/protocol"
)

// Controller runs the attempts for one request at a time. It is safe for
// concurrent use as long as the ledger is.
type Controller struct {
	ledger Ledger
}

// NewController creates a controller that records successes in ledger.
func NewController(ledger Ledger) *Controller {
	return &Controller{ledger: ledger}
}

// Resolve picks and claims the local path for req using the controller's
// ledger. A claimed but never completed path is removed by Run.
func (c *Controller) Resolve(req model.Request) string {
	return Reserve(req.URI, req.DestDir, c.ledger)
}

// Run downloads req into localPath with strategy and returns its outcome.
//
// Recoverable errors are retried immediately until req.Retries attempts have
// been made. Cancellation and any other error end the request at once. On
// every failure the partially written file is removed.
func (c *Controller) Run(ctx context.Context, strategy protocol.Strategy, req model.Request, localPath string, cancelled protocol.CancelCheck) model.Outcome {
	fields := logger.Fields{"uri": req.URI, "path": localPath}

	if err := fsutil.EnsureDir(req.DestDir); err != nil {
		err = fmt.Errorf("%w: %s: %w", errors.ErrDirectoryCreate, req.DestDir, err)
		logger.Error("Download failed", mergeFields(fields, logger.Fields{"error": err}))
		return model.Failed(req, localPath, 0, err)
	}

	maxAttempts := max(req.Retries, 1)
	attempts := 0
	var written int64

	err := retry.Do(
		func() error {
			if cancelled != nil && cancelled() {
				return protocol.ErrCancelled
			}
			attempts++
			logger.Debug(fmt.Sprintf("Download attempt %d of %d", attempts, maxAttempts), fields)
			n, err := c.attempt(ctx, strategy, req.URI, localPath, cancelled)
			written = n
			return err
		},
		retry.Attempts(uint(maxAttempts)),
		retry.Delay(0),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(protocol.IsRecoverable),
		retry.OnRetry(func(n uint, err error) {
			logger.Debug("Download attempt failed", mergeFields(fields, logger.Fields{"attempt": n + 1, "error": err}))
		}),
	)

	if err == nil {
		if recordErr := c.ledger.Record(req.URI, req.DestDir, localPath); recordErr != nil {
			logger.Error("Could not update ledger", mergeFields(fields, logger.Fields{"error": recordErr}))
		}
		logger.Success("Downloaded", mergeFields(fields, logger.Fields{"bytes": written, "attempts": attempts}))
		return model.Succeeded(req, localPath, written, attempts)
	}

	removePartial(localPath)

	switch {
	case stderrors.Is(err, protocol.ErrCancelled):
		err = fmt.Errorf("%w: %s", errors.ErrCancelled, req.URI)
		logger.Warn("Download interrupted", fields)
	case protocol.IsRecoverable(err):
		err = fmt.Errorf("%w after %d attempts: %w", errors.ErrRetriesExhausted, attempts, err)
		logger.Error("Download failed", mergeFields(fields, logger.Fields{"error": err}))
	default:
		err = fmt.Errorf("%w: %w", errors.ErrUnexpected, err)
		logger.Error("Download failed", mergeFields(fields, logger.Fields{"error": err}))
	}
	return model.Failed(req, localPath, attempts, err)
}

// attempt truncates localPath and fetches into it.
func (c *Controller) attempt(ctx context.Context, strategy protocol.Strategy, uri, localPath string, cancelled protocol.CancelCheck) (int64, error) {
	f, err := os.OpenFile(localPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, fsutil.FileModeDefault)
	if err != nil {
		return 0, err
	}
	n, fetchErr := strategy.Fetch(ctx, uri, f, cancelled)
	closeErr := f.Close()
	if fetchErr != nil {
		return n, fetchErr
	}
	return n, closeErr
}

func removePartial(localPath string) {
	removed, err := fsutil.RemoveFile(localPath)
	if err != nil {
		logger.Warn("Could not remove partial file", logger.Fields{"path": localPath, "error": err})
		return
	}
	if removed {
		logger.Debug("Removed partial file", logger.Fields{"path": localPath})
	}
}

func mergeFields(base, extra logger.Fields) logger.Fields {
	out := make(logger.Fields, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}
