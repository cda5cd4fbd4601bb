// Package orchestrator fans a batch of download requests out over a bounded
// pool of workers and collects one outcome per request.
package orchestrator

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/glorpus-work/multifetch/internal/logger"
	"github.com/glorpus-work/multifetch/pkg/model"
	"github.com/glorpus-work/multifetch/pkg/protocol"
)

// Orchestrator ties the strategy registry and the retry controller together for a batch.
type Orchestrator struct {
	strategies  StrategyLookup
	runner      Runner
	maxWorkers  int
	stop        *StopFlag
	postActions []PostAction
	observers   []Observer
	hooks       Hooks

	mu      sync.Mutex
	pending <-chan model.Outcome
}

// New constructs an Orchestrator. Without WithStopFlag it owns a fresh flag.
func New(strategies StrategyLookup, runner Runner, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		strategies: strategies,
		runner:     runner,
		stop:       NewStopFlag(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Stop asks running downloads to end at their next cancellation check.
func (o *Orchestrator) Stop() {
	o.stop.Stop()
}

// Stopped reports whether the run has been interrupted.
func (o *Orchestrator) Stopped() bool {
	return o.stop.Stopped()
}

type unit struct {
	req      model.Request
	strategy protocol.Strategy
}

func emit(h Hooks, e Event) {
	if h.OnEvent != nil {
		h.OnEvent(e)
	}
}

// Run downloads every request and returns the outcomes: skips first, then
// completions in the order they finished.
//
// Cancelling ctx (or calling Stop) sets the stop flag. Run then returns what
// it has gathered so far without waiting for in-flight downloads; those end on
// their own at their next cancellation check. Call Wait before the process
// exits so they can remove their partial files.
func (o *Orchestrator) Run(ctx context.Context, requests []model.Request) []model.Outcome {
	outcomes := make([]model.Outcome, 0, len(requests))
	o.setPending(nil)

	work := make([]unit, 0, len(requests))
	for _, req := range requests {
		strategy, err := o.strategies.Lookup(req.URI)
		if err != nil {
			logger.Warn("Skipping request", logger.Fields{"uri": req.URI, "error": err})
			out := model.Skipped(req, err)
			o.observe(out)
			emit(o.hooks, Event{Phase: "skipped", URI: req.URI, Msg: err.Error()})
			outcomes = append(outcomes, out)
			continue
		}
		work = append(work, unit{req: req, strategy: strategy})
	}
	if len(work) == 0 {
		return outcomes
	}

	limit := o.maxWorkers
	if limit <= 0 || limit > len(work) {
		limit = len(work)
	}
	logger.Debug("Starting downloads", logger.Fields{"requests": len(work), "workers": limit})

	// Units must outlive an interrupt of ctx so they can clean up their partial files.
	unitCtx := context.WithoutCancel(ctx)
	results := make(chan model.Outcome, len(work))
	o.setPending(results)

	var g errgroup.Group
	g.SetLimit(limit)
	go func() {
		for _, w := range work {
			if o.stop.Stopped() {
				break
			}
			g.Go(func() error {
				if o.stop.Stopped() {
					return nil
				}
				results <- o.runUnit(unitCtx, w)
				return nil
			})
		}
		_ = g.Wait()
		close(results)
	}()

	for {
		if o.stop.Stopped() {
			return o.interrupted(outcomes, results)
		}
		select {
		case out, ok := <-results:
			if !ok {
				return outcomes
			}
			outcomes = append(outcomes, out)
		case <-ctx.Done():
			logger.Warn("Interrupt received, stopping downloads")
			o.stop.Stop()
		case <-o.stop.Done():
		}
	}
}

// Wait blocks until the units still running after an interrupted Run have
// finished, or ctx is done, and returns the outcomes they produced. After a
// Run that was not interrupted it returns immediately.
func (o *Orchestrator) Wait(ctx context.Context) ([]model.Outcome, error) {
	o.mu.Lock()
	results := o.pending
	o.mu.Unlock()
	if results == nil {
		return nil, nil
	}

	var late []model.Outcome
	for {
		select {
		case out, ok := <-results:
			if !ok {
				o.setPending(nil)
				return late, nil
			}
			late = append(late, out)
		case <-ctx.Done():
			return late, ctx.Err()
		}
	}
}

func (o *Orchestrator) setPending(results <-chan model.Outcome) {
	o.mu.Lock()
	o.pending = results
	o.mu.Unlock()
}

// interrupted collects results that already arrived and returns without waiting for more.
func (o *Orchestrator) interrupted(outcomes []model.Outcome, results <-chan model.Outcome) []model.Outcome {
	for {
		select {
		case out, ok := <-results:
			if !ok {
				return outcomes
			}
			outcomes = append(outcomes, out)
		default:
			emit(o.hooks, Event{Phase: "interrupted"})
			return outcomes
		}
	}
}

func (o *Orchestrator) runUnit(ctx context.Context, w unit) model.Outcome {
	localPath := o.runner.Resolve(w.req)
	emit(o.hooks, Event{Phase: "downloading", URI: w.req.URI, Msg: localPath})

	out := o.runner.Run(ctx, w.strategy, w.req, localPath, o.stop.Stopped)

	if out.Status == model.StatusSucceeded {
		for _, action := range o.postActions {
			if err := action.AfterDownload(ctx, out); err != nil {
				logger.Warn("Post-download action failed", logger.Fields{"uri": w.req.URI, "path": out.LocalPath, "error": err})
			}
		}
	}

	o.observe(out)
	emit(o.hooks, Event{Phase: out.Status.String(), URI: w.req.URI, Msg: out.LocalPath})
	return out
}

func (o *Orchestrator) observe(out model.Outcome) {
	for _, obs := range o.observers {
		obs.Observe(out)
	}
}
