//go:generate mockgen -destination=./mocks/orchestrator.go . PostAction,Observer

package orchestrator

import (
	"context"

	"github.com/glorpus-work/multifetch/pkg/model"
	"github.com/glorpus-work/multifetch/pkg/protocol"
)

// StrategyLookup maps a URI to the strategy that can fetch it.
type StrategyLookup interface {
	Lookup(uri string) (protocol.Strategy, error)
}

// Runner resolves the local path of a request and drives its attempts.
type Runner interface {
	Resolve(req model.Request) string
	Run(ctx context.Context, strategy protocol.Strategy, req model.Request, localPath string, cancelled protocol.CancelCheck) model.Outcome
}

// PostAction runs after a successful download. Its error is logged and never
// changes the outcome.
type PostAction interface {
	AfterDownload(ctx context.Context, outcome model.Outcome) error
}

// Observer is told about every outcome, skips included.
type Observer interface {
	Observe(outcome model.Outcome)
}

// Event represents a simple progress notification.
type Event struct {
	Phase string // skipped|downloading|succeeded|failed|interrupted
	URI   string
	Msg   string
}

// Hooks carries callbacks for progress events. OnEvent is called from worker
// goroutines and must be safe for concurrent use.
type Hooks struct {
	OnEvent func(Event)
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithMaxWorkers caps the number of concurrent downloads. Zero or less means one per request.
func WithMaxWorkers(n int) Option {
	return func(o *Orchestrator) { o.maxWorkers = n }
}

// WithStopFlag shares an externally owned stop flag.
func WithStopFlag(flag *StopFlag) Option {
	return func(o *Orchestrator) {
		if flag != nil {
			o.stop = flag
		}
	}
}

// WithPostActions appends actions run after each successful download, in order.
func WithPostActions(actions ...PostAction) Option {
	return func(o *Orchestrator) { o.postActions = append(o.postActions, actions...) }
}

// WithObservers appends outcome observers.
func WithObservers(observers ...Observer) Option {
	return func(o *Orchestrator) { o.observers = append(o.observers, observers...) }
}

// WithHooks sets the progress callbacks.
func WithHooks(hooks Hooks) Option {
	return func(o *Orchestrator) { o.hooks = hooks }
}
