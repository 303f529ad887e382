package rdm

import (
	"context"
	"encoding/json"

	"github.com/brendan.keane/rdmctl/internal/errors"
	"github.com/brendan.keane/rdmctl/internal/logger"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Executor runs one resolved request
type Executor interface {
	Dispatch(ctx context.Context, req Request) (json.RawMessage, error)
}

// Runner processes input items strictly one after another
type Runner struct {
	logger         zerolog.Logger
	resolver       *Resolver
	executor       Executor
	continueOnFail bool
}

// RunnerOption configures a Runner
type RunnerOption func(*Runner)

// WithContinueOnFail turns per-item failures into {error: message} items
func WithContinueOnFail(enabled bool) RunnerOption {
	return func(r *Runner) {
		r.continueOnFail = enabled
	}
}

// WithResolver replaces the default resolver
func WithResolver(resolver *Resolver) RunnerOption {
	return func(r *Runner) {
		r.resolver = resolver
	}
}

// NewRunner creates a runner around an executor, usually a *Dispatcher
func NewRunner(log zerolog.Logger, executor Executor, opts ...RunnerOption) *Runner {
	r := &Runner{
		logger:   logger.ForComponent(log, "runner"),
		resolver: NewResolver(),
		executor: executor,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run resolves and dispatches every item of source. Without continue-on-fail
// the first failure aborts the run and no output is returned. Requests
// already issued are never retried or undone.
func (r *Runner) Run(ctx context.Context, source ParameterSource) ([]OutputItem, error) {
	runLogger := r.logger.With().Str("run_id", uuid.NewString()).Logger()

	count := source.ItemCount()
	if count == 0 {
		runLogger.Debug().Msg("no input items")
		return nil, nil
	}

	key, keyErr := r.resolver.ResolveKey(source)

	runLogger.Debug().
		Int("items", count).
		Str("operation", key.String()).
		Bool("continue_on_fail", r.continueOnFail).
		Msg("run started")

	var output []OutputItem
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeInternal, "run cancelled").
				WithContext("item_index", i)
		}

		itemLogger := logger.ForItem(runLogger, i)

		items, err := r.runItem(ctx, source, key, keyErr, i)
		if err != nil {
			if r.continueOnFail {
				itemLogger.Warn().Err(err).Msg("item failed, continuing")
				output = append(output, OutputItem{JSON: ErrorResult(err.Error()), PairedItem: i})
				continue
			}

			itemLogger.Debug().Err(err).Msg("item failed, aborting run")
			return nil, errors.WithItemIndex(err, i)
		}

		itemLogger.Debug().Int("results", len(items)).Msg("item completed")
		output = append(output, items...)
	}

	runLogger.Debug().Int("results", len(output)).Msg("run finished")

	return output, nil
}

func (r *Runner) runItem(ctx context.Context, source ParameterSource, key Key, keyErr error, itemIndex int) ([]OutputItem, error) {
	if keyErr != nil {
		return nil, keyErr
	}

	req, err := r.resolver.Resolve(source, key, itemIndex)
	if err != nil {
		return nil, err
	}

	resp, err := r.executor.Dispatch(ctx, req)
	if err != nil {
		return nil, err
	}

	return Normalize(resp, itemIndex), nil
}
