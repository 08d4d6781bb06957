package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// BulkResult aggregates one batch invocation. It is transient, never
// persisted; the caller presents the summary.
type BulkResult struct {
	SuccessCount int               `json:"success_count"`
	FailCount    int               `json:"fail_count"`
	Errors       map[string]string `json:"errors,omitempty"`
}

// BatchOptions tunes one RunBatch call.
type BatchOptions[T any] struct {
	// Key renders a target id for the per-target error map.
	Key func(T) string
	// AfterSuccess runs after each successful target, best-effort. Its own
	// failure is logged and swallowed; it never downgrades the target's
	// recorded outcome.
	AfterSuccess func(ctx context.Context, target T) error
	Logger       *zap.Logger
}

// RunBatch applies op to each target strictly sequentially, isolating
// failures per target: one bad record never prevents the remaining targets
// from being processed. Context cancellation is checked between targets;
// already-processed targets keep their outcome, the rest are recorded as
// failed. The executor applies no eligibility policy; callers pre-filter.
func RunBatch[T any](ctx context.Context, targets []T, op func(ctx context.Context, target T) error, opts BatchOptions[T]) BulkResult {
	key := opts.Key
	if key == nil {
		key = func(t T) string { return fmt.Sprint(t) }
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	result := BulkResult{Errors: make(map[string]string)}

	for i, target := range targets {
		if err := ctx.Err(); err != nil {
			for _, rest := range targets[i:] {
				result.FailCount++
				result.Errors[key(rest)] = err.Error()
			}
			logger.Warn("batch aborted",
				zap.Int("processed", i),
				zap.Int("remaining", len(targets)-i),
				zap.Error(err))
			break
		}

		if err := op(ctx, target); err != nil {
			result.FailCount++
			result.Errors[key(target)] = err.Error()
			logger.Warn("batch target failed",
				zap.String("target", key(target)),
				zap.Error(err))
			continue
		}

		result.SuccessCount++

		if opts.AfterSuccess != nil {
			if err := opts.AfterSuccess(ctx, target); err != nil {
				logger.Warn("batch post-success hook failed",
					zap.String("target", key(target)),
					zap.Error(err))
			}
		}
	}

	if len(result.Errors) == 0 {
		result.Errors = nil
	}
	return result
}

// Summary renders the user-facing "X succeeded, Y failed" line.
func (r BulkResult) Summary() string {
	return fmt.Sprintf("%d succeeded, %d failed", r.SuccessCount, r.FailCount)
}
