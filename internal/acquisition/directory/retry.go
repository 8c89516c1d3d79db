package directory

import (
	"context"
	"fmt"
	"time"

	"beleads_backend/platform/logger"
)

// Retrying retries retryable failures with exponential back-off.
type Retrying struct {
	next        Source
	maxAttempts int
	baseDelay   time.Duration
	log         *logger.Logger
	sleep       func(ctx context.Context, d time.Duration) error
}

// NewRetrying wraps next. maxAttempts counts the first call.
func NewRetrying(next Source, maxAttempts int, baseDelay time.Duration, log *logger.Logger) *Retrying {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Retrying{
		next:        next,
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		log:         log,
		sleep:       sleepContext,
	}
}

func (r *Retrying) Search(ctx context.Context, query string, pageSize int, cursor string) (Page, error) {
	var lastErr error
	delay := r.baseDelay

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		page, err := r.next.Search(ctx, query, pageSize, cursor)
		if err == nil {
			return page, nil
		}
		lastErr = err

		if !IsRetryable(err) || attempt == r.maxAttempts {
			break
		}

		r.log.WithContext(ctx).Warn("directory search retry",
			"query", query,
			"attempt", attempt,
			"max_attempts", r.maxAttempts,
			"delay", delay.String(),
			"error", err.Error(),
		)
		if err := r.sleep(ctx, delay); err != nil {
			return Page{}, err
		}
		delay *= 2
	}

	return Page{}, fmt.Errorf("directory search failed after %d attempts: %w", r.maxAttempts, lastErr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
