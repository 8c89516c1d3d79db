package directory

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimited shares one token bucket across every caller of the upstream.
type RateLimited struct {
	next    Source
	limiter *rate.Limiter
}

// NewRateLimited allows reqPerSec calls per second with the given burst.
func NewRateLimited(next Source, reqPerSec float64, burst int) *RateLimited {
	if burst < 1 {
		burst = 1
	}
	return &RateLimited{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(reqPerSec), burst),
	}
}

func (r *RateLimited) Search(ctx context.Context, query string, pageSize int, cursor string) (Page, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return Page{}, err
	}
	return r.next.Search(ctx, query, pageSize, cursor)
}
