package imagegen

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// RateLimited paces requests to a generator. Concurrent callers queue on
// the limiter.
type RateLimited struct {
	next    Generator
	limiter *rate.Limiter
}

// NewRateLimited allows one request per interval with the given burst.
func NewRateLimited(next Generator, interval time.Duration, burst int) *RateLimited {
	if burst < 1 {
		burst = 1
	}
	return &RateLimited{
		next:    next,
		limiter: rate.NewLimiter(rate.Every(interval), burst),
	}
}

// Generate waits for the limiter and then delegates.
func (r *RateLimited) Generate(ctx context.Context, req Request) (*Result, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	return r.next.Generate(ctx, req)
}
