package describe

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// CachedDescriber memoises descriptions by image content and target.
type CachedDescriber struct {
	next  Describer
	cache *cache.Cache
}

// NewCachedDescriber wraps next with an in-memory cache entry per image.
func NewCachedDescriber(next Describer, ttl time.Duration) *CachedDescriber {
	return &CachedDescriber{
		next:  next,
		cache: cache.New(ttl, 2*ttl),
	}
}

// Describe returns a cached description or asks the wrapped describer.
// Failures are never cached.
func (c *CachedDescriber) Describe(ctx context.Context, img Image, target Target) (string, error) {
	key := cacheKey(img, target)
	if v, ok := c.cache.Get(key); ok {
		if text, ok := v.(string); ok {
			slog.Debug("description cache hit", "target", target)
			return text, nil
		}
	}

	text, err := c.next.Describe(ctx, img, target)
	if err != nil {
		return "", err
	}
	c.cache.SetDefault(key, text)
	return text, nil
}

// Len returns the number of cached descriptions.
func (c *CachedDescriber) Len() int {
	return c.cache.ItemCount()
}

func cacheKey(img Image, target Target) string {
	sum := sha256.Sum256(img.Data)
	return fmt.Sprintf("%s:%s", target, hex.EncodeToString(sum[:]))
}

// RateLimited spaces calls to a describer.
type RateLimited struct {
	next    Describer
	limiter *rate.Limiter
}

// NewRateLimited allows one call per interval with no burst.
func NewRateLimited(next Describer, interval time.Duration) *RateLimited {
	return &RateLimited{
		next:    next,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Describe waits for the limiter and then delegates.
func (r *RateLimited) Describe(ctx context.Context, img Image, target Target) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}
	return r.next.Describe(ctx, img, target)
}
