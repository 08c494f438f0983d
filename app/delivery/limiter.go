package delivery

import (
	"context"
	"time"

	"github.com/lysyi3m/wire-comb/app/metrics"
	"golang.org/x/time/rate"
)

// Limiter blocks until a dispatch may proceed.
type Limiter interface {
	Wait(ctx context.Context) error
}

// RateLimiter admits perMinute dispatches per minute for one API category.
type RateLimiter struct {
	category string
	limiter  *rate.Limiter
}

func NewRateLimiter(category string, perMinute int) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 1
	}
	return &RateLimiter{
		category: category,
		limiter:  rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1),
	}
}

func (l *RateLimiter) Wait(ctx context.Context) error {
	start := time.Now()
	err := l.limiter.Wait(ctx)
	metrics.RateLimitWait.WithLabelValues(l.category).Observe(time.Since(start).Seconds())
	return err
}

type unlimited struct{}

func (unlimited) Wait(ctx context.Context) error {
	return ctx.Err()
}

// Unlimited never blocks.
func Unlimited() Limiter {
	return unlimited{}
}
