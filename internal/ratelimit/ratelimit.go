// Package ratelimit provides blocking token buckets, one per external API
// class. A caller that would exceed budget waits until capacity frees rather
// than receiving an error.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Venue budgets: trading/account calls and sentiment-feed calls are metered
// independently.
const (
	TradingCalls   = 15
	SentimentCalls = 5
	BudgetWindow   = 60 * time.Second
)

// Bucket is a token bucket granting `calls` tokens per `per` window.
type Bucket struct {
	limiter *rate.Limiter
}

// NewBucket creates a bucket with a full initial burst of `calls` tokens.
func NewBucket(calls int, per time.Duration) *Bucket {
	return &Bucket{
		limiter: rate.NewLimiter(rate.Limit(float64(calls)/per.Seconds()), calls),
	}
}

// NewTradingBucket returns the bucket for trading and account calls.
func NewTradingBucket() *Bucket {
	return NewBucket(TradingCalls, BudgetWindow)
}

// NewSentimentBucket returns the bucket for sentiment-feed calls.
func NewSentimentBucket() *Bucket {
	return NewBucket(SentimentCalls, BudgetWindow)
}

// Wait blocks until a token is available or the context is cancelled.
func (b *Bucket) Wait(ctx context.Context) error {
	return b.limiter.Wait(ctx)
}

// TryAcquire reports whether a token was immediately available.
func (b *Bucket) TryAcquire() bool {
	return b.limiter.Allow()
}
