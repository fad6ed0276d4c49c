package crawler

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Pacer enforces the fixed outbound delay applied before every request.
// The target sites throttle fast sequential access, so this is a hard
// requirement of the pipeline, not an optimization.
type Pacer struct {
	limiter *rate.Limiter
}

// NewPacer builds a Pacer that blocks for the given delay before each fetch.
// A zero or negative delay disables pacing.
func NewPacer(delay time.Duration) *Pacer {
	if delay <= 0 {
		return &Pacer{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	l := rate.NewLimiter(rate.Every(delay), 1)
	// Drain the initial token so the very first request also waits.
	l.Allow()
	return &Pacer{limiter: l}
}

// Wait blocks until the next request may go out, or until ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("pacer wait: %w", err)
	}
	return nil
}
