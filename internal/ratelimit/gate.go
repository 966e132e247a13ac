// Package ratelimit provides a first-class call-budget gate for externally
// rate-limited sources. The gate combines a token-bucket per-second limit
// with a per-run call budget, so the budget is a testable component rather
// than an ad hoc sleep.
package ratelimit

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/time/rate"
)

// ErrBudgetExhausted is returned once the per-run call budget is spent.
// Callers treat it as "source exhausted for this run", not a fatal error.
var ErrBudgetExhausted = errors.New("call budget exhausted")

// Config holds gate settings.
type Config struct {
	// RequestsPerSecond is the sustained rate limit.
	RequestsPerSecond float64
	// BurstSize is the maximum burst size.
	BurstSize int
	// Budget is the total calls allowed per run. Zero means unlimited.
	Budget int
}

// DefaultSearchConfig mirrors Google Custom Search free-tier limits,
// conservatively: 100 queries/day, well under the per-second allowance.
func DefaultSearchConfig() Config {
	return Config{
		RequestsPerSecond: 1.0,
		BurstSize:         1,
		Budget:            100,
	}
}

// DefaultSendConfig paces outbound mail at 5 messages per minute.
func DefaultSendConfig() Config {
	return Config{
		RequestsPerSecond: 5.0 / 60.0,
		BurstSize:         1,
		Budget:            0,
	}
}

// Gate serializes access to a rate-limited resource. Safe for concurrent
// callers.
type Gate struct {
	limiter *rate.Limiter

	mu        sync.Mutex
	budget    int
	unlimited bool
	used      int
}

// NewGate creates a gate from a config.
func NewGate(cfg Config) *Gate {
	burst := cfg.BurstSize
	if burst < 1 {
		burst = 1
	}
	return &Gate{
		limiter:   rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst),
		budget:    cfg.Budget,
		unlimited: cfg.Budget <= 0,
	}
}

// Wait blocks until a call may be made, consuming one budget token.
// Returns ErrBudgetExhausted when the budget is spent, or ctx.Err() on
// cancellation. The budget token is consumed before waiting so concurrent
// callers cannot over-commit; a wait that fails refunds it, so Used()
// counts only calls actually granted.
func (g *Gate) Wait(ctx context.Context) error {
	if err := g.take(); err != nil {
		return err
	}
	if err := g.limiter.Wait(ctx); err != nil {
		g.refund()
		return err
	}
	return nil
}

// Exhausted reports whether the budget has been spent.
func (g *Gate) Exhausted() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return !g.unlimited && g.used >= g.budget
}

// Used returns the number of calls granted so far.
func (g *Gate) Used() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.used
}

func (g *Gate) refund() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.used--
}

func (g *Gate) take() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.unlimited && g.used >= g.budget {
		return ErrBudgetExhausted
	}
	g.used++
	return nil
}
