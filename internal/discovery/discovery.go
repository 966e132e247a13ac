// Package discovery drives the per-company, per-source fetch loop and feeds
// extracted candidates into the contact store. A run always completes:
// per-call failures are absorbed, exhausted sources are retired, and
// cancellation yields whatever has been aggregated so far.
package discovery

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/outreach-agent/internal/extract"
	"github.com/jonathan/outreach-agent/internal/observability"
	"github.com/jonathan/outreach-agent/internal/sources"
	"github.com/jonathan/outreach-agent/internal/store"
	"github.com/jonathan/outreach-agent/internal/types"
	"github.com/jonathan/outreach-agent/internal/validate"
)

// Options holds run policy knobs.
type Options struct {
	// Workers bounds parallel company fetches. Values below 2 run the
	// orchestration sequentially, which is the default: sources are
	// network-bound and externally rate-limited.
	Workers int
	// SourceDelay is the pause between source calls for one company.
	SourceDelay time.Duration
	Verbose     bool
	// Progress receives per-company boxed output in verbose mode. Nil
	// disables it.
	Progress *observability.Printer
}

// Runner orchestrates one discovery run.
type Runner struct {
	sources   []sources.Source
	extractor *extract.Extractor
	validator *validate.Validator
	store     *store.Store
	opts      Options

	mu        sync.Mutex
	exhausted map[types.SourceKind]bool
}

// NewRunner wires the pipeline stages together. Source order is the fixed
// reliability order the adapters were registered in.
func NewRunner(srcs []sources.Source, extractor *extract.Extractor, validator *validate.Validator, st *store.Store, opts Options) *Runner {
	return &Runner{
		sources:   srcs,
		extractor: extractor,
		validator: validator,
		store:     st,
		opts:      opts,
		exhausted: make(map[types.SourceKind]bool),
	}
}

// Run processes companies in their configured order. It returns the
// finalized contact set; on cancellation the partial set is returned
// together with the context error, and is still valid output.
func (r *Runner) Run(ctx context.Context, companies []types.Company) ([]types.ResolvedContact, error) {
	if r.opts.Workers < 2 {
		for _, company := range companies {
			if ctx.Err() != nil {
				break
			}
			r.processCompany(ctx, company)
		}
	} else {
		g, gCtx := errgroup.WithContext(ctx)
		g.SetLimit(r.opts.Workers)
		for _, company := range companies {
			company := company
			g.Go(func() error {
				if gCtx.Err() != nil {
					return nil
				}
				r.processCompany(gCtx, company)
				return nil
			})
		}
		_ = g.Wait()
	}

	return r.store.Finalize(), ctx.Err()
}

// processCompany fetches every non-exhausted source for one company and
// merges whatever candidates survive validation.
func (r *Runner) processCompany(ctx context.Context, company types.Company) {
	var totalFrags, totalMerged int

	for i, src := range r.sources {
		if i > 0 && r.opts.SourceDelay > 0 {
			timer := time.NewTimer(r.opts.SourceDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}
		if ctx.Err() != nil {
			return
		}
		if r.isExhausted(src.Kind()) {
			continue
		}

		frags, err := src.Fetch(ctx, company)
		if err != nil {
			var rle *types.RateLimitExceededError
			switch {
			case errors.As(err, &rle):
				r.markExhausted(src.Kind())
				log.Printf("[RUN] source %s exhausted, retiring for remainder of run: %v", src.Kind(), err)
			case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
				// Fall through and merge what was fetched before the cutoff.
			default:
				log.Printf("[RUN] %s/%s: source failed, skipping: %v", company.Name, src.Kind(), err)
			}
		}

		merged := 0
		for _, frag := range frags {
			for _, match := range r.extractor.Extract(frag) {
				candidate, ok := r.validator.Validate(match, company, src.Kind())
				if !ok {
					continue
				}
				r.store.Add(candidate)
				merged++
			}
		}
		totalFrags += len(frags)
		totalMerged += merged
		if r.opts.Verbose {
			log.Printf("[RUN] %s/%s: %d fragments, %d candidates merged", company.Name, src.Kind(), len(frags), merged)
		}
	}

	if r.opts.Verbose && r.opts.Progress != nil {
		r.opts.Progress.PrintCompanyResult(company, totalFrags, totalMerged)
	}
}

// ExhaustedSources reports which sources were retired during the run.
func (r *Runner) ExhaustedSources() []types.SourceKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kinds []types.SourceKind
	for _, src := range r.sources {
		if r.exhausted[src.Kind()] {
			kinds = append(kinds, src.Kind())
		}
	}
	return kinds
}

func (r *Runner) isExhausted(kind types.SourceKind) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.exhausted[kind]
}

func (r *Runner) markExhausted(kind types.SourceKind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exhausted[kind] = true
}
