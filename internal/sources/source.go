// Package sources implements the signal source adapters: direct website
// scraping, search API queries, and job posting bodies. Adapters yield
// partial results on partial failure; only rate-limit exhaustion is
// reported as a distinct condition so the orchestrator can retire the
// source for the rest of the run.
package sources

import (
	"context"

	"github.com/jonathan/outreach-agent/internal/types"
)

// Source fetches raw candidate fragments for one company from one signal
// source. Fragments already fetched are returned even when an error is:
// a partially failed fetch still contributes.
type Source interface {
	Kind() types.SourceKind
	Fetch(ctx context.Context, company types.Company) ([]types.RawFragment, error)
}

var (
	_ Source = (*WebsiteScraper)(nil)
	_ Source = (*SearchAPIAdapter)(nil)
	_ Source = (*JobPostingAdapter)(nil)
)
