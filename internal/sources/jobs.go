package sources

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jonathan/outreach-agent/internal/fetch"
	"github.com/jonathan/outreach-agent/internal/types"
)

// maxPostingsPerCompany bounds how many posting pages are fetched per
// company; postings are long and one or two carry most of the signal.
const maxPostingsPerCompany = 3

// JobPostingAdapter locates job postings that mention contact details and
// emits one fragment per posting body.
type JobPostingAdapter struct {
	client *SearchClient
	opts   *fetch.Options
}

// NewJobPostingAdapter creates a JobPostingAdapter on a shared search client.
func NewJobPostingAdapter(client *SearchClient, opts *fetch.Options) *JobPostingAdapter {
	if opts == nil {
		opts = fetch.DefaultOptions()
	}
	return &JobPostingAdapter{client: client, opts: opts}
}

// Kind returns the source kind for this adapter.
func (a *JobPostingAdapter) Kind() types.SourceKind {
	return types.SourceJobPosting
}

func jobQuery(company types.Company) string {
	return fmt.Sprintf(`"%s" job posting "contact" "apply" email`, company.Name)
}

// Fetch searches for postings, then retrieves each posting body. A failed
// posting fetch is skipped; exhaustion of the shared search budget is
// returned so the orchestrator retires this source.
func (a *JobPostingAdapter) Fetch(ctx context.Context, company types.Company) ([]types.RawFragment, error) {
	items, err := a.client.search(ctx, jobQuery(company), a.Kind())
	if err != nil {
		var rle *types.RateLimitExceededError
		if errors.As(err, &rle) {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Printf("[JOBS] %s: posting search failed: %v", company.Name, err)
		return nil, nil
	}

	var frags []types.RawFragment
	for _, item := range items {
		if len(frags) >= maxPostingsPerCompany {
			break
		}
		if item == nil || item.Link == "" || skipPostingURL(item.Link) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return frags, err
		}

		result, err := fetch.URL(ctx, item.Link, a.opts)
		if err != nil {
			log.Printf("[JOBS] %s: skipping posting %s: %v", company.Name, item.Link, err)
			continue
		}

		frags = append(frags, types.RawFragment{
			Company:     company,
			Source:      types.SourceJobPosting,
			Content:     result.HTML,
			URL:         item.Link,
			RetrievedAt: time.Now(),
		})
	}

	return frags, nil
}

// skipPostingURL filters result links that never contain reachable posting
// bodies (login-walled profiles and the like).
func skipPostingURL(link string) bool {
	return strings.Contains(link, "linkedin.com")
}
