package sources

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jonathan/outreach-agent/internal/ratelimit"
	"github.com/jonathan/outreach-agent/internal/types"
	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// DefaultResultsPerQuery bounds how many results each query asks for.
const DefaultResultsPerQuery = 5

// SearchClient wraps the Google Custom Search service behind the shared
// budget gate. Both search-backed adapters go through it, so the external
// quota is enforced in exactly one place.
type SearchClient struct {
	svc     *customsearch.Service
	cx      string
	gate    *ratelimit.Gate
	num     int64
	verbose bool
}

// NewSearchClient creates a client for the Custom Search API. Extra client
// options (endpoint overrides for tests) are appended after the API key.
func NewSearchClient(ctx context.Context, apiKey, cx string, gate *ratelimit.Gate, extra ...option.ClientOption) (*SearchClient, error) {
	opts := make([]option.ClientOption, 0, len(extra)+1)
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	opts = append(opts, extra...)

	svc, err := customsearch.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create customsearch service: %w", err)
	}
	return &SearchClient{
		svc:  svc,
		cx:   cx,
		gate: gate,
		num:  DefaultResultsPerQuery,
	}, nil
}

// SetVerbose enables per-query logging.
func (c *SearchClient) SetVerbose(v bool) { c.verbose = v }

// search issues one gated query. A spent budget or a 429 from the API maps
// to RateLimitExceededError; other per-call failures are absorbed by the
// caller as "no contribution".
func (c *SearchClient) search(ctx context.Context, query string, kind types.SourceKind) ([]*customsearch.Result, error) {
	if err := c.gate.Wait(ctx); err != nil {
		if errors.Is(err, ratelimit.ErrBudgetExhausted) {
			return nil, &types.RateLimitExceededError{Source: kind, Message: "query budget spent", Cause: err}
		}
		return nil, err
	}

	resp, err := c.svc.Cse.List().Cx(c.cx).Q(query).Num(c.num).Context(ctx).Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == http.StatusTooManyRequests {
			return nil, &types.RateLimitExceededError{Source: kind, Message: "API returned 429", Cause: err}
		}
		return nil, &types.SourceUnavailableError{Source: kind, Message: "search query failed", Cause: err}
	}
	if resp == nil {
		return nil, &types.MalformedResponseError{Source: kind, Message: "empty search payload"}
	}

	if c.verbose {
		log.Printf("[SEARCH] %q returned %d results", query, len(resp.Items))
	}
	return resp.Items, nil
}

// SearchAPIAdapter turns HR-targeted search queries into snippet fragments.
type SearchAPIAdapter struct {
	client *SearchClient
}

// NewSearchAPIAdapter creates a SearchAPIAdapter on a shared client.
func NewSearchAPIAdapter(client *SearchClient) *SearchAPIAdapter {
	return &SearchAPIAdapter{client: client}
}

// Kind returns the source kind for this adapter.
func (s *SearchAPIAdapter) Kind() types.SourceKind {
	return types.SourceSearchSnippet
}

// hrQueries are the query templates aimed at HR mailboxes and recruiter
// profiles for one company.
func hrQueries(company types.Company) []string {
	return []string{
		fmt.Sprintf(`site:%s "careers@" OR "hr@" OR "jobs@" OR "recruitment@"`, company.Domain),
		fmt.Sprintf(`"%s" recruiter email site:%s`, company.Name, company.Domain),
		fmt.Sprintf(`"%s" talent acquisition email`, company.Name),
		fmt.Sprintf(`"%s" "HR" OR "Talent Acquisition" OR "Recruiter" site:linkedin.com/in`, company.Name),
	}
}

// Fetch runs each HR query and emits one fragment per result snippet.
// Per-query failures are skipped; rate-limit exhaustion stops querying and
// is returned alongside whatever was already fetched.
func (s *SearchAPIAdapter) Fetch(ctx context.Context, company types.Company) ([]types.RawFragment, error) {
	var frags []types.RawFragment

	for _, query := range hrQueries(company) {
		items, err := s.client.search(ctx, query, s.Kind())
		if err != nil {
			var rle *types.RateLimitExceededError
			if errors.As(err, &rle) {
				return frags, err
			}
			if ctx.Err() != nil {
				return frags, ctx.Err()
			}
			log.Printf("[SEARCH] %s: skipping query: %v", company.Name, err)
			continue
		}

		for _, item := range items {
			if item == nil {
				continue
			}
			frags = append(frags, types.RawFragment{
				Company:     company,
				Source:      types.SourceSearchSnippet,
				Content:     item.Title + "\n" + item.Snippet,
				URL:         item.Link,
				RetrievedAt: time.Now(),
			})
		}
	}

	return frags, nil
}
