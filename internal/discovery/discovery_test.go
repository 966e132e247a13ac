package discovery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jonathan/outreach-agent/internal/extract"
	"github.com/jonathan/outreach-agent/internal/observability"
	"github.com/jonathan/outreach-agent/internal/sources"
	"github.com/jonathan/outreach-agent/internal/store"
	"github.com/jonathan/outreach-agent/internal/types"
	"github.com/jonathan/outreach-agent/internal/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testVocab = []string{"HR", "Recruiter", "Talent Acquisition"}
var testGeneric = []string{"info", "support", "contact", "noreply"}

// fakeSource scripts per-call behavior and records which companies it saw.
type fakeSource struct {
	kind  types.SourceKind
	fetch func(call int, company types.Company) ([]types.RawFragment, error)

	mu    sync.Mutex
	calls []string
}

func (f *fakeSource) Kind() types.SourceKind { return f.kind }

func (f *fakeSource) Fetch(_ context.Context, company types.Company) ([]types.RawFragment, error) {
	f.mu.Lock()
	call := len(f.calls)
	f.calls = append(f.calls, company.Name)
	f.mu.Unlock()
	if f.fetch == nil {
		return nil, nil
	}
	return f.fetch(call, company)
}

func (f *fakeSource) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func textFrag(company types.Company, kind types.SourceKind, text string) types.RawFragment {
	return types.RawFragment{Company: company, Source: kind, Content: text, RetrievedAt: time.Now()}
}

func newRunner(srcs []sources.Source, opts Options) (*Runner, *store.Store) {
	st := store.New(0)
	return NewRunner(srcs, extract.New(testVocab, testGeneric), validate.New(), st, opts), st
}

func companies(n int) []types.Company {
	out := make([]types.Company, n)
	for i := range out {
		out[i] = types.Company{
			Name:   fmt.Sprintf("Company%02d", i+1),
			Domain: fmt.Sprintf("company%02d.com", i+1),
		}
	}
	return out
}

func TestRun_VerboseProgressOutput(t *testing.T) {
	company := types.Company{Name: "Razorpay", Domain: "razorpay.com"}
	scrape := &fakeSource{
		kind: types.SourceSiteScrape,
		fetch: func(_ int, c types.Company) ([]types.RawFragment, error) {
			return []types.RawFragment{textFrag(c, types.SourceSiteScrape,
				"Contact our recruiter Jane Doe at jane.doe@razorpay.com")}, nil
		},
	}

	var buf bytes.Buffer
	runner, _ := newRunner([]sources.Source{scrape}, Options{
		Verbose:  true,
		Progress: observability.NewPrinter(&buf),
	})
	_, err := runner.Run(context.Background(), []types.Company{company})
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "COMPANY PROCESSED")
	assert.Contains(t, output, "Razorpay (razorpay.com)")
	assert.Contains(t, output, "Fragments:  1")
	assert.Contains(t, output, "Candidates: 1")
}

func TestRun_NoProgressWhenNotVerbose(t *testing.T) {
	company := types.Company{Name: "Razorpay", Domain: "razorpay.com"}
	scrape := &fakeSource{kind: types.SourceSiteScrape}

	var buf bytes.Buffer
	runner, _ := newRunner([]sources.Source{scrape}, Options{
		Progress: observability.NewPrinter(&buf),
	})
	_, err := runner.Run(context.Background(), []types.Company{company})
	require.NoError(t, err)

	assert.Empty(t, buf.String())
}

func TestRun_EndToEndSingleCompany(t *testing.T) {
	company := types.Company{Name: "Razorpay", Domain: "razorpay.com"}
	scrape := &fakeSource{
		kind: types.SourceSiteScrape,
		fetch: func(_ int, c types.Company) ([]types.RawFragment, error) {
			return []types.RawFragment{textFrag(c, types.SourceSiteScrape,
				"Contact our recruiter Jane Doe at jane.doe@razorpay.com for HR queries")}, nil
		},
	}

	runner, _ := newRunner([]sources.Source{scrape}, Options{})
	contacts, err := runner.Run(context.Background(), []types.Company{company})

	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, "jane.doe@razorpay.com", contacts[0].Email)
	assert.Equal(t, "Jane Doe", contacts[0].Name)
	assert.Equal(t, "recruiter", contacts[0].Title)
	assert.Equal(t, []types.SourceKind{types.SourceSiteScrape}, contacts[0].Sources)
	assert.Greater(t, contacts[0].Confidence, 0.8)
}

func TestRun_SourceExhaustionMidRun(t *testing.T) {
	comps := companies(10)

	scrape := &fakeSource{
		kind: types.SourceSiteScrape,
		fetch: func(_ int, c types.Company) ([]types.RawFragment, error) {
			return []types.RawFragment{textFrag(c, types.SourceSiteScrape, "Write to hr@"+c.Domain)}, nil
		},
	}
	// Search source blows its budget on the third company.
	search := &fakeSource{
		kind: types.SourceSearchSnippet,
		fetch: func(call int, c types.Company) ([]types.RawFragment, error) {
			if call >= 2 {
				return nil, &types.RateLimitExceededError{Source: types.SourceSearchSnippet, Message: "budget spent"}
			}
			return []types.RawFragment{textFrag(c, types.SourceSearchSnippet, "snippet hr@"+c.Domain)}, nil
		},
	}

	runner, _ := newRunner([]sources.Source{scrape, search}, Options{})
	contacts, err := runner.Run(context.Background(), comps)

	require.NoError(t, err)
	assert.NotEmpty(t, contacts)

	// Scraping continued for all ten companies.
	assert.Len(t, scrape.seen(), 10)
	// The search source stopped being called after it signalled exhaustion:
	// companies #1-#3 only.
	assert.Equal(t, []string{"Company01", "Company02", "Company03"}, search.seen())
	assert.Equal(t, []types.SourceKind{types.SourceSearchSnippet}, runner.ExhaustedSources())

	// Every company still produced a contact from scraping.
	companiesSeen := make(map[string]bool)
	for _, c := range contacts {
		companiesSeen[c.Company.Name] = true
	}
	assert.Len(t, companiesSeen, 10)
}

func TestRun_PerCallFailuresAbsorbed(t *testing.T) {
	comps := companies(3)

	flaky := &fakeSource{
		kind: types.SourceSiteScrape,
		fetch: func(call int, c types.Company) ([]types.RawFragment, error) {
			if call == 1 {
				return nil, &types.SourceUnavailableError{Source: types.SourceSiteScrape, Message: "timeout"}
			}
			return []types.RawFragment{textFrag(c, types.SourceSiteScrape, "careers@"+c.Domain)}, nil
		},
	}

	runner, _ := newRunner([]sources.Source{flaky}, Options{})
	contacts, err := runner.Run(context.Background(), comps)

	require.NoError(t, err)
	assert.Len(t, flaky.seen(), 3)
	assert.Len(t, contacts, 2)
	assert.Empty(t, runner.ExhaustedSources())
}

func TestRun_CancellationYieldsPartialResults(t *testing.T) {
	comps := companies(5)
	ctx, cancel := context.WithCancel(context.Background())

	src := &fakeSource{
		kind: types.SourceSiteScrape,
		fetch: func(call int, c types.Company) ([]types.RawFragment, error) {
			if call == 1 {
				cancel()
			}
			return []types.RawFragment{textFrag(c, types.SourceSiteScrape, "hr@"+c.Domain)}, nil
		},
	}

	runner, _ := newRunner([]sources.Source{src}, Options{})
	contacts, err := runner.Run(ctx, comps)

	assert.ErrorIs(t, err, context.Canceled)
	// Partial results are valid output, not failure.
	assert.NotEmpty(t, contacts)
	assert.Less(t, len(src.seen()), 5)
}

func TestRun_PartialFragmentsMergedDespiteExhaustion(t *testing.T) {
	company := types.Company{Name: "Paytm", Domain: "paytm.com"}
	src := &fakeSource{
		kind: types.SourceSearchSnippet,
		fetch: func(_ int, c types.Company) ([]types.RawFragment, error) {
			// Budget died mid-fetch but two snippets made it out.
			return []types.RawFragment{
					textFrag(c, types.SourceSearchSnippet, "hr@paytm.com"),
					textFrag(c, types.SourceSearchSnippet, "talent@paytm.com"),
				},
				&types.RateLimitExceededError{Source: types.SourceSearchSnippet, Message: "budget spent"}
		},
	}

	runner, _ := newRunner([]sources.Source{src}, Options{})
	contacts, err := runner.Run(context.Background(), []types.Company{company})

	require.NoError(t, err)
	assert.Len(t, contacts, 2)
}

func TestRun_BoundedParallelism(t *testing.T) {
	comps := companies(8)
	src := &fakeSource{
		kind: types.SourceSiteScrape,
		fetch: func(_ int, c types.Company) ([]types.RawFragment, error) {
			return []types.RawFragment{textFrag(c, types.SourceSiteScrape, "hr@"+c.Domain)}, nil
		},
	}

	runner, _ := newRunner([]sources.Source{src}, Options{Workers: 4})
	contacts, err := runner.Run(context.Background(), comps)

	require.NoError(t, err)
	assert.Len(t, contacts, 8)
	assert.Len(t, src.seen(), 8)
}

func TestRun_ValidationRejectsForeignDomains(t *testing.T) {
	company := types.Company{Name: "Zerodha", Domain: "zerodha.com"}
	src := &fakeSource{
		kind: types.SourceSiteScrape,
		fetch: func(_ int, c types.Company) ([]types.RawFragment, error) {
			return []types.RawFragment{textFrag(c, types.SourceSiteScrape,
				"Partners: sales@vendor.example.com and hiring hr@zerodha.com")}, nil
		},
	}

	runner, _ := newRunner([]sources.Source{src}, Options{})
	contacts, err := runner.Run(context.Background(), []types.Company{company})

	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, "hr@zerodha.com", contacts[0].Email)
}

func TestRun_NonRateLimitErrorDoesNotRetireSource(t *testing.T) {
	comps := companies(2)
	src := &fakeSource{
		kind: types.SourceJobPosting,
		fetch: func(call int, c types.Company) ([]types.RawFragment, error) {
			if call == 0 {
				return nil, errors.New("transient network blip")
			}
			return []types.RawFragment{textFrag(c, types.SourceJobPosting, "apply: jobs@"+c.Domain)}, nil
		},
	}

	runner, _ := newRunner([]sources.Source{src}, Options{})
	contacts, err := runner.Run(context.Background(), comps)

	require.NoError(t, err)
	assert.Len(t, src.seen(), 2)
	assert.Len(t, contacts, 1)
}
