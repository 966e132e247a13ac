package sources

import (
	"context"
	"log"
	"time"

	"github.com/jonathan/outreach-agent/internal/fetch"
	"github.com/jonathan/outreach-agent/internal/types"
)

// careersPaths are the well-known path suffixes tried on every company
// domain. Unreachable pages are skipped, not propagated.
var careersPaths = []string{
	"/careers",
	"/jobs",
	"/career",
	"/join-us",
	"/work-with-us",
	"/hiring",
	"/contact",
}

// WebsiteScraperConfig configures a WebsiteScraper.
type WebsiteScraperConfig struct {
	Paths      []string       // defaults to careersPaths
	Scheme     string         // defaults to https
	Fetch      *fetch.Options // defaults to fetch.DefaultOptions()
	PageDelay  time.Duration  // pause between page fetches
	UseBrowser bool           // headless fallback for JS-rendered pages
	Verbose    bool
}

// WebsiteScraper fetches a fixed set of careers/contact pages from the
// company's own domain and emits one fragment per reachable page.
type WebsiteScraper struct {
	cfg WebsiteScraperConfig
}

// NewWebsiteScraper creates a WebsiteScraper.
func NewWebsiteScraper(cfg WebsiteScraperConfig) *WebsiteScraper {
	if len(cfg.Paths) == 0 {
		cfg.Paths = careersPaths
	}
	if cfg.Scheme == "" {
		cfg.Scheme = "https"
	}
	if cfg.Fetch == nil {
		cfg.Fetch = fetch.DefaultOptions()
	}
	return &WebsiteScraper{cfg: cfg}
}

// Kind returns the source kind for this adapter.
func (s *WebsiteScraper) Kind() types.SourceKind {
	return types.SourceSiteScrape
}

// Fetch tries each well-known path on the company domain. Network errors
// and non-2xx statuses are logged and skipped; whatever pages were reached
// are still returned.
func (s *WebsiteScraper) Fetch(ctx context.Context, company types.Company) ([]types.RawFragment, error) {
	var frags []types.RawFragment

	for i, path := range s.cfg.Paths {
		if i > 0 && s.cfg.PageDelay > 0 {
			if err := sleepCtx(ctx, s.cfg.PageDelay); err != nil {
				return frags, err
			}
		}
		if err := ctx.Err(); err != nil {
			return frags, err
		}

		pageURL := s.cfg.Scheme + "://" + company.Domain + path
		result, err := fetch.URL(ctx, pageURL, s.cfg.Fetch)
		if err != nil {
			if s.cfg.Verbose {
				log.Printf("[SCRAPE] %s: skipping: %v", company.Name, err)
			}
			continue
		}

		html := result.HTML
		if s.cfg.UseBrowser {
			if text, terr := fetch.ExtractMainText(html, fetch.CareersPageSelectors()); terr == nil && fetch.ShouldUseBrowser(text) {
				if rendered, berr := fetch.BrowserSimple(ctx, pageURL, s.cfg.Verbose); berr == nil {
					html = rendered
				} else if s.cfg.Verbose {
					log.Printf("[SCRAPE] %s: browser fallback failed for %s: %v", company.Name, pageURL, berr)
				}
			}
		}

		frags = append(frags, types.RawFragment{
			Company:     company,
			Source:      types.SourceSiteScrape,
			Content:     html,
			URL:         pageURL,
			RetrievedAt: time.Now(),
		})
	}

	return frags, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
