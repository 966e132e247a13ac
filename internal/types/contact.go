// Package types provides type definitions for structured data used throughout the outreach-agent system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"strings"
	"time"
)

// SourceKind identifies the signal source a fragment or candidate came from.
type SourceKind string

// Source kinds, ordered by reliability of the evidence they produce.
const (
	// SourceSiteScrape is a page fetched directly from the company website.
	SourceSiteScrape SourceKind = "site-scrape"
	// SourceJobPosting is the body of a job posting.
	SourceJobPosting SourceKind = "job-posting"
	// SourceSearchSnippet is a search API result snippet.
	SourceSearchSnippet SourceKind = "search-snippet"
)

// Reliability returns the evidence weight rank of a source kind.
// Higher means more direct evidence: site-scrape > job-posting > search-snippet.
func (k SourceKind) Reliability() int {
	switch k {
	case SourceSiteScrape:
		return 3
	case SourceJobPosting:
		return 2
	case SourceSearchSnippet:
		return 1
	default:
		return 0
	}
}

// Company is a discovery target, loaded from the companies config file.
type Company struct {
	Name   string `json:"name"`
	Domain string `json:"domain"` // canonical domain, lowercase, no scheme
}

// RawFragment is one unit of raw text or markup produced by a source adapter.
// It is consumed immediately by the extractor and then discarded.
type RawFragment struct {
	Company     Company
	Source      SourceKind
	Content     string // raw HTML or plain text
	URL         string // where the content came from, for logging
	RetrievedAt time.Time
}

// Candidate is one validated, scored address extracted from a fragment.
// Email is guaranteed syntactically valid (local@domain, dotted domain)
// before a Candidate exists.
type Candidate struct {
	Company       Company
	Email         string
	Name          string // optional
	Title         string // optional
	Source        SourceKind
	RawConfidence float64 // in [0,1]
}

// ResolvedContact is the per-(company, email) aggregation unit.
type ResolvedContact struct {
	Company    Company
	Email      string // normalized: lowercase, trimmed
	Name       string
	Title      string
	Confidence float64
	Sources    []SourceKind // never empty, sorted by reliability desc
}

// NormalizeEmail canonicalizes an address for dedup keying.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
