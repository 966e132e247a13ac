// Package validate filters and scores extracted address matches into
// candidates. Scoring is a pure function of fixed policy weights so the
// confidence of any candidate can be reproduced from its inputs.
package validate

import (
	"strings"

	"github.com/jonathan/outreach-agent/internal/extract"
	"github.com/jonathan/outreach-agent/internal/types"
)

// Scoring policy constants. The qualitative ordering is what matters:
// domain match > personal address > corroboration. Exact values are policy,
// documented here and in DESIGN.md.
const (
	// Base weight per source kind, reflecting directness of evidence.
	baseSiteScrape    = 0.50
	baseJobPosting    = 0.40
	baseSearchSnippet = 0.30

	// Domain match bonus: full match > subdomain > free-mail provider.
	bonusDomainExact     = 0.25
	bonusDomainSubdomain = 0.15
	bonusDomainFreeMail  = 0.05

	// Context bonuses.
	bonusName  = 0.10
	bonusTitle = 0.10

	// Generic local-parts (info@, support@, ...) are kept but depressed.
	genericPenaltyFactor = 0.5
)

// freeMailProviders are personal-mail domains recruiters sometimes use.
// Addresses there are low-confidence, not rejected.
var freeMailProviders = map[string]bool{
	"gmail.com":   true,
	"yahoo.com":   true,
	"hotmail.com": true,
	"outlook.com": true,
}

// DomainMatch classifies how an address domain relates to the company domain.
type DomainMatch int

// Domain match classes, strongest first.
const (
	DomainMismatch DomainMatch = iota
	DomainFreeMail
	DomainSubdomain
	DomainExact
)

// Validator applies the rejection rules and computes raw confidence.
type Validator struct{}

// New creates a Validator.
func New() *Validator {
	return &Validator{}
}

// Validate turns a match into a candidate, or rejects it. Rejection is not
// an error: rejected matches simply contribute nothing.
// Rules, in order: email syntax, then domain acceptance; survivors get a
// raw confidence in [0,1].
func (v *Validator) Validate(match extract.Match, company types.Company, source types.SourceKind) (types.Candidate, bool) {
	email := types.NormalizeEmail(match.Email)
	if !ValidSyntax(email) {
		return types.Candidate{}, false
	}

	domainClass := ClassifyDomain(email, company.Domain)
	if domainClass == DomainMismatch {
		return types.Candidate{}, false
	}

	confidence := sourceBase(source) + domainBonus(domainClass)
	if match.Name != "" {
		confidence += bonusName
	}
	if match.Title != "" {
		confidence += bonusTitle
	}
	if match.GenericLocalPart {
		confidence *= genericPenaltyFactor
	}
	confidence = clamp01(confidence)

	return types.Candidate{
		Company:       company,
		Email:         email,
		Name:          match.Name,
		Title:         match.Title,
		Source:        source,
		RawConfidence: confidence,
	}, true
}

// ValidSyntax checks the RFC-5322-lite rule: local@domain, both non-empty,
// domain containing a dot, no whitespace.
func ValidSyntax(email string) bool {
	if strings.ContainsAny(email, " \t\n\r") {
		return false
	}
	local, domain, found := strings.Cut(email, "@")
	if !found || local == "" || domain == "" {
		return false
	}
	if strings.Contains(domain, "@") {
		return false
	}
	if !strings.Contains(domain, ".") {
		return false
	}
	if strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return false
	}
	return true
}

// ClassifyDomain compares an address domain against the company's canonical
// domain.
func ClassifyDomain(email, companyDomain string) DomainMatch {
	_, domain, found := strings.Cut(email, "@")
	if !found {
		return DomainMismatch
	}
	domain = strings.ToLower(domain)
	companyDomain = strings.ToLower(strings.TrimSpace(companyDomain))

	switch {
	case domain == companyDomain:
		return DomainExact
	case strings.HasSuffix(domain, "."+companyDomain):
		return DomainSubdomain
	case freeMailProviders[domain]:
		return DomainFreeMail
	default:
		return DomainMismatch
	}
}

func sourceBase(source types.SourceKind) float64 {
	switch source {
	case types.SourceSiteScrape:
		return baseSiteScrape
	case types.SourceJobPosting:
		return baseJobPosting
	case types.SourceSearchSnippet:
		return baseSearchSnippet
	default:
		return 0
	}
}

func domainBonus(class DomainMatch) float64 {
	switch class {
	case DomainExact:
		return bonusDomainExact
	case DomainSubdomain:
		return bonusDomainSubdomain
	case DomainFreeMail:
		return bonusDomainFreeMail
	default:
		return 0
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
