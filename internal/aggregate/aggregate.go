// Package aggregate merges validated candidates into resolved contacts.
// Merging is deterministic and order-independent: the final contact set for
// a fixed multiset of candidates does not depend on arrival order.
package aggregate

import (
	"sort"

	"github.com/jonathan/outreach-agent/internal/types"
)

// DefaultMaxPerCompany bounds exported contacts per company.
const DefaultMaxPerCompany = 5

// attribution tracks the provenance of a name or title value so that
// conflicts resolve the same way regardless of merge order.
type attribution struct {
	value      string
	confidence float64
	source     types.SourceKind
}

// better reports whether a beats b: higher raw confidence wins, ties break
// by source reliability, then lexicographically. Empty values never win.
func (a attribution) better(b attribution) bool {
	if a.value == "" {
		return false
	}
	if b.value == "" {
		return true
	}
	if a.confidence != b.confidence {
		return a.confidence > b.confidence
	}
	if a.source.Reliability() != b.source.Reliability() {
		return a.source.Reliability() > b.source.Reliability()
	}
	return a.value < b.value
}

type key struct {
	company string
	email   string
}

type entry struct {
	company types.Company
	email   string
	// Highest raw confidence seen per source kind. Only the best evidence
	// from each independent source contributes to the noisy-OR, which is
	// what makes merging idempotent.
	bySource map[types.SourceKind]float64
	name     attribution
	title    attribution
}

// Aggregator accumulates candidates for one run.
type Aggregator struct {
	maxPerCompany int
	entries       map[key]*entry
}

// New creates an Aggregator. maxPerCompany <= 0 selects the default cap.
func New(maxPerCompany int) *Aggregator {
	if maxPerCompany <= 0 {
		maxPerCompany = DefaultMaxPerCompany
	}
	return &Aggregator{
		maxPerCompany: maxPerCompany,
		entries:       make(map[key]*entry),
	}
}

// Merge folds one candidate into the set. Not safe for concurrent use;
// callers serialize (see store.Store).
func (a *Aggregator) Merge(c types.Candidate) {
	k := key{company: c.Company.Name, email: types.NormalizeEmail(c.Email)}

	e, ok := a.entries[k]
	if !ok {
		e = &entry{
			company:  c.Company,
			email:    k.email,
			bySource: make(map[types.SourceKind]float64),
		}
		a.entries[k] = e
	}

	if c.RawConfidence > e.bySource[c.Source] {
		e.bySource[c.Source] = c.RawConfidence
	}

	nameAttr := attribution{value: c.Name, confidence: c.RawConfidence, source: c.Source}
	if nameAttr.better(e.name) {
		e.name = nameAttr
	}
	titleAttr := attribution{value: c.Title, confidence: c.RawConfidence, source: c.Source}
	if titleAttr.better(e.title) {
		e.title = titleAttr
	}
}

// Len returns the number of distinct (company, email) pairs merged so far.
func (a *Aggregator) Len() int {
	return len(a.entries)
}

// Finalize computes confidences, ranks the set, and applies the per-company
// cap. The aggregation phase ends here; the returned contacts are immutable.
func (a *Aggregator) Finalize() []types.ResolvedContact {
	contacts := make([]types.ResolvedContact, 0, len(a.entries))
	for _, e := range a.entries {
		contacts = append(contacts, types.ResolvedContact{
			Company:    e.company,
			Email:      e.email,
			Name:       e.name.value,
			Title:      e.title.value,
			Confidence: noisyOR(e.bySource),
			Sources:    sortedSources(e.bySource),
		})
	}

	sort.Slice(contacts, func(i, j int) bool {
		if contacts[i].Confidence != contacts[j].Confidence {
			return contacts[i].Confidence > contacts[j].Confidence
		}
		if contacts[i].Company.Name != contacts[j].Company.Name {
			return contacts[i].Company.Name < contacts[j].Company.Name
		}
		return contacts[i].Email < contacts[j].Email
	})

	return a.capPerCompany(contacts)
}

// noisyOR combines independent corroborating signals: 1 - prod(1 - c_i).
// Saturates toward but never reaches 1.0 for inputs in (0,1). Multiplies in
// reliability order so the result is bitwise identical across runs; map
// iteration order would make near-ties rank differently run to run.
func noisyOR(bySource map[types.SourceKind]float64) float64 {
	remaining := 1.0
	for _, s := range sortedSources(bySource) {
		remaining *= 1 - bySource[s]
	}
	return 1 - remaining
}

func sortedSources(bySource map[types.SourceKind]float64) []types.SourceKind {
	sources := make([]types.SourceKind, 0, len(bySource))
	for s := range bySource {
		sources = append(sources, s)
	}
	sort.Slice(sources, func(i, j int) bool {
		return sources[i].Reliability() > sources[j].Reliability()
	})
	return sources
}

func (a *Aggregator) capPerCompany(ranked []types.ResolvedContact) []types.ResolvedContact {
	perCompany := make(map[string]int)
	capped := ranked[:0]
	for _, c := range ranked {
		if perCompany[c.Company.Name] >= a.maxPerCompany {
			continue
		}
		perCompany[c.Company.Name]++
		capped = append(capped, c)
	}
	return capped
}
