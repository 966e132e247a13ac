// Package extract scans raw fragments for address-shaped tokens and the
// name/title context around them. Association is best-effort nearest-window
// matching against a fixed vocabulary; mis-association is an accepted
// accuracy tradeoff, not something this package tries to fix with deeper
// parsing.
package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonathan/outreach-agent/internal/types"
)

// emailPattern is the permissive RFC-5322-lite address pattern. Anything it
// does not match never becomes a candidate.
var emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

// namePattern matches Title-Case first/last name pairs.
var namePattern = regexp.MustCompile(`\b[A-Z][a-z]+ [A-Z][a-z]+\b`)

// Match is one extracted address with its best-effort associated context.
type Match struct {
	Email            string
	Name             string // optional, nearest Title-Case pair in the window
	Title            string // optional, vocabulary hit in the window
	GenericLocalPart bool   // local part is on the generic denylist
}

// Extractor extracts matches using a configured title vocabulary and a
// denylist of generic local-parts.
type Extractor struct {
	titleVocab   []string // sorted longest-first so "talent acquisition" beats "talent"
	genericParts map[string]bool
}

// New creates an Extractor. Both lists come from policy configuration.
func New(titleVocab, genericLocalParts []string) *Extractor {
	vocab := make([]string, len(titleVocab))
	copy(vocab, titleVocab)
	sort.Slice(vocab, func(i, j int) bool { return len(vocab[i]) > len(vocab[j]) })

	parts := make(map[string]bool, len(genericLocalParts))
	for _, p := range genericLocalParts {
		parts[strings.ToLower(strings.TrimSpace(p))] = true
	}

	return &Extractor{titleVocab: vocab, genericParts: parts}
}

// Extract scans one fragment and returns all distinct address matches.
// A fragment with zero address-shaped tokens yields an empty result.
func (e *Extractor) Extract(frag types.RawFragment) []Match {
	var matches []Match
	seen := make(map[string]bool)

	add := func(email, window string) {
		normalized := types.NormalizeEmail(email)
		if normalized == "" || seen[normalized] {
			return
		}
		seen[normalized] = true
		matches = append(matches, Match{
			Email:            normalized,
			Name:             e.findName(window, email),
			Title:            e.findTitle(window),
			GenericLocalPart: e.isGeneric(normalized),
		})
	}

	text := frag.Content
	if looksLikeHTML(frag.Content) {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(frag.Content))
		if err == nil {
			doc.Find("script, style, noscript").Remove()

			// mailto links carry the strongest association signal: the
			// anchor's enclosing element usually names the owner.
			doc.Find(`a[href^="mailto:"]`).Each(func(_ int, sel *goquery.Selection) {
				href, _ := sel.Attr("href")
				email := mailtoAddress(href)
				if email == "" || !emailPattern.MatchString(email) {
					return
				}
				window := sel.Text()
				if parent := sel.Parent(); parent.Length() > 0 {
					window = parent.Text()
				}
				add(email, window)
			})

			text = doc.Text()
		}
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		for _, email := range emailPattern.FindAllString(line, -1) {
			window := line
			// Include the immediately preceding non-empty line: headings
			// often name the person the address belongs to.
			for j := i - 1; j >= 0; j-- {
				if prev := strings.TrimSpace(lines[j]); prev != "" {
					window = prev + "\n" + line
					break
				}
			}
			add(email, window)
		}
	}

	return matches
}

// findName returns the nearest Title-Case name pair in the window, skipping
// tokens that are actually vocabulary terms or part of the address itself.
func (e *Extractor) findName(window, email string) string {
	for _, candidate := range namePattern.FindAllString(window, -1) {
		if strings.Contains(email, strings.ToLower(candidate)) {
			continue
		}
		if e.isVocabTerm(candidate) {
			continue
		}
		return candidate
	}
	return ""
}

// findTitle returns the first (longest) vocabulary term present in the
// window, preserving the casing it appears with.
func (e *Extractor) findTitle(window string) string {
	lower := strings.ToLower(window)
	for _, term := range e.titleVocab {
		if idx := strings.Index(lower, strings.ToLower(term)); idx >= 0 {
			return window[idx : idx+len(term)]
		}
	}
	return ""
}

func (e *Extractor) isVocabTerm(s string) bool {
	lower := strings.ToLower(s)
	for _, term := range e.titleVocab {
		if strings.ToLower(term) == lower {
			return true
		}
	}
	return false
}

func (e *Extractor) isGeneric(normalizedEmail string) bool {
	local, _, found := strings.Cut(normalizedEmail, "@")
	if !found {
		return false
	}
	return e.genericParts[local]
}

// mailtoAddress strips the mailto: scheme and any query parameters.
func mailtoAddress(href string) string {
	addr := strings.TrimPrefix(href, "mailto:")
	if cut, _, found := strings.Cut(addr, "?"); found {
		addr = cut
	}
	return strings.TrimSpace(addr)
}

func looksLikeHTML(content string) bool {
	return strings.Contains(content, "<") && strings.Contains(content, ">")
}
