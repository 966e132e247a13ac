package extract

import (
	"testing"

	"github.com/jonathan/outreach-agent/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testVocab = []string{
	"HR", "Recruiter", "Talent Acquisition", "People Operations",
	"Hiring Manager", "Human Resources",
}

var testGenericParts = []string{
	"info", "support", "contact", "admin", "noreply", "no-reply", "hello", "sales",
}

func newTestExtractor() *Extractor {
	return New(testVocab, testGenericParts)
}

func textFragment(content string) types.RawFragment {
	return types.RawFragment{
		Company: types.Company{Name: "Razorpay", Domain: "razorpay.com"},
		Source:  types.SourceSiteScrape,
		Content: content,
	}
}

func TestExtract_NoAddressTokens(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty fragment", ""},
		{"plain prose", "We are always hiring great people. Visit our careers page."},
		{"at sign without domain", "reach us @ the office"},
		{"domain without dot", "user@localhost"},
	}

	e := newTestExtractor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches := e.Extract(textFragment(tt.content))
			assert.Empty(t, matches)
		})
	}
}

func TestExtract_RecruiterScenario(t *testing.T) {
	e := newTestExtractor()
	matches := e.Extract(textFragment(
		"Contact our recruiter Jane Doe at jane.doe@razorpay.com for HR queries"))

	require.Len(t, matches, 1)
	assert.Equal(t, "jane.doe@razorpay.com", matches[0].Email)
	assert.Equal(t, "Jane Doe", matches[0].Name)
	assert.Equal(t, "recruiter", matches[0].Title)
	assert.False(t, matches[0].GenericLocalPart)
}

func TestExtract_GenericLocalPartFlagged(t *testing.T) {
	e := newTestExtractor()
	matches := e.Extract(textFragment("For any questions write to info@razorpay.com"))

	require.Len(t, matches, 1)
	assert.True(t, matches[0].GenericLocalPart)
}

func TestExtract_PrecedingLineWindow(t *testing.T) {
	e := newTestExtractor()
	matches := e.Extract(textFragment("Priya Sharma, Talent Acquisition\nEmail: priya.sharma@razorpay.com"))

	require.Len(t, matches, 1)
	assert.Equal(t, "Priya Sharma", matches[0].Name)
	assert.Equal(t, "Talent Acquisition", matches[0].Title)
}

func TestExtract_MailtoLinks(t *testing.T) {
	html := `<html><body>
<div class="team-card">
  <h3>Rahul Mehta</h3>
  <p>Hiring Manager</p>
  <a href="mailto:Rahul.Mehta@razorpay.com?subject=Hiring">Email Rahul</a>
</div>
</body></html>`

	e := newTestExtractor()
	matches := e.Extract(textFragment(html))

	require.Len(t, matches, 1)
	assert.Equal(t, "rahul.mehta@razorpay.com", matches[0].Email)
	assert.Equal(t, "Hiring Manager", matches[0].Title)
}

func TestExtract_DeduplicatesWithinFragment(t *testing.T) {
	e := newTestExtractor()
	matches := e.Extract(textFragment(
		"Write to careers@razorpay.com today. Again: CAREERS@razorpay.com"))

	require.Len(t, matches, 1)
	assert.Equal(t, "careers@razorpay.com", matches[0].Email)
}

func TestExtract_MultipleAddresses(t *testing.T) {
	e := newTestExtractor()
	matches := e.Extract(textFragment(
		"HR team: hr@razorpay.com\nSupport: support@razorpay.com"))

	require.Len(t, matches, 2)
	emails := []string{matches[0].Email, matches[1].Email}
	assert.Contains(t, emails, "hr@razorpay.com")
	assert.Contains(t, emails, "support@razorpay.com")
}

func TestExtract_LongestVocabularyTermWins(t *testing.T) {
	e := newTestExtractor()
	matches := e.Extract(textFragment(
		"Our Talent Acquisition team (hr@razorpay.com) answers HR questions."))

	require.Len(t, matches, 1)
	assert.Equal(t, "Talent Acquisition", matches[0].Title)
}

func TestExtract_VocabularyTermNotMistakenForName(t *testing.T) {
	e := newTestExtractor()
	matches := e.Extract(textFragment("Talent Acquisition: ta@razorpay.com"))

	require.Len(t, matches, 1)
	assert.Empty(t, matches[0].Name)
}
