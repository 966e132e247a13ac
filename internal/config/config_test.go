package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jonathan/outreach-agent/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.json", `{
		"google_api_key": "key",
		"google_cse_id": "cx",
		"max_contacts_per_company": 3,
		"workers": 2
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "key", cfg.GoogleAPIKey)
	assert.Equal(t, 3, cfg.MaxPerCompany)
	assert.Equal(t, 2, cfg.Workers)
}

func TestLoadConfig_BadJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.json", `{not json`)

	_, err := LoadConfig(path)
	var cerr *types.ConfigurationError
	assert.ErrorAs(t, err, &cerr)
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := Config{GoogleAPIKey: "key", GoogleCSEID: "cx"}
	merged := cfg.MergeWithDefaults(Defaults())

	assert.Equal(t, 5, merged.MaxPerCompany)
	assert.Equal(t, 100, merged.SearchDailyBudget)
	assert.Equal(t, 1, merged.Workers)
	assert.NotEmpty(t, merged.TitleVocabulary)
	assert.Contains(t, merged.GenericLocalParts, "noreply")
	// Explicit values survive the merge.
	assert.Equal(t, "key", merged.GoogleAPIKey)
}

func TestValidate_MissingCredentialsFatal(t *testing.T) {
	cfg := Defaults()
	cfg.CompaniesFile = "" // skip the file existence check

	err := cfg.Validate()
	var cerr *types.ConfigurationError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "google_api_key", cerr.Field)
}

func TestValidate_PolicyRanges(t *testing.T) {
	cfg := Defaults()
	cfg.GoogleAPIKey = "key"
	cfg.GoogleCSEID = "cx"
	cfg.CompaniesFile = ""
	cfg.Workers = 99

	err := cfg.Validate()
	var cerr *types.ConfigurationError
	require.ErrorAs(t, err, &cerr)
}

func TestValidate_OK(t *testing.T) {
	dir := t.TempDir()
	companies := writeFile(t, dir, "companies.json", `[{"name":"Paytm","domain":"paytm.com"}]`)

	cfg := Defaults()
	cfg.GoogleAPIKey = "key"
	cfg.GoogleCSEID = "cx"
	cfg.CompaniesFile = companies

	assert.NoError(t, cfg.Validate())
}

func TestCanonicalDomain(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"razorpay.com", "razorpay.com"},
		{"https://razorpay.com", "razorpay.com"},
		{"http://www.razorpay.com/careers", "razorpay.com"},
		{"  PAYTM.COM ", "paytm.com"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanonicalDomain(tt.in))
	}
}

func TestLoadCompanies(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "companies.json", `[
		{"name": "Paytm", "domain": "https://www.paytm.com"},
		{"name": "Razorpay", "domain": "razorpay.com"}
	]`)

	companies, err := LoadCompanies(path)
	require.NoError(t, err)
	require.Len(t, companies, 2)
	assert.Equal(t, "paytm.com", companies[0].Domain)
	assert.Equal(t, "Razorpay", companies[1].Name)
}

func TestLoadCompanies_Invalid(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"empty list", `[]`},
		{"missing domain", `[{"name": "Paytm", "domain": ""}]`},
		{"not json", `nope`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, "companies.json", tt.content)
			_, err := LoadCompanies(path)
			var cerr *types.ConfigurationError
			assert.ErrorAs(t, err, &cerr)
		})
	}
}
