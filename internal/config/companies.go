package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/jonathan/outreach-agent/internal/schemas"
	"github.com/jonathan/outreach-agent/internal/types"
)

// companiesSchemaPath is the JSON Schema the companies file must satisfy.
const companiesSchemaPath = "schemas/companies.schema.json"

// LoadCompanies reads and validates the target company list. The list is
// static input: order in the file is the deterministic processing order.
func LoadCompanies(path string) ([]types.Company, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &types.ConfigurationError{Field: "companies_file", Message: fmt.Sprintf("failed to read %s", path), Cause: err}
	}

	if schemaPath := schemas.ResolveSchemaPath(companiesSchemaPath); schemaPath != "" {
		if err := schemas.ValidateDocument(schemaPath, data); err != nil {
			return nil, &types.ConfigurationError{Field: "companies_file", Message: "schema validation failed", Cause: err}
		}
	}

	var companies []types.Company
	if err := json.Unmarshal(data, &companies); err != nil {
		return nil, &types.ConfigurationError{Field: "companies_file", Message: "failed to parse companies JSON", Cause: err}
	}
	if len(companies) == 0 {
		return nil, &types.ConfigurationError{Field: "companies_file", Message: "companies list is empty"}
	}

	for i := range companies {
		companies[i].Domain = CanonicalDomain(companies[i].Domain)
		if companies[i].Name == "" || companies[i].Domain == "" {
			return nil, &types.ConfigurationError{
				Field:   "companies_file",
				Message: fmt.Sprintf("entry %d: name and domain are both required", i),
			}
		}
	}

	return companies, nil
}

// CanonicalDomain normalizes a configured domain: lowercase, no scheme, no
// leading www, no path.
func CanonicalDomain(domain string) string {
	domain = strings.ToLower(strings.TrimSpace(domain))
	domain = strings.TrimPrefix(domain, "https://")
	domain = strings.TrimPrefix(domain, "http://")
	domain = strings.TrimPrefix(domain, "www.")
	if idx := strings.IndexByte(domain, '/'); idx >= 0 {
		domain = domain[:idx]
	}
	return domain
}
