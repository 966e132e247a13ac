// Package config provides configuration loading and validation for the CLI.
// A run must never begin with an invalid configuration: every loader here
// returns a ConfigurationError that the CLI treats as fatal at startup.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/outreach-agent/internal/types"
)

// Config represents the CLI configuration that can be loaded from a JSON
// file. Missing values use defaults or environment variables.
type Config struct {
	// Paths
	CompaniesFile string `json:"companies_file,omitempty"` // Path to target companies JSON
	OutputDir     string `json:"output_dir,omitempty"`     // Directory for exported artifacts

	// Credentials
	GoogleAPIKey string `json:"google_api_key,omitempty"` // Custom Search API key
	GoogleCSEID  string `json:"google_cse_id,omitempty"`  // Custom Search engine ID
	GeminiAPIKey string `json:"gemini_api_key,omitempty"` // Gemini key (write command only)

	// Policy constants
	MaxPerCompany     int      `json:"max_contacts_per_company,omitempty" validate:"gte=0,lte=50"`
	SearchRatePerSec  float64  `json:"search_rate_per_second,omitempty" validate:"gte=0"`
	SearchDailyBudget int      `json:"search_daily_budget,omitempty" validate:"gte=0"`
	SourceDelayMS     int      `json:"source_delay_ms,omitempty" validate:"gte=0"`
	Workers           int      `json:"workers,omitempty" validate:"gte=0,lte=8"`
	GenericLocalParts []string `json:"generic_local_parts,omitempty"`
	TitleVocabulary   []string `json:"title_vocabulary,omitempty"`

	// Behavior
	UseBrowser bool `json:"use_browser,omitempty"` // Headless browser fallback for SPA sites
	Verbose    bool `json:"verbose,omitempty"`     // Print detailed debug information
}

// Defaults returns the built-in policy values. Credentials have no
// defaults; they must come from the config file or the environment.
func Defaults() Config {
	return Config{
		CompaniesFile:     "companies.json",
		OutputDir:         "data",
		MaxPerCompany:     5,
		SearchRatePerSec:  1.0,
		SearchDailyBudget: 100,
		SourceDelayMS:     1000,
		Workers:           1,
		GenericLocalParts: DefaultGenericLocalParts(),
		TitleVocabulary:   DefaultTitleVocabulary(),
	}
}

// DefaultGenericLocalParts is the denylist of local-parts that mark an
// address as a shared mailbox rather than a person.
func DefaultGenericLocalParts() []string {
	return []string{
		"info", "support", "contact", "admin", "webmaster",
		"hello", "sales", "noreply", "no-reply", "donotreply",
	}
}

// DefaultTitleVocabulary is the fixed set of HR/recruiting titles matched
// during extraction.
func DefaultTitleVocabulary() []string {
	return []string{
		"Recruiter", "Talent Acquisition", "HR", "Human Resources",
		"Hiring Manager", "Talent Sourcer", "Recruitment Consultant",
		"Talent Partner", "People Operations", "Head of Talent",
		"HR Manager", "HR Director", "People Lead", "Talent Lead",
	}
}

// LoadConfig loads configuration from a JSON file.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, &types.ConfigurationError{Field: "config", Message: "config path is empty"}
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, &types.ConfigurationError{Field: "config", Message: "failed to get current directory", Cause: err}
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &types.ConfigurationError{Field: "config", Message: fmt.Sprintf("failed to read %s", path), Cause: err}
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, &types.ConfigurationError{Field: "config", Message: "failed to parse config JSON", Cause: err}
	}

	return &cfg, nil
}

// MergeWithDefaults fills empty fields from defaults and the environment.
// Environment variables cover credentials (GOOGLE_API_KEY, GOOGLE_CSE_ID,
// GEMINI_API_KEY) so keys never need to live in the config file.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.CompaniesFile == "" {
		result.CompaniesFile = defaults.CompaniesFile
	}
	if result.OutputDir == "" {
		result.OutputDir = defaults.OutputDir
	}
	if result.GoogleAPIKey == "" {
		result.GoogleAPIKey = getEnvString("GOOGLE_API_KEY", defaults.GoogleAPIKey)
	}
	if result.GoogleCSEID == "" {
		result.GoogleCSEID = getEnvString("GOOGLE_CSE_ID", defaults.GoogleCSEID)
	}
	if result.GeminiAPIKey == "" {
		result.GeminiAPIKey = getEnvString("GEMINI_API_KEY", defaults.GeminiAPIKey)
	}
	if result.MaxPerCompany == 0 {
		result.MaxPerCompany = defaults.MaxPerCompany
	}
	if result.SearchRatePerSec == 0 {
		result.SearchRatePerSec = defaults.SearchRatePerSec
	}
	if result.SearchDailyBudget == 0 {
		result.SearchDailyBudget = getEnvInt("SEARCH_DAILY_BUDGET", defaults.SearchDailyBudget)
	}
	if result.SourceDelayMS == 0 {
		result.SourceDelayMS = defaults.SourceDelayMS
	}
	if result.Workers == 0 {
		result.Workers = defaults.Workers
	}
	if len(result.GenericLocalParts) == 0 {
		result.GenericLocalParts = defaults.GenericLocalParts
	}
	if len(result.TitleVocabulary) == 0 {
		result.TitleVocabulary = defaults.TitleVocabulary
	}
	// Bool fields: cannot distinguish unset from false, so CLI flags win.

	return result
}

// Validate checks that the configuration can start a run. Credentials for
// the search source are required; everything else has usable defaults.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return &types.ConfigurationError{Field: "config", Message: "policy constants out of range", Cause: err}
	}
	if c.GoogleAPIKey == "" {
		return &types.ConfigurationError{Field: "google_api_key", Message: "missing Custom Search API key (set GOOGLE_API_KEY or config)"}
	}
	if c.GoogleCSEID == "" {
		return &types.ConfigurationError{Field: "google_cse_id", Message: "missing Custom Search engine ID (set GOOGLE_CSE_ID or config)"}
	}
	if c.CompaniesFile != "" {
		if _, err := os.Stat(c.CompaniesFile); os.IsNotExist(err) {
			return &types.ConfigurationError{Field: "companies_file", Message: fmt.Sprintf("companies file not found: %s", c.CompaniesFile)}
		}
	}
	return nil
}

// SourceDelay returns the configured inter-request delay as a duration.
func (c *Config) SourceDelay() time.Duration {
	return time.Duration(c.SourceDelayMS) * time.Millisecond
}

// getEnvString gets an environment variable as a string with a default value.
func getEnvString(key string, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an environment variable as an integer with a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
