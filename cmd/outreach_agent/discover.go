package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/outreach-agent/internal/config"
	"github.com/jonathan/outreach-agent/internal/discovery"
	"github.com/jonathan/outreach-agent/internal/extract"
	"github.com/jonathan/outreach-agent/internal/observability"
	"github.com/jonathan/outreach-agent/internal/ratelimit"
	"github.com/jonathan/outreach-agent/internal/sources"
	"github.com/jonathan/outreach-agent/internal/store"
	"github.com/jonathan/outreach-agent/internal/validate"
)

var discoverCommand = &cobra.Command{
	Use:   "discover",
	Short: "Discover recruiter contacts for the target companies",
	Long: `Runs the full discovery pipeline for each company in the companies file: site scraping -> search snippets -> job postings -> extraction -> validation -> aggregation, then exports ranked contacts to CSV.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	RunE: runDiscoverCmd,
}

var (
	discoverConfigPath string
	discoverCompanies  string
	discoverOutputDir  string
	discoverWorkers    int
	discoverBudget     int
	discoverAPIKey     string
	discoverCSEID      string
	discoverUseBrowser bool
	discoverVerbose    bool
)

func init() {
	discoverCommand.Flags().StringVar(&discoverConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	discoverCommand.Flags().StringVarP(&discoverCompanies, "companies", "c", "", "Path to target companies JSON file")
	discoverCommand.Flags().StringVarP(&discoverOutputDir, "output-dir", "o", "", "Directory for the exported CSV")
	discoverCommand.Flags().IntVarP(&discoverWorkers, "workers", "w", 0, "Number of companies processed in parallel (default 1, sequential)")
	discoverCommand.Flags().IntVar(&discoverBudget, "search-budget", 0, "Maximum search API calls for this run")
	discoverCommand.Flags().BoolVar(&discoverUseBrowser, "use-browser", false, "Use headless browser for JS-rendered careers pages (requires Chrome)")
	discoverCommand.Flags().BoolVarP(&discoverVerbose, "verbose", "v", false, "Print detailed debug information")

	// API credentials can be passed as flags, or read from env vars
	discoverCommand.Flags().StringVar(&discoverAPIKey, "api-key", "", "Custom Search API key (optional, defaults to GOOGLE_API_KEY env var)")
	discoverCommand.Flags().StringVar(&discoverCSEID, "cse-id", "", "Custom Search engine ID (optional, defaults to GOOGLE_CSE_ID env var)")

	rootCmd.AddCommand(discoverCommand)
}

func runDiscoverCmd(cmd *cobra.Command, _ []string) error {
	// Stop cleanly on Ctrl-C: the run is cancelled and whatever contacts
	// were resolved so far are still exported.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cfg config.Config
	if discoverConfigPath != "" {
		loadedCfg, err := config.LoadConfig(discoverConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loadedCfg
	}

	// CLI overrides take priority over config file values
	if cmd.Flags().Changed("companies") {
		cfg.CompaniesFile = discoverCompanies
	}
	if cmd.Flags().Changed("output-dir") {
		cfg.OutputDir = discoverOutputDir
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = discoverWorkers
	}
	if cmd.Flags().Changed("search-budget") {
		cfg.SearchDailyBudget = discoverBudget
	}
	if cmd.Flags().Changed("api-key") {
		cfg.GoogleAPIKey = discoverAPIKey
	}
	if cmd.Flags().Changed("cse-id") {
		cfg.GoogleCSEID = discoverCSEID
	}
	if cmd.Flags().Changed("use-browser") {
		cfg.UseBrowser = discoverUseBrowser
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = discoverVerbose
	}

	cfg = cfg.MergeWithDefaults(config.Defaults())
	if err := cfg.Validate(); err != nil {
		return err
	}

	companies, err := config.LoadCompanies(cfg.CompaniesFile)
	if err != nil {
		return err
	}

	gate := ratelimit.NewGate(ratelimit.Config{
		RequestsPerSecond: cfg.SearchRatePerSec,
		BurstSize:         1,
		Budget:            cfg.SearchDailyBudget,
	})

	client, err := sources.NewSearchClient(ctx, cfg.GoogleAPIKey, cfg.GoogleCSEID, gate)
	if err != nil {
		return fmt.Errorf("failed to create search client: %w", err)
	}
	client.SetVerbose(cfg.Verbose)

	srcs := []sources.Source{
		sources.NewWebsiteScraper(sources.WebsiteScraperConfig{
			PageDelay:  cfg.SourceDelay(),
			UseBrowser: cfg.UseBrowser,
			Verbose:    cfg.Verbose,
		}),
		sources.NewJobPostingAdapter(client, nil),
		sources.NewSearchAPIAdapter(client),
	}

	printer := observability.NewPrinter(os.Stdout)

	st := store.New(cfg.MaxPerCompany)
	runner := discovery.NewRunner(
		srcs,
		extract.New(cfg.TitleVocabulary, cfg.GenericLocalParts),
		validate.New(),
		st,
		discovery.Options{
			Workers:     cfg.Workers,
			SourceDelay: cfg.SourceDelay(),
			Verbose:     cfg.Verbose,
			Progress:    printer,
		},
	)

	contacts, runErr := runner.Run(ctx, companies)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}

	var exportPath string
	if len(contacts) > 0 {
		exportPath, err = st.ExportCSV(cfg.OutputDir)
		if err != nil {
			return fmt.Errorf("failed to export contacts: %w", err)
		}
	}

	if cfg.Verbose {
		printer.PrintContacts(contacts)
	}
	printer.PrintRunSummary(st.RunID().String(), len(companies), len(contacts), runner.ExhaustedSources(), exportPath)

	if errors.Is(runErr, context.Canceled) {
		fmt.Fprintln(os.Stdout, "Run interrupted; partial results exported.")
	}
	return nil
}
