package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/outreach-agent/internal/emailwriter"
	"github.com/jonathan/outreach-agent/internal/store"
)

var writeCommand = &cobra.Command{
	Use:   "write",
	Short: "Generate personalized outreach emails for exported contacts",
	Long: `Reads a contacts CSV produced by the discover command and generates one email per contact using Gemini. Each email is written to <output-dir>/<address>.txt with the subject on the first line.

The sender profile comes from environment variables (SENDER_NAME, CURRENT_ROLE, EDUCATION, USER_SKILLS, USER_EXPERIENCE, ACHIEVEMENTS, GRADUATION_YEAR).`,
	RunE: runWriteCmd,
}

var (
	writeContactsPath string
	writeOutputDir    string
	writeAPIKey       string
	writeLimit        int
	writeVerbose      bool
)

func init() {
	writeCommand.Flags().StringVar(&writeContactsPath, "contacts", "", "Path to contacts CSV from a discover run (required)")
	writeCommand.Flags().StringVarP(&writeOutputDir, "output-dir", "o", "data/emails", "Directory for generated email files")
	writeCommand.Flags().IntVar(&writeLimit, "limit", 0, "Generate for at most N contacts (0 = all)")
	writeCommand.Flags().BoolVarP(&writeVerbose, "verbose", "v", false, "Print detailed debug information")
	writeCommand.Flags().StringVar(&writeAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")

	if err := writeCommand.MarkFlagRequired("contacts"); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(writeCommand)
}

func runWriteCmd(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	apiKey := writeAPIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required")
	}

	contacts, err := store.ReadContactsCSV(writeContactsPath)
	if err != nil {
		return fmt.Errorf("failed to read contacts: %w", err)
	}
	if writeLimit > 0 && len(contacts) > writeLimit {
		contacts = contacts[:writeLimit]
	}

	if err := os.MkdirAll(writeOutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	writer, err := emailwriter.New(ctx, apiKey)
	if err != nil {
		return err
	}
	defer func() { _ = writer.Close() }()

	profile := emailwriter.ProfileFromEnv()

	var generated, failed int
	for _, contact := range contacts {
		email, err := writer.Write(ctx, contact, profile)
		if err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "skipping %s: %v\n", contact.Email, err)
			continue
		}

		path := filepath.Join(writeOutputDir, emailFileName(contact.Email))
		content := fmt.Sprintf("Subject: %s\n\n%s\n", email.Subject, email.Body)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		generated++

		if writeVerbose {
			fmt.Fprintf(os.Stdout, "wrote %s\n", path)
		}
	}

	fmt.Fprintf(os.Stdout, "Generated %d emails (%d failed) in %s\n", generated, failed, writeOutputDir)
	return nil
}

// emailFileName maps an address to a filesystem-safe file name.
func emailFileName(email string) string {
	safe := strings.NewReplacer("@", "_at_", "/", "_", "\\", "_").Replace(email)
	return safe + ".txt"
}
