package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/outreach-agent/internal/delivery"
	"github.com/jonathan/outreach-agent/internal/observability"
	"github.com/jonathan/outreach-agent/internal/ratelimit"
	"github.com/jonathan/outreach-agent/internal/store"
	"github.com/jonathan/outreach-agent/internal/types"
)

var sendCommand = &cobra.Command{
	Use:   "send",
	Short: "Send generated outreach emails through Gmail",
	Long: `Reads a contacts CSV and the email files produced by the write command, then sends each email through the Gmail API. Sending is paced at 5 messages per minute.

Use --dry-run to build and pace the batch without delivering anything.`,
	RunE: runSendCmd,
}

var (
	sendContactsPath string
	sendEmailsDir    string
	sendFrom         string
	sendDryRun       bool
	sendVerbose      bool
)

func init() {
	sendCommand.Flags().StringVar(&sendContactsPath, "contacts", "", "Path to contacts CSV from a discover run (required)")
	sendCommand.Flags().StringVar(&sendEmailsDir, "emails-dir", "data/emails", "Directory of generated email files")
	sendCommand.Flags().StringVar(&sendFrom, "from", "", "Sender address (optional, defaults to SENDER_EMAIL env var)")
	sendCommand.Flags().BoolVar(&sendDryRun, "dry-run", false, "Build and pace the batch without sending")
	sendCommand.Flags().BoolVarP(&sendVerbose, "verbose", "v", false, "Print detailed debug information")

	if err := sendCommand.MarkFlagRequired("contacts"); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(sendCommand)
}

func runSendCmd(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	from := sendFrom
	if from == "" {
		from = os.Getenv("SENDER_EMAIL")
	}
	if from == "" {
		return fmt.Errorf("SENDER_EMAIL environment variable or --from flag is required")
	}

	contacts, err := store.ReadContactsCSV(sendContactsPath)
	if err != nil {
		return fmt.Errorf("failed to read contacts: %w", err)
	}

	batch, skipped, err := loadBatch(contacts, sendEmailsDir)
	if err != nil {
		return err
	}
	if len(batch) == 0 {
		return fmt.Errorf("no email files found in %s; run the write command first", sendEmailsDir)
	}
	if skipped > 0 {
		fmt.Fprintf(os.Stderr, "%d contacts have no generated email and will be skipped\n", skipped)
	}

	gate := ratelimit.NewGate(ratelimit.DefaultSendConfig())
	sender, err := delivery.NewSender(ctx, gate, delivery.Options{
		From:    from,
		DryRun:  sendDryRun,
		Verbose: sendVerbose,
	})
	if err != nil {
		return err
	}

	report, err := sender.SendBatch(ctx, batch)

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintSendReport(report.Sent, report.Failed(), sendDryRun)
	for _, f := range report.Failures {
		fmt.Fprintf(os.Stderr, "failed: %s: %v\n", f.To, f.Err)
	}

	return err
}

// loadBatch pairs each contact with its generated email file. Contacts
// without a file are counted and skipped.
func loadBatch(contacts []types.ResolvedContact, dir string) ([]delivery.Outgoing, int, error) {
	var batch []delivery.Outgoing
	var skipped int

	for _, contact := range contacts {
		path := filepath.Join(dir, emailFileName(contact.Email))
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			skipped++
			continue
		}
		if err != nil {
			return nil, 0, fmt.Errorf("failed to read %s: %w", path, err)
		}

		subject, body, err := parseEmailFile(string(data))
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", path, err)
		}

		batch = append(batch, delivery.Outgoing{
			To:      contact.Email,
			Subject: subject,
			Body:    body,
		})
	}

	return batch, skipped, nil
}

// parseEmailFile splits a generated email file into subject and body. The
// first line must be "Subject: ..." followed by a blank line.
func parseEmailFile(content string) (subject, body string, err error) {
	parts := strings.SplitN(content, "\n\n", 2)
	if len(parts) != 2 || !strings.HasPrefix(parts[0], "Subject: ") {
		return "", "", fmt.Errorf("malformed email file: expected Subject header and blank line")
	}
	return strings.TrimPrefix(parts[0], "Subject: "), strings.TrimSpace(parts[1]), nil
}
