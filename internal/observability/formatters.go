// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/outreach-agent/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintContacts outputs the top resolved contacts with scores and sources.
func (p *Printer) PrintContacts(contacts []types.ResolvedContact) {
	if len(contacts) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "NO CONTACTS FOUND")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total contacts resolved: %d\n\n", len(contacts)))

	count := min(len(contacts), maxItemsToShow)
	for i := 0; i < count; i++ {
		c := contacts[i]
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, c.Email))
		sb.WriteString(fmt.Sprintf("    Company: %s  Score: %.2f\n", c.Company.Name, c.Confidence))
		if c.Name != "" || c.Title != "" {
			who := c.Name
			if c.Title != "" {
				if who != "" {
					who += ", "
				}
				who += c.Title
			}
			sb.WriteString(fmt.Sprintf("    Who: %s\n", who))
		}
		sources := make([]string, len(c.Sources))
		for j, s := range c.Sources {
			sources[j] = string(s)
		}
		sb.WriteString(fmt.Sprintf("    Sources: %s\n", strings.Join(sources, ", ")))
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(contacts) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more contacts", len(contacts)-maxItemsToShow))
	}

	p.printBox("TOP RESOLVED CONTACTS", sb.String())
}

// PrintCompanyResult outputs the per-company outcome as companies complete.
func (p *Printer) PrintCompanyResult(company types.Company, fragments int, candidates int) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Company:    %s (%s)\n", company.Name, company.Domain))
	sb.WriteString(fmt.Sprintf("Fragments:  %d\n", fragments))
	sb.WriteString(fmt.Sprintf("Candidates: %d", candidates))
	p.printBox("COMPANY PROCESSED", sb.String())
}

// PrintRunSummary outputs the end-of-run summary.
func (p *Printer) PrintRunSummary(runID string, companies int, contacts int, exhausted []types.SourceKind, exportPath string) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Run ID:     %s\n", runID))
	sb.WriteString(fmt.Sprintf("Companies:  %d\n", companies))
	sb.WriteString(fmt.Sprintf("Contacts:   %d\n", contacts))

	if len(exhausted) > 0 {
		names := make([]string, len(exhausted))
		for i, s := range exhausted {
			names[i] = string(s)
		}
		sb.WriteString(fmt.Sprintf("Exhausted:  %s\n", strings.Join(names, ", ")))
	}

	if exportPath != "" {
		sb.WriteString(fmt.Sprintf("Exported:   %s", exportPath))
	} else {
		sb.WriteString("Exported:   (nothing to export)")
	}

	p.printBox("DISCOVERY RUN SUMMARY", sb.String())
}

// PrintSendReport outputs delivery results after a send run.
func (p *Printer) PrintSendReport(sent, failed int, dryRun bool) {
	var sb strings.Builder
	if dryRun {
		sb.WriteString("Mode:    dry-run (nothing delivered)\n")
	} else {
		sb.WriteString("Mode:    live\n")
	}
	sb.WriteString(fmt.Sprintf("Sent:    %d\n", sent))
	sb.WriteString(fmt.Sprintf("Failed:  %d", failed))
	p.printBox("SEND REPORT", sb.String())
}
