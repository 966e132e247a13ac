// Package emailwriter generates personalized outreach email bodies for
// resolved contacts. It consumes one contact at a time and returns generated
// text; the discovery core has no dependency on this package.
package emailwriter

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/jonathan/outreach-agent/internal/llm"
	"github.com/jonathan/outreach-agent/internal/types"
)

// SenderProfile personalizes generated emails. Loaded from the environment
// so the profile never lives in source control.
type SenderProfile struct {
	Name           string
	CurrentRole    string
	Education      string
	Skills         string
	Experience     string
	Achievements   string
	GraduationYear string
}

// ProfileFromEnv reads the sender profile from environment variables,
// falling back to generic placeholders.
func ProfileFromEnv() SenderProfile {
	return SenderProfile{
		Name:           envOr("SENDER_NAME", "Your Name"),
		CurrentRole:    envOr("CURRENT_ROLE", "Computer Science Student"),
		Education:      envOr("EDUCATION", "B.Tech Computer Science"),
		Skills:         envOr("USER_SKILLS", "Go, Distributed Systems, Data Analysis"),
		Experience:     envOr("USER_EXPERIENCE", "1+ years of project experience"),
		Achievements:   envOr("ACHIEVEMENTS", "Led multiple successful projects"),
		GraduationYear: envOr("GRADUATION_YEAR", "2026"),
	}
}

// Email is one generated outreach message.
type Email struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Writer generates emails through an LLM client.
type Writer struct {
	client llm.Client
}

// New creates a Writer backed by the default Gemini configuration.
func New(ctx context.Context, apiKey string) (*Writer, error) {
	client, err := llm.NewClient(ctx, llm.DefaultConfig(), apiKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return &Writer{client: client}, nil
}

// NewWithClient creates a Writer on an existing client. Used by tests.
func NewWithClient(client llm.Client) *Writer {
	return &Writer{client: client}
}

// Close releases the underlying client.
func (w *Writer) Close() error {
	return w.client.Close()
}

// Write generates one email for a contact.
func (w *Writer) Write(ctx context.Context, contact types.ResolvedContact, profile SenderProfile) (Email, error) {
	prompt := BuildPrompt(contact, profile)

	raw, err := w.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return Email{}, fmt.Errorf("failed to generate email for %s: %w", contact.Email, err)
	}

	var email Email
	if err := json.Unmarshal([]byte(raw), &email); err != nil {
		return Email{}, fmt.Errorf("failed to parse generated email JSON: %w (content: %s)", err, raw)
	}
	if email.Subject == "" || email.Body == "" {
		return Email{}, fmt.Errorf("generated email for %s is missing subject or body", contact.Email)
	}
	return email, nil
}

// BuildPrompt assembles the generation prompt. Pure function, so prompt
// shape is testable without any API calls.
func BuildPrompt(contact types.ResolvedContact, profile SenderProfile) string {
	var sb strings.Builder

	sb.WriteString("Write a short, professional cold outreach email asking about internship or entry-level opportunities.\n\n")

	sb.WriteString("Recipient:\n")
	sb.WriteString(fmt.Sprintf("- Company: %s\n", contact.Company.Name))
	if contact.Name != "" {
		sb.WriteString(fmt.Sprintf("- Name: %s\n", contact.Name))
	}
	if contact.Title != "" {
		sb.WriteString(fmt.Sprintf("- Role: %s\n", contact.Title))
	}

	sb.WriteString("\nSender:\n")
	sb.WriteString(fmt.Sprintf("- Name: %s\n", profile.Name))
	sb.WriteString(fmt.Sprintf("- Current role: %s\n", profile.CurrentRole))
	sb.WriteString(fmt.Sprintf("- Education: %s (graduating %s)\n", profile.Education, profile.GraduationYear))
	sb.WriteString(fmt.Sprintf("- Skills: %s\n", profile.Skills))
	sb.WriteString(fmt.Sprintf("- Experience: %s\n", profile.Experience))
	sb.WriteString(fmt.Sprintf("- Achievements: %s\n", profile.Achievements))

	sb.WriteString("\nRequirements:\n")
	sb.WriteString("- Under 150 words, three short paragraphs.\n")
	sb.WriteString("- Mention the company by name; no generic filler.\n")
	if contact.Name != "" {
		sb.WriteString("- Address the recipient by first name.\n")
	} else {
		sb.WriteString("- Open with a neutral greeting; the recipient name is unknown.\n")
	}
	sb.WriteString("- No placeholders like [Company] or [Name]; fill everything in.\n")
	sb.WriteString(`- Respond as JSON: {"subject": "...", "body": "..."}` + "\n")

	return sb.String()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
