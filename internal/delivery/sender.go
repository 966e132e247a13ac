// Package delivery sends generated outreach emails through the Gmail API.
// Sending is paced by a rate gate so a batch never trips provider limits.
package delivery

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"strings"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/jonathan/outreach-agent/internal/ratelimit"
)

// Outgoing is one message queued for delivery.
type Outgoing struct {
	To      string
	Subject string
	Body    string
}

// Failure records one message that could not be delivered.
type Failure struct {
	To  string
	Err error
}

// Report summarizes a send run. A batch keeps going past individual
// failures, so Sent+len(Failures) always equals the batch size actually
// attempted.
type Report struct {
	Sent     int
	Failures []Failure
}

// Failed returns the number of messages that could not be delivered.
func (r Report) Failed() int {
	return len(r.Failures)
}

// Options configures a Sender.
type Options struct {
	// From is the sender address placed in the From header.
	From string
	// DryRun builds and paces messages but skips the API call.
	DryRun  bool
	Verbose bool
}

// Sender delivers messages through a Gmail account.
type Sender struct {
	svc  *gmail.Service
	gate *ratelimit.Gate
	opts Options
}

// NewSender creates a Sender. Credentials come from the default Google
// option chain; tests inject option.WithEndpoint and
// option.WithoutAuthentication to target a fake server.
func NewSender(ctx context.Context, gate *ratelimit.Gate, opts Options, clientOpts ...option.ClientOption) (*Sender, error) {
	if opts.From == "" {
		return nil, fmt.Errorf("sender address is required")
	}
	svc, err := gmail.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}
	return &Sender{svc: svc, gate: gate, opts: opts}, nil
}

// SendBatch delivers messages one at a time, waiting on the gate before
// each send. Individual failures are recorded and the batch continues;
// only context cancellation stops it early.
func (s *Sender) SendBatch(ctx context.Context, batch []Outgoing) (Report, error) {
	var report Report

	for _, msg := range batch {
		if err := s.gate.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			return report, err
		}

		if err := s.sendOne(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			report.Failures = append(report.Failures, Failure{To: msg.To, Err: err})
			if s.opts.Verbose {
				log.Printf("delivery: send to %s failed: %v", msg.To, err)
			}
			continue
		}

		report.Sent++
		if s.opts.Verbose {
			log.Printf("delivery: sent to %s", msg.To)
		}
	}

	return report, nil
}

func (s *Sender) sendOne(ctx context.Context, msg Outgoing) error {
	if s.opts.DryRun {
		log.Printf("delivery: dry-run, would send to %s: %q", msg.To, msg.Subject)
		return nil
	}
	payload := BuildMessage(s.opts.From, msg.To, msg.Subject, msg.Body)
	_, err := s.svc.Users.Messages.Send("me", payload).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("gmail send failed: %w", err)
	}
	return nil
}

// BuildMessage assembles an RFC 2822 message and wraps it in the Gmail
// API envelope. The raw payload is base64url-encoded per the API contract.
func BuildMessage(from, to, subject, body string) *gmail.Message {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("From: %s\r\n", from))
	sb.WriteString(fmt.Sprintf("To: %s\r\n", to))
	sb.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(body)

	return &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString([]byte(sb.String())),
	}
}
