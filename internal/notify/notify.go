// Package notify publishes build summaries to NATS.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	ferrors "git.home.luguber.info/inful/pagebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/pagebuilder/internal/logfields"
	"git.home.luguber.info/inful/pagebuilder/internal/pipeline"
	"git.home.luguber.info/inful/pagebuilder/internal/retry"
)

// BuildEvent is the message published after every build.
type BuildEvent struct {
	BuildID     string    `json:"build_id"`
	Outcome     string    `json:"outcome"`
	Start       time.Time `json:"start"`
	DurationMS  int64     `json:"duration_ms"`
	Documents   int       `json:"documents"`
	Compiled    int       `json:"compiled"`
	Failed      int       `json:"failed"`
	Routes      int       `json:"routes"`
	BrokenLinks int       `json:"broken_links"`
	Digest      string    `json:"digest,omitempty"`
	Errors      []string  `json:"errors,omitempty"`
}

// NewBuildEvent summarizes a report.
func NewBuildEvent(r *pipeline.BuildReport) BuildEvent {
	ev := BuildEvent{
		BuildID:     r.BuildID,
		Outcome:     string(r.Outcome),
		Start:       r.Start,
		DurationMS:  r.Duration().Milliseconds(),
		Documents:   r.Documents,
		Compiled:    r.Compiled,
		Failed:      len(r.Failures),
		Routes:      r.Routes,
		BrokenLinks: len(r.BrokenLinks),
		Digest:      r.Digest,
	}
	for _, err := range r.Errors {
		ev.Errors = append(ev.Errors, err.Error())
	}
	return ev
}

// Conn is the part of *nats.Conn the notifier uses.
type Conn interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Close()
}

// Notifier publishes build events on one subject.
type Notifier struct {
	conn    Conn
	subject string
	policy  retry.Policy
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithRetry sets the backoff used when publishing fails.
func WithRetry(p retry.Policy) Option {
	return func(n *Notifier) { n.policy = p }
}

// New wraps an existing connection. Publishing retries twice by default.
func New(conn Conn, subject string, opts ...Option) *Notifier {
	n := &Notifier{
		conn:    conn,
		subject: subject,
		policy:  retry.NewPolicy(retry.Linear, 200*time.Millisecond, 2*time.Second, 2),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Connect dials the NATS server at url.
func Connect(url, subject string, opts ...Option) (*Notifier, error) {
	conn, err := nats.Connect(url,
		nats.Name("pagebuilder"),
		nats.Timeout(5*time.Second),
	)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryNetwork, "failed to connect to NATS").
			WithContext("url", url).
			Build()
	}
	slog.Info("NATS notifier connected", logfields.URL(url), slog.String("subject", subject))
	return New(conn, subject, opts...), nil
}

// BuildFinished publishes the summary of r and waits for the server to
// acknowledge it.
func (n *Notifier) BuildFinished(ctx context.Context, r *pipeline.BuildReport) error {
	data, err := json.Marshal(NewBuildEvent(r))
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	err = n.policy.Do(ctx, func(ctx context.Context) error {
		if err := n.conn.Publish(n.subject, data); err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return n.conn.FlushWithContext(ctx)
	})
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryNetwork, "failed to publish build event").
			WithContext("subject", n.subject).
			Retryable().
			Build()
	}
	slog.Debug("Published build event", logfields.BuildID(r.BuildID), slog.String("subject", n.subject))
	return nil
}

// Close drops the connection.
func (n *Notifier) Close() {
	n.conn.Close()
}
