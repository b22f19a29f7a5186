// Package notify publishes scan lifecycle events to NATS so other tooling
// on the network can react to repository changes.
package notify

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/devpulse/internal/logfields"
)

// ScanCompletedEvent is published after every scan, scheduled or on demand.
type ScanCompletedEvent struct {
	RepoCount  int           `json:"repo_count"`
	DirtyCount int           `json:"dirty_count"`
	Duration   time.Duration `json:"duration_ms"`
	Timestamp  time.Time     `json:"timestamp"`
}

// RepoDiscoveredEvent is published when the watcher sees a new repository.
type RepoDiscoveredEvent struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher sends events to NATS. A nil Publisher is valid and silently
// drops events, so callers never need to special-case a disabled broker.
type Publisher struct {
	conn          *nats.Conn
	subjectPrefix string
	logger        *slog.Logger
}

// NewPublisher connects to the broker. An empty URL disables publishing and
// returns a nil Publisher without error.
func NewPublisher(url, subjectPrefix string, logger *slog.Logger) (*Publisher, error) {
	if url == "" {
		return nil, nil
	}
	if subjectPrefix == "" {
		subjectPrefix = "devpulse"
	}
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	logger.Info("notification publisher connected", logfields.URL(url), logfields.Subject(subjectPrefix))
	return &Publisher{conn: conn, subjectPrefix: subjectPrefix, logger: logger}, nil
}

// ScanCompleted publishes a scan summary. Failures are logged, not returned:
// notifications are best effort and never block the scan path.
func (p *Publisher) ScanCompleted(event ScanCompletedEvent) {
	p.publish("scan.completed", event)
}

// RepoDiscovered publishes a newly discovered repository.
func (p *Publisher) RepoDiscovered(event RepoDiscoveredEvent) {
	p.publish("repo.discovered", event)
}

func (p *Publisher) publish(suffix string, event any) {
	if p == nil || p.conn == nil {
		return
	}
	subject := p.subjectPrefix + "." + suffix
	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn("marshal event failed", logfields.Subject(subject), logfields.Error(err))
		return
	}
	if err := p.conn.Publish(subject, data); err != nil {
		p.logger.Warn("publish event failed", logfields.Subject(subject), logfields.Error(err))
		return
	}
	p.logger.Debug("event published", logfields.Subject(subject))
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	_ = p.conn.Drain()
}
