// Package publish sends flight summaries to NATS JetStream.
package publish

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"igc_parser/internal/igc"
)

const (
	DefaultSubject = "igc.flights"
	DefaultStream  = "IGC_FLIGHTS"
)

// Summary is the message published for each parsed flight.
type Summary struct {
	ID             uuid.UUID                `json:"id"`
	Source         string                   `json:"source,omitempty"`
	PublishedAt    time.Time                `json:"published_at"`
	Identification *igc.Identification      `json:"identification,omitempty"`
	Header         *igc.Header              `json:"header,omitempty"`
	Task           *igc.Task                `json:"task,omitempty"`
	Statistics     *igc.Statistics          `json:"statistics,omitempty"`
	Turnpoints     *igc.TurnpointValidation `json:"turnpoint_validation,omitempty"`
	Events         int                      `json:"events"`
}

// NewSummary builds the message for f.
func NewSummary(id uuid.UUID, source string, f *igc.Flight) Summary {
	md := f.Metadata()
	return Summary{
		ID:             id,
		Source:         source,
		PublishedAt:    time.Now().UTC(),
		Identification: md.Identification,
		Header:         md.Header,
		Task:           md.Task,
		Statistics:     md.Statistics,
		Turnpoints:     f.Turnpoints,
		Events:         len(f.Events),
	}
}

// Config holds the connection settings.
type Config struct {
	URL     string        `yaml:"url"`
	Subject string        `yaml:"subject"`
	Stream  string        `yaml:"stream"`
	MaxAge  time.Duration `yaml:"max_age"`
}

// Client represents a NATS client
type Client struct {
	conn    *nats.Conn
	js      nats.JetStreamContext
	subject string
}

// New connects and makes sure the stream exists.
func New(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		cfg.URL = nats.DefaultURL
	}
	if cfg.Subject == "" {
		cfg.Subject = DefaultSubject
	}
	if cfg.Stream == "" {
		cfg.Stream = DefaultStream
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = 30 * 24 * time.Hour
	}

	nc, err := nats.Connect(cfg.URL, nats.Name("igc_parser"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to get JetStream context: %w", err)
	}

	// Create stream if it doesn't exist
	_, err = js.AddStream(&nats.StreamConfig{
		Name:     cfg.Stream,
		Subjects: []string{cfg.Subject},
		Storage:  nats.FileStorage,
		MaxAge:   cfg.MaxAge,
	})
	if err != nil && !errors.Is(err, nats.ErrStreamNameAlreadyInUse) {
		nc.Close()
		return nil, fmt.Errorf("failed to create stream: %w", err)
	}

	return &Client{conn: nc, js: js, subject: cfg.Subject}, nil
}

// Publish sends s. The flight ID is the message ID, so JetStream drops
// duplicates of the same log inside its deduplication window.
func (c *Client) Publish(s Summary) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	if _, err := c.js.Publish(c.subject, data, nats.MsgId(s.ID.String())); err != nil {
		return fmt.Errorf("failed to publish summary: %w", err)
	}
	return nil
}

// Subscribe calls handler for every summary on the subject.
func (c *Client) Subscribe(handler func(Summary)) (*nats.Subscription, error) {
	sub, err := c.js.Subscribe(c.subject, func(msg *nats.Msg) {
		var s Summary
		if err := json.Unmarshal(msg.Data, &s); err != nil {
			_ = msg.Term()
			return
		}
		handler(s)
		_ = msg.Ack()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}
	return sub, nil
}

// Close closes the NATS connection
func (c *Client) Close() {
	if c.conn != nil {
		c.conn.Close()
	}
}
