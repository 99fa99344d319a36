// Package events records wizard lifecycle events in an embedded NATS
// JetStream log so that other tools can pick up submissions.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/stepform/internal/form"
	"github.com/mark3labs/stepform/internal/logger"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/oklog/ulid/v2"
)

const (
	streamName    = "stepform_events"
	subjectPrefix = "stepform"
)

// SubjectForForm returns the wildcard subject for all events of a form.
// Example: "stepform.life-quote.>"
func SubjectForForm(formSlug string) string {
	return fmt.Sprintf("%s.%s.>", subjectPrefix, formSlug)
}

// SubjectForEvent returns the subject of one event type of a form.
// Example: "stepform.life-quote.submit"
func SubjectForEvent(formSlug, eventType string) string {
	return fmt.Sprintf("%s.%s.%s", subjectPrefix, formSlug, eventType)
}

// SetupStream creates or updates the stream holding every form event.
func SetupStream(ctx context.Context, js jetstream.JetStream) (jetstream.Stream, error) {
	return js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     streamName,
		Subjects: []string{subjectPrefix + ".>"},
		Storage:  jetstream.FileStorage,
		MaxAge:   30 * 24 * time.Hour,
	})
}

// Record is one stored lifecycle event.
type Record struct {
	ID        string            `json:"id"`
	Timestamp time.Time         `json:"timestamp"`
	Form      string            `json:"form"`
	Type      string            `json:"type"`
	Step      int               `json:"step"`
	Answers   map[string]string `json:"answers"`
}

// Store publishes and reads form events.
type Store struct {
	js     jetstream.JetStream
	stream jetstream.Stream

	// Set when the store owns the embedded server, see Open.
	nc *nats.Conn
	ns *server.Server
}

// NewStore wraps an existing JetStream context and stream.
func NewStore(js jetstream.JetStream, stream jetstream.Stream) *Store {
	return &Store{js: js, stream: stream}
}

// Open starts an embedded server under dataDir and returns a store that
// owns it. Close releases everything.
func Open(ctx context.Context, dataDir string) (*Store, error) {
	ns, err := StartEmbedded(dataDir)
	if err != nil {
		return nil, fmt.Errorf("starting event log: %w", err)
	}
	nc, err := ConnectInProcess(ns)
	if err != nil {
		_ = Shutdown(nil, ns)
		return nil, fmt.Errorf("connecting to event log: %w", err)
	}
	js, err := NewJetStream(nc)
	if err != nil {
		_ = Shutdown(nc, ns)
		return nil, fmt.Errorf("creating jetstream context: %w", err)
	}
	stream, err := SetupStream(ctx, js)
	if err != nil {
		_ = Shutdown(nc, ns)
		return nil, fmt.Errorf("setting up event stream: %w", err)
	}

	s := NewStore(js, stream)
	s.nc = nc
	s.ns = ns
	return s, nil
}

// Close shuts down the embedded server when the store owns one.
func (s *Store) Close() error {
	if s.nc == nil && s.ns == nil {
		return nil
	}
	err := Shutdown(s.nc, s.ns)
	s.nc, s.ns = nil, nil
	return err
}

// Publish appends ev for formSlug and returns the stored record.
func (s *Store) Publish(ctx context.Context, formSlug string, ev form.Event) (*Record, error) {
	rec := Record{
		ID:        ulid.Make().String(),
		Timestamp: time.Now().UTC(),
		Form:      formSlug,
		Type:      ev.Type.String(),
		Step:      ev.Step,
		Answers:   ev.Answers.Clone(),
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}

	subject := SubjectForEvent(formSlug, rec.Type)
	ack, err := s.js.Publish(ctx, subject, data)
	if err != nil {
		logger.Error("Failed to publish event to subject %s: %v", subject, err)
		return nil, fmt.Errorf("failed to publish event: %w", err)
	}

	logger.Debug("Published %s event for %s: seq=%d", rec.Type, formSlug, ack.Sequence)
	return &rec, nil
}

// Records reads every stored event of formSlug whose type matches
// eventType, in publish order. An empty eventType matches all types.
func (s *Store) Records(ctx context.Context, formSlug, eventType string) ([]Record, error) {
	filter := SubjectForForm(formSlug)
	if eventType != "" {
		filter = SubjectForEvent(formSlug, eventType)
	}

	consumer, err := s.stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		FilterSubject: filter,
		DeliverPolicy: jetstream.DeliverAllPolicy,
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}

	var out []Record
	const batchSize = 500
	for {
		msgs, err := consumer.FetchNoWait(batchSize)
		if err != nil {
			break
		}

		count := 0
		for msg := range msgs.Messages() {
			count++
			var rec Record
			if err := json.Unmarshal(msg.Data(), &rec); err != nil {
				logger.Warn("Skipping malformed event on %s: %v", msg.Subject(), err)
				_ = msg.Ack()
				continue
			}
			out = append(out, rec)
			_ = msg.Ack()
		}
		if err := msgs.Error(); err != nil {
			logger.Debug("Fetch ended: %v", err)
		}
		if count < batchSize {
			break
		}
	}

	logger.Debug("Loaded %d %q records for %s", len(out), eventType, formSlug)
	return out, nil
}

// Submissions returns the stored submit events of formSlug.
func (s *Store) Submissions(ctx context.Context, formSlug string) ([]Record, error) {
	return s.Records(ctx, formSlug, form.EventSubmit.String())
}

// Summary counts stored events of formSlug by type.
func (s *Store) Summary(ctx context.Context, formSlug string) (map[string]int, error) {
	recs, err := s.Records(ctx, formSlug, "")
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, r := range recs {
		counts[r.Type]++
	}
	return counts, nil
}
