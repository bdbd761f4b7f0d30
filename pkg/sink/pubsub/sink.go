//go:build gcp

// Package pubsub publishes change events to a GCP Pub/Sub topic, one JSON
// message per event.
package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub"

	"github.com/directoryops/ldapwatch/pkg/event"
	"github.com/directoryops/ldapwatch/pkg/logging"
)

var log = logging.Log.WithName("sink").WithName("pubsub")

// Sink publishes events to a topic. Publish results are awaited per
// event so delivery failures surface on Deliver.
type Sink struct {
	ProjectID string
	TopicID   string

	client *pubsub.Client
	topic  *pubsub.Topic
}

func (s *Sink) connect(ctx context.Context) error {
	if s.client != nil {
		return nil
	}

	client, err := pubsub.NewClient(ctx, s.ProjectID)
	if err != nil {
		return fmt.Errorf("creating Pub/Sub client: %w", err)
	}

	s.client = client
	s.topic = client.Topic(s.TopicID)
	log.Info("connected to Pub/Sub", "project", s.ProjectID, "topic", s.TopicID)
	return nil
}

func (s *Sink) Deliver(ctx context.Context, ev event.Event) error {
	if err := s.connect(ctx); err != nil {
		return err
	}

	doc, err := json.Marshal(map[string]any{
		"timestamp": ev.Timestamp,
		"summary":   ev.Summary,
		"category":  ev.Category,
		"severity":  ev.Severity,
		"tags":      ev.Tags,
		"details":   ev.Details,
	})
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}

	result := s.topic.Publish(ctx, &pubsub.Message{
		Data:       doc,
		Attributes: map[string]string{"category": ev.Category},
	})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publishing event: %w", err)
	}
	return nil
}

func (s *Sink) Close(_ context.Context) error {
	if s.topic != nil {
		s.topic.Stop()
		s.topic = nil
	}
	if s.client != nil {
		err := s.client.Close()
		s.client = nil
		if err != nil {
			return fmt.Errorf("closing Pub/Sub client: %w", err)
		}
	}
	return nil
}
