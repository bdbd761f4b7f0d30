//go:build azure

// Package eventhub publishes change events to an Azure Event Hub using a
// producer client authenticated with the default Azure credential chain.
package eventhub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azeventhubs/v2"

	"github.com/directoryops/ldapwatch/pkg/event"
	"github.com/directoryops/ldapwatch/pkg/logging"
)

var log = logging.Log.WithName("sink").WithName("eventhub")

// Sink publishes one event per EventData, batched per Deliver call.
type Sink struct {
	Namespace    string
	EventHubName string

	producer *azeventhubs.ProducerClient
}

func (s *Sink) connect(_ context.Context) error {
	if s.producer != nil {
		return nil
	}

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return fmt.Errorf("creating Azure credential: %w", err)
	}

	producer, err := azeventhubs.NewProducerClient(s.Namespace, s.EventHubName, cred, nil)
	if err != nil {
		return fmt.Errorf("creating Event Hubs producer: %w", err)
	}

	s.producer = producer
	log.Info("connected to Event Hubs", "namespace", s.Namespace, "eventHub", s.EventHubName)
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

	batch, err := s.producer.NewEventDataBatch(ctx, nil)
	if err != nil {
		return fmt.Errorf("creating event batch: %w", err)
	}
	if err := batch.AddEventData(&azeventhubs.EventData{Body: doc}, nil); err != nil {
		return fmt.Errorf("adding event to batch: %w", err)
	}
	if err := s.producer.SendEventDataBatch(ctx, batch, nil); err != nil {
		return fmt.Errorf("sending event batch: %w", err)
	}
	return nil
}

func (s *Sink) Close(ctx context.Context) error {
	if s.producer == nil {
		return nil
	}
	err := s.producer.Close(ctx)
	s.producer = nil
	if err != nil {
		return fmt.Errorf("closing Event Hubs producer: %w", err)
	}
	return nil
}
