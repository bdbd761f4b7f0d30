//go:build azure

// Package blob archives each run's change events as a timestamped
// JSON-lines blob in Azure Blob Storage, for cold audit-trail retention.
package blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"

	"github.com/directoryops/ldapwatch/pkg/event"
	"github.com/directoryops/ldapwatch/pkg/logging"
)

var log = logging.Log.WithName("sink").WithName("azureblob")

// Sink buffers delivered events and uploads them as one blob on Close.
// An empty run uploads nothing.
type Sink struct {
	AccountURL    string
	ContainerName string
	Prefix        string

	client *azblob.Client
	buf    bytes.Buffer
	count  int
}

func (s *Sink) connect(_ context.Context) error {
	if s.client != nil {
		return nil
	}

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return fmt.Errorf("creating Azure credential: %w", err)
	}

	client, err := azblob.NewClient(s.AccountURL, cred, nil)
	if err != nil {
		return fmt.Errorf("creating blob client: %w", err)
	}

	s.client = client
	log.Info("connected to Azure Blob Storage", "account", s.AccountURL, "container", s.ContainerName)
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

	s.buf.Write(doc)
	s.buf.WriteByte('\n')
	s.count++
	return nil
}

// Close uploads the buffered batch. The upload failing means the archive
// batch was not delivered; callers in required-delivery mode treat that
// as fatal to the run.
func (s *Sink) Close(ctx context.Context) error {
	if s.client == nil || s.count == 0 {
		return nil
	}

	name := fmt.Sprintf("%sldapwatch-%s.jsonl", s.Prefix, time.Now().UTC().Format("20060102T150405Z"))
	if _, err := s.client.UploadBuffer(ctx, s.ContainerName, name, s.buf.Bytes(), nil); err != nil {
		return fmt.Errorf("uploading archive blob %s: %w", name, err)
	}

	log.Info("archived event batch", "blob", name, "events", s.count)
	s.buf.Reset()
	s.count = 0
	return nil
}
