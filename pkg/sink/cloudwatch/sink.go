//go:build aws

// Package cloudwatch ships change events to an AWS CloudWatch Logs
// stream, one JSON document per log event.
package cloudwatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"

	"github.com/directoryops/ldapwatch/pkg/event"
	"github.com/directoryops/ldapwatch/pkg/logging"
)

var log = logging.Log.WithName("sink").WithName("cloudwatch")

// Sink delivers events with PutLogEvents. The log stream is created on
// first delivery if it does not exist.
type Sink struct {
	LogGroupName  string
	LogStreamName string
	Region        string // Optional: if empty, uses AWS_REGION from environment.

	client *cloudwatchlogs.Client
}

func (s *Sink) connect(ctx context.Context) error {
	if s.client != nil {
		return nil
	}

	var opts []func(*config.LoadOptions) error
	if s.Region != "" {
		opts = append(opts, config.WithRegion(s.Region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return fmt.Errorf("loading AWS config: %w", err)
	}

	client := cloudwatchlogs.NewFromConfig(cfg)

	_, err = client.CreateLogStream(ctx, &cloudwatchlogs.CreateLogStreamInput{
		LogGroupName:  aws.String(s.LogGroupName),
		LogStreamName: aws.String(s.LogStreamName),
	})
	var exists *types.ResourceAlreadyExistsException
	if err != nil && !errors.As(err, &exists) {
		return fmt.Errorf("creating log stream: %w", err)
	}

	s.client = client
	log.Info("connected to CloudWatch Logs",
		"logGroup", s.LogGroupName, "logStream", s.LogStreamName, "region", cfg.Region)
	return nil
}

func (s *Sink) Deliver(ctx context.Context, ev event.Event) error {
	if err := s.connect(ctx); err != nil {
		return err
	}

	doc, err := json.Marshal(map[string]any{
		"summary":  ev.Summary,
		"category": ev.Category,
		"severity": ev.Severity,
		"tags":     ev.Tags,
		"details":  ev.Details,
	})
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}

	_, err = s.client.PutLogEvents(ctx, &cloudwatchlogs.PutLogEventsInput{
		LogGroupName:  aws.String(s.LogGroupName),
		LogStreamName: aws.String(s.LogStreamName),
		LogEvents: []types.InputLogEvent{{
			Message:   aws.String(string(doc)),
			Timestamp: aws.Int64(ev.Timestamp.UnixMilli()),
		}},
	})
	if err != nil {
		return fmt.Errorf("PutLogEvents: %w", err)
	}
	return nil
}

func (s *Sink) Close(context.Context) error {
	s.client = nil
	return nil
}
