//go:build gcp

package pubsub

import (
	"fmt"

	"github.com/directoryops/ldapwatch/pkg/sink"
)

func init() {
	sink.Register(sink.KindPubSub, buildPubSubSink)
}

func buildPubSubSink(cfg *sink.Config) (sink.Sink, error) {
	if cfg.PubSub == nil {
		return nil, fmt.Errorf("pubsub configuration is required for the pubsub sink")
	}
	if cfg.PubSub.ProjectID == "" {
		return nil, fmt.Errorf("pubsub.project_id is required")
	}
	if cfg.PubSub.TopicID == "" {
		return nil, fmt.Errorf("pubsub.topic_id is required")
	}

	return &Sink{
		ProjectID: cfg.PubSub.ProjectID,
		TopicID:   cfg.PubSub.TopicID,
	}, nil
}
