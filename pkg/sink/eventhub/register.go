//go:build azure

package eventhub

import (
	"fmt"

	"github.com/directoryops/ldapwatch/pkg/sink"
)

func init() {
	sink.Register(sink.KindEventHub, buildEventHubSink)
}

func buildEventHubSink(cfg *sink.Config) (sink.Sink, error) {
	if cfg.EventHub == nil {
		return nil, fmt.Errorf("eventhub configuration is required for the eventhub sink")
	}
	if cfg.EventHub.Namespace == "" {
		return nil, fmt.Errorf("eventhub.namespace is required")
	}
	if cfg.EventHub.EventHubName == "" {
		return nil, fmt.Errorf("eventhub.event_hub_name is required")
	}

	return &Sink{
		Namespace:    cfg.EventHub.Namespace,
		EventHubName: cfg.EventHub.EventHubName,
	}, nil
}
