// Package sink delivers built change events to their configured
// destination. Exactly one sink is active per run. Cloud-backed sinks
// live in build-tag-gated subpackages that register themselves through
// Register from an init() function.
package sink

import (
	"context"
	"fmt"

	"github.com/directoryops/ldapwatch/pkg/event"
)

// Kind selects the delivery mechanism.
type Kind string

const (
	KindStdout     Kind = "stdout"
	KindSyslog     Kind = "syslog"
	KindHTTP       Kind = "http"
	KindCloudWatch Kind = "cloudwatch"
	KindPubSub     Kind = "pubsub"
	KindEventHub   Kind = "eventhub"
	KindAzureBlob  Kind = "azureblob"
)

// Sink delivers events to a destination.
type Sink interface {
	// Deliver hands one event to the destination.
	Deliver(ctx context.Context, ev event.Event) error

	// Close flushes buffered data and releases resources.
	Close(ctx context.Context) error
}

// Config carries the settings for every sink kind; only the block for
// the selected kind is consulted.
type Config struct {
	Kind Kind `json:"kind,omitempty"`

	// URL is the HTTP collector endpoint.
	URL string `json:"url,omitempty"`

	// FireAndForget suppresses HTTP delivery errors.
	FireAndForget bool `json:"fire_and_forget,omitempty"`

	// SyslogAddress is the host:port of the syslog receiver.
	SyslogAddress string `json:"syslog_address,omitempty"`

	// SyslogNetwork is the dial network for syslog (default udp).
	SyslogNetwork string `json:"syslog_network,omitempty"`

	CloudWatch *CloudWatchConfig `json:"cloudwatch,omitempty"`
	PubSub     *PubSubConfig     `json:"pubsub,omitempty"`
	EventHub   *EventHubConfig   `json:"eventhub,omitempty"`
	AzureBlob  *AzureBlobConfig  `json:"azureblob,omitempty"`
}

// CloudWatchConfig configures the AWS CloudWatch Logs sink.
type CloudWatchConfig struct {
	// LogGroupName is the destination log group.
	LogGroupName string `json:"log_group_name"`

	// LogStreamName is the destination log stream, created on first use.
	LogStreamName string `json:"log_stream_name"`

	// Region overrides AWS_REGION from the environment when set.
	Region string `json:"region,omitempty"`
}

// PubSubConfig configures the GCP Pub/Sub sink.
type PubSubConfig struct {
	ProjectID string `json:"project_id"`
	TopicID   string `json:"topic_id"`
}

// EventHubConfig configures the Azure Event Hubs sink.
type EventHubConfig struct {
	// Namespace is the fully qualified Event Hubs namespace
	// (e.g. myns.servicebus.windows.net).
	Namespace string `json:"namespace"`

	// EventHubName is the hub to publish to.
	EventHubName string `json:"event_hub_name"`
}

// AzureBlobConfig configures the Azure Blob archive sink.
type AzureBlobConfig struct {
	// AccountURL is the blob service URL (e.g. https://acct.blob.core.windows.net).
	AccountURL string `json:"account_url"`

	// ContainerName is the destination container.
	ContainerName string `json:"container_name"`

	// Prefix is prepended to archive blob names.
	Prefix string `json:"prefix,omitempty"`
}

// Factory creates a sink from its configuration.
type Factory func(cfg *Config) (Sink, error)

var registry = map[Kind]Factory{}

// Register registers a sink factory for a kind. Typically called from an
// init() function, for cloud sinks in a build-tag-gated package.
func Register(kind Kind, factory Factory) {
	registry[kind] = factory
}

// Build creates the sink for the given config.
func Build(cfg *Config) (Sink, error) {
	factory, ok := registry[cfg.Kind]
	if !ok {
		return nil, fmt.Errorf("unsupported sink kind: %s (no factory registered, check build tags)", cfg.Kind)
	}
	return factory(cfg)
}
