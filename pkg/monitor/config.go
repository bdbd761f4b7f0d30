package monitor

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"sigs.k8s.io/yaml"

	"github.com/directoryops/ldapwatch/pkg/ldif"
	"github.com/directoryops/ldapwatch/pkg/sink"
)

// Duration is a time.Duration that unmarshals from either a Go duration
// string ("30s") or integer nanoseconds.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		v, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("parsing duration %q: %w", s, err)
		}
		*d = Duration(v)
		return nil
	}
	var n int64
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("duration must be a string or integer: %w", err)
	}
	*d = Duration(n)
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Config holds the full pipeline configuration.
type Config struct {
	// InputFile is the audit log to tail. Required.
	InputFile string `json:"input_file"`

	// OffsetFile is the durable cursor state path.
	OffsetFile string `json:"offset_file"`

	// Output selects the sink kind.
	Output sink.Kind `json:"output"`

	// URL is the HTTP collector endpoint for the http sink.
	URL string `json:"url"`

	// SyslogAddress is the host:port for the syslog sink.
	SyslogAddress string `json:"syslog_address"`

	// SyslogNetwork is the syslog dial network (default udp).
	SyslogNetwork string `json:"syslog_network,omitempty"`

	// Paranoid commits the cursor after every line during the real read
	// pass instead of once per run.
	Paranoid bool `json:"paranoid"`

	// RequireDelivery makes delivery failures fatal to the run: the
	// cursor is not committed past an undelivered batch. When false,
	// delivery errors are logged and the cursor commits regardless.
	RequireDelivery bool `json:"require_delivery"`

	// Watch keeps the process alive, re-running the pipeline on an
	// interval and on input file writes.
	Watch bool `json:"watch"`

	// Interval is the watch-mode re-run interval.
	Interval Duration `json:"interval"`

	// MetricsBindAddress serves Prometheus metrics in watch mode.
	// Empty disables the endpoint.
	MetricsBindAddress string `json:"metrics_bind_address"`

	// LogLevel is the log verbosity (0=info, 1=debug, 2=trace).
	LogLevel int `json:"log_level"`

	// IgnoredAttributes replaces the default sensitive-attribute list
	// when non-empty.
	IgnoredAttributes []string `json:"ignored_attributes"`

	// IgnoredAttributePatterns adds regex patterns to the ignore set.
	IgnoredAttributePatterns []string `json:"ignored_attribute_patterns"`

	CloudWatch *sink.CloudWatchConfig `json:"cloudwatch,omitempty"`
	PubSub     *sink.PubSubConfig     `json:"pubsub,omitempty"`
	EventHub   *sink.EventHubConfig   `json:"eventhub,omitempty"`
	AzureBlob  *sink.AzureBlobConfig  `json:"azureblob,omitempty"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		OffsetFile:         "ldapwatch.offset",
		Output:             sink.KindStdout,
		URL:                "http://localhost:8080/events",
		SyslogAddress:      "localhost:514",
		Interval:           Duration(30 * time.Second),
		MetricsBindAddress: ":8080",
		IgnoredAttributes:  ldif.DefaultIgnoredAttributes(),
	}
}

// LoadFile layers a YAML config file over the defaults.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.InputFile == "" {
		return errors.New("input_file is required")
	}
	if c.OffsetFile == "" {
		return errors.New("offset_file is required")
	}
	if c.Output == "" {
		return errors.New("output is required")
	}
	if c.Watch && time.Duration(c.Interval) <= 0 {
		return errors.New("interval must be positive in watch mode")
	}
	if _, err := c.IgnoreSet(); err != nil {
		return err
	}
	return nil
}

// IgnoreSet compiles the configured attribute ignore set.
func (c *Config) IgnoreSet() (*ldif.IgnoreSet, error) {
	names := c.IgnoredAttributes
	if len(names) == 0 {
		names = ldif.DefaultIgnoredAttributes()
	}
	return ldif.NewIgnoreSet(names, c.IgnoredAttributePatterns)
}

// SinkConfig maps the pipeline configuration onto the sink layer.
func (c *Config) SinkConfig() *sink.Config {
	return &sink.Config{
		Kind:          c.Output,
		URL:           c.URL,
		FireAndForget: !c.RequireDelivery,
		SyslogAddress: c.SyslogAddress,
		SyslogNetwork: c.SyslogNetwork,
		CloudWatch:    c.CloudWatch,
		PubSub:        c.PubSub,
		EventHub:      c.EventHub,
		AzureBlob:     c.AzureBlob,
	}
}
