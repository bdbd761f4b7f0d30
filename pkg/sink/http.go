package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/directoryops/ldapwatch/pkg/event"
	"github.com/directoryops/ldapwatch/pkg/logging"
)

var httpLog = logging.Log.WithName("sink").WithName("http")

// DefaultHTTPTimeout bounds each collector POST.
const DefaultHTTPTimeout = 10 * time.Second

func init() {
	Register(KindHTTP, func(cfg *Config) (Sink, error) {
		return NewHTTPSink(cfg.URL, cfg.FireAndForget), nil
	})
}

// HTTPSink posts events as JSON documents to an event collector. In
// fire-and-forget mode network and server failures are logged and
// swallowed; otherwise they propagate to the caller.
type HTTPSink struct {
	URL           string
	FireAndForget bool
	Timeout       time.Duration

	client      *http.Client
	hostname    string
	processID   int
	processName string
}

// NewHTTPSink creates an HTTP collector sink.
func NewHTTPSink(url string, fireAndForget bool) *HTTPSink {
	hostname, _ := os.Hostname()
	return &HTTPSink{
		URL:           url,
		FireAndForget: fireAndForget,
		Timeout:       DefaultHTTPTimeout,
		client:        &http.Client{},
		hostname:      hostname,
		processID:     os.Getpid(),
		processName:   filepath.Base(os.Args[0]),
	}
}

// httpEventDoc is the collector wire format.
type httpEventDoc struct {
	Timestamp   string         `json:"timestamp"`
	Hostname    string         `json:"hostname"`
	ProcessID   int            `json:"processid"`
	ProcessName string         `json:"processname"`
	Severity    string         `json:"severity"`
	Summary     string         `json:"summary"`
	Category    string         `json:"category"`
	Tags        []string       `json:"tags"`
	Details     map[string]any `json:"details"`
}

func (s *HTTPSink) Deliver(ctx context.Context, ev event.Event) error {
	// A malformed event here is a bug in event construction; it is never
	// swallowed, even in fire-and-forget mode.
	if err := ev.Validate(); err != nil {
		return err
	}

	doc := httpEventDoc{
		Timestamp:   ev.Timestamp.Format(time.RFC3339Nano),
		Hostname:    s.hostname,
		ProcessID:   s.processID,
		ProcessName: s.processName,
		Severity:    ev.Severity,
		Summary:     ev.Summary,
		Category:    ev.Category,
		Tags:        ev.Tags,
		Details:     ev.Details,
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}

	if err := s.post(ctx, payload); err != nil {
		if s.FireAndForget {
			httpLog.V(1).Info("dropping undeliverable event", "url", s.URL, "error", err)
			return nil
		}
		return err
	}
	return nil
}

func (s *HTTPSink) post(ctx context.Context, payload []byte) error {
	timeout := s.Timeout
	if timeout == 0 {
		timeout = DefaultHTTPTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "ldapwatch")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting event: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))

	if resp.StatusCode >= 400 {
		return fmt.Errorf("collector returned status %d", resp.StatusCode)
	}
	return nil
}

func (s *HTTPSink) Close(context.Context) error {
	s.client.CloseIdleConnections()
	return nil
}
