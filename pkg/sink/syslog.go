//go:build !windows && !plan9

package sink

import (
	"context"
	"fmt"
	"log/syslog"

	"github.com/directoryops/ldapwatch/pkg/event"
)

func init() {
	Register(KindSyslog, newSyslogSink)
}

// syslogSink emits one syslog record per event at facility local4,
// severity warning.
type syslogSink struct {
	w *syslog.Writer
}

func newSyslogSink(cfg *Config) (Sink, error) {
	network := cfg.SyslogNetwork
	if network == "" {
		network = "udp"
	}
	w, err := syslog.Dial(network, cfg.SyslogAddress, syslog.LOG_WARNING|syslog.LOG_LOCAL4, "ldapwatch")
	if err != nil {
		return nil, fmt.Errorf("dialing syslog %s: %w", cfg.SyslogAddress, err)
	}
	return &syslogSink{w: w}, nil
}

func (s *syslogSink) Deliver(_ context.Context, ev event.Event) error {
	return s.w.Warning(ev.Summary)
}

func (s *syslogSink) Close(context.Context) error {
	return s.w.Close()
}
