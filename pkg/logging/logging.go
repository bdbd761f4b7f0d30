// Package logging holds the process-wide logger root. Packages grab named
// loggers from Log at init time; main installs the real zap-backed logger
// with Setup before the pipeline starts, and the delegating sink routes
// everything logged afterwards to it. Records logged before Setup are
// dropped.
package logging

import (
	"sync"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the root logger. Derive named loggers from it freely; they all
// follow the logger installed by SetLogger.
var Log = logr.New(&delegatingSink{})

// SetLogger installs the concrete logger behind Log.
func SetLogger(l logr.Logger) {
	root.mu.Lock()
	defer root.mu.Unlock()
	root.logger = l
	root.set = true
}

// Setup builds a zap logger and installs it as the root. level maps to
// logr verbosity: 0=info, 1=debug, 2=trace.
func Setup(level int, development bool) error {
	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	// logr V-levels are inverted zap levels.
	cfg.Level = zap.NewAtomicLevelAt(zapcore.Level(-level))

	zl, err := cfg.Build()
	if err != nil {
		return err
	}
	SetLogger(zapr.NewLogger(zl))
	return nil
}

type rootLogger struct {
	mu     sync.RWMutex
	logger logr.Logger
	set    bool
}

var root rootLogger

// delegatingSink forwards log records to the installed root logger,
// replaying any names and key/value pairs accumulated before installation.
type delegatingSink struct {
	names  []string
	values []any
}

var _ logr.LogSink = (*delegatingSink)(nil)

func (s *delegatingSink) Init(logr.RuntimeInfo) {}

func (s *delegatingSink) resolve() (logr.Logger, bool) {
	root.mu.RLock()
	defer root.mu.RUnlock()
	if !root.set {
		return logr.Logger{}, false
	}
	l := root.logger
	for _, n := range s.names {
		l = l.WithName(n)
	}
	if len(s.values) > 0 {
		l = l.WithValues(s.values...)
	}
	return l, true
}

func (s *delegatingSink) Enabled(level int) bool {
	l, ok := s.resolve()
	return ok && l.V(level).Enabled()
}

func (s *delegatingSink) Info(level int, msg string, kv ...any) {
	if l, ok := s.resolve(); ok {
		l.V(level).Info(msg, kv...)
	}
}

func (s *delegatingSink) Error(err error, msg string, kv ...any) {
	if l, ok := s.resolve(); ok {
		l.Error(err, msg, kv...)
	}
}

func (s *delegatingSink) WithName(name string) logr.LogSink {
	return &delegatingSink{
		names:  append(append([]string(nil), s.names...), name),
		values: s.values,
	}
}

func (s *delegatingSink) WithValues(kv ...any) logr.LogSink {
	return &delegatingSink{
		names:  s.names,
		values: append(append([]any(nil), s.values...), kv...),
	}
}
