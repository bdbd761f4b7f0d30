package sink

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/directoryops/ldapwatch/pkg/event"
)

func init() {
	Register(KindStdout, func(*Config) (Sink, error) {
		return &StdoutSink{W: os.Stdout}, nil
	})
}

// StdoutSink writes each event's summary as one line of text.
type StdoutSink struct {
	W io.Writer
}

func (s *StdoutSink) Deliver(_ context.Context, ev event.Event) error {
	_, err := fmt.Fprintln(s.W, ev.Summary)
	return err
}

func (s *StdoutSink) Close(context.Context) error {
	return nil
}
