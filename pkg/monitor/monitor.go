// Package monitor wires the pipeline together: the tail cursor feeds the
// record parser, completed records become events, and events go to the
// configured sink. Each Run is one batch pass; nothing persists between
// runs except the cursor state file.
package monitor

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/directoryops/ldapwatch/pkg/event"
	"github.com/directoryops/ldapwatch/pkg/ldif"
	"github.com/directoryops/ldapwatch/pkg/logging"
	"github.com/directoryops/ldapwatch/pkg/metrics"
	"github.com/directoryops/ldapwatch/pkg/sink"
	"github.com/directoryops/ldapwatch/pkg/tailer"
)

var log = logging.Log.WithName("monitor")

// Run executes one batch pass of the pipeline.
func Run(ctx context.Context, cfg Config) error {
	start := time.Now()
	result, err := runOnce(ctx, cfg)
	metrics.RunDurationSeconds.Observe(time.Since(start).Seconds())
	metrics.RunsTotal.WithLabelValues(result).Inc()
	return err
}

// runOnce is the two-pass batch structure: a trial read that never
// commits confirms a complete record boundary exists in the new bytes;
// only then are records parsed, the cursor committed, and events
// dispatched. A log writer caught mid-record makes this run a no-op and
// the next run retries from the same offset.
func runOnce(ctx context.Context, cfg Config) (string, error) {
	t, err := tailer.Open(cfg.InputFile, cfg.OffsetFile, tailer.Options{Trial: true})
	if os.IsNotExist(err) {
		log.V(1).Info("input file absent, nothing to do", "path", cfg.InputFile)
		return "noop", nil
	}
	if err != nil {
		return "error", err
	}
	defer t.Close()

	if t.Rotated() != "" {
		metrics.RotationsDetectedTotal.Inc()
	}

	lines, boundary, boundaryPos, err := readBatch(t)
	if err != nil {
		return "error", fmt.Errorf("reading audit log: %w", err)
	}
	metrics.LinesReadTotal.Add(float64(len(lines)))

	if boundary < 0 {
		log.V(1).Info("no complete record boundary in new data", "lines", len(lines))
		return "noop", nil
	}

	// Anything past the last record terminator is an in-progress record;
	// it stays unparsed and uncommitted until a later run completes it.
	batch := lines[:boundary+1]

	ignore, err := cfg.IgnoreSet()
	if err != nil {
		return "error", err
	}
	records := ldif.NewParser(ignore).Parse(ldif.NewScanner(batch))

	stats := newRunStats()
	for _, rec := range records {
		stats.add(rec)
		metrics.RecordsParsedTotal.WithLabelValues(rec.ChangeType).Inc()
	}

	snk, err := sink.Build(cfg.SinkConfig())
	if err != nil {
		return "error", fmt.Errorf("building %s sink: %w", cfg.Output, err)
	}

	if cfg.RequireDelivery {
		// Delivery is the gate: nothing commits past an undelivered batch.
		if err := dispatch(ctx, cfg, snk, records); err != nil {
			return "error", err
		}
		if err := snk.Close(ctx); err != nil {
			return "error", fmt.Errorf("closing sink: %w", err)
		}
		if err := commitCursor(t, cfg, boundaryPos, len(batch)); err != nil {
			return "error", err
		}
	} else {
		// Commit first: parsed records are never re-parsed because a sink
		// was unreachable.
		if err := commitCursor(t, cfg, boundaryPos, len(batch)); err != nil {
			return "error", err
		}
		if err := dispatch(ctx, cfg, snk, records); err != nil {
			log.Error(err, "delivery failed for committed batch", "sink", cfg.Output)
		}
		if err := snk.Close(ctx); err != nil {
			log.Error(err, "closing sink", "sink", cfg.Output)
		}
	}

	log.Info("run complete",
		"records", stats.records, "lines", len(batch), "breakdown", stats.breakdown())
	return "success", nil
}

// readBatch drains the cursor, remembering the index of the last line
// containing a record terminator and the cursor position right after it.
// boundary is -1 when no complete record is present.
func readBatch(t *tailer.Tailer) (lines []string, boundary int, boundaryPos tailer.Position, err error) {
	boundary = -1
	for {
		line, rerr := t.Next()
		if rerr == io.EOF {
			return lines, boundary, boundaryPos, nil
		}
		if rerr != nil {
			return nil, -1, tailer.Position{}, rerr
		}
		lines = append(lines, line)
		if strings.Contains(line, "# end") {
			pos, perr := t.Position()
			if perr != nil {
				return nil, -1, tailer.Position{}, perr
			}
			boundary = len(lines) - 1
			boundaryPos = pos
		}
	}
}

// dispatch builds and delivers one event per record. In required-delivery
// mode the first failure aborts; otherwise failed events are logged and
// skipped.
func dispatch(ctx context.Context, cfg Config, snk sink.Sink, records []ldif.Record) error {
	sinkName := string(cfg.Output)
	for _, rec := range records {
		ev := event.Build(rec)
		if err := snk.Deliver(ctx, ev); err != nil {
			metrics.EventsDeliveredTotal.WithLabelValues(sinkName, "error").Inc()
			if cfg.RequireDelivery {
				return fmt.Errorf("delivering event for %s: %w", rec.DN, err)
			}
			log.Error(err, "dropping undeliverable event", "dn", rec.DN)
			continue
		}
		metrics.EventsDeliveredTotal.WithLabelValues(sinkName, "ok").Inc()
	}
	return nil
}

// commitCursor records the position of the last record terminator. The
// default mode writes that position directly; paranoid mode instead
// re-reads the confirmed batch with per-line commits so a crash mid-pass
// leaves the cursor at the last consumed line rather than the batch start.
func commitCursor(t *tailer.Tailer, cfg Config, pos tailer.Position, batchLines int) error {
	if cfg.Paranoid {
		return commitParanoid(cfg, batchLines)
	}
	if err := t.CommitAt(pos); err != nil {
		return fmt.Errorf("committing cursor: %w", err)
	}
	metrics.CheckpointOffsetBytes.Set(float64(pos.Offset))
	return nil
}

func commitParanoid(cfg Config, batchLines int) error {
	pt, err := tailer.Open(cfg.InputFile, cfg.OffsetFile, tailer.Options{Paranoid: true})
	if err != nil {
		return fmt.Errorf("reopening for paranoid commit: %w", err)
	}
	defer pt.Close()

	// Read exactly the confirmed batch; the file may have grown since the
	// trial pass and the surplus belongs to the next run.
	for i := 0; i < batchLines; i++ {
		if _, err := pt.Next(); err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("paranoid re-read: %w", err)
		}
	}
	if err := pt.Commit(); err != nil {
		return fmt.Errorf("committing cursor: %w", err)
	}
	observeCheckpoint(pt)
	return nil
}

func observeCheckpoint(t *tailer.Tailer) {
	if pos, err := t.Position(); err == nil {
		metrics.CheckpointOffsetBytes.Set(float64(pos.Offset))
	}
}
