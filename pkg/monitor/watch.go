package monitor

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/directoryops/ldapwatch/pkg/metrics"
)

// Watch runs the pipeline repeatedly until the context is cancelled: on a
// fixed interval, and early whenever the input file is written or
// recreated. Runs are strictly sequential; the cursor file carries all
// state between them.
func Watch(ctx context.Context, cfg Config) error {
	if cfg.MetricsBindAddress != "" {
		stop := serveMetrics(cfg.MetricsBindAddress)
		defer stop()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory, not the file: rotation replaces the file and
	// a watch on the old inode would go quiet.
	dir := filepath.Dir(cfg.InputFile)
	if err := watcher.Add(dir); err != nil {
		return err
	}

	interval := time.Duration(cfg.Interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info("watching audit log", "path", cfg.InputFile, "interval", interval)

	for {
		if err := Run(ctx, cfg); err != nil {
			log.Error(err, "pipeline run failed")
		}
		if !waitForTrigger(ctx, cfg, watcher, ticker) {
			return nil
		}
	}
}

// waitForTrigger blocks until the next run should start. Returns false on
// shutdown.
func waitForTrigger(ctx context.Context, cfg Config, watcher *fsnotify.Watcher, ticker *time.Ticker) bool {
	for {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			return true
		case ev := <-watcher.Events:
			if ev.Name != cfg.InputFile || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			// Give the log writer a moment to finish the record.
			select {
			case <-ctx.Done():
				return false
			case <-time.After(250 * time.Millisecond):
			}
			return true
		case err := <-watcher.Errors:
			log.Error(err, "file watcher error")
		}
	}
}

// serveMetrics exposes the Prometheus registry and returns a shutdown
// func.
func serveMetrics(addr string) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(err, "metrics server exited", "addr", addr)
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
}
