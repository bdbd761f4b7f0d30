package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/directoryops/ldapwatch/pkg/logging"
	"github.com/directoryops/ldapwatch/pkg/monitor"
	"github.com/directoryops/ldapwatch/pkg/sink"
)

// Build-time variables injected via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Printf("ldapwatch %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := logging.Setup(cfg.LogLevel, cfg.LogLevel > 0); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if cfg.Watch {
		err = monitor.Watch(ctx, cfg)
	} else {
		err = monitor.Run(ctx, cfg)
	}
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig layers environment variables over the optional config file
// over the defaults.
func loadConfig() (monitor.Config, error) {
	cfg := monitor.DefaultConfig()

	if path := envString("LDAPWATCH_CONFIG", ""); path != "" {
		var err error
		cfg, err = monitor.LoadFile(path)
		if err != nil {
			return cfg, err
		}
	}

	cfg.InputFile = envString("LDAPWATCH_INPUT_FILE", cfg.InputFile)
	cfg.OffsetFile = envString("LDAPWATCH_OFFSET_FILE", cfg.OffsetFile)
	cfg.Output = sink.Kind(envString("LDAPWATCH_OUTPUT", string(cfg.Output)))
	cfg.URL = envString("LDAPWATCH_URL", cfg.URL)
	cfg.SyslogAddress = envString("LDAPWATCH_SYSLOG_ADDRESS", cfg.SyslogAddress)
	cfg.Paranoid = envBool("LDAPWATCH_PARANOID", cfg.Paranoid)
	cfg.RequireDelivery = envBool("LDAPWATCH_REQUIRE_DELIVERY", cfg.RequireDelivery)
	cfg.Watch = envBool("LDAPWATCH_WATCH", cfg.Watch)
	cfg.Interval = monitor.Duration(envDuration("LDAPWATCH_INTERVAL", time.Duration(cfg.Interval)))
	cfg.MetricsBindAddress = envString("LDAPWATCH_METRICS_BIND_ADDRESS", cfg.MetricsBindAddress)
	cfg.LogLevel = envInt("LDAPWATCH_LOG_LEVEL", cfg.LogLevel)

	return cfg, nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return defaultVal
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return defaultVal
}
