package config

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/randalmurphal/evented/pkg/evented"
	"github.com/randalmurphal/evented/pkg/evented/journal"
	"github.com/randalmurphal/evented/pkg/evented/observability"
)

// Settings are the node and journal settings read from a Config.
type Settings struct {
	Name     string
	LogLevel slog.Level
	Metrics  bool
	Tracing  bool
	Recover  bool
	Journal  JournalSettings
}

// JournalSettings select where and what to record.
type JournalSettings struct {
	// Path is the SQLite file. Empty means an in-memory store.
	Path string

	// Types are the event types to record.
	Types []string
}

// LoadSettings reads Settings from cfg. Unknown log levels fall back to info.
func LoadSettings(cfg Config) Settings {
	level := slog.LevelInfo
	if err := level.UnmarshalText([]byte(cfg.String("log_level", "info"))); err != nil {
		level = slog.LevelInfo
	}

	j := cfg.Sub("journal")
	return Settings{
		Name:     cfg.String("name", ""),
		LogLevel: level,
		Metrics:  cfg.Bool("metrics", false),
		Tracing:  cfg.Bool("tracing", false),
		Recover:  cfg.Bool("recover", false),
		Journal: JournalSettings{
			Path:  j.String("path", ""),
			Types: j.StringSlice("types", nil),
		},
	}
}

// Logger returns a JSON logger writing to w at the configured level.
func (s Settings) Logger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: s.LogLevel}))
}

// NodeOptions converts the settings into options for evented.New.
// Recovered listener panics are already logged by the node, so the
// recover handler does nothing further.
func (s Settings) NodeOptions(logger *slog.Logger) []evented.Option {
	opts := []evented.Option{evented.WithLogger(logger)}
	if s.Name != "" {
		opts = append(opts, evented.WithName(s.Name))
	}
	if s.Metrics {
		opts = append(opts, evented.WithMetrics(observability.NewMetricsRecorder()))
	}
	if s.Tracing {
		opts = append(opts, evented.WithSpanManager(observability.NewSpanManager()))
	}
	if s.Recover {
		opts = append(opts, evented.WithRecover(func(*evented.ListenerError) {}))
	}
	return opts
}

// OpenJournal opens the configured journal store.
func (s Settings) OpenJournal() (journal.Store, error) {
	if s.Journal.Path == "" {
		return journal.NewMemoryStore(), nil
	}
	store, err := journal.NewSQLiteStore(s.Journal.Path)
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", s.Journal.Path, err)
	}
	return store, nil
}
