package exception

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/leshachaplin/tracklog/internal/domain"
)

type Config struct {
	Target  string `mapstructure:"target"`
	Version string `mapstructure:"version"`
}

// Reporter is the application's error reporting hook.
type Reporter interface {
	ReportException(err error, data map[string]string)
	ReportError(category, message string, data map[string]string)
}

// Sink receives every error observed by the bridge.
type Sink interface {
	TrackException(err error, kind string, props map[string]string)
}

type bridge struct {
	original Reporter
	sink     Sink
	cfg      Config
}

// Wrap returns a Reporter that calls original first and then forwards the
// error with its context to sink. original may be nil.
func Wrap(original Reporter, sink Sink, cfg Config) Reporter {
	return &bridge{
		original: original,
		sink:     sink,
		cfg:      cfg,
	}
}

func (b *bridge) ReportException(err error, data map[string]string) {
	if b.original != nil {
		b.original.ReportException(err, data)
	}
	b.sink.TrackException(err, domain.KindException, b.props(nil, data))
}

func (b *bridge) ReportError(category, message string, data map[string]string) {
	if b.original != nil {
		b.original.ReportError(category, message, data)
	}
	extra := map[string]string{
		"category": category,
		"message":  message,
	}
	b.sink.TrackException(errors.New(message), domain.KindError, b.props(extra, data))
}

// props merges target and version, then extra, then caller data. Later
// sources win.
func (b *bridge) props(extra, data map[string]string) map[string]string {
	props := map[string]string{
		"target":  b.cfg.Target,
		"version": b.cfg.Version,
	}
	for k, v := range extra {
		props[k] = v
	}
	for k, v := range data {
		props[k] = v
	}
	return props
}

// LogReporter is the default hook: it only logs.
type LogReporter struct {
	Logger zerolog.Logger
}

func (r LogReporter) ReportException(err error, data map[string]string) {
	l := r.Logger.Error().Err(err)
	for k, v := range data {
		l = l.Str(k, v)
	}
	l.Msg("exception reported")
}

func (r LogReporter) ReportError(category, message string, data map[string]string) {
	l := r.Logger.Error().Str("category", category)
	for k, v := range data {
		l = l.Str(k, v)
	}
	l.Msg(message)
}

type Tracker interface {
	TrackEvent(ctx context.Context, stream string, event domain.Event) error
}

// StreamSink records errors as events in the exception stream so they ship
// with the regular flush cycle.
type StreamSink struct {
	tracker Tracker
	logger  zerolog.Logger
}

func NewStreamSink(tracker Tracker, logger zerolog.Logger) *StreamSink {
	return &StreamSink{tracker: tracker, logger: logger}
}

func (s *StreamSink) TrackException(err error, kind string, props map[string]string) {
	rec := domain.NewExceptionRecord(kind, err, props)
	ev := domain.NewEvent(kind, map[string]any{
		"message": rec.Message,
		"props":   rec.Props,
	})
	if trackErr := s.tracker.TrackEvent(context.Background(), domain.ExceptionStream, ev); trackErr != nil {
		s.logger.Error().Err(trackErr).Msg("could not record exception")
	}
}

// MultiSink fans one error out to several sinks.
type MultiSink []Sink

func (m MultiSink) TrackException(err error, kind string, props map[string]string) {
	for _, s := range m {
		s.TrackException(err, kind, props)
	}
}
