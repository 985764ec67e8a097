package collector

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/leshachaplin/tracklog/internal/domain"
	"github.com/leshachaplin/tracklog/internal/worker"
)

type Store interface {
	Append(ctx context.Context, stream string, record domain.Record) error
	ReadAll(ctx context.Context, stream string) []domain.Record
	DropSent(ctx context.Context, stream string, n int) error
}

type Sender interface {
	Send(ctx context.Context, batch domain.Batch) error
	CookieHeader() string
}

// Client buffers events per stream and ships each stream as one batch on
// every flush tick.
type Client struct {
	cfg    Config
	store  Store
	sender Sender
	pool   worker.WorkerPool
	logger zerolog.Logger

	mu       sync.Mutex
	streams  []string
	known    map[string]struct{}
	inFlight map[string]struct{}

	correlation *correlation
}

func New(cfg Config, store Store, sender Sender, pool worker.WorkerPool, logger zerolog.Logger) *Client {
	cfg = cfg.withDefaults()
	c := &Client{
		cfg:         cfg,
		store:       store,
		sender:      sender,
		pool:        pool,
		logger:      logger,
		known:       make(map[string]struct{}),
		inFlight:    make(map[string]struct{}),
		correlation: newCorrelation(cfg.CookieName),
	}
	pool.Start(sender.Send)
	return c
}

// TrackEvent registers the stream on first use and appends the rendered event.
func (c *Client) TrackEvent(ctx context.Context, stream string, event domain.Event) error {
	c.register(stream)
	return c.store.Append(ctx, stream, event.Render())
}

func (c *Client) register(stream string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.known[stream]; ok {
		return
	}
	c.known[stream] = struct{}{}
	c.streams = append(c.streams, stream)
}

// Streams returns the active stream names in registration order.
func (c *Client) Streams() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.streams))
	copy(out, c.streams)
	return out
}

// CorrelationID is empty until a round trip has set the configured cookie.
func (c *Client) CorrelationID() string {
	return c.correlation.get()
}

// FlushCycle hands every non-empty stream to the delivery pool and returns
// without waiting. A stream whose previous batch is still in flight is
// skipped until that batch completes.
func (c *Client) FlushCycle(ctx context.Context) {
	for _, stream := range c.Streams() {
		if !c.beginFlight(stream) {
			c.logger.Debug().Str("namespace", stream).Msg("previous batch still in flight")
			continue
		}

		records := c.store.ReadAll(ctx, stream)
		if len(records) == 0 {
			c.endFlight(stream)
			continue
		}

		sent := len(records)
		batch := domain.Batch{
			ID:            uuid.NewString(),
			EditorVersion: c.cfg.EditorVersion,
			Namespace:     stream,
			Data:          records,
		}
		c.pool.Process(worker.Job{
			Batch: batch,
			Done: func(err error) {
				c.complete(batch, stream, sent, err)
			},
		})
	}
}

// complete runs once the collector answered, the send failed or the pool
// turned the batch away. Records are dropped only when a request was
// actually attempted.
func (c *Client) complete(batch domain.Batch, stream string, sent int, err error) {
	defer c.endFlight(stream)

	l := c.logger.With().Str("BATCH_ID", batch.ID).Str("namespace", stream).Int("records", sent).Logger()
	switch {
	case notSent(err):
		l.Info().Err(err).Msg("batch not sent, records kept for the next flush")
		return
	case err != nil:
		l.Warn().Err(err).Msg("batch delivery failed, records dropped")
	default:
		l.Debug().Msg("batch delivered")
		c.correlation.resolve(c.sender.CookieHeader())
	}

	if dropErr := c.store.DropSent(context.Background(), stream, sent); dropErr != nil {
		l.Error().Stack().Err(dropErr).Msg("could not clear delivered records")
	}
}

// notSent reports errors raised before or instead of a completed round trip.
func notSent(err error) bool {
	return errors.Is(err, worker.ErrQueueFull) ||
		errors.Is(err, worker.ErrStopped) ||
		errors.Is(err, context.Canceled)
}

func (c *Client) beginFlight(stream string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.inFlight[stream]; busy {
		return false
	}
	c.inFlight[stream] = struct{}{}
	return true
}

func (c *Client) endFlight(stream string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inFlight, stream)
}

// Run flushes at the configured interval until ctx is done.
func (c *Client) Run(ctx context.Context) {
	tick := time.NewTicker(c.cfg.FlushInterval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			c.FlushCycle(ctx)
		}
	}
}
