package redpanda

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/leshachaplin/tracklog/internal/domain"
)

const (
	defaultRetryAttempts = 3
	defaultRetryDelay    = time.Second
	publishTimeout       = 5 * time.Second
)

type Config struct {
	Brokers       []string      `mapstructure:"brokers"`
	Topic         string        `mapstructure:"topic"`
	RetryAttempts int           `mapstructure:"retry_attempts"`
	RetryDelay    time.Duration `mapstructure:"retry_delay"`
}

// Enabled reports whether an external sink is configured.
func (c Config) Enabled() bool {
	return len(c.Brokers) > 0 && c.Topic != ""
}

// Producer publishes exception records to a Kafka-compatible topic.
type Producer struct {
	ctx    context.Context
	client *kgo.Client
	logger zerolog.Logger
}

func NewProducer(
	ctx context.Context,
	cfg Config,
	logger zerolog.Logger,
) (*Producer, error) {
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = defaultRetryAttempts
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = defaultRetryDelay
	}

	clientOpts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.AllowAutoTopicCreation(),
		kgo.RecordRetries(cfg.RetryAttempts),
		kgo.RetryBackoffFn(linearBackOff(cfg.RetryDelay)),
		kgo.RecordDeliveryTimeout(publishTimeout),
	}

	client, err := kgo.NewClient(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("kgo new client: %w", err)
	}

	if err = client.Ping(ctx); err != nil {
		client.Close()
		return nil, err
	}

	return &Producer{
		ctx:    ctx,
		client: client,
		logger: logger,
	}, nil
}

// Close waits up to publishTimeout for buffered exceptions before closing.
func (p *Producer) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := p.client.Flush(ctx); err != nil {
		p.logger.Warn().Err(err).Msg("flush exceptions on close")
	}
	p.client.Close()
	return nil
}

// TrackException buffers the record keyed by its kind and returns without
// waiting for the broker. Delivery failures are logged, the reporting
// caller is never affected.
func (p *Producer) TrackException(err error, kind string, props map[string]string) {
	rec := domain.NewExceptionRecord(kind, err, props)
	b, mErr := json.Marshal(rec)
	if mErr != nil {
		p.logger.Error().Err(mErr).Str("kind", kind).Msg("could not marshal exception")
		return
	}

	p.client.TryProduce(p.ctx, kgo.KeyStringRecord(kind, string(b)), func(_ *kgo.Record, pErr error) {
		if pErr != nil {
			p.logger.Error().Err(pErr).Str("kind", kind).Msg("could not publish exception")
		}
	})
}

// linearBackOff waits delay after the first failure, 2*delay after the
// second and so on.
func linearBackOff(delay time.Duration) func(tries int) time.Duration {
	return func(tries int) time.Duration {
		if tries < 1 {
			tries = 1
		}
		return delay * time.Duration(tries)
	}
}
