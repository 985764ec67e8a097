package redpanda

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/leshachaplin/tracklog/internal/domain"
)

const defaultPollFetchesTimeout = 15 * time.Second

type ConsumerConfig struct {
	Config             `mapstructure:",squash"`
	ConsumerGroup      string        `mapstructure:"consumer_group"`
	PollFetchesTimeout time.Duration `mapstructure:"poll_fetches_timeout"`
}

// Consumer reads exception records back from the sink topic.
type Consumer struct {
	client             *kgo.Client
	pollFetchesTimeout time.Duration
	logger             zerolog.Logger
}

func NewConsumer(ctx context.Context, cfg ConsumerConfig, logger zerolog.Logger) (*Consumer, error) {
	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ConsumeTopics(cfg.Topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	}
	if cfg.ConsumerGroup != "" {
		opts = append(opts, kgo.ConsumerGroup(cfg.ConsumerGroup))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("kgo new client: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx); err != nil {
		client.Close()
		return nil, err
	}

	consumer := &Consumer{
		client:             client,
		pollFetchesTimeout: cfg.PollFetchesTimeout,
		logger:             logger,
	}
	if consumer.pollFetchesTimeout == 0 {
		consumer.pollFetchesTimeout = defaultPollFetchesTimeout
	}
	return consumer, nil
}

func (c *Consumer) Close() error {
	c.client.Close()
	return nil
}

// Consume delivers records to out until ctx is done or the client closes.
// Records that do not decode are logged and skipped.
func (c *Consumer) Consume(ctx context.Context, out chan<- domain.ExceptionRecord) error {
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		fetchCtx, cancel := context.WithTimeout(ctx, c.pollFetchesTimeout)
		fetches := c.client.PollFetches(fetchCtx)
		cancel()

		if fetches.IsClientClosed() {
			return errors.New("client closed")
		}

		if err := fetches.Err(); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			if errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			c.logger.Warn().Err(err).Msg("stream poll fetches")
			continue
		}

		for iter := fetches.RecordIter(); !iter.Done(); {
			record := iter.Next()

			var rec domain.ExceptionRecord
			if err := json.Unmarshal(record.Value, &rec); err != nil {
				c.logger.Error().Str("record", string(record.Value)).Err(err).Msg("Consume: Unmarshal exception record.")
				continue
			}
			select {
			case out <- rec:
			case <-ctx.Done():
				return nil
			}
		}
	}
}
