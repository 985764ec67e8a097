package redpanda

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/leshachaplin/tracklog/internal/domain"
)

func TestLinearBackOff(t *testing.T) {
	backoff := linearBackOff(100 * time.Millisecond)

	cases := map[string]struct {
		tries int
		want  time.Duration
	}{
		"first retry":  {tries: 1, want: 100 * time.Millisecond},
		"third retry":  {tries: 3, want: 300 * time.Millisecond},
		"zero clamped": {tries: 0, want: 100 * time.Millisecond},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, tc.want, backoff(tc.tries))
		})
	}
}

func TestConfig_Enabled(t *testing.T) {
	require.False(t, Config{}.Enabled())
	require.False(t, Config{Brokers: []string{"localhost:9092"}}.Enabled())
	require.True(t, Config{Brokers: []string{"localhost:9092"}, Topic: "exceptions"}.Enabled())
}

func TestProducer_TrackExceptionDoesNotBlock(t *testing.T) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers("127.0.0.1:1"),
		kgo.DefaultProduceTopic("exceptions"),
		kgo.RecordRetries(5),
		kgo.RetryBackoffFn(linearBackOff(time.Second)),
		kgo.RecordDeliveryTimeout(time.Second),
	)
	require.NoError(t, err)
	p := &Producer{ctx: context.Background(), client: client, logger: zerolog.Nop()}

	start := time.Now()
	for i := 0; i < 3; i++ {
		p.TrackException(errors.New("boom"), domain.KindException, map[string]string{"target": "arcade"})
	}
	require.Less(t, time.Since(start), 500*time.Millisecond)

	client.Close()
}
