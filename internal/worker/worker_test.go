package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/leshachaplin/tracklog/internal/domain"
)

func TestPool_Deliver(t *testing.T) {
	cases := map[string]struct {
		cfg        Config
		taskAmount int
	}{
		"ok": {
			cfg:        Config{NumWorkers: 4, QueueSize: 100},
			taskAmount: 100,
		},
		"ok - tasks more than workers": {
			cfg:        Config{NumWorkers: 1, QueueSize: 50},
			taskAmount: 50,
		},
		"ok - tasks less than workers": {
			cfg:        Config{NumWorkers: 20, QueueSize: 10},
			taskAmount: 10,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			defer goleak.VerifyNone(t)

			pool := New(context.Background(), tc.cfg, zerolog.Nop())

			mu := &sync.Mutex{}
			delivered := make(map[string]int)
			pool.Start(func(ctx context.Context, batch domain.Batch) error {
				mu.Lock()
				delivered[batch.Namespace]++
				mu.Unlock()
				return nil
			})

			wg := &sync.WaitGroup{}
			wg.Add(tc.taskAmount)
			for k := 0; k < tc.taskAmount; k++ {
				pool.Process(Job{
					Batch: domain.Batch{ID: uuid.NewString(), Namespace: "window"},
					Done: func(err error) {
						require.NoError(t, err)
						wg.Done()
					},
				})
			}
			wg.Wait()
			pool.GracefulStop()

			require.Equal(t, tc.taskAmount, delivered["window"])
		})
	}
}

func TestPool_FailureReachesDone(t *testing.T) {
	defer goleak.VerifyNone(t)

	pool := New(context.Background(), Config{NumWorkers: 1}, zerolog.Nop())
	sendErr := errors.New("connection refused")
	pool.Start(func(ctx context.Context, batch domain.Batch) error {
		return sendErr
	})
	defer pool.GracefulStop()

	result := make(chan error, 1)
	pool.Process(Job{Batch: domain.Batch{ID: "b1"}, Done: func(err error) { result <- err }})

	select {
	case err := <-result:
		require.ErrorIs(t, err, sendErr)
	case <-time.After(5 * time.Second):
		t.Fatal("job was never completed")
	}
}

func TestPool_QueueFull(t *testing.T) {
	defer goleak.VerifyNone(t)

	pool := New(context.Background(), Config{NumWorkers: 1, QueueSize: 1}, zerolog.Nop())
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	pool.Start(func(ctx context.Context, batch domain.Batch) error {
		started <- struct{}{}
		select {
		case <-release:
		case <-ctx.Done():
		}
		return nil
	})

	pool.Process(Job{Batch: domain.Batch{ID: "busy"}})
	<-started
	pool.Process(Job{Batch: domain.Batch{ID: "queued"}})

	var got error
	pool.Process(Job{Batch: domain.Batch{ID: "rejected"}, Done: func(err error) { got = err }})
	require.ErrorIs(t, got, ErrQueueFull)

	close(release)
	pool.GracefulStop()
}

func TestPool_ProcessAfterStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	pool := New(context.Background(), Config{}, zerolog.Nop())
	pool.Start(func(ctx context.Context, batch domain.Batch) error { return nil })
	pool.GracefulStop()
	pool.GracefulStop()

	var got error
	pool.Process(Job{Batch: domain.Batch{ID: "late"}, Done: func(err error) { got = err }})
	require.ErrorIs(t, got, ErrStopped)
}

func TestPool_QueuedJobsNotExecutedAfterStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	pool := New(context.Background(), Config{NumWorkers: 1, QueueSize: 4}, zerolog.Nop())
	started := make(chan struct{}, 1)
	calls := 0
	pool.Start(func(ctx context.Context, batch domain.Batch) error {
		calls++
		started <- struct{}{}
		<-ctx.Done()
		return ctx.Err()
	})

	pool.Process(Job{Batch: domain.Batch{ID: "busy"}})
	<-started

	results := make(chan error, 1)
	pool.Process(Job{Batch: domain.Batch{ID: "queued"}, Done: func(err error) { results <- err }})
	pool.GracefulStop()

	require.Equal(t, 1, calls)
	select {
	case err := <-results:
		require.ErrorIs(t, err, ErrStopped)
	default:
	}
}
