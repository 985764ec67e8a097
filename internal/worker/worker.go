package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/leshachaplin/tracklog/internal/domain"
)

const (
	defaultNumWorkers = 2
	defaultQueueSize  = 16
)

var (
	ErrQueueFull = errors.New("delivery queue is full")
	ErrStopped   = errors.New("delivery pool stopped")
)

type ExecuteFn func(ctx context.Context, batch domain.Batch) error

// Job is one batch to deliver. Done is called exactly once with the
// delivery result, unless the pool is stopped before the job is picked up.
type Job struct {
	Batch domain.Batch
	Done  func(err error)
}

type WorkerPool interface {
	Start(executeFn ExecuteFn)
	GracefulStop()
	Process(job Job)
}

type Pool struct {
	numWorkers  int
	taskPayload chan Job
	start       sync.Once
	stop        sync.Once
	doneChan    chan struct{}
	ctx         context.Context
	cancelFn    context.CancelFunc
	wg          *sync.WaitGroup
	logger      zerolog.Logger
}

func New(ctx context.Context, cfg Config, logger zerolog.Logger) *Pool {
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = defaultNumWorkers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}

	c, cancelFn := context.WithCancel(ctx)
	return &Pool{
		numWorkers:  cfg.NumWorkers,
		taskPayload: make(chan Job, cfg.QueueSize),
		doneChan:    make(chan struct{}),
		ctx:         c,
		cancelFn:    cancelFn,
		wg:          &sync.WaitGroup{},
		logger:      logger,
	}
}

func (w *Pool) Start(executeFn ExecuteFn) {
	w.start.Do(func() {
		for i := 0; i < w.numWorkers; i++ {
			w.wg.Add(1)
			l := w.logger.With().Int("worker", i).Logger()
			go w.work(w.ctx, l, executeFn)
		}
	})
}

// GracefulStop cancels in-flight deliveries and waits for the workers.
// Jobs still queued are abandoned without calling Done.
func (w *Pool) GracefulStop() {
	w.stop.Do(func() {
		close(w.doneChan)
		w.cancelFn()
		w.wg.Wait()
	})
}

// Process never blocks. A job that cannot be queued fails right away.
func (w *Pool) Process(job Job) {
	select {
	case <-w.doneChan:
		w.onFailure(job, ErrStopped)
		return
	default:
	}

	select {
	case w.taskPayload <- job:
	default:
		w.onFailure(job, ErrQueueFull)
	}
}

func (w *Pool) onFailure(job Job, err error) {
	w.logger.Warn().Err(err).
		Str("BATCH_ID", job.Batch.ID).
		Str("namespace", job.Batch.Namespace).
		Msg("failed to deliver batch")
	if job.Done != nil {
		job.Done(err)
	}
}

func (w *Pool) work(
	ctx context.Context,
	logger zerolog.Logger,
	executeFn ExecuteFn,
) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.doneChan:
			return
		case job, ok := <-w.taskPayload:
			if !ok {
				return
			}

			if ctx.Err() != nil {
				w.onFailure(job, ErrStopped)
				return
			}

			logger.Debug().Str("BATCH_ID", job.Batch.ID).Int("records", len(job.Batch.Data)).Msg("start delivering batch")
			err := executeFn(ctx, job.Batch)
			if err != nil {
				w.onFailure(job, err)
			} else if job.Done != nil {
				job.Done(nil)
			}
			logger.Debug().Str("BATCH_ID", job.Batch.ID).Msg("end delivering batch")
		}
	}
}
