package waiter

import (
	"context"
	"os/signal"
	"sync"

	"golang.org/x/sync/errgroup"
)

// WaitFunc runs until ctx is done or it fails.
type WaitFunc func(ctx context.Context) error

type Waiter interface {
	Add(fns ...WaitFunc)
	Wait() error
	Context() context.Context
	CancelFunc() context.CancelFunc
}

type waiter struct {
	ctx      context.Context
	cancelFn context.CancelFunc

	mu  sync.Mutex
	fns []WaitFunc
}

// NewWaiter returns a Waiter whose context ends on cancelFn, on one of the
// configured signals or when any added function returns.
func NewWaiter(ctx context.Context, cancelFn context.CancelFunc, opts ...Option) Waiter {
	cfg := defaultCfg()
	for _, opt := range opts {
		opt(&cfg)
	}

	w := &waiter{
		ctx:      ctx,
		cancelFn: cancelFn,
	}
	if len(cfg.signals) > 0 {
		var stop context.CancelFunc
		w.ctx, stop = signal.NotifyContext(ctx, cfg.signals...)
		w.cancelFn = func() {
			stop()
			cancelFn()
		}
	}
	return w
}

func (w *waiter) Add(fns ...WaitFunc) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.fns = append(w.fns, fns...)
}

// Wait blocks until every added function has returned and reports the first
// error.
func (w *waiter) Wait() error {
	w.mu.Lock()
	fns := make([]WaitFunc, len(w.fns))
	copy(fns, w.fns)
	w.mu.Unlock()

	group, gCtx := errgroup.WithContext(w.ctx)
	group.Go(func() error {
		<-gCtx.Done()
		w.cancelFn()
		return nil
	})
	for _, fn := range fns {
		fn := fn
		group.Go(func() error {
			return fn(gCtx)
		})
	}
	return group.Wait()
}

func (w *waiter) Context() context.Context {
	return w.ctx
}

func (w *waiter) CancelFunc() context.CancelFunc {
	return w.cancelFn
}
