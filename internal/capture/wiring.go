package capture

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/leshachaplin/tracklog/internal/domain"
)

const pointerMoveInterval = 10 * time.Millisecond

type Tracker interface {
	TrackEvent(ctx context.Context, stream string, event domain.Event) error
}

type Option func(*Wiring)

// WithClock replaces the wall clock used for pointer move throttling.
func WithClock(now func() time.Time) Option {
	return func(w *Wiring) {
		w.now = now
	}
}

// Wiring turns window and workspace notifications into events and hands
// them to the tracker.
type Wiring struct {
	ctx     context.Context
	tracker Tracker
	logger  zerolog.Logger
	now     func() time.Time
	moves   *throttle
	enable  sync.Once
}

func New(ctx context.Context, tracker Tracker, logger zerolog.Logger, opts ...Option) *Wiring {
	w := &Wiring{
		ctx:     ctx,
		tracker: tracker,
		logger:  logger,
		now:     time.Now,
		moves:   &throttle{interval: pointerMoveInterval},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Enable subscribes to both surfaces. Only the first call has an effect.
func (w *Wiring) Enable(window Window, ws Workspace) {
	w.enable.Do(func() {
		window.OnPointerMove(w.pointerMove)
		window.OnClick(w.click)
		window.OnResize(w.resize)
		window.OnMessage(w.message)
		ws.OnMutation(func(m domain.Mutation) {
			w.mutation(ws, m)
		})
		w.logger.Info().Msg("capture enabled")
	})
}

func (w *Wiring) pointerMove(n domain.PointerNotification) {
	if !w.moves.allow(w.now()) {
		return
	}
	w.track(domain.WindowStream, domain.NewPointerEvent(domain.KindPointer, n))
}

func (w *Wiring) click(n domain.PointerNotification) {
	w.track(domain.WindowStream, domain.NewPointerEvent(domain.KindClick, n))
}

func (w *Wiring) resize(n domain.ResizeNotification) {
	w.track(domain.WindowStream, domain.NewEvent(domain.KindResize, map[string]any{
		"width":  n.Width,
		"height": n.Height,
	}))
}

func (w *Wiring) message(m domain.HostMessage) {
	if m.Type != domain.KindAnalytics {
		return
	}
	w.track(domain.SimulatorStream, domain.NewEvent(m.Type, m.Data))
}

func (w *Wiring) mutation(ws Workspace, m domain.Mutation) {
	ev, ok := domain.FromMutation(m, ws)
	if !ok {
		w.logger.Debug().Str("type", m.Type).Msg("unhandled workspace mutation dropped")
		return
	}

	switch m.Type {
	case domain.MutationMove, domain.MutationDelete, domain.MutationCreate:
		w.track(domain.ProgramStream, domain.NewEvent(domain.KindProgram, ws.Snapshot()))
	}
	w.track(domain.BlocklyStream, ev)
}

func (w *Wiring) track(stream string, ev domain.Event) {
	if err := w.tracker.TrackEvent(w.ctx, stream, ev); err != nil {
		w.logger.Error().Stack().Err(err).Str("stream", stream).Str("kind", ev.Kind()).Msg("could not track event")
	}
}
