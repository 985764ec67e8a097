package stream

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/leshachaplin/tracklog/internal/domain"
)

type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	SetLocal(ctx context.Context, key, value string) error
	RemoveLocal(ctx context.Context, key string) error
}

// Store keeps each stream as one JSON array under a key equal to the
// stream name. Read-modify-write of a stream is serialized per stream.
type Store struct {
	kv     KV
	logger zerolog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(kv KV, logger zerolog.Logger) *Store {
	return &Store{
		kv:     kv,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}
}

func (s *Store) lock(stream string) func() {
	s.mu.Lock()
	l, ok := s.locks[stream]
	if !ok {
		l = &sync.Mutex{}
		s.locks[stream] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func (s *Store) Append(ctx context.Context, stream string, record domain.Record) error {
	unlock := s.lock(stream)
	defer unlock()

	records := s.read(ctx, stream)
	return s.write(ctx, stream, append(records, record))
}

// ReadAll never fails: an absent, unreadable or malformed stream is empty.
func (s *Store) ReadAll(ctx context.Context, stream string) []domain.Record {
	unlock := s.lock(stream)
	defer unlock()

	return s.read(ctx, stream)
}

func (s *Store) Clear(ctx context.Context, stream string) error {
	unlock := s.lock(stream)
	defer unlock()

	return s.clear(ctx, stream)
}

// ClearFirst keeps only the first n records. When n covers the whole stream
// it behaves like Clear.
func (s *Store) ClearFirst(ctx context.Context, stream string, n int) error {
	unlock := s.lock(stream)
	defer unlock()

	records := s.read(ctx, stream)
	if n >= len(records) || n <= 0 {
		return s.clear(ctx, stream)
	}
	return s.write(ctx, stream, records[:n])
}

// DropSent removes the first n records and keeps whatever was appended after
// them.
func (s *Store) DropSent(ctx context.Context, stream string, n int) error {
	unlock := s.lock(stream)
	defer unlock()

	records := s.read(ctx, stream)
	if n >= len(records) {
		return s.clear(ctx, stream)
	}
	if n <= 0 {
		return nil
	}
	return s.write(ctx, stream, records[n:])
}

func (s *Store) read(ctx context.Context, stream string) []domain.Record {
	raw, ok, err := s.kv.Get(ctx, stream)
	if err != nil {
		s.logger.Warn().Stack().Err(err).Str("stream", stream).Msg("read stream, treating as empty")
		return nil
	}
	if !ok || raw == "" {
		return nil
	}

	var records []domain.Record
	if err = json.Unmarshal([]byte(raw), &records); err != nil {
		s.logger.Warn().Err(err).Str("stream", stream).Msg("malformed stream, treating as empty")
		return nil
	}
	return records
}

func (s *Store) write(ctx context.Context, stream string, records []domain.Record) error {
	b, err := json.Marshal(records)
	if err != nil {
		return errors.Wrapf(err, "marshal stream %q", stream)
	}
	if err = s.kv.SetLocal(ctx, stream, string(b)); err != nil {
		return errors.WithMessagef(err, "write stream %q", stream)
	}
	return nil
}

func (s *Store) clear(ctx context.Context, stream string) error {
	if err := s.kv.RemoveLocal(ctx, stream); err != nil {
		return errors.WithMessagef(err, "clear stream %q", stream)
	}
	return nil
}
