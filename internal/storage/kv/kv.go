package kv

import (
	"context"
	"fmt"

	"github.com/leshachaplin/tracklog/internal/storage/kv/memory"
	"github.com/leshachaplin/tracklog/internal/storage/kv/sqlite"
)

const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

type Config struct {
	Driver string        `mapstructure:"driver"`
	SQLite sqlite.Config `mapstructure:"sqlite"`
}

// Substrate is the durable key-value slot the stream store writes through.
type Substrate interface {
	Get(ctx context.Context, key string) (string, bool, error)
	SetLocal(ctx context.Context, key, value string) error
	RemoveLocal(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
	Close() error
}

func Open(ctx context.Context, cfg Config) (Substrate, error) {
	switch cfg.Driver {
	case DriverMemory, "":
		return memory.New(), nil
	case DriverSQLite:
		db, err := sqlite.New(ctx, cfg.SQLite)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
