// Package backend opens the storage.Store selected by configuration.
package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"spendingtracker/internal/config"
	"spendingtracker/internal/storage"
	"spendingtracker/internal/storage/memory"
)

// Kind names a storage backend.
type Kind string

const (
	SQLite Kind = "sqlite"
	Memory Kind = "memory"
)

var errUnknownKind = errors.New("unknown backend")

type opener func(ctx context.Context, o Options) (storage.Store, error)

var openers = map[Kind]opener{
	SQLite: openSQLite,
	Memory: openMemory,
}

// Kinds returns the selectable backends, sorted.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(openers))
	for k := range openers {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

// Durable reports whether data written through the backend outlives the process.
func (k Kind) Durable() bool {
	return k == SQLite
}

// Options selects a backend and carries its settings.
type Options struct {
	Kind       Kind
	SQLitePath string
}

// OptionsFrom reads the backend settings out of the application config.
func OptionsFrom(cfg *config.Config) (Options, error) {
	if cfg == nil {
		return Options{}, errors.New("backend options: nil config")
	}
	o := Options{Kind: Kind(cfg.DataBackend), SQLitePath: cfg.SQLiteDBPath}
	return o, o.Validate()
}

func (o Options) Validate() error {
	if _, ok := openers[o.Kind]; !ok {
		return fmt.Errorf("%w %q: must be one of %v", errUnknownKind, o.Kind, Kinds())
	}
	if o.Kind == SQLite && o.SQLitePath == "" {
		return errors.New("sqlite backend needs a database path")
	}
	return nil
}

// Open validates o and opens the store it names. The caller owns the
// returned store and must Close it.
func Open(ctx context.Context, logger *slog.Logger, o Options) (storage.Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}

	store, err := openers[o.Kind](ctx, o)
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", o.Kind, err)
	}

	if o.Kind.Durable() {
		logger.InfoContext(ctx, "Store ready", "backend", o.Kind, "db_path", o.SQLitePath)
	} else {
		logger.WarnContext(ctx, "Store ready, data will not survive a restart", "backend", o.Kind)
	}
	return store, nil
}

func openSQLite(ctx context.Context, o Options) (storage.Store, error) {
	return storage.Open(ctx, o.SQLitePath)
}

func openMemory(context.Context, Options) (storage.Store, error) {
	return memory.New(), nil
}
