package etl

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Extractor pulls a dataset from some source: an HTTP API, a downloaded
// file, or another database. Concrete client adapters implement this
// capability explicitly; there is no blanket implementation.
type Extractor[T any] interface {
	Extract(ctx context.Context) (T, error)
}

// Loader persists a dataset to some data store.
type Loader[T any] interface {
	Load(ctx context.Context, data T) error
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc[T any] func(ctx context.Context) (T, error)

func (f ExtractorFunc[T]) Extract(ctx context.Context) (T, error) { return f(ctx) }

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc[T any] func(ctx context.Context, data T) error

func (f LoaderFunc[T]) Load(ctx context.Context, data T) error { return f(ctx, data) }

// Run executes one extract-load pass: extract the dataset, then hand it to
// the loader. Surrogate-key assignment and any other shaping belongs to
// the stages themselves; Run owns only sequencing, timing, and logging.
func Run[T any](ctx context.Context, name string, ex Extractor[T], ld Loader[T]) error {
	log := logrus.WithFields(logrus.Fields{
		"pipeline": name,
		"run":      uuid.NewString(),
	})

	started := time.Now()
	log.Debug("extract started")

	data, err := ex.Extract(ctx)
	if err != nil {
		return fmt.Errorf("pipeline %s: extract: %w", name, err)
	}

	log.Debug("load started")
	if err := ld.Load(ctx, data); err != nil {
		return fmt.Errorf("pipeline %s: load: %w", name, err)
	}

	log.WithField("elapsed", time.Since(started).Round(time.Millisecond)).Info("pipeline complete")
	return nil
}
