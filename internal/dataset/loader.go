package dataset

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vietdv277/sshdash/pkg/types"
)

// Loader reads a dataset once and serves the cached table afterwards.
// The cached result, error included, is never invalidated.
type Loader struct {
	source Source
	logger *zap.Logger

	once  sync.Once
	table *types.LogTable
	stats types.LoadStats
	err   error
}

// LoaderOption allows customizing the Loader
type LoaderOption func(*Loader)

// WithLogger sets the logger used to report loads
func WithLogger(logger *zap.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader creates a Loader for the given source
func NewLoader(source Source, opts ...LoaderOption) *Loader {
	l := &Loader{
		source: source,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Source returns the loader's source
func (l *Loader) Source() Source {
	return l.source
}

// Load returns the dataset, reading it on the first call only
func (l *Loader) Load(ctx context.Context) (*types.LogTable, error) {
	l.once.Do(func() {
		l.table, l.stats, l.err = read(ctx, l.source)
		if l.err != nil {
			l.logger.Error("dataset load failed",
				zap.String("source", l.source.Name()),
				zap.Error(l.err),
			)
			return
		}
		l.logger.Info("dataset loaded",
			zap.String("source", l.stats.Source),
			zap.Int("rows", l.stats.Rows),
			zap.Int("null_timestamps", l.stats.NullTimestamps),
			zap.Duration("duration", l.stats.Duration),
		)
	})
	return l.table, l.err
}

// Stats returns statistics of the completed load; zero before Load succeeds
func (l *Loader) Stats() types.LoadStats {
	return l.stats
}

func read(ctx context.Context, src Source) (*types.LogTable, types.LoadStats, error) {
	stats := types.LoadStats{Source: src.Name()}
	start := time.Now()

	rc, err := src.Open(ctx)
	if err != nil {
		if errors.Is(err, ErrFileNotFound) {
			return nil, stats, err
		}
		return nil, stats, &LoadError{Source: src.Name(), Err: err}
	}
	defer rc.Close()

	r, err := decompress(src.Name(), rc)
	if err != nil {
		return nil, stats, &LoadError{Source: src.Name(), Err: err}
	}
	defer r.Close()

	table, nulls, err := Parse(r)
	if err != nil {
		return nil, stats, &LoadError{Source: src.Name(), Err: err}
	}

	stats.Rows = table.Len()
	stats.NullTimestamps = nulls
	stats.Duration = time.Since(start)
	return table, stats, nil
}
