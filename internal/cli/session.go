package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/distlab/internal/compiler"
	"github.com/roach88/distlab/internal/engine"
	"github.com/roach88/distlab/internal/store"
)

// session is an open history store and an engine resumed on top of it.
type session struct {
	store     *store.Store
	engine    *engine.Engine
	logger    *slog.Logger
	formatter *OutputFormatter
}

// newLogger configures logging from the config level; --verbose forces debug.
func newLogger(opts *RootOptions, f *OutputFormatter) *slog.Logger {
	level := opts.Config.SlogLevel()
	if opts.Verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(f.GetErrWriter(), &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}

// historyPath returns the configured database, or the in-memory store.
func historyPath(opts *RootOptions) string {
	if opts.Config.DB == "" {
		return store.MemoryPath
	}
	return opts.Config.DB
}

// openSession opens the history and resumes an engine on it, so sequence
// numbers continue after earlier sessions.
func openSession(ctx context.Context, opts *RootOptions, f *OutputFormatter) (*session, error) {
	logger := newLogger(opts, f)

	path := historyPath(opts)
	logger.Debug("opening history", "path", path)
	st, err := store.Open(path)
	if err != nil {
		return nil, commandError(f, ErrCodeStore, fmt.Sprintf("failed to open history: %v", err))
	}

	engineOpts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithMetrics(engine.NewMetrics()),
		engine.WithCache(opts.Config.Cache),
	}
	if opts.Config.MaxDraws > 0 {
		engineOpts = append(engineOpts, engine.WithMaxDraws(opts.Config.MaxDraws))
	}
	eng, err := engine.Resume(ctx, st, engineOpts...)
	if err != nil {
		_ = st.Close()
		return nil, commandError(f, ErrCodeStore, err.Error())
	}

	return &session{store: st, engine: eng, logger: logger, formatter: f}, nil
}

// Close dumps the engine metrics in verbose mode and closes the store.
func (s *session) Close() {
	if s.formatter.Verbose {
		if err := s.engine.Metrics().WriteText(s.formatter.GetErrWriter()); err != nil {
			s.logger.Warn("writing metrics", "error", err)
		}
	}
	if err := s.store.Close(); err != nil {
		s.logger.Error("error closing history", "error", err)
	}
}

// loadSpecs compiles a spec directory, failing on the first error.
func loadSpecs(f *OutputFormatter, dir string) (*compiler.LoadResult, error) {
	result, errs := compiler.LoadSpecs(dir, compiler.LoadModeFailFast)
	if len(errs) > 0 {
		var loadErr *compiler.LoadError
		if errors.As(errs[0], &loadErr) {
			return nil, commandError(f, loadErr.Code, loadErr.Message)
		}
		return nil, commandError(f, compiler.ErrCodeGeneric, errs[0].Error())
	}
	f.VerboseLog("Loaded %d dist(s), %d gp(s) from %s", len(result.Dists), len(result.GPs), dir)
	return result, nil
}

// commandContext returns the command's context, or Background when the
// command runs outside Execute (tests call RunE directly).
func commandContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
