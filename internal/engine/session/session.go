// Package session ties together the builder store, the fingerprint cache and
// the scheduler for one invocation.
package session

import (
	"context"
	"errors"
	"io"

	"github.com/google/uuid"
	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/bake/internal/core/ports"
	"go.trai.ch/bake/internal/engine/builder"
	"go.trai.ch/bake/internal/engine/scheduler"
	"go.trai.ch/zerr"
)

// Session is one build invocation. It is created once, passed explicitly to
// whatever needs it and closed when the invocation ends.
type Session struct {
	ID       uuid.UUID
	Settings domain.Settings
	Store    *builder.Store
	Context  *scheduler.BuildContext

	cache  ports.FingerprintCache
	logger ports.Logger
}

// New validates settings, opens the fingerprint cache and prepares an empty
// build context.
func New(
	settings domain.Settings,
	opener ports.CacheOpener,
	tracer ports.Tracer,
	metrics ports.Metrics,
	logger ports.Logger,
	opts ...scheduler.Option,
) (*Session, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	cache, err := opener.Open(settings)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrCacheOpenFailed.Error()), "dir", settings.Cache.Dir)
	}

	store := builder.NewStore()
	s := &Session{
		ID:       uuid.New(),
		Settings: settings,
		Store:    store,
		Context:  scheduler.New(settings, store, cache, tracer, metrics, logger, opts...),
		cache:    cache,
		logger:   logger,
	}
	logger.Debug("session started", "id", s.ID.String(), "suite", settings.SuiteRoot)
	return s, nil
}

// Run executes every root in order. Results from earlier roots are reused by
// later ones. All failures are joined.
func (s *Session) Run(ctx context.Context, roots ...builder.Builder) error {
	if len(roots) == 0 {
		return domain.ErrNoTargetsSpecified
	}

	var errs error
	for _, root := range roots {
		if err := ctx.Err(); err != nil {
			return errors.Join(errs, err)
		}
		if err := s.Context.Run(ctx, root); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	return errs
}

// Results returns the outputs of a builder that ran in this session.
func (s *Session) Results(b builder.Builder) (domain.OutputSet, error) {
	return s.Context.GetResults(b)
}

// DumpStats writes builder store statistics to w.
func (s *Session) DumpStats(w io.Writer) error {
	return s.Store.DumpStats(w)
}

// Close releases the fingerprint cache.
func (s *Session) Close() error {
	if err := s.cache.Close(); err != nil {
		return zerr.Wrap(err, "failed to close fingerprint cache")
	}
	s.logger.Debug("session closed", "id", s.ID.String())
	return nil
}
