// Package scheduler plans and executes builder graphs.
package scheduler

import (
	"context"
	"errors"
	"os"
	"reflect"
	"slices"
	"sync"
	"time"

	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/bake/internal/core/fingerprint"
	"go.trai.ch/bake/internal/core/graph"
	"go.trai.ch/bake/internal/core/ports"
	"go.trai.ch/bake/internal/engine/builder"
	"go.trai.ch/bake/internal/engine/dependency"
	"go.trai.ch/zerr"
)

type node struct {
	uid     string
	builder builder.Builder
	prereqs []string
	planned bool
	status  domain.BuilderStatus
	outputs domain.OutputSet
	err     error
}

// BuildContext owns the builder graph of one session. Builders are added
// while accumulating, then executed prerequisites first. Every builder runs
// at most once per BuildContext; later runs reuse terminal results.
type BuildContext struct {
	settings domain.Settings
	store    *builder.Store
	cache    ports.FingerprintCache
	tracer   ports.Tracer
	metrics  ports.Metrics
	logger   ports.Logger
	noCache  bool

	mu    sync.RWMutex
	state State
	nodes map[string]*node
	order []string
}

var _ builder.Context = (*BuildContext)(nil)

// Option configures a BuildContext.
type Option func(*BuildContext)

// WithNoCache makes every runnable builder run regardless of its cache entry.
// Fresh entries are still persisted.
func WithNoCache(noCache bool) Option {
	return func(bc *BuildContext) {
		bc.noCache = noCache
	}
}

// New creates a BuildContext in the accumulating state.
func New(
	settings domain.Settings,
	store *builder.Store,
	cache ports.FingerprintCache,
	tracer ports.Tracer,
	metrics ports.Metrics,
	logger ports.Logger,
	opts ...Option,
) *BuildContext {
	bc := &BuildContext{
		settings: settings,
		store:    store,
		cache:    cache,
		tracer:   tracer,
		metrics:  metrics,
		logger:   logger,
		state:    StateAccumulating,
		nodes:    make(map[string]*node),
	}
	for _, opt := range opts {
		opt(bc)
	}
	return bc
}

// Settings returns the roots builders work against.
func (bc *BuildContext) Settings() domain.Settings {
	return bc.settings
}

// State returns the current lifecycle phase.
func (bc *BuildContext) State() State {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return bc.state
}

// AddBuilder registers b and an edge to each prerequisite. Re-adding a
// builder or an edge has no effect. It returns the canonical instance of b.
func (bc *BuildContext) AddBuilder(b builder.Builder, prerequisites []builder.Builder) (builder.Builder, error) {
	bc.mu.Lock()
	defer bc.mu.Unlock()

	if bc.state != StateAccumulating {
		return nil, zerr.With(domain.ErrGraphFrozen, "uid", b.UID())
	}

	n, err := bc.ensureLocked(b)
	if err != nil {
		return nil, err
	}
	for _, p := range prerequisites {
		pn, err := bc.ensureLocked(p)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(n.prereqs, pn.uid) {
			n.prereqs = append(n.prereqs, pn.uid)
		}
	}
	return n.builder, nil
}

func (bc *BuildContext) ensureLocked(b builder.Builder) (*node, error) {
	canonical, ok := bc.store.Lookup(b)
	if !ok || !sameInstance(canonical, b) {
		canonical = bc.store.Add(b)
	}

	uid := canonical.UID()
	if n, ok := bc.nodes[uid]; ok {
		if n.builder.Key() != canonical.Key() {
			err := zerr.With(domain.ErrUIDConflict, "uid", uid)
			return nil, zerr.With(err, "builder", canonical.Key().String())
		}
		return n, nil
	}

	n := &node{uid: uid, builder: canonical}
	bc.nodes[uid] = n
	bc.order = append(bc.order, uid)
	return n, nil
}

// sameInstance reports whether a and b are the same pointer. Builders of
// value types may hold slices or maps and are never compared with ==; every
// such value counts as a separate construction.
func sameInstance(a, b builder.Builder) bool {
	ta := reflect.TypeOf(a)
	if ta == nil || ta != reflect.TypeOf(b) || ta.Kind() != reflect.Pointer {
		return false
	}
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}

// GetEffectiveBuilder resolves b to the canonical instance with the same key.
func (bc *BuildContext) GetEffectiveBuilder(b builder.Builder) builder.Builder {
	if canonical, ok := bc.store.Lookup(b); ok {
		return canonical
	}
	return b
}

// GetResults returns the outputs of b once it completed or was restored from
// the cache.
func (bc *BuildContext) GetResults(b builder.Builder) (domain.OutputSet, error) {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	uid := b.UID()
	n, ok := bc.nodes[uid]
	if !ok {
		return nil, zerr.With(domain.ErrBuilderNotRegistered, "uid", uid)
	}
	if !n.status.Succeeded() {
		err := zerr.With(domain.ErrResultsNotAvailable, "uid", uid)
		return nil, zerr.With(err, "status", n.status.String())
	}
	return slices.Clone(n.outputs), nil
}

// Status returns the execution status of b. Unknown builders are pending.
func (bc *BuildContext) Status(b builder.Builder) domain.BuilderStatus {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	if n, ok := bc.nodes[b.UID()]; ok {
		return n.status
	}
	return domain.StatusPending
}

// Statuses returns the status of every registered builder keyed by uid.
func (bc *BuildContext) Statuses() map[string]domain.BuilderStatus {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	out := make(map[string]domain.BuilderStatus, len(bc.nodes))
	for uid, n := range bc.nodes {
		out[uid] = n.status
	}
	return out
}

// Prerequisites returns the canonical prerequisites registered for b, in
// declaration order.
func (bc *BuildContext) Prerequisites(b builder.Builder) []builder.Builder {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	n, ok := bc.nodes[b.UID()]
	if !ok {
		return nil
	}
	out := make([]builder.Builder, 0, len(n.prereqs))
	for _, uid := range n.prereqs {
		out = append(out, bc.nodes[uid].builder)
	}
	return out
}

// Plan registers root and everything it discovers, then validates that the
// resulting graph is acyclic. It returns the canonical root.
func (bc *BuildContext) Plan(root builder.Builder) (builder.Builder, error) {
	effective, _, err := bc.plan(root)
	return effective, err
}

func (bc *BuildContext) plan(root builder.Builder) (builder.Builder, []string, error) {
	bc.mu.Lock()
	if bc.state == StateRunning {
		bc.mu.Unlock()
		return nil, nil, zerr.With(domain.ErrGraphFrozen, "uid", root.UID())
	}
	bc.state = StateAccumulating
	rootNode, err := bc.ensureLocked(root)
	bc.mu.Unlock()
	if err != nil {
		return nil, nil, err
	}

	for pending := bc.takeUnplanned(); len(pending) > 0; pending = bc.takeUnplanned() {
		for _, n := range pending {
			if err := n.builder.AddToContext(bc); err != nil {
				return nil, nil, zerr.With(zerr.Wrap(err, domain.ErrPlanFailed.Error()), "uid", n.uid)
			}
		}
	}

	order, err := graph.TopologicalOrder(rootNode.uid, bc.prereqUIDs, func(uid string) string {
		return bc.describe(uid)
	})
	if err != nil {
		return nil, nil, err
	}
	return rootNode.builder, order, nil
}

func (bc *BuildContext) takeUnplanned() []*node {
	bc.mu.Lock()
	defer bc.mu.Unlock()

	var pending []*node
	for _, uid := range bc.order {
		if n := bc.nodes[uid]; !n.planned {
			n.planned = true
			pending = append(pending, n)
		}
	}
	return pending
}

func (bc *BuildContext) prereqUIDs(uid string) []string {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return slices.Clone(bc.nodes[uid].prereqs)
}

func (bc *BuildContext) describe(uid string) string {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return bc.nodes[uid].builder.Key().String()
}

// Run plans root and executes it after its prerequisites. Failed builders
// block their dependents while unrelated builders keep running. The returned
// error joins every failure reachable from root.
func (bc *BuildContext) Run(ctx context.Context, root builder.Builder) error {
	effective, order, err := bc.plan(root)
	if err != nil {
		bc.setState(StateFailed)
		return err
	}

	bc.setState(StateRunning)

	var errs error
	for _, uid := range order {
		if err := ctx.Err(); err != nil {
			errs = errors.Join(errs, err)
			break
		}
		bc.execute(ctx, bc.lookup(uid))
	}

	for _, uid := range order {
		if n := bc.lookup(uid); bc.statusOf(n) == domain.StatusFailed {
			errs = errors.Join(errs, bc.errOf(n))
		}
	}

	switch bc.Status(effective) {
	case domain.StatusUnavailable, domain.StatusUnresolved:
		errs = errors.Join(errs, zerr.With(domain.ErrCannotExecuteBuilder, "uid", effective.UID()))
	}

	if errs != nil {
		bc.setState(StateFailed)
		return errs
	}
	bc.setState(StateCompleted)
	return nil
}

func (bc *BuildContext) execute(ctx context.Context, n *node) {
	if bc.statusOf(n).IsTerminal() {
		return
	}

	b := n.builder
	switch bc.prerequisiteOutcome(n) {
	case domain.StatusBlocked:
		bc.logger.Debug(domain.ErrBuilderBlocked.Error(), "uid", n.uid)
		bc.finish(ctx, n, domain.StatusBlocked, nil, nil)
		return
	case domain.StatusUnresolved:
		bc.logger.Warn("skipping builder, prerequisite unavailable", "uid", n.uid, "builder", b.Key().String())
		bc.finish(ctx, n, domain.StatusUnresolved, nil, nil)
		return
	}

	if !b.CanRun() {
		bc.logger.Warn(domain.ErrBuilderUnavailable.Error(), "uid", n.uid, "builder", b.Key().String())
		bc.finish(ctx, n, domain.StatusUnavailable, nil, nil)
		return
	}

	ctx, span := bc.tracer.Start(ctx, b.Key().String())
	defer span.End()
	span.SetAttribute("bake.uid", n.uid)

	deps := b.Dependencies()
	if deps == nil {
		deps = dependency.NoDependencies{}
	}
	fp, err := deps.Fingerprint()
	if err != nil {
		err = zerr.With(zerr.Wrap(err, domain.ErrFingerprintFailed.Error()), "uid", n.uid)
		span.RecordError(err)
		bc.finish(ctx, n, domain.StatusFailed, nil, err)
		return
	}

	if outputs, ok := bc.lookupCache(n.uid, fp); ok {
		span.SetAttribute("bake.cached", true)
		bc.metrics.CacheHit(ctx, b.Key().Type)
		bc.finish(ctx, n, domain.StatusCached, outputs, nil)
		return
	}
	bc.metrics.CacheMiss(ctx, b.Key().Type)

	bc.setStatus(n, domain.StatusRunning)
	bc.logger.Debug("running builder", "uid", n.uid, "builder", b.Key().String())

	outputs, err := b.Run(builder.WithOutput(ctx, span), bc)
	if err != nil {
		err = zerr.With(zerr.Wrap(err, domain.ErrBuilderFailed.Error()), "uid", n.uid)
		span.RecordError(err)
		bc.finish(ctx, n, domain.StatusFailed, nil, err)
		return
	}

	outputs = domain.NewOutputSet(outputs...)
	bc.finish(ctx, n, domain.StatusCompleted, outputs, nil)

	err = bc.cache.Put(domain.CacheEntry{
		UID:         n.uid,
		Fingerprint: fp.Protocol(),
		Outputs:     outputs,
		RecordedAt:  time.Now(),
	})
	if err != nil {
		// A failed write only costs a rebuild next time.
		bc.logger.Warn("failed to persist fingerprint", "uid", n.uid, "error", err.Error())
	}
}

// lookupCache returns the recorded outputs when the cache entry for uid
// matches fp and every recorded output still exists under the target root.
func (bc *BuildContext) lookupCache(uid string, fp fingerprint.Fingerprint) (domain.OutputSet, bool) {
	if bc.noCache {
		return nil, false
	}

	entry, err := bc.cache.Get(uid)
	if err != nil {
		bc.logger.Warn("ignoring unreadable cache entry", "uid", uid, "error", err.Error())
		return nil, false
	}
	if entry == nil {
		return nil, false
	}

	cached, err := entry.Fingerprint.CreateFingerprint()
	if err != nil {
		bc.logger.Warn(domain.ErrCacheEntryCorrupt.Error(), "uid", uid, "error", err.Error())
		return nil, false
	}
	if !fingerprint.Equal(cached, fp) {
		return nil, false
	}

	for _, out := range entry.Outputs {
		if _, err := os.Stat(bc.settings.TargetPath(out)); err != nil {
			bc.logger.Debug("cached output missing", "uid", uid, "output", out)
			return nil, false
		}
	}
	return entry.Outputs, true
}

// prerequisiteOutcome reports StatusBlocked if a prerequisite failed,
// StatusUnresolved if one could not run, and StatusPending otherwise.
func (bc *BuildContext) prerequisiteOutcome(n *node) domain.BuilderStatus {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	outcome := domain.StatusPending
	for _, uid := range n.prereqs {
		switch bc.nodes[uid].status {
		case domain.StatusFailed, domain.StatusBlocked:
			return domain.StatusBlocked
		case domain.StatusUnavailable, domain.StatusUnresolved:
			outcome = domain.StatusUnresolved
		}
	}
	return outcome
}

func (bc *BuildContext) finish(ctx context.Context, n *node, status domain.BuilderStatus, outputs domain.OutputSet, err error) {
	bc.mu.Lock()
	n.status = status
	n.outputs = outputs
	n.err = err
	bc.mu.Unlock()

	bc.metrics.BuilderFinished(ctx, n.builder.Key().Type, status.String())
}

func (bc *BuildContext) lookup(uid string) *node {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return bc.nodes[uid]
}

func (bc *BuildContext) statusOf(n *node) domain.BuilderStatus {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return n.status
}

func (bc *BuildContext) errOf(n *node) error {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return n.err
}

func (bc *BuildContext) setStatus(n *node, status domain.BuilderStatus) {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	n.status = status
}

func (bc *BuildContext) setState(state State) {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	bc.state = state
}
