package registry

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"toolbelt/internal/domain"
)

// App is a validated app identifier. The zero value is unusable; obtain
// instances through a Resolver.
type App struct {
	slug     domain.Slug
	locality domain.Locality
}

func (a App) Slug() domain.Slug         { return a.slug }
func (a App) String() string            { return a.slug.String() }
func (a App) Locality() domain.Locality { return a.locality }
func (a App) IsZero() bool              { return a.slug == "" }
func (a App) Equal(other App) bool      { return a.slug == other.slug }
func (a App) Is(value string) bool      { return a.slug == domain.NormalizeSlug(value) }

// Action is a validated action identifier carrying the locality decided at
// resolution time.
type Action struct {
	slug     domain.Slug
	locality domain.Locality
}

func (a Action) Slug() domain.Slug         { return a.slug }
func (a Action) String() string            { return a.slug.String() }
func (a Action) Locality() domain.Locality { return a.locality }
func (a Action) IsZero() bool              { return a.slug == "" }
func (a Action) Equal(other Action) bool   { return a.slug == other.slug }
func (a Action) Is(value string) bool      { return a.slug == domain.NormalizeSlug(value) }

// IsLocal reports whether the action executes in-process.
func (a Action) IsLocal() bool { return a.locality == domain.LocalityLocal }

// Trigger is a validated trigger identifier.
type Trigger struct {
	slug     domain.Slug
	locality domain.Locality
}

func (t Trigger) Slug() domain.Slug         { return t.slug }
func (t Trigger) String() string            { return t.slug.String() }
func (t Trigger) Locality() domain.Locality { return t.locality }
func (t Trigger) IsZero() bool              { return t.slug == "" }
func (t Trigger) Equal(other Trigger) bool  { return t.slug == other.slug }

// RemoteSource fetches entity metadata from the remote service, used only
// when neither the static catalog nor the local tables carry a record for a
// slug. Triggers have no remote metadata endpoint.
type RemoteSource interface {
	FetchApp(ctx context.Context, slug domain.Slug) (domain.AppRecord, error)
	FetchAction(ctx context.Context, slug domain.Slug) (domain.ActionRecord, error)
}

// ResolverOptions configures a Resolver.
type ResolverOptions struct {
	Logger   *zap.Logger
	Remote   RemoteSource
	CacheDir string
	Metrics  domain.Metrics
}

// Resolver validates symbolic entity names against the registry sources and
// lazily materializes their full records. Each slug resolves to a record at
// most once per process; the disk cache shares records across processes.
type Resolver struct {
	logger   *zap.Logger
	registry *Registry
	remote   RemoteSource
	cache    *recordCache
	disk     *DiskStore
	metrics  domain.Metrics
}

func NewResolver(reg *Registry, opts ResolverOptions) *Resolver {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("resolver")
	return &Resolver{
		logger:   logger,
		registry: reg,
		remote:   opts.Remote,
		cache:    newRecordCache(),
		disk:     NewDiskStore(opts.CacheDir, logger),
		metrics:  opts.Metrics,
	}
}

// App resolves a raw app name. Case-insensitive.
func (r *Resolver) App(value string) (App, error) {
	slug, locality, err := r.resolve(domain.KindApp, value)
	if err != nil {
		return App{}, err
	}
	return App{slug: slug, locality: locality}, nil
}

// Action resolves a raw action name. Case-insensitive.
func (r *Resolver) Action(value string) (Action, error) {
	slug, locality, err := r.resolve(domain.KindAction, value)
	if err != nil {
		return Action{}, err
	}
	return Action{slug: slug, locality: locality}, nil
}

// Trigger resolves a raw trigger name. Case-insensitive.
func (r *Resolver) Trigger(value string) (Trigger, error) {
	slug, locality, err := r.resolve(domain.KindTrigger, value)
	if err != nil {
		return Trigger{}, err
	}
	return Trigger{slug: slug, locality: locality}, nil
}

// AppOf adopts a pre-validated slug directly, skipping source checks. Fast
// path for values that already passed through resolution.
func (r *Resolver) AppOf(slug domain.Slug) App {
	return App{slug: slug, locality: r.locality(domain.KindApp, slug)}
}

// ActionOf adopts a pre-validated slug directly, skipping source checks.
func (r *Resolver) ActionOf(slug domain.Slug) Action {
	return Action{slug: slug, locality: r.locality(domain.KindAction, slug)}
}

// AllApps yields one resolver per statically declared app, in declaration
// order.
func (r *Resolver) AllApps() []App {
	out := make([]App, 0, len(staticApps))
	for _, slug := range staticApps {
		out = append(out, r.AppOf(slug))
	}
	return out
}

// AllActions yields one resolver per statically declared action, in
// declaration order.
func (r *Resolver) AllActions() []Action {
	out := make([]Action, 0, len(staticActions))
	for _, slug := range staticActions {
		out = append(out, r.ActionOf(slug))
	}
	return out
}

// AllTriggers yields one resolver per statically declared trigger, in
// declaration order.
func (r *Resolver) AllTriggers() []Trigger {
	out := make([]Trigger, 0, len(staticTriggers))
	for _, slug := range staticTriggers {
		out = append(out, Trigger{slug: slug, locality: r.locality(domain.KindTrigger, slug)})
	}
	return out
}

// Registry exposes the backing registry for runtime registration.
func (r *Resolver) Registry() *Registry {
	return r.registry
}

func (r *Resolver) resolve(kind domain.EntityKind, value string) (domain.Slug, domain.Locality, error) {
	slug := domain.NormalizeSlug(value)
	if slug == "" {
		return "", "", domain.E(domain.CodeInvalidArgument, "resolver.resolve",
			fmt.Sprintf("empty value for %s", kind), domain.ErrInvalidSlug)
	}

	if replacement, ok := deprecatedSlugs[slug]; ok {
		r.logger.Warn("deprecated identifier",
			zap.String("slug", slug.String()),
			zap.String("replacement", replacement.String()),
		)
		r.observeResolve(kind, domain.ResolveSourceDeprecated)
		// The replacement is assumed valid without re-validation.
		return replacement, r.locality(kind, replacement), nil
	}

	if isStaticMember(kind, slug) {
		r.observeResolve(kind, domain.ResolveSourceStatic)
		return slug, r.locality(kind, slug), nil
	}

	if _, ok := r.registry.RuntimeAction(slug); ok {
		r.observeResolve(kind, domain.ResolveSourceRuntime)
		return slug, domain.LocalityLocal, nil
	}

	// Consult the three local registry namespaces in turn.
	for _, k := range []domain.EntityKind{domain.KindApp, domain.KindAction, domain.KindTrigger} {
		if r.registry.hasLocal(k, slug) {
			r.observeResolve(kind, domain.ResolveSourceLocal)
			return slug, domain.LocalityLocal, nil
		}
	}

	return "", "", domain.E(domain.CodeInvalidArgument, "resolver.resolve",
		fmt.Sprintf("invalid value %q for %s", slug, kind), domain.ErrInvalidSlug)
}

func (r *Resolver) locality(kind domain.EntityKind, slug domain.Slug) domain.Locality {
	if kind == domain.KindAction {
		if _, ok := r.registry.RuntimeAction(slug); ok {
			return domain.LocalityLocal
		}
	}
	if r.registry.hasLocal(kind, slug) {
		return domain.LocalityLocal
	}
	return domain.LocalityRemote
}

// LoadApp materializes the descriptive record for an app. The record is
// cached in process and on disk after the first load.
func (r *Resolver) LoadApp(ctx context.Context, app App) (domain.AppRecord, error) {
	const op = "resolver.LoadApp"
	if app.IsZero() {
		return domain.AppRecord{}, domain.E(domain.CodeInvalidArgument, op, "", domain.ErrUninitialized)
	}
	if record, ok := r.cache.getApp(app.slug); ok {
		r.observeCacheHit(domain.KindApp, "memory")
		return record, nil
	}
	if record, ok := r.disk.LoadApp(app.slug); ok {
		r.observeCacheHit(domain.KindApp, "disk")
		r.cache.putApp(record)
		return record, nil
	}

	record, ok := r.registry.LookupApp(app.slug)
	if !ok {
		fetched, err := r.fetchApp(ctx, app.slug)
		if err != nil {
			return domain.AppRecord{}, err
		}
		record = fetched
	}
	record.Slug = app.slug
	r.cache.putApp(record)
	r.disk.StoreApp(record)
	return record, nil
}

// LoadAction materializes the descriptive record for an action.
func (r *Resolver) LoadAction(ctx context.Context, action Action) (domain.ActionRecord, error) {
	const op = "resolver.LoadAction"
	if action.IsZero() {
		return domain.ActionRecord{}, domain.E(domain.CodeInvalidArgument, op, "", domain.ErrUninitialized)
	}
	if record, ok := r.cache.getAction(action.slug); ok {
		r.observeCacheHit(domain.KindAction, "memory")
		return record, nil
	}
	if record, ok := r.registry.RuntimeAction(action.slug); ok {
		return record, nil
	}
	if record, ok := r.disk.LoadAction(action.slug); ok {
		r.observeCacheHit(domain.KindAction, "disk")
		r.cache.putAction(record)
		return record, nil
	}

	record, ok := r.registry.LookupAction(action.slug)
	if !ok {
		fetched, err := r.fetchAction(ctx, action.slug)
		if err != nil {
			return domain.ActionRecord{}, err
		}
		record = fetched
	}
	record.Slug = action.slug
	r.cache.putAction(record)
	r.disk.StoreAction(record)
	return domain.CloneActionRecord(record), nil
}

// LoadTrigger materializes the descriptive record for a trigger. Triggers
// have no remote fallback; only local registrations and the disk cache are
// consulted.
func (r *Resolver) LoadTrigger(_ context.Context, trigger Trigger) (domain.TriggerRecord, error) {
	const op = "resolver.LoadTrigger"
	if trigger.IsZero() {
		return domain.TriggerRecord{}, domain.E(domain.CodeInvalidArgument, op, "", domain.ErrUninitialized)
	}
	if record, ok := r.cache.getTrigger(trigger.slug); ok {
		r.observeCacheHit(domain.KindTrigger, "memory")
		return record, nil
	}
	if record, ok := r.disk.LoadTrigger(trigger.slug); ok {
		r.observeCacheHit(domain.KindTrigger, "disk")
		r.cache.putTrigger(record)
		return record, nil
	}
	record, ok := r.registry.LookupTrigger(trigger.slug)
	if !ok {
		return domain.TriggerRecord{}, domain.E(domain.CodeNotFound, op,
			fmt.Sprintf("no metadata for trigger %q", trigger.slug), nil)
	}
	record.Slug = trigger.slug
	r.cache.putTrigger(record)
	r.disk.StoreTrigger(record)
	return record, nil
}

func (r *Resolver) fetchApp(ctx context.Context, slug domain.Slug) (domain.AppRecord, error) {
	const op = "resolver.fetchApp"
	if r.remote == nil {
		return domain.AppRecord{}, domain.E(domain.CodeUnavailable, op,
			fmt.Sprintf("no local metadata for app %q and no remote source configured", slug), nil)
	}
	record, err := r.remote.FetchApp(ctx, slug)
	if err != nil {
		return domain.AppRecord{}, domain.Wrap(domain.CodeUnavailable, op, err)
	}
	record.IsLocal = false
	return record, nil
}

func (r *Resolver) fetchAction(ctx context.Context, slug domain.Slug) (domain.ActionRecord, error) {
	const op = "resolver.fetchAction"
	if r.remote == nil {
		return domain.ActionRecord{}, domain.E(domain.CodeUnavailable, op,
			fmt.Sprintf("no local metadata for action %q and no remote source configured", slug), nil)
	}
	record, err := r.remote.FetchAction(ctx, slug)
	if err != nil {
		return domain.ActionRecord{}, domain.Wrap(domain.CodeUnavailable, op, err)
	}
	record.NoAuth = false
	record.IsLocal = false
	record.IsRuntime = false
	record.Shell = false
	return record, nil
}

func (r *Resolver) observeResolve(kind domain.EntityKind, source domain.ResolveSource) {
	if r.metrics == nil {
		return
	}
	r.metrics.ObserveResolve(kind, source)
}

func (r *Resolver) observeCacheHit(kind domain.EntityKind, tier string) {
	if r.metrics == nil {
		return
	}
	r.metrics.ObserveCacheHit(kind, tier)
}
