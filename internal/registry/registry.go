package registry

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"toolbelt/internal/domain"
)

// Registry holds the local sources of truth for slug resolution: records of
// locally registered tools and their actions and triggers, plus the table of
// actions registered at runtime. It is populated during startup (and via
// explicit runtime registration) and read-mostly afterward.
//
// The registry is an explicit object so tests can run against isolated
// instances; nothing here is process-global.
type Registry struct {
	logger *zap.Logger

	mu             sync.RWMutex
	apps           map[domain.Slug]domain.AppRecord
	actions        map[domain.Slug]domain.ActionRecord
	triggers       map[domain.Slug]domain.TriggerRecord
	runtimeActions map[domain.Slug]domain.ActionRecord
}

func New(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		logger:         logger.Named("registry"),
		apps:           make(map[domain.Slug]domain.AppRecord),
		actions:        make(map[domain.Slug]domain.ActionRecord),
		triggers:       make(map[domain.Slug]domain.TriggerRecord),
		runtimeActions: make(map[domain.Slug]domain.ActionRecord),
	}
}

// RegisterLocalTool records an app and its actions in the local tables.
// Called at tool registration time; slugs must be unique within their kind.
func (r *Registry) RegisterLocalTool(app domain.AppRecord, actions []domain.ActionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if app.Slug == "" {
		return domain.E(domain.CodeInvalidArgument, "registry.RegisterLocalTool", "app slug is required", nil)
	}
	if existing, ok := r.apps[app.Slug]; ok && existing.Name != app.Name {
		return domain.E(domain.CodeInvalidArgument, "registry.RegisterLocalTool",
			fmt.Sprintf("app %q is already registered", app.Slug), nil)
	}
	r.apps[app.Slug] = app
	for _, action := range actions {
		if action.Slug == "" {
			return domain.E(domain.CodeInvalidArgument, "registry.RegisterLocalTool",
				fmt.Sprintf("action of app %q has no slug", app.Slug), nil)
		}
		if _, ok := r.actions[action.Slug]; ok {
			return domain.E(domain.CodeInvalidArgument, "registry.RegisterLocalTool",
				fmt.Sprintf("action %q is already registered", action.Slug), nil)
		}
		r.actions[action.Slug] = domain.CloneActionRecord(action)
	}
	r.logger.Debug("local tool registered",
		zap.String("app", app.Slug.String()),
		zap.Int("actions", len(actions)),
	)
	return nil
}

// RegisterTrigger records a trigger in the local tables.
func (r *Registry) RegisterTrigger(trigger domain.TriggerRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if trigger.Slug == "" {
		return domain.E(domain.CodeInvalidArgument, "registry.RegisterTrigger", "trigger slug is required", nil)
	}
	r.triggers[trigger.Slug] = trigger
	return nil
}

// RegisterRuntimeAction adds an action to the runtime table. Runtime
// registrations live for the process lifetime and are never persisted.
func (r *Registry) RegisterRuntimeAction(record domain.ActionRecord) error {
	if record.Slug == "" {
		return domain.E(domain.CodeInvalidArgument, "registry.RegisterRuntimeAction", "action slug is required", nil)
	}
	record.IsRuntime = true
	record.IsLocal = true
	record.NoAuth = true

	r.mu.Lock()
	defer r.mu.Unlock()
	r.runtimeActions[record.Slug] = domain.CloneActionRecord(record)
	return nil
}

// RuntimeAction returns the runtime-registered record for a slug.
func (r *Registry) RuntimeAction(slug domain.Slug) (domain.ActionRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.runtimeActions[slug]
	if !ok {
		return domain.ActionRecord{}, false
	}
	return domain.CloneActionRecord(record), true
}

// RuntimeActions returns the runtime-registered slugs, sorted.
func (r *Registry) RuntimeActions() []domain.Slug {
	r.mu.RLock()
	defer r.mu.RUnlock()
	slugs := make([]domain.Slug, 0, len(r.runtimeActions))
	for slug := range r.runtimeActions {
		slugs = append(slugs, slug)
	}
	sort.Slice(slugs, func(i, j int) bool { return slugs[i] < slugs[j] })
	return slugs
}

// LookupApp consults the local app table.
func (r *Registry) LookupApp(slug domain.Slug) (domain.AppRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.apps[slug]
	return record, ok
}

// LookupAction consults the local action table.
func (r *Registry) LookupAction(slug domain.Slug) (domain.ActionRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.actions[slug]
	if !ok {
		return domain.ActionRecord{}, false
	}
	return domain.CloneActionRecord(record), true
}

// LookupTrigger consults the local trigger table.
func (r *Registry) LookupTrigger(slug domain.Slug) (domain.TriggerRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.triggers[slug]
	return record, ok
}

// LocalActions returns the slugs of all locally registered actions, sorted.
func (r *Registry) LocalActions() []domain.Slug {
	r.mu.RLock()
	defer r.mu.RUnlock()
	slugs := make([]domain.Slug, 0, len(r.actions))
	for slug := range r.actions {
		slugs = append(slugs, slug)
	}
	sort.Slice(slugs, func(i, j int) bool { return slugs[i] < slugs[j] })
	return slugs
}

// ActionsOfApp returns the slugs of the locally registered actions owned by
// the app, sorted.
func (r *Registry) ActionsOfApp(app domain.Slug) []domain.Slug {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var slugs []domain.Slug
	for slug, record := range r.actions {
		if domain.NormalizeSlug(record.App) == app {
			slugs = append(slugs, slug)
		}
	}
	sort.Slice(slugs, func(i, j int) bool { return slugs[i] < slugs[j] })
	return slugs
}

// hasLocal reports whether any local table holds the slug for the kind.
func (r *Registry) hasLocal(kind domain.EntityKind, slug domain.Slug) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	switch kind {
	case domain.KindApp:
		_, ok := r.apps[slug]
		return ok
	case domain.KindAction:
		_, ok := r.actions[slug]
		return ok
	case domain.KindTrigger:
		_, ok := r.triggers[slug]
		return ok
	default:
		return false
	}
}
