package toolset

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"toolbelt/internal/dispatch"
	"toolbelt/internal/domain"
	"toolbelt/internal/infra/remote"
	"toolbelt/internal/registry"
)

// RemoteClient is the remote execution and metadata boundary consumed by
// the toolset. Implemented by internal/infra/remote.
type RemoteClient interface {
	Execute(ctx context.Context, action domain.Slug, req remote.ExecuteRequest) (map[string]any, error)
	ConnectedAccounts(ctx context.Context) ([]domain.ConnectedAccount, error)
	ActionSchemas(ctx context.Context, apps, actions []domain.Slug, tags []string) ([]domain.ActionSchema, error)
}

// Options configures a ToolSet.
type Options struct {
	EntityID     string
	OutputInFile bool
	OutputDir    string
	Metadata     map[domain.Slug]map[string]any
	Processors   Processors
	Logger       *zap.Logger
	Metrics      domain.Metrics
	Remote       RemoteClient
}

// ExecuteRequest is one action invocation.
type ExecuteRequest struct {
	Action             string
	Params             map[string]any
	Metadata           map[string]any
	EntityID           string
	ConnectedAccountID string
	Text               string
}

// ToolSet orchestrates action execution: it resolves symbolic action names,
// serializes and pre-processes parameters, branches between the local
// dispatcher and the remote API, and post-processes responses. All calls are
// synchronous and blocking.
type ToolSet struct {
	logger     *zap.Logger
	metrics    domain.Metrics
	resolver   *registry.Resolver
	dispatcher *dispatch.Dispatcher
	remote     RemoteClient
	entityID   string
	outputs    *outputWriter
	metadata   map[domain.Slug]map[string]any
	processors Processors

	accountsMu sync.Mutex
	accounts   []domain.ConnectedAccount
	accountsOK bool
}

func New(resolver *registry.Resolver, dispatcher *dispatch.Dispatcher, opts Options) *ToolSet {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	entityID := opts.EntityID
	if entityID == "" {
		entityID = domain.DefaultEntityID
	}
	return &ToolSet{
		logger:     logger.Named("toolset"),
		metrics:    opts.Metrics,
		resolver:   resolver,
		dispatcher: dispatcher,
		remote:     opts.Remote,
		entityID:   entityID,
		outputs:    newOutputWriter(opts.OutputDir, opts.OutputInFile, logger),
		metadata:   opts.Metadata,
		processors: opts.Processors,
	}
}

// RegisterTool registers a local tool's handlers and entity records.
func (t *ToolSet) RegisterTool(tool dispatch.Tool) error {
	return t.dispatcher.Register(tool)
}

// RegisterRuntimeTool registers a tool whose actions live in the runtime
// table: valid for this process only, never persisted, and exempt from the
// connected-account check.
func (t *ToolSet) RegisterRuntimeTool(tool dispatch.Tool) error {
	if err := t.dispatcher.Register(tool); err != nil {
		return err
	}
	reg := t.resolver.Registry()
	for _, handler := range tool.Actions() {
		spec := handler.Spec()
		record := domain.ActionRecord{
			Slug: domain.NormalizeSlug(fmt.Sprintf("%s_%s", tool.Name(), handler.Name())),
			Name: strings.ToLower(handler.Name()),
			App:  domain.NormalizeSlug(tool.Name()).String(),
			Tags: append([]string(nil), spec.Tags...),
		}
		if err := reg.RegisterRuntimeAction(record); err != nil {
			return err
		}
	}
	return nil
}

// Resolver exposes the entity resolver.
func (t *ToolSet) Resolver() *registry.Resolver {
	return t.resolver
}

// ExecuteAction runs an action and returns its normalized response mapping.
//
// Pipeline: resolve the action, serialize parameters, apply pre-processors
// (app before action), merge metadata (caller, then app-level, then
// action-level), dispatch locally or remotely, then apply post-processors
// (action before app).
func (t *ToolSet) ExecuteAction(ctx context.Context, req ExecuteRequest) (map[string]any, error) {
	start := time.Now()
	requestID := uuid.NewString()

	action, err := t.resolver.Action(req.Action)
	if err != nil {
		return nil, err
	}
	record, err := t.resolver.LoadAction(ctx, action)
	if err != nil {
		return nil, err
	}
	app := domain.NormalizeSlug(record.App)

	t.logger.Info("executing action",
		zap.String("request_id", requestID),
		zap.String("action", action.String()),
		zap.String("app", app.String()),
		zap.String("locality", string(action.Locality())),
	)

	params, err := serializeParams(req.Params)
	if err != nil {
		return nil, err
	}
	params, err = t.processRequest(app, action.Slug(), params)
	if err != nil {
		return nil, err
	}
	metadata := t.mergeMetadata(app, action.Slug(), req.Metadata)

	var response map[string]any
	if action.IsLocal() {
		response, err = t.dispatcher.Execute(ctx, action.Slug(), params, metadata)
	} else {
		response, err = t.executeRemote(ctx, action, record, params, req)
	}
	if err != nil {
		t.observeExecute(app, action, domain.ExecuteStatusError, start)
		return nil, err
	}

	response, err = t.processResponse(app, action.Slug(), response)
	if err != nil {
		t.observeExecute(app, action, domain.ExecuteStatusError, start)
		return nil, err
	}

	status := domain.ExecuteStatusSuccess
	if ok, present := response["successful"].(bool); present && !ok {
		status = domain.ExecuteStatusFailed
	}
	t.observeExecute(app, action, status, start)
	return response, nil
}

func (t *ToolSet) executeRemote(ctx context.Context, action registry.Action, record domain.ActionRecord, params map[string]any, req ExecuteRequest) (map[string]any, error) {
	const op = "toolset.executeRemote"
	if t.remote == nil {
		return nil, domain.E(domain.CodeUnavailable, op, "no remote client configured", nil)
	}
	if err := t.checkConnectedAccount(ctx, record); err != nil {
		return nil, err
	}

	entityID := req.EntityID
	if entityID == "" {
		entityID = t.entityID
	}
	response, err := t.remote.Execute(ctx, action.Slug(), remote.ExecuteRequest{
		EntityID:           entityID,
		ConnectedAccountID: req.ConnectedAccountID,
		Text:               req.Text,
		Input:              params,
	})
	if err != nil {
		return nil, err
	}
	return t.outputs.redirect(action.Slug(), entityID, response), nil
}

// checkConnectedAccount verifies an authenticated connection exists for the
// action's app. No-auth and runtime actions are exempt. The account list is
// fetched once and memoized for the toolset lifetime.
func (t *ToolSet) checkConnectedAccount(ctx context.Context, record domain.ActionRecord) error {
	const op = "toolset.checkConnectedAccount"
	if record.NoAuth || record.IsRuntime {
		return nil
	}

	t.accountsMu.Lock()
	defer t.accountsMu.Unlock()
	if !t.accountsOK {
		accounts, err := t.remote.ConnectedAccounts(ctx)
		if err != nil {
			return err
		}
		t.accounts = accounts
		t.accountsOK = true
	}

	app := domain.NormalizeSlug(record.App)
	for _, account := range t.accounts {
		if domain.NormalizeSlug(account.AppUniqueID) == app {
			return nil
		}
	}
	return domain.E(domain.CodeFailedPrecond, op,
		fmt.Sprintf("no connected account found for app %q; connect the app and retry", record.App),
		domain.ErrNoConnectedAccount)
}

// mergeMetadata overlays configured app-level, then action-level metadata on
// the caller-supplied mapping. Action-level entries win on key conflicts.
func (t *ToolSet) mergeMetadata(app, action domain.Slug, base map[string]any) map[string]any {
	merged := make(map[string]any, len(base))
	for key, value := range base {
		merged[key] = value
	}
	for _, key := range []domain.Slug{app, action} {
		for name, value := range t.metadata[key] {
			merged[name] = value
		}
	}
	return merged
}

// FindActionsByTags returns the statically declared actions of the given
// apps (all apps when none given) that carry at least one of the tags.
func (t *ToolSet) FindActionsByTags(ctx context.Context, apps []string, tags []string) ([]registry.Action, error) {
	const op = "toolset.FindActionsByTags"
	if len(tags) == 0 {
		return nil, domain.E(domain.CodeInvalidArgument, op, "at least one tag is required", nil)
	}

	appSet := make(map[domain.Slug]struct{}, len(apps))
	for _, raw := range apps {
		app, err := t.resolver.App(raw)
		if err != nil {
			return nil, err
		}
		appSet[app.Slug()] = struct{}{}
	}

	var out []registry.Action
	for _, action := range t.resolver.AllActions() {
		if len(appSet) > 0 && !belongsToAny(action.Slug(), appSet) {
			continue
		}
		record, err := t.resolver.LoadAction(ctx, action)
		if err != nil {
			return nil, err
		}
		for _, tag := range tags {
			if record.HasTag(tag) {
				out = append(out, action)
				break
			}
		}
	}
	return out, nil
}

// belongsToAny reports whether an action slug carries one of the app slugs
// as its composite prefix.
func belongsToAny(action domain.Slug, apps map[domain.Slug]struct{}) bool {
	for app := range apps {
		if strings.HasPrefix(action.String(), app.String()+"_") {
			return true
		}
	}
	return false
}

func (t *ToolSet) observeExecute(app domain.Slug, action registry.Action, status domain.ExecuteStatus, start time.Time) {
	if t.metrics == nil {
		return
	}
	t.metrics.ObserveExecute(app.String(), action.Locality(), status, time.Since(start))
}
