package dispatch

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"toolbelt/internal/domain"
)

// Registrar receives entity records for tools as they are registered,
// keeping the entity registry in sync with the handler table.
type Registrar interface {
	RegisterLocalTool(app domain.AppRecord, actions []domain.ActionRecord) error
}

// DispatcherOptions configures a Dispatcher.
type DispatcherOptions struct {
	Logger    *zap.Logger
	Metrics   domain.Metrics
	Registrar Registrar
	Env       *Env
}

// Dispatcher maps composite action identifiers to handlers and executes
// them with a normalized result shape. Handler faults never propagate: a
// failed execution becomes a failure-shaped payload.
type Dispatcher struct {
	logger    *zap.Logger
	metrics   domain.Metrics
	registrar Registrar
	env       *Env

	mu       sync.RWMutex
	handlers map[domain.Slug]registeredHandler
}

func NewDispatcher(opts DispatcherOptions) *Dispatcher {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	env := opts.Env
	if env == nil {
		env = &Env{}
	}
	return &Dispatcher{
		logger:    logger.Named("dispatch"),
		metrics:   opts.Metrics,
		registrar: opts.Registrar,
		env:       env,
		handlers:  make(map[domain.Slug]registeredHandler),
	}
}

// Register validates a tool and adds its handlers to the dispatch table.
// Registration happens once at startup; duplicate identifiers are rejected
// here rather than at call time.
func (d *Dispatcher) Register(tool Tool) error {
	const op = "dispatch.Register"
	if tool.Name() == "" {
		return domain.E(domain.CodeInvalidArgument, op, "tool name is required", nil)
	}
	handlers := tool.Actions()
	if len(handlers) == 0 {
		return domain.E(domain.CodeInvalidArgument, op,
			fmt.Sprintf("tool %q declares no actions", tool.Name()), nil)
	}

	d.mu.Lock()
	for _, handler := range handlers {
		enum := compositeSlug(tool, handler)
		if _, ok := d.handlers[enum]; ok {
			d.mu.Unlock()
			return domain.E(domain.CodeInvalidArgument, op,
				fmt.Sprintf("action %q is already registered", enum), nil)
		}
		d.handlers[enum] = registeredHandler{
			tool:    tool.Name(),
			app:     domain.NormalizeSlug(tool.Name()),
			enum:    enum,
			handler: handler,
		}
	}
	d.mu.Unlock()

	if d.registrar != nil {
		app, actions := toolRecords(tool)
		if err := d.registrar.RegisterLocalTool(app, actions); err != nil {
			return err
		}
	}
	d.logger.Debug("tool registered",
		zap.String("tool", tool.Name()),
		zap.Int("actions", len(handlers)),
	)
	return nil
}

// Handlers returns the registered composite identifiers, unordered.
func (d *Dispatcher) Handlers() []domain.Slug {
	d.mu.RLock()
	defer d.mu.RUnlock()
	slugs := make([]domain.Slug, 0, len(d.handlers))
	for slug := range d.handlers {
		slugs = append(slugs, slug)
	}
	return slugs
}

// Spec returns the action spec for a registered composite identifier.
func (d *Dispatcher) Spec(action domain.Slug) (ActionSpec, bool) {
	d.mu.RLock()
	entry, ok := d.handlers[action]
	d.mu.RUnlock()
	if !ok {
		return ActionSpec{}, false
	}
	return entry.handler.Spec(), true
}

// Execute looks up the handler for an action and runs it. The returned map
// always carries a "successful" flag; the only error returned is for an
// unregistered action name.
func (d *Dispatcher) Execute(ctx context.Context, action domain.Slug, params map[string]any, metadata map[string]any) (map[string]any, error) {
	const op = "dispatch.Execute"
	d.mu.RLock()
	entry, ok := d.handlers[action]
	d.mu.RUnlock()
	if !ok {
		return nil, domain.E(domain.CodeNotFound, op,
			fmt.Sprintf("no action found with name %q", action), domain.ErrNoSuchAction)
	}

	start := time.Now()
	response := d.run(ctx, entry, params, metadata)
	d.observe(entry, start, response)
	return response, nil
}

func (d *Dispatcher) run(ctx context.Context, entry registeredHandler, params map[string]any, metadata map[string]any) (response map[string]any) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("action panicked",
				zap.String("action", entry.enum.String()),
				zap.Any("panic", r),
			)
			d.logger.Debug("panic trace", zap.String("stack", string(debug.Stack())))
			response = map[string]any{
				"successful": false,
				"error":      fmt.Sprintf("%v", r),
			}
		}
	}()

	if metadata == nil {
		metadata = map[string]any{}
	}
	request := Request{
		Params:   d.processParams(entry, params),
		Metadata: metadata,
		Env:      d.env,
	}

	out, err := entry.handler.Execute(ctx, request)
	if err != nil {
		return d.failure(entry, err)
	}

	response = make(map[string]any, len(out)+2)
	for key, value := range out {
		response[key] = value
	}
	response["successful"] = true
	response["error"] = nil
	return response
}

func (d *Dispatcher) failure(entry registeredHandler, err error) map[string]any {
	var failed *domain.ExecutionFailedError
	if errors.As(err, &failed) {
		d.logger.Error("action failed",
			zap.String("action", entry.enum.String()),
			zap.String("reason", failed.Message),
		)
		response := make(map[string]any, len(failed.Extra)+2)
		for key, value := range failed.Extra {
			response[key] = value
		}
		response["successful"] = false
		response["error"] = failed.Message
		return response
	}

	d.logger.Error("action errored",
		zap.String("action", entry.enum.String()),
		zap.Error(err),
	)
	d.logger.Debug("error trace", zap.String("stack", string(debug.Stack())))
	return map[string]any{
		"successful": false,
		"error":      err.Error(),
	}
}

// processParams applies file-parameter transforms before execution: values
// of file-readable parameters naming existing files are inlined as content,
// and file-struct parameters are expanded to name/content pairs.
func (d *Dispatcher) processParams(entry registeredHandler, params map[string]any) map[string]any {
	spec := entry.handler.Spec()
	flags := make(map[string]ParamSpec, len(spec.Params))
	for _, param := range spec.Params {
		flags[param.Name] = param
	}

	processed := make(map[string]any, len(params))
	for name, value := range params {
		param := flags[name]
		path, isString := value.(string)

		if param.FileReadable && isString && isFile(path) {
			content, err := os.ReadFile(path)
			if err == nil {
				if utf8.Valid(content) {
					processed[name] = string(content)
				} else {
					processed[name] = base64.StdEncoding.EncodeToString(content)
				}
				continue
			}
			d.logger.Debug("file-readable param kept as path", zap.String("param", name), zap.Error(err))
		}

		if param.File && isString && isFile(path) {
			content, err := os.ReadFile(path)
			if err == nil {
				processed[name] = map[string]any{
					"name":    filepath.Base(path),
					"content": base64.StdEncoding.EncodeToString(content),
				}
				continue
			}
			d.logger.Debug("file param kept as path", zap.String("param", name), zap.Error(err))
		}

		processed[name] = value
	}
	return processed
}

func (d *Dispatcher) observe(entry registeredHandler, start time.Time, response map[string]any) {
	if d.metrics == nil {
		return
	}
	status := domain.ExecuteStatusSuccess
	if ok, _ := response["successful"].(bool); !ok {
		status = domain.ExecuteStatusFailed
	}
	d.metrics.ObserveExecute(entry.app.String(), domain.LocalityLocal, status, time.Since(start))
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
