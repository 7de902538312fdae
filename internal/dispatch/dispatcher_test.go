package dispatch

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"toolbelt/internal/domain"
)

type stubHandler struct {
	name string
	spec ActionSpec
	run  func(ctx context.Context, req Request) (map[string]any, error)
}

func (h stubHandler) Name() string     { return h.name }
func (h stubHandler) Spec() ActionSpec { return h.spec }

func (h stubHandler) Execute(ctx context.Context, req Request) (map[string]any, error) {
	return h.run(ctx, req)
}

type stubTool struct {
	name     string
	handlers []Handler
}

func (t stubTool) Name() string        { return t.name }
func (t stubTool) Description() string { return "stub tool" }
func (t stubTool) Actions() []Handler  { return t.handlers }

func echoHandler(name string) stubHandler {
	return stubHandler{
		name: name,
		spec: ActionSpec{Description: "echoes its params"},
		run: func(_ context.Context, req Request) (map[string]any, error) {
			return map[string]any{"params": req.Params}, nil
		},
	}
}

func newTestDispatcher(t *testing.T, tools ...Tool) *Dispatcher {
	t.Helper()
	d := NewDispatcher(DispatcherOptions{})
	for _, tool := range tools {
		require.NoError(t, d.Register(tool))
	}
	return d
}

func TestRegisterValidation(t *testing.T) {
	d := NewDispatcher(DispatcherOptions{})

	err := d.Register(stubTool{name: ""})
	require.Error(t, err)

	err = d.Register(stubTool{name: "empty"})
	require.Error(t, err)

	tool := stubTool{name: "mytool", handlers: []Handler{echoHandler("run")}}
	require.NoError(t, d.Register(tool))
	err = d.Register(tool)
	require.Error(t, err)
	require.Contains(t, err.Error(), "already registered")
}

func TestExecuteUnknownAction(t *testing.T) {
	d := newTestDispatcher(t)

	_, err := d.Execute(context.Background(), "NOPE_MISSING", nil, nil)
	require.Error(t, err)
	require.ErrorIs(t, err, domain.ErrNoSuchAction)
	require.Contains(t, err.Error(), "NOPE_MISSING")
}

func TestExecuteSuccessShape(t *testing.T) {
	d := newTestDispatcher(t, stubTool{name: "mytool", handlers: []Handler{
		stubHandler{
			name: "greet",
			run: func(_ context.Context, req Request) (map[string]any, error) {
				return map[string]any{"greeting": "hello " + req.String("who")}, nil
			},
		},
	}})

	response, err := d.Execute(context.Background(), "MYTOOL_GREET", map[string]any{"who": "world"}, nil)
	require.NoError(t, err)
	require.Equal(t, true, response["successful"])
	require.Nil(t, response["error"])
	require.Equal(t, "hello world", response["greeting"])
}

func TestExecuteFailureShape(t *testing.T) {
	d := newTestDispatcher(t, stubTool{name: "mytool", handlers: []Handler{
		stubHandler{
			name: "fail",
			run: func(_ context.Context, _ Request) (map[string]any, error) {
				return nil, domain.ExecutionFailed("quota exceeded", map[string]any{"code": 28})
			},
		},
	}})

	response, err := d.Execute(context.Background(), "MYTOOL_FAIL", nil, nil)
	require.NoError(t, err)
	require.Equal(t, false, response["successful"])
	require.Equal(t, "quota exceeded", response["error"])
	require.Equal(t, 28, response["code"])
}

func TestExecutePlainErrorShape(t *testing.T) {
	d := newTestDispatcher(t, stubTool{name: "mytool", handlers: []Handler{
		stubHandler{
			name: "boom",
			run: func(_ context.Context, _ Request) (map[string]any, error) {
				return nil, errors.New("unexpected condition")
			},
		},
	}})

	response, err := d.Execute(context.Background(), "MYTOOL_BOOM", nil, nil)
	require.NoError(t, err)
	require.Equal(t, false, response["successful"])
	require.Equal(t, "unexpected condition", response["error"])
}

func TestExecutePanicRecovery(t *testing.T) {
	d := newTestDispatcher(t, stubTool{name: "mytool", handlers: []Handler{
		stubHandler{
			name: "panic",
			run: func(_ context.Context, _ Request) (map[string]any, error) {
				panic("handler exploded")
			},
		},
	}})

	response, err := d.Execute(context.Background(), "MYTOOL_PANIC", nil, nil)
	require.NoError(t, err)
	require.Equal(t, false, response["successful"])
	require.Contains(t, response["error"], "handler exploded")
}

func TestExecuteFileReadableParam(t *testing.T) {
	path := filepath.Join(t.TempDir(), "note.txt")
	require.NoError(t, os.WriteFile(path, []byte("file content"), 0o644))

	var seen map[string]any
	d := newTestDispatcher(t, stubTool{name: "mytool", handlers: []Handler{
		stubHandler{
			name: "read",
			spec: ActionSpec{Params: []ParamSpec{
				{Name: "text", Type: "string", FileReadable: true},
			}},
			run: func(_ context.Context, req Request) (map[string]any, error) {
				seen = req.Params
				return map[string]any{}, nil
			},
		},
	}})

	_, err := d.Execute(context.Background(), "MYTOOL_READ", map[string]any{"text": path}, nil)
	require.NoError(t, err)
	require.Equal(t, "file content", seen["text"])

	// A value that is not an existing file passes through unchanged.
	_, err = d.Execute(context.Background(), "MYTOOL_READ", map[string]any{"text": "plain value"}, nil)
	require.NoError(t, err)
	require.Equal(t, "plain value", seen["text"])
}

func TestExecuteFileStructParam(t *testing.T) {
	path := filepath.Join(t.TempDir(), "payload.bin")
	require.NoError(t, os.WriteFile(path, []byte{0xde, 0xad}, 0o644))

	var seen map[string]any
	d := newTestDispatcher(t, stubTool{name: "mytool", handlers: []Handler{
		stubHandler{
			name: "upload",
			spec: ActionSpec{Params: []ParamSpec{
				{Name: "attachment", Type: "object", File: true},
			}},
			run: func(_ context.Context, req Request) (map[string]any, error) {
				seen = req.Params
				return map[string]any{}, nil
			},
		},
	}})

	_, err := d.Execute(context.Background(), "MYTOOL_UPLOAD", map[string]any{"attachment": path}, nil)
	require.NoError(t, err)

	attachment, ok := seen["attachment"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "payload.bin", attachment["name"])
	require.Equal(t, base64.StdEncoding.EncodeToString([]byte{0xde, 0xad}), attachment["content"])
}

func TestRegistrarSync(t *testing.T) {
	recorded := &recordingRegistrar{}
	d := NewDispatcher(DispatcherOptions{Registrar: recorded})
	require.NoError(t, d.Register(stubTool{name: "mytool", handlers: []Handler{
		stubHandler{
			name: "run",
			spec: ActionSpec{Tags: []string{"utility"}},
			run: func(_ context.Context, _ Request) (map[string]any, error) {
				return map[string]any{}, nil
			},
		},
	}}))

	require.Equal(t, domain.Slug("MYTOOL"), recorded.app.Slug)
	require.Len(t, recorded.actions, 1)
	require.Equal(t, domain.Slug("MYTOOL_RUN"), recorded.actions[0].Slug)
	require.True(t, recorded.actions[0].NoAuth)
	require.True(t, recorded.actions[0].IsLocal)
	require.Equal(t, []string{"utility"}, recorded.actions[0].Tags)
}

type recordingRegistrar struct {
	app     domain.AppRecord
	actions []domain.ActionRecord
}

func (r *recordingRegistrar) RegisterLocalTool(app domain.AppRecord, actions []domain.ActionRecord) error {
	r.app = app
	r.actions = actions
	return nil
}
