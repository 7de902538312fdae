// Package filetool provides local file manipulation actions: create, read
// and write files relative to the execution context's working directory.
package filetool

import (
	"context"
	"strings"

	"toolbelt/internal/dispatch"
	"toolbelt/internal/domain"
)

type Tool struct{}

func New() *Tool {
	return &Tool{}
}

func (t *Tool) Name() string { return "filetool" }

func (t *Tool) Description() string {
	return "File management tool for creating, reading and writing files in the workspace."
}

func (t *Tool) Actions() []dispatch.Handler {
	return []dispatch.Handler{
		createFile{},
		readFile{},
		writeFile{},
	}
}

func fileManager(req dispatch.Request) (dispatch.FileManager, error) {
	if req.Env == nil || req.Env.FileManagers == nil {
		return nil, domain.ExecutionFailed("no file manager available in execution context", nil)
	}
	return req.Env.FileManagers(), nil
}

// validatePath rejects empty and degenerate file paths before they reach
// the file manager.
func validatePath(path string) error {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return domain.ExecutionFailed("file path cannot be empty or just whitespace", nil)
	}
	if trimmed == "." || trimmed == ".." {
		return domain.ExecutionFailed(`file path cannot be "." or ".."`, nil)
	}
	return nil
}

type createFile struct{}

func (createFile) Name() string { return "create_file" }

func (createFile) Spec() dispatch.ActionSpec {
	return dispatch.ActionSpec{
		Description: "Creates a new file at the given path, overwriting any existing file. Relative paths resolve against the working directory.",
		Params: []dispatch.ParamSpec{
			{Name: "file_path", Type: "string", Description: "File path to create", Required: true},
		},
		Tags: []string{"file", "create"},
	}
}

func (createFile) Execute(_ context.Context, req dispatch.Request) (map[string]any, error) {
	path := req.String("file_path")
	if err := validatePath(path); err != nil {
		return nil, err
	}
	fm, err := fileManager(req)
	if err != nil {
		return nil, err
	}
	created, err := fm.Create(path)
	if err != nil {
		return nil, domain.ExecutionFailedf("create file: %v", err)
	}
	return map[string]any{"file": created}, nil
}

type readFile struct{}

func (readFile) Name() string { return "read_file" }

func (readFile) Spec() dispatch.ActionSpec {
	return dispatch.ActionSpec{
		Description: "Reads the content of a file at the given path.",
		Params: []dispatch.ParamSpec{
			{Name: "file_path", Type: "string", Description: "File path to read", Required: true},
		},
		Tags: []string{"file", "read"},
	}
}

func (readFile) Execute(_ context.Context, req dispatch.Request) (map[string]any, error) {
	path := req.String("file_path")
	if err := validatePath(path); err != nil {
		return nil, err
	}
	fm, err := fileManager(req)
	if err != nil {
		return nil, err
	}
	content, err := fm.Read(path)
	if err != nil {
		return nil, domain.ExecutionFailedf("read file: %v", err)
	}
	return map[string]any{"content": content}, nil
}

type writeFile struct{}

func (writeFile) Name() string { return "write_file" }

func (writeFile) Spec() dispatch.ActionSpec {
	return dispatch.ActionSpec{
		Description: "Writes content to a file at the given path, creating parent directories as needed.",
		Params: []dispatch.ParamSpec{
			{Name: "file_path", Type: "string", Description: "File path to write", Required: true},
			{Name: "content", Type: "string", Description: "Content to write", Required: true},
		},
		Tags: []string{"file", "write"},
	}
}

func (writeFile) Execute(_ context.Context, req dispatch.Request) (map[string]any, error) {
	path := req.String("file_path")
	if err := validatePath(path); err != nil {
		return nil, err
	}
	fm, err := fileManager(req)
	if err != nil {
		return nil, err
	}
	written, err := fm.Write(path, req.String("content"))
	if err != nil {
		return nil, domain.ExecutionFailedf("write file: %v", err)
	}
	return map[string]any{"file": written}, nil
}

var _ dispatch.Tool = (*Tool)(nil)
