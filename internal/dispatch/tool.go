package dispatch

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	"toolbelt/internal/domain"
)

// Tool groups local action handlers under one app. Name is lowercased for
// display; the registry slug is its uppercase form.
type Tool interface {
	Name() string
	Description() string
	Actions() []Handler
}

// Handler executes one action of a tool.
type Handler interface {
	Name() string
	Spec() ActionSpec
	Execute(ctx context.Context, req Request) (map[string]any, error)
}

// ActionSpec describes an action's parameters and behavior flags.
type ActionSpec struct {
	Description string
	Params      []ParamSpec
	Tags        []string
	Shell       bool
}

// ParamSpec describes one request parameter.
type ParamSpec struct {
	Name        string
	Type        string
	Description string
	Required    bool

	// FileReadable marks a string parameter whose value, when it names an
	// existing file, is replaced by the file's content before execution.
	FileReadable bool

	// File marks a parameter with the file structure (name + base64
	// content); a path value is replaced by the read name/content pair.
	File bool
}

// Schema renders the declared parameters as a JSON Schema object.
func (s ActionSpec) Schema() *jsonschema.Schema {
	properties := make(map[string]*jsonschema.Schema, len(s.Params))
	var required []string
	for _, param := range s.Params {
		prop := &jsonschema.Schema{
			Type:        param.Type,
			Description: param.Description,
		}
		if param.File {
			prop.Type = "object"
			prop.Properties = map[string]*jsonschema.Schema{
				"name":    {Type: "string", Description: "File name, contains extension to identify the file type"},
				"content": {Type: "string", Description: "File content in base64"},
			}
			prop.Required = []string{"name", "content"}
		}
		properties[param.Name] = prop
		if param.Required {
			required = append(required, param.Name)
		}
	}
	return &jsonschema.Schema{
		Type:       "object",
		Properties: properties,
		Required:   required,
	}
}

// Request carries the processed parameters, caller metadata and the
// execution context accessors into a handler.
type Request struct {
	Params   map[string]any
	Metadata map[string]any
	Env      *Env
}

// String returns a string parameter, or "" when absent.
func (r Request) String(name string) string {
	value, _ := r.Params[name].(string)
	return value
}

// Bool returns a boolean parameter, or false when absent.
func (r Request) Bool(name string) bool {
	value, _ := r.Params[name].(bool)
	return value
}

// registeredHandler is one entry in a tool's handler table.
type registeredHandler struct {
	tool    string
	app     domain.Slug
	enum    domain.Slug
	handler Handler
}

// compositeSlug builds the `{TOOL}_{ACTION}` identifier for a handler.
func compositeSlug(tool Tool, handler Handler) domain.Slug {
	return domain.NormalizeSlug(fmt.Sprintf("%s_%s", tool.Name(), handler.Name()))
}

// toolRecords derives the registry records for a tool and its actions.
func toolRecords(tool Tool) (domain.AppRecord, []domain.ActionRecord) {
	app := domain.AppRecord{
		Slug:    domain.NormalizeSlug(tool.Name()),
		Name:    strings.ToLower(tool.Name()),
		IsLocal: true,
	}
	actions := make([]domain.ActionRecord, 0, len(tool.Actions()))
	for _, handler := range tool.Actions() {
		spec := handler.Spec()
		actions = append(actions, domain.ActionRecord{
			Slug:    compositeSlug(tool, handler),
			Name:    strings.ToLower(handler.Name()),
			App:     app.Slug.String(),
			Tags:    append([]string(nil), spec.Tags...),
			NoAuth:  true,
			IsLocal: true,
			Shell:   spec.Shell,
		})
	}
	return app, actions
}
