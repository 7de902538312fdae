package toolset

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	"go.uber.org/zap"

	"toolbelt/internal/domain"
	"toolbelt/internal/registry"
)

// SchemaRequest selects the action schemas to retrieve. Apps expands to all
// actions of the named apps; Tags further filters app expansion.
type SchemaRequest struct {
	Apps    []string
	Actions []string
	Tags    []string
}

// GetActionSchemas returns processed schemas for the requested actions.
// Locally registered apps expand from the in-process registry, runtime and
// local action schemas come from the dispatcher's registered specs, and
// everything left is fetched from the remote API in one call.
func (t *ToolSet) GetActionSchemas(ctx context.Context, req SchemaRequest) ([]domain.ActionSchema, error) {
	var runtime, local, remote []registry.Action
	seen := make(map[domain.Slug]bool)
	classify := func(action registry.Action, record domain.ActionRecord) {
		if seen[action.Slug()] {
			return
		}
		seen[action.Slug()] = true
		switch {
		case record.IsRuntime:
			runtime = append(runtime, action)
		case record.IsLocal:
			local = append(local, action)
		default:
			remote = append(remote, action)
		}
	}

	for _, raw := range req.Actions {
		action, err := t.resolver.Action(raw)
		if err != nil {
			return nil, err
		}
		record, err := t.resolver.LoadAction(ctx, action)
		if err != nil {
			return nil, err
		}
		classify(action, record)
	}

	// Apps registered in-process expand to their registered actions; only
	// the rest go to the remote API.
	reg := t.resolver.Registry()
	var remoteApps []domain.Slug
	for _, raw := range req.Apps {
		app, err := t.resolver.App(raw)
		if err != nil {
			return nil, err
		}
		if _, ok := reg.LookupApp(app.Slug()); !ok {
			remoteApps = append(remoteApps, app.Slug())
			continue
		}
		for _, slug := range reg.ActionsOfApp(app.Slug()) {
			action, err := t.resolver.Action(slug.String())
			if err != nil {
				return nil, err
			}
			record, err := t.resolver.LoadAction(ctx, action)
			if err != nil {
				return nil, err
			}
			if len(req.Tags) > 0 && !hasAnyTag(record, req.Tags) {
				continue
			}
			classify(action, record)
		}
	}

	var out []domain.ActionSchema
	for _, action := range append(runtime, local...) {
		schema, err := t.localSchema(ctx, action)
		if err != nil {
			return nil, err
		}
		out = append(out, schema)
	}

	if len(remote) > 0 || len(remoteApps) > 0 {
		if t.remote == nil {
			return nil, domain.E(domain.CodeUnavailable, "toolset.GetActionSchemas",
				"no remote client configured for remote action schemas", nil)
		}
		slugs := make([]domain.Slug, 0, len(remote))
		for _, action := range remote {
			slugs = append(slugs, action.Slug())
		}
		fetched, err := t.remote.ActionSchemas(ctx, remoteApps, slugs, req.Tags)
		if err != nil {
			return nil, err
		}
		out = append(out, fetched...)
	}

	for i := range out {
		out[i] = processSchema(out[i])
	}
	return out, nil
}

func hasAnyTag(record domain.ActionRecord, tags []string) bool {
	for _, tag := range tags {
		if record.HasTag(tag) {
			return true
		}
	}
	return false
}

// localSchema builds a schema from the dispatcher's registered spec.
func (t *ToolSet) localSchema(ctx context.Context, action registry.Action) (domain.ActionSchema, error) {
	const op = "toolset.localSchema"
	spec, ok := t.dispatcher.Spec(action.Slug())
	if !ok {
		return domain.ActionSchema{}, domain.E(domain.CodeNotFound, op,
			fmt.Sprintf("no handler registered for action %q", action.Slug()), domain.ErrNoSuchAction)
	}
	record, err := t.resolver.LoadAction(ctx, action)
	if err != nil {
		return domain.ActionSchema{}, err
	}
	return domain.ActionSchema{
		Name:        action.Slug().String(),
		AppName:     record.App,
		DisplayName: record.Name,
		Description: spec.Description,
		Tags:        append([]string(nil), spec.Tags...),
		Parameters:  spec.Schema(),
	}, nil
}

// processSchema rewrites a schema for agent consumption: file-structured
// parameters become plain path strings, every description states the
// expected type, and required parameters say so.
func processSchema(schema domain.ActionSchema) domain.ActionSchema {
	out := domain.CloneActionSchema(schema)
	if out.Parameters == nil {
		out.Parameters = &jsonschema.Schema{Type: "object"}
	}
	required := make(map[string]bool, len(out.Parameters.Required))
	for _, name := range out.Parameters.Required {
		required[name] = true
	}
	for name, prop := range out.Parameters.Properties {
		if isFileSchema(prop) {
			prop.Type = "string"
			prop.Format = "file-path"
			prop.Properties = nil
			prop.Required = nil
			prop.Description = fmt.Sprintf("File path to %s", strings.ToLower(name))
		}
		if prop.Type != "" && !strings.Contains(prop.Description, "Please provide a value of type") {
			prop.Description = strings.TrimSpace(prop.Description + fmt.Sprintf(" Please provide a value of type %s.", prop.Type))
		}
		if required[name] {
			prop.Description = strings.TrimSpace(prop.Description + " This parameter is required.")
		}
	}
	out.Name = loweredName(out)
	return out
}

// isFileSchema reports whether a property carries the embedded file
// structure (name + base64 content).
func isFileSchema(prop *jsonschema.Schema) bool {
	if prop == nil || prop.Type != "object" || len(prop.Properties) != 2 {
		return false
	}
	_, hasName := prop.Properties["name"]
	_, hasContent := prop.Properties["content"]
	return hasName && hasContent
}

// loweredName renders the agent-facing action name: the lowercase app name
// joined to the lowercase display name by an underscore, falling back to the
// lowered slug when either part is missing.
func loweredName(schema domain.ActionSchema) string {
	app := strings.ToLower(strings.TrimSpace(schema.AppName))
	name := strings.ToLower(strings.TrimSpace(schema.DisplayName))
	if app == "" || name == "" {
		return strings.ToLower(schema.Name)
	}
	return app + "_" + strings.ReplaceAll(name, " ", "_")
}

// GetAgentInstructions renders a short usage briefing for an agent from the
// given schemas.
func (t *ToolSet) GetAgentInstructions(schemas []domain.ActionSchema) string {
	var b strings.Builder
	b.WriteString("You have access to the following tools:\n")
	for _, schema := range schemas {
		fmt.Fprintf(&b, "- %s: %s\n", schema.Name, strings.TrimSpace(schema.Description))
	}
	b.WriteString("Call a tool by name with JSON arguments matching its parameter schema. ")
	b.WriteString("Provide every required parameter; file parameters take a file path string.\n")
	t.logger.Debug("rendered agent instructions", zap.Int("tools", len(schemas)))
	return b.String()
}
