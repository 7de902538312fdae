package domain

import "github.com/google/jsonschema-go/jsonschema"

// ActionSchema is the function-calling description of an action: its
// identifier, owning app and a JSON Schema for its parameters.
type ActionSchema struct {
	Name        string             `json:"name"`
	AppName     string             `json:"appName"`
	DisplayName string             `json:"display_name,omitempty"`
	Description string             `json:"description"`
	Tags        []string           `json:"tags,omitempty"`
	Parameters  *jsonschema.Schema `json:"parameters"`
}

// CloneActionSchema deep-copies a schema so post-processing never mutates
// cached or shared instances.
func CloneActionSchema(s ActionSchema) ActionSchema {
	out := s
	if s.Tags != nil {
		out.Tags = append([]string(nil), s.Tags...)
	}
	out.Parameters = CloneSchema(s.Parameters)
	return out
}

// CloneSchema deep-copies the schema fields the toolset manipulates.
func CloneSchema(s *jsonschema.Schema) *jsonschema.Schema {
	if s == nil {
		return nil
	}
	out := *s
	if s.Properties != nil {
		out.Properties = make(map[string]*jsonschema.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = CloneSchema(prop)
		}
	}
	if s.Required != nil {
		out.Required = append([]string(nil), s.Required...)
	}
	out.Items = CloneSchema(s.Items)
	return &out
}
