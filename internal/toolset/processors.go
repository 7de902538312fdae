package toolset

import "toolbelt/internal/domain"

// Processor transforms a request payload before execution or a response
// payload after it. Processors run synchronously; an error aborts the call.
type Processor func(map[string]any) (map[string]any, error)

// Processors holds the pre and post transform tables, keyed by an app or
// action slug. Supplied at construction, immutable for the toolset lifetime.
type Processors struct {
	Pre  map[domain.Slug]Processor
	Post map[domain.Slug]Processor
}

func (p Processors) pre(key domain.Slug) Processor {
	if p.Pre == nil {
		return nil
	}
	return p.Pre[key]
}

func (p Processors) post(key domain.Slug) Processor {
	if p.Post == nil {
		return nil
	}
	return p.Post[key]
}

// processRequest applies the app-level transform, then the action-level
// transform, to a request payload.
func (t *ToolSet) processRequest(app, action domain.Slug, request map[string]any) (map[string]any, error) {
	for _, key := range []domain.Slug{app, action} {
		processor := t.processors.pre(key)
		if processor == nil {
			continue
		}
		next, err := processor(request)
		if err != nil {
			return nil, domain.E(domain.CodeInternal, "toolset.processRequest",
				"request processor failed", err)
		}
		request = next
	}
	return request, nil
}

// processResponse applies the action-level transform, then the app-level
// transform, to a response payload. Reverse of the request order.
func (t *ToolSet) processResponse(app, action domain.Slug, response map[string]any) (map[string]any, error) {
	for _, key := range []domain.Slug{action, app} {
		processor := t.processors.post(key)
		if processor == nil {
			continue
		}
		next, err := processor(response)
		if err != nil {
			return nil, domain.E(domain.CodeInternal, "toolset.processResponse",
				"response processor failed", err)
		}
		response = next
	}
	return response, nil
}
