package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"toolbelt/internal/domain"
)

// Options configures the remote API client.
type Options struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Logger  *zap.Logger
	Metrics domain.Metrics
}

// Client talks to the remote metadata and execution service. It implements
// registry.RemoteSource and the toolset's remote execution boundary.
type Client struct {
	http    *resty.Client
	logger  *zap.Logger
	metrics domain.Metrics
	apiKey  string
}

func NewClient(opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = time.Duration(domain.DefaultRemoteTimeoutSeconds) * time.Second
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = domain.DefaultBaseURL
	}

	http := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	if opts.APIKey != "" {
		http.SetHeader("x-api-key", opts.APIKey)
	}

	return &Client{
		http:    http,
		logger:  logger.Named("remote"),
		metrics: opts.Metrics,
		apiKey:  opts.APIKey,
	}
}

type appResponse struct {
	Name string `json:"name"`
}

// FetchApp retrieves app metadata: GET {base}/apps/{slug}.
func (c *Client) FetchApp(ctx context.Context, slug domain.Slug) (domain.AppRecord, error) {
	const op = "remote.FetchApp"
	start := time.Now()
	var out appResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/apps/" + slug.String())
	c.observeFetch(domain.KindApp, start, err)
	if err != nil {
		return domain.AppRecord{}, domain.Wrap(domain.CodeUnavailable, op, err)
	}
	if resp.IsError() {
		return domain.AppRecord{}, c.statusError(op, resp)
	}
	return domain.AppRecord{
		Slug:    slug,
		Name:    out.Name,
		IsLocal: false,
	}, nil
}

type actionResponse struct {
	Name    string   `json:"name"`
	AppName string   `json:"appName"`
	Tags    []string `json:"tags"`
}

// FetchAction retrieves action metadata: GET {base}/actions/{slug}. The
// endpoint may answer with an object or a list whose first element is used.
func (c *Client) FetchAction(ctx context.Context, slug domain.Slug) (domain.ActionRecord, error) {
	const op = "remote.FetchAction"
	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		Get("/actions/" + slug.String())
	c.observeFetch(domain.KindAction, start, err)
	if err != nil {
		return domain.ActionRecord{}, domain.Wrap(domain.CodeUnavailable, op, err)
	}
	if resp.IsError() {
		return domain.ActionRecord{}, c.statusError(op, resp)
	}

	out, err := decodeActionBody(resp.Body())
	if err != nil {
		return domain.ActionRecord{}, domain.E(domain.CodeUnavailable, op, "decode action metadata", err)
	}
	return domain.ActionRecord{
		Slug: slug,
		Name: out.Name,
		App:  out.AppName,
		Tags: out.Tags,
	}, nil
}

func decodeActionBody(body []byte) (actionResponse, error) {
	var single actionResponse
	if err := json.Unmarshal(body, &single); err == nil {
		return single, nil
	}
	var list []actionResponse
	if err := json.Unmarshal(body, &list); err != nil {
		return actionResponse{}, err
	}
	if len(list) == 0 {
		return actionResponse{}, fmt.Errorf("empty action metadata list")
	}
	return list[0], nil
}

// ExecuteRequest is the payload for a remote action execution.
type ExecuteRequest struct {
	EntityID           string         `json:"entityId"`
	ConnectedAccountID string         `json:"connectedAccountId,omitempty"`
	Text               string         `json:"text,omitempty"`
	Input              map[string]any `json:"input"`
}

// Execute runs a remote action: POST {base}/actions/{slug}/execute.
func (c *Client) Execute(ctx context.Context, action domain.Slug, req ExecuteRequest) (map[string]any, error) {
	const op = "remote.Execute"
	if c.apiKey == "" {
		return nil, domain.E(domain.CodeUnauthenticated, op, "", domain.ErrAPIKeyMissing)
	}
	var out map[string]any
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post("/actions/" + action.String() + "/execute")
	if err != nil {
		return nil, domain.Wrap(domain.CodeUnavailable, op, err)
	}
	if resp.IsError() {
		return nil, c.statusError(op, resp)
	}
	return out, nil
}

type connectedAccountsResponse struct {
	Items []domain.ConnectedAccount `json:"items"`
}

// ConnectedAccounts lists the authenticated connections of the caller.
func (c *Client) ConnectedAccounts(ctx context.Context) ([]domain.ConnectedAccount, error) {
	const op = "remote.ConnectedAccounts"
	if c.apiKey == "" {
		return nil, domain.E(domain.CodeUnauthenticated, op, "", domain.ErrAPIKeyMissing)
	}
	var out connectedAccountsResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/connected_accounts")
	if err != nil {
		return nil, domain.Wrap(domain.CodeUnavailable, op, err)
	}
	if resp.IsError() {
		return nil, c.statusError(op, resp)
	}
	return out.Items, nil
}

// ActionSchemas retrieves schemas for remote apps and actions.
func (c *Client) ActionSchemas(ctx context.Context, apps, actions []domain.Slug, tags []string) ([]domain.ActionSchema, error) {
	const op = "remote.ActionSchemas"
	request := c.http.R().SetContext(ctx)
	if len(apps) > 0 {
		request.SetQueryParam("apps", joinSlugs(apps))
	}
	if len(actions) > 0 {
		request.SetQueryParam("actions", joinSlugs(actions))
	}
	for _, tag := range tags {
		request.SetQueryParamsFromValues(map[string][]string{"tags": {tag}})
	}

	var out struct {
		Items []domain.ActionSchema `json:"items"`
	}
	resp, err := request.SetResult(&out).Get("/actions")
	if err != nil {
		return nil, domain.Wrap(domain.CodeUnavailable, op, err)
	}
	if resp.IsError() {
		return nil, c.statusError(op, resp)
	}
	return out.Items, nil
}

func (c *Client) statusError(op string, resp *resty.Response) error {
	code := domain.CodeUnavailable
	switch resp.StatusCode() {
	case 401, 403:
		code = domain.CodeUnauthenticated
	case 404:
		code = domain.CodeNotFound
	}
	c.logger.Debug("remote call failed",
		zap.String("op", op),
		zap.Int("status", resp.StatusCode()),
	)
	return domain.E(code, op, fmt.Sprintf("remote returned %s", resp.Status()), nil)
}

func (c *Client) observeFetch(kind domain.EntityKind, start time.Time, err error) {
	if c.metrics == nil {
		return
	}
	c.metrics.ObserveRemoteFetch(kind, time.Since(start), err)
}

func joinSlugs(slugs []domain.Slug) string {
	out := ""
	for i, slug := range slugs {
		if i > 0 {
			out += ","
		}
		out += slug.String()
	}
	return out
}
