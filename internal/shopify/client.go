package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// AdminClient executes GraphQL documents against the Admin API. Services
// depend on this interface so they can be tested with a stub.
type AdminClient interface {
	Execute(ctx context.Context, query string, variables map[string]interface{}) (*GraphQLResponse, error)
}

// TokenSource resolves the access token to attach to a request. The token
// may come from configuration or from the session store after an install.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource returning a fixed token.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) { return string(t), nil }

// GraphQLError is one entry of the top-level errors list.
type GraphQLError struct {
	Message    string `json:"message"`
	Path       []any  `json:"path,omitempty"`
	Extensions struct {
		Code string `json:"code,omitempty"`
	} `json:"extensions,omitempty"`
}

// GraphQLResponse is the raw body of an Admin API call. Top-level Errors
// and per-mutation userErrors are distinct failure channels; the client
// surfaces the first and leaves the second to callers parsing Data.
type GraphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors,omitempty"`
}

// ErrorMessages flattens the top-level errors list.
func (r *GraphQLResponse) ErrorMessages() []string {
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Message)
	}
	return msgs
}

type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

// Client is an Admin GraphQL API client bound to one shop.
type Client struct {
	shopDomain string
	apiVersion string
	tokens     TokenSource
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient builds a Client. The shop domain is normalized so configs may
// carry a scheme or trailing slash.
func NewClient(shopDomain, apiVersion string, tokens TokenSource, logger *zap.Logger) *Client {
	shopDomain = strings.TrimPrefix(shopDomain, "https://")
	shopDomain = strings.TrimPrefix(shopDomain, "http://")
	shopDomain = strings.TrimSuffix(shopDomain, "/")

	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		shopDomain: shopDomain,
		apiVersion: apiVersion,
		tokens:     tokens,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// Execute posts one GraphQL document. A non-nil error means the call never
// produced a usable body; top-level GraphQL errors are returned on the
// response for the caller to map.
func (c *Client) Execute(ctx context.Context, query string, variables map[string]interface{}) (*GraphQLResponse, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve access token: %w", err)
	}

	endpoint := fmt.Sprintf("https://%s/admin/api/%s/graphql.json", c.shopDomain, c.apiVersion)

	payload, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", token)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if res.StatusCode != http.StatusOK {
		c.logger.Error("admin api returned non-200",
			zap.Int("status", res.StatusCode),
			zap.String("shop", c.shopDomain))
		return nil, fmt.Errorf("admin api status %d: %s", res.StatusCode, string(body))
	}

	var out GraphQLResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	return &out, nil
}
