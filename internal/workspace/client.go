// Package workspace is a client for the chat platform API: app
// authentication, message queries, message decorations and targeted
// messages. Queries go through the platform's GraphQL endpoint.
package workspace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"
)

const (
	tokenPath   = "/oauth/token"
	graphqlPath = "/graphql"

	// refreshMargin is how long before expiry a token is replaced.
	refreshMargin = 60 * time.Second
	maxBody       = 4 << 20
)

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// BaseURL is the platform API root, e.g. "https://api.watsonwork.ibm.com".
	BaseURL   string
	AppID     string
	AppSecret string
	// HTTPClient is used for all requests. If nil, a client with a 30s timeout is used.
	HTTPClient *http.Client
}

// Client talks to the platform as the app. Safe for concurrent use.
type Client struct {
	baseURL    string
	appID      string
	appSecret  string
	httpClient *http.Client
	now        func() time.Time

	mu      sync.Mutex
	token   string
	expires time.Time
	group   singleflight.Group
}

// NewClient creates a client. It does not contact the platform.
func NewClient(config ClientConfig) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("workspace: BaseURL is required")
	}
	if _, err := url.Parse(config.BaseURL); err != nil {
		return nil, fmt.Errorf("workspace: invalid BaseURL %q: %w", config.BaseURL, err)
	}
	if config.AppID == "" || config.AppSecret == "" {
		return nil, fmt.Errorf("workspace: AppID and AppSecret are required")
	}
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		appID:      config.AppID,
		appSecret:  config.AppSecret,
		httpClient: httpClient,
		now:        time.Now,
	}, nil
}

// AppID is the id the app posts messages as.
func (c *Client) AppID() string {
	return c.appID
}

// Authenticate obtains an app token, or reuses a cached one that is not about to expire.
func (c *Client) Authenticate(ctx context.Context) error {
	_, err := c.accessToken(ctx)
	return err
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.token != "" && c.now().Add(refreshMargin).Before(c.expires) {
		token := c.token
		c.mu.Unlock()
		return token, nil
	}
	c.mu.Unlock()

	v, err, _ := c.group.Do("token", func() (any, error) {
		return c.fetchToken(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *Client) fetchToken(ctx context.Context) (string, error) {
	form := url.Values{"grant_type": {"client_credentials"}}
	header := http.Header{}
	header.Set("Content-Type", "application/x-www-form-urlencoded")
	req, err := c.newRequest(ctx, http.MethodPost, tokenPath, header, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.appID, c.appSecret)
	body, err := c.do(req)
	if err != nil {
		return "", fmt.Errorf("workspace: authenticate: %w", err)
	}

	var resp tokenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("workspace: parse token response: %w", err)
	}
	if resp.AccessToken == "" {
		return "", fmt.Errorf("workspace: token response has no access_token")
	}

	c.mu.Lock()
	c.token = resp.AccessToken
	c.expires = c.tokenExpiry(resp)
	c.mu.Unlock()
	return resp.AccessToken, nil
}

// tokenExpiry prefers the exp claim of the JWT and falls back to expires_in.
// The token is not verified here; the platform that issued it is the one that checks it.
func (c *Client) tokenExpiry(resp tokenResponse) time.Time {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(resp.AccessToken, &claims); err == nil && claims.ExpiresAt != nil {
		return claims.ExpiresAt.Time
	}
	return c.now().Add(time.Duration(resp.ExpiresIn) * time.Second)
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors GraphQLErrors   `json:"errors"`
}

// graphql runs a query as the app and decodes its data into out.
func (c *Client) graphql(ctx context.Context, query string, variables map[string]any, out any) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("workspace: encode query: %w", err)
	}
	header := http.Header{}
	header.Set("Content-Type", "application/json")
	header.Set("Authorization", "Bearer "+token)
	header.Set("x-graphql-view", "PUBLIC, BETA")
	req, err := c.newRequest(ctx, http.MethodPost, graphqlPath, header, bytes.NewReader(encoded))
	if err != nil {
		return err
	}
	body, err := c.do(req)
	if err != nil {
		return err
	}

	var resp graphqlResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("workspace: parse graphql response: %w", err)
	}
	if len(resp.Errors) > 0 {
		return resp.Errors
	}
	if out == nil || len(resp.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("workspace: decode graphql data: %w", err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, header http.Header, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("workspace: create request: %w", err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	return req, nil
}

// do sends req and returns the body of a 2xx response; anything else is an *APIError.
func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("workspace: request to %s %s failed: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("workspace: read response body: %w", err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}
	return nil, &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
}
