package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"whisperflow/internal/services"
)

const defaultHTTPTimeout = 30 * time.Second

// Identity is the resolved profile for a submitted access token.
type Identity struct {
	Name      string
	Nickname  string
	Email     string
	AvatarURL string
	Token     string
}

// Config captures the identity provider settings.
type Config struct {
	BaseURL        string
	TimeoutSeconds int
}

// Client resolves OAuth access tokens to user profiles via the provider's
// userinfo endpoint.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs an identity client.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			BaseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type userinfoResponse struct {
	Name     string `json:"name"`
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
	Picture  string `json:"picture"`
}

// Lookup resolves an access token to its profile. An unauthenticated token
// maps to services.ErrNotFound so callers can distinguish it from transport
// failures.
func (c *Client) Lookup(ctx context.Context, token string) (Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Identity{}, services.Wrap(services.ErrValidation, "identity", "lookup", "Empty access token", nil)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/userinfo", nil)
	if err != nil {
		return Identity{}, fmt.Errorf("identity: new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Identity{}, fmt.Errorf("identity: lookup: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Identity{}, fmt.Errorf("identity: read body: %w", err)
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return Identity{}, services.Wrap(services.ErrNotFound, "identity", "lookup", "Token is not authenticated", nil)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return Identity{}, fmt.Errorf("identity: lookup: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed userinfoResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Identity{}, fmt.Errorf("identity: decode response: %w", err)
	}
	return Identity{
		Name:      parsed.Name,
		Nickname:  parsed.Nickname,
		Email:     strings.ToLower(strings.TrimSpace(parsed.Email)),
		AvatarURL: parsed.Picture,
		Token:     token,
	}, nil
}
