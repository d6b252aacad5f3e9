package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"whisperflow/internal/services"
)

const defaultHTTPTimeout = 60 * time.Second

// Config captures the object storage settings.
type Config struct {
	BaseURL        string
	APIKey         string
	Bucket         string
	TimeoutSeconds int
}

// Client uploads subtitle artifacts to a Supabase-compatible storage API and
// answers donor lookups against its REST surface.
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

// NewClient constructs a storage client.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			BaseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			APIKey:         strings.TrimSpace(cfg.APIKey),
			Bucket:         strings.TrimSpace(cfg.Bucket),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// PublicURL returns the public download URL for an object name.
func (c *Client) PublicURL(name string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.cfg.BaseURL, c.cfg.Bucket, url.PathEscape(name))
}

// Upload stores a local file under its base name and returns the public URL.
// A duplicate upload is treated as success since object names are derived
// from the source file name and content does not change between retries.
func (c *Client) Upload(ctx context.Context, localPath string) (string, error) {
	name := filepath.Base(localPath)
	file, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("storage: open %s: %w", localPath, err)
	}
	defer file.Close()

	endpoint := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.cfg.BaseURL, c.cfg.Bucket, url.PathEscape(name))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, file)
	if err != nil {
		return "", fmt.Errorf("storage: new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("apikey", c.cfg.APIKey)
	req.Header.Set("Content-Type", contentTypeFor(name))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("storage: upload %s: %w", name, err)
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode < http.StatusMultipleChoices:
		return c.PublicURL(name), nil
	case resp.StatusCode == http.StatusConflict:
		// Object already exists from a previous attempt.
		return c.PublicURL(name), nil
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		detail := fmt.Sprintf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		return "", services.Wrap(services.ErrStorage, "uploading", name, detail, nil)
	}
}

// IsDonor reports whether the email has a donation record.
func (c *Client) IsDonor(ctx context.Context, email string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false, errors.New("storage: empty email")
	}
	endpoint := fmt.Sprintf("%s/rest/v1/donations?select=email&email=eq.%s", c.cfg.BaseURL, url.QueryEscape(email))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("storage: new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("apikey", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("storage: donor lookup: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("storage: donor lookup: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return false, fmt.Errorf("storage: donor lookup: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	trimmed := strings.TrimSpace(string(body))
	return trimmed != "" && trimmed != "[]", nil
}

// Configured reports whether the client can reach a bucket.
func (c *Client) Configured() bool {
	return c != nil && c.cfg.BaseURL != "" && c.cfg.APIKey != "" && c.cfg.Bucket != ""
}

func contentTypeFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".srt":
		return "application/x-subrip"
	case ".txt":
		return "text/plain; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}
