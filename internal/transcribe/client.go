package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"whisperflow/internal/services"
)

const defaultHTTPTimeout = 120 * time.Second

// Config captures the runtime settings required to talk to the speech-to-text API.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	TimeoutSeconds int
}

// Segment is one timestamped utterance returned by the API, with times
// relative to the start of the submitted chunk. Segments are kept in API
// order and never re-sorted.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Client wraps the remote transcription API (OpenAI-compatible
// audio/transcriptions endpoint with verbose segment output).
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

// NewClient constructs a transcription client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			APIKey:         strings.TrimSpace(cfg.APIKey),
			BaseURL:        strings.TrimSpace(cfg.BaseURL),
			Model:          strings.TrimSpace(cfg.Model),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type httpStatusError struct {
	StatusCode int
	Body       string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("transcription request: http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

type verboseResponse struct {
	Text     string    `json:"text"`
	Segments []Segment `json:"segments"`
	Error    *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Transcribe submits one chunk's audio and returns its timestamped segments.
func (c *Client) Transcribe(ctx context.Context, audioPath string) ([]Segment, error) {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return nil, errors.New("transcribe: api key required")
	}
	file, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("transcribe: open chunk: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("model", c.cfg.Model); err != nil {
		return nil, fmt.Errorf("transcribe: encode body: %w", err)
	}
	if err := mw.WriteField("response_format", "verbose_json"); err != nil {
		return nil, fmt.Errorf("transcribe: encode body: %w", err)
	}
	if err := mw.WriteField("temperature", "0"); err != nil {
		return nil, fmt.Errorf("transcribe: encode body: %w", err)
	}
	fw, err := mw.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return nil, fmt.Errorf("transcribe: encode body: %w", err)
	}
	if _, err := io.Copy(fw, file); err != nil {
		return nil, fmt.Errorf("transcribe: read chunk: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("transcribe: encode body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, &body)
	if err != nil {
		return nil, fmt.Errorf("transcribe: new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, services.Wrap(services.ErrTimeout, "transcribing", "request",
				fmt.Sprintf("no response within %s", c.httpClient.Timeout), err)
		}
		return nil, fmt.Errorf("transcribe: http error: %w", err)
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("transcribe: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &httpStatusError{StatusCode: resp.StatusCode, Body: string(payload)}
	}

	var parsed verboseResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return nil, fmt.Errorf("transcribe: decode response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("transcribe: api error: %s", strings.TrimSpace(parsed.Error.Message))
	}
	if len(parsed.Segments) == 0 && strings.TrimSpace(parsed.Text) != "" {
		// Some backends omit segment timing for very short chunks.
		return []Segment{{Start: 0, End: 0, Text: parsed.Text}}, nil
	}
	return parsed.Segments, nil
}

// Configured reports whether the client has credentials.
func (c *Client) Configured() bool {
	return c != nil && strings.TrimSpace(c.cfg.APIKey) != ""
}
