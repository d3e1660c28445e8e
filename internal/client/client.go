// Package client talks to the graph exploration backend.
//
// The backend exposes two calls: a multipart upload of a database dump,
// which yields a session id, and a JSON query carrying that id and a
// natural-language question.
//
// Example usage:
//
//	c := client.NewClient("http://localhost:8000")
//
//	up, err := c.Upload(ctx, "graph.dump", f)
//	resp, err := c.Query(ctx, up.SessionID, "Show me the distribution of nodes")
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"graphchat/internal/logging"
)

// Client is the backend API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithTimeout sets the HTTP client timeout. Zero means no timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(client *Client) {
		client.httpClient.Timeout = d
	}
}

// WithLogger sets the request logger.
func WithLogger(l *logging.Logger) ClientOption {
	return func(client *Client) {
		if l != nil {
			client.logger = l
		}
	}
}

// NewClient creates a new API client.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{},
		logger:     logging.Nop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Health checks the server health.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	var result HealthResponse
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Upload sends a database dump as the multipart field "file". The body is
// streamed from content, so dumps of any size are never held in memory.
func (c *Client) Upload(ctx context.Context, filename string, content io.Reader) (*UploadResponse, error) {
	pr, pw := io.Pipe()
	w := multipart.NewWriter(pw)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", pr)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	go func() {
		pw.CloseWithError(writeMultipart(w, filename, content))
	}()

	var result UploadResponse
	err = c.do(req, &result)
	// Unblocks the writer when the server answered before reading the body.
	pr.Close()
	if err != nil {
		return nil, err
	}
	if result.SessionID == "" {
		return nil, fmt.Errorf("upload response missing session_id")
	}
	return &result, nil
}

func writeMultipart(w *multipart.Writer, filename string, content io.Reader) error {
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return fmt.Errorf("read upload content: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close multipart body: %w", err)
	}
	return nil
}

// Query asks a question within a session.
func (c *Client) Query(ctx context.Context, sessionID, question string) (*QueryResponse, error) {
	jsonBody, err := json.Marshal(QueryRequest{SessionID: sessionID, Question: question})
	if err != nil {
		return nil, fmt.Errorf("marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/query", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	var result QueryResponse
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// do performs the request and decodes a JSON response into result.
func (c *Client) do(req *http.Request, result any) error {
	rl := c.logger.StartRequest(req.Method, req.URL.Path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		rl.Error(err)
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(bodyBytes)),
		}
		var eb ErrorBody
		if json.Unmarshal(bodyBytes, &eb) == nil {
			apiErr.Detail = eb.Detail
		}
		rl.Error(apiErr)
		return apiErr
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			rl.Error(err)
			return fmt.Errorf("decode response: %w", err)
		}
	}

	rl.Success(resp.StatusCode)
	return nil
}
