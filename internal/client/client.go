package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"recitebot/internal/studyset"
)

const (
	saveBookPath = "/api/save-book"
	processPath  = "/api/process"

	defaultSaveFailure    = "save failed"
	defaultProcessFailure = "processing failed"
	maxErrorBody          = 64 << 10
)

var (
	// ErrNoChapters is returned before any request when there is nothing to save.
	ErrNoChapters = errors.New("no chapters to save")
	// ErrEmptyText is returned before any request when the text is blank.
	ErrEmptyText = errors.New("text is empty")
)

// ResponseError carries a non-200 reply. Message is the body's "error"
// field, or a generic message when the body has none.
type ResponseError struct {
	StatusCode int
	Message    string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// Client talks to a recitebot server.
type Client struct {
	baseURL    string
	token      string
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

// WithToken sends token as a bearer credential.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = strings.TrimSpace(token)
	}
}

// New returns a client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: 2 * time.Minute},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type saveBookRequest struct {
	BookName string             `json:"bookName"`
	Chapters []studyset.Chapter `json:"chapters"`
}

type saveBookResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SaveBook posts the book in a single attempt and returns the server's
// message. A failed save is a *ResponseError; nothing is retried.
func (c *Client) SaveBook(ctx context.Context, bookName string, chapters []studyset.Chapter) (string, error) {
	if len(chapters) == 0 {
		return "", ErrNoChapters
	}
	body, status, err := c.post(ctx, saveBookPath, saveBookRequest{BookName: bookName, Chapters: chapters})
	if err != nil {
		return "", fmt.Errorf("save book: %w", err)
	}
	if status != http.StatusOK {
		return "", &ResponseError{StatusCode: status, Message: errorMessage(body, defaultSaveFailure)}
	}
	var resp saveBookResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("save book: decode response: %w", err)
	}
	return resp.Message, nil
}

// ProcessText sends text to the server for segmentation and returns the
// chapters it produced.
func (c *Client) ProcessText(ctx context.Context, text string) ([]studyset.Chapter, error) {
	raw, err := c.Process(ctx, text)
	if err != nil {
		return nil, err
	}
	var chapters []studyset.Chapter
	if err := json.Unmarshal([]byte(raw), &chapters); err != nil {
		return nil, fmt.Errorf("process text: decode response: %w", err)
	}
	return chapters, nil
}

// Process returns the raw body of a successful /api/process call, which lets
// the client stand in as a remote text-processing backend.
func (c *Client) Process(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyText
	}
	body, status, err := c.post(ctx, processPath, map[string]string{"text": text})
	if err != nil {
		return "", fmt.Errorf("process text: %w", err)
	}
	if status != http.StatusOK {
		return "", &ResponseError{StatusCode: status, Message: errorMessage(body, defaultProcessFailure)}
	}
	return string(body), nil
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, int, error) {
	endpoint, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return nil, 0, fmt.Errorf("build url: %w", err)
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, 0, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	reader := io.Reader(resp.Body)
	if resp.StatusCode != http.StatusOK {
		reader = io.LimitReader(resp.Body, maxErrorBody)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	return body, resp.StatusCode, nil
}

func errorMessage(body []byte, fallback string) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if msg := strings.TrimSpace(payload.Error); msg != "" {
			return msg
		}
	}
	return fallback
}
