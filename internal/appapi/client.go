package appapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	apiV1ObjectsPath = "/api/v1/objects"

	defaultRequestTimeout = 30 * time.Second
	maxObjectSize         = 16 << 20 // 16MB
)

// ObjectInfo describes one stored object as reported by the list endpoint.
type ObjectInfo struct {
	Key        string    `json:"key"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// ObjectNotFoundError is returned when the application reports 404 for a key.
type ObjectNotFoundError struct {
	Key string
}

func (e *ObjectNotFoundError) Error() string {
	return fmt.Sprintf("object %q not found", e.Key)
}

// UnauthorizedError is returned when the application rejects the bearer token.
type UnauthorizedError struct{}

func (e *UnauthorizedError) Error() string {
	return "application rejected the bearer token"
}

// IsObjectNotFoundError reports whether err is (or wraps) an ObjectNotFoundError.
func IsObjectNotFoundError(err error) bool {
	var e *ObjectNotFoundError
	return errors.As(err, &e)
}

// Client calls the application's object API with a fixed bearer token.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        *zap.SugaredLogger
}

// Option tweaks a Client at construction time.
type Option func(*Client)

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// NewClient builds a client for the application at baseURL, authenticating
// every request with the given bearer token.
func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: defaultRequestTimeout,
		},
		log: zap.S().Named("appapi"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Upload stores body under key. The application responds 201 on a new key
// and 200 on overwrite.
func (c *Client) Upload(ctx context.Context, key string, body []byte) error {
	resp, err := c.do(ctx, http.MethodPost, apiV1ObjectsPath+"/"+key, bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		c.log.Debugw("uploaded object", "key", key, "size", len(body))
		return nil
	case http.StatusUnauthorized:
		return &UnauthorizedError{}
	default:
		return fmt.Errorf("failed to upload object %q: %s", key, resp.Status)
	}
}

// List returns every stored object.
func (c *Client) List(ctx context.Context) ([]ObjectInfo, error) {
	resp, err := c.do(ctx, http.MethodGet, apiV1ObjectsPath, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return nil, &UnauthorizedError{}
	default:
		return nil, fmt.Errorf("failed to list objects: %s", resp.Status)
	}

	var objects []ObjectInfo
	if err := json.NewDecoder(resp.Body).Decode(&objects); err != nil {
		return nil, fmt.Errorf("failed to decode object list: %w", err)
	}
	return objects, nil
}

// Get fetches the content stored under key.
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, apiV1ObjectsPath+"/"+key, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, &ObjectNotFoundError{Key: key}
	case http.StatusUnauthorized:
		return nil, &UnauthorizedError{}
	default:
		return nil, fmt.Errorf("failed to get object %q: %s", key, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxObjectSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read object body: %w", err)
	}
	return body, nil
}

// Delete removes the object stored under key.
func (c *Client) Delete(ctx context.Context, key string) error {
	resp, err := c.do(ctx, http.MethodDelete, apiV1ObjectsPath+"/"+key, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return &ObjectNotFoundError{Key: key}
	case http.StatusUnauthorized:
		return &UnauthorizedError{}
	default:
		return fmt.Errorf("failed to delete object %q: %s", key, resp.Status)
	}
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/octet-stream")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}
