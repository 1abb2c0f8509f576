// Package apiclient is a thin typed client for the classwork HTTP API.
// It owns the base URL, the bearer token, and the envelope decoding;
// callers get typed results or an *APIError carrying the server message.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/noah-isme/classwork-go/internal/dto"
)

// Doer executes HTTP requests. *http.Client satisfies it; tests may
// substitute an in-process application.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// APIError is a non-2xx response from the API. Message carries the
// server's envelope message verbatim; it is empty when the server sent
// none, so callers can apply their own fallback text.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error (%d)", e.StatusCode)
	}
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message)
}

// AsAPIError unwraps err into an *APIError when possible.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// Client talks to the classwork API. It is safe for concurrent use.
type Client struct {
	baseURL string
	doer    Doer

	mu    sync.RWMutex
	token string
}

// Option customises a Client.
type Option func(*Client)

// WithDoer replaces the underlying HTTP executor.
func WithDoer(doer Doer) Option {
	return func(c *Client) {
		if doer != nil {
			c.doer = doer
		}
	}
}

// WithToken sets the initial bearer token.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	client := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		doer:    &http.Client{Timeout: 30 * time.Second},
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// SetToken attaches a bearer token to subsequent requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// ClearToken removes the stored bearer token.
func (c *Client) ClearToken() {
	c.SetToken("")
}

// Token returns the currently attached bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Login exchanges credentials for a token and identity. The token is
// NOT stored on the client; callers decide whether to keep it.
func (c *Client) Login(ctx context.Context, email, password string) (dto.LoginResponse, error) {
	var out dto.LoginResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", dto.LoginRequest{Email: email, Password: password}, &out)
	return out, err
}

// Me resolves the identity behind the stored token.
func (c *Client) Me(ctx context.Context) (dto.UserResponse, error) {
	var out dto.UserResponse
	err := c.do(ctx, http.MethodGet, "/auth/me", nil, &out)
	return out, err
}

// Assignments lists assignments visible to the caller. Teachers get
// their own in every status; students get published ones.
func (c *Client) Assignments(ctx context.Context) ([]dto.AssignmentResponse, error) {
	var out []dto.AssignmentResponse
	err := c.do(ctx, http.MethodGet, "/assignments", nil, &out)
	return out, err
}

// Assignment fetches a single assignment by id.
func (c *Client) Assignment(ctx context.Context, id uint) (dto.AssignmentResponse, error) {
	var out dto.AssignmentResponse
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/assignments/%d", id), nil, &out)
	return out, err
}

// CreateAssignment creates a draft assignment.
func (c *Client) CreateAssignment(ctx context.Context, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error) {
	var out dto.AssignmentResponse
	err := c.do(ctx, http.MethodPost, "/assignments", payload, &out)
	return out, err
}

// PublishAssignment moves a draft assignment to published.
func (c *Client) PublishAssignment(ctx context.Context, id uint) (dto.AssignmentResponse, error) {
	var out dto.AssignmentResponse
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/assignments/%d/publish", id), nil, &out)
	return out, err
}

// CompleteAssignment moves a published assignment to completed.
func (c *Client) CompleteAssignment(ctx context.Context, id uint) (dto.AssignmentResponse, error) {
	var out dto.AssignmentResponse
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/assignments/%d/complete", id), nil, &out)
	return out, err
}

// AssignmentSubmissions lists submissions for an assignment the caller
// owns.
func (c *Client) AssignmentSubmissions(ctx context.Context, id uint) ([]dto.SubmissionResponse, error) {
	var out []dto.SubmissionResponse
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/assignments/%d/submissions", id), nil, &out)
	return out, err
}

// MySubmissions lists the caller's own submissions.
func (c *Client) MySubmissions(ctx context.Context) ([]dto.SubmissionResponse, error) {
	var out []dto.SubmissionResponse
	err := c.do(ctx, http.MethodGet, "/submissions", nil, &out)
	return out, err
}

// CreateSubmission submits an answer for an assignment.
func (c *Client) CreateSubmission(ctx context.Context, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error) {
	var out dto.SubmissionResponse
	err := c.do(ctx, http.MethodPost, "/submissions", payload, &out)
	return out, err
}

// ReviewSubmission marks a submission reviewed. Reviewing an already
// reviewed submission returns the stored record unchanged.
func (c *Client) ReviewSubmission(ctx context.Context, id uint) (dto.SubmissionResponse, error) {
	var out dto.SubmissionResponse
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/submissions/%d/review", id), nil, &out)
	return out, err
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/api/v1"+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.doer.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= 400 {
			return &APIError{StatusCode: resp.StatusCode}
		}
		return fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode >= 400 || !env.Success {
		return &APIError{StatusCode: resp.StatusCode, Message: env.Message}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
	}

	return nil
}
