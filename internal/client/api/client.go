// Package api implements the HTTP client for the task service REST API.
// It is pure transport: one method per endpoint, no retries, no caching.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ndubrovin/TaskKeeper/internal/models"
)

// TokenSource supplies the current bearer token. The client reads it
// fresh on every authenticated call, so a rotated token is picked up on
// the next request without rebuilding the client.
type TokenSource interface {
	// Get returns the stored token, or an error when none is stored
	// or the store cannot be read.
	Get() (string, error)
}

// Client talks to the task service. All methods are safe for concurrent
// use; the client holds no mutable state of its own.
type Client struct {
	http    *http.Client
	baseURL string
	tokens  TokenSource
}

// New constructs a Client for the given base URL. httpClient may be nil,
// in which case http.DefaultClient is used.
func New(baseURL string, tokens TokenSource, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
	}
}

// AuthResponse is the payload of a successful login or register call.
type AuthResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// TaskDraft carries the fields required to create a task. The server
// rejects drafts with any field missing.
type TaskDraft struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	DueDate     string          `json:"dueDate"`
	Priority    models.Priority `json:"priority"`
	Category    string          `json:"category"`
}

// TaskPatch is a partial task update; nil fields are left untouched.
type TaskPatch struct {
	Title       *string          `json:"title,omitempty"`
	Description *string          `json:"description,omitempty"`
	DueDate     *string          `json:"dueDate,omitempty"`
	Priority    *models.Priority `json:"priority,omitempty"`
	Category    *string          `json:"category,omitempty"`
	Completed   *bool            `json:"completed,omitempty"`
}

// taskWire mirrors the task JSON as the server may emit it. Older
// deployments emit the identifier under "_id"; "id" is canonical and the
// alias is normalized away at this boundary.
type taskWire struct {
	LegacyID    string          `json:"_id"`
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	DueDate     string          `json:"dueDate"`
	Priority    models.Priority `json:"priority"`
	Category    string          `json:"category"`
	Completed   bool            `json:"completed"`
	UserID      string          `json:"userId"`
}

func (w taskWire) task() models.Task {
	id := w.ID
	if id == "" {
		id = w.LegacyID
	}
	return models.Task{
		ID:          id,
		Title:       w.Title,
		Description: w.Description,
		DueDate:     w.DueDate,
		Priority:    w.Priority,
		Category:    w.Category,
		Completed:   w.Completed,
		UserID:      w.UserID,
	}
}

// Login exchanges email and password for a token and user snapshot.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, false, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account and returns the same payload as Login.
func (c *Client) Register(ctx context.Context, email, password, username string) (*AuthResponse, error) {
	body := map[string]string{"email": email, "password": password, "username": username}
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/signup", body, false, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ValidateToken asks the server whether the stored token is still good
// and returns the user it belongs to.
func (c *Client) ValidateToken(ctx context.Context) (*models.User, error) {
	var out struct {
		User models.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/validate", nil, true, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// ListTasks fetches all tasks for the authenticated user.
func (c *Client) ListTasks(ctx context.Context) ([]models.Task, error) {
	var wires []taskWire
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, true, &wires); err != nil {
		return nil, err
	}
	tasks := make([]models.Task, 0, len(wires))
	for _, w := range wires {
		tasks = append(tasks, w.task())
	}
	return tasks, nil
}

// GetTask fetches a single task by id.
func (c *Client) GetTask(ctx context.Context, id string) (*models.Task, error) {
	var wire taskWire
	if err := c.do(ctx, http.MethodGet, "/tasks/"+id, nil, true, &wire); err != nil {
		return nil, err
	}
	task := wire.task()
	return &task, nil
}

// CreateTask creates a task and returns the server's copy of it,
// including the assigned id.
func (c *Client) CreateTask(ctx context.Context, draft TaskDraft) (*models.Task, error) {
	var wire taskWire
	if err := c.do(ctx, http.MethodPost, "/tasks", draft, true, &wire); err != nil {
		return nil, err
	}
	task := wire.task()
	return &task, nil
}

// UpdateTask applies a partial update and returns the updated task.
func (c *Client) UpdateTask(ctx context.Context, id string, patch TaskPatch) (*models.Task, error) {
	var wire taskWire
	if err := c.do(ctx, http.MethodPut, "/tasks/"+id, patch, true, &wire); err != nil {
		return nil, err
	}
	task := wire.task()
	return &task, nil
}

// DeleteTask removes a task by id.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/tasks/"+id, nil, true, nil)
}

// do builds the request, attaches the bearer token when authed is set,
// executes it, and decodes the response into out (which may be nil).
// Network failures come back as *TransportError, non-2xx responses as
// *APIError; token store failures pass through unchanged.
func (c *Client) do(ctx context.Context, method, path string, body any, authed bool, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		token, err := c.tokens.Get()
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(resp.Body)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// errorMessage extracts a human-readable message from an error response
// body, accepting {"error": ...}, {"message": ...}, or plain text.
func errorMessage(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var wire struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &wire); err == nil {
		if wire.Error != "" {
			return wire.Error
		}
		if wire.Message != "" {
			return wire.Message
		}
	}
	return strings.TrimSpace(string(raw))
}
