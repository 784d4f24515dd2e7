// Package client is a Go client for the LearnFlow REST API.
//
// Authenticated calls send the access token as a bearer header. When the
// server answers 401 the client refreshes the token pair once and retries
// the original request once; if that fails too the session is dropped and
// ErrSessionExpired is returned.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/yukikurage/learnflow-api/internal/analytics"
	"github.com/yukikurage/learnflow-api/internal/auth"
	"github.com/yukikurage/learnflow-api/internal/dto"
	apierrors "github.com/yukikurage/learnflow-api/internal/errors"
	"github.com/yukikurage/learnflow-api/internal/logger"
)

// ErrSessionExpired is returned when the server rejects the session and a
// refresh cannot restore it.
var ErrSessionExpired = apierrors.Auth(apierrors.ErrCodeSessionExpired, "Session expired. Please log in again.")

// NetworkError reports a transport failure or a non-2xx response.
type NetworkError struct {
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *NetworkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("request failed: %v", e.Err)
	}
	if e.Message != "" {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Session is the client's view of the logged-in user.
type Session struct {
	AccessToken     string
	RefreshToken    string
	User            *dto.UserDTO
	IsAuthenticated bool
}

// Valid reports whether the session can be used at now. A session whose
// access token carries a past expiry is invalid even when IsAuthenticated
// is still set.
func (s Session) Valid(now time.Time) bool {
	if !s.IsAuthenticated || s.AccessToken == "" {
		return false
	}
	exp, err := auth.PeekExpiry(s.AccessToken)
	if err != nil {
		return false
	}
	return now.Before(exp)
}

type Client struct {
	baseURL    string
	httpClient *http.Client

	mu      sync.Mutex
	session Session
}

type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithSession starts the client from a saved session.
func WithSession(s Session) Option {
	return func(c *Client) {
		c.session = s
	}
}

// New creates a client for the API rooted at baseURL, e.g. http://localhost:8080/api/v1.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns a copy of the current session.
func (c *Client) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

func (c *Client) setSession(resp *dto.AuthResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()
	user := resp.User
	c.session = Session{
		AccessToken:     resp.AccessToken,
		RefreshToken:    resp.RefreshToken,
		User:            &user,
		IsAuthenticated: true,
	}
}

func (c *Client) clearSession() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = Session{}
}

func (c *Client) Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error) {
	var resp dto.AuthResponse
	if err := c.call(ctx, http.MethodPost, "/auth/register", req, &resp, false); err != nil {
		return nil, err
	}
	c.setSession(&resp)
	return &resp, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*dto.AuthResponse, error) {
	var resp dto.AuthResponse
	req := dto.LoginRequest{Email: email, Password: password}
	if err := c.call(ctx, http.MethodPost, "/auth/login", req, &resp, false); err != nil {
		return nil, err
	}
	c.setSession(&resp)
	return &resp, nil
}

// Refresh exchanges the stored refresh token for a new pair.
func (c *Client) Refresh(ctx context.Context) error {
	token := c.Session().RefreshToken
	if token == "" {
		return ErrSessionExpired
	}
	var resp dto.AuthResponse
	if err := c.call(ctx, http.MethodPost, "/auth/refresh", dto.RefreshRequest{RefreshToken: token}, &resp, false); err != nil {
		return err
	}
	c.setSession(&resp)
	return nil
}

// Logout revokes the session on the server and forgets it locally.
func (c *Client) Logout(ctx context.Context) error {
	err := c.call(ctx, http.MethodPost, "/auth/logout", nil, nil, true)
	c.clearSession()
	return err
}

func (c *Client) Me(ctx context.Context) (*dto.UserDTO, error) {
	var user dto.UserDTO
	if err := c.call(ctx, http.MethodGet, "/auth/me", nil, &user, true); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) Goals(ctx context.Context) (*dto.GoalListResponse, error) {
	var goals dto.GoalListResponse
	if err := c.call(ctx, http.MethodGet, "/goals", nil, &goals, true); err != nil {
		return nil, err
	}
	return &goals, nil
}

func (c *Client) CreateGoal(ctx context.Context, req dto.CreateGoalRequest) (*dto.GoalDTO, error) {
	var goal dto.GoalDTO
	if err := c.call(ctx, http.MethodPost, "/goals", req, &goal, true); err != nil {
		return nil, err
	}
	return &goal, nil
}

func (c *Client) Summary(ctx context.Context) (*analytics.Summary, error) {
	var summary analytics.Summary
	if err := c.call(ctx, http.MethodGet, "/analytics/summary", nil, &summary, true); err != nil {
		return nil, err
	}
	return &summary, nil
}

// Report downloads a rendered report and returns its body and the file
// name suggested by the server.
func (c *Client) Report(ctx context.Context, period, reportType, format string) ([]byte, string, error) {
	q := url.Values{}
	q.Set("period", period)
	q.Set("type", reportType)
	q.Set("format", format)

	body, header, err := c.do(ctx, http.MethodGet, "/reports/analytics?"+q.Encode(), nil, true)
	if err != nil {
		return nil, "", err
	}
	return body, attachmentName(header.Get("Content-Disposition")), nil
}

func (c *Client) call(ctx context.Context, method, path string, in, out interface{}, authenticated bool) error {
	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	body, _, err := c.do(ctx, method, path, payload, authenticated)
	if err != nil {
		return err
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &NetworkError{StatusCode: http.StatusOK, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

// do sends the request and applies the refresh-and-retry policy to
// authenticated calls.
func (c *Client) do(ctx context.Context, method, path string, payload []byte, authenticated bool) ([]byte, http.Header, error) {
	status, body, header, err := c.send(ctx, method, path, payload, authenticated)
	if err != nil {
		return nil, nil, err
	}
	if status != http.StatusUnauthorized || !authenticated {
		return checkStatus(status, body, header)
	}

	if err := c.Refresh(ctx); err != nil {
		logger.Debug("token refresh failed", "path", path, "err", err)
		c.clearSession()
		var netErr *NetworkError
		if errors.As(err, &netErr) && netErr.Err != nil {
			return nil, nil, err
		}
		return nil, nil, ErrSessionExpired
	}

	status, body, header, err = c.send(ctx, method, path, payload, authenticated)
	if err != nil {
		return nil, nil, err
	}
	if status == http.StatusUnauthorized {
		c.clearSession()
		return nil, nil, ErrSessionExpired
	}
	return checkStatus(status, body, header)
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte, authenticated bool) (int, []byte, http.Header, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, nil, &NetworkError{Err: err}
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if authenticated {
		if token := c.Session().AccessToken; token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, nil, &NetworkError{StatusCode: resp.StatusCode, Err: err}
	}
	return resp.StatusCode, body, resp.Header, nil
}

func checkStatus(status int, body []byte, header http.Header) ([]byte, http.Header, error) {
	if status >= 200 && status < 300 {
		return body, header, nil
	}
	netErr := &NetworkError{StatusCode: status}
	var apiErr apierrors.APIError
	if json.Unmarshal(body, &apiErr) == nil {
		netErr.Code = apiErr.Code
		netErr.Message = apiErr.Message
	}
	return nil, nil, netErr
}

func attachmentName(disposition string) string {
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return ""
	}
	return params["filename"]
}
