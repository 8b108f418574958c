package client

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

	"github.com/google/uuid"

	"github.com/aiwave/aiwave/pkg/domain"
)

// DefaultBaseURL is the API root used when nothing is configured.
const DefaultBaseURL = "http://127.0.0.1:3000/api"

// RequestIDHeader carries a per-call UUID so client and server logs line up.
const RequestIDHeader = "X-Request-ID"

// TokenSource yields the bearer token for protected calls. It is consulted
// on every call, so a token written after the client was built is picked up
// by the next request. An empty token means there is no session.
type TokenSource interface {
	Token() (string, error)
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() (string, error)

// Token implements TokenSource.
func (f TokenFunc) Token() (string, error) { return f() }

// RegisterRequest is the payload for creating an account.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d}
		}
	}
}

// Client is the aiwave API client.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
}

// New creates a new API client. tokens may be nil for a client that only
// makes public calls.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root this client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// WithToken returns a copy of the client whose protected calls always use
// token, regardless of the configured TokenSource.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.tokens = TokenFunc(func() (string, error) { return token, nil })
	return &cp
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (*domain.LoginResponse, error) {
	var resp domain.LoginResponse
	if err := c.post(ctx, "/auth/login", loginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, fmt.Errorf("client.Login: %w", rejected(err))
	}
	if resp.Token == "" {
		return nil, fmt.Errorf("client.Login: %w", ErrMissingToken)
	}
	return &resp, nil
}

// Register creates a new account. The server answers 201 with no token;
// the caller signs in separately.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	if err := c.post(ctx, "/auth/register", req, nil); err != nil {
		return fmt.Errorf("client.Register: %w", rejected(err))
	}
	return nil
}

// GetUser returns the authenticated user's record.
func (c *Client) GetUser(ctx context.Context) (*domain.User, error) {
	var u domain.User
	if err := c.doRequest(ctx, http.MethodGet, "/auth/user", nil, &u, true); err != nil {
		return nil, fmt.Errorf("client.GetUser: %w", err)
	}
	return &u, nil
}

// rejected tags 4xx answers from the credential endpoints so forms can
// show the server's message inline.
func rejected(err error) error {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.StatusCode >= 400 && httpErr.StatusCode < 500 {
		return fmt.Errorf("%w: %w", ErrCredentialsRejected, err)
	}
	return err
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.doRequest(ctx, http.MethodPost, path, body, out, false)
}

func (c *Client) bearer() (string, error) {
	if c.tokens == nil {
		return "", fmt.Errorf("%w: no token source", ErrUnauthorized)
	}
	tok, err := c.tokens.Token()
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	if tok == "" {
		return "", fmt.Errorf("%w: no token", ErrUnauthorized)
	}
	return tok, nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any, out any, protected bool) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, uuid.NewString())
	if protected {
		tok, err := c.bearer()
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode >= 400 {
		return readHTTPError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func readHTTPError(resp *http.Response) error {
	respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB max error body
	if readErr != nil {
		return &HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", readErr)}
	}
	var apiErr struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(respBody, &apiErr) == nil {
		switch {
		case apiErr.Message != "":
			return &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Message}
		case apiErr.Error != "":
			return &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Error}
		}
	}
	return &HTTPError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
}
