// Package gateway wraps the company's remote ERP API. The dashboard is a
// thin client: it exchanges credentials for a bearer token and identity, and
// every module fetches its own data with that token.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/identity"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/platform/httpx"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/shared"
)

// Client talks to the remote ERP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a new client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string            `json:"token"`
	User  identity.Identity `json:"user"`
}

// Login exchanges credentials for a bearer token and identity. A rejection
// maps to shared.ErrInvalidCredentials; there is no retry, the caller
// surfaces the failure verbatim on the login form.
func (c *Client) Login(ctx context.Context, username, password string) (string, *identity.Identity, error) {
	payload, err := json.Marshal(loginRequest{Username: username, Password: password})
	if err != nil {
		return "", nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login", bytes.NewReader(payload))
	if err != nil {
		return "", nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("gateway: login: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", nil, shared.ErrInvalidCredentials
	case resp.StatusCode >= 400:
		return "", nil, fmt.Errorf("gateway: login returned status %d", resp.StatusCode)
	}

	var out loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", nil, fmt.Errorf("gateway: decode login response: %w", err)
	}
	if out.Token == "" {
		return "", nil, fmt.Errorf("gateway: login response missing token")
	}
	return out.Token, &out.User, nil
}

// Logout reports a token as invalidated. Callers treat this as best effort;
// any response is as good as no response.
func (c *Client) Logout(ctx context.Context, token string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/logout", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway: logout: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("gateway: logout returned status %d", resp.StatusCode)
	}
	return nil
}

// GetJSON fetches path with the bearer token and decodes the body into out.
func (c *Client) GetJSON(ctx context.Context, token, path string, out any) error {
	return c.do(ctx, http.MethodGet, token, path, nil, out)
}

// PostJSON posts body as JSON to path with the bearer token.
func (c *Client) PostJSON(ctx context.Context, token, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, token, path, body, out)
}

func (c *Client) do(ctx context.Context, method, token, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway: %s %s: %w", method, path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return httpx.ErrUnauthorized
	case resp.StatusCode == http.StatusForbidden:
		return httpx.ErrForbidden
	case resp.StatusCode == http.StatusNotFound:
		return httpx.ErrNotFound
	case resp.StatusCode >= 400:
		return fmt.Errorf("gateway: %s %s returned status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("gateway: decode %s response: %w", path, err)
	}
	return nil
}
