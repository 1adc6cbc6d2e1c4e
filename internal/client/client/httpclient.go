package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/intervals/internal/models"
)

// HTTPClient talks JSON over HTTP to the sync backend. It is not safe for
// concurrent use: the sync engine serializes access to it.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	token   string
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) Token() string         { return c.token }
func (c *HTTPClient) SetToken(token string) { c.token = token }

// do sends a JSON request and decodes a JSON response into out (which may
// be nil). Transport failures map to ErrUnavailable, HTTP error statuses to
// the matching sentinel.
func (c *HTTPClient) do(ctx context.Context, method, path string, body any, out any) error {
	var buf io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		buf = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, buf)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.statusError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: malformed response: %v", ErrUnavailable, err)
		}
	}
	return nil
}

func (c *HTTPClient) statusError(resp *http.Response) error {
	var body models.ErrorResponse
	_ = json.NewDecoder(resp.Body).Decode(&body)

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusTooManyRequests:
		return ErrRateLimited
	case http.StatusNotFound:
		return ErrNotFound
	default:
		if body.Error != "" {
			return fmt.Errorf("server error (%d): %s", resp.StatusCode, body.Error)
		}
		return fmt.Errorf("server error (%d)", resp.StatusCode)
	}
}

// Ping checks that the backend answers its health probe.
func (c *HTTPClient) Ping(ctx context.Context) error {
	var out struct {
		Status string `json:"status"`
	}
	return c.do(ctx, http.MethodGet, "/api/health", nil, &out)
}

func (c *HTTPClient) TestConnection(ctx context.Context, passwordHash string) (*models.TestConnectionResponse, error) {
	var resp models.TestConnectionResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/test", models.TestConnectionRequest{PasswordHash: passwordHash}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Login(ctx context.Context, profile string, passwordHash string) (string, error) {
	var resp models.AuthResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/init", models.AuthRequest{
		ProfileName:  profile,
		PasswordHash: passwordHash,
	}, &resp)
	if err != nil {
		return "", err
	}
	c.token = resp.Token
	return resp.Token, nil
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	if c.token == "" {
		return nil
	}
	err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
	c.token = ""
	return err
}

func (c *HTTPClient) Profiles(ctx context.Context, passwordHash string) ([]string, error) {
	var resp models.ProfilesResponse
	err := c.do(ctx, http.MethodPost, "/api/profiles", models.ProfilesRequest{PasswordHash: passwordHash}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Profiles, nil
}

func (c *HTTPClient) Sync(ctx context.Context, payload *models.SyncPayload) (*models.SyncPayload, error) {
	var resp models.SyncPayload
	if err := c.do(ctx, http.MethodPost, "/api/sync", payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) GetTimer(ctx context.Context, id string) (*models.Timer, error) {
	var resp models.Timer
	if err := c.do(ctx, http.MethodGet, "/api/timers/"+id, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) DeleteTimer(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/timers/"+id, nil, nil)
}

func (c *HTTPClient) DeleteHistoryEntry(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/history/"+id, nil, nil)
}
