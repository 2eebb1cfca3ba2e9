package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"shopfloor-console/internal/auth"
	"shopfloor-console/internal/infra/utils"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/singleflight"
)

const (
	_defaultTimeout = 30 * time.Second
	_refreshPath    = "/api/auth/refresh"
	_loginPath      = "/api/user/login"
)

// Client wraps every call to the scheduling backend. It attaches the
// session's bearer token, and on a 401 performs exactly one token
// refresh before replaying the original request. Login and refresh
// themselves are never replayed.
type Client struct {
	baseURL      string
	http         *http.Client
	sessions     *auth.Manager
	refreshGroup singleflight.Group
}

type ClientOpts struct {
	BaseURL  string
	Timeout  time.Duration
	Sessions *auth.Manager
}

func NewClient(opts ClientOpts) *Client {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = _defaultTimeout
	}

	return &Client{
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		http:     &http.Client{Timeout: timeout},
		sessions: opts.Sessions,
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) patch(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPatch, path, nil, body, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
	}

	return c.send(ctx, method, path, query, payload, "application/json", out, true)
}

// send performs one attempt plus at most one refresh-and-replay.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, payload []byte, contentType string, out any, allowRefresh bool) error {
	ctx, span := otel.Tracer("shopfloor-console/backend").Start(ctx, fmt.Sprintf("%s %s", method, path))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.request.method", method),
		attribute.String("url.path", path),
	)

	resp, err := c.attempt(ctx, method, path, query, payload, contentType)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode == http.StatusUnauthorized && allowRefresh && path != _loginPath && path != _refreshPath {
		io.Copy(io.Discard, resp.Body)
		if err := c.refreshToken(ctx); err != nil {
			return err
		}
		return c.send(ctx, method, path, query, payload, contentType, out, false)
	}

	if resp.StatusCode >= 400 {
		apiErr := decodeAPIError(resp)
		span.SetStatus(codes.Error, apiErr.Detail)
		return apiErr
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response body: %w", err)
	}

	return nil
}

func (c *Client) attempt(ctx context.Context, method, path string, query url.Values, payload []byte, contentType string) (*http.Response, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	if payload != nil {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", utils.GenerateUUID())
	if token, ok := c.sessions.Token(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling backend: %w", err)
	}

	return resp, nil
}

// refreshToken trades the current token for a fresh one. Concurrent 401s
// collapse onto a single refresh call. Failure ends the session.
func (c *Client) refreshToken(ctx context.Context) error {
	_, err, _ := c.refreshGroup.Do("refresh", func() (any, error) {
		var reply struct {
			AccessToken string `json:"access_token"`
		}
		if err := c.send(ctx, http.MethodPost, _refreshPath, nil, nil, "", &reply, false); err != nil {
			return nil, err
		}
		return reply.AccessToken, c.sessions.SetToken(ctx, reply.AccessToken)
	})
	if err != nil {
		slog.Warn("token refresh failed, ending session", slog.Any("error", err))
		if logoutErr := c.sessions.Logout(ctx); logoutErr != nil {
			slog.Error("clearing session after failed refresh", slog.Any("error", logoutErr))
		}
		return fmt.Errorf("%w: session expired", ErrUnauthorized)
	}

	return nil
}

func (c *Client) postMultipart(ctx context.Context, path, filename string, file io.Reader, out any) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("building multipart form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("reading upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("finalizing multipart form: %w", err)
	}

	return c.send(ctx, http.MethodPost, path, nil, buf.Bytes(), writer.FormDataContentType(), out, true)
}

func decodeAPIError(resp *http.Response) *APIError {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	var body struct {
		Detail string `json:"detail"`
	}
	detail := strings.TrimSpace(string(raw))
	if err := json.Unmarshal(raw, &body); err == nil && body.Detail != "" {
		detail = body.Detail
	}

	return &APIError{StatusCode: resp.StatusCode, Detail: detail}
}
