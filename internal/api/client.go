package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/vowhq/vowctl/internal/config"
	"github.com/vowhq/vowctl/internal/logger"
	"github.com/vowhq/vowctl/internal/session"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const refreshPath = "/auth/refresh-token"

// buildError marks a failure assembling the request before any bytes left the
// process, such as an unreadable upload file. It surfaces with its own
// message, never as a connectivity problem.
type buildError struct{ err error }

func (e *buildError) Error() string { return e.err.Error() }

func (e *buildError) Unwrap() error { return e.err }

// Client is the single choke point for all backend communication. It attaches
// bearer credentials from the session store, transparently refreshes an
// expired access token at most once per logical request, and converts every
// failure into a normalized *Error.
type Client struct {
	httpClient *http.Client
	baseURL    string
	store      session.Store

	// onSessionExpired is the host application's redirect-to-sign-in
	// equivalent, invoked after the token pair has been cleared.
	onSessionExpired func()
}

type ClientParams struct {
	fx.In

	Config *config.APIConfig
	Store  session.Store
}

// NewClient creates a new Client with the configured base URL and timeout.
func NewClient(params ClientParams) *Client {
	timeout := params.Config.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    params.Config.BaseURL,
		store:      params.Store,
	}
}

// SetTimeout sets the timeout for the HTTP client
func (c *Client) SetTimeout(timeout time.Duration) {
	c.httpClient.Timeout = timeout
}

// OnSessionExpired registers the callback run when the session becomes
// unrecoverable. The callback fires after the store has been cleared.
func (c *Client) OnSessionExpired(fn func()) {
	c.onSessionExpired = fn
}

// Do executes a request. On 401 it exchanges the refresh token and retries
// the original request exactly once; a second 401, a rejected refresh, or a
// missing refresh token all end the session. Any other error status skips the
// refresh path and is normalized directly.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	resp, err := c.dispatch(ctx, req)
	if err != nil {
		return nil, c.dispatchError(req, err)
	}

	if resp.StatusCode == http.StatusUnauthorized && !req.NoRefresh {
		creds, ok := c.store.Credentials()
		if !ok || creds.RefreshToken == "" {
			return nil, c.expireSession(req, resp)
		}
		if err := c.refresh(ctx, creds.RefreshToken); err != nil {
			return nil, c.expireSession(req, resp)
		}
		resp, err = c.dispatch(ctx, req)
		if err != nil {
			return nil, c.dispatchError(req, err)
		}
		if resp.StatusCode == http.StatusUnauthorized {
			return nil, c.expireSession(req, resp)
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logFailure(req, resp.StatusCode, resp.Body, nil)
		return nil, normalizeError(resp.StatusCode, resp.Body, nil)
	}

	return resp, nil
}

// JSON executes a request and decodes the enveloped payload into out. A body
// without the {status, message, data} wrapper is decoded directly.
func (c *Client) JSON(ctx context.Context, req Request, out any) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(resp.Body)) == 0 {
		return nil
	}

	var envelope Envelope
	if err := json.Unmarshal(resp.Body, &envelope); err == nil && envelope.Data != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return &Error{Status: resp.StatusCode, Message: "the server returned an unexpected response", cause: err}
		}
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return &Error{Status: resp.StatusCode, Message: "the server returned an unexpected response", cause: err}
	}
	return nil
}

// dispatchError normalizes a dispatch failure. Only errors from the transport
// itself are reported as connectivity problems; a request that could not be
// assembled keeps its own message.
func (c *Client) dispatchError(req Request, err error) *Error {
	c.logFailure(req, 0, nil, err)
	var build *buildError
	if errors.As(err, &build) {
		return normalizeError(0, nil, build.err)
	}
	return &Error{Message: "could not reach the server, please check your connection", cause: err}
}

// dispatch builds and executes a single HTTP attempt. Bodies are rebuilt per
// attempt so the refresh retry never reuses a consumed reader.
func (c *Client) dispatch(ctx context.Context, req Request) (*Response, error) {
	body, contentType, err := c.buildBody(req)
	if err != nil {
		return nil, &buildError{err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.buildURL(req), body)
	if err != nil {
		return nil, &buildError{err: fmt.Errorf("failed to create HTTP request: %w", err)}
	}

	for key, value := range req.Header {
		httpReq.Header.Set(key, value)
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("Accept", "application/json")

	// Attach the bearer token if a session exists; otherwise go out
	// unauthenticated.
	if creds, ok := c.store.Credentials(); ok {
		httpReq.Header.Set("Authorization", "Bearer "+creds.AccessToken)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			logger.Warn("failed to close response body", zap.Error(closeErr))
		}
	}()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       bodyBytes,
		Header:     resp.Header,
	}, nil
}

// refresh exchanges the refresh token for a new pair and stores it
// atomically. Any failure here is terminal for the session; the caller never
// re-enters the refresh path.
func (c *Client) refresh(ctx context.Context, refreshToken string) error {
	resp, err := c.dispatch(ctx, Request{
		Method:    http.MethodPost,
		Path:      refreshPath,
		Body:      map[string]string{"refreshToken": refreshToken},
		NoRefresh: true,
	})
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return normalizeError(resp.StatusCode, resp.Body, nil)
	}

	var pair session.Credentials
	var envelope Envelope
	if err := json.Unmarshal(resp.Body, &envelope); err == nil && envelope.Data != nil {
		err = json.Unmarshal(envelope.Data, &pair)
		if err != nil {
			return fmt.Errorf("failed to decode refresh response: %w", err)
		}
	} else if err := json.Unmarshal(resp.Body, &pair); err != nil {
		return fmt.Errorf("failed to decode refresh response: %w", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		return fmt.Errorf("refresh response missing token pair")
	}
	return c.store.SetCredentials(pair)
}

func (c *Client) expireSession(req Request, resp *Response) *Error {
	if err := c.store.Clear(); err != nil {
		logger.Warn("failed to clear session state", zap.Error(err))
	}
	c.logFailure(req, resp.StatusCode, resp.Body, nil)
	if c.onSessionExpired != nil {
		c.onSessionExpired()
	}
	return &Error{
		Status:  http.StatusUnauthorized,
		Message: "your session has expired, please sign in again",
		cause:   ErrSessionExpired,
	}
}

// logFailure records every failed request for diagnostics. It never affects
// control flow.
func (c *Client) logFailure(req Request, status int, body []byte, err error) {
	fields := []zap.Field{
		zap.String("method", req.Method),
		zap.String("path", req.Path),
		zap.Int("status", status),
	}
	if len(body) > 0 {
		fields = append(fields, zap.ByteString("body", body))
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	logger.Error("request failed", fields...)
}

func (c *Client) buildURL(req Request) string {
	u := c.baseURL + req.Path
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}
	return u
}

func (c *Client) buildBody(req Request) (io.Reader, string, error) {
	if len(req.Files) > 0 || len(req.Fields) > 0 {
		return c.buildMultipartBody(req)
	}
	if req.Body == nil {
		return nil, "", nil
	}
	jsonData, err := json.Marshal(req.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal request body: %w", err)
	}
	return bytes.NewBuffer(jsonData), "application/json", nil
}

func (c *Client) buildMultipartBody(req Request) (io.Reader, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for name, path := range req.Files {
		file, err := os.Open(path)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open %s: %w", name, err)
		}
		part, err := writer.CreateFormFile(name, filepath.Base(path))
		if err != nil {
			file.Close()
			return nil, "", fmt.Errorf("failed to create form file: %w", err)
		}
		if _, err := io.Copy(part, file); err != nil {
			file.Close()
			return nil, "", fmt.Errorf("failed to copy file: %w", err)
		}
		if err := file.Close(); err != nil {
			return nil, "", fmt.Errorf("failed to close %s: %w", path, err)
		}
	}

	for field, value := range req.Fields {
		if err := writer.WriteField(field, value); err != nil {
			return nil, "", fmt.Errorf("failed to write form field: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	return body, writer.FormDataContentType(), nil
}
