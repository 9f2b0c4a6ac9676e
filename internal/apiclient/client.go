package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/ariefcatur/lexi-storefront/internal/durable"
	"github.com/ariefcatur/lexi-storefront/internal/metrics"
	"github.com/ariefcatur/lexi-storefront/internal/shop"
	"go.uber.org/zap"
)

// ErrUnauthorized matches any 401 or 403 answer from the API.
var ErrUnauthorized = errors.New("unauthorized")

type APIError struct {
	Method string
	Path   string
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Detail)
}

func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && (e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden)
}

// UnauthorizedFunc is called by the client whenever the API rejects a request
// with 401 or 403. The hosting shell decides what that means.
type UnauthorizedFunc func(ctx context.Context, status int)

type Client struct {
	baseURL        string
	http           *http.Client
	store          durable.Storage
	onUnauthorized UnauthorizedFunc
	log            *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithUnauthorizedHandler(fn UnauthorizedFunc) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l.Named("apiclient") }
}

// New returns a client whose bearer token is read from store on every
// authenticated request.
func New(baseURL string, store durable.Storage, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		store:   store,
		log:     zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type request struct {
	method string
	path   string
	auth   bool
	body   io.Reader
	ctype  string
}

func (c *Client) doJSON(ctx context.Context, method, path string, auth bool, in, out any) error {
	r := request{method: method, path: path, auth: auth}
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		r.body = bytes.NewReader(b)
		r.ctype = "application/json"
	}
	return c.do(ctx, r, out)
}

func (c *Client) doMultipart(ctx context.Context, method, path string, fields map[string]string, img *shop.Image, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return fmt.Errorf("failed to write field %s: %w", k, err)
		}
	}
	if img != nil {
		fw, err := mw.CreateFormFile("image", img.Filename)
		if err != nil {
			return fmt.Errorf("failed to create image part: %w", err)
		}
		if _, err := io.Copy(fw, img.Body); err != nil {
			return fmt.Errorf("failed to copy image: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("failed to close multipart body: %w", err)
	}
	return c.do(ctx, request{method: method, path: path, auth: true, body: &buf, ctype: mw.FormDataContentType()}, out)
}

func (c *Client) do(ctx context.Context, r request, out any) error {
	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, r.body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if r.ctype != "" {
		req.Header.Set("Content-Type", r.ctype)
	}
	req.Header.Set("Accept", "application/json")
	if r.auth {
		if err := c.authorize(ctx, req); err != nil {
			return err
		}
	}

	endpoint := endpointLabel(r.path)
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RecordUpstream(r.method, endpoint, 0, time.Since(start))
		select {
		case <-ctx.Done():
			return fmt.Errorf("request was cancelled: %w", ctx.Err())
		default:
			return fmt.Errorf("failed to execute request: %w", err)
		}
	}
	defer resp.Body.Close()
	metrics.RecordUpstream(r.method, endpoint, resp.StatusCode, time.Since(start))
	c.log.Debug("api call",
		zap.String("method", r.method),
		zap.String("path", r.path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)),
	)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Method: r.method, Path: r.path, Status: resp.StatusCode, Detail: detailOf(body, resp.StatusCode)}
		if errors.Is(apiErr, ErrUnauthorized) && c.onUnauthorized != nil {
			c.onUnauthorized(ctx, resp.StatusCode)
		}
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

func (c *Client) authorize(ctx context.Context, req *http.Request) error {
	if c.store == nil {
		return nil
	}
	token, ok, err := c.store.Get(ctx, durable.KeyAccessToken)
	if err != nil {
		return fmt.Errorf("read access token: %w", err)
	}
	if ok && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return nil
}

// detailOf extracts the API's "detail" message, falling back to the raw
// body or the status text.
func detailOf(body []byte, status int) string {
	var payload struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Detail != "" {
			return payload.Detail
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	if s := string(bytes.TrimSpace(body)); s != "" && len(s) <= 512 {
		return s
	}
	return http.StatusText(status)
}

var numericSegment = regexp.MustCompile(`/\d+/`)

// endpointLabel collapses ids and drops the query so metric labels stay bounded.
func endpointLabel(path string) string {
	path, _, _ = strings.Cut(path, "?")
	return numericSegment.ReplaceAllString(path, "/{id}/")
}
