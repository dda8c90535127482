// Package jupyter reads Dockerfiles from and saves notebooks to a running
// Jupyter Server through its contents REST API.
package jupyter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	cerrors "git.home.luguber.info/inful/dockbook/internal/errors"
	"git.home.luguber.info/inful/dockbook/internal/logfields"
	"git.home.luguber.info/inful/dockbook/internal/notebook"
	"git.home.luguber.info/inful/dockbook/internal/retry"
	"git.home.luguber.info/inful/dockbook/internal/source"
	"git.home.luguber.info/inful/dockbook/internal/version"
)

const contentsEndpoint = "api/contents"

// Model is the subset of a contents API model used here.
type Model struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Type    string `json:"type"` // "file", "directory" or "notebook"
	Format  string `json:"format,omitempty"`
	Content any    `json:"content,omitempty"`
	Size    *int64 `json:"size,omitempty"`
}

// saveModel is the PUT body for saving a text file.
type saveModel struct {
	Type    string `json:"type"`
	Format  string `json:"format"`
	Content string `json:"content"`
}

// Client talks to the contents API of one server. It implements source.Backend.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	indent     int
	retry      retry.Policy
}

var _ source.Backend = (*Client)(nil)

// NewClient creates a contents API client. token may be empty for servers
// running without authentication.
func NewClient(baseURL, token string, timeout time.Duration, indent int) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, cerrors.ConfigInvalid("jupyter.base_url", fmt.Sprintf("invalid URL %q", baseURL))
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		indent:     indent,
		retry:      retry.None(),
	}, nil
}

// WithRetry retries transient failures (connection errors, 502, 503, 504)
// according to p. Both GET and the whole-file PUT are idempotent.
func (c *Client) WithRetry(p retry.Policy) *Client {
	c.retry = p
	return c
}

func (c *Client) Name() string { return "jupyter" }

// Stat fetches the model of p without its content.
func (c *Client) Stat(ctx context.Context, p string) (source.Info, error) {
	var m Model
	if err := c.do(ctx, http.MethodGet, p, url.Values{"content": {"0"}}, nil, &m); err != nil {
		return source.Info{}, err
	}
	info := source.Info{Path: p, IsDir: m.Type == "directory"}
	if m.Size != nil {
		info.Size = *m.Size
	}
	return info, nil
}

// ReadText fetches p as a text file.
func (c *Client) ReadText(ctx context.Context, p string) (string, error) {
	q := url.Values{"type": {"file"}, "format": {"text"}, "content": {"1"}}
	var m Model
	if err := c.do(ctx, http.MethodGet, p, q, nil, &m); err != nil {
		return "", err
	}
	text, ok := m.Content.(string)
	if !ok {
		return "", cerrors.BackendError(c.baseURL, fmt.Errorf("content of %s is not text", p))
	}
	return text, nil
}

// WriteDocument saves doc at p as a text file, the way the JupyterLab
// frontend saves files it did not open itself.
func (c *Client) WriteDocument(ctx context.Context, p string, doc *notebook.Document) error {
	data, err := notebook.Marshal(doc, c.indent)
	if err != nil {
		return cerrors.InternalError("encode notebook", err)
	}
	body := saveModel{Type: "file", Format: "text", Content: string(data)}
	if err := c.do(ctx, http.MethodPut, p, nil, body, nil); err != nil {
		if cerrors.IsNotFound(err) {
			return cerrors.WriteFailed(p, err)
		}
		return err
	}
	return nil
}

// TreeURL returns the JupyterLab URL that opens p.
func (c *Client) TreeURL(p string) string {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return c.baseURL
	}
	u.Path = path.Join("/", u.Path, "lab", "tree", strings.TrimPrefix(p, "/"))
	if c.token != "" {
		u.RawQuery = url.Values{"token": {c.token}}.Encode()
	}
	return u.String()
}

// do sends one contents API request, retrying transient failures.
func (c *Client) do(ctx context.Context, method, p string, query url.Values, body, result any) error {
	onRetry := func(attempt int, delay time.Duration, err error) {
		slog.Warn("Retrying contents API request",
			slog.String("method", method),
			logfields.Path(p),
			slog.Int("attempt", attempt),
			slog.Duration("delay", delay),
			logfields.Error(err))
	}
	return c.retry.Do(ctx, isTransient, onRetry, func() error {
		req, err := c.newRequest(ctx, method, p, query, body)
		if err != nil {
			return err
		}
		return c.doRequest(req, p, result)
	})
}

// isTransient reports whether a request error is worth retrying.
func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	ce, ok := cerrors.As(err)
	if !ok || ce.Category != cerrors.CategoryNetwork {
		return false
	}
	code, hasCode := ce.Context["code"].(int)
	if !hasCode {
		// transport error, no response received
		return true
	}
	switch code {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

func (c *Client) newRequest(ctx context.Context, method, p string, query url.Values, body any) (*http.Request, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, cerrors.ConfigInvalid("jupyter.base_url", err.Error())
	}
	u.Path = path.Join("/", u.Path, contentsEndpoint, strings.TrimPrefix(p, "/"))
	if query != nil {
		u.RawQuery = query.Encode()
	}

	reader := io.Reader(http.NoBody)
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, cerrors.InternalError("marshal request body", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, cerrors.BackendError(u.String(), err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}
	req.Header.Set("User-Agent", "dockbook/"+version.Version)
	return req, nil
}

func (c *Client) doRequest(req *http.Request, p string, result any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return cerrors.BackendError(req.URL.String(), err).
			WithContext("method", req.Method)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return cerrors.ResourceNotFound(p, fmt.Errorf("%s %s: %s", req.Method, req.URL.Path, resp.Status))
	}
	if resp.StatusCode >= 400 {
		// Read limited body for diagnostics
		limitedBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		bodyStr := strings.ReplaceAll(string(limitedBody), "\n", " ")
		return cerrors.BackendError(req.URL.String(), fmt.Errorf("contents API error: %s", resp.Status)).
			WithContext("method", req.Method).
			WithContext("code", resp.StatusCode).
			WithContext("response", bodyStr)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return cerrors.BackendError(req.URL.String(), fmt.Errorf("decode response: %w", err)).
				WithContext("code", resp.StatusCode)
		}
	}
	return nil
}
