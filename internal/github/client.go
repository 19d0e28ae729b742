package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/paraflightlog/wingadmin"
)

// ContentClient abstracts single-attempt HTTP communication with the GitHub
// Contents API. Each call is one request; the Gateway layers the retry
// protocol on top. Implementations must be safe for concurrent use.
type ContentClient interface {
	// GetContent fetches the latest bytes and version tag for a path.
	// Every call carries a cache-defeating query parameter: the API is
	// served through a caching layer that ignores standard cache-control
	// headers for cross-origin reads, and a stale tag here widens the
	// conflict window.
	GetContent(ctx context.Context, path string) (*ContentInfo, error)

	// PutContent performs a tagged compare-and-swap write. An empty sha
	// asserts "create new". Returns the new version tag.
	PutContent(ctx context.Context, path string, content []byte, sha, message string) (string, error)

	// DeleteContent removes a file at a specific version tag.
	DeleteContent(ctx context.Context, path, sha, message string) error

	// FetchRaw reads the published copy of a path through the
	// unauthenticated raw-content distribution, cache-busted.
	FetchRaw(ctx context.Context, path string) ([]byte, error)

	// GetUser validates the current credential and returns the login name.
	GetUser(ctx context.Context) (string, error)
}

// ContentInfo is a document's decoded bytes plus its version tag.
type ContentInfo struct {
	Content []byte
	SHA     string
}

// Options configures an HTTPClient.
type Options struct {
	Owner      string
	Repo       string
	Branch     string
	APIBaseURL string // default https://api.github.com
	RawBaseURL string // default https://raw.githubusercontent.com
	Tokens     wingadmin.TokenSource
	HTTPClient *http.Client
	Now        func() time.Time // cache-buster timestamps; defaults to time.Now
}

// HTTPClient implements ContentClient using net/http.
type HTTPClient struct {
	owner      string
	repo       string
	branch     string
	apiBaseURL string
	rawBaseURL string
	tokens     wingadmin.TokenSource
	httpClient *http.Client
	now        func() time.Time
}

// NewHTTPClient creates a new Contents API client.
func NewHTTPClient(opts Options) *HTTPClient {
	apiBase := strings.TrimSuffix(strings.TrimSpace(opts.APIBaseURL), "/")
	if apiBase == "" {
		apiBase = "https://api.github.com"
	}
	rawBase := strings.TrimSuffix(strings.TrimSpace(opts.RawBaseURL), "/")
	if rawBase == "" {
		rawBase = "https://raw.githubusercontent.com"
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	tokens := opts.Tokens
	if tokens == nil {
		tokens = wingadmin.NoToken
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &HTTPClient{
		owner:      opts.Owner,
		repo:       opts.Repo,
		branch:     opts.Branch,
		apiBaseURL: apiBase,
		rawBaseURL: rawBase,
		tokens:     tokens,
		httpClient: httpClient,
		now:        now,
	}
}

func (c *HTTPClient) contentURL(path string) string {
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s", c.apiBaseURL, c.owner, c.repo, encodePath(path))
}

// encodePath escapes each path segment while keeping separators.
func encodePath(path string) string {
	segments := strings.Split(path, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

func (c *HTTPClient) setHeaders(ctx context.Context, req *http.Request) error {
	token, err := c.tokens(ctx)
	if err != nil {
		return err
	}
	if strings.TrimSpace(token) != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "wingadmin-client/1.0")
	return nil
}

func newTransportError(op string, statusCode int, body []byte) *wingadmin.TransportError {
	msg := strings.TrimSpace(string(body))
	var parsed errorResponse
	if json.Unmarshal(body, &parsed) == nil && parsed.Message != "" {
		msg = parsed.Message
	}
	if len(msg) > 200 {
		msg = msg[:200] + "..."
	}
	err := fmt.Errorf("HTTP %d: %s", statusCode, msg)
	if statusCode == http.StatusConflict || statusCode == http.StatusUnprocessableEntity {
		// 409 is a sha race; 422 a stale or missing sha. Both mean the tag
		// no longer matches the remote document.
		err = fmt.Errorf("%w: HTTP %d: %s", wingadmin.ErrVersionConflict, statusCode, msg)
	}
	return &wingadmin.TransportError{Operation: op, StatusCode: statusCode, Err: err}
}

func (c *HTTPClient) GetContent(ctx context.Context, path string) (*ContentInfo, error) {
	// The "_" timestamp defeats intermediate caches; ref pins the branch.
	reqURL := fmt.Sprintf("%s?ref=%s&_=%d", c.contentURL(path), url.QueryEscape(c.branch), c.now().UnixMilli())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &wingadmin.TransportError{Operation: "get_content", Err: err}
	}
	if err := c.setHeaders(ctx, req); err != nil {
		return nil, &wingadmin.TransportError{Operation: "get_content", Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &wingadmin.TransportError{Operation: "get_content", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("get_content %s: %w", path, wingadmin.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, newTransportError("get_content", resp.StatusCode, body)
	}

	var content contentResponse
	if err := json.NewDecoder(resp.Body).Decode(&content); err != nil {
		return nil, &wingadmin.TransportError{Operation: "get_content", Err: err}
	}

	data, err := decodeContent(content)
	if err != nil {
		return nil, &wingadmin.TransportError{Operation: "get_content", Err: err}
	}
	return &ContentInfo{Content: data, SHA: content.SHA}, nil
}

// decodeContent decodes the base64 payload. The API inserts newlines every
// 60 characters.
func decodeContent(content contentResponse) ([]byte, error) {
	if content.Encoding != "" && content.Encoding != "base64" {
		return nil, fmt.Errorf("unsupported content encoding %q", content.Encoding)
	}
	compact := strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' {
			return -1
		}
		return r
	}, content.Content)
	return base64.StdEncoding.DecodeString(compact)
}

func (c *HTTPClient) PutContent(ctx context.Context, path string, content []byte, sha, message string) (string, error) {
	body, err := json.Marshal(putRequest{
		Message: message,
		Content: base64.StdEncoding.EncodeToString(content),
		Branch:  c.branch,
		SHA:     sha,
	})
	if err != nil {
		return "", &wingadmin.TransportError{Operation: "put_content", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.contentURL(path), bytes.NewReader(body))
	if err != nil {
		return "", &wingadmin.TransportError{Operation: "put_content", Err: err}
	}
	if err := c.setHeaders(ctx, req); err != nil {
		return "", &wingadmin.TransportError{Operation: "put_content", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &wingadmin.TransportError{Operation: "put_content", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return "", newTransportError("put_content", resp.StatusCode, respBody)
	}

	var result putResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", &wingadmin.TransportError{Operation: "put_content", Err: err}
	}
	if result.Content == nil {
		return "", &wingadmin.TransportError{Operation: "put_content", Err: fmt.Errorf("response missing content")}
	}
	return result.Content.SHA, nil
}

func (c *HTTPClient) DeleteContent(ctx context.Context, path, sha, message string) error {
	body, err := json.Marshal(deleteRequest{
		Message: message,
		SHA:     sha,
		Branch:  c.branch,
	})
	if err != nil {
		return &wingadmin.TransportError{Operation: "delete_content", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.contentURL(path), bytes.NewReader(body))
	if err != nil {
		return &wingadmin.TransportError{Operation: "delete_content", Err: err}
	}
	if err := c.setHeaders(ctx, req); err != nil {
		return &wingadmin.TransportError{Operation: "delete_content", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &wingadmin.TransportError{Operation: "delete_content", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("delete_content %s: %w", path, wingadmin.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return newTransportError("delete_content", resp.StatusCode, respBody)
	}
	return nil
}

func (c *HTTPClient) FetchRaw(ctx context.Context, path string) ([]byte, error) {
	// The raw distribution does not honor cache-control overrides for this
	// use case; the "t" parameter forces a fresh object.
	reqURL := fmt.Sprintf("%s/%s/%s/%s/%s?t=%d",
		c.rawBaseURL, c.owner, c.repo, url.PathEscape(c.branch), encodePath(path), c.now().UnixMilli())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &wingadmin.TransportError{Operation: "fetch_raw", Err: err}
	}
	req.Header.Set("User-Agent", "wingadmin-client/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &wingadmin.TransportError{Operation: "fetch_raw", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("fetch_raw %s: %w", path, wingadmin.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, newTransportError("fetch_raw", resp.StatusCode, body)
	}
	return io.ReadAll(resp.Body)
}

func (c *HTTPClient) GetUser(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBaseURL+"/user", nil)
	if err != nil {
		return "", &wingadmin.TransportError{Operation: "get_user", Err: err}
	}
	if err := c.setHeaders(ctx, req); err != nil {
		return "", &wingadmin.TransportError{Operation: "get_user", Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &wingadmin.TransportError{Operation: "get_user", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", newTransportError("get_user", resp.StatusCode, body)
	}

	var user userResponse
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return "", &wingadmin.TransportError{Operation: "get_user", Err: err}
	}
	return user.Login, nil
}
