package arc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/lysyi3m/wire-comb/app/metrics"
)

// Response is the outcome of a call that reached the server.
type Response struct {
	StatusCode int
	Body       []byte
}

func (r Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode <= 299
}

// IdentifierInUse reports whether a create was refused because the id exists.
func (r Response) IdentifierInUse() bool {
	return r.StatusCode == http.StatusConflict || bytes.Contains(bytes.ToLower(r.Body), []byte("already in use"))
}

// Err returns nil for successful responses.
func (r Response) Err() error {
	if r.OK() {
		return nil
	}
	body := strings.TrimSpace(string(r.Body))
	if len(body) > 200 {
		body = body[:200]
	}
	return fmt.Errorf("HTTP error: %d %s", r.StatusCode, body)
}

// Client talks to the story, operations, circulation and photo APIs of one organization.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	priority   string
	userAgent  string
}

// NewClient creates a client. A "{org}" placeholder in baseURL is replaced with orgID.
func NewClient(httpClient *http.Client, baseURL, orgID, token, priority, userAgent string) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(strings.ReplaceAll(baseURL, "{org}", orgID), "/"),
		token:      token,
		priority:   priority,
		userAgent:  userAgent,
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) CreateStory(ctx context.Context, doc any) (Response, error) {
	return c.send(ctx, "story", http.MethodPost, "/draft/v1/story", doc)
}

func (c *Client) GetStory(ctx context.Context, id string) (Response, error) {
	return c.send(ctx, "story", http.MethodGet, "/draft/v1/story/"+url.PathEscape(id), nil)
}

func (c *Client) UpdateDraftRevision(ctx context.Context, id string, revision any) (Response, error) {
	return c.send(ctx, "story", http.MethodPut, "/draft/v1/story/"+url.PathEscape(id)+"/revision/draft", revision)
}

func (c *Client) ScheduleDelete(ctx context.Context, operation any) (Response, error) {
	return c.send(ctx, "operations", http.MethodPut, "/contentops/v1/delete", operation)
}

func (c *Client) UpdateCirculation(ctx context.Context, id, website string, circulation any) (Response, error) {
	path := "/draft/v1/story/" + url.PathEscape(id) + "/circulation/" + url.PathEscape(website)
	return c.send(ctx, "circulation", http.MethodPut, path, circulation)
}

func (c *Client) CreatePhoto(ctx context.Context, id string, doc any) (Response, error) {
	return c.send(ctx, "photo", http.MethodPost, "/photo/api/v2/photos/"+url.PathEscape(id), doc)
}

func (c *Client) GetPhoto(ctx context.Context, id string) (Response, error) {
	return c.send(ctx, "photo", http.MethodGet, "/photo/api/v2/photos/"+url.PathEscape(id), nil)
}

// UpdatePhoto sends body as is; it is usually the patched result of GetPhoto.
func (c *Client) UpdatePhoto(ctx context.Context, id string, body []byte) (Response, error) {
	return c.send(ctx, "photo", http.MethodPut, "/photo/api/v2/photos/"+url.PathEscape(id), json.RawMessage(body))
}

func (c *Client) send(ctx context.Context, endpoint, method, path string, payload any) (Response, error) {
	var body io.Reader = http.NoBody
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return Response{}, fmt.Errorf("failed to encode %s payload: %w", endpoint, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return Response{}, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Arc-Priority", c.priority)
	req.Header.Set("User-Agent", c.userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.DownstreamRequests.WithLabelValues(endpoint, method, "error").Inc()
		return Response{}, fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("failed to read response body: %w", err)
	}

	metrics.DownstreamRequests.WithLabelValues(endpoint, method, strconv.Itoa(resp.StatusCode)).Inc()

	slog.Debug("Downstream request completed",
		"method", method,
		"path", path,
		"status", resp.StatusCode)

	return Response{StatusCode: resp.StatusCode, Body: data}, nil
}
