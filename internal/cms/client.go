// Package cms is the HTTP client for the remote Strapi content API.
// Reads go through a single-retry policy; mutations are never retried
// so a flaky network cannot double-create content.
package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

var (
	ErrUnauthorized = errors.New("cms: unauthorized")
	ErrForbidden    = errors.New("cms: forbidden")
	ErrNotFound     = errors.New("cms: not found")
)

// RequestError carries the message the CMS attached to a rejected
// request, e.g. "Invalid identifier or password" on a failed login.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("cms: %d %s", e.Status, e.Message)
}

const defaultTimeout = 15 * time.Second

type Client struct {
	baseURL string
	reads   *retryablehttp.Client
	writes  *http.Client
	logger  *zap.Logger
}

func NewClient(baseURL string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	reads := retryablehttp.NewClient()
	reads.RetryMax = 1
	reads.RetryWaitMin = 200 * time.Millisecond
	reads.RetryWaitMax = 2 * time.Second
	reads.HTTPClient.Timeout = defaultTimeout
	reads.Logger = nil

	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		reads:   reads,
		writes:  &http.Client{Timeout: defaultTimeout},
		logger:  logger,
	}
}

func (c *Client) ListArticles(ctx context.Context, token string, q ListQuery) (List[ArticleDoc], error) {
	var out List[ArticleDoc]
	err := c.get(ctx, token, "/api/articles", q.Values(), &out)
	return out, err
}

func (c *Client) GetArticle(ctx context.Context, token string, documentID string, q ListQuery) (ArticleDoc, error) {
	var out Item[ArticleDoc]
	err := c.get(ctx, token, "/api/articles/"+url.PathEscape(documentID), q.Values(), &out)
	return out.Data, err
}

func (c *Client) CreateArticle(ctx context.Context, token string, input ArticleInput) (ArticleDoc, error) {
	var out Item[ArticleDoc]
	err := c.send(ctx, token, http.MethodPost, "/api/articles", dataBody{Data: input}, &out)
	return out.Data, err
}

func (c *Client) UpdateArticle(ctx context.Context, token string, documentID string, input ArticleInput) (ArticleDoc, error) {
	var out Item[ArticleDoc]
	err := c.send(ctx, token, http.MethodPut, "/api/articles/"+url.PathEscape(documentID), dataBody{Data: input}, &out)
	return out.Data, err
}

func (c *Client) DeleteArticle(ctx context.Context, token string, documentID string) error {
	return c.send(ctx, token, http.MethodDelete, "/api/articles/"+url.PathEscape(documentID), nil, nil)
}

func (c *Client) ListCategories(ctx context.Context, token string) ([]CategoryDoc, error) {
	var out List[CategoryDoc]
	if err := c.get(ctx, token, "/api/categories", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) ListComments(ctx context.Context, token string, q ListQuery) (List[CommentDoc], error) {
	var out List[CommentDoc]
	err := c.get(ctx, token, "/api/comments", q.Values(), &out)
	return out, err
}

func (c *Client) GetComment(ctx context.Context, token string, documentID string, q ListQuery) (CommentDoc, error) {
	var out Item[CommentDoc]
	err := c.get(ctx, token, "/api/comments/"+url.PathEscape(documentID), q.Values(), &out)
	return out.Data, err
}

func (c *Client) CreateComment(ctx context.Context, token string, input CommentInput) (CommentDoc, error) {
	var out Item[CommentDoc]
	err := c.send(ctx, token, http.MethodPost, "/api/comments", dataBody{Data: input}, &out)
	return out.Data, err
}

func (c *Client) UpdateComment(ctx context.Context, token string, documentID string, content string) (CommentDoc, error) {
	var out Item[CommentDoc]
	body := dataBody{Data: CommentInput{Content: content}}
	err := c.send(ctx, token, http.MethodPut, "/api/comments/"+url.PathEscape(documentID), body, &out)
	return out.Data, err
}

func (c *Client) DeleteComment(ctx context.Context, token string, documentID string) error {
	return c.send(ctx, token, http.MethodDelete, "/api/comments/"+url.PathEscape(documentID), nil, nil)
}

// Login exchanges identifier+password for a token, form-encoded as the
// auth endpoints require.
func (c *Client) Login(ctx context.Context, identifier string, password string) (AuthResponse, error) {
	form := url.Values{}
	form.Set("identifier", identifier)
	form.Set("password", password)

	var out AuthResponse
	err := c.postForm(ctx, "/api/auth/local", form, &out)
	return out, err
}

func (c *Client) Register(ctx context.Context, email string, username string, password string) (AuthResponse, error) {
	form := url.Values{}
	form.Set("email", email)
	form.Set("username", username)
	form.Set("password", password)

	var out AuthResponse
	err := c.postForm(ctx, "/api/auth/local/register", form, &out)
	return out, err
}

type dataBody struct {
	Data any `json:"data"`
}

func (c *Client) get(ctx context.Context, token string, path string, query url.Values, out any) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("cms: build request: %w", err)
	}
	c.setHeaders(&req.Header, token, "")

	c.logger.Debug("cms request", zap.String("method", http.MethodGet), zap.String("url", reqURL))
	resp, err := c.reads.Do(req)
	if err != nil {
		return fmt.Errorf("cms: GET %s: %w", path, err)
	}
	return c.consume(resp, path, out)
}

func (c *Client) send(ctx context.Context, token string, method string, path string, body any, out any) error {
	var payload io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("cms: encode request: %w", err)
		}
		payload = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return fmt.Errorf("cms: build request: %w", err)
	}
	contentType := ""
	if body != nil {
		contentType = "application/json"
	}
	c.setHeaders(&req.Header, token, contentType)

	c.logger.Debug("cms request", zap.String("method", method), zap.String("url", req.URL.String()))
	resp, err := c.writes.Do(req)
	if err != nil {
		return fmt.Errorf("cms: %s %s: %w", method, path, err)
	}
	return c.consume(resp, path, out)
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("cms: build request: %w", err)
	}
	c.setHeaders(&req.Header, "", "application/x-www-form-urlencoded")

	resp, err := c.writes.Do(req)
	if err != nil {
		return fmt.Errorf("cms: POST %s: %w", path, err)
	}
	return c.consume(resp, path, out)
}

func (c *Client) setHeaders(h *http.Header, token string, contentType string) {
	h.Set("Accept", "application/json")
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
}

func (c *Client) consume(resp *http.Response, path string, out any) error {
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("cms: read response: %w", err)
	}

	if err := statusError(resp.StatusCode, payload); err != nil {
		c.logger.Debug("cms rejected request",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("cms: decode response: %w", err)
	}
	return nil
}

func statusError(status int, payload []byte) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized:
		return ErrUnauthorized
	case status == http.StatusForbidden:
		return ErrForbidden
	case status == http.StatusNotFound:
		return ErrNotFound
	}

	var envelope errorEnvelope
	if err := json.Unmarshal(payload, &envelope); err == nil && envelope.Error.Message != "" {
		return &RequestError{Status: status, Message: envelope.Error.Message}
	}
	return &RequestError{Status: status, Message: http.StatusText(status)}
}
