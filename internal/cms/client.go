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

	"github.com/cenkalti/backoff/v5"
)

// Perspective 区分已发布内容与草稿预览两种读取模式。
type Perspective string

const (
	PerspectivePublished     Perspective = "published"
	PerspectivePreviewDrafts Perspective = "previewDrafts"
)

// maxGETQueryLength 超过该长度的查询改用 POST，避免 URL 过长被网关拒绝。
const maxGETQueryLength = 11 * 1024

var (
	// ErrNotConfigured 表示缺少 project/dataset，调用方应降级为空内容。
	ErrNotConfigured = errors.New("cms not configured")
	// ErrDraftUnavailable 表示请求了草稿视角但未配置草稿令牌。
	ErrDraftUnavailable = errors.New("cms draft client unavailable")
	// ErrReadOnly 表示客户端没有写入令牌。
	ErrReadOnly = errors.New("cms client has no write token")
)

// APIError 描述 CMS 返回的非 2xx 响应。
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("cms api error: status %d", e.Status)
	}
	return fmt.Sprintf("cms api error: status %d: %s", e.Status, e.Message)
}

// Retryable 表示该错误是否值得重试（限流或服务端错误）。
func (e *APIError) Retryable() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= 500
}

// Options 描述一个 CMS 客户端的连接参数。
type Options struct {
	ProjectID      string
	Dataset        string
	APIVersion     string
	APIHost        string
	Token          string
	UseCDN         bool
	Perspective    Perspective
	HTTPClient     *http.Client
	MaxRetries     int
	InitialBackoff time.Duration
	// BaseURL 覆盖由 project/host 推导出的地址，主要用于测试桩。
	BaseURL string
}

// Query 是一次具名 GROQ 查询；Name 仅用于日志与缓存键。
type Query struct {
	Name   string
	GROQ   string
	Params map[string]any
}

// Client 绑定单一视角与令牌，可并发使用。
type Client struct {
	opts Options
	http *http.Client
}

// New 校验参数并创建客户端。
func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.ProjectID) == "" || strings.TrimSpace(opts.Dataset) == "" {
		return nil, ErrNotConfigured
	}
	if opts.APIVersion == "" {
		opts.APIVersion = "2024-12-14"
	}
	opts.APIVersion = strings.TrimPrefix(opts.APIVersion, "v")
	if opts.APIHost == "" {
		opts.APIHost = "api.sanity.io"
	}
	if opts.Perspective == "" {
		opts.Perspective = PerspectivePublished
	}
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = 200 * time.Millisecond
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = NewHTTPClient(0)
	}
	return &Client{opts: opts, http: httpClient}, nil
}

// Perspective 返回客户端绑定的读取视角。
func (c *Client) Perspective() Perspective {
	return c.opts.Perspective
}

// CanWrite 表示客户端是否携带令牌，可用于 mutate。
func (c *Client) CanWrite() bool {
	return c.opts.Token != ""
}

// usesCDN 仅在公开视角且无令牌时走 CDN，带令牌或草稿请求必须直连 API。
func (c *Client) usesCDN() bool {
	return c.opts.UseCDN && c.opts.Token == "" && c.opts.Perspective == PerspectivePublished
}

func (c *Client) endpoint(kind string) string {
	base := c.opts.BaseURL
	if base == "" {
		host := c.opts.APIHost
		if c.usesCDN() && kind == "query" {
			host = strings.Replace(host, "api.", "apicdn.", 1)
		}
		base = fmt.Sprintf("https://%s.%s", c.opts.ProjectID, host)
	}
	return fmt.Sprintf("%s/v%s/data/%s/%s", strings.TrimRight(base, "/"), c.opts.APIVersion, kind, c.opts.Dataset)
}

type queryResponse struct {
	Result json.RawMessage `json:"result"`
}

// Fetch 执行 GROQ 查询并把 result 字段解码到 out；result 为 null 时 out 保持零值。
func (c *Client) Fetch(ctx context.Context, q Query, out any) error {
	req, err := c.buildQueryRequest(ctx, q)
	if err != nil {
		return err
	}

	body, err := c.do(ctx, req)
	if err != nil {
		return fmt.Errorf("query %s: %w", q.Name, err)
	}

	var resp queryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("query %s: decode response: %w", q.Name, err)
	}
	if len(resp.Result) == 0 || bytes.Equal(resp.Result, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(resp.Result, out); err != nil {
		return fmt.Errorf("query %s: decode result: %w", q.Name, err)
	}
	return nil
}

func (c *Client) buildQueryRequest(ctx context.Context, q Query) (func() (*http.Request, error), error) {
	values := url.Values{}
	values.Set("query", q.GROQ)
	for name, value := range q.Params {
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("query %s: encode param %s: %w", q.Name, name, err)
		}
		values.Set("$"+name, string(encoded))
	}
	values.Set("perspective", string(c.opts.Perspective))

	endpoint := c.endpoint("query")
	if encoded := values.Encode(); len(encoded) <= maxGETQueryLength {
		target := endpoint + "?" + encoded
		return func() (*http.Request, error) {
			return http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		}, nil
	}

	params := q.Params
	if params == nil {
		params = map[string]any{}
	}
	payload, err := json.Marshal(map[string]any{"query": q.GROQ, "params": params})
	if err != nil {
		return nil, fmt.Errorf("query %s: encode body: %w", q.Name, err)
	}
	target := endpoint + "?perspective=" + url.QueryEscape(string(c.opts.Perspective))
	return func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}, nil
}

// do 发送请求并在可重试错误上按指数退避重试，4xx 错误立即返回。
func (c *Client) do(ctx context.Context, build func() (*http.Request, error)) ([]byte, error) {
	operation := func() ([]byte, error) {
		req, err := build()
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")
		if c.opts.Token != "" {
			req.Header.Set("Authorization", "Bearer "+c.opts.Token)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(ctx.Err())
			}
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			apiErr := &APIError{Status: resp.StatusCode, Message: errorMessage(body)}
			if apiErr.Retryable() {
				return nil, apiErr
			}
			return nil, backoff.Permanent(apiErr)
		}
		return body, nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.opts.InitialBackoff
	policy.MaxInterval = 10 * c.opts.InitialBackoff

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(uint(c.opts.MaxRetries+1)),
	)
}

// errorMessage 尽量从 CMS 错误体中提取可读描述。
func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   struct {
			Description string `json:"description"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error.Description != "" {
			return payload.Error.Description
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	text := strings.TrimSpace(string(body))
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}
