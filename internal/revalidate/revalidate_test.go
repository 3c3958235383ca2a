package revalidate

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
)

type recordingPurger struct {
	calls [][]string
	err   error
}

func (p *recordingPurger) Invalidate(_ context.Context, namespaces ...string) error {
	p.calls = append(p.calls, namespaces)
	return p.err
}

func newTestApp(secret string, purger Purger) *fiber.App {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	h := NewHandler(secret, purger, logger)
	h.now = func() time.Time { return time.UnixMilli(1700000000000) }

	app := fiber.New()
	app.Post("/api/revalidate", h.Webhook)
	app.Get("/api/revalidate", h.Manual)
	return app
}

func send(t *testing.T, app *fiber.App, method, target, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("请求失败: %v", err)
	}
	defer resp.Body.Close()
	var payload map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	return resp.StatusCode, payload
}

func TestRegistryHasBuiltinRules(t *testing.T) {
	want := []string{"author", "post", "project", "siteSettings", "tag"}
	if diff := cmp.Diff(want, DocTypes()); diff != "" {
		t.Fatalf("内置规则不符 (-want +got):\n%s", diff)
	}
	rule, ok := Resolve("POST")
	if !ok {
		t.Fatalf("类型解析应忽略大小写")
	}
	if diff := cmp.Diff([]string{"/", "/blog", "/tags", "/blog/hello"}, rule.AffectedPaths("hello")); diff != "" {
		t.Fatalf("post 路径不符 (-want +got):\n%s", diff)
	}
	if err := Register(Rule{DocType: "post", Namespaces: []string{"posts"}}); err == nil {
		t.Fatalf("重复注册应报错")
	}
}

func TestParsePayload(t *testing.T) {
	event, err := ParsePayload([]byte(`{"_id":"abc","_type":"tag","slug":{"current":"azure"}}`))
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if event.Type != "tag" || event.Slug != "azure" || event.ID != "abc" {
		t.Fatalf("解析结果错误: %+v", event)
	}
	event, _ = ParsePayload([]byte(`{"_type":"post","slug":"flat"}`))
	if event.Slug != "flat" {
		t.Fatalf("字符串 slug 应被接受: %+v", event)
	}
	if _, err := ParsePayload([]byte(`not json`)); !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("非法 JSON 应报错，得到 %v", err)
	}
}

func TestWebhookRequiresConfiguredSecret(t *testing.T) {
	app := newTestApp("", &recordingPurger{})
	status, body := send(t, app, http.MethodPost, "/api/revalidate?secret=x", `{}`)
	if status != fiber.StatusInternalServerError || body["message"] != "Revalidation secret not configured" {
		t.Fatalf("未配置密钥应返回 500，得到 %d %v", status, body)
	}
}

func TestWebhookRejectsWrongSecret(t *testing.T) {
	purger := &recordingPurger{}
	app := newTestApp("hook", purger)
	status, body := send(t, app, http.MethodPost, "/api/revalidate?secret=nope", `{"_type":"post"}`)
	if status != fiber.StatusUnauthorized || body["message"] != "Invalid secret" {
		t.Fatalf("错误密钥应返回 401，得到 %d %v", status, body)
	}
	if len(purger.calls) != 0 {
		t.Fatalf("鉴权失败不应清理缓存")
	}
}

func TestWebhookPurgesRuleNamespaces(t *testing.T) {
	purger := &recordingPurger{}
	app := newTestApp("hook", purger)

	status, body := send(t, app, http.MethodPost, "/api/revalidate?secret=hook", `{"_type":"post","slug":{"current":"hello"}}`)
	if status != fiber.StatusOK {
		t.Fatalf("期望 200，得到 %d", status)
	}
	if body["revalidated"] != true || body["type"] != "post" || body["slug"] != "hello" {
		t.Fatalf("响应内容错误: %v", body)
	}
	if body["now"] != float64(1700000000000) {
		t.Fatalf("now 应为毫秒时间戳: %v", body["now"])
	}
	if diff := cmp.Diff([][]string{{"posts", "tags"}}, purger.calls); diff != "" {
		t.Fatalf("清理命名空间不符 (-want +got):\n%s", diff)
	}
}

func TestWebhookIgnoresUnknownType(t *testing.T) {
	purger := &recordingPurger{}
	app := newTestApp("hook", purger)
	status, _ := send(t, app, http.MethodPost, "/api/revalidate?secret=hook", `{"_type":"newsletter"}`)
	if status != fiber.StatusOK || len(purger.calls) != 0 {
		t.Fatalf("未知类型应返回 200 且不清理，得到 %d %v", status, purger.calls)
	}
}

func TestWebhookInvalidBody(t *testing.T) {
	app := newTestApp("hook", &recordingPurger{})
	status, body := send(t, app, http.MethodPost, "/api/revalidate?secret=hook", `{broken`)
	if status != fiber.StatusInternalServerError || body["message"] != "Error revalidating" {
		t.Fatalf("非法请求体应返回 500，得到 %d %v", status, body)
	}
}

func TestManualRevalidation(t *testing.T) {
	purger := &recordingPurger{}
	app := newTestApp("hook", purger)

	status, body := send(t, app, http.MethodGet, "/api/revalidate?secret=hook", "")
	if status != fiber.StatusOK || body["message"] != "Manual revalidation completed" {
		t.Fatalf("手动失效响应错误: %d %v", status, body)
	}
	if len(purger.calls) != 1 || len(purger.calls[0]) != 0 {
		t.Fatalf("手动失效应清空全部缓存: %v", purger.calls)
	}

	purger.err = errors.New("disk full")
	status, _ = send(t, app, http.MethodGet, "/api/revalidate?secret=hook", "")
	if status != fiber.StatusInternalServerError {
		t.Fatalf("清理失败应返回 500，得到 %d", status)
	}
}
