package draft

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/NikhilNandyala/azure-daily-blog/internal/cms"
)

func newTestMode(secret string, available bool) *Mode {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return New(Options{
		Secret:    secret,
		Cookie:    "blog_draft",
		TTL:       time.Hour,
		Available: available,
		Logger:    logger,
	})
}

func newDraftApp(m *Mode) *fiber.App {
	app := fiber.New()
	app.Use(m.Middleware())
	app.All("/api/draft/enable", m.EnableHandler())
	app.All("/api/draft/disable", m.DisableHandler())
	app.Get("/perspective", func(c fiber.Ctx) error {
		return c.SendString(string(Perspective(c)))
	})
	return app
}

func doRequest(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, string) {
	t.Helper()
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("请求失败: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func draftCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == "blog_draft" {
			return c
		}
	}
	return nil
}

func TestEnableRejectsWrongSecret(t *testing.T) {
	app := newDraftApp(newTestMode("preview", true))

	for _, target := range []string{"/api/draft/enable?slug=x", "/api/draft/enable?secret=nope&slug=x"} {
		resp, body := doRequest(t, app, httptest.NewRequest(http.MethodGet, target, nil))
		if resp.StatusCode != fiber.StatusUnauthorized || body != "Unauthorized" {
			t.Fatalf("%s 应返回 401，得到 %d %s", target, resp.StatusCode, body)
		}
	}
}

func TestEnableWithoutConfiguredSecret(t *testing.T) {
	app := newDraftApp(newTestMode("", true))
	resp, _ := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/api/draft/enable?secret=&slug=x", nil))
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("未配置密钥时应返回 401，得到 %d", resp.StatusCode)
	}
}

func TestEnableRequiresSlug(t *testing.T) {
	app := newDraftApp(newTestMode("preview", true))
	resp, _ := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/api/draft/enable?secret=preview", nil))
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("缺少 slug 应返回 400，得到 %d", resp.StatusCode)
	}
}

func TestEnableGETRedirectsAndSetsCookie(t *testing.T) {
	m := newTestMode("preview", true)
	app := newDraftApp(m)

	resp, _ := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/api/draft/enable?secret=preview&slug=my-post", nil))
	if resp.StatusCode != fiber.StatusTemporaryRedirect {
		t.Fatalf("GET 应重定向，得到 %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/blog/my-post" {
		t.Fatalf("重定向地址错误: %s", loc)
	}
	cookie := draftCookie(resp)
	if cookie == nil || !m.Verify(cookie.Value) {
		t.Fatalf("应写入有效的草稿 Cookie")
	}

	req := httptest.NewRequest(http.MethodGet, "/perspective", nil)
	req.AddCookie(&http.Cookie{Name: "blog_draft", Value: cookie.Value})
	_, body := doRequest(t, app, req)
	if body != string(cms.PerspectivePreviewDrafts) {
		t.Fatalf("携带草稿 Cookie 应切换视角，得到 %s", body)
	}
}

func TestEnablePOSTAnswersJSON(t *testing.T) {
	app := newDraftApp(newTestMode("preview", true))
	resp, body := doRequest(t, app, httptest.NewRequest(http.MethodPost, "/api/draft/enable?secret=preview&slug=a", nil))
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("POST 应返回 200，得到 %d", resp.StatusCode)
	}
	var payload map[string]string
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		t.Fatalf("响应不是 JSON: %v", err)
	}
	if payload["message"] != "Draft mode enabled" || payload["slug"] != "a" {
		t.Fatalf("响应内容错误: %v", payload)
	}
}

func TestDisable(t *testing.T) {
	app := newDraftApp(newTestMode("preview", true))

	resp, _ := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/api/draft/disable", nil))
	if resp.StatusCode != fiber.StatusTemporaryRedirect || resp.Header.Get("Location") != "/blog" {
		t.Fatalf("GET disable 应跳转 /blog，得到 %d %s", resp.StatusCode, resp.Header.Get("Location"))
	}

	resp, body := doRequest(t, app, httptest.NewRequest(http.MethodPost, "/api/draft/disable", nil))
	if resp.StatusCode != fiber.StatusOK || !strings.Contains(body, "Draft mode disabled") {
		t.Fatalf("POST disable 响应错误: %d %s", resp.StatusCode, body)
	}
}

func TestMiddlewareFallsBackWithoutDraftClient(t *testing.T) {
	m := newTestMode("preview", false)
	token, err := m.Issue()
	if err != nil {
		t.Fatalf("签发失败: %v", err)
	}
	app := newDraftApp(m)
	req := httptest.NewRequest(http.MethodGet, "/perspective", nil)
	req.AddCookie(&http.Cookie{Name: "blog_draft", Value: token})
	_, body := doRequest(t, app, req)
	if body != string(cms.PerspectivePublished) {
		t.Fatalf("无草稿客户端时应回退 published，得到 %s", body)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	past := time.Now().Add(-2 * time.Hour)
	old := New(Options{Secret: "preview", Cookie: "blog_draft", TTL: time.Hour, Now: func() time.Time { return past }})
	token, _ := old.Issue()
	if newTestMode("preview", true).Verify(token) {
		t.Fatalf("过期令牌不应通过")
	}
}
