package server

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/NikhilNandyala/azure-daily-blog/internal/auth"
	"github.com/NikhilNandyala/azure-daily-blog/internal/draft"
	"github.com/NikhilNandyala/azure-daily-blog/internal/seo"
	"github.com/NikhilNandyala/azure-daily-blog/internal/web"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	app, err := NewApp(AppOptions{
		Logger:     logger,
		Session:    auth.NewManager(auth.ManagerOptions{Secret: "s3cret", Cookie: "blog_session"}),
		Draft:      draft.New(draft.Options{Secret: "preview", Cookie: "blog_draft", Logger: logger}),
		SiteTitle:  "Azure Daily Blog",
		ListenPort: 3000,
	})
	if err != nil {
		t.Fatalf("failed to create app: %v", err)
	}
	app.Get("/ok", func(c fiber.Ctx) error {
		return Render(c, fiber.StatusOK, web.Page{SiteTitle: "Azure Daily Blog", Meta: seo.Metadata{Title: "OK"}}, web.NotFound())
	})
	app.Get("/boom", func(c fiber.Ctx) error {
		panic("boom")
	})
	app.Get("/api/fail", func(c fiber.Ctx) error {
		return fiber.NewError(fiber.StatusBadGateway, "upstream down")
	})
	return app
}

func readAll(t *testing.T, r io.Reader) string {
	t.Helper()
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("读取响应失败: %v", err)
	}
	return string(data)
}

func TestNewAppValidatesOptions(t *testing.T) {
	if _, err := NewApp(AppOptions{}); err == nil {
		t.Fatalf("缺少 logger 时应报错")
	}
	logger := logrus.New()
	_, err := NewApp(AppOptions{
		Logger:  logger,
		Session: auth.NewManager(auth.ManagerOptions{}),
		Draft:   draft.New(draft.Options{}),
	})
	if err == nil {
		t.Fatalf("端口非法时应报错")
	}
}

func TestRenderSetsRequestIDAndHTML(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/ok", nil))
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Fatalf("expected X-Request-ID header to be set")
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("expected html content type, got %s", ct)
	}
	if body := readAll(t, resp.Body); !strings.Contains(body, "<title>OK</title>") {
		t.Fatalf("布局未输出标题: %s", body)
	}
}

func TestUnknownPageRendersHTMLNotFound(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/missing", nil))
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	body := readAll(t, resp.Body)
	if !strings.Contains(body, "Page not found | Azure Daily Blog") || !strings.Contains(body, "404") {
		t.Fatalf("应渲染 HTML 404 页面: %s", body)
	}
}

func TestAPIErrorsRenderJSON(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/fail", nil))
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.StatusCode)
	}
	if body := readAll(t, resp.Body); !strings.Contains(body, `"error":"upstream down"`) {
		t.Fatalf("API 错误应为 JSON: %s", body)
	}
}

func TestPanicIsRecovered(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
}

func TestWantsJSON(t *testing.T) {
	cases := map[string]bool{
		"/api/views": true,
		"/-/healthz": true,
		"/blog":      false,
		"/apiary":    false,
	}
	for path, want := range cases {
		if got := wantsJSON(path); got != want {
			t.Fatalf("wantsJSON(%s)=%v, want %v", path, got, want)
		}
	}
}
