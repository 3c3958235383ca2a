package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/NikhilNandyala/azure-daily-blog/internal/content"
)

func newTestManager(now func() time.Time) *Manager {
	return NewManager(ManagerOptions{
		Secret:   "test-secret",
		Cookie:   "blog_session",
		LoginURL: "/login",
		Gate:     "wall",
		Now:      now,
	})
}

func TestIssueAndVerify(t *testing.T) {
	m := newTestManager(nil)
	token, err := m.Issue(Session{Subject: "u1", Name: "Ada", Email: "ada@example.com"}, time.Hour)
	if err != nil {
		t.Fatalf("签发令牌失败: %v", err)
	}
	session, err := m.Verify(token)
	if err != nil {
		t.Fatalf("校验令牌失败: %v", err)
	}
	if session.Subject != "u1" || session.Name != "Ada" || session.Email != "ada@example.com" {
		t.Fatalf("会话内容错误: %+v", session)
	}
	if session.ExpiresAt.IsZero() {
		t.Fatalf("会话应携带过期时间")
	}
}

func TestVerifyRejectsExpiredAndForeignTokens(t *testing.T) {
	issuedAt := time.Now().Add(-2 * time.Hour)
	old := newTestManager(func() time.Time { return issuedAt })
	token, err := old.Issue(Session{Subject: "u1"}, time.Hour)
	if err != nil {
		t.Fatalf("签发令牌失败: %v", err)
	}
	if _, err := newTestManager(nil).Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("过期令牌应失败，得到 %v", err)
	}

	other := NewManager(ManagerOptions{Secret: "another", Cookie: "blog_session"})
	foreign, _ := other.Issue(Session{Subject: "u2"}, time.Hour)
	if _, err := newTestManager(nil).Verify(foreign); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("其他密钥签发的令牌应失败，得到 %v", err)
	}
	if _, err := newTestManager(nil).Verify(""); !errors.Is(err, ErrNoSession) {
		t.Fatalf("空令牌应返回 ErrNoSession，得到 %v", err)
	}
}

func TestManagerWithoutSecret(t *testing.T) {
	m := NewManager(ManagerOptions{Cookie: "blog_session"})
	if m.Enabled() {
		t.Fatalf("无密钥时不应启用")
	}
	if _, err := m.Issue(Session{Subject: "u"}, time.Hour); !errors.Is(err, ErrSecretMissing) {
		t.Fatalf("无密钥签发应失败，得到 %v", err)
	}
	if m.FromRequest("anything") != nil {
		t.Fatalf("无密钥时不应解析出会话")
	}
}

func TestLoginURLEscapesCallback(t *testing.T) {
	m := newTestManager(nil)
	if got := m.LoginURL("/blog/secret-post?ref=home"); got != "/login?callbackUrl=%2Fblog%2Fsecret-post%3Fref%3Dhome" {
		t.Fatalf("登录地址错误: %s", got)
	}
	external := NewManager(ManagerOptions{Secret: "s", LoginURL: "https://auth.example.com/signin?app=blog"})
	if got := external.LoginURL("/account"); got != "https://auth.example.com/signin?app=blog&callbackUrl=%2Faccount" {
		t.Fatalf("外部登录地址错误: %s", got)
	}
}

func TestGate(t *testing.T) {
	m := newTestManager(nil)
	public := content.PostListItem{Slug: content.Slug{Current: "open"}}
	members := content.PostListItem{Slug: content.Slug{Current: "vip"}, MembersOnly: true}

	if !m.Gate(public, nil).Allowed {
		t.Fatalf("公开文章不应被拦截")
	}
	decision := m.Gate(members, nil)
	if decision.Allowed || decision.LoginURL != "/login?callbackUrl=%2Fblog%2Fvip" {
		t.Fatalf("会员文章应被拦截: %+v", decision)
	}
	if !m.Gate(members, &Session{Subject: "u"}).Allowed {
		t.Fatalf("已登录会员应可阅读")
	}
	if link, locked := m.CardLink(members, nil); link != decision.LoginURL || !locked {
		t.Fatalf("被拦截卡片应链接登录页: %s %v", link, locked)
	}
	if link, locked := m.CardLink(public, nil); link != "/blog/open" || locked {
		t.Fatalf("公开卡片链接错误: %s %v", link, locked)
	}
	linker := m.CardLinker(&Session{Subject: "u"})
	if link, locked := linker(members); link != "/blog/vip" || locked {
		t.Fatalf("已登录时会员卡片应直接链接文章: %s %v", link, locked)
	}
}

func TestMiddlewareStoresSession(t *testing.T) {
	m := newTestManager(nil)
	token, _ := m.Issue(Session{Subject: "u1", Name: "Ada"}, time.Hour)

	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/whoami", func(c fiber.Ctx) error {
		if s := Current(c); s != nil {
			return c.SendString(s.Name)
		}
		return c.SendString("anonymous")
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: "blog_session", Value: token})
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("请求失败: %v", err)
	}
	body := readBody(t, resp)
	if body != "Ada" {
		t.Fatalf("应识别会话，得到 %s", body)
	}

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: "blog_session", Value: "garbage"})
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("请求失败: %v", err)
	}
	if body := readBody(t, resp); body != "anonymous" {
		t.Fatalf("无效 Cookie 应视为匿名，得到 %s", body)
	}
}

func TestSessionInitial(t *testing.T) {
	if (&Session{Name: "ada"}).Initial() != "A" {
		t.Fatalf("首字母应大写")
	}
	if (&Session{}).Initial() != "U" {
		t.Fatalf("空名称应返回 U")
	}
}
