// Package auth verifies member sessions and decides whether members-only
// posts may be shown. Identity is issued elsewhere; this package only checks
// the HS256 session token carried in a cookie.
package auth

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoSession 表示请求未携带会话。
	ErrNoSession = errors.New("no member session")
	// ErrInvalidToken 表示会话令牌签名或有效期校验失败。
	ErrInvalidToken = errors.New("invalid session token")
	// ErrSecretMissing 表示未配置会话密钥，无法签发或校验。
	ErrSecretMissing = errors.New("session secret not configured")
)

const contextKeySession = "_blog_session"

// Session 是会员会话中携带的用户信息。
type Session struct {
	Subject   string
	Name      string
	Email     string
	Image     string
	ExpiresAt time.Time
}

// DisplayName 返回用于页面展示的名称。
func (s *Session) DisplayName() string {
	if s == nil {
		return ""
	}
	if s.Name != "" {
		return s.Name
	}
	if s.Email != "" {
		return s.Email
	}
	return "User"
}

// Initial 返回头像占位使用的首字母。
func (s *Session) Initial() string {
	name := strings.TrimSpace(s.DisplayName())
	if name == "" {
		return "U"
	}
	return strings.ToUpper(string([]rune(name)[0]))
}

type sessionClaims struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Image string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

// Manager 负责会话令牌的签发、校验以及登录跳转地址。
type Manager struct {
	secret   []byte
	cookie   string
	loginURL string
	gate     string
	now      func() time.Time
}

// ManagerOptions 描述 Manager 的配置。
type ManagerOptions struct {
	Secret   string
	Cookie   string
	LoginURL string
	Gate     string
	Now      func() time.Time
}

// NewManager 创建会话管理器；未配置密钥时所有会话均视为无效。
func NewManager(opts ManagerOptions) *Manager {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	loginURL := opts.LoginURL
	if loginURL == "" {
		loginURL = "/login"
	}
	return &Manager{
		secret:   []byte(opts.Secret),
		cookie:   opts.Cookie,
		loginURL: loginURL,
		gate:     opts.Gate,
		now:      now,
	}
}

// Enabled 表示是否可以校验会话。
func (m *Manager) Enabled() bool {
	return len(m.secret) > 0
}

// CookieName 返回会话 Cookie 名称。
func (m *Manager) CookieName() string {
	return m.cookie
}

// GateMode 返回会员内容拦截方式（wall/redirect）。
func (m *Manager) GateMode() string {
	return m.gate
}

// Issue 为会话签发 HS256 令牌。
func (m *Manager) Issue(s Session, ttl time.Duration) (string, error) {
	if !m.Enabled() {
		return "", ErrSecretMissing
	}
	if ttl <= 0 {
		return "", fmt.Errorf("会话有效期必须大于 0")
	}
	now := m.now()
	claims := sessionClaims{
		Name:  s.Name,
		Email: s.Email,
		Image: s.Image,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Verify 校验令牌并还原会话。
func (m *Manager) Verify(token string) (Session, error) {
	if !m.Enabled() {
		return Session{}, ErrSecretMissing
	}
	if strings.TrimSpace(token) == "" {
		return Session{}, ErrNoSession
	}

	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	session := Session{
		Subject: claims.Subject,
		Name:    claims.Name,
		Email:   claims.Email,
		Image:   claims.Image,
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	return session, nil
}

// FromRequest 从 Cookie 值解析会话，无会话或无效时返回 nil。
func (m *Manager) FromRequest(raw string) *Session {
	session, err := m.Verify(raw)
	if err != nil {
		return nil
	}
	return &session
}

// Middleware 读取会话 Cookie 并把会话写入 Locals；无效 Cookie 不会中断请求。
func (m *Manager) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		if m.cookie != "" {
			if session := m.FromRequest(c.Cookies(m.cookie)); session != nil {
				c.Locals(contextKeySession, session)
			}
		}
		return c.Next()
	}
}

// Current 返回当前请求的会话，未登录时为 nil。
func Current(c fiber.Ctx) *Session {
	if value := c.Locals(contextKeySession); value != nil {
		if session, ok := value.(*Session); ok {
			return session
		}
	}
	return nil
}

// LoginURL 返回带 callbackUrl 的登录地址，callback 为站内路径加查询串。
func (m *Manager) LoginURL(callback string) string {
	target, err := url.Parse(m.loginURL)
	if err != nil {
		return m.loginURL
	}
	query := target.Query()
	query.Set("callbackUrl", callback)
	target.RawQuery = query.Encode()
	return target.String()
}
