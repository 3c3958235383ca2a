// Package draft switches requests between the published and previewDrafts
// perspectives. Draft mode is a short-lived signed cookie handed out by the
// enable endpoint to editors who know the preview secret.
package draft

import (
	"crypto/subtle"
	"errors"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"github.com/NikhilNandyala/azure-daily-blog/internal/cms"
)

const (
	contextKeyPerspective = "_blog_perspective"
	draftSubject          = "draft-mode"
)

// ErrSecretMissing 表示未配置预览密钥。
var ErrSecretMissing = errors.New("draft secret not configured")

// Options 描述草稿模式依赖。
type Options struct {
	Secret string
	Cookie string
	TTL    time.Duration
	// Available 表示是否存在草稿视角客户端，否则即使 Cookie 有效也回退为 published。
	Available bool
	Secure    bool
	Logger    *logrus.Logger
	Now       func() time.Time
}

// Mode 负责草稿 Cookie 的签发、校验与视角切换。
type Mode struct {
	secret    []byte
	cookie    string
	ttl       time.Duration
	available bool
	secure    bool
	logger    *logrus.Logger
	now       func() time.Time
}

// New 创建草稿模式管理器。
func New(opts Options) *Mode {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Mode{
		secret:    []byte(opts.Secret),
		cookie:    opts.Cookie,
		ttl:       ttl,
		available: opts.Available,
		secure:    opts.Secure,
		logger:    logger,
		now:       now,
	}
}

// Configured 表示是否配置了预览密钥。
func (m *Mode) Configured() bool {
	return len(m.secret) > 0
}

// Issue 签发草稿模式令牌。
func (m *Mode) Issue() (string, error) {
	if !m.Configured() {
		return "", ErrSecretMissing
	}
	now := m.now()
	claims := jwt.RegisteredClaims{
		Subject:   draftSubject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Verify 判断草稿令牌是否有效。
func (m *Mode) Verify(token string) bool {
	if !m.Configured() || token == "" {
		return false
	}
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithSubject(draftSubject),
		jwt.WithTimeFunc(m.now),
	)
	return err == nil
}

// Middleware 根据草稿 Cookie 把当前视角写入 Locals。
func (m *Mode) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		perspective := cms.PerspectivePublished
		if m.available && m.Verify(c.Cookies(m.cookie)) {
			perspective = cms.PerspectivePreviewDrafts
		}
		c.Locals(contextKeyPerspective, perspective)
		return c.Next()
	}
}

// Perspective 返回当前请求的读取视角，默认 published。
func Perspective(c fiber.Ctx) cms.Perspective {
	if value := c.Locals(contextKeyPerspective); value != nil {
		if p, ok := value.(cms.Perspective); ok {
			return p
		}
	}
	return cms.PerspectivePublished
}

// Enabled 表示当前请求是否处于草稿模式。
func Enabled(c fiber.Ctx) bool {
	return Perspective(c) == cms.PerspectivePreviewDrafts
}

// EnableHandler 校验预览密钥后写入草稿 Cookie。GET 跳转到文章页，POST 返回 JSON。
func (m *Mode) EnableHandler() fiber.Handler {
	return func(c fiber.Ctx) error {
		secret := c.Query("secret")
		slug := c.Query("slug")

		if !m.Configured() || subtle.ConstantTimeCompare([]byte(secret), m.secret) != 1 {
			m.logger.WithFields(logrus.Fields{"action": "draft_enable", "slug": slug}).Warn("draft secret rejected")
			return c.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
		}
		if slug == "" {
			return c.Status(fiber.StatusBadRequest).SendString("Missing slug parameter")
		}

		token, err := m.Issue()
		if err != nil {
			return err
		}
		c.Cookie(&fiber.Cookie{
			Name:     m.cookie,
			Value:    token,
			Path:     "/",
			Expires:  m.now().Add(m.ttl),
			HTTPOnly: true,
			Secure:   m.secure,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
		m.logger.WithFields(logrus.Fields{"action": "draft_enable", "slug": slug}).Info("draft mode enabled")

		if c.Method() == fiber.MethodPost {
			return c.JSON(fiber.Map{"message": "Draft mode enabled", "slug": slug})
		}
		return c.Redirect().Status(fiber.StatusTemporaryRedirect).To("/blog/" + url.PathEscape(slug))
	}
}

// DisableHandler 清除草稿 Cookie。GET 跳转到 /blog，POST 返回 JSON。
func (m *Mode) DisableHandler() fiber.Handler {
	return func(c fiber.Ctx) error {
		c.Cookie(&fiber.Cookie{
			Name:     m.cookie,
			Value:    "",
			Path:     "/",
			Expires:  time.Unix(0, 0),
			MaxAge:   -1,
			HTTPOnly: true,
			Secure:   m.secure,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
		if c.Method() == fiber.MethodPost {
			return c.JSON(fiber.Map{"message": "Draft mode disabled"})
		}
		return c.Redirect().Status(fiber.StatusTemporaryRedirect).To("/blog")
	}
}
