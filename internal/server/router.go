package server

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/NikhilNandyala/azure-daily-blog/internal/auth"
	"github.com/NikhilNandyala/azure-daily-blog/internal/draft"
	"github.com/NikhilNandyala/azure-daily-blog/internal/seo"
	"github.com/NikhilNandyala/azure-daily-blog/internal/web"
)

// AppOptions controls the middleware chain and error rendering of the app.
type AppOptions struct {
	Logger     *logrus.Logger
	Session    *auth.Manager
	Draft      *draft.Mode
	SiteTitle  string
	ListenPort int
}

const contextKeyRequestID = "_blog_request_id"

// NewApp builds a Fiber application with request-id, session and draft
// middlewares plus an error handler that answers JSON for API paths and HTML
// everywhere else. Routes are registered separately by the routes package.
func NewApp(opts AppOptions) (*fiber.App, error) {
	if opts.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if opts.Session == nil {
		return nil, errors.New("session manager is required")
	}
	if opts.Draft == nil {
		return nil, errors.New("draft mode is required")
	}
	if opts.ListenPort <= 0 {
		return nil, fmt.Errorf("invalid listen port: %d", opts.ListenPort)
	}
	if opts.SiteTitle == "" {
		opts.SiteTitle = seo.DefaultSiteTitle
	}

	app := fiber.New(fiber.Config{
		CaseSensitive: true,
		ErrorHandler:  errorHandler(opts),
	})

	app.Use(recover.New())
	app.Use(requestContextMiddleware(opts.Logger))
	app.Use(opts.Session.Middleware())
	app.Use(opts.Draft.Middleware())

	return app, nil
}

// requestContextMiddleware 生成请求 ID 并在请求结束后输出访问日志。
func requestContextMiddleware(logger *logrus.Logger) fiber.Handler {
	return func(c fiber.Ctx) error {
		reqID := uuid.NewString()
		c.Locals(contextKeyRequestID, reqID)
		c.Set("X-Request-ID", reqID)

		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		} else if err != nil {
			status = fiber.StatusInternalServerError
		}
		fields := logrus.Fields{
			"action":     "request",
			"request_id": reqID,
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     status,
			"elapsed_ms": time.Since(start).Milliseconds(),
		}
		if isDiagnosticsPath(c.Path()) {
			logger.WithFields(fields).Debug("request")
		} else {
			logger.WithFields(fields).Info("request")
		}
		return err
	}
}

func errorHandler(opts AppOptions) fiber.ErrorHandler {
	return func(c fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		message := "Internal Server Error"
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
			message = fe.Message
		}
		if status >= fiber.StatusInternalServerError {
			opts.Logger.WithFields(logrus.Fields{
				"action":     "request_error",
				"request_id": RequestID(c),
				"path":       c.Path(),
			}).WithError(err).Error("request failed")
		}

		if wantsJSON(c.Path()) {
			return c.Status(status).JSON(fiber.Map{"error": message})
		}

		body := web.ErrorPage(status, message)
		title := message
		if status == fiber.StatusNotFound {
			body = web.NotFound()
			title = "Page not found"
		}
		page := web.Page{
			SiteTitle: opts.SiteTitle,
			Meta:      seo.Metadata{Title: title + " | " + opts.SiteTitle, Robots: seo.Robots{Follow: true}},
			Session:   auth.Current(c),
			Draft:     draft.Enabled(c),
		}
		return Render(c, status, page, body)
	}
}

// Render 把页面主体套上布局后整体写出，渲染失败时不会留下半截响应。
func Render(c fiber.Ctx, status int, page web.Page, body templ.Component) error {
	var buf bytes.Buffer
	if err := web.Layout(page).Render(templ.WithChildren(c.Context(), body), &buf); err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Status(status).Send(buf.Bytes())
}

// RequestID returns the request identifier stored by the router middleware.
func RequestID(c fiber.Ctx) string {
	if value := c.Locals(contextKeyRequestID); value != nil {
		if reqID, ok := value.(string); ok {
			return reqID
		}
	}
	return ""
}

func wantsJSON(path string) bool {
	return strings.HasPrefix(path, "/api/") || isDiagnosticsPath(path)
}

func isDiagnosticsPath(path string) bool {
	return strings.HasPrefix(path, "/-/")
}
