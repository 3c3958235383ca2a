package routes

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/NikhilNandyala/azure-daily-blog/internal/auth"
	"github.com/NikhilNandyala/azure-daily-blog/internal/config"
	"github.com/NikhilNandyala/azure-daily-blog/internal/content"
	"github.com/NikhilNandyala/azure-daily-blog/internal/draft"
	"github.com/NikhilNandyala/azure-daily-blog/internal/logging"
	"github.com/NikhilNandyala/azure-daily-blog/internal/revalidate"
	"github.com/NikhilNandyala/azure-daily-blog/internal/seo"
	"github.com/NikhilNandyala/azure-daily-blog/internal/server"
	"github.com/NikhilNandyala/azure-daily-blog/internal/views"
	"github.com/NikhilNandyala/azure-daily-blog/internal/web"
)

// Deps 汇总路由处理器需要的依赖。
type Deps struct {
	Site       config.SiteConfig
	Content    *content.Repository
	Session    *auth.Manager
	Draft      *draft.Mode
	Views      views.Counter
	Revalidate *revalidate.Handler
	Logger     *logrus.Logger
}

func (d Deps) validate() error {
	switch {
	case d.Content == nil:
		return errors.New("content repository is required")
	case d.Session == nil:
		return errors.New("session manager is required")
	case d.Draft == nil:
		return errors.New("draft mode is required")
	case d.Views == nil:
		return errors.New("views counter is required")
	case d.Revalidate == nil:
		return errors.New("revalidate handler is required")
	case d.Logger == nil:
		return errors.New("logger is required")
	}
	return nil
}

// Register 注册全部页面、API 与诊断路由。
func Register(app *fiber.App, deps Deps) error {
	if app == nil {
		return errors.New("app is required")
	}
	if err := deps.validate(); err != nil {
		return err
	}
	h := &handlers{Deps: deps}

	RegisterDiagnosticRoutes(app, deps.Content)

	api := app.Group("/api")
	api.Get("/views", h.getViews)
	api.Post("/views", h.incrementViews)
	api.Post("/revalidate", deps.Revalidate.Webhook)
	api.Get("/revalidate", deps.Revalidate.Manual)
	api.Get("/draft/enable", deps.Draft.EnableHandler())
	api.Post("/draft/enable", deps.Draft.EnableHandler())
	api.Get("/draft/disable", deps.Draft.DisableHandler())
	api.Post("/draft/disable", deps.Draft.DisableHandler())

	app.Get("/", h.home)
	app.Get("/blog", h.blog)
	app.Get("/blog/:slug", h.post)
	app.Get("/search", h.search)
	app.Get("/sitemap.xml", h.sitemap)
	app.Get("/tags", h.tags)
	app.Get("/tags/:tag", h.tag)
	app.Get("/tags/:tag/page/:page", h.tagPage)
	app.Get("/projects", h.projects)
	app.Get("/projects/:slug", h.project)
	app.Get("/account", h.account)
	app.Post("/account/signout", h.signOut)
	app.Get("/studio", h.studio)
	app.Get("/studio/*", h.studio)

	app.Use(func(c fiber.Ctx) error {
		return fiber.ErrNotFound
	})
	return nil
}

type handlers struct {
	Deps
}

// repo 返回绑定当前请求视角的内容仓库。
func (h *handlers) repo(c fiber.Ctx) *content.Repository {
	return h.Content.WithPerspective(draft.Perspective(c))
}

// page 组装布局信息；callback 为登录后返回的站内路径。
func (h *handlers) page(c fiber.Ctx, meta seo.Metadata, callback string, jsonLD ...string) web.Page {
	return web.Page{
		SiteTitle: h.siteTitle(),
		Meta:      meta,
		JSONLD:    jsonLD,
		Session:   auth.Current(c),
		LoginURL:  h.Session.LoginURL(callback),
		Draft:     draft.Enabled(c),
	}
}

func (h *handlers) siteTitle() string {
	if h.Site.Title != "" {
		return h.Site.Title
	}
	return seo.DefaultSiteTitle
}

// configMissing 在 CMS 未配置时渲染提示页，返回 true 表示已处理。
func (h *handlers) configMissing(c fiber.Ctx) (bool, error) {
	if h.Content.Configured() {
		return false, nil
	}
	meta := seo.PageMetadata("Configuration missing", "", nil, h.Site)
	return true, server.Render(c, fiber.StatusOK, h.page(c, meta, c.Path()), web.ConfigMissing())
}

// overlayViews 用本地计数覆盖列表阅读数，失败时保留 CMS 中的值。
func (h *handlers) overlayViews(ctx context.Context, posts []content.PostListItem) []content.PostListItem {
	out, err := views.Overlay(ctx, h.Views, posts)
	if err != nil {
		h.Logger.WithField("action", "views_overlay").WithError(err).Warn("overlay views failed")
	}
	return out
}

func (h *handlers) logRequest(c fiber.Ctx, route, slug string) *logrus.Entry {
	fields := logging.RequestFields(route, slug, string(draft.Perspective(c)), auth.Current(c) != nil)
	fields["request_id"] = server.RequestID(c)
	return h.Logger.WithFields(fields)
}
