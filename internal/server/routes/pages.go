package routes

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"golang.org/x/sync/errgroup"

	"github.com/NikhilNandyala/azure-daily-blog/internal/auth"
	"github.com/NikhilNandyala/azure-daily-blog/internal/config"
	"github.com/NikhilNandyala/azure-daily-blog/internal/content"
	"github.com/NikhilNandyala/azure-daily-blog/internal/draft"
	"github.com/NikhilNandyala/azure-daily-blog/internal/render"
	"github.com/NikhilNandyala/azure-daily-blog/internal/search"
	"github.com/NikhilNandyala/azure-daily-blog/internal/seo"
	"github.com/NikhilNandyala/azure-daily-blog/internal/server"
	"github.com/NikhilNandyala/azure-daily-blog/internal/web"
)

// 首页、搜索与项目页一次取回的上限。
const (
	homePostLimit    = 100
	searchPostLimit  = 100
	projectListLimit = 100
)

func (h *handlers) home(c fiber.Ctx) error {
	if done, err := h.configMissing(c); done {
		return err
	}
	repo := h.repo(c)

	var (
		posts    []content.PostListItem
		tags     []content.TagCount
		settings *content.SiteSettings
	)
	g, ctx := errgroup.WithContext(c.Context())
	g.Go(func() error {
		posts = h.overlayViews(ctx, repo.PublishedPosts(ctx, homePostLimit, 0))
		return nil
	})
	g.Go(func() error {
		tags = repo.TagsWithCounts(ctx)
		return nil
	})
	g.Go(func() error {
		settings = repo.SiteSettings(ctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	session := auth.Current(c)
	link := h.Session.CardLinker(session)
	featured, latest := content.SplitFeatured(posts)
	data := web.HomeData{
		Latest:      web.Cards(latest, link),
		PopularTags: content.PopularTags(tags, content.DefaultPopularTags),
		MostVisited: web.Cards(content.MostVisited(posts, content.DefaultMostVisited), link),
	}
	if featured != nil {
		cards := web.Cards([]content.PostListItem{*featured}, link)
		data.Featured = &cards[0]
	}

	meta := seo.PageMetadata("", "", settings, h.Site)
	org, err := seo.JSONLD(seo.OrganizationSchema(settings, h.Site))
	if err != nil {
		return err
	}
	return server.Render(c, fiber.StatusOK, h.page(c, meta, "/", org), web.Home(data))
}

func (h *handlers) blog(c fiber.Ctx) error {
	if done, err := h.configMissing(c); done {
		return err
	}
	repo := h.repo(c)
	perPage := positive(h.Site.BlogPostsPerPage, config.DefaultBlogPostsPerPage)
	number := content.ParsePageParam(c.Query("page"))

	var (
		posts []content.PostListItem
		total int
	)
	g, ctx := errgroup.WithContext(c.Context())
	g.Go(func() error {
		posts = repo.PublishedPosts(ctx, perPage, (number-1)*perPage)
		return nil
	})
	g.Go(func() error {
		total = repo.PublishedCount(ctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	page := content.Paginate(number, perPage, total)
	var cards []web.Card
	if !page.OutOfRange() {
		cards = web.Cards(posts, h.Session.CardLinker(auth.Current(c)))
	}
	meta := seo.PageMetadata("Blog", "", nil, h.Site)
	return server.Render(c, fiber.StatusOK, h.page(c, meta, c.OriginalURL()), web.BlogList(web.BlogListData{Cards: cards, Page: page}))
}

func (h *handlers) post(c fiber.Ctx) error {
	if done, err := h.configMissing(c); done {
		return err
	}
	slug := pathParam(c, "slug")
	repo := h.repo(c)
	drafting := draft.Enabled(c)

	var (
		post     *content.Post
		settings *content.SiteSettings
	)
	g, ctx := errgroup.WithContext(c.Context())
	g.Go(func() error {
		post = repo.PostBySlug(ctx, slug)
		return nil
	})
	g.Go(func() error {
		settings = repo.SiteSettings(ctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	if post == nil || (post.Status == content.StatusDraft && !drafting) {
		return fiber.ErrNotFound
	}
	// 文章只投影作者引用，完整资料按作者单独缓存。
	if post.Author != nil && post.Author.ID != "" {
		if author := repo.AuthorByID(c.Context(), post.Author.ID); author != nil {
			post.Author = author
		}
	}

	session := auth.Current(c)
	log := h.logRequest(c, "/blog/:slug", slug)
	meta := seo.PostMetadata(post, settings, h.Site)

	if decision := h.Session.Gate(post.PostListItem, session); !decision.Allowed {
		log.Debug("members_only_blocked")
		if h.Session.GateMode() == config.GateRedirect {
			return c.Redirect().Status(fiber.StatusFound).To(decision.LoginURL)
		}
		return server.Render(c, fiber.StatusOK, h.page(c, meta, "/blog/"+slug), web.MembersWall(decision.LoginURL))
	}

	body, err := postBody(post)
	if err != nil {
		log.WithError(err).Error("render_body_failed")
		return err
	}
	ld, err := seo.JSONLD(seo.BlogPostingSchema(post, settings, h.Site))
	if err != nil {
		return err
	}
	log.Debug("post_rendered")
	return server.Render(c, fiber.StatusOK, h.page(c, meta, "/blog/"+slug, ld), web.PostDetail(web.PostData{
		Post:           post,
		BodyHTML:       body,
		ReadingMinutes: render.ReadingTime(render.PlainText(body)),
		Draft:          drafting,
		Track:          !drafting,
	}))
}

// postBody 优先渲染 Markdown 正文，否则渲染 Portable Text。
func postBody(post *content.Post) (string, error) {
	if post.MarkdownBody != "" {
		return render.Markdown(post.MarkdownBody)
	}
	return render.PortableText(post.Body), nil
}

// search 处理 /search?q=，在最近发布的文章中按标题、摘要与标签匹配。
// 没有结果时推荐精选文章，没有精选文章时退回最新文章。
func (h *handlers) search(c fiber.Ctx) error {
	if done, err := h.configMissing(c); done {
		return err
	}
	repo := h.repo(c)
	query := c.Query("q")

	var posts, suggestions []content.PostListItem
	g, ctx := errgroup.WithContext(c.Context())
	if strings.TrimSpace(query) != "" {
		g.Go(func() error {
			posts = repo.PublishedPosts(ctx, searchPostLimit, 0)
			return nil
		})
	}
	g.Go(func() error {
		suggestions = repo.FeaturedPosts(ctx, content.DefaultFeaturedLimit)
		if len(suggestions) == 0 {
			suggestions = repo.LatestPosts(ctx, content.DefaultFeaturedLimit)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	results := search.Posts(posts, query)
	h.logRequest(c, "/search", "").WithField("results", len(results)).Debug("search_completed")

	link := h.Session.CardLinker(auth.Current(c))
	meta := seo.PageMetadata("Search", "", nil, h.Site)
	meta.Robots = seo.Robots{Follow: true}
	page := h.page(c, meta, c.OriginalURL())
	page.Query = strings.TrimSpace(query)
	return server.Render(c, fiber.StatusOK, page, web.Search(web.SearchData{
		Query:       query,
		Results:     web.Cards(results, link),
		Suggestions: web.Cards(suggestions, link),
	}))
}

func (h *handlers) tags(c fiber.Ctx) error {
	if done, err := h.configMissing(c); done {
		return err
	}
	tags := h.repo(c).TagsWithCounts(c.Context())
	meta := seo.PageMetadata("Tags", "Things I blog about", nil, h.Site)
	return server.Render(c, fiber.StatusOK, h.page(c, meta, "/tags"), web.TagsIndex(tags))
}

func (h *handlers) tag(c fiber.Ctx) error {
	return h.renderTag(c, pathParam(c, "tag"), 1, false)
}

// tagPage 处理 /tags/:tag/page/:page，非数字、小于 1 或超出总页数时 404。
func (h *handlers) tagPage(c fiber.Ctx) error {
	number, ok := content.ParsePathPage(c.Params("page"))
	if !ok {
		return fiber.ErrNotFound
	}
	return h.renderTag(c, pathParam(c, "tag"), number, true)
}

func (h *handlers) renderTag(c fiber.Ctx, slug string, number int, strict bool) error {
	if done, err := h.configMissing(c); done {
		return err
	}
	if strict && number < 1 {
		return fiber.ErrNotFound
	}
	repo := h.repo(c)
	perPage := positive(h.Site.TagPostsPerPage, config.DefaultTagPostsPerPage)

	var (
		posts []content.PostListItem
		total int
		tag   *content.Tag
	)
	g, ctx := errgroup.WithContext(c.Context())
	g.Go(func() error {
		posts = repo.PostsByTag(ctx, slug, perPage, (number-1)*perPage)
		return nil
	})
	g.Go(func() error {
		total = repo.PostsByTagCount(ctx, slug)
		return nil
	})
	g.Go(func() error {
		tag = repo.TagBySlug(ctx, slug)
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	page := content.Paginate(number, perPage, total)
	if strict && page.Exceeds() {
		return fiber.ErrNotFound
	}
	title := slug
	if tag != nil && tag.Title != "" {
		title = tag.Title
	}
	meta := seo.PageMetadata(title, h.siteTitle()+" "+title+" tagged content", nil, h.Site)
	meta.Canonical = seo.CanonicalURL("/tags/"+url.PathEscape(slug), h.Site.URL)
	return server.Render(c, fiber.StatusOK, h.page(c, meta, c.OriginalURL()), web.TagPage(web.TagPageData{
		Title: title,
		Slug:  url.PathEscape(slug),
		Total: total,
		Cards: web.Cards(posts, h.Session.CardLinker(auth.Current(c))),
		Page:  page,
	}))
}

func (h *handlers) projects(c fiber.Ctx) error {
	if done, err := h.configMissing(c); done {
		return err
	}
	repo := h.repo(c)

	filter := search.Filter{
		Status:   c.Query("status", search.All),
		Category: c.Query("category", search.All),
		Query:    c.Query("q"),
	}

	var (
		all        []content.ProjectListItem
		featured   []content.ProjectListItem
		categories []string
	)
	g, ctx := errgroup.WithContext(c.Context())
	g.Go(func() error {
		all = listProjects(ctx, repo, filter)
		return nil
	})
	g.Go(func() error {
		featured = repo.FeaturedProjects(ctx, content.DefaultFeaturedProjectLimit)
		return nil
	})
	g.Go(func() error {
		categories = repo.ProjectCategories(ctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	meta := seo.PageMetadata("Projects", "Open-source tools and experiments", nil, h.Site)
	return server.Render(c, fiber.StatusOK, h.page(c, meta, "/projects"), web.Projects(web.ProjectsData{
		Featured:   featured,
		Projects:   search.Projects(all, filter),
		Categories: categories,
		Filter:     filter,
	}))
}

// listProjects 在只有单一状态或分类条件时交给 CMS 过滤，其余情况取全部后在内存中过滤。
func listProjects(ctx context.Context, repo *content.Repository, f search.Filter) []content.ProjectListItem {
	switch {
	case f.Query != "":
	case f.HasStatus() && !f.HasCategory():
		return repo.ProjectsByStatus(ctx, content.ProjectStatus(f.Status), projectListLimit)
	case f.HasCategory() && !f.HasStatus():
		return repo.ProjectsByCategory(ctx, f.Category, projectListLimit)
	}
	return repo.AllProjects(ctx, projectListLimit, 0)
}

func (h *handlers) project(c fiber.Ctx) error {
	if done, err := h.configMissing(c); done {
		return err
	}
	slug := pathParam(c, "slug")
	project := h.repo(c).ProjectBySlug(c.Context(), slug)
	if project == nil {
		return fiber.ErrNotFound
	}
	meta := seo.PageMetadata(project.Title, project.ShortDescription, nil, h.Site)
	if img, ok := seo.OGImage(project.HeroImage, project.Title); ok {
		meta.OpenGraph.Images = []seo.Image{img}
		meta.Twitter.Images = []string{img.URL}
	}
	body := render.PortableText(project.Body)
	return server.Render(c, fiber.StatusOK, h.page(c, meta, "/projects/"+slug), web.ProjectDetail(project, body))
}

func (h *handlers) account(c fiber.Ctx) error {
	session := auth.Current(c)
	if session == nil {
		return c.Redirect().Status(fiber.StatusTemporaryRedirect).To(h.Session.LoginURL("/account"))
	}
	meta := seo.PageMetadata("Account", "", nil, h.Site)
	meta.Robots = seo.Robots{}
	return server.Render(c, fiber.StatusOK, h.page(c, meta, "/account"), web.Account(session))
}

func (h *handlers) signOut(c fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     h.Session.CookieName(),
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.Redirect().Status(fiber.StatusSeeOther).To("/")
}

// studio 跳转到 CMS 厂商托管的编辑后台，未配置时 404。
func (h *handlers) studio(c fiber.Ctx) error {
	if h.Site.StudioURL == "" {
		return fiber.ErrNotFound
	}
	return c.Redirect().Status(fiber.StatusFound).To(h.Site.StudioURL)
}

func pathParam(c fiber.Ctx, name string) string {
	raw := c.Params(name)
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

func positive(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
