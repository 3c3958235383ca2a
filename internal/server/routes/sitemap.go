package routes

import (
	"encoding/xml"
	"net/url"

	"github.com/gofiber/fiber/v3"
	"golang.org/x/sync/errgroup"

	"github.com/NikhilNandyala/azure-daily-blog/internal/content"
	"github.com/NikhilNandyala/azure-daily-blog/internal/seo"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

type sitemapDoc struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// sitemap 输出已发布文章、标签与项目的地址，始终使用 published 视角。
func (h *handlers) sitemap(c fiber.Ctx) error {
	repo := h.Content

	var (
		posts    []content.PostSlug
		tags     []content.Tag
		projects []string
	)
	g, ctx := errgroup.WithContext(c.Context())
	g.Go(func() error {
		posts = repo.PostSlugs(ctx)
		return nil
	})
	g.Go(func() error {
		tags = repo.AllTags(ctx)
		return nil
	})
	g.Go(func() error {
		projects = repo.ProjectSlugs(ctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	doc := sitemapDoc{XMLNS: sitemapNS}
	add := func(path, lastMod string) {
		doc.URLs = append(doc.URLs, sitemapURL{Loc: seo.CanonicalURL(path, h.Site.URL), LastMod: lastMod})
	}
	for _, path := range []string{"/", "/blog", "/tags", "/projects"} {
		add(path, "")
	}
	for _, post := range posts {
		if post.Slug != "" {
			add("/blog/"+url.PathEscape(post.Slug), post.PublishedAt)
		}
	}
	for _, tag := range tags {
		if tag.Slug.Current != "" {
			add("/tags/"+url.PathEscape(tag.Slug.Current), "")
		}
	}
	for _, slug := range projects {
		if slug != "" {
			add("/projects/"+url.PathEscape(slug), "")
		}
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationXMLCharsetUTF8)
	return c.Send(append([]byte(xml.Header), body...))
}
