package web

import (
	"github.com/a-h/templ"

	"github.com/NikhilNandyala/azure-daily-blog/internal/auth"
	"github.com/NikhilNandyala/azure-daily-blog/internal/seo"
)

// Page 是每个页面共用的外壳信息。
type Page struct {
	SiteTitle string
	Meta      seo.Metadata
	// JSONLD 为已编码的结构化数据，逐个输出为 ld+json script。
	JSONLD   []string
	Session  *auth.Session
	LoginURL string
	Draft    bool
	// Query 回填到页头搜索框。
	Query string
}

// Layout 输出完整 HTML 文档，main 中渲染 templ.WithChildren 传入的正文。
func Layout(page Page) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"/>`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1"/>`)
		head(h, page.Meta)
		for _, doc := range page.JSONLD {
			h.raw(`<script type="application/ld+json">`, doc, `</script>`)
		}
		h.raw(`</head><body>`)
		if page.Draft {
			h.component(DraftBanner())
		}
		h.component(Header(page))
		h.raw(`<main>`)
		h.component(h.children)
		h.raw(`</main><footer><p>`)
		h.text(page.SiteTitle)
		h.raw(`</p></footer></body></html>`)
	})
}

func head(h *htmlWriter, meta seo.Metadata) {
	h.raw(`<title>`)
	h.text(meta.Title)
	h.raw(`</title>`)
	metaName(h, "description", meta.Description)
	if meta.Canonical != "" {
		h.raw(`<link rel="canonical" href="`, safeURL(meta.Canonical), `"/>`)
	}
	metaName(h, "robots", meta.Robots.String())

	og := meta.OpenGraph
	metaProperty(h, "og:title", og.Title)
	metaProperty(h, "og:description", og.Description)
	metaProperty(h, "og:type", og.Type)
	metaProperty(h, "og:url", og.URL)
	for _, img := range og.Images {
		metaProperty(h, "og:image", img.URL)
		if img.Width > 0 {
			h.rawf(`<meta property="og:image:width" content="%d"/>`, img.Width)
			h.rawf(`<meta property="og:image:height" content="%d"/>`, img.Height)
		}
		metaProperty(h, "og:image:alt", img.Alt)
		metaProperty(h, "og:image:type", img.Type)
	}
	metaProperty(h, "article:published_time", og.PublishedTime)
	metaProperty(h, "article:modified_time", og.ModifiedTime)
	for _, author := range og.Authors {
		metaProperty(h, "article:author", author)
	}
	for _, tag := range og.Tags {
		metaProperty(h, "article:tag", tag)
	}

	tw := meta.Twitter
	metaName(h, "twitter:card", tw.Card)
	metaName(h, "twitter:title", tw.Title)
	metaName(h, "twitter:description", tw.Description)
	for _, img := range tw.Images {
		metaName(h, "twitter:image", img)
	}
	metaName(h, "twitter:creator", tw.Creator)
}

func metaName(h *htmlWriter, name, value string) {
	if value == "" {
		return
	}
	h.raw(`<meta name="`, attr(name), `" content="`, attr(value), `"/>`)
}

func metaProperty(h *htmlWriter, property, value string) {
	if value == "" {
		return
	}
	h.raw(`<meta property="`, attr(property), `" content="`, attr(value), `"/>`)
}

// Header 渲染站点导航、搜索框与登录入口。
func Header(page Page) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<header><nav>`)
		h.link("/", page.SiteTitle, "class", "brand")
		h.link("/blog", "Blog")
		h.link("/tags", "Tags")
		h.link("/projects", "Projects")
		h.component(SearchForm(page.Query))
		if page.Session != nil {
			h.link("/account", page.Session.DisplayName(), "class", "account")
		} else if page.LoginURL != "" {
			h.link(page.LoginURL, "Sign in", "class", "account")
		}
		h.raw(`</nav></header>`)
	})
}

// SearchForm 是提交到 /search 的 GET 表单。
func SearchForm(query string) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<form class="search" action="/search" method="get" role="search">`)
		h.raw(`<input type="search" name="q" placeholder="Search posts" aria-label="Search posts" value="`, attr(query), `"/>`)
		h.raw(`</form>`)
	})
}

// DraftBanner 提示当前处于草稿预览并提供退出入口。
func DraftBanner() templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<div class="draft-banner" role="status"><div>`)
		h.raw(`<p><strong>Preview Mode Enabled</strong></p><p>You are viewing draft content</p></div>`)
		h.link("/api/draft/disable", "Exit Preview")
		h.raw(`</div>`)
	})
}
