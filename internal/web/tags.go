package web

import (
	"strconv"

	"github.com/a-h/templ"

	"github.com/NikhilNandyala/azure-daily-blog/internal/content"
)

// TagsIndex 渲染全部标签及其文章数。
func TagsIndex(tags []content.TagCount) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<section class="tags"><h1>Tags</h1>`)
		if len(tags) == 0 {
			h.raw(`<p class="empty">No tags found.</p></section>`)
			return
		}
		h.raw(`<ul>`)
		for _, tc := range tags {
			h.raw(`<li>`)
			h.link(tagHref(tc.Tag), tc.Tag.Title)
			h.rawf(` <span class="count">(%d)</span></li>`, tc.Count)
		}
		h.raw(`</ul></section>`)
	})
}

// TagPageData 是单个标签页数据。
type TagPageData struct {
	Title string
	Slug  string
	Total int
	Cards []Card
	Page  content.Page
}

// TagPage 渲染标签下的文章列表，第一页地址为 /tags/<slug>。
func TagPage(data TagPageData) templ.Component {
	return component(func(h *htmlWriter) {
		base := "/tags/" + data.Slug
		h.raw(`<section class="tag-page">`)
		h.link("/", "Back to Home", "aria-label", "Back to home page")
		h.raw(`<h1>Tag: `)
		h.text(data.Title)
		h.raw(`</h1><p>`)
		h.rawf(`%d %s tagged with &quot;`, data.Total, plural(data.Total, "post", "posts"))
		h.text(data.Title)
		h.raw(`&quot;</p>`)
		if len(data.Cards) == 0 {
			h.raw(`<div class="empty"><p>No posts found for this tag.</p>`)
			h.link("/tags", "← View all tags")
			h.raw(`</div></section>`)
			return
		}
		for _, card := range data.Cards {
			h.component(PostCard(card, false))
		}
		h.component(Pagination(data.Page, func(n int) string {
			if n <= 1 {
				return base
			}
			return base + "/page/" + strconv.Itoa(n)
		}))
		h.raw(`</section>`)
	})
}
