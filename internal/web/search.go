package web

import (
	"strings"

	"github.com/a-h/templ"
)

// SearchData 是 /search 数据；Suggestions 在没有结果时展示。
type SearchData struct {
	Query       string
	Results     []Card
	Suggestions []Card
}

// Search 渲染文章搜索结果。
func Search(data SearchData) templ.Component {
	return component(func(h *htmlWriter) {
		query := strings.TrimSpace(data.Query)
		h.raw(`<section class="search-results"><h1>Search</h1>`)
		h.component(SearchForm(query))
		switch {
		case query == "":
			h.raw(`<p class="empty">Enter a keyword to search posts.</p>`)
		case len(data.Results) == 0:
			h.raw(`<p class="empty">No posts match &quot;`)
			h.text(query)
			h.raw(`&quot;.</p>`)
		default:
			h.rawf(`<p class="summary">%d %s for &quot;`, len(data.Results), plural(len(data.Results), "result", "results"))
			h.text(query)
			h.raw(`&quot;</p>`)
			for _, card := range data.Results {
				h.component(PostCard(card, false))
			}
		}
		if len(data.Results) == 0 && len(data.Suggestions) > 0 {
			h.raw(`<h2>Featured Posts</h2>`)
			for _, card := range data.Suggestions {
				h.component(PostCard(card, false))
			}
		}
		h.raw(`</section>`)
	})
}
