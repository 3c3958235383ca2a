package web

import (
	"encoding/json"
	"strconv"

	"github.com/a-h/templ"

	"github.com/NikhilNandyala/azure-daily-blog/internal/content"
)

// Card 是列表中的一篇文章及其目标链接；Locked 表示会员文章且当前无会话。
type Card struct {
	content.PostListItem
	Href   string
	Locked bool
}

// Cards 用 link 为每篇文章计算链接与锁定状态。
func Cards(posts []content.PostListItem, link func(content.PostListItem) (string, bool)) []Card {
	cards := make([]Card, 0, len(posts))
	for _, post := range posts {
		href, locked := link(post)
		cards = append(cards, Card{PostListItem: post, Href: href, Locked: locked})
	}
	return cards
}

// HomeData 是首页数据。
type HomeData struct {
	Featured    *Card
	Latest      []Card
	PopularTags []content.TagCount
	MostVisited []Card
}

// Home 渲染首页：头条、最新文章，以及热门标签与阅读最多的侧栏。
func Home(data HomeData) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<div class="home"><section class="posts">`)
		if data.Featured == nil && len(data.Latest) == 0 {
			h.raw(`<p class="empty">No posts published yet.</p>`)
		}
		if data.Featured != nil {
			h.raw(`<h2>Featured</h2>`)
			h.component(PostCard(*data.Featured, true))
		}
		if len(data.Latest) > 0 {
			h.raw(`<h2>Latest Posts</h2>`)
			for _, card := range data.Latest {
				h.component(PostCard(card, false))
			}
		}
		h.raw(`</section><aside>`)
		popularTags(h, data.PopularTags)
		mostVisited(h, data.MostVisited)
		h.raw(`</aside></div>`)
	})
}

func popularTags(h *htmlWriter, tags []content.TagCount) {
	if len(tags) == 0 {
		return
	}
	h.raw(`<section class="popular-tags"><h3>Popular Tags</h3><ul>`)
	for _, tc := range tags {
		h.raw(`<li>`)
		h.link(tagHref(tc.Tag), "#"+tc.Tag.Title)
		h.rawf(` <span class="count">%d</span></li>`, tc.Count)
	}
	h.raw(`</ul></section>`)
}

func mostVisited(h *htmlWriter, cards []Card) {
	if len(cards) == 0 {
		return
	}
	h.raw(`<section class="most-visited"><h3>Most Visited</h3><ol>`)
	for _, card := range cards {
		h.raw(`<li>`)
		h.link(card.Href, card.Title)
		h.raw(` <span class="views">`)
		h.text(views(card.Views))
		h.raw(`</span></li>`)
	}
	h.raw(`</ol></section>`)
}

// PostCard 渲染列表中的一篇文章；会员文章在锁定时链接到登录页。
func PostCard(card Card, featured bool) templ.Component {
	return component(func(h *htmlWriter) {
		class := "post-card"
		if featured {
			class += " featured"
		}
		h.raw(`<article class="`, class, `">`)
		if img := card.CoverImage.URL(); img != "" {
			h.raw(`<img src="`, safeURL(img), `" alt="`, attr(card.Title), `" loading="lazy" width="160" height="160"/>`)
		}
		h.raw(`<div class="meta">`)
		if t := card.PublishedTime(); !t.IsZero() {
			timeTag(h, card.PublishedAt, t, longDate(t))
		}
		for i, tag := range card.Tags {
			if i == 3 {
				break
			}
			h.raw(` `)
			h.link(tagHref(tag), "#"+tag.Title, "class", "tag")
		}
		h.raw(`</div><h2>`)
		h.link(card.Href, card.Title)
		h.raw(`</h2>`)
		if card.Excerpt != "" {
			h.raw(`<p class="excerpt">`)
			h.text(card.Excerpt)
			h.raw(`</p>`)
		}
		h.raw(`<footer>`)
		if card.Author != nil {
			if avatar := card.Author.Image.URL(); avatar != "" {
				h.raw(`<img class="avatar" src="`, safeURL(avatar), `" alt="`, attr(card.Author.Name), `" width="32" height="32"/>`)
			}
			h.raw(`<span class="author">`)
			h.text(card.Author.Name)
			h.raw(`</span>`)
		}
		if card.Locked {
			h.link(card.Href, "Log in to read", "class", "read-more")
		} else {
			h.link(card.Href, "Read more →", "class", "read-more")
		}
		h.raw(`</footer>`)
		if card.Featured {
			h.raw(`<span class="badge">Featured</span>`)
		}
		if card.Locked {
			h.raw(`<span class="badge members">Members Only</span>`)
		}
		h.raw(`</article>`)
	})
}

// BlogListData 是 /blog 数据。
type BlogListData struct {
	Cards []Card
	Page  content.Page
}

// BlogList 渲染分页文章列表，页码越界时显示空状态。
func BlogList(data BlogListData) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<section class="blog"><h1>Blog</h1><p>Thoughts on Azure, networking, and cloud infrastructure</p>`)
		if len(data.Cards) == 0 {
			h.raw(`<p class="empty">No posts found.</p></section>`)
			return
		}
		for _, card := range data.Cards {
			h.component(PostCard(card, false))
		}
		h.component(Pagination(data.Page, func(n int) string { return "/blog?page=" + strconv.Itoa(n) }))
		h.raw(`</section>`)
	})
}

// Pagination 仅在多于一页时输出上一页、页码与下一页。
func Pagination(page content.Page, href func(int) string) templ.Component {
	return component(func(h *htmlWriter) {
		if page.TotalPages <= 1 {
			return
		}
		h.raw(`<nav class="pagination" aria-label="Pagination">`)
		if page.HasPrev {
			h.link(href(page.PrevNumber), "← Previous", "rel", "prev")
		} else {
			h.raw(`<span></span>`)
		}
		h.rawf(`<span>Page %d of %d</span>`, page.Number, page.TotalPages)
		if page.HasNext {
			h.link(href(page.NextNumber), "Next →", "rel", "next")
		} else {
			h.raw(`<span></span>`)
		}
		h.raw(`</nav>`)
	})
}

// PostData 是文章详情页数据，BodyHTML 必须是已渲染并净化过的片段。
type PostData struct {
	Post           *content.Post
	BodyHTML       string
	ReadingMinutes int
	Draft          bool
	Track          bool
}

// PostDetail 渲染文章正文；Track 为 true 时附带阅读数上报脚本。
func PostDetail(data PostData) templ.Component {
	return component(func(h *htmlWriter) {
		post := data.Post
		h.raw(`<article class="post"><header>`)
		h.link("/", "Back to Home", "aria-label", "Back to home page")
		if data.Draft && post.Status == content.StatusDraft {
			h.raw(`<div class="badge draft">DRAFT</div>`)
		}
		h.raw(`<p class="date">`)
		if t := post.PublishedTime(); !t.IsZero() {
			timeTag(h, post.PublishedAt, t, fullDate(t))
		} else {
			h.raw(`Date not set`)
		}
		if data.ReadingMinutes > 0 {
			h.rawf(` · %d min read`, data.ReadingMinutes)
		}
		h.raw(`</p><h1>`)
		h.text(post.Title)
		h.raw(`</h1>`)
		if post.Author != nil && post.Author.Name != "" {
			h.raw(`<div class="author" id="author-`, attr(post.Author.ID), `">`)
			if avatar := post.Author.Image.URL(); avatar != "" {
				h.raw(`<img class="avatar" src="`, safeURL(avatar), `" alt="`, attr(post.Author.Name), `" width="48" height="48"/>`)
			}
			h.raw(`<p class="name">`)
			h.text(post.Author.Name)
			h.raw(`</p>`)
			if post.Author.Bio != "" {
				h.raw(`<p class="bio">`)
				h.text(post.Author.Bio)
				h.raw(`</p>`)
			}
			h.raw(`</div>`)
		}
		if len(post.Tags) > 0 {
			h.raw(`<div class="tags">`)
			for _, tag := range post.Tags {
				h.link(tagHref(tag), "#"+tag.Title, "class", "tag")
			}
			h.raw(`</div>`)
		}
		h.raw(`</header>`)
		if img := post.CoverImage.URL(); img != "" {
			h.raw(`<figure class="cover"><img src="`, safeURL(img), `" alt="`, attr(post.Title), `"/></figure>`)
		}
		h.raw(`<div class="prose">`)
		h.component(templ.Raw(data.BodyHTML))
		h.raw(`</div></article>`)
		if data.Track {
			viewTracker(h, post.Slug.Current)
		}
	})
}

// viewTracker 在页面加载一秒后上报一次阅读，失败时静默。
func viewTracker(h *htmlWriter, slug string) {
	payload, err := json.Marshal(map[string]string{"slug": slug})
	if err != nil {
		return
	}
	h.raw(`<script>setTimeout(function(){fetch("/api/views",{method:"POST",headers:{"Content-Type":"application/json"},body:JSON.stringify(`,
		string(payload), `)}).catch(function(){})},1000)</script>`)
}

// MembersWall 替代会员文章正文，引导登录。
func MembersWall(loginURL string) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<div class="members-wall"><p class="eyebrow">Members Only</p><h2>Sign in to continue</h2>`)
		h.raw(`<p>This post is reserved for members. Please sign in to unlock the content.</p>`)
		h.link(loginURL, "Log in to read", "class", "button")
		h.raw(`</div>`)
	})
}
