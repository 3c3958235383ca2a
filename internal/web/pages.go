package web

import (
	"github.com/a-h/templ"
	"github.com/dustin/go-humanize"

	"github.com/NikhilNandyala/azure-daily-blog/internal/auth"
)

// Account 渲染会员账户页。
func Account(session *auth.Session) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<section class="account">`)
		h.link("/", "← Back to home")
		h.raw(`<h1>Account</h1><div class="profile">`)
		if session.Image != "" {
			h.raw(`<img class="avatar" src="`, safeURL(session.Image), `" alt="`, attr(session.DisplayName()), `" width="64" height="64"/>`)
		} else {
			h.raw(`<span class="avatar">`)
			h.text(session.Initial())
			h.raw(`</span>`)
		}
		h.raw(`<div><h2>`)
		h.text(session.DisplayName())
		h.raw(`</h2></div></div><dl><dt>Email</dt><dd>`)
		if session.Email != "" {
			h.text(session.Email)
		} else {
			h.raw(`Not provided`)
		}
		h.raw(`</dd>`)
		if !session.ExpiresAt.IsZero() {
			h.raw(`<dt>Session expires</dt><dd>`)
			h.text(humanize.Time(session.ExpiresAt))
			h.raw(`</dd>`)
		}
		h.raw(`</dl><form method="post" action="/account/signout"><button type="submit">Sign Out</button></form></section>`)
	})
}

// NotFound 是 404 页面。
func NotFound() templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<section class="not-found"><h1>404</h1><p>Sorry we couldn't find this page.</p>`)
		h.link("/", "Back to homepage")
		h.raw(`</section>`)
	})
}

// ConfigMissing 在 CMS 未配置时替代依赖内容的页面。
func ConfigMissing() templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<section class="config-missing"><h1>Sanity configuration missing</h1>`)
		h.raw(`<p>Set SANITY_PROJECT_ID and SANITY_DATASET to build blog pages.</p></section>`)
	})
}

// ErrorPage 是其他服务端错误的兜底页面。
func ErrorPage(status int, message string) templ.Component {
	return component(func(h *htmlWriter) {
		h.rawf(`<section class="error"><h1>%d</h1><p>`, status)
		h.text(message)
		h.raw(`</p></section>`)
	})
}
