package web

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/a-h/templ"
	"github.com/dustin/go-humanize"

	"github.com/NikhilNandyala/azure-daily-blog/internal/content"
)

// htmlWriter 累积首个写入错误，后续写入全部跳过。
type htmlWriter struct {
	ctx context.Context
	w   io.Writer
	err error
	// children 是调用方通过 templ.WithChildren 传入的子组件。
	children templ.Component
}

func newWriter(ctx context.Context, w io.Writer) *htmlWriter {
	return &htmlWriter{ctx: ctx, w: w}
}

func (h *htmlWriter) raw(parts ...string) {
	for _, part := range parts {
		if h.err != nil {
			return
		}
		_, h.err = io.WriteString(h.w, part)
	}
}

func (h *htmlWriter) rawf(format string, args ...any) {
	h.raw(fmt.Sprintf(format, args...))
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

// link 输出 a 标签，href 经过 templ 的 URL 过滤。
func (h *htmlWriter) link(href, label string, attrs ...string) {
	h.raw(`<a href="`, safeURL(href), `"`)
	for i := 0; i+1 < len(attrs); i += 2 {
		h.raw(" ", attrs[i], `="`, templ.EscapeString(attrs[i+1]), `"`)
	}
	h.raw(">")
	h.text(label)
	h.raw("</a>")
}

func (h *htmlWriter) component(c templ.Component) {
	if h.err != nil || c == nil {
		return
	}
	h.err = c.Render(h.ctx, h.w)
}

func safeURL(raw string) string {
	return templ.EscapeString(string(templ.URL(raw)))
}

func attr(s string) string {
	return templ.EscapeString(s)
}

// component 包装渲染函数；子组件先从 ctx 取出再清除，嵌套组件不会重复渲染它。
func component(fn func(h *htmlWriter)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		children := templ.GetChildren(ctx)
		ctx = templ.ClearChildren(ctx)
		h := newWriter(ctx, w)
		h.children = children
		fn(h)
		return h.err
	})
}

// longDate 是卡片上的日期格式，例如 January 2, 2006。
func longDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("January 2, 2006")
}

// fullDate 是详情页的日期格式，带星期。
func fullDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Monday, January 2, 2006")
}

func timeTag(h *htmlWriter, raw string, t time.Time, label string) {
	h.raw(`<time datetime="`, attr(raw), `" title="`, attr(humanize.Time(t)), `">`)
	h.text(label)
	h.raw("</time>")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func views(n int) string {
	return humanize.Comma(int64(n)) + " " + plural(n, "view", "views")
}

func tagHref(tag content.Tag) string {
	return "/tags/" + tag.Slug.Current
}
