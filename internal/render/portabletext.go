package render

import (
	"fmt"
	"html"
	"strings"

	"github.com/a-h/templ"

	"github.com/NikhilNandyala/azure-daily-blog/internal/content"
)

var blockTags = map[string]string{
	"normal":     "p",
	"h1":         "h1",
	"h2":         "h2",
	"h3":         "h3",
	"h4":         "h4",
	"blockquote": "blockquote",
}

var decoratorTags = map[string]string{
	"strong":         "strong",
	"em":             "em",
	"code":           "code",
	"underline":      "u",
	"strike-through": "s",
}

// PortableText 渲染 Portable Text 块，文本内容全部经过 HTML 转义。
func PortableText(blocks []content.Block) string {
	var sb strings.Builder
	var lists listStack

	for _, block := range blocks {
		if block.Type != "block" || block.ListItem == "" {
			lists.closeAll(&sb)
		}
		switch block.Type {
		case "block":
			if block.ListItem != "" {
				lists.item(&sb, block.ListItem, max(block.Level, 1))
				writeSpans(&sb, block)
				continue
			}
			tag, ok := blockTags[block.Style]
			if !ok {
				tag = "p"
			}
			fmt.Fprintf(&sb, "<%s>", tag)
			writeSpans(&sb, block)
			fmt.Fprintf(&sb, "</%s>", tag)
		case "image":
			writeImage(&sb, block)
		case "code":
			sb.WriteString(CodeBlock(block.Code, block.Language, block.Filename))
		}
	}
	lists.closeAll(&sb)
	return sb.String()
}

// listStack 跟踪嵌套列表；栈中每一层都有一个尚未关闭的 li，
// 更深的列表写在上一层的 li 内部。
type listStack struct {
	kinds []string
}

func listTag(kind string) string {
	if kind == "number" {
		return "ol"
	}
	return "ul"
}

// item 调整嵌套层级并打开新的 li，调用方随后写入内容。
func (s *listStack) item(sb *strings.Builder, kind string, level int) {
	for len(s.kinds) > level {
		s.pop(sb)
	}
	if len(s.kinds) == level {
		if s.kinds[level-1] != kind {
			s.pop(sb)
		} else {
			sb.WriteString("</li>")
		}
	}
	for len(s.kinds) < level {
		s.kinds = append(s.kinds, kind)
		fmt.Fprintf(sb, "<%s>", listTag(kind))
		// 跳级时补一个空 li 承载下一层。
		if len(s.kinds) < level {
			sb.WriteString("<li>")
		}
	}
	sb.WriteString("<li>")
}

func (s *listStack) pop(sb *strings.Builder) {
	last := s.kinds[len(s.kinds)-1]
	s.kinds = s.kinds[:len(s.kinds)-1]
	fmt.Fprintf(sb, "</li></%s>", listTag(last))
}

func (s *listStack) closeAll(sb *strings.Builder) {
	for len(s.kinds) > 0 {
		s.pop(sb)
	}
}

func writeSpans(sb *strings.Builder, block content.Block) {
	defs := make(map[string]content.MarkDef, len(block.MarkDefs))
	for _, def := range block.MarkDefs {
		defs[def.Key] = def
	}
	for _, span := range block.Children {
		text := strings.ReplaceAll(html.EscapeString(span.Text), "\n", "<br/>")
		var closers []string
		for _, mark := range span.Marks {
			if tag, ok := decoratorTags[mark]; ok {
				fmt.Fprintf(sb, "<%s>", tag)
				closers = append(closers, "</"+tag+">")
				continue
			}
			if def, ok := defs[mark]; ok && def.Type == "link" {
				sb.WriteString(linkOpen(def.Href))
				closers = append(closers, "</a>")
			}
		}
		sb.WriteString(text)
		for i := len(closers) - 1; i >= 0; i-- {
			sb.WriteString(closers[i])
		}
	}
}

// linkOpen 经 templ.URL 过滤协议，javascript: 等地址被替换为无效占位。
func linkOpen(href string) string {
	if href == "" {
		href = "#"
	}
	escaped := html.EscapeString(string(templ.URL(href)))
	if strings.HasPrefix(href, "http") {
		return `<a href="` + escaped + `" target="_blank" rel="noopener noreferrer">`
	}
	return `<a href="` + escaped + `">`
}

func writeImage(sb *strings.Builder, block content.Block) {
	if block.Asset == nil || block.Asset.URL == "" {
		return
	}
	alt := block.Alt
	if alt == "" {
		alt = "Post image"
	}
	fmt.Fprintf(sb, `<figure><img src="%s" alt="%s" loading="lazy"/>`,
		html.EscapeString(block.Asset.URL), html.EscapeString(alt))
	if block.Caption != "" {
		fmt.Fprintf(sb, "<figcaption>%s</figcaption>", html.EscapeString(block.Caption))
	}
	sb.WriteString("</figure>")
}
