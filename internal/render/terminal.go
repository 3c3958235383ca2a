package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/NikhilNandyala/azure-daily-blog/internal/content"
)

// Terminal 把 markdown 渲染为终端输出，CLI 预览使用。style 为空或 auto 时按终端背景自动选择。
func Terminal(markdown string, width int, style string) (string, error) {
	if width <= 0 {
		width = 80
	}
	styleOpt := glamour.WithAutoStyle()
	if style != "" && style != "auto" {
		styleOpt = glamour.WithStandardStyle(style)
	}
	renderer, err := glamour.NewTermRenderer(
		styleOpt,
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("create terminal renderer: %w", err)
	}
	return renderer.Render(markdown)
}

// ToMarkdown 把 Portable Text 转成 markdown，供终端预览。
func ToMarkdown(blocks []content.Block) string {
	var sb strings.Builder
	for _, block := range blocks {
		switch block.Type {
		case "block":
			text := spanMarkdown(block)
			switch {
			case block.ListItem == "number":
				sb.WriteString(strings.Repeat("  ", max(block.Level-1, 0)) + "1. " + text + "\n")
				continue
			case block.ListItem != "":
				sb.WriteString(strings.Repeat("  ", max(block.Level-1, 0)) + "- " + text + "\n")
				continue
			case block.Style == "h1":
				sb.WriteString("# " + text)
			case block.Style == "h2":
				sb.WriteString("## " + text)
			case block.Style == "h3":
				sb.WriteString("### " + text)
			case block.Style == "h4":
				sb.WriteString("#### " + text)
			case block.Style == "blockquote":
				sb.WriteString("> " + text)
			default:
				sb.WriteString(text)
			}
		case "image":
			if block.Asset == nil {
				continue
			}
			sb.WriteString("![" + block.Alt + "](" + block.Asset.URL + ")")
		case "code":
			sb.WriteString("```" + block.Language + "\n" + block.Code + "\n```")
		default:
			continue
		}
		sb.WriteString("\n\n")
	}
	return sb.String()
}

func spanMarkdown(block content.Block) string {
	defs := make(map[string]string, len(block.MarkDefs))
	for _, def := range block.MarkDefs {
		if def.Type == "link" {
			defs[def.Key] = def.Href
		}
	}
	var sb strings.Builder
	for _, span := range block.Children {
		text := span.Text
		for _, mark := range span.Marks {
			switch mark {
			case "strong":
				text = "**" + text + "**"
			case "em":
				text = "_" + text + "_"
			case "code":
				text = "`" + text + "`"
			case "strike-through":
				text = "~~" + text + "~~"
			default:
				if href, ok := defs[mark]; ok {
					text = "[" + text + "](" + href + ")"
				}
			}
		}
		sb.WriteString(text)
	}
	return sb.String()
}
