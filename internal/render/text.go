package render

import (
	"math"
	"strings"

	"golang.org/x/net/html"
)

const wordsPerMinute = 200

// PlainText 从 HTML 中提取可读文本，忽略 script/style。
func PlainText(fragment string) string {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return ""
	}
	var sb strings.Builder
	collectText(doc, &sb)
	return strings.Join(strings.Fields(sb.String()), " ")
}

func collectText(n *html.Node, sb *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(n.Data)
		sb.WriteString(" ")
		return
	case html.ElementNode:
		switch n.Data {
		case "script", "style", "noscript":
			return
		}
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		collectText(child, sb)
	}
}

// ReadingTime 按每分钟 200 词估算阅读分钟数，至少 1 分钟。
func ReadingTime(text string) int {
	words := len(strings.Fields(text))
	minutes := int(math.Ceil(float64(words) / wordsPerMinute))
	if minutes < 1 {
		return 1
	}
	return minutes
}
