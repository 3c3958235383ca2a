package render

import (
	"html"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

const codeStyle = "monokai"

var codeFormatter = chromahtml.New(chromahtml.WithClasses(false), chromahtml.TabWidth(2))

// CodeBlock 使用 chroma 高亮代码；语言未知时退化为转义后的 pre。
func CodeBlock(code, language, filename string) string {
	var sb strings.Builder
	sb.WriteString(`<div class="code-block">`)
	if filename != "" {
		sb.WriteString(`<div class="code-filename">` + html.EscapeString(filename) + `</div>`)
	}

	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get(codeStyle)
	if style == nil {
		style = styles.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err == nil {
		var highlighted strings.Builder
		if err = codeFormatter.Format(&highlighted, style, iterator); err == nil {
			sb.WriteString(highlighted.String())
		}
	}
	if err != nil {
		sb.WriteString("<pre><code>" + html.EscapeString(code) + "</code></pre>")
	}
	sb.WriteString("</div>")
	return sb.String()
}
