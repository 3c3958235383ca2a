package render

import (
	"strings"
	"testing"

	"github.com/NikhilNandyala/azure-daily-blog/internal/cms"
	"github.com/NikhilNandyala/azure-daily-blog/internal/content"
)

func textBlock(style string, spans ...content.Span) content.Block {
	return content.Block{Type: "block", Style: style, Children: spans}
}

func span(text string, marks ...string) content.Span {
	return content.Span{Type: "span", Text: text, Marks: marks}
}

func TestPortableTextStylesAndMarks(t *testing.T) {
	blocks := []content.Block{
		textBlock("h2", span("Intro")),
		textBlock("normal", span("Plain "), span("bold", "strong"), span(" and "), span("<tag>", "code")),
		{
			Type:     "block",
			Style:    "normal",
			Children: []content.Span{span("docs", "lnk1"), span(" / "), span("home", "lnk2")},
			MarkDefs: []content.MarkDef{
				{Type: "link", Key: "lnk1", Href: "https://learn.microsoft.com"},
				{Type: "link", Key: "lnk2", Href: "/"},
			},
		},
		textBlock("blockquote", span("quoted")),
	}

	out := PortableText(blocks)
	expectations := []string{
		"<h2>Intro</h2>",
		"<p>Plain <strong>bold</strong> and <code>&lt;tag&gt;</code></p>",
		`<a href="https://learn.microsoft.com" target="_blank" rel="noopener noreferrer">docs</a>`,
		`<a href="/">home</a>`,
		"<blockquote>quoted</blockquote>",
	}
	for _, want := range expectations {
		if !strings.Contains(out, want) {
			t.Fatalf("输出缺少 %q:\n%s", want, out)
		}
	}
}

func TestPortableTextLists(t *testing.T) {
	blocks := []content.Block{
		{Type: "block", ListItem: "bullet", Level: 1, Children: []content.Span{span("a")}},
		{Type: "block", ListItem: "bullet", Level: 1, Children: []content.Span{span("b")}},
		{Type: "block", ListItem: "number", Level: 1, Children: []content.Span{span("one")}},
		textBlock("normal", span("after")),
	}
	out := PortableText(blocks)
	want := "<ul><li>a</li><li>b</li></ul><ol><li>one</li></ol><p>after</p>"
	if out != want {
		t.Fatalf("列表渲染错误:\n got %s\nwant %s", out, want)
	}
}

func TestPortableTextNestedLists(t *testing.T) {
	blocks := []content.Block{
		{Type: "block", ListItem: "bullet", Level: 1, Children: []content.Span{span("a")}},
		{Type: "block", ListItem: "bullet", Level: 2, Children: []content.Span{span("a.1")}},
		{Type: "block", ListItem: "number", Level: 3, Children: []content.Span{span("a.1.i")}},
		{Type: "block", ListItem: "bullet", Level: 1, Children: []content.Span{span("b")}},
	}
	out := PortableText(blocks)
	want := "<ul><li>a<ul><li>a.1<ol><li>a.1.i</li></ol></li></ul></li><li>b</li></ul>"
	if out != want {
		t.Fatalf("嵌套列表应写在父级 li 内:\n got %s\nwant %s", out, want)
	}
}

func TestPortableTextRejectsScriptLinks(t *testing.T) {
	for _, href := range []string{"javascript:alert(document.cookie)", "JavaScript:alert(1)", "data:text/html,<script>x</script>"} {
		block := content.Block{
			Type:     "block",
			Style:    "normal",
			Children: []content.Span{span("click", "lnk")},
			MarkDefs: []content.MarkDef{{Type: "link", Key: "lnk", Href: href}},
		}
		out := PortableText([]content.Block{block})
		if strings.Contains(strings.ToLower(out), "javascript:") || strings.Contains(out, "data:") {
			t.Fatalf("不安全链接 %q 未被过滤: %s", href, out)
		}
		if !strings.Contains(out, ">click</a>") {
			t.Fatalf("链接文字应保留: %s", out)
		}
	}

	safe := content.Block{
		Type:     "block",
		Style:    "normal",
		Children: []content.Span{span("mail", "m")},
		MarkDefs: []content.MarkDef{{Type: "link", Key: "m", Href: "mailto:me@example.com"}},
	}
	if out := PortableText([]content.Block{safe}); !strings.Contains(out, `href="mailto:me@example.com"`) {
		t.Fatalf("mailto 链接应保留: %s", out)
	}
}

func TestPortableTextImageAndCode(t *testing.T) {
	blocks := []content.Block{
		{Type: "image", Asset: &cms.Asset{URL: "https://cdn.example.com/a.png"}, Caption: "Diagram"},
		{Type: "image"},
		{Type: "code", Code: "package main", Language: "go", Filename: "main.go"},
	}
	out := PortableText(blocks)
	if !strings.Contains(out, `<img src="https://cdn.example.com/a.png" alt="Post image"`) {
		t.Fatalf("图片渲染错误:\n%s", out)
	}
	if !strings.Contains(out, "<figcaption>Diagram</figcaption>") {
		t.Fatalf("缺少图片说明:\n%s", out)
	}
	if strings.Count(out, "<figure>") != 1 {
		t.Fatalf("缺少资源的图片块应被跳过")
	}
	if !strings.Contains(out, `<div class="code-filename">main.go</div>`) || !strings.Contains(out, "package") {
		t.Fatalf("代码块渲染错误:\n%s", out)
	}
}

func TestCodeBlockEscapesUnknownLanguage(t *testing.T) {
	out := CodeBlock("<script>alert(1)</script>", "no-such-lang", "")
	if strings.Contains(out, "<script>") {
		t.Fatalf("代码内容必须转义:\n%s", out)
	}
}

func TestMarkdownSanitises(t *testing.T) {
	out, err := Markdown("# Title\n\n| a | b |\n|---|---|\n| 1 | 2 |\n\n<script>alert(1)</script>\n\n~~gone~~")
	if err != nil {
		t.Fatalf("渲染失败: %v", err)
	}
	if strings.Contains(out, "<script>") {
		t.Fatalf("脚本应被清洗:\n%s", out)
	}
	for _, want := range []string{`<h1 id="title">Title</h1>`, "<table>", "<del>gone</del>"} {
		if !strings.Contains(out, want) {
			t.Fatalf("输出缺少 %q:\n%s", want, out)
		}
	}
}

func TestPlainTextAndReadingTime(t *testing.T) {
	text := PlainText("<h1>Hello</h1><p>Azure <b>networking</b></p><script>var x</script>")
	if text != "Hello Azure networking" {
		t.Fatalf("纯文本提取错误: %q", text)
	}
	if ReadingTime("") != 1 {
		t.Fatalf("空文本阅读时间至少 1 分钟")
	}
	if got := ReadingTime(strings.Repeat("word ", 401)); got != 3 {
		t.Fatalf("401 词应为 3 分钟，得到 %d", got)
	}
}

func TestToMarkdownAndTerminal(t *testing.T) {
	md := ToMarkdown([]content.Block{
		textBlock("h2", span("Preview")),
		textBlock("normal", span("bold", "strong")),
		{Type: "block", ListItem: "bullet", Level: 1, Children: []content.Span{span("item")}},
		{Type: "code", Code: "echo hi", Language: "bash"},
	})
	for _, want := range []string{"## Preview", "**bold**", "- item", "```bash\necho hi\n```"} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown 缺少 %q:\n%s", want, md)
		}
	}

	out, err := Terminal(md, 60, "notty")
	if err != nil {
		t.Fatalf("终端渲染失败: %v", err)
	}
	if !strings.Contains(out, "Preview") {
		t.Fatalf("终端输出缺少标题:\n%s", out)
	}
}
