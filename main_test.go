package main

import (
	"strings"
	"testing"
	"time"

	"github.com/NikhilNandyala/azure-daily-blog/internal/auth"
	"github.com/NikhilNandyala/azure-daily-blog/internal/content"
)

func TestResolveConfigPathPriority(t *testing.T) {
	t.Setenv(configEnv, "/tmp/env.toml")

	if got := resolveConfigPath(""); got != "/tmp/env.toml" {
		t.Fatalf("应优先使用环境变量，得到 %s", got)
	}
	if got := resolveConfigPath("/tmp/flag.toml"); got != "/tmp/flag.toml" {
		t.Fatalf("flag 应高于环境变量，得到 %s", got)
	}

	t.Setenv(configEnv, "")
	if got := resolveConfigPath(""); got != "config.toml" {
		t.Fatalf("默认路径错误: %s", got)
	}
}

func TestRunCheckConfigSuccess(t *testing.T) {
	useBufferWriters(t)
	code := run(cliOptions{configPath: configFixture(t, "valid.toml"), checkOnly: true})
	if code != 0 {
		t.Fatalf("期望退出码 0，得到 %d: %s", code, stdErrBuffer().String())
	}
}

func TestRunCheckConfigFailure(t *testing.T) {
	useBufferWriters(t)
	code := run(cliOptions{configPath: configFixture(t, "missing.toml"), checkOnly: true})
	if code == 0 {
		t.Fatalf("无效配置应返回非零退出码")
	}
	if !strings.Contains(stdErrBuffer().String(), "加载配置失败") {
		t.Fatalf("应输出配置错误: %s", stdErrBuffer().String())
	}
}

func TestRunVersionOutput(t *testing.T) {
	useBufferWriters(t)
	code := run(cliOptions{showVersion: true})
	if code != 0 {
		t.Fatalf("version 模式应成功退出，得到 %d", code)
	}
	if !strings.Contains(stdOutBuffer().String(), "azure-daily-blog") {
		t.Fatalf("version 输出应包含 azure-daily-blog 标识")
	}
}

func TestExecuteFlags(t *testing.T) {
	useBufferWriters(t)
	if code := execute([]string{"--version"}); code != 0 {
		t.Fatalf("--version 应成功，得到 %d", code)
	}
	if !strings.Contains(stdOutBuffer().String(), "azure-daily-blog") {
		t.Fatalf("--version 未输出版本")
	}

	if code := execute([]string{"--config", configFixture(t, "valid.toml"), "--check-config"}); code != 0 {
		t.Fatalf("--check-config 应成功，得到 %d: %s", code, stdErrBuffer().String())
	}

	if code := execute([]string{"--no-such-flag"}); code != 2 {
		t.Fatalf("未知参数应返回 2，得到 %d", code)
	}
}

func TestTokenCommand(t *testing.T) {
	useBufferWriters(t)
	t.Setenv("BLOG_SESSION_SECRET", "cli-secret")
	cfgPath := configFixture(t, "valid.toml")

	code := execute([]string{"token", "--config", cfgPath, "--subject", "u-1", "--name", "Ada", "--ttl", "1h"})
	if code != 0 {
		t.Fatalf("token 命令失败 (%d): %s", code, stdErrBuffer().String())
	}
	token := strings.TrimSpace(stdOutBuffer().String())
	manager := auth.NewManager(auth.ManagerOptions{Secret: "cli-secret"})
	session, err := manager.Verify(token)
	if err != nil {
		t.Fatalf("令牌应可校验: %v", err)
	}
	if session.Subject != "u-1" || session.Name != "Ada" {
		t.Fatalf("会话内容错误: %+v", session)
	}
	if time.Until(session.ExpiresAt) > time.Hour {
		t.Fatalf("有效期应遵循 --ttl")
	}

	stdErrBuffer().Reset()
	if code := execute([]string{"token", "--config", cfgPath}); code != 1 {
		t.Fatalf("缺少 subject 应返回 1，得到 %d", code)
	}
}

func TestPostCommandRequiresCMS(t *testing.T) {
	useBufferWriters(t)
	code := execute([]string{"post", "--config", configFixture(t, "unconfigured.toml"), "hello"})
	if code != 1 {
		t.Fatalf("CMS 未配置应返回 1，得到 %d", code)
	}
	if !strings.Contains(stdErrBuffer().String(), "CMS 未配置") {
		t.Fatalf("错误提示不符: %s", stdErrBuffer().String())
	}
}

func TestPostMarkdown(t *testing.T) {
	post := &content.Post{
		PostListItem: content.PostListItem{
			Title:       "Hub networking",
			Status:      content.StatusDraft,
			MembersOnly: true,
			Author:      &content.Author{Name: "Ada"},
			Tags:        []content.Tag{{Title: "Azure"}},
		},
		Body: []content.Block{{
			Type:     "block",
			Style:    "h2",
			Children: []content.Span{{Type: "span", Text: "Peering"}},
		}},
	}
	doc := postMarkdown(post)
	for _, want := range []string{"# Hub networking", "Date not set", "by Ada", "DRAFT", "members only", "`#Azure`", "## Peering"} {
		if !strings.Contains(doc, want) {
			t.Fatalf("markdown 缺少 %q:\n%s", want, doc)
		}
	}

	post.MarkdownBody = "plain *markdown*"
	if doc := postMarkdown(post); !strings.Contains(doc, "plain *markdown*") || strings.Contains(doc, "## Peering") {
		t.Fatalf("markdown 正文应优先: %s", doc)
	}
}
