package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/NikhilNandyala/azure-daily-blog/internal/auth"
	"github.com/NikhilNandyala/azure-daily-blog/internal/cms"
	"github.com/NikhilNandyala/azure-daily-blog/internal/config"
	"github.com/NikhilNandyala/azure-daily-blog/internal/content"
	"github.com/NikhilNandyala/azure-daily-blog/internal/logging"
	"github.com/NikhilNandyala/azure-daily-blog/internal/render"
)

// fail 输出错误并设置退出码 1。
func fail(code *int, format string, args ...any) error {
	fmt.Fprintf(stdErr, format+"\n", args...)
	*code = 1
	return nil
}

func newPostCommand(configFlag *string, code *int) *cobra.Command {
	var (
		width    int
		style    string
		drafts   bool
		timeout  time.Duration
		rawPrint bool
	)
	cmd := &cobra.Command{
		Use:   "post <slug>",
		Short: "在终端预览一篇文章",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(resolveConfigPath(*configFlag))
			if err != nil {
				return fail(code, "加载配置失败: %v", err)
			}
			if !cfg.CMS.Configured() {
				return fail(code, "CMS 未配置，请设置 SANITY_PROJECT_ID 与 SANITY_DATASET")
			}
			_, repo, err := buildRepository(cfg, logging.NewCLILogger(stdErr))
			if err != nil {
				return fail(code, "%v", err)
			}
			if drafts {
				if !cfg.DraftConfigured() {
					return fail(code, "草稿预览需要 SANITY_DRAFT_TOKEN")
				}
				repo = repo.WithPerspective(cms.PerspectivePreviewDrafts)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			post := repo.PostBySlug(ctx, args[0])
			if post == nil {
				return fail(code, "文章不存在: %s", args[0])
			}

			doc := postMarkdown(post)
			if rawPrint {
				_, _ = io.WriteString(stdOut, doc)
				return nil
			}
			out, err := render.Terminal(doc, width, style)
			if err != nil {
				return fail(code, "渲染失败: %v", err)
			}
			_, _ = io.WriteString(stdOut, out)
			return nil
		},
	}
	cmd.Flags().IntVar(&width, "width", 80, "换行宽度")
	cmd.Flags().StringVar(&style, "style", "auto", "glamour 样式（auto/dark/light/notty）")
	cmd.Flags().BoolVar(&drafts, "draft", false, "读取草稿版本")
	cmd.Flags().DurationVar(&timeout, "timeout", 15*time.Second, "CMS 请求超时")
	cmd.Flags().BoolVar(&rawPrint, "markdown", false, "直接输出 markdown，不做终端渲染")
	return cmd
}

// postMarkdown 拼接标题、元信息与正文；markdown 正文优先于 Portable Text。
func postMarkdown(post *content.Post) string {
	var sb strings.Builder
	sb.WriteString("# " + post.Title + "\n\n")

	var meta []string
	if t := post.PublishedTime(); !t.IsZero() {
		meta = append(meta, t.Format("January 2, 2006")+" ("+humanize.Time(t)+")")
	} else {
		meta = append(meta, "Date not set")
	}
	if post.Author != nil && post.Author.Name != "" {
		meta = append(meta, "by "+post.Author.Name)
	}
	if post.Status != content.StatusPublished {
		meta = append(meta, strings.ToUpper(string(post.Status)))
	}
	if post.MembersOnly {
		meta = append(meta, "members only")
	}
	sb.WriteString("_" + strings.Join(meta, " · ") + "_\n\n")

	if len(post.Tags) > 0 {
		tags := make([]string, 0, len(post.Tags))
		for _, tag := range post.Tags {
			tags = append(tags, "`#"+tag.Title+"`")
		}
		sb.WriteString(strings.Join(tags, " ") + "\n\n")
	}

	if body := strings.TrimSpace(post.MarkdownBody); body != "" {
		sb.WriteString(body + "\n")
	} else {
		sb.WriteString(render.ToMarkdown(post.Body))
	}
	return sb.String()
}

func newTokenCommand(configFlag *string, code *int) *cobra.Command {
	var (
		subject string
		name    string
		email   string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "签发会员会话令牌（写入会话 Cookie 使用）",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(subject) == "" {
				return fail(code, "--subject 不能为空")
			}
			cfg, err := config.Load(resolveConfigPath(*configFlag))
			if err != nil {
				return fail(code, "加载配置失败: %v", err)
			}
			manager := auth.NewManager(auth.ManagerOptions{
				Secret: cfg.Secrets.SessionSecret,
				Cookie: cfg.Auth.SessionCookie,
			})
			token, err := manager.Issue(auth.Session{Subject: subject, Name: name, Email: email}, ttl)
			if err != nil {
				return fail(code, "签发令牌失败: %v", err)
			}
			fmt.Fprintln(stdOut, token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "会员唯一标识")
	cmd.Flags().StringVar(&name, "name", "", "显示名称")
	cmd.Flags().StringVar(&email, "email", "", "邮箱")
	cmd.Flags().DurationVar(&ttl, "ttl", 30*24*time.Hour, "令牌有效期")
	return cmd
}
