package content

import (
	"time"

	"github.com/NikhilNandyala/azure-daily-blog/internal/cms"
)

// PostStatus 是文章在 CMS 中的发布状态。
type PostStatus string

const (
	StatusDraft     PostStatus = "draft"
	StatusPublished PostStatus = "published"
)

// ProjectStatus 是项目的维护状态。
type ProjectStatus string

const (
	ProjectActive   ProjectStatus = "active"
	ProjectPaused   ProjectStatus = "paused"
	ProjectArchived ProjectStatus = "archived"
)

// Slug 对应 CMS slug 字段。
type Slug struct {
	Current string `json:"current"`
}

// Tag 是文章标签。
type Tag struct {
	ID    string `json:"_id"`
	Title string `json:"title"`
	Slug  Slug   `json:"slug"`
}

// TagCount 是标签及其已发布文章数。
type TagCount struct {
	Tag   Tag `json:"tag"`
	Count int `json:"count"`
}

// Author 是文章作者。
type Author struct {
	ID    string     `json:"_id,omitempty"`
	Name  string     `json:"name"`
	Bio   string     `json:"bio,omitempty"`
	Image *cms.Image `json:"image,omitempty"`
}

// PostListItem 是列表页使用的文章投影，不含正文。
type PostListItem struct {
	ID          string     `json:"_id"`
	CreatedAt   string     `json:"_createdAt"`
	Title       string     `json:"title"`
	Slug        Slug       `json:"slug"`
	Excerpt     string     `json:"excerpt,omitempty"`
	CoverImage  *cms.Image `json:"coverImage,omitempty"`
	Tags        []Tag      `json:"tags,omitempty"`
	Author      *Author    `json:"author,omitempty"`
	PublishedAt string     `json:"publishedAt,omitempty"`
	Featured    bool       `json:"featured"`
	MembersOnly bool       `json:"membersOnly"`
	Status      PostStatus `json:"status"`
	Views       int        `json:"views"`
}

// PublishedTime 解析 publishedAt，缺失或非法时返回零值。
func (p PostListItem) PublishedTime() time.Time {
	return parseTime(p.PublishedAt)
}

// Published 表示文章状态是否为 published。
func (p PostListItem) Published() bool {
	return p.Status == StatusPublished
}

// Post 是详情页使用的完整文章。
type Post struct {
	PostListItem
	UpdatedAt      string  `json:"_updatedAt"`
	Body           []Block `json:"body,omitempty"`
	MarkdownBody   string  `json:"markdownBody,omitempty"`
	SEOTitle       string  `json:"seoTitle,omitempty"`
	SEODescription string  `json:"seoDescription,omitempty"`
	CanonicalURL   string  `json:"canonicalUrl,omitempty"`
}

// UpdatedTime 解析 _updatedAt。
func (p Post) UpdatedTime() time.Time {
	return parseTime(p.UpdatedAt)
}

// PostSlug 是站点地图与预生成使用的精简投影。
type PostSlug struct {
	Slug        string `json:"slug"`
	PublishedAt string `json:"publishedAt"`
}

// DebugPost 供 /-/posts 诊断接口输出，包含全部状态的文章。
type DebugPost struct {
	ID          string     `json:"_id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Status      PostStatus `json:"status"`
	PublishedAt string     `json:"publishedAt,omitempty"`
}

// SiteSettings 是 CMS 中的全局站点设置单例。
type SiteSettings struct {
	SiteTitle             string     `json:"siteTitle"`
	SiteDescription       string     `json:"siteDescription"`
	DefaultSEOTitle       string     `json:"defaultSeoTitle"`
	DefaultSEODescription string     `json:"defaultSeoDescription"`
	OGImage               *cms.Image `json:"ogImage,omitempty"`
}

// ProjectListItem 是项目列表投影。
type ProjectListItem struct {
	ID               string        `json:"_id"`
	CreatedAt        string        `json:"_createdAt"`
	Title            string        `json:"title"`
	Slug             Slug          `json:"slug"`
	ShortDescription string        `json:"shortDescription,omitempty"`
	HeroImage        *cms.Image    `json:"heroImage,omitempty"`
	TechStack        []string      `json:"techStack,omitempty"`
	Category         string        `json:"category,omitempty"`
	Status           ProjectStatus `json:"status"`
	RepoURL          string        `json:"repoUrl,omitempty"`
	LiveURL          string        `json:"liveUrl,omitempty"`
	DocsURL          string        `json:"docsUrl,omitempty"`
	Featured         bool          `json:"featured"`
	PublishedAt      string        `json:"publishedAt,omitempty"`
}

// Project 是项目详情。
type Project struct {
	ProjectListItem
	UpdatedAt string      `json:"_updatedAt"`
	Body      []Block     `json:"body,omitempty"`
	Gallery   []cms.Image `json:"gallery,omitempty"`
}

// Block 是 Portable Text 的一个块；image 与 code 块复用同一结构。
type Block struct {
	Type     string    `json:"_type"`
	Key      string    `json:"_key,omitempty"`
	Style    string    `json:"style,omitempty"`
	ListItem string    `json:"listItem,omitempty"`
	Level    int       `json:"level,omitempty"`
	Children []Span    `json:"children,omitempty"`
	MarkDefs []MarkDef `json:"markDefs,omitempty"`

	Asset   *cms.Asset `json:"asset,omitempty"`
	Alt     string     `json:"alt,omitempty"`
	Caption string     `json:"caption,omitempty"`

	Code     string `json:"code,omitempty"`
	Language string `json:"language,omitempty"`
	Filename string `json:"filename,omitempty"`
}

// Span 是块内的一段文本。
type Span struct {
	Type  string   `json:"_type"`
	Key   string   `json:"_key,omitempty"`
	Text  string   `json:"text"`
	Marks []string `json:"marks,omitempty"`
}

// MarkDef 是块级注解定义，目前只有 link。
type MarkDef struct {
	Type string `json:"_type"`
	Key  string `json:"_key"`
	Href string `json:"href,omitempty"`
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
