// Package seo builds page metadata and JSON-LD documents for posts and list
// pages, falling back to CMS site settings and then to the configured site.
package seo

import (
	"fmt"
	"strings"

	"github.com/NikhilNandyala/azure-daily-blog/internal/cms"
	"github.com/NikhilNandyala/azure-daily-blog/internal/config"
	"github.com/NikhilNandyala/azure-daily-blog/internal/content"
)

// 站点标题与描述的最终兜底值。
const (
	DefaultSiteTitle       = "Azure Daily Blog"
	DefaultSiteDescription = "Azure insights and technical guides"
	DefaultSiteURL         = "https://azuredailyblog.com"
)

// Image 是 OpenGraph 图片描述。
type Image struct {
	URL    string
	Width  int
	Height int
	Alt    string
	Type   string
}

// OpenGraph 对应 og:* meta。
type OpenGraph struct {
	Title         string
	Description   string
	Type          string
	URL           string
	Images        []Image
	PublishedTime string
	ModifiedTime  string
	Authors       []string
	Tags          []string
}

// Twitter 对应 twitter:* meta。
type Twitter struct {
	Card        string
	Title       string
	Description string
	Images      []string
	Creator     string
}

// Robots 对应 robots meta。
type Robots struct {
	Index           bool
	Follow          bool
	MaxImagePreview string
	MaxSnippet      int
	MaxVideoPreview int
}

// String 输出 robots meta content。
func (r Robots) String() string {
	parts := []string{"noindex", "nofollow"}
	if r.Index {
		parts[0] = "index"
	}
	if r.Follow {
		parts[1] = "follow"
	}
	if r.MaxImagePreview != "" {
		parts = append(parts, "max-image-preview:"+r.MaxImagePreview)
		parts = append(parts, fmt.Sprintf("max-snippet:%d", r.MaxSnippet))
		parts = append(parts, fmt.Sprintf("max-video-preview:%d", r.MaxVideoPreview))
	}
	return strings.Join(parts, ", ")
}

// Metadata 是一个页面的完整 SEO 信息。
type Metadata struct {
	Title       string
	Description string
	Canonical   string
	OpenGraph   OpenGraph
	Twitter     Twitter
	Robots      Robots
}

func siteTitle(settings *content.SiteSettings, site config.SiteConfig) string {
	if settings != nil && settings.SiteTitle != "" {
		return settings.SiteTitle
	}
	if site.Title != "" {
		return site.Title
	}
	return DefaultSiteTitle
}

func siteDescription(settings *content.SiteSettings, site config.SiteConfig) string {
	if settings != nil && settings.SiteDescription != "" {
		return settings.SiteDescription
	}
	if site.Description != "" {
		return site.Description
	}
	return DefaultSiteDescription
}

func siteURL(site config.SiteConfig) string {
	if site.URL == "" {
		return DefaultSiteURL
	}
	return strings.TrimRight(site.URL, "/")
}

// DefaultOGImage 返回站点设置中的默认分享图。
func DefaultOGImage(settings *content.SiteSettings) string {
	if settings == nil {
		return ""
	}
	return settings.OGImage.URL()
}

// 分享图尺寸未知时按 1200x630 声明。
const (
	defaultOGWidth  = 1200
	defaultOGHeight = 630
)

// OGImage 把 CMS 图片转换为分享图描述，尺寸取自资源 ID，解析失败时用默认尺寸。
func OGImage(img *cms.Image, alt string) (Image, bool) {
	url := img.URL()
	if url == "" {
		return Image{}, false
	}
	out := Image{URL: url, Width: defaultOGWidth, Height: defaultOGHeight, Alt: alt, Type: "image/jpeg"}
	if dims, ok := cms.ImageDimensions(img); ok {
		out.Width, out.Height = dims.Width, dims.Height
	}
	return out, true
}

// CanonicalURL 规范化 canonical 地址：绝对地址原样返回，相对地址拼接站点地址。
func CanonicalURL(raw, base string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	if base == "" {
		base = DefaultSiteURL
	}
	base = strings.TrimRight(base, "/")
	if !strings.HasPrefix(raw, "/") {
		raw = "/" + raw
	}
	return base + raw
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// PostMetadata 构建文章页的 SEO 信息，缺失字段回退到站点设置。
func PostMetadata(post *content.Post, settings *content.SiteSettings, site config.SiteConfig) Metadata {
	title := firstNonEmpty(post.SEOTitle, post.Title)
	description := firstNonEmpty(post.SEODescription, post.Excerpt, siteDescription(settings, site))
	canonical := CanonicalURL(post.CanonicalURL, siteURL(site))
	image, ok := OGImage(post.CoverImage, title)
	if !ok && settings != nil {
		image, ok = OGImage(settings.OGImage, title)
	}

	meta := Metadata{
		Title:       title + " | " + siteTitle(settings, site),
		Description: description,
		Canonical:   canonical,
		OpenGraph: OpenGraph{
			Title:         title,
			Description:   description,
			Type:          "article",
			URL:           canonical,
			PublishedTime: post.PublishedAt,
			ModifiedTime:  post.UpdatedAt,
		},
		Twitter: Twitter{
			Card:        "summary_large_image",
			Title:       title,
			Description: description,
		},
		Robots: Robots{
			Index:           post.Status == content.StatusPublished,
			Follow:          true,
			MaxImagePreview: "large",
			MaxSnippet:      -1,
			MaxVideoPreview: -1,
		},
	}
	if ok {
		meta.OpenGraph.Images = []Image{image}
		meta.Twitter.Images = []string{image.URL}
	}
	if post.Author != nil && post.Author.Name != "" {
		meta.OpenGraph.Authors = []string{post.Author.Name}
		meta.Twitter.Creator = post.Author.Name
	}
	for _, tag := range post.Tags {
		meta.OpenGraph.Tags = append(meta.OpenGraph.Tags, tag.Title)
	}
	return meta
}

// PageMetadata 构建列表页的 SEO 信息，title 为空时使用站点标题。
func PageMetadata(title, description string, settings *content.SiteSettings, site config.SiteConfig) Metadata {
	full := siteTitle(settings, site)
	switch {
	case title != "":
		full = title + " | " + full
	case settings != nil && settings.DefaultSEOTitle != "":
		full = settings.DefaultSEOTitle
	}
	if description == "" && settings != nil {
		description = settings.DefaultSEODescription
	}
	description = firstNonEmpty(description, siteDescription(settings, site))
	meta := Metadata{
		Title:       full,
		Description: description,
		OpenGraph: OpenGraph{
			Title:       firstNonEmpty(title, full),
			Description: description,
			Type:        "website",
			URL:         siteURL(site),
		},
		Twitter: Twitter{
			Card:        "summary_large_image",
			Title:       firstNonEmpty(title, full),
			Description: description,
		},
		Robots: Robots{Index: true, Follow: true},
	}
	if settings != nil {
		if image, ok := OGImage(settings.OGImage, full); ok {
			meta.OpenGraph.Images = []Image{image}
			meta.Twitter.Images = []string{image.URL}
		}
	}
	return meta
}
