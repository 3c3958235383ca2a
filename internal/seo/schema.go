package seo

import (
	"encoding/json"
	"strings"

	"github.com/NikhilNandyala/azure-daily-blog/internal/config"
	"github.com/NikhilNandyala/azure-daily-blog/internal/content"
)

// Person 是 schema.org Person。
type Person struct {
	Type  string `json:"@type"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
	URL   string `json:"url,omitempty"`
}

// WebPage 是 schema.org WebPage 引用。
type WebPage struct {
	Type string `json:"@type"`
	ID   string `json:"@id"`
}

// Organization 是 schema.org Organization。
type Organization struct {
	Type string `json:"@type"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// BlogPosting 是文章页的 JSON-LD。
type BlogPosting struct {
	Context             string       `json:"@context"`
	Type                string       `json:"@type"`
	Headline            string       `json:"headline"`
	Description         string       `json:"description,omitempty"`
	Image               string       `json:"image,omitempty"`
	Author              *Person      `json:"author,omitempty"`
	DatePublished       string       `json:"datePublished,omitempty"`
	DateModified        string       `json:"dateModified,omitempty"`
	IsAccessibleForFree bool         `json:"isAccessibleForFree"`
	Keywords            string       `json:"keywords,omitempty"`
	MainEntityOfPage    WebPage      `json:"mainEntityOfPage"`
	Publisher           Organization `json:"publisher"`
}

// WebSite 是站点级 JSON-LD。
type WebSite struct {
	Context     string   `json:"@context"`
	Type        string   `json:"@type"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	Image       string   `json:"image,omitempty"`
	SameAs      []string `json:"sameAs,omitempty"`
}

// BlogPostingSchema 生成文章 JSON-LD；会员文章标记为非免费内容。
func BlogPostingSchema(post *content.Post, settings *content.SiteSettings, site config.SiteConfig) BlogPosting {
	domain := siteURL(site)
	schema := BlogPosting{
		Context:             "https://schema.org",
		Type:                "BlogPosting",
		Headline:            post.Title,
		Description:         firstNonEmpty(post.SEODescription, post.Excerpt),
		Image:               post.CoverImage.URL(),
		DatePublished:       post.PublishedAt,
		DateModified:        post.UpdatedAt,
		IsAccessibleForFree: !post.MembersOnly,
		MainEntityOfPage: WebPage{
			Type: "WebPage",
			ID:   firstNonEmpty(CanonicalURL(post.CanonicalURL, domain), domain),
		},
		Publisher: Organization{
			Type: "Organization",
			Name: siteTitle(settings, site),
			URL:  domain,
		},
	}
	if post.Author != nil {
		schema.Author = &Person{
			Type:  "Person",
			Name:  post.Author.Name,
			Image: post.Author.Image.URL(),
			URL:   domain + "#author-" + post.Author.ID,
		}
	}
	if len(post.Tags) > 0 {
		titles := make([]string, 0, len(post.Tags))
		for _, tag := range post.Tags {
			titles = append(titles, tag.Title)
		}
		schema.Keywords = strings.Join(titles, ", ")
	}
	return schema
}

// OrganizationSchema 生成站点 JSON-LD。
func OrganizationSchema(settings *content.SiteSettings, site config.SiteConfig) WebSite {
	var sameAs []string
	for _, link := range site.SocialLinks {
		if strings.TrimSpace(link) != "" {
			sameAs = append(sameAs, link)
		}
	}
	return WebSite{
		Context:     "https://schema.org",
		Type:        "WebSite",
		Name:        siteTitle(settings, site),
		Description: siteDescription(settings, site),
		URL:         siteURL(site),
		Image:       DefaultOGImage(settings),
		SameAs:      sameAs,
	}
}

// JSONLD 把结构化数据编码为可直接嵌入 script 标签的 JSON。
func JSONLD(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
