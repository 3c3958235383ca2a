// Package search filters already-loaded posts and projects in memory.
package search

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/NikhilNandyala/azure-daily-blog/internal/content"
)

// Posts 在标题、摘要与标签标题中做大小写不敏感的子串匹配，保持原有顺序。
// 去除空白后为空的查询不返回任何结果。
func Posts(items []content.PostListItem, query string) []content.PostListItem {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	term := strings.ToLower(query)
	var out []content.PostListItem
	for _, item := range items {
		if matchPost(item, term) {
			out = append(out, item)
		}
	}
	return out
}

func matchPost(item content.PostListItem, term string) bool {
	if strings.Contains(strings.ToLower(item.Title), term) {
		return true
	}
	if strings.Contains(strings.ToLower(item.Excerpt), term) {
		return true
	}
	for _, tag := range item.Tags {
		if strings.Contains(strings.ToLower(tag.Title), term) {
			return true
		}
	}
	return false
}

// All 表示不限制该维度的过滤值。
const All = "all"

// Filter 描述项目页的过滤条件，零值不做任何限制。
type Filter struct {
	Status   string
	Category string
	Query    string
}

// Active 表示是否存在任一非默认条件。
func (f Filter) Active() bool {
	return !isAll(f.Status) || !isAll(f.Category) || f.Query != ""
}

// HasStatus 表示是否限定了状态。
func (f Filter) HasStatus() bool { return !isAll(f.Status) }

// HasCategory 表示是否限定了分类。
func (f Filter) HasCategory() bool { return !isAll(f.Category) }

func isAll(v string) bool {
	return v == "" || v == All
}

// Projects 按状态、分类与关键字过滤项目；关键字匹配标题或任一技术栈条目。
func Projects(items []content.ProjectListItem, f Filter) []content.ProjectListItem {
	term := strings.ToLower(f.Query)
	out := make([]content.ProjectListItem, 0, len(items))
	for _, item := range items {
		if !isAll(f.Status) && string(item.Status) != f.Status {
			continue
		}
		if !isAll(f.Category) && item.Category != f.Category {
			continue
		}
		if term != "" && !matchProject(item, term) {
			continue
		}
		out = append(out, item)
	}
	return out
}

func matchProject(item content.ProjectListItem, term string) bool {
	if strings.Contains(strings.ToLower(item.Title), term) {
		return true
	}
	for _, tech := range item.TechStack {
		if strings.Contains(strings.ToLower(tech), term) {
			return true
		}
	}
	return false
}

var categoryNames = map[string]string{
	"web-app":        "Web Application",
	"mobile-app":     "Mobile App",
	"cli-tool":       "CLI Tool",
	"library":        "Library/Package",
	"infrastructure": "Infrastructure",
	"api":            "API/Backend",
	"devops":         "DevOps",
	"data-science":   "Data Science",
	"ml":             "Machine Learning",
	"other":          "Other",
}

// CategoryName 返回分类的展示名称，未知分类按单词首字母大写。
func CategoryName(key string) string {
	if name, ok := categoryNames[key]; ok {
		return name
	}
	// Caser 带状态，不能跨 goroutine 共享。
	return cases.Title(language.English).String(strings.ReplaceAll(key, "-", " "))
}

// ProjectStatuses 是项目页状态下拉框的选项顺序。
func ProjectStatuses() []string {
	return []string{All, string(content.ProjectActive), string(content.ProjectPaused), string(content.ProjectArchived)}
}
