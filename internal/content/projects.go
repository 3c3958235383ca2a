package content

import (
	"context"

	"github.com/NikhilNandyala/azure-daily-blog/internal/cms"
)

// 项目查询默认条数。
const (
	DefaultProjectLimit         = 100
	DefaultFeaturedProjectLimit = 6
)

// AllProjects 按 publishedAt、_createdAt 倒序返回项目。
func (r *Repository) AllProjects(ctx context.Context, limit, offset int) []ProjectListItem {
	projects, _ := fetch[[]ProjectListItem](ctx, r, NamespaceProjects, false, cms.Query{
		Name:   "allProjects",
		GROQ:   queryAllProjects,
		Params: window(orDefault(limit, DefaultProjectLimit), offset),
	})
	return projects
}

// FeaturedProjects 返回精选项目。
func (r *Repository) FeaturedProjects(ctx context.Context, limit int) []ProjectListItem {
	projects, _ := fetch[[]ProjectListItem](ctx, r, NamespaceProjects, false, cms.Query{
		Name:   "featuredProjects",
		GROQ:   queryFeaturedProjects,
		Params: map[string]any{"limit": orDefault(limit, DefaultFeaturedProjectLimit)},
	})
	return projects
}

// ProjectBySlug 返回项目详情，不存在时为 nil。
func (r *Repository) ProjectBySlug(ctx context.Context, slug string) *Project {
	if slug == "" {
		return nil
	}
	project, ok := fetch[Project](ctx, r, NamespaceProjects, true, cms.Query{
		Name:   "projectBySlug",
		GROQ:   queryProjectBySlug,
		Params: map[string]any{"slug": slug},
	})
	if !ok || project.ID == "" {
		return nil
	}
	return &project
}

// ProjectSlugs 返回全部项目 slug。
func (r *Repository) ProjectSlugs(ctx context.Context) []string {
	slugs, _ := fetch[[]string](ctx, r, NamespaceProjects, false, cms.Query{
		Name: "projectSlugs",
		GROQ: queryProjectSlugs,
	})
	return slugs
}

// ProjectsByStatus 返回指定状态的项目。
func (r *Repository) ProjectsByStatus(ctx context.Context, status ProjectStatus, limit int) []ProjectListItem {
	projects, _ := fetch[[]ProjectListItem](ctx, r, NamespaceProjects, false, cms.Query{
		Name:   "projectsByStatus",
		GROQ:   queryProjectsByStatus,
		Params: map[string]any{"status": string(status), "limit": orDefault(limit, DefaultProjectLimit)},
	})
	return projects
}

// ProjectsByCategory 返回指定分类的项目。
func (r *Repository) ProjectsByCategory(ctx context.Context, category string, limit int) []ProjectListItem {
	projects, _ := fetch[[]ProjectListItem](ctx, r, NamespaceProjects, false, cms.Query{
		Name:   "projectsByCategory",
		GROQ:   queryProjectsByCategory,
		Params: map[string]any{"category": category, "limit": orDefault(limit, DefaultProjectLimit)},
	})
	return projects
}

// ProjectCategories 返回去重后的项目分类。
func (r *Repository) ProjectCategories(ctx context.Context) []string {
	categories, _ := fetch[[]string](ctx, r, NamespaceProjects, false, cms.Query{
		Name: "projectCategories",
		GROQ: queryProjectCategories,
	})
	return uniqueStrings(categories)
}

func uniqueStrings(values []string) []string {
	if len(values) == 0 {
		return values
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
