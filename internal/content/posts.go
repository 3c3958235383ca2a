package content

import (
	"context"

	"github.com/NikhilNandyala/azure-daily-blog/internal/cms"
)

// 默认查询条数。
const (
	DefaultLatestLimit   = 10
	DefaultFeaturedLimit = 3
	DefaultPageLimit     = 10
)

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func window(limit, offset int) map[string]any {
	if offset < 0 {
		offset = 0
	}
	return map[string]any{"start": offset, "end": offset + limit}
}

// LatestPosts 返回最新发布的文章。
func (r *Repository) LatestPosts(ctx context.Context, limit int) []PostListItem {
	posts, _ := fetch[[]PostListItem](ctx, r, NamespacePosts, false, cms.Query{
		Name:   "latestPosts",
		GROQ:   queryLatestPosts,
		Params: map[string]any{"limit": orDefault(limit, DefaultLatestLimit)},
	})
	return posts
}

// FeaturedPosts 返回精选文章。
func (r *Repository) FeaturedPosts(ctx context.Context, limit int) []PostListItem {
	posts, _ := fetch[[]PostListItem](ctx, r, NamespacePosts, false, cms.Query{
		Name:   "featuredPosts",
		GROQ:   queryFeaturedPosts,
		Params: map[string]any{"limit": orDefault(limit, DefaultFeaturedLimit)},
	})
	return posts
}

// PublishedPosts 按发布时间倒序分页返回文章。
func (r *Repository) PublishedPosts(ctx context.Context, limit, offset int) []PostListItem {
	posts, _ := fetch[[]PostListItem](ctx, r, NamespacePosts, false, cms.Query{
		Name:   "publishedPosts",
		GROQ:   queryPublishedPosts,
		Params: window(orDefault(limit, DefaultPageLimit), offset),
	})
	return posts
}

// PublishedCount 返回已发布文章总数，失败时为 0。
func (r *Repository) PublishedCount(ctx context.Context) int {
	count, _ := fetch[int](ctx, r, NamespacePosts, false, cms.Query{
		Name: "publishedCount",
		GROQ: queryPublishedCount,
	})
	return count
}

// PostBySlug 返回文章详情。published 视角只返回已发布文章；
// 草稿视角不限制状态，草稿覆盖已发布版本。
func (r *Repository) PostBySlug(ctx context.Context, slug string) *Post {
	if slug == "" {
		return nil
	}
	q := cms.Query{
		Name:   "postBySlug",
		GROQ:   queryPublishedPostBySlug,
		Params: map[string]any{"slug": slug},
	}
	if r.perspective == cms.PerspectivePreviewDrafts {
		q.GROQ = queryAnyPostBySlug
	}
	post, ok := fetch[Post](ctx, r, NamespacePosts, true, q)
	if !ok || post.ID == "" {
		return nil
	}
	return &post
}

// PostExists 判断 slug 是否对应任意状态的文章，阅读数接口用于拒绝未知 slug。
func (r *Repository) PostExists(ctx context.Context, slug string) bool {
	if slug == "" {
		return false
	}
	exists, _ := fetch[bool](ctx, r.WithPerspective(cms.PerspectivePublished), NamespacePosts, false, cms.Query{
		Name:   "postExists",
		GROQ:   queryPostExists,
		Params: map[string]any{"slug": slug},
	})
	return exists
}

// PostSlugs 返回全部已发布文章的 slug。
func (r *Repository) PostSlugs(ctx context.Context) []PostSlug {
	slugs, _ := fetch[[]PostSlug](ctx, r, NamespacePosts, false, cms.Query{
		Name: "postSlugs",
		GROQ: queryPostSlugs,
	})
	return slugs
}

// DebugPosts 返回所有文章的状态摘要，包括草稿状态的文章。
func (r *Repository) DebugPosts(ctx context.Context) []DebugPost {
	posts, _ := fetch[[]DebugPost](ctx, r.WithPerspective(cms.PerspectivePublished), NamespacePosts, false, cms.Query{
		Name: "debugPosts",
		GROQ: queryDebugPosts,
	})
	return posts
}

// AllTags 按标题升序返回全部标签。
func (r *Repository) AllTags(ctx context.Context) []Tag {
	tags, _ := fetch[[]Tag](ctx, r, NamespaceTags, false, cms.Query{
		Name: "allTags",
		GROQ: queryAllTags,
	})
	return tags
}

// TagsWithCounts 返回标签及已发布文章数，按数量倒序。
func (r *Repository) TagsWithCounts(ctx context.Context) []TagCount {
	tags, _ := fetch[[]TagCount](ctx, r, NamespaceTags, false, cms.Query{
		Name: "tagsWithCounts",
		GROQ: queryTagsWithCounts,
	})
	return tags
}

// PostsByTag 分页返回带有指定标签的已发布文章。
func (r *Repository) PostsByTag(ctx context.Context, tagSlug string, limit, offset int) []PostListItem {
	if tagSlug == "" {
		return nil
	}
	params := window(orDefault(limit, DefaultPageLimit), offset)
	params["tagSlug"] = tagSlug
	posts, _ := fetch[[]PostListItem](ctx, r, NamespacePosts, false, cms.Query{
		Name:   "postsByTag",
		GROQ:   queryPostsByTag,
		Params: params,
	})
	return posts
}

// PostsByTagCount 返回指定标签下的已发布文章数。
func (r *Repository) PostsByTagCount(ctx context.Context, tagSlug string) int {
	if tagSlug == "" {
		return 0
	}
	count, _ := fetch[int](ctx, r, NamespacePosts, false, cms.Query{
		Name:   "postsByTagCount",
		GROQ:   queryPostsByTagCount,
		Params: map[string]any{"tagSlug": tagSlug},
	})
	return count
}

// TagBySlug 返回单个标签，不存在时为 nil。
func (r *Repository) TagBySlug(ctx context.Context, slug string) *Tag {
	if slug == "" {
		return nil
	}
	tag, ok := fetch[Tag](ctx, r, NamespaceTags, true, cms.Query{
		Name:   "tagBySlug",
		GROQ:   queryTagBySlug,
		Params: map[string]any{"slug": slug},
	})
	if !ok || tag.ID == "" {
		return nil
	}
	return &tag
}

// SiteSettings 返回站点设置单例，不存在时为 nil。
func (r *Repository) SiteSettings(ctx context.Context) *SiteSettings {
	settings, ok := fetch[SiteSettings](ctx, r, NamespaceSettings, true, cms.Query{
		Name: "siteSettings",
		GROQ: querySiteSettings,
	})
	if !ok {
		return nil
	}
	return &settings
}

// AuthorByID 返回作者，不存在时为 nil。
func (r *Repository) AuthorByID(ctx context.Context, id string) *Author {
	if id == "" {
		return nil
	}
	author, ok := fetch[Author](ctx, r, NamespaceAuthors, true, cms.Query{
		Name:   "authorById",
		GROQ:   queryAuthorByID,
		Params: map[string]any{"authorId": id},
	})
	if !ok || author.ID == "" {
		return nil
	}
	return &author
}
