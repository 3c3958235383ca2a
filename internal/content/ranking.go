package content

import "sort"

// 排行默认条数。
const (
	DefaultMostVisited = 5
	DefaultPopularTags = 10
)

// MostVisited 按阅读数倒序排序，其次精选优先，再按发布时间从新到旧，取前 n 篇。
func MostVisited(posts []PostListItem, n int) []PostListItem {
	n = orDefault(n, DefaultMostVisited)
	ranked := make([]PostListItem, len(posts))
	copy(ranked, posts)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Views != b.Views {
			return a.Views > b.Views
		}
		if a.Featured != b.Featured {
			return a.Featured
		}
		return a.PublishedTime().After(b.PublishedTime())
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// PopularTags 按文章数倒序截取前 limit 个标签。
func PopularTags(tags []TagCount, limit int) []TagCount {
	limit = orDefault(limit, DefaultPopularTags)
	out := make([]TagCount, len(tags))
	copy(out, tags)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// SplitFeatured 拆出首篇作为头条，其余作为列表。
func SplitFeatured(posts []PostListItem) (*PostListItem, []PostListItem) {
	if len(posts) == 0 {
		return nil, nil
	}
	first := posts[0]
	return &first, posts[1:]
}
