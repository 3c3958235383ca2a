package content

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func slugsOf(posts []PostListItem) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.Slug.Current)
	}
	return out
}

func post(slug string, views int, featured bool, publishedAt string) PostListItem {
	return PostListItem{Slug: Slug{Current: slug}, Views: views, Featured: featured, PublishedAt: publishedAt}
}

func TestMostVisitedOrdering(t *testing.T) {
	posts := []PostListItem{
		post("old", 0, false, "2023-01-01T00:00:00Z"),
		post("popular", 40, false, "2022-01-01T00:00:00Z"),
		post("featured", 0, true, "2021-01-01T00:00:00Z"),
		post("new", 0, false, "2024-06-01T00:00:00Z"),
		post("runner-up", 10, true, "2024-01-01T00:00:00Z"),
		post("undated", 0, false, ""),
	}

	got := slugsOf(MostVisited(posts, 0))
	want := []string{"popular", "runner-up", "featured", "new", "old"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("排行不符 (-want +got):\n%s", diff)
	}
	if posts[0].Slug.Current != "old" {
		t.Fatalf("MostVisited 不应修改入参顺序")
	}
}

func TestPopularTagsLimit(t *testing.T) {
	tags := []TagCount{
		{Tag: Tag{Title: "b"}, Count: 2},
		{Tag: Tag{Title: "a"}, Count: 9},
		{Tag: Tag{Title: "c"}, Count: 0},
	}
	got := PopularTags(tags, 2)
	if len(got) != 2 || got[0].Tag.Title != "a" || got[1].Tag.Title != "b" {
		t.Fatalf("热门标签结果错误: %+v", got)
	}
}

func TestSplitFeatured(t *testing.T) {
	first, rest := SplitFeatured(nil)
	if first != nil || rest != nil {
		t.Fatalf("空列表应返回 nil")
	}
	first, rest = SplitFeatured([]PostListItem{post("a", 0, false, ""), post("b", 0, false, "")})
	if first.Slug.Current != "a" || len(rest) != 1 {
		t.Fatalf("拆分结果错误")
	}
}
