// Package views counts post views. The cms backend patches the post document
// through the mutate API; the sqlite backend keeps counters locally so the
// public site never needs a CMS write token.
package views

import (
	"context"
	"errors"
	"regexp"

	"github.com/NikhilNandyala/azure-daily-blog/internal/content"
)

var (
	// ErrPostNotFound 表示 slug 不对应任何文章。
	ErrPostNotFound = errors.New("post not found")
	// ErrInvalidSlug 表示 slug 为空或包含非法字符。
	ErrInvalidSlug = errors.New("invalid slug")
)

var slugPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._~-]{0,199}$`)

// ValidSlug 校验本地计数表接受的 slug 形态，阻止任意字符串写入表中。
// CMS 后端只要求非空，slug 作为查询参数传递。
func ValidSlug(slug string) bool {
	return slugPattern.MatchString(slug)
}

// Counter 读取与递增文章阅读数。
type Counter interface {
	Get(ctx context.Context, slug string) (int, error)
	Increment(ctx context.Context, slug string) (int, error)
}

// BulkCounter 由本地存储实现，用于在列表中覆盖 CMS 中的 views 字段。
type BulkCounter interface {
	Counts(ctx context.Context, slugs []string) (map[string]int, error)
}

// Overlay 在后端支持批量读取时，用本地计数替换列表中的 views。
func Overlay(ctx context.Context, counter Counter, posts []content.PostListItem) ([]content.PostListItem, error) {
	bulk, ok := counter.(BulkCounter)
	if !ok || len(posts) == 0 {
		return posts, nil
	}
	slugs := make([]string, 0, len(posts))
	for _, p := range posts {
		slugs = append(slugs, p.Slug.Current)
	}
	counts, err := bulk.Counts(ctx, slugs)
	if err != nil {
		return posts, err
	}
	out := make([]content.PostListItem, len(posts))
	copy(out, posts)
	for i := range out {
		out[i].Views = counts[out[i].Slug.Current]
	}
	return out, nil
}
