package views

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/NikhilNandyala/azure-daily-blog/internal/cms"
)

const queryPostViews = `*[_type == "post" && slug.current == $slug][0] { _id, "views": coalesce(views, 0) }`

type postViews struct {
	ID    string `json:"_id"`
	Views int    `json:"views"`
}

// CMSCounter 把阅读数保存在文章文档的 views 字段。
type CMSCounter struct {
	source *cms.Source
}

// NewCMSCounter 创建 CMS 后端计数器。
func NewCMSCounter(source *cms.Source) *CMSCounter {
	return &CMSCounter{source: source}
}

func (c *CMSCounter) lookup(ctx context.Context, slug string) (postViews, error) {
	client, err := c.source.For(cms.PerspectivePublished)
	if err != nil {
		return postViews{}, err
	}
	var doc postViews
	if err := client.Fetch(ctx, cms.Query{
		Name:   "postViews",
		GROQ:   queryPostViews,
		Params: map[string]any{"slug": slug},
	}, &doc); err != nil {
		return postViews{}, err
	}
	if doc.ID == "" {
		return postViews{}, ErrPostNotFound
	}
	return doc, nil
}

// Get 返回文章当前阅读数。
func (c *CMSCounter) Get(ctx context.Context, slug string) (int, error) {
	if slug == "" {
		return 0, ErrInvalidSlug
	}
	doc, err := c.lookup(ctx, slug)
	if err != nil {
		return 0, err
	}
	return doc.Views, nil
}

// Increment 以 setIfMissing + inc 的原子补丁递增阅读数，并返回变更后的值。
func (c *CMSCounter) Increment(ctx context.Context, slug string) (int, error) {
	if slug == "" {
		return 0, ErrInvalidSlug
	}
	writer, err := c.source.Writer()
	if err != nil {
		return 0, err
	}
	doc, err := c.lookup(ctx, slug)
	if err != nil {
		return 0, err
	}

	results, err := writer.Mutate(ctx, []cms.Mutation{{Patch: &cms.Patch{
		ID:           doc.ID,
		SetIfMissing: map[string]any{"views": 0},
		Inc:          map[string]int{"views": 1},
	}}})
	if err != nil {
		return 0, err
	}
	if len(results) == 0 || len(results[0].Document) == 0 {
		return doc.Views + 1, nil
	}
	var updated struct {
		Views int `json:"views"`
	}
	if err := json.Unmarshal(results[0].Document, &updated); err != nil {
		return 0, fmt.Errorf("decode patched document: %w", err)
	}
	return updated.Views, nil
}
