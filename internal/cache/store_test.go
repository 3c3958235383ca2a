package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestStoreSaveAndLoad(t *testing.T) {
	store := newTestStore(t)
	key := Key{Namespace: "posts", Name: "3f2a9c"}

	savedAt := time.Now().Add(-time.Hour).UTC().Truncate(time.Second)
	payload := []byte(`[{"title":"Azure Firewall SNAT"}]`)
	if _, err := store.Save(context.Background(), key, payload, savedAt); err != nil {
		t.Fatalf("写入失败: %v", err)
	}

	doc, err := store.Load(context.Background(), key)
	if err != nil {
		t.Fatalf("读取失败: %v", err)
	}
	if string(doc.Payload) != string(payload) {
		t.Fatalf("缓存内容不符: %s", doc.Payload)
	}
	if !doc.SavedAt.Equal(savedAt) {
		t.Fatalf("保存时间不符: 期望 %v 得到 %v", savedAt, doc.SavedAt)
	}
}

func TestStoreLoadMissing(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Load(context.Background(), Key{Namespace: "posts", Name: "missing"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("期望 ErrNotFound，得到 %v", err)
	}
}

func TestStoreDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	key := Key{Namespace: "tags", Name: "remove"}
	if _, err := store.Save(ctx, key, []byte("[]"), time.Time{}); err != nil {
		t.Fatalf("写入失败: %v", err)
	}
	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("删除失败: %v", err)
	}
	if _, err := store.Load(ctx, key); !errors.Is(err, ErrNotFound) {
		t.Fatalf("删除后应不存在，得到 %v", err)
	}
	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("重复删除不应报错: %v", err)
	}
}

func TestStoreIgnoresDirectories(t *testing.T) {
	store := newTestStore(t)
	key := Key{Namespace: "projects", Name: "dir"}

	ds, ok := store.(*diskStore)
	if !ok {
		t.Fatalf("unexpected store type %T", store)
	}
	path, err := ds.path(key)
	if err != nil {
		t.Fatalf("路径计算失败: %v", err)
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("mkdir error: %v", err)
	}
	if _, err := store.Load(context.Background(), key); !errors.Is(err, ErrNotFound) {
		t.Fatalf("目录不应视为缓存条目，得到 %v", err)
	}
}

func TestStorePurgeNamespaces(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	posts := Key{Namespace: "posts", Name: "aa11"}
	tags := Key{Namespace: "tags", Name: "bb22"}
	settings := Key{Namespace: "settings", Name: "cc33"}
	for _, key := range []Key{posts, tags, settings} {
		if _, err := store.Save(ctx, key, []byte("{}"), time.Time{}); err != nil {
			t.Fatalf("写入失败: %v", err)
		}
	}

	if err := store.Purge(ctx, "posts", "tags"); err != nil {
		t.Fatalf("清理失败: %v", err)
	}
	for _, key := range []Key{posts, tags} {
		if _, err := store.Load(ctx, key); !errors.Is(err, ErrNotFound) {
			t.Fatalf("%s 应被清理，得到 %v", key, err)
		}
	}
	if _, err := store.Load(ctx, settings); err != nil {
		t.Fatalf("未指定的命名空间应保留: %v", err)
	}

	if err := store.Purge(ctx); err != nil {
		t.Fatalf("全部清理失败: %v", err)
	}
	if _, err := store.Load(ctx, settings); !errors.Is(err, ErrNotFound) {
		t.Fatalf("全部清理后应不存在，得到 %v", err)
	}
}

func TestStoreRejectsTraversal(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	bad := []Key{
		{Namespace: "", Name: "abc"},
		{Namespace: "../etc", Name: "abc"},
		{Namespace: "posts", Name: "../../passwd"},
		{Namespace: "posts", Name: ".hidden"},
		{Namespace: "posts", Name: ""},
	}
	for _, key := range bad {
		if _, err := store.Save(ctx, key, nil, time.Time{}); !errors.Is(err, ErrInvalidKey) {
			t.Fatalf("非法 key %+v 应返回 ErrInvalidKey，得到 %v", key, err)
		}
	}
}

func TestStoreStats(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	older := time.Date(2025, 7, 22, 8, 0, 0, 0, time.UTC)
	newer := older.Add(2 * time.Hour)

	mustSave := func(key Key, payload string, at time.Time) {
		t.Helper()
		if _, err := store.Save(ctx, key, []byte(payload), at); err != nil {
			t.Fatalf("写入失败: %v", err)
		}
	}
	mustSave(Key{Namespace: "tags", Name: "t1"}, "[]", older)
	mustSave(Key{Namespace: "posts", Name: "p1"}, "[1]", older)
	mustSave(Key{Namespace: "posts", Name: "p2"}, "[22]", newer)

	// 临时文件不计入统计。
	ds := store.(*diskStore)
	if err := os.WriteFile(filepath.Join(ds.root, "posts", ".tmp-x"), []byte("xxxx"), 0o644); err != nil {
		t.Fatalf("写入临时文件失败: %v", err)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("统计失败: %v", err)
	}
	want := []NamespaceStats{
		{Namespace: "posts", Entries: 2, Bytes: 7, Oldest: older, Newest: newer},
		{Namespace: "tags", Entries: 1, Bytes: 2, Oldest: older, Newest: older},
	}
	if diff := cmp.Diff(want, stats); diff != "" {
		t.Fatalf("统计不符 (-want +got):\n%s", diff)
	}
}

func TestPolicyFreshness(t *testing.T) {
	base := time.Date(2025, 7, 22, 10, 0, 0, 0, time.UTC)
	policy := Policy{TTL: time.Hour, Now: func() time.Time { return base }}
	doc := Document{SavedAt: policy.Stamp()}
	if !policy.Fresh(doc) {
		t.Fatalf("刚写入的条目应是新鲜的")
	}

	later := Policy{TTL: time.Hour, Now: func() time.Time { return base.Add(2 * time.Hour) }}
	if later.Fresh(doc) {
		t.Fatalf("超过 TTL 后应过期")
	}
	if (Policy{}).Enabled() || (Policy{}).Fresh(doc) {
		t.Fatalf("TTL 为 0 时不缓存")
	}
}

// newTestStore returns a Store backed by a temporary directory.
func newTestStore(t *testing.T) Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return store
}
