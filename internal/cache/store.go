package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Key 定位一条缓存的查询结果：Namespace 对应文档族，Name 通常是查询摘要。
type Key struct {
	Namespace string
	Name      string
}

func (k Key) String() string {
	return k.Namespace + "/" + k.Name
}

// Document 是一条已缓存的 CMS 查询结果。
type Document struct {
	Key     Key
	Payload json.RawMessage
	SavedAt time.Time
}

// NamespaceStats 汇总单个命名空间的占用，供诊断接口输出。
type NamespaceStats struct {
	Namespace string    `json:"namespace"`
	Entries   int       `json:"entries"`
	Bytes     int64     `json:"bytes"`
	Oldest    time.Time `json:"oldest,omitzero"`
	Newest    time.Time `json:"newest,omitzero"`
}

// Store 持久化查询结果。磁盘布局：
//
//	<root>/<Namespace>/<Name 前两位>/<Name>.json
//
// SavedAt 记录在文件 mtime 上，不额外保存元数据。
type Store interface {
	// Load 读取整条结果，不存在时返回 ErrNotFound。
	Load(ctx context.Context, key Key) (Document, error)

	// Save 原子写入结果（临时文件 + rename），savedAt 为零值时取当前时间。
	Save(ctx context.Context, key Key, payload []byte, savedAt time.Time) (Document, error)

	// Delete 删除单条结果，不存在不视为错误。
	Delete(ctx context.Context, key Key) error

	// Purge 删除若干命名空间；不传参数时清空全部。
	Purge(ctx context.Context, namespaces ...string) error

	// Stats 按命名空间名称排序返回占用统计。
	Stats(ctx context.Context) ([]NamespaceStats, error)
}

var (
	// ErrNotFound 表示缓存不存在。
	ErrNotFound = errors.New("cache entry not found")
	// ErrInvalidKey 表示命名空间或名称为空、或包含路径成分。
	ErrInvalidKey = errors.New("invalid cache key")
)

// Policy 根据 TTL 判断缓存是否新鲜；TTL 为 0 表示不缓存。
type Policy struct {
	TTL time.Duration
	Now func() time.Time
}

// Enabled 表示该策略是否允许写入缓存。
func (p Policy) Enabled() bool {
	return p.TTL > 0
}

// Stamp 返回写入时间戳。
func (p Policy) Stamp() time.Time {
	if p.Now == nil {
		return time.Now().UTC()
	}
	return p.Now().UTC()
}

// Fresh 判断文档是否仍在 TTL 窗口内。
func (p Policy) Fresh(doc Document) bool {
	if !p.Enabled() {
		return false
	}
	return p.Stamp().Before(doc.SavedAt.Add(p.TTL))
}
