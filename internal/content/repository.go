package content

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/NikhilNandyala/azure-daily-blog/internal/cache"
	"github.com/NikhilNandyala/azure-daily-blog/internal/cms"
	"github.com/NikhilNandyala/azure-daily-blog/internal/logging"
)

// 缓存命名空间，与 revalidate 规则中的命名空间一一对应。
const (
	NamespacePosts    = "posts"
	NamespaceTags     = "tags"
	NamespaceProjects = "projects"
	NamespaceSettings = "settings"
	NamespaceAuthors  = "authors"
)

// Namespaces 返回全部缓存命名空间。
func Namespaces() []string {
	return []string{NamespacePosts, NamespaceTags, NamespaceProjects, NamespaceSettings, NamespaceAuthors}
}

// Options 描述 Repository 的依赖。Store 为空或 TTL 为 0 时不缓存。
type Options struct {
	Source    *cms.Source
	Store     cache.Store
	ListTTL   time.Duration
	DetailTTL time.Duration
	Logger    *logrus.Logger
	// Clock 替换缓存新鲜度判断使用的时钟，测试用。
	Clock func() time.Time
	// FetchTimeout 限制共享查询的总时长，默认 DefaultFetchTimeout。
	FetchTimeout time.Duration
}

// DefaultFetchTimeout 是共享查询脱离请求上下文后的默认超时。
const DefaultFetchTimeout = 15 * time.Second

// Repository 绑定单一视角执行内容查询。
type Repository struct {
	source      *cms.Source
	perspective cms.Perspective
	store       cache.Store
	list        cache.Policy
	detail      cache.Policy
	group       *singleflight.Group
	timeout     time.Duration
	logger      *logrus.Logger
}

// NewRepository 创建默认绑定 published 视角的 Repository。
func NewRepository(opts Options) *Repository {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	timeout := opts.FetchTimeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &Repository{
		source:      opts.Source,
		perspective: cms.PerspectivePublished,
		store:       opts.Store,
		list:        cache.Policy{TTL: opts.ListTTL, Now: opts.Clock},
		detail:      cache.Policy{TTL: opts.DetailTTL, Now: opts.Clock},
		group:       &singleflight.Group{},
		timeout:     timeout,
		logger:      logger,
	}
}

// WithPerspective 返回绑定到指定视角的副本，缓存与 singleflight 共享。
func (r *Repository) WithPerspective(p cms.Perspective) *Repository {
	if p == "" || p == r.perspective {
		return r
	}
	clone := *r
	clone.perspective = p
	return &clone
}

// Perspective 返回当前视角。
func (r *Repository) Perspective() cms.Perspective {
	return r.perspective
}

// Configured 表示 CMS 是否可用。
func (r *Repository) Configured() bool {
	return r.source.Configured()
}

// Invalidate 清除指定命名空间的缓存；不传参数时清空全部。
func (r *Repository) Invalidate(ctx context.Context, namespaces ...string) error {
	if r.store == nil {
		return nil
	}
	return r.store.Purge(ctx, namespaces...)
}

// Cached 表示是否启用了磁盘缓存。
func (r *Repository) Cached() bool {
	return r.store != nil
}

// CacheStats 返回缓存占用统计，未启用缓存时为空。
func (r *Repository) CacheStats(ctx context.Context) ([]cache.NamespaceStats, error) {
	if r.store == nil {
		return nil, nil
	}
	return r.store.Stats(ctx)
}

// fetch 执行查询并解码；任何失败都记录日志并返回零值与 false。
func fetch[T any](ctx context.Context, r *Repository, namespace string, detail bool, q cms.Query) (T, bool) {
	var zero T
	raw, hit, err := r.load(ctx, namespace, detail, q)
	fields := logging.QueryFields(q.Name, string(r.perspective), hit)
	if err != nil {
		if errors.Is(err, cms.ErrNotConfigured) {
			r.logger.WithFields(fields).Debug("cms_not_configured")
		} else {
			r.logger.WithFields(fields).WithError(err).Error("content_query_failed")
		}
		return zero, false
	}
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return zero, false
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		r.logger.WithFields(fields).WithError(err).Error("content_decode_failed")
		return zero, false
	}
	r.logger.WithFields(fields).Debug("content_query")
	return out, true
}

func (r *Repository) load(ctx context.Context, namespace string, detail bool, q cms.Query) (json.RawMessage, bool, error) {
	client, err := r.source.For(r.perspective)
	if err != nil {
		return nil, false, err
	}

	policy := r.list
	if detail {
		policy = r.detail
	}
	cacheable := r.store != nil && r.perspective == cms.PerspectivePublished && policy.Enabled()
	key := cache.Key{Namespace: namespace, Name: cacheKey(r.perspective, q)}

	var stale json.RawMessage
	if cacheable {
		if doc, err := r.store.Load(ctx, key); err == nil {
			if policy.Fresh(doc) {
				return doc.Payload, true, nil
			}
			stale = doc.Payload
		}
	}

	// 同 key 的等待者共享这一次请求，不能随首个调用方断开而取消。
	value, err, _ := r.group.Do(key.String(), func() (any, error) {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
		defer cancel()
		var raw json.RawMessage
		if err := client.Fetch(shared, q, &raw); err != nil {
			return nil, err
		}
		if len(raw) == 0 {
			raw = json.RawMessage("null")
		}
		if cacheable {
			if _, err := r.store.Save(shared, key, raw, policy.Stamp()); err != nil {
				r.logger.WithFields(logging.QueryFields(q.Name, string(r.perspective), false)).
					WithError(err).Warn("content_cache_write_failed")
			}
		}
		return raw, nil
	})
	if err != nil {
		if stale != nil {
			r.logger.WithFields(logging.QueryFields(q.Name, string(r.perspective), true)).
				WithError(err).Warn("content_serving_stale")
			return stale, true, nil
		}
		return nil, false, err
	}
	return value.(json.RawMessage), false, nil
}

// cacheKey 由视角、查询文本与参数计算，参数 map 经 JSON 编码后键有序。
func cacheKey(p cms.Perspective, q cms.Query) string {
	h := sha256.New()
	h.Write([]byte(p))
	h.Write([]byte{0})
	h.Write([]byte(q.GROQ))
	h.Write([]byte{0})
	if len(q.Params) > 0 {
		params, _ := json.Marshal(q.Params)
		h.Write(params)
	}
	return hex.EncodeToString(h.Sum(nil))
}
