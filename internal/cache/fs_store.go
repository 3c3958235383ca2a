package cache

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	fileExt     = ".json"
	lockStripes = 64
)

// NewStore 以 basePath 为根目录构建磁盘缓存，整站复用一份实例。
func NewStore(basePath string) (Store, error) {
	if strings.TrimSpace(basePath) == "" {
		return nil, errors.New("storage path required")
	}
	root, err := filepath.Abs(filepath.Join(basePath, "cache"))
	if err != nil {
		return nil, fmt.Errorf("resolve storage path: %w", err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage path: %w", err)
	}
	return &diskStore{root: root}, nil
}

// diskStore 写入与删除持有 purge 读锁加条目分段锁；Purge 持有 purge 写锁，
// 保证清理期间不会有写入落到正在删除的目录中。
type diskStore struct {
	root    string
	purge   sync.RWMutex
	stripes [lockStripes]sync.Mutex
}

func (s *diskStore) stripe(key Key) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(key.String()))
	return &s.stripes[h.Sum32()%lockStripes]
}

func (s *diskStore) Load(ctx context.Context, key Key) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	path, err := s.path(key)
	if err != nil {
		return Document{}, err
	}
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		if err == nil || errors.Is(err, fs.ErrNotExist) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	payload, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return Document{Key: key, Payload: payload, SavedAt: info.ModTime().UTC()}, nil
}

func (s *diskStore) Save(ctx context.Context, key Key, payload []byte, savedAt time.Time) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	path, err := s.path(key)
	if err != nil {
		return Document{}, err
	}
	if savedAt.IsZero() {
		savedAt = time.Now()
	}
	savedAt = savedAt.UTC()

	s.purge.RLock()
	defer s.purge.RUnlock()
	lock := s.stripe(key)
	lock.Lock()
	defer lock.Unlock()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Document{}, err
	}
	if err := writeAtomic(dir, path, payload); err != nil {
		return Document{}, fmt.Errorf("write %s: %w", key, err)
	}
	if err := os.Chtimes(path, savedAt, savedAt); err != nil {
		return Document{}, err
	}
	return Document{Key: key, Payload: payload, SavedAt: savedAt}, nil
}

// writeAtomic 写入同目录临时文件后 rename，失败时清理临时文件。
func writeAtomic(dir, path string, payload []byte) (err error) {
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()
	if _, err = tmp.Write(payload); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (s *diskStore) Delete(ctx context.Context, key Key) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(key)
	if err != nil {
		return err
	}
	s.purge.RLock()
	defer s.purge.RUnlock()
	lock := s.stripe(key)
	lock.Lock()
	defer lock.Unlock()

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (s *diskStore) Purge(ctx context.Context, namespaces ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.purge.Lock()
	defer s.purge.Unlock()

	if len(namespaces) == 0 {
		entries, err := os.ReadDir(s.root)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		for _, entry := range entries {
			namespaces = append(namespaces, entry.Name())
		}
	}

	var errs []error
	for _, ns := range namespaces {
		dir, err := s.namespaceDir(ns)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := os.RemoveAll(dir); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *diskStore) Stats(ctx context.Context) ([]NamespaceStats, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	stats := make([]NamespaceStats, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		ns := NamespaceStats{Namespace: entry.Name()}
		err := filepath.WalkDir(filepath.Join(s.root, entry.Name()), func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if d.IsDir() || !strings.HasSuffix(d.Name(), fileExt) {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return nil
			}
			ns.Entries++
			ns.Bytes += info.Size()
			mod := info.ModTime().UTC()
			if ns.Oldest.IsZero() || mod.Before(ns.Oldest) {
				ns.Oldest = mod
			}
			if mod.After(ns.Newest) {
				ns.Newest = mod
			}
			return nil
		})
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		stats = append(stats, ns)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Namespace < stats[j].Namespace })
	return stats, nil
}

func (s *diskStore) path(key Key) (string, error) {
	dir, err := s.namespaceDir(key.Namespace)
	if err != nil {
		return "", err
	}
	name := strings.TrimSpace(key.Name)
	if !safeSegment(name) {
		return "", fmt.Errorf("%w: name %q", ErrInvalidKey, key.Name)
	}
	shard := name
	if len(shard) > 2 {
		shard = shard[:2]
	}
	return filepath.Join(dir, shard, name+fileExt), nil
}

func (s *diskStore) namespaceDir(namespace string) (string, error) {
	namespace = strings.TrimSpace(namespace)
	if !safeSegment(namespace) {
		return "", fmt.Errorf("%w: namespace %q", ErrInvalidKey, namespace)
	}
	return filepath.Join(s.root, namespace), nil
}

// safeSegment 只接受单级、非隐藏的路径片段。
func safeSegment(v string) bool {
	return v != "" && !strings.HasPrefix(v, ".") && !strings.ContainsAny(v, `/\`)
}
