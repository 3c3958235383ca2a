package views

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS post_views (
  slug       TEXT PRIMARY KEY,
  views      INTEGER NOT NULL DEFAULT 0,
  updated_at TEXT NOT NULL
)`

// PostLookup 判断 slug 是否对应已存在的文章。
type PostLookup func(ctx context.Context, slug string) bool

// SQLiteCounter 把阅读数保存在本地 SQLite 文件。
type SQLiteCounter struct {
	db     *sql.DB
	exists PostLookup
	now    func() time.Time
}

// OpenSQLite 打开（必要时创建）计数数据库。
func OpenSQLite(path string, exists PostLookup) (*SQLiteCounter, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init sqlite schema: %w", err)
	}
	return &SQLiteCounter{db: db, exists: exists, now: time.Now}, nil
}

// Close 关闭数据库连接。
func (s *SQLiteCounter) Close() error {
	return s.db.Close()
}

func (s *SQLiteCounter) check(ctx context.Context, slug string) error {
	if !ValidSlug(slug) {
		return ErrInvalidSlug
	}
	if s.exists != nil && !s.exists(ctx, slug) {
		return ErrPostNotFound
	}
	return nil
}

// Get 返回阅读数，从未计数的文章为 0。
func (s *SQLiteCounter) Get(ctx context.Context, slug string) (int, error) {
	if err := s.check(ctx, slug); err != nil {
		return 0, err
	}
	var views int
	err := s.db.QueryRowContext(ctx, `SELECT views FROM post_views WHERE slug = ?`, slug).Scan(&views)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("query views: %w", err)
	}
	return views, nil
}

// Increment 以 upsert 递增阅读数。
func (s *SQLiteCounter) Increment(ctx context.Context, slug string) (int, error) {
	if err := s.check(ctx, slug); err != nil {
		return 0, err
	}
	var views int
	err := s.db.QueryRowContext(ctx, `
INSERT INTO post_views (slug, views, updated_at) VALUES (?, 1, ?)
ON CONFLICT(slug) DO UPDATE SET views = views + 1, updated_at = excluded.updated_at
RETURNING views`, slug, s.now().UTC().Format(time.RFC3339)).Scan(&views)
	if err != nil {
		return 0, fmt.Errorf("increment views: %w", err)
	}
	return views, nil
}

// Counts 批量读取阅读数，未出现的 slug 不在结果中。
func (s *SQLiteCounter) Counts(ctx context.Context, slugs []string) (map[string]int, error) {
	out := make(map[string]int, len(slugs))
	if len(slugs) == 0 {
		return out, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(slugs)), ",")
	args := make([]any, len(slugs))
	for i, slug := range slugs {
		args[i] = slug
	}
	rows, err := s.db.QueryContext(ctx, `SELECT slug, views FROM post_views WHERE slug IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("query views: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var slug string
		var views int
		if err := rows.Scan(&slug, &views); err != nil {
			return nil, err
		}
		out[slug] = views
	}
	return out, rows.Err()
}
