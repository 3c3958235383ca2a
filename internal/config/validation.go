package config

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// 会员内容拦截方式。
const (
	GateWall     = "wall"
	GateRedirect = "redirect"
)

// 阅读数存储后端。
const (
	ViewsBackendCMS    = "cms"
	ViewsBackendSQLite = "sqlite"
)

var (
	projectIDPattern = regexp.MustCompile(`^[a-z0-9-]+$`)
	datasetPattern   = regexp.MustCompile(`^[a-z0-9_-]{1,64}$`)
)

// Validate 针对语义级别做进一步校验，防止非法配置启动服务。
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("配置为空")
	}

	g := c.Global
	if g.ListenPort <= 0 || g.ListenPort > 65535 {
		return newFieldError("Global.ListenPort", "必须在 1-65535")
	}
	if g.StoragePath == "" {
		return newFieldError("Global.StoragePath", "不能为空")
	}

	if err := c.validateSite(); err != nil {
		return err
	}
	if err := c.validateCMS(); err != nil {
		return err
	}

	if c.Cache.Enabled {
		if c.Cache.ListTTL.DurationValue() <= 0 {
			return newFieldError(sectionField("Cache", "ListTTL"), "必须大于 0")
		}
		if c.Cache.DetailTTL.DurationValue() <= 0 {
			return newFieldError(sectionField("Cache", "DetailTTL"), "必须大于 0")
		}
	}

	if err := c.validateAuth(); err != nil {
		return err
	}

	switch c.Views.Backend {
	case ViewsBackendCMS, ViewsBackendSQLite:
	default:
		return newFieldError(sectionField("Views", "Backend"), "仅支持 cms/sqlite")
	}
	if c.Views.Backend == ViewsBackendSQLite && strings.TrimSpace(c.Views.SQLitePath) == "" {
		return newFieldError(sectionField("Views", "SQLitePath"), "sqlite 后端需要路径")
	}

	return nil
}

func (c *Config) validateSite() error {
	s := c.Site
	if strings.TrimSpace(s.Title) == "" {
		return newFieldError(sectionField("Site", "Title"), "不能为空")
	}
	if err := validateHTTPURL(s.URL); err != nil {
		return fmt.Errorf("%s: %w", sectionField("Site", "URL"), err)
	}
	if s.StudioURL != "" {
		if err := validateHTTPURL(s.StudioURL); err != nil {
			return fmt.Errorf("%s: %w", sectionField("Site", "StudioURL"), err)
		}
	}
	if s.BlogPostsPerPage <= 0 {
		return newFieldError(sectionField("Site", "BlogPostsPerPage"), "必须大于 0")
	}
	if s.TagPostsPerPage <= 0 {
		return newFieldError(sectionField("Site", "TagPostsPerPage"), "必须大于 0")
	}
	return nil
}

func (c *Config) validateCMS() error {
	cms := c.CMS
	if (cms.ProjectID == "") != (cms.Dataset == "") {
		return newFieldError(sectionField("CMS", "ProjectID/Dataset"), "必须同时提供或同时留空")
	}
	if cms.ProjectID != "" && !projectIDPattern.MatchString(cms.ProjectID) {
		return newFieldError(sectionField("CMS", "ProjectID"), "仅允许小写字母、数字与连字符")
	}
	if cms.Dataset != "" && !datasetPattern.MatchString(cms.Dataset) {
		return newFieldError(sectionField("CMS", "Dataset"), "仅允许小写字母、数字、下划线与连字符")
	}
	if cms.APIVersion != "1" {
		if _, err := time.Parse("2006-01-02", cms.APIVersion); err != nil {
			return newFieldError(sectionField("CMS", "APIVersion"), "必须为 1 或 YYYY-MM-DD")
		}
	}
	if strings.Contains(cms.APIHost, "/") || strings.Contains(cms.APIHost, " ") {
		return newFieldError(sectionField("CMS", "APIHost"), "只能是主机名")
	}
	if cms.Timeout.DurationValue() <= 0 {
		return newFieldError(sectionField("CMS", "Timeout"), "必须大于 0")
	}
	if cms.MaxRetries < 0 {
		return newFieldError(sectionField("CMS", "MaxRetries"), "不能为负数")
	}
	if cms.InitialBackoff.DurationValue() <= 0 {
		return newFieldError(sectionField("CMS", "InitialBackoff"), "必须大于 0")
	}
	return nil
}

func (c *Config) validateAuth() error {
	a := c.Auth
	switch a.MembersGate {
	case GateWall, GateRedirect:
	default:
		return newFieldError(sectionField("Auth", "MembersGate"), "仅支持 wall/redirect")
	}
	if strings.TrimSpace(a.SessionCookie) == "" {
		return newFieldError(sectionField("Auth", "SessionCookie"), "不能为空")
	}
	if strings.TrimSpace(a.DraftCookie) == "" {
		return newFieldError(sectionField("Auth", "DraftCookie"), "不能为空")
	}
	if a.SessionCookie == a.DraftCookie {
		return newFieldError(sectionField("Auth", "DraftCookie"), "不能与 SessionCookie 相同")
	}
	if !strings.HasPrefix(a.LoginURL, "/") {
		if err := validateHTTPURL(a.LoginURL); err != nil {
			return fmt.Errorf("%s: %w", sectionField("Auth", "LoginURL"), err)
		}
	}
	if a.DraftTTL.DurationValue() <= 0 {
		return newFieldError(sectionField("Auth", "DraftTTL"), "必须大于 0")
	}
	return nil
}

func validateHTTPURL(raw string) error {
	if raw == "" {
		return errors.New("缺少地址")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("仅支持 http/https: %s", raw)
	}
	if parsed.Host == "" {
		return fmt.Errorf("缺少 Host: %s", raw)
	}
	return nil
}

// EffectiveTTL 根据查询是否为详情返回缓存 TTL。
func (c *Config) EffectiveTTL(detail bool) time.Duration {
	if detail {
		return c.Cache.DetailTTL.DurationValue()
	}
	return c.Cache.ListTTL.DurationValue()
}
