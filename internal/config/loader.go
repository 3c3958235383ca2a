package config

import (
	"fmt"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// 内容缓存默认 TTL：列表页 1 小时、详情页 24 小时。
const (
	defaultListTTL   = time.Hour
	defaultDetailTTL = 24 * time.Hour
)

// Load 读取并解析 TOML 配置文件，叠加环境变量后注入默认值并校验。
func Load(path string) (*Config, error) {
	if path == "" {
		path = "config.toml"
	}

	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置失败: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(durationDecodeHook())); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}

	applyGlobalDefaults(&cfg.Global)
	applySiteDefaults(&cfg.Site)
	applyCMSDefaults(&cfg.CMS)
	applyCacheDefaults(&cfg.Cache)
	applyAuthDefaults(&cfg.Auth)
	applyViewsDefaults(&cfg.Views, cfg.Global.StoragePath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	absStorage, err := filepath.Abs(cfg.Global.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("无法解析存储目录: %w", err)
	}
	cfg.Global.StoragePath = absStorage

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ListenPort", 3000)
	v.SetDefault("LogLevel", "info")
	v.SetDefault("LogFilePath", "")
	v.SetDefault("LogMaxSize", 100)
	v.SetDefault("LogMaxBackups", 10)
	v.SetDefault("LogCompress", true)
	v.SetDefault("StoragePath", "./storage")

	v.SetDefault("Site.Title", "Azure Daily Blog")
	v.SetDefault("Site.Description", "Azure insights and technical guides")
	v.SetDefault("Site.URL", "https://azuredailyblog.com")
	v.SetDefault("Site.BlogPostsPerPage", DefaultBlogPostsPerPage)
	v.SetDefault("Site.TagPostsPerPage", DefaultTagPostsPerPage)

	v.SetDefault("CMS.APIVersion", "2024-12-14")
	v.SetDefault("CMS.APIHost", "api.sanity.io")
	v.SetDefault("CMS.UseCDN", true)
	v.SetDefault("CMS.Timeout", "10s")
	v.SetDefault("CMS.MaxRetries", 2)
	v.SetDefault("CMS.InitialBackoff", "200ms")

	v.SetDefault("Cache.Enabled", true)
	v.SetDefault("Cache.ListTTL", "1h")
	v.SetDefault("Cache.DetailTTL", "24h")

	v.SetDefault("Auth.SessionCookie", "blog_session")
	v.SetDefault("Auth.LoginURL", "/login")
	v.SetDefault("Auth.MembersGate", "wall")
	v.SetDefault("Auth.DraftCookie", "blog_draft")
	v.SetDefault("Auth.DraftTTL", "1h")

	v.SetDefault("Views.Backend", "cms")
}

// applyEnv 读取密钥与部署覆盖项，环境变量优先于文件。
func applyEnv(cfg *Config) error {
	if err := env.Parse(&cfg.Secrets); err != nil {
		return fmt.Errorf("解析环境变量失败: %w", err)
	}

	var overrides envOverrides
	if err := env.Parse(&overrides); err != nil {
		return fmt.Errorf("解析环境变量失败: %w", err)
	}
	if overrides.ProjectID != "" {
		cfg.CMS.ProjectID = overrides.ProjectID
	}
	if overrides.Dataset != "" {
		cfg.CMS.Dataset = overrides.Dataset
	}
	if overrides.SiteURL != "" {
		cfg.Site.URL = overrides.SiteURL
	}
	return nil
}

func applyGlobalDefaults(g *GlobalConfig) {
	if g.ListenPort == 0 {
		g.ListenPort = 3000
	}
	if strings.TrimSpace(g.LogLevel) == "" {
		g.LogLevel = "info"
	}
	if strings.TrimSpace(g.StoragePath) == "" {
		g.StoragePath = "./storage"
	}
}

func applySiteDefaults(s *SiteConfig) {
	s.URL = strings.TrimRight(strings.TrimSpace(s.URL), "/")
	if s.BlogPostsPerPage == 0 {
		s.BlogPostsPerPage = DefaultBlogPostsPerPage
	}
	if s.TagPostsPerPage == 0 {
		s.TagPostsPerPage = DefaultTagPostsPerPage
	}
}

func applyCMSDefaults(c *CMSConfig) {
	c.ProjectID = strings.TrimSpace(c.ProjectID)
	c.Dataset = strings.TrimSpace(c.Dataset)
	if c.APIVersion == "" {
		c.APIVersion = "2024-12-14"
	}
	c.APIVersion = strings.TrimPrefix(c.APIVersion, "v")
	if c.APIHost == "" {
		c.APIHost = "api.sanity.io"
	}
	if c.Timeout.DurationValue() == 0 {
		c.Timeout = Duration(10 * time.Second)
	}
	if c.InitialBackoff.DurationValue() == 0 {
		c.InitialBackoff = Duration(200 * time.Millisecond)
	}
}

func applyCacheDefaults(c *CacheConfig) {
	if c.ListTTL.DurationValue() == 0 {
		c.ListTTL = Duration(defaultListTTL)
	}
	if c.DetailTTL.DurationValue() == 0 {
		c.DetailTTL = Duration(defaultDetailTTL)
	}
}

func applyAuthDefaults(a *AuthConfig) {
	if a.SessionCookie == "" {
		a.SessionCookie = "blog_session"
	}
	if a.LoginURL == "" {
		a.LoginURL = "/login"
	}
	a.MembersGate = strings.ToLower(strings.TrimSpace(a.MembersGate))
	if a.MembersGate == "" {
		a.MembersGate = GateWall
	}
	if a.DraftCookie == "" {
		a.DraftCookie = "blog_draft"
	}
	if a.DraftTTL.DurationValue() == 0 {
		a.DraftTTL = Duration(time.Hour)
	}
}

func applyViewsDefaults(v *ViewsConfig, storagePath string) {
	v.Backend = strings.ToLower(strings.TrimSpace(v.Backend))
	if v.Backend == "" {
		v.Backend = ViewsBackendCMS
	}
	if v.Backend == ViewsBackendSQLite && strings.TrimSpace(v.SQLitePath) == "" {
		v.SQLitePath = filepath.Join(storagePath, "views.db")
	}
}

func durationDecodeHook() mapstructure.DecodeHookFunc {
	targetType := reflect.TypeOf(Duration(0))

	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != targetType {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			if v == "" {
				return Duration(0), nil
			}
			if parsed, err := time.ParseDuration(v); err == nil {
				return Duration(parsed), nil
			}
			if seconds, err := strconv.ParseFloat(v, 64); err == nil {
				return Duration(time.Duration(seconds * float64(time.Second))), nil
			}
			return nil, fmt.Errorf("无法解析 Duration 字段: %s", v)
		case int:
			return Duration(time.Duration(v) * time.Second), nil
		case int64:
			return Duration(time.Duration(v) * time.Second), nil
		case float64:
			return Duration(time.Duration(v * float64(time.Second))), nil
		case time.Duration:
			return Duration(v), nil
		case Duration:
			return v, nil
		default:
			return nil, fmt.Errorf("不支持的 Duration 类型: %T", v)
		}
	}
}
