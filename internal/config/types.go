package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Duration 提供更灵活的反序列化能力，同时兼容纯秒整数与 Go Duration 字符串。
type Duration time.Duration

// UnmarshalText 使 Viper 可以识别诸如 "30s"、"5m" 或纯数字秒值等配置写法。
func (d *Duration) UnmarshalText(text []byte) error {
	raw := strings.TrimSpace(string(text))
	if raw == "" {
		*d = Duration(0)
		return nil
	}

	if parsed, err := time.ParseDuration(raw); err == nil {
		*d = Duration(parsed)
		return nil
	}

	if intVal, err := strconv.ParseInt(raw, 10, 64); err == nil {
		*d = Duration(time.Duration(intVal) * time.Second)
		return nil
	}

	return fmt.Errorf("invalid duration value: %s", raw)
}

// DurationValue 返回真实的 time.Duration，便于调用方计算。
func (d Duration) DurationValue() time.Duration {
	return time.Duration(d)
}

// GlobalConfig 描述进程级参数：监听端口、日志与本地存储目录。
type GlobalConfig struct {
	ListenPort    int    `mapstructure:"ListenPort"`
	LogLevel      string `mapstructure:"LogLevel"`
	LogFilePath   string `mapstructure:"LogFilePath"`
	LogMaxSize    int    `mapstructure:"LogMaxSize"`
	LogMaxBackups int    `mapstructure:"LogMaxBackups"`
	LogCompress   bool   `mapstructure:"LogCompress"`
	StoragePath   string `mapstructure:"StoragePath"`
}

// 分页默认值：博客列表每页 5 篇，标签页每页 10 篇。
const (
	DefaultBlogPostsPerPage = 5
	DefaultTagPostsPerPage  = 10
)

// SiteConfig 描述站点元信息与分页参数，页面与 SEO 共用。
type SiteConfig struct {
	Title            string   `mapstructure:"Title"`
	Description      string   `mapstructure:"Description"`
	URL              string   `mapstructure:"URL"`
	StudioURL        string   `mapstructure:"StudioURL"`
	SocialLinks      []string `mapstructure:"SocialLinks"`
	BlogPostsPerPage int      `mapstructure:"BlogPostsPerPage"`
	TagPostsPerPage  int      `mapstructure:"TagPostsPerPage"`
}

// CMSConfig 决定如何访问 headless CMS 的查询与变更接口。
type CMSConfig struct {
	ProjectID      string   `mapstructure:"ProjectID"`
	Dataset        string   `mapstructure:"Dataset"`
	APIVersion     string   `mapstructure:"APIVersion"`
	APIHost        string   `mapstructure:"APIHost"`
	UseCDN         bool     `mapstructure:"UseCDN"`
	Timeout        Duration `mapstructure:"Timeout"`
	MaxRetries     int      `mapstructure:"MaxRetries"`
	InitialBackoff Duration `mapstructure:"InitialBackoff"`
}

// Configured 表示 project/dataset 是否都已提供；缺失时站点以空内容运行。
func (c CMSConfig) Configured() bool {
	return c.ProjectID != "" && c.Dataset != ""
}

// CacheConfig 控制已发布内容的磁盘缓存。
type CacheConfig struct {
	Enabled   bool     `mapstructure:"Enabled"`
	ListTTL   Duration `mapstructure:"ListTTL"`
	DetailTTL Duration `mapstructure:"DetailTTL"`
}

// AuthConfig 描述会员会话 Cookie 与登录入口。
type AuthConfig struct {
	SessionCookie string   `mapstructure:"SessionCookie"`
	LoginURL      string   `mapstructure:"LoginURL"`
	MembersGate   string   `mapstructure:"MembersGate"`
	DraftCookie   string   `mapstructure:"DraftCookie"`
	DraftTTL      Duration `mapstructure:"DraftTTL"`
}

// ViewsConfig 选择文章阅读数的持久化方式。
type ViewsConfig struct {
	Backend    string `mapstructure:"Backend"`
	SQLitePath string `mapstructure:"SQLitePath"`
}

// Secrets 只从环境变量读取，避免把令牌写入配置文件。
type Secrets struct {
	ReadToken        string `env:"SANITY_READ_TOKEN"`
	WriteToken       string `env:"SANITY_WRITE_TOKEN"`
	DraftToken       string `env:"SANITY_DRAFT_TOKEN"`
	DraftSecret      string `env:"SANITY_DRAFT_SECRET_TOKEN"`
	RevalidateSecret string `env:"SANITY_REVALIDATE_SECRET"`
	SessionSecret    string `env:"BLOG_SESSION_SECRET"`
}

// envOverrides 允许部署环境覆盖文件中的非敏感字段。
type envOverrides struct {
	ProjectID string `env:"SANITY_PROJECT_ID"`
	Dataset   string `env:"SANITY_DATASET"`
	SiteURL   string `env:"BLOG_SITE_URL"`
}

// Config 是 TOML 文件与环境变量合并后的整体结构。
type Config struct {
	Global  GlobalConfig `mapstructure:",squash"`
	Site    SiteConfig   `mapstructure:"Site"`
	CMS     CMSConfig    `mapstructure:"CMS"`
	Cache   CacheConfig  `mapstructure:"Cache"`
	Auth    AuthConfig   `mapstructure:"Auth"`
	Views   ViewsConfig  `mapstructure:"Views"`
	Secrets Secrets      `mapstructure:"-"`
}

// DraftConfigured 表示草稿预览所需的 CMS 令牌是否齐全。
func (c *Config) DraftConfigured() bool {
	return c.CMS.Configured() && c.Secrets.DraftToken != ""
}

// SecretModes 输出各类密钥的配置状态摘要，例如 draft:set，供启动日志使用。
func (c *Config) SecretModes() []string {
	mode := func(name, value string) string {
		if value == "" {
			return name + ":unset"
		}
		return name + ":set"
	}
	return []string{
		mode("read", c.Secrets.ReadToken),
		mode("write", c.Secrets.WriteToken),
		mode("draft", c.Secrets.DraftToken),
		mode("draft_secret", c.Secrets.DraftSecret),
		mode("revalidate", c.Secrets.RevalidateSecret),
		mode("session", c.Secrets.SessionSecret),
	}
}
