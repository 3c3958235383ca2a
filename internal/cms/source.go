package cms

import (
	"net/http"

	"github.com/NikhilNandyala/azure-daily-blog/internal/config"
)

// Source 持有公开客户端以及可选的草稿、写入客户端，按视角分发。
type Source struct {
	public *Client
	draft  *Client
	writer *Client
}

// NewSource 根据配置构建客户端集合；CMS 未配置时返回空 Source，所有查询降级为空结果。
func NewSource(cfg *config.Config, httpClient *http.Client) (*Source, error) {
	if cfg == nil || !cfg.CMS.Configured() {
		return &Source{}, nil
	}
	if httpClient == nil {
		httpClient = NewHTTPClient(cfg.CMS.Timeout.DurationValue())
	}

	base := Options{
		ProjectID:      cfg.CMS.ProjectID,
		Dataset:        cfg.CMS.Dataset,
		APIVersion:     cfg.CMS.APIVersion,
		APIHost:        cfg.CMS.APIHost,
		HTTPClient:     httpClient,
		MaxRetries:     cfg.CMS.MaxRetries,
		InitialBackoff: cfg.CMS.InitialBackoff.DurationValue(),
	}

	publicOpts := base
	publicOpts.Token = cfg.Secrets.ReadToken
	publicOpts.UseCDN = cfg.CMS.UseCDN
	publicOpts.Perspective = PerspectivePublished
	public, err := New(publicOpts)
	if err != nil {
		return nil, err
	}

	src := &Source{public: public}

	if cfg.Secrets.DraftToken != "" {
		draftOpts := base
		draftOpts.Token = cfg.Secrets.DraftToken
		draftOpts.Perspective = PerspectivePreviewDrafts
		if src.draft, err = New(draftOpts); err != nil {
			return nil, err
		}
	}

	if cfg.Secrets.WriteToken != "" {
		writeOpts := base
		writeOpts.Token = cfg.Secrets.WriteToken
		writeOpts.Perspective = PerspectivePublished
		if src.writer, err = New(writeOpts); err != nil {
			return nil, err
		}
	}

	return src, nil
}

// NewStaticSource 直接组装 Source，测试与 CLI 中使用。
func NewStaticSource(public, draft, writer *Client) *Source {
	return &Source{public: public, draft: draft, writer: writer}
}

// Configured 表示是否存在公开客户端。
func (s *Source) Configured() bool {
	return s != nil && s.public != nil
}

// DraftConfigured 表示草稿预览是否可用。
func (s *Source) DraftConfigured() bool {
	return s != nil && s.draft != nil
}

// For 返回指定视角的客户端；草稿不可用时返回 ErrDraftUnavailable 而不是静默回退。
func (s *Source) For(p Perspective) (*Client, error) {
	if !s.Configured() {
		return nil, ErrNotConfigured
	}
	if p == PerspectivePreviewDrafts {
		if s.draft == nil {
			return nil, ErrDraftUnavailable
		}
		return s.draft, nil
	}
	return s.public, nil
}

// Writer 返回带写入令牌的客户端。
func (s *Source) Writer() (*Client, error) {
	if !s.Configured() {
		return nil, ErrNotConfigured
	}
	if s.writer == nil {
		return nil, ErrReadOnly
	}
	return s.writer, nil
}
