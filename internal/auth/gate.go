package auth

import "github.com/NikhilNandyala/azure-daily-blog/internal/content"

// Decision 是会员内容访问判定结果。
type Decision struct {
	Allowed  bool
	LoginURL string
}

// Gate 判定会话是否可以阅读文章；会员文章在无会话时被拦截并给出登录地址。
func (m *Manager) Gate(post content.PostListItem, session *Session) Decision {
	if !post.MembersOnly || session != nil {
		return Decision{Allowed: true}
	}
	return Decision{LoginURL: m.LoginURL("/blog/" + post.Slug.Current)}
}

// CardLink 返回列表卡片的链接与锁定状态：被拦截的会员文章直接指向登录页。
func (m *Manager) CardLink(post content.PostListItem, session *Session) (string, bool) {
	if decision := m.Gate(post, session); !decision.Allowed {
		return decision.LoginURL, true
	}
	return "/blog/" + post.Slug.Current, false
}

// CardLinker 把 CardLink 绑定到某个会话，供列表批量计算。
func (m *Manager) CardLinker(session *Session) func(content.PostListItem) (string, bool) {
	return func(post content.PostListItem) (string, bool) {
		return m.CardLink(post, session)
	}
}
