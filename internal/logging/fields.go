package logging

import "github.com/sirupsen/logrus"

// BaseFields 构建 action + 配置路径等基础字段，便于不同入口复用。
func BaseFields(action, configPath string) logrus.Fields {
	return logrus.Fields{
		"action":     action,
		"configPath": configPath,
	}
}

// RequestFields 提供路由/slug/视角/会员状态字段，供页面请求日志复用。
func RequestFields(route, slug, perspective string, member bool) logrus.Fields {
	fields := logrus.Fields{
		"route":       route,
		"perspective": perspective,
		"member":      member,
	}
	if slug != "" {
		fields["slug"] = slug
	}
	return fields
}

// QueryFields 描述一次 CMS 查询，cache_hit 表示是否由磁盘缓存直接返回。
func QueryFields(name, perspective string, cacheHit bool) logrus.Fields {
	return logrus.Fields{
		"query":       name,
		"perspective": perspective,
		"cache_hit":   cacheHit,
	}
}
