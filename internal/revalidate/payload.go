package revalidate

import (
	"errors"

	"github.com/tidwall/gjson"
)

// ErrInvalidPayload 表示 webhook 请求体不是合法 JSON。
var ErrInvalidPayload = errors.New("invalid webhook payload")

// Event 是从 webhook 请求体中提取的文档变更信息。
type Event struct {
	Type string
	Slug string
	ID   string
}

// ParsePayload 读取 _type、slug.current 与 _id；slug 也允许直接是字符串。
func ParsePayload(body []byte) (Event, error) {
	if !gjson.ValidBytes(body) {
		return Event{}, ErrInvalidPayload
	}
	result := gjson.ParseBytes(body)
	if !result.IsObject() {
		return Event{}, ErrInvalidPayload
	}

	event := Event{
		Type: result.Get("_type").String(),
		ID:   result.Get("_id").String(),
	}
	slug := result.Get("slug")
	switch {
	case slug.IsObject():
		event.Slug = slug.Get("current").String()
	case slug.Type == gjson.String:
		event.Slug = slug.String()
	}
	return event, nil
}
