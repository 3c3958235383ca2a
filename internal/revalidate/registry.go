// Package revalidate maps CMS webhook events to cache invalidation. Each
// document type registers a Rule at init time naming the content cache
// namespaces and the page paths that depend on it.
package revalidate

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Rule 描述某一文档类型变更后需要失效的缓存命名空间与页面路径。
type Rule struct {
	DocType    string
	Namespaces []string
	// Paths 根据 slug 计算受影响的页面，slug 可能为空。
	Paths func(slug string) []string
}

var globalRegistry = newRegistry()

type registry struct {
	mu    sync.RWMutex
	rules map[string]Rule
}

func newRegistry() *registry {
	return &registry{rules: make(map[string]Rule)}
}

// Register 将规则加入全局注册表，重复类型会返回错误。
func Register(rule Rule) error {
	return globalRegistry.register(rule)
}

// MustRegister 在注册失败时 panic，适合 init() 中调用。
func MustRegister(rule Rule) {
	if err := Register(rule); err != nil {
		panic(err)
	}
}

// Resolve 返回文档类型对应的规则。
func Resolve(docType string) (Rule, bool) {
	return globalRegistry.resolve(docType)
}

// List 返回按类型排序的规则列表。
func List() []Rule {
	return globalRegistry.list()
}

// DocTypes 返回所有已注册的文档类型，供诊断输出。
func DocTypes() []string {
	items := List()
	result := make([]string, len(items))
	for i, rule := range items {
		result[i] = rule.DocType
	}
	return result
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

func (r *registry) register(rule Rule) error {
	key := normalizeKey(rule.DocType)
	if key == "" {
		return fmt.Errorf("document type is required")
	}
	if len(rule.Namespaces) == 0 {
		return fmt.Errorf("rule %s has no namespaces", rule.DocType)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.rules[key]; exists {
		return fmt.Errorf("rule %s already registered", rule.DocType)
	}
	r.rules[key] = rule
	return nil
}

func (r *registry) resolve(docType string) (Rule, bool) {
	key := normalizeKey(docType)
	if key == "" {
		return Rule{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rule, ok := r.rules[key]
	return rule, ok
}

func (r *registry) list() []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.rules) == 0 {
		return nil
	}
	keys := make([]string, 0, len(r.rules))
	for key := range r.rules {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	result := make([]Rule, 0, len(keys))
	for _, key := range keys {
		result = append(result, r.rules[key])
	}
	return result
}

// AffectedPaths 返回规则针对 slug 的页面路径，未定义 Paths 时为空。
func (rule Rule) AffectedPaths(slug string) []string {
	if rule.Paths == nil {
		return nil
	}
	return rule.Paths(slug)
}
