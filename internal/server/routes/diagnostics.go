package routes

import (
	"sort"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/NikhilNandyala/azure-daily-blog/internal/cache"
	"github.com/NikhilNandyala/azure-daily-blog/internal/content"
	"github.com/NikhilNandyala/azure-daily-blog/internal/draft"
	"github.com/NikhilNandyala/azure-daily-blog/internal/revalidate"
)

// RegisterDiagnosticRoutes 暴露 /-/ 下的诊断接口。
func RegisterDiagnosticRoutes(app *fiber.App, repo *content.Repository) {
	if app == nil || repo == nil {
		return
	}

	app.Get("/-/healthz", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":         "ok",
			"cms_configured": repo.Configured(),
		})
	})

	app.Get("/-/posts", func(c fiber.Ctx) error {
		posts := repo.WithPerspective(draft.Perspective(c)).DebugPosts(c.Context())
		if posts == nil {
			posts = []content.DebugPost{}
		}
		return c.JSON(fiber.Map{
			"configured": repo.Configured(),
			"count":      len(posts),
			"posts":      posts,
		})
	})

	app.Get("/-/cache", func(c fiber.Ctx) error {
		stats, err := repo.CacheStats(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		if stats == nil {
			stats = []cache.NamespaceStats{}
		}
		return c.JSON(fiber.Map{"enabled": repo.Cached(), "namespaces": stats})
	})

	app.Get("/-/rules", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"rules": encodeRules(revalidate.List())})
	})

	app.Get("/-/rules/:type", func(c fiber.Ctx) error {
		docType := strings.TrimSpace(c.Params("type"))
		if docType == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "doc_type_required"})
		}
		rule, ok := revalidate.Resolve(docType)
		if !ok {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "rule_not_found"})
		}
		return c.JSON(encodeRule(rule, c.Query("slug")))
	})
}

type rulePayload struct {
	DocType    string   `json:"doc_type"`
	Namespaces []string `json:"namespaces"`
	Paths      []string `json:"paths"`
}

func encodeRules(rules []revalidate.Rule) []rulePayload {
	if len(rules) == 0 {
		return nil
	}
	sort.Slice(rules, func(i, j int) bool {
		return strings.ToLower(rules[i].DocType) < strings.ToLower(rules[j].DocType)
	})
	result := make([]rulePayload, 0, len(rules))
	for _, rule := range rules {
		result = append(result, encodeRule(rule, ""))
	}
	return result
}

// encodeRule 输出规则详情，slug 为空时只列出与 slug 无关的路径。
func encodeRule(rule revalidate.Rule, slug string) rulePayload {
	return rulePayload{
		DocType:    rule.DocType,
		Namespaces: append([]string(nil), rule.Namespaces...),
		Paths:      rule.AffectedPaths(slug),
	}
}
