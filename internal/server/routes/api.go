package routes

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/NikhilNandyala/azure-daily-blog/internal/views"
)

type viewsRequest struct {
	Slug any `json:"slug"`
}

// incrementViews 处理 POST /api/views {slug}，成功时返回累加后的阅读数。
func (h *handlers) incrementViews(c fiber.Ctx) error {
	var req viewsRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid slug provided"})
	}
	slug, ok := req.Slug.(string)
	if !ok || slug == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid slug provided"})
	}

	count, err := h.Views.Increment(c.Context(), slug)
	switch {
	case errors.Is(err, views.ErrPostNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Post not found"})
	case errors.Is(err, views.ErrInvalidSlug):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid slug provided"})
	case err != nil:
		h.logRequest(c, "/api/views", slug).WithError(err).Error("increment_views_failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to increment views"})
	}
	return c.JSON(fiber.Map{"views": count})
}

// getViews 处理 GET /api/views?slug=。
func (h *handlers) getViews(c fiber.Ctx) error {
	slug := c.Query("slug")
	if slug == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Slug parameter required"})
	}

	count, err := h.Views.Get(c.Context(), slug)
	switch {
	case errors.Is(err, views.ErrPostNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Post not found"})
	case errors.Is(err, views.ErrInvalidSlug):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid slug provided"})
	case err != nil:
		h.logRequest(c, "/api/views", slug).WithError(err).Error("fetch_views_failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch views"})
	}
	return c.JSON(fiber.Map{"views": count})
}
