package revalidate

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
)

// Purger 按命名空间清除内容缓存；不传命名空间时清空全部。
type Purger interface {
	Invalidate(ctx context.Context, namespaces ...string) error
}

// Handler 处理 CMS webhook 与手动失效请求。
type Handler struct {
	secret string
	purger Purger
	logger *logrus.Logger
	now    func() time.Time
}

// NewHandler 创建 webhook 处理器；secret 为空时所有请求返回 500。
func NewHandler(secret string, purger Purger, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Handler{secret: secret, purger: purger, logger: logger, now: time.Now}
}

// authorize 校验 secret 查询参数，失败时已写好响应并返回 false。
func (h *Handler) authorize(c fiber.Ctx) (bool, error) {
	if h.secret == "" {
		h.logger.WithField("action", "revalidate").Warn("revalidate secret not configured")
		return false, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Revalidation secret not configured",
		})
	}
	if subtle.ConstantTimeCompare([]byte(c.Query("secret")), []byte(h.secret)) != 1 {
		return false, c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid secret"})
	}
	return true, nil
}

// Webhook 处理 POST /api/revalidate。
func (h *Handler) Webhook(c fiber.Ctx) error {
	if ok, err := h.authorize(c); !ok {
		return err
	}

	event, err := ParsePayload(c.Body())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error revalidating",
			"error":   err.Error(),
		})
	}

	fields := logrus.Fields{"action": "revalidate", "type": event.Type, "slug": event.Slug}
	if rule, ok := Resolve(event.Type); ok {
		if err := h.purger.Invalidate(c.Context(), rule.Namespaces...); err != nil {
			h.logger.WithFields(fields).WithError(err).Error("revalidate purge failed")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Error revalidating",
				"error":   err.Error(),
			})
		}
		fields["namespaces"] = rule.Namespaces
		fields["paths"] = rule.AffectedPaths(event.Slug)
		h.logger.WithFields(fields).Info("revalidation triggered")
	} else {
		h.logger.WithFields(fields).Info("revalidation ignored for unknown type")
	}

	resp := fiber.Map{
		"revalidated": true,
		"now":         h.now().UnixMilli(),
		"type":        event.Type,
	}
	if event.Slug != "" {
		resp["slug"] = event.Slug
	}
	return c.JSON(resp)
}

// Manual 处理 GET /api/revalidate，清空全部内容缓存。
func (h *Handler) Manual(c fiber.Ctx) error {
	if ok, err := h.authorize(c); !ok {
		return err
	}
	if err := h.purger.Invalidate(c.Context()); err != nil {
		h.logger.WithField("action", "revalidate_manual").WithError(err).Error("manual purge failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error revalidating",
			"error":   err.Error(),
		})
	}
	h.logger.WithField("action", "revalidate_manual").Info("manual revalidation completed")
	return c.JSON(fiber.Map{
		"revalidated": true,
		"now":         h.now().UnixMilli(),
		"message":     "Manual revalidation completed",
	})
}
