package handlers

import (
	"github.com/curioapp/curio/internal/config"
	"github.com/curioapp/curio/internal/services"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// HealthHandler exposes the service health check.
type HealthHandler struct {
	Cfg    *config.Config
	DB     *gorm.DB
	Google *services.Google
}

// Health handles GET /health
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	result := services.HealthCheck(h.Cfg, h.DB, h.Google)
	status := fiber.StatusOK
	if result.Status != "healthy" {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(result)
}
