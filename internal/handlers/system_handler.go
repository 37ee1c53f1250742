package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/talent-allocator/internal/services"
)

type SystemHandler struct {
	queries *services.QueryService
}

func NewSystemHandler(queries *services.QueryService) *SystemHandler {
	return &SystemHandler{queries: queries}
}

func (h *SystemHandler) HandleHealth(c *fiber.Ctx) error {
	health, err := h.queries.Health(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unhealthy",
			"error":  err.Error(),
		})
	}
	return c.JSON(health)
}

func (h *SystemHandler) HandleAudit(c *fiber.Ctx) error {
	entries, err := h.queries.Audit(c.UserContext(), c.QueryInt("limit", 0))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(entries)
}

func HandleRoot(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "Talent Allocator API",
		"version": "1.0.0",
		"endpoints": fiber.Map{
			"health":            "GET /api/v1/health",
			"upload":            "POST /api/v1/candidates/upload",
			"upload_async":      "POST /api/v1/candidates/upload/async",
			"job":               "GET /api/v1/jobs/:id",
			"candidates":        "GET /api/v1/candidates",
			"candidate":         "GET /api/v1/candidates/:id",
			"search":            "GET /api/v1/candidates/search",
			"history":           "GET /api/v1/candidates/:id/history",
			"reassign":          "PUT /api/v1/candidates/:id/position",
			"reevaluate":        "POST /api/v1/candidates/:id/reevaluate",
			"positions":         "GET /api/v1/positions",
			"create_position":   "POST /api/v1/positions",
			"position":          "GET /api/v1/positions/:id",
			"position_status":   "PUT /api/v1/positions/:id/status",
			"position_ranking":  "GET /api/v1/positions/:id/candidates",
			"position_stats":    "GET /api/v1/positions/:id/stats",
			"position_export":   "GET /api/v1/positions/:id/export",
			"similar_positions": "GET /api/v1/positions/similar",
			"audit":             "GET /api/v1/audit",
			"metrics":           "GET /metrics",
		},
	})
}
