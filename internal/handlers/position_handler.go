package handlers

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/talent-allocator/internal/models"
	"alfredoptarigan/talent-allocator/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type PositionHandler struct {
	positions *services.PositionService
	queries   *services.QueryService
	reports   *services.ReportService
}

func NewPositionHandler(positions *services.PositionService, queries *services.QueryService, reports *services.ReportService) *PositionHandler {
	return &PositionHandler{
		positions: positions,
		queries:   queries,
		reports:   reports,
	}
}

func (h *PositionHandler) HandleCreate(c *fiber.Ctx) error {
	var req models.CreatePositionRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}

	resp, err := h.positions.Create(c.UserContext(), req, actorOf(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// HandleList returns active positions unless ?all=true.
func (h *PositionHandler) HandleList(c *fiber.Ctx) error {
	positions, err := h.positions.List(c.UserContext(), !c.QueryBool("all", false))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(positions)
}

func (h *PositionHandler) HandleGet(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	position, err := h.positions.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(position)
}

func (h *PositionHandler) HandleSetStatus(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var req models.UpdatePositionStatusRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}

	position, err := h.positions.SetActive(c.UserContext(), id, *req.IsActive, actorOf(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(position)
}

func (h *PositionHandler) HandleCandidates(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	minGrade := c.Query("min_grade")
	if minGrade != "" {
		if _, ok := models.ParseGrade(minGrade); !ok {
			return respondError(c, fiber.NewError(fiber.StatusBadRequest, "min_grade must be one of A, B, C, D"))
		}
	}

	ranked, err := h.queries.PositionCandidates(c.UserContext(), id, minGrade, c.QueryBool("qualified_only", false), c.QueryInt("limit", 0))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(ranked)
}

func (h *PositionHandler) HandleStats(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	stats, err := h.queries.PositionStats(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"position_id":          stats.PositionID,
		"position_name":        stats.PositionName,
		"total_candidates":     stats.Total,
		"qualified_candidates": stats.Qualified,
		"qualification_rate":   stats.QualificationRate(),
		"average_score":        stats.AverageScore,
		"grade_distribution":   stats.GradeCounts,
	})
}

func (h *PositionHandler) HandleExport(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var buf bytes.Buffer
	if err := h.reports.ExportPosition(c.UserContext(), id, &buf); err != nil {
		return respondError(c, err)
	}

	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="position_%d.xlsx"`, id))
	return c.Send(buf.Bytes())
}

func (h *PositionHandler) HandleSimilar(c *fiber.Ctx) error {
	text := strings.TrimSpace(c.Query("q"))
	if text == "" {
		return respondError(c, fiber.NewError(fiber.StatusBadRequest, "q is required"))
	}

	similar, err := h.positions.Similar(c.UserContext(), text, c.QueryInt("limit", 0))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(similar)
}

func idParam(c *fiber.Ctx, name string) (uint, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("invalid %s", name))
	}
	return uint(id), nil
}
