package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/talent-allocator/internal/models"
	"alfredoptarigan/talent-allocator/internal/repositories"
	"alfredoptarigan/talent-allocator/internal/services"
)

type JobHandler struct {
	jobs    repositories.IntakeJobRepository
	queries *services.QueryService
}

func NewJobHandler(jobs repositories.IntakeJobRepository, queries *services.QueryService) *JobHandler {
	return &JobHandler{
		jobs:    jobs,
		queries: queries,
	}
}

func (h *JobHandler) HandleGet(c *fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid job ID format",
		})
	}

	job, err := h.jobs.FindByID(c.UserContext(), jobID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Job not found",
		})
	}

	response := models.JobResponse{
		ID:     job.ID.String(),
		Status: string(job.Status),
	}

	if job.Status == models.StatusCompleted && job.CandidateID != nil {
		detail, err := h.queries.Candidate(c.UserContext(), *job.CandidateID)
		if err != nil {
			return respondError(c, err)
		}
		response.Result = resultFromDetail(detail, job.Degraded)
	}

	if job.Status == models.StatusFailed {
		response.ErrorKind = job.ErrorKind
		response.ErrorMessage = job.ErrorMessage
	}

	return c.JSON(response)
}

func resultFromDetail(detail *models.CandidateDetail, degraded []string) *models.ResumeResult {
	cand := detail.Candidate
	result := &models.ResumeResult{
		CandidateID:          cand.ID,
		Name:                 cand.Name,
		AssignedPosition:     cand.AssignedPositionName,
		AssignedScore:        cand.AssignedScore,
		IsLocked:             cand.IsLocked,
		IsPending:            cand.IsPending,
		HasExplicitIntention: cand.HasExplicitIntention,
		ExplicitPositionName: cand.IntentionName(),
		ExtractionQuality:    cand.ExtractionQuality,
		Evaluations:          make([]models.PositionScore, 0, len(detail.Matches)),
		Degraded:             degraded,
	}
	if cand.AssignedPositionID != nil {
		result.AssignedPositionID = *cand.AssignedPositionID
	}

	for _, m := range detail.Matches {
		score := models.PositionScore{
			PositionID:  m.PositionID,
			Score:       m.Score,
			Grade:       m.Grade,
			IsQualified: m.IsQualified,
			Degraded:    m.Degraded,
		}
		if m.Position != nil {
			score.PositionName = m.Position.Name
		}
		result.Evaluations = append(result.Evaluations, score)
	}

	return result
}
