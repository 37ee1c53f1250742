package handlers

import (
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/talent-allocator/internal/models"
	"alfredoptarigan/talent-allocator/internal/repositories"
	"alfredoptarigan/talent-allocator/internal/services"
)

const resumeField = "file"

type CandidateHandler struct {
	pipeline       *services.ResumePipeline
	assignments    *services.AssignmentService
	queries        *services.QueryService
	storageService services.StorageService
	jobs           repositories.IntakeJobRepository
	worker         services.Worker
	maxFileSize    int64
}

func NewCandidateHandler(
	pipeline *services.ResumePipeline,
	assignments *services.AssignmentService,
	queries *services.QueryService,
	storageService services.StorageService,
	jobs repositories.IntakeJobRepository,
	worker services.Worker,
	maxFileSize int64,
) *CandidateHandler {
	return &CandidateHandler{
		pipeline:       pipeline,
		assignments:    assignments,
		queries:        queries,
		storageService: storageService,
		jobs:           jobs,
		worker:         worker,
		maxFileSize:    maxFileSize,
	}
}

// HandleUpload runs the résumé pipeline inline and returns the persisted allocation.
func (h *CandidateHandler) HandleUpload(c *fiber.Ctx) error {
	file, err := h.resumeFile(c)
	if err != nil {
		return respondError(c, err)
	}

	data, err := readAll(file)
	if err != nil {
		return respondError(c, fiber.NewError(fiber.StatusBadRequest, "failed to read uploaded file"))
	}

	result, err := h.pipeline.Process(c.UserContext(), services.ResumeInput{
		Filename: file.Filename,
		Data:     data,
		Actor:    actorOf(c),
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

// HandleUploadAsync stores the file and queues it for the intake worker.
func (h *CandidateHandler) HandleUploadAsync(c *fiber.Ctx) error {
	file, err := h.resumeFile(c)
	if err != nil {
		return respondError(c, err)
	}

	filename, filePath, err := h.storageService.SaveFile(file)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fmt.Sprintf("failed to save résumé file: %v", err),
		})
	}

	job := models.IntakeJob{
		OriginalFilename: file.Filename,
		StoredFilename:   filename,
		FilePath:         filePath,
		Actor:            actorOf(c),
		Status:           models.StatusQueued,
	}

	if err := h.jobs.Create(c.UserContext(), &job); err != nil {
		// Cleanup uploaded file if database insert fails
		h.storageService.DeleteFile(filename)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to queue résumé",
		})
	}

	h.worker.EnqueueJob(job.ID)

	return c.Status(fiber.StatusAccepted).JSON(models.UploadAcceptedResponse{
		ID:     job.ID.String(),
		Status: string(job.Status),
	})
}

func (h *CandidateHandler) resumeFile(c *fiber.Ctx) (*multipart.FileHeader, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "failed to parse multipart form")
	}

	files, ok := form.File[resumeField]
	if !ok || len(files) == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("no résumé uploaded, send it as '%s'", resumeField))
	}

	file := files[0]
	if file.Size > h.maxFileSize {
		return nil, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("résumé file too large. Max size: %d bytes", h.maxFileSize))
	}
	if !services.SupportedExtension(file.Filename) {
		return nil, fiber.NewError(fiber.StatusBadRequest, "unsupported file type, upload a PDF, TXT or MD file")
	}

	return file, nil
}

func readAll(file *multipart.FileHeader) ([]byte, error) {
	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func (h *CandidateHandler) HandleGet(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	detail, err := h.queries.Candidate(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(detail)
}

func (h *CandidateHandler) HandleList(c *fiber.Ctx) error {
	page, err := h.queries.ListCandidates(c.UserContext(), c.QueryInt("skip", 0), c.QueryInt("limit", 0))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

func (h *CandidateHandler) HandleSearch(c *fiber.Ctx) error {
	var q models.CandidateSearch
	if err := bindQuery(c, &q); err != nil {
		return respondError(c, err)
	}

	candidates, err := h.queries.Search(c.UserContext(), q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(candidates)
}

func (h *CandidateHandler) HandleHistory(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	history, err := h.queries.History(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(history)
}

func (h *CandidateHandler) HandleReassign(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var req models.ReassignRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}

	candidate, err := h.assignments.Reassign(c.UserContext(), id, req.PositionID, req.Reason, actorOf(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(candidate)
}

func (h *CandidateHandler) HandleReevaluate(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var req models.ReevaluateRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}

	match, err := h.assignments.Reevaluate(c.UserContext(), id, req.PositionID, actorOf(c))
	if err != nil {
		return respondError(c, err)
	}

	body := fiber.Map{"match": match}
	if match.Degraded {
		body["kind"] = "degraded"
	}
	return c.JSON(body)
}
