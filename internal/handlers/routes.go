package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/talent-allocator/internal/services"
)

// Handlers bundles every route handler of the API.
type Handlers struct {
	Positions  *PositionHandler
	Candidates *CandidateHandler
	Jobs       *JobHandler
	System     *SystemHandler
}

func NewHandlers(c *services.Container, worker services.Worker, maxFileSize int64) *Handlers {
	return &Handlers{
		Positions:  NewPositionHandler(c.Positions, c.Queries, c.Reports),
		Candidates: NewCandidateHandler(c.Pipeline, c.Assignments, c.Queries, c.Storage, c.Store.IntakeJobs(), worker, maxFileSize),
		Jobs:       NewJobHandler(c.Store.IntakeJobs(), c.Queries),
		System:     NewSystemHandler(c.Queries),
	}
}

// Register mounts the API under api. Static segments are registered before :id routes.
func (h *Handlers) Register(api fiber.Router) {
	api.Get("/health", h.System.HandleHealth)
	api.Get("/audit", h.System.HandleAudit)

	positions := api.Group("/positions")
	positions.Post("/", h.Positions.HandleCreate)
	positions.Get("/", h.Positions.HandleList)
	positions.Get("/similar", h.Positions.HandleSimilar)
	positions.Get("/:id", h.Positions.HandleGet)
	positions.Put("/:id/status", h.Positions.HandleSetStatus)
	positions.Get("/:id/candidates", h.Positions.HandleCandidates)
	positions.Get("/:id/stats", h.Positions.HandleStats)
	positions.Get("/:id/export", h.Positions.HandleExport)

	candidates := api.Group("/candidates")
	candidates.Post("/upload", h.Candidates.HandleUpload)
	candidates.Post("/upload/async", h.Candidates.HandleUploadAsync)
	candidates.Get("/", h.Candidates.HandleList)
	candidates.Get("/search", h.Candidates.HandleSearch)
	candidates.Get("/:id", h.Candidates.HandleGet)
	candidates.Get("/:id/history", h.Candidates.HandleHistory)
	candidates.Put("/:id/position", h.Candidates.HandleReassign)
	candidates.Post("/:id/reevaluate", h.Candidates.HandleReevaluate)

	api.Get("/jobs/:id", h.Jobs.HandleGet)
}
