package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/talent-allocator/internal/repositories"
	"alfredoptarigan/talent-allocator/internal/services"
)

// ErrorHandler renders errors that reach fiber as {"error", "code"}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}

// respondError maps service sentinels onto status codes. Pipeline aborts carry "kind": "fatal" and their stage.
func respondError(c *fiber.Ctx, err error) error {
	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		return c.Status(ferr.Code).JSON(fiber.Map{"error": ferr.Message})
	}

	status := statusFor(err)
	body := fiber.Map{"error": err.Error()}

	var perr *services.PipelineError
	if errors.As(err, &perr) {
		body["kind"] = services.ErrorKindFatal
		body["stage"] = string(perr.Stage)
	}

	return c.Status(status).JSON(body)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNoActivePositions):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, services.ErrMalformedInput), errors.Is(err, services.ErrNoMatchRecord):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrCandidateNotFound),
		errors.Is(err, services.ErrPositionNotFound),
		errors.Is(err, repositories.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrPositionExists), errors.Is(err, repositories.ErrConcurrentUpdate):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrIndexDisabled):
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusInternalServerError
}

// actorOf reads the caller identity from X-Actor.
func actorOf(c *fiber.Ctx) string {
	return c.Get("X-Actor")
}
