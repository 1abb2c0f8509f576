package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/classwork-go/internal/dto"
	"github.com/noah-isme/classwork-go/internal/lifecycle"
	"github.com/noah-isme/classwork-go/internal/service"
	"github.com/noah-isme/classwork-go/internal/utils"
)

// AssignmentHandler wires assignment HTTP routes.
type AssignmentHandler struct {
	assignments service.AssignmentService
	submissions service.SubmissionService
	logger      zerolog.Logger
}

// NewAssignmentHandler constructs the handler.
func NewAssignmentHandler(assignments service.AssignmentService, submissions service.SubmissionService, logger zerolog.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		assignments: assignments,
		submissions: submissions,
		logger:      logger.With().Str("component", "assignment_handler").Logger(),
	}
}

// Register attaches assignment endpoints to the router group. Listing is
// role-scoped so both roles reach it; mutations are teacher-only.
func (h *AssignmentHandler) Register(router fiber.Router, teacherOnly fiber.Handler) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Post("", teacherOnly, h.create)
	router.Put("/:id/publish", teacherOnly, h.publish)
	router.Put("/:id/complete", teacherOnly, h.complete)
	router.Get("/:id/submissions", teacherOnly, h.listSubmissions)
}

func (h *AssignmentHandler) list(c *fiber.Ctx) error {
	assignments, err := h.assignments.ListFor(c.Context(), actorFromContext(c))
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "assignments retrieved", assignments)
}

func (h *AssignmentHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	assignment, err := h.assignments.Get(c.Context(), actorFromContext(c), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "assignment retrieved", assignment)
}

func (h *AssignmentHandler) create(c *fiber.Ctx) error {
	var payload dto.AssignmentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	assignment, err := h.assignments.Create(c.Context(), actorFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "assignment created", assignment)
}

func (h *AssignmentHandler) publish(c *fiber.Ctx) error {
	return h.transition(c, h.assignments.Publish, "assignment published")
}

func (h *AssignmentHandler) complete(c *fiber.Ctx) error {
	return h.transition(c, h.assignments.Complete, "assignment completed")
}

func (h *AssignmentHandler) transition(c *fiber.Ctx, op func(ctx context.Context, actor service.Actor, id uint) (dto.AssignmentResponse, error), message string) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	assignment, err := op(c.Context(), actorFromContext(c), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, message, assignment)
}

func (h *AssignmentHandler) listSubmissions(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	submissions, err := h.submissions.ListForAssignment(c.Context(), actorFromContext(c), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submissions retrieved", submissions)
}

func (h *AssignmentHandler) handleError(c *fiber.Ctx, err error) error {
	if handled, ok := badRequestIfInvalid(c, err); ok {
		return handled
	}

	switch {
	case errors.Is(err, service.ErrAssignmentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, service.ErrAssignmentNotFound.Error())
	case errors.Is(err, service.ErrNotOwner):
		return utils.SendError(c, fiber.StatusForbidden, service.ErrNotOwner.Error())
	case errors.Is(err, service.ErrTeacherOnly):
		return utils.SendError(c, fiber.StatusForbidden, service.ErrTeacherOnly.Error())
	case errors.Is(err, lifecycle.ErrInvalidTransition):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	default:
		return h.internalError(c, err)
	}
}

func (h *AssignmentHandler) internalError(c *fiber.Ctx, err error) error {
	h.logger.Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
