package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/classwork-go/internal/models"
	"github.com/noah-isme/classwork-go/internal/service"
	"github.com/noah-isme/classwork-go/internal/utils"
)

// SeedHandler exposes tooling endpoints for seeding demo data.
type SeedHandler struct {
	service service.SeedService
	logger  zerolog.Logger
}

// NewSeedHandler constructs a seed handler.
func NewSeedHandler(service service.SeedService, logger zerolog.Logger) *SeedHandler {
	return &SeedHandler{
		service: service,
		logger:  logger.With().Str("component", "seed_handler").Logger(),
	}
}

// Register wires seed routes.
func (h *SeedHandler) Register(router fiber.Router) {
	router.Post("/accounts", h.accounts)
	router.Post("/assignments", h.assignments)
}

type seedAccountsRequest struct {
	Accounts []service.SeedAccount `json:"accounts"`
}

type seedAssignmentsRequest struct {
	TeacherEmail string              `json:"teacherEmail"`
	Items        []models.Assignment `json:"items"`
}

func (h *SeedHandler) accounts(c *fiber.Ctx) error {
	token := c.Get("X-Seed-Token")
	var payload seedAccountsRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	created, err := h.service.SeedAccounts(c.Context(), token, payload.Accounts)
	if err != nil {
		return h.seedError(c, err)
	}

	return utils.SendSuccess(c, "accounts seeded", fiber.Map{"created": created})
}

func (h *SeedHandler) assignments(c *fiber.Ctx) error {
	token := c.Get("X-Seed-Token")
	var payload seedAssignmentsRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	created, err := h.service.SeedAssignments(c.Context(), token, payload.TeacherEmail, payload.Items)
	if err != nil {
		return h.seedError(c, err)
	}

	return utils.SendSuccess(c, "assignments seeded", fiber.Map{"created": created})
}

func (h *SeedHandler) seedError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrSeedDisabled):
		return utils.SendError(c, fiber.StatusForbidden, "seeding disabled")
	case errors.Is(err, service.ErrSeedUnauthorized):
		return utils.SendError(c, fiber.StatusForbidden, "invalid token")
	case errors.Is(err, service.ErrUserNotFound):
		return utils.SendError(c, fiber.StatusBadRequest, "teacher account not found")
	case errors.Is(err, service.ErrTeacherOnly):
		return utils.SendError(c, fiber.StatusBadRequest, "target account is not a teacher")
	default:
		h.logger.Error().Err(err).Msg("seed operation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "seed operation failed")
	}
}
