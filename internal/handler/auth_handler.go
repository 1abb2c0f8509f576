package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/classwork-go/internal/dto"
	"github.com/noah-isme/classwork-go/internal/service"
	"github.com/noah-isme/classwork-go/internal/utils"
)

// AuthHandler wires authentication HTTP routes.
type AuthHandler struct {
	service service.AuthService
	logger  zerolog.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(service service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.With().Str("component", "auth_handler").Logger(),
	}
}

// RegisterPublic attaches the unauthenticated endpoints.
func (h *AuthHandler) RegisterPublic(router fiber.Router, limiter fiber.Handler) {
	router.Post("/login", limiter, h.login)
}

// RegisterProtected attaches the endpoints requiring a valid token.
func (h *AuthHandler) RegisterProtected(router fiber.Router, protect fiber.Handler) {
	router.Get("/me", protect, h.me)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	resp, err := h.service.Login(c.Context(), payload)
	if err != nil {
		if handled, ok := badRequestIfInvalid(c, err); ok {
			return handled
		}
		if errors.Is(err, service.ErrInvalidCredentials) {
			return utils.SendError(c, fiber.StatusUnauthorized, service.ErrInvalidCredentials.Error())
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "login successful", resp)
}

func (h *AuthHandler) me(c *fiber.Ctx) error {
	user, err := h.service.Me(c.Context(), userIDFromContext(c))
	if err != nil {
		// A valid token whose subject no longer exists is treated the
		// same as a missing token.
		if errors.Is(err, service.ErrUserNotFound) {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "user retrieved", user)
}

func (h *AuthHandler) internalError(c *fiber.Ctx, err error) error {
	h.logger.Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
