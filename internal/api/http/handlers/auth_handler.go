package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-portal/internal/api/dto"
	"github.com/spec-kit/ticket-portal/internal/service"
	apperrors "github.com/spec-kit/ticket-portal/pkg/util/errorutil"
)

// AuthHandler exposes login, registration and session endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	outcome, err := h.auth.Login(c.UserContext(), req.Email, req.Password, Notices(c))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.AuthResponse{
		Token:        outcome.PortalToken,
		ExpiresAt:    outcome.ExpiresAt,
		LandingRoute: outcome.LandingRoute,
		User:         dto.NewSessionUser(outcome.Session),
	})
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	input := service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Team:     req.Team,
		Role:     req.Role,
	}
	if err := h.auth.Register(c.UserContext(), input, Notices(c)); err != nil {
		return err
	}
	return respond(c, http.StatusCreated, fiber.Map{"username": req.Username})
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	if err := h.auth.Logout(c.UserContext(), sess); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Me handles GET /me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, fiber.Map{
		"user":          dto.NewSessionUser(sess),
		"landing_route": sess.Role.LandingRoute(),
		"expires_at":    sess.ExpiresAt,
	})
}
