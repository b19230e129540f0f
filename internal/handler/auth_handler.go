package handler

import (
	"context"

	"ai-teacher/internal/domain"
	"ai-teacher/internal/dto"
	"ai-teacher/internal/middleware"
	"ai-teacher/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SessionEnder discards per-user state held outside the auth session.
type SessionEnder interface {
	EndSession(ctx context.Context, userID string)
}

type AuthHandler struct {
	authService service.AuthService
	sessions    SessionEnder
}

// NewAuthHandler creates an AuthHandler. sessions may be nil.
func NewAuthHandler(authService service.AuthService, sessions SessionEnder) *AuthHandler {
	return &AuthHandler{authService: authService, sessions: sessions}
}

// SignUp creates an account through the backend.
// @Summary Sign up
// @Description Creates an account, persists the session and returns a gateway access token.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.SignUpRequest true "Account details"
// @Success 201 {object} dto.AuthResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 502 {object} middleware.ErrorResponse
// @Router /auth/signup [post]
func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	var req dto.SignUpRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewValidationError("Invalid request body")
	}
	resp, err := h.authService.SignUp(c.UserContext(), domain.SignUpInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// SignIn authenticates existing credentials.
// @Summary Sign in
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.SignInRequest true "Credentials"
// @Success 200 {object} dto.AuthResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 502 {object} middleware.ErrorResponse
// @Router /auth/signin [post]
func (h *AuthHandler) SignIn(c *fiber.Ctx) error {
	var req dto.SignInRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewValidationError("Invalid request body")
	}
	resp, err := h.authService.SignIn(c.UserContext(), domain.SignInInput{Email: req.Email, Password: req.Password})
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// SignOut clears the persisted token and profile, then the quiz session.
// @Summary Sign out
// @Tags auth
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} dto.MessageResponse
// @Router /auth/signout [post]
func (h *AuthHandler) SignOut(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if err := h.authService.SignOut(c.UserContext(), userID); err != nil {
		return err
	}
	if h.sessions != nil {
		h.sessions.EndSession(c.UserContext(), userID)
	}
	return c.JSON(dto.MessageResponse{Message: "Signed out"})
}

// Me restores the persisted profile.
// @Summary Current user
// @Tags auth
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} dto.UserResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, err := h.authService.CurrentUser(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(dto.UserResponse{UserID: user.ID, Name: user.Name, Email: user.Email})
}
