package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/tryst-events/registration-service/internal/api/dto"
	"github.com/tryst-events/registration-service/internal/service"
	apperrors "github.com/tryst-events/registration-service/pkg/util"
)

const msgUserCreated = "User Created"

// UsersHandler exposes registration and login.
type UsersHandler struct {
	auth *service.AuthService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService) *UsersHandler {
	return &UsersHandler{auth: authService}
}

// Register handles POST /api/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.UserRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := validate.Struct(req); err != nil {
		return apperrors.NewValidationError(apperrors.MsgFieldsRequired)
	}

	if _, err := h.auth.RegisterUser(c.UserContext(), req.Name, req.EntryNo, req.Password); err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(dto.MessageResponse{Message: msgUserCreated})
}

// Login handles POST /api/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.UserLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	user, session, err := h.auth.LoginUser(c.UserContext(), req.EntryNo, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(dto.LoginResponse{
		Token:            session.Token,
		Name:             user.Name,
		RegisteredEvents: user.Events(),
	})
}
