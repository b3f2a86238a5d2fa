package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/tryst-events/registration-service/internal/api/dto"
	"github.com/tryst-events/registration-service/internal/auth"
	"github.com/tryst-events/registration-service/internal/service"
	apperrors "github.com/tryst-events/registration-service/pkg/util"
)

const msgBooked = "Registered Successfully"

// BookingHandler exposes event booking. It must run behind the session
// middleware.
type BookingHandler struct {
	bookings *service.BookingService
}

// NewBookingHandler constructs handler.
func NewBookingHandler(bookings *service.BookingService) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

// Book handles POST /api/book.
func (h *BookingHandler) Book(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized(errors.New("no session principal"))
	}

	var req dto.BookRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := validate.Struct(req); err != nil {
		return apperrors.NewValidationError("eventId required")
	}

	if err := h.bookings.Book(c.UserContext(), principal.User.ID, *req.EventID); err != nil {
		return err
	}

	return c.JSON(dto.MessageResponse{Message: msgBooked})
}
