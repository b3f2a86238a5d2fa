package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/tryst-events/registration-service/internal/events"
	"github.com/tryst-events/registration-service/internal/repository"
	apperrors "github.com/tryst-events/registration-service/pkg/util"
)

// BookingService adds events to a user's registered set.
type BookingService struct {
	users      repository.UserRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewBookingService builds the service.
func NewBookingService(users repository.UserRepository, dispatcher events.Dispatcher, logger *zap.Logger) *BookingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingService{users: users, dispatcher: dispatcher, logger: logger}
}

// Book registers userID for eventID. Booking an event twice is a no-op.
// Any integer is accepted as an event id.
func (s *BookingService) Book(ctx context.Context, userID string, eventID int64) error {
	if err := s.users.AddEvent(ctx, userID, eventID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewUnauthorized(err)
		}
		return apperrors.NewInternalError(err)
	}

	publish(ctx, s.dispatcher, s.logger, events.New(events.EventEventBooked, userID,
		events.EventBookedPayload{EventID: eventID}))
	return nil
}
