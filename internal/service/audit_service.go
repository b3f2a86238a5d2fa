package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/tryst-events/registration-service/internal/events"
	"github.com/tryst-events/registration-service/internal/observability"
)

// AuditService writes an audit trail and counters for domain events.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics) *AuditService {
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger.Named("audit"),
		metrics:    metrics,
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventUserRegistered, a.handleUserRegistered)
	a.dispatcher.Subscribe(events.EventEventBooked, a.handleEventBooked)
}

func (a *AuditService) handleUserRegistered(_ context.Context, event events.Event) error {
	a.metrics.RecordRegistration()
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("user_id", event.UserID),
		zap.Time("at", event.Timestamp),
	}
	if p, ok := event.Payload.(events.UserRegisteredPayload); ok {
		fields = append(fields, zap.String("entry_no", p.EntryNo))
	}
	a.logger.Info("UserRegistered", fields...)
	return nil
}

func (a *AuditService) handleEventBooked(_ context.Context, event events.Event) error {
	a.metrics.RecordBooking()
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("user_id", event.UserID),
		zap.Time("at", event.Timestamp),
	}
	if p, ok := event.Payload.(events.EventBookedPayload); ok {
		fields = append(fields, zap.Int64("booked_event", p.EventID))
	}
	a.logger.Info("EventBooked", fields...)
	return nil
}
