package dto

// BookRequest payload for booking an event. The token is consumed by the
// session middleware.
type BookRequest struct {
	Token   string `json:"token"`
	EventID *int64 `json:"eventId" validate:"required"`
}
