package dto

// UserRegisterRequest payload for new users.
type UserRegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	EntryNo  string `json:"entryNo" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UserLoginRequest payload for login.
type UserLoginRequest struct {
	EntryNo  string `json:"entryNo"`
	Password string `json:"password"`
}

// LoginResponse is returned on successful login.
type LoginResponse struct {
	Token            string  `json:"token"`
	Name             string  `json:"name"`
	RegisteredEvents []int64 `json:"registeredEvents"`
}

// MessageResponse carries a plain confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}
