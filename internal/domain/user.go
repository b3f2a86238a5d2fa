package domain

import "time"

// User is the domain model for an attendee account.
type User struct {
	ID               string
	Name             string
	EntryNo          string
	PasswordHash     string
	RegisteredEvents []int64
	CreatedAt        time.Time
}

// HasEvent reports whether eventID is already booked.
func (u *User) HasEvent(eventID int64) bool {
	for _, id := range u.RegisteredEvents {
		if id == eventID {
			return true
		}
	}
	return false
}

// Events returns the booked event ids, never nil.
func (u *User) Events() []int64 {
	if u.RegisteredEvents == nil {
		return []int64{}
	}
	return u.RegisteredEvents
}
