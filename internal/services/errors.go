package services

import "errors"

var (
	// ErrConflict is returned when a registration collides with an
	// existing username or email.
	ErrConflict = errors.New("username or email already exists")

	// ErrInvalidCredentials is returned for every authentication
	// failure. Unknown username and wrong password intentionally share
	// this error so the two cases are indistinguishable to a caller.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserNotFound is returned when a looked-up user id has no row.
	ErrUserNotFound = errors.New("user not found")

	// ErrNoUpdatableFields is returned when an update payload contains
	// none of the allow-listed fields.
	ErrNoUpdatableFields = errors.New("no valid fields to update")
)

// ValidationError reports client input that failed validation. The
// message is safe to return to the client.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }
