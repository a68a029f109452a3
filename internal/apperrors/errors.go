package apperrors

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Kind sentinels. Every error returned by the service layer wraps exactly one
// of these, so callers can match with errors.Is without depending on messages.
var (
	ErrValidation      = errors.New("validation error")
	ErrAuthentication  = errors.New("authentication error")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrInvalidToken    = errors.New("invalid token")
	ErrConflict        = errors.New("conflict")
	ErrInternal        = errors.New("internal error")
)

// Error carries a user-facing message tied to one of the kind sentinels.
type Error struct {
	kind error
	msg  string
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Unwrap() error { return e.kind }

func New(kind error, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

func Validation(msg string) *Error      { return New(ErrValidation, msg) }
func Authentication(msg string) *Error  { return New(ErrAuthentication, msg) }
func Unauthenticated(msg string) *Error { return New(ErrUnauthenticated, msg) }
func Forbidden(msg string) *Error       { return New(ErrForbidden, msg) }
func NotFound(msg string) *Error        { return New(ErrNotFound, msg) }
func InvalidToken(msg string) *Error    { return New(ErrInvalidToken, msg) }
func Conflict(msg string) *Error        { return New(ErrConflict, msg) }
func Internal(msg string) *Error        { return New(ErrInternal, msg) }

// StatusCode maps an error kind to its HTTP status.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrUnauthenticated),
		errors.Is(err, ErrAuthentication),
		errors.Is(err, ErrInvalidToken):
		return fiber.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrConflict):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}
