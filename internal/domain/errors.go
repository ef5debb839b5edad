package domain

// ErrorCode classifies business failures carried inside a ReservationResult.
// These are never retried; retrying cannot change the outcome.
type ErrorCode string

const (
	CodeInvalidEventArea  ErrorCode = "INVALID_EVENT_AREA"
	CodeInvalidArgument   ErrorCode = "INVALID_ARGUMENT"
	CodeSeatNotAvailable  ErrorCode = "SEAT_NOT_AVAILABLE"
	CodeInsufficientSeats ErrorCode = "INSUFFICIENT_SEATS"
)
