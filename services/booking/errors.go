package booking

import "fmt"

// BookingError is the typed failure surfaced by the booking flow. Two BookingErrors match
// under errors.Is when their codes are equal, so callers compare against the sentinels.
type BookingError struct {
	Code      string
	Message   string
	Retryable bool
	Err       error
}

func (e *BookingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BookingError) Is(target error) bool {
	t, ok := target.(*BookingError)
	return ok && t.Code == e.Code
}

func (e *BookingError) Unwrap() error {
	return e.Err
}

var (
	ErrSlotNotFound        = &BookingError{Code: "slot_not_found", Message: "this time slot is no longer available"}
	ErrSlotInactive        = &BookingError{Code: "slot_inactive", Message: "this time slot is closed for booking"}
	ErrInsufficientSeats   = &BookingError{Code: "insufficient_seats", Message: "not enough seats left for this party size"}
	ErrTransactionConflict = &BookingError{Code: "transaction_conflict", Message: "too many simultaneous bookings, please try again", Retryable: true}
	ErrTransactionTimeout  = &BookingError{Code: "transaction_timeout", Message: "the booking took too long, please try again", Retryable: true}
	ErrPriceLookupFailed   = &BookingError{Code: "price_lookup_failed", Message: "could not determine the tour price", Retryable: true}
	ErrInvalidRequest      = &BookingError{Code: "invalid_request", Message: "invalid booking request"}
	ErrReservationNotFound = &BookingError{Code: "reservation_not_found", Message: "reservation not found"}
	ErrInvalidTransition   = &BookingError{Code: "invalid_transition", Message: "reservation cannot change to that status"}
	ErrForbidden           = &BookingError{Code: "forbidden", Message: "not allowed to act on this resource"}
)

// withDetail copies a sentinel, replacing its message and attaching a cause.
func withDetail(base *BookingError, message string, cause error) *BookingError {
	e := *base
	if message != "" {
		e.Message = message
	}
	e.Err = cause
	return &e
}
