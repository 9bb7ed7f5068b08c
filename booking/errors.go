package booking

import (
	"errors"
	"fmt"
	"strings"

	"indoor_booking/model"
)

// SlotUnavailableError reports a failed hold. Conflicts names exactly the
// requested slot indexes that were not free, so the caller can highlight them
// without forcing a full re-selection.
type SlotUnavailableError struct {
	VenueId   uint
	Date      string
	Conflicts []int
}

func (e *SlotUnavailableError) Error() string {
	parts := make([]string, len(e.Conflicts))
	for i, idx := range e.Conflicts {
		parts[i] = fmt.Sprintf("%d", idx)
	}
	return fmt.Sprintf("slots not available for venue %d on %s: %s", e.VenueId, e.Date, strings.Join(parts, ", "))
}

// StateMismatchError means the booking drifted (for example expired
// concurrently). Recoverable, the caller re-fetches state.
type StateMismatchError struct {
	BookingCode string
	Expected    model.BookingStatus
	Actual      model.BookingStatus
}

func (e *StateMismatchError) Error() string {
	return fmt.Sprintf("booking %s is %s, expected %s", e.BookingCode, e.Actual, e.Expected)
}

// InvalidDateError rejects dates outside the booking horizon or malformed
// dates. Caller programming error, not retried.
type InvalidDateError struct {
	Date   string
	Reason string
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid date %q: %s", e.Date, e.Reason)
}

// InvalidSlotIndexError rejects slot indexes outside the grid.
type InvalidSlotIndexError struct {
	Index int
	Max   int
}

func (e *InvalidSlotIndexError) Error() string {
	return fmt.Sprintf("slot index %d out of range [0, %d]", e.Index, e.Max)
}

var (
	ErrDiscountExpired  = errors.New("discount is outside its validity window")
	ErrDiscountInactive = errors.New("discount is not active")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrVenueNotFound    = errors.New("venue not found")
)
