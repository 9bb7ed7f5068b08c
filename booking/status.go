package booking

import "indoor_booking/model"

// bookingTransitions is the closed transition table of the booking state
// machine. Cancelled is reachable from every non-terminal state, Expired only
// from Held and AdvancePending.
var bookingTransitions = map[model.BookingStatus][]model.BookingStatus{
	model.BookingHeld:           {model.BookingAdvancePending, model.BookingCancelled, model.BookingExpired},
	model.BookingAdvancePending: {model.BookingAdvancePaid, model.BookingCancelled, model.BookingExpired},
	model.BookingAdvancePaid:    {model.BookingConfirmed, model.BookingCancelled},
	model.BookingConfirmed:      {},
	model.BookingCancelled:      {},
	model.BookingExpired:        {},
}

// slotTransitions mirrors the booking table at occupancy-record level.
var slotTransitions = map[model.SlotStatus][]model.SlotStatus{
	model.SlotFree:           {model.SlotHeld},
	model.SlotHeld:           {model.SlotAdvancePending, model.SlotCancelled},
	model.SlotAdvancePending: {model.SlotAdvancePaid, model.SlotCancelled},
	model.SlotAdvancePaid:    {model.SlotConfirmed, model.SlotCancelled},
	model.SlotConfirmed:      {},
	model.SlotCancelled:      {},
}

func CanTransition(from, to model.BookingStatus) bool {
	for _, next := range bookingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func CanTransitionSlot(from, to model.SlotStatus) bool {
	for _, next := range slotTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func IsTerminal(s model.BookingStatus) bool {
	return len(bookingTransitions[s]) == 0
}

// slotStatusFor keeps occupancy records in lockstep with their booking.
// Expired bookings cancel their records so the slots query as free again.
func slotStatusFor(s model.BookingStatus) model.SlotStatus {
	switch s {
	case model.BookingHeld:
		return model.SlotHeld
	case model.BookingAdvancePending:
		return model.SlotAdvancePending
	case model.BookingAdvancePaid:
		return model.SlotAdvancePaid
	case model.BookingConfirmed:
		return model.SlotConfirmed
	default:
		return model.SlotCancelled
	}
}
