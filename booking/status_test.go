package booking

import (
	"testing"

	"indoor_booking/model"
)

func TestBookingTransitions(t *testing.T) {
	allowed := []struct {
		from, to model.BookingStatus
	}{
		{model.BookingHeld, model.BookingAdvancePending},
		{model.BookingHeld, model.BookingCancelled},
		{model.BookingHeld, model.BookingExpired},
		{model.BookingAdvancePending, model.BookingAdvancePaid},
		{model.BookingAdvancePending, model.BookingCancelled},
		{model.BookingAdvancePending, model.BookingExpired},
		{model.BookingAdvancePaid, model.BookingConfirmed},
		{model.BookingAdvancePaid, model.BookingCancelled},
	}
	allowedSet := make(map[[2]model.BookingStatus]bool)
	for _, tr := range allowed {
		allowedSet[[2]model.BookingStatus{tr.from, tr.to}] = true
		if !CanTransition(tr.from, tr.to) {
			t.Errorf("%s -> %s should be allowed", tr.from, tr.to)
		}
	}

	all := []model.BookingStatus{
		model.BookingHeld, model.BookingAdvancePending, model.BookingAdvancePaid,
		model.BookingConfirmed, model.BookingCancelled, model.BookingExpired,
	}
	for _, from := range all {
		for _, to := range all {
			if allowedSet[[2]model.BookingStatus{from, to}] {
				continue
			}
			if CanTransition(from, to) {
				t.Errorf("%s -> %s should be rejected", from, to)
			}
		}
	}
}

func TestTerminalStates(t *testing.T) {
	for _, s := range []model.BookingStatus{model.BookingConfirmed, model.BookingCancelled, model.BookingExpired} {
		if !IsTerminal(s) {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []model.BookingStatus{model.BookingHeld, model.BookingAdvancePending, model.BookingAdvancePaid} {
		if IsTerminal(s) {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestSlotStatusLockstep(t *testing.T) {
	cases := map[model.BookingStatus]model.SlotStatus{
		model.BookingHeld:           model.SlotHeld,
		model.BookingAdvancePending: model.SlotAdvancePending,
		model.BookingAdvancePaid:    model.SlotAdvancePaid,
		model.BookingConfirmed:      model.SlotConfirmed,
		model.BookingCancelled:      model.SlotCancelled,
		model.BookingExpired:        model.SlotCancelled,
	}
	for bs, want := range cases {
		if got := slotStatusFor(bs); got != want {
			t.Errorf("slotStatusFor(%s) = %s, want %s", bs, got, want)
		}
	}
}
