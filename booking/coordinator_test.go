package booking

import (
	"errors"
	"sync"
	"testing"
	"time"

	"indoor_booking/model"
)

// TestBookingFlow walks the observed happy path: hold, conflicting second
// hold, contact submission, advance payment, manual confirmation.
func TestBookingFlow(t *testing.T) {
	db := testDB(t)
	venue := seedVenue(t, db, "Basketball Court 1", 500)
	clock := newTestClock(defaultStart)
	co := testCoordinator(t, db, clock)

	b1, err := co.CreateBooking(nil, model.CreateBookingInput{
		VenueId: venue.ID, Date: "2024-06-01", SlotIndexes: []int{2},
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if b1.Status != model.BookingHeld {
		t.Errorf("status %s, want HELD", b1.Status)
	}
	if b1.TotalAmount != 500 || b1.AdvanceAmount != 100 {
		t.Errorf("total %v advance %v, want 500 / 100", b1.TotalAmount, b1.AdvanceAmount)
	}

	// second customer racing for the same slot gets the conflict
	_, err = co.CreateBooking(nil, model.CreateBookingInput{
		VenueId: venue.ID, Date: "2024-06-01", SlotIndexes: []int{2},
	})
	var conflict *SlotUnavailableError
	if !errors.As(err, &conflict) {
		t.Fatalf("err = %v, want *SlotUnavailableError", err)
	}
	if len(conflict.Conflicts) != 1 || conflict.Conflicts[0] != 2 {
		t.Errorf("conflicts = %v, want [2]", conflict.Conflicts)
	}

	b1, err = co.SubmitContact(b1.PublicCode, "+923001234567")
	if err != nil {
		t.Fatalf("SubmitContact: %v", err)
	}
	if b1.Status != model.BookingAdvancePending {
		t.Errorf("status %s, want ADVANCE_PENDING", b1.Status)
	}

	b1, err = co.OnAdvancePaymentReceived(b1.PublicCode)
	if err != nil {
		t.Fatalf("OnAdvancePaymentReceived: %v", err)
	}
	if b1.Status != model.BookingAdvancePaid {
		t.Errorf("status %s, want ADVANCE_PAID", b1.Status)
	}

	b1, err = co.ConfirmBooking(b1.PublicCode)
	if err != nil {
		t.Fatalf("ConfirmBooking: %v", err)
	}
	if b1.Status != model.BookingConfirmed {
		t.Errorf("status %s, want CONFIRMED", b1.Status)
	}

	slots, err := co.Availability(venue.ID, "2024-06-01")
	if err != nil {
		t.Fatalf("Availability: %v", err)
	}
	if slots[2].Status != model.SlotConfirmed {
		t.Errorf("slot 2 status %s, want CONFIRMED", slots[2].Status)
	}
}

// TestConcurrentOverlappingHolds is the central concurrency contract: two
// concurrent holds with intersecting slot sets never both succeed.
func TestConcurrentOverlappingHolds(t *testing.T) {
	db := testDB(t)
	venue := seedVenue(t, db, "Tennis Court 1", 600)
	clock := newTestClock(defaultStart)
	co := testCoordinator(t, db, clock)

	sets := [][]int{{2, 3, 4}, {4, 5, 6}}
	errs := make([]error, len(sets))
	var wg sync.WaitGroup
	for i, set := range sets {
		wg.Add(1)
		go func(i int, set []int) {
			defer wg.Done()
			_, errs[i] = co.CreateBooking(nil, model.CreateBookingInput{
				VenueId: venue.ID, Date: "2024-06-02", SlotIndexes: set,
			})
		}(i, set)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		}
	}
	if succeeded != 1 {
		t.Fatalf("%d holds succeeded, want exactly 1 (errs: %v)", succeeded, errs)
	}

	// slot 4 is owned by exactly one booking
	var active int64
	db.Model(&model.OccupancyRecord{}).
		Where("venue_id = ? AND date = ? AND slot_index = ? AND status = ?", venue.ID, "2024-06-02", 4, model.SlotHeld).
		Count(&active)
	if active != 1 {
		t.Errorf("%d active records for slot 4, want 1", active)
	}
}

func TestPaymentIdempotence(t *testing.T) {
	db := testDB(t)
	venue := seedVenue(t, db, "Badminton Court 1", 400)
	clock := newTestClock(defaultStart)
	co := testCoordinator(t, db, clock)

	bk, err := co.CreateBooking(nil, model.CreateBookingInput{
		VenueId: venue.ID, Date: "2024-06-01", SlotIndexes: []int{0, 1},
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if _, err := co.SubmitContact(bk.PublicCode, "+923001234567"); err != nil {
		t.Fatalf("SubmitContact: %v", err)
	}

	first, err := co.OnAdvancePaymentReceived(bk.PublicCode)
	if err != nil {
		t.Fatalf("first payment: %v", err)
	}
	second, err := co.OnAdvancePaymentReceived(bk.PublicCode)
	if err != nil {
		t.Fatalf("second payment: %v", err)
	}
	if first.Status != second.Status || second.Status != model.BookingAdvancePaid {
		t.Errorf("statuses %s / %s, want both ADVANCE_PAID", first.Status, second.Status)
	}
	if !first.PaidAt.Equal(*second.PaidAt) {
		t.Errorf("second call moved paidAt from %v to %v", first.PaidAt, second.PaidAt)
	}
}

func TestPriceLock(t *testing.T) {
	db := testDB(t)
	venue := seedVenue(t, db, "Basketball Court 1", 500)
	clock := newTestClock(defaultStart)
	co := testCoordinator(t, db, clock)

	bk, err := co.CreateBooking(nil, model.CreateBookingInput{
		VenueId: venue.ID, Date: "2024-06-01", SlotIndexes: []int{3},
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	if err := db.Model(&model.Venue{}).Where("id = ?", venue.ID).Update("price_per_hour", 999).Error; err != nil {
		t.Fatalf("update price: %v", err)
	}

	got, err := co.GetBooking(bk.PublicCode)
	if err != nil {
		t.Fatalf("GetBooking: %v", err)
	}
	if got.TotalAmount != 500 {
		t.Errorf("total %v after price change, want 500", got.TotalAmount)
	}
	if got.Slots[0].Price != 500 {
		t.Errorf("captured slot price %v, want 500", got.Slots[0].Price)
	}
}

func TestCancelFreesSlots(t *testing.T) {
	db := testDB(t)
	venue := seedVenue(t, db, "Volleyball Court", 450)
	clock := newTestClock(defaultStart)
	co := testCoordinator(t, db, clock)

	bk, err := co.CreateBooking(nil, model.CreateBookingInput{
		VenueId: venue.ID, Date: "2024-06-01", SlotIndexes: []int{5, 6},
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	if _, err := co.CancelBooking(bk.PublicCode, "customer changed plans"); err != nil {
		t.Fatalf("CancelBooking: %v", err)
	}

	slots, err := co.Availability(venue.ID, "2024-06-01")
	if err != nil {
		t.Fatalf("Availability: %v", err)
	}
	for _, idx := range []int{5, 6} {
		if slots[idx].Status != model.SlotFree {
			t.Errorf("slot %d status %s after cancel, want FREE", idx, slots[idx].Status)
		}
	}

	// terminal bookings reject further transitions
	_, err = co.CancelBooking(bk.PublicCode, "again")
	var mismatch *StateMismatchError
	if !errors.As(err, &mismatch) {
		t.Errorf("second cancel err = %v, want *StateMismatchError", err)
	}
}

func TestHoldExpiry(t *testing.T) {
	db := testDB(t)
	venue := seedVenue(t, db, "Tennis Court 1", 600)
	clock := newTestClock(defaultStart)
	co := testCoordinator(t, db, clock)

	bk, err := co.CreateBooking(nil, model.CreateBookingInput{
		VenueId: venue.ID, Date: "2024-06-01", SlotIndexes: []int{9},
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if _, err := co.SubmitContact(bk.PublicCode, "+923001234567"); err != nil {
		t.Fatalf("SubmitContact: %v", err)
	}

	clock.Advance(16 * time.Minute) // past the 15 minute hold timeout

	// the lapsed booking is unreachable for payment
	_, err = co.OnAdvancePaymentReceived(bk.PublicCode)
	var mismatch *StateMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("payment after expiry err = %v, want *StateMismatchError", err)
	}

	// the slot reads as free even before the sweep runs
	slots, err := co.Availability(venue.ID, "2024-06-01")
	if err != nil {
		t.Fatalf("Availability: %v", err)
	}
	if slots[9].Status != model.SlotFree {
		t.Errorf("slot 9 status %s before sweep, want FREE", slots[9].Status)
	}

	expired, err := co.ExpireBookings()
	if err != nil {
		t.Fatalf("ExpireBookings: %v", err)
	}
	if expired != 1 {
		t.Errorf("expired %d bookings, want 1", expired)
	}

	got, err := co.GetBooking(bk.PublicCode)
	if err != nil {
		t.Fatalf("GetBooking: %v", err)
	}
	if got.Status != model.BookingExpired {
		t.Errorf("status %s after sweep, want EXPIRED", got.Status)
	}

	// and the slot can be rebooked
	if _, err := co.CreateBooking(nil, model.CreateBookingInput{
		VenueId: venue.ID, Date: "2024-06-01", SlotIndexes: []int{9},
	}); err != nil {
		t.Fatalf("rebook after expiry: %v", err)
	}
}

func TestApplyDiscountToBooking(t *testing.T) {
	db := testDB(t)
	venue := seedVenue(t, db, "Basketball Court 1", 500)
	clock := newTestClock(time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC))
	co := testCoordinator(t, db, clock)

	summer := model.Discount{
		Code:       "SUMMER2024",
		Percentage: 10,
		ValidFrom:  time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		ValidUntil: time.Date(2024, 8, 31, 23, 59, 59, 0, time.UTC),
		IsActive:   true,
	}
	if err := db.Create(&summer).Error; err != nil {
		t.Fatalf("seed discount: %v", err)
	}

	bk, err := co.CreateBooking(nil, model.CreateBookingInput{
		VenueId: venue.ID, Date: "2024-07-05", SlotIndexes: []int{2, 3},
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if bk.TotalAmount != 1000 {
		t.Fatalf("total %v, want 1000", bk.TotalAmount)
	}

	bk, err = co.ApplyDiscount(bk.PublicCode, "SUMMER2024")
	if err != nil {
		t.Fatalf("ApplyDiscount: %v", err)
	}
	if bk.TotalAmount != 900 {
		t.Errorf("total %v after discount, want 900", bk.TotalAmount)
	}
	if bk.AdvanceAmount != 180 {
		t.Errorf("advance %v after discount, want 180", bk.AdvanceAmount)
	}

	// expired window surfaces the business-rule rejection
	clock.Set(time.Date(2024, 9, 1, 10, 0, 0, 0, time.UTC))
	bk2, err := co.CreateBooking(nil, model.CreateBookingInput{
		VenueId: venue.ID, Date: "2024-09-05", SlotIndexes: []int{2},
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if _, err := co.ApplyDiscount(bk2.PublicCode, "SUMMER2024"); !errors.Is(err, ErrDiscountExpired) {
		t.Errorf("err = %v, want ErrDiscountExpired", err)
	}
}

func TestSubmitContactNotifies(t *testing.T) {
	db := testDB(t)
	venue := seedVenue(t, db, "Basketball Court 1", 500)
	clock := newTestClock(defaultStart)
	grid := NewGrid(8, 20, 30, time.UTC)
	notifier := &recordingNotifier{}
	co := NewCoordinator(db, grid, Config{HoldTimeout: 15 * time.Minute, AdvanceFraction: 0.20, Clock: clock.Now}, notifier)

	bk, err := co.CreateBooking(nil, model.CreateBookingInput{
		VenueId: venue.ID, Date: "2024-06-01", SlotIndexes: []int{2},
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if _, err := co.SubmitContact(bk.PublicCode, "+923001234567"); err != nil {
		t.Fatalf("SubmitContact: %v", err)
	}

	// notification delivery is async fire-and-forget
	deadline := time.Now().Add(2 * time.Second)
	for {
		notifier.mu.Lock()
		n := len(notifier.sends)
		notifier.mu.Unlock()
		if n > 0 || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	if len(notifier.sends) != 1 {
		t.Fatalf("got %d notifications, want 1", len(notifier.sends))
	}
	sent := notifier.sends[0]
	if sent.Phone != "+923001234567" || sent.Kind != TemplateAdvanceReminder {
		t.Errorf("sent %s/%s, want +923001234567/ADVANCE_REMINDER", sent.Phone, sent.Kind)
	}
	if sent.Snap.VenueName != "Basketball Court 1" || sent.Snap.AdvanceAmount != 100 {
		t.Errorf("snapshot %+v lacks venue name or advance amount", sent.Snap)
	}
}

func TestCreateBookingValidation(t *testing.T) {
	db := testDB(t)
	venue := seedVenue(t, db, "Basketball Court 1", 500)
	clock := newTestClock(defaultStart)
	co := testCoordinator(t, db, clock)

	t.Run("past date", func(t *testing.T) {
		_, err := co.CreateBooking(nil, model.CreateBookingInput{
			VenueId: venue.ID, Date: "2024-05-19", SlotIndexes: []int{1},
		})
		var invalid *InvalidDateError
		if !errors.As(err, &invalid) {
			t.Errorf("err = %v, want *InvalidDateError", err)
		}
	})

	t.Run("slot out of range", func(t *testing.T) {
		_, err := co.CreateBooking(nil, model.CreateBookingInput{
			VenueId: venue.ID, Date: "2024-06-01", SlotIndexes: []int{12},
		})
		var invalid *InvalidSlotIndexError
		if !errors.As(err, &invalid) {
			t.Errorf("err = %v, want *InvalidSlotIndexError", err)
		}
	})

	t.Run("unknown venue", func(t *testing.T) {
		_, err := co.CreateBooking(nil, model.CreateBookingInput{
			VenueId: 999, Date: "2024-06-01", SlotIndexes: []int{1},
		})
		if !errors.Is(err, ErrVenueNotFound) {
			t.Errorf("err = %v, want ErrVenueNotFound", err)
		}
	})

	t.Run("duplicate indexes collapse", func(t *testing.T) {
		bk, err := co.CreateBooking(nil, model.CreateBookingInput{
			VenueId: venue.ID, Date: "2024-06-03", SlotIndexes: []int{4, 4, 4},
		})
		if err != nil {
			t.Fatalf("CreateBooking: %v", err)
		}
		if len(bk.Slots) != 1 || bk.TotalAmount != 500 {
			t.Errorf("got %d slots total %v, want 1 slot total 500", len(bk.Slots), bk.TotalAmount)
		}
	})
}

func TestAvailabilityUnknownVenue(t *testing.T) {
	db := testDB(t)
	clock := newTestClock(defaultStart)
	co := testCoordinator(t, db, clock)

	if _, err := co.Availability(999, "2024-06-01"); !errors.Is(err, ErrVenueNotFound) {
		t.Errorf("missing venue: err = %v, want ErrVenueNotFound", err)
	}

	closed := model.Venue{Name: "Closed Court", Category: "Tennis", PricePerHour: 600, IsActive: false}
	if err := db.Create(&closed).Error; err != nil {
		t.Fatalf("seed venue: %v", err)
	}
	if _, err := co.Availability(closed.ID, "2024-06-01"); !errors.Is(err, ErrVenueNotFound) {
		t.Errorf("deactivated venue: err = %v, want ErrVenueNotFound", err)
	}

	venue := seedVenue(t, db, "Basketball Court 1", 500)
	slots, err := co.Availability(venue.ID, "2024-06-01")
	if err != nil {
		t.Fatalf("Availability: %v", err)
	}
	if len(slots) != 12 {
		t.Errorf("got %d slots, want 12", len(slots))
	}
}
