package booking

import (
	"errors"
	"log"
	"sort"
	"time"

	"indoor_booking/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Config carries the tunables of the reservation flow. The hold timeout is
// configuration, never hardcoded, so tests and deployments pick their own.
type Config struct {
	HoldTimeout     time.Duration
	AdvanceFraction float64
	Clock           func() time.Time
}

func (c Config) now() time.Time {
	if c.Clock != nil {
		return c.Clock()
	}
	return time.Now()
}

func (c Config) advanceFraction() float64 {
	if c.AdvanceFraction <= 0 {
		return DefaultAdvanceFraction
	}
	return c.AdvanceFraction
}

// Coordinator is the only component allowed to mutate the availability index.
// It keeps booking rows and occupancy records in lockstep inside a single
// transaction per operation.
type Coordinator struct {
	db       *gorm.DB
	index    *AvailabilityIndex
	grid     Grid
	cfg      Config
	notifier Notifier
	locks    *dayLocks

	// ChangeHook fires after a commit that changed availability for a
	// (venue, date). Used to broadcast live updates, may be nil.
	ChangeHook func(venueID uint, date string)
}

func NewCoordinator(db *gorm.DB, grid Grid, cfg Config, notifier Notifier) *Coordinator {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Coordinator{
		db:       db,
		index:    NewAvailabilityIndex(db, grid),
		grid:     grid,
		cfg:      cfg,
		notifier: notifier,
		locks:    newDayLocks(),
	}
}

func (co *Coordinator) Grid() Grid { return co.grid }

// Availability validates the date against the horizon and reads the index.
// A venue that does not exist, or was deactivated, is reported as not found
// rather than as an empty grid.
func (co *Coordinator) Availability(venueID uint, date string) ([]model.SlotAvailability, error) {
	now := co.cfg.now()
	if err := co.grid.ValidateDate(date, now); err != nil {
		return nil, err
	}
	var venue model.Venue
	if err := co.db.Where("is_active = ?", true).First(&venue, venueID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVenueNotFound
		}
		return nil, err
	}
	return co.index.QueryAvailability(venueID, date, now)
}

// CreateBooking holds the requested slots and creates the booking aggregate,
// capturing the venue's current hourly price per slot. All-or-nothing: a
// single taken slot fails the whole request with the conflicting indexes.
func (co *Coordinator) CreateBooking(customerID *uint, in model.CreateBookingInput) (*model.Booking, error) {
	now := co.cfg.now()
	if err := co.grid.ValidateDate(in.Date, now); err != nil {
		return nil, err
	}
	indexes := dedupeSorted(in.SlotIndexes)
	if err := co.grid.ValidateIndexes(indexes); err != nil {
		return nil, err
	}

	var venue model.Venue
	if err := co.db.Where("is_active = ?", true).First(&venue, in.VenueId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVenueNotFound
		}
		return nil, err
	}

	deadline := now.Add(co.cfg.HoldTimeout)
	total := venue.PricePerHour * float64(len(indexes))
	bk := model.Booking{
		PublicCode:    "BKG-" + uuid.New().String()[:8],
		CustomerId:    customerID,
		VenueId:       venue.ID,
		Date:          in.Date,
		Status:        model.BookingHeld,
		TotalAmount:   total,
		AdvanceAmount: ComputeAdvance(total, co.cfg.advanceFraction()),
		HoldExpiresAt: deadline,
	}

	unlock := co.locks.Lock(venue.ID, in.Date)
	err := co.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&bk).Error; err != nil {
			return err
		}
		return co.index.TryHold(tx, venue.ID, in.Date, indexes, bk.ID, venue.PricePerHour, deadline, now)
	})
	unlock()
	if err != nil {
		return nil, err
	}

	co.changed(venue.ID, in.Date)
	return co.GetBooking(bk.PublicCode)
}

// SubmitContact records the customer's phone number and moves the booking
// from held to advance-pending.
func (co *Coordinator) SubmitContact(code, phone string) (*model.Booking, error) {
	bk, err := co.transition(code, model.BookingHeld, model.BookingAdvancePending, func(tx *gorm.DB, bk *model.Booking) error {
		return tx.Model(bk).Update("phone", phone).Error
	})
	if err != nil {
		return nil, err
	}
	co.notifyAsync(bk, TemplateAdvanceReminder)
	return bk, nil
}

// OnAdvancePaymentReceived is the intake for the payment collaborator.
// Idempotent: once the booking is advance-paid (or confirmed) a second call
// is a no-op success.
func (co *Coordinator) OnAdvancePaymentReceived(code string) (*model.Booking, error) {
	unlock, err := co.lockFor(code)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var out *model.Booking
	err = co.db.Transaction(func(tx *gorm.DB) error {
		bk, err := co.lockBooking(tx, code)
		if err != nil {
			return err
		}
		if bk.Status == model.BookingAdvancePaid || bk.Status == model.BookingConfirmed {
			out = bk
			return nil // already applied
		}
		if err := co.checkLapsed(bk); err != nil {
			return err
		}
		if !CanTransition(bk.Status, model.BookingAdvancePaid) {
			return &StateMismatchError{BookingCode: code, Expected: model.BookingAdvancePending, Actual: bk.Status}
		}
		now := co.cfg.now()
		if err := tx.Model(bk).Updates(map[string]any{"status": model.BookingAdvancePaid, "paid_at": now}).Error; err != nil {
			return err
		}
		if err := co.index.Advance(tx, bk.ID, slotStatusFor(bk.Status), model.SlotAdvancePaid); err != nil {
			return err
		}
		bk.Status = model.BookingAdvancePaid
		bk.PaidAt = &now
		out = bk
		return nil
	})
	if err != nil {
		return nil, err
	}
	co.changed(out.VenueId, out.Date)
	return co.GetBooking(out.PublicCode)
}

// ConfirmBooking is the operator's manual confirmation of an advance-paid
// booking.
func (co *Coordinator) ConfirmBooking(code string) (*model.Booking, error) {
	bk, err := co.transition(code, model.BookingAdvancePaid, model.BookingConfirmed, func(tx *gorm.DB, bk *model.Booking) error {
		return tx.Model(bk).Update("confirmed_at", co.cfg.now()).Error
	})
	if err != nil {
		return nil, err
	}
	co.notifyAsync(bk, TemplateBookingConfirmed)
	return bk, nil
}

// CancelBooking cancels a non-terminal booking and frees its slots.
func (co *Coordinator) CancelBooking(code, reason string) (*model.Booking, error) {
	unlock, err := co.lockFor(code)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var out *model.Booking
	err = co.db.Transaction(func(tx *gorm.DB) error {
		bk, err := co.lockBooking(tx, code)
		if err != nil {
			return err
		}
		if IsTerminal(bk.Status) {
			return &StateMismatchError{BookingCode: code, Expected: model.BookingHeld, Actual: bk.Status}
		}
		now := co.cfg.now()
		updates := map[string]any{"status": model.BookingCancelled, "cancelled_at": now, "cancel_reason": reason}
		if err := tx.Model(bk).Updates(updates).Error; err != nil {
			return err
		}
		if err := co.index.Release(tx, bk.ID); err != nil {
			return err
		}
		bk.Status = model.BookingCancelled
		out = bk
		return nil
	})
	if err != nil {
		return nil, err
	}
	co.changed(out.VenueId, out.Date)
	full, err := co.GetBooking(code)
	if err != nil {
		return nil, err
	}
	if full.Phone != "" {
		co.notifyAsync(full, TemplateBookingCancelled)
	}
	return full, nil
}

// ApplyDiscount reprices an unpaid booking from its captured slot prices.
func (co *Coordinator) ApplyDiscount(code, discountCode string) (*model.Booking, error) {
	var out *model.Booking
	err := co.db.Transaction(func(tx *gorm.DB) error {
		bk, err := co.lockBooking(tx, code)
		if err != nil {
			return err
		}
		if bk.Status != model.BookingHeld && bk.Status != model.BookingAdvancePending {
			return &StateMismatchError{BookingCode: code, Expected: model.BookingHeld, Actual: bk.Status}
		}
		var discount model.Discount
		if err := tx.Where("code = ?", discountCode).First(&discount).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDiscountInactive
			}
			return err
		}
		var slots []model.OccupancyRecord
		if err := tx.Where("booking_id = ? AND status IN ?", bk.ID, activeStatuses).Find(&slots).Error; err != nil {
			return err
		}
		total, err := ApplyDiscount(ComputeTotal(slots), discount, co.cfg.now())
		if err != nil {
			return err
		}
		return tx.Model(bk).Updates(map[string]any{
			"total_amount":   total,
			"advance_amount": ComputeAdvance(total, co.cfg.advanceFraction()),
			"discount_code":  discount.Code,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	out, err = co.GetBooking(code)
	return out, err
}

// ExpireBookings sweeps held and advance-pending bookings past their
// deadline. Returns how many were expired. The per-booking re-check runs
// under lock so a concurrent payment and the sweep can never both win.
func (co *Coordinator) ExpireBookings() (int, error) {
	now := co.cfg.now()
	var stale []model.Booking
	if err := co.db.
		Where("status IN ? AND hold_expires_at < ?", []model.BookingStatus{model.BookingHeld, model.BookingAdvancePending}, now).
		Find(&stale).Error; err != nil {
		return 0, err
	}

	expired := 0
	for _, candidate := range stale {
		unlock := co.locks.Lock(candidate.VenueId, candidate.Date)
		err := co.db.Transaction(func(tx *gorm.DB) error {
			bk, err := co.lockBooking(tx, candidate.PublicCode)
			if err != nil {
				return err
			}
			if IsTerminal(bk.Status) || !bk.HoldExpiresAt.Before(now) {
				return nil // advanced or already closed since the scan
			}
			if err := tx.Model(bk).Update("status", model.BookingExpired).Error; err != nil {
				return err
			}
			if err := co.index.Release(tx, bk.ID); err != nil {
				return err
			}
			expired++
			return nil
		})
		unlock()
		if err != nil {
			log.Printf("expire booking %s: %v", candidate.PublicCode, err)
			continue
		}
		co.changed(candidate.VenueId, candidate.Date)
	}
	return expired, nil
}

// GetBooking loads a booking with its slots and venue by public code.
func (co *Coordinator) GetBooking(code string) (*model.Booking, error) {
	var bk model.Booking
	if err := co.db.Preload("Slots").Preload("Venue").Where("public_code = ?", code).First(&bk).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &bk, nil
}

// transition runs a guarded from→to booking transition plus extra updates in
// one transaction, with lazy expiry checked under the same lock.
func (co *Coordinator) transition(code string, from, to model.BookingStatus, extra func(tx *gorm.DB, bk *model.Booking) error) (*model.Booking, error) {
	unlock, err := co.lockFor(code)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var out *model.Booking
	err = co.db.Transaction(func(tx *gorm.DB) error {
		bk, err := co.lockBooking(tx, code)
		if err != nil {
			return err
		}
		if err := co.checkLapsed(bk); err != nil {
			return err
		}
		if bk.Status != from || !CanTransition(from, to) {
			return &StateMismatchError{BookingCode: code, Expected: from, Actual: bk.Status}
		}
		if err := tx.Model(bk).Update("status", to).Error; err != nil {
			return err
		}
		if extra != nil {
			if err := extra(tx, bk); err != nil {
				return err
			}
		}
		if err := co.index.Advance(tx, bk.ID, slotStatusFor(from), slotStatusFor(to)); err != nil {
			return err
		}
		bk.Status = to
		out = bk
		return nil
	})
	if err != nil {
		return nil, err
	}
	co.changed(out.VenueId, out.Date)
	return co.GetBooking(code)
}

// lockFor resolves the booking's venue-day and takes its mutation lock.
func (co *Coordinator) lockFor(code string) (func(), error) {
	var bk model.Booking
	if err := co.db.Select("venue_id", "date").Where("public_code = ?", code).First(&bk).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return co.locks.Lock(bk.VenueId, bk.Date), nil
}

func (co *Coordinator) lockBooking(tx *gorm.DB, code string) (*model.Booking, error) {
	var bk model.Booking
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("public_code = ?", code).First(&bk).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &bk, nil
}

// checkLapsed reports the drift of a booking whose hold deadline has passed.
// It runs under the row lock of the caller's transaction, so the "still
// valid" check and the commit sit in the same atomic unit. Persisting the
// expiry is the sweep's job (and TryHold's, for contended slots).
func (co *Coordinator) checkLapsed(bk *model.Booking) error {
	if bk.Status != model.BookingHeld && bk.Status != model.BookingAdvancePending {
		return nil
	}
	if !bk.HoldExpiresAt.Before(co.cfg.now()) {
		return nil
	}
	return &StateMismatchError{BookingCode: bk.PublicCode, Expected: bk.Status, Actual: model.BookingExpired}
}

func (co *Coordinator) changed(venueID uint, date string) {
	if co.ChangeHook != nil {
		co.ChangeHook(venueID, date)
	}
}

// notifyAsync fires the notification without blocking the booking flow.
// Failures are logged, the collaborator retries on its side.
func (co *Coordinator) notifyAsync(bk *model.Booking, kind TemplateKind) {
	snap := Snapshot{
		BookingCode:   bk.PublicCode,
		VenueName:     bk.Venue.Name,
		Date:          bk.Date,
		TotalAmount:   bk.TotalAmount,
		AdvanceAmount: bk.AdvanceAmount,
	}
	for _, s := range bk.Slots {
		if s.Status == model.SlotCancelled {
			continue
		}
		start, _ := co.grid.SlotTimes(s.SlotIndex)
		snap.SlotTimes = append(snap.SlotTimes, start)
	}
	phone := bk.Phone
	go func() {
		if err := co.notifier.Notify(phone, kind, snap); err != nil {
			log.Printf("notify %s for booking %s: %v", kind, snap.BookingCode, err)
		}
	}()
}

func dedupeSorted(indexes []int) []int {
	seen := make(map[int]bool, len(indexes))
	out := make([]int, 0, len(indexes))
	for _, idx := range indexes {
		if !seen[idx] {
			seen[idx] = true
			out = append(out, idx)
		}
	}
	sort.Ints(out)
	return out
}
