package booking

import (
	"sort"
	"time"

	"indoor_booking/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AvailabilityIndex is the single source of truth for slot occupancy. All
// mutations run inside the caller's transaction so booking rows and occupancy
// records move in lockstep; reads go through the index's own connection.
type AvailabilityIndex struct {
	db   *gorm.DB
	grid Grid
}

func NewAvailabilityIndex(db *gorm.DB, grid Grid) *AvailabilityIndex {
	return &AvailabilityIndex{db: db, grid: grid}
}

// activeStatuses are the occupancy statuses that block a slot.
var activeStatuses = []model.SlotStatus{
	model.SlotHeld, model.SlotAdvancePending, model.SlotAdvancePaid, model.SlotConfirmed,
}

// QueryAvailability reports the status of every grid slot for the date. Slots
// with no record, a cancelled record or an expired hold read as free.
func (ix *AvailabilityIndex) QueryAvailability(venueID uint, date string, now time.Time) ([]model.SlotAvailability, error) {
	slots, err := ix.grid.SlotsFor(date)
	if err != nil {
		return nil, err
	}

	var records []model.OccupancyRecord
	if err := ix.db.
		Where("venue_id = ? AND date = ? AND status IN ?", venueID, date, activeStatuses).
		Order("id").
		Find(&records).Error; err != nil {
		return nil, err
	}

	occupied := make(map[int]model.SlotStatus, len(records))
	for _, rec := range records {
		if holdLapsed(rec, now) {
			continue // the sweep will cancel it, read it as free already
		}
		occupied[rec.SlotIndex] = rec.Status
	}

	out := make([]model.SlotAvailability, 0, len(slots))
	for _, s := range slots {
		status := model.SlotFree
		if occ, ok := occupied[s.Index]; ok {
			status = occ
		}
		start, end := ix.grid.SlotTimes(s.Index)
		out = append(out, model.SlotAvailability{SlotIndex: s.Index, Start: start, End: end, Status: status})
	}
	return out, nil
}

// TryHold atomically claims every listed slot for bookingID. All-or-nothing:
// if any slot is taken, nothing is written and the conflicting indexes are
// reported. Expired holds found under lock are cancelled in the same
// transaction before the decision.
func (ix *AvailabilityIndex) TryHold(tx *gorm.DB, venueID uint, date string, indexes []int, bookingID uint, price float64, deadline, now time.Time) error {
	var active []model.OccupancyRecord
	if err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("venue_id = ? AND date = ? AND slot_index IN ? AND status IN ?", venueID, date, indexes, activeStatuses).
		Find(&active).Error; err != nil {
		return err
	}

	conflicts := make([]int, 0)
	for _, rec := range active {
		if holdLapsed(rec, now) {
			if err := expireRecordTx(tx, rec); err != nil {
				return err
			}
			continue
		}
		conflicts = append(conflicts, rec.SlotIndex)
	}
	if len(conflicts) > 0 {
		sort.Ints(conflicts)
		return &SlotUnavailableError{VenueId: venueID, Date: date, Conflicts: conflicts}
	}

	for _, idx := range indexes {
		rec := model.OccupancyRecord{
			VenueId:   venueID,
			Date:      date,
			SlotIndex: idx,
			Status:    model.SlotHeld,
			Price:     price,
			BookingId: bookingID,
			ExpiresAt: &deadline,
		}
		if err := tx.Create(&rec).Error; err != nil {
			return err
		}
	}
	return nil
}

// Advance moves every record owned by bookingID from one status to the next.
// A drifted record count means the booking changed under the caller, who must
// re-query.
func (ix *AvailabilityIndex) Advance(tx *gorm.DB, bookingID uint, from, to model.SlotStatus) error {
	if !CanTransitionSlot(from, to) {
		return &StateMismatchError{Expected: model.BookingStatus(from), Actual: model.BookingStatus(to)}
	}

	var total, matching int64
	if err := tx.Model(&model.OccupancyRecord{}).
		Where("booking_id = ? AND status IN ?", bookingID, activeStatuses).
		Count(&total).Error; err != nil {
		return err
	}
	if err := tx.Model(&model.OccupancyRecord{}).
		Where("booking_id = ? AND status = ?", bookingID, from).
		Count(&matching).Error; err != nil {
		return err
	}
	if total == 0 || matching != total {
		return &StateMismatchError{Expected: model.BookingStatus(from)}
	}

	updates := map[string]any{"status": to}
	if to != model.SlotHeld && to != model.SlotAdvancePending {
		updates["expires_at"] = nil // paid and confirmed records never lapse
	}
	return tx.Model(&model.OccupancyRecord{}).
		Where("booking_id = ? AND status = ?", bookingID, from).
		Updates(updates).Error
}

// Release cancels every non-terminal record of bookingID, freeing the slots
// for rebooking while keeping the records as history.
func (ix *AvailabilityIndex) Release(tx *gorm.DB, bookingID uint) error {
	return tx.Model(&model.OccupancyRecord{}).
		Where("booking_id = ? AND status IN ?", bookingID, activeStatuses).
		Updates(map[string]any{"status": model.SlotCancelled, "expires_at": nil}).Error
}

func holdLapsed(rec model.OccupancyRecord, now time.Time) bool {
	if rec.Status != model.SlotHeld && rec.Status != model.SlotAdvancePending {
		return false
	}
	return rec.ExpiresAt != nil && rec.ExpiresAt.Before(now)
}

// expireRecordTx cancels a lapsed record and flips its owning booking to
// expired, inside the caller's transaction.
func expireRecordTx(tx *gorm.DB, rec model.OccupancyRecord) error {
	if err := tx.Model(&model.OccupancyRecord{}).
		Where("booking_id = ? AND status IN ?", rec.BookingId, activeStatuses).
		Updates(map[string]any{"status": model.SlotCancelled, "expires_at": nil}).Error; err != nil {
		return err
	}
	return tx.Model(&model.Booking{}).
		Where("id = ? AND status IN ?", rec.BookingId, []model.BookingStatus{model.BookingHeld, model.BookingAdvancePending}).
		Update("status", model.BookingExpired).Error
}
