package booking

import (
	"fmt"
	"time"
)

const DateFormat = "2006-01-02"

// Slot is one fixed hourly bookable interval. Slots are derived from the
// venue's operating hours, never stored on their own.
type Slot struct {
	Index int       `json:"index"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Grid produces the ordered slot sequence for a calendar date and guards the
// booking horizon. Pure and deterministic.
type Grid struct {
	OpenHour    int // first bookable hour, default 8 (08:00)
	CloseHour   int // end of last slot, default 20 (20:00)
	HorizonDays int // furthest bookable date, in days from today
	Location    *time.Location
}

func NewGrid(openHour, closeHour, horizonDays int, loc *time.Location) Grid {
	if loc == nil {
		loc = time.Local
	}
	return Grid{OpenHour: openHour, CloseHour: closeHour, HorizonDays: horizonDays, Location: loc}
}

func (g Grid) SlotsPerDay() int {
	return g.CloseHour - g.OpenHour
}

// SlotsFor returns every slot descriptor for the date, index 0 starting at
// OpenHour. The date itself is not horizon-checked here, use ValidateDate.
func (g Grid) SlotsFor(date string) ([]Slot, error) {
	day, err := time.ParseInLocation(DateFormat, date, g.Location)
	if err != nil {
		return nil, &InvalidDateError{Date: date, Reason: "want YYYY-MM-DD"}
	}
	slots := make([]Slot, 0, g.SlotsPerDay())
	for i := 0; i < g.SlotsPerDay(); i++ {
		start := day.Add(time.Duration(g.OpenHour+i) * time.Hour)
		slots = append(slots, Slot{Index: i, Start: start, End: start.Add(time.Hour)})
	}
	return slots, nil
}

// SlotTimes formats a slot index as wall-clock strings, e.g. "08:00", "09:00".
func (g Grid) SlotTimes(index int) (string, string) {
	return fmt.Sprintf("%02d:00", g.OpenHour+index), fmt.Sprintf("%02d:00", g.OpenHour+index+1)
}

// ValidateDate rejects malformed dates, dates in the past and dates beyond
// the booking horizon.
func (g Grid) ValidateDate(date string, now time.Time) error {
	day, err := time.ParseInLocation(DateFormat, date, g.Location)
	if err != nil {
		return &InvalidDateError{Date: date, Reason: "want YYYY-MM-DD"}
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, g.Location)
	if day.Before(today) {
		return &InvalidDateError{Date: date, Reason: "date is in the past"}
	}
	if day.After(today.AddDate(0, 0, g.HorizonDays)) {
		return &InvalidDateError{Date: date, Reason: fmt.Sprintf("date is beyond the %d-day booking horizon", g.HorizonDays)}
	}
	return nil
}

// ValidateIndexes rejects any slot index outside the grid.
func (g Grid) ValidateIndexes(indexes []int) error {
	max := g.SlotsPerDay() - 1
	for _, idx := range indexes {
		if idx < 0 || idx > max {
			return &InvalidSlotIndexError{Index: idx, Max: max}
		}
	}
	return nil
}
