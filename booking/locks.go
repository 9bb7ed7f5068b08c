package booking

import (
	"fmt"
	"sync"
)

// dayLocks serializes mutations per (venue, date). The occupancy records of
// one venue-day form a single lockable resource: holds racing for overlapping
// slots are decided in lock-acquisition order, and a hold for a never-booked
// slot cannot race another because row locks alone cannot guard rows that do
// not exist yet.
type dayLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newDayLocks() *dayLocks {
	return &dayLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the venue-day lock and returns its unlock func. The key space
// is bounded by the booking horizon, entries are not evicted.
func (d *dayLocks) Lock(venueID uint, date string) func() {
	key := fmt.Sprintf("%d|%s", venueID, date)
	d.mu.Lock()
	m, ok := d.locks[key]
	if !ok {
		m = &sync.Mutex{}
		d.locks[key] = m
	}
	d.mu.Unlock()

	m.Lock()
	return m.Unlock
}
