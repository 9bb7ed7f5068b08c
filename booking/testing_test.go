package booking

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"indoor_booking/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testClock is a controllable time source, injected through Config.Clock.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock(start time.Time) *testClock {
	return &testClock{t: start}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

// recordingNotifier captures notifications for assertions.
type recordingNotifier struct {
	mu    sync.Mutex
	sends []struct {
		Phone string
		Kind  TemplateKind
		Snap  Snapshot
	}
}

func (n *recordingNotifier) Notify(phone string, kind TemplateKind, snap Snapshot) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sends = append(n.sends, struct {
		Phone string
		Kind  TemplateKind
		Snap  Snapshot
	}{phone, kind, snap})
	return nil
}

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "booking.db") + "?_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&model.Customer{},
		&model.Venue{},
		&model.VenueMedia{},
		&model.Booking{},
		&model.OccupancyRecord{},
		&model.Discount{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedVenue(t *testing.T, db *gorm.DB, name string, price float64) model.Venue {
	t.Helper()
	v := model.Venue{Name: name, Category: "Basketball", PricePerHour: price, IsActive: true}
	if err := db.Create(&v).Error; err != nil {
		t.Fatalf("seed venue: %v", err)
	}
	return v
}

// defaultStart is a fixed reference instant so the calendar dates used in
// tests stay inside the booking horizon.
var defaultStart = time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)

func testCoordinator(t *testing.T, db *gorm.DB, clock *testClock) *Coordinator {
	t.Helper()
	grid := NewGrid(8, 20, 30, time.UTC)
	cfg := Config{HoldTimeout: 15 * time.Minute, AdvanceFraction: 0.20, Clock: clock.Now}
	return NewCoordinator(db, grid, cfg, nil)
}
