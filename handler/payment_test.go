package handler

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"indoor_booking/booking"
	"indoor_booking/database"
	"indoor_booking/model"
	"indoor_booking/validate"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func paymentTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "handler.db") + "?_busy_timeout=5000"
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
		&model.Payment{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// A callback can arrive after the hold lapsed. The payment stays PAID (the
// money was captured) and the log ties the payment code to the refused
// booking so support can refund it.
func TestGatewayCallbackOnLapsedBooking(t *testing.T) {
	db := paymentTestDB(t)
	database.DB = db

	venue := model.Venue{Name: "Basketball Court 1", Category: "Basketball", PricePerHour: 500, IsActive: true}
	if err := db.Create(&venue).Error; err != nil {
		t.Fatalf("seed venue: %v", err)
	}

	current := time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)
	co := booking.NewCoordinator(db, booking.NewGrid(8, 20, 30, time.UTC), booking.Config{
		HoldTimeout:     15 * time.Minute,
		AdvanceFraction: 0.20,
		Clock:           func() time.Time { return current },
	}, nil)
	Setup(co)

	bk, err := co.CreateBooking(nil, model.CreateBookingInput{
		VenueId: venue.ID, Date: "2024-06-01", SlotIndexes: []int{2},
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if _, err := co.SubmitContact(bk.PublicCode, "+923001234567"); err != nil {
		t.Fatalf("SubmitContact: %v", err)
	}

	payment := model.Payment{
		PaymentCode: "PAY-LAPSED01",
		BookingId:   bk.ID,
		Amount:      bk.AdvanceAmount,
		Method:      "JAZZCASH",
		Status:      model.PaymentPending,
	}
	if err := db.Create(&payment).Error; err != nil {
		t.Fatalf("seed payment: %v", err)
	}

	// The customer pays, then the callback arrives after the deadline.
	current = current.Add(16 * time.Minute)

	var logs bytes.Buffer
	log.SetOutput(&logs)
	defer log.SetOutput(os.Stderr)

	app := fiber.New()
	app.Post("/payment/callback", validate.GatewayCallback(), GatewayCallback)

	body, _ := json.Marshal(model.GatewayCallbackInput{PaymentCode: payment.PaymentCode, Success: true})
	req := httptest.NewRequest("POST", "/payment/callback", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusConflict {
		t.Errorf("status = %d, want %d", resp.StatusCode, fiber.StatusConflict)
	}

	var stored model.Payment
	if err := db.Where("payment_code = ?", payment.PaymentCode).First(&stored).Error; err != nil {
		t.Fatalf("reload payment: %v", err)
	}
	if stored.Status != model.PaymentPaid {
		t.Errorf("payment status = %s, want %s", stored.Status, model.PaymentPaid)
	}

	if !strings.Contains(logs.String(), payment.PaymentCode) || !strings.Contains(logs.String(), bk.PublicCode) {
		t.Errorf("log %q does not tie payment %s to booking %s", logs.String(), payment.PaymentCode, bk.PublicCode)
	}
}
