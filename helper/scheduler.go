package helper

import (
	"log"
	"time"

	"indoor_booking/booking"
	"indoor_booking/database"
	"indoor_booking/model"

	"github.com/go-co-op/gocron/v2"
	"github.com/robfig/cron/v3"
)

var expiryScheduler *cron.Cron
var discountScheduler gocron.Scheduler

// StartExpiryScheduler sweeps lapsed holds every minute so slots a
// visitor never paid for go back on sale without waiting for the next
// availability read to notice them.
func StartExpiryScheduler(coordinator *booking.Coordinator) {
	expiryScheduler = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
	))

	_, err := expiryScheduler.AddFunc("* * * * *", func() {
		expired, err := coordinator.ExpireBookings()
		if err != nil {
			log.Printf("expiry sweep error: %v", err)
			return
		}
		if expired > 0 {
			log.Printf("expiry sweep released %d lapsed booking(s)", expired)
		}
	})
	if err != nil {
		log.Printf("failed to start expiry scheduler: %v", err)
		return
	}

	expiryScheduler.Start()
	log.Println("booking expiry scheduler started (every minute)")
}

func StopExpiryScheduler() {
	if expiryScheduler != nil {
		expiryScheduler.Stop()
		log.Println("booking expiry scheduler stopped")
	}
}

func DeactivateExpiredDiscounts() {
	loc := time.FixedZone("PKT", 5*3600)
	now := time.Now().In(loc)

	result := database.DB.Model(&model.Discount{}).
		Where("is_active = ? AND valid_until < ?", true, now).
		Update("is_active", false)

	if result.Error != nil {
		log.Printf("discount deactivation error: %v", result.Error)
		return
	}
	if result.RowsAffected > 0 {
		log.Printf("deactivated %d expired discount(s)", result.RowsAffected)
	}
}

func StartDiscountScheduler() {
	s, err := gocron.NewScheduler(
		gocron.WithLocation(time.FixedZone("PKT", 5*3600)),
	)
	if err != nil {
		log.Fatal(err)
	}

	discountScheduler = s

	_, err = s.NewJob(
		gocron.DailyJob(
			1,
			gocron.NewAtTimes(
				gocron.NewAtTime(0, 5, 0),
			),
		),
		gocron.NewTask(DeactivateExpiredDiscounts),
	)
	if err != nil {
		log.Fatal(err)
	}

	s.Start()
	log.Println("discount scheduler started (00:05 PKT)")
}
