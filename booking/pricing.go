package booking

import (
	"math"
	"time"

	"indoor_booking/model"
)

// DefaultAdvanceFraction is the share of the total due upfront (20%).
const DefaultAdvanceFraction = 0.20

// ComputeTotal sums the per-slot prices captured at hold time. Later venue
// price changes never retroactively alter an in-flight booking.
func ComputeTotal(slots []model.OccupancyRecord) float64 {
	total := 0.0
	for _, s := range slots {
		total += s.Price
	}
	return total
}

// ComputeAdvance rounds the advance to the nearest whole currency unit (PKR).
func ComputeAdvance(total, fraction float64) float64 {
	if fraction <= 0 {
		fraction = DefaultAdvanceFraction
	}
	return math.Round(total * fraction)
}

// ApplyDiscount reduces total by the discount percentage, floored at zero.
func ApplyDiscount(total float64, d model.Discount, now time.Time) (float64, error) {
	if !d.IsActive {
		return 0, ErrDiscountInactive
	}
	if now.Before(d.ValidFrom) || now.After(d.ValidUntil) {
		return 0, ErrDiscountExpired
	}
	discounted := total * (1 - d.Percentage/100)
	if discounted < 0 {
		discounted = 0
	}
	return math.Round(discounted), nil
}
