package booking

import (
	"errors"
	"testing"
	"time"

	"indoor_booking/model"
)

func TestComputeTotal(t *testing.T) {
	slots := []model.OccupancyRecord{{Price: 500}, {Price: 500}, {Price: 600}}
	if got := ComputeTotal(slots); got != 1600 {
		t.Errorf("ComputeTotal = %v, want 1600", got)
	}
	if got := ComputeTotal(nil); got != 0 {
		t.Errorf("ComputeTotal(nil) = %v, want 0", got)
	}
}

func TestComputeAdvance(t *testing.T) {
	cases := []struct {
		total, fraction, want float64
	}{
		{500, 0.20, 100},
		{1000, 0.20, 200},
		{450, 0.20, 90},
		{333, 0.20, 67},   // 66.6 rounds to nearest whole PKR
		{999, 0, 200},     // zero fraction falls back to 20%
		{1247, 0.20, 249}, // 249.4
	}
	for _, tc := range cases {
		if got := ComputeAdvance(tc.total, tc.fraction); got != tc.want {
			t.Errorf("ComputeAdvance(%v, %v) = %v, want %v", tc.total, tc.fraction, got, tc.want)
		}
	}
}

func TestApplyDiscount(t *testing.T) {
	summer := model.Discount{
		Code:       "SUMMER2024",
		Percentage: 10,
		ValidFrom:  time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		ValidUntil: time.Date(2024, 8, 31, 23, 59, 59, 0, time.UTC),
		IsActive:   true,
	}

	t.Run("within window", func(t *testing.T) {
		got, err := ApplyDiscount(1000, summer, time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC))
		if err != nil {
			t.Fatalf("ApplyDiscount: %v", err)
		}
		if got != 900 {
			t.Errorf("got %v, want 900", got)
		}
	})

	t.Run("after window", func(t *testing.T) {
		_, err := ApplyDiscount(1000, summer, time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC))
		if !errors.Is(err, ErrDiscountExpired) {
			t.Errorf("err = %v, want ErrDiscountExpired", err)
		}
	})

	t.Run("before window", func(t *testing.T) {
		_, err := ApplyDiscount(1000, summer, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
		if !errors.Is(err, ErrDiscountExpired) {
			t.Errorf("err = %v, want ErrDiscountExpired", err)
		}
	})

	t.Run("inactive", func(t *testing.T) {
		inactive := summer
		inactive.IsActive = false
		_, err := ApplyDiscount(1000, inactive, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC))
		if !errors.Is(err, ErrDiscountInactive) {
			t.Errorf("err = %v, want ErrDiscountInactive", err)
		}
	})

	t.Run("floors at zero", func(t *testing.T) {
		full := summer
		full.Percentage = 100
		got, err := ApplyDiscount(1000, full, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC))
		if err != nil {
			t.Fatalf("ApplyDiscount: %v", err)
		}
		if got != 0 {
			t.Errorf("got %v, want 0", got)
		}
	})
}
