package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log"
	"net/url"
	"os"
	"strconv"
	"time"

	"indoor_booking/constants"
	"indoor_booking/database"
	"indoor_booking/model"
	"indoor_booking/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Gateway holds the redirect config of one mobile-wallet provider
// (JazzCash or EasyPaisa). Both share the same redirect-and-callback shape.
type Gateway struct {
	Name       string
	BaseURL    string
	MerchantID string
	HashSecret string
	ReturnURL  string
}

func NewJazzCash() *Gateway {
	return &Gateway{
		Name:       "JAZZCASH",
		BaseURL:    os.Getenv("JAZZCASH_URL"),
		MerchantID: os.Getenv("JAZZCASH_MERCHANT_ID"),
		HashSecret: os.Getenv("JAZZCASH_HASH_SECRET"),
		ReturnURL:  os.Getenv("APP_URL") + "/payment/callback",
	}
}

func NewEasyPaisa() *Gateway {
	return &Gateway{
		Name:       "EASYPAISA",
		BaseURL:    os.Getenv("EASYPAISA_URL"),
		MerchantID: os.Getenv("EASYPAISA_MERCHANT_ID"),
		HashSecret: os.Getenv("EASYPAISA_HASH_SECRET"),
		ReturnURL:  os.Getenv("APP_URL") + "/payment/callback",
	}
}

// BuildPaymentUrl builds the hosted-checkout redirect URL for an advance
// payment. Amounts are whole PKR.
func (g *Gateway) BuildPaymentUrl(paymentCode string, amount float64) string {
	params := url.Values{}
	params.Add("merchant_id", g.MerchantID)
	params.Add("txn_ref", paymentCode)
	params.Add("amount", strconv.FormatInt(int64(amount), 10))
	params.Add("currency", "PKR")
	params.Add("created_at", time.Now().Format("20060102150405"))
	params.Add("return_url", g.ReturnURL)

	query := params.Encode()
	return g.BaseURL + "?" + query + "&secure_hash=" + g.generateHash(query)
}

func (g *Gateway) generateHash(data string) string {
	h := hmac.New(sha256.New, []byte(g.HashSecret))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}

// InitPayment creates a pending payment row for a booking's advance amount
// and returns the gateway redirect URL.
func InitPayment(c *fiber.Ctx) error {
	input := c.Locals("input").(model.CreatePaymentInput)

	bk, err := coordinator.GetBooking(input.BookingCode)
	if err != nil {
		return bookingError(c, err)
	}

	if bk.Status != model.BookingHeld && bk.Status != model.BookingAdvancePending {
		return utils.ErrorResponse(c, fiber.StatusConflict, "Booking is not awaiting an advance payment", errors.New("wrong booking status"))
	}

	payment := model.Payment{
		PaymentCode: "PAY-" + uuid.New().String()[:8],
		BookingId:   bk.ID,
		Amount:      bk.AdvanceAmount,
		Method:      input.Method,
		Status:      model.PaymentPending,
	}
	if err := database.DB.Create(&payment).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.INTERNAL_ERROR, err)
	}

	var gateway *Gateway
	if input.Method == "JAZZCASH" {
		gateway = NewJazzCash()
	} else {
		gateway = NewEasyPaisa()
	}

	return utils.SuccessResponse(c, fiber.StatusCreated, fiber.Map{
		"paymentCode": payment.PaymentCode,
		"amount":      payment.Amount,
		"paymentUrl":  gateway.BuildPaymentUrl(payment.PaymentCode, payment.Amount),
	})
}

// GatewayCallback is what the wallet provider posts after the customer pays.
// Idempotent on paymentCode, replays return the current state.
func GatewayCallback(c *fiber.Ctx) error {
	input := c.Locals("input").(model.GatewayCallbackInput)

	var payment model.Payment
	if err := database.DB.Where("payment_code = ?", input.PaymentCode).
		Preload("Booking").First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, constants.NOT_FOUND, err)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.INTERNAL_ERROR, err)
	}

	if !input.Success {
		if payment.Status == model.PaymentPending {
			database.DB.Model(&payment).Update("status", model.PaymentFailed)
		}
		return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{
			"paymentCode": payment.PaymentCode,
			"status":      model.PaymentFailed,
		})
	}

	if payment.Status != model.PaymentPaid {
		now := time.Now()
		if err := database.DB.Model(&payment).Updates(map[string]any{
			"status":  model.PaymentPaid,
			"paid_at": now,
		}).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.INTERNAL_ERROR, err)
		}
	}

	// The coordinator call is idempotent too, a replayed callback on an
	// already-paid booking just returns it unchanged.
	bk, err := coordinator.OnAdvancePaymentReceived(payment.Booking.PublicCode)
	if err != nil {
		// Money was captured but the booking refused it (usually the hold
		// lapsed between payment and callback). Keep the paper trail so
		// support can refund against the payment code.
		log.Printf("payment %s captured but booking %s refused the advance: %v",
			payment.PaymentCode, payment.Booking.PublicCode, err)
		return bookingError(c, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{
		"paymentCode": payment.PaymentCode,
		"status":      model.PaymentPaid,
		"booking":     bk,
	})
}
