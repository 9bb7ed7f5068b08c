package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"indoor_booking/booking"
	"indoor_booking/config"
)

// WhatsAppNotifier posts booking notifications to the WhatsApp gateway.
// Best-effort: a failed send is logged and retried by the gateway side,
// it never fails the booking transaction.
type WhatsAppNotifier struct {
	apiURL string
	client *http.Client
}

func NewWhatsAppNotifier() *WhatsAppNotifier {
	return &WhatsAppNotifier{
		apiURL: config.Config("WHATSAPP_API_URL"),
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *WhatsAppNotifier) Notify(phone string, kind booking.TemplateKind, snap booking.Snapshot) error {
	if n.apiURL == "" || phone == "" {
		return nil
	}

	payload, err := json.Marshal(map[string]string{
		"to":      phone,
		"message": renderTemplate(kind, snap),
	})
	if err != nil {
		return err
	}

	resp, err := n.client.Post(n.apiURL+"/send", "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("whatsapp gateway returned %d", resp.StatusCode)
	}
	log.Printf("WhatsApp %s sent to %s for booking %s", kind, phone, snap.BookingCode)
	return nil
}

func renderTemplate(kind booking.TemplateKind, snap booking.Snapshot) string {
	times := strings.Join(snap.SlotTimes, ", ")
	switch kind {
	case booking.TemplateAdvanceReminder:
		return fmt.Sprintf("Your booking %s for %s on %s at %s requires an advance payment of PKR %.0f. Total: PKR %.0f.",
			snap.BookingCode, snap.VenueName, snap.Date, times, snap.AdvanceAmount, snap.TotalAmount)
	case booking.TemplateBookingConfirmed:
		return fmt.Sprintf("Your booking %s for %s on %s at %s has been confirmed. Thank you for your booking!",
			snap.BookingCode, snap.VenueName, snap.Date, times)
	case booking.TemplateBookingCancelled:
		return fmt.Sprintf("Your booking %s for %s on %s has been cancelled.",
			snap.BookingCode, snap.VenueName, snap.Date)
	default:
		return fmt.Sprintf("Update on booking %s for %s on %s.", snap.BookingCode, snap.VenueName, snap.Date)
	}
}
