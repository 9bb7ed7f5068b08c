package utils

import (
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"indoor_booking/config"

	"gopkg.in/gomail.v2"
)

// BookingConfirmationData feeds the confirmation email.
type BookingConfirmationData struct {
	BookingCode   string
	VenueName     string
	Date          string
	SlotTimes     []string
	TotalAmount   float64
	AdvanceAmount float64
}

// SendBookingConfirmationEmail sends the confirmation with a QR voucher
// attached (async, never delays the response).
func SendBookingConfirmationEmail(to string, data BookingConfirmationData) {
	go func() {
		host := config.Config("SMTP_HOST")
		if host == "" || to == "" {
			return
		}
		username := config.Config("SMTP_USERNAME")
		password := config.Config("SMTP_PASSWORD")
		from := config.Config("SMTP_FROM")
		port, _ := strconv.Atoi(config.Config("SMTP_PORT"))

		body := fmt.Sprintf(
			"<h2>Booking confirmed</h2>"+
				"<p>Code: <b>%s</b></p>"+
				"<p>Venue: %s</p>"+
				"<p>Date: %s</p>"+
				"<p>Time: %s</p>"+
				"<p>Total: PKR %.0f (advance paid: PKR %.0f)</p>"+
				"<p>Show the attached QR code at the venue.</p>",
			data.BookingCode, data.VenueName, data.Date,
			strings.Join(data.SlotTimes, ", "), data.TotalAmount, data.AdvanceAmount)

		m := gomail.NewMessage()
		m.SetHeader("From", from)
		m.SetHeader("To", to)
		m.SetHeader("Subject", "Booking confirmation #"+data.BookingCode)
		m.SetBody("text/html", body)

		if qr, err := GenerateVoucherQR(data.BookingCode, data.VenueName, data.Date, 256); err == nil {
			m.Attach("voucher.png", gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(qr)
				return err
			}))
		}

		d := gomail.NewDialer(host, port, username, password)
		if err := d.DialAndSend(m); err != nil {
			log.Printf("send confirmation email for %s: %v", data.BookingCode, err)
		}
	}()
}
