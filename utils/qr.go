package utils

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/skip2/go-qrcode"
)

// GenerateVoucherQR renders the booking voucher as a PNG QR code. Venue staff
// scan it at the door; the payload is the public code plus venue and date so
// a quick visual check works even without the lookup.
func GenerateVoucherQR(bookingCode, venueName, date string, size int) ([]byte, error) {
	payload := fmt.Sprintf("%s|%s|%s", bookingCode, venueName, date)
	qr, err := qrcode.New(payload, qrcode.High)
	if err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)
	if err := png.Encode(buf, qr.Image(size)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
