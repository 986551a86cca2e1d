package utils

import (
	"fmt"

	"github.com/skip2/go-qrcode"
)

const (
	DefaultQRSize = 256
	MaxQRSize     = 1024
)

var ErrQRSize = fmt.Errorf("qr size must be at most %d pixels", MaxQRSize)

// ReservationQRContent is the payload scanned at the front desk on check-in.
func ReservationQRContent(code string, sessionID uint) string {
	return fmt.Sprintf("GYM-RESERVATION:%s:%d", code, sessionID)
}

// GenerateQRCode renders content as a PNG of size pixels. Sizes above
// MaxQRSize are refused.
func GenerateQRCode(content string, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultQRSize
	}
	if size > MaxQRSize {
		return nil, ErrQRSize
	}
	return qrcode.Encode(content, qrcode.Medium, size)
}
