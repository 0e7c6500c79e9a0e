package utils

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var ErrWhatsAppNumberMissing = errors.New("whatsapp number is not configured")

// WhatsAppReservation is a reservation request handed off to the restaurant
// over WhatsApp instead of the booking form.
type WhatsAppReservation struct {
	Name           string `json:"name" binding:"required"`
	Phone          string `json:"phone"`
	Date           string `json:"date" binding:"required"`
	Time           string `json:"time" binding:"required"`
	GuestCount     int    `json:"guestCount" binding:"required,min=1"`
	SpecialRequest string `json:"specialRequest"`
}

// NormalizePhone keeps only the digits of a phone number. A leading 0 is
// read as a local Indonesian number and rewritten to the 62 country code.
func NormalizePhone(number string) string {
	var b strings.Builder
	for _, r := range number {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if strings.HasPrefix(digits, "0") {
		digits = "62" + digits[1:]
	}
	return digits
}

func (r WhatsAppReservation) Message() string {
	var b strings.Builder
	b.WriteString("Hello, I would like to reserve a table.\n")
	fmt.Fprintf(&b, "Name: %s\n", r.Name)
	if r.Phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", r.Phone)
	}
	fmt.Fprintf(&b, "Date: %s\n", r.Date)
	fmt.Fprintf(&b, "Time: %s\n", r.Time)
	fmt.Fprintf(&b, "Guests: %d", r.GuestCount)
	if strings.TrimSpace(r.SpecialRequest) != "" {
		fmt.Fprintf(&b, "\nSpecial request: %s", strings.TrimSpace(r.SpecialRequest))
	}
	return b.String()
}

// BuildWhatsAppLink returns a wa.me deep link that opens a chat with the
// restaurant with the reservation message pre-filled.
func BuildWhatsAppLink(number string, r WhatsAppReservation) (string, error) {
	digits := NormalizePhone(number)
	if digits == "" {
		return "", ErrWhatsAppNumberMissing
	}
	return "https://wa.me/" + digits + "?text=" + url.QueryEscape(r.Message()), nil
}
