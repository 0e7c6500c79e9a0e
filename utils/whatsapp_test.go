package utils

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "6281234567890", NormalizePhone("081234567890"))
	assert.Equal(t, "6281234567890", NormalizePhone("+62 812-3456-7890"))
	assert.Equal(t, "15551234", NormalizePhone("(1) 555 1234"))
	assert.Empty(t, NormalizePhone("n/a"))
}

func TestWhatsAppReservation_Message(t *testing.T) {
	r := WhatsAppReservation{
		Name:       "Rina",
		Phone:      "0812",
		Date:       "2024-01-01",
		Time:       "19:00",
		GuestCount: 4,
	}
	assert.Equal(t, "Hello, I would like to reserve a table.\nName: Rina\nPhone: 0812\nDate: 2024-01-01\nTime: 19:00\nGuests: 4", r.Message())

	r.SpecialRequest = "  birthday cake  "
	assert.True(t, strings.HasSuffix(r.Message(), "\nSpecial request: birthday cake"))
}

func TestBuildWhatsAppLink(t *testing.T) {
	r := WhatsAppReservation{Name: "Budi", Date: "2024-01-01", Time: "19:00", GuestCount: 2}

	link, err := BuildWhatsAppLink("0812-000-111", r)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(link, "https://wa.me/62812000111?text="))

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, r.Message(), u.Query().Get("text"))

	_, err = BuildWhatsAppLink("", r)
	assert.ErrorIs(t, err, ErrWhatsAppNumberMissing)
}
