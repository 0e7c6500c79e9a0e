package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, StatusPresentation{Label: "Confirmed", Color: "green"}, StatusLabel(StatusKindBooking, "CONFIRMED"))
	assert.Equal(t, StatusPresentation{Label: "Preparing", Color: "orange"}, StatusLabel(StatusKindOrder, "PREPARING"))
	assert.Equal(t, "Unknown", StatusLabel(StatusKindBooking, "PREPARING").Label)
	assert.Equal(t, "gray", StatusLabel("invoice", "PAID").Color)
}

func TestStatusLabels_ReturnsCopy(t *testing.T) {
	labels := StatusLabels()
	assert.Len(t, labels[StatusKindBooking], 4)
	assert.Len(t, labels[StatusKindOrder], 4)

	labels[StatusKindBooking]["PENDING"] = StatusPresentation{Label: "changed"}
	assert.Equal(t, "Pending", StatusLabel(StatusKindBooking, "PENDING").Label)
}
