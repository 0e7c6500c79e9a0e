package models

import (
	"time"

	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
	BookingCompleted BookingStatus = "COMPLETED"
)

// DefaultBookingDuration is the reservation length in minutes when none is given.
const DefaultBookingDuration = 120

// ActiveBookingStatuses are the statuses that occupy a table.
var ActiveBookingStatuses = []BookingStatus{BookingPending, BookingConfirmed}

func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled, BookingCompleted:
		return true
	}
	return false
}

func (s BookingStatus) IsActive() bool {
	return s == BookingPending || s == BookingConfirmed
}

type Booking struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Reference string `gorm:"type:varchar(36);uniqueIndex;not null" json:"reference"`
	TableID   uint   `gorm:"not null;index:idx_booking_table_window" json:"table_id"`
	Table     Table  `gorm:"foreignKey:TableID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"table"`
	UserID    uint   `gorm:"not null;index" json:"user_id"`
	User      User   `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	// DateTime and EndTime are stored in UTC. EndTime is derived from
	// DateTime+Duration so the overlap query is a plain column comparison.
	DateTime       time.Time     `gorm:"not null;index:idx_booking_table_window" json:"date_time"`
	Duration       int           `gorm:"not null;default:120" json:"duration"`
	EndTime        time.Time     `gorm:"not null;index:idx_booking_table_window" json:"end_time"`
	GuestCount     int           `gorm:"not null" json:"guest_count"`
	Status         BookingStatus `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	SpecialRequest *string       `gorm:"type:text" json:"special_request,omitempty"`
	CancelledAt    *time.Time    `json:"cancelled_at,omitempty"`
	CreatedAt      time.Time     `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time     `gorm:"not null" json:"updated_at"`
}

// BeforeSave normalises the window before every insert/update.
func (b *Booking) BeforeSave(tx *gorm.DB) error {
	if b.Duration <= 0 {
		b.Duration = DefaultBookingDuration
	}
	b.DateTime = b.DateTime.UTC()
	b.EndTime = b.DateTime.Add(time.Duration(b.Duration) * time.Minute)
	return nil
}

// End returns the exclusive end of the reservation window.
func (b *Booking) End() time.Time {
	return b.DateTime.Add(time.Duration(b.Duration) * time.Minute)
}

// Overlaps reports whether [DateTime, End) and [start, end) share an instant.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.DateTime.Before(end) && start.Before(b.End())
}

func (b *Booking) IsActive() bool {
	return b.Status.IsActive()
}
