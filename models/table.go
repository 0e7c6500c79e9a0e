package models

import (
	"time"

	"gorm.io/gorm"
)

// Table is a physical dining table. IsAvailable is the administrative flag
// (e.g. table out of service); time-based availability is derived from bookings.
// Tables are soft-deleted so past bookings keep their reference.
type Table struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	TableNumber int            `gorm:"index;not null" json:"table_number"`
	Capacity    int            `gorm:"not null" json:"capacity"`
	IsAvailable bool           `gorm:"not null;default:true" json:"is_available"`
	Location    string         `gorm:"type:varchar(100)" json:"location"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
