package services

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-reservation/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TableChange carries the optional fields of a table edit.
type TableChange struct {
	TableNumber *int
	Capacity    *int
	IsAvailable *bool
	Location    *string
}

// upcoming selects active bookings on tableID that have not ended yet.
func (c *BookingAvailabilityChecker) upcoming(tx *gorm.DB, tableID uint) *gorm.DB {
	return tx.Model(&models.Booking{}).
		Where("table_id = ? AND status IN ? AND end_time > ?", tableID, activeStatuses(), c.now().UTC())
}

// UpdateTable applies change to a table. The row is locked like a
// reservation locks it, so a capacity cut cannot race a new booking.
func (c *BookingAvailabilityChecker) UpdateTable(ctx context.Context, tableID uint, change TableChange) (*models.Table, error) {
	var table *models.Table
	err := c.inTx(ctx, "update table", func(tx *gorm.DB) error {
		var err error
		table, err = findTable(tx, tableID, true)
		if err != nil {
			return err
		}

		if change.TableNumber != nil && *change.TableNumber != table.TableNumber {
			var taken int64
			if err := tx.Model(&models.Table{}).
				Where("table_number = ? AND id <> ?", *change.TableNumber, table.ID).
				Count(&taken).Error; err != nil {
				return err
			}
			if taken > 0 {
				return ErrTableNumberTaken
			}
			table.TableNumber = *change.TableNumber
		}
		if change.Capacity != nil && *change.Capacity < table.Capacity {
			var larger int64
			if err := c.upcoming(tx, table.ID).
				Where("guest_count > ?", *change.Capacity).
				Count(&larger).Error; err != nil {
				return err
			}
			if larger > 0 {
				return ErrCapacityInUse
			}
		}
		if change.Capacity != nil {
			table.Capacity = *change.Capacity
		}
		if change.IsAvailable != nil {
			table.IsAvailable = *change.IsAvailable
		}
		if change.Location != nil {
			table.Location = *change.Location
		}
		return tx.Omit(clause.Associations).Save(table).Error
	})
	if err != nil {
		c.logFailure("update table", err, logrus.Fields{"table_id": tableID})
		return nil, err
	}
	return table, nil
}

// RetireTable soft-deletes a table that no upcoming active booking uses.
// The table row lock serializes it with ValidateAndReserve.
func (c *BookingAvailabilityChecker) RetireTable(ctx context.Context, tableID uint) (*models.Table, error) {
	var table *models.Table
	err := c.inTx(ctx, "delete table", func(tx *gorm.DB) error {
		var err error
		table, err = findTable(tx, tableID, true)
		if err != nil {
			return err
		}
		var active int64
		if err := c.upcoming(tx, table.ID).Count(&active).Error; err != nil {
			return err
		}
		if active > 0 {
			return ErrTableInUse
		}
		return tx.Delete(table).Error
	})
	if err != nil {
		c.logFailure("delete table", err, logrus.Fields{"table_id": tableID})
		return nil, err
	}
	c.log.WithField("table_id", table.ID).Info("table deleted")
	return table, nil
}
