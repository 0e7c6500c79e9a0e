package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-reservation/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// maxDurationMinutes caps a single reservation at one day.
const maxDurationMinutes = 24 * 60

// BookingAvailabilityChecker owns the table-occupancy rules: every booking
// create, reschedule and availability listing goes through it so the
// overlap test is defined in exactly one place.
//
// Two windows [s1, s1+d1) and [s2, s2+d2) conflict when s1 < s2+d2 and
// s2 < s1+d1. Only PENDING and CONFIRMED bookings occupy a table.
type BookingAvailabilityChecker struct {
	db              *gorm.DB
	now             func() time.Time
	defaultDuration int
	log             *logrus.Logger
}

type CheckerOption func(*BookingAvailabilityChecker)

func WithClock(now func() time.Time) CheckerOption {
	return func(c *BookingAvailabilityChecker) { c.now = now }
}

func WithDefaultDuration(minutes int) CheckerOption {
	return func(c *BookingAvailabilityChecker) {
		if minutes > 0 {
			c.defaultDuration = minutes
		}
	}
}

func WithLogger(l *logrus.Logger) CheckerOption {
	return func(c *BookingAvailabilityChecker) {
		if l != nil {
			c.log = l
		}
	}
}

func NewBookingAvailabilityChecker(db *gorm.DB, opts ...CheckerOption) *BookingAvailabilityChecker {
	c := &BookingAvailabilityChecker{
		db:              db,
		now:             time.Now,
		defaultDuration: models.DefaultBookingDuration,
		log:             logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ReserveRequest is the input of ValidateAndReserve.
type ReserveRequest struct {
	UserID         uint
	TableID        uint
	StartTime      time.Time
	Duration       int // minutes, 0 means default
	GuestCount     int
	SpecialRequest *string
}

// UpdateRequest carries the optional fields of a booking reschedule.
type UpdateRequest struct {
	TableID        *uint
	StartTime      *time.Time
	Duration       *int
	GuestCount     *int
	SpecialRequest *string
	// RequirePending rejects the edit with ErrForbidden unless the locked
	// booking is still PENDING.
	RequirePending bool
}

func (c *BookingAvailabilityChecker) duration(minutes int) int {
	if minutes <= 0 {
		return c.defaultDuration
	}
	return minutes
}

func activeStatuses() []string {
	out := make([]string, 0, len(models.ActiveBookingStatuses))
	for _, s := range models.ActiveBookingStatuses {
		out = append(out, string(s))
	}
	return out
}

// overlapping selects active bookings whose window intersects [start, end).
func overlapping(tx *gorm.DB, start, end time.Time) *gorm.DB {
	return tx.Model(&models.Booking{}).
		Where("status IN ?", activeStatuses()).
		Where("date_time < ? AND end_time > ?", end.UTC(), start.UTC())
}

// HasConflict reports whether an active booking other than excludeBookingID
// overlaps the window on tableID. excludeBookingID 0 excludes nothing.
func (c *BookingAvailabilityChecker) HasConflict(ctx context.Context, tableID uint, start time.Time, durationMinutes int, excludeBookingID uint) (bool, error) {
	db := c.db.WithContext(ctx)
	if _, err := findTable(db, tableID, false); err != nil {
		return false, err
	}
	return c.hasConflict(db, tableID, start, c.duration(durationMinutes), excludeBookingID)
}

func (c *BookingAvailabilityChecker) hasConflict(tx *gorm.DB, tableID uint, start time.Time, durationMinutes int, excludeBookingID uint) (bool, error) {
	end := start.Add(time.Duration(durationMinutes) * time.Minute)
	q := overlapping(tx, start, end).Where("table_id = ?", tableID)
	if excludeBookingID != 0 {
		q = q.Where("id <> ?", excludeBookingID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, storageErr("check conflict", err)
	}
	return count > 0, nil
}

// FindAvailableTables lists tables that are administratively available, seat
// at least minCapacity guests (when > 0) and have no overlapping active
// booking. The smallest sufficient table comes first.
func (c *BookingAvailabilityChecker) FindAvailableTables(ctx context.Context, start time.Time, durationMinutes int, minCapacity int) ([]models.Table, error) {
	db := c.db.WithContext(ctx)
	end := start.Add(time.Duration(c.duration(durationMinutes)) * time.Minute)

	var occupied []uint
	if err := overlapping(db, start, end).Distinct("table_id").Pluck("table_id", &occupied).Error; err != nil {
		return nil, storageErr("list occupied tables", err)
	}

	q := db.Model(&models.Table{}).Where("is_available = ?", true)
	if minCapacity > 0 {
		q = q.Where("capacity >= ?", minCapacity)
	}
	if len(occupied) > 0 {
		q = q.Where("id NOT IN ?", occupied)
	}

	tables := make([]models.Table, 0)
	if err := q.Order("capacity ASC").Order("table_number ASC").Find(&tables).Error; err != nil {
		return nil, storageErr("list available tables", err)
	}
	return tables, nil
}

// ValidateAndReserve creates a PENDING booking after checking, in order, that
// the table exists, the slot is free and the table seats the party. The
// check and the insert share one transaction with the table row locked.
func (c *BookingAvailabilityChecker) ValidateAndReserve(ctx context.Context, req ReserveRequest) (*models.Booking, error) {
	dur := c.duration(req.Duration)
	if err := c.validateWindow(req.StartTime, dur, req.GuestCount); err != nil {
		return nil, err
	}
	if req.UserID == 0 {
		return nil, invalidBooking("user is required")
	}

	var booking models.Booking
	err := c.inTx(ctx, "reserve table", func(tx *gorm.DB) error {
		table, err := findTable(tx, req.TableID, true)
		if err != nil {
			return err
		}
		conflict, err := c.hasConflict(tx, table.ID, req.StartTime, dur, 0)
		if err != nil {
			return err
		}
		if conflict {
			return ErrSlotConflict
		}
		if table.Capacity < req.GuestCount {
			return ErrCapacityExceeded
		}

		booking = models.Booking{
			Reference:      uuid.NewString(),
			TableID:        table.ID,
			UserID:         req.UserID,
			DateTime:       req.StartTime.UTC(),
			Duration:       dur,
			GuestCount:     req.GuestCount,
			Status:         models.BookingPending,
			SpecialRequest: req.SpecialRequest,
		}
		if err := tx.Omit(clause.Associations).Create(&booking).Error; err != nil {
			return err
		}
		booking.Table = *table
		return nil
	})
	if err != nil {
		c.logFailure("reserve", err, logrus.Fields{"table_id": req.TableID, "user_id": req.UserID})
		return nil, err
	}

	c.log.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"table_id":   booking.TableID,
		"user_id":    booking.UserID,
	}).Info("booking reserved")
	return &booking, nil
}

// Reschedule applies the non-nil fields of req to an active booking and
// re-runs the reservation checks with the booking itself excluded.
func (c *BookingAvailabilityChecker) Reschedule(ctx context.Context, bookingID uint, req UpdateRequest) (*models.Booking, error) {
	var booking models.Booking
	err := c.inTx(ctx, "reschedule booking", func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", bookingID).First(&booking).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBookingNotFound
		}
		if err != nil {
			return err
		}
		if !booking.IsActive() {
			return ErrInvalidTransition
		}
		if req.RequirePending && booking.Status != models.BookingPending {
			return ErrForbidden
		}

		timeChanged := false
		if req.TableID != nil {
			booking.TableID = *req.TableID
		}
		if req.StartTime != nil {
			booking.DateTime = req.StartTime.UTC()
			timeChanged = true
		}
		if req.Duration != nil {
			booking.Duration = *req.Duration
		}
		if req.GuestCount != nil {
			booking.GuestCount = *req.GuestCount
		}
		if req.SpecialRequest != nil {
			booking.SpecialRequest = req.SpecialRequest
		}

		if booking.Duration <= 0 || booking.Duration > maxDurationMinutes {
			return invalidBooking("duration must be between 1 and 1440 minutes")
		}
		if booking.GuestCount <= 0 {
			return invalidBooking("guest count must be at least 1")
		}
		// an unchanged start may already be in the past for a seated party
		if timeChanged && !booking.DateTime.After(c.now()) {
			return invalidBooking("booking must start in the future")
		}

		table, err := findTable(tx, booking.TableID, true)
		if err != nil {
			return err
		}
		conflict, err := c.hasConflict(tx, table.ID, booking.DateTime, booking.Duration, booking.ID)
		if err != nil {
			return err
		}
		if conflict {
			return ErrSlotConflict
		}
		if table.Capacity < booking.GuestCount {
			return ErrCapacityExceeded
		}

		if err := tx.Omit(clause.Associations).Save(&booking).Error; err != nil {
			return err
		}
		booking.Table = *table
		return nil
	})
	if err != nil {
		c.logFailure("reschedule", err, logrus.Fields{"booking_id": bookingID})
		return nil, err
	}

	c.log.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"table_id":   booking.TableID,
	}).Info("booking rescheduled")
	return &booking, nil
}

func (c *BookingAvailabilityChecker) validateWindow(start time.Time, durationMinutes, guestCount int) error {
	if start.IsZero() {
		return invalidBooking("date and time are required")
	}
	if !start.After(c.now()) {
		return invalidBooking("booking must start in the future")
	}
	if durationMinutes <= 0 || durationMinutes > maxDurationMinutes {
		return invalidBooking("duration must be between 1 and 1440 minutes")
	}
	if guestCount <= 0 {
		return invalidBooking("guest count must be at least 1")
	}
	return nil
}

// inTx runs fn in a transaction, retrying once when the database reports a
// serialization or deadlock failure.
func (c *BookingAvailabilityChecker) inTx(ctx context.Context, op string, fn func(tx *gorm.DB) error) error {
	return runInTx(ctx, c.db, c.log, op, fn)
}

func runInTx(ctx context.Context, db *gorm.DB, log *logrus.Logger, op string, fn func(tx *gorm.DB) error) error {
	err := db.WithContext(ctx).Transaction(fn)
	if err != nil && KindOf(err) == 0 && IsSerializationFailure(err) {
		log.WithField("op", op).Warn("serialization conflict, retrying once")
		err = db.WithContext(ctx).Transaction(fn)
	}
	return storageErr(op, err)
}

func (c *BookingAvailabilityChecker) logFailure(op string, err error, fields logrus.Fields) {
	var se *StorageError
	if errors.As(err, &se) {
		c.log.WithFields(fields).WithError(err).Error(op + " failed")
		return
	}
	c.log.WithFields(fields).WithError(err).Debug(op + " rejected")
}

// findTable loads a table, optionally locking its row for the rest of the
// transaction so concurrent reservations on it serialize.
func findTable(tx *gorm.DB, tableID uint, lock bool) (*models.Table, error) {
	if tableID == 0 {
		return nil, ErrTableNotFound
	}
	q := tx
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var table models.Table
	err := q.Where("id = ?", tableID).First(&table).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTableNotFound
	}
	if err != nil {
		return nil, storageErr("load table", err)
	}
	return &table, nil
}
