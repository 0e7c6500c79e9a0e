package services

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-reservation/models"
	"gorm.io/gorm"
)

// BookingSweeper periodically cancels PENDING bookings whose window has
// already ended without anyone confirming them, so they stop counting as
// active in reports.
type BookingSweeper struct {
	DB       *gorm.DB
	Interval time.Duration
	StopChan chan struct{}
	Now      func() time.Time
	Log      *logrus.Logger
	// Hub, when set, is told about every swept booking.
	Hub Broadcaster

	stopOnce sync.Once
}

func NewBookingSweeper(db *gorm.DB, interval time.Duration, log *logrus.Logger) *BookingSweeper {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &BookingSweeper{
		DB:       db,
		Interval: interval,
		StopChan: make(chan struct{}),
		Now:      time.Now,
		Log:      log,
	}
}

func (s *BookingSweeper) Start() {
	go func() {
		ticker := time.NewTicker(s.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if _, err := s.SweepOnce(context.Background()); err != nil {
					s.Log.WithError(err).Error("booking sweep failed")
				}
			case <-s.StopChan:
				return
			}
		}
	}()
	s.Log.Printf("Booking sweeper started (interval=%s)", s.Interval)
}

// Stop ends the loop. Calling it more than once is harmless.
func (s *BookingSweeper) Stop() {
	s.stopOnce.Do(func() { close(s.StopChan) })
}

// SweepOnce cancels stale pending bookings and returns how many were swept.
func (s *BookingSweeper) SweepOnce(ctx context.Context) (int, error) {
	now := s.Now().UTC()

	var stale []models.Booking
	if err := s.DB.WithContext(ctx).
		Where("status = ? AND end_time <= ?", string(models.BookingPending), now).
		Limit(100).
		Find(&stale).Error; err != nil {
		return 0, storageErr("find stale bookings", err)
	}

	swept := 0
	for i := range stale {
		b := &stale[i]
		// staff may have confirmed the booking since it was read
		res := s.DB.WithContext(ctx).Model(&models.Booking{}).
			Where("id = ? AND status = ?", b.ID, string(models.BookingPending)).
			UpdateColumns(map[string]interface{}{
				"status":       string(models.BookingCancelled),
				"cancelled_at": now,
				"updated_at":   now,
			})
		if res.Error != nil {
			s.Log.WithError(res.Error).WithField("booking_id", b.ID).Error("failed to cancel stale booking")
			continue
		}
		if res.RowsAffected != 1 {
			s.Log.WithField("booking_id", b.ID).Debug("booking changed before sweep, skipped")
			continue
		}
		b.Status = models.BookingCancelled
		b.CancelledAt = &now
		s.Log.WithField("booking_id", b.ID).Info("stale pending booking cancelled")
		if s.Hub != nil {
			s.Hub.BroadcastEvent(LiveBookingStatus, b)
		}
		swept++
	}
	return swept, nil
}
