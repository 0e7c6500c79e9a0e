package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-reservation/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultCancelLeadTime is the minimum notice a customer must give to cancel.
const DefaultCancelLeadTime = 3 * time.Hour

// Live dashboard event names.
const (
	LiveBookingCreated = "booking_created"
	LiveBookingUpdated = "booking_updated"
	LiveBookingStatus  = "booking_status"
)

var bookingTransitions = map[models.BookingStatus][]models.BookingStatus{
	models.BookingPending:   {models.BookingConfirmed, models.BookingCancelled},
	models.BookingConfirmed: {models.BookingCompleted, models.BookingCancelled},
}

// CanTransition reports whether a booking may move from one status to another.
// CANCELLED and COMPLETED are terminal.
func CanTransition(from, to models.BookingStatus) bool {
	for _, s := range bookingTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// CheckCancellationLeadTime enforces the customer self-service cancellation window.
func CheckCancellationLeadTime(start, now time.Time, lead time.Duration) error {
	if start.Sub(now) < lead {
		return ErrLeadTimeTooShort
	}
	return nil
}

// Actor is the authenticated caller of a booking operation.
type Actor struct {
	UserID uint
	Role   string
}

func (a Actor) IsStaff() bool {
	return a.Role == models.RoleStaff || a.Role == models.RoleAdmin
}

// Broadcaster pushes live events to connected dashboards.
type Broadcaster interface {
	BroadcastEvent(event string, data interface{})
}

type noopBroadcaster struct{}

func (noopBroadcaster) BroadcastEvent(string, interface{}) {}

// BookingFilter narrows List. Zero values mean no filter.
type BookingFilter struct {
	UserID uint
	Status models.BookingStatus
	From   time.Time
	To     time.Time
}

type BookingService struct {
	db        *gorm.DB
	checker   *BookingAvailabilityChecker
	publisher EventPublisher
	hub       Broadcaster
	leadTime  time.Duration
	now       func() time.Time
	log       *logrus.Logger
}

type BookingServiceConfig struct {
	Publisher EventPublisher
	Hub       Broadcaster
	LeadTime  time.Duration
	Now       func() time.Time
	Log       *logrus.Logger
}

func NewBookingService(db *gorm.DB, checker *BookingAvailabilityChecker, cfg BookingServiceConfig) *BookingService {
	s := &BookingService{
		db:        db,
		checker:   checker,
		publisher: cfg.Publisher,
		hub:       cfg.Hub,
		leadTime:  cfg.LeadTime,
		now:       cfg.Now,
		log:       cfg.Log,
	}
	if s.publisher == nil {
		s.publisher = NoopPublisher{}
	}
	if s.hub == nil {
		s.hub = noopBroadcaster{}
	}
	if s.leadTime <= 0 {
		s.leadTime = DefaultCancelLeadTime
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	return s
}

func (s *BookingService) Checker() *BookingAvailabilityChecker {
	return s.checker
}

// Reserve creates a booking through the availability checker and announces it.
func (s *BookingService) Reserve(ctx context.Context, req ReserveRequest) (*models.Booking, error) {
	booking, err := s.checker.ValidateAndReserve(ctx, req)
	if err != nil {
		return nil, err
	}
	s.announce(ctx, EventBookingCreated, LiveBookingCreated, booking, "")
	return booking, nil
}

// Reschedule updates the window/table/party of a booking. Customers may only
// edit their own PENDING bookings.
func (s *BookingService) Reschedule(ctx context.Context, bookingID uint, req UpdateRequest, actor Actor) (*models.Booking, error) {
	current, err := s.Get(ctx, bookingID, actor)
	if err != nil {
		return nil, err
	}
	if !actor.IsStaff() && current.Status != models.BookingPending {
		return nil, ErrForbidden
	}
	// the status may change before the checker locks the row
	req.RequirePending = !actor.IsStaff()
	booking, err := s.checker.Reschedule(ctx, bookingID, req)
	if err != nil {
		return nil, err
	}
	s.announce(ctx, EventBookingUpdated, LiveBookingUpdated, booking, "")
	return booking, nil
}

// Get loads a booking visible to actor. Customers only see their own.
func (s *BookingService) Get(ctx context.Context, bookingID uint, actor Actor) (*models.Booking, error) {
	var booking models.Booking
	err := s.db.WithContext(ctx).Preload("Table").Where("id = ?", bookingID).First(&booking).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, storageErr("load booking", err)
	}
	if !actor.IsStaff() && booking.UserID != actor.UserID {
		// do not reveal other customers' bookings
		return nil, ErrBookingNotFound
	}
	return &booking, nil
}

func (s *BookingService) List(ctx context.Context, f BookingFilter) ([]models.Booking, error) {
	q := s.db.WithContext(ctx).Preload("Table")
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}
	if !f.From.IsZero() {
		q = q.Where("date_time >= ?", f.From.UTC())
	}
	if !f.To.IsZero() {
		q = q.Where("date_time < ?", f.To.UTC())
	}
	bookings := make([]models.Booking, 0)
	if err := q.Order("date_time ASC").Find(&bookings).Error; err != nil {
		return nil, storageErr("list bookings", err)
	}
	return bookings, nil
}

// ChangeStatus applies a status transition on behalf of actor. Staff may take
// any allowed transition; customers may only cancel their own booking, and
// only while the lead time has not been reached.
func (s *BookingService) ChangeStatus(ctx context.Context, bookingID uint, to models.BookingStatus, actor Actor) (*models.Booking, error) {
	if !to.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, to)
	}

	var booking models.Booking
	var prev models.BookingStatus
	err := runInTx(ctx, s.db, s.log, "change booking status", func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", bookingID).First(&booking).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBookingNotFound
		}
		if err != nil {
			return err
		}

		if !actor.IsStaff() {
			if booking.UserID != actor.UserID {
				return ErrBookingNotFound
			}
			if to != models.BookingCancelled {
				return ErrForbidden
			}
		}
		if !CanTransition(booking.Status, to) {
			return ErrInvalidTransition
		}
		if !actor.IsStaff() {
			if err := CheckCancellationLeadTime(booking.DateTime, s.now(), s.leadTime); err != nil {
				return err
			}
		}

		prev = booking.Status
		booking.Status = to
		if to == models.BookingCancelled {
			now := s.now().UTC()
			booking.CancelledAt = &now
		}
		if err := tx.Omit(clause.Associations).Save(&booking).Error; err != nil {
			return err
		}

		title := "Booking " + string(to)
		owner := booking.UserID
		return tx.Omit(clause.Associations).Create(&models.Notification{
			UserID:  &owner,
			Title:   &title,
			Message: fmt.Sprintf("Booking %s changed from %s to %s", booking.Reference, prev, to),
		}).Error
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"from":       prev,
		"to":         to,
		"actor":      actor.UserID,
	}).Info("booking status changed")
	s.announce(ctx, EventBookingStatusChanged, LiveBookingStatus, &booking, prev)
	return &booking, nil
}

func (s *BookingService) Cancel(ctx context.Context, bookingID uint, actor Actor) (*models.Booking, error) {
	return s.ChangeStatus(ctx, bookingID, models.BookingCancelled, actor)
}

func (s *BookingService) announce(ctx context.Context, routingKey, liveEvent string, b *models.Booking, prev models.BookingStatus) {
	ev := BookingEvent{
		BookingID:  b.ID,
		Reference:  b.Reference,
		UserID:     b.UserID,
		TableID:    b.TableID,
		Status:     string(b.Status),
		PrevStatus: string(prev),
		DateTime:   b.DateTime,
		Duration:   b.Duration,
		GuestCount: b.GuestCount,
		OccurredAt: s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, routingKey, ev); err != nil {
		s.log.WithError(err).WithField("booking_id", b.ID).Warn("failed to publish booking event")
	}
	s.hub.BroadcastEvent(liveEvent, b)
}
