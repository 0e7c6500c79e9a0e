package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-reservation/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var orderTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderPending:   {models.OrderPreparing, models.OrderCancelled},
	models.OrderPreparing: {models.OrderCompleted, models.OrderCancelled},
}

func CanTransitionOrder(from, to models.OrderStatus) bool {
	for _, s := range orderTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type OrderItemInput struct {
	MenuID   uint
	Quantity int
	Notes    string
}

type OrderService struct {
	db  *gorm.DB
	log *logrus.Logger
}

func NewOrderService(db *gorm.DB, log *logrus.Logger) *OrderService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &OrderService{db: db, log: log}
}

// CreateOrder places an order on a confirmed booking. Item prices are
// snapshotted from the menu at order time.
func (s *OrderService) CreateOrder(ctx context.Context, bookingID uint, items []OrderItemInput, notes string, actor Actor) (*models.Order, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: at least one item is required", ErrInvalidOrder)
	}

	var order models.Order
	err := runInTx(ctx, s.db, s.log, "create order", func(tx *gorm.DB) error {
		var booking models.Booking
		err := tx.Where("id = ?", bookingID).First(&booking).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBookingNotFound
		}
		if err != nil {
			return err
		}
		if !actor.IsStaff() && booking.UserID != actor.UserID {
			return ErrBookingNotFound
		}
		if booking.Status != models.BookingConfirmed {
			return ErrBookingNotConfirmed
		}

		order = models.Order{
			BookingID: booking.ID,
			Status:    models.OrderPending,
			Notes:     notes,
		}
		var total float64
		for _, in := range items {
			if in.Quantity <= 0 {
				return fmt.Errorf("%w: quantity must be at least 1", ErrInvalidOrder)
			}
			var menu models.Menu
			err := tx.Where("id = ? AND is_available = ?", in.MenuID, true).First(&menu).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMenuNotFound
			}
			if err != nil {
				return err
			}
			total += float64(in.Quantity) * menu.Price
			order.OrderItems = append(order.OrderItems, models.OrderItem{
				MenuID:   menu.ID,
				Quantity: in.Quantity,
				Price:    menu.Price,
				Notes:    in.Notes,
			})
		}
		order.TotalAmount = total

		lines := order.OrderItems
		order.OrderItems = nil
		if err := tx.Omit(clause.Associations).Create(&order).Error; err != nil {
			return err
		}
		for i := range lines {
			lines[i].OrderID = order.ID
		}
		if err := tx.Omit(clause.Associations).Create(&lines).Error; err != nil {
			return err
		}
		order.OrderItems = lines
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"order_id": order.ID, "booking_id": bookingID}).Info("order created")
	return &order, nil
}

func (s *OrderService) Get(ctx context.Context, orderID uint, actor Actor) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Booking").
		Preload("OrderItems.Menu").
		Where("id = ?", orderID).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, storageErr("load order", err)
	}
	if !actor.IsStaff() && order.Booking.UserID != actor.UserID {
		return nil, ErrOrderNotFound
	}
	return &order, nil
}

func (s *OrderService) List(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	q := s.db.WithContext(ctx).Preload("OrderItems.Menu")
	if status != "" {
		q = q.Where("status = ?", string(status))
	}
	orders := make([]models.Order, 0)
	if err := q.Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, storageErr("list orders", err)
	}
	return orders, nil
}

func (s *OrderService) UpdateStatus(ctx context.Context, orderID uint, to models.OrderStatus) (*models.Order, error) {
	if !to.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, to)
	}
	var order models.Order
	err := runInTx(ctx, s.db, s.log, "update order status", func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", orderID).First(&order).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		if err != nil {
			return err
		}
		if !CanTransitionOrder(order.Status, to) {
			return ErrInvalidTransition
		}
		order.Status = to
		return tx.Omit(clause.Associations).Save(&order).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}
