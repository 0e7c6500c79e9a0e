package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-reservation/models"
	"github.com/yeremiapane/restaurant-reservation/services"
	"github.com/yeremiapane/restaurant-reservation/utils"
	"gorm.io/gorm"
)

type AdminController struct {
	DB       *gorm.DB
	Location *time.Location
	Now      func() time.Time
}

func NewAdminController(db *gorm.DB, loc *time.Location) *AdminController {
	if loc == nil {
		loc = time.UTC
	}
	return &AdminController{DB: db, Location: loc, Now: time.Now}
}

type statusCount struct {
	Status string
	Count  int64
}

type DashboardStats struct {
	Bookings struct {
		Total    map[string]int64 `json:"total"`
		Today    map[string]int64 `json:"today"`
		Upcoming int64            `json:"upcoming"`
	} `json:"bookings"`
	Orders struct {
		ByStatus map[string]int64 `json:"by_status"`
		Revenue  float64          `json:"revenue"`
	} `json:"orders"`
	Tables struct {
		Total        int64 `json:"total"`
		InService    int64 `json:"in_service"`
		OccupiedNow  int64 `json:"occupied_now"`
		AvailableNow int64 `json:"available_now"`
	} `json:"tables"`
}

// GetDashboardStats -> booking, order and table counters for the back office
func (ac *AdminController) GetDashboardStats(c *gin.Context) {
	db := ac.DB.WithContext(c.Request.Context())
	now := ac.Now().In(ac.Location)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, ac.Location)
	dayEnd := dayStart.AddDate(0, 0, 1)
	active := []string{string(models.BookingPending), string(models.BookingConfirmed)}

	var stats DashboardStats
	var err error

	if stats.Bookings.Total, err = countByStatus(db.Model(&models.Booking{})); err != nil {
		respondServiceError(c, &services.StorageError{Op: "booking stats", Err: err})
		return
	}
	todayQ := db.Model(&models.Booking{}).Where("date_time >= ? AND date_time < ?", dayStart.UTC(), dayEnd.UTC())
	if stats.Bookings.Today, err = countByStatus(todayQ); err != nil {
		respondServiceError(c, &services.StorageError{Op: "booking stats", Err: err})
		return
	}
	if err := db.Model(&models.Booking{}).
		Where("status IN ? AND date_time > ?", active, now.UTC()).
		Count(&stats.Bookings.Upcoming).Error; err != nil {
		respondServiceError(c, &services.StorageError{Op: "booking stats", Err: err})
		return
	}

	if stats.Orders.ByStatus, err = countByStatus(db.Model(&models.Order{})); err != nil {
		respondServiceError(c, &services.StorageError{Op: "order stats", Err: err})
		return
	}
	if err := db.Model(&models.Order{}).
		Where("status = ?", string(models.OrderCompleted)).
		Select("COALESCE(SUM(total_amount), 0)").
		Row().Scan(&stats.Orders.Revenue); err != nil {
		respondServiceError(c, &services.StorageError{Op: "order stats", Err: err})
		return
	}

	db.Model(&models.Table{}).Count(&stats.Tables.Total)
	db.Model(&models.Table{}).Where("is_available = ?", true).Count(&stats.Tables.InService)
	if err := db.Model(&models.Booking{}).
		Where("status IN ? AND date_time <= ? AND end_time > ?", active, now.UTC(), now.UTC()).
		Distinct("table_id").
		Count(&stats.Tables.OccupiedNow).Error; err != nil {
		respondServiceError(c, &services.StorageError{Op: "table stats", Err: err})
		return
	}
	stats.Tables.AvailableNow = stats.Tables.InService - stats.Tables.OccupiedNow
	if stats.Tables.AvailableNow < 0 {
		stats.Tables.AvailableNow = 0
	}

	utils.RespondJSON(c, http.StatusOK, "Dashboard stats retrieved successfully", stats)
}

type topMenu struct {
	MenuID   uint    `json:"menu_id"`
	Name     string  `json:"name"`
	Quantity int64   `json:"quantity"`
	Revenue  float64 `json:"revenue"`
}

// GetSalesReport -> completed-order revenue and best sellers
func (ac *AdminController) GetSalesReport(c *gin.Context) {
	db := ac.DB.WithContext(c.Request.Context())

	var sales struct {
		TotalSales     float64   `json:"total_sales"`
		TotalOrders    int64     `json:"total_orders"`
		AverageOrder   float64   `json:"average_order"`
		TopSellingMenu []topMenu `json:"top_selling_menu"`
	}

	completed := db.Model(&models.Order{}).Where("status = ?", string(models.OrderCompleted))
	if err := completed.Session(&gorm.Session{}).Count(&sales.TotalOrders).Error; err != nil {
		respondServiceError(c, &services.StorageError{Op: "sales report", Err: err})
		return
	}
	if err := completed.Session(&gorm.Session{}).Select("COALESCE(SUM(total_amount), 0)").Row().Scan(&sales.TotalSales); err != nil {
		respondServiceError(c, &services.StorageError{Op: "sales report", Err: err})
		return
	}
	if sales.TotalOrders > 0 {
		sales.AverageOrder = sales.TotalSales / float64(sales.TotalOrders)
	}

	sales.TopSellingMenu = make([]topMenu, 0)
	err := db.Table("order_items").
		Select("order_items.menu_id AS menu_id, menus.name AS name, SUM(order_items.quantity) AS quantity, SUM(order_items.quantity * order_items.price) AS revenue").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Joins("JOIN menus ON menus.id = order_items.menu_id").
		Where("orders.status = ?", string(models.OrderCompleted)).
		Group("order_items.menu_id, menus.name").
		Order("quantity DESC").
		Limit(5).
		Scan(&sales.TopSellingMenu).Error
	if err != nil {
		respondServiceError(c, &services.StorageError{Op: "sales report", Err: err})
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Sales report", sales)
}

func countByStatus(q *gorm.DB) (map[string]int64, error) {
	var rows []statusCount
	if err := q.Select("status, COUNT(*) AS count").Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Status] = r.Count
	}
	return out, nil
}
