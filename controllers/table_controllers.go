package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/yeremiapane/restaurant-reservation/kds"
	"github.com/yeremiapane/restaurant-reservation/middlewares"
	"github.com/yeremiapane/restaurant-reservation/models"
	"github.com/yeremiapane/restaurant-reservation/services"
	"github.com/yeremiapane/restaurant-reservation/utils"
	"gorm.io/gorm"
)

type TableController struct {
	DB       *gorm.DB
	Checker  *services.BookingAvailabilityChecker
	Hub      *kds.Hub
	Cache    *redis.Client
	Location *time.Location
}

func NewTableController(db *gorm.DB, checker *services.BookingAvailabilityChecker, hub *kds.Hub, cache *redis.Client, loc *time.Location) *TableController {
	if loc == nil {
		loc = time.UTC
	}
	return &TableController{DB: db, Checker: checker, Hub: hub, Cache: cache, Location: loc}
}

// GetAllTables -> every table, ordered by number
func (tc *TableController) GetAllTables(c *gin.Context) {
	tables := make([]models.Table, 0)
	if err := tc.DB.Order("table_number ASC").Find(&tables).Error; err != nil {
		respondServiceError(c, &services.StorageError{Op: "list tables", Err: err})
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

func (tc *TableController) GetTableByID(c *gin.Context) {
	id, ok := paramID(c, "table_id")
	if !ok {
		return
	}
	var table models.Table
	err := tc.DB.First(&table, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondServiceError(c, services.ErrTableNotFound)
		return
	}
	if err != nil {
		respondServiceError(c, &services.StorageError{Op: "load table", Err: err})
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table detail", table)
}

// GetAvailableTables -> tables free for date+time that seat guestCount
func (tc *TableController) GetAvailableTables(c *gin.Context) {
	date, clock := c.Query("date"), c.Query("time")
	if date == "" || clock == "" || c.Query("guestCount") == "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("date, time and guestCount are required"))
		return
	}
	start, err := time.ParseInLocation("2006-01-02 15:04", date+" "+clock, tc.Location)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("date must be YYYY-MM-DD and time HH:mm"))
		return
	}
	guests, err := strconv.Atoi(c.Query("guestCount"))
	if err != nil || guests < 1 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("guestCount must be a positive integer"))
		return
	}
	duration := 0
	if d := c.Query("duration"); d != "" {
		duration, err = strconv.Atoi(d)
		if err != nil || duration < 1 {
			utils.RespondError(c, http.StatusBadRequest, errors.New("duration must be a positive number of minutes"))
			return
		}
	}

	tables, err := tc.Checker.FindAvailableTables(c.Request.Context(), start, duration, guests)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Available tables", tables)
}

type tableRequest struct {
	TableNumber int    `json:"table_number" binding:"required,gt=0"`
	Capacity    int    `json:"capacity" binding:"required,gt=0"`
	IsAvailable *bool  `json:"is_available"`
	Location    string `json:"location"`
}

// CreateTable -> add a new table
func (tc *TableController) CreateTable(c *gin.Context) {
	var req tableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if taken, err := tc.numberTaken(req.TableNumber); err != nil {
		respondServiceError(c, &services.StorageError{Op: "check table number", Err: err})
		return
	} else if taken {
		respondServiceError(c, services.ErrTableNumberTaken)
		return
	}

	table := models.Table{
		TableNumber: req.TableNumber,
		Capacity:    req.Capacity,
		IsAvailable: true,
		Location:    req.Location,
	}
	if err := tc.DB.Create(&table).Error; err != nil {
		respondServiceError(c, &services.StorageError{Op: "create table", Err: err})
		return
	}
	// a false default is skipped by Create
	if req.IsAvailable != nil && !*req.IsAvailable {
		table.IsAvailable = false
		if err := tc.DB.Model(&table).Update("is_available", false).Error; err != nil {
			respondServiceError(c, &services.StorageError{Op: "create table", Err: err})
			return
		}
	}

	tc.afterWrite(c, kds.EventTableCreate, table)
	utils.InfoLogger.Printf("New table created: #%d (capacity=%d)", table.TableNumber, table.Capacity)
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", table)
}

// UpdateTable -> edit number, capacity, availability flag or location.
// Capacity cannot drop below the party size of an upcoming booking.
func (tc *TableController) UpdateTable(c *gin.Context) {
	id, ok := paramID(c, "table_id")
	if !ok {
		return
	}
	var body struct {
		TableNumber *int    `json:"table_number"`
		Capacity    *int    `json:"capacity"`
		IsAvailable *bool   `json:"is_available"`
		Location    *string `json:"location"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if body.TableNumber != nil && *body.TableNumber <= 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("table_number must be positive"))
		return
	}
	if body.Capacity != nil && *body.Capacity <= 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("capacity must be positive"))
		return
	}

	table, err := tc.Checker.UpdateTable(c.Request.Context(), id, services.TableChange{
		TableNumber: body.TableNumber,
		Capacity:    body.Capacity,
		IsAvailable: body.IsAvailable,
		Location:    body.Location,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	tc.afterWrite(c, kds.EventTableUpdate, table)
	utils.InfoLogger.Printf("Table %d updated", table.ID)
	utils.RespondJSON(c, http.StatusOK, "Table updated", table)
}

// DeleteTable -> refused while active bookings that have not ended use it
func (tc *TableController) DeleteTable(c *gin.Context) {
	id, ok := paramID(c, "table_id")
	if !ok {
		return
	}

	table, err := tc.Checker.RetireTable(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	tc.afterWrite(c, kds.EventTableDelete, gin.H{"table_id": table.ID})
	utils.InfoLogger.Printf("Table %d deleted", table.ID)
	utils.RespondJSON(c, http.StatusOK, "Table deleted", gin.H{
		"id": table.ID,
	})
}

func (tc *TableController) numberTaken(number int) (bool, error) {
	var count int64
	if err := tc.DB.Model(&models.Table{}).Where("table_number = ?", number).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (tc *TableController) afterWrite(c *gin.Context, event string, data interface{}) {
	if err := middlewares.InvalidateCache(c.Request.Context(), tc.Cache, middlewares.CachePrefixTables); err != nil {
		utils.ErrorLogger.Printf("table cache invalidation failed: %v", err)
	}
	if tc.Hub != nil {
		tc.Hub.Broadcast(kds.Message{Event: event, Data: data})
	}
}
