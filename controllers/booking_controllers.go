package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-reservation/models"
	"github.com/yeremiapane/restaurant-reservation/services"
	"github.com/yeremiapane/restaurant-reservation/utils"
)

type BookingController struct {
	Service  *services.BookingService
	Location *time.Location
}

func NewBookingController(svc *services.BookingService, loc *time.Location) *BookingController {
	if loc == nil {
		loc = time.UTC
	}
	return &BookingController{Service: svc, Location: loc}
}

type createBookingRequest struct {
	TableID        uint    `json:"tableId" binding:"required"`
	DateTime       string  `json:"dateTime" binding:"required"`
	Duration       int     `json:"duration" binding:"omitempty,min=1"`
	GuestCount     int     `json:"guestCount" binding:"required,min=1"`
	SpecialRequest *string `json:"specialRequest"`
	// staff only: book on behalf of a customer
	UserID uint `json:"userId"`
}

// CreateBooking -> reserve a table for the caller
func (bc *BookingController) CreateBooking(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	start, err := parseDateTime(req.DateTime, bc.Location)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	actor := actorFrom(c)
	userID := actor.UserID
	if req.UserID != 0 && req.UserID != actor.UserID {
		if !actor.IsStaff() {
			utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
			return
		}
		userID = req.UserID
	}

	booking, err := bc.Service.Reserve(c.Request.Context(), services.ReserveRequest{
		UserID:         userID,
		TableID:        req.TableID,
		StartTime:      start,
		Duration:       req.Duration,
		GuestCount:     req.GuestCount,
		SpecialRequest: trimmed(req.SpecialRequest),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Booking created", booking)
}

// ListBookings -> customers see their own, staff see all (status/date/userId filters)
func (bc *BookingController) ListBookings(c *gin.Context) {
	actor := actorFrom(c)
	var f services.BookingFilter

	if s := c.Query("status"); s != "" {
		f.Status = models.BookingStatus(strings.ToUpper(s))
		if !f.Status.IsValid() {
			utils.RespondError(c, http.StatusBadRequest, errors.New("unknown status"))
			return
		}
	}
	if d := c.Query("date"); d != "" {
		from, to, err := dayRange(d, bc.Location)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, errors.New("date must be YYYY-MM-DD"))
			return
		}
		f.From, f.To = from, to
	}
	if actor.IsStaff() {
		if u := c.Query("userId"); u != "" {
			id, err := strconv.ParseUint(u, 10, 64)
			if err != nil {
				utils.RespondError(c, http.StatusBadRequest, ErrInvalidID)
				return
			}
			f.UserID = uint(id)
		}
	} else {
		f.UserID = actor.UserID
	}

	bookings, err := bc.Service.List(c.Request.Context(), f)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of bookings", bookings)
}

func (bc *BookingController) GetBooking(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	booking, err := bc.Service.Get(c.Request.Context(), id, actorFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Booking detail", booking)
}

// UpdateBooking -> reschedule; checked against every other active booking
func (bc *BookingController) UpdateBooking(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var body struct {
		TableID        *uint   `json:"tableId"`
		DateTime       *string `json:"dateTime"`
		Duration       *int    `json:"duration"`
		GuestCount     *int    `json:"guestCount"`
		SpecialRequest *string `json:"specialRequest"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	req := services.UpdateRequest{
		TableID:        body.TableID,
		Duration:       body.Duration,
		GuestCount:     body.GuestCount,
		SpecialRequest: trimmed(body.SpecialRequest),
	}
	if body.DateTime != nil {
		start, err := parseDateTime(*body.DateTime, bc.Location)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
		req.StartTime = &start
	}

	booking, err := bc.Service.Reschedule(c.Request.Context(), id, req, actorFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Booking updated", booking)
}

// UpdateBookingStatus -> PATCH {status}
func (bc *BookingController) UpdateBookingStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	status := models.BookingStatus(strings.ToUpper(body.Status))
	booking, err := bc.Service.ChangeStatus(c.Request.Context(), id, status, actorFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Booking status updated", booking)
}

func (bc *BookingController) CancelBooking(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	booking, err := bc.Service.Cancel(c.Request.Context(), id, actorFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Booking cancelled", booking)
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
