package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-reservation/middlewares"
	"github.com/yeremiapane/restaurant-reservation/services"
	"github.com/yeremiapane/restaurant-reservation/utils"
)

var (
	ErrNoPermission    = errors.New("You do not have permission")
	ErrInvalidID       = errors.New("invalid id")
	ErrInternal        = errors.New("internal server error")
	ErrInvalidDateTime = errors.New("dateTime must be RFC3339 or YYYY-MM-DDTHH:mm")
)

// respondServiceError is the single mapping from service errors to HTTP
// statuses. Unexpected errors are logged and hidden behind a generic 500.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrSlotConflict), errors.Is(err, services.ErrTableInUse):
		utils.RespondError(c, http.StatusConflict, err)
		return
	}

	switch services.KindOf(err) {
	case services.KindNotFound:
		utils.RespondError(c, http.StatusNotFound, err)
	case services.KindConflict:
		utils.RespondError(c, http.StatusConflict, err)
	case services.KindValidation:
		utils.RespondError(c, http.StatusUnprocessableEntity, err)
	case services.KindForbidden:
		utils.RespondError(c, http.StatusForbidden, err)
	default:
		utils.ErrorLogger.WithField("path", c.FullPath()).Errorf("request failed: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, ErrInternal)
	}
}

func actorFrom(c *gin.Context) services.Actor {
	id, _ := c.Get(middlewares.ContextUserID)
	userID, _ := id.(uint)
	return services.Actor{UserID: userID, Role: c.GetString(middlewares.ContextRole)}
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		utils.RespondError(c, http.StatusBadRequest, ErrInvalidID)
		return 0, false
	}
	return uint(id), true
}

// parseDateTime accepts RFC3339, or a wall-clock time that is read in loc.
func parseDateTime(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02 15:04"} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidDateTime
}

// dayRange returns [00:00, next 00:00) of a YYYY-MM-DD date in loc.
func dayRange(date string, loc *time.Location) (time.Time, time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return day, day.AddDate(0, 0, 1), nil
}
