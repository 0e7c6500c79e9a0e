package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-reservation/models"
	"github.com/yeremiapane/restaurant-reservation/services"
	"github.com/yeremiapane/restaurant-reservation/utils"
	"gorm.io/gorm"
)

type NotificationController struct {
	DB *gorm.DB
}

func NewNotificationController(db *gorm.DB) *NotificationController {
	return &NotificationController{DB: db}
}

// GetAllNotifications -> staff feed, newest first
func (nc *NotificationController) GetAllNotifications(c *gin.Context) {
	nc.list(c, nc.DB)
}

// GetMyNotifications -> notifications addressed to the caller
func (nc *NotificationController) GetMyNotifications(c *gin.Context) {
	nc.list(c, nc.DB.Where("user_id = ?", actorFrom(c).UserID))
}

func (nc *NotificationController) list(c *gin.Context, q *gorm.DB) {
	notifs := make([]models.Notification, 0)
	if err := q.Order("created_at DESC").Limit(100).Find(&notifs).Error; err != nil {
		respondServiceError(c, &services.StorageError{Op: "list notifications", Err: err})
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All notifications", notifs)
}

func (nc *NotificationController) DeleteNotification(c *gin.Context) {
	id, ok := paramID(c, "notif_id")
	if !ok {
		return
	}
	if err := nc.DB.Delete(&models.Notification{}, id).Error; err != nil {
		respondServiceError(c, &services.StorageError{Op: "delete notification", Err: err})
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Notification deleted", gin.H{"notif_id": id})
}
