package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-reservation/utils"
)

type PublicController struct {
	WhatsAppNumber string
}

func NewPublicController(whatsAppNumber string) *PublicController {
	return &PublicController{WhatsAppNumber: whatsAppNumber}
}

func (pc *PublicController) Ping(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "pong", nil)
}

// GetStatuses -> the label/colour of every booking and order status
func (pc *PublicController) GetStatuses(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Status labels", utils.StatusLabels())
}

// WhatsAppReservation -> wa.me link pre-filled with the reservation request
func (pc *PublicController) WhatsAppReservation(c *gin.Context) {
	var req utils.WhatsAppReservation
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	link, err := utils.BuildWhatsAppLink(pc.WhatsAppNumber, req)
	if errors.Is(err, utils.ErrWhatsAppNumberMissing) {
		utils.RespondError(c, http.StatusServiceUnavailable, errors.New("WhatsApp reservations are not available"))
		return
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "WhatsApp link created", gin.H{"url": link})
}
