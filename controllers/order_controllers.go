package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-reservation/kds"
	"github.com/yeremiapane/restaurant-reservation/models"
	"github.com/yeremiapane/restaurant-reservation/services"
	"github.com/yeremiapane/restaurant-reservation/utils"
)

type OrderController struct {
	Service *services.OrderService
	Hub     *kds.Hub
}

func NewOrderController(svc *services.OrderService, hub *kds.Hub) *OrderController {
	return &OrderController{Service: svc, Hub: hub}
}

// CreateOrder -> order food on a confirmed booking
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var body struct {
		BookingID uint   `json:"booking_id" binding:"required"`
		Notes     string `json:"notes"`
		Items     []struct {
			MenuID   uint   `json:"menu_id" binding:"required"`
			Quantity int    `json:"quantity" binding:"required,min=1"`
			Notes    string `json:"notes"`
		} `json:"items" binding:"required,min=1,dive"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	items := make([]services.OrderItemInput, 0, len(body.Items))
	for _, it := range body.Items {
		items = append(items, services.OrderItemInput{MenuID: it.MenuID, Quantity: it.Quantity, Notes: it.Notes})
	}

	order, err := oc.Service.CreateOrder(c.Request.Context(), body.BookingID, items, body.Notes, actorFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	oc.broadcast(order)
	utils.RespondJSON(c, http.StatusCreated, "Order created", order)
}

func (oc *OrderController) GetOrderByID(c *gin.Context) {
	id, ok := paramID(c, "order_id")
	if !ok {
		return
	}
	order, err := oc.Service.Get(c.Request.Context(), id, actorFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// GetAllOrders -> staff view, optional ?status=
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	status := models.OrderStatus(strings.ToUpper(c.Query("status")))
	if status != "" && !status.IsValid() {
		utils.RespondError(c, http.StatusBadRequest, errors.New("unknown status"))
		return
	}
	orders, err := oc.Service.List(c.Request.Context(), status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	id, ok := paramID(c, "order_id")
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

	order, err := oc.Service.UpdateStatus(c.Request.Context(), id, models.OrderStatus(strings.ToUpper(body.Status)))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	oc.broadcast(order)
	utils.InfoLogger.Printf("Order %d status changed to %s", order.ID, order.Status)
	utils.RespondJSON(c, http.StatusOK, "Order status updated", order)
}

func (oc *OrderController) broadcast(order *models.Order) {
	if oc.Hub == nil {
		return
	}
	oc.Hub.Broadcast(kds.Message{Event: kds.EventOrderUpdate, Data: order})
}
