package Controllers_test

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-reservation/models"
)

func TestDashboardStats(t *testing.T) {
	db := setupTestDB(t)
	staff := seedUser(t, db, "staff@example.com", models.RoleStaff)
	guest := seedUser(t, db, "guest@example.com", models.RoleCustomer)
	seated := seedTable(t, db, 1, 4)
	free := seedTable(t, db, 2, 4)
	closed := seedTable(t, db, 3, 4)
	require.NoError(t, db.Model(&closed).Update("is_available", false).Error)

	// 08:00-10:00 is running at 09:00
	running := seedBooking(t, db, seated.ID, guest.ID, now.Add(-time.Hour), models.BookingConfirmed)
	seedBooking(t, db, free.ID, guest.ID, now.Add(9*time.Hour), models.BookingPending)
	seedBooking(t, db, free.ID, guest.ID, now.Add(5*time.Hour), models.BookingCancelled)
	seedBooking(t, db, free.ID, guest.ID, now.Add(48*time.Hour), models.BookingConfirmed)

	order := models.Order{BookingID: running.ID, Status: models.OrderCompleted, TotalAmount: 75000}
	require.NoError(t, db.Omit("Booking", "OrderItems").Create(&order).Error)

	r := setupRouter(db)
	w := performRequest(r, http.MethodGet, "/admin/dashboard/stats", nil, tokenFor(t, staff))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decode(t, w)["data"].(map[string]interface{})

	bookings := data["bookings"].(map[string]interface{})
	assert.EqualValues(t, 2, bookings["total"].(map[string]interface{})["CONFIRMED"])
	assert.EqualValues(t, 1, bookings["today"].(map[string]interface{})["PENDING"])
	assert.EqualValues(t, 2, bookings["upcoming"])

	orders := data["orders"].(map[string]interface{})
	assert.EqualValues(t, 75000, orders["revenue"])

	tables := data["tables"].(map[string]interface{})
	assert.EqualValues(t, 3, tables["total"])
	assert.EqualValues(t, 2, tables["in_service"])
	assert.EqualValues(t, 1, tables["occupied_now"])
	assert.EqualValues(t, 1, tables["available_now"])

	w = performRequest(r, http.MethodGet, "/admin/dashboard/stats", nil, tokenFor(t, guest))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSalesReport(t *testing.T) {
	db := setupTestDB(t)
	admin := seedUser(t, db, "admin@example.com", models.RoleAdmin)
	tbl := seedTable(t, db, 1, 4)
	b := seedBooking(t, db, tbl.ID, admin.ID, now.Add(-time.Hour), models.BookingConfirmed)
	soup := seedMenu(t, db, "Soup", 20000)
	tea := seedMenu(t, db, "Tea", 5000)

	addOrder := func(status models.OrderStatus, lines map[uint]int, prices map[uint]float64) {
		var total float64
		for id, q := range lines {
			total += float64(q) * prices[id]
		}
		o := models.Order{BookingID: b.ID, Status: status, TotalAmount: total}
		require.NoError(t, db.Omit("Booking", "OrderItems").Create(&o).Error)
		for id, q := range lines {
			require.NoError(t, db.Omit("Order", "Menu").Create(&models.OrderItem{OrderID: o.ID, MenuID: id, Quantity: q, Price: prices[id]}).Error)
		}
	}
	prices := map[uint]float64{soup.ID: 20000, tea.ID: 5000}
	addOrder(models.OrderCompleted, map[uint]int{soup.ID: 1, tea.ID: 4}, prices)
	addOrder(models.OrderCompleted, map[uint]int{tea.ID: 2}, prices)
	addOrder(models.OrderCancelled, map[uint]int{soup.ID: 10}, prices)

	r := setupRouter(db)
	w := performRequest(r, http.MethodGet, "/admin/reports/sales", nil, tokenFor(t, admin))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decode(t, w)["data"].(map[string]interface{})
	assert.EqualValues(t, 50000, data["total_sales"])
	assert.EqualValues(t, 2, data["total_orders"])
	assert.EqualValues(t, 25000, data["average_order"])

	top := data["top_selling_menu"].([]interface{})
	require.Len(t, top, 2)
	first := top[0].(map[string]interface{})
	assert.Equal(t, "Tea", first["name"])
	assert.EqualValues(t, 6, first["quantity"])
}

func TestNotifications(t *testing.T) {
	db := setupTestDB(t)
	staff := seedUser(t, db, "staff@example.com", models.RoleStaff)
	guest := seedUser(t, db, "guest@example.com", models.RoleCustomer)
	guestID := guest.ID
	require.NoError(t, db.Omit("User").Create(&models.Notification{UserID: &guestID, Message: "Booking confirmed"}).Error)
	require.NoError(t, db.Omit("User").Create(&models.Notification{Message: "Kitchen is closing"}).Error)
	r := setupRouter(db)

	w := performRequest(r, http.MethodGet, "/api/notifications", nil, tokenFor(t, guest))
	require.Equal(t, http.StatusOK, w.Code)
	mine := decode(t, w)["data"].([]interface{})
	require.Len(t, mine, 1)
	notifID := uint(mine[0].(map[string]interface{})["id"].(float64))

	w = performRequest(r, http.MethodGet, "/admin/notifications", nil, tokenFor(t, staff))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["data"].([]interface{}), 2)

	w = performRequest(r, http.MethodDelete, fmt.Sprintf("/admin/notifications/%d", notifID), nil, tokenFor(t, staff))
	require.Equal(t, http.StatusOK, w.Code)

	w = performRequest(r, http.MethodGet, "/api/notifications", nil, tokenFor(t, guest))
	assert.Empty(t, decode(t, w)["data"].([]interface{}))
}

func TestPublicEndpoints(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db)

	w := performRequest(r, http.MethodGet, "/ping", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", decode(t, w)["message"])

	w = performRequest(r, http.MethodGet, "/meta/statuses", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	booking := decode(t, w)["data"].(map[string]interface{})["booking"].(map[string]interface{})
	assert.Equal(t, "green", booking["CONFIRMED"].(map[string]interface{})["color"])

	w = performRequest(r, http.MethodPost, "/reservations/whatsapp", map[string]interface{}{
		"name": "Rina", "date": "2024-01-02", "time": "19:00", "guestCount": 3,
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	link, err := url.Parse(decode(t, w)["data"].(map[string]interface{})["url"].(string))
	require.NoError(t, err)
	assert.Equal(t, "/6281200000000", link.Path)
	assert.Contains(t, link.Query().Get("text"), "Guests: 3")

	w = performRequest(r, http.MethodPost, "/reservations/whatsapp", map[string]interface{}{"name": "Rina"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
