package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-reservation/models"
	"gorm.io/gorm"
)

func TestBookingSweeper_SweepOnce(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db, "guest@example.com", models.RoleCustomer)
	tbl := createTable(t, db, 1, 4)

	stale := insertBooking(t, db, tbl.ID, user.ID, at(6, 0), 120, models.BookingPending)
	running := insertBooking(t, db, tbl.ID, user.ID, at(8, 0), 120, models.BookingPending)
	confirmed := insertBooking(t, db, tbl.ID, user.ID, at(5, 0), 60, models.BookingConfirmed)

	hub := &recordingHub{}
	sweeper := NewBookingSweeper(db, time.Minute, quietLogger())
	sweeper.Now = fixedClock
	sweeper.Hub = hub

	n, err := sweeper.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{LiveBookingStatus}, hub.events)

	var got models.Booking
	require.NoError(t, db.First(&got, stale.ID).Error)
	assert.Equal(t, models.BookingCancelled, got.Status)
	assert.NotNil(t, got.CancelledAt)

	require.NoError(t, db.First(&got, running.ID).Error)
	assert.Equal(t, models.BookingPending, got.Status, "still in progress")

	require.NoError(t, db.First(&got, confirmed.ID).Error)
	assert.Equal(t, models.BookingConfirmed, got.Status, "confirmed bookings are left for staff")

	n, err = sweeper.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestBookingSweeper_LeavesBookingConfirmedAfterRead(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db, "guest@example.com", models.RoleCustomer)
	tbl := createTable(t, db, 1, 4)
	stale := insertBooking(t, db, tbl.ID, user.ID, at(6, 0), 120, models.BookingPending)

	// staff confirms the booking right after the sweeper has loaded it
	confirmed := false
	var confirmErr error
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("test:confirm_after_read", func(tx *gorm.DB) {
		if confirmed || tx.Statement.Table != "bookings" {
			return
		}
		confirmed = true
		confirmErr = tx.Session(&gorm.Session{NewDB: true}).
			Exec("UPDATE bookings SET status = ? WHERE id = ?", string(models.BookingConfirmed), stale.ID).Error
	}))

	hub := &recordingHub{}
	sweeper := NewBookingSweeper(db, time.Minute, quietLogger())
	sweeper.Now = fixedClock
	sweeper.Hub = hub

	n, err := sweeper.SweepOnce(context.Background())
	require.NoError(t, err)
	require.True(t, confirmed)
	require.NoError(t, confirmErr)
	assert.Zero(t, n)
	assert.Empty(t, hub.events)

	var got models.Booking
	require.NoError(t, db.First(&got, stale.ID).Error)
	assert.Equal(t, models.BookingConfirmed, got.Status)
	assert.Nil(t, got.CancelledAt)
}

func TestBookingSweeper_StartStop(t *testing.T) {
	db := newTestDB(t)
	sweeper := NewBookingSweeper(db, 10*time.Millisecond, quietLogger())
	sweeper.Start()
	time.Sleep(30 * time.Millisecond)
	sweeper.Stop()
	assert.NotPanics(t, sweeper.Stop)
}
