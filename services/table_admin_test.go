package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-reservation/models"
)

func TestRetireTable(t *testing.T) {
	db := newTestDB(t)
	checker := newChecker(db)
	ctx := context.Background()
	user := createUser(t, db, "guest@example.com", models.RoleCustomer)
	busy := createTable(t, db, 1, 4)
	idle := createTable(t, db, 2, 4)

	// reserved through the checker, so the booking holds the table
	_, err := checker.ValidateAndReserve(ctx, ReserveRequest{
		UserID: user.ID, TableID: busy.ID, StartTime: at(19, 0), GuestCount: 2,
	})
	require.NoError(t, err)
	insertBooking(t, db, idle.ID, user.ID, at(5, 0), 120, models.BookingConfirmed) // already over
	insertBooking(t, db, idle.ID, user.ID, at(19, 0), 120, models.BookingCancelled)

	_, err = checker.RetireTable(ctx, busy.ID)
	assert.ErrorIs(t, err, ErrTableInUse)

	deleted, err := checker.RetireTable(ctx, idle.ID)
	require.NoError(t, err)
	assert.Equal(t, idle.ID, deleted.ID)

	var remaining []models.Table
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, busy.ID, remaining[0].ID)

	var soft models.Table
	require.NoError(t, db.Unscoped().First(&soft, idle.ID).Error)
	assert.True(t, soft.DeletedAt.Valid)

	_, err = checker.RetireTable(ctx, idle.ID)
	assert.ErrorIs(t, err, ErrTableNotFound)

	// a deleted table can no longer be booked
	_, err = checker.ValidateAndReserve(ctx, ReserveRequest{
		UserID: user.ID, TableID: idle.ID, StartTime: at(21, 0), GuestCount: 2,
	})
	assert.ErrorIs(t, err, ErrTableNotFound)
}

func TestUpdateTable(t *testing.T) {
	db := newTestDB(t)
	checker := newChecker(db)
	ctx := context.Background()
	user := createUser(t, db, "guest@example.com", models.RoleCustomer)
	tbl := createTable(t, db, 1, 6)
	createTable(t, db, 2, 4)

	party := insertBooking(t, db, tbl.ID, user.ID, at(19, 0), 120, models.BookingPending)
	require.NoError(t, db.Model(&models.Booking{}).Where("id = ?", party.ID).UpdateColumn("guest_count", 5).Error)
	insertBooking(t, db, tbl.ID, user.ID, at(5, 0), 60, models.BookingCompleted)

	intp := func(v int) *int { return &v }
	boolp := func(v bool) *bool { return &v }

	_, err := checker.UpdateTable(ctx, tbl.ID, TableChange{Capacity: intp(4)})
	assert.ErrorIs(t, err, ErrCapacityInUse)

	_, err = checker.UpdateTable(ctx, tbl.ID, TableChange{TableNumber: intp(2)})
	assert.ErrorIs(t, err, ErrTableNumberTaken)

	_, err = checker.UpdateTable(ctx, 999, TableChange{Capacity: intp(4)})
	assert.ErrorIs(t, err, ErrTableNotFound)

	updated, err := checker.UpdateTable(ctx, tbl.ID, TableChange{
		TableNumber: intp(1),
		Capacity:    intp(5),
		IsAvailable: boolp(false),
	})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Capacity)
	assert.False(t, updated.IsAvailable)

	var stored models.Table
	require.NoError(t, db.First(&stored, tbl.ID).Error)
	assert.Equal(t, 5, stored.Capacity)
	assert.False(t, stored.IsAvailable)

	// once the party is cancelled the capacity may drop
	require.NoError(t, db.Model(&models.Booking{}).Where("id = ?", party.ID).
		UpdateColumn("status", string(models.BookingCancelled)).Error)
	updated, err = checker.UpdateTable(ctx, tbl.ID, TableChange{Capacity: intp(2)})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Capacity)
}
