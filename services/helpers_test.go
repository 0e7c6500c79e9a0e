package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-reservation/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// base is a fixed "now" for every rule that depends on the clock.
var base = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return base }

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

// newTestDB opens a private in-memory sqlite database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Table{},
		&models.Booking{},
		&models.MenuCategory{},
		&models.Menu{},
		&models.Order{},
		&models.OrderItem{},
		&models.Notification{},
	))
	return db
}

func newChecker(db *gorm.DB) *BookingAvailabilityChecker {
	return NewBookingAvailabilityChecker(db, WithClock(fixedClock), WithLogger(quietLogger()))
}

func createUser(t *testing.T, db *gorm.DB, email, role string) models.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	u := models.User{Name: email, Email: email, Password: string(hashed), Role: role}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func createTable(t *testing.T, db *gorm.DB, number, capacity int) models.Table {
	t.Helper()
	tbl := models.Table{TableNumber: number, Capacity: capacity, IsAvailable: true}
	require.NoError(t, db.Create(&tbl).Error)
	return tbl
}

// insertBooking writes a booking directly, bypassing the checker.
func insertBooking(t *testing.T, db *gorm.DB, tableID, userID uint, start time.Time, minutes int, status models.BookingStatus) models.Booking {
	t.Helper()
	b := models.Booking{
		Reference:  uuid.NewString(),
		TableID:    tableID,
		UserID:     userID,
		DateTime:   start,
		Duration:   minutes,
		GuestCount: 2,
		Status:     status,
	}
	require.NoError(t, db.Omit("Table", "User").Create(&b).Error)
	return b
}

func at(hour, minute int) time.Time {
	return time.Date(2024, 1, 1, hour, minute, 0, 0, time.UTC)
}
