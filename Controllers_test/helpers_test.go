package Controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-reservation/config"
	"github.com/yeremiapane/restaurant-reservation/database"
	"github.com/yeremiapane/restaurant-reservation/models"
	"github.com/yeremiapane/restaurant-reservation/router"
	"github.com/yeremiapane/restaurant-reservation/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	testSecret = "controllers-test-secret"
	// every handler sees 2024-01-01 09:00 UTC as "now"
	now = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
)

func init() {
	gin.SetMode(gin.TestMode)
	utils.InfoLogger.SetLevel(logrus.PanicLevel)
	utils.ErrorLogger.SetLevel(logrus.PanicLevel)
}

// setupTestDB opens a private in-memory SQLite database with the full schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		Env:             "test",
		JWTSecret:       testSecret,
		TokenTTL:        time.Hour,
		Location:        time.UTC,
		DefaultDuration: 120,
		CancelLeadTime:  3 * time.Hour,
		WhatsAppNumber:  "081200000000",
		AllowedOrigins:  []string{"*"},
	}
}

// setupRouter wires the full application router over db with a fixed clock.
func setupRouter(db *gorm.DB) *gin.Engine {
	quiet := logrus.New()
	quiet.SetLevel(logrus.PanicLevel)
	return router.SetupRouter(router.Deps{
		DB:     db,
		Config: testConfig(),
		Log:    quiet,
		Now:    func() time.Time { return now },
	})
}

func seedUser(t *testing.T, db *gorm.DB, email, role string) models.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	u := models.User{Name: email, Email: email, Password: string(hashed), Role: role}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func tokenFor(t *testing.T, u models.User) string {
	t.Helper()
	token, err := utils.GenerateToken([]byte(testSecret), time.Hour, u.ID, u.Role)
	require.NoError(t, err)
	return token
}

func seedTable(t *testing.T, db *gorm.DB, number, capacity int) models.Table {
	t.Helper()
	tbl := models.Table{TableNumber: number, Capacity: capacity, IsAvailable: true}
	require.NoError(t, db.Create(&tbl).Error)
	return tbl
}

func seedBooking(t *testing.T, db *gorm.DB, tableID, userID uint, start time.Time, status models.BookingStatus) models.Booking {
	t.Helper()
	b := models.Booking{
		Reference:  uuid.NewString(),
		TableID:    tableID,
		UserID:     userID,
		DateTime:   start,
		Duration:   120,
		GuestCount: 2,
		Status:     status,
	}
	require.NoError(t, db.Omit("Table", "User").Create(&b).Error)
	return b
}

func seedMenu(t *testing.T, db *gorm.DB, name string, price float64) models.Menu {
	t.Helper()
	var cat models.MenuCategory
	require.NoError(t, db.Where(models.MenuCategory{Name: "Mains"}).FirstOrCreate(&cat).Error)
	m := models.Menu{CategoryID: cat.ID, Name: name, Price: price, IsAvailable: true}
	require.NoError(t, db.Omit("Category").Create(&m).Error)
	return m
}

// performRequest sends body as JSON, with a bearer token when token is set.
func performRequest(r http.Handler, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), w.Body.String())
	return response
}
