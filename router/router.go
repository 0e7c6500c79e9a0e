package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-reservation/config"
	"github.com/yeremiapane/restaurant-reservation/controllers"
	"github.com/yeremiapane/restaurant-reservation/kds"
	"github.com/yeremiapane/restaurant-reservation/middlewares"
	"github.com/yeremiapane/restaurant-reservation/models"
	"github.com/yeremiapane/restaurant-reservation/services"
	"github.com/yeremiapane/restaurant-reservation/utils"
	"gorm.io/gorm"
)

// Deps is everything the HTTP layer needs. DB and Config are required; the
// rest fall back to no-op or in-process defaults.
type Deps struct {
	DB        *gorm.DB
	Config    *config.Config
	Hub       *kds.Hub
	Redis     *redis.Client
	Publisher services.EventPublisher
	Log       *logrus.Logger
	// Now overrides the clock of the booking rules (tests).
	Now func() time.Time
}

func SetupRouter(d Deps) *gin.Engine {
	cfg := d.Config
	if d.Log == nil {
		d.Log = utils.InfoLogger
	}
	if d.Hub == nil {
		d.Hub = kds.NewHub(d.Log)
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	secret := []byte(cfg.JWTSecret)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middlewares.LoggerMiddleware())
	if cfg.RateLimitRPS > 0 {
		r.Use(middlewares.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).RateLimit())
	}

	checker := services.NewBookingAvailabilityChecker(d.DB,
		services.WithClock(d.Now),
		services.WithDefaultDuration(cfg.DefaultDuration),
		services.WithLogger(d.Log),
	)
	bookingSvc := services.NewBookingService(d.DB, checker, services.BookingServiceConfig{
		Publisher: d.Publisher,
		Hub:       d.Hub,
		LeadTime:  cfg.CancelLeadTime,
		Now:       d.Now,
		Log:       d.Log,
	})
	orderSvc := services.NewOrderService(d.DB, d.Log)

	userCtrl := controllers.NewUserController(d.DB, secret, cfg.TokenTTL)
	tableCtrl := controllers.NewTableController(d.DB, checker, d.Hub, d.Redis, cfg.Location)
	bookingCtrl := controllers.NewBookingController(bookingSvc, cfg.Location)
	categoryCtrl := controllers.NewMenuCategoryController(d.DB, d.Redis)
	menuCtrl := controllers.NewMenuController(d.DB, d.Redis)
	orderCtrl := controllers.NewOrderController(orderSvc, d.Hub)
	notificationCtrl := controllers.NewNotificationController(d.DB)
	adminCtrl := controllers.NewAdminController(d.DB, cfg.Location)
	adminCtrl.Now = d.Now
	publicCtrl := controllers.NewPublicController(cfg.WhatsAppNumber)

	menuCache := middlewares.ResponseCache(d.Redis, cfg.CacheTTL, middlewares.CachePrefixMenus)
	tableCache := middlewares.ResponseCache(d.Redis, cfg.CacheTTL, middlewares.CachePrefixTables)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", publicCtrl.Ping)

	public := r.Group("/")
	if cfg.RateLimitRPS > 0 {
		public.Use(middlewares.NewStrictRateLimiter().RateLimit())
	}
	{
		public.POST("/register", userCtrl.Register)
		public.POST("/login", userCtrl.Login)
	}

	r.GET("/categories", menuCache, categoryCtrl.GetAllCategories)
	r.GET("/menus", menuCache, menuCtrl.GetAllMenus)
	r.GET("/menus/:menu_id", menuCache, menuCtrl.GetMenuByID)

	r.GET("/tables", tableCache, tableCtrl.GetAllTables)
	// not cached: depends on live bookings
	r.GET("/tables/available", tableCtrl.GetAvailableTables)

	r.GET("/meta/statuses", publicCtrl.GetStatuses)
	r.POST("/reservations/whatsapp", publicCtrl.WhatsAppReservation)

	// live dashboard feed
	r.GET("/ws", middlewares.WebSocketAuthMiddleware(secret), kds.ServeWS(d.Hub, cfg.AllowedOrigins...))

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	api := r.Group("/api")
	api.Use(middlewares.AuthMiddleware(secret))
	{
		api.GET("/profile", userCtrl.GetProfile)
		api.GET("/notifications", notificationCtrl.GetMyNotifications)

		api.POST("/bookings", bookingCtrl.CreateBooking)
		api.GET("/bookings", bookingCtrl.ListBookings)
		api.GET("/bookings/:id", bookingCtrl.GetBooking)
		api.PATCH("/bookings/:id", bookingCtrl.UpdateBooking)
		api.PATCH("/bookings/:id/status", bookingCtrl.UpdateBookingStatus)
		api.POST("/bookings/:id/cancel", bookingCtrl.CancelBooking)

		api.POST("/orders", orderCtrl.CreateOrder)
		api.GET("/orders/:order_id", orderCtrl.GetOrderByID)
	}

	// ----------------------------------------------------------------
	//                      STAFF / ADMIN ROUTES
	// ----------------------------------------------------------------
	admin := r.Group("/admin")
	admin.Use(middlewares.AuthMiddleware(secret), middlewares.RequireRoles(models.RoleStaff, models.RoleAdmin))
	{
		admin.GET("/dashboard/stats", adminCtrl.GetDashboardStats)
		admin.GET("/reports/sales", adminCtrl.GetSalesReport)

		admin.GET("/tables", tableCtrl.GetAllTables)
		admin.GET("/tables/:table_id", tableCtrl.GetTableByID)
		admin.POST("/tables", tableCtrl.CreateTable)
		admin.PATCH("/tables/:table_id", tableCtrl.UpdateTable)
		admin.DELETE("/tables/:table_id", tableCtrl.DeleteTable)

		admin.POST("/categories", categoryCtrl.CreateCategory)
		admin.PUT("/categories/:cat_id", categoryCtrl.UpdateCategory)
		admin.DELETE("/categories/:cat_id", categoryCtrl.DeleteCategory)

		admin.POST("/menus", menuCtrl.CreateMenu)
		admin.PUT("/menus/:menu_id", menuCtrl.UpdateMenu)
		admin.DELETE("/menus/:menu_id", menuCtrl.DeleteMenu)

		admin.GET("/orders", orderCtrl.GetAllOrders)
		admin.PATCH("/orders/:order_id/status", orderCtrl.UpdateOrderStatus)

		admin.GET("/notifications", notificationCtrl.GetAllNotifications)
		admin.DELETE("/notifications/:notif_id", notificationCtrl.DeleteNotification)
	}

	users := admin.Group("/users")
	users.Use(middlewares.RequireRoles(models.RoleAdmin))
	{
		users.GET("", userCtrl.GetAllUsers)
		users.POST("", userCtrl.CreateUser)
		users.PATCH("/:user_id/role", userCtrl.UpdateUserRole)
		users.DELETE("/:user_id", userCtrl.DeleteUser)
	}

	return r
}
