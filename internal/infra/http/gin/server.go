package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"hotelrates/internal/infra/config"
	"hotelrates/internal/infra/obs"
)

type Handlers struct {
	Rooms          RoomHandler
	Pricing        PricingHandler
	Availability   AvailabilityHandler
	Booking        BookingHandler
	Config         ConfigHandler
	AuthMiddleware gin.HandlerFunc
	RateLimiter    *RateLimiter
	Metrics        http.Handler
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewRouter(obsMW, health, h),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func NewRouter(obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)
	if h.Metrics != nil {
		router.GET("/metrics", gin.WrapH(h.Metrics))
	}

	api := router.Group("/api/v1")
	public := api.Group("")
	public.Use(h.RateLimiter.Limit())
	public.GET("/rooms", h.Rooms.List)
	public.GET("/rooms/:id/quote", h.Pricing.Quote)
	public.GET("/rooms/:id/availability", h.Availability.Check)
	public.GET("/rooms/:id/calendar", h.Availability.Calendar)
	public.POST("/bookings", h.Booking.Create)
	public.GET("/config", h.Config.Get)

	admin := api.Group("/admin")
	admin.PUT("/rooms/:id", h.Rooms.Upsert)
	admin.POST("/rooms/:id/photos", h.Rooms.UploadPhoto)
	admin.GET("/rooms/:id/bookings", h.Booking.ListByRoom)
	admin.POST("/bookings/:id/cancel", h.Booking.Cancel)
	admin.POST("/bookings/:id/arrive", h.Booking.Arrive)
	admin.POST("/bookings/:id/check-out", h.Booking.CheckOut)
	admin.POST("/bookings/:id/paid", h.Booking.Paid)
	admin.GET("/pricing-rules", h.Pricing.ListRules)
	admin.PUT("/pricing-rules/:id", h.Pricing.UpsertRule)
	admin.DELETE("/pricing-rules/:id", h.Pricing.DeleteRule)
	admin.PUT("/config", h.Config.Update)

	return router
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug", "dev", "local":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
