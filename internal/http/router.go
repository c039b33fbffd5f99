package api

import (
	stdhttp "net/http"

	h "seatbooking/internal/http/handlers"
	"seatbooking/internal/http/middleware"
	"seatbooking/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

type Options struct {
	Handler        h.Handler
	Metrics        *metrics.Metrics
	Logger         zerolog.Logger
	JWTSecret      []byte
	AllowedOrigins []string
}

func NewRouter(o Options) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(o.Logger, o.Metrics), gin.Recovery(), middleware.CORS(o.AllowedOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		o.Logger.Warn().Err(err).Msg("failed to set trusted proxies")
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	if o.Metrics != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(o.Metrics.Registry, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api")
	{
		api.GET("/health", o.Handler.Health)
		api.GET("/db-check", o.Handler.DBCheck)
		api.GET("/routes", h.Routes(r))

		vehicles := api.Group("/vehicles")
		vehicles.GET("", o.Handler.ListVehicles)
		vehicles.POST("", middleware.RequireRoles(o.JWTSecret, middleware.RoleAdmin), o.Handler.CreateVehicle)
		vehicles.GET("/:id", o.Handler.GetVehicle)
		vehicles.GET("/:id/seats", o.Handler.ListSeats)

		bookings := api.Group("/bookings")
		bookings.POST("", o.Handler.CreateBooking)
		bookings.GET("/:id", o.Handler.GetBooking)
		bookings.GET("/:id/ticket", o.Handler.GetBookingTicket)
	}

	return r
}
