package routes

import (
	"net/http"
	"time"

	"seabook/config"
	"seabook/handlers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all endpoints of the booking engine.
func RegisterRoutes(r *gin.Engine, bookingHandler *handlers.BookingHandler) {
	// Setup global middleware (e.g., CORS) here.
	r.Use(cors.New(cors.Config{
		AllowOrigins:     config.CORSAllowedOrigins(),
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/booking")
	{
		api.POST("/session", bookingHandler.CreateSession)
		api.GET("/session/:sessionID", bookingHandler.GetSession)
		api.GET("/session/:sessionID/cabingrades", bookingHandler.GetCabinGrades)
		api.POST("/session/:sessionID/cabin", bookingHandler.SelectCabin)
		api.GET("/session/:sessionID/basket", bookingHandler.GetBasket)
		api.POST("/session/:sessionID/booking", bookingHandler.CreateBooking)
		api.POST("/booking/:bookingID/payment", bookingHandler.ProcessPayment)
	}
}
