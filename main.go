// File: seabook/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"seabook/config"
	"seabook/database"
	basketRepo "seabook/database/repository/basket"
	bookingRepo "seabook/database/repository/booking"
	catalogRepo "seabook/database/repository/catalog"
	sessionRepo "seabook/database/repository/session"
	"seabook/handlers"
	"seabook/middleware"
	"seabook/routes"
	"seabook/services/auth"
	"seabook/services/booking"
	"seabook/services/reservation"
	"seabook/services/resilience"
	"seabook/services/tasks"
	"seabook/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	sessions := sessionRepo.NewMongoSessionRepo()
	bookings := bookingRepo.NewMongoBookingRepo()
	baskets := basketRepo.NewMongoBasketRepo()
	catalog := catalogRepo.NewMongoCatalogRepo()

	// provider plumbing.
	providerClient := reservation.NewClient(logger)
	tokenCache := auth.NewCache(providerClient, logger)
	executor := resilience.NewExecutor(tokenCache, logger)

	taskQueue := tasks.NewEnqueuer()
	defer func() {
		if err := taskQueue.Close(); err != nil {
			logger.Sugar().Warnf("main: failed to close task queue: %v", err)
		}
	}()

	// services.
	bookingService := &booking.DefaultBookingSessionService{
		Sessions:        sessions,
		Bookings:        bookings,
		Baskets:         baskets,
		Catalog:         catalog,
		SessionCache:    booking.NewRedisSessionCache(utils.GetSessionCacheClient()),
		PricingCache:    booking.NewRedisQuoteCache(utils.GetPricingCacheClient()),
		Provider:        providerClient,
		Exec:            executor,
		Tasks:           taskQueue,
		Logger:          logger,
		SessionLifetime: config.SessionLifetime(),
		PricingTTL:      config.PricingCacheTTL(),
		CommitWindow:    config.PricingCommitWindow(),
	}

	bookingHandler := handlers.NewBookingHandler(bookingService, logger)

	// Register routes.
	routes.RegisterRoutes(router, bookingHandler)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
