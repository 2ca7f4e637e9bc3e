package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"

	"rentease/config"
	"rentease/internal/handlers"
	"rentease/internal/notify"
	"rentease/internal/services"
	"rentease/internal/services/razorpay"
	"rentease/internal/store"
	"rentease/monitoring"
	"rentease/security"
	"rentease/utils"

	_ "rentease/migrations"
)

func Start() error {
	app := pocketbase.New()

	cfg := config.LoadConfig()

	redisClient, err := utils.NewRedisClient(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	gateway, err := razorpay.New(&cfg.Razorpay)
	if err != nil {
		return err
	}

	notifier := notify.New(notify.Config{
		PublishKey:   cfg.PubNubPublishKey,
		SubscribeKey: cfg.PubNubSubscribeKey,
		SecretKey:    cfg.PubNubSecretKey,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize data boundary and services
	st := store.NewPBStore(app)
	bookingService := services.NewBookingService(st, notifier)
	propertyService := services.NewPropertyService(st)
	paymentService := services.NewPaymentService(st, redisClient, gateway, notifier, services.PaymentServiceConfig{
		SessionTTL:         cfg.PaymentSessionTTL,
		GatewayCallTimeout: cfg.GatewayCallTimeout,
		ConfirmLockTTL:     cfg.ConfirmLockTTL,
		ReconcileInterval:  cfg.ReconcileInterval,
		ReconcileBatchSize: cfg.ReconcileBatchSize,
	})

	// Initialize handlers
	devMode := cfg.Environment == "development"
	bookingHandler := handlers.NewBookingHandler(st, bookingService)
	propertyHandler := handlers.NewPropertyHandler(app, st, propertyService)
	paymentHandler := handlers.NewPaymentHandler(st, paymentService, gateway, devMode)
	adminHandler := handlers.NewAdminHandler(st)

	rateLimiter := security.NewRateLimiter(redisClient, cfg.PaymentRateLimit, cfg.PaymentRateLimitWindow)

	// Enable migrations
	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Automigrate: devMode,
	})

	// Background tasks
	go paymentService.RunReconciler(ctx)

	if cfg.EnableMetrics {
		go monitoring.NewServer(cfg.MetricsPort, redisClient).Start(ctx)
	}

	// Setup graceful shutdown
	go handleShutdown(cancel)

	app.OnServe().BindFunc(func(e *core.ServeEvent) error {
		// Property endpoints
		e.Router.GET("/api/v1/properties", propertyHandler.ListProperties)
		e.Router.POST("/api/v1/properties", propertyHandler.CreateProperty)
		e.Router.GET("/api/v1/properties/{propertyId}", propertyHandler.GetProperty)
		e.Router.PATCH("/api/v1/properties/{propertyId}", propertyHandler.UpdateProperty)
		e.Router.DELETE("/api/v1/properties/{propertyId}", propertyHandler.DeleteProperty)
		e.Router.POST("/api/v1/properties/{propertyId}/images", propertyHandler.UploadImage)
		e.Router.DELETE("/api/v1/properties/{propertyId}/images/{imageId}", propertyHandler.DeleteImage)

		// Booking endpoints
		e.Router.POST("/api/v1/bookings", bookingHandler.CreateBooking)
		e.Router.GET("/api/v1/bookings", bookingHandler.ListBookings)
		e.Router.GET("/api/v1/bookings/{bookingId}", bookingHandler.GetBooking)
		e.Router.POST("/api/v1/bookings/{bookingId}/cancel", bookingHandler.CancelBooking)

		// Payment endpoints
		payLimit := rateLimiter.PaymentRateLimit()
		e.Router.POST("/api/v1/bookings/{bookingId}/payment/initiate", paymentHandler.InitiatePayment).BindFunc(payLimit)
		e.Router.POST("/api/v1/bookings/{bookingId}/payment/verify", paymentHandler.VerifyPayment).BindFunc(payLimit)
		e.Router.POST("/api/v1/bookings/{bookingId}/payment/failed", paymentHandler.PaymentFailed).BindFunc(payLimit)
		e.Router.GET("/api/v1/bookings/{bookingId}/payment/status", paymentHandler.PaymentStatus)

		// Gateway webhook (unauthenticated, signature-verified)
		e.Router.POST("/api/v1/payments/webhook", paymentHandler.Webhook)

		// Admin endpoints
		e.Router.GET("/api/v1/admin/dashboard", adminHandler.GetDashboard)
		e.Router.GET("/api/v1/admin/users", adminHandler.ListUsers)
		e.Router.PATCH("/api/v1/admin/users/{userId}/role", adminHandler.UpdateUserRole)

		// Test endpoint for payment simulation
		if devMode {
			e.Router.POST("/api/v1/bookings/{bookingId}/payment/simulate", paymentHandler.SimulatePayment)
		}

		// Health check
		e.Router.GET("/health", func(e *core.RequestEvent) error {
			if err := utils.RedisHealthCheck(redisClient); err != nil {
				return e.JSON(503, map[string]string{
					"status": "unhealthy",
					"error":  err.Error(),
				})
			}
			return e.JSON(200, map[string]string{"status": "healthy"})
		})

		log.Println("Server routes registered")

		return e.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
	return nil
}

// handleShutdown handles graceful shutdown
func handleShutdown(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Println("Shutdown signal received, cleaning up...")
	cancel()
}
