package main

import (
	"context"
	"embed"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dreamevents/marketplace/clients"
	"github.com/dreamevents/marketplace/config"
	"github.com/dreamevents/marketplace/config/db"
	"github.com/dreamevents/marketplace/config/redis"
	"github.com/dreamevents/marketplace/controllers/booking_controller"
	"github.com/dreamevents/marketplace/dispatch"
	"github.com/dreamevents/marketplace/logger"
	"github.com/dreamevents/marketplace/middlewares/cors"
	"github.com/dreamevents/marketplace/routes"
	"github.com/dreamevents/marketplace/utils/mail"
)

//go:embed templates/email/*
var embeddedEmailTemplates embed.FS

func init() {
	logger.InitLoggers()
	config.LoadEnv()
}

func main() {
	db.Connect()
	defer db.Close()
	defer redis.CloseRedis()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8081"
	}

	mail.InitTemplates(embeddedEmailTemplates)
	logger.InfoLogger.Info("Application: Email templates initialized.")

	// Notification dispatcher, its durable outbox and the booking lifecycle
	// service built on both.
	store := dispatch.NewPGStore(db.DB)
	dispatcher := dispatch.New(store, store, clients.NewPushClient(), mail.NewMailer())
	outbox := dispatch.NewOutbox(db.DB)

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	go dispatch.NewWorker(outbox, dispatcher).Run(workerCtx)

	bookingStore := booking_controller.NewPGStore(db.DB)
	bookingService := booking_controller.NewBookingService(bookingStore, bookingStore, bookingStore, dispatcher, outbox)
	bookingController := booking_controller.NewBookingController(bookingService, db.DB)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.CorsMiddleware())

	routes.RegisterUserRoutes(r, db.DB)
	routes.RegisterServiceRoutes(r, db.DB)
	routes.RegisterBookingRoutes(r, bookingController)
	routes.RegisterNotificationRoutes(r, db.DB)
	routes.RegisterPackageRoutes(r, db.DB)
	routes.RegisterPlaceRoutes(r)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "ok from marketplace service"})
	})

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		fmt.Printf("Go Server listening on :%s\n", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("Server failed to listen: %v\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	fmt.Println("Shutting down Go server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		fmt.Printf("Go Server forced to shutdown: %v\n", err)
	}

	fmt.Println("Go Server exited gracefully.")
}
