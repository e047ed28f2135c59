package main

import (
	"context"
	"log"
	"time"

	"github.com/Walid-hh/PFA/pkg/token"
	"github.com/Walid-hh/PFA/trip-service/config"
	"github.com/Walid-hh/PFA/trip-service/internal/consumer"
	"github.com/Walid-hh/PFA/trip-service/internal/handler"
	"github.com/Walid-hh/PFA/trip-service/internal/middleware"
	"github.com/Walid-hh/PFA/trip-service/internal/repository"
	"github.com/Walid-hh/PFA/trip-service/internal/service"
	"github.com/Walid-hh/PFA/trip-service/pkg/database"
	"github.com/Walid-hh/PFA/trip-service/pkg/rabbitmq"
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
)

func main() {
	cfg := config.Load()

	db := database.NewPostgresDB(cfg.DSN())

	// RabbitMQ consumer: sync user snapshots from User Service
	mqConsumer, err := rabbitmq.NewConsumer(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to connect to RabbitMQ: %v", err)
	}
	defer mqConsumer.Close()

	msgs, err := mqConsumer.Consume()
	if err != nil {
		log.Fatalf("failed to start consuming: %v", err)
	}

	// Repositories
	tripRepo := repository.NewTripRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	profileRepo := repository.NewUserProfileRepository(db)

	go consumer.NewUserConsumer(profileRepo).Start(msgs)

	// Services
	tripSvc := service.NewTripService(tripRepo)
	bookingSvc := service.NewBookingService(bookingRepo, tripRepo)

	tokens, err := token.NewService(token.Config{
		Secret: cfg.TokenSecret,
		TTL:    cfg.TokenTTL,
	})
	if err != nil {
		log.Fatalf("failed to init token service: %v", err)
	}

	// Background sweep: overdue ACTIVE trips become EXPIRED
	go func() {
		ticker := time.NewTicker(cfg.ExpirySweepInterval)
		defer ticker.Stop()
		for range ticker.C {
			if _, err := tripSvc.ExpireOverdue(context.Background()); err != nil {
				log.Printf("[Sweep] expiry sweep failed: %v", err)
			}
		}
	}()

	// Echo
	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			log.Printf("%s %s %d", v.Method, v.URI, v.Status)
			return nil
		},
	}))
	e.Use(echoMw.Recover())
	e.Use(middleware.Authenticate(tokens, profileRepo))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok", "service": "trip-service"})
	})

	handler.NewTripHandler(tripSvc).RegisterRoutes(e)
	handler.NewBookingHandler(bookingSvc).RegisterRoutes(e)

	log.Printf("Trip Service starting on :%s", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
