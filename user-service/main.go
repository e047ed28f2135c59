package main

import (
	"log"

	"github.com/Walid-hh/PFA/pkg/token"
	"github.com/Walid-hh/PFA/user-service/config"
	"github.com/Walid-hh/PFA/user-service/internal/handler"
	"github.com/Walid-hh/PFA/user-service/internal/middleware"
	"github.com/Walid-hh/PFA/user-service/internal/repository"
	"github.com/Walid-hh/PFA/user-service/internal/service"
	"github.com/Walid-hh/PFA/user-service/pkg/database"
	"github.com/Walid-hh/PFA/user-service/pkg/rabbitmq"
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
)

func main() {
	cfg := config.Load()

	db := database.NewPostgresDB(cfg.DSN())

	// RabbitMQ publisher: account snapshots for the trip service read model
	publisher, err := rabbitmq.NewPublisher(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to connect to RabbitMQ: %v", err)
	}
	defer publisher.Close()

	tokens, err := token.NewService(token.Config{Secret: cfg.TokenSecret, TTL: cfg.TokenTTL})
	if err != nil {
		log.Fatalf("failed to build token service: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	userSvc := service.NewUserService(userRepo, publisher)

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

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok", "service": "user-service"})
	})

	handler.NewAuthHandler(userSvc, tokens).RegisterRoutes(e)
	handler.NewUserHandler(userSvc).RegisterRoutes(e, tokens, userRepo)

	log.Printf("User Service starting on :%s", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
