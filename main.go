package main

import (
	"log"

	"appointment-scheduler/config"
	"appointment-scheduler/internal/consumer"
	"appointment-scheduler/internal/handler"
	"appointment-scheduler/internal/middleware"
	"appointment-scheduler/internal/repository"
	"appointment-scheduler/internal/service"
	"appointment-scheduler/pkg/database"
	"appointment-scheduler/pkg/rabbitmq"
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
)

func main() {
	cfg := config.Load()

	db := database.NewPostgresDB(cfg.DSN())

	// RabbitMQ publisher: booking lifecycle events out to notification/payment services
	publisher, err := rabbitmq.NewPublisher(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to connect to RabbitMQ: %v", err)
	}
	defer publisher.Close()

	// Repositories
	bookingRepo := repository.NewBookingRepository(db)
	locker := repository.NewSlotLocker()

	// Services
	bookingSvc := service.NewBookingService(cfg.Schedule, bookingRepo, locker, publisher, cfg.LockTimeout)
	calendarSvc := service.NewCalendarService(cfg.Schedule, bookingRepo)

	// RabbitMQ consumer: payment outcomes back in
	mqConsumer, err := rabbitmq.NewConsumer(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to connect to RabbitMQ: %v", err)
	}
	defer mqConsumer.Close()

	msgs, err := mqConsumer.Consume()
	if err != nil {
		log.Fatalf("failed to start consuming: %v", err)
	}
	consumer.NewPaymentConsumer(bookingSvc).Start(msgs)

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

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok", "service": "appointment-scheduler"})
	})

	handler.NewBookingHandler(bookingSvc).RegisterRoutes(e)
	handler.NewCalendarHandler(calendarSvc).RegisterRoutes(e)

	log.Printf("Appointment Scheduler starting on :%s", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
