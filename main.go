package main

import (
	"log"

	"github.com/eventful/ticketing-service/config"
	"github.com/eventful/ticketing-service/internal/handler"
	"github.com/eventful/ticketing-service/internal/middleware"
	"github.com/eventful/ticketing-service/internal/qrcode"
	"github.com/eventful/ticketing-service/internal/repository"
	"github.com/eventful/ticketing-service/internal/service"
	"github.com/eventful/ticketing-service/pkg/cache"
	"github.com/eventful/ticketing-service/pkg/database"
	"github.com/eventful/ticketing-service/pkg/paystack"
	"github.com/eventful/ticketing-service/pkg/rabbitmq"
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := config.Load()

	db := database.NewPostgresDB(cfg.DSN())

	redisClient := cache.NewRedisClient(cfg.RedisURL)
	defer redisClient.Close()
	eventCache := cache.NewEventCache(redisClient)

	publisher, err := rabbitmq.NewPublisher(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to connect to RabbitMQ: %v", err)
	}
	defer publisher.Close()

	gateway := paystack.NewClient(cfg.PaystackBaseURL, cfg.PaystackSecretKey)
	codec := qrcode.NewCodec(cfg.QRSecret)

	// Repositories
	eventRepo := repository.NewEventRepository(db)
	ticketRepo := repository.NewTicketRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	// Services
	paymentSvc := service.NewPaymentService(paymentRepo, ticketRepo, eventRepo, gateway, cfg.PaystackSecretKey, eventCache, publisher)
	ticketSvc := service.NewTicketService(ticketRepo, eventRepo, paymentRepo, paymentSvc, codec, eventCache, publisher)

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
		return c.JSON(200, map[string]string{"status": "ok", "service": "ticketing-service"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	handler.NewTicketHandler(ticketSvc).RegisterRoutes(e)
	handler.NewPaymentHandler(paymentSvc).RegisterRoutes(e)

	log.Printf("Ticketing Service starting on :%s", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
