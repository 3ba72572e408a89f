package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/RussoPy/Claude-s-Store/internal/app"
	"github.com/RussoPy/Claude-s-Store/internal/config"
	"github.com/RussoPy/Claude-s-Store/internal/db/conn"
	"github.com/RussoPy/Claude-s-Store/internal/db/repository"
	"github.com/RussoPy/Claude-s-Store/internal/handler"
	"github.com/RussoPy/Claude-s-Store/internal/kafka"
	"github.com/RussoPy/Claude-s-Store/internal/mailer"
	"github.com/RussoPy/Claude-s-Store/internal/paypal"
	"github.com/RussoPy/Claude-s-Store/internal/service"
)

type Application struct {
	cfg      *config.Config
	srv      *app.Server
	producer *kafka.OrderProducer
}

func NewApplication(cfg *config.Config) (*Application, error) {
	// Подключение к БД
	dbConn, err := conn.Connection(&cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("подключение к БД: %w", err)
	}

	if err = kafka.EnsureTopicExists(cfg.KafkaConfig.Brokers, cfg.KafkaConfig.Topic); err != nil {
		return nil, fmt.Errorf("создание Kafka topic: %w", err)
	}

	producer, err := kafka.NewProducer(cfg.KafkaConfig.Brokers, cfg.KafkaConfig.Topic)
	if err != nil {
		return nil, fmt.Errorf("создание Kafka Producer: %w", err)
	}

	// Сборка слоев
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	orderRepo := repository.NewOrderRepository(dbConn)
	couponRepo := repository.NewCouponRepository(dbConn)
	catalogRepo := repository.NewCatalogRepository(dbConn)
	paypalClient := paypal.NewClient(&cfg.Paypal)
	shopMailer := mailer.NewMailer(&cfg.SMTP)

	orderService := service.NewOrderService(paypalClient, orderRepo, couponRepo, shopMailer, producer,
		service.PricingConfig{
			ShippingFee:      cfg.Pricing.ShippingFee,
			FreeShippingFrom: cfg.Pricing.FreeShippingFrom,
			Tolerance:        cfg.Pricing.Tolerance,
		}, logger)
	catalogService := service.NewCatalogService(catalogRepo)

	orderHandler := handler.NewOrderHandler(orderService, catalogService)
	srv := app.NewServer(orderHandler)

	return &Application{
		cfg:      cfg,
		srv:      srv,
		producer: producer,
	}, nil
}

func (app *Application) Run(ctx context.Context) error {
	go func() {
		log.Printf("Запуск HTTP сервера на %s", app.cfg.HTTPAddr)
		if err := app.srv.Run(app.cfg.HTTPAddr); err != nil {
			if errors.Is(err, http.ErrServerClosed) {
				log.Printf("HTTP сервер в штатном режиме остановлен")
			} else {
				log.Fatalf("Критическая ошибка сервера: %v", err)
			}
		}
	}()

	// Ожидание сигнала завершения
	<-ctx.Done()
	log.Println("Получен сигнал завершения (Graceful Shutdown)...")

	// Даем 5 секунд на завершение текущих запросов
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	app.Shutdown(shutdownCtx)

	return nil
}

func (app *Application) Shutdown(ctx context.Context) {
	if err := app.srv.Stop(ctx); err != nil {
		log.Printf("Ошибка остановки HTTP сервера: %v", err)
	}
	if err := app.producer.Close(); err != nil {
		log.Printf("Ошибка остановки Kafka Producer: %v", err)
	}
}
