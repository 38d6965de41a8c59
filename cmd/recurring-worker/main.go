package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"moneta/internal/config"
	"moneta/internal/database"
	"moneta/internal/events"
	"moneta/internal/logger"
	"moneta/internal/services"
)

// defaultInterval is how often due recurring transactions are advanced
// when WORKER_INTERVAL is not set.
const defaultInterval = time.Hour

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	var publisher events.Publisher = events.NopPublisher{}
	if appConfig.AMQPURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(appConfig.AMQPURL, appConfig.AMQPExchange)
		if err != nil {
			return fmt.Errorf("failed to connect to AMQP broker: %w", err)
		}
		defer amqpPublisher.Close()
		publisher = amqpPublisher
	}

	db := dbManager.DB()
	categoryService := services.NewCategoryService(db)
	userService := services.NewUserService(db, categoryService)
	transactionService := services.NewTransactionService(db, categoryService, userService, publisher)
	recurringService := services.NewRecurringService(db, transactionService, categoryService, userService, publisher)

	interval := defaultInterval
	if raw := os.Getenv("WORKER_INTERVAL"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid WORKER_INTERVAL: %w", err)
		}
		interval = parsed
	}

	log.Infow("recurring worker started", "interval", interval)

	// Initial pass on startup, then a fixed ticker.
	if processed, err := recurringService.ProcessDue(time.Now()); err != nil {
		log.Errorw("initial recurring processing failed", "error", err)
	} else {
		log.Infow("initial recurring processing complete", "processed", processed)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case now := <-ticker.C:
			processed, err := recurringService.ProcessDue(now)
			if err != nil {
				log.Errorw("recurring processing failed", "error", err)
				continue
			}
			log.Infow("recurring processing complete", "processed", processed)
		case sig := <-sigChan:
			log.Infow("shutting down recurring worker", "signal", sig.String())
			return nil
		}
	}
}
