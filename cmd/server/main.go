package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/example/fftopup/internal/catalog"
	"github.com/example/fftopup/internal/config"
	"github.com/example/fftopup/internal/database"
	"github.com/example/fftopup/internal/events"
	"github.com/example/fftopup/internal/handlers"
	"github.com/example/fftopup/internal/orders"
	"github.com/example/fftopup/internal/repository"
	"github.com/example/fftopup/internal/routes"
	"github.com/example/fftopup/internal/security"
	"github.com/example/fftopup/internal/services"
	"github.com/example/fftopup/internal/storage"
	"github.com/example/fftopup/internal/validation"
)

func main() {
	cfg := config.Load()
	db := database.Connect(cfg.DatabaseURL)

	if err := database.BootstrapAdmin(db, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatalf("admin bootstrap failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	blobs, err := storage.NewLocalStore(cfg.StorageDir)
	if err != nil {
		log.Fatalf("storage init failed: %v", err)
	}

	deps := routes.Dependencies{}

	var attempts security.AttemptStore = security.NewMemoryStore()
	if cfg.RedisAddr != "" {
		client := security.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword)
		defer client.Close()

		store := security.NewRedisStore(client)
		if err := store.Ping(ctx); err != nil {
			log.Fatalf("redis ping failed: %v", err)
		}
		attempts = store
		deps.CSRFStorage = security.NewTokenStorage(client)
		log.Printf("Using redis at %s for login attempts and csrf tokens", cfg.RedisAddr)
	}
	deps.Limiter = security.NewRateLimiter(attempts)

	var publisher orders.Publisher = events.LogPublisher{}
	var kafkaPublisher *events.KafkaPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, 256)
		kafkaPublisher.Start(ctx)
		publisher = kafkaPublisher
		log.Printf("Publishing order events to %s on %v", cfg.KafkaTopic, cfg.KafkaBrokers)
	}

	telegram := services.NewTelegramService(cfg.TelegramBotToken, cfg.TelegramAdminChat)

	deps.Orders = orders.NewService(
		repository.NewOrderRepository(db),
		repository.NewOfferRepository(db),
		repository.NewProfileRepository(db),
		blobs,
		orders.WithPublisher(publisher),
		orders.WithNotifier(telegram),
	)

	app := fiber.New(fiber.Config{
		AppName:      catalog.StoreName,
		ErrorHandler: handlers.ErrorHandler,
		// Room for the largest proof plus the text fields.
		BodyLimit: validation.MaxImageSize + 1024*1024,
	})

	app.Use(recover.New())
	app.Use(logger.New())

	routes.Register(app, db, cfg, deps)

	go func() {
		<-ctx.Done()
		log.Println("Shutting down server")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("shutdown error: %v", err)
		}
	}()

	log.Printf("Starting server on :%s", cfg.AppPort)
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Fatalf("fiber.Listen error: %v", err)
	}

	deps.Orders.Wait()
	if kafkaPublisher != nil {
		stop()
		kafkaPublisher.WaitClosed()
	}
}
