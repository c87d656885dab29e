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
	"github.com/redis/go-redis/v9"

	"github.com/example/unihome/internal/config"
	"github.com/example/unihome/internal/database"
	"github.com/example/unihome/internal/handlers"
	"github.com/example/unihome/internal/middleware"
	"github.com/example/unihome/internal/routes"
	"github.com/example/unihome/internal/services"
	"github.com/example/unihome/internal/views"
)

func main() {
	cfg := config.Load()
	db := database.Connect(cfg.DatabaseURL, cfg.Debug)

	if err := database.Seed(db, database.SeedOptions{
		AdminUsername: cfg.AdminUsername,
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
		DemoData:      cfg.SeedDemoData,
	}); err != nil {
		log.Fatalf("seed database: %v", err)
	}

	storage, err := services.NewUploadStorage(cfg.UploadDir)
	if err != nil {
		log.Fatalf("upload dir: %v", err)
	}

	var codes services.VerificationStore
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer client.Close()
		codes = services.NewRedisVerificationStore(client)
		log.Printf("verification codes stored in redis at %s", cfg.RedisAddr)
	} else {
		store := services.NewDBVerificationStore(db)
		cleanup, err := services.StartCleanup(cfg.CleanupSchedule, store)
		if err != nil {
			log.Fatalf("cleanup schedule: %v", err)
		}
		defer cleanup.Stop()
		codes = store
	}

	var mailer services.Mailer = services.LogMailer{}
	if cfg.MailEnabled() {
		mailer = services.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom, cfg.SMTPFromName)
	} else {
		log.Println("SMTP not configured, verification mails are logged")
	}

	notifier := services.MultiNotifier{services.LogNotifier{}}
	if cfg.TelegramBotToken != "" {
		notifier = append(notifier, services.NewTelegramService(cfg.TelegramBotToken, cfg.TelegramAdminChat))
	}
	if cfg.AMQPURL != "" {
		publisher, err := services.NewEventPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Printf("event publisher disabled: %v", err)
		} else {
			defer publisher.Close()
			notifier = append(notifier, publisher)
		}
	}

	app := fiber.New(fiber.Config{
		AppName:      "UniHome",
		ErrorHandler: handlers.ErrorHandler,
		Views:        views.New(cfg.Debug),
		BodyLimit:    cfg.MaxUploadMB * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Static("/static", cfg.StaticDir)

	routes.Register(app, routes.Deps{
		DB:       db,
		Config:   cfg,
		Sessions: middleware.NewSessionStore(cfg.SessionTTL, cfg.CookieSecure),
		Codes:    codes,
		Mailer:   mailer,
		Notifier: notifier,
		Storage:  storage,
	})

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(ctx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("Starting server on %s", cfg.ListenAddr())
	if err := app.Listen(cfg.ListenAddr()); err != nil {
		log.Fatalf("fiber.Listen error: %v", err)
	}
}
