package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"gym_booking/account"
	"gym_booking/booking"
	"gym_booking/config"
	"gym_booking/database"
	"gym_booking/handler"
	"gym_booking/locker"
	"gym_booking/notify"
	"gym_booking/router"
	"gym_booking/session"
	"gym_booking/sweeper"
	"gym_booking/trainer"
	"gym_booking/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	store := database.NewStore(db)
	clock := clockwork.NewRealClock()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := notify.NewHub()
	var (
		sessionLocker locker.Locker   = locker.NewLocal()
		notifier      notify.Notifier = hub
	)
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			log.Fatalf("redis: %v", err)
		}
		sessionLocker = locker.NewRedis(client, cfg.LockTTL)
		// Every instance relays the shared channel into its own hub.
		notifier = notify.NewRedisPublisher(client)
		go func() {
			if err := notify.Relay(ctx, client, hub); err != nil {
				log.Printf("notify relay stopped: %v", err)
			}
		}()
		log.Printf("Using redis at %s for session locks and events", cfg.RedisAddr)
	}

	bookings := booking.NewController(store, sessionLocker, notifier, clock, cfg.LockTimeout)
	if cfg.MailEnabled() {
		bookings.WithMailer(utils.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom))
	}

	h := &handler.Handler{
		Bookings: bookings,
		Sessions: session.NewManager(store, sessionLocker, notifier, clock, cfg.LockTimeout),
		Trainers: trainer.NewDirectory(store),
		Accounts: account.NewService(store),
		Hub:      hub,
	}

	sw := sweeper.New(store, sessionLocker, clock,
		sweeper.WithInterval(cfg.SweepInterval),
		sweeper.WithCron(cfg.SweepCron),
		sweeper.WithNotifier(notifier),
		sweeper.WithLockTimeout(cfg.LockTimeout),
	)
	if err := sw.Start(); err != nil {
		log.Fatalf("sweeper: %v", err)
	}
	defer sw.Stop()

	app := fiber.New(fiber.Config{
		BodyLimit: 1 * 1024 * 1024,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins(),
		AllowMethods: "GET,POST,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Authorization, Accept",
		MaxAge:       600,
	}))
	router.SetupRoutes(app, h, cfg.JWTSecret)

	go func() {
		<-ctx.Done()
		log.Println("Shutting down")
		if err := app.Shutdown(); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Printf("listen: %v", err)
	}
}
