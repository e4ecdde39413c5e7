package main

import (
	"context"
	"os/signal"
	"strings"
	"syscall"
	"time"

	config "github.com/anjiri1684/tutor_marketplace/configs"
	"github.com/anjiri1684/tutor_marketplace/database"
	"github.com/anjiri1684/tutor_marketplace/handlers"
	"github.com/anjiri1684/tutor_marketplace/jobs"
	"github.com/anjiri1684/tutor_marketplace/middleware"
	"github.com/anjiri1684/tutor_marketplace/notifications"
	"github.com/anjiri1684/tutor_marketplace/routes"
	"github.com/anjiri1684/tutor_marketplace/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

func main() {
	config.LoadEnv()
	settings := config.MustLoad()
	config.ConfigureLogging(settings)

	db, err := database.Connect(settings)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}
	if err := database.SeedAdmin(db, settings); err != nil {
		log.Fatal().Err(err).Msg("failed to seed admin user")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := websocket.NewHub()
	go hub.Run(ctx)

	mailer := notifications.NewMailer(settings)
	h := handlers.New(db, settings, hub, mailer)

	runner := &jobs.Runner{
		Bookings:     h.Bookings,
		Publisher:    hub,
		Mailer:       mailer,
		PendingTTL:   settings.PendingBookingTTL,
		ReminderLead: settings.ReminderLead,
	}
	scheduler := cron.New(cron.WithLocation(time.UTC))
	if err := runner.Register(scheduler); err != nil {
		log.Fatal().Err(err).Msg("failed to schedule jobs")
	}
	scheduler.Start()
	log.Info().Msg("background jobs scheduled")

	app := fiber.New(fiber.Config{
		AppName:      "Tutor Marketplace",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(requestid.New())
	app.Use(recover.New(recover.Config{EnableStackTrace: !settings.IsProduction()}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:  strings.Join(settings.CORSAllowedOrigins, ","),
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Content-Disposition, X-Request-ID",
		MaxAge:        86400,
	}))
	app.Use(middleware.Metrics())
	app.Use(middleware.Logger())

	routes.Setup(app, h)

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		<-scheduler.Stop().Done()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error().Err(err).Msg("server shutdown failed")
		}
	}()

	log.Info().Str("port", settings.Port).Str("env", settings.AppEnv).Msg("server starting")
	if err := app.Listen(":" + settings.Port); err != nil {
		log.Fatal().Err(err).Msg("server failed to start")
	}
}

