package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	zlog "github.com/rs/zerolog/log"

	"github.com/verbumapp/verbum/app/controllers"
	"github.com/verbumapp/verbum/app/repository"
	"github.com/verbumapp/verbum/internal/pkg/bible"
	"github.com/verbumapp/verbum/internal/pkg/cache"
	"github.com/verbumapp/verbum/internal/pkg/contentsource"
	"github.com/verbumapp/verbum/internal/pkg/database"
	"github.com/verbumapp/verbum/internal/pkg/env"
	"github.com/verbumapp/verbum/internal/pkg/hymnal"
	"github.com/verbumapp/verbum/internal/pkg/jobqueue"
	"github.com/verbumapp/verbum/internal/pkg/mail"
	"github.com/verbumapp/verbum/internal/pkg/payments"
	"github.com/verbumapp/verbum/internal/pkg/router"
	"github.com/verbumapp/verbum/internal/pkg/subscription"
)

func main() {
	app, manager := NewApplication()

	// Flush counters and drain workers on shutdown.
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		manager.Stop()
		_ = app.Shutdown()
	}()

	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() (*fiber.App, *jobqueue.Manager) {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	db := database.GetDB()
	repository.InitializeFactory(db)

	store := subscription.NewStoreFromDB(db)

	// Checkout and webhook pipeline
	stateSecret := env.GetEnv("CHECKOUT_STATE_SECRET", "")
	if stateSecret == "" {
		zlog.Warn().Msg("CHECKOUT_STATE_SECRET is empty, checkout callbacks will not verify")
	}
	provider := payments.NewMercadoPagoClientFromEnv()
	checkout := payments.NewHandler(provider, payments.NewRedisSessionStore(), store, stateSecret)

	eventRepo := payments.NewEventRepository(db)
	webhookSvc := payments.NewWebhookService(eventRepo, store)

	// Layered content loaders: Redis cache, remote source of truth, S3
	// snapshot, bundled sample.
	var snapshot contentsource.Snapshot
	if cfg, err := contentsource.LoadS3Config(); err == nil {
		s3snap, err := contentsource.NewS3Snapshot(cfg, "snapshots")
		if err != nil {
			zlog.Warn().Err(err).Msg("content snapshots disabled")
		} else {
			snapshot = s3snap
		}
	} else {
		zlog.Info().Msg("content snapshots not configured")
	}

	bibleLoader := contentsource.NewLoader(contentsource.Config{
		Name:     "bible",
		Cache:    contentsource.NewRedisKV("bible"),
		Remote:   bible.NewAPIRemoteFromEnv(),
		Snapshot: snapshot,
		Sample:   bible.SampleChapter,
	})
	hymnalLoader := contentsource.NewLoader(contentsource.Config{
		Name:     "hymnal",
		Cache:    contentsource.NewRedisKV("hymnal"),
		Remote:   hymnal.NewDBSource(db),
		Snapshot: snapshot,
		Sample:   hymnal.SampleHymns,
	})

	controllers.SetBibleService(bible.NewService(bibleLoader))
	controllers.SetHymnalService(hymnal.NewService(hymnalLoader))
	controllers.SetCheckoutHandler(checkout)
	controllers.SetWebhookService(webhookSvc, env.GetEnv("WEBHOOK_SECRET", ""))
	controllers.SetSubscriptionStore(store)

	// Background workers: webhook processing with retry, activation mails,
	// view counter flushing.
	manager := jobqueue.GetManager()
	manager.GetQueue().SetWebhookProcessor(webhookSvc)
	manager.GetQueue().SetActivationMailer(mail.NewUserMailer(db))
	manager.SetPendingEventSource(eventRepo)
	manager.Start()

	app := fiber.New(fiber.Config{
		BodyLimit: 2 * 1024 * 1024,
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// fiber metrics
	app.Get("/metrics", basicauth.New(basicauth.Config{
		Users: map[string]string{
			"admin": env.GetEnv("METRICS_PASSWORD", "test"),
		},
	}), monitor.New())

	// ROUTER
	router.InstallRouter(app, store)

	return app, manager
}
