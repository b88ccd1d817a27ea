package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"github.com/jmuralla/taskhive-backend/api/routes"
	"github.com/jmuralla/taskhive-backend/internal/activity"
	"github.com/jmuralla/taskhive-backend/internal/auth"
	"github.com/jmuralla/taskhive-backend/internal/notifications"
	"github.com/jmuralla/taskhive-backend/internal/tasks"
	"github.com/jmuralla/taskhive-backend/internal/teams"
	"github.com/jmuralla/taskhive-backend/internal/users"
	"github.com/jmuralla/taskhive-backend/pkg/auth/session"
	"github.com/jmuralla/taskhive-backend/pkg/config"
	"github.com/jmuralla/taskhive-backend/pkg/db"
	"github.com/jmuralla/taskhive-backend/pkg/logger"
	"github.com/jmuralla/taskhive-backend/pkg/migrate"
	"github.com/jmuralla/taskhive-backend/pkg/outbox"
	"github.com/jmuralla/taskhive-backend/pkg/redis"
	"github.com/jmuralla/taskhive-backend/pkg/storage/gcs"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(ctx, "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(ctx, "failed to create session manager", err)
		os.Exit(1)
	}

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	journal, err := auth.NewJournal(dbClient, outboxService)
	if err != nil {
		logg.Error(ctx, "failed to create login journal", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(dbClient.DB()),
		Journal:        journal,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(ctx, "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(ctx, "failed to create register service", err)
		os.Exit(1)
	}

	usersParams := users.ServiceParams{
		Repo:        users.NewRepository(dbClient.DB()),
		Bucket:      cfg.GCS.BucketName,
		UploadTTL:   cfg.GCS.UploadURLExpiry,
		DownloadTTL: cfg.GCS.DownloadURLExpiry,
	}
	if cfg.GCS.BucketName != "" {
		gcsClient, err := gcs.NewClient(ctx, cfg.GCS, cfg.GCP, logg)
		if err != nil {
			logg.Error(ctx, "failed to create gcs client", err)
			os.Exit(1)
		}
		defer func() {
			if err := gcsClient.Close(); err != nil {
				logg.Error(ctx, "error closing gcs client", err)
			}
		}()
		usersParams.GCS = gcsClient
	}
	usersService, err := users.NewService(usersParams)
	if err != nil {
		logg.Error(ctx, "failed to create users service", err)
		os.Exit(1)
	}

	notificationsRepo := notifications.NewRepository(dbClient.DB())
	notificationsService, err := notifications.NewService(notificationsRepo, redisClient, logg)
	if err != nil {
		logg.Error(ctx, "failed to create notifications service", err)
		os.Exit(1)
	}

	teamsService, err := teams.NewService(teams.ServiceParams{
		TxRunner: dbClient,
		Repo:     teams.NewRepository(dbClient.DB()),
		Users:    teams.NewMemberDirectory(dbClient.DB()),
		Outbox:   outboxService,
		Notifier: notificationsService,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create teams service", err)
		os.Exit(1)
	}

	tasksService, err := tasks.NewService(tasks.ServiceParams{
		TxRunner: dbClient,
		Repo:     tasks.NewRepository(dbClient.DB()),
		Teams:    teams.NewRepository(dbClient.DB()),
		Users:    users.NewRepository(dbClient.DB()),
		Outbox:   outboxService,
		Notifier: notificationsService,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create tasks service", err)
		os.Exit(1)
	}

	activityService := activity.NewService(activity.NewRepository(dbClient.DB()))

	feedHub := notifications.NewHub(0)
	feedWatcher := notifications.NewWatcher(notificationsRepo, notificationsService, feedHub, redisClient, logg, cfg.Feed.ResyncInterval)

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	go func() {
		if err := feedWatcher.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			logg.Error(runCtx, "feed watcher stopped", err)
		}
	}()

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	startCtx := logg.WithFields(runCtx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(startCtx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:        cfg,
			Logger:        logg,
			Redis:         redisClient,
			Sessions:      sessionManager,
			AuthService:   authService,
			Register:      registerService,
			Users:         usersService,
			Teams:         teamsService,
			Tasks:         tasksService,
			Notifications: notificationsService,
			Activity:      activityService,
			FeedHub:       feedHub,
			FeedWatcher:   feedWatcher,
		}),
	}

	go func() {
		<-runCtx.Done()
		if err := server.Shutdown(context.Background()); err != nil {
			logg.Error(ctx, "server shutdown failed", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(startCtx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
