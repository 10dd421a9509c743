package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/gatehouse-iam/gatehouse/internal/access"
	"github.com/gatehouse-iam/gatehouse/internal/app"
	"github.com/gatehouse-iam/gatehouse/internal/auth"
	"github.com/gatehouse-iam/gatehouse/internal/groups"
	"github.com/gatehouse-iam/gatehouse/internal/modules"
	"github.com/gatehouse-iam/gatehouse/internal/observability"
	"github.com/gatehouse-iam/gatehouse/internal/permissions"
	"github.com/gatehouse-iam/gatehouse/internal/platform/cache"
	"github.com/gatehouse-iam/gatehouse/internal/platform/db"
	"github.com/gatehouse-iam/gatehouse/internal/roles"
	"github.com/gatehouse-iam/gatehouse/internal/token"
	"github.com/gatehouse-iam/gatehouse/internal/users"
	"github.com/gatehouse-iam/gatehouse/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	tokens, err := token.NewManager(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		logger.Error("init token manager", slog.Any("error", err))
		os.Exit(1)
	}
	tokenMiddleware := token.Middleware{Manager: tokens, Logger: logger}

	metrics := observability.NewMetrics()

	sessionRegistry := auth.NewSessionRegistry(redisClient)
	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, tokens, sessionRegistry, logger)
	authHandler := auth.NewHandler(logger, authService)

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo)
	usersHandler := users.NewHandler(logger, usersService)

	groupsRepo := groups.NewRepository(pool)
	groupsService := groups.NewService(groupsRepo)
	groupsHandler := groups.NewHandler(logger, groupsService)

	rolesRepo := roles.NewRepository(pool)
	rolesService := roles.NewService(rolesRepo)
	rolesHandler := roles.NewHandler(logger, rolesService)

	modulesRepo := modules.NewRepository(pool)
	modulesService := modules.NewService(modulesRepo)
	modulesHandler := modules.NewHandler(logger, modulesService)

	permissionsRepo := permissions.NewRepository(pool)
	permissionsService := permissions.NewService(permissionsRepo)
	permissionsHandler := permissions.NewHandler(logger, permissionsService)

	resolver := access.NewResolver(access.NewPGStore(pool))
	accessHandler := access.NewHandler(logger, resolver, metrics)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		Metrics:            metrics,
		TokenMiddleware:    tokenMiddleware,
		AuthHandler:        authHandler,
		UsersHandler:       usersHandler,
		GroupsHandler:      groupsHandler,
		RolesHandler:       rolesHandler,
		ModulesHandler:     modulesHandler,
		PermissionsHandler: permissionsHandler,
		AccessHandler:      accessHandler,
		JobsHandler:        jobsHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
