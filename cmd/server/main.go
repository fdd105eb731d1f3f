package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/patelvedant312/team-matching/internal/config"
	"github.com/patelvedant312/team-matching/internal/db"
	"github.com/patelvedant312/team-matching/internal/goroutine"
	httpHandlers "github.com/patelvedant312/team-matching/internal/http/handlers"
	httpRouter "github.com/patelvedant312/team-matching/internal/http/router"
	"github.com/patelvedant312/team-matching/internal/logger"
	"github.com/patelvedant312/team-matching/internal/matching"
	"github.com/patelvedant312/team-matching/internal/repository"
	"github.com/patelvedant312/team-matching/internal/service"
	"github.com/patelvedant312/team-matching/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.L().Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	if cfg.Env == "development" {
		logger.Init("debug")
		logger.SetTextFormatter()
	} else {
		logger.Init("info")
	}
	log := logger.Component("main")

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("ошибка миграций: %v", err)
	}

	engine, err := matching.NewEngine(cfg.Matching, logger.Component("matching"))
	if err != nil {
		log.Fatalf("некорректные параметры подбора: %v", err)
	}
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL)

	// Репозитории.
	orgRepo := repository.NewOrganizationRepository(dbConn)
	resourceRepo := repository.NewResourceRepository(dbConn)
	projectRepo := repository.NewProjectRepository(dbConn)
	teamRepo := repository.NewTeamRepository(dbConn)
	formationRepo := repository.NewFormationRepository(dbConn)

	// Вебсокеты.
	hub := ws.NewHub()
	goroutine.SafeGoWithContext(ctx, hub.Run)

	// Сервисы.
	authService := service.NewAuthService(orgRepo, tokenManager)
	resourceService := service.NewResourceService(resourceRepo)
	projectService := service.NewProjectService(projectRepo)
	teamService := service.NewTeamFormationService(formationRepo, teamRepo, projectRepo, resourceRepo, engine, hub)

	// HTTP хэндлеры.
	router := httpRouter.SetupRouter(
		cfg,
		tokenManager,
		httpHandlers.NewHealthHandler(dbConn),
		httpHandlers.NewAuthHandler(authService),
		httpHandlers.NewResourceHandler(resourceService, cfg.MaxImportSizeMB<<20),
		httpHandlers.NewProjectHandler(projectService),
		httpHandlers.NewTeamHandler(teamService),
		httpHandlers.NewWSHandler(hub, tokenManager, cfg.AllowedOrigins),
	)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Завершаем сервер при получении сигнала.
	goroutine.SafeGo(func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Errorf("ошибка остановки http сервера: %v", err)
		}
	})

	log.Infof("HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		logger.L().Errorf("main: ошибка закрытия базы: %v", err)
	}
}
