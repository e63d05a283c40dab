package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ogurasousui/taskdesk-http-clean-arch/internal/adapters/identity"
	"github.com/ogurasousui/taskdesk-http-clean-arch/internal/adapters/repository/postgres"
	"github.com/ogurasousui/taskdesk-http-clean-arch/internal/adapters/rest"
	"github.com/ogurasousui/taskdesk-http-clean-arch/internal/core/authz"
	"github.com/ogurasousui/taskdesk-http-clean-arch/internal/core/employee"
	"github.com/ogurasousui/taskdesk-http-clean-arch/internal/core/task"
	"github.com/ogurasousui/taskdesk-http-clean-arch/internal/platform/config"
	pg "github.com/ogurasousui/taskdesk-http-clean-arch/internal/platform/db/postgres"
	"github.com/ogurasousui/taskdesk-http-clean-arch/internal/platform/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	dbPool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("failed to initialize database pool: %v", err)
	}
	defer dbPool.Close()

	txManager := pg.NewTransactionManager(dbPool)
	employeeRepo := postgres.NewEmployeeRepository(dbPool)
	taskRepo := postgres.NewTaskRepository(dbPool)

	identityClient := identity.NewClient(cfg.Identity.BaseURL, cfg.Identity.SecretKey, cfg.Identity.Timeout)

	employeeSvc := employee.NewService(employeeRepo, identityClient, taskRepo, nil, txManager)
	taskSvc := task.NewService(taskRepo, taskRepo, nil, txManager)

	router := rest.NewRouter(rest.Dependencies{
		Logger:         logger,
		Policy:         authz.NewPolicy(cfg.Auth.AdminEmail),
		Sessions:       rest.NewSessionVerifier(cfg.Auth.SessionSecret, cfg.Auth.CookieName),
		Employees:      employeeSvc,
		Tasks:          taskSvc,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	httpServer := server.New(cfg.Server.ListenAddr, router)

	logger.Info("http server listening", "addr", cfg.Server.ListenAddr)

	if err := httpServer.Run(ctx); err != nil {
		log.Fatalf("server stopped with error: %v", err)
	}
}
