package main

import (
	"context"
	"errors"
	"os"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"library-loans/internal/app"
	"library-loans/internal/core/config"
	"library-loans/internal/core/logger"
	"library-loans/internal/core/server"
	"library-loans/internal/domain"
	"library-loans/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, sync := logger.FromConfig(cfg.Log)
	defer sync()
	defer logger.RedirectStdLog(log, zap.InfoLevel)()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	a, cleanup, err := app.New(ctx, cfg, log)
	if err != nil {
		cancel()
		log.Fatal("bootstrap failed", zap.Error(err))
	}
	defer cleanup()

	// 首次部署：用环境变量建第一个管理员，已存在则跳过
	if err := seedAdmin(ctx, a, log); err != nil {
		log.Warn("seed admin", zap.Error(err))
	}
	cancel()

	r := router.NewAdminEngine(a.Deps())

	addr := server.Addr(cfg.App.Admin.Host, cfg.App.Admin.Port)
	srv := server.BuildServer(addr, r, 5*time.Second, 10*time.Second, 60*time.Second)

	baseURL := server.BaseURL(cfg.App.Admin.Host, cfg.App.Admin.Port)
	log.Info("admin api starting",
		zap.String("addr", addr),
		zap.String("health", baseURL+"/health"),
		zap.String("admin_v1", baseURL+"/admin/v1"),
	)
	server.Run(srv, log, "admin api")
}

func seedAdmin(ctx context.Context, a *app.App, log *zap.Logger) error {
	username, credential := os.Getenv("ADMIN_USERNAME"), os.Getenv("ADMIN_CREDENTIAL")
	if username == "" || credential == "" {
		return nil
	}
	id, err := a.Directory.RegisterUser(ctx, domain.NewUser{
		Name:       username,
		Role:       domain.RoleAdmin,
		Username:   username,
		Credential: credential,
	})
	if errors.Is(err, domain.ErrDuplicateUsername) {
		return nil
	}
	if err != nil {
		return err
	}
	log.Info("admin seeded", zap.Int64("user_id", id), zap.String("username", username))
	return nil
}
