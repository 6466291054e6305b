package app

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"library-loans/internal/core/auth"
	"library-loans/internal/core/cache"
	"library-loans/internal/core/config"
	"library-loans/internal/core/database"
	"library-loans/internal/repo"
	"library-loans/internal/service"
	"library-loans/internal/transport/http/handler"
	"library-loans/internal/transport/http/router"
)

// App 两个入口共用的依赖
type App struct {
	Cfg   *config.Config
	Log   *zap.Logger
	Store *repo.Store
	Redis *redis.Client // 未配置时为 nil

	Catalog   *service.Catalog
	Directory *service.Directory
	Ledger    *service.Ledger
	Query     *service.Query

	JWT     *auth.JWTer
	Revoker auth.Revoker
}

// New 连接数据库（按配置建表）与可选的 redis；返回的 cleanup 负责关闭连接
func New(ctx context.Context, cfg *config.Config, l *zap.Logger) (*App, func(), error) {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		Log:                l,
	})
	if err != nil {
		return nil, nil, err
	}
	store := repo.NewStore(db)
	closers := []func(){func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}}
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if err := store.Ping(ctx); err != nil {
		cleanup()
		return nil, nil, err
	}
	l.Info("database connected", zap.String("driver", cfg.DB.Driver), zap.String("dsn", database.MaskDSN(cfg.DB.DSN)))
	if cfg.DB.AutoMigrate {
		if err := store.AutoMigrate(); err != nil {
			cleanup()
			return nil, nil, err
		}
		l.Info("automigrate done")
	}

	a := &App{
		Cfg:     cfg,
		Log:     l,
		Store:   store,
		Revoker: auth.NopRevoker{},
		JWT: &auth.JWTer{
			Secret: []byte(cfg.JWT.Secret),
			Issuer: cfg.JWT.Issuer,
			TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
		},
	}
	a.Catalog = service.NewCatalog(store, service.SystemClock, l.Named("catalog"))
	a.Ledger = service.NewLedger(store, service.SystemClock, l.Named("ledger"))
	a.Directory = service.NewDirectory(store.Users, l.Named("directory"))
	a.Query = service.NewQuery(a.Catalog, a.Ledger)

	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		closers = append(closers, func() { _ = rdb.Close() })
		if err := rdb.Ping(ctx).Err(); err != nil {
			// 缓存/注销名单是附加能力，连不上只告警
			l.Warn("redis unavailable, running without cache", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		} else {
			a.Redis = rdb
			a.Revoker = auth.NewRedisRevoker(rdb)
			a.Directory.WithCache(cache.NewWithClient(rdb, "library:"), time.Duration(cfg.Redis.UserTTLSec)*time.Second)
			l.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
		}
	}
	return a, cleanup, nil
}

// Deps 组装路由依赖与业务模块
func (a *App) Deps() router.Deps {
	return router.Deps{
		Log:     a.Log,
		Env:     a.Cfg.App.Env,
		JWT:     a.JWT,
		Revoker: a.Revoker,
		Limits:  a.Cfg.Limits,
		Store:   a.Store,
		Modules: router.NewModules(
			&handler.AuthHandler{Dir: a.Directory, JWT: a.JWT, Revoker: a.Revoker, Log: a.Log},
			&handler.BookHandler{Query: a.Query, Catalog: a.Catalog},
			&handler.LoanHandler{Ledger: a.Ledger, Query: a.Query},
			&handler.AdminHandler{Dir: a.Directory},
		),
	}
}
