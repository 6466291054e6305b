package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"library-loans/internal/core/auth"
	"library-loans/internal/core/config"
	"library-loans/internal/core/server"
	"library-loans/internal/transport/http/handler"
	mdw "library-loans/internal/transport/http/middleware"
	resp "library-loans/internal/transport/http/response"
)

// Pinger 健康检查探测存储
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Log     *zap.Logger
	Env     string
	JWT     *auth.JWTer
	Revoker auth.Revoker
	Limits  config.Limits
	Store   Pinger
	Modules *Modules
}

// baseEngine 两个入口共用的中间件链
func baseEngine(d Deps, limit gin.HandlerFunc) *gin.Engine {
	r := server.NewRouter(d.Log, d.Env, mdw.AccessFields)
	lim := d.Limits
	if lim.TimeoutSec <= 0 {
		lim.TimeoutSec = 10
	}
	if lim.Concurrency <= 0 {
		lim.Concurrency = 300
	}
	if lim.MaxBodyMB <= 0 {
		lim.MaxBodyMB = 1
	}
	r.Use(
		mdw.RequestID(),
		limit,
		mdw.ConcurrencyLimit(lim.Concurrency),
		mdw.MaxBodyBytes(lim.MaxBodyMB<<20),
		mdw.Timeout(time.Duration(lim.TimeoutSec)*time.Second),
		mdw.Recovery(d.Log),
		mdw.Metrics(),
	)

	r.GET("/health", func(c *gin.Context) {
		if d.Store != nil {
			if err := d.Store.Ping(c.Request.Context()); err != nil {
				d.Log.Warn("health ping failed", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, resp.Error(resp.CodeUnavailable, "store unavailable"))
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"ok": 1})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

func rateOf(l config.Limits) (rate.Limit, int) {
	rps, burst := rate.Limit(l.RPS), l.Burst
	if rps <= 0 {
		rps = 200
	}
	if burst <= 0 {
		burst = 2 * int(rps)
	}
	return rps, burst
}

// NewAPIEngine 用户端 /api/v1；按 IP 限速
func NewAPIEngine(d Deps) *gin.Engine {
	r := baseEngine(d, mdw.RateLimitPerIP(rateOf(d.Limits)))

	api := r.Group("/api/v1")
	guard := mdw.AuthJWT(d.JWT, d.Revoker, "", d.Log)
	if d.Modules != nil {
		d.Modules.MountAPI(handler.New(api, guard, d.Log))
	}
	return r
}
