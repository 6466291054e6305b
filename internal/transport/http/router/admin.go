package router

import (
	"github.com/gin-gonic/gin"

	"library-loans/internal/domain"
	"library-loans/internal/transport/http/handler"
	mdw "library-loans/internal/transport/http/middleware"
)

// NewAdminEngine 管理端 /admin/v1，整组要求 admin 角色
func NewAdminEngine(d Deps) *gin.Engine {
	r := baseEngine(d, mdw.RateLimit(rateOf(d.Limits)))

	admin := r.Group("/admin/v1")
	admin.Use(mdw.AuthJWT(d.JWT, d.Revoker, domain.RoleAdmin, d.Log))
	if d.Modules != nil {
		d.Modules.MountAdmin(handler.New(admin, nil, d.Log))
	}
	return r
}
