package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"library-loans/internal/core/auth"
	"library-loans/internal/domain"
	"library-loans/internal/service"
	resp "library-loans/internal/transport/http/response"
)

const (
	KeyClaims  = "claims"
	KeySession = "session"
)

// AuthJWT 校验 Bearer 令牌并按声明重建本次请求的会话；requireRole 为空表示任意已登录用户
func AuthJWT(j *auth.JWTer, rv auth.Revoker, requireRole domain.Role, l *zap.Logger) gin.HandlerFunc {
	if rv == nil {
		rv = auth.NopRevoker{}
	}
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			resp.Abort(c, resp.CodeUnauthorized, "missing token")
			return
		}
		claims, err := j.Parse(strings.TrimPrefix(ah, "Bearer "))
		if err != nil {
			resp.Abort(c, resp.CodeUnauthorized, "invalid token")
			return
		}
		revoked, err := rv.Revoked(c.Request.Context(), claims)
		if err != nil {
			// 名单不可用时放行，令牌本身仍有过期时间兜底
			l.Warn("revocation check failed", zap.String("jti", claims.ID), zap.Error(err))
		}
		if revoked {
			resp.Abort(c, resp.CodeUnauthorized, "token revoked")
			return
		}
		if requireRole != "" && claims.Role != requireRole {
			resp.Abort(c, resp.CodeForbidden, "forbidden")
			return
		}
		c.Set(KeyClaims, claims)
		c.Set(KeySession, service.NewAuthenticatedSession(claims.Identity()))
		c.Next()
	}
}

// SessionFrom 未经过 AuthJWT 的请求得到匿名会话
func SessionFrom(c *gin.Context) *service.Session {
	if v, ok := c.Get(KeySession); ok {
		if s, ok := v.(*service.Session); ok {
			return s
		}
	}
	return service.NewSession(nil)
}

func ClaimsFrom(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(KeyClaims)
	if !ok {
		return nil, false
	}
	cl, ok := v.(*auth.Claims)
	return cl, ok
}
