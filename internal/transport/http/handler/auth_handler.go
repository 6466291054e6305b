package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"library-loans/internal/core/auth"
	"library-loans/internal/domain"
	"library-loans/internal/service"
	mdw "library-loans/internal/transport/http/middleware"
)

type AuthHandler struct {
	Dir     DirectoryService
	JWT     *auth.JWTer
	Revoker auth.Revoker
	Log     *zap.Logger
}

type loginIn struct {
	Username   string `json:"username"   binding:"required"`
	Credential string `json:"credential" binding:"required"`
}

type loginOut struct {
	Token string          `json:"token"`
	User  domain.Identity `json:"user"`
}

type registerIn struct {
	Name       string `json:"name"       binding:"required,max=64"`
	Username   string `json:"username"   binding:"required,max=64"`
	Credential string `json:"credential" binding:"required"`
}

func (h *AuthHandler) MountAPI(e EZ) {
	// 登录：校验凭据后签发令牌，之后每个请求由令牌重建会话
	Register(e, Action[loginIn, loginOut]{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Binder: BindJSON,
		Handler: func(c *gin.Context, in *loginIn) (loginOut, error) {
			s := service.NewSession(h.Dir)
			if err := s.Login(c.Request.Context(), in.Username, in.Credential); err != nil {
				return loginOut{}, err
			}
			id, _ := s.Identity()
			tok, err := h.JWT.Issue(id)
			if err != nil {
				return loginOut{}, err
			}
			h.Log.Info("login", zap.Int64("user_id", id.UserID), zap.String("role", string(id.Role)))
			return loginOut{Token: tok, User: id}, nil
		},
	})

	// 自助注册只能是普通会员
	Register(e, Action[registerIn, idOut]{
		Method: http.MethodPost,
		Path:   "/auth/register",
		Binder: BindJSON,
		Handler: func(c *gin.Context, in *registerIn) (idOut, error) {
			id, err := h.Dir.RegisterUser(c.Request.Context(), domain.NewUser{
				Name:       in.Name,
				Role:       domain.RoleMember,
				Username:   in.Username,
				Credential: in.Credential,
			})
			return idOut{ID: id}, err
		},
	})

	Register(e, Action[struct{}, struct{}]{
		Method: http.MethodPost,
		Path:   "/auth/logout",
		Binder: BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (struct{}, error) {
			if cl, ok := mdw.ClaimsFrom(c); ok {
				if err := h.Revoker.Revoke(c.Request.Context(), cl); err != nil {
					return struct{}{}, err
				}
			}
			mdw.SessionFrom(c).Logout()
			return struct{}{}, nil
		},
	})

	Register(e, Action[struct{}, domain.User]{
		Method: http.MethodGet,
		Path:   "/me",
		Binder: BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (domain.User, error) {
			uid, ok := mdw.SessionFrom(c).CurrentUserID()
			if !ok {
				return domain.User{}, domain.ErrUnauthorized
			}
			return h.Dir.GetUser(c.Request.Context(), uid)
		},
	})
}
