package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"library-loans/internal/domain"
)

// AdminHandler 管理端用户维护；分组已要求 admin 角色
type AdminHandler struct {
	Dir DirectoryService
}

func (h *AdminHandler) MountAdmin(e EZ) {
	Register(e, Action[domain.NewUser, idOut]{
		Method: http.MethodPost,
		Path:   "/users",
		Binder: BindJSON,
		Handler: func(c *gin.Context, in *domain.NewUser) (idOut, error) {
			id, err := h.Dir.RegisterUser(c.Request.Context(), *in)
			return idOut{ID: id}, err
		},
	})

	Register(e, Action[struct{}, domain.User]{
		Method: http.MethodGet,
		Path:   "/users/:id",
		Binder: BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (domain.User, error) {
			id, err := pathID(c, "id")
			if err != nil {
				return domain.User{}, err
			}
			return h.Dir.GetUser(c.Request.Context(), id)
		},
	})
}
