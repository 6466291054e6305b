package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"library-loans/internal/domain"
)

type BookHandler struct {
	Query   QueryService
	Catalog CatalogService
}

type searchQ struct {
	Q string `form:"q"`
}

type editIn struct {
	Title  string `json:"title"  binding:"required"`
	Author string `json:"author" binding:"required"`
}

type idOut struct {
	ID int64 `json:"id"`
}

// MountAPI 书目浏览，无需登录
func (h *BookHandler) MountAPI(e EZ) {
	Register(e, Action[struct{}, []domain.Book]{
		Method: http.MethodGet,
		Path:   "/books",
		Binder: BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.Book, error) {
			return h.Query.ListBooks(c.Request.Context())
		},
	})

	Register(e, Action[searchQ, []domain.Book]{
		Method: http.MethodGet,
		Path:   "/books/search",
		Binder: BindQuery,
		Handler: func(c *gin.Context, in *searchQ) ([]domain.Book, error) {
			return h.Query.Search(c.Request.Context(), in.Q)
		},
	})

	Register(e, Action[struct{}, domain.Book]{
		Method: http.MethodGet,
		Path:   "/books/:id",
		Binder: BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (domain.Book, error) {
			id, err := pathID(c, "id")
			if err != nil {
				return domain.Book{}, err
			}
			return h.Query.BookDetails(c.Request.Context(), id)
		},
	})
}

// MountAdmin 书目维护
func (h *BookHandler) MountAdmin(e EZ) {
	Register(e, Action[domain.NewBook, idOut]{
		Method: http.MethodPost,
		Path:   "/books",
		Binder: BindJSON,
		Handler: func(c *gin.Context, in *domain.NewBook) (idOut, error) {
			id, err := h.Catalog.AddBook(c.Request.Context(), *in)
			return idOut{ID: id}, err
		},
	})

	Register(e, Action[editIn, idOut]{
		Method: http.MethodPut,
		Path:   "/books/:id",
		Binder: BindJSON,
		Handler: func(c *gin.Context, in *editIn) (idOut, error) {
			id, err := pathID(c, "id")
			if err != nil {
				return idOut{}, err
			}
			return idOut{ID: id}, h.Catalog.EditBook(c.Request.Context(), id, in.Title, in.Author)
		},
	})

	Register(e, Action[struct{}, idOut]{
		Method: http.MethodDelete,
		Path:   "/books/:id",
		Binder: BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (idOut, error) {
			id, err := pathID(c, "id")
			if err != nil {
				return idOut{}, err
			}
			return idOut{ID: id}, h.Catalog.DeleteBook(c.Request.Context(), id)
		},
	})
}
