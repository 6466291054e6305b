package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"library-loans/internal/domain"
	resp "library-loans/internal/transport/http/response"
)

// Binder 入参绑定方式
type Binder string

const (
	BindJSON  Binder = "json"
	BindQuery Binder = "query"
	BindNone  Binder = "none" // 自己从 c.Param 取
)

// EZ 路由分组 + 可选的登录校验
type EZ struct {
	g     *gin.RouterGroup
	guard gin.HandlerFunc
	log   *zap.Logger
}

// New guard 为 nil 时 Auth 动作不再单独校验（由分组中间件负责）
func New(g *gin.RouterGroup, guard gin.HandlerFunc, l *zap.Logger) EZ {
	if l == nil {
		l = zap.NewNop()
	}
	return EZ{g: g, guard: guard, log: l}
}

// Action 一个接口：I 入参，O 出参
type Action[I any, O any] struct {
	Method  string
	Path    string
	Binder  Binder
	Auth    bool // 需要登录
	Handler func(c *gin.Context, in *I) (O, error)
}

func Register[I any, O any](e EZ, a Action[I, O]) {
	h := func(c *gin.Context) {
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		}
		if bindErr != nil {
			Fail(c, e.log, fmt.Errorf("%w: %v", domain.ErrInvalidInput, bindErr))
			return
		}

		out, err := a.Handler(c, &in)
		if err != nil {
			Fail(c, e.log, err)
			return
		}
		resp.JSON(c, resp.OK(out))
	}

	chain := []gin.HandlerFunc{h}
	if a.Auth && e.guard != nil {
		chain = []gin.HandlerFunc{e.guard, h}
	}
	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, chain...)
	case http.MethodPut:
		e.g.PUT(a.Path, chain...)
	case http.MethodDelete:
		e.g.DELETE(a.Path, chain...)
	default:
		e.g.POST(a.Path, chain...)
	}
}

// pathID 解析路径上的正整数 ID
func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: bad %s %q", domain.ErrInvalidInput, name, c.Param(name))
	}
	return id, nil
}
