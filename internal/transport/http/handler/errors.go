package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"library-loans/internal/domain"
	resp "library-loans/internal/transport/http/response"
)

// 核心错误 → 业务码
var kindCodes = map[error]int{
	domain.ErrInvalidInput:      resp.CodeBadRequest,
	domain.ErrNotFound:          resp.CodeNotFound,
	domain.ErrDuplicateIsbn:     resp.CodeConflict,
	domain.ErrDuplicateUsername: resp.CodeConflict,
	domain.ErrAuthFailed:        resp.CodeUnauthorized,
	domain.ErrUnauthorized:      resp.CodeForbidden,
	domain.ErrNoCopiesAvailable: resp.CodeConflict,
	domain.ErrAlreadyBorrowed:   resp.CodeConflict,
	domain.ErrNoActiveLoan:      resp.CodeConflict,
	domain.ErrHasActiveLoans:    resp.CodeConflict,
	domain.ErrBorrowFailed:      resp.CodeServerError,
	domain.ErrReturnFailed:      resp.CodeServerError,
	domain.ErrStoreUnavailable:  resp.CodeUnavailable,
}

// CodeOf 未归类的错误按 500 处理
func CodeOf(err error) int {
	if k := domain.KindOf(err); k != nil {
		return kindCodes[k]
	}
	var mbe *http.MaxBytesError
	switch {
	case errors.As(err, &mbe):
		return resp.CodeBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return resp.CodeTimeout
	}
	return resp.CodeServerError
}

// Fail 4xx 把错误原文返回给客户端；5xx 只记日志，返回通用文案
func Fail(c *gin.Context, l *zap.Logger, err error) {
	code := CodeOf(err)
	if code < resp.CodeServerError {
		resp.JSON(c, resp.Error(code, err.Error()))
		return
	}
	l.Error("request failed",
		zap.String("path", c.FullPath()),
		zap.Int("code", code),
		zap.Error(err),
	)
	resp.JSON(c, resp.Error(code, ""))
}
