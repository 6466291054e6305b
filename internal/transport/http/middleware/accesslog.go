package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// 敏感 query key 统一打码
var sensitiveKeys = map[string]struct{}{
	"password": {}, "pwd": {}, "credential": {}, "token": {},
	"authorization": {}, "secret": {}, "access_token": {},
}

func maskQuery(kv map[string][]string) map[string][]string {
	out := make(map[string][]string, len(kv))
	for k, v := range kv {
		if _, ok := sensitiveKeys[strings.ToLower(k)]; ok {
			out[k] = []string{"****"}
		} else {
			out[k] = v
		}
	}
	return out
}

// AccessFields 访问日志附加字段（rid / 登录用户 / 打码后的 query），交给 ginzap 的 Context 钩子
func AccessFields(c *gin.Context) []zapcore.Field {
	fields := []zapcore.Field{zap.String("rid", c.GetString(KeyRequestID))}
	if cl, ok := ClaimsFrom(c); ok {
		fields = append(fields, zap.Int64("uid", cl.UID), zap.String("role", string(cl.Role)))
	}
	if q := c.Request.URL.Query(); len(q) > 0 {
		fields = append(fields, zap.Any("query", maskQuery(q)))
	}
	return fields
}
