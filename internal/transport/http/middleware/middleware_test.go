package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"library-loans/internal/core/auth"
	"library-loans/internal/domain"
	resp "library-loans/internal/transport/http/response"
)

func init() { gin.SetMode(gin.TestMode) }

func codeOf(t *testing.T, w *httptest.ResponseRecorder) int {
	t.Helper()
	var out resp.Resp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out.Code
}

func newJWTer() *auth.JWTer {
	return &auth.JWTer{Secret: []byte("test-secret"), Issuer: "library-loans", TTL: time.Hour}
}

func Test_AuthJWT(t *testing.T) {
	j := newJWTer()
	mr := miniredis.RunT(t)
	rv := auth.NewRedisRevoker(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	r := gin.New()
	r.GET("/me", AuthJWT(j, rv, "", zap.NewNop()), func(c *gin.Context) {
		uid, ok := SessionFrom(c).CurrentUserID()
		require.True(t, ok)
		c.JSON(http.StatusOK, resp.OK(gin.H{"uid": uid}))
	})
	r.GET("/admin", AuthJWT(j, rv, domain.RoleAdmin, zap.NewNop()), func(c *gin.Context) {
		c.JSON(http.StatusOK, resp.OK(nil))
	})

	call := func(path, token string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return codeOf(t, w)
	}

	member, err := j.Issue(domain.Identity{UserID: 7, Role: domain.RoleMember})
	require.NoError(t, err)

	assert.Equal(t, resp.CodeUnauthorized, call("/me", ""))
	assert.Equal(t, resp.CodeUnauthorized, call("/me", "garbage"))
	assert.Equal(t, resp.CodeOK, call("/me", member))
	assert.Equal(t, resp.CodeForbidden, call("/admin", member))

	claims, err := j.Parse(member)
	require.NoError(t, err)
	require.NoError(t, rv.Revoke(context.Background(), claims))
	assert.Equal(t, resp.CodeUnauthorized, call("/me", member))
}

func Test_SessionFrom_AnonymousWithoutAuth(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.False(t, SessionFrom(c).IsAuthenticated())
	_, ok := ClaimsFrom(c)
	assert.False(t, ok)
}

func Test_RateLimitPerIP(t *testing.T) {
	r := gin.New()
	r.GET("/", RateLimitPerIP(1, 1), func(c *gin.Context) { c.JSON(http.StatusOK, resp.OK(nil)) })

	call := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return codeOf(t, w)
	}
	assert.Equal(t, resp.CodeOK, call("10.0.0.1"))
	assert.Equal(t, resp.CodeTooManyRequests, call("10.0.0.1"))
	// 另一个 IP 有自己的桶
	assert.Equal(t, resp.CodeOK, call("10.0.0.2"))
}

func Test_Timeout(t *testing.T) {
	r := gin.New()
	r.GET("/slow", Timeout(10*time.Millisecond), func(c *gin.Context) {
		<-c.Request.Context().Done()
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/slow", nil))
	assert.Equal(t, resp.CodeTimeout, codeOf(t, w))
}

func Test_RequestID(t *testing.T) {
	r := gin.New()
	r.GET("/", RequestID(), func(c *gin.Context) { c.String(http.StatusOK, c.GetString(KeyRequestID)) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(KeyRequestID, "abc")
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Header().Get(KeyRequestID))
	assert.Equal(t, "abc", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, w.Header().Get(KeyRequestID), 36)
}

func Test_Recovery(t *testing.T) {
	r := gin.New()
	r.GET("/boom", Recovery(zap.NewNop()), func(*gin.Context) { panic("boom") })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, resp.CodeServerError, codeOf(t, w))
}

func Test_MaskQuery(t *testing.T) {
	got := maskQuery(map[string][]string{"q": {"dune"}, "Credential": {"pw"}})
	assert.Equal(t, []string{"dune"}, got["q"])
	assert.Equal(t, []string{"****"}, got["Credential"])
}
