package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_DefaultAndCustomMsg(t *testing.T) {
	assert.Equal(t, "Conflict", Error(CodeConflict, "").Msg)
	assert.Equal(t, "no copies", Error(CodeConflict, "no copies").Msg)
	assert.Equal(t, struct{}{}, Error(CodeConflict, "").Data)
}

func TestAbort_WritesEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Abort(c, CodeTooManyRequests, "")

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusOK, w.Code)
	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, float64(CodeTooManyRequests), got["code"])
	assert.Equal(t, "Too Many Requests", got["msg"])
	assert.Equal(t, map[string]any{}, got["data"])
}
