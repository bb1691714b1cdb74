package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newRouter(log *zap.Logger, token string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Logging(log), Recovery(log))
	r.GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/boom", func(c *gin.Context) { panic("boom") })
	r.PUT("/admin", RequireToken(token), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func do(r http.Handler, method, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLoggingAndRecovery(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := newRouter(zap.New(core), "")

	w := do(r, http.MethodGet, "/ok", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, w.Body.String())

	assert.Equal(t, 1, logs.FilterMessage("panic in handler").Len())
	requests := logs.FilterMessage("http request").All()
	assert.Len(t, requests, 2)
	assert.Equal(t, "/ok", requests[0].ContextMap()["path"])
}

func TestRequireToken(t *testing.T) {
	r := newRouter(zap.NewNop(), "s3cret")

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodPut, "/admin", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodPut, "/admin", "Bearer nope").Code)
	assert.Equal(t, http.StatusNoContent, do(r, http.MethodPut, "/admin", "Bearer s3cret").Code)

	open := newRouter(zap.NewNop(), "")
	assert.Equal(t, http.StatusNoContent, do(open, http.MethodPut, "/admin", "").Code)
}
