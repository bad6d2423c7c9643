package http

import (
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"PlayerHub/modules/kit/logx"
	"PlayerHub/modules/kit/tracex"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedServer(t *testing.T) (*Server, *observer.ObservedLogs) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)
	return NewHttpServer(":0", gin.New(), logx.NewZapLogger(zap.New(core))), logs
}

func TestNewHttpServer_Healthz(t *testing.T) {
	s, logs := newObservedServer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(nethttp.MethodGet, "/healthz", nil)
	s.Handler().ServeHTTP(w, req)

	require.Equal(t, nethttp.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(tracex.HeaderTraceID))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zapcore.InfoLevel, logs.All()[0].Level)
}

func TestNewHttpServer_沿用上游TraceID(t *testing.T) {
	s, logs := newObservedServer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(nethttp.MethodGet, "/healthz", nil)
	req.Header.Set(tracex.HeaderTraceID, "up-1")
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, "up-1", w.Header().Get(tracex.HeaderTraceID))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "up-1", logs.All()[0].ContextMap()["trace_id"])
}

func TestNewHttpServer_CORS预检(t *testing.T) {
	s, _ := newObservedServer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(nethttp.MethodOptions, "/api/players", nil)
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, nethttp.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestAccessLog_从响应体取业务码(t *testing.T) {
	s, logs := newObservedServer(t)
	s.Group().GET("/missing", func(c *gin.Context) {
		c.JSON(nethttp.StatusNotFound, gin.H{"code": 101, "msg": "玩家不存在"})
	})
	s.Group().GET("/boom", func(c *gin.Context) {
		c.Status(nethttp.StatusInternalServerError)
	})

	for _, path := range []string{"/missing", "/boom"} {
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, httptest.NewRequest(nethttp.MethodGet, path, nil))
	}

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, int64(101), entries[0].ContextMap()["biz_code"])
	assert.Equal(t, "GET /missing", entries[0].ContextMap()["action"])
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, int64(500), entries[1].ContextMap()["biz_code"])
}
