package logging

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T) (*SlogLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return NewSlogLogger(slog.New(h)), &buf
}

func TestSlogLoggerLevels(t *testing.T) {
	log, buf := newTestLogger(t)
	ctx := context.Background()

	log.Info(ctx, "inf", "b", 2)
	log.Warn(ctx, "wrn", "c", 3)
	log.Error(ctx, "err", "d", 4)

	out := buf.String()
	for _, want := range []string{"level=INFO", "msg=inf", "b=2", "level=WARN", "c=3", "level=ERROR", "d=4"} {
		assert.Contains(t, out, want)
	}
}

func TestSlogLoggerWithAddsAttributes(t *testing.T) {
	log, buf := newTestLogger(t)

	log.With("component", "session").Info(context.Background(), "hello", "k", "v")

	out := buf.String()
	assert.Contains(t, out, "component=session")
	assert.Contains(t, out, "k=v")
}

func TestNewReleaseWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, true).Info(context.Background(), "started", "port", "8000")

	line := strings.TrimSpace(buf.String())
	require.True(t, strings.HasPrefix(line, "{"), line)
	assert.Contains(t, line, `"port":"8000"`)
}

func TestGinMiddlewareLogsRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log, buf := newTestLogger(t)

	router := gin.New()
	router.Use(GinMiddleware(log))
	router.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "path=/missing")
	assert.Contains(t, out, "status=404")
}
