package loggingmw

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/grocery_shop/pkg/logging"
)

func newBufferedLogger() (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return slog.New(slog.NewJSONHandler(buf, nil)), buf
}

func TestRequestLogger_LogsStatusAndPropagatesLogger(t *testing.T) {
	t.Parallel()

	base, buf := newBufferedLogger()
	e := echo.New()
	e.Use(RequestLogger(base))

	var fromCtx *slog.Logger
	e.GET("/items/:id", func(c echo.Context) error {
		fromCtx = logging.FromContext(c.Request().Context())
		return c.NoContent(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/items/3", nil)
	req.Header.Set(echo.HeaderXRequestID, "rid-1")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "rid-1", rec.Header().Get(echo.HeaderXRequestID))
	require.NotNil(t, fromCtx)
	assert.NotSame(t, slog.Default(), fromCtx)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "INFO", line["level"])
	assert.Equal(t, "/items/:id", line["path"])
	assert.Equal(t, "rid-1", line["request_id"])
	assert.EqualValues(t, http.StatusNoContent, line["status"])
}

func TestRequestLogger_HandlesErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		status int
		level  string
	}{
		{name: "client error", err: echo.NewHTTPError(http.StatusNotFound, "missing"), status: http.StatusNotFound, level: "WARN"},
		{name: "server error", err: assert.AnError, status: http.StatusInternalServerError, level: "ERROR"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			base, buf := newBufferedLogger()
			e := echo.New()
			e.Use(RequestLogger(base))
			e.GET("/", func(c echo.Context) error { return tt.err })

			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, tt.status, rec.Code)

			var line map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
			assert.Equal(t, tt.level, line["level"])
			assert.NotEmpty(t, line["error"])
		})
	}
}
