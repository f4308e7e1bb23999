package logger

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Level(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, New("debug", false).GetLevel())
	assert.Equal(t, zerolog.InfoLevel, New("", false).GetLevel())
	assert.Equal(t, zerolog.InfoLevel, New("verbose", true).GetLevel())
}

func TestMiddleware(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	e.Use(Middleware(zerolog.New(&buf)))
	e.GET("/patients", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "gone")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/patients", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "error", line["level"])
	assert.Equal(t, "GET", line["method"])
	assert.Equal(t, "/patients", line["path"])
	assert.EqualValues(t, http.StatusNotFound, line["status"])
	assert.Equal(t, "request", line["message"])
}
