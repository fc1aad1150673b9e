package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"costs/internal/core"
)

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"":      slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestLoggerJSONCarriesComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: "json", Component: ComponentCost, Output: &buf})

	logger.Info("Cost added", NewFields().WithCost(core.Cost{ID: "7", UserID: 1, Category: core.Food, Sum: 3}).ToSlice()...)
	logger.Debug("hidden")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "cost", entry[FieldComponent])
	assert.Equal(t, "7", entry[FieldCostID])
	assert.Equal(t, "food", entry[FieldCategory])
}

func TestWithComponentReplacesTag(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Format: "json", Component: ComponentApp, Output: &buf}).WithComponent(ComponentReport)
	logger.Warn("x")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "report", entry[FieldComponent])
	assert.Equal(t, ComponentReport, logger.Component())
}

func TestMiddlewareAndFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Format: "json", Component: ComponentHTTP, Output: &buf})

	var got *Logger
	h := Middleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context()).With(FieldRequestID, "req_1")
		got.Info("inside")
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotNil(t, got)
	assert.Contains(t, buf.String(), `"request_id":"req_1"`)

	fallback := FromContext(context.Background())
	assert.Equal(t, ComponentApp, fallback.Component())
}

func TestStructuredLoggerHTTPEndLevels(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Level: slog.LevelDebug, Format: "json", Output: &buf}))
	r := httptest.NewRequest(http.MethodGet, "/api/report?id=1", nil)

	sl.LogHTTPEnd(context.Background(), r, "req_2", http.StatusNotFound, int64(time.Millisecond), "1.2.3.4")
	sl.LogHTTPEnd(context.Background(), r, "req_3", http.StatusInternalServerError, 2, "1.2.3.4")
	sl.LogError(context.Background(), "boom", errors.New("bad"), ComponentReport, OpReport, NewFields().WithReport(1, 2024, 3))

	out := buf.String()
	assert.Contains(t, out, `"level":"WARN"`)
	assert.Contains(t, out, `"level":"ERROR"`)
	assert.Contains(t, out, `"error":"bad"`)
	assert.Contains(t, out, `"operation":"report"`)
}
