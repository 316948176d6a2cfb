package middleware_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maestroai/internal/middleware"
)

func TestRequestID_GeneratedAndEchoed(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RequestID())
	var seen string
	r.GET("/", func(c *gin.Context) {
		seen = c.GetString(middleware.ContextKeyRequestID)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get(middleware.HeaderRequestID))

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.Header.Set(middleware.HeaderRequestID, "req-123")
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-123", seen)
	assert.Equal(t, "req-123", w.Header().Get(middleware.HeaderRequestID))
}

func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var lines []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		lines = append(lines, m)
	}
	return lines
}

func TestLogger_RedactsAndPreservesBody(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(base))
	var handlerBody []byte
	var ctxLoggerUsed bool
	r.POST("/v2/extract-text", func(c *gin.Context) {
		handlerBody, _ = io.ReadAll(c.Request.Body)
		zerolog.Ctx(c.Request.Context()).Info().Msg("from handler")
		ctxLoggerUsed = true
		c.JSON(http.StatusOK, gin.H{"text": "ok"})
	})

	screen := strings.Repeat("A", 500)
	payload := `{"screen":"` + screen + `","query":"price"}`
	req := httptest.NewRequest(http.MethodPost, "/v2/extract-text", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer super-secret")
	req.Header.Set(middleware.HeaderRequestID, "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, payload, string(handlerBody))
	assert.True(t, ctxLoggerUsed)

	out := buf.String()
	assert.NotContains(t, out, "super-secret")
	assert.NotContains(t, out, screen)

	lines := logLines(t, &buf)
	require.Len(t, lines, 3)
	incoming := lines[0]
	assert.Equal(t, "incoming request", incoming["message"])
	assert.Equal(t, "req-42", incoming["request_id"])
	body := incoming["body"].(map[string]any)
	assert.Equal(t, "<base64_data_len_500>", body["screen"])
	assert.Equal(t, "price", body["query"])
	headers := incoming["headers"].(map[string]any)
	assert.Equal(t, "***", headers["Authorization"])

	assert.Equal(t, "from handler", lines[1]["message"])
	assert.Equal(t, "req-42", lines[1]["request_id"])

	assert.Equal(t, "request completed", lines[2]["message"])
	assert.Equal(t, float64(http.StatusOK), lines[2]["status"])
}

func TestRedactBody(t *testing.T) {
	short := "iVBORw0KGgo="
	long := strings.Repeat("b", 101)
	body := `{"screen":[1,-2,3],"image":"` + long + `","file":"` + short + `","nested":{"items":[{"screen":"` + long + `"}]},"assertion":"` + long + `"}`

	got := middleware.RedactBody([]byte(body)).(map[string]any)

	assert.Equal(t, "<byte_array_len_3>", got["screen"])
	assert.Equal(t, "<base64_data_len_101>", got["image"])
	assert.Equal(t, short, got["file"])
	assert.Equal(t, long, got["assertion"])
	nested := got["nested"].(map[string]any)["items"].([]any)[0].(map[string]any)
	assert.Equal(t, "<base64_data_len_101>", nested["screen"])
}

func TestRedactBody_NonJSON(t *testing.T) {
	assert.Equal(t, "<binary/non-json data>", middleware.RedactBody([]byte{0x89, 'P', 'N', 'G'}))
}

func TestRedactHeaders(t *testing.T) {
	h := http.Header{}
	h.Set("Authorization", "Bearer abc")
	h.Set("Content-Type", "application/json")
	h.Add("Accept", "application/json")
	h.Add("Accept", "text/plain")

	got := middleware.RedactHeaders(h)

	assert.Equal(t, "***", got["Authorization"])
	assert.Equal(t, "application/json", got["Content-Type"])
	assert.Equal(t, "application/json, text/plain", got["Accept"])
}

func TestRecovery_ReturnsEnvelope(t *testing.T) {
	r := gin.New()
	r.Use(middleware.Recovery())
	r.GET("/boom", func(c *gin.Context) { panic("secret internal state") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", http.NoBody))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"error":{"code":"INTERNAL_ERROR","message":"an internal error occurred"}}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "secret")
}
