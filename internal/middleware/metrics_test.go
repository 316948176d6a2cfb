package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"maestroai/internal/metrics"
	"maestroai/internal/middleware"
)

func TestMetrics_CountsByRouteTemplate(t *testing.T) {
	r := gin.New()
	r.Use(middleware.Metrics())
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/items/:id", "418")
	before := testutil.ToFloat64(counter)

	for _, path := range []string{"/items/1", "/items/2"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, http.NoBody))
	}

	assert.Equal(t, before+2, testutil.ToFloat64(counter))
}

func TestMetrics_UnmatchedRoute(t *testing.T) {
	r := gin.New()
	r.Use(middleware.Metrics())

	counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "unmatched", "404")
	before := testutil.ToFloat64(counter)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", http.NoBody))

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}
