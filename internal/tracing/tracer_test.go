package tracing_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maestroai/internal/config"
	"maestroai/internal/tracing"
)

type recordedRequest struct {
	method string
	path   string
	apiKey string
	body   map[string]any
}

func TestNew_DisabledReturnsNoop(t *testing.T) {
	tr := tracing.New(config.TracingConfig{Enabled: false, APIKey: "k"}, zerolog.Nop())
	assert.IsType(t, tracing.Noop{}, tr)

	tr = tracing.New(config.TracingConfig{Enabled: true}, zerolog.Nop())
	assert.IsType(t, tracing.Noop{}, tr)
}

func TestNoop_StartAssignsRunID(t *testing.T) {
	run := tracing.Noop{}.Start(context.Background(), "defect_detection", nil)

	require.NotNil(t, run)
	assert.Equal(t, "defect_detection", run.Name)
	assert.NotEmpty(t, run.ID.String())
	assert.False(t, run.StartTime.IsZero())
}

func TestLangSmith_PostsAndPatchesRunInOrder(t *testing.T) {
	var (
		mu       sync.Mutex
		requests []recordedRequest
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)
		mu.Lock()
		requests = append(requests, recordedRequest{method: r.Method, path: r.URL.Path, apiKey: r.Header.Get("x-api-key"), body: body})
		mu.Unlock()
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	tr := tracing.New(config.TracingConfig{
		Enabled:  true,
		Endpoint: server.URL,
		APIKey:   "ls-key",
		Project:  "maestro-test",
	}, zerolog.Nop())

	run := tr.Start(context.Background(), "text_extraction", map[string]any{"query": "price"})
	tr.Finish(context.Background(), run, nil, errors.New("llm down"))
	tr.Close()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, requests, 2)

	start := requests[0]
	assert.Equal(t, http.MethodPost, start.method)
	assert.Equal(t, "/runs", start.path)
	assert.Equal(t, "ls-key", start.apiKey)
	assert.Equal(t, run.ID.String(), start.body["id"])
	assert.Equal(t, "text_extraction", start.body["name"])
	assert.Equal(t, "maestro-test", start.body["session_name"])
	assert.Equal(t, map[string]any{"query": "price"}, start.body["inputs"])

	end := requests[1]
	assert.Equal(t, http.MethodPatch, end.method)
	assert.Equal(t, "/runs/"+run.ID.String(), end.path)
	assert.Equal(t, "llm down", end.body["error"])
	assert.NotEmpty(t, end.body["end_time"])
}

func TestLangSmith_UnreachableEndpointDoesNotPanic(t *testing.T) {
	tr := tracing.NewLangSmith(config.TracingConfig{
		Enabled:  true,
		Endpoint: "http://127.0.0.1:1",
		APIKey:   "k",
	}, zerolog.Nop())

	run := tr.Start(context.Background(), "x", nil)
	tr.Finish(context.Background(), run, map[string]any{"ok": true}, nil)
	tr.Close()
	tr.Close()

	// Reports after Close are dropped.
	tr.Finish(context.Background(), run, nil, nil)
}
