package tracing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"maestroai/internal/config"
)

const (
	reportTimeout = 10 * time.Second
	queueSize     = 256
)

type report struct {
	method  string
	url     string
	payload []byte
}

// LangSmith posts runs to the LangSmith REST API: POST /runs on start and
// PATCH /runs/{id} on finish. Reports are delivered in order by a single
// background worker; when the queue is full new reports are dropped.
type LangSmith struct {
	endpoint string
	apiKey   string
	project  string
	client   *http.Client
	logger   zerolog.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan report
	done   chan struct{}
}

// NewLangSmith creates a LangSmith tracer and starts its delivery worker.
func NewLangSmith(cfg config.TracingConfig, logger zerolog.Logger) *LangSmith {
	l := &LangSmith{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		project:  cfg.Project,
		client:   &http.Client{Timeout: reportTimeout},
		logger:   logger.With().Str("component", "tracing").Logger(),
		queue:    make(chan report, queueSize),
		done:     make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *LangSmith) Start(ctx context.Context, name string, inputs map[string]any) *Run {
	run := Noop{}.Start(ctx, name, inputs)
	l.enqueue(http.MethodPost, l.endpoint+"/runs", map[string]any{
		"id":           run.ID.String(),
		"name":         name,
		"run_type":     "chain",
		"inputs":       inputs,
		"start_time":   run.StartTime.Format(time.RFC3339Nano),
		"session_name": l.project,
	})
	return run
}

func (l *LangSmith) Finish(_ context.Context, run *Run, outputs map[string]any, err error) {
	if run == nil {
		return
	}
	body := map[string]any{
		"end_time": time.Now().UTC().Format(time.RFC3339Nano),
		"outputs":  outputs,
	}
	if err != nil {
		body["error"] = err.Error()
	}
	l.enqueue(http.MethodPatch, fmt.Sprintf("%s/runs/%s", l.endpoint, run.ID), body)
}

// Close stops accepting reports and waits for queued ones to be delivered.
func (l *LangSmith) Close() {
	l.mu.Lock()
	if !l.closed {
		l.closed = true
		close(l.queue)
	}
	l.mu.Unlock()
	<-l.done
}

func (l *LangSmith) enqueue(method, url string, body map[string]any) {
	payload, err := json.Marshal(body)
	if err != nil {
		l.logger.Warn().Err(err).Msg("encoding trace run")
		return
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return
	}
	select {
	case l.queue <- report{method: method, url: url, payload: payload}:
	default:
		l.logger.Warn().Str("method", method).Msg("trace queue full, dropping run report")
	}
}

func (l *LangSmith) run() {
	defer close(l.done)
	for r := range l.queue {
		l.deliver(r)
	}
}

func (l *LangSmith) deliver(r report) {
	ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, r.method, r.url, bytes.NewReader(r.payload))
	if err != nil {
		l.logger.Warn().Err(err).Msg("building trace request")
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", l.apiKey)

	resp, err := l.client.Do(req)
	if err != nil {
		l.logger.Warn().Err(err).Str("method", r.method).Msg("sending trace run")
		return
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		l.logger.Warn().Int("status", resp.StatusCode).Str("method", r.method).Msg("trace endpoint rejected run")
	}
}
