package driver

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// TraceEntry is one judge request/response exchange.
type TraceEntry struct {
	Timestamp   time.Time       `json:"timestamp"`
	Driver      string          `json:"driver"`
	Endpoint    string          `json:"endpoint"`
	Method      string          `json:"method"`
	Model       string          `json:"model,omitempty"`
	PromptSlug  string          `json:"prompt_slug,omitempty"`
	RequestBody json.RawMessage `json:"request_body,omitempty"`
	StatusCode  int             `json:"status_code,omitempty"`
	Response    json.RawMessage `json:"response,omitempty"`
	Error       string          `json:"error,omitempty"`
	DurationMs  int64           `json:"duration_ms"`
}

// Tracer appends trace entries to a file as NDJSON.
type Tracer struct {
	mu   sync.Mutex
	file *os.File
}

var (
	tracerMu     sync.Mutex
	activeTracer *Tracer
)

// EnableTracing starts tracing to path, replacing any active tracer.
// The returned cleanup closes the file.
func EnableTracing(path string) (func(), error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open trace file: %w", err)
	}

	tracerMu.Lock()
	prev := activeTracer
	activeTracer = &Tracer{file: f}
	tracerMu.Unlock()
	_ = prev.Close()

	return DisableTracing, nil
}

// DisableTracing stops tracing and closes the trace file.
func DisableTracing() {
	tracerMu.Lock()
	t := activeTracer
	activeTracer = nil
	tracerMu.Unlock()
	_ = t.Close()
}

// IsTracingEnabled reports whether a tracer is active.
func IsTracingEnabled() bool {
	tracerMu.Lock()
	defer tracerMu.Unlock()
	return activeTracer != nil
}

// Trace records entry when tracing is enabled.
func Trace(entry TraceEntry) {
	tracerMu.Lock()
	t := activeTracer
	tracerMu.Unlock()
	t.Write(entry)
}

// TraceExchange is a convenience wrapper that marshals the request and
// response values and computes the duration from start.
func TraceExchange(entry TraceEntry, start time.Time, request, response any, err error) {
	if !IsTracingEnabled() {
		return
	}
	entry.Timestamp = start
	entry.DurationMs = time.Since(start).Milliseconds()
	if request != nil {
		entry.RequestBody = rawJSON(request)
	}
	if response != nil {
		entry.Response = rawJSON(response)
	}
	if err != nil {
		entry.Error = err.Error()
	}
	Trace(entry)
}

func rawJSON(v any) json.RawMessage {
	if raw, ok := v.([]byte); ok {
		if json.Valid(raw) {
			return raw
		}
		quoted, _ := json.Marshal(string(raw))
		return quoted
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}

// Write appends entry as a single line.
func (t *Tracer) Write(entry TraceEntry) {
	if t == nil {
		return
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	data = append(data, '\n')

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.file != nil {
		_, _ = t.file.Write(data)
	}
}

// Close closes the trace file.
func (t *Tracer) Close() error {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.file == nil {
		return nil
	}
	err := t.file.Close()
	t.file = nil
	return err
}
