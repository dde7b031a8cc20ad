package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogAPICall_Levels(t *testing.T) {
	tests := []struct {
		name  string
		call  APICall
		level zapcore.Level
	}{
		{"ok", APICall{Status: 200}, zapcore.DebugLevel},
		{"client error", APICall{Status: 404}, zapcore.WarnLevel},
		{"server error", APICall{Status: 503}, zapcore.ErrorLevel},
		{"transport", APICall{Err: errors.New("connection refused")}, zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			tt.call.Operation = "ListTransactions"
			tt.call.Latency = time.Millisecond
			LogAPICall(zap.New(core), tt.call)

			entries := logs.All()
			if len(entries) != 1 {
				t.Fatalf("expected 1 entry, got %d", len(entries))
			}
			if entries[0].Level != tt.level {
				t.Errorf("expected %s, got %s", tt.level, entries[0].Level)
			}
			if entries[0].ContextMap()["operation"] != "ListTransactions" {
				t.Errorf("missing operation field: %v", entries[0].ContextMap())
			}
		})
	}
}

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.IncrRequest("200")
	m.IncrRequest("200")
	m.IncrRequest("500")
	m.IncrRequest("none")
	m.IncrAPIError("5xx")
	m.IncrAPIError("transport")
	m.IncrCacheHit("transactions")
	m.IncrCacheHit("transactions")
	m.IncrCacheHit("transactions")
	m.IncrCacheMiss("transactions")
	m.IncrCacheClear("transactions")
	m.RecordRequestDuration("ListTransactions", 20*time.Millisecond)

	s := m.Snapshot("transactions")
	if s.Requests != 4 || s.Errors != 2 {
		t.Errorf("expected 4 requests / 2 errors, got %d / %d", s.Requests, s.Errors)
	}
	if s.RequestsByCode["200"] != 2 || s.RequestsByCode["none"] != 1 {
		t.Errorf("unexpected by-code counts: %v", s.RequestsByCode)
	}
	if s.ErrorsByClass["transport"] != 1 || s.ErrorsByClass["4xx"] != 0 {
		t.Errorf("unexpected by-class counts: %v", s.ErrorsByClass)
	}
	if s.CacheHits != 3 || s.CacheMisses != 1 || s.CacheClears != 1 {
		t.Errorf("unexpected cache counters: %+v", s)
	}
	if s.CacheHitRate != 0.75 || s.ErrorRate != 0.5 {
		t.Errorf("unexpected rates: hit %v error %v", s.CacheHitRate, s.ErrorRate)
	}
}

func TestInitTracer_NoEndpoint(t *testing.T) {
	shutdown, err := InitTracer("", "fintrack-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("unexpected shutdown error: %v", err)
	}
}
