package logging

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_FieldsAndLevels(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	logger := FromZap(zap.New(core)).Named("usecase").With("component", "reward")

	logger.Debug("hidden")
	logger.Info("claim processed", "user_id", "u1", "xp", 20)
	logger.Warn("claim failed", "error", errors.New("boom"))
	logger.Info("odd args", "dangling")

	entries := logs.All()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries above debug, got %d", len(entries))
	}

	first := entries[0]
	if first.LoggerName != "usecase" || first.Message != "claim processed" {
		t.Fatalf("unexpected entry: %+v", first.Entry)
	}
	ctxMap := first.ContextMap()
	if ctxMap["component"] != "reward" || ctxMap["user_id"] != "u1" || ctxMap["xp"] != int64(20) {
		t.Fatalf("unexpected fields: %+v", ctxMap)
	}
	if got := entries[1].ContextMap()["error"]; got != "boom" {
		t.Fatalf("expected error field, got %v", got)
	}
	if _, ok := entries[2].ContextMap()["dangling"]; !ok {
		t.Fatalf("expected dangling key kept with nil value, got %+v", entries[2].ContextMap())
	}
}

func TestLogger_ContextAddsTraceIDs(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	logger := FromZap(zap.New(core))

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	logger.InfoContext(ctx, "with trace")
	logger.InfoContext(context.Background(), "without trace")

	entries := logs.All()
	if got := entries[0].ContextMap()["trace_id"]; got != traceID.String() {
		t.Fatalf("trace_id=%v, want %s", got, traceID)
	}
	if got := entries[0].ContextMap()["trace_sampled"]; got != true {
		t.Fatalf("trace_sampled=%v, want true", got)
	}
	if _, ok := entries[1].ContextMap()["trace_id"]; ok {
		t.Fatalf("expected no trace fields without span")
	}
}

func TestNew_WritesJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(Options{Level: LevelWarn, Output: &buf, Name: "scoring", Fields: []any{"service", "prediction-league"}})
	logger.Info("skipped")
	logger.Error("written", "match_id", "m1")

	out := buf.String()
	if strings.Contains(out, "skipped") {
		t.Fatalf("info must be filtered at warn level: %s", out)
	}
	for _, want := range []string{`"msg":"written"`, `"match_id":"m1"`, `"logger":"scoring"`, `"service":"prediction-league"`, `"level":"ERROR"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in output: %s", want, out)
		}
	}
	if !strings.Contains(out, "logger_test.go") {
		t.Fatalf("expected caller to point at the test, got %s", out)
	}
}

func TestLogger_ZapFieldsPassThrough(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	logger := FromZap(zap.New(core))

	logger.Info("mixed", zap.Int("points", 7), "user_id", "u1", 42, "unnamed")

	ctxMap := logs.All()[0].ContextMap()
	if ctxMap["points"] != int64(7) || ctxMap["user_id"] != "u1" || ctxMap["arg3"] != "unnamed" {
		t.Fatalf("unexpected fields: %+v", ctxMap)
	}
}

func TestLogger_NilUsesDefault(t *testing.T) {
	t.Parallel()

	var logger *Logger
	logger.Info("dropped by nop default")
	if logger.Named("x").Zap() == nil {
		t.Fatalf("expected a usable zap logger")
	}
	if err := logger.Sync(); err != nil {
		t.Fatalf("Sync on nil logger: %v", err)
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]Level{"debug": LevelDebug, "": LevelInfo, "WARNING": LevelWarn, " error ": LevelError}
	for in, want := range tests {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q)=(%v,%v), want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Fatalf("expected error for unsupported level")
	}
}
